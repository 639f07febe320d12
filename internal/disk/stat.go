// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package disk

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// DefaultSectorSize is the assumed sector size for regular files or when a
// device's sector size cannot be determined.
const DefaultSectorSize = 512

// DiskInfo describes an opened, read-only disk device or image file: its
// geometry (sector size, total size) and whether it is a raw block device
// or a regular file.
type DiskInfo struct {
	DevicePath string
	SectorSize int64
	RealSize   int64
	IsDevice   bool
	file       *os.File
}

// Close closes the underlying file handle.
func (d *DiskInfo) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// ReadAt reads from the device or image at the given byte offset.
func (d *DiskInfo) ReadAt(p []byte, off int64) (int, error) {
	return d.file.ReadAt(p, off)
}

// getSectorSizeLinux retrieves the logical block size of a Linux block
// device via the BLKSSZGET ioctl.
func getSectorSizeLinux(file *os.File) (int64, error) {
	sz, err := unix.IoctlGetInt(int(file.Fd()), unix.BLKSSZGET)
	if err != nil {
		return 0, fmt.Errorf("ioctl BLKSSZGET failed: %w", err)
	}
	return int64(sz), nil
}

// getDiskSizeLinux retrieves the total size in bytes of a Linux block
// device via the BLKGETSIZE64 ioctl.
func getDiskSizeLinux(file *os.File) (int64, error) {
	sz, err := unix.IoctlGetUint64(int(file.Fd()), unix.BLKGETSIZE64)
	if err != nil {
		return 0, fmt.Errorf("ioctl BLKGETSIZE64 failed: %w", err)
	}
	return int64(sz), nil
}

// Stat opens devicePath read-only and determines its geometry: a raw Linux
// block device is probed via BLKSSZGET/BLKGETSIZE64; anything else (a
// regular image file, or a device on a non-Linux OS) is assumed to have
// DefaultSectorSize sectors and its size is read via Seek.
func Stat(devicePath string) (*DiskInfo, error) {
	file, err := os.Open(devicePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", devicePath, err)
	}

	info := &DiskInfo{DevicePath: devicePath, SectorSize: DefaultSectorSize, file: file}

	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", devicePath, err)
	}
	info.IsDevice = fi.Mode()&os.ModeDevice != 0

	if info.IsDevice && runtime.GOOS == "linux" {
		if sectorSize, err := getSectorSizeLinux(file); err == nil {
			info.SectorSize = sectorSize
		}
		if realSize, err := getDiskSizeLinux(file); err == nil {
			info.RealSize = realSize
		}
	}

	if info.RealSize == 0 {
		size, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("could not determine size of %s: %w", devicePath, err)
		}
		info.RealSize = size
	}

	return info, nil
}
