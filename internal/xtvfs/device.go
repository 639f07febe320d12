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
package xtvfs

import "fmt"

// SectorSize is the only logical sector size XTVFS/FAT32 volumes in this
// reader support. Anything else fails BadVolume at open.
const SectorSize = 512

// BlockDevice is a random-access byte source over a seekable image: a
// regular file, a raw block device, or (in tests) an in-memory buffer.
type BlockDevice interface {
	// ReadAt reads exactly len(p) bytes starting at off, or returns an error.
	// Implementations must not return a short read without an error.
	ReadAt(p []byte, off int64) (int, error)
	// Size returns the total size of the underlying image in bytes.
	Size() int64
}

// memDevice is the simplest BlockDevice: an in-memory image, used by tests
// to build synthetic volumes without touching the filesystem.
type memDevice struct {
	data []byte
}

// NewMemDevice wraps a byte slice as a BlockDevice.
func NewMemDevice(data []byte) BlockDevice {
	return &memDevice{data: data}
}

func (m *memDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, fmt.Errorf("xtvfs: read offset %d out of range (size %d)", off, len(m.data))
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, fmt.Errorf("xtvfs: short read at offset %d: got %d of %d bytes", off, n, len(p))
	}
	return n, nil
}

func (m *memDevice) Size() int64 { return int64(len(m.data)) }

// lbaReader is a typed view over a BlockDevice that reads whole 512-byte
// logical blocks by LBA index, singly or in contiguous runs. It is strict:
// any short read surfaces as KindIO.
type lbaReader struct {
	dev BlockDevice
}

func newLBAReader(dev BlockDevice) *lbaReader {
	return &lbaReader{dev: dev}
}

// readLBA reads a single 512-byte logical block.
func (r *lbaReader) readLBA(lba uint64) ([]byte, error) {
	return r.readLBARun(lba, 1)
}

// readLBARun reads count contiguous 512-byte logical blocks starting at lba.
func (r *lbaReader) readLBARun(lba uint64, count uint32) ([]byte, error) {
	buf := make([]byte, int(count)*SectorSize)
	off := int64(lba) * SectorSize
	n, err := r.dev.ReadAt(buf, off)
	if err != nil {
		return nil, newErr(KindIO, fmt.Sprintf("read %d sector(s) at LBA %d", count, lba), err)
	}
	if n != len(buf) {
		return nil, newErr(KindIO, fmt.Sprintf("short read at LBA %d: got %d of %d bytes", lba, n, len(buf)), nil)
	}
	return buf, nil
}

// --- little-endian decoders over a byte slice at a given offset ---

func leU8(b []byte, off int) uint8 {
	return b[off]
}

func leU16(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}

func leU32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}
