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

// Package xtvfs decodes a read-only FAT32 superset used by Sky+-style PVR
// set-top boxes: an ordinary FAT32 volume optionally promoted to XTVFS by an
// "XFS0" marker at LBA 2, which adds a second, parallel allocation table for
// large recording (.STR) files and a 40-bit size field. The package never
// writes to the underlying device.
package xtvfs

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/skyvault/xtvfsreader/internal/disk"
	"github.com/skyvault/xtvfsreader/internal/fs"
	"github.com/skyvault/xtvfsreader/internal/logger"
	"github.com/skyvault/xtvfsreader/internal/mmap"
	"github.com/skyvault/xtvfsreader/pkg/reader"
)

// Filesystem is the top-level decoder handle: geometry plus block device,
// exposing Open, ReadDirectory, Stat, and ReadFile. It never changes after
// Open returns, and it performs no caching of directory contents across
// calls beyond the single-sector FAT cache in each fatEngine.
type Filesystem struct {
	dev      BlockDevice
	r        *lbaReader
	geometry *Geometry
	fsInfo   fsInfo

	fileFAT       *fatEngine
	videoFAT      *fatEngine // nil for a plain FAT32 volume
	fileClusters  *clusterReader
	videoClusters *clusterReader // nil for a plain FAT32 volume

	log *logger.Logger
}

// Kind reports which volume variant this handle decoded: FAT32 or XTVFS.
func (f *Filesystem) Kind() VolumeKind { return f.geometry.Kind }

// Geometry returns the immutable geometry computed at Open, for diagnostic
// display.
func (f *Filesystem) Geometry() Geometry { return *f.geometry }

func (f *Filesystem) warnf(format string, args ...any) {
	if f.log != nil {
		f.log.Warnf(format, args...)
	}
}

// OpenOption customizes Open's behavior beyond its required arguments.
type OpenOption func(*openConfig)

type openConfig struct {
	log              *logger.Logger
	videoAreaPercent float64
}

// WithLogger attaches a logger that receives warnings for the tolerant edge
// cases the decoder is required to survive (a directory chain running off
// without an explicit terminator, an XTVFS marker absent so the volume
// degrades to plain FAT32).
func WithLogger(log *logger.Logger) OpenOption {
	return func(c *openConfig) { c.log = log }
}

// WithVideoAreaPercent overrides DefaultVideoAreaPercent, the fraction of
// total sectors used to locate the start of the video data area. Exists for
// testing against XTVFS revisions that split the video area differently.
func WithVideoAreaPercent(pct float64) OpenOption {
	return func(c *openConfig) { c.videoAreaPercent = pct }
}

// Open decodes the volume header from dev and returns a Filesystem handle.
// It tries XTVFS first (checking the "XFS0" marker at LBA 2) and degrades to
// plain FAT32 when the marker is absent.
func Open(dev BlockDevice, opts ...OpenOption) (*Filesystem, error) {
	cfg := openConfig{videoAreaPercent: DefaultVideoAreaPercent}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := newLBAReader(dev)

	boot, err := r.readLBA(0)
	if err != nil {
		return nil, err
	}
	geometry, err := decodeFAT32Volume(boot)
	if err != nil {
		return nil, err
	}

	if fsInfoBlock, err := r.readLBA(1); err == nil {
		_ = decodeFSInfo(fsInfoBlock) // informational only; decode errors are not fatal
	}

	f := &Filesystem{dev: dev, r: r, geometry: geometry, log: cfg.log}

	if marker, err := r.readLBA(2); err == nil && decodeXTVFS(marker) {
		geometry.applyXTVFS(cfg.videoAreaPercent)
		f.videoFAT = newFatEngine(r, geometry.VideoFATBeginLBA, videoChainEnd)
		f.videoClusters = newClusterReader(r, geometry.VideoDataBeginLBA, VideoSectorsPerCluster)
	} else {
		f.warnf("no XFS0 marker at LBA 2; volume treated as plain FAT32")
	}

	f.fileFAT = newFatEngine(r, geometry.FileFATBeginLBA, fileChainEnd)
	f.fileClusters = newClusterReader(r, geometry.ClusterAreaBeginLBA, uint32(geometry.SectorsPerCluster))

	return f, nil
}

// ReadDirectory lists the entries of the directory whose first cluster is
// cluster. Pass the root cluster from Geometry().RootFirstCluster to list
// the root directory.
func (f *Filesystem) ReadDirectory(cluster uint32) ([]DirEntry, error) {
	return f.readDirectory(cluster)
}

// Stat resolves path, an absolute '/'- or '\'-separated name, to the
// directory entry it names.
func (f *Filesystem) Stat(path string) (DirEntry, error) {
	return f.stat(path)
}

// ReadFile writes entry's full content to sink, following the file chain
// for an ordinary entry or the video chain for a video (.STR) entry.
func (f *Filesystem) ReadFile(entry DirEntry, sink Sink) error {
	return f.readFile(entry, sink)
}

// blockFile adapts an internal/fs.File (or any io.ReaderAt with a known
// size) to BlockDevice.
type blockFile struct {
	f    io.ReaderAt
	size int64
}

func (b *blockFile) ReadAt(p []byte, off int64) (int, error) { return b.f.ReadAt(p, off) }
func (b *blockFile) Size() int64                             { return b.size }

// diskBlockDevice adapts a disk.DiskInfo (a raw block device opened and
// probed via disk.Stat) to BlockDevice, backing reads with the device's
// ioctl-derived capacity rather than a value obtained by seeking to the end.
type diskBlockDevice struct {
	info *disk.DiskInfo
}

func (d *diskBlockDevice) ReadAt(p []byte, off int64) (int, error) { return d.info.ReadAt(p, off) }
func (d *diskBlockDevice) Size() int64                             { return d.info.RealSize }

// seekerDevice adapts an io.ReadSeeker (e.g. a reader.MultiReadSeeker
// spanning several split image segments) to BlockDevice via seek-then-read,
// serialized under a mutex since io.ReadSeeker carries an implicit cursor.
type seekerDevice struct {
	mu   sync.Mutex
	rs   io.ReadSeeker
	size int64
}

func (s *seekerDevice) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(s.rs, p)
}

func (s *seekerDevice) Size() int64 { return s.size }

// mmapBlockDevice adapts an internal/mmap.MmapFile to BlockDevice. Reads are
// plain slice copies out of the mapped region; the kernel handles paging.
type mmapBlockDevice struct {
	m *mmap.MmapFile
}

func (d *mmapBlockDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(d.m.Data)) {
		return 0, io.EOF
	}
	n := copy(p, d.m.Data[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (d *mmapBlockDevice) Size() int64 { return int64(len(d.m.Data)) }

// openSingleImage opens one path as a Filesystem's backing device. A raw
// Linux block device is probed with disk.Stat first: its ioctl-derived
// logical sector size must match SectorSize, and its ioctl-derived capacity
// (BLKGETSIZE64), not a Seek-to-end guess, becomes the device's Size(). Any
// other path (a regular image file, or a device on a non-Linux OS where
// disk.Stat never reaches the Linux-only ioctls) falls back to a plain
// internal/fs.Open-backed device.
func openSingleImage(path string, opts ...OpenOption) (*Filesystem, func() error, error) {
	if runtime.GOOS == "linux" {
		if info, err := disk.Stat(path); err == nil {
			if !info.IsDevice {
				info.Close()
			} else {
				if info.SectorSize != SectorSize {
					info.Close()
					return nil, nil, fmt.Errorf("xtvfs: device %s has a %d-byte logical sector, only %d is supported", path, info.SectorSize, SectorSize)
				}
				dev := &diskBlockDevice{info: info}
				fsys, err := Open(dev, opts...)
				if err != nil {
					info.Close()
					return nil, nil, err
				}
				return fsys, info.Close, nil
			}
		}
	}

	file, err := fs.Open(path)
	if err != nil {
		return nil, nil, err
	}
	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	dev := &blockFile{f: file, size: st.Size()}
	fsys, err := Open(dev, opts...)
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return fsys, file.Close, nil
}

// OpenImageMmap decodes a single image file the same way OpenImage does, but
// backs the BlockDevice with a memory-mapped region instead of buffered
// ReadAt calls, avoiding a copy through the page cache into a Go buffer on
// every sector read. It does not support split-image segments: mmap needs a
// single contiguous address space, and stitching several files into one
// would require a page-aligned offset per segment, which split PVR images
// don't guarantee.
func OpenImageMmap(path string, opts ...OpenOption) (*Filesystem, func() error, error) {
	m, err := mmap.NewMmapFile(path)
	if err != nil {
		return nil, nil, err
	}
	dev := &mmapBlockDevice{m: m}
	fsys, err := Open(dev, opts...)
	if err != nil {
		m.Close()
		return nil, nil, err
	}
	return fsys, m.Close, nil
}

// OpenImage opens a single image file (or, when len(paths) > 1, an ordered
// set of split image segments concatenated end-to-end) and decodes it as a
// Filesystem. Segment order follows the order of paths; segments are
// concatenated purely by byte offset, with no gap or alignment padding
// between them.
func OpenImage(paths []string, opts ...OpenOption) (*Filesystem, func() error, error) {
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("xtvfs: OpenImage requires at least one path")
	}

	if len(paths) == 1 {
		return openSingleImage(paths[0], opts...)
	}

	files := make([]*os.File, 0, len(paths))
	readers := make([]io.ReadSeeker, 0, len(paths))
	sizes := make([]int64, 0, len(paths))

	closeAll := func() error {
		var firstErr error
		for _, fl := range files {
			if err := fl.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for _, p := range paths {
		file, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		st, err := file.Stat()
		if err != nil {
			file.Close()
			closeAll()
			return nil, nil, err
		}
		files = append(files, file)
		readers = append(readers, file)
		sizes = append(sizes, st.Size())
	}

	total := int64(0)
	for _, s := range sizes {
		total += s
	}

	mrs := reader.NewMultiReadSeeker(readers, sizes)
	dev := &seekerDevice{rs: mrs, size: total}

	fsys, err := Open(dev, opts...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return fsys, closeAll, nil
}
