//go:build linux
// +build linux

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
package fuse

import (
	"context"
	"os"
	"sort"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/skyvault/xtvfsreader/internal/xtvfs"
)

// VolumeFS is the root of a read-only FUSE tree backed by a decoded XTVFS
// or FAT32 volume. It makes the same read_directory/stat/read_file surface
// the decoder exposes to in-process callers visible to the host OS as a
// real directory.
type VolumeFS struct {
	fsys *xtvfs.Filesystem
}

// NewVolumeFS wraps an already-open decoder handle for FUSE mounting.
func NewVolumeFS(fsys *xtvfs.Filesystem) *VolumeFS {
	return &VolumeFS{fsys: fsys}
}

func (v *VolumeFS) Root() (fs.Node, error) {
	return &Dir{fsys: v.fsys, cluster: v.fsys.Geometry().RootFirstCluster}, nil
}

// Dir implements fs.Node, fs.HandleReadDirAller and fs.NodeStringLookuper
// for one XTVFS/FAT32 directory, identified by its first cluster.
type Dir struct {
	fsys    *xtvfs.Filesystem
	cluster uint32
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	entries, err := d.fsys.ReadDirectory(d.cluster)
	if err != nil {
		return nil, fuse.EIO
	}
	for _, e := range entries {
		if e.Name() == name {
			if e.IsDir() {
				return &Dir{fsys: d.fsys, cluster: e.FirstCluster}, nil
			}
			return &File{fsys: d.fsys, entry: e}, nil
		}
	}
	return nil, fuse.ENOENT
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := d.fsys.ReadDirectory(d.cluster)
	if err != nil {
		return nil, fuse.EIO
	}

	dirEntries := make([]fuse.Dirent, len(entries))
	for i, e := range entries {
		typ := fuse.DT_File
		if e.IsDir() {
			typ = fuse.DT_Dir
		}
		dirEntries[i] = fuse.Dirent{
			Inode: uint64(i + 1),
			Name:  e.Name(),
			Type:  typ,
		}
	}
	sort.Slice(dirEntries, func(i, j int) bool {
		return dirEntries[i].Name < dirEntries[j].Name
	})
	return dirEntries, nil
}

// File implements fs.Node and fs.HandleReader for one regular or video
// directory entry. Reads are served by copying the entry's full content
// into an in-memory buffer on first access; the decoder's chain walker has
// no notion of a byte-range seek, so random access is built on top of it
// rather than threaded through it.
type File struct {
	fsys  *xtvfs.Filesystem
	entry xtvfs.DirEntry

	data []byte
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = f.entry.Size
	a.Mtime = time.Now()
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	if f.data == nil {
		buf := make([]byte, 0, f.entry.Size)
		sink := xtvfs.WriterSink(sliceWriter{&buf})
		if err := f.fsys.ReadFile(f.entry, sink); err != nil {
			return fuse.EIO
		}
		f.data = buf
	}

	offset := req.Offset
	size := int64(req.Size)
	if offset >= int64(len(f.data)) {
		resp.Data = []byte{}
		return nil
	}
	if offset+size > int64(len(f.data)) {
		size = int64(len(f.data)) - offset
	}
	resp.Data = f.data[offset : offset+size]
	return nil
}

// sliceWriter implements io.Writer by appending to a backing byte slice,
// the small glue xtvfs.WriterSink needs to target an in-memory buffer.
type sliceWriter struct{ buf *[]byte }

func (w sliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}
