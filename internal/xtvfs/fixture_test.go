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

import (
	"encoding/binary"
	"math"
)

// fixture assembles a synthetic FAT32/XTVFS image byte-for-byte, the same
// way a real PVR would lay one out, for tests to drive through the public
// decoder API without touching a real file.
type fixture struct {
	secPerClus uint8
	rsvdSecCnt uint16
	fatSz32    uint32
	totSec32   uint32
	rootClus   uint32
	xtvfs      bool

	fileFATBeginLBA     uint64
	clusterAreaBeginLBA uint64
	videoFATBeginLBA    uint64
	videoDataBeginLBA   uint64

	buf []byte
}

// newFixture computes geometry the same way Geometry/applyXTVFS do and
// allocates a buffer big enough to cover sectorCount 512-byte sectors.
func newFixture(secPerClus uint8, rsvdSecCnt uint16, fatSz32, totSec32, rootClus uint32, xtvfs bool, sectorCount int) *fixture {
	f := &fixture{
		secPerClus: secPerClus,
		rsvdSecCnt: rsvdSecCnt,
		fatSz32:    fatSz32,
		totSec32:   totSec32,
		rootClus:   rootClus,
		xtvfs:      xtvfs,
	}
	f.fileFATBeginLBA = uint64(rsvdSecCnt)
	f.clusterAreaBeginLBA = uint64(rsvdSecCnt) + 2*uint64(fatSz32)

	if xtvfs {
		f.videoFATBeginLBA = f.fileFATBeginLBA + 2*uint64(fatSz32)
		raw := DefaultVideoAreaPercent*float64(totSec32) - float64(f.clusterAreaBeginLBA)
		clusters := uint64(math.Ceil(raw / float64(secPerClus)))
		f.videoDataBeginLBA = clusters*uint64(secPerClus) + f.clusterAreaBeginLBA
	}

	f.buf = make([]byte, sectorCount*SectorSize)

	binary.LittleEndian.PutUint16(f.buf[0x0B:], SectorSize)
	f.buf[0x0D] = secPerClus
	binary.LittleEndian.PutUint16(f.buf[0x0E:], rsvdSecCnt)
	f.buf[0x10] = 2
	binary.LittleEndian.PutUint32(f.buf[0x20:], totSec32)
	binary.LittleEndian.PutUint32(f.buf[0x24:], fatSz32)
	binary.LittleEndian.PutUint32(f.buf[0x2C:], rootClus)
	f.buf[0x1FE] = 0x55
	f.buf[0x1FF] = 0xAA

	if xtvfs {
		copy(f.buf[2*SectorSize:], []byte{0x58, 0x46, 0x53, 0x30})
	}

	return f
}

func (f *fixture) device() BlockDevice { return NewMemDevice(f.buf) }

// setFileFAT writes value into cluster index c of the file FAT.
func (f *fixture) setFileFAT(c uint32, value uint32) {
	off := f.fileFATBeginLBA*SectorSize + uint64(c)*4
	binary.LittleEndian.PutUint32(f.buf[off:], value)
}

// setVideoFAT writes value into cluster index c of the video FAT.
func (f *fixture) setVideoFAT(c uint32, value uint32) {
	off := f.videoFATBeginLBA*SectorSize + uint64(c)*4
	binary.LittleEndian.PutUint32(f.buf[off:], value)
}

// fileClusterOffset returns the byte offset of file cluster c.
func (f *fixture) fileClusterOffset(c uint32) uint64 {
	lba := f.clusterAreaBeginLBA + uint64(c-2)*uint64(f.secPerClus)
	return lba * SectorSize
}

// videoClusterOffset returns the byte offset of video cluster c.
func (f *fixture) videoClusterOffset(c uint32) uint64 {
	lba := f.videoDataBeginLBA + uint64(c-2)*VideoSectorsPerCluster
	return lba * SectorSize
}

// writeFileCluster copies data into file cluster c, starting at its base.
func (f *fixture) writeFileCluster(c uint32, data []byte) {
	off := f.fileClusterOffset(c)
	copy(f.buf[off:], data)
}

// writeVideoCluster fills video cluster c entirely with the repeated byte b.
func (f *fixture) writeVideoCluster(c uint32, b byte) {
	off := f.videoClusterOffset(c)
	region := f.buf[off : off+VideoClusterBytes]
	for i := range region {
		region[i] = b
	}
}

// dirEntry describes a directory record to place with writeDirEntries.
type dirEntry struct {
	name         [11]byte
	attrib       byte
	firstCluster uint32
	sizeLow      uint32
	sizeHighByte byte // XTVFS byte at offset 0x10
}

// writeDirEntries writes a sequence of directory records into file cluster
// c, followed by the zero end-of-directory sentinel implied by the cluster
// having been zero-initialized.
func (f *fixture) writeDirEntries(c uint32, entries []dirEntry) {
	base := f.fileClusterOffset(c)
	for i, e := range entries {
		off := base + uint64(i*dirEntrySize)
		block := f.buf[off : off+dirEntrySize]
		copy(block[0:11], e.name[:])
		block[0x0B] = e.attrib
		block[0x10] = e.sizeHighByte
		binary.LittleEndian.PutUint16(block[0x14:], uint16(e.firstCluster>>16))
		binary.LittleEndian.PutUint16(block[0x1A:], uint16(e.firstCluster&0xFFFF))
		binary.LittleEndian.PutUint32(block[0x1C:], e.sizeLow)
	}
}

func name11(s string) [11]byte {
	var out [11]byte
	for i := range out {
		out[i] = ' '
	}
	copy(out[:], s)
	return out
}
