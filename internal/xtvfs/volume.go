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

import "math"

// Kind of filesystem a volume decoded to. XTVFS is a superset of FAT32; the
// same Filesystem API serves both, dispatching on this tag plus an entry's
// Device attribute bit.
type VolumeKind int

const (
	VolumeFAT32 VolumeKind = iota
	VolumeXTVFS
)

func (k VolumeKind) String() string {
	if k == VolumeXTVFS {
		return "xtvfs"
	}
	return "fat32"
}

// DefaultVideoAreaPercent is the empirical constant XTVFS uses to locate the
// start of the video data area: video_data_begin_lba is derived from this
// fraction of the volume's total sector count. The original reader hardcodes
// 0.02; this is exposed as a parameter (see Open's WithVideoAreaPercent) so
// alternate XTVFS revisions can be tested against a different split without
// touching the derivation formula itself.
const DefaultVideoAreaPercent = 0.02

// VideoSectorsPerCluster is fixed regardless of BPB contents: 47*64 = 3008
// sectors, 3008*512 = 1,540,096 bytes, exactly 8192 MPEG-TS packets.
const VideoSectorsPerCluster = 3008

// VideoClusterBytes is the size in bytes of one video cluster.
const VideoClusterBytes = VideoSectorsPerCluster * SectorSize

// Geometry holds everything computed once at open from the boot sector (and,
// for XTVFS, the marker at LBA 2). It never changes after Open returns.
type Geometry struct {
	Kind VolumeKind

	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	FATSizeSectors    uint32
	TotalSectors      uint32
	RootFirstCluster  uint32

	FileFATBeginLBA     uint64
	ClusterAreaBeginLBA uint64
	VideoFATBeginLBA    uint64
	VideoDataBeginLBA   uint64
}

// decodeFAT32Volume parses the FAT32 BIOS Parameter Block from a 512-byte
// boot sector. It requires the 0x55 0xAA signature, BytsPerSec == 512, and
// NumFATs == 2; any mismatch is BadVolume.
func decodeFAT32Volume(block []byte) (*Geometry, error) {
	if len(block) != SectorSize {
		return nil, newErr(KindBadVolume, "boot sector must be exactly 512 bytes", nil)
	}
	if block[0x1FE] != 0x55 || block[0x1FF] != 0xAA {
		return nil, newErr(KindBadVolume, "missing 0x55AA boot sector signature", nil)
	}

	bytesPerSec := leU16(block, 0x0B)
	if bytesPerSec != SectorSize {
		return nil, newErr(KindBadVolume, "unsupported sector size", nil)
	}

	numFATs := leU8(block, 0x10)
	if numFATs != 2 {
		return nil, newErr(KindBadVolume, "expected exactly 2 FATs", nil)
	}

	g := &Geometry{
		Kind:              VolumeFAT32,
		BytesPerSector:    bytesPerSec,
		SectorsPerCluster: leU8(block, 0x0D),
		ReservedSectors:   leU16(block, 0x0E),
		NumFATs:           numFATs,
		TotalSectors:      leU32(block, 0x20),
		FATSizeSectors:    leU32(block, 0x24),
		RootFirstCluster:  leU32(block, 0x2C),
	}

	g.FileFATBeginLBA = uint64(g.ReservedSectors)
	g.ClusterAreaBeginLBA = uint64(g.ReservedSectors) + uint64(g.NumFATs)*uint64(g.FATSizeSectors)

	return g, nil
}

// fsInfo is the informational content of the FSInfo sector at LBA 1. Free
// cluster and last-allocated counts are decoded but never consulted by the
// decoder; they exist for diagnostic display only.
type fsInfo struct {
	Valid         bool
	FreeClusters  uint32
	LastAllocated uint32
}

// decodeFSInfo validates the three FSInfo signatures (0x41615252 at 0x000,
// 0x61417272 at 0x1E4, 0xAA550000 at 0x1FC) and extracts the two informational
// counters. An invalid signature is not fatal to open: FSInfo is advisory.
func decodeFSInfo(block []byte) fsInfo {
	if len(block) != SectorSize {
		return fsInfo{}
	}
	if leU32(block, 0x000) != 0x41615252 {
		return fsInfo{}
	}
	if leU32(block, 0x1E4) != 0x61417272 {
		return fsInfo{}
	}
	if leU32(block, 0x1FC) != 0xAA550000 {
		return fsInfo{}
	}
	return fsInfo{
		Valid:         true,
		FreeClusters:  leU32(block, 0x1E8),
		LastAllocated: leU32(block, 0x1EC),
	}
}

// xtvfsMarker is "XFS0" little-endian, the signature at offset 0 of LBA 2
// that promotes a volume from FAT32 to XTVFS and unlocks the video-cluster
// extensions (parallel VFAT, 40-bit sizes, 1.5MB clusters).
const xtvfsMarker = 0x30534658

// decodeXTVFS reports whether the block at LBA 2 carries the XFS0 marker.
func decodeXTVFS(block []byte) bool {
	if len(block) < 4 {
		return false
	}
	return leU32(block, 0) == xtvfsMarker
}

// applyXTVFS promotes g to VolumeXTVFS and derives the video FAT and video
// data area offsets. videoAreaPercent overrides DefaultVideoAreaPercent for
// testing against alternate XTVFS revisions.
func (g *Geometry) applyXTVFS(videoAreaPercent float64) {
	g.Kind = VolumeXTVFS
	g.VideoFATBeginLBA = g.FileFATBeginLBA + uint64(g.NumFATs)*uint64(g.FATSizeSectors)

	spc := uint64(g.SectorsPerCluster)
	raw := videoAreaPercent*float64(g.TotalSectors) - float64(g.ClusterAreaBeginLBA)
	clusters := uint64(math.Ceil(raw / float64(spc)))
	g.VideoDataBeginLBA = clusters*spc + g.ClusterAreaBeginLBA
}

// FileClusterBytes returns the size in bytes of one file-FAT cluster.
func (g *Geometry) FileClusterBytes() uint64 {
	return uint64(g.SectorsPerCluster) * SectorSize
}
