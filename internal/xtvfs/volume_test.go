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
	"testing"

	"github.com/stretchr/testify/require"
)

func validBootSector() []byte {
	b := make([]byte, SectorSize)
	binary.LittleEndian.PutUint16(b[0x0B:], 512)
	b[0x0D] = 8
	binary.LittleEndian.PutUint16(b[0x0E:], 32)
	b[0x10] = 2
	binary.LittleEndian.PutUint32(b[0x20:], 1024)
	binary.LittleEndian.PutUint32(b[0x24:], 1)
	binary.LittleEndian.PutUint32(b[0x2C:], 2)
	b[0x1FE] = 0x55
	b[0x1FF] = 0xAA
	return b
}

func TestDecodeFAT32Volume(t *testing.T) {
	g, err := decodeFAT32Volume(validBootSector())
	require.NoError(t, err)
	require.Equal(t, uint16(512), g.BytesPerSector)
	require.Equal(t, uint8(8), g.SectorsPerCluster)
	require.Equal(t, uint16(32), g.ReservedSectors)
	require.Equal(t, uint8(2), g.NumFATs)
	require.Equal(t, uint32(1), g.FATSizeSectors)
	require.Equal(t, uint32(1024), g.TotalSectors)
	require.Equal(t, uint32(2), g.RootFirstCluster)
	require.Equal(t, uint64(32), g.FileFATBeginLBA)
	require.Equal(t, uint64(34), g.ClusterAreaBeginLBA)
}

func TestDecodeFAT32VolumeWrongSize(t *testing.T) {
	_, err := decodeFAT32Volume(make([]byte, 100))
	require.Error(t, err)
	require.True(t, IsKind(err, KindBadVolume))
}

func TestDecodeFAT32VolumeBadSignature(t *testing.T) {
	b := validBootSector()
	b[0x1FE] = 0
	_, err := decodeFAT32Volume(b)
	require.Error(t, err)
	require.True(t, IsKind(err, KindBadVolume))
}

func TestDecodeFAT32VolumeBadSectorSize(t *testing.T) {
	b := validBootSector()
	binary.LittleEndian.PutUint16(b[0x0B:], 4096)
	_, err := decodeFAT32Volume(b)
	require.Error(t, err)
	require.True(t, IsKind(err, KindBadVolume))
}

func TestDecodeFAT32VolumeBadNumFATs(t *testing.T) {
	b := validBootSector()
	b[0x10] = 1
	_, err := decodeFAT32Volume(b)
	require.Error(t, err)
	require.True(t, IsKind(err, KindBadVolume))
}

func TestDecodeFSInfoValid(t *testing.T) {
	b := make([]byte, SectorSize)
	binary.LittleEndian.PutUint32(b[0x000:], 0x41615252)
	binary.LittleEndian.PutUint32(b[0x1E4:], 0x61417272)
	binary.LittleEndian.PutUint32(b[0x1FC:], 0xAA550000)
	binary.LittleEndian.PutUint32(b[0x1E8:], 123)
	binary.LittleEndian.PutUint32(b[0x1EC:], 456)

	info := decodeFSInfo(b)
	require.True(t, info.Valid)
	require.Equal(t, uint32(123), info.FreeClusters)
	require.Equal(t, uint32(456), info.LastAllocated)
}

func TestDecodeFSInfoInvalidIsNotFatal(t *testing.T) {
	info := decodeFSInfo(make([]byte, SectorSize))
	require.False(t, info.Valid)
}

func TestDecodeXTVFSMarker(t *testing.T) {
	require.True(t, decodeXTVFS([]byte{0x58, 0x46, 0x53, 0x30}))
	require.False(t, decodeXTVFS([]byte{0, 0, 0, 0}))
	require.False(t, decodeXTVFS([]byte{0x58, 0x46, 0x53}))
}

func TestApplyXTVFSDerivesVideoLBAs(t *testing.T) {
	g := &Geometry{
		SectorsPerCluster:   8,
		NumFATs:             2,
		FATSizeSectors:      4,
		TotalSectors:        6000,
		FileFATBeginLBA:     32,
		ClusterAreaBeginLBA: 40,
	}
	g.applyXTVFS(DefaultVideoAreaPercent)

	require.Equal(t, VolumeXTVFS, g.Kind)
	require.Equal(t, uint64(40), g.VideoFATBeginLBA) // 32 + 2*4
	require.Equal(t, uint64(120), g.VideoDataBeginLBA)
}
