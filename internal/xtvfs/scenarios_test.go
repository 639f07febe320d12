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
//
// Scenarios S1-S6 below are literal end-to-end walkthroughs: a minimal FAT32
// image (S1-S4) and a minimal XTVFS image (S5-S6), each built byte-for-byte
// and driven through the public Filesystem API.
package xtvfs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// S1: minimal FAT32 image, empty root directory.
func TestScenarioS1EmptyRoot(t *testing.T) {
	f := newFixture(8, 32, 1, 1024, 2, false, 50)

	fsys, err := Open(f.device())
	require.NoError(t, err)

	entries, err := fsys.ReadDirectory(fsys.Geometry().RootFirstCluster)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// S2: root holds one regular file, chain ends cleanly in its own cluster.
func TestScenarioS2ReadFileSucceeds(t *testing.T) {
	f := newFixture(8, 32, 1, 1024, 2, false, 50)
	f.writeDirEntries(2, []dirEntry{
		{name: name11("HELLO   TXT"), attrib: AttrArchive, firstCluster: 3, sizeLow: 5},
	})
	f.writeFileCluster(3, []byte("Hello"))
	f.setFileFAT(3, fileChainEnd) // 0x0FFFFFF8, a valid end-of-chain value

	fsys, err := Open(f.device())
	require.NoError(t, err)

	var buf bytes.Buffer
	err = fsys.ReadFile(DirEntry{NameRaw: name11("HELLO   TXT"), Attrib: AttrArchive, FirstCluster: 3, Size: 5}, WriterSink(&buf))
	require.NoError(t, err)
	require.Equal(t, "Hello", buf.String())
}

// S3: the chain continues past the satisfied size into a cluster whose own
// FAT entry was never set (0), an out-of-range index -> Corrupt.
func TestScenarioS3CorruptOnZeroClusterMidChain(t *testing.T) {
	f := newFixture(8, 32, 1, 1024, 2, false, 60)
	f.writeFileCluster(3, []byte("Hello"))
	f.setFileFAT(3, 4) // not an end sentinel; FAT[4] is left at 0

	fsys, err := Open(f.device())
	require.NoError(t, err)

	var buf bytes.Buffer
	entry := DirEntry{NameRaw: name11("HELLO   TXT"), Attrib: AttrArchive, FirstCluster: 3, Size: 5}
	err = fsys.ReadFile(entry, WriterSink(&buf))
	require.Error(t, err)
	require.True(t, IsKind(err, KindCorrupt))
}

// S4 (adapted): the spec's literal S4 numbers are self-contradictory — size
// 5000 against two 4096-byte clusters (8192 bytes) would succeed, not fail
// ShortChain as stated. This reproduces the same shape (a chain shorter than
// the declared size) with consistent numbers: size 9000 needs 3 clusters,
// the chain supplies only 2.
func TestScenarioS4AdaptedShortChain(t *testing.T) {
	f := newFixture(8, 32, 1, 1024, 2, false, 60)
	f.writeFileCluster(3, bytes.Repeat([]byte{0xAA}, 4096))
	f.writeFileCluster(4, bytes.Repeat([]byte{0xBB}, 4096))
	f.setFileFAT(3, 4)
	f.setFileFAT(4, fileChainEnd)

	fsys, err := Open(f.device())
	require.NoError(t, err)

	var buf bytes.Buffer
	entry := DirEntry{NameRaw: name11("HELLO   TXT"), Attrib: AttrArchive, FirstCluster: 3, Size: 9000}
	err = fsys.ReadFile(entry, WriterSink(&buf))
	require.Error(t, err)
	require.True(t, IsKind(err, KindShortChain))
	require.Equal(t, 8192, buf.Len())
}

// xtvfsFixture builds the shared S5/S6 image: one video entry whose chain
// is deliberately too short for its declared 40-bit size. The root directory
// lives in file cluster 3, because file cluster 2's sectors hold the video
// FAT on this layout and setVideoFAT would overwrite records placed there.
func xtvfsFixture() *fixture {
	f := newFixture(8, 32, 4, 6000, 3, true, 6136)
	f.writeDirEntries(3, []dirEntry{
		{name: name11("REC00000STR"), attrib: AttrDevice, firstCluster: 2, sizeLow: 0, sizeHighByte: 0x02},
	})
	f.setVideoFAT(2, 3)
	f.setVideoFAT(3, videoChainEnd)
	f.writeVideoCluster(2, 0x11)
	f.writeVideoCluster(3, 0x22)
	return f
}

// S5: 40-bit size decoding for a video entry.
func TestScenarioS5FortyBitSize(t *testing.T) {
	f := xtvfsFixture()

	fsys, err := Open(f.device())
	require.NoError(t, err)
	require.Equal(t, VolumeXTVFS, fsys.Kind())

	entry, err := fsys.Stat("/rec00000.str")
	require.NoError(t, err)
	require.Equal(t, uint64(0x0000000200000000), entry.Size)
}

// S6: the declared size needs far more than the 2-cluster chain on disk;
// ReadFile fails ShortChain after delivering exactly the 2 clusters' worth
// of bytes it could follow.
func TestScenarioS6ShortVideoChain(t *testing.T) {
	f := xtvfsFixture()

	fsys, err := Open(f.device())
	require.NoError(t, err)

	entry, err := fsys.Stat("/rec00000.str")
	require.NoError(t, err)

	var buf bytes.Buffer
	err = fsys.ReadFile(entry, WriterSink(&buf))
	require.Error(t, err)
	require.True(t, IsKind(err, KindShortChain))
	require.Equal(t, 2*VideoClusterBytes, uint64(buf.Len()))
}
