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

func TestTo11CharRoundTrip(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"hello.txt", "hello.txt"},
		{"README", "readme"},
		{"a.b", "a.b"},
		{"LONGNAME.TXT", "longname.txt"}, // fills all 11 bytes, nothing truncated
		{"x.123456", "x.123"},            // extension truncated to 3
	}
	for _, c := range cases {
		raw := to11Char(c.in)
		require.Len(t, raw, 11)
		require.Equal(t, c.want, from11Char(raw))
	}
}

func TestFrom11CharTrimsAndLowercases(t *testing.T) {
	require.Equal(t, "hello.txt", from11Char(name11("HELLO   TXT")))
	require.Equal(t, "readme", from11Char(name11("README")))
	require.Equal(t, "rec00000.str", from11Char(name11("REC00000STR")))
}

func TestNameRoundTripInvariant(t *testing.T) {
	// from_11char(to_11char(x)) == lowercase(x) for 8.3-shaped names.
	cases := []string{"HELLO", "HELLO.TXT", "A.B", "ABCDEFGH.XYZ"}
	for _, x := range cases {
		got := from11Char(to11Char(x))
		require.Equal(t, lowercaseDotted(x), got)
	}
}

// lowercaseDotted reproduces the expected shape of an already 8.3-valid
// input under the round-trip invariant: same characters, lowercased.
func lowercaseDotted(x string) string {
	out := make([]byte, len(x))
	for i := 0; i < len(x); i++ {
		c := x[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

func TestAttrStringBitsAndLFN(t *testing.T) {
	e := DirEntry{Attrib: AttrReadOnly | AttrDir | AttrDevice}
	require.Equal(t, "R...D.X.", e.AttrString())

	lfn := DirEntry{Attrib: 0x0F}
	require.Equal(t, "LFN", lfn.AttrString())
}

func TestDecodeDirEntryFAT32Size(t *testing.T) {
	block := make([]byte, dirEntrySize)
	binary.LittleEndian.PutUint32(block[0x1C:], 12345)
	block[0x10] = 0xFF // ignored under plain FAT32

	e := decodeDirEntry(block, 0, VolumeFAT32)
	require.Equal(t, uint64(12345), e.Size)
}

func TestDecodeDirEntryXTVFS40BitSize(t *testing.T) {
	block := make([]byte, dirEntrySize)
	binary.LittleEndian.PutUint32(block[0x1C:], 0)
	block[0x10] = 0x02

	e := decodeDirEntry(block, 0, VolumeXTVFS)
	require.Equal(t, uint64(0x0000000200000000), e.Size)
}

func TestDirEntryPredicates(t *testing.T) {
	deleted := DirEntry{NameRaw: name11(string([]byte{0xE5}) + "ELLO   TXT")}
	require.True(t, deleted.IsDeleted())

	end := DirEntry{}
	require.True(t, end.IsEndOfDirectory())

	lfn := DirEntry{Attrib: 0x0F}
	require.True(t, lfn.IsLFN())

	video := DirEntry{Attrib: AttrDevice}
	require.True(t, video.IsVideo())
	require.False(t, video.IsDir())
}
