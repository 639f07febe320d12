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

import "strings"

// Directory entry attribute bits (byte 0x0B of the 32-byte record).
const (
	AttrReadOnly = 1 << 0
	AttrHidden   = 1 << 1
	AttrSystem   = 1 << 2
	AttrVolumeID = 1 << 3
	AttrDir      = 1 << 4
	AttrArchive  = 1 << 5
	// AttrDevice is XTVFS-specific: set on video (.STR) entries, selecting
	// the video-cluster reader instead of the file-cluster reader.
	AttrDevice = 1 << 6
	// AttrNormal is XTVFS-specific; the original reader calls it "Normal"
	// without further documented meaning.
	AttrNormal = 1 << 7
)

const lfnAttrMask = 0x0F
const lfnAttrValue = 0x0F

const deletedMarker = 0xE5

// DirEntry is a decoded 32-byte directory record.
type DirEntry struct {
	NameRaw      [11]byte
	Attrib       uint8
	FirstCluster uint32
	Size         uint64
}

// IsDeleted reports whether the entry's first name byte is the 0xE5 deleted
// marker.
func (e DirEntry) IsDeleted() bool { return e.NameRaw[0] == deletedMarker }

// IsEndOfDirectory reports whether this record is the end-of-directory
// sentinel (first name byte 0x00).
func (e DirEntry) IsEndOfDirectory() bool { return e.NameRaw[0] == 0x00 }

// IsLFN reports whether this record is a Long File Name fragment, which this
// reader recognizes and skips rather than assembling.
func (e DirEntry) IsLFN() bool { return e.Attrib&lfnAttrMask == lfnAttrValue }

func (e DirEntry) IsReadOnly() bool { return e.Attrib&AttrReadOnly != 0 }
func (e DirEntry) IsHidden() bool   { return e.Attrib&AttrHidden != 0 }
func (e DirEntry) IsSystem() bool   { return e.Attrib&AttrSystem != 0 }
func (e DirEntry) IsVolumeID() bool { return e.Attrib&AttrVolumeID != 0 }
func (e DirEntry) IsDir() bool      { return e.Attrib&AttrDir != 0 }
func (e DirEntry) IsArchive() bool  { return e.Attrib&AttrArchive != 0 }

// IsVideo reports whether the entry's attribute Device bit is set, selecting
// the video-cluster chain (video FAT + video-cluster reader) over the
// ordinary file chain.
func (e DirEntry) IsVideo() bool { return e.Attrib&AttrDevice != 0 }

// Name returns the entry's 8.3 name in lowercase, dotted form (e.g.
// "rec00000.str"), for display only. Lookups must use NameRaw directly.
func (e DirEntry) Name() string { return from11Char(e.NameRaw) }

// AttrString renders the eight attribute bits as a fixed-width string:
// R/H/S/V/D/A for the standard bits, X for XTVFS's Device bit, N for XTVFS's
// Normal bit, '.' as filler for an unset bit, or the literal "LFN" for a
// long-name fragment. Presentation only; does not affect decoding.
func (e DirEntry) AttrString() string {
	if e.IsLFN() {
		return "LFN"
	}

	bits := []struct {
		mask byte
		ch   byte
	}{
		{AttrReadOnly, 'R'},
		{AttrHidden, 'H'},
		{AttrSystem, 'S'},
		{AttrVolumeID, 'V'},
		{AttrDir, 'D'},
		{AttrArchive, 'A'},
		{AttrDevice, 'X'},
		{AttrNormal, 'N'},
	}

	var b strings.Builder
	for _, bit := range bits {
		if e.Attrib&bit.mask != 0 {
			b.WriteByte(bit.ch)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// decodeDirEntry decodes a 32-byte directory record starting at offset off
// in block. Under XTVFS, the high byte of the 40-bit size lives at offset
// 0x10 of the record and is promoted into bits 32..39 of Size.
func decodeDirEntry(block []byte, off int, kind VolumeKind) DirEntry {
	var e DirEntry
	copy(e.NameRaw[:], block[off:off+11])
	e.Attrib = block[off+0x0B]

	hi := uint32(leU16(block, off+0x14))
	lo := uint32(leU16(block, off+0x1A))
	e.FirstCluster = hi<<16 | lo

	size := uint64(leU32(block, off+0x1C))
	if kind == VolumeXTVFS {
		size |= uint64(block[off+0x10]) << 32
	}
	e.Size = size

	return e
}

// to11Char converts a human filename to its 11-byte 8.3 directory-entry
// form: the portion before the first '.' fills bytes 0..8 (space-padded,
// truncated at 8), the portion after fills bytes 8..11 (space-padded,
// truncated at 3), and the whole thing is uppercased. A name with no '.'
// fills bytes 0..8 from its first 8 characters and leaves the extension
// blank.
func to11Char(name string) [11]byte {
	var out [11]byte
	for i := range out {
		out[i] = ' '
	}

	base := name
	ext := ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		base = name[:i]
		ext = name[i+1:]
	}

	if len(base) > 8 {
		base = base[:8]
	}
	if len(ext) > 3 {
		ext = ext[:3]
	}

	copy(out[0:8], strings.ToUpper(base))
	copy(out[8:11], strings.ToUpper(ext))

	return out
}

// from11Char converts an 11-byte 8.3 directory-entry name back to its
// human, lowercase, dotted form, trimming trailing spaces from each half
// independently. Used only for display.
func from11Char(raw [11]byte) string {
	base := strings.TrimRight(string(raw[0:8]), " ")
	ext := strings.TrimRight(string(raw[8:11]), " ")

	s := base
	if ext != "" {
		s += "." + ext
	}
	return strings.ToLower(s)
}
