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

func newTestFATBuffer(entries map[uint32]uint32) []byte {
	buf := make([]byte, SectorSize)
	for c, v := range entries {
		binary.LittleEndian.PutUint32(buf[c*4:], v)
	}
	return buf
}

func TestFatEngineFileThreshold(t *testing.T) {
	buf := newTestFATBuffer(map[uint32]uint32{
		3: 4,
		4: 0x0FFFFFF8, // lowest file-chain-end value
		5: badCluster,
	})
	dev := NewMemDevice(buf)
	e := newFatEngine(newLBAReader(dev), 0, fileChainEnd)

	raw, err := e.next(3)
	require.NoError(t, err)
	require.Equal(t, uint32(4), raw)
	require.False(t, e.isEnd(raw))
	require.False(t, e.isBad(raw))

	raw, err = e.next(4)
	require.NoError(t, err)
	require.True(t, e.isEnd(raw))

	raw, err = e.next(5)
	require.NoError(t, err)
	require.True(t, e.isBad(raw))
}

func TestFatEngineVideoThresholdIsNarrower(t *testing.T) {
	// 0x0FFFFFF8 is end-of-chain for the file FAT but NOT for the video FAT,
	// which only treats the single value 0x0FFFFFFF as its terminator.
	buf := newTestFATBuffer(map[uint32]uint32{
		2: 0x0FFFFFF8,
		3: 0x0FFFFFFF,
	})
	dev := NewMemDevice(buf)
	e := newFatEngine(newLBAReader(dev), 0, videoChainEnd)

	raw, err := e.next(2)
	require.NoError(t, err)
	require.False(t, e.isEnd(raw))

	raw, err = e.next(3)
	require.NoError(t, err)
	require.True(t, e.isEnd(raw))
}

func TestFatEngineRejectsOutOfRangeCluster(t *testing.T) {
	dev := NewMemDevice(make([]byte, SectorSize))
	e := newFatEngine(newLBAReader(dev), 0, fileChainEnd)

	_, err := e.next(0)
	require.Error(t, err)
	require.True(t, IsKind(err, KindCorrupt))

	_, err = e.next(1)
	require.Error(t, err)
	require.True(t, IsKind(err, KindCorrupt))
}

func TestFatEngineTopBitsMaskedBeforeSentinelCompare(t *testing.T) {
	// The top 4 bits of a raw FAT32 entry are reserved; next() returns the
	// raw value but isEnd/isBad must compare on the masked 28-bit value.
	buf := newTestFATBuffer(map[uint32]uint32{
		3: 0xF0000000 | videoChainEnd,
	})
	dev := NewMemDevice(buf)
	e := newFatEngine(newLBAReader(dev), 0, videoChainEnd)

	raw, err := e.next(3)
	require.NoError(t, err)
	require.True(t, e.isEnd(raw))
}
