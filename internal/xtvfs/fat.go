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

// badCluster is the FAT32 bad-cluster marker. It must never be followed.
const badCluster = 0x0FFFFFF7

// fileChainEnd is the lowest file-FAT value treated as end-of-chain. FAT32
// reserves 0x0FFFFFF8..0x0FFFFFFF for this; an implementation also treats any
// value >= 0x0FFFFFF8 as end.
const fileChainEnd = 0x0FFFFFF8

// videoChainEnd is the video FAT's end-of-chain marker. Unlike the file FAT,
// the on-disk video FAT only ever uses the single, narrower value
// 0x0FFFFFFF, so the video engine's threshold is tighter than the file
// engine's.
const videoChainEnd = 0x0FFFFFFF

// clusterMask strips the reserved top 4 bits of a raw FAT32 entry before
// comparing it against a sentinel.
const clusterMask = 0x0FFFFFFF

// fatEngine models one allocation table: an array of 32-bit little-endian
// entries at LBA beginLBA, addressed by cluster index. The file FAT and the
// video FAT are both instances of this type, parameterized by their base LBA
// and their end-of-chain threshold — the dual-FAT architecture is two values
// of one engine, not two code paths.
type fatEngine struct {
	r        *lbaReader
	beginLBA uint64
	chainEnd uint32 // minimum masked value treated as end-of-chain

	// lastSectorLBA/lastSector cache the most recently read FAT sector so
	// sequential chain-walks (the common case) don't re-read the same
	// sector for every cluster within it.
	lastSectorLBA uint64
	lastSector    []byte
	haveLast      bool
}

func newFatEngine(r *lbaReader, beginLBA uint64, chainEnd uint32) *fatEngine {
	return &fatEngine{r: r, beginLBA: beginLBA, chainEnd: chainEnd}
}

// isEnd reports whether a raw FAT entry value marks end-of-chain for this
// engine's threshold.
func (e *fatEngine) isEnd(raw uint32) bool {
	return raw&clusterMask >= e.chainEnd
}

// isBad reports whether a raw FAT entry is the bad-cluster marker.
func (e *fatEngine) isBad(raw uint32) bool {
	return raw&clusterMask == badCluster
}

// next returns the raw 32-bit FAT entry for cluster c. Callers interpret the
// sentinel meaning via isEnd/isBad; next itself does no chain-following.
func (e *fatEngine) next(c uint32) (uint32, error) {
	if c < 2 {
		return 0, newErr(KindCorrupt, fmt.Sprintf("cluster index %d out of range", c), nil)
	}

	sectorLBA := e.beginLBA + uint64(c>>7)
	byteOff := (int(c) & 0x7F) * 4

	if !e.haveLast || sectorLBA != e.lastSectorLBA {
		sector, err := e.r.readLBA(sectorLBA)
		if err != nil {
			return 0, err
		}
		e.lastSector = sector
		e.lastSectorLBA = sectorLBA
		e.haveLast = true
	}

	return leU32(e.lastSector, byteOff), nil
}
