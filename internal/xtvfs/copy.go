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
	"fmt"
	"io"
)

// Sink is the write target for ReadFile. The decoder makes no assumptions
// about buffering on the other side; it may issue writes of up to one
// cluster at a time (up to VideoClusterBytes for a video entry).
type Sink interface {
	Write(p []byte) error
}

// sinkFunc adapts a plain function to the Sink interface.
type sinkFunc func(p []byte) error

func (f sinkFunc) Write(p []byte) error { return f(p) }

// chainWalker is the pair of primitives a chain walk needs: advance to the
// next cluster, and read the bytes of a cluster. readFile dispatches to the
// file chain or the video chain by constructing the matching walker.
type chainWalker struct {
	fat     *fatEngine
	readers *clusterReader
}

func (w chainWalker) clusterBytes() uint64 { return w.readers.clusterBytes() }

// readFile writes exactly entry.Size bytes to sink, following the file
// chain for an ordinary entry or the video chain for an entry with the
// Device attribute bit set.
func (f *Filesystem) readFile(entry DirEntry, sink Sink) error {
	if entry.Size == 0 && entry.FirstCluster == 0 {
		return nil
	}
	if entry.Size > 0 && entry.FirstCluster == 0 {
		return newErr(KindCorrupt, "non-zero size with no first cluster", nil)
	}

	w := f.walkerFor(entry)
	return walkChain(w, entry.FirstCluster, entry.Size, sink)
}

// walkerFor selects the file or video chain-walking primitives for entry,
// dispatching on its Device attribute bit.
func (f *Filesystem) walkerFor(entry DirEntry) chainWalker {
	if entry.IsVideo() {
		return chainWalker{fat: f.videoFAT, readers: f.videoClusters}
	}
	return chainWalker{fat: f.fileFAT, readers: f.fileClusters}
}

// walkChain drives one cluster chain, writing up to clusterBytes per step
// while remaining > 0, then looks for the chain's terminating sentinel.
// Once the declared size has been delivered, the walk allows exactly one
// more step to find that terminator (the chain may legitimately hold one
// trailing cluster beyond what the byte count strictly needs); anything
// past that tolerance without a terminator is Overrun, an out-of-range
// cluster index encountered along the way is Corrupt, and a terminator
// reached while bytes are still owed is ShortChain.
func walkChain(w chainWalker, first uint32, size uint64, sink Sink) error {
	clusterBytes := w.clusterBytes()

	var expected uint64
	if size > 0 {
		expected = (size + clusterBytes - 1) / clusterBytes
	}

	remaining := size
	cluster := first

	for step := uint64(1); ; step++ {
		if remaining > 0 {
			block, err := w.readers.readCluster(cluster)
			if err != nil {
				return err
			}

			n := clusterBytes
			if n > remaining {
				n = remaining
			}
			if err := sink.Write(block[:n]); err != nil {
				return newErr(KindSinkError, "sink rejected write", err)
			}
			remaining -= n
		}

		raw, err := w.fat.next(cluster)
		if err != nil {
			return err
		}
		if w.fat.isBad(raw) {
			return newErr(KindCorrupt, "chain hit a bad-cluster marker", nil)
		}
		if w.fat.isEnd(raw) {
			if remaining == 0 {
				return nil
			}
			return newErr(KindShortChain, fmt.Sprintf("chain terminated with %d bytes still unwritten", remaining), nil)
		}

		next := raw & clusterMask
		if next < 2 {
			return newErr(KindCorrupt, "chain references an out-of-range cluster index", nil)
		}
		if remaining == 0 && step > expected {
			return newErr(KindOverrun, "end sentinel not reached after file size was delivered", nil)
		}
		cluster = next
	}
}

// videoChainExpectedLength returns ceil(size / VideoClusterBytes), the
// number of video clusters a chain of this byte size must occupy.
func videoChainExpectedLength(size uint64) uint64 {
	if size == 0 {
		return 0
	}
	return (size + VideoClusterBytes - 1) / VideoClusterBytes
}

// VerifyVideoChain walks the video FAT from first, recording visited
// clusters without reading their data, and reports whether the chain is
// exactly as long as size demands and terminates cleanly. It fails
// LoopDetected on a repeated cluster, Overrun once the walk exceeds the
// expected length by more than one step or terminates after more clusters
// than expected, and ShortChain when it terminates after fewer.
func (f *Filesystem) VerifyVideoChain(first uint32, size uint64) error {
	_, err := f.videoChain(first, size)
	return err
}

// VideoChain returns the ordered list of video cluster indices visited
// while following first's chain for size bytes, for low-level inspection
// tools. It applies the same loop and length bounds as VerifyVideoChain.
func (f *Filesystem) VideoChain(first uint32, size uint64) ([]uint32, error) {
	return f.videoChain(first, size)
}

func (f *Filesystem) videoChain(first uint32, size uint64) ([]uint32, error) {
	expected := videoChainExpectedLength(size)
	limit := expected + 1

	visited := make([]uint32, 0, limit+1)
	seen := make(map[uint32]bool, limit+1)

	cluster := first
	for {
		if seen[cluster] {
			return visited, newErr(KindLoopDetected, fmt.Sprintf("video cluster %d revisited", cluster), nil)
		}
		seen[cluster] = true
		visited = append(visited, cluster)

		if uint64(len(visited)) > limit {
			return visited, newErr(KindOverrun, "video chain exceeds expected length", nil)
		}

		raw, err := f.videoFAT.next(cluster)
		if err != nil {
			return visited, err
		}
		if f.videoFAT.isBad(raw) {
			return visited, newErr(KindCorrupt, "video chain hit a bad-cluster marker", nil)
		}
		if f.videoFAT.isEnd(raw) {
			if uint64(len(visited)) < expected {
				return visited, newErr(KindShortChain, fmt.Sprintf("video chain length %d < expected %d", len(visited), expected), nil)
			}
			if uint64(len(visited)) > expected {
				return visited, newErr(KindOverrun, fmt.Sprintf("video chain length %d > expected %d", len(visited), expected), nil)
			}
			return visited, nil
		}
		cluster = raw & clusterMask
	}
}

// WriterSink adapts an io.Writer to Sink, for callers that already have a
// Go writer (a file, a buffer, an io.Pipe) rather than a bespoke sink.
func WriterSink(w io.Writer) Sink {
	return sinkFunc(func(p []byte) error {
		_, err := w.Write(p)
		return err
	})
}
