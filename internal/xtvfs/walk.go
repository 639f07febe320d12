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

const dirEntrySize = 32

// readDirectory reads all directory entries reachable from startCluster,
// following the file FAT chain (directory entries always live in file
// clusters, even when they describe video data). It stops on the first
// end-of-directory sentinel (name byte 0x00), skips deleted (0xE5) and LFN
// records, and tolerates a chain that runs out without an explicit
// terminator by returning what it has gathered so far.
func (f *Filesystem) readDirectory(startCluster uint32) ([]DirEntry, error) {
	var entries []DirEntry

	cluster := startCluster
	for {
		block, err := f.fileClusters.readCluster(cluster)
		if err != nil {
			return nil, err
		}

		done, err := f.scanDirectoryBlock(block, &entries)
		if err != nil {
			return nil, err
		}
		if done {
			return entries, nil
		}

		raw, err := f.fileFAT.next(cluster)
		if err != nil {
			return nil, err
		}
		if f.fileFAT.isBad(raw) {
			return nil, newErr(KindCorrupt, "directory chain hit a bad-cluster marker", nil)
		}
		if f.fileFAT.isEnd(raw) {
			f.warnf("directory at cluster %d ran off its chain without an explicit end-of-directory terminator", startCluster)
			return entries, nil
		}
		cluster = raw & clusterMask
	}
}

// scanDirectoryBlock decodes every 32-byte record in block, appending live
// entries to *entries. It reports done=true once the end-of-directory
// sentinel is seen within this block.
func (f *Filesystem) scanDirectoryBlock(block []byte, entries *[]DirEntry) (done bool, err error) {
	for off := 0; off+dirEntrySize <= len(block); off += dirEntrySize {
		e := decodeDirEntry(block, off, f.geometry.Kind)

		if e.IsEndOfDirectory() {
			return true, nil
		}
		if e.IsDeleted() {
			continue
		}
		if e.IsLFN() {
			continue
		}
		*entries = append(*entries, e)
	}
	return false, nil
}
