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

// clusterReader reads whole clusters from a cluster-addressed area of the
// image: the file-cluster area (sectorsPerCluster from the BPB, base =
// reserved_sectors + num_fats*fat_size_sectors) or the video-cluster area
// (fixed 3008 sectors per cluster, base derived in Geometry.applyXTVFS).
// Clusters are numbered from 2; there is no cluster 0 or 1.
type clusterReader struct {
	r                 *lbaReader
	beginLBA          uint64
	sectorsPerCluster uint32
}

func newClusterReader(r *lbaReader, beginLBA uint64, sectorsPerCluster uint32) *clusterReader {
	return &clusterReader{r: r, beginLBA: beginLBA, sectorsPerCluster: sectorsPerCluster}
}

func (c *clusterReader) clusterBytes() uint64 {
	return uint64(c.sectorsPerCluster) * SectorSize
}

func (c *clusterReader) readCluster(cluster uint32) ([]byte, error) {
	if cluster < 2 {
		return nil, newErr(KindCorrupt, fmt.Sprintf("cluster index %d out of range", cluster), nil)
	}
	lba := c.beginLBA + uint64(cluster-2)*uint64(c.sectorsPerCluster)
	return c.r.readLBARun(lba, c.sectorsPerCluster)
}
