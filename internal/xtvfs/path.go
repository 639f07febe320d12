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

// splitPath normalizes a '/'- or '\'-separated path into its non-empty
// components, discarding leading/trailing/duplicate separators.
func splitPath(path string) []string {
	norm := strings.ReplaceAll(path, "\\", "/")
	parts := strings.Split(norm, "/")

	comps := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			comps = append(comps, p)
		}
	}
	return comps
}

// stat resolves path to the DirEntry it names, descending from the root
// cluster one 8.3 component at a time.
func (f *Filesystem) stat(path string) (DirEntry, error) {
	comps := splitPath(path)
	if len(comps) == 0 {
		return DirEntry{}, newErr(KindNotFound, "empty path", nil)
	}

	cluster := f.geometry.RootFirstCluster

	for i, comp := range comps {
		raw := to11Char(comp)

		entries, err := f.readDirectory(cluster)
		if err != nil {
			return DirEntry{}, err
		}

		found, ok := findByRawName(entries, raw)
		if !ok {
			return DirEntry{}, newErr(KindNotFound, "no such entry: "+path, nil)
		}

		last := i == len(comps)-1
		if last {
			return found, nil
		}
		if !found.IsDir() {
			return DirEntry{}, newErr(KindNotFound, "not a directory: "+comp, nil)
		}
		cluster = found.FirstCluster
	}

	// unreachable: comps is non-empty, so the loop always returns.
	return DirEntry{}, newErr(KindNotFound, "no such entry: "+path, nil)
}

func findByRawName(entries []DirEntry, raw [11]byte) (DirEntry, bool) {
	for _, e := range entries {
		if e.NameRaw == raw {
			return e, true
		}
	}
	return DirEntry{}, false
}
