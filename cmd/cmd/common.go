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
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skyvault/xtvfsreader/internal/disk"
	"github.com/skyvault/xtvfsreader/internal/logger"
	"github.com/skyvault/xtvfsreader/internal/xtvfs"
	osutil "github.com/skyvault/xtvfsreader/pkg/util/os"
)

// openVolume opens an image (or, when segments is non-empty, an ordered set
// of split-image segments) and returns the decoded handle plus a closer.
// When --debug is set on cmd or an ancestor, decoder diagnostics are logged
// to stderr. Each path is normalized first, so a bare drive letter like "E:"
// resolves to the \\.\E: raw-volume form on Windows.
func openVolume(cmd *cobra.Command, imagePath string, segments []string) (*xtvfs.Filesystem, func() error, error) {
	paths := append([]string{imagePath}, segments...)
	for i, p := range paths {
		paths[i] = disk.NormalizeVolumePath(p)
	}

	paths, err := expandSegmentPaths(paths)
	if err != nil {
		return nil, nil, err
	}

	var opts []xtvfs.OpenOption
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		opts = append(opts, xtvfs.WithLogger(logger.New(os.Stderr, logger.DebugLevel)))
	}

	if useMmap, _ := cmd.Flags().GetBool("mmap"); useMmap {
		if len(paths) > 1 {
			return nil, nil, fmt.Errorf("--mmap cannot be combined with --segment")
		}
		return xtvfs.OpenImageMmap(paths[0], opts...)
	}

	return xtvfs.OpenImage(paths, opts...)
}

// expandSegmentPaths resolves each entry in paths to one or more regular
// files. A plain file (or a raw device path, which os.Stat reports as
// non-regular) passes through unchanged; a directory expands to the
// regular files it directly contains, in the order ListFiles returns them,
// so a split image's segments can be grouped under one directory instead
// of named individually with repeated --segment flags.
func expandSegmentPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil || !fi.IsDir() {
			out = append(out, p)
			continue
		}

		files, err := osutil.ListFiles(p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}
