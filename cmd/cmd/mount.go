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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skyvault/xtvfsreader/internal/fuse"
)

func DefineMountCommand() *cobra.Command {
	var segments []string

	cmd := &cobra.Command{
		Use:   "mount <image_path>",
		Short: "Mount an XTVFS or FAT32 image read-only via FUSE",
		Long: `The 'mount' command decodes the volume at image_path and serves it as a
read-only FUSE filesystem. Directories, files, and 40-bit video-file sizes
are resolved directly from the decoder, the same way 'ls'/'stat'/'cat' do.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMount(cmd, args[0], segments)
		},
	}

	cmd.Flags().StringP("mountpoint", "m", "", "absolute path to the directory where the filesystem will be mounted. If not specified, a default will be generated.")
	cmd.Flags().StringSliceVar(&segments, "segment", nil, "additional split-image segment, in order, appended after the primary image")
	return cmd
}

func runMount(cmd *cobra.Command, imagePath string, segments []string) error {
	fsys, closeFn, err := openVolume(cmd, imagePath, segments)
	if err != nil {
		return err
	}
	defer closeFn()

	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		mountpoint = getMountpoint(imagePath)
	}

	return fuse.Mount(mountpoint, fsys)
}

// getMountpoint generates a mountpoint name from an image path by stripping
// its extension. If the extension is empty, "_mnt" is added.
func getMountpoint(imagePath string) string {
	baseName := filepath.Base(imagePath)
	ext := filepath.Ext(baseName)
	baseName = strings.TrimSuffix(baseName, ext)
	mountpoint := baseName
	if ext == "" {
		mountpoint += "_mnt"
	}
	return mountpoint
}
