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

	"github.com/spf13/cobra"

	"github.com/skyvault/xtvfsreader/pkg/util/format"
)

func DefineStatCommand() *cobra.Command {
	var segments []string

	cmd := &cobra.Command{
		Use:          "stat <image_path> <path>",
		Short:        "Show the decoded directory entry for a path inside an XTVFS or FAT32 image",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStat(cmd, args[0], segments, args[1])
		},
	}

	cmd.Flags().StringSliceVar(&segments, "segment", nil, "additional split-image segment, in order, appended after the primary image")
	return cmd
}

func runStat(cmd *cobra.Command, imagePath string, segments []string, path string) error {
	fsys, closeFn, err := openVolume(cmd, imagePath, segments)
	if err != nil {
		return err
	}
	defer closeFn()

	entry, err := fsys.Stat(path)
	if err != nil {
		return err
	}

	fmt.Printf("Name:        %s\n", entry.Name())
	fmt.Printf("Attributes:  %s\n", entry.AttrString())
	fmt.Printf("Directory:   %t\n", entry.IsDir())
	fmt.Printf("Video:       %t\n", entry.IsVideo())
	fmt.Printf("Cluster:     %d\n", entry.FirstCluster)
	fmt.Printf("Size:        %d bytes (%s)\n", entry.Size, format.FormatBytes(int64(entry.Size)))
	return nil
}
