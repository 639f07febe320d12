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
	"io"

	"github.com/spf13/cobra"

	"github.com/skyvault/xtvfsreader/internal/xtvfs"
	"github.com/skyvault/xtvfsreader/pkg/pbar"
	fileutil "github.com/skyvault/xtvfsreader/pkg/util/io"
)

func DefineCatCommand() *cobra.Command {
	var segments []string
	var outPath string
	var progress bool
	var verifyVideo bool

	cmd := &cobra.Command{
		Use:          "cat <image_path> <path>",
		Short:        "Extract a file out of an XTVFS or FAT32 image",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(cmd, args[0], segments, args[1], outPath, progress, verifyVideo)
		},
	}

	cmd.Flags().StringSliceVar(&segments, "segment", nil, "additional split-image segment, in order, appended after the primary image")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "destination file path (required)")
	cmd.Flags().BoolVar(&progress, "progress", false, "render a progress bar while extracting")
	cmd.Flags().BoolVar(&verifyVideo, "verify-video-chain", false, "for a video entry, verify the video FAT chain before extracting")
	cmd.MarkFlagRequired("out")
	return cmd
}

func runCat(cmd *cobra.Command, imagePath string, segments []string, path, outPath string, progress, verifyVideo bool) error {
	fsys, closeFn, err := openVolume(cmd, imagePath, segments)
	if err != nil {
		return err
	}
	defer closeFn()

	entry, err := fsys.Stat(path)
	if err != nil {
		return err
	}
	if entry.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	if verifyVideo && entry.IsVideo() {
		if err := fsys.VerifyVideoChain(entry.FirstCluster, entry.Size); err != nil {
			return fmt.Errorf("video chain verification failed: %w", err)
		}
	}

	pr, pw := io.Pipe()

	var bar *pbar.ProgressBarState
	if progress {
		bar = pbar.NewProgressBarState(int64(entry.Size))
	}

	readErrCh := make(chan error, 1)
	go func() {
		sink := xtvfs.WriterSink(pw)
		if bar != nil {
			sink = progressSink{inner: sink, bar: bar}
		}
		readErrCh <- pw.CloseWithError(fsys.ReadFile(entry, sink))
	}()

	if err := fileutil.CopyFile(outPath, pr); err != nil {
		return err
	}
	if bar != nil {
		bar.Render(true)
		bar.Finish()
	}

	if err := <-readErrCh; err != nil && err != io.EOF {
		return err
	}
	return nil
}

// progressSink wraps a Sink, rendering bar on every write so a `cat` of a
// large .STR recording reports progress the same way a carving scan would.
type progressSink struct {
	inner xtvfs.Sink
	bar   *pbar.ProgressBarState
}

func (s progressSink) Write(p []byte) error {
	if err := s.inner.Write(p); err != nil {
		return err
	}
	s.bar.ProcessedBytes += int64(len(p))
	s.bar.Render(false)
	return nil
}
