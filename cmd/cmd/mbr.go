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

	"github.com/skyvault/xtvfsreader/internal/disk"
)

// DefineMBRCommand exposes the Master Boot Record as a standalone
// diagnostic, independent of the XTVFS/FAT32 volume decoder: it never
// selects a partition for open, it only reports what the first sector of
// the device says.
func DefineMBRCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mbr <device_or_image>",
		Short:        "Print the Master Boot Record of a device or image (diagnostic only)",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runMBR,
	}
	return cmd
}

func runMBR(cmd *cobra.Command, args []string) error {
	info, err := disk.Stat(disk.NormalizeVolumePath(args[0]))
	if err != nil {
		return err
	}
	defer info.Close()

	// The MBR itself is always a fixed 512-byte structure regardless of the
	// device's logical sector size; only the partition-entry LBAs below are
	// scaled by the detected size.
	buf := make([]byte, disk.DefaultBlocksize)
	if _, err := info.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("failed to read first sector: %w", err)
	}

	mbr, err := disk.ParseMBR(buf)
	if err != nil {
		return err
	}

	fmt.Println(mbr.String())
	if info.IsDevice {
		fmt.Printf("device geometry: sector_size=%d bytes, total_size=%d bytes\n", info.SectorSize, info.RealSize)
	}

	parts := disk.PartitionsFromMBR(mbr, uint64(info.SectorSize))
	if len(parts) == 0 {
		fmt.Println("\nNo non-empty partition table entries.")
		return nil
	}
	fmt.Println("\n--- Partitions ---")
	for _, p := range parts {
		fmt.Printf("#%d: fstype=%d offset=%d size=%d blocksize=%d\n",
			p.Num, p.FSType, p.Offset, p.Size, p.BlockSize)
	}
	return nil
}
