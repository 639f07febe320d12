package cmd

import (
	"github.com/spf13/cobra"
)

const AppName = "xtvfsctl"

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - read-only decoder for the XTVFS PVR filesystem",
	}

	rootCmd.PersistentFlags().BoolP("debug", "v", false, "log decoder diagnostics (XTVFS/FAT32 fallback, tolerated chain anomalies) to stderr")
	rootCmd.PersistentFlags().Bool("mmap", false, "back the volume with a memory-mapped region instead of buffered reads (single image only, no --segment)")

	rootCmd.AddCommand(DefineLsCommand())
	rootCmd.AddCommand(DefineStatCommand())
	rootCmd.AddCommand(DefineCatCommand())
	rootCmd.AddCommand(DefineMountCommand())
	rootCmd.AddCommand(DefineMBRCommand())

	return rootCmd.Execute()
}
