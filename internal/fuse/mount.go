//go:build !linux
// +build !linux

package fuse

import (
	"fmt"

	"github.com/skyvault/xtvfsreader/internal/xtvfs"
)

func Mount(mountpoint string, fsys *xtvfs.Filesystem) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
