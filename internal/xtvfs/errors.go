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

// Package xtvfs decodes the XTVFS filesystem: a FAT32 superset used by Sky+-style
// set-top PVRs, where recorded video streams live in a second, parallel allocation
// table with larger clusters and 40-bit file sizes.
package xtvfs

import (
	"errors"
	"fmt"
)

// Kind classifies the failure mode of a decoder operation.
type Kind int

const (
	// KindIO covers short reads, seeks past the end of the image, and other
	// failures from the underlying block device.
	KindIO Kind = iota
	// KindBadVolume covers a boot sector that fails sanity checks: wrong
	// signature, unsupported sector size, or an unexpected FAT count.
	KindBadVolume
	// KindNotFound covers a missing path component or a mid-path component
	// that isn't a directory.
	KindNotFound
	// KindCorrupt covers a directory entry whose chain doesn't make sense:
	// a non-empty file with no first cluster, a bad-cluster marker mid-chain,
	// or an out-of-range cluster index.
	KindCorrupt
	// KindShortChain covers a chain that terminates before delivering the
	// entry's full size.
	KindShortChain
	// KindOverrun covers a chain that doesn't terminate after its size has
	// been fully delivered.
	KindOverrun
	// KindLoopDetected covers a cluster chain that revisits a cluster.
	KindLoopDetected
	// KindSinkError covers a failure surfaced by the caller's write sink.
	KindSinkError
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindBadVolume:
		return "bad_volume"
	case KindNotFound:
		return "not_found"
	case KindCorrupt:
		return "corrupt"
	case KindShortChain:
		return "short_chain"
	case KindOverrun:
		return "overrun"
	case KindLoopDetected:
		return "loop_detected"
	case KindSinkError:
		return "sink_error"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every decoder operation. It carries a
// Kind so callers can branch on failure category with errors.Is/errors.As
// without string-matching messages.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("xtvfs: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("xtvfs: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, xtvfs.ErrNotFound) style comparisons against the
// Kind-only sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

func newErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Sentinels for errors.Is comparisons, one per Kind.
var (
	ErrIO           = &Error{Kind: KindIO}
	ErrBadVolume    = &Error{Kind: KindBadVolume}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrCorrupt      = &Error{Kind: KindCorrupt}
	ErrShortChain   = &Error{Kind: KindShortChain}
	ErrOverrun      = &Error{Kind: KindOverrun}
	ErrLoopDetected = &Error{Kind: KindLoopDetected}
	ErrSinkError    = &Error{Kind: KindSinkError}
)

// IsKind reports whether err (or something it wraps) carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
