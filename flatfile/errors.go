// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package flatfile

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the kind of error returned by the flatfile package,
// mirroring store's errors.As-friendly idiom.
type ErrorKind int

const (
	ErrFileOpen ErrorKind = iota
	ErrShortWrite
	ErrShortRead
	ErrCorruptRecord
	ErrCorruptIndex
	ErrCorruptManifest
	ErrNotFound
)

var errorKindStrings = map[ErrorKind]string{
	ErrFileOpen:        "failed to open flatfile",
	ErrShortWrite:      "short write to flatfile",
	ErrShortRead:       "short read from flatfile",
	ErrCorruptRecord:   "corrupt length-prefixed record",
	ErrCorruptIndex:    "corrupt undo index",
	ErrCorruptManifest: "corrupt manifest",
	ErrNotFound:        "record not found",
}

func (k ErrorKind) Error() string {
	if s, ok := errorKindStrings[k]; ok {
		return s
	}
	return "unknown flatfile error"
}

// Error couples an ErrorKind with a specific description.
type Error struct {
	Kind        ErrorKind
	Description string
}

func (e Error) Error() string { return e.Description }
func (e Error) Unwrap() error { return e.Kind }
func (e Error) Is(target error) bool {
	var kind ErrorKind
	if errors.As(target, &kind) {
		return e.Kind == kind
	}
	return false
}

func errorf(kind ErrorKind, format string, args ...interface{}) error {
	return Error{Kind: kind, Description: fmt.Sprintf(format, args...)}
}
