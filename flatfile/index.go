// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package flatfile

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

// undoIndexRecordSize is the fixed width of one undo.idx entry: a 32-byte
// block hash followed by its undo record's file ID, offset, and length.
const undoIndexRecordSize = chainhash.HashSize + 4 + 4 + 4

// appendUndoIndexRecord appends one fixed-width (hash, location) entry to
// the undo index log and fsyncs it, so AppendUndo's hash lookup survives a
// restart without rescanning every undo file.
func appendUndoIndexRecord(f *os.File, hash chainhash.Hash, loc undoLoc) error {
	var buf [undoIndexRecordSize]byte
	copy(buf[:chainhash.HashSize], hash[:])
	binary.LittleEndian.PutUint32(buf[chainhash.HashSize:], loc.fileID)
	binary.LittleEndian.PutUint32(buf[chainhash.HashSize+4:], loc.offset)
	binary.LittleEndian.PutUint32(buf[chainhash.HashSize+8:], loc.length)

	if _, err := f.Write(buf[:]); err != nil {
		return errorf(ErrShortWrite, "flatfile: write undo index: %v", err)
	}
	return f.Sync()
}

// scanUndoIndex reads every fixed-width record in the undo index log at
// path into a lookup map, stopping at the first short trailing record (the
// tail of a write that was interrupted by a crash before it completed).
func scanUndoIndex(path string) (map[chainhash.Hash]undoLoc, error) {
	idx := make(map[chainhash.Hash]undoLoc)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, errorf(ErrFileOpen, "flatfile: open %s: %v", path, err)
	}
	defer f.Close()

	var buf [undoIndexRecordSize]byte
	for {
		if _, err := io.ReadFull(f, buf[:]); err != nil {
			break
		}
		var hash chainhash.Hash
		copy(hash[:], buf[:chainhash.HashSize])
		idx[hash] = undoLoc{
			fileID: binary.LittleEndian.Uint32(buf[chainhash.HashSize:]),
			offset: binary.LittleEndian.Uint32(buf[chainhash.HashSize+4:]),
			length: binary.LittleEndian.Uint32(buf[chainhash.HashSize+8:]),
		}
	}
	return idx, nil
}

// rewriteUndoIndex atomically replaces the undo index log with the given
// map's entries, used after a reindex scan recovers the index straight
// from the undo data files.
func rewriteUndoIndex(dir string, idx map[chainhash.Hash]undoLoc) error {
	tmp := undoIndexPath(dir) + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errorf(ErrFileOpen, "flatfile: open %s: %v", tmp, err)
	}
	for hash, loc := range idx {
		var buf [undoIndexRecordSize]byte
		copy(buf[:chainhash.HashSize], hash[:])
		binary.LittleEndian.PutUint32(buf[chainhash.HashSize:], loc.fileID)
		binary.LittleEndian.PutUint32(buf[chainhash.HashSize+4:], loc.offset)
		binary.LittleEndian.PutUint32(buf[chainhash.HashSize+8:], loc.length)
		if _, err := f.Write(buf[:]); err != nil {
			_ = f.Close()
			return errorf(ErrShortWrite, "flatfile: write %s: %v", tmp, err)
		}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return errorf(ErrShortWrite, "flatfile: fsync %s: %v", tmp, err)
	}
	if err := f.Close(); err != nil {
		return errorf(ErrShortWrite, "flatfile: close %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, undoIndexPath(dir)); err != nil {
		return errorf(ErrShortWrite, "flatfile: rename %s: %v", tmp, err)
	}
	return nil
}
