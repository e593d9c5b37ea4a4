// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package flatfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

func TestAppendAndReadBlockRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	hash := chainhash.HashH([]byte("block one"))
	payload := []byte("raw serialized block bytes")

	loc, err := s.AppendBlock(hash, payload)
	if err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}
	if loc.Len != uint32(len(payload)) {
		t.Fatalf("loc.Len = %d, want %d", loc.Len, len(payload))
	}

	got, err := s.ReadBlock(loc)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("ReadBlock = %q, want %q", got, payload)
	}
}

func TestAppendAndReadUndoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	hash := chainhash.HashH([]byte("undo target"))
	undo := []byte("undo record bytes")

	if err := s.AppendUndo(hash, undo); err != nil {
		t.Fatalf("AppendUndo: %v", err)
	}

	got, err := s.ReadUndo(hash)
	if err != nil {
		t.Fatalf("ReadUndo: %v", err)
	}
	if !bytes.Equal(got, undo) {
		t.Fatalf("ReadUndo = %q, want %q", got, undo)
	}
}

func TestReadUndoMissingHashReturnsErrNotFound(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, err = s.ReadUndo(chainhash.HashH([]byte("never appended")))
	if err == nil {
		t.Fatal("expected an error for an unknown undo hash")
	}
	var flatErr Error
	if !errors.As(err, &flatErr) || flatErr.Kind != ErrNotFound {
		t.Fatalf("error kind = %v, want ErrNotFound", flatErr.Kind)
	}
}

func TestOpenReopensAndPreservesPriorAppends(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	hash := chainhash.HashH([]byte("persisted block"))
	payload := []byte("persisted payload")
	loc, err := s.AppendBlock(hash, payload)
	if err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.ReadBlock(loc)
	if err != nil {
		t.Fatalf("ReadBlock after reopen: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("ReadBlock after reopen = %q, want %q", got, payload)
	}
}

func TestAppendBlockRollsFileWhenOverMaxSize(t *testing.T) {
	dir := t.TempDir()
	// A tiny max file size forces the very first append past the first
	// payload to roll into a new numbered file.
	s, err := Open(dir, 16)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	payload := bytes.Repeat([]byte{0x01}, 12)
	loc1, err := s.AppendBlock(chainhash.HashH([]byte("a")), payload)
	if err != nil {
		t.Fatalf("AppendBlock(a): %v", err)
	}
	loc2, err := s.AppendBlock(chainhash.HashH([]byte("b")), payload)
	if err != nil {
		t.Fatalf("AppendBlock(b): %v", err)
	}
	if loc1.FileID == loc2.FileID {
		t.Fatalf("expected the second append to roll to a new file, both landed in file %d", loc1.FileID)
	}
	if loc2.Offset != 0 {
		t.Fatalf("rolled file's first record should start at offset 0, got %d", loc2.Offset)
	}
}

func TestOpenRebuildsUndoIndexAfterManifestDeleted(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	hash := chainhash.HashH([]byte("reindex target"))
	// Undo records lead with their block hash; the reindex scan keys the
	// recovered index by those leading 32 bytes.
	undo := append(hash[:], []byte("undo payload to recover")...)
	if err := s.AppendUndo(hash, undo); err != nil {
		t.Fatalf("AppendUndo: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := os.Remove(manifestPath(dir)); err != nil {
		t.Fatalf("remove manifest: %v", err)
	}

	reopened, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("reopen after manifest loss: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.ReadUndo(hash)
	if err != nil {
		t.Fatalf("ReadUndo after reindex: %v", err)
	}
	if !bytes.Equal(got, undo) {
		t.Fatalf("ReadUndo after reindex = %q, want %q", got, undo)
	}
}

func TestOpenHonorsReindexFlag(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	hash := chainhash.HashH([]byte("flagged"))
	// Undo records lead with their block hash; the reindex scan keys the
	// recovered index by those leading 32 bytes.
	undo := append(hash[:], []byte("flagged undo payload")...)
	if err := s.AppendUndo(hash, undo); err != nil {
		t.Fatalf("AppendUndo: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := os.WriteFile(reindexFlagPath(dir), nil, 0o644); err != nil {
		t.Fatalf("write reindex flag: %v", err)
	}

	reopened, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("reopen with reindex flag: %v", err)
	}
	defer reopened.Close()

	if _, err := os.Stat(reindexFlagPath(dir)); !os.IsNotExist(err) {
		t.Fatal("Open should remove the reindex flag once the reindex completes")
	}
	got, err := reopened.ReadUndo(hash)
	if err != nil {
		t.Fatalf("ReadUndo after flagged reindex: %v", err)
	}
	if !bytes.Equal(got, undo) {
		t.Fatalf("ReadUndo after flagged reindex = %q, want %q", got, undo)
	}
}

func TestOpenTruncatesDanglingPartialWrite(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	hash := chainhash.HashH([]byte("complete"))
	payload := []byte("a complete record")
	loc, err := s.AppendBlock(hash, payload)
	if err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Simulate a crash mid-write: append a few stray bytes past the
	// manifest's committed offset directly to the data file.
	path := filepath.Join(dir, "data00000.dat")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open data file: %v", err)
	}
	if _, err := f.Write([]byte{0xff, 0xff, 0xff}); err != nil {
		t.Fatalf("write stray bytes: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close data file: %v", err)
	}

	reopened, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("reopen after dangling partial write: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.ReadBlock(loc)
	if err != nil {
		t.Fatalf("ReadBlock after truncation: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("ReadBlock after truncation = %q, want %q", got, payload)
	}

	// The store should still be writable at the truncated offset.
	hash2 := chainhash.HashH([]byte("after truncation"))
	payload2 := []byte("appended after recovery")
	loc2, err := reopened.AppendBlock(hash2, payload2)
	if err != nil {
		t.Fatalf("AppendBlock after truncation: %v", err)
	}
	got2, err := reopened.ReadBlock(loc2)
	if err != nil {
		t.Fatalf("ReadBlock of post-recovery append: %v", err)
	}
	if !bytes.Equal(got2, payload2) {
		t.Fatalf("ReadBlock of post-recovery append = %q, want %q", got2, payload2)
	}
}
