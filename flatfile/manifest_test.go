// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package flatfile

import "testing"

func TestWriteManifestAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := &manifest{
		SchemaVersion: schemaVersion,
		BlockFileID:   3,
		BlockOffset:   4096,
		UndoFileID:    2,
		UndoOffset:    512,
	}
	if err := writeManifestAtomic(dir, m); err != nil {
		t.Fatalf("writeManifestAtomic: %v", err)
	}

	got, err := readManifest(dir)
	if err != nil {
		t.Fatalf("readManifest: %v", err)
	}
	if *got != *m {
		t.Fatalf("readManifest = %+v, want %+v", got, m)
	}
}

func TestReadManifestMissingReturnsError(t *testing.T) {
	dir := t.TempDir()
	if _, err := readManifest(dir); err == nil {
		t.Fatal("expected an error reading a manifest that was never written")
	}
}

func TestWriteManifestAtomicOverwritesPriorVersion(t *testing.T) {
	dir := t.TempDir()
	first := &manifest{SchemaVersion: schemaVersion, BlockFileID: 0, BlockOffset: 10}
	if err := writeManifestAtomic(dir, first); err != nil {
		t.Fatalf("writeManifestAtomic(first): %v", err)
	}
	second := &manifest{SchemaVersion: schemaVersion, BlockFileID: 1, BlockOffset: 20}
	if err := writeManifestAtomic(dir, second); err != nil {
		t.Fatalf("writeManifestAtomic(second): %v", err)
	}

	got, err := readManifest(dir)
	if err != nil {
		t.Fatalf("readManifest: %v", err)
	}
	if *got != *second {
		t.Fatalf("readManifest after overwrite = %+v, want %+v", got, second)
	}
}
