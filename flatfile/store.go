// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package flatfile implements the append-only raw block and undo record
// storage the chain-state store writes through to via store.BlockWriter.
// Records are length-prefixed and rolled across numbered files so no single
// file grows without bound; a small fixed-width index lets undo records be
// looked up by block hash without re-scanning every file on every read.
package flatfile

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/store"
)

// defaultMaxFileSize bounds how large a single data/undo file is allowed to
// grow before the next append rolls over to a new one, matching the
// generous per-file ceiling ffldb-style stores use for block data.
const defaultMaxFileSize = 512 * 1024 * 1024

const (
	blockFilePrefix = "data"
	undoFilePrefix  = "undo"
	fileSuffix      = ".dat"
)

// lengthPrefixSize is the width of the 4-byte little-endian record length
// prefix every append writes ahead of its payload.
const lengthPrefixSize = 4

type undoLoc struct {
	fileID uint32
	offset uint32
	length uint32
}

// Store is a store.BlockWriter backed by numbered append-only files under
// a single directory.
type Store struct {
	mu          sync.Mutex
	dir         string
	maxFileSize uint32

	blockFileID uint32
	blockOffset uint32
	blockFile   *os.File

	undoFileID uint32
	undoOffset uint32
	undoFile   *os.File
	undoIdxLog *os.File

	undoIndex map[chainhash.Hash]undoLoc
}

var _ store.BlockWriter = (*Store)(nil)

// Open opens (creating if necessary) a flatfile store rooted at dir. A
// maxFileSize of 0 selects defaultMaxFileSize. If dir contains a
// reindex.flag marker, the manifest and undo index are rebuilt from the raw
// data/undo files before Open returns, and the marker is removed.
func Open(dir string, maxFileSize uint32) (*Store, error) {
	if maxFileSize == 0 {
		maxFileSize = defaultMaxFileSize
	}
	if err := ensureDir(dir); err != nil {
		return nil, errorf(ErrFileOpen, "flatfile: %v", err)
	}

	s := &Store{dir: dir, maxFileSize: maxFileSize, undoIndex: make(map[chainhash.Hash]undoLoc)}

	_, reindexRequested := os.Stat(reindexFlagPath(dir))
	needsReindex := reindexRequested == nil
	m, err := readManifest(dir)
	if err != nil {
		needsReindex = true
		m = &manifest{SchemaVersion: schemaVersion}
	}
	if m.SchemaVersion != schemaVersion {
		needsReindex = true
	}

	if needsReindex {
		log.Infof("flatfile: rebuilding manifest and undo index from %s", dir)
		rebuilt, err := reindexFromFiles(dir)
		if err != nil {
			return nil, err
		}
		m = rebuilt
		if err := writeManifestAtomic(dir, m); err != nil {
			return nil, err
		}
		if err := os.Remove(reindexFlagPath(dir)); err != nil && !os.IsNotExist(err) {
			return nil, errorf(ErrFileOpen, "flatfile: remove reindex flag: %v", err)
		}
	}

	s.blockFileID, s.blockOffset = m.BlockFileID, m.BlockOffset
	s.undoFileID, s.undoOffset = m.UndoFileID, m.UndoOffset

	if s.blockFile, err = openTruncatedToSize(blockFilePath(dir, s.blockFileID), int64(s.blockOffset)); err != nil {
		return nil, err
	}
	if s.undoFile, err = openTruncatedToSize(undoFilePath(dir, s.undoFileID), int64(s.undoOffset)); err != nil {
		return nil, err
	}

	if !needsReindex {
		idx, err := scanUndoIndex(undoIndexPath(dir))
		if err != nil {
			return nil, err
		}
		s.undoIndex = idx
	} else {
		s.undoIndex, err = rebuildUndoIndexFromUndoFiles(dir, s.undoFileID)
		if err != nil {
			return nil, err
		}
		if err := rewriteUndoIndex(dir, s.undoIndex); err != nil {
			return nil, err
		}
	}

	if s.undoIdxLog, err = os.OpenFile(undoIndexPath(dir), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644); err != nil {
		return nil, errorf(ErrFileOpen, "flatfile: open undo index: %v", err)
	}

	return s, nil
}

// Close releases the store's open file handles.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range []*os.File{s.blockFile, s.undoFile, s.undoIdxLog} {
		if f != nil {
			_ = f.Close()
		}
	}
	return nil
}

func blockFilePath(dir string, id uint32) string { return filenameFor(dir, blockFilePrefix, id) }
func undoFilePath(dir string, id uint32) string  { return filenameFor(dir, undoFilePrefix, id) }
func undoIndexPath(dir string) string             { return filepath.Join(dir, "undo.idx") }

func filenameFor(dir, prefix string, id uint32) string {
	return filepath.Join(dir, prefix+padFileID(id)+fileSuffix)
}

func padFileID(id uint32) string {
	const digits = "0123456789"
	b := [5]byte{'0', '0', '0', '0', '0'}
	for i := 4; i >= 0 && id > 0; i-- {
		b[i] = digits[id%10]
		id /= 10
	}
	return string(b[:])
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// openTruncatedToSize opens path for read/write, creating it if absent, and
// truncates it to size if it is longer: bytes past the last manifest commit
// point are the tail of a write that was never confirmed and are discarded
// rather than trusted.
func openTruncatedToSize(path string, size int64) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errorf(ErrFileOpen, "flatfile: open %s: %v", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errorf(ErrFileOpen, "flatfile: stat %s: %v", path, err)
	}
	if info.Size() < size {
		_ = f.Close()
		return nil, errorf(ErrCorruptRecord, "flatfile: %s is shorter (%d) than its committed offset (%d)", path, info.Size(), size)
	}
	if info.Size() > size {
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, errorf(ErrShortWrite, "flatfile: truncate %s: %v", path, err)
		}
	}
	return f, nil
}

// AppendBlock appends raw and returns the location of its payload.
func (s *Store) AppendBlock(hash chainhash.Hash, raw []byte) (store.BlockLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rollBlockFileIfNeeded(uint32(len(raw))); err != nil {
		return store.BlockLocation{}, err
	}

	recordStart := s.blockOffset
	if err := writeRecord(s.blockFile, int64(recordStart), raw); err != nil {
		return store.BlockLocation{}, err
	}
	s.blockOffset += lengthPrefixSize + uint32(len(raw))

	if err := writeManifestAtomic(s.dir, s.currentManifest()); err != nil {
		return store.BlockLocation{}, err
	}

	log.Debugf("flatfile: appended block %s (%d bytes) to %s at %d", hash, len(raw),
		blockFilePath(s.dir, s.blockFileID), recordStart)

	return store.BlockLocation{FileID: s.blockFileID, Offset: recordStart, Len: uint32(len(raw))}, nil
}

// AppendUndo appends undo for hash, recording its location in the undo
// index so ReadUndo can find it again by hash alone.
func (s *Store) AppendUndo(hash chainhash.Hash, undo []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rollUndoFileIfNeeded(uint32(len(undo))); err != nil {
		return err
	}

	recordStart := s.undoOffset
	if err := writeRecord(s.undoFile, int64(recordStart), undo); err != nil {
		return err
	}
	s.undoOffset += lengthPrefixSize + uint32(len(undo))

	loc := undoLoc{fileID: s.undoFileID, offset: recordStart, length: uint32(len(undo))}
	if err := appendUndoIndexRecord(s.undoIdxLog, hash, loc); err != nil {
		return err
	}
	s.undoIndex[hash] = loc

	if err := writeManifestAtomic(s.dir, s.currentManifest()); err != nil {
		return err
	}

	log.Debugf("flatfile: appended undo for %s (%d bytes) to %s at %d", hash, len(undo),
		undoFilePath(s.dir, s.undoFileID), recordStart)
	return nil
}

// ReadUndo returns the previously appended undo record for hash.
func (s *Store) ReadUndo(hash chainhash.Hash) ([]byte, error) {
	s.mu.Lock()
	loc, ok := s.undoIndex[hash]
	dir := s.dir
	s.mu.Unlock()
	if !ok {
		return nil, errorf(ErrNotFound, "flatfile: no undo record for %s", hash)
	}
	return readRecord(undoFilePath(dir, loc.fileID), int64(loc.offset), loc.length)
}

// ReadBlock returns the raw block bytes at loc.
func (s *Store) ReadBlock(loc store.BlockLocation) ([]byte, error) {
	s.mu.Lock()
	dir := s.dir
	s.mu.Unlock()
	return readRecord(blockFilePath(dir, loc.FileID), int64(loc.Offset), loc.Len)
}

func (s *Store) currentManifest() *manifest {
	return &manifest{
		SchemaVersion: schemaVersion,
		BlockFileID:   s.blockFileID,
		BlockOffset:   s.blockOffset,
		UndoFileID:    s.undoFileID,
		UndoOffset:    s.undoOffset,
	}
}

func (s *Store) rollBlockFileIfNeeded(payloadLen uint32) error {
	if s.blockOffset > 0 && uint64(s.blockOffset)+uint64(lengthPrefixSize)+uint64(payloadLen) > uint64(s.maxFileSize) {
		if err := s.blockFile.Close(); err != nil {
			return errorf(ErrShortWrite, "flatfile: close %s: %v", blockFilePath(s.dir, s.blockFileID), err)
		}
		s.blockFileID++
		s.blockOffset = 0
		f, err := os.OpenFile(blockFilePath(s.dir, s.blockFileID), os.O_CREATE|os.O_RDWR, 0o644)
		if err != nil {
			return errorf(ErrFileOpen, "flatfile: open %s: %v", blockFilePath(s.dir, s.blockFileID), err)
		}
		s.blockFile = f
	}
	return nil
}

func (s *Store) rollUndoFileIfNeeded(payloadLen uint32) error {
	if s.undoOffset > 0 && uint64(s.undoOffset)+uint64(lengthPrefixSize)+uint64(payloadLen) > uint64(s.maxFileSize) {
		if err := s.undoFile.Close(); err != nil {
			return errorf(ErrShortWrite, "flatfile: close %s: %v", undoFilePath(s.dir, s.undoFileID), err)
		}
		s.undoFileID++
		s.undoOffset = 0
		f, err := os.OpenFile(undoFilePath(s.dir, s.undoFileID), os.O_CREATE|os.O_RDWR, 0o644)
		if err != nil {
			return errorf(ErrFileOpen, "flatfile: open %s: %v", undoFilePath(s.dir, s.undoFileID), err)
		}
		s.undoFile = f
	}
	return nil
}

// writeRecord writes a 4-byte little-endian length prefix followed by
// payload at offset, then fsyncs the file so the append survives a crash
// before the caller's manifest rewrite commits to it.
func writeRecord(f *os.File, offset int64, payload []byte) error {
	buf := make([]byte, lengthPrefixSize+len(payload))
	binary.LittleEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[lengthPrefixSize:], payload)
	n, err := f.WriteAt(buf, offset)
	if err != nil {
		return errorf(ErrShortWrite, "flatfile: write %s: %v", f.Name(), err)
	}
	if n != len(buf) {
		return errorf(ErrShortWrite, "flatfile: short write to %s (%d of %d bytes)", f.Name(), n, len(buf))
	}
	if err := f.Sync(); err != nil {
		return errorf(ErrShortWrite, "flatfile: fsync %s: %v", f.Name(), err)
	}
	return nil
}

// readRecord reads the length-prefixed record at offset in path and
// confirms its stored length matches wantLen before returning the payload.
func readRecord(path string, offset int64, wantLen uint32) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errorf(ErrFileOpen, "flatfile: open %s: %v", path, err)
	}
	defer f.Close()

	var prefix [lengthPrefixSize]byte
	if _, err := f.ReadAt(prefix[:], offset); err != nil {
		return nil, errorf(ErrShortRead, "flatfile: read length prefix from %s at %d: %v", path, offset, err)
	}
	gotLen := binary.LittleEndian.Uint32(prefix[:])
	if gotLen != wantLen {
		return nil, errorf(ErrCorruptRecord, "flatfile: %s at %d: length prefix %d does not match expected %d",
			path, offset, gotLen, wantLen)
	}

	payload := make([]byte, wantLen)
	if _, err := f.ReadAt(payload, offset+lengthPrefixSize); err != nil {
		return nil, errorf(ErrShortRead, "flatfile: read payload from %s at %d: %v", path, offset+lengthPrefixSize, err)
	}
	return payload, nil
}

// listFileIDs returns the numeric IDs of prefix*.dat files present in dir,
// sorted ascending.
func listFileIDs(dir, prefix string) ([]uint32, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errorf(ErrFileOpen, "flatfile: read dir %s: %v", dir, err)
	}
	var ids []uint32
	for _, e := range entries {
		name := e.Name()
		if len(name) != len(prefix)+5+len(fileSuffix) || name[:len(prefix)] != prefix || name[len(name)-len(fileSuffix):] != fileSuffix {
			continue
		}
		digits := name[len(prefix) : len(name)-len(fileSuffix)]
		var id uint32
		for _, c := range digits {
			if c < '0' || c > '9' {
				id = 0
				continue
			}
			id = id*10 + uint32(c-'0')
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// reindexFromFiles rebuilds a manifest by inspecting the raw data/undo
// files on disk: the highest-numbered block file's size becomes the new
// block write cursor (flatfile never needs to parse block payloads, since
// the hash-keyed block location index lives in the chain-state store, not
// here), and the highest-numbered undo file's size likewise becomes the undo
// write cursor. The undo index itself is recovered separately, by
// rebuildUndoIndexFromUndoFiles, because undo lookups are keyed by hash and
// nothing else remembers where each one landed.
func reindexFromFiles(dir string) (*manifest, error) {
	m := &manifest{SchemaVersion: schemaVersion}

	blockIDs, err := listFileIDs(dir, blockFilePrefix)
	if err != nil {
		return nil, err
	}
	if len(blockIDs) > 0 {
		lastID := blockIDs[len(blockIDs)-1]
		size, err := validTrailingSize(blockFilePath(dir, lastID))
		if err != nil {
			return nil, err
		}
		m.BlockFileID, m.BlockOffset = lastID, size
	}

	undoIDs, err := listFileIDs(dir, undoFilePrefix)
	if err != nil {
		return nil, err
	}
	if len(undoIDs) > 0 {
		lastID := undoIDs[len(undoIDs)-1]
		size, err := validTrailingSize(undoFilePath(dir, lastID))
		if err != nil {
			return nil, err
		}
		m.UndoFileID, m.UndoOffset = lastID, size
	}

	return m, nil
}

// validTrailingSize returns the offset one past the last complete
// length-prefixed record in path, discarding any partial record a crash
// left dangling at the end of the file.
func validTrailingSize(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errorf(ErrFileOpen, "flatfile: open %s: %v", path, err)
	}
	defer f.Close()

	var offset int64
	var prefix [lengthPrefixSize]byte
	for {
		if _, err := io.ReadFull(f, prefix[:]); err != nil {
			break
		}
		payloadLen := binary.LittleEndian.Uint32(prefix[:])
		if _, err := f.Seek(int64(payloadLen), io.SeekCurrent); err != nil {
			break
		}
		offset += lengthPrefixSize + int64(payloadLen)
	}
	return uint32(offset), nil
}

// rebuildUndoIndexFromUndoFiles walks every undo file up to and including
// maxID, decoding each record's leading 32 bytes as a block hash: undo.go's
// encodeUndoRecord always writes BlockHash first, so the index can be
// recovered without understanding the rest of the undo record's layout.
func rebuildUndoIndexFromUndoFiles(dir string, maxID uint32) (map[chainhash.Hash]undoLoc, error) {
	idx := make(map[chainhash.Hash]undoLoc)
	for id := uint32(0); id <= maxID; id++ {
		path := undoFilePath(dir, id)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errorf(ErrFileOpen, "flatfile: open %s: %v", path, err)
		}

		var offset uint32
		var prefix [lengthPrefixSize]byte
		for {
			if _, err := io.ReadFull(f, prefix[:]); err != nil {
				break
			}
			payloadLen := binary.LittleEndian.Uint32(prefix[:])
			if payloadLen < chainhash.HashSize {
				break
			}
			var hashBuf [chainhash.HashSize]byte
			if _, err := io.ReadFull(f, hashBuf[:]); err != nil {
				break
			}
			if _, err := f.Seek(int64(payloadLen-chainhash.HashSize), io.SeekCurrent); err != nil {
				break
			}
			idx[chainhash.Hash(hashBuf)] = undoLoc{fileID: id, offset: offset, length: payloadLen}
			offset += lengthPrefixSize + payloadLen
		}
		_ = f.Close()
	}
	return idx, nil
}
