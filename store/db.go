// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store owns the chain-state: the header index, the transparent
// UTXO set, the Sprout/Sapling commitment trees and their anchor and
// nullifier sets, and the secondary indexes (TxIndex, SpentIndex,
// AddressOutpoint, AddressDelta). A single writer lock serializes every
// state-mutating commit; reads run lock-free against the backing store's
// own snapshot consistency, matching the concurrency model described for
// the rest of this node.
package store

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/excc-labs/fluxnoded/chaincfg"
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

// DB is the chain-state store. All exported methods are safe for concurrent
// use; state-mutating methods additionally serialize on writerMu so that at
// most one write batch is being assembled and committed at a time.
type DB struct {
	ldb    *leveldb.DB
	params *chaincfg.Params

	writerMu sync.Mutex

	// tipMu guards the cached best-header/best-block pointers so readers
	// never need to touch leveldb for the hot-path tip query.
	tipMu      sync.RWMutex
	bestHeader HeaderEntry
	bestBlock  HeaderEntry
	haveTip    bool
}

// Open opens (creating if necessary) the leveldb-backed chain-state store
// rooted at dbPath, validates its schema versions against the current ones,
// and loads the cached best-header/best-block pointers.
func Open(dbPath string, params *chaincfg.Params) (*DB, error) {
	ldb, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dbPath, err)
	}
	d := &DB{ldb: ldb, params: params}

	if err := d.checkOrInitSchema(); err != nil {
		_ = ldb.Close()
		return nil, err
	}
	if err := d.loadTip(); err != nil {
		_ = ldb.Close()
		return nil, err
	}
	return d, nil
}

// Close releases the underlying leveldb handle.
func (d *DB) Close() error {
	return d.ldb.Close()
}

func (d *DB) checkOrInitSchema() error {
	versions := []struct {
		key     []byte
		current uint32
	}{
		{metaKeyDBSchemaVersion, CurrentDBSchemaVersion},
		{metaKeyTxIndexVersion, CurrentTxIndexVersion},
		{metaKeySpentIndexVersion, CurrentSpentIndexVersion},
		{metaKeyAddressIndexVersion, CurrentAddressIndexVersion},
	}
	empty, err := d.isEmpty()
	if err != nil {
		return err
	}
	for _, v := range versions {
		raw, err := d.ldb.Get(metaKey(v.key), nil)
		if err == leveldb.ErrNotFound {
			if empty {
				if err := d.putUint32(metaKey(v.key), v.current); err != nil {
					return err
				}
				continue
			}
			// Non-empty column with no recorded version: accept only as
			// pre-versioned legacy (implicit version 1), per §6.
			if v.current != 1 {
				return ruleErrorf(ErrSchemaMismatch, "missing %s on non-empty column", v.key)
			}
			if err := d.putUint32(metaKey(v.key), v.current); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("store: read schema version %s: %w", v.key, err)
		}
		got := binary.LittleEndian.Uint32(raw)
		if got > v.current {
			return ruleErrorf(ErrSchemaMismatch, "%s %d newer than supported %d", v.key, got, v.current)
		}
	}
	return nil
}

func (d *DB) isEmpty() (bool, error) {
	it := d.ldb.NewIterator(nil, nil)
	defer it.Release()
	return !it.Next(), it.Error()
}

func (d *DB) putUint32(key []byte, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return d.ldb.Put(key, b[:], nil)
}

func (d *DB) loadTip() error {
	hash, err := d.getMetaHash(metaKeyBestHeader)
	if err != nil {
		return err
	}
	if hash == nil {
		return nil // uninitialized store; caller must connect genesis.
	}
	bh, ok, err := d.HeaderEntryByHash(*hash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("store: best_header points at unknown entry")
	}

	blockHash, err := d.getMetaHash(metaKeyBestBlock)
	if err != nil {
		return err
	}
	var bb HeaderEntry
	if blockHash != nil {
		bb, ok, err = d.HeaderEntryByHash(*blockHash)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("store: best_block points at unknown entry")
		}
	}

	d.tipMu.Lock()
	d.bestHeader = bh
	d.bestBlock = bb
	d.haveTip = blockHash != nil
	d.tipMu.Unlock()
	return nil
}

func (d *DB) getMetaHash(key []byte) (*chainhash.Hash, error) {
	raw, err := d.ldb.Get(metaKey(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	var h chainhash.Hash
	copy(h[:], raw)
	return &h, nil
}

// BestHeader returns a snapshot of the current header-chain tip.
func (d *DB) BestHeader() HeaderEntry {
	d.tipMu.RLock()
	defer d.tipMu.RUnlock()
	return d.bestHeader
}

// BestBlock returns a snapshot of the current connected-block tip. Its
// zero value (haveTip == false) means no block has been connected yet.
func (d *DB) BestBlock() (HeaderEntry, bool) {
	d.tipMu.RLock()
	defer d.tipMu.RUnlock()
	return d.bestBlock, d.haveTip
}

// HeaderEntryByHash returns the exact header entry for hash, if known.
func (d *DB) HeaderEntryByHash(hash chainhash.Hash) (HeaderEntry, bool, error) {
	raw, err := d.ldb.Get(headerIndexKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return HeaderEntry{}, false, nil
	}
	if err != nil {
		return HeaderEntry{}, false, fmt.Errorf("store: read header index: %w", err)
	}
	e, err := decodeHeaderEntry(raw)
	if err != nil {
		return HeaderEntry{}, false, err
	}
	return e, true, nil
}

// HeaderEntryByHeight returns the main-chain header entry at height, if the
// height index has an entry there (ConnectBlock writes the entry for each
// block it connects and DisconnectBlock removes it, so only connected
// main-chain blocks are indexed by height).
func (d *DB) HeaderEntryByHeight(height int64) (HeaderEntry, bool, error) {
	raw, err := d.ldb.Get(heightIndexKey(height), nil)
	if err == leveldb.ErrNotFound {
		return HeaderEntry{}, false, nil
	}
	if err != nil {
		return HeaderEntry{}, false, fmt.Errorf("store: read height index: %w", err)
	}
	var hash chainhash.Hash
	copy(hash[:], raw)
	return d.HeaderEntryByHash(hash)
}

// HeaderAncestorHash returns the hash of the ancestor of from at height,
// using the skip-list links so the walk is O(log n) rather than O(n).
// It returns ok=false if height > from.Height.
func (d *DB) HeaderAncestorHash(from HeaderEntry, height int64) (chainhash.Hash, bool, error) {
	if height > from.Height || height < 0 {
		return chainhash.Hash{}, false, nil
	}
	cur := from
	for cur.Height > height {
		skipHeight := skipListHeight(cur.Height)
		if skipHeight >= height {
			skipEntry, ok, err := d.HeaderEntryByHash(cur.Skip)
			if err != nil {
				return chainhash.Hash{}, false, err
			}
			if !ok {
				return chainhash.Hash{}, false, fmt.Errorf("store: missing skip-list ancestor")
			}
			cur = skipEntry
			continue
		}
		parent, ok, err := d.HeaderEntryByHash(cur.PrevHash)
		if err != nil {
			return chainhash.Hash{}, false, err
		}
		if !ok {
			return chainhash.Hash{}, false, fmt.Errorf("store: missing ancestor header")
		}
		cur = parent
	}
	return cur.Hash, true, nil
}

// FindCommonAncestor returns the hash of the highest header that is an
// ancestor of both a and b. The higher entry is first brought down to the
// other's height with HeaderAncestorHash; from there both are stepped back
// one parent at a time until the hashes match, so the cost of that second
// phase grows linearly with the fork depth (there is no binary search).
func (d *DB) FindCommonAncestor(a, b chainhash.Hash) (chainhash.Hash, error) {
	ea, ok, err := d.HeaderEntryByHash(a)
	if err != nil {
		return chainhash.Hash{}, err
	}
	if !ok {
		return chainhash.Hash{}, fmt.Errorf("store: unknown ancestor-search hash %s", a)
	}
	eb, ok, err := d.HeaderEntryByHash(b)
	if err != nil {
		return chainhash.Hash{}, err
	}
	if !ok {
		return chainhash.Hash{}, fmt.Errorf("store: unknown ancestor-search hash %s", b)
	}
	if ea.Height > eb.Height {
		h, _, err := d.HeaderAncestorHash(ea, eb.Height)
		if err != nil {
			return chainhash.Hash{}, err
		}
		ea, _, err = d.HeaderEntryByHash(h)
		if err != nil {
			return chainhash.Hash{}, err
		}
	} else if eb.Height > ea.Height {
		h, _, err := d.HeaderAncestorHash(eb, ea.Height)
		if err != nil {
			return chainhash.Hash{}, err
		}
		eb, _, err = d.HeaderEntryByHash(h)
		if err != nil {
			return chainhash.Hash{}, err
		}
	}
	for ea.Hash != eb.Hash {
		pa, ok, err := d.HeaderEntryByHash(ea.PrevHash)
		if err != nil {
			return chainhash.Hash{}, err
		}
		if !ok {
			return chainhash.Hash{}, fmt.Errorf("store: ancestor search ran past genesis")
		}
		pb, ok, err := d.HeaderEntryByHash(eb.PrevHash)
		if err != nil {
			return chainhash.Hash{}, err
		}
		if !ok {
			return chainhash.Hash{}, fmt.Errorf("store: ancestor search ran past genesis")
		}
		ea, eb = pa, pb
	}
	return ea.Hash, nil
}

// prefixRange returns a leveldb key range covering all keys with the given
// prefix, used by the secondary-index prefix scans.
func prefixRange(prefix []byte) *util.Range {
	return util.BytesPrefix(prefix)
}
