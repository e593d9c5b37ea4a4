// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/gcs"
)

// cfilterP is the Golomb-Rice parameter used for every regular compact
// filter this store builds, fixed network-wide so any two nodes building a
// filter for the same block always agree on its bytes.
const cfilterP = 19

// deriveFilterKey derives a block's SipHash filter key from its hash, the
// same "first KeySize bytes of the block hash" convention BIP 158-style
// filters use so the key never needs its own storage.
func deriveFilterKey(blockHash chainhash.Hash) [gcs.KeySize]byte {
	var key [gcs.KeySize]byte
	copy(key[:], blockHash[:gcs.KeySize])
	return key
}

// CFilterKey returns the key callers must supply to Filter.Match/MatchAny
// against the compact filter committed for hash.
func CFilterKey(hash chainhash.Hash) [gcs.KeySize]byte {
	return deriveFilterKey(hash)
}

// buildRegularFilter builds the block's compact filter over every distinct
// script touched by the block: the previous output scripts its inputs
// spend and the scripts its own outputs create. A block with no scripts to
// commit to (only possible for an all-shielded, inputless block) yields no
// filter at all, matching gcs.NewFilter's rejection of an empty data set.
func buildRegularFilter(hash chainhash.Hash, scripts [][]byte) (*gcs.Filter, error) {
	deduped := dedupeScripts(scripts)
	if len(deduped) == 0 {
		return nil, nil
	}
	return gcs.NewFilter(cfilterP, deriveFilterKey(hash), deduped)
}

func dedupeScripts(scripts [][]byte) [][]byte {
	seen := make(map[string]struct{}, len(scripts))
	out := make([][]byte, 0, len(scripts))
	for _, s := range scripts {
		k := string(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (d *DB) stageCFilterPut(batch *leveldb.Batch, hash chainhash.Hash, filter *gcs.Filter) {
	if filter == nil {
		return
	}
	batch.Put(cfilterKey(hash), filter.NBytes())
}

func (d *DB) stageCFilterDelete(batch *leveldb.Batch, hash chainhash.Hash) {
	batch.Delete(cfilterKey(hash))
}

// CFilter returns the regular compact filter committed for block hash, if
// any was built for it (a block touching no transparent scripts at all has
// none).
func (d *DB) CFilter(hash chainhash.Hash) (*gcs.Filter, bool, error) {
	raw, err := d.ldb.Get(cfilterKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ruleErrorf(ErrStorage, "read cfilter %s: %v", hash, err)
	}
	filter, err := gcs.FromNBytes(cfilterP, raw)
	if err != nil {
		return nil, false, ruleErrorf(ErrStorage, "decode cfilter %s: %v", hash, err)
	}
	return filter, true, nil
}
