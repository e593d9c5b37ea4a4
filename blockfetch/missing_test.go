// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/excc-labs/fluxnoded/chaincfg"
	"github.com/excc-labs/fluxnoded/store"
	"github.com/excc-labs/fluxnoded/wire"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(t.TempDir(), chaincfg.SimNetParams())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// chainOfHeaders builds n contiguous headers and inserts them with POW
// verification disabled, so the missing-block search has a real header
// chain to walk without needing a valid Equihash solution. Bits gives each
// header non-zero work so the chain becomes the best header chain.
func chainOfHeaders(t *testing.T, db *store.DB, n int) []*wire.BlockHeader {
	t.Helper()
	headers := make([]*wire.BlockHeader, n)
	var prev wire.BlockHeader
	for i := 0; i < n; i++ {
		h := &wire.BlockHeader{
			Bits:      0x200f0f0f,
			Solution:  []byte{0x00},
			Timestamp: time.Now(),
		}
		if i > 0 {
			h.PrevBlock = prev.BlockHash()
		}
		headers[i] = h
		prev = *h
	}
	_, err := db.InsertHeadersBatch(headers, store.HeaderValidationFlags{SkipPOW: true})
	require.NoError(t, err)
	return headers
}

func TestFindMissingBlocksWholeHeaderChainWithNoConnectedTip(t *testing.T) {
	db := openTestDB(t)
	headers := chainOfHeaders(t, db, 5)

	hashes, err := FindMissingBlocks(db, 100)
	require.NoError(t, err)
	require.Len(t, hashes, 5)
	for i, h := range headers {
		require.Equal(t, h.BlockHash(), hashes[i])
	}
}

func TestFindMissingBlocksRespectsLimit(t *testing.T) {
	db := openTestDB(t)
	chainOfHeaders(t, db, 5)

	hashes, err := FindMissingBlocks(db, 2)
	require.NoError(t, err)
	require.Len(t, hashes, 2)
}

func TestFindMissingBlocksEmptyStore(t *testing.T) {
	db := openTestDB(t)
	hashes, err := FindMissingBlocks(db, 10)
	require.NoError(t, err)
	// An uninitialized store has no real genesis header yet; that is the
	// caller's job (connecting genesis), not this search's.
	require.Len(t, hashes, 1)
}
