// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

func syntheticEntry(label string, fee int64, modifiedSize int, t0 int64, spent wire.OutPoint, parents ...chainhash.Hash) *Entry {
	return &Entry{
		Txid:           chainhash.HashH([]byte(label)),
		Tx:             &wire.MsgTx{},
		Raw:            make([]byte, modifiedSize),
		Time:           t0,
		Fee:            fee,
		ModifiedSize:   modifiedSize,
		SpentOutpoints: []wire.OutPoint{spent},
		Parents:        parents,
	}
}

func TestEvictToFitLockedDropsLowestFeeRateLeaf(t *testing.T) {
	chain := newFakeChain()
	policy := DefaultPolicy()
	policy.RequireStandard = false
	policy.MaxMempoolBytes = 250
	pool := newTestPool(t, chain, policy)

	low := syntheticEntry("low", 0, 100, 1, wire.OutPoint{Hash: chainhash.HashH([]byte("low-in"))})
	mid := syntheticEntry("mid", 5_000, 100, 2, wire.OutPoint{Hash: chainhash.HashH([]byte("mid-in"))})
	high := syntheticEntry("high", 20_000, 100, 3, wire.OutPoint{Hash: chainhash.HashH([]byte("high-in"))})

	for _, e := range []*Entry{low, mid, high} {
		if err := pool.Insert(e); err != nil {
			t.Fatalf("Insert(%s): %v", e.Txid, err)
		}
	}

	if pool.Have(low.Txid) {
		t.Fatal("lowest fee-rate leaf should have been evicted")
	}
	if !pool.Have(mid.Txid) || !pool.Have(high.Txid) {
		t.Fatal("higher fee-rate entries should survive eviction")
	}
}

func TestEvictToFitLockedSkipsEntriesWithChildren(t *testing.T) {
	chain := newFakeChain()
	policy := DefaultPolicy()
	policy.RequireStandard = false
	policy.MaxMempoolBytes = 250
	pool := newTestPool(t, chain, policy)

	// parent has the lowest fee rate of the three, but it has a child
	// still in the pool, so eviction must skip it and take the leaf
	// "other" instead even though "other" pays more.
	parent := syntheticEntry("parent", 0, 100, 1, wire.OutPoint{Hash: chainhash.HashH([]byte("parent-in"))})
	child := syntheticEntry("child", 3_000, 100, 2, wire.OutPoint{Hash: parent.Txid, Index: 0}, parent.Txid)
	other := syntheticEntry("other", 1_000, 100, 3, wire.OutPoint{Hash: chainhash.HashH([]byte("other-in"))})

	if err := pool.Insert(parent); err != nil {
		t.Fatalf("Insert(parent): %v", err)
	}
	if err := pool.Insert(child); err != nil {
		t.Fatalf("Insert(child): %v", err)
	}
	if err := pool.Insert(other); err != nil {
		t.Fatalf("Insert(other): %v", err)
	}

	if !pool.Have(parent.Txid) {
		t.Fatal("parent has a live child and must not be evicted")
	}
	if pool.Have(other.Txid) {
		t.Fatal("other is the lowest fee-rate leaf; it should have been evicted")
	}
	if !pool.Have(child.Txid) {
		t.Fatal("child should remain")
	}
}

func TestEvictToFitLockedTieBreaksByTimeThenTxid(t *testing.T) {
	chain := newFakeChain()
	policy := DefaultPolicy()
	policy.RequireStandard = false
	policy.MaxMempoolBytes = 250
	pool := newTestPool(t, chain, policy)

	// Same fee rate (0 fee, same size): older Time must be evicted first.
	older := syntheticEntry("older", 0, 100, 1, wire.OutPoint{Hash: chainhash.HashH([]byte("older-in"))})
	newer := syntheticEntry("newer", 0, 100, 2, wire.OutPoint{Hash: chainhash.HashH([]byte("newer-in"))})
	other := syntheticEntry("other", 10_000, 100, 3, wire.OutPoint{Hash: chainhash.HashH([]byte("other-in"))})

	for _, e := range []*Entry{older, newer, other} {
		if err := pool.Insert(e); err != nil {
			t.Fatalf("Insert(%s): %v", e.Txid, err)
		}
	}

	if pool.Have(older.Txid) {
		t.Fatal("the older of two equal-fee-rate entries should be evicted first")
	}
	if !pool.Have(newer.Txid) || !pool.Have(other.Txid) {
		t.Fatal("newer and the well-paying entry should survive")
	}
}
