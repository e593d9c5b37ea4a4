// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"
	"time"

	"github.com/excc-labs/fluxnoded/wire"
)

func orphanTxSpending(parentSeed byte) *wire.MsgTx {
	tx := &wire.MsgTx{}
	var h [32]byte
	h[0] = parentSeed
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: h, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 1, PkScript: nonStandardScript})
	return tx
}

func TestAddOrphanEvictsOldestAtCountCeiling(t *testing.T) {
	chain := newFakeChain()
	policy := DefaultPolicy()
	policy.MaxOrphans = 2
	policy.MaxOrphanBytes = 1 << 20
	policy.OrphanTTL = time.Hour
	pool := newTestPool(t, chain, policy)

	a := orphanTxSpending(0xA)
	b := orphanTxSpending(0xB)
	c := orphanTxSpending(0xC)

	pool.AddOrphan(a, make([]byte, 10), []wire.OutPoint{a.TxIn[0].PreviousOutPoint}, 1)
	pool.AddOrphan(b, make([]byte, 10), []wire.OutPoint{b.TxIn[0].PreviousOutPoint}, 2)
	pool.AddOrphan(c, make([]byte, 10), []wire.OutPoint{c.TxIn[0].PreviousOutPoint}, 3)

	if pool.HaveOrphan(a.TxHash()) {
		t.Fatal("oldest orphan should have been evicted once the count ceiling was hit")
	}
	if !pool.HaveOrphan(b.TxHash()) || !pool.HaveOrphan(c.TxHash()) {
		t.Fatal("the two most recent orphans should remain queued")
	}
}

func TestAddOrphanExpiresStaleEntriesBeforeQueuing(t *testing.T) {
	chain := newFakeChain()
	policy := DefaultPolicy()
	policy.MaxOrphans = 100
	policy.MaxOrphanBytes = 1 << 20
	policy.OrphanTTL = 10 * time.Second
	pool := newTestPool(t, chain, policy)

	stale := orphanTxSpending(0x1)
	fresh := orphanTxSpending(0x2)

	pool.AddOrphan(stale, make([]byte, 10), []wire.OutPoint{stale.TxIn[0].PreviousOutPoint}, 0)
	// Arriving 20 seconds later (past the 10s TTL) should expire stale
	// before fresh is queued.
	pool.AddOrphan(fresh, make([]byte, 10), []wire.OutPoint{fresh.TxIn[0].PreviousOutPoint}, 20)

	if pool.HaveOrphan(stale.TxHash()) {
		t.Fatal("stale orphan should have expired")
	}
	if !pool.HaveOrphan(fresh.TxHash()) {
		t.Fatal("fresh orphan should be queued")
	}
}

func TestAddOrphanIgnoresDuplicateTxid(t *testing.T) {
	chain := newFakeChain()
	policy := DefaultPolicy()
	policy.MaxOrphans = 100
	policy.MaxOrphanBytes = 1 << 20
	policy.OrphanTTL = time.Hour
	pool := newTestPool(t, chain, policy)

	tx := orphanTxSpending(0x7)
	op := tx.TxIn[0].PreviousOutPoint

	pool.AddOrphan(tx, make([]byte, 10), []wire.OutPoint{op}, 1)
	pool.AddOrphan(tx, make([]byte, 999), []wire.OutPoint{op}, 2)

	if !pool.HaveOrphan(tx.TxHash()) {
		t.Fatal("orphan should still be queued")
	}
	if pool.orphanBytes != 10 {
		t.Fatalf("orphanBytes = %d, want 10 (duplicate add should be a no-op)", pool.orphanBytes)
	}
}
