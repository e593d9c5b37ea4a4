// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

func TestPurgeForConnectedBlockRemovesMinedAndConflicting(t *testing.T) {
	chain := newFakeChain()
	policy := DefaultPolicy()
	policy.RequireStandard = false
	pool := newTestPool(t, chain, policy)

	// minedTx is built first so its real TxHash() can be used both as
	// the held entry's Txid and as the transaction the connecting block
	// carries, exercising the "already held and now mined" removal path.
	minedTx := &wire.MsgTx{}
	minedTx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.HashH([]byte("mined-in")), Index: 0}})
	minedTx.AddTxOut(&wire.TxOut{Value: 1, PkScript: nonStandardScript})
	mined := syntheticEntry("mined-placeholder", 1_000, 100, 1, wire.OutPoint{Hash: chainhash.HashH([]byte("mined-in")), Index: 0})
	mined.Txid = minedTx.TxHash()
	mined.Tx = minedTx
	if err := pool.Insert(mined); err != nil {
		t.Fatalf("Insert(mined): %v", err)
	}

	// loser spends sharedInput but a different transaction spending the
	// same input is the one that actually got mined: loser conflicts and
	// must be purged along with its descendant.
	sharedInput := wire.OutPoint{Hash: chainhash.HashH([]byte("shared-coin")), Index: 0}
	loser := syntheticEntry("loser", 1_000, 100, 1, sharedInput)
	if err := pool.Insert(loser); err != nil {
		t.Fatalf("Insert(loser): %v", err)
	}
	descendant := syntheticEntry("descendant", 1_000, 100, 2, wire.OutPoint{Hash: loser.Txid, Index: 0}, loser.Txid)
	if err := pool.Insert(descendant); err != nil {
		t.Fatalf("Insert(descendant): %v", err)
	}

	minerTx := &wire.MsgTx{}
	minerTx.AddTxIn(&wire.TxIn{PreviousOutPoint: sharedInput})
	minerTx.AddTxOut(&wire.TxOut{Value: 1, PkScript: nonStandardScript})

	block := &wire.MsgBlock{}
	block.AddTransaction(minerTx)
	block.AddTransaction(minedTx)

	pool.PurgeForConnectedBlock(block)

	if pool.Have(mined.Txid) {
		t.Fatal("a transaction the connecting block itself carries should be purged")
	}
	if pool.Have(loser.Txid) {
		t.Fatal("loser conflicts with a mined spend of the same input and should have been purged")
	}
	if pool.Have(descendant.Txid) {
		t.Fatal("descendant of a purged conflicting transaction should also be purged")
	}
}
