// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"
	"testing"

	"github.com/excc-labs/fluxnoded/chaincfg"
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/store"
	"github.com/excc-labs/fluxnoded/txscript"
	"github.com/excc-labs/fluxnoded/wire"
)

// nonStandardScript is classified stdscript.STNonStandard, so with
// RequireStandard disabled it clears both standardness enforcement and
// verifyMempoolInputScript without needing a real signature.
var nonStandardScript = []byte{0x51}

func newTestPool(t *testing.T, chain *fakeChain, policy Policy) *Pool {
	t.Helper()
	params := chaincfg.RegNetParams()
	cache, err := txscript.NewSigCache(100)
	if err != nil {
		t.Fatalf("NewSigCache: %v", err)
	}
	return New(params, chain, cache, policy)
}

func fundUtxo(chain *fakeChain, op wire.OutPoint, value, height int64) {
	chain.utxos[op] = store.UtxoEntry{Value: value, PkScript: nonStandardScript, Height: height}
}

func TestAcceptTransactionHappyPath(t *testing.T) {
	chain := newFakeChain()
	chain.best = store.HeaderEntry{Height: 10}
	chain.haveBest = true

	policy := DefaultPolicy()
	policy.RequireStandard = false
	pool := newTestPool(t, chain, policy)

	fundOp := wire.OutPoint{Hash: chainhash.HashH([]byte("coin")), Index: 0}
	fundUtxo(chain, fundOp, 100_000, 5)

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: fundOp, Sequence: wire.MaxTxInSequenceNum})
	tx.AddTxOut(&wire.TxOut{Value: 90_000, PkScript: nonStandardScript})
	raw := make([]byte, 250)

	entry, accepted, err := pool.AcceptTransaction(tx, raw, 1_700_000_000)
	if err != nil {
		t.Fatalf("AcceptTransaction: %v", err)
	}
	if len(accepted) != 0 {
		t.Fatalf("accepted orphans = %v, want none", accepted)
	}
	if entry.Fee != 10_000 {
		t.Fatalf("fee = %d, want 10000", entry.Fee)
	}
	if !pool.Have(entry.Txid) {
		t.Fatal("pool does not hold the accepted transaction")
	}
	if pool.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", pool.Count())
	}
}

func TestAcceptTransactionMissingInputReturnsErrMissingInput(t *testing.T) {
	chain := newFakeChain()
	policy := DefaultPolicy()
	policy.RequireStandard = false
	pool := newTestPool(t, chain, policy)

	missingOp := wire.OutPoint{Hash: chainhash.HashH([]byte("ghost")), Index: 0}
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: missingOp, Sequence: wire.MaxTxInSequenceNum})
	tx.AddTxOut(&wire.TxOut{Value: 1_000, PkScript: nonStandardScript})

	_, _, err := pool.AcceptTransaction(tx, make([]byte, 200), 1_700_000_000)
	if err == nil {
		t.Fatal("expected a missing-input error")
	}
	var ruleErr RuleError
	if !errors.As(err, &ruleErr) || ruleErr.Kind != ErrMissingInput {
		t.Fatalf("err = %v, want RuleError{Kind: ErrMissingInput}", err)
	}
	if len(ruleErr.MissingInputs) != 1 || ruleErr.MissingInputs[0] != missingOp {
		t.Fatalf("MissingInputs = %v, want [%s]", ruleErr.MissingInputs, missingOp)
	}
	if pool.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 on a missing-input rejection", pool.Count())
	}
}

func TestProcessOrphansAfterAcceptResolvesQueuedOrphan(t *testing.T) {
	chain := newFakeChain()
	chain.best = store.HeaderEntry{Height: 10}
	chain.haveBest = true

	policy := DefaultPolicy()
	policy.RequireStandard = false
	pool := newTestPool(t, chain, policy)

	parentFundOp := wire.OutPoint{Hash: chainhash.HashH([]byte("parent-coin")), Index: 0}
	fundUtxo(chain, parentFundOp, 100_000, 5)

	parent := wire.NewMsgTx(1)
	parent.AddTxIn(&wire.TxIn{PreviousOutPoint: parentFundOp, Sequence: wire.MaxTxInSequenceNum})
	parent.AddTxOut(&wire.TxOut{Value: 90_000, PkScript: nonStandardScript})
	parentRaw := make([]byte, 250)
	parentTxid := parent.TxHash()

	child := wire.NewMsgTx(1)
	child.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: parentTxid, Index: 0},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	child.AddTxOut(&wire.TxOut{Value: 80_000, PkScript: nonStandardScript})
	childRaw := make([]byte, 250)

	// The child arrives first: its parent hasn't been seen yet, so it is
	// rejected for a missing input and the caller queues it as an orphan.
	_, _, err := pool.AcceptTransaction(child, childRaw, 1_700_000_000)
	if err == nil {
		t.Fatal("expected child to be rejected as missing an input before its parent arrives")
	}
	var ruleErr RuleError
	if !errors.As(err, &ruleErr) || ruleErr.Kind != ErrMissingInput {
		t.Fatalf("err = %v, want RuleError{Kind: ErrMissingInput}", err)
	}
	pool.AddOrphan(child, childRaw, ruleErr.MissingInputs, 1_700_000_000)
	if !pool.HaveOrphan(child.TxHash()) {
		t.Fatal("child was not queued as an orphan")
	}

	_, accepted, err := pool.AcceptTransaction(parent, parentRaw, 1_700_000_001)
	if err != nil {
		t.Fatalf("AcceptTransaction(parent): %v", err)
	}
	if len(accepted) != 1 || accepted[0] != child.TxHash() {
		t.Fatalf("accepted = %v, want [%s]", accepted, child.TxHash())
	}
	if pool.HaveOrphan(child.TxHash()) {
		t.Fatal("child is still queued as an orphan after its parent was accepted")
	}
	if !pool.Have(child.TxHash()) {
		t.Fatal("child was not admitted to the pool")
	}
	if !pool.Have(parentTxid) {
		t.Fatal("parent was not admitted to the pool")
	}
	if pool.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", pool.Count())
	}
}
