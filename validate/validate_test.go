// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validate

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg"
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/flatfile"
	"github.com/excc-labs/fluxnoded/store"
	"github.com/excc-labs/fluxnoded/txscript/stdscript"
	"github.com/excc-labs/fluxnoded/wire"
)

func testPubKeyHashScript(t *testing.T, seed byte) []byte {
	t.Helper()
	var h [20]byte
	for i := range h {
		h[i] = seed
	}
	script, err := stdscript.PayToPubKeyHashScript(h[:])
	if err != nil {
		t.Fatalf("PayToPubKeyHashScript: %v", err)
	}
	return script
}

func openTestPipeline(t *testing.T) (*Pipeline, *store.DB, *chaincfg.Params) {
	t.Helper()
	params := chaincfg.RegNetParams()
	params.Checkpoints = nil
	params.SubsidySlowStartInterval = 0

	db, err := store.Open(filepath.Join(t.TempDir(), "chainstate"), params)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	writer, err := flatfile.Open(filepath.Join(t.TempDir(), "blocks"), 0)
	if err != nil {
		t.Fatalf("flatfile.Open: %v", err)
	}
	t.Cleanup(func() { _ = writer.Close() })

	p, err := New(db, writer, 100)
	if err != nil {
		t.Fatalf("validate.New: %v", err)
	}
	return p, db, params
}

// coinbaseOnlyBlock builds and stages (via InsertHeadersBatch) a block
// containing only a coinbase transaction paying subsidy to an output keyed
// on seed, extending prevHash at height.
func coinbaseOnlyBlock(t *testing.T, db *store.DB, params *chaincfg.Params, prevHash chainhash.Hash, height int64, seed byte) *wire.MsgBlock {
	t.Helper()

	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
		SignatureScript:  []byte{byte(height)},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	coinbase.AddTxOut(&wire.TxOut{Value: params.BlockSubsidy(height), PkScript: testPubKeyHashScript(t, seed)})

	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   4,
			PrevBlock: prevHash,
			Timestamp: time.Unix(1_600_000_000+height, 0),
			Bits:      params.PowLimitBits,
			Solution:  []byte{0},
			NodesCollateral: wire.NodesCollateral{
				Index: 0xffffffff,
			},
		},
	}
	block.AddTransaction(coinbase)
	block.Header.MerkleRoot = coinbase.TxHash()

	if _, err := db.InsertHeadersBatch([]*wire.BlockHeader{&block.Header}, store.HeaderValidationFlags{SkipPOW: true}); err != nil {
		t.Fatalf("InsertHeadersBatch height %d: %v", height, err)
	}
	return block
}

func TestAcceptBlockConnectsGenesisAndExtends(t *testing.T) {
	p, db, params := openTestPipeline(t)

	genesis := coinbaseOnlyBlock(t, db, params, chainhash.Hash{}, 0, 0)
	if _, err := p.AcceptBlock(genesis, []byte("genesis-raw")); err != nil {
		t.Fatalf("AcceptBlock(genesis): %v", err)
	}

	prevHash := genesis.BlockHash()
	for h := int64(1); h <= 2; h++ {
		block := coinbaseOnlyBlock(t, db, params, prevHash, h, byte(h))
		if _, err := p.AcceptBlock(block, []byte{byte(h)}); err != nil {
			t.Fatalf("AcceptBlock(height %d): %v", h, err)
		}
		prevHash = block.BlockHash()
	}

	best, haveTip := db.BestBlock()
	if !haveTip || best.Height != 2 {
		t.Fatalf("best_block = %+v, want height 2", best)
	}
}

func TestAcceptBlockRejectsBlockWithNoAcceptedHeader(t *testing.T) {
	p, _, params := openTestPipeline(t)

	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}})
	coinbase.AddTxOut(&wire.TxOut{Value: params.BlockSubsidy(0), PkScript: testPubKeyHashScript(t, 0)})
	block := &wire.MsgBlock{Header: wire.BlockHeader{Version: 4}}
	block.AddTransaction(coinbase)

	if _, err := p.AcceptBlock(block, nil); err == nil {
		t.Fatal("expected an error accepting a block whose header was never staged")
	}
}

func TestReorgToSwitchesToCompetingChain(t *testing.T) {
	p, db, params := openTestPipeline(t)

	genesis := coinbaseOnlyBlock(t, db, params, chainhash.Hash{}, 0, 0)
	if _, err := p.AcceptBlock(genesis, []byte("g")); err != nil {
		t.Fatalf("AcceptBlock(genesis): %v", err)
	}

	// Original chain: genesis -> a1 -> a2.
	a1 := coinbaseOnlyBlock(t, db, params, genesis.BlockHash(), 1, 1)
	if _, err := p.AcceptBlock(a1, []byte("a1")); err != nil {
		t.Fatalf("AcceptBlock(a1): %v", err)
	}
	a2 := coinbaseOnlyBlock(t, db, params, a1.BlockHash(), 2, 2)
	if _, err := p.AcceptBlock(a2, []byte("a2")); err != nil {
		t.Fatalf("AcceptBlock(a2): %v", err)
	}

	// Competing chain forking at genesis: genesis -> b1 -> b2 -> b3,
	// longer than the original so it becomes the new tip once reorged to.
	b1 := coinbaseOnlyBlock(t, db, params, genesis.BlockHash(), 1, 11)
	b2 := coinbaseOnlyBlock(t, db, params, b1.BlockHash(), 2, 12)
	b3 := coinbaseOnlyBlock(t, db, params, b2.BlockHash(), 3, 13)

	rawByHash := map[chainhash.Hash][]byte{
		b1.BlockHash(): []byte("b1"),
		b2.BlockHash(): []byte("b2"),
		b3.BlockHash(): []byte("b3"),
	}
	if err := p.ReorgTo(b3.BlockHash(), []*wire.MsgBlock{b1, b2, b3}, rawByHash); err != nil {
		t.Fatalf("ReorgTo: %v", err)
	}

	best, haveTip := db.BestBlock()
	if !haveTip || best.Height != 3 || best.Hash != b3.BlockHash() {
		t.Fatalf("best_block after reorg = %+v, want height 3 hash %s", best, b3.BlockHash())
	}

	// The original chain's height-2 coinbase UTXO must be gone; the
	// competing chain's must be present.
	if _, ok, err := db.UtxoEntry(wire.OutPoint{Hash: a2.Transactions[0].TxHash(), Index: 0}); err != nil || ok {
		t.Fatalf("original chain's a2 coinbase UTXO still present after reorg: ok=%v err=%v", ok, err)
	}
	if _, ok, err := db.UtxoEntry(wire.OutPoint{Hash: b3.Transactions[0].TxHash(), Index: 0}); err != nil || !ok {
		t.Fatalf("expected b3 coinbase UTXO present after reorg: ok=%v err=%v", ok, err)
	}
}

func TestReorgToRequiresAnExistingTip(t *testing.T) {
	p, _, _ := openTestPipeline(t)
	err := p.ReorgTo(chainhash.Hash{}, nil, nil)
	if err == nil {
		t.Fatal("expected an error reorging with no connected tip")
	}
}
