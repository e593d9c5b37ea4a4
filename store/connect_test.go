// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg"
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/txscript/stdscript"
	"github.com/excc-labs/fluxnoded/wire"
)

// memBlockWriter is an in-memory BlockWriter stand-in for the flatfile
// collaborator, so chain-state tests can exercise ConnectBlock/
// DisconnectBlock without touching the filesystem twice.
type memBlockWriter struct {
	blocks map[chainhash.Hash][]byte
	undo   map[chainhash.Hash][]byte
}

func newMemBlockWriter() *memBlockWriter {
	return &memBlockWriter{
		blocks: make(map[chainhash.Hash][]byte),
		undo:   make(map[chainhash.Hash][]byte),
	}
}

func (w *memBlockWriter) AppendBlock(hash chainhash.Hash, raw []byte) (BlockLocation, error) {
	w.blocks[hash] = append([]byte(nil), raw...)
	return BlockLocation{FileID: 0, Offset: 0, Len: uint32(len(raw))}, nil
}

func (w *memBlockWriter) AppendUndo(hash chainhash.Hash, undo []byte) error {
	w.undo[hash] = append([]byte(nil), undo...)
	return nil
}

func (w *memBlockWriter) ReadUndo(hash chainhash.Hash) ([]byte, error) {
	b, ok := w.undo[hash]
	if !ok {
		return nil, ruleErrorf(ErrUndoMissing, "no undo record for %s", hash)
	}
	return b, nil
}

func (w *memBlockWriter) ReadBlock(loc BlockLocation) ([]byte, error) {
	return nil, ruleError(ErrStorage, "memBlockWriter.ReadBlock unused in tests")
}

var _ BlockWriter = (*memBlockWriter)(nil)

// testPubKeyHashScript returns a structurally valid P2PKH output script
// paying an arbitrary 20-byte hash derived from seed, distinct per seed.
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

// openTestDB opens a fresh store.DB rooted at a temp directory using
// regtest parameters, with the regnet genesis checkpoint cleared since
// these tests build their own synthetic genesis headers rather than the
// network's real one.
func openTestDB(t *testing.T) (*DB, *chaincfg.Params) {
	t.Helper()
	params := chaincfg.RegNetParams()
	params.Checkpoints = nil
	dir := filepath.Join(t.TempDir(), "chainstate")
	db, err := Open(dir, params)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, params
}

// mustInsertHeader builds a coinbase-only block at height extending
// prevHash (the zero hash for genesis), stages its header with POW checking
// disabled, and returns the block.
func mustInsertHeader(t *testing.T, db *DB, params *chaincfg.Params, prevHash chainhash.Hash, height int64, coinbaseOutputs []*wire.TxOut, bits uint32) *wire.MsgBlock {
	t.Helper()

	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
		SignatureScript:  []byte{byte(height)},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	for _, out := range coinbaseOutputs {
		coinbase.AddTxOut(out)
	}

	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   4,
			PrevBlock: prevHash,
			Timestamp: time.Unix(1_600_000_000+height, 0),
			Bits:      bits,
			Solution:  []byte{0}, // non-empty; POW checking is disabled below.
			NodesCollateral: wire.NodesCollateral{
				Index: 0xffffffff,
			},
		},
	}
	block.AddTransaction(coinbase)
	block.Header.MerkleRoot = coinbase.TxHash()

	_, err := db.InsertHeadersBatch([]*wire.BlockHeader{&block.Header}, HeaderValidationFlags{SkipPOW: true})
	if err != nil {
		t.Fatalf("InsertHeadersBatch height %d: %v", height, err)
	}
	return block
}

func TestConnectBlockGenesis(t *testing.T) {
	db, params := openTestDB(t)
	genesisSubsidy := params.BlockSubsidy(0)

	genesis := mustInsertHeader(t, db, params, chainhash.Hash{}, 0, []*wire.TxOut{
		{Value: genesisSubsidy, PkScript: testPubKeyHashScript(t, 0)},
	}, params.PowLimitBits)

	writer := newMemBlockWriter()
	hash := genesis.BlockHash()
	raw := []byte("genesis-bytes")

	undo, err := db.ConnectBlock(genesis, 0, writer, raw, ConnectFlags{SkipScripts: true})
	if err != nil {
		t.Fatalf("ConnectBlock(genesis): %v", err)
	}
	if undo.BlockHash != hash {
		t.Fatalf("undo.BlockHash = %s, want %s", undo.BlockHash, hash)
	}

	best, haveTip := db.BestBlock()
	if !haveTip {
		t.Fatal("expected haveTip after connecting genesis")
	}
	if best.Height != 0 || best.Hash != hash {
		t.Fatalf("best_block = %+v, want height 0 hash %s", best, hash)
	}

	coinbaseOp := wire.OutPoint{Hash: genesis.Transactions[0].TxHash(), Index: 0}
	entry, ok, err := db.UtxoEntry(coinbaseOp)
	if err != nil {
		t.Fatalf("UtxoEntry: %v", err)
	}
	if !ok {
		t.Fatal("expected a UTXO entry for the genesis coinbase")
	}
	if entry.Value != genesisSubsidy {
		t.Fatalf("genesis coinbase utxo value = %d, want %d", entry.Value, genesisSubsidy)
	}
}

func TestConnectBlockLinearExtension(t *testing.T) {
	db, params := openTestDB(t)
	params.SubsidySlowStartInterval = 0 // keep the test's subsidy arithmetic simple

	genesis := mustInsertHeader(t, db, params, chainhash.Hash{}, 0, []*wire.TxOut{
		{Value: params.BlockSubsidy(0), PkScript: testPubKeyHashScript(t, 0)},
	}, params.PowLimitBits)
	writer := newMemBlockWriter()
	if _, err := db.ConnectBlock(genesis, 0, writer, []byte("b0"), ConnectFlags{SkipScripts: true}); err != nil {
		t.Fatalf("ConnectBlock(genesis): %v", err)
	}

	prevHash := genesis.BlockHash()
	for h := int64(1); h <= 3; h++ {
		subsidy := params.BlockSubsidy(h)
		outs := []*wire.TxOut{{Value: subsidy, PkScript: testPubKeyHashScript(t, byte(h))}}
		block := mustInsertHeader(t, db, params, prevHash, h, outs, params.PowLimitBits)
		if _, err := db.ConnectBlock(block, h, writer, []byte{byte(h)}, ConnectFlags{SkipScripts: true}); err != nil {
			t.Fatalf("ConnectBlock(height %d): %v", h, err)
		}
		prevHash = block.BlockHash()
	}

	best, haveTip := db.BestBlock()
	if !haveTip || best.Height != 3 {
		t.Fatalf("best_block = %+v, want height 3", best)
	}
	bestHeader := db.BestHeader()
	if bestHeader.Height != 3 || bestHeader.Hash != best.Hash {
		t.Fatalf("best_header = %+v, want it to match best_block at height 3", bestHeader)
	}
}

func TestConnectDisconnectRoundTrip(t *testing.T) {
	db, params := openTestDB(t)
	params.SubsidySlowStartInterval = 0

	genesis := mustInsertHeader(t, db, params, chainhash.Hash{}, 0, []*wire.TxOut{
		{Value: params.BlockSubsidy(0), PkScript: testPubKeyHashScript(t, 0)},
	}, params.PowLimitBits)
	writer := newMemBlockWriter()
	if _, err := db.ConnectBlock(genesis, 0, writer, []byte("b0"), ConnectFlags{SkipScripts: true}); err != nil {
		t.Fatalf("ConnectBlock(genesis): %v", err)
	}

	subsidy := params.BlockSubsidy(1)
	outs := []*wire.TxOut{{Value: subsidy, PkScript: testPubKeyHashScript(t, 7)}}
	block := mustInsertHeader(t, db, params, genesis.BlockHash(), 1, outs, params.PowLimitBits)

	if _, err := db.ConnectBlock(block, 1, writer, []byte("b1"), ConnectFlags{SkipScripts: true}); err != nil {
		t.Fatalf("ConnectBlock(height 1): %v", err)
	}

	newCoinbaseOp := wire.OutPoint{Hash: block.Transactions[0].TxHash(), Index: 0}
	if _, ok, err := db.UtxoEntry(newCoinbaseOp); err != nil || !ok {
		t.Fatalf("expected height-1 coinbase UTXO present before disconnect, ok=%v err=%v", ok, err)
	}

	if _, err := db.DisconnectBlock(writer); err != nil {
		t.Fatalf("DisconnectBlock: %v", err)
	}

	best, haveTip := db.BestBlock()
	if !haveTip || best.Height != 0 || best.Hash != genesis.BlockHash() {
		t.Fatalf("best_block after disconnect = %+v, want genesis at height 0", best)
	}

	if _, ok, err := db.UtxoEntry(newCoinbaseOp); err != nil || ok {
		t.Fatalf("height-1 coinbase UTXO still present after disconnect: ok=%v err=%v", ok, err)
	}

	genesisCoinbaseOp := wire.OutPoint{Hash: genesis.Transactions[0].TxHash(), Index: 0}
	if _, ok, err := db.UtxoEntry(genesisCoinbaseOp); err != nil || !ok {
		t.Fatalf("expected genesis coinbase UTXO restored after disconnect: ok=%v err=%v", ok, err)
	}
}

func TestConnectBlockRejectsImmatureCoinbaseSpend(t *testing.T) {
	db, params := openTestDB(t)
	params.SubsidySlowStartInterval = 0
	params.CoinbaseMaturity = 100

	genesis := mustInsertHeader(t, db, params, chainhash.Hash{}, 0, []*wire.TxOut{
		{Value: params.BlockSubsidy(0), PkScript: testPubKeyHashScript(t, 1)},
	}, params.PowLimitBits)
	writer := newMemBlockWriter()
	if _, err := db.ConnectBlock(genesis, 0, writer, []byte("b0"), ConnectFlags{SkipScripts: true}); err != nil {
		t.Fatalf("ConnectBlock(genesis): %v", err)
	}

	spendTx := wire.NewMsgTx(1)
	spendTx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: genesis.Transactions[0].TxHash(), Index: 0},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	spendTx.AddTxOut(&wire.TxOut{Value: 1, PkScript: testPubKeyHashScript(t, 2)})

	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}, Sequence: wire.MaxTxInSequenceNum})
	coinbase.AddTxOut(&wire.TxOut{Value: params.BlockSubsidy(1), PkScript: testPubKeyHashScript(t, 3)})

	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:         4,
			PrevBlock:       genesis.BlockHash(),
			Timestamp:       time.Unix(1_600_000_001, 0),
			Bits:            params.PowLimitBits,
			Solution:        []byte{0},
			NodesCollateral: wire.NodesCollateral{Index: 0xffffffff},
		},
	}
	block.AddTransaction(coinbase)
	block.AddTransaction(spendTx)
	block.Header.MerkleRoot = calcMerkleRoot(block.TxHashes())

	if _, err := db.InsertHeadersBatch([]*wire.BlockHeader{&block.Header}, HeaderValidationFlags{SkipPOW: true}); err != nil {
		t.Fatalf("InsertHeadersBatch height 1: %v", err)
	}

	_, err := db.ConnectBlock(block, 1, writer, []byte("b1"), ConnectFlags{SkipScripts: true})
	if err == nil {
		t.Fatal("expected immature coinbase spend to be rejected")
	}
	if !errors.Is(err, ErrImmatureSpend) {
		t.Fatalf("got error %v, want ErrImmatureSpend", err)
	}
}
