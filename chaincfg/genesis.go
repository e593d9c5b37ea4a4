// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// newGenesisBlock builds the single-transaction block that seeds a chain: a
// coinbase with no inputs and one unspendable output carrying coinbaseText,
// mined (or, for regtest/simnet, merely stamped) with the given header
// fields. Callers overwrite GenesisHash with the network's well-known value;
// the synthetic block built here reproduces the coinbase an operator would
// see in block 0, not necessarily the exact historical solution bytes.
func newGenesisBlock(coinbaseText string, timestamp time.Time, bits uint32, nonce [32]byte, solution []byte) *wire.MsgBlock {
	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
		SignatureScript:  []byte(coinbaseText),
		Sequence:         wire.MaxTxInSequenceNum,
	})
	coinbase.AddTxOut(&wire.TxOut{
		Value:    0,
		PkScript: []byte{0x6a}, // OP_RETURN: genesis reward is unspendable.
	})

	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   4,
			Timestamp: timestamp,
			Bits:      bits,
			Nonce:     nonce,
			Solution:  solution,
			NodesCollateral: wire.NodesCollateral{
				Index: 0xffffffff,
			},
		},
	}
	block.AddTransaction(coinbase)
	return block
}

// mustHash parses a big-endian hex hash string, panicking on failure. It is
// only ever called at package init time against literal constants, so a
// malformed literal is a programming error worth a panic rather than a
// propagated error.
func mustHash(s string) chainhash.Hash {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		panic(err)
	}
	return *h
}
