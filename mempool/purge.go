// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// PurgeForConnectedBlock reconciles the pool with a block that just
// connected to the tip: every transaction the block itself mined is
// dropped (its bookkeeping is now the chain state's job, not the pool's),
// and any transaction still held that spent one of the block's inputs
// through a different transaction — a double-spend the block just
// resolved in someone else's favor — is dropped along with everything
// that (transitively) depended on it, since mining settled the conflict
// against it for good.
func (p *Pool) PurgeForConnectedBlock(block *wire.MsgBlock) {
	p.mu.Lock()

	minedTxids := make(map[chainhash.Hash]struct{}, len(block.Transactions))
	var conflicting []chainhash.Hash
	for _, tx := range block.Transactions {
		txid := tx.TxHash()
		minedTxids[txid] = struct{}{}
		if _, held := p.entries[txid]; held {
			continue
		}
		for _, in := range tx.TxIn {
			if spender, ok := p.spentBy[in.PreviousOutPoint]; ok {
				conflicting = append(conflicting, spender)
			}
		}
	}
	p.mu.Unlock()

	for _, txid := range minedTxids32(minedTxids) {
		p.Remove(txid)
	}
	for _, txid := range conflicting {
		p.RemoveWithDescendants(txid)
	}
}

func minedTxids32(m map[chainhash.Hash]struct{}) []chainhash.Hash {
	out := make([]chainhash.Hash, 0, len(m))
	for h := range m {
		out = append(out, h)
	}
	return out
}
