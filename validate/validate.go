// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package validate orchestrates the three-stage per-block pipeline the
// header sync and block fetch loops drive: header verification already runs
// inside store.InsertHeadersBatch, so this package's job is everything that
// happens once a block's full body has arrived — structural/script
// verification, shielded-state bookkeeping, and the connect-effects commit —
// plus the reorg walk that disconnects down to a common ancestor before
// connecting a better competing chain.
package validate

import (
	"fmt"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/store"
	"github.com/excc-labs/fluxnoded/txscript"
	"github.com/excc-labs/fluxnoded/wire"
)

// Pipeline wires a chain-state store, its flatfile collaborator, and a
// shared signature cache into the block-acceptance path.
type Pipeline struct {
	DB       *store.DB
	Writer   store.BlockWriter
	SigCache *txscript.SigCache
}

// New returns a Pipeline with a freshly allocated signature cache.
func New(db *store.DB, writer store.BlockWriter, sigCacheEntries uint) (*Pipeline, error) {
	cache, err := txscript.NewSigCache(sigCacheEntries)
	if err != nil {
		return nil, fmt.Errorf("validate: new sig cache: %w", err)
	}
	return &Pipeline{DB: db, Writer: writer, SigCache: cache}, nil
}

// AcceptBlock validates and connects block onto the current tip. Callers
// are responsible for ensuring block's header was already accepted by
// store.InsertHeadersBatch; AcceptBlock re-derives height from the header
// index rather than trusting a caller-supplied value.
func (p *Pipeline) AcceptBlock(block *wire.MsgBlock, raw []byte) (*store.UndoRecord, error) {
	hash := block.BlockHash()
	entry, ok, err := p.DB.HeaderEntryByHash(hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("validate: block %s has no accepted header", hash)
	}
	return p.DB.ConnectBlock(block, entry.Height, p.Writer, raw, store.ConnectFlags{SigCache: p.SigCache})
}

// ReorgTo disconnects blocks down to the common ancestor of the current
// best block and newTip, then connects newTipBlocks (oldest first: the
// common ancestor's child through newTip) in order.
//
// If connecting one of newTipBlocks fails partway through, ReorgTo leaves
// the store sitting at whatever ancestor-chain block it last successfully
// connected rather than attempting to restore the pre-reorg tip itself: the
// original chain's raw block bytes are the caller's (headersync/blockfetch
// keep their own retained copies for exactly this), so re-driving a retry
// of the original chain through AcceptBlock is the caller's job, matching
// the tip-moved-under-us handling described for the header-lead cap (§4.3).
func (p *Pipeline) ReorgTo(newTip chainhash.Hash, newTipBlocks []*wire.MsgBlock, rawByHash map[chainhash.Hash][]byte) error {
	best, haveTip := p.DB.BestBlock()
	if !haveTip {
		return fmt.Errorf("validate: reorg requested with no connected tip")
	}

	ancestor, err := p.DB.FindCommonAncestor(best.Hash, newTip)
	if err != nil {
		return err
	}

	for {
		cur, _ := p.DB.BestBlock()
		if cur.Hash == ancestor {
			break
		}
		if _, err := p.DB.DisconnectBlock(p.Writer); err != nil {
			return fmt.Errorf("validate: reorg disconnect at height %d: %w", cur.Height, err)
		}
	}

	for _, block := range newTipBlocks {
		hash := block.BlockHash()
		if _, err := p.AcceptBlock(block, rawByHash[hash]); err != nil {
			return fmt.Errorf("validate: reorg connect %s: %w", hash, err)
		}
	}
	return nil
}
