// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockfetch coordinates downloading block bodies for a header
// chain that already extends past the connected tip, and the three-stage
// verify/shielded/connect pipeline that commits them.
package blockfetch

import (
	"fmt"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/store"
)

// FindMissingBlocks returns, in ascending height order, the hashes of the
// longest run of best_header-chain blocks starting just after the common
// ancestor of best_header and best_block that are not yet connected. It is
// capped at limit entries; callers wanting the whole gap call it again
// after the returned blocks connect. The common ancestor comes from the
// store's FindCommonAncestor, which reaches equal heights via skip links
// and then walks back one parent at a time below any fork.
func FindMissingBlocks(db *store.DB, limit int) ([]chainhash.Hash, error) {
	bestHeader := db.BestHeader()

	startHeight := int64(0)
	if bestBlock, haveBlock := db.BestBlock(); haveBlock {
		ancestorHash, err := db.FindCommonAncestor(bestHeader.Hash, bestBlock.Hash)
		if err != nil {
			return nil, fmt.Errorf("blockfetch: find common ancestor: %w", err)
		}
		ancestor, ok, err := db.HeaderEntryByHash(ancestorHash)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("blockfetch: common ancestor %s not indexed", ancestorHash)
		}
		startHeight = ancestor.Height + 1
	}

	var hashes []chainhash.Hash
	for h := startHeight; h <= bestHeader.Height && len(hashes) < limit; h++ {
		hash, ok, err := db.HeaderAncestorHash(bestHeader, h)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		hashes = append(hashes, hash)
	}
	return hashes, nil
}
