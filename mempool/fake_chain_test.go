// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/store"
	"github.com/excc-labs/fluxnoded/wire"
)

// fakeChain is a minimal in-memory ChainView used to exercise the pool
// without standing up a real store.DB.
type fakeChain struct {
	utxos    map[wire.OutPoint]store.UtxoEntry
	best     store.HeaderEntry
	haveBest bool

	saplingAnchors    map[chainhash.Hash]bool
	saplingNullifiers map[[32]byte]bool
	sproutAnchors     map[chainhash.Hash]bool
	sproutNullifiers  map[[32]byte]bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		utxos:             make(map[wire.OutPoint]store.UtxoEntry),
		saplingAnchors:    make(map[chainhash.Hash]bool),
		saplingNullifiers: make(map[[32]byte]bool),
		sproutAnchors:     make(map[chainhash.Hash]bool),
		sproutNullifiers:  make(map[[32]byte]bool),
	}
}

func (c *fakeChain) UtxoEntry(op wire.OutPoint) (store.UtxoEntry, bool, error) {
	e, ok := c.utxos[op]
	return e, ok, nil
}

func (c *fakeChain) SaplingAnchorExists(root chainhash.Hash) (bool, error) {
	return c.saplingAnchors[root], nil
}

func (c *fakeChain) SaplingNullifierSpent(n [32]byte) (bool, error) {
	return c.saplingNullifiers[n], nil
}

func (c *fakeChain) SproutAnchorExists(root chainhash.Hash) (bool, error) {
	return c.sproutAnchors[root], nil
}

func (c *fakeChain) SproutNullifierSpent(n [32]byte) (bool, error) {
	return c.sproutNullifiers[n], nil
}

func (c *fakeChain) BestBlock() (store.HeaderEntry, bool) {
	return c.best, c.haveBest
}

var _ ChainView = (*fakeChain)(nil)
