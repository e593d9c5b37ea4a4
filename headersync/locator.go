// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package headersync

import (
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/store"
)

// maxLocatorWalk bounds how many doubling-step hops BuildLocator will take
// before giving up and returning what it has, guarding against a pathologic
// height overflow rather than any realistic chain length.
const maxLocatorWalk = 64

// BuildLocator returns a sparse list of ancestor hashes for the header
// chain's current tip: every recent header, then doubling the step
// (1,1,2,4,8,...) until genesis is reached or maxLocatorWalk hops have been
// taken. With no headers yet it returns nil; if an ancestor lookup fails
// partway it returns the hashes collected so far.
func BuildLocator(db *store.DB) []chainhash.Hash {
	tip := db.BestHeader()
	if tip.Height == 0 && tip.Hash == (chainhash.Hash{}) {
		return nil
	}

	locator := make([]chainhash.Hash, 0, 32)
	locator = append(locator, tip.Hash)

	height := tip.Height
	step := int64(1)
	for hops := 0; height > 0 && hops < maxLocatorWalk; hops++ {
		height -= step
		if height < 0 {
			height = 0
		}
		hash, ok, err := db.HeaderAncestorHash(tip, height)
		if err != nil || !ok {
			break
		}
		locator = append(locator, hash)
		if height == 0 {
			break
		}
		if len(locator) > 10 {
			step *= 2
		}
	}
	return locator
}
