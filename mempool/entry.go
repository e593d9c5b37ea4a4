// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// maxPriority caps a transaction's priority so that a handful of very old,
// very large inputs can't make it effectively un-evictable forever.
const maxPriority = 1e16

// Entry is one transaction held in the mempool, together with the
// bookkeeping needed to order, evict, and re-validate it without hitting
// the chain-state store again.
type Entry struct {
	Txid    chainhash.Hash
	Tx      *wire.MsgTx
	Raw     []byte
	Time    int64 // unix seconds this entry was accepted
	Height  int64 // chain tip height at acceptance time

	Fee     int64 // total fee paid, in atoms
	ValueIn int64 // sum of spent input values, in atoms

	// ModifiedSize is Raw's length minus an estimated-signature-size
	// discount per input, used instead of the raw size everywhere fee
	// rate and priority are computed so that as-yet-unsigned or
	// minimally-sized inputs don't get an unfair rate advantage.
	ModifiedSize int

	// Priority is the coin-age-weighted priority this entry had the
	// moment it was accepted, frozen at entry time the same way the
	// size is: recomputing priority against the live height happens via
	// CurrentPriority, not by mutating this field.
	Priority float64

	// WasClearAtEntry records whether every input this transaction spent
	// was already confirmed (not itself a mempool transaction) when this
	// entry was accepted. A child of an unconfirmed parent can never
	// earn free-relay priority no matter how it ages.
	WasClearAtEntry bool

	// FeeDelta and PriorityDelta are operator-applied adjustments from
	// PrioritiseTransaction, added on top of the transaction's own fee
	// and priority when ranking for block templates or eviction.
	FeeDelta      int64
	PriorityDelta float64

	SpentOutpoints []wire.OutPoint
	Parents        []chainhash.Hash
}

// Size is the raw serialized transaction size in bytes.
func (e *Entry) Size() int { return len(e.Raw) }

// ModifiedFee is the entry's fee plus any operator-applied delta.
func (e *Entry) ModifiedFee() int64 { return e.Fee + e.FeeDelta }

// FeeRate returns the modified fee per modified-size byte, used to rank
// entries for eviction and block-template inclusion.
func (e *Entry) FeeRate() float64 {
	if e.ModifiedSize <= 0 {
		return 0
	}
	return float64(e.ModifiedFee()) / float64(e.ModifiedSize)
}

// StartingPriority is the entry's priority as computed at acceptance time,
// with no age bonus applied yet (CurrentPriority adds that).
func (e *Entry) StartingPriority() float64 { return e.Priority }

// ModifiedStartingPriority is StartingPriority plus any operator-applied
// delta.
func (e *Entry) ModifiedStartingPriority() float64 { return e.Priority + e.PriorityDelta }

// CurrentPriority recomputes priority at currentHeight by adding the
// coin-age accrued in every block since acceptance, capped at maxPriority.
// A transaction that was not clear at entry (it spent an unconfirmed
// parent) never accrues additional age-based priority.
func (e *Entry) CurrentPriority(currentHeight int64) float64 {
	if !e.WasClearAtEntry || e.ModifiedSize <= 0 {
		return e.Priority
	}
	blocksSinceEntry := currentHeight - e.Height
	if blocksSinceEntry <= 0 {
		return e.Priority
	}
	delta := float64(blocksSinceEntry) * float64(e.ValueIn) / float64(e.ModifiedSize)
	p := e.Priority + delta
	if p > maxPriority {
		return maxPriority
	}
	return p
}

// ModifiedCurrentPriority is CurrentPriority plus any operator-applied
// delta.
func (e *Entry) ModifiedCurrentPriority(currentHeight int64) float64 {
	p := e.CurrentPriority(currentHeight) + e.PriorityDelta
	if p > maxPriority {
		return maxPriority
	}
	return p
}

// computeStartingPriority derives the coin-age priority a transaction
// starts with: the sum over every input of (input value * input's
// confirmation depth at the time this transaction enters the pool),
// divided by modified size. Shielded spends contribute no traceable input
// value to this computation, so any transaction with at least one shielded
// spend or joinsplit is assigned maxPriority outright, mirroring the
// treatment "this input's age can't be observed, so don't penalize it"
// gets in the reference implementation.
func computeStartingPriority(tx *wire.MsgTx, inputValues []int64, inputConfirmations []int64, modifiedSize int) float64 {
	if len(tx.ShieldedSpends) > 0 || len(tx.JoinSplits) > 0 {
		return maxPriority
	}
	if modifiedSize <= 0 {
		return 0
	}
	var coinAge float64
	for i, v := range inputValues {
		coinAge += float64(v) * float64(inputConfirmations[i])
	}
	p := coinAge / float64(modifiedSize)
	if p > maxPriority {
		return maxPriority
	}
	return p
}
