// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool holds not-yet-mined transactions, validating each against
// both consensus rules and relay policy before admitting it, and tracking
// the parent/child relationships needed to evict or re-accept them as the
// chain tip moves.
package mempool

import (
	"sort"
	"sync"

	"github.com/excc-labs/fluxnoded/chaincfg"
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/container/apbf"
	"github.com/excc-labs/fluxnoded/store"
	"github.com/excc-labs/fluxnoded/txscript"
	"github.com/excc-labs/fluxnoded/wire"
)

// rejectFilterCapacity and rejectFilterFalsePositiveRate size the recently-
// rejected-transaction filter: generous enough to remember a flood of
// distinct bad transactions for a while without costing much memory, with
// a low enough false-positive rate that an occasional wrongly-filtered
// retry (which just means re-validating once more) is the only cost of a
// collision.
const (
	rejectFilterCapacity          = 50000
	rejectFilterFalsePositiveRate = 0.0001
)

// ChainView is the read-only slice of store.DB the mempool needs: UTXO,
// shielded anchor/nullifier, and tip lookups. Defined as an interface so
// tests can substitute a fake chain state without standing up a real
// store.DB.
type ChainView interface {
	UtxoEntry(op wire.OutPoint) (store.UtxoEntry, bool, error)
	SaplingAnchorExists(root chainhash.Hash) (bool, error)
	SaplingNullifierSpent(n [32]byte) (bool, error)
	SproutAnchorExists(root chainhash.Hash) (bool, error)
	SproutNullifierSpent(n [32]byte) (bool, error)
	BestBlock() (store.HeaderEntry, bool)
}

type prioritisation struct {
	feeDelta      int64
	priorityDelta float64
}

// Pool is the set of transactions this node has validated and is willing
// to relay and mine, plus the orphan pool of transactions seen but not yet
// acceptable for want of an input.
type Pool struct {
	mu sync.RWMutex

	chain    ChainView
	params   *chaincfg.Params
	sigCache *txscript.SigCache
	policy   Policy

	entries  map[chainhash.Hash]*Entry
	spentBy  map[wire.OutPoint]chainhash.Hash
	children map[chainhash.Hash]map[chainhash.Hash]struct{}

	sproutNullifiers  map[[32]byte]chainhash.Hash
	saplingNullifiers map[[32]byte]chainhash.Hash

	prioritisations map[chainhash.Hash]prioritisation

	totalBytes int64

	orphans         map[chainhash.Hash]*orphanTx
	orphansByParent map[chainhash.Hash]map[chainhash.Hash]struct{}
	orphanBytes     int64

	freeRelay freeRelayLimiter

	// rejectFilter remembers recently-rejected txids so a flood of
	// resubmissions of the same known-bad transaction short-circuits
	// before paying for script verification again.
	rejectFilter *apbf.Filter

	// revision increments on every mutation (Insert, Remove,
	// RemoveWithDescendants, PurgeForConnectedBlock). A block-template
	// builder snapshots it before reading the pool and can cheaply tell
	// whether anything changed underneath it by comparing again after.
	revision uint64
}

// Revision returns the pool's current mutation counter.
func (p *Pool) Revision() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.revision
}

// New creates an empty mempool backed by chain for confirmed-state lookups.
func New(params *chaincfg.Params, chain ChainView, sigCache *txscript.SigCache, policy Policy) *Pool {
	return &Pool{
		chain:             chain,
		params:            params,
		sigCache:          sigCache,
		policy:            policy,
		entries:           make(map[chainhash.Hash]*Entry),
		spentBy:           make(map[wire.OutPoint]chainhash.Hash),
		children:          make(map[chainhash.Hash]map[chainhash.Hash]struct{}),
		sproutNullifiers:  make(map[[32]byte]chainhash.Hash),
		saplingNullifiers: make(map[[32]byte]chainhash.Hash),
		prioritisations:   make(map[chainhash.Hash]prioritisation),
		orphans:           make(map[chainhash.Hash]*orphanTx),
		orphansByParent:   make(map[chainhash.Hash]map[chainhash.Hash]struct{}),
		rejectFilter:      apbf.NewFilter(rejectFilterCapacity, rejectFilterFalsePositiveRate),
	}
}

// Count returns the number of transactions currently accepted.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Have reports whether txid is already held.
func (p *Pool) Have(txid chainhash.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.entries[txid]
	return ok
}

// Entry returns the held entry for txid, if any.
func (p *Pool) Entry(txid chainhash.Hash) (*Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entries[txid]
	return e, ok
}

// LookupOutput returns the UtxoEntry-shaped view of an in-mempool output
// op points at, so a child spending its unconfirmed parent's output can be
// validated without that output ever having touched the chain state store.
func (p *Pool) LookupOutput(op wire.OutPoint) (store.UtxoEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entries[op.Hash]
	if !ok || int(op.Index) >= len(e.Tx.TxOut) {
		return store.UtxoEntry{}, false
	}
	out := e.Tx.TxOut[op.Index]
	return store.UtxoEntry{Value: out.Value, PkScript: out.PkScript, Height: e.Height, IsCoinbase: false}, true
}

// PrioritiseTransaction applies an operator fee/priority adjustment to an
// already-held transaction, taking effect immediately for ranking and
// eviction purposes.
func (p *Pool) PrioritiseTransaction(txid chainhash.Hash, feeDelta int64, priorityDelta float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pr := p.prioritisations[txid]
	pr.feeDelta += feeDelta
	pr.priorityDelta += priorityDelta
	p.prioritisations[txid] = pr
	if e, ok := p.entries[txid]; ok {
		e.FeeDelta = pr.feeDelta
		e.PriorityDelta = pr.priorityDelta
	}
}

// Insert admits entry into the pool, recording its spent outpoints,
// shielded nullifiers, and parent/child linkage, then evicts the
// lowest-fee-rate entries if the pool now exceeds its byte ceiling.
func (p *Pool) Insert(entry *Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.insertLocked(entry)
}

func (p *Pool) insertLocked(entry *Entry) error {
	if _, exists := p.entries[entry.Txid]; exists {
		return ruleErrorf(ErrAlreadyInMempool, "tx %s already in mempool", entry.Txid)
	}
	for _, op := range entry.SpentOutpoints {
		if spender, ok := p.spentBy[op]; ok {
			return ruleErrorf(ErrConflictingInput, "tx %s conflicts with %s over input %s", entry.Txid, spender, op)
		}
	}
	for _, n := range entry.Tx.ShieldedSpends {
		if _, ok := p.saplingNullifiers[n.Nullifier]; ok {
			return ruleErrorf(ErrConflictingInput, "tx %s: sapling nullifier already in mempool", entry.Txid)
		}
	}
	for _, js := range entry.Tx.JoinSplits {
		for _, n := range js.Nullifiers {
			if _, ok := p.sproutNullifiers[n]; ok {
				return ruleErrorf(ErrConflictingInput, "tx %s: sprout nullifier already in mempool", entry.Txid)
			}
		}
	}

	if pr, ok := p.prioritisations[entry.Txid]; ok {
		entry.FeeDelta = pr.feeDelta
		entry.PriorityDelta = pr.priorityDelta
	}

	p.entries[entry.Txid] = entry
	p.totalBytes += int64(entry.Size())
	for _, op := range entry.SpentOutpoints {
		p.spentBy[op] = entry.Txid
	}
	for _, n := range entry.Tx.ShieldedSpends {
		p.saplingNullifiers[n.Nullifier] = entry.Txid
	}
	for _, js := range entry.Tx.JoinSplits {
		for _, n := range js.Nullifiers {
			p.sproutNullifiers[n] = entry.Txid
		}
	}
	for _, parent := range entry.Parents {
		set, ok := p.children[parent]
		if !ok {
			set = make(map[chainhash.Hash]struct{})
			p.children[parent] = set
		}
		set[entry.Txid] = struct{}{}
	}

	p.revision++
	p.evictToFitLocked()
	return nil
}

// Remove drops txid alone, leaving any children in place (they become
// orphan-eligible on their next re-validation, which callers drive by
// calling Remove on a whole disconnected block's transactions in one pass
// before re-accepting them).
func (p *Pool) Remove(txid chainhash.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(txid)
}

// RemoveWithDescendants drops txid and every transaction in the pool that
// (transitively) spends one of its outputs, matching the reference node's
// mined-transaction eviction: once a transaction is confirmed, anything
// still in the pool spending it conflicts with reality if it differs, and
// depends on it if it doesn't, so cannot usefully remain either way.
func (p *Pool) RemoveWithDescendants(txid chainhash.Hash) []chainhash.Hash {
	p.mu.Lock()
	defer p.mu.Unlock()

	var removed []chainhash.Hash
	stack := []chainhash.Hash{txid}
	seen := map[chainhash.Hash]struct{}{}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		if _, ok := p.entries[cur]; ok {
			removed = append(removed, cur)
		}
		for child := range p.children[cur] {
			stack = append(stack, child)
		}
	}
	for _, h := range removed {
		p.removeLocked(h)
	}
	return removed
}

func (p *Pool) removeLocked(txid chainhash.Hash) {
	entry, ok := p.entries[txid]
	if !ok {
		return
	}
	delete(p.entries, txid)
	p.totalBytes -= int64(entry.Size())
	for _, op := range entry.SpentOutpoints {
		if p.spentBy[op] == txid {
			delete(p.spentBy, op)
		}
	}
	for _, n := range entry.Tx.ShieldedSpends {
		if p.saplingNullifiers[n.Nullifier] == txid {
			delete(p.saplingNullifiers, n.Nullifier)
		}
	}
	for _, js := range entry.Tx.JoinSplits {
		for _, n := range js.Nullifiers {
			if p.sproutNullifiers[n] == txid {
				delete(p.sproutNullifiers, n)
			}
		}
	}
	for _, parent := range entry.Parents {
		if set, ok := p.children[parent]; ok {
			delete(set, txid)
			if len(set) == 0 {
				delete(p.children, parent)
			}
		}
	}
	delete(p.children, txid)
	delete(p.prioritisations, txid)
	p.revision++
}

// evictToFitLocked drops the lowest fee-rate entries, oldest first among
// ties, until the pool is back under its byte ceiling. Eviction proceeds
// leaf-first (an entry with children still in the pool is skipped) so a
// parent is never evicted out from under a child still depending on it;
// the child's own turn comes once it is itself a leaf.
func (p *Pool) evictToFitLocked() {
	if p.policy.MaxMempoolBytes <= 0 || p.totalBytes <= p.policy.MaxMempoolBytes {
		return
	}
	for p.totalBytes > p.policy.MaxMempoolBytes {
		var victims []*Entry
		for txid, e := range p.entries {
			if len(p.children[txid]) == 0 {
				victims = append(victims, e)
			}
		}
		if len(victims) == 0 {
			return
		}
		sort.Slice(victims, func(i, j int) bool {
			ri, rj := victims[i].FeeRate(), victims[j].FeeRate()
			if ri != rj {
				return ri < rj
			}
			if victims[i].Time != victims[j].Time {
				return victims[i].Time < victims[j].Time
			}
			return chainhashLess(victims[i].Txid, victims[j].Txid)
		})
		p.removeLocked(victims[0].Txid)
	}
}

func chainhashLess(a, b chainhash.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
