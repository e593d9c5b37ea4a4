// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// orphanTx is a transaction that failed acceptance only for a missing
// input, held in case its parent arrives later.
type orphanTx struct {
	tx       *wire.MsgTx
	raw      []byte
	received int64
	expiry   int64
}

// AddOrphan queues tx, evicting the oldest orphan first if the pool is at
// either its count or byte ceiling. A transaction already queued is left
// alone rather than re-timestamped, matching the reference node's
// first-seen eviction order.
func (p *Pool) AddOrphan(tx *wire.MsgTx, raw []byte, missing []wire.OutPoint, now int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	txid := tx.TxHash()
	if _, ok := p.orphans[txid]; ok {
		return
	}

	p.expireOrphansLocked(now)
	for len(p.orphans) >= p.policy.MaxOrphans || p.orphanBytes+int64(len(raw)) > p.policy.MaxOrphanBytes {
		if !p.evictOldestOrphanLocked() {
			break
		}
	}

	o := &orphanTx{tx: tx, raw: raw, received: now, expiry: now + int64(p.policy.OrphanTTL.Seconds())}
	p.orphans[txid] = o
	p.orphanBytes += int64(len(raw))

	seenParent := make(map[chainhash.Hash]struct{})
	for _, op := range missing {
		if _, ok := seenParent[op.Hash]; ok {
			continue
		}
		seenParent[op.Hash] = struct{}{}
		set, ok := p.orphansByParent[op.Hash]
		if !ok {
			set = make(map[chainhash.Hash]struct{})
			p.orphansByParent[op.Hash] = set
		}
		set[txid] = struct{}{}
	}
}

// HaveOrphan reports whether txid is already queued as an orphan.
func (p *Pool) HaveOrphan(txid chainhash.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.orphans[txid]
	return ok
}

func (p *Pool) removeOrphanLocked(txid chainhash.Hash) {
	o, ok := p.orphans[txid]
	if !ok {
		return
	}
	delete(p.orphans, txid)
	p.orphanBytes -= int64(len(o.raw))
	for _, in := range o.tx.TxIn {
		parent := in.PreviousOutPoint.Hash
		if set, ok := p.orphansByParent[parent]; ok {
			delete(set, txid)
			if len(set) == 0 {
				delete(p.orphansByParent, parent)
			}
		}
	}
}

func (p *Pool) expireOrphansLocked(now int64) {
	var expired []chainhash.Hash
	for txid, o := range p.orphans {
		if now >= o.expiry {
			expired = append(expired, txid)
		}
	}
	for _, txid := range expired {
		p.removeOrphanLocked(txid)
	}
}

// evictOldestOrphanLocked drops the single oldest-received orphan and
// reports whether there was one to drop.
func (p *Pool) evictOldestOrphanLocked() bool {
	var oldest chainhash.Hash
	var oldestTime int64 = -1
	for txid, o := range p.orphans {
		if oldestTime == -1 || o.received < oldestTime {
			oldest = txid
			oldestTime = o.received
		}
	}
	if oldestTime == -1 {
		return false
	}
	p.removeOrphanLocked(oldest)
	return true
}

// ProcessOrphansAfterAccept re-validates every orphan that was only
// waiting on acceptedTxid, accepting it (and recursing into anything that
// was in turn waiting on it) or re-queuing it if it is still missing a
// different input. It returns the full set of transactions newly accepted
// this pass, in acceptance order.
func (p *Pool) ProcessOrphansAfterAccept(acceptedTxid chainhash.Hash, now int64) []chainhash.Hash {
	var accepted []chainhash.Hash
	work := []chainhash.Hash{acceptedTxid}

	for len(work) > 0 {
		parent := work[0]
		work = work[1:]

		p.mu.RLock()
		waiting := make([]chainhash.Hash, 0, len(p.orphansByParent[parent]))
		for txid := range p.orphansByParent[parent] {
			waiting = append(waiting, txid)
		}
		p.mu.RUnlock()

		for _, txid := range waiting {
			p.mu.RLock()
			o, ok := p.orphans[txid]
			p.mu.RUnlock()
			if !ok {
				continue
			}

			entry, err := p.buildEntry(o.tx, o.raw, now)
			if err != nil {
				var missErr RuleError
				if errors.As(err, &missErr) && missErr.Kind == ErrMissingInput {
					continue // still waiting on something else
				}
				p.mu.Lock()
				p.removeOrphanLocked(txid)
				p.mu.Unlock()
				continue
			}

			p.mu.Lock()
			p.removeOrphanLocked(txid)
			insertErr := p.insertLocked(entry)
			p.mu.Unlock()
			if insertErr != nil {
				continue
			}

			accepted = append(accepted, txid)
			work = append(work, txid)
		}
	}

	return accepted
}
