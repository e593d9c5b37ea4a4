// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package headersync

import (
	"sync"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

// pendingQueue holds header batches whose parent hasn't been committed to
// the header index yet, keyed by that missing parent hash, exactly the
// "pending map prev_hash -> headers_batch" the commit loop owns per §3.
type pendingQueue struct {
	mu       sync.Mutex
	byParent map[chainhash.Hash][]headersBatch
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{byParent: make(map[chainhash.Hash][]headersBatch)}
}

// Stage queues batch under its first header's parent hash.
func (q *pendingQueue) Stage(batch headersBatch) {
	q.mu.Lock()
	defer q.mu.Unlock()
	parent := batch.headers[0].PrevBlock
	q.byParent[parent] = append(q.byParent[parent], batch)
}

// Drain removes and returns every batch waiting on committedHash, in the
// order they were staged.
func (q *pendingQueue) Drain(committedHash chainhash.Hash) []headersBatch {
	q.mu.Lock()
	defer q.mu.Unlock()
	waiting, ok := q.byParent[committedHash]
	if !ok {
		return nil
	}
	delete(q.byParent, committedHash)
	return waiting
}

// Len reports how many batches are currently queued, for diagnostics.
func (q *pendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, batches := range q.byParent {
		n += len(batches)
	}
	return n
}
