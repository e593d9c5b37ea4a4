// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package headersync

import (
	"sync"
	"sync/atomic"

	"github.com/excc-labs/fluxnoded/store"
	"github.com/excc-labs/fluxnoded/wire"
)

// preValidatePOW runs store.ValidateHeaderPOW across headers using workers
// goroutines that share a single atomic cursor into the batch, matching
// §4.3's header_verify_workers pool. baseHeight is the height of headers[0]
// (i.e. its parent's height + 1). Any single header's failure aborts the
// whole batch: the first error observed is returned once every worker has
// finished the headers it already started.
func preValidatePOW(db *store.DB, headers []*wire.BlockHeader, baseHeight int64, workers int) error {
	if workers < 1 {
		workers = 1
	}
	if workers > len(headers) {
		workers = len(headers)
	}

	var cursor int64 = -1
	var mu sync.Mutex
	var firstErr error
	var wg sync.WaitGroup

	n := int64(len(headers))
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := atomic.AddInt64(&cursor, 1)
				if i >= n {
					return
				}
				mu.Lock()
				abort := firstErr != nil
				mu.Unlock()
				if abort {
					return
				}
				if err := db.ValidateHeaderPOW(headers[i], baseHeight+i); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}
