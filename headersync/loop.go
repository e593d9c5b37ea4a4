// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package headersync keeps a POW-valid header chain slightly ahead of the
// connected-block tip: probing peers, building sparse locators, staging and
// committing header batches under a bounded "header lead", and rewinding
// that lead when it runs too far ahead.
package headersync

import (
	"fmt"
	"math"
	"net"
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/store"
	"github.com/excc-labs/fluxnoded/wire"
)

// Loop owns the pending-batch map and drives header staging and commit
// against a chain-state store. It has no network I/O of its own: HandleHeaders
// is fed by whatever reads wire.MsgHeaders off a Peer, and ProbeAndRequest
// is the only call that reaches back out to a peer.
type Loop struct {
	DB     *store.DB
	Banner Banner

	// HeaderLead bounds best_header.Height - best_block.Height.
	HeaderLead int64
	// HeaderVerifyWorkers is the parallelism of the POW pre-validation
	// pass run ahead of each batch's authoritative commit.
	HeaderVerifyWorkers int

	pending *pendingQueue
}

// NewLoop returns a Loop with the default header lead and worker count.
func NewLoop(db *store.DB, banner Banner) *Loop {
	return &Loop{
		DB:                  db,
		Banner:              banner,
		HeaderLead:          DefaultHeaderLead,
		HeaderVerifyWorkers: 4,
		pending:             newPendingQueue(),
	}
}

// PendingCount reports how many header batches are queued awaiting a
// parent, for diagnostics/metrics.
func (l *Loop) PendingCount() int {
	return l.pending.Len()
}

// ProbeAndRequest selects the best eligible peer from source (banning, along
// the way, any candidate whose announced height is suspiciously far behind
// our own tip) and sends it a getheaders built from the current header
// chain's locator.
func (l *Loop) ProbeAndRequest(source PeerSource, now time.Time) error {
	best := l.DB.BestHeader()

	var candidates []Peer
	for _, p := range source.Peers() {
		if l.banIfBehind(p, best.Height, now) {
			continue
		}
		candidates = append(candidates, p)
	}

	peer, ok := SelectProbePeer(candidates, best.Height, ProbeLagTolerance)
	if !ok {
		return fmt.Errorf("headersync: no eligible peer to probe")
	}

	locator := BuildLocator(l.DB)
	return peer.SendGetHeaders(locator, chainhash.Hash{})
}

// banIfBehind bans peer and reports true if its announced height is more
// than HeaderBehindBanThreshold below ourHeight.
func (l *Loop) banIfBehind(peer Peer, ourHeight int64, now time.Time) bool {
	if int64(peer.AnnouncedHeight()) < ourHeight-HeaderBehindBanThreshold {
		l.Banner.Ban(hostOf(peer.Addr()), HeaderBehindBanSecs, now)
		return true
	}
	return false
}

// HandleHeaders validates headers for internal contiguity, banning and
// rejecting the batch if it fails, then stages/commits it.
func (l *Loop) HandleHeaders(headers []*wire.BlockHeader, from string, now time.Time) error {
	if len(headers) == 0 {
		return nil
	}
	if err := checkContiguous(headers); err != nil {
		l.Banner.Ban(hostOf(from), HeaderBadChainBanSecs, now)
		return err
	}
	return l.commit(headersBatch{headers: headers, from: from, staged: now}, now)
}

func checkContiguous(headers []*wire.BlockHeader) error {
	for i := 1; i < len(headers); i++ {
		if headers[i].PrevBlock != headers[i-1].BlockHash() {
			return fmt.Errorf("headersync: batch not contiguous at index %d", i)
		}
	}
	return nil
}

// commit is the commit loop's per-batch body: resolve the parent, parallel
// pre-validate POW, trim to the header-lead cap, insert the prefix, requeue
// the suffix, and drain anything waiting on a hash this batch just
// committed.
func (l *Loop) commit(batch headersBatch, now time.Time) error {
	parentHash := batch.headers[0].PrevBlock
	parent, haveParent, err := l.DB.HeaderEntryByHash(parentHash)
	if err != nil {
		return err
	}
	if !haveParent && parentHash != (chainhash.Hash{}) {
		// Parent not yet in the index and this isn't a genesis batch:
		// queue it and wait for whatever batch commits parentHash.
		l.pending.Stage(batch)
		log.Debugf("headersync: staged %d header(s) from %s awaiting parent %s",
			len(batch.headers), batch.from, parentHash)
		return nil
	}

	baseHeight := int64(0)
	if haveParent {
		baseHeight = parent.Height + 1
	}

	if err := preValidatePOW(l.DB, batch.headers, baseHeight, l.HeaderVerifyWorkers); err != nil {
		l.Banner.Ban(hostOf(batch.from), HeaderBadChainBanSecs, now)
		return fmt.Errorf("headersync: pow pre-validation: %w", err)
	}

	headers, suffix := l.trimToLead(batch.headers, baseHeight)
	if len(headers) == 0 {
		l.pending.Stage(headersBatch{headers: suffix, from: batch.from, staged: now})
		return nil
	}

	prevBestHeader := l.DB.BestHeader()
	results, err := l.DB.InsertHeadersBatch(headers, store.HeaderValidationFlags{SkipPOW: false})
	if err != nil {
		l.Banner.Ban(hostOf(batch.from), HeaderBadChainBanSecs, now)
		return fmt.Errorf("headersync: commit: %w", err)
	}

	if newBest := l.DB.BestHeader(); newBest.ChainWork != nil && prevBestHeader.ChainWork != nil &&
		newBest.ChainWork.Cmp(prevBestHeader.ChainWork) <= 0 {
		log.Warnf("headersync: committed batch from %s did not advance best header chainwork "+
			"(possible reorg in progress)", batch.from)
	}

	if len(suffix) > 0 {
		l.pending.Stage(headersBatch{headers: suffix, from: batch.from, staged: now})
	}

	for _, r := range results {
		for _, waiting := range l.pending.Drain(r.Hash) {
			if err := l.commit(waiting, now); err != nil {
				log.Warnf("headersync: draining batch queued on %s from %s: %v", r.Hash, waiting.from, err)
			}
		}
	}
	return nil
}

// trimToLead splits headers at the header-lead cap relative to the
// connected-block tip: prefix is safe to commit now, suffix (possibly
// empty) is requeued under the last prefix header's hash (or, if prefix is
// empty, under the batch's own original parent via the caller).
func (l *Loop) trimToLead(headers []*wire.BlockHeader, baseHeight int64) (prefix, suffix []*wire.BlockHeader) {
	best, haveTip := l.DB.BestBlock()
	maxHeight := int64(math.MaxInt64)
	if haveTip {
		maxHeight = best.Height + l.HeaderLead
	}
	for i := range headers {
		if baseHeight+int64(i) > maxHeight {
			return headers[:i], headers[i:]
		}
	}
	return headers, nil
}

// CapHeaderGap rewinds best_header to the ancestor at best_block.Height +
// HeaderLead whenever the lead has been violated (e.g. on restart after the
// connected tip fell behind). It never disconnects a block; it only moves
// the header-only pointer.
func (l *Loop) CapHeaderGap(now time.Time) error {
	best, haveTip := l.DB.BestBlock()
	if !haveTip {
		return nil
	}
	bestHeader := l.DB.BestHeader()
	maxHeight := best.Height + l.HeaderLead
	if bestHeader.Height <= maxHeight {
		return nil
	}
	ancestor, ok, err := l.DB.HeaderAncestorHash(bestHeader, maxHeight)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("headersync: cap header gap: no ancestor at height %d", maxHeight)
	}
	return l.DB.SetBestHeader(ancestor)
}

// hostOf strips the port from a "host:port" peer address, falling back to
// the whole string if it doesn't parse (e.g. already a bare host).
func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
