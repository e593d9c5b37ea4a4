// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfetch

import (
	"bytes"
	"fmt"
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/store"
	"github.com/excc-labs/fluxnoded/wire"
)

// serializeBlock re-encodes a decoded block back to wire bytes. The wire
// collaborator hands this package decoded messages, not the bytes it read
// off the socket (framing is entirely its concern per wire's package doc),
// so this is the cheapest way to get something to hand the flatfile writer
// through validate.Pipeline.AcceptBlock.
func serializeBlock(block *wire.MsgBlock) ([]byte, error) {
	var buf bytes.Buffer
	if err := block.BtcEncode(&buf, wire.ProtocolVersion); err != nil {
		return nil, fmt.Errorf("blockfetch: serialize block %s: %w", block.BlockHash(), err)
	}
	return buf.Bytes(), nil
}

// Fetcher drives one round of §4.4's download loop: discover the missing
// prefix of the header chain, hand it to a Coordinator to fan out across
// connected peers in bounded in-flight chunks, collect bodies as they
// arrive, and run the completed prefix through Pipeline in height order.
// A Fetcher's state is scoped to a single round; callers start a fresh one
// (via NewRound) each time FindMissingBlocks has more to offer.
type Fetcher struct {
	DB       *store.DB
	Pipeline *Pipeline
	Banner   Banner

	BatchSize       int
	InFlightPerPeer int

	order    []chainhash.Hash
	heights  map[chainhash.Hash]int64
	received map[chainhash.Hash]Job
	coord    *Coordinator
	rounds   int
}

// NewRound starts a fetch round for the longest missing prefix of the header
// chain, capped at limit hashes.
func (f *Fetcher) NewRound(limit int) error {
	hashes, err := FindMissingBlocks(f.DB, limit)
	if err != nil {
		return err
	}
	return f.startRound(hashes)
}

func (f *Fetcher) startRound(hashes []chainhash.Hash) error {
	batchSize := f.BatchSize
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	inFlight := f.InFlightPerPeer
	if inFlight < 1 {
		inFlight = DefaultInFlightPerPeer
	}

	heights := make(map[chainhash.Hash]int64, len(hashes))
	for _, h := range hashes {
		entry, ok, err := f.DB.HeaderEntryByHash(h)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("blockfetch: missing block %s has no header entry", h)
		}
		heights[h] = entry.Height
	}

	f.order = hashes
	f.heights = heights
	f.received = make(map[chainhash.Hash]Job, len(hashes))
	f.coord = NewCoordinator(hashes, batchSize, inFlight)
	f.rounds = 0
	return nil
}

// Done reports whether every hash in the current round has arrived and been
// run through the pipeline.
func (f *Fetcher) Done() bool {
	return f.coord == nil || (f.coord.Remaining() == 0 && len(f.received) == 0)
}

// Assign fills free in-flight slots across peers for the current round.
func (f *Fetcher) Assign(peers []Peer, now time.Time) error {
	if f.coord == nil {
		return nil
	}
	return f.coord.Assign(peers, now)
}

// TopUp counts one more fetch round for whatever is left of the round's
// hashes and reports whether another round is allowed: true when nothing is
// left or fewer than MaxFetchRounds top-ups have been taken, false once the
// cap is reached, at which point the next scheduler tick calls NewRound from
// scratch. TopUp sends nothing itself; the leftover hashes stay on the
// coordinator's queue and go out on the next Assign.
func (f *Fetcher) TopUp() bool {
	if f.coord == nil || f.coord.Remaining() == 0 {
		return true
	}
	if f.rounds >= MaxFetchRounds {
		return false
	}
	f.rounds++
	return true
}

// OnBlock records a delivered block against the round's coordinator and, if
// it completes the round, runs the whole batch through Pipeline in height
// order. It reports false (and changes nothing else) if the block did not
// match any in-flight request, the silent-drop case from §4.4.
func (f *Fetcher) OnBlock(stop <-chan struct{}, peerAddr string, block *wire.MsgBlock) (bool, error) {
	if f.coord == nil {
		return false, nil
	}
	hash := block.BlockHash()
	if !f.coord.OnBlockReceived(peerAddr, hash) {
		return false, nil
	}
	height, ok := f.heights[hash]
	if !ok {
		return false, nil
	}
	raw, err := serializeBlock(block)
	if err != nil {
		return true, err
	}
	f.received[hash] = Job{Hash: hash, Height: height, Block: block, Raw: raw, From: peerAddr}

	if f.coord.Remaining() > 0 || len(f.received) < len(f.order) {
		return true, nil
	}

	jobs := make([]Job, len(f.order))
	for i, h := range f.order {
		jobs[i] = f.received[h]
	}
	err = f.Pipeline.Run(stop, jobs)
	f.received = make(map[chainhash.Hash]Job)
	return true, err
}

// OnNotFound and OnReject forward a peer's failure response to the
// coordinator, which bans the peer and requeues its in-flight hashes.
func (f *Fetcher) OnNotFound(peerAddr string, now time.Time) {
	if f.coord != nil {
		f.coord.OnNotFound(peerAddr, f.Banner, now)
	}
}

func (f *Fetcher) OnReject(peerAddr string, now time.Time) {
	if f.coord != nil {
		f.coord.OnReject(peerAddr, f.Banner, now)
	}
}

// CheckStalls bans and drops any peer sitting on an unanswered request past
// BlockIdleSecs, returning their addresses so the caller can disconnect them.
func (f *Fetcher) CheckStalls(now time.Time) []string {
	if f.coord == nil {
		return nil
	}
	return f.coord.CheckStalls(now, f.Banner)
}
