// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfetch

import (
	"sync"
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

type inFlightEntry struct {
	hash       chainhash.Hash
	requestedAt time.Time
}

// Coordinator hands out K-hash chunks from a shared queue to up to I
// in-flight slots per peer, tracking which peer is expected to deliver which
// hash so a stray block can be dropped and a missing one reassigned. It has
// no network I/O of its own: Assign calls Peer.SendGetData, and the pipeline
// feeding stage calls back in as blocks/notfound/reject arrive.
type Coordinator struct {
	mu sync.Mutex

	queue     []chainhash.Hash
	inFlight  map[string][]inFlightEntry // peer addr -> its outstanding chunks' hashes
	batchSize int
	maxInFlightPerPeer int
}

// NewCoordinator seeds the shared queue with hashes, to be fetched batchSize
// at a time with up to maxInFlightPerPeer chunks outstanding per peer.
func NewCoordinator(hashes []chainhash.Hash, batchSize, maxInFlightPerPeer int) *Coordinator {
	if batchSize < 1 {
		batchSize = 1
	}
	if maxInFlightPerPeer < 1 {
		maxInFlightPerPeer = 1
	}
	return &Coordinator{
		queue:              append([]chainhash.Hash(nil), hashes...),
		inFlight:           make(map[string][]inFlightEntry),
		batchSize:          batchSize,
		maxInFlightPerPeer: maxInFlightPerPeer,
	}
}

// Remaining reports how many hashes have not been delivered yet, counting
// both the ones still queued and the ones in flight.
func (c *Coordinator) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := len(c.queue)
	for _, entries := range c.inFlight {
		total += len(entries)
	}
	return total
}

// TopUp appends hashes the caller has rediscovered as still missing after a
// round, skipping anything already queued or in flight.
func (c *Coordinator) TopUp(hashes []chainhash.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	known := make(map[chainhash.Hash]struct{}, len(c.queue))
	for _, h := range c.queue {
		known[h] = struct{}{}
	}
	for _, entries := range c.inFlight {
		for _, e := range entries {
			known[e.hash] = struct{}{}
		}
	}
	for _, h := range hashes {
		if _, ok := known[h]; !ok {
			c.queue = append(c.queue, h)
			known[h] = struct{}{}
		}
	}
}

// Assign fills any peer's free in-flight slots from the shared queue and
// sends the resulting getdata requests.
func (c *Coordinator) Assign(peers []Peer, now time.Time) error {
	c.mu.Lock()
	type chunk struct {
		peer   Peer
		hashes []chainhash.Hash
	}
	var chunks []chunk
	// inFlight holds one entry per hash, so a peer's chunk cap is expressed
	// in hashes: maxInFlightPerPeer chunks of batchSize each.
	capHashes := c.maxInFlightPerPeer * c.batchSize
	for _, p := range peers {
		for len(c.inFlight[p.Addr()])+c.batchSize <= capHashes && len(c.queue) > 0 {
			n := c.batchSize
			if n > len(c.queue) {
				n = len(c.queue)
			}
			hashes := append([]chainhash.Hash(nil), c.queue[:n]...)
			c.queue = c.queue[n:]
			entries := make([]inFlightEntry, len(hashes))
			for i, h := range hashes {
				entries[i] = inFlightEntry{hash: h, requestedAt: now}
			}
			c.inFlight[p.Addr()] = append(c.inFlight[p.Addr()], entries...)
			chunks = append(chunks, chunk{peer: p, hashes: hashes})
		}
	}
	c.mu.Unlock()

	for _, ch := range chunks {
		if err := ch.peer.SendGetData(ch.hashes); err != nil {
			return err
		}
	}
	return nil
}

// OnBlockReceived clears hash from peerAddr's in-flight set. It reports
// false (and mutates nothing) if hash was not in flight against that peer,
// the "does not match any in-flight hash" silent-drop case.
func (c *Coordinator) OnBlockReceived(peerAddr string, hash chainhash.Hash) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.inFlight[peerAddr]
	for i, e := range entries {
		if e.hash == hash {
			c.inFlight[peerAddr] = append(entries[:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// dropPeer clears peerAddr's in-flight set, returning the hashes so the
// caller can requeue them.
func (c *Coordinator) dropPeer(peerAddr string) []chainhash.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.inFlight[peerAddr]
	delete(c.inFlight, peerAddr)
	hashes := make([]chainhash.Hash, len(entries))
	for i, e := range entries {
		hashes[i] = e.hash
	}
	c.queue = append(c.queue, hashes...)
	return hashes
}

// OnNotFound bans peerAddr (the chunk is fatal to that peer per §4.4) and
// requeues its outstanding hashes for another peer to pick up.
func (c *Coordinator) OnNotFound(peerAddr string, banner Banner, now time.Time) []chainhash.Hash {
	hashes := c.dropPeer(peerAddr)
	banner.Ban(hostOf(peerAddr), BlockPeerBanSecsNotFound, now)
	return hashes
}

// OnReject bans peerAddr and requeues its outstanding hashes.
func (c *Coordinator) OnReject(peerAddr string, banner Banner, now time.Time) []chainhash.Hash {
	hashes := c.dropPeer(peerAddr)
	banner.Ban(hostOf(peerAddr), BlockPeerBanSecsProtocol, now)
	return hashes
}

// CheckStalls bans and drops any peer whose oldest outstanding request has
// sat unanswered longer than BlockIdleSecs, returning the banned addrs so
// the caller can disconnect them.
func (c *Coordinator) CheckStalls(now time.Time, banner Banner) []string {
	c.mu.Lock()
	var stalled []string
	for addr, entries := range c.inFlight {
		if len(entries) == 0 {
			continue
		}
		oldest := entries[0].requestedAt
		for _, e := range entries[1:] {
			if e.requestedAt.Before(oldest) {
				oldest = e.requestedAt
			}
		}
		if now.Sub(oldest) > BlockIdleSecs {
			stalled = append(stalled, addr)
		}
	}
	c.mu.Unlock()

	for _, addr := range stalled {
		c.dropPeer(addr)
		banner.Ban(hostOf(addr), BlockPeerBanSecsTimeout, now)
	}
	return stalled
}
