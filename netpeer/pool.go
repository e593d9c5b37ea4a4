// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netpeer

import (
	"sync"

	"github.com/excc-labs/fluxnoded/blockfetch"
	"github.com/excc-labs/fluxnoded/headersync"
)

// Pool is the connected-peer registry shared by the header sync and
// block-fetch loops. It holds nothing beyond the set of live peers: dialing,
// retry back-off, and outbound connection limits are the connection
// manager's job and are out of this package's scope per the teacher's own
// connmgr/peer split.
type Pool struct {
	mu    sync.Mutex
	peers map[string]*Peer
}

// NewPool returns an empty peer pool.
func NewPool() *Pool {
	return &Pool{peers: make(map[string]*Peer)}
}

// Add registers a handshaken peer, replacing any prior entry at the same
// address (a reconnect).
func (pl *Pool) Add(p *Peer) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.peers[p.Addr()] = p
}

// Remove drops a peer from the pool, e.g. after its Run loop returns.
func (pl *Pool) Remove(addr string) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	delete(pl.peers, addr)
}

// Len reports the number of connected peers.
func (pl *Pool) Len() int {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return len(pl.peers)
}

// Get returns the peer at addr, if connected.
func (pl *Pool) Get(addr string) (*Peer, bool) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	p, ok := pl.peers[addr]
	return p, ok
}

// Peers implements headersync.PeerSource.
func (pl *Pool) Peers() []headersync.Peer {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	out := make([]headersync.Peer, 0, len(pl.peers))
	for _, p := range pl.peers {
		out = append(out, p)
	}
	return out
}

// BlockPeers returns the connected peers as blockfetch.Peer, for the
// block-fetch coordinator's Assign.
func (pl *Pool) BlockPeers() []blockfetch.Peer {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	out := make([]blockfetch.Peer, 0, len(pl.peers))
	for _, p := range pl.peers {
		out = append(out, p)
	}
	return out
}

// All returns the concrete *Peer values, for block-fetch and relay code that
// needs more than the headersync.Peer seam.
func (pl *Pool) All() []*Peer {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	out := make([]*Peer, 0, len(pl.peers))
	for _, p := range pl.peers {
		out = append(out, p)
	}
	return out
}

var _ headersync.PeerSource = (*Pool)(nil)
