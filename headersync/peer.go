// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package headersync

import (
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// Peer is the narrow slice of a connected peer's capabilities the header
// sync loop needs. The concrete wire-level peer (handshake, framing,
// message dispatch) is netpeer's job and an external P2P-framing
// collaborator's per §1; this interface is the seam between them so
// headersync never imports netpeer's concrete types.
type Peer interface {
	// Addr returns the peer's "host:port" identity, the same string the
	// address book and ban list key on.
	Addr() string
	// AnnouncedHeight returns the best height the peer advertised at
	// handshake time or in its most recent inv/headers traffic.
	AnnouncedHeight() int32
	// SendGetHeaders requests headers following locator, stopping at
	// stop (the zero hash meaning "as many as the peer will send").
	SendGetHeaders(locator []chainhash.Hash, stop chainhash.Hash) error
}

// PeerSource returns the set of currently connected peers eligible for
// header-sync probing.
type PeerSource interface {
	Peers() []Peer
}

// Banner records a ban against a peer's host, matching
// addrmgr.Manager.Ban's signature so an *addrmgr.Manager satisfies this
// without an adapter.
type Banner interface {
	Ban(host string, duration time.Duration, now time.Time)
}

// SelectProbePeer picks the probe target from candidates: the
// highest-announced-height peer that is not more than lagTolerance below
// ourHeight. Returns ok=false if no candidate clears the bar.
func SelectProbePeer(candidates []Peer, ourHeight int64, lagTolerance int64) (Peer, bool) {
	var best Peer
	var bestHeight int32 = -1
	for _, p := range candidates {
		h := p.AnnouncedHeight()
		if int64(h) < ourHeight-lagTolerance {
			continue
		}
		if best == nil || h > bestHeight {
			best, bestHeight = p, h
		}
	}
	return best, best != nil
}

// headersBatch is a contiguous run of headers staged by the receive task,
// paired with the peer that supplied them and its receive timestamp.
type headersBatch struct {
	headers []*wire.BlockHeader
	from    string
	staged  time.Time
}

