// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netpeer implements the wire-level peer state machine this core
// drives: handshake sequencing, ping/pong keepalive, inv/getdata dispatch,
// and ban-score accounting. The actual byte stream (framing, magic,
// checksums) is supplied by an external P2P wire collaborator through the
// Transport interface; this package never reads or writes a socket itself.
package netpeer

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/excc-labs/fluxnoded/blockfetch"
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/headersync"
	"github.com/excc-labs/fluxnoded/wire"
)

// PingInterval is how often an idle peer is pinged to detect a dead
// connection and to measure round-trip time.
const PingInterval = 2 * time.Minute

// Peer wraps a Transport with the protocol-level state (handshake result,
// ban score, announced height) the rest of the node needs.
type Peer struct {
	t       Transport
	version *wire.MsgVersion
	ban     BanScore

	announcedHeight atomic.Int32
	lastPingNonce   atomic.Uint64
	lastPingSent    atomic.Int64 // unix nanos
}

// NewPeer performs the handshake over t and returns a ready Peer.
func NewPeer(t Transport, ourVersion *wire.MsgVersion) (*Peer, error) {
	peerVersion, err := Handshake(t, ourVersion)
	if err != nil {
		return nil, err
	}
	p := &Peer{t: t, version: peerVersion}
	p.announcedHeight.Store(peerVersion.LastBlock)
	return p, nil
}

// Addr is the peer's "host:port" identity, matching the address book and
// ban list key.
func (p *Peer) Addr() string { return p.t.RemoteAddr() }

// AnnouncedHeight returns the best height the peer has told us about, either
// at handshake time or via a later headers/inv message.
func (p *Peer) AnnouncedHeight() int32 { return p.announcedHeight.Load() }

// UserAgent returns the peer's self-reported client string.
func (p *Peer) UserAgent() string { return p.version.UserAgent }

// Send writes msg to the peer.
func (p *Peer) Send(msg wire.Message) error { return p.t.Send(msg) }

// SendGetHeaders implements headersync.Peer.
func (p *Peer) SendGetHeaders(locator []chainhash.Hash, stop chainhash.Hash) error {
	m := &wire.MsgGetHeaders{HashStop: stop}
	for _, h := range locator {
		m.AddBlockLocatorHash(&h)
	}
	return p.t.Send(m)
}

// SendGetData requests the given inventory, used by the block-fetch
// pipeline to pull block bodies and by mempool relay to pull transactions.
func (p *Peer) SendGetData(invType wire.InvType, hashes []chainhash.Hash) error {
	m := &wire.MsgGetData{}
	for _, h := range hashes {
		m.AddInvVect(&wire.InvVect{Type: invType, Hash: h})
	}
	return p.t.Send(m)
}

// SendGetDataBlocks requests full block bodies by hash. It implements
// blockfetch.Peer, the narrow seam blockfetch's coordinator calls out
// through instead of importing this package's concrete type.
func (p *Peer) SendGetDataBlocks(hashes []chainhash.Hash) error {
	return p.SendGetData(wire.InvTypeBlock, hashes)
}

// Ban records a protocol-violation penalty against this connection and
// reports whether it has now crossed the ban threshold.
func (p *Peer) Ban(now time.Time, delta int) bool {
	return p.ban.Add(now, delta) >= BanThreshold
}

// Run reads messages off the transport until it errors, the peer is banned,
// or stop is closed, dispatching each to h. It owns the connection's
// keepalive ping as well. Closing the transport is assumed to unblock a
// pending Receive in the background read goroutine, the same contract
// rubin-protocol's peer loop relies on for ctx cancellation.
func (p *Peer) Run(stop <-chan struct{}, h Handler) error {
	pingTicker := time.NewTicker(PingInterval)
	defer pingTicker.Stop()

	msgCh := make(chan wire.Message)
	errCh := make(chan error, 1)
	go func() {
		for {
			msg, err := p.t.Receive()
			if err != nil {
				errCh <- err
				return
			}
			msgCh <- msg
		}
	}()

	for {
		select {
		case <-stop:
			return p.t.Close()
		case err := <-errCh:
			return err
		case <-pingTicker.C:
			if err := p.sendPing(); err != nil {
				return err
			}
		case msg := <-msgCh:
			now := time.Now()
			if err := p.dispatch(now, msg, h); err != nil {
				return err
			}
			if p.ban.ShouldBan(now) {
				return fmt.Errorf("netpeer: %s: banned (score=%d)", p.Addr(), p.ban.Score(now))
			}
		}
	}
}

func (p *Peer) sendPing() error {
	nonce := p.lastPingNonce.Add(1)
	p.lastPingSent.Store(time.Now().UnixNano())
	return p.t.Send(&wire.MsgPing{Nonce: nonce})
}

// dispatch decodes the command and invokes the matching Handler method.
// Most handler errors are treated as protocol violations and add a
// per-message-type ban-score penalty without ending the connection; an
// OnNotFound error is ignored, and OnReject and OnGetAddr errors are
// returned to Run, which then ends.
func (p *Peer) dispatch(now time.Time, msg wire.Message, h Handler) error {
	switch m := msg.(type) {
	case *wire.MsgPing:
		return p.t.Send(&wire.MsgPong{Nonce: m.Nonce})
	case *wire.MsgPong:
		// RTT tracking is a connmgr-level concern layered on top; ignored here.
		return nil
	case *wire.MsgVersion:
		// A second version after handshake is malformed.
		p.ban.Add(now, 10)
		return nil
	case *wire.MsgGetHeaders:
		if err := h.OnGetHeaders(p, m); err != nil {
			p.ban.Add(now, 10)
		}
		return nil
	case *wire.MsgHeaders:
		if err := h.OnHeaders(p, m); err != nil {
			p.ban.Add(now, 20)
		}
		return nil
	case *wire.MsgInv:
		if err := h.OnInv(p, m); err != nil {
			p.ban.Add(now, 5)
		}
		return nil
	case *wire.MsgGetData:
		if err := h.OnGetData(p, m); err != nil {
			p.ban.Add(now, 2)
		}
		return nil
	case *wire.MsgNotFound:
		_ = h.OnNotFound(p, m)
		return nil
	case *wire.MsgBlock:
		if err := h.OnBlock(p, m); err != nil {
			p.ban.Add(now, 100)
		}
		return nil
	case *wire.MsgTx:
		if err := h.OnTx(p, m); err != nil {
			p.ban.Add(now, 5)
		}
		return nil
	case *wire.MsgReject:
		return h.OnReject(p, m)
	case *wire.MsgAddr:
		if err := h.OnAddr(p, m); err != nil {
			p.ban.Add(now, 10)
		}
		return nil
	case *wire.MsgGetAddr:
		return h.OnGetAddr(p)
	default:
		return nil
	}
}

var _ headersync.Peer = (*Peer)(nil)
var _ blockfetch.Peer = (*Peer)(nil)
