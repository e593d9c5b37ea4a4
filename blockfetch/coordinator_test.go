// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

type fakeBlockPeer struct {
	addr string
	sent []chainhash.Hash
}

func (p *fakeBlockPeer) Addr() string { return p.addr }
func (p *fakeBlockPeer) SendGetData(hashes []chainhash.Hash) error {
	p.sent = append(p.sent, hashes...)
	return nil
}

type fakeBanner struct {
	banned map[string]time.Duration
}

func (b *fakeBanner) Ban(host string, duration time.Duration, now time.Time) {
	if b.banned == nil {
		b.banned = make(map[string]time.Duration)
	}
	b.banned[host] = duration
}

func hashes(n int) []chainhash.Hash {
	out := make([]chainhash.Hash, n)
	for i := range out {
		out[i][0] = byte(i + 1)
	}
	return out
}

func TestCoordinatorAssignFillsSlotsUpToCap(t *testing.T) {
	c := NewCoordinator(hashes(10), 2, 2)
	peer := &fakeBlockPeer{addr: "peer1:9044"}

	require.NoError(t, c.Assign([]Peer{peer}, time.Now()))
	require.Len(t, peer.sent, 4) // 2 chunks of 2, filling maxInFlightPerPeer
	require.Equal(t, 10, c.Remaining()) // 6 queued + 4 in flight, none delivered
}

func TestCoordinatorOnBlockReceivedMatchesAndDrops(t *testing.T) {
	c := NewCoordinator(hashes(2), 2, 1)
	peer := &fakeBlockPeer{addr: "peer1:9044"}
	require.NoError(t, c.Assign([]Peer{peer}, time.Now()))

	hs := hashes(2)
	require.True(t, c.OnBlockReceived(peer.addr, hs[0]))
	// Already cleared: a duplicate delivery does not match again.
	require.False(t, c.OnBlockReceived(peer.addr, hs[0]))

	unrelated := chainhash.Hash{0xff}
	require.False(t, c.OnBlockReceived(peer.addr, unrelated))
}

func TestCoordinatorOnNotFoundBansAndRequeues(t *testing.T) {
	c := NewCoordinator(hashes(3), 3, 1)
	peer := &fakeBlockPeer{addr: "203.0.113.5:9044"}
	require.NoError(t, c.Assign([]Peer{peer}, time.Now()))
	require.Equal(t, 3, c.Remaining()) // all 3 in flight against peer, none queued

	banner := &fakeBanner{}
	requeued := c.OnNotFound(peer.addr, banner, time.Now())
	require.Len(t, requeued, 3)
	require.Contains(t, banner.banned, "203.0.113.5")
	require.Equal(t, BlockPeerBanSecsNotFound, banner.banned["203.0.113.5"])

	// The requeued hashes go back on the shared queue for the next Assign.
	other := &fakeBlockPeer{addr: "peer2:9044"}
	require.NoError(t, c.Assign([]Peer{other}, time.Now()))
	require.Len(t, other.sent, 3)
}

func TestCoordinatorCheckStallsBansIdlePeer(t *testing.T) {
	c := NewCoordinator(hashes(1), 1, 1)
	peer := &fakeBlockPeer{addr: "peer1:9044"}
	past := time.Now().Add(-BlockIdleSecs - time.Second)
	require.NoError(t, c.Assign([]Peer{peer}, past))

	banner := &fakeBanner{}
	stalled := c.CheckStalls(time.Now(), banner)
	require.Equal(t, []string{peer.addr}, stalled)
	require.Contains(t, banner.banned, "peer1")
}

func TestCoordinatorTopUpSkipsKnownHashes(t *testing.T) {
	c := NewCoordinator(hashes(2), 2, 1)
	extra := append(hashes(2), hashes(3)[2])
	c.TopUp(extra)
	require.Equal(t, 3, c.Remaining())
}
