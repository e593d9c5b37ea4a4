// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netpeer

import "time"

// Ban score thresholds. ShouldBan reports a decayed score at or above
// BanThreshold, and Peer.Run ends the connection when it does;
// ShouldThrottle reports one at or above ThrottleThreshold. Nothing in this
// package applies ThrottleDelay.
const (
	BanThreshold      = 100
	ThrottleThreshold = 50
	ThrottleDelay     = 500 * time.Millisecond

	// banScoreDecayPerMinute is the rate at which an idle peer's score
	// drifts back toward zero, so a peer that made one mistake a while ago
	// isn't banned for it indefinitely.
	banScoreDecayPerMinute = 1
)

// BanScore is a decaying misbehavior counter attached to a connected peer.
// It is policy, not a consensus object: a disconnected peer's score is gone
// along with the connection, and reconnecting starts fresh.
type BanScore struct {
	score       int
	lastUpdated time.Time
}

// Score returns the current decayed score.
func (b *BanScore) Score(now time.Time) int {
	b.decayTo(now)
	return b.score
}

// Add applies delta (a protocol violation's penalty) and returns the new
// score.
func (b *BanScore) Add(now time.Time, delta int) int {
	b.decayTo(now)
	b.score += delta
	if b.score < 0 {
		b.score = 0
	}
	return b.score
}

// ShouldBan reports whether the peer has crossed BanThreshold.
func (b *BanScore) ShouldBan(now time.Time) bool {
	return b.Score(now) >= BanThreshold
}

// ShouldThrottle reports whether the peer has crossed ThrottleThreshold.
func (b *BanScore) ShouldThrottle(now time.Time) bool {
	return b.Score(now) >= ThrottleThreshold
}

func (b *BanScore) decayTo(now time.Time) {
	if b.lastUpdated.IsZero() || now.Before(b.lastUpdated) {
		b.lastUpdated = now
		return
	}
	minutes := int(now.Sub(b.lastUpdated) / time.Minute)
	if minutes <= 0 {
		return
	}
	b.score -= minutes * banScoreDecayPerMinute
	if b.score < 0 {
		b.score = 0
	}
	b.lastUpdated = now
}
