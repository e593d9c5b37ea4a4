// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"math"
	"time"

	"github.com/excc-labs/fluxnoded/wire"
)

// Pruning and eligibility thresholds, matching the address book's decay
// policy: an entry that has never succeeded is kept warm for two weeks,
// a chronically failing entry is dropped a day after its last failure,
// and a just-attempted entry is left alone for a few seconds so
// concurrent sample callers don't pile onto the same candidate.
const (
	pruneStaleAge         = 14 * 24 * time.Hour
	pruneFailureCount     = 8
	pruneFailureAge       = 24 * time.Hour
	recentAttemptCooldown = 5 * time.Second
	backoffBase           = 5 * time.Second
	backoffCap            = time.Hour
	heightEligibilityLag  = 100
)

// KnownAddress tracks everything the address book remembers about one
// network address: the wire-level address itself plus the bookkeeping
// needed to decide whether it's worth a connection attempt right now.
type KnownAddress struct {
	na          *wire.NetAddress
	attempts    int
	successes   int
	failures    int
	lastAttempt time.Time
	lastSuccess time.Time
	lastFailure time.Time
	lastSeen    time.Time
	lastHeight  int64
	lastVersion int32
	tried       bool
	refs        int
}

// NetAddress returns the address this entry describes.
func (ka *KnownAddress) NetAddress() *wire.NetAddress {
	return ka.na
}

// backoffUntil returns the time before which the entry should not be
// retried, given its current failure streak: an exponential backoff of
// backoffBase * 2^failures, capped at backoffCap.
func (ka *KnownAddress) backoffUntil() time.Time {
	if ka.failures == 0 {
		return time.Time{}
	}
	d := backoffBase * time.Duration(math.Pow(2, float64(ka.failures)))
	if d > backoffCap || d <= 0 {
		d = backoffCap
	}
	return ka.lastFailure.Add(d)
}

// isBad reports whether the entry has decayed past the point of being
// worth keeping at all: either it has never succeeded and hasn't been
// seen in a very long time, or it has failed chronically with no
// success to offset it.
func (ka *KnownAddress) isBad(now time.Time) bool {
	if ka.successes == 0 && now.Sub(ka.lastSeen) > pruneStaleAge {
		return true
	}
	if ka.failures >= pruneFailureCount && ka.successes == 0 &&
		now.Sub(ka.lastFailure) > pruneFailureAge {
		return true
	}
	return false
}

// eligible reports whether the entry is a legal candidate to hand out
// from sample_for_height: a real port, not attempted too recently, not
// too far behind the requested height, and past any failure backoff.
func (ka *KnownAddress) eligible(now time.Time, minHeight int64) bool {
	if ka.na.Port == 0 {
		return false
	}
	if !ka.lastAttempt.IsZero() && now.Sub(ka.lastAttempt) < recentAttemptCooldown {
		return false
	}
	if ka.lastHeight != 0 && ka.lastHeight < minHeight-heightEligibilityLag {
		return false
	}
	if until := ka.backoffUntil(); !until.IsZero() && now.Before(until) {
		return false
	}
	return true
}

// chance scores the entry's general desirability as a connection
// candidate: recency of success and a success/failure ratio, independent
// of any particular target height.
func (ka *KnownAddress) chance(now time.Time) float64 {
	c := 0.5
	if !ka.lastSuccess.IsZero() {
		days := now.Sub(ka.lastSuccess).Hours() / 24
		c = 1.0 / (1.0 + days)
	}
	c *= float64(ka.successes+1) / float64(ka.successes+ka.failures+1)
	if ka.tried {
		c *= 1.1 // a slight edge for addresses with a proven handshake
	}
	return c
}

// heightBias scores how close the entry's last-announced height is to
// minHeight: candidates near the requested height are preferred over
// ones that are merely eligible.
func (ka *KnownAddress) heightBias(minHeight int64) float64 {
	if ka.lastHeight == 0 {
		return 0.75
	}
	diff := ka.lastHeight - minHeight
	if diff < 0 {
		diff = -diff
	}
	return 1.0 / (1.0 + float64(diff)/50)
}

// score combines chance and heightBias into the single ranking value
// sample_for_height sorts candidates by.
func (ka *KnownAddress) score(now time.Time, minHeight int64) float64 {
	return ka.chance(now) * ka.heightBias(minHeight)
}
