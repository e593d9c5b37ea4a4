// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package headersync

import "time"

// Policy constants, matching the §4.3 ban/timeout thresholds by name.
const (
	// DefaultHeaderLead bounds how far best_header may run ahead of
	// best_block before CapHeaderGap rewinds the header-only pointer.
	DefaultHeaderLead = 2000

	// ProbeLagTolerance is how far below our own tip a candidate peer's
	// announced height may sit and still be chosen as the probe target.
	ProbeLagTolerance = 2

	// HeaderBehindBanThreshold/HeaderBehindBanSecs: a peer announcing a
	// height this far below our tip is assumed stale or lying and banned.
	HeaderBehindBanThreshold = 144
	HeaderBehindBanSecs      = 1 * time.Hour

	// HeaderBadChainBanSecs bans a peer that serves a non-contiguous or
	// disconnected header batch.
	HeaderBadChainBanSecs = 24 * time.Hour

	// Header request timeout schedule: starts short, widens while we're
	// behind (more data expected per response), relaxes once caught up.
	HeaderRequestTimeoutMin = 10 * time.Second
	HeaderRequestTimeoutMax = 2 * time.Minute

	// MaxConsecutiveTimeouts is the number of request timeouts in a row
	// allowed for one peer. Loop does not count timeouts or disconnect
	// peers; nothing in this package reads this constant.
	MaxConsecutiveTimeouts = 3

	// HeaderCommitQueueSize is a capacity for a queue of inbound header
	// batches. Loop has no such queue (HandleHeaders commits synchronously);
	// nothing in this package reads this constant.
	HeaderCommitQueueSize = 64
)

// requestTimeout returns the header request timeout for the current gap
// between our best known header and the probe peer's announced height:
// widens linearly from the minimum up to the maximum while behind.
func requestTimeout(heightGap int64) time.Duration {
	if heightGap <= 0 {
		return HeaderRequestTimeoutMin
	}
	scaled := HeaderRequestTimeoutMin + time.Duration(heightGap)*time.Millisecond*50
	if scaled > HeaderRequestTimeoutMax {
		return HeaderRequestTimeoutMax
	}
	return scaled
}
