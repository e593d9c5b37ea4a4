// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"math"
	"math/rand"
	"net"
	"sort"
	"time"

	"github.com/excc-labs/fluxnoded/wire"
)

// triedSampleBias is the fraction of a draw that comes from the tried
// bucket before the new bucket is tapped to fill the remainder.
const triedSampleBias = 0.75

// SampleForHeight returns up to limit candidate addresses suitable for a
// peer at or near minHeight: ineligible entries (no port, attempted too
// recently, too far behind minHeight, banned, or still backed off from a
// recent failure) are filtered out, survivors are scored and capped at
// maxPerBucket per network-diversity bucket, and the draw round-robins
// across buckets biased 75% tried / 25% new, topping off from any
// remaining tried candidates if the new bucket can't fill the quota.
func (m *Manager) SampleForHeight(limit int, minHeight int64, now time.Time) []*wire.NetAddress {
	if limit <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	triedCandidates := m.collectEligibleLocked(m.tried, minHeight, now)
	newCandidates := m.collectEligibleLocked(m.newAddrs, minHeight, now)

	triedTarget := int(math.Ceil(float64(limit) * triedSampleBias))
	drawn := drawRoundRobin(triedCandidates, triedTarget)

	if len(drawn) < limit {
		drawn = append(drawn, drawRoundRobin(newCandidates, limit-len(drawn))...)
	}
	if len(drawn) < limit {
		drawn = append(drawn, drawRoundRobin(triedCandidates, limit-len(drawn))...)
	}

	out := make([]*wire.NetAddress, 0, len(drawn))
	for _, ka := range drawn {
		m.recentlySampled.Add([]byte(addrKey(ka.na)))
		out = append(out, ka.na)
	}
	return out
}

// collectEligibleLocked returns, per bucket, the eligible members of set
// sorted best-score-first and capped at maxPerBucket. Callers must hold
// m.mu.
func (m *Manager) collectEligibleLocked(set map[string][]*KnownAddress, minHeight int64, now time.Time) map[string][]*KnownAddress {
	result := make(map[string][]*KnownAddress, len(set))
	for group, bucket := range set {
		var eligible []*KnownAddress
		for _, ka := range bucket {
			if !ka.eligible(now, minHeight) {
				continue
			}
			key := addrKey(ka.na)
			host, _, err := net.SplitHostPort(key)
			if err != nil {
				host = key
			}
			if m.bans.isBanned(host, now) {
				continue
			}
			if m.recentlySampled.Contains([]byte(key)) {
				continue
			}
			eligible = append(eligible, ka)
		}
		if len(eligible) == 0 {
			continue
		}
		sort.Slice(eligible, func(i, j int) bool {
			return eligible[i].score(now, minHeight) > eligible[j].score(now, minHeight)
		})
		if len(eligible) > maxPerBucket {
			eligible = eligible[:maxPerBucket]
		}
		result[group] = eligible
	}
	return result
}

// drawRoundRobin takes up to count entries from candidates, visiting
// buckets in a shuffled order and taking one per bucket per pass so no
// single network group can dominate a small draw. Consumed entries are
// removed from candidates so a second call against the same map resumes
// where the first left off, rather than redrawing the same addresses.
func drawRoundRobin(candidates map[string][]*KnownAddress, count int) []*KnownAddress {
	if count <= 0 || len(candidates) == 0 {
		return nil
	}

	keys := make([]string, 0, len(candidates))
	for k := range candidates {
		keys = append(keys, k)
	}
	rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

	drawn := make([]*KnownAddress, 0, count)
	for {
		progressed := false
		for _, k := range keys {
			bucket := candidates[k]
			if len(bucket) == 0 {
				continue
			}
			drawn = append(drawn, bucket[0])
			candidates[k] = bucket[1:]
			progressed = true
			if len(drawn) >= count {
				return drawn
			}
		}
		if !progressed {
			return drawn
		}
	}
}
