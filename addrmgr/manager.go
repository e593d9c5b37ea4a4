// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr implements the peer address book: a bucketed store of
// tried/new candidate addresses with exponential backoff, bucket-diverse
// sampling, and a separate ban list, in the shape dcrd's own addrmgr
// maintains for its connection manager.
package addrmgr

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/excc-labs/fluxnoded/container/apbf"
	"github.com/excc-labs/fluxnoded/wire"
)

const (
	recentSampleFilterCapacity = 2000
	recentSampleFilterFPRate   = 0.001
)

// Manager is the peer address book. It is safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	addrIndex map[string]*KnownAddress   // keyed by host:port
	tried     map[string][]*KnownAddress // keyed by groupKey
	newAddrs  map[string][]*KnownAddress // keyed by groupKey

	bans *banList

	// recentlySampled suppresses handing the same address back out of
	// sample_for_height twice in quick succession, covering the window
	// between a caller drawing a candidate and the record_attempt call
	// that would otherwise update KnownAddress.lastAttempt itself.
	recentlySampled *apbf.Filter
}

// New returns an empty address manager.
func New() *Manager {
	return &Manager{
		addrIndex:       make(map[string]*KnownAddress),
		tried:           make(map[string][]*KnownAddress),
		newAddrs:        make(map[string][]*KnownAddress),
		bans:            newBanList(),
		recentlySampled: apbf.NewFilter(recentSampleFilterCapacity, recentSampleFilterFPRate),
	}
}

func addrKey(na *wire.NetAddress) string {
	return net.JoinHostPort(na.IP.String(), strconv.Itoa(int(na.Port)))
}

// AddAddress inserts na into the new bucket if it isn't already known.
// An address already tracked (tried or new) is left untouched other than
// bumping its lastSeen timestamp and ref count.
func (m *Manager) AddAddress(na *wire.NetAddress, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := addrKey(na)
	if ka, ok := m.addrIndex[key]; ok {
		ka.lastSeen = now
		ka.refs++
		return
	}

	ka := &KnownAddress{na: na, lastSeen: now}
	m.addrIndex[key] = ka
	m.insertIntoLocked(m.newAddrs, groupKey(na.IP), ka)
}

// RecordAttempt notes that a connection to addr was just attempted.
func (m *Manager) RecordAttempt(addr string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ka, ok := m.addrIndex[addr]
	if !ok {
		return
	}
	ka.attempts++
	ka.lastAttempt = now
}

// RecordSuccess records a successful handshake with addr, updating its
// announced height/version and promoting it from the new bucket to the
// tried bucket if it isn't there already.
func (m *Manager) RecordSuccess(addr string, height int64, version int32, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ka, ok := m.addrIndex[addr]
	if !ok {
		return
	}
	ka.successes++
	ka.failures = 0
	ka.lastSuccess = now
	ka.lastSeen = now
	ka.lastAttempt = now
	ka.lastHeight = height
	ka.lastVersion = version

	if ka.tried {
		return
	}
	m.removeFromLocked(m.newAddrs, groupKey(ka.na.IP), ka)
	ka.tried = true
	m.insertIntoLocked(m.tried, groupKey(ka.na.IP), ka)
}

// RecordFailure notes a failed connection attempt against addr, arming
// its exponential backoff.
func (m *Manager) RecordFailure(addr string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ka, ok := m.addrIndex[addr]
	if !ok {
		return
	}
	ka.failures++
	ka.lastFailure = now
	ka.lastAttempt = now
}

// Ban marks host (no port) unreachable for duration, extending any ban
// already in effect rather than shortening it.
func (m *Manager) Ban(host string, duration time.Duration, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bans.ban(host, now, duration)
}

// IsBanned reports whether host is currently banned.
func (m *Manager) IsBanned(host string, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bans.isBanned(host, now)
}

// Unban lifts any ban in effect against host.
func (m *Manager) Unban(host string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bans.unban(host)
}

// Count returns the number of addresses currently tracked.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.addrIndex)
}

// Prune drops entries that have decayed past isBad, freeing their bucket
// slots. Called periodically by the daemon's persistence loop.
func (m *Manager) Prune(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for key, ka := range m.addrIndex {
		if !ka.isBad(now) {
			continue
		}
		bucket := m.newAddrs
		if ka.tried {
			bucket = m.tried
		}
		m.removeFromLocked(bucket, groupKey(ka.na.IP), ka)
		delete(m.addrIndex, key)
		dropped++
	}
	return dropped
}

// insertIntoLocked adds ka to its group bucket in set, evicting the
// lowest-scoring existing member if the bucket is already at capacity.
// Callers must hold m.mu.
func (m *Manager) insertIntoLocked(set map[string][]*KnownAddress, group string, ka *KnownAddress) {
	bucket := set[group]
	if len(bucket) < maxPerBucket {
		set[group] = append(bucket, ka)
		return
	}

	now := ka.lastSeen
	worstIdx, worstScore := 0, bucket[0].score(now, ka.lastHeight)
	for i := 1; i < len(bucket); i++ {
		if s := bucket[i].score(now, ka.lastHeight); s < worstScore {
			worstIdx, worstScore = i, s
		}
	}
	evicted := bucket[worstIdx]
	bucket[worstIdx] = ka
	delete(m.addrIndex, addrKey(evicted.na))
}

// removeFromLocked removes ka from its group bucket in set, if present.
// Callers must hold m.mu.
func (m *Manager) removeFromLocked(set map[string][]*KnownAddress, group string, ka *KnownAddress) {
	bucket := set[group]
	for i, cand := range bucket {
		if cand == ka {
			set[group] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}
