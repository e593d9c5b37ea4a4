// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import "time"

// banList maps a peer's host (no port) to the unix time its ban expires.
// It is kept separate from the tried/new address book: a banned address
// is still worth remembering for scoring purposes once the ban lifts, so
// banning never deletes the underlying KnownAddress.
type banList struct {
	entries map[string]time.Time
}

func newBanList() *banList {
	return &banList{entries: make(map[string]time.Time)}
}

// ban marks host banned until now+duration, extending an existing ban
// rather than shortening it if one is already in effect.
func (b *banList) ban(host string, now time.Time, duration time.Duration) {
	until := now.Add(duration)
	if existing, ok := b.entries[host]; ok && existing.After(until) {
		return
	}
	b.entries[host] = until
}

// isBanned reports whether host is currently banned, lazily evicting the
// entry if the ban has expired.
func (b *banList) isBanned(host string, now time.Time) bool {
	until, ok := b.entries[host]
	if !ok {
		return false
	}
	if now.After(until) {
		delete(b.entries, host)
		return false
	}
	return true
}

// unban removes any ban in effect for host.
func (b *banList) unban(host string) {
	delete(b.entries, host)
}
