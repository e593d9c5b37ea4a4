// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/excc-labs/fluxnoded/wire"
)

func testAddr(ip string, port uint16) *wire.NetAddress {
	return &wire.NetAddress{IP: net.ParseIP(ip), Port: port, Services: 0}
}

func TestAddAddressAndPromote(t *testing.T) {
	m := New()
	now := time.Now()
	na := testAddr("203.0.113.5", 9044)

	m.AddAddress(na, now)
	require.Equal(t, 1, m.Count())

	key := addrKey(na)
	ka, ok := m.addrIndex[key]
	require.True(t, ok)
	require.False(t, ka.tried)

	m.RecordSuccess(key, 1000, 70001, now)
	require.True(t, ka.tried)
	require.Equal(t, 1, ka.successes)
	require.Equal(t, int64(1000), ka.lastHeight)
}

func TestRecordFailureArmsBackoff(t *testing.T) {
	m := New()
	now := time.Now()
	na := testAddr("203.0.113.6", 9044)
	m.AddAddress(na, now)
	key := addrKey(na)

	m.RecordFailure(key, now)
	ka := m.addrIndex[key]
	require.Equal(t, 1, ka.failures)
	require.False(t, ka.eligible(now, 0))
	require.True(t, ka.eligible(now.Add(2*backoffBase), 0))
}

func TestBanList(t *testing.T) {
	m := New()
	now := time.Now()
	m.Ban("198.51.100.9", time.Minute, now)
	require.True(t, m.IsBanned("198.51.100.9", now))
	require.True(t, m.IsBanned("198.51.100.9", now.Add(30*time.Second)))
	require.False(t, m.IsBanned("198.51.100.9", now.Add(2*time.Minute)))
}

func TestSampleForHeightExcludesBannedAndStale(t *testing.T) {
	m := New()
	now := time.Now()

	good := testAddr("203.0.113.10", 9044)
	m.AddAddress(good, now)
	m.RecordSuccess(addrKey(good), 500, 70001, now)

	banned := testAddr("203.0.113.20", 9044)
	m.AddAddress(banned, now)
	m.RecordSuccess(addrKey(banned), 500, 70001, now)
	host, _, _ := net.SplitHostPort(addrKey(banned))
	m.Ban(host, time.Hour, now)

	farBehind := testAddr("203.0.113.30", 9044)
	m.AddAddress(farBehind, now)
	m.RecordSuccess(addrKey(farBehind), 50, 70001, now)

	later := now.Add(time.Hour)
	out := m.SampleForHeight(10, 500, later)
	require.Len(t, out, 1)
	require.Equal(t, good.IP.String(), out[0].IP.String())
}

func TestSampleForHeightBiasesTowardTried(t *testing.T) {
	m := New()
	now := time.Now()

	for i := 0; i < 4; i++ {
		na := testAddr(ipForIndex(i), 9044)
		m.AddAddress(na, now)
		m.RecordSuccess(addrKey(na), 1000, 70001, now)
	}
	for i := 4; i < 8; i++ {
		na := testAddr(ipForIndex(i), 9044)
		m.AddAddress(na, now)
	}

	later := now.Add(time.Hour)
	out := m.SampleForHeight(4, 1000, later)
	require.Len(t, out, 4)
}

func TestPruneDropsStaleNeverSucceeded(t *testing.T) {
	m := New()
	now := time.Now()
	na := testAddr("203.0.113.40", 9044)
	m.AddAddress(na, now.Add(-15*24*time.Hour))

	dropped := m.Prune(now)
	require.Equal(t, 1, dropped)
	require.Equal(t, 0, m.Count())
}

func ipForIndex(i int) string {
	return net.IPv4(203, 0, 113, byte(100+i)).String()
}
