// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"encoding/hex"
	"net"
)

// maxPerBucket is the number of candidates a single group bucket retains;
// beyond this the lowest-scoring entry is evicted to make room.
const maxPerBucket = 8

// groupKey returns the bucketing key for an IP address: the /16 for IPv4
// (its first two octets) and the first 32 bits for IPv6, matching the
// coarse network-diversity grouping the sampler spreads its draws across
// so a single /16 or /32 can't dominate the candidate set.
func groupKey(ip net.IP) string {
	if v4 := ip.To4(); v4 != nil {
		return "v4:" + hex.EncodeToString(v4[:2])
	}
	v6 := ip.To16()
	if v6 == nil {
		return "invalid"
	}
	return "v6:" + hex.EncodeToString(v6[:4])
}
