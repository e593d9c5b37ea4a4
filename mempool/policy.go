// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "time"

// Policy is the set of relay/acceptance rules a mempool enforces beyond
// bare consensus validity. Every field has a sane default matching the
// reference node's defaults; operators loosen or tighten it via
// configuration.
type Policy struct {
	// RequireStandard rejects nonstandard scripts, oversized scriptSigs,
	// dust outputs, and excess OP_RETURN data. Miners that don't care how
	// a block looks, only that it's valid, can turn this off.
	RequireStandard bool

	// MinRelayFeePerKB is the minimum fee rate, in atoms per 1000 bytes
	// of modified size, a transaction must pay to be relayed or mined
	// for free under the free-relay allowance below.
	MinRelayFeePerKB int64

	// FreeRelayBytesPerMinute bounds how many modified-size bytes of
	// free (below MinRelayFeePerKB) transactions this node accepts per
	// minute before it starts requiring the full fee from everyone.
	FreeRelayBytesPerMinute int64

	MaxScriptSigSize  int
	MaxOpReturnBytes  int
	MaxP2SHSigOps     int
	MaxStandardSigOps int

	MaxOrphans     int
	MaxOrphanBytes int64
	OrphanTTL      time.Duration

	MaxMempoolBytes int64
}

// DefaultPolicy returns the relay policy new nodes start with.
func DefaultPolicy() Policy {
	return Policy{
		RequireStandard:         true,
		MinRelayFeePerKB:        1000,
		FreeRelayBytesPerMinute: 15000,
		MaxScriptSigSize:        1650,
		MaxOpReturnBytes:        80,
		MaxP2SHSigOps:           15,
		MaxStandardSigOps:       4000,
		MaxOrphans:              100,
		MaxOrphanBytes:          5 * 1024 * 1024,
		OrphanTTL:               20 * time.Minute,
		MaxMempoolBytes:         300 * 1024 * 1024,
	}
}

// minRelayFee returns the minimum fee, in atoms, a transaction of
// modifiedSize bytes must pay to clear MinRelayFeePerKB.
func (p Policy) minRelayFee(modifiedSize int) int64 {
	fee := p.MinRelayFeePerKB * int64(modifiedSize) / 1000
	if fee == 0 && p.MinRelayFeePerKB > 0 {
		fee = 1
	}
	return fee
}

// isDust reports whether an output of value atoms is uneconomical to
// spend later: spending it would cost more than
// a third of its own value at the minimum relay fee rate, using
// spendSize as the estimated size of the input that would later redeem
// it.
func (p Policy) isDust(value int64, spendSize int) bool {
	if value < 0 {
		return true
	}
	threshold := 3 * p.minRelayFee(spendSize)
	return value < threshold
}
