// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "testing"

func TestMinRelayFeeRoundsUpToOneAtom(t *testing.T) {
	p := DefaultPolicy()
	p.MinRelayFeePerKB = 1000
	if got := p.minRelayFee(1); got != 1 {
		t.Fatalf("minRelayFee(1) = %d, want 1 (a nonzero fee rate never rounds down to free)", got)
	}
	if got := p.minRelayFee(1000); got != 1000 {
		t.Fatalf("minRelayFee(1000) = %d, want 1000", got)
	}
}

func TestMinRelayFeeZeroWhenDisabled(t *testing.T) {
	p := DefaultPolicy()
	p.MinRelayFeePerKB = 0
	if got := p.minRelayFee(500); got != 0 {
		t.Fatalf("minRelayFee(500) = %d, want 0 when MinRelayFeePerKB is disabled", got)
	}
}

func TestIsDustBelowThirdOfRedeemCost(t *testing.T) {
	p := DefaultPolicy()
	p.MinRelayFeePerKB = 1000

	spendSize := 150
	threshold := 3 * p.minRelayFee(spendSize)

	if !p.isDust(threshold-1, spendSize) {
		t.Fatalf("value %d should be dust (threshold %d)", threshold-1, threshold)
	}
	if p.isDust(threshold, spendSize) {
		t.Fatalf("value %d at the threshold should not be dust", threshold)
	}
}

func TestIsDustNegativeValue(t *testing.T) {
	p := DefaultPolicy()
	if !p.isDust(-1, 100) {
		t.Fatal("a negative value must always be dust")
	}
}
