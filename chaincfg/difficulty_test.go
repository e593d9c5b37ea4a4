// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"testing"
)

func TestCompactToBigBigToCompactRoundTrip(t *testing.T) {
	tests := []uint32{
		0x1d00ffff,
		0x1b0404cb,
		0x207fffff,
		0x00000000,
		0x01010000,
	}
	for _, compact := range tests {
		n := CompactToBig(compact)
		got := BigToCompact(n)
		if got != compact {
			t.Errorf("round trip of %08x = %08x via %v", compact, got, n)
		}
	}
}

func TestCalcNextRequiredDifficultyDigiShieldClampsToLimit(t *testing.T) {
	p := RegNetParams()
	p.DigishieldAveragingWindow = 4
	p.PowTargetSpacing = 150
	p.DigishieldMaxAdjustUp = 32
	p.DigishieldMaxAdjustDown = 16

	// Blocks solved much faster than target spacing should tighten the
	// target, never loosen past PowLimit.
	limitBits := BigToCompact(p.PowLimit)
	window := []HeaderSample{
		{Timestamp: 0, Bits: limitBits},
		{Timestamp: 10, Bits: limitBits},
		{Timestamp: 20, Bits: limitBits},
		{Timestamp: 30, Bits: limitBits},
	}
	next := p.CalcNextRequiredDifficultyDigiShield(window)
	nextTarget := CompactToBig(next)
	if nextTarget.Cmp(p.PowLimit) > 0 {
		t.Fatalf("retargeted difficulty %v exceeds PowLimit %v", nextTarget, p.PowLimit)
	}
}

func TestCalcNextRequiredDifficultyDigiShieldEmptyWindow(t *testing.T) {
	p := RegNetParams()
	if got := p.CalcNextRequiredDifficultyDigiShield(nil); got != BigToCompact(p.PowLimit) {
		t.Errorf("empty window = %08x, want PowLimit %08x", got, BigToCompact(p.PowLimit))
	}
}

func TestCalcNextRequiredPoNDifficultyShortWindow(t *testing.T) {
	p := RegNetParams()
	if got := p.CalcNextRequiredPoNDifficulty(nil); got != BigToCompact(p.PoNStartLimit) {
		t.Errorf("empty PoN window = %08x, want PoNStartLimit %08x", got, BigToCompact(p.PoNStartLimit))
	}
	one := []HeaderSample{{Timestamp: 0, Bits: BigToCompact(p.PoNLimit)}}
	if got := p.CalcNextRequiredPoNDifficulty(one); got != BigToCompact(p.PoNStartLimit) {
		t.Errorf("single-header PoN window = %08x, want PoNStartLimit %08x", got, BigToCompact(p.PoNStartLimit))
	}
}

func TestLWMARetargetNeverExceedsLimit(t *testing.T) {
	p := RegNetParams()
	limitBits := BigToCompact(p.PowLimit)
	window := make([]HeaderSample, 0, 20)
	for i := 0; i < 20; i++ {
		window = append(window, HeaderSample{
			Timestamp: int64(i) * p.PowTargetSpacing * 10, // solved far slower than target
			Bits:      limitBits,
		})
	}
	next := p.CalcNextRequiredDifficultyLWMA(window)
	nextTarget := CompactToBig(next)
	if nextTarget.Cmp(p.PowLimit) > 0 {
		t.Fatalf("LWMA retarget %v exceeds PowLimit %v", nextTarget, p.PowLimit)
	}
}

func TestCalcNextRequiredDifficultyDispatchesByUpgrade(t *testing.T) {
	p := RegNetParams()
	p.Upgrades[Lwma] = NetworkUpgrade{ActivationHeight: 100}
	p.Upgrades[Pon] = NetworkUpgrade{ActivationHeight: 200}

	window := []HeaderSample{
		{Timestamp: 0, Bits: BigToCompact(p.PowLimit)},
		{Timestamp: 150, Bits: BigToCompact(p.PowLimit)},
	}

	// Below height 100: DigiShield path accepts a >1-header window even
	// though DigishieldAveragingWindow expects more; this just confirms
	// dispatch, not the windowing policy itself (owned by the caller).
	digishieldLimit := new(big.Int).Set(p.PowLimit)
	below := p.CalcNextRequiredDifficulty(50, window)
	if CompactToBig(below).Cmp(digishieldLimit) > 0 {
		t.Fatalf("pre-Lwma retarget exceeded PowLimit")
	}

	atLwma := p.CalcNextRequiredDifficulty(150, window)
	atPon := p.CalcNextRequiredDifficulty(250, window)
	if atLwma == 0 || atPon == 0 {
		t.Fatalf("expected non-zero retarget results, got lwma=%08x pon=%08x", atLwma, atPon)
	}
}
