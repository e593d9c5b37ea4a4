// Copyright (c) 2013, 2014 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dcrutil

import (
	"math"
	"testing"
)

func TestNewAmountRoundsToNearestAtom(t *testing.T) {
	tests := []struct {
		coins float64
		want  Amount
	}{
		{1, 1e8},
		{0.00000001, 1},
		{-0.00000001, -1},
		{0, 0},
		{1.00000001, 100000001},
	}
	for _, tt := range tests {
		got, err := NewAmount(tt.coins)
		if err != nil {
			t.Fatalf("NewAmount(%v): %v", tt.coins, err)
		}
		if got != tt.want {
			t.Errorf("NewAmount(%v) = %d, want %d", tt.coins, got, tt.want)
		}
	}
}

func TestNewAmountRejectsNaNAndInf(t *testing.T) {
	if _, err := NewAmount(math.NaN()); err == nil {
		t.Fatal("expected an error for NaN")
	}
	if _, err := NewAmount(math.Inf(1)); err == nil {
		t.Fatal("expected an error for +Inf")
	}
	if _, err := NewAmount(math.Inf(-1)); err == nil {
		t.Fatal("expected an error for -Inf")
	}
}

func TestAmountToUnit(t *testing.T) {
	amt := Amount(1e8)
	if got := amt.ToUnit(AmountCoin); got != 1 {
		t.Errorf("ToUnit(AmountCoin) = %v, want 1", got)
	}
	if got := amt.ToUnit(AmountAtom); got != 1e8 {
		t.Errorf("ToUnit(AmountAtom) = %v, want 1e8", got)
	}
	if got := amt.ToUnit(AmountMilliCoin); got != 1000 {
		t.Errorf("ToUnit(AmountMilliCoin) = %v, want 1000", got)
	}
}

func TestAmountToCoin(t *testing.T) {
	amt := Amount(150_000_000)
	if got := amt.ToCoin(); got != 1.5 {
		t.Errorf("ToCoin() = %v, want 1.5", got)
	}
}

func TestAmountMulF64(t *testing.T) {
	amt := Amount(100)
	if got := amt.MulF64(1.5); got != 150 {
		t.Errorf("MulF64(1.5) = %d, want 150", got)
	}
	if got := amt.MulF64(0.333); got != 33 {
		t.Errorf("MulF64(0.333) = %d, want 33", got)
	}
}

func TestAmountStringIncludesUnitSuffix(t *testing.T) {
	amt := Amount(1e8)
	got := amt.String()
	want := "1 Coin"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestAmountUnitString(t *testing.T) {
	if AmountAtom.String() != "Atom" {
		t.Errorf("AmountAtom.String() = %q, want %q", AmountAtom.String(), "Atom")
	}
	if AmountUnit(2).String() != "1e2 Coin" {
		t.Errorf("AmountUnit(2).String() = %q, want %q", AmountUnit(2).String(), "1e2 Coin")
	}
}
