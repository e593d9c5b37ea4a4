// Copyright (c) 2013, 2014 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dcrutil provides transparent-address and coin-amount utilities
// shared by the node's validation, mempool, and chain-state code: an
// Amount type with the chain's fixed 1e8-zatoshi-per-coin scale, and
// base58Check address encode/decode for the P2PKH and P2SH address
// families chaincfg.Params describes per network.
package dcrutil

import (
	"errors"
	"math"
	"strconv"
)

// AmountUnit describes a method of converting an Amount to something
// other than the base unit, atomic, units. These are supported by
// ToUnit and ToCoin.
type AmountUnit int

const (
	AmountMegaCoin  AmountUnit = 6
	AmountKiloCoin  AmountUnit = 3
	AmountCoin      AmountUnit = 0
	AmountMilliCoin AmountUnit = -3
	AmountMicroCoin AmountUnit = -6
	AmountAtom      AmountUnit = -8
)

// String returns the unit as a string.
func (u AmountUnit) String() string {
	switch u {
	case AmountMegaCoin:
		return "MCoin"
	case AmountKiloCoin:
		return "kCoin"
	case AmountCoin:
		return "Coin"
	case AmountMilliCoin:
		return "mCoin"
	case AmountMicroCoin:
		return "μCoin"
	case AmountAtom:
		return "Atom"
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " Coin"
	}
}

// AtomsPerCoin is the number of atomic units (zatoshi) in one whole coin.
const AtomsPerCoin = 1e8

// MaxAmount is the maximum transaction amount allowed, in atoms.
const MaxAmount = 21e6 * AtomsPerCoin

// ErrInvalidAmount is returned when NewAmount is given NaN or an infinite
// value. NewAmount does not check the result against [0, MaxAmount].
var ErrInvalidAmount = errors.New("invalid coin amount")

// Amount represents the base coin monetary unit (colloquially referred to
// as an 'Atom') as an int64.
type Amount int64

// round converts a floating point number, which may or may not be
// representing an integer, to the Amount integer type by rounding to the
// nearest integer.
func round(f float64) Amount {
	if f < 0 {
		return Amount(f - 0.5)
	}
	return Amount(f + 0.5)
}

// NewAmount creates an Amount from a floating point value representing
// whole coins. NewAmount errors if f is NaN or +-Infinity, but does not
// check that the amount is within the total amount of coins producible
// by the chain.
func NewAmount(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return round(f * AtomsPerCoin), nil
}

// ToUnit converts a monetary amount counted in coin base units to a
// floating point value representing an amount of the given unit.
func (a Amount) ToUnit(u AmountUnit) float64 {
	return float64(a) / math.Pow10(int(u+8))
}

// ToCoin is a convenience function for calling ToUnit with AmountCoin.
func (a Amount) ToCoin() float64 {
	return a.ToUnit(AmountCoin)
}

// Format formats a monetary amount counted in coin base units as a string
// for a given unit, including the unit suffix.
func (a Amount) Format(u AmountUnit) string {
	units := " " + u.String()
	formatted := strconv.FormatFloat(a.ToUnit(u), 'f', -int(u+8), 64)
	if u == AmountAtom {
		return formatted + units
	}
	return formatted + units
}

// String is the equivalent of calling Format with AmountCoin.
func (a Amount) String() string {
	return a.Format(AmountCoin)
}

// MulF64 multiplies an Amount by a floating point value, rounding the
// result back to the nearest Amount.
func (a Amount) MulF64(f float64) Amount {
	return round(float64(a) * f)
}
