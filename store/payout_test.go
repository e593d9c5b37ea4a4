// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"testing"

	"github.com/excc-labs/fluxnoded/chaincfg"
	"github.com/excc-labs/fluxnoded/dcrutil"
	"github.com/excc-labs/fluxnoded/txscript/stdscript"
	"github.com/excc-labs/fluxnoded/wire"
)

// scriptForAddress builds the standard output script that pays address
// under params, whichever of P2PKH/P2SH it decodes to.
func scriptForAddress(t *testing.T, address string, params *chaincfg.Params) []byte {
	t.Helper()
	addr, err := dcrutil.DecodeAddress(address, params)
	if err != nil {
		t.Fatalf("DecodeAddress(%s): %v", address, err)
	}
	var script []byte
	switch addr.(type) {
	case *dcrutil.AddressPubKeyHash:
		script, err = stdscript.PayToPubKeyHashScript(addr.ScriptAddress())
	case *dcrutil.AddressScriptHash:
		script, err = stdscript.PayToScriptHashScript(addr.ScriptAddress())
	default:
		t.Fatalf("DecodeAddress(%s) returned unexpected type %T", address, addr)
	}
	if err != nil {
		t.Fatalf("building script for %s: %v", address, err)
	}
	return script
}

func TestScriptPaysAddressMatchesEncodedAddressOnly(t *testing.T) {
	params := chaincfg.RegNetParams()
	address := params.Funding.ExchangeAddress
	if address == "" {
		t.Skip("regnet has no exchange funding address configured")
	}

	paying := scriptForAddress(t, address, params)
	if !scriptPaysAddress(paying, address, params) {
		t.Fatal("scriptPaysAddress should match a script paying the exact encoded address")
	}

	other := testPubKeyHashScript(t, 0xee)
	if scriptPaysAddress(other, address, params) {
		t.Fatal("scriptPaysAddress matched an unrelated P2PKH script paying a different hash")
	}
}

func TestScriptPaysAddressRejectsEmptyAddress(t *testing.T) {
	params := chaincfg.RegNetParams()
	if scriptPaysAddress(testPubKeyHashScript(t, 1), "", params) {
		t.Fatal("scriptPaysAddress must reject an empty configured address")
	}
}

func TestCoinbaseHasPayoutRequiresSufficientValue(t *testing.T) {
	params := chaincfg.RegNetParams()
	address := params.Funding.ExchangeAddress
	if address == "" {
		t.Skip("regnet has no exchange funding address configured")
	}
	script := scriptForAddress(t, address, params)
	fp := chaincfg.FundingPayout{Address: address, Amount: 1000}

	short := wire.NewMsgTx(1)
	short.AddTxOut(&wire.TxOut{Value: 999, PkScript: script})
	if coinbaseHasPayout(short, fp, params) {
		t.Fatal("coinbaseHasPayout must reject an output below the required amount")
	}

	enough := wire.NewMsgTx(1)
	enough.AddTxOut(&wire.TxOut{Value: 1000, PkScript: script})
	if !coinbaseHasPayout(enough, fp, params) {
		t.Fatal("coinbaseHasPayout should accept an output paying the exact required amount to the encoded address")
	}
}
