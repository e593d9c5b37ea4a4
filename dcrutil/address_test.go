// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dcrutil

import (
	"bytes"
	"testing"

	"github.com/excc-labs/fluxnoded/chaincfg"
)

func TestAddressPubKeyHashRoundTrip(t *testing.T) {
	params := chaincfg.RegNetParams()
	hash := bytes.Repeat([]byte{0x11}, 20)

	addr, err := NewAddressPubKeyHash(hash, params)
	if err != nil {
		t.Fatalf("NewAddressPubKeyHash: %v", err)
	}
	if !addr.IsForNet(params) {
		t.Fatal("address should report IsForNet true for the network it was created with")
	}
	if !bytes.Equal(addr.ScriptAddress(), hash) {
		t.Fatalf("ScriptAddress = %x, want %x", addr.ScriptAddress(), hash)
	}

	decoded, err := DecodeAddress(addr.String(), params)
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	pkh, ok := decoded.(*AddressPubKeyHash)
	if !ok {
		t.Fatalf("DecodeAddress returned %T, want *AddressPubKeyHash", decoded)
	}
	if !bytes.Equal(pkh.ScriptAddress(), hash) {
		t.Fatalf("decoded ScriptAddress = %x, want %x", pkh.ScriptAddress(), hash)
	}
}

func TestAddressScriptHashRoundTrip(t *testing.T) {
	params := chaincfg.RegNetParams()
	hash := bytes.Repeat([]byte{0x22}, 20)

	addr, err := NewAddressScriptHashFromHash(hash, params)
	if err != nil {
		t.Fatalf("NewAddressScriptHashFromHash: %v", err)
	}

	decoded, err := DecodeAddress(addr.String(), params)
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	if _, ok := decoded.(*AddressScriptHash); !ok {
		t.Fatalf("DecodeAddress returned %T, want *AddressScriptHash", decoded)
	}
}

func TestNewAddressScriptHashHashesRedeemScript(t *testing.T) {
	params := chaincfg.RegNetParams()
	redeem := []byte{0x51, 0x52, 0x53}
	addr, err := NewAddressScriptHash(redeem, params)
	if err != nil {
		t.Fatalf("NewAddressScriptHash: %v", err)
	}
	if len(addr.ScriptAddress()) != 20 {
		t.Fatalf("ScriptAddress length = %d, want 20", len(addr.ScriptAddress()))
	}
}

func TestDecodeAddressRejectsBadChecksum(t *testing.T) {
	params := chaincfg.RegNetParams()
	addr, err := NewAddressPubKeyHash(bytes.Repeat([]byte{0x33}, 20), params)
	if err != nil {
		t.Fatalf("NewAddressPubKeyHash: %v", err)
	}
	s := addr.String()
	// Flip the last character to corrupt the checksum.
	corrupted := []byte(s)
	if corrupted[len(corrupted)-1] == 'a' {
		corrupted[len(corrupted)-1] = 'b'
	} else {
		corrupted[len(corrupted)-1] = 'a'
	}

	if _, err := DecodeAddress(string(corrupted), params); err == nil {
		t.Fatal("expected an error decoding an address with a corrupted checksum")
	}
}

func TestDecodeAddressRejectsUnknownNetworkPrefix(t *testing.T) {
	regnet := chaincfg.RegNetParams()
	mainnet := chaincfg.MainNetParams()

	addr, err := NewAddressPubKeyHash(bytes.Repeat([]byte{0x44}, 20), regnet)
	if err != nil {
		t.Fatalf("NewAddressPubKeyHash: %v", err)
	}

	if _, err := DecodeAddress(addr.String(), mainnet); err == nil {
		t.Fatal("expected an error decoding a regnet address under mainnet params")
	}
}

func TestNewAddressPubKeyHashRejectsWrongLength(t *testing.T) {
	params := chaincfg.RegNetParams()
	if _, err := NewAddressPubKeyHash([]byte{0x01}, params); err == nil {
		t.Fatal("expected an error for a non-20-byte hash")
	}
}
