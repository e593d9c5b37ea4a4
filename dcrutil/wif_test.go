// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dcrutil

import (
	"bytes"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/excc-labs/fluxnoded/chaincfg"
)

func testPrivKey(seed byte) *secp256k1.PrivateKey {
	b := make([]byte, 32)
	b[0] = 1
	b[31] = seed
	return secp256k1.PrivKeyFromBytes(b)
}

func TestWIFEncodeDecodeRoundTrip(t *testing.T) {
	params := chaincfg.RegNetParams()
	priv := testPrivKey(7)

	wif, err := NewWIF(priv, params)
	if err != nil {
		t.Fatalf("NewWIF: %v", err)
	}
	if !wif.IsForNet(params) {
		t.Fatal("wif should report IsForNet true for the network it was created with")
	}

	decoded, err := DecodeWIF(wif.String())
	if err != nil {
		t.Fatalf("DecodeWIF: %v", err)
	}
	if !decoded.IsForNet(params) {
		t.Fatal("decoded wif should still report IsForNet true for the original network")
	}
	if !bytes.Equal(decoded.PrivKey.Serialize(), priv.Serialize()) {
		t.Fatal("decoded private key does not match the original")
	}
	if !decoded.CompressPubKey {
		t.Fatal("NewWIF always produces a compressed-pubkey wif")
	}
}

func TestWIFSerializePubKeyCompressedLength(t *testing.T) {
	params := chaincfg.RegNetParams()
	priv := testPrivKey(9)
	wif, err := NewWIF(priv, params)
	if err != nil {
		t.Fatalf("NewWIF: %v", err)
	}
	pub := wif.SerializePubKey()
	if len(pub) != 33 {
		t.Fatalf("compressed pubkey length = %d, want 33", len(pub))
	}
}

func TestDecodeWIFRejectsBadChecksum(t *testing.T) {
	params := chaincfg.RegNetParams()
	priv := testPrivKey(11)
	wif, err := NewWIF(priv, params)
	if err != nil {
		t.Fatalf("NewWIF: %v", err)
	}
	s := wif.String()
	corrupted := []byte(s)
	if corrupted[len(corrupted)-1] == 'a' {
		corrupted[len(corrupted)-1] = 'b'
	} else {
		corrupted[len(corrupted)-1] = 'a'
	}
	if _, err := DecodeWIF(string(corrupted)); err == nil {
		t.Fatal("expected an error decoding a wif with a corrupted checksum")
	}
}

func TestNewWIFRejectsNilNetwork(t *testing.T) {
	priv := testPrivKey(13)
	if _, err := NewWIF(priv, nil); err == nil {
		t.Fatal("expected an error when net is nil")
	}
}

func TestDecodeWIFRejectsWrongLength(t *testing.T) {
	if _, err := DecodeWIF("not a valid wif string"); err == nil {
		t.Fatal("expected an error decoding a malformed wif string")
	}
}
