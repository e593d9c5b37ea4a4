// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"bytes"
	"testing"
)

func TestHashStringIsBigEndianHexOfLittleEndianBytes(t *testing.T) {
	var h Hash
	h[0] = 0x01
	h[HashSize-1] = 0xff
	got := h.String()
	want := "ff0000000000000000000000000000000000000000000000000000000000000001"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestNewHashFromStrRoundTripsWithString(t *testing.T) {
	const s = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	h, err := NewHashFromStr(s)
	if err != nil {
		t.Fatalf("NewHashFromStr: %v", err)
	}
	if got := h.String(); got != s {
		t.Fatalf("String() = %q, want %q", got, s)
	}
}

func TestNewHashFromStrRejectsOversizedInput(t *testing.T) {
	tooLong := make([]byte, MaxHashStringSize+1)
	for i := range tooLong {
		tooLong[i] = '0'
	}
	if _, err := NewHashFromStr(string(tooLong)); err != ErrHashStrSize {
		t.Fatalf("error = %v, want ErrHashStrSize", err)
	}
}

func TestNewHashFromStrPadsOddLengthInput(t *testing.T) {
	h, err := NewHashFromStr("abc")
	if err != nil {
		t.Fatalf("NewHashFromStr: %v", err)
	}
	want, _ := NewHashFromStr("0abc")
	if !h.IsEqual(want) {
		t.Fatalf("odd-length input not padded to match %q", "0abc")
	}
}

func TestSetBytesRejectsWrongLength(t *testing.T) {
	var h Hash
	if err := h.SetBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error setting bytes of the wrong length")
	}
}

func TestCloneBytesIsIndependentCopy(t *testing.T) {
	var h Hash
	h[0] = 0x42
	b := h.CloneBytes()
	b[0] = 0x99
	if h[0] != 0x42 {
		t.Fatal("mutating CloneBytes output must not affect the original hash")
	}
}

func TestIsEqual(t *testing.T) {
	a := HashH([]byte("a"))
	b := HashH([]byte("a"))
	c := HashH([]byte("b"))
	if !a.IsEqual(&b) {
		t.Fatal("hashes of identical input must compare equal")
	}
	if a.IsEqual(&c) {
		t.Fatal("hashes of different input must not compare equal")
	}
	if !(*Hash)(nil).IsEqual(nil) {
		t.Fatal("two nil hash pointers must compare equal")
	}
	if a.IsEqual(nil) {
		t.Fatal("a non-nil hash must not equal a nil pointer")
	}
}

func TestDoubleHashMatchesTwoSingleHashes(t *testing.T) {
	data := []byte("block header bytes")
	want := HashH(HashB(data))
	if got := DoubleHashH(data); got != want {
		t.Fatalf("DoubleHashH = %x, want %x", got, want)
	}
	if got := DoubleHashB(data); !bytes.Equal(got, want[:]) {
		t.Fatalf("DoubleHashB = %x, want %x", got, want[:])
	}
}

func TestHash160Length(t *testing.T) {
	got := Hash160([]byte("pubkey bytes"))
	if len(got) != 20 {
		t.Fatalf("Hash160 length = %d, want 20", len(got))
	}
}
