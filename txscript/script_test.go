// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"errors"
	"testing"
)

func TestScriptBuilderAddOpAndData(t *testing.T) {
	script, err := NewScriptBuilder().
		AddOp(OP_DUP).
		AddOp(OP_HASH160).
		AddData(bytes.Repeat([]byte{0xab}, 20)).
		AddOp(OP_EQUALVERIFY).
		AddOp(OP_CHECKSIG).
		Script()
	if err != nil {
		t.Fatalf("Script(): %v", err)
	}
	want := append([]byte{OP_DUP, OP_HASH160, OP_DATA_20}, bytes.Repeat([]byte{0xab}, 20)...)
	want = append(want, OP_EQUALVERIFY, OP_CHECKSIG)
	if !bytes.Equal(script, want) {
		t.Fatalf("script = %x, want %x", script, want)
	}
}

func TestScriptBuilderAddInt64SmallInts(t *testing.T) {
	tests := []struct {
		n    int64
		want byte
	}{
		{-1, OP_1NEGATE},
		{0, OP_0},
		{1, OP_1},
		{16, OP_16},
	}
	for _, tt := range tests {
		script, err := NewScriptBuilder().AddInt64(tt.n).Script()
		if err != nil {
			t.Fatalf("AddInt64(%d): %v", tt.n, err)
		}
		if len(script) != 1 || script[0] != tt.want {
			t.Fatalf("AddInt64(%d) = %x, want [%x]", tt.n, script, tt.want)
		}
	}
}

func TestScriptBuilderAddDataOversizedFails(t *testing.T) {
	_, err := NewScriptBuilder().AddData(make([]byte, MaxScriptSize)).Script()
	if err == nil {
		t.Fatal("expected an error for a push that would exceed MaxScriptSize")
	}
	var scriptErr Error
	if !errors.As(err, &scriptErr) || scriptErr.Kind != ErrScriptTooLong {
		t.Fatalf("error kind = %v, want ErrScriptTooLong", scriptErr.Kind)
	}
}

func TestScriptTokenizerWalksDataPushesAndOpcodes(t *testing.T) {
	script, err := NewScriptBuilder().
		AddOp(OP_DUP).
		AddData([]byte{0x01, 0x02, 0x03}).
		AddOp(OP_CHECKSIG).
		Script()
	if err != nil {
		t.Fatalf("Script(): %v", err)
	}

	tok := MakeScriptTokenizer(0, script)
	if !tok.Next() || tok.Opcode() != OP_DUP {
		t.Fatalf("first token = %#x, want OP_DUP", tok.Opcode())
	}
	if !tok.Next() || !bytes.Equal(tok.Data(), []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("second token data = %x, want 010203", tok.Data())
	}
	if !tok.Next() || tok.Opcode() != OP_CHECKSIG {
		t.Fatalf("third token = %#x, want OP_CHECKSIG", tok.Opcode())
	}
	if !tok.Done() {
		t.Fatal("tokenizer should be done after consuming the whole script")
	}
	if tok.Err() != nil {
		t.Fatalf("unexpected tokenizer error: %v", tok.Err())
	}
}

func TestScriptTokenizerRejectsTruncatedPush(t *testing.T) {
	// OP_DATA_10 claims 10 bytes of data but only 2 follow.
	script := []byte{0x0a, 0x01, 0x02}
	tok := MakeScriptTokenizer(0, script)
	if tok.Next() {
		t.Fatal("expected Next to fail on a truncated push")
	}
	var scriptErr Error
	if !errors.As(tok.Err(), &scriptErr) || scriptErr.Kind != ErrMalformedPush {
		t.Fatalf("error kind = %v, want ErrMalformedPush", scriptErr.Kind)
	}
}

func TestMakeScriptNumRejectsNonMinimalEncoding(t *testing.T) {
	// A trailing zero byte with the prior byte's sign bit clear is
	// non-minimal: the same value encodes in one fewer byte.
	if _, err := MakeScriptNum([]byte{0x01, 0x00}, 8); err == nil {
		t.Fatal("expected an error for a non-minimally encoded script number")
	}
}

func TestMakeScriptNumRoundTripsSignedValues(t *testing.T) {
	tests := []int64{0, 1, -1, 127, -127, 128, -128, 32767, -32767}
	for _, n := range tests {
		data := serializeScriptNum(n)
		got, err := MakeScriptNum(data, 8)
		if err != nil {
			t.Fatalf("MakeScriptNum(%d): %v", n, err)
		}
		if int64(got) != n {
			t.Fatalf("round trip of %d = %d", n, int64(got))
		}
	}
}

func TestExtractScriptHash(t *testing.T) {
	hash := bytes.Repeat([]byte{0x11}, 20)
	script := append([]byte{OP_HASH160, OP_DATA_20}, hash...)
	script = append(script, OP_EQUAL)
	if got := ExtractScriptHash(script); !bytes.Equal(got, hash) {
		t.Fatalf("ExtractScriptHash = %x, want %x", got, hash)
	}
	if ExtractScriptHash([]byte{OP_CHECKSIG}) != nil {
		t.Fatal("ExtractScriptHash should return nil for a non-P2SH script")
	}
}

func TestIsStrictCompressedPubKeyEncoding(t *testing.T) {
	good := append([]byte{0x02}, make([]byte, 32)...)
	if !IsStrictCompressedPubKeyEncoding(good) {
		t.Fatal("a 33-byte key prefixed 0x02 should be a valid compressed encoding")
	}
	bad := append([]byte{0x04}, make([]byte, 32)...)
	if IsStrictCompressedPubKeyEncoding(bad) {
		t.Fatal("a 0x04-prefixed key is uncompressed, not a valid compressed encoding")
	}
	if IsStrictCompressedPubKeyEncoding(make([]byte, 10)) {
		t.Fatal("a key of the wrong length must be rejected")
	}
}
