// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"
)

func TestVarIntSerializeSize(t *testing.T) {
	tests := []struct {
		val  uint64
		want int
	}{
		{0, 1},
		{0xfc, 1},
		{0xfd, 3},
		{0xffff, 3},
		{0x10000, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
	}
	for _, tt := range tests {
		if got := VarIntSerializeSize(tt.val); got != tt.want {
			t.Errorf("VarIntSerializeSize(%d) = %d, want %d", tt.val, got, tt.want)
		}
	}
}

func TestVarIntRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xfc, 0xfd, 0xfe, 0xffff, 0x10000, 0xffffffff, 0x100000000, 0xffffffffffffffff}
	for _, val := range values {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, ProtocolVersion, val); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", val, err)
		}
		if buf.Len() != VarIntSerializeSize(val) {
			t.Errorf("val %d: wrote %d bytes, VarIntSerializeSize says %d", val, buf.Len(), VarIntSerializeSize(val))
		}
		got, err := ReadVarInt(&buf, ProtocolVersion)
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", val, err)
		}
		if got != val {
			t.Errorf("round trip of %d = %d", val, got)
		}
	}
}

func TestVarIntRejectsNonCanonicalEncoding(t *testing.T) {
	// 0xfd prefix followed by a value that fits in a single byte is a
	// non-canonical (non-minimal) encoding and must be rejected.
	buf := bytes.NewBuffer([]byte{0xfd, 0x0a, 0x00})
	if _, err := ReadVarInt(buf, ProtocolVersion); err == nil {
		t.Fatal("expected a non-canonical 0xfd-prefixed small value to be rejected")
	}
}

func TestVarBytesRoundTrip(t *testing.T) {
	tests := [][]byte{
		nil,
		{},
		{0x01},
		bytes.Repeat([]byte{0xab}, 300),
	}
	for _, data := range tests {
		var buf bytes.Buffer
		if err := WriteVarBytes(&buf, ProtocolVersion, data); err != nil {
			t.Fatalf("WriteVarBytes: %v", err)
		}
		got, err := ReadVarBytes(&buf, ProtocolVersion, 10_000, "test")
		if err != nil {
			t.Fatalf("ReadVarBytes: %v", err)
		}
		if len(got) != len(data) {
			t.Fatalf("round trip length = %d, want %d", len(got), len(data))
		}
		if len(data) > 0 && !bytes.Equal(got, data) {
			t.Fatalf("round trip content mismatch")
		}
	}
}

func TestVarBytesRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVarInt(&buf, ProtocolVersion, 1000); err != nil {
		t.Fatalf("WriteVarInt: %v", err)
	}
	if _, err := ReadVarBytes(&buf, ProtocolVersion, 10, "test"); err == nil {
		t.Fatal("expected an oversized var-bytes length to be rejected")
	}
}

func TestVarStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := "hello, zcash-family node"
	if err := WriteVarString(&buf, ProtocolVersion, want); err != nil {
		t.Fatalf("WriteVarString: %v", err)
	}
	got, err := ReadVarString(&buf, ProtocolVersion)
	if err != nil {
		t.Fatalf("ReadVarString: %v", err)
	}
	if got != want {
		t.Fatalf("round trip = %q, want %q", got, want)
	}
}
