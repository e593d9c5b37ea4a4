// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

func TestMsgTxTransparentRoundTrip(t *testing.T) {
	tx := NewMsgTx(1)
	tx.AddTxIn(&TxIn{
		PreviousOutPoint: OutPoint{Hash: chainhash.HashH([]byte("prev")), Index: 3},
		SignatureScript:  []byte{0x01, 0x02, 0x03},
		Sequence:         MaxTxInSequenceNum,
	})
	tx.AddTxOut(&TxOut{Value: 12_345, PkScript: []byte{0x76, 0xa9, 0x14}})
	tx.LockTime = 600_000

	var buf bytes.Buffer
	if err := tx.BtcEncode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcEncode: %v", err)
	}

	got := &MsgTx{}
	if err := got.BtcDecode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcDecode: %v", err)
	}

	if got.Overwintered {
		t.Fatal("a non-overwintered tx must decode with Overwintered = false")
	}
	if got.Version != tx.Version {
		t.Errorf("Version = %d, want %d", got.Version, tx.Version)
	}
	if len(got.TxIn) != 1 || got.TxIn[0].PreviousOutPoint != tx.TxIn[0].PreviousOutPoint {
		t.Fatalf("TxIn round trip mismatch: %+v", got.TxIn)
	}
	if !bytes.Equal(got.TxIn[0].SignatureScript, tx.TxIn[0].SignatureScript) {
		t.Fatalf("SignatureScript round trip mismatch")
	}
	if len(got.TxOut) != 1 || got.TxOut[0].Value != tx.TxOut[0].Value {
		t.Fatalf("TxOut round trip mismatch: %+v", got.TxOut)
	}
	if got.LockTime != tx.LockTime {
		t.Errorf("LockTime = %d, want %d", got.LockTime, tx.LockTime)
	}
	if got.TxHash() != tx.TxHash() {
		t.Fatal("TxHash of the decoded tx should match the original")
	}
}

func TestMsgTxOverwinteredRoundTrip(t *testing.T) {
	tx := NewMsgTx(4)
	tx.Overwintered = true
	tx.VersionGroupID = 0x892f2085
	tx.ExpiryHeight = 123_456
	tx.AddTxIn(&TxIn{PreviousOutPoint: OutPoint{Hash: chainhash.HashH([]byte("in")), Index: 0}})
	tx.AddTxOut(&TxOut{Value: 1, PkScript: []byte{0x6a}})

	var buf bytes.Buffer
	if err := tx.BtcEncode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcEncode: %v", err)
	}

	got := &MsgTx{}
	if err := got.BtcDecode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcDecode: %v", err)
	}
	if !got.Overwintered {
		t.Fatal("Overwintered flag did not round trip")
	}
	if got.Version != 4 {
		t.Errorf("Version = %d, want 4 (high bit must be stripped back out)", got.Version)
	}
	if got.VersionGroupID != tx.VersionGroupID {
		t.Errorf("VersionGroupID = %#x, want %#x", got.VersionGroupID, tx.VersionGroupID)
	}
	if got.ExpiryHeight != tx.ExpiryHeight {
		t.Errorf("ExpiryHeight = %d, want %d", got.ExpiryHeight, tx.ExpiryHeight)
	}
}

func TestMsgTxShieldedRoundTrip(t *testing.T) {
	tx := NewMsgTx(4)
	tx.Overwintered = true
	tx.VersionGroupID = 0x892f2085 // Sapling version group, required for hasShielded()
	tx.ValueBalance = -5_000
	tx.ShieldedSpends = []*SpendDescription{{Nullifier: [32]byte{0xaa}}}
	tx.ShieldedOutputs = []*OutputDescription{{CMU: [32]byte{0xbb}}}
	tx.JoinSplits = []*JoinSplit{{VpubOld: 10, VpubNew: 20}}
	tx.JoinSplitPubKey = [32]byte{0xcc}

	var buf bytes.Buffer
	if err := tx.BtcEncode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcEncode: %v", err)
	}

	got := &MsgTx{}
	if err := got.BtcDecode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcDecode: %v", err)
	}
	if got.ValueBalance != tx.ValueBalance {
		t.Errorf("ValueBalance = %d, want %d", got.ValueBalance, tx.ValueBalance)
	}
	if len(got.ShieldedSpends) != 1 || got.ShieldedSpends[0].Nullifier != tx.ShieldedSpends[0].Nullifier {
		t.Fatalf("ShieldedSpends round trip mismatch")
	}
	if len(got.ShieldedOutputs) != 1 || got.ShieldedOutputs[0].CMU != tx.ShieldedOutputs[0].CMU {
		t.Fatalf("ShieldedOutputs round trip mismatch")
	}
	if len(got.JoinSplits) != 1 || got.JoinSplits[0].VpubOld != 10 || got.JoinSplits[0].VpubNew != 20 {
		t.Fatalf("JoinSplits round trip mismatch")
	}
	if got.JoinSplitPubKey != tx.JoinSplitPubKey {
		t.Fatalf("JoinSplitPubKey round trip mismatch")
	}
}

func TestMsgTxCopyIsIndependent(t *testing.T) {
	tx := NewMsgTx(1)
	tx.AddTxIn(&TxIn{SignatureScript: []byte{0x01}})
	tx.AddTxOut(&TxOut{Value: 1, PkScript: []byte{0x02}})

	cp := tx.Copy()
	cp.TxIn[0].SignatureScript[0] = 0xff
	cp.TxOut[0].PkScript[0] = 0xff

	if tx.TxIn[0].SignatureScript[0] == 0xff {
		t.Fatal("mutating the copy's SignatureScript affected the original")
	}
	if tx.TxOut[0].PkScript[0] == 0xff {
		t.Fatal("mutating the copy's PkScript affected the original")
	}
}
