// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/excc-labs/fluxnoded/wire"
)

func testKey(seed byte) *secp256k1.PrivateKey {
	b := make([]byte, 32)
	b[31] = seed
	b[0] = 1
	return secp256k1.PrivKeyFromBytes(b)
}

func spendingTx(pkScript []byte, value int64) (*wire.MsgTx, []byte) {
	prev := wire.NewMsgTx(1)
	prev.AddTxOut(&wire.TxOut{Value: value, PkScript: pkScript})

	spender := wire.NewMsgTx(1)
	spender.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prev.TxHash(), Index: 0}})
	spender.AddTxOut(&wire.TxOut{Value: value - 1000, PkScript: []byte{OP_TRUE}})
	return spender, pkScript
}

func signInput(t *testing.T, priv *secp256k1.PrivateKey, subScript []byte, tx *wire.MsgTx, inIdx int) []byte {
	t.Helper()
	sigHash, err := CalcSignatureHash(subScript, SigHashAll, tx, inIdx)
	if err != nil {
		t.Fatalf("CalcSignatureHash: %v", err)
	}
	sig := ecdsa.Sign(priv, sigHash[:])
	return append(sig.Serialize(), byte(SigHashAll))
}

func TestVerifyPubKeyHashSpendValidSignature(t *testing.T) {
	priv := testKey(1)
	pubKey := priv.PubKey().SerializeCompressed()
	pkHash := hash160(pubKey)

	pkScript, err := NewScriptBuilder().
		AddOp(OP_DUP).AddOp(OP_HASH160).AddData(pkHash).
		AddOp(OP_EQUALVERIFY).AddOp(OP_CHECKSIG).
		Script()
	if err != nil {
		t.Fatalf("building pkScript: %v", err)
	}

	tx, subScript := spendingTx(pkScript, 50_000)
	sigWithType := signInput(t, priv, subScript, tx, 0)

	sigScript, err := NewScriptBuilder().AddData(sigWithType).AddData(pubKey).Script()
	if err != nil {
		t.Fatalf("building sigScript: %v", err)
	}

	cache, err := NewSigCache(10)
	if err != nil {
		t.Fatalf("NewSigCache: %v", err)
	}
	if err := VerifyPubKeyHashSpend(cache, pkHash, sigScript, subScript, tx, 0); err != nil {
		t.Fatalf("VerifyPubKeyHashSpend: %v", err)
	}

	// A second verification should hit the signature cache and still
	// succeed.
	if err := VerifyPubKeyHashSpend(cache, pkHash, sigScript, subScript, tx, 0); err != nil {
		t.Fatalf("cached VerifyPubKeyHashSpend: %v", err)
	}
}

func TestVerifyPubKeyHashSpendWrongKeyFails(t *testing.T) {
	priv := testKey(1)
	other := testKey(2)
	pubKey := priv.PubKey().SerializeCompressed()
	pkHash := hash160(pubKey)

	pkScript, err := NewScriptBuilder().
		AddOp(OP_DUP).AddOp(OP_HASH160).AddData(pkHash).
		AddOp(OP_EQUALVERIFY).AddOp(OP_CHECKSIG).
		Script()
	if err != nil {
		t.Fatalf("building pkScript: %v", err)
	}

	tx, subScript := spendingTx(pkScript, 50_000)
	sigWithType := signInput(t, other, subScript, tx, 0)

	sigScript, err := NewScriptBuilder().AddData(sigWithType).AddData(other.PubKey().SerializeCompressed()).Script()
	if err != nil {
		t.Fatalf("building sigScript: %v", err)
	}

	if err := VerifyPubKeyHashSpend(nil, pkHash, sigScript, subScript, tx, 0); err == nil {
		t.Fatal("expected verification to fail when the pubkey hashes don't match")
	}
}

func TestVerifyPubKeySpendValidSignature(t *testing.T) {
	priv := testKey(3)
	pubKey := priv.PubKey().SerializeCompressed()

	pkScript, err := NewScriptBuilder().AddData(pubKey).AddOp(OP_CHECKSIG).Script()
	if err != nil {
		t.Fatalf("building pkScript: %v", err)
	}

	tx, subScript := spendingTx(pkScript, 25_000)
	sigWithType := signInput(t, priv, subScript, tx, 0)

	sigScript, err := NewScriptBuilder().AddData(sigWithType).Script()
	if err != nil {
		t.Fatalf("building sigScript: %v", err)
	}

	if err := VerifyPubKeySpend(nil, pubKey, sigScript, subScript, tx, 0); err != nil {
		t.Fatalf("VerifyPubKeySpend: %v", err)
	}
}

func TestVerifyMultiSigSpendSatisfiesThreshold(t *testing.T) {
	priv1, priv2, priv3 := testKey(11), testKey(12), testKey(13)
	pub1 := priv1.PubKey().SerializeCompressed()
	pub2 := priv2.PubKey().SerializeCompressed()
	pub3 := priv3.PubKey().SerializeCompressed()
	pubKeys := [][]byte{pub1, pub2, pub3}

	subScript, err := NewScriptBuilder().
		AddInt64(2).
		AddData(pub1).AddData(pub2).AddData(pub3).
		AddInt64(3).
		AddOp(OP_CHECKMULTISIG).
		Script()
	if err != nil {
		t.Fatalf("building redeem script: %v", err)
	}

	tx, _ := spendingTx(subScript, 100_000)
	sig1 := signInput(t, priv1, subScript, tx, 0)
	sig3 := signInput(t, priv3, subScript, tx, 0)

	sigScript, err := NewScriptBuilder().AddOp(OP_0).AddData(sig1).AddData(sig3).Script()
	if err != nil {
		t.Fatalf("building sigScript: %v", err)
	}

	if err := VerifyMultiSigSpend(nil, pubKeys, 2, sigScript, subScript, tx, 0); err != nil {
		t.Fatalf("VerifyMultiSigSpend: %v", err)
	}
}

func TestVerifyMultiSigSpendTooFewSignaturesFails(t *testing.T) {
	priv1, priv2, priv3 := testKey(21), testKey(22), testKey(23)
	pub1 := priv1.PubKey().SerializeCompressed()
	pub2 := priv2.PubKey().SerializeCompressed()
	pub3 := priv3.PubKey().SerializeCompressed()
	pubKeys := [][]byte{pub1, pub2, pub3}

	subScript, err := NewScriptBuilder().
		AddInt64(2).
		AddData(pub1).AddData(pub2).AddData(pub3).
		AddInt64(3).
		AddOp(OP_CHECKMULTISIG).
		Script()
	if err != nil {
		t.Fatalf("building redeem script: %v", err)
	}

	tx, _ := spendingTx(subScript, 100_000)
	sig1 := signInput(t, priv1, subScript, tx, 0)

	sigScript, err := NewScriptBuilder().AddOp(OP_0).AddData(sig1).Script()
	if err != nil {
		t.Fatalf("building sigScript: %v", err)
	}

	if err := VerifyMultiSigSpend(nil, pubKeys, 2, sigScript, subScript, tx, 0); err == nil {
		t.Fatal("expected an error when fewer signatures than required are supplied")
	}
}

func TestCalcSignatureHashDiffersByInput(t *testing.T) {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 1}})
	tx.AddTxOut(&wire.TxOut{Value: 1, PkScript: []byte{OP_TRUE}})

	subScript := []byte{OP_TRUE}
	h0, err := CalcSignatureHash(subScript, SigHashAll, tx, 0)
	if err != nil {
		t.Fatalf("CalcSignatureHash(0): %v", err)
	}
	h1, err := CalcSignatureHash(subScript, SigHashAll, tx, 1)
	if err != nil {
		t.Fatalf("CalcSignatureHash(1): %v", err)
	}
	if h0 == h1 {
		t.Fatal("signature hashes for different input indexes must differ")
	}
}
