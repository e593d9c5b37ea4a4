// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// verifySig reports whether sig is a valid DER-encoded ECDSA signature over
// sigHash for pubKey, consulting cache first and recording a fresh valid
// result into it. cache may be nil, in which case this degrades to a plain
// verification with no memoization.
func verifySig(cache *SigCache, sigHash chainhash.Hash, sig, pubKeyBytes []byte, tx *wire.MsgTx) bool {
	pk, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false
	}
	signature, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	if cache != nil && cache.Exists(sigHash, signature, pk) {
		return true
	}
	if !signature.Verify(sigHash[:], pk) {
		return false
	}
	if cache != nil {
		cache.Add(sigHash, signature, pk, tx)
	}
	return true
}

// SigHashType represents the hash type bits at the end of a signature.
type SigHashType uint32

const (
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80
)

// CalcSignatureHash computes the legacy signature hash digest for signing
// or verifying input inIdx of tx, treating subScript as the previous
// output's public key script (or the applicable redeem script for a
// pay-to-script-hash input); OP_CODESEPARATOR is not stripped from it.
// SigHashNone drops all outputs and zeroes the other inputs' sequences;
// SigHashSingle keeps outputs up to inIdx, blanking the earlier ones; and
// SigHashAnyOneCanPay keeps only the signed input.
func CalcSignatureHash(subScript []byte, hashType SigHashType, tx *wire.MsgTx, inIdx int) (chainhash.Hash, error) {
	if inIdx >= len(tx.TxIn) {
		return chainhash.Hash{}, fmt.Errorf("input index %d out of range for transaction with %d inputs",
			inIdx, len(tx.TxIn))
	}

	txCopy := tx.Copy()
	for i := range txCopy.TxIn {
		if i == inIdx {
			txCopy.TxIn[i].SignatureScript = subScript
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & 0x1f {
	case SigHashNone:
		txCopy.TxOut = nil
		for i := range txCopy.TxIn {
			if i != inIdx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	case SigHashSingle:
		if inIdx >= len(txCopy.TxOut) {
			return chainhash.Hash{}, fmt.Errorf("SIGHASH_SINGLE index %d out of range for %d outputs",
				inIdx, len(txCopy.TxOut))
		}
		txCopy.TxOut = txCopy.TxOut[:inIdx+1]
		for i := 0; i < inIdx; i++ {
			txCopy.TxOut[i] = &wire.TxOut{Value: -1}
		}
	}

	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = []*wire.TxIn{txCopy.TxIn[inIdx]}
	}

	var buf bytes.Buffer
	if err := txCopy.BtcEncode(&buf, wire.ProtocolVersion); err != nil {
		return chainhash.Hash{}, err
	}
	var hashTypeBytes [4]byte
	hashTypeBytes[0] = byte(hashType)
	buf.Write(hashTypeBytes[:])

	return chainhash.DoubleHashH(buf.Bytes()), nil
}

// VerifySignature reports whether sig is a valid DER-encoded ECDSA
// signature over sigHash for pubKey.
func VerifySignature(sigHash chainhash.Hash, sig []byte, pubKey []byte) bool {
	pk, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	signature, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return signature.Verify(sigHash[:], pk)
}

// splitSignatureAndHashType separates the trailing hash-type byte dcrd/
// bitcoin-family DER signatures carry from the DER-encoded signature
// itself.
func splitSignatureAndHashType(sigBytes []byte) ([]byte, SigHashType, error) {
	if len(sigBytes) == 0 {
		return nil, 0, fmt.Errorf("empty signature")
	}
	return sigBytes[:len(sigBytes)-1], SigHashType(sigBytes[len(sigBytes)-1]), nil
}

// VerifyPubKeyHashSpend verifies that sigScript correctly spends a
// pay-to-pubkey-hash output with the given pkHash, by checking that it
// pushes a signature and a public key hashing to pkHash, and that the
// signature verifies over tx's legacy signature hash for input inIdx
// against subScript. cache, if non-nil, is consulted and updated so a
// signature already verified once (e.g. when the transaction was accepted
// into the mempool) need not be re-verified when its block is connected.
func VerifyPubKeyHashSpend(cache *SigCache, pkHash []byte, sigScript, subScript []byte, tx *wire.MsgTx, inIdx int) error {
	tokenizer := MakeScriptTokenizer(0, sigScript)
	if !tokenizer.Next() {
		return fmt.Errorf("signature script missing signature push")
	}
	sigWithType := tokenizer.Data()
	if !tokenizer.Next() {
		return fmt.Errorf("signature script missing pubkey push")
	}
	pubKey := tokenizer.Data()
	if !tokenizer.Done() {
		return fmt.Errorf("signature script has unexpected trailing data")
	}

	if !bytes.Equal(hash160(pubKey), pkHash) {
		return fmt.Errorf("public key does not hash to the expected pubkey hash")
	}

	sigBytes, hashType, err := splitSignatureAndHashType(sigWithType)
	if err != nil {
		return err
	}

	sigHash, err := CalcSignatureHash(subScript, hashType, tx, inIdx)
	if err != nil {
		return err
	}
	if !verifySig(cache, sigHash, sigBytes, pubKey, tx) {
		return fmt.Errorf("signature verification failed")
	}
	return nil
}

// VerifyPubKeySpend verifies that sigScript correctly spends a
// pay-to-pubkey output for the given public key.
func VerifyPubKeySpend(cache *SigCache, pubKey []byte, sigScript, subScript []byte, tx *wire.MsgTx, inIdx int) error {
	tokenizer := MakeScriptTokenizer(0, sigScript)
	if !tokenizer.Next() {
		return fmt.Errorf("signature script missing signature push")
	}
	sigWithType := tokenizer.Data()
	if !tokenizer.Done() {
		return fmt.Errorf("signature script has unexpected trailing data")
	}

	sigBytes, hashType, err := splitSignatureAndHashType(sigWithType)
	if err != nil {
		return err
	}

	sigHash, err := CalcSignatureHash(subScript, hashType, tx, inIdx)
	if err != nil {
		return err
	}
	if !verifySig(cache, sigHash, sigBytes, pubKey, tx) {
		return fmt.Errorf("signature verification failed")
	}
	return nil
}

// VerifyMultiSigSpend verifies that sigScript supplies enough valid
// signatures, in pubKeys order, to satisfy the m-of-n redeem script
// represented by pubKeys/requiredSigs.
func VerifyMultiSigSpend(cache *SigCache, pubKeys [][]byte, requiredSigs int, sigScript, subScript []byte, tx *wire.MsgTx, inIdx int) error {
	tokenizer := MakeScriptTokenizer(0, sigScript)
	// Bare multisig's OP_CHECKMULTISIG has an off-by-one stack bug that
	// consumes one extra, unused value; a leading OP_0 satisfies it.
	if !tokenizer.Next() || tokenizer.Opcode() != OP_0 {
		return fmt.Errorf("multisig signature script missing OP_0 placeholder")
	}

	var sigs [][]byte
	for tokenizer.Next() {
		sigs = append(sigs, tokenizer.Data())
	}
	if err := tokenizer.Err(); err != nil {
		return err
	}
	if len(sigs) < requiredSigs {
		return fmt.Errorf("got %d signatures, need %d", len(sigs), requiredSigs)
	}

	keyIdx := 0
	matched := 0
	for _, sigWithType := range sigs {
		sigBytes, hashType, err := splitSignatureAndHashType(sigWithType)
		if err != nil {
			return err
		}
		sigHash, err := CalcSignatureHash(subScript, hashType, tx, inIdx)
		if err != nil {
			return err
		}
		for keyIdx < len(pubKeys) {
			pk := pubKeys[keyIdx]
			keyIdx++
			if verifySig(cache, sigHash, sigBytes, pk, tx) {
				matched++
				break
			}
		}
	}

	if matched < requiredSigs {
		return fmt.Errorf("only %d of %d required signatures verified", matched, requiredSigs)
	}
	return nil
}

// hash160 computes RIPEMD160(SHA256(data)), the digest standard
// pay-to-pubkey-hash and pay-to-script-hash outputs commit to.
func hash160(data []byte) []byte {
	return chainhash.Hash160(data)
}
