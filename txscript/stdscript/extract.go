// Copyright (c) 2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stdscript

import (
	"fmt"

	"github.com/excc-labs/fluxnoded/txscript"
)

// MaxDataCarrierSize is the maximum number of bytes allowed in pushed data
// to be considered a standard provably-prunable null data script.
const MaxDataCarrierSize = 256

// ExtractCompressedPubKey extracts a compressed public key from the passed
// script if it is a standard pay-to-compressed-secp256k1-pubkey script. It
// returns nil otherwise.
func ExtractCompressedPubKey(script []byte) []byte {
	// OP_DATA_33 <33-byte compressed pubkey> OP_CHECKSIG
	if len(script) == 35 &&
		script[34] == txscript.OP_CHECKSIG &&
		script[0] == txscript.OP_DATA_33 &&
		(script[1] == 0x02 || script[1] == 0x03) {

		return script[1:34]
	}
	return nil
}

// ExtractUncompressedPubKey extracts an uncompressed public key from the
// passed script if it is a standard pay-to-uncompressed-secp256k1-pubkey
// script. It returns nil otherwise.
func ExtractUncompressedPubKey(script []byte) []byte {
	// OP_DATA_65 <65-byte uncompressed pubkey> OP_CHECKSIG
	if len(script) == 67 &&
		script[66] == txscript.OP_CHECKSIG &&
		script[0] == txscript.OP_DATA_65 &&
		script[1] == 0x04 {

		return script[1:66]
	}
	return nil
}

// ExtractPubKey extracts either a compressed or uncompressed public key
// from the passed script if it is a standard pay-to-pubkey script. It
// returns nil otherwise.
func ExtractPubKey(script []byte) []byte {
	if pubKey := ExtractCompressedPubKey(script); pubKey != nil {
		return pubKey
	}
	return ExtractUncompressedPubKey(script)
}

// ExtractPubKeyHash extracts the public key hash from the passed script if
// it is a standard pay-to-pubkey-hash-ecdsa-secp256k1 script. It returns
// nil otherwise.
func ExtractPubKeyHash(script []byte) []byte {
	// OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
	if len(script) == 25 &&
		script[0] == txscript.OP_DUP &&
		script[1] == txscript.OP_HASH160 &&
		script[2] == txscript.OP_DATA_20 &&
		script[23] == txscript.OP_EQUALVERIFY &&
		script[24] == txscript.OP_CHECKSIG {

		return script[3:23]
	}
	return nil
}

// ExtractScriptHash extracts the script hash from the passed script if it
// is a standard pay-to-script-hash script. It returns nil otherwise.
func ExtractScriptHash(script []byte) []byte {
	return txscript.ExtractScriptHash(script)
}

// MultiSigDetails houses details extracted from a standard ECDSA multisig
// script.
type MultiSigDetails struct {
	RequiredSigs uint16
	NumPubKeys   uint16
	PubKeys      [][]byte
	Valid        bool
}

// ExtractMultiSigScriptDetails attempts to extract details from the passed
// script if it is a standard ECDSA multisig script. The returned details
// struct has its Valid flag set to false otherwise.
//
// extractPubKeys indicates whether the pubkeys themselves should also be
// extracted; callers that only need to know whether the script is a
// multisig script can pass false to avoid the allocation.
func ExtractMultiSigScriptDetails(script []byte, extractPubKeys bool) MultiSigDetails {
	// REQ_SIGS PUBKEY PUBKEY ... NUM_PUBKEYS OP_CHECKMULTISIG
	if len(script) < 3 || script[len(script)-1] != txscript.OP_CHECKMULTISIG {
		return MultiSigDetails{}
	}

	tokenizer := txscript.MakeScriptTokenizer(0, script)
	if !tokenizer.Next() || !txscript.IsSmallInt(tokenizer.Opcode()) {
		return MultiSigDetails{}
	}
	requiredSigs := txscript.AsSmallInt(tokenizer.Opcode())
	if requiredSigs == 0 {
		return MultiSigDetails{}
	}

	var numPubKeys int
	var pubKeys [][]byte
	if extractPubKeys {
		pubKeys = make([][]byte, 0, txscript.MaxPubKeysPerMultiSig)
	}
	for tokenizer.Next() {
		data := tokenizer.Data()
		if !txscript.IsStrictCompressedPubKeyEncoding(data) {
			break
		}
		numPubKeys++
		if extractPubKeys {
			pubKeys = append(pubKeys, data)
		}
	}
	if tokenizer.Done() {
		return MultiSigDetails{}
	}

	op := tokenizer.Opcode()
	if !txscript.IsSmallInt(op) || txscript.AsSmallInt(op) != numPubKeys {
		return MultiSigDetails{}
	}
	if numPubKeys < requiredSigs {
		return MultiSigDetails{}
	}
	if int32(len(tokenizer.Script()))-tokenizer.ByteIndex() != 1 {
		return MultiSigDetails{}
	}

	return MultiSigDetails{
		RequiredSigs: uint16(requiredSigs),
		NumPubKeys:   uint16(numPubKeys),
		PubKeys:      pubKeys,
		Valid:        true,
	}
}

// isCanonicalPush returns whether the given opcode and associated data is
// a push instruction that uses the smallest instruction to do the job.
func isCanonicalPush(opcode byte, data []byte) bool {
	dataLen := len(data)
	if opcode > txscript.OP_16 {
		return false
	}
	if opcode < txscript.OP_PUSHDATA1 && opcode > txscript.OP_0 &&
		(dataLen == 1 && data[0] <= 16) {
		return false
	}
	if opcode == txscript.OP_PUSHDATA1 && dataLen < txscript.OP_PUSHDATA1 {
		return false
	}
	if opcode == txscript.OP_PUSHDATA2 && dataLen <= 0xff {
		return false
	}
	if opcode == txscript.OP_PUSHDATA4 && dataLen <= 0xffff {
		return false
	}
	return true
}

// isNullDataScript returns whether or not the passed script is a standard
// null data script.
func isNullDataScript(script []byte) bool {
	// OP_RETURN <optional data>
	if len(script) < 1 || script[0] != txscript.OP_RETURN {
		return false
	}
	if len(script) == 1 {
		return true
	}

	tokenizer := txscript.MakeScriptTokenizer(0, script[1:])
	return tokenizer.Next() && tokenizer.Done() &&
		len(tokenizer.Data()) <= MaxDataCarrierSize &&
		isCanonicalPush(tokenizer.Opcode(), tokenizer.Data())
}

// MultiSigScript returns a valid script for a multisignature redemption
// where the specified threshold number of the keys in the given public
// keys are required to have signed the transaction for success.
//
// The provided public keys must be serialized in the compressed format.
func MultiSigScript(threshold int, pubKeys ...[]byte) ([]byte, error) {
	if len(pubKeys) < threshold {
		return nil, fmt.Errorf("unable to generate multisig script with %d "+
			"required signatures when there are only %d public keys available",
			threshold, len(pubKeys))
	}

	builder := txscript.NewScriptBuilder().AddInt64(int64(threshold))
	for _, pubKey := range pubKeys {
		if !txscript.IsStrictCompressedPubKeyEncoding(pubKey) {
			return nil, fmt.Errorf("unable to generate multisig script with "+
				"unsupported public key %x", pubKey)
		}
		builder.AddData(pubKey)
	}
	builder.AddInt64(int64(len(pubKeys)))
	builder.AddOp(txscript.OP_CHECKMULTISIG)

	return builder.Script()
}

// ProvablyPruneableScript returns a valid provably-pruneable script which
// consists of an OP_RETURN followed by the passed data.
func ProvablyPruneableScript(data []byte) ([]byte, error) {
	if len(data) > MaxDataCarrierSize {
		return nil, fmt.Errorf("data size %d is larger than max allowed size %d",
			len(data), MaxDataCarrierSize)
	}

	builder := txscript.NewScriptBuilder()
	return builder.AddOp(txscript.OP_RETURN).AddData(data).Script()
}

// PayToPubKeyHashScript creates a standard pay-to-pubkey-hash script paying
// to the given 20-byte hash.
func PayToPubKeyHashScript(pkHash []byte) ([]byte, error) {
	if len(pkHash) != 20 {
		return nil, fmt.Errorf("pubkey hash must be 20 bytes, got %d", len(pkHash))
	}
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(pkHash).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// PayToScriptHashScript creates a standard pay-to-script-hash script
// paying to the given 20-byte hash.
func PayToScriptHashScript(scriptHash []byte) ([]byte, error) {
	if len(scriptHash) != 20 {
		return nil, fmt.Errorf("script hash must be 20 bytes, got %d", len(scriptHash))
	}
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(scriptHash).
		AddOp(txscript.OP_EQUAL).
		Script()
}
