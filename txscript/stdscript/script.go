// Copyright (c) 2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package stdscript classifies the standard transparent scripts a PoW/PoN
// node accepts: pay-to-pubkey, pay-to-pubkey-hash, pay-to-script-hash,
// bare multisig, and provably-prunable null data. There is no staking or
// treasury scripting here; shielded spends never reach this package since
// they carry no scriptPubKey at all.
package stdscript

// ScriptType identifies the type of known scripts that are considered
// standard by the default mempool policy. All other scripts are
// considered non-standard.
type ScriptType byte

const (
	// STNonStandard indicates a script is none of the recognized standard
	// forms.
	STNonStandard ScriptType = iota

	// STPubKeyEcdsaSecp256k1 identifies a standard pay-to-pubkey (P2PK)
	// script that imposes an encumbrance requiring a valid ECDSA
	// signature for a specific secp256k1 public key.
	STPubKeyEcdsaSecp256k1

	// STPubKeyHashEcdsaSecp256k1 identifies a standard
	// pay-to-pubkey-hash (P2PKH) script.
	STPubKeyHashEcdsaSecp256k1

	// STScriptHash identifies a standard pay-to-script-hash (P2SH)
	// script.
	STScriptHash

	// STMultiSig identifies a standard ECDSA n-of-m multi-signature
	// script.
	STMultiSig

	// STNullData identifies a standard null data script that is provably
	// prunable.
	STNullData

	// numScriptTypes is the maximum script type number. This entry MUST
	// be the last entry in the enum.
	numScriptTypes
)

var scriptTypeToName = []string{
	STNonStandard:              "nonstandard",
	STPubKeyEcdsaSecp256k1:     "pubkey",
	STPubKeyHashEcdsaSecp256k1: "pubkeyhash",
	STScriptHash:               "scripthash",
	STMultiSig:                 "multisig",
	STNullData:                 "nulldata",
}

// String returns the ScriptType as a human-readable name.
func (t ScriptType) String() string {
	if t >= numScriptTypes {
		return "invalid"
	}
	return scriptTypeToName[t]
}

// IsPubKeyScript returns whether or not the passed script is a standard
// pay-to-compressed-secp256k1-pubkey or pay-to-uncompressed-secp256k1-pubkey
// script.
func IsPubKeyScript(script []byte) bool {
	return ExtractPubKey(script) != nil
}

// IsPubKeyHashScript returns whether or not the passed script is a standard
// pay-to-pubkey-hash-ecdsa-secp256k1 script.
func IsPubKeyHashScript(script []byte) bool {
	return ExtractPubKeyHash(script) != nil
}

// IsScriptHashScript returns whether or not the passed script is a
// standard pay-to-script-hash script.
func IsScriptHashScript(script []byte) bool {
	return ExtractScriptHash(script) != nil
}

// IsMultiSigScript returns whether or not the passed script is a standard
// ECDSA multisig script.
func IsMultiSigScript(script []byte) bool {
	details := ExtractMultiSigScriptDetails(script, false)
	return details.Valid
}

// IsNullDataScript returns whether or not the passed script is a standard
// null data script.
func IsNullDataScript(script []byte) bool {
	return isNullDataScript(script)
}

// DetermineScriptType returns the type of the script passed. STNonStandard
// is returned when the script does not parse or match a known form.
func DetermineScriptType(script []byte) ScriptType {
	switch {
	case IsPubKeyScript(script):
		return STPubKeyEcdsaSecp256k1
	case IsPubKeyHashScript(script):
		return STPubKeyHashEcdsaSecp256k1
	case IsScriptHashScript(script):
		return STScriptHash
	case IsMultiSigScript(script):
		return STMultiSig
	case IsNullDataScript(script):
		return STNullData
	}
	return STNonStandard
}

// DetermineRequiredSigs attempts to identify the number of signatures
// required by the passed script for the known standard types. It returns
// 0 when the script does not parse or is not one of the known standard
// types.
func DetermineRequiredSigs(script []byte) uint16 {
	switch DetermineScriptType(script) {
	case STPubKeyEcdsaSecp256k1, STPubKeyHashEcdsaSecp256k1, STScriptHash:
		return 1
	case STMultiSig:
		details := ExtractMultiSigScriptDetails(script, false)
		if details.Valid {
			return details.RequiredSigs
		}
	}
	return 0
}
