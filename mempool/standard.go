// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/excc-labs/fluxnoded/txscript"
	"github.com/excc-labs/fluxnoded/txscript/stdscript"
	"github.com/excc-labs/fluxnoded/wire"
)

// estimatedSigScriptSize caps how many scriptSig bytes per input the
// modified-size discount removes: a generous estimate of the signature push
// a fully-signed input carries, so fee rate and priority aren't skewed by an
// input's current, possibly-smaller scriptSig.
const estimatedSigScriptSize = 110

// countScriptSigOps counts the signature operations a scriptPubKey
// contributes on its own, using the non-accurate (assume worst case for
// bare CHECKMULTISIG) counting convention standard script relay checks
// use.
func countScriptSigOps(script []byte) int {
	count := 0
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	lastOp := byte(0)
	for tokenizer.Next() {
		switch tokenizer.Opcode() {
		case txscript.OP_CHECKSIG, txscript.OP_CHECKSIGVERIFY:
			count++
		case txscript.OP_CHECKMULTISIG, txscript.OP_CHECKMULTISIGVERIFY:
			if txscript.IsSmallInt(lastOp) {
				count += txscript.AsSmallInt(lastOp)
			} else {
				count += txscript.MaxPubKeysPerMultiSig
			}
		}
		lastOp = tokenizer.Opcode()
	}
	return count
}

// countP2SHSigOps counts the sigops a P2SH input contributes: the sigops
// of its redeem script, which is the final data push of its scriptSig.
// sigScript must already be known push-only (enforceStandardInputs checks
// that before calling this).
func countP2SHSigOps(sigScript []byte) int {
	tokenizer := txscript.MakeScriptTokenizer(0, sigScript)
	var redeemScript []byte
	for tokenizer.Next() {
		redeemScript = tokenizer.Data()
	}
	if redeemScript == nil {
		return 0
	}
	return countScriptSigOps(redeemScript)
}

// isPushOnly reports whether script contains only data pushes, the shape
// every standard scriptSig must have.
func isPushOnly(script []byte) bool {
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		if tokenizer.Opcode() > txscript.OP_16 {
			return false
		}
	}
	return tokenizer.Err() == nil
}

// enforceStandardOutputs rejects a transaction whose outputs don't match
// one of the recognized standard forms, carry an oversized OP_RETURN
// payload, or are dust. It returns the sigop count contributed by the
// outputs themselves (relevant for bare multisig and null data; P2PKH and
// P2PK sigops are counted the same way here too for a uniform total).
func enforceStandardOutputs(tx *wire.MsgTx, policy Policy) (int, error) {
	sigOps := 0
	nullDataCount := 0
	for i, out := range tx.TxOut {
		scriptType := stdscript.DetermineScriptType(out.PkScript)
		switch scriptType {
		case stdscript.STNullData:
			nullDataCount++
			if nullDataCount > 1 {
				return 0, ruleErrorf(ErrNonStandard, "more than one null data output")
			}
			if len(out.PkScript) > policy.MaxOpReturnBytes {
				return 0, ruleErrorf(ErrNonStandard, "null data output %d exceeds %d bytes", i, policy.MaxOpReturnBytes)
			}
			continue
		case stdscript.STNonStandard:
			return 0, ruleErrorf(ErrNonStandard, "output %d uses a non-standard script", i)
		}
		sigOps += countScriptSigOps(out.PkScript)
		if policy.isDust(out.Value, estimatedSigScriptSize) {
			return 0, ruleErrorf(ErrNonStandard, "output %d is dust (value %d)", i, out.Value)
		}
	}
	return sigOps, nil
}

// enforceStandardInputs rejects a transaction whose transparent inputs
// don't satisfy the standard scriptSig shape: push-only, within the
// scriptSig size ceiling, and (for P2SH) within the redeem-script sigop
// ceiling. prevScripts[i] is the scriptPubKey tx.TxIn[i] spends.
func enforceStandardInputs(tx *wire.MsgTx, prevScripts [][]byte, policy Policy) (int, error) {
	sigOps := 0
	for i, in := range tx.TxIn {
		if len(in.SignatureScript) > policy.MaxScriptSigSize {
			return 0, ruleErrorf(ErrNonStandard, "input %d scriptSig exceeds %d bytes", i, policy.MaxScriptSigSize)
		}
		if !isPushOnly(in.SignatureScript) {
			return 0, ruleErrorf(ErrNonStandard, "input %d scriptSig is not push-only", i)
		}
		if stdscript.DetermineScriptType(prevScripts[i]) == stdscript.STScriptHash {
			n := countP2SHSigOps(in.SignatureScript)
			if n > policy.MaxP2SHSigOps {
				return 0, ruleErrorf(ErrNonStandard, "input %d redeem script has %d sigops, max %d", i, n, policy.MaxP2SHSigOps)
			}
			sigOps += n
		}
	}
	return sigOps, nil
}

// modifiedSize computes the fee/priority basis size: the raw serialized
// size minus, for every input, its 41 fixed bytes plus its scriptSig length
// capped at estimatedSigScriptSize. Shielded spends have no scriptSig and
// contribute nothing to the discount.
func modifiedSize(rawSize int, tx *wire.MsgTx) int {
	size := rawSize
	for _, in := range tx.TxIn {
		sigLen := len(in.SignatureScript)
		if sigLen > estimatedSigScriptSize {
			sigLen = estimatedSigScriptSize
		}
		size -= sigLen + 41
	}
	if size < 0 {
		return 0
	}
	return size
}
