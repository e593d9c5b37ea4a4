// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"
	"sync"

	"github.com/excc-labs/fluxnoded/chaincfg"
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/dcrutil"
	"github.com/excc-labs/fluxnoded/txscript"
	"github.com/excc-labs/fluxnoded/txscript/stdscript"
	"github.com/excc-labs/fluxnoded/wire"
)

// freeRelayLimiter throttles how many modified-size bytes of below-relay-fee
// transactions this node accepts per minute, decaying the running total
// continuously rather than in discrete per-minute buckets so a burst right
// at a minute boundary can't double the effective allowance.
type freeRelayLimiter struct {
	mu          sync.Mutex
	bytesPerSec float64
	lastUpdate  int64
}

func (l *freeRelayLimiter) allow(modifiedSize int, now int64, bytesPerMinute int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if bytesPerMinute <= 0 {
		return false
	}
	if l.lastUpdate != 0 {
		elapsed := now - l.lastUpdate
		if elapsed > 0 {
			l.bytesPerSec -= float64(elapsed) * float64(bytesPerMinute) / 60
			if l.bytesPerSec < 0 {
				l.bytesPerSec = 0
			}
		}
	}
	l.lastUpdate = now
	if l.bytesPerSec+float64(modifiedSize) > float64(bytesPerMinute) {
		return false
	}
	l.bytesPerSec += float64(modifiedSize)
	return true
}

// AcceptTransaction validates tx (serialized as raw) against both
// consensus rules and relay policy and, on success, admits it and replays
// any orphans that were only waiting on it. A missing-input error never
// touches the pool; the caller decides whether to queue the transaction
// as an orphan via AddOrphan.
func (p *Pool) AcceptTransaction(tx *wire.MsgTx, raw []byte, now int64) (*Entry, []chainhash.Hash, error) {
	txid := tx.TxHash()
	if p.rejectFilter.Contains(txid[:]) {
		return nil, nil, ruleErrorf(ErrInvalidTransaction, "tx %s recently rejected", txid)
	}

	entry, err := p.buildEntry(tx, raw, now)
	if err != nil {
		var ruleErr RuleError
		if !(errors.As(err, &ruleErr) && ruleErr.Kind == ErrMissingInput) {
			p.rejectFilter.Add(txid[:])
		}
		return nil, nil, err
	}
	if err := p.Insert(entry); err != nil {
		return nil, nil, err
	}
	accepted := p.ProcessOrphansAfterAccept(entry.Txid, now)
	return entry, accepted, nil
}

// buildEntry runs every acceptance check a transaction must pass before it
// can be admitted: size and expiry, input resolution (confirmed UTXO or a
// still-unconfirmed mempool parent), value-range and fee arithmetic,
// shielded anchor/nullifier checks, relay standardness, and script
// verification. It never mutates the pool; Insert does that once the
// caller is ready to commit the result.
func (p *Pool) buildEntry(tx *wire.MsgTx, raw []byte, now int64) (*Entry, error) {
	txid := tx.TxHash()

	if p.params.MaxTxSize > 0 && len(raw) > p.params.MaxTxSize {
		return nil, ruleErrorf(ErrInvalidTransaction, "tx %s: size %d exceeds max %d", txid, len(raw), p.params.MaxTxSize)
	}
	if p.Have(txid) {
		return nil, ruleErrorf(ErrAlreadyInMempool, "tx %s already in mempool", txid)
	}
	if len(tx.TxIn) == 0 {
		return nil, ruleErrorf(ErrInvalidTransaction, "tx %s: no inputs", txid)
	}

	tip, haveTip := p.chain.BestBlock()
	nextHeight := int64(0)
	if haveTip {
		nextHeight = tip.Height + 1
	}
	if tx.ExpiryHeight != 0 && chaincfg.NetworkUpgradeActive(nextHeight, p.params.Upgrades, chaincfg.Acadia) {
		if int64(tx.ExpiryHeight) < nextHeight {
			return nil, ruleErrorf(ErrInvalidTransaction, "tx %s: expired at height %d (expiry %d)", txid, nextHeight, tx.ExpiryHeight)
		}
	}

	p.mu.RLock()
	var (
		missing        []wire.OutPoint
		parents        []chainhash.Hash
		spentOutpoints []wire.OutPoint
		prevScripts     = make([][]byte, len(tx.TxIn))
		inputValues     = make([]int64, len(tx.TxIn))
		inputConfs      = make([]int64, len(tx.TxIn))
		valueIn         int64
		wasClearAtEntry = true
		seenParent      = make(map[chainhash.Hash]struct{})
	)
	for i, in := range tx.TxIn {
		op := in.PreviousOutPoint
		if utxo, found, err := p.chain.UtxoEntry(op); err == nil && found {
			prevScripts[i] = utxo.PkScript
			inputValues[i] = utxo.Value
			inputConfs[i] = nextHeight - utxo.Height
			valueIn += utxo.Value
			spentOutpoints = append(spentOutpoints, op)
			continue
		} else if err != nil {
			return nil, ruleErrorf(ErrInternal, "tx %s: utxo lookup %s: %v", txid, op, err)
		}
		if parentEntry, ok := p.entries[op.Hash]; ok && int(op.Index) < len(parentEntry.Tx.TxOut) {
			out := parentEntry.Tx.TxOut[op.Index]
			prevScripts[i] = out.PkScript
			inputValues[i] = out.Value
			inputConfs[i] = 0
			valueIn += out.Value
			wasClearAtEntry = false
			spentOutpoints = append(spentOutpoints, op)
			if _, ok := seenParent[op.Hash]; !ok {
				seenParent[op.Hash] = struct{}{}
				parents = append(parents, op.Hash)
			}
			continue
		}
		missing = append(missing, op)
	}
	p.mu.RUnlock()

	if len(missing) > 0 {
		return nil, missingInputsError(missing)
	}

	valueOut, err := sumTxOut(tx.TxOut)
	if err != nil {
		return nil, ruleErrorf(ErrInvalidTransaction, "tx %s: %v", txid, err)
	}

	totalIn := valueIn
	totalOut := valueOut
	if tx.ValueBalance > 0 {
		totalIn += tx.ValueBalance
	} else {
		totalOut += -tx.ValueBalance
	}
	for _, js := range tx.JoinSplits {
		totalIn += js.VpubOld
		totalOut += js.VpubNew
	}
	if totalIn < 0 || totalIn > dcrutil.MaxAmount || totalOut < 0 || totalOut > dcrutil.MaxAmount {
		return nil, ruleErrorf(ErrInvalidTransaction, "tx %s: value out of range", txid)
	}
	if totalOut > totalIn {
		return nil, ruleErrorf(ErrInvalidTransaction, "tx %s: outputs %d exceed inputs %d", txid, totalOut, totalIn)
	}
	fee := totalIn - totalOut

	if err := p.checkShielded(tx); err != nil {
		return nil, err
	}

	var outputSigOps, inputSigOps int
	if p.policy.RequireStandard {
		outputSigOps, err = enforceStandardOutputs(tx, p.policy)
		if err != nil {
			return nil, err
		}
		inputSigOps, err = enforceStandardInputs(tx, prevScripts, p.policy)
		if err != nil {
			return nil, err
		}
		if outputSigOps+inputSigOps > p.policy.MaxStandardSigOps {
			return nil, ruleErrorf(ErrNonStandard, "tx %s: %d sigops exceeds max %d", txid, outputSigOps+inputSigOps, p.policy.MaxStandardSigOps)
		}
	}

	for i, in := range tx.TxIn {
		if err := verifyMempoolInputScript(p.sigCache, prevScripts[i], in.SignatureScript, tx, i); err != nil {
			return nil, ruleErrorf(ErrInvalidScript, "tx %s input %d: %v", txid, i, err)
		}
	}

	modSize := modifiedSize(len(raw), tx)
	if fee < p.policy.minRelayFee(modSize) {
		if !p.freeRelay.allow(modSize, now, p.policy.FreeRelayBytesPerMinute) {
			return nil, ruleErrorf(ErrInsufficientFee, "tx %s: fee %d below relay minimum for %d bytes", txid, fee, modSize)
		}
	}

	priority := computeStartingPriority(tx, inputValues, inputConfs, modSize)

	return &Entry{
		Txid:            txid,
		Tx:              tx,
		Raw:             raw,
		Time:            now,
		Height:          nextHeight - 1,
		Fee:             fee,
		ValueIn:         totalIn,
		ModifiedSize:    modSize,
		Priority:        priority,
		WasClearAtEntry: wasClearAtEntry,
		SpentOutpoints:  spentOutpoints,
		Parents:         parents,
	}, nil
}

// sumTxOut adds up a transaction's transparent output values, rejecting
// any that falls outside the valid money range on its own.
func sumTxOut(outs []*wire.TxOut) (int64, error) {
	var total int64
	for i, out := range outs {
		if out.Value < 0 || out.Value > dcrutil.MaxAmount {
			return 0, ruleErrorf(ErrInvalidTransaction, "output %d value %d out of range", i, out.Value)
		}
		total += out.Value
		if total > dcrutil.MaxAmount {
			return 0, ruleErrorf(ErrInvalidTransaction, "cumulative output value out of range")
		}
	}
	return total, nil
}

// checkShielded verifies every shielded spend's anchor exists and its
// nullifier has been spent neither on-chain nor by another transaction
// already in the pool. Proof verification itself is outside this package,
// the same external-collaborator boundary store.ConnectBlock defers to.
func (p *Pool) checkShielded(tx *wire.MsgTx) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, spend := range tx.ShieldedSpends {
		ok, err := p.chain.SaplingAnchorExists(spend.Anchor)
		if err != nil {
			return ruleErrorf(ErrInternal, "sapling anchor lookup: %v", err)
		}
		if !ok {
			return ruleErrorf(ErrInvalidShielded, "unknown sapling anchor %s", spend.Anchor)
		}
		if _, inPool := p.saplingNullifiers[spend.Nullifier]; inPool {
			return ruleErrorf(ErrInvalidShielded, "sapling nullifier already in mempool")
		}
		spent, err := p.chain.SaplingNullifierSpent(spend.Nullifier)
		if err != nil {
			return ruleErrorf(ErrInternal, "sapling nullifier lookup: %v", err)
		}
		if spent {
			return ruleErrorf(ErrInvalidShielded, "sapling nullifier already spent")
		}
	}
	for _, js := range tx.JoinSplits {
		ok, err := p.chain.SproutAnchorExists(js.Anchor)
		if err != nil {
			return ruleErrorf(ErrInternal, "sprout anchor lookup: %v", err)
		}
		if !ok {
			return ruleErrorf(ErrInvalidShielded, "unknown sprout anchor %s", js.Anchor)
		}
		for _, n := range js.Nullifiers {
			if _, inPool := p.sproutNullifiers[n]; inPool {
				return ruleErrorf(ErrInvalidShielded, "sprout nullifier already in mempool")
			}
			spent, err := p.chain.SproutNullifierSpent(n)
			if err != nil {
				return ruleErrorf(ErrInternal, "sprout nullifier lookup: %v", err)
			}
			if spent {
				return ruleErrorf(ErrInvalidShielded, "sprout nullifier already spent")
			}
		}
	}
	return nil
}

// verifyMempoolInputScript mirrors store.verifyInputScript's legacy-form
// fast path; it's kept as a separate small copy here rather than exported
// from store because store intentionally keeps no mempool-facing API
// surface of its own.
func verifyMempoolInputScript(cache *txscript.SigCache, pkScript, sigScript []byte, tx *wire.MsgTx, inIdx int) error {
	switch stdscript.DetermineScriptType(pkScript) {
	case stdscript.STPubKeyHashEcdsaSecp256k1:
		return txscript.VerifyPubKeyHashSpend(cache, stdscript.ExtractPubKeyHash(pkScript), sigScript, pkScript, tx, inIdx)
	case stdscript.STPubKeyEcdsaSecp256k1:
		return txscript.VerifyPubKeySpend(cache, stdscript.ExtractPubKey(pkScript), sigScript, pkScript, tx, inIdx)
	case stdscript.STMultiSig:
		details := stdscript.ExtractMultiSigScriptDetails(pkScript, true)
		return txscript.VerifyMultiSigSpend(cache, details.PubKeys, int(details.RequiredSigs), sigScript, pkScript, tx, inIdx)
	case stdscript.STScriptHash:
		return nil
	default:
		return nil
	}
}
