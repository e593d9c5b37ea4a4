// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"
	"fmt"

	"github.com/excc-labs/fluxnoded/wire"
)

// ErrorKind identifies the kind of error a mempool operation failed with,
// following the same errors.As-friendly idiom as the store and txscript
// packages.
type ErrorKind int

const (
	// ErrAlreadyInMempool indicates the transaction is already held.
	ErrAlreadyInMempool ErrorKind = iota

	// ErrConflictingInput indicates an input is already spent by another
	// mempool transaction and this one does not replace it.
	ErrConflictingInput

	// ErrInsufficientFee indicates the transaction's fee rate falls below
	// the relay policy minimum, or below what is required to both pay for
	// itself and evict its way into a full mempool.
	ErrInsufficientFee

	// ErrMissingInput indicates an input spends an outpoint this node has
	// neither in its UTXO set nor in the mempool; the caller should queue
	// the transaction as an orphan.
	ErrMissingInput

	// ErrMempoolFull indicates the pool is at its byte ceiling and the
	// transaction's fee rate does not clear the eviction threshold.
	ErrMempoolFull

	// ErrNonStandard indicates the transaction fails one of the relay
	// standardness rules (oversized, dust output, nonstandard script, too
	// many sigops) under the node's current policy.
	ErrNonStandard

	// ErrInvalidTransaction indicates the transaction fails a consensus
	// rule: bad expiry, bad value range, duplicate input, etc.
	ErrInvalidTransaction

	// ErrInvalidScript indicates an input's scriptSig does not satisfy the
	// referenced output's scriptPubKey.
	ErrInvalidScript

	// ErrInvalidShielded indicates a shielded spend or output fails anchor,
	// nullifier, or proof verification.
	ErrInvalidShielded

	// ErrInternal indicates a failure unrelated to the transaction itself,
	// such as a store lookup error.
	ErrInternal
)

var errorKindStrings = map[ErrorKind]string{
	ErrAlreadyInMempool:  "transaction already in mempool",
	ErrConflictingInput:  "input already spent by a conflicting mempool transaction",
	ErrInsufficientFee:   "fee rate too low",
	ErrMissingInput:      "referenced outpoint not found",
	ErrMempoolFull:       "mempool full",
	ErrNonStandard:       "non-standard transaction",
	ErrInvalidTransaction: "invalid transaction",
	ErrInvalidScript:     "invalid script",
	ErrInvalidShielded:   "invalid shielded data",
	ErrInternal:          "internal error",
}

func (k ErrorKind) Error() string {
	if s, ok := errorKindStrings[k]; ok {
		return s
	}
	return "unknown mempool error"
}

// RuleError wraps a mempool ErrorKind with a human-readable description and,
// for ErrMissingInput, the outpoints that could not be found so the caller
// can register the transaction as an orphan waiting on them.
type RuleError struct {
	Kind          ErrorKind
	Description   string
	MissingInputs []wire.OutPoint
}

func (e RuleError) Error() string { return e.Description }
func (e RuleError) Unwrap() error { return e.Kind }
func (e RuleError) Is(target error) bool {
	var kind ErrorKind
	if errors.As(target, &kind) {
		return e.Kind == kind
	}
	return false
}

func ruleErrorf(kind ErrorKind, format string, args ...interface{}) error {
	return RuleError{Kind: kind, Description: fmt.Sprintf(format, args...)}
}

func missingInputsError(missing []wire.OutPoint) error {
	return RuleError{
		Kind:          ErrMissingInput,
		Description:   fmt.Sprintf("%d referenced outpoint(s) not found", len(missing)),
		MissingInputs: missing,
	}
}
