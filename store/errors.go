// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the kind of error returned by the chain-state store,
// mirroring the txscript package's errors.As-friendly idiom so callers can
// do a single fast kind check regardless of the wrapped description.
type ErrorKind int

const (
	// Structural/consensus header errors.
	ErrMissingParent ErrorKind = iota
	ErrBadPOW
	ErrBadPoN
	ErrBadTimestamp
	ErrCheckpointMismatch
	ErrMajorityRejected
	ErrBadBits

	// Structural/consensus block errors.
	ErrBadMerkleRoot
	ErrBlockTooLarge
	ErrTooManySigOps
	ErrMissingCoinbase
	ErrMultipleCoinbase
	ErrBadCoinbaseHeight
	ErrDuplicateTx
	ErrImmatureSpend
	ErrMissingUTXO
	ErrValueOutOfRange
	ErrBadScript
	ErrExpiredTx
	ErrAnchorNotFound
	ErrNullifierReuse
	ErrBadShieldedProof
	ErrPayoutMismatch
	ErrFluxnodeRule

	// Store/commit errors.
	ErrTipMoved
	ErrUndoMissing
	ErrSchemaMismatch
	ErrStorage
)

var errorKindStrings = map[ErrorKind]string{
	ErrMissingParent:      "missing parent header",
	ErrBadPOW:             "invalid proof of work",
	ErrBadPoN:             "invalid proof of nodes",
	ErrBadTimestamp:       "timestamp too far in the future",
	ErrCheckpointMismatch: "block hash does not match checkpoint",
	ErrMajorityRejected:   "outdated version rejected by miner majority",
	ErrBadBits:            "bits field does not match retarget",
	ErrBadMerkleRoot:      "merkle root mismatch",
	ErrBlockTooLarge:      "block exceeds maximum size",
	ErrTooManySigOps:      "block exceeds maximum sigop count",
	ErrMissingCoinbase:    "first transaction is not a coinbase",
	ErrMultipleCoinbase:   "block contains more than one coinbase",
	ErrBadCoinbaseHeight:  "coinbase does not commit to block height",
	ErrDuplicateTx:        "duplicate transaction in block",
	ErrImmatureSpend:      "spend of immature coinbase output",
	ErrMissingUTXO:        "referenced output does not exist",
	ErrValueOutOfRange:    "transaction value out of range",
	ErrBadScript:          "script verification failed",
	ErrExpiredTx:          "transaction has expired",
	ErrAnchorNotFound:     "shielded anchor not found",
	ErrNullifierReuse:     "nullifier already spent",
	ErrBadShieldedProof:   "shielded proof verification failed",
	ErrPayoutMismatch:     "coinbase payout does not match expected subsidy and funding streams",
	ErrFluxnodeRule:       "fluxnode rule violation",
	ErrTipMoved:           "tip moved during connect",
	ErrUndoMissing:        "undo record missing for disconnect",
	ErrSchemaMismatch:     "on-disk schema version mismatch",
	ErrStorage:            "storage error",
}

// Error implements the error interface so an ErrorKind by itself satisfies
// errors.Is comparisons against a RuleError's Kind.
func (k ErrorKind) Error() string {
	if s, ok := errorKindStrings[k]; ok {
		return s
	}
	return "unknown store error"
}

// RuleError couples an ErrorKind with a specific description so callers get
// both the coarse classification (for peer-banning policy) and the exact
// cause (for logs).
type RuleError struct {
	Kind        ErrorKind
	Description string
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

func ruleError(kind ErrorKind, desc string) error {
	return RuleError{Kind: kind, Description: desc}
}

func ruleErrorf(kind ErrorKind, format string, args ...interface{}) error {
	return RuleError{Kind: kind, Description: fmt.Sprintf(format, args...)}
}

// IsConsensusFailure reports whether err represents a structural/consensus
// rule violation (§7: the peer that supplied the offending header or block
// should be banned) as opposed to a storage or coordination error.
func IsConsensusFailure(err error) bool {
	var re RuleError
	if !errors.As(err, &re) {
		return false
	}
	switch re.Kind {
	case ErrTipMoved, ErrUndoMissing, ErrSchemaMismatch, ErrStorage:
		return false
	default:
		return true
	}
}
