// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import "github.com/excc-labs/fluxnoded/chaincfg/chainhash"

// BlockWriter is the flatfile collaborator ConnectBlock/DisconnectBlock
// write through to: raw blocks and their undo records live in append-only
// files outside this store's own leveldb column set (§6), so the store
// only needs this narrow interface rather than a dependency on the
// flatfile package's concrete types.
type BlockWriter interface {
	// AppendBlock appends raw block bytes and returns where they landed.
	// ConnectBlock calls it for every block it connects.
	AppendBlock(hash chainhash.Hash, raw []byte) (BlockLocation, error)
	// AppendUndo appends an encoded undo record for hash.
	AppendUndo(hash chainhash.Hash, undo []byte) error
	// ReadUndo returns the previously appended undo record for hash.
	ReadUndo(hash chainhash.Hash) ([]byte, error)
	// ReadBlock returns the raw block bytes at loc.
	ReadBlock(loc BlockLocation) ([]byte, error)
}
