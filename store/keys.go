// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// Column prefixes. goleveldb has no native column families, so every key is
// prefixed with a one-byte column tag; within a column, keys are chosen so
// that a prefix iterator returns entries in a useful order (e.g. height for
// HeightIndex, script_hash||height||tx_index for AddressDelta).
const (
	colMeta             byte = 0x01
	colHeaderIndex      byte = 0x02
	colHeightIndex      byte = 0x03
	colUtxoSet          byte = 0x04
	colTxIndex          byte = 0x05
	colSpentIndex       byte = 0x06
	colAddressOutpoint  byte = 0x07
	colAddressDelta     byte = 0x08
	colSproutAnchor     byte = 0x09
	colSproutNullifier  byte = 0x0a
	colSaplingAnchor    byte = 0x0b
	colSaplingNullifier byte = 0x0c
	colFluxnode         byte = 0x0d
	colCFilter          byte = 0x0e
)

// Meta keys (schema versions, best-pointers), all within colMeta.
var (
	metaKeyDBSchemaVersion      = []byte("db_schema_version")
	metaKeyTxIndexVersion       = []byte("txindex_version")
	metaKeySpentIndexVersion    = []byte("spentindex_version")
	metaKeyAddressIndexVersion  = []byte("addressindex_version")
	metaKeyBestHeader           = []byte("best_header")
	metaKeyBestBlock            = []byte("best_block")
)

// Current schema versions. A version of 1 on a non-empty column with no
// recorded version is accepted as pre-versioned legacy, per §6.
const (
	CurrentDBSchemaVersion     uint32 = 1
	CurrentTxIndexVersion      uint32 = 1
	CurrentSpentIndexVersion   uint32 = 1
	CurrentAddressIndexVersion uint32 = 1
)

func metaKey(key []byte) []byte {
	return append([]byte{colMeta}, key...)
}

func headerIndexKey(hash chainhash.Hash) []byte {
	k := make([]byte, 1+chainhash.HashSize)
	k[0] = colHeaderIndex
	copy(k[1:], hash[:])
	return k
}

func heightIndexKey(height int64) []byte {
	k := make([]byte, 1+8)
	k[0] = colHeightIndex
	binary.BigEndian.PutUint64(k[1:], uint64(height))
	return k
}

func utxoKey(op wire.OutPoint) []byte {
	k := make([]byte, 1+chainhash.HashSize+4)
	k[0] = colUtxoSet
	copy(k[1:], op.Hash[:])
	binary.BigEndian.PutUint32(k[1+chainhash.HashSize:], op.Index)
	return k
}

func txIndexKey(txid chainhash.Hash) []byte {
	k := make([]byte, 1+chainhash.HashSize)
	k[0] = colTxIndex
	copy(k[1:], txid[:])
	return k
}

func spentIndexKey(op wire.OutPoint) []byte {
	k := make([]byte, 1+chainhash.HashSize+4)
	k[0] = colSpentIndex
	copy(k[1:], op.Hash[:])
	binary.BigEndian.PutUint32(k[1+chainhash.HashSize:], op.Index)
	return k
}

// addressOutpointKey is script_hash || outpoint, so an iterator scoped to a
// script_hash prefix enumerates its currently-unspent outpoints.
func addressOutpointKey(scriptHash [20]byte, op wire.OutPoint) []byte {
	k := make([]byte, 1+20+chainhash.HashSize+4)
	k[0] = colAddressOutpoint
	copy(k[1:], scriptHash[:])
	copy(k[21:], op.Hash[:])
	binary.BigEndian.PutUint32(k[21+chainhash.HashSize:], op.Index)
	return k
}

func addressOutpointPrefix(scriptHash [20]byte) []byte {
	k := make([]byte, 1+20)
	k[0] = colAddressOutpoint
	copy(k[1:], scriptHash[:])
	return k
}

// addressDeltaKey is script_hash || height || tx_index || txid || vout_index
// || is_spending, matching the schema in §3 so a prefix scan over
// script_hash yields the full signed-value history in chain order.
func addressDeltaKey(scriptHash [20]byte, height int64, txIndex uint32, txid chainhash.Hash, voutIndex uint32, isSpending bool) []byte {
	k := make([]byte, 1+20+8+4+chainhash.HashSize+4+1)
	off := 0
	k[off] = colAddressDelta
	off++
	copy(k[off:], scriptHash[:])
	off += 20
	binary.BigEndian.PutUint64(k[off:], uint64(height))
	off += 8
	binary.BigEndian.PutUint32(k[off:], txIndex)
	off += 4
	copy(k[off:], txid[:])
	off += chainhash.HashSize
	binary.BigEndian.PutUint32(k[off:], voutIndex)
	off += 4
	if isSpending {
		k[off] = 1
	}
	return k
}

func addressDeltaPrefix(scriptHash [20]byte) []byte {
	k := make([]byte, 1+20)
	k[0] = colAddressDelta
	copy(k[1:], scriptHash[:])
	return k
}

func sproutAnchorKey(root chainhash.Hash) []byte {
	k := make([]byte, 1+chainhash.HashSize)
	k[0] = colSproutAnchor
	copy(k[1:], root[:])
	return k
}

func sproutNullifierKey(n [32]byte) []byte {
	k := make([]byte, 1+32)
	k[0] = colSproutNullifier
	copy(k[1:], n[:])
	return k
}

func saplingAnchorKey(root chainhash.Hash) []byte {
	k := make([]byte, 1+chainhash.HashSize)
	k[0] = colSaplingAnchor
	copy(k[1:], root[:])
	return k
}

func saplingNullifierKey(n [32]byte) []byte {
	k := make([]byte, 1+32)
	k[0] = colSaplingNullifier
	copy(k[1:], n[:])
	return k
}

func fluxnodeKey(collateral wire.OutPoint) []byte {
	k := make([]byte, 1+chainhash.HashSize+4)
	k[0] = colFluxnode
	copy(k[1:], collateral.Hash[:])
	binary.BigEndian.PutUint32(k[1+chainhash.HashSize:], collateral.Index)
	return k
}

func cfilterKey(hash chainhash.Hash) []byte {
	k := make([]byte, 1+chainhash.HashSize)
	k[0] = colCFilter
	copy(k[1:], hash[:])
	return k
}
