// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// HeaderEntry is the persisted record for every accepted header, keyed by
// hash in HeaderIndex. HeightIndex maps a height to a hash only for blocks
// connected on the main chain.
type HeaderEntry struct {
	Hash       chainhash.Hash
	PrevHash   chainhash.Hash
	Height     int64
	Bits       uint32
	Time       int64
	ChainWork  *big.Int
	IsPoN      bool
	// Skip is the ancestor hash at the skip-list height computed by
	// skipListHeight, enabling O(log n) ancestor queries.
	Skip chainhash.Hash
}

func skipListHeight(height int64) int64 {
	// Bitcoin-style skip list: even heights clear their lowest set bit,
	// odd heights clear the two lowest set bits of height-1, producing
	// O(log n) chains.
	if height < 2 {
		return 0
	}
	if height&1 != 0 {
		return invertLowestOne(invertLowestOne(height-1)) + 1
	}
	return invertLowestOne(height)
}

func invertLowestOne(n int64) int64 {
	return n & (n - 1)
}

func encodeHeaderEntry(e HeaderEntry) []byte {
	work := e.ChainWork.Bytes()
	buf := make([]byte, 0, chainhash.HashSize*3+8+4+8+1+len(work)+2)
	buf = append(buf, e.Hash[:]...)
	buf = append(buf, e.PrevHash[:]...)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(e.Height))
	buf = append(buf, tmp[:]...)
	var b4 [4]byte
	binary.LittleEndian.PutUint32(b4[:], e.Bits)
	buf = append(buf, b4[:]...)
	binary.LittleEndian.PutUint64(tmp[:], uint64(e.Time))
	buf = append(buf, tmp[:]...)
	if e.IsPoN {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, e.Skip[:]...)
	var lenb [2]byte
	binary.LittleEndian.PutUint16(lenb[:], uint16(len(work)))
	buf = append(buf, lenb[:]...)
	buf = append(buf, work...)
	return buf
}

func decodeHeaderEntry(b []byte) (HeaderEntry, error) {
	const fixed = chainhash.HashSize*2 + 8 + 4 + 8 + 1 + chainhash.HashSize + 2
	if len(b) < fixed {
		return HeaderEntry{}, fmt.Errorf("header index: truncated entry")
	}
	var e HeaderEntry
	off := 0
	copy(e.Hash[:], b[off:])
	off += chainhash.HashSize
	copy(e.PrevHash[:], b[off:])
	off += chainhash.HashSize
	e.Height = int64(binary.LittleEndian.Uint64(b[off:]))
	off += 8
	e.Bits = binary.LittleEndian.Uint32(b[off:])
	off += 4
	e.Time = int64(binary.LittleEndian.Uint64(b[off:]))
	off += 8
	e.IsPoN = b[off] != 0
	off++
	copy(e.Skip[:], b[off:])
	off += chainhash.HashSize
	workLen := int(binary.LittleEndian.Uint16(b[off:]))
	off += 2
	if off+workLen != len(b) {
		return HeaderEntry{}, fmt.Errorf("header index: bad chainwork length")
	}
	e.ChainWork = new(big.Int).SetBytes(b[off:])
	return e, nil
}

// UtxoEntry is the persisted record for one unspent transparent output.
type UtxoEntry struct {
	Value      int64
	PkScript   []byte
	Height     int64
	IsCoinbase bool
}

func encodeUtxoEntry(e UtxoEntry) []byte {
	buf := make([]byte, 0, 8+8+1+4+len(e.PkScript))
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(e.Value))
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], uint64(e.Height))
	buf = append(buf, tmp[:]...)
	if e.IsCoinbase {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], uint32(len(e.PkScript)))
	buf = append(buf, l[:]...)
	buf = append(buf, e.PkScript...)
	return buf
}

func decodeUtxoEntry(b []byte) (UtxoEntry, error) {
	if len(b) < 8+8+1+4 {
		return UtxoEntry{}, fmt.Errorf("utxo: truncated entry")
	}
	var e UtxoEntry
	e.Value = int64(binary.LittleEndian.Uint64(b[0:8]))
	e.Height = int64(binary.LittleEndian.Uint64(b[8:16]))
	e.IsCoinbase = b[16] != 0
	scriptLen := int(binary.LittleEndian.Uint32(b[17:21]))
	if 21+scriptLen != len(b) {
		return UtxoEntry{}, fmt.Errorf("utxo: bad script length")
	}
	e.PkScript = append([]byte(nil), b[21:]...)
	return e, nil
}

// SpentIndexEntry records who spent an outpoint and what it was worth, for
// the SpentIndex secondary index.
type SpentIndexEntry struct {
	SpendingTxID chainhash.Hash
	InputIndex   uint32
	BlockHeight  int64
	Value        int64
	AddressType  byte // 0 = none, 1 = p2pkh, 2 = p2sh
	AddressHash  [20]byte
}

func encodeSpentIndexEntry(e SpentIndexEntry) []byte {
	buf := make([]byte, chainhash.HashSize+4+8+8+1+20)
	off := 0
	copy(buf[off:], e.SpendingTxID[:])
	off += chainhash.HashSize
	binary.LittleEndian.PutUint32(buf[off:], e.InputIndex)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], uint64(e.BlockHeight))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(e.Value))
	off += 8
	buf[off] = e.AddressType
	off++
	copy(buf[off:], e.AddressHash[:])
	return buf
}

func decodeSpentIndexEntry(b []byte) (SpentIndexEntry, error) {
	const want = chainhash.HashSize + 4 + 8 + 8 + 1 + 20
	if len(b) != want {
		return SpentIndexEntry{}, fmt.Errorf("spentindex: bad entry length")
	}
	var e SpentIndexEntry
	off := 0
	copy(e.SpendingTxID[:], b[off:])
	off += chainhash.HashSize
	e.InputIndex = binary.LittleEndian.Uint32(b[off:])
	off += 4
	e.BlockHeight = int64(binary.LittleEndian.Uint64(b[off:]))
	off += 8
	e.Value = int64(binary.LittleEndian.Uint64(b[off:]))
	off += 8
	e.AddressType = b[off]
	off++
	copy(e.AddressHash[:], b[off:])
	return e, nil
}

// TxLocation identifies where a transaction's bytes live, for TxIndex.
type TxLocation struct {
	BlockHash    chainhash.Hash
	IndexInBlock uint32
}

func encodeTxLocation(l TxLocation) []byte {
	buf := make([]byte, chainhash.HashSize+4)
	copy(buf, l.BlockHash[:])
	binary.LittleEndian.PutUint32(buf[chainhash.HashSize:], l.IndexInBlock)
	return buf
}

func decodeTxLocation(b []byte) (TxLocation, error) {
	if len(b) != chainhash.HashSize+4 {
		return TxLocation{}, fmt.Errorf("txindex: bad entry length")
	}
	var l TxLocation
	copy(l.BlockHash[:], b[:chainhash.HashSize])
	l.IndexInBlock = binary.LittleEndian.Uint32(b[chainhash.HashSize:])
	return l, nil
}

// BlockLocation identifies a block's flatfile position, as produced by the
// flatfile package and threaded through connect_block.
type BlockLocation struct {
	FileID uint32
	Offset uint32
	Len    uint32
}

func encodeBlockLocation(l BlockLocation) []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], l.FileID)
	binary.LittleEndian.PutUint32(buf[4:8], l.Offset)
	binary.LittleEndian.PutUint32(buf[8:12], l.Len)
	return buf
}

func decodeBlockLocation(b []byte) (BlockLocation, error) {
	if len(b) != 12 {
		return BlockLocation{}, fmt.Errorf("block location: bad entry length")
	}
	return BlockLocation{
		FileID: binary.LittleEndian.Uint32(b[0:4]),
		Offset: binary.LittleEndian.Uint32(b[4:8]),
		Len:    binary.LittleEndian.Uint32(b[8:12]),
	}, nil
}

// outpoint is a convenience alias used internally so files in this package
// can refer to wire.OutPoint without repeating the import everywhere.
type outpoint = wire.OutPoint
