// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// TxLocationByID returns where a confirmed transaction's bytes live.
func (d *DB) TxLocationByID(txid chainhash.Hash) (TxLocation, bool, error) {
	raw, err := d.ldb.Get(txIndexKey(txid), nil)
	if err == leveldb.ErrNotFound {
		return TxLocation{}, false, nil
	}
	if err != nil {
		return TxLocation{}, false, ruleErrorf(ErrStorage, "read txindex: %v", err)
	}
	loc, err := decodeTxLocation(raw)
	if err != nil {
		return TxLocation{}, false, err
	}
	return loc, true, nil
}

func (d *DB) stageTxIndexPut(batch *leveldb.Batch, txid chainhash.Hash, loc TxLocation) {
	batch.Put(txIndexKey(txid), encodeTxLocation(loc))
}

func (d *DB) stageTxIndexDelete(batch *leveldb.Batch, txid chainhash.Hash) {
	batch.Delete(txIndexKey(txid))
}

// SpentBy returns the SpentIndex entry recording who consumed outpoint.
func (d *DB) SpentBy(op wire.OutPoint) (SpentIndexEntry, bool, error) {
	raw, err := d.ldb.Get(spentIndexKey(op), nil)
	if err == leveldb.ErrNotFound {
		return SpentIndexEntry{}, false, nil
	}
	if err != nil {
		return SpentIndexEntry{}, false, ruleErrorf(ErrStorage, "read spentindex: %v", err)
	}
	e, err := decodeSpentIndexEntry(raw)
	if err != nil {
		return SpentIndexEntry{}, false, err
	}
	return e, true, nil
}

func (d *DB) stageSpentIndexPut(batch *leveldb.Batch, op wire.OutPoint, e SpentIndexEntry) {
	batch.Put(spentIndexKey(op), encodeSpentIndexEntry(e))
}

func (d *DB) stageSpentIndexDelete(batch *leveldb.Batch, op wire.OutPoint) {
	batch.Delete(spentIndexKey(op))
}

func (d *DB) stageAddressOutpointPut(batch *leveldb.Batch, scriptHash [20]byte, op wire.OutPoint) {
	batch.Put(addressOutpointKey(scriptHash, op), nil)
}

func (d *DB) stageAddressOutpointDelete(batch *leveldb.Batch, scriptHash [20]byte, op wire.OutPoint) {
	batch.Delete(addressOutpointKey(scriptHash, op))
}

// AddressOutpoints returns every outpoint currently marked unspent for
// scriptHash.
func (d *DB) AddressOutpoints(scriptHash [20]byte) ([]wire.OutPoint, error) {
	it := d.ldb.NewIterator(prefixRange(addressOutpointPrefix(scriptHash)), nil)
	defer it.Release()

	prefixLen := 1 + 20
	var out []wire.OutPoint
	for it.Next() {
		key := it.Key()
		var op wire.OutPoint
		copy(op.Hash[:], key[prefixLen:prefixLen+chainhash.HashSize])
		op.Index = beUint32(key[prefixLen+chainhash.HashSize:])
		out = append(out, op)
	}
	return out, it.Error()
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func (d *DB) stageAddressDeltaPut(batch *leveldb.Batch, scriptHash [20]byte, height int64, txIndex uint32, txid chainhash.Hash, voutIndex uint32, isSpending bool, value int64) {
	var v [8]byte
	v[0] = byte(value)
	v[1] = byte(value >> 8)
	v[2] = byte(value >> 16)
	v[3] = byte(value >> 24)
	v[4] = byte(value >> 32)
	v[5] = byte(value >> 40)
	v[6] = byte(value >> 48)
	v[7] = byte(value >> 56)
	batch.Put(addressDeltaKey(scriptHash, height, txIndex, txid, voutIndex, isSpending), v[:])
}

// AddressDelta is one entry of an address's signed-value history.
type AddressDelta struct {
	Height     int64
	TxIndex    uint32
	TxID       chainhash.Hash
	VoutIndex  uint32
	IsSpending bool
	Value      int64
}

// AddressDeltas returns the full signed-value history for scriptHash in
// chain order.
func (d *DB) AddressDeltas(scriptHash [20]byte) ([]AddressDelta, error) {
	it := d.ldb.NewIterator(prefixRange(addressDeltaPrefix(scriptHash)), nil)
	defer it.Release()

	var out []AddressDelta
	for it.Next() {
		key := it.Key()
		off := 1 + 20
		var ad AddressDelta
		ad.Height = int64(beUint64(key[off:]))
		off += 8
		ad.TxIndex = beUint32(key[off:])
		off += 4
		copy(ad.TxID[:], key[off:off+chainhash.HashSize])
		off += chainhash.HashSize
		ad.VoutIndex = beUint32(key[off:])
		off += 4
		ad.IsSpending = key[off] != 0

		val := it.Value()
		ad.Value = int64(val[0]) | int64(val[1])<<8 | int64(val[2])<<16 | int64(val[3])<<24 |
			int64(val[4])<<32 | int64(val[5])<<40 | int64(val[6])<<48 | int64(val[7])<<56
		out = append(out, ad)
	}
	return out, it.Error()
}

func beUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
