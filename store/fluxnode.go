// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// FluxnodeTier identifies a PoN collateral tier; each has its own payment
// cadence and confirmation requirement.
type FluxnodeTier byte

const (
	TierCumulus FluxnodeTier = iota
	TierNimbus
	TierStratus
)

// FluxnodeRecord is the persisted bookkeeping entry for one registered
// operator collateral, keyed by its collateral outpoint.
type FluxnodeRecord struct {
	Collateral     wire.OutPoint
	OperatorPubKey []byte
	PayoutPubKey   []byte
	Tier           FluxnodeTier
	RegisteredAt   int64
	Confirmed      bool
	ConfirmedAt    int64
	LastPaidHeight int64
}

func encodeFluxnodeRecord(r FluxnodeRecord) []byte {
	buf := make([]byte, 0, 64+len(r.OperatorPubKey)+len(r.PayoutPubKey))
	var tmp [8]byte
	put := func(v int64) {
		binary.LittleEndian.PutUint64(tmp[:], uint64(v))
		buf = append(buf, tmp[:]...)
	}
	putBytes := func(b []byte) {
		var l [4]byte
		binary.LittleEndian.PutUint32(l[:], uint32(len(b)))
		buf = append(buf, l[:]...)
		buf = append(buf, b...)
	}
	buf = append(buf, byte(r.Tier))
	if r.Confirmed {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	put(r.RegisteredAt)
	put(r.ConfirmedAt)
	put(r.LastPaidHeight)
	putBytes(r.OperatorPubKey)
	putBytes(r.PayoutPubKey)
	return buf
}

func decodeFluxnodeRecord(collateral wire.OutPoint, b []byte) (FluxnodeRecord, error) {
	if len(b) < 1+1+8*3+4 {
		return FluxnodeRecord{}, fmt.Errorf("fluxnode: truncated record")
	}
	r := FluxnodeRecord{Collateral: collateral}
	off := 0
	r.Tier = FluxnodeTier(b[off])
	off++
	r.Confirmed = b[off] != 0
	off++
	r.RegisteredAt = int64(binary.LittleEndian.Uint64(b[off:]))
	off += 8
	r.ConfirmedAt = int64(binary.LittleEndian.Uint64(b[off:]))
	off += 8
	r.LastPaidHeight = int64(binary.LittleEndian.Uint64(b[off:]))
	off += 8
	readBytes := func() ([]byte, error) {
		if off+4 > len(b) {
			return nil, fmt.Errorf("fluxnode: truncated record")
		}
		l := int(binary.LittleEndian.Uint32(b[off:]))
		off += 4
		if off+l > len(b) {
			return nil, fmt.Errorf("fluxnode: truncated record")
		}
		v := append([]byte(nil), b[off:off+l]...)
		off += l
		return v, nil
	}
	var err error
	r.OperatorPubKey, err = readBytes()
	if err != nil {
		return FluxnodeRecord{}, err
	}
	r.PayoutPubKey, err = readBytes()
	if err != nil {
		return FluxnodeRecord{}, err
	}
	return r, nil
}

// FluxnodeRecord returns the bookkeeping entry for a collateral reference.
func (d *DB) FluxnodeRecord(collateral wire.OutPoint) (FluxnodeRecord, bool, error) {
	raw, err := d.ldb.Get(fluxnodeKey(collateral), nil)
	if err == leveldb.ErrNotFound {
		return FluxnodeRecord{}, false, nil
	}
	if err != nil {
		return FluxnodeRecord{}, false, fmt.Errorf("store: read fluxnode record: %w", err)
	}
	rec, err := decodeFluxnodeRecord(collateral, raw)
	if err != nil {
		return FluxnodeRecord{}, false, err
	}
	return rec, true, nil
}

// FluxnodeRecords returns every currently active (confirmed) operator
// record, for the fluxnode_records() store contract operation.
func (d *DB) FluxnodeRecords() ([]FluxnodeRecord, error) {
	it := d.ldb.NewIterator(prefixRange([]byte{colFluxnode}), nil)
	defer it.Release()

	var out []FluxnodeRecord
	for it.Next() {
		key := it.Key()
		var collateral wire.OutPoint
		copy(collateral.Hash[:], key[1:1+chainhash.HashSize])
		collateral.Index = binary.BigEndian.Uint32(key[1+chainhash.HashSize:])
		rec, err := decodeFluxnodeRecord(collateral, it.Value())
		if err != nil {
			return nil, err
		}
		if rec.Confirmed {
			out = append(out, rec)
		}
	}
	return out, it.Error()
}

func (d *DB) stageFluxnodePut(batch *leveldb.Batch, r FluxnodeRecord) {
	batch.Put(fluxnodeKey(r.Collateral), encodeFluxnodeRecord(r))
}

func (d *DB) stageFluxnodeDelete(batch *leveldb.Batch, collateral wire.OutPoint) {
	batch.Delete(fluxnodeKey(collateral))
}
