// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"
	"fmt"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// SpentUTXO captures one input's previously-unspent output so disconnect
// can restore it exactly.
type SpentUTXO struct {
	OutPoint      wire.OutPoint
	RestoredEntry UtxoEntry
}

// UndoRecord carries everything DisconnectBlock needs to exactly reverse
// one block's connect effects (§4.2, last bullet): the UTXOs it consumed
// (to restore), the outpoints it created (to remove), the shielded state
// delta, and the fluxnode records it touched.
type UndoRecord struct {
	BlockHash chainhash.Hash
	Height    int64

	Spent   []SpentUTXO
	Created []wire.OutPoint

	Shielded shieldedUndo

	FluxnodeBefore []FluxnodeRecord // state prior to this block's bookkeeping
	FluxnodeDelete []wire.OutPoint  // fluxnode records newly created by this block
}

func encodeUndoRecord(u UndoRecord) []byte {
	buf := make([]byte, 0, 256)
	put32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	put64 := func(v int64) {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		buf = append(buf, b[:]...)
	}
	putBytes := func(b []byte) {
		put32(uint32(len(b)))
		buf = append(buf, b...)
	}
	putOutpoint := func(op wire.OutPoint) {
		buf = append(buf, op.Hash[:]...)
		put32(op.Index)
	}

	buf = append(buf, u.BlockHash[:]...)
	put64(u.Height)

	put32(uint32(len(u.Spent)))
	for _, s := range u.Spent {
		putOutpoint(s.OutPoint)
		putBytes(encodeUtxoEntry(s.RestoredEntry))
	}
	put32(uint32(len(u.Created)))
	for _, op := range u.Created {
		putOutpoint(op)
	}

	putBytes(u.Shielded.PrevSproutFrontier)
	putBytes(u.Shielded.PrevSaplingFrontier)
	put32(uint32(len(u.Shielded.AddedSproutNull)))
	for _, n := range u.Shielded.AddedSproutNull {
		buf = append(buf, n[:]...)
	}
	put32(uint32(len(u.Shielded.AddedSaplingNull)))
	for _, n := range u.Shielded.AddedSaplingNull {
		buf = append(buf, n[:]...)
	}
	put32(uint32(len(u.Shielded.AddedSproutAnchors)))
	for _, r := range u.Shielded.AddedSproutAnchors {
		buf = append(buf, r[:]...)
	}
	put32(uint32(len(u.Shielded.AddedSaplingAnchors)))
	for _, r := range u.Shielded.AddedSaplingAnchors {
		buf = append(buf, r[:]...)
	}

	put32(uint32(len(u.FluxnodeBefore)))
	for _, r := range u.FluxnodeBefore {
		putOutpoint(r.Collateral)
		putBytes(encodeFluxnodeRecord(r))
	}
	put32(uint32(len(u.FluxnodeDelete)))
	for _, op := range u.FluxnodeDelete {
		putOutpoint(op)
	}

	return buf
}

type byteReader struct {
	b   []byte
	off int
}

func (r *byteReader) u32() (uint32, error) {
	if r.off+4 > len(r.b) {
		return 0, fmt.Errorf("undo: truncated")
	}
	v := binary.LittleEndian.Uint32(r.b[r.off:])
	r.off += 4
	return v, nil
}

func (r *byteReader) u64() (int64, error) {
	if r.off+8 > len(r.b) {
		return 0, fmt.Errorf("undo: truncated")
	}
	v := binary.LittleEndian.Uint64(r.b[r.off:])
	r.off += 8
	return int64(v), nil
}

func (r *byteReader) bytes() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if r.off+int(n) > len(r.b) {
		return nil, fmt.Errorf("undo: truncated")
	}
	v := append([]byte(nil), r.b[r.off:r.off+int(n)]...)
	r.off += int(n)
	return v, nil
}

func (r *byteReader) hash32() ([32]byte, error) {
	var h [32]byte
	if r.off+32 > len(r.b) {
		return h, fmt.Errorf("undo: truncated")
	}
	copy(h[:], r.b[r.off:])
	r.off += 32
	return h, nil
}

func (r *byteReader) outpoint() (wire.OutPoint, error) {
	h, err := r.hash32()
	if err != nil {
		return wire.OutPoint{}, err
	}
	idx, err := r.u32()
	if err != nil {
		return wire.OutPoint{}, err
	}
	return wire.OutPoint{Hash: chainhash.Hash(h), Index: idx}, nil
}

func decodeUndoRecord(b []byte) (UndoRecord, error) {
	r := &byteReader{b: b}
	var u UndoRecord
	bh, err := r.hash32()
	if err != nil {
		return UndoRecord{}, err
	}
	u.BlockHash = chainhash.Hash(bh)
	if u.Height, err = r.u64(); err != nil {
		return UndoRecord{}, err
	}

	n, err := r.u32()
	if err != nil {
		return UndoRecord{}, err
	}
	for i := uint32(0); i < n; i++ {
		op, err := r.outpoint()
		if err != nil {
			return UndoRecord{}, err
		}
		raw, err := r.bytes()
		if err != nil {
			return UndoRecord{}, err
		}
		entry, err := decodeUtxoEntry(raw)
		if err != nil {
			return UndoRecord{}, err
		}
		u.Spent = append(u.Spent, SpentUTXO{OutPoint: op, RestoredEntry: entry})
	}

	n, err = r.u32()
	if err != nil {
		return UndoRecord{}, err
	}
	for i := uint32(0); i < n; i++ {
		op, err := r.outpoint()
		if err != nil {
			return UndoRecord{}, err
		}
		u.Created = append(u.Created, op)
	}

	if u.Shielded.PrevSproutFrontier, err = r.bytes(); err != nil {
		return UndoRecord{}, err
	}
	if u.Shielded.PrevSaplingFrontier, err = r.bytes(); err != nil {
		return UndoRecord{}, err
	}
	readHashList := func() ([][32]byte, error) {
		cnt, err := r.u32()
		if err != nil {
			return nil, err
		}
		out := make([][32]byte, 0, cnt)
		for i := uint32(0); i < cnt; i++ {
			h, err := r.hash32()
			if err != nil {
				return nil, err
			}
			out = append(out, h)
		}
		return out, nil
	}
	readChainHashList := func() ([]chainhash.Hash, error) {
		cnt, err := r.u32()
		if err != nil {
			return nil, err
		}
		out := make([]chainhash.Hash, 0, cnt)
		for i := uint32(0); i < cnt; i++ {
			h, err := r.hash32()
			if err != nil {
				return nil, err
			}
			out = append(out, chainhash.Hash(h))
		}
		return out, nil
	}
	if u.Shielded.AddedSproutNull, err = readHashList(); err != nil {
		return UndoRecord{}, err
	}
	if u.Shielded.AddedSaplingNull, err = readHashList(); err != nil {
		return UndoRecord{}, err
	}
	if u.Shielded.AddedSproutAnchors, err = readChainHashList(); err != nil {
		return UndoRecord{}, err
	}
	if u.Shielded.AddedSaplingAnchors, err = readChainHashList(); err != nil {
		return UndoRecord{}, err
	}

	n, err = r.u32()
	if err != nil {
		return UndoRecord{}, err
	}
	for i := uint32(0); i < n; i++ {
		op, err := r.outpoint()
		if err != nil {
			return UndoRecord{}, err
		}
		raw, err := r.bytes()
		if err != nil {
			return UndoRecord{}, err
		}
		rec, err := decodeFluxnodeRecord(op, raw)
		if err != nil {
			return UndoRecord{}, err
		}
		u.FluxnodeBefore = append(u.FluxnodeBefore, rec)
	}
	n, err = r.u32()
	if err != nil {
		return UndoRecord{}, err
	}
	for i := uint32(0); i < n; i++ {
		op, err := r.outpoint()
		if err != nil {
			return UndoRecord{}, err
		}
		u.FluxnodeDelete = append(u.FluxnodeDelete, op)
	}

	return u, nil
}
