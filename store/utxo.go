// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/excc-labs/fluxnoded/wire"
)

// UtxoEntry returns the current unspent output at outpoint, or ok=false if
// it does not exist (either never created or already spent).
func (d *DB) UtxoEntry(op wire.OutPoint) (UtxoEntry, bool, error) {
	raw, err := d.ldb.Get(utxoKey(op), nil)
	if err == leveldb.ErrNotFound {
		return UtxoEntry{}, false, nil
	}
	if err != nil {
		return UtxoEntry{}, false, ruleErrorf(ErrStorage, "read utxo: %v", err)
	}
	e, err := decodeUtxoEntry(raw)
	if err != nil {
		return UtxoEntry{}, false, err
	}
	return e, true, nil
}

func (d *DB) stageUtxoPut(batch *leveldb.Batch, op wire.OutPoint, e UtxoEntry) {
	batch.Put(utxoKey(op), encodeUtxoEntry(e))
}

func (d *DB) stageUtxoDelete(batch *leveldb.Batch, op wire.OutPoint) {
	batch.Delete(utxoKey(op))
}
