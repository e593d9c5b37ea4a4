// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

// MaxBlockHeaderPayload is a generous upper bound on the size of a header's
// variable-length fields (Equihash solution, block signature) used only to
// guard ReadVarBytes against a hostile length prefix.
const MaxBlockHeaderPayload = 1024 * 64

// NodesCollateral identifies the fluxnode collateral outpoint a PoN header
// was signed under. The null sentinel (all-zero hash, index 0xffffffff)
// means "not a PoN header" per the is_pon derivation in the consensus
// layer; the Go zero value, with index 0, is not that sentinel.
type NodesCollateral struct {
	Hash  chainhash.Hash
	Index uint32
}

// IsNull reports whether the collateral reference is the PoW sentinel.
func (c NodesCollateral) IsNull() bool {
	return c.Index == 0xffffffff && c.Hash == (chainhash.Hash{})
}

// BlockHeader defines information about a block and is used in the bit-exact
// consensus encoding shared by headers-only sync and full blocks.
type BlockHeader struct {
	Version          int32
	PrevBlock        chainhash.Hash
	MerkleRoot       chainhash.Hash
	FinalSaplingRoot chainhash.Hash
	Timestamp        time.Time
	Bits             uint32
	Nonce            [32]byte
	Solution         []byte
	NodesCollateral  NodesCollateral
	BlockSig         []byte
}

// IsPoN derives the PoW-vs-PoN flag from header fields: a non-null
// collateral reference and a non-empty signature indicate a proof-of-nodes
// block rather than a proof-of-work one.
func (h *BlockHeader) IsPoN() bool {
	return !h.NodesCollateral.IsNull() && len(h.BlockSig) > 0
}

// BlockHash computes the block identifier hash for this header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = writeBlockHeader(&buf, h)
	return chainhash.DoubleHashH(buf.Bytes())
}

func readBlockHeader(r io.Reader, pver uint32, h *BlockHeader) error {
	var version uint32
	if err := readElement(r, &version); err != nil {
		return err
	}
	h.Version = int32(version)

	if _, err := io.ReadFull(r, h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, h.MerkleRoot[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, h.FinalSaplingRoot[:]); err != nil {
		return err
	}

	var ts uint32
	if err := readElement(r, &ts); err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(ts), 0)

	if err := readElement(r, &h.Bits); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, h.Nonce[:]); err != nil {
		return err
	}

	solution, err := ReadVarBytes(r, pver, MaxBlockHeaderPayload, "equihash solution")
	if err != nil {
		return err
	}
	h.Solution = solution

	if _, err := io.ReadFull(r, h.NodesCollateral.Hash[:]); err != nil {
		return err
	}
	if err := readElement(r, &h.NodesCollateral.Index); err != nil {
		return err
	}

	blockSig, err := ReadVarBytes(r, pver, MaxBlockHeaderPayload, "block signature")
	if err != nil {
		return err
	}
	h.BlockSig = blockSig

	return nil
}

func writeBlockHeader(w io.Writer, h *BlockHeader) error {
	if err := writeElement(w, uint32(h.Version)); err != nil {
		return err
	}
	if _, err := w.Write(h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.FinalSaplingRoot[:]); err != nil {
		return err
	}
	if err := writeElement(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := writeElement(w, h.Bits); err != nil {
		return err
	}
	if _, err := w.Write(h.Nonce[:]); err != nil {
		return err
	}
	if err := WriteVarBytes(w, ProtocolVersion, h.Solution); err != nil {
		return err
	}
	if _, err := w.Write(h.NodesCollateral.Hash[:]); err != nil {
		return err
	}
	if err := writeElement(w, h.NodesCollateral.Index); err != nil {
		return err
	}
	return WriteVarBytes(w, ProtocolVersion, h.BlockSig)
}

// BtcDecode decodes r using the header consensus encoding.
func (h *BlockHeader) BtcDecode(r io.Reader, pver uint32) error {
	return readBlockHeader(r, pver, h)
}

// BtcEncode encodes the receiver using the header consensus encoding.
func (h *BlockHeader) BtcEncode(w io.Writer, pver uint32) error {
	return writeBlockHeader(w, h)
}

// MsgBlock implements the Message interface and represents a Zcash-family
// block message. It is used to deliver block and transaction information in
// response to a getdata message (MsgGetData) for a given block hash.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// BtcDecode decodes r using the Zcash block protocol encoding into the
// receiver. This is part of the Message interface implementation.
func (msg *MsgBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := readBlockHeader(r, pver, &msg.Header); err != nil {
		return err
	}

	txCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}

	msg.Transactions = make([]*MsgTx, 0, txCount)
	for i := uint64(0); i < txCount; i++ {
		tx := &MsgTx{}
		if err := tx.BtcDecode(r, pver); err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, tx)
	}

	return nil
}

// BtcEncode encodes the receiver to w using the Zcash block protocol
// encoding. This is part of the Message interface implementation.
func (msg *MsgBlock) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeBlockHeader(w, &msg.Header); err != nil {
		return err
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.BtcEncode(w, pver); err != nil {
			return err
		}
	}

	return nil
}

// BlockHash computes the block identifier hash for this block.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// TxHashes returns the hashes of the transactions in this block, in block
// order, as required for merkle root computation and shielded commitment
// ordering.
func (msg *MsgBlock) TxHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, len(msg.Transactions))
	for i, tx := range msg.Transactions {
		hashes[i] = tx.TxHash()
	}
	return hashes
}
