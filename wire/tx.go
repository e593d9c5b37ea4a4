// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

// overwinteredFlag is the high bit of the version field that, when set,
// indicates the version_group_id field follows (post-Overwinter framing).
const overwinteredFlag = 1 << 31

// MaxTxInSequenceNum is the maximum (final) input sequence number, following
// the Bitcoin/Zcash convention; kept for parity with teacher code that
// inspects Sequence.
const MaxTxInSequenceNum uint32 = 0xffffffff

// OutPoint defines a Zcash data type that is used to track previous
// transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new Zcash transaction outpoint point with the
// provided hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}

// TxIn defines a Zcash transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	return 32 + 4 + VarIntSerializeSize(uint64(len(t.SignatureScript))) +
		len(t.SignatureScript) + 4
}

// TxOut defines a Zcash transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// NewTxOut returns a new Zcash transaction output with the provided
// transaction value and public key script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// SpendDescription is a Sapling shielded spend: it proves knowledge of a note
// committed to by some historical Sapling anchor, without revealing which
// one, and reveals the note's nullifier so it cannot be spent twice.
type SpendDescription struct {
	CV           [32]byte
	Anchor       chainhash.Hash
	Nullifier    [32]byte
	RK           [32]byte
	ZKProof      [192]byte
	SpendAuthSig [64]byte
}

// OutputDescription is a Sapling shielded output: a new note committed to the
// Sapling tree, encrypted to its recipient.
type OutputDescription struct {
	CV            [32]byte
	CMU           [32]byte
	EphemeralKey  [32]byte
	EncCiphertext [580]byte
	OutCiphertext [80]byte
	ZKProof       [192]byte
}

// JoinSplit is a Sprout joinsplit: it consumes up to two input notes
// (possibly transparent value via vpub_old) and produces up to two output
// notes (possibly transparent value via vpub_new), proven with PHGR13.
type JoinSplit struct {
	VpubOld        int64
	VpubNew        int64
	Anchor         chainhash.Hash
	Nullifiers     [2][32]byte
	Commitments    [2][32]byte
	EphemeralKey   [32]byte
	RandomSeed     [32]byte
	Macs           [2][32]byte
	ZKProof        [296]byte
	Ciphertexts    [2][601]byte
}

// FluxnodePayload carries proof-of-nodes specific transaction metadata: a
// collateral registration/confirmation/payout marker attached to an
// otherwise ordinary transparent transaction.
type FluxnodePayload struct {
	Type        uint8
	Collateral  OutPoint
	PubKey      []byte
	Signature   []byte
	IP          string
}

// MsgTx implements the Message interface and represents a Zcash tx message.
// It is used to deliver transaction information in response to a getdata
// message (MsgGetData) for a given transaction, and is also used to relay
// announced transactions via inv.
type MsgTx struct {
	Overwintered    bool
	Version         uint32
	VersionGroupID  uint32
	TxIn            []*TxIn
	TxOut           []*TxOut
	LockTime        uint32
	ExpiryHeight    uint32
	ValueBalance    int64
	ShieldedSpends  []*SpendDescription
	ShieldedOutputs []*OutputDescription
	JoinSplits      []*JoinSplit
	JoinSplitPubKey [32]byte
	JoinSplitSig    [64]byte
	BindingSig      [64]byte
	Fluxnode        *FluxnodePayload
}

// NewMsgTx returns a new Zcash tx message that conforms to the Message
// interface. The returned instance has the given version and empty input
// and output lists, and is used as a base for further encoding/decoding.
func NewMsgTx(version uint32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, 1),
		TxOut:   make([]*TxOut, 0, 1),
	}
}

// Copy returns a copy of the transaction whose inputs and outputs (including
// their scripts) are deep-copied, suitable for mutating those in place while
// computing a legacy signature hash without disturbing the original. The
// shielded spends, outputs, joinsplits and Fluxnode payload are shared with
// the original, not copied.
func (msg *MsgTx) Copy() *MsgTx {
	txCopy := *msg

	txCopy.TxIn = make([]*TxIn, len(msg.TxIn))
	for i, ti := range msg.TxIn {
		tiCopy := *ti
		tiCopy.SignatureScript = append([]byte(nil), ti.SignatureScript...)
		txCopy.TxIn[i] = &tiCopy
	}

	txCopy.TxOut = make([]*TxOut, len(msg.TxOut))
	for i, to := range msg.TxOut {
		toCopy := *to
		toCopy.PkScript = append([]byte(nil), to.PkScript...)
		txCopy.TxOut[i] = &toCopy
	}

	return &txCopy
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// hasShielded reports whether the Sapling fields (value_balance, shielded
// spends and outputs, binding signature) are present on the wire for this
// transaction: true for any overwintered transaction with a non-zero
// version group ID, whether or not it carries shielded components.
func (msg *MsgTx) hasShielded() bool {
	return msg.Overwintered && msg.VersionGroupID != 0
}

// BtcDecode decodes r using the Zcash transaction protocol encoding into the
// receiver. This is part of the Message interface implementation.
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32) error {
	var rawVersion uint32
	if err := readElement(r, &rawVersion); err != nil {
		return err
	}
	msg.Overwintered = rawVersion&overwinteredFlag != 0
	msg.Version = rawVersion &^ overwinteredFlag

	if msg.Overwintered {
		if err := readElement(r, &msg.VersionGroupID); err != nil {
			return err
		}
	}

	txInCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	msg.TxIn = make([]*TxIn, txInCount)
	for i := uint64(0); i < txInCount; i++ {
		ti := &TxIn{}
		if err := readTxIn(r, pver, ti); err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	txOutCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	msg.TxOut = make([]*TxOut, txOutCount)
	for i := uint64(0); i < txOutCount; i++ {
		to := &TxOut{}
		if err := readTxOut(r, pver, to); err != nil {
			return err
		}
		msg.TxOut[i] = to
	}

	if err := readElement(r, &msg.LockTime); err != nil {
		return err
	}

	if msg.Overwintered {
		if err := readElement(r, &msg.ExpiryHeight); err != nil {
			return err
		}
	}

	if msg.hasShielded() {
		if err := readElement(r, &msg.ValueBalance); err != nil {
			return err
		}

		spendCount, err := ReadVarInt(r, pver)
		if err != nil {
			return err
		}
		msg.ShieldedSpends = make([]*SpendDescription, spendCount)
		for i := uint64(0); i < spendCount; i++ {
			sd := &SpendDescription{}
			if err := readSpendDescription(r, sd); err != nil {
				return err
			}
			msg.ShieldedSpends[i] = sd
		}

		outputCount, err := ReadVarInt(r, pver)
		if err != nil {
			return err
		}
		msg.ShieldedOutputs = make([]*OutputDescription, outputCount)
		for i := uint64(0); i < outputCount; i++ {
			od := &OutputDescription{}
			if err := readOutputDescription(r, od); err != nil {
				return err
			}
			msg.ShieldedOutputs[i] = od
		}
	}

	joinSplitCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if joinSplitCount > 0 {
		msg.JoinSplits = make([]*JoinSplit, joinSplitCount)
		for i := uint64(0); i < joinSplitCount; i++ {
			js := &JoinSplit{}
			if err := readJoinSplit(r, js); err != nil {
				return err
			}
			msg.JoinSplits[i] = js
		}
		if _, err := io.ReadFull(r, msg.JoinSplitPubKey[:]); err != nil {
			return err
		}
		if _, err := io.ReadFull(r, msg.JoinSplitSig[:]); err != nil {
			return err
		}
	}

	if msg.hasShielded() {
		if _, err := io.ReadFull(r, msg.BindingSig[:]); err != nil {
			return err
		}
	}

	return nil
}

// BtcEncode encodes the receiver to w using the Zcash transaction protocol
// encoding. This is part of the Message interface implementation.
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32) error {
	rawVersion := msg.Version
	if msg.Overwintered {
		rawVersion |= overwinteredFlag
	}
	if err := writeElement(w, rawVersion); err != nil {
		return err
	}

	if msg.Overwintered {
		if err := writeElement(w, msg.VersionGroupID); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, pver, ti); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, pver, to); err != nil {
			return err
		}
	}

	if err := writeElement(w, msg.LockTime); err != nil {
		return err
	}

	if msg.Overwintered {
		if err := writeElement(w, msg.ExpiryHeight); err != nil {
			return err
		}
	}

	if msg.hasShielded() {
		if err := writeElement(w, msg.ValueBalance); err != nil {
			return err
		}

		if err := WriteVarInt(w, pver, uint64(len(msg.ShieldedSpends))); err != nil {
			return err
		}
		for _, sd := range msg.ShieldedSpends {
			if err := writeSpendDescription(w, sd); err != nil {
				return err
			}
		}

		if err := WriteVarInt(w, pver, uint64(len(msg.ShieldedOutputs))); err != nil {
			return err
		}
		for _, od := range msg.ShieldedOutputs {
			if err := writeOutputDescription(w, od); err != nil {
				return err
			}
		}
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.JoinSplits))); err != nil {
		return err
	}
	for _, js := range msg.JoinSplits {
		if err := writeJoinSplit(w, js); err != nil {
			return err
		}
	}
	if len(msg.JoinSplits) > 0 {
		if _, err := w.Write(msg.JoinSplitPubKey[:]); err != nil {
			return err
		}
		if _, err := w.Write(msg.JoinSplitSig[:]); err != nil {
			return err
		}
	}

	if msg.hasShielded() {
		if _, err := w.Write(msg.BindingSig[:]); err != nil {
			return err
		}
	}

	return nil
}

// TxHash generates the Hash256 for the transaction.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = msg.BtcEncode(&buf, ProtocolVersion)
	return chainhash.DoubleHashH(buf.Bytes())
}

func readTxIn(r io.Reader, pver uint32, ti *TxIn) error {
	if err := readOutPoint(r, &ti.PreviousOutPoint); err != nil {
		return err
	}
	sigScript, err := ReadVarBytes(r, pver, MaxMessagePayload, "tx input signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = sigScript
	return readElement(r, &ti.Sequence)
}

func writeTxIn(w io.Writer, pver uint32, ti *TxIn) error {
	if err := writeOutPoint(w, &ti.PreviousOutPoint); err != nil {
		return err
	}
	if err := WriteVarBytes(w, pver, ti.SignatureScript); err != nil {
		return err
	}
	return writeElement(w, ti.Sequence)
}

func readTxOut(r io.Reader, pver uint32, to *TxOut) error {
	if err := readElement(r, &to.Value); err != nil {
		return err
	}
	pkScript, err := ReadVarBytes(r, pver, MaxMessagePayload, "tx output script")
	if err != nil {
		return err
	}
	to.PkScript = pkScript
	return nil
}

func writeTxOut(w io.Writer, pver uint32, to *TxOut) error {
	if err := writeElement(w, to.Value); err != nil {
		return err
	}
	return WriteVarBytes(w, pver, to.PkScript)
}

func readOutPoint(r io.Reader, op *OutPoint) error {
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return err
	}
	return readElement(r, &op.Index)
}

func writeOutPoint(w io.Writer, op *OutPoint) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	return writeElement(w, op.Index)
}

func readSpendDescription(r io.Reader, sd *SpendDescription) error {
	for _, b := range [][]byte{sd.CV[:], sd.Anchor[:], sd.Nullifier[:], sd.RK[:], sd.ZKProof[:], sd.SpendAuthSig[:]} {
		if _, err := io.ReadFull(r, b); err != nil {
			return err
		}
	}
	return nil
}

func writeSpendDescription(w io.Writer, sd *SpendDescription) error {
	for _, b := range [][]byte{sd.CV[:], sd.Anchor[:], sd.Nullifier[:], sd.RK[:], sd.ZKProof[:], sd.SpendAuthSig[:]} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func readOutputDescription(r io.Reader, od *OutputDescription) error {
	for _, b := range [][]byte{od.CV[:], od.CMU[:], od.EphemeralKey[:], od.EncCiphertext[:], od.OutCiphertext[:], od.ZKProof[:]} {
		if _, err := io.ReadFull(r, b); err != nil {
			return err
		}
	}
	return nil
}

func writeOutputDescription(w io.Writer, od *OutputDescription) error {
	for _, b := range [][]byte{od.CV[:], od.CMU[:], od.EphemeralKey[:], od.EncCiphertext[:], od.OutCiphertext[:], od.ZKProof[:]} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func readJoinSplit(r io.Reader, js *JoinSplit) error {
	if err := readElement(r, &js.VpubOld); err != nil {
		return err
	}
	if err := readElement(r, &js.VpubNew); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, js.Anchor[:]); err != nil {
		return err
	}
	for i := range js.Nullifiers {
		if _, err := io.ReadFull(r, js.Nullifiers[i][:]); err != nil {
			return err
		}
	}
	for i := range js.Commitments {
		if _, err := io.ReadFull(r, js.Commitments[i][:]); err != nil {
			return err
		}
	}
	if _, err := io.ReadFull(r, js.EphemeralKey[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, js.RandomSeed[:]); err != nil {
		return err
	}
	for i := range js.Macs {
		if _, err := io.ReadFull(r, js.Macs[i][:]); err != nil {
			return err
		}
	}
	if _, err := io.ReadFull(r, js.ZKProof[:]); err != nil {
		return err
	}
	for i := range js.Ciphertexts {
		if _, err := io.ReadFull(r, js.Ciphertexts[i][:]); err != nil {
			return err
		}
	}
	return nil
}

func writeJoinSplit(w io.Writer, js *JoinSplit) error {
	if err := writeElement(w, js.VpubOld); err != nil {
		return err
	}
	if err := writeElement(w, js.VpubNew); err != nil {
		return err
	}
	if _, err := w.Write(js.Anchor[:]); err != nil {
		return err
	}
	for i := range js.Nullifiers {
		if _, err := w.Write(js.Nullifiers[i][:]); err != nil {
			return err
		}
	}
	for i := range js.Commitments {
		if _, err := w.Write(js.Commitments[i][:]); err != nil {
			return err
		}
	}
	if _, err := w.Write(js.EphemeralKey[:]); err != nil {
		return err
	}
	if _, err := w.Write(js.RandomSeed[:]); err != nil {
		return err
	}
	for i := range js.Macs {
		if _, err := w.Write(js.Macs[i][:]); err != nil {
			return err
		}
	}
	if _, err := w.Write(js.ZKProof[:]); err != nil {
		return err
	}
	for i := range js.Ciphertexts {
		if _, err := w.Write(js.Ciphertexts[i][:]); err != nil {
			return err
		}
	}
	return nil
}
