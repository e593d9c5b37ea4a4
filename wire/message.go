// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

// Command strings for the semantic messages this core exchanges with the
// external P2P wire collaborator. The collaborator owns framing (magic,
// command, checksum) and handshake sequencing; this package only owns
// payload encode/decode for each command.
const (
	CmdVersion    = "version"
	CmdVerAck     = "verack"
	CmdPing       = "ping"
	CmdPong       = "pong"
	CmdGetHeaders = "getheaders"
	CmdHeaders    = "headers"
	CmdInv        = "inv"
	CmdGetData    = "getdata"
	CmdBlock      = "block"
	CmdTx         = "tx"
	CmdNotFound   = "notfound"
	CmdReject     = "reject"
	CmdAddr       = "addr"
	CmdGetAddr    = "getaddr"
	CmdMemPool    = "mempool"
	CmdFeeFilter  = "feefilter"
)

// Message is implemented by every semantic payload type in this package. The
// wire collaborator calls BtcEncode/BtcDecode against the already-framed
// payload bytes for the matching command string.
type Message interface {
	BtcDecode(io.Reader, uint32) error
	BtcEncode(io.Writer, uint32) error
	Command() string
}

// maxInvPerMsg and maxAddrPerMsg bound how many entries a single inv/addr
// message may carry, mirroring the limits the external framer enforces on
// payload size.
const (
	maxInvPerMsg  = 50000
	maxAddrPerMsg = 1000
)

// MsgVersion implements the Message interface and is exchanged during the
// initial handshake to announce protocol version, services, and best known
// height.
type MsgVersion struct {
	ProtocolVersion int32
	Services        uint64
	Timestamp       int64
	AddrYou         NetAddress
	AddrMe          NetAddress
	Nonce           uint64
	UserAgent       string
	LastBlock       int32
	DisableRelayTx  bool
}

func (m *MsgVersion) Command() string { return CmdVersion }

func (m *MsgVersion) BtcDecode(r io.Reader, pver uint32) error {
	if err := readElement(r, &m.ProtocolVersion); err != nil {
		return err
	}
	if err := readElement(r, &m.Services); err != nil {
		return err
	}
	if err := readElement(r, &m.Timestamp); err != nil {
		return err
	}
	if err := readNetAddress(r, &m.AddrYou, false); err != nil {
		return err
	}
	if err := readNetAddress(r, &m.AddrMe, false); err != nil {
		return err
	}
	if err := readElement(r, &m.Nonce); err != nil {
		return err
	}
	ua, err := ReadVarString(r, pver)
	if err != nil {
		return err
	}
	m.UserAgent = ua
	if err := readElement(r, &m.LastBlock); err != nil {
		return err
	}
	if err := readElement(r, &m.DisableRelayTx); err != nil {
		return err
	}
	return nil
}

func (m *MsgVersion) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElement(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := writeElement(w, m.Services); err != nil {
		return err
	}
	if err := writeElement(w, m.Timestamp); err != nil {
		return err
	}
	if err := writeNetAddress(w, &m.AddrYou, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, &m.AddrMe, false); err != nil {
		return err
	}
	if err := writeElement(w, m.Nonce); err != nil {
		return err
	}
	if err := WriteVarString(w, pver, m.UserAgent); err != nil {
		return err
	}
	if err := writeElement(w, m.LastBlock); err != nil {
		return err
	}
	return writeElement(w, m.DisableRelayTx)
}

// MsgVerAck defines a message that acknowledges a version message.
type MsgVerAck struct{}

func (m *MsgVerAck) Command() string                         { return CmdVerAck }
func (m *MsgVerAck) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (m *MsgVerAck) BtcEncode(w io.Writer, pver uint32) error { return nil }

// MsgPing carries a nonce the peer is expected to echo back in a pong.
type MsgPing struct {
	Nonce uint64
}

func (m *MsgPing) Command() string { return CmdPing }
func (m *MsgPing) BtcDecode(r io.Reader, pver uint32) error {
	return readElement(r, &m.Nonce)
}
func (m *MsgPing) BtcEncode(w io.Writer, pver uint32) error {
	return writeElement(w, m.Nonce)
}

// MsgPong replies to a ping with the nonce that was sent.
type MsgPong struct {
	Nonce uint64
}

func (m *MsgPong) Command() string { return CmdPong }
func (m *MsgPong) BtcDecode(r io.Reader, pver uint32) error {
	return readElement(r, &m.Nonce)
}
func (m *MsgPong) BtcEncode(w io.Writer, pver uint32) error {
	return writeElement(w, m.Nonce)
}

// MsgGetHeaders implements the header-sync locator request: a sparse list of
// known hashes (§4.3's doubling-step locator) plus a stop hash.
type MsgGetHeaders struct {
	ProtocolVersion    uint32
	BlockLocatorHashes []chainhash.Hash
	HashStop           chainhash.Hash
}

func (m *MsgGetHeaders) Command() string { return CmdGetHeaders }

func (m *MsgGetHeaders) BtcDecode(r io.Reader, pver uint32) error {
	if err := readElement(r, &m.ProtocolVersion); err != nil {
		return err
	}
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	m.BlockLocatorHashes = make([]chainhash.Hash, count)
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(r, m.BlockLocatorHashes[i][:]); err != nil {
			return err
		}
	}
	_, err = io.ReadFull(r, m.HashStop[:])
	return err
}

func (m *MsgGetHeaders) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElement(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := WriteVarInt(w, pver, uint64(len(m.BlockLocatorHashes))); err != nil {
		return err
	}
	for _, h := range m.BlockLocatorHashes {
		if _, err := w.Write(h[:]); err != nil {
			return err
		}
	}
	_, err := w.Write(m.HashStop[:])
	return err
}

// AddBlockLocatorHash adds a new block locator hash to the message.
func (m *MsgGetHeaders) AddBlockLocatorHash(hash *chainhash.Hash) {
	m.BlockLocatorHashes = append(m.BlockLocatorHashes, *hash)
}

// MsgHeaders implements the Message interface and is used to deliver block
// header information in response to a getheaders message.
type MsgHeaders struct {
	Headers []*BlockHeader
}

func (m *MsgHeaders) Command() string { return CmdHeaders }

func (m *MsgHeaders) AddBlockHeader(h *BlockHeader) {
	m.Headers = append(m.Headers, h)
}

func (m *MsgHeaders) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	m.Headers = make([]*BlockHeader, count)
	for i := uint64(0); i < count; i++ {
		h := &BlockHeader{}
		if err := readBlockHeader(r, pver, h); err != nil {
			return err
		}
		m.Headers[i] = h
	}
	return nil
}

func (m *MsgHeaders) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarInt(w, pver, uint64(len(m.Headers))); err != nil {
		return err
	}
	for _, h := range m.Headers {
		if err := writeBlockHeader(w, h); err != nil {
			return err
		}
	}
	return nil
}

// InvType represents the allowed types of inventory vectors.
type InvType uint32

// Inventory vector types servicing §6: MSG_TX goes to the mempool relay,
// MSG_BLOCK to the block fetch code.
const (
	InvTypeTx    InvType = 1
	InvTypeBlock InvType = 2
)

// InvVect defines a Zcash inventory vector, used to describe data, as
// specified by the Type field, that a peer wants, has, or does not have.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

func readInvVect(r io.Reader, iv *InvVect) error {
	if err := readElement(r, (*uint32)(&iv.Type)); err != nil {
		return err
	}
	_, err := io.ReadFull(r, iv.Hash[:])
	return err
}

func writeInvVect(w io.Writer, iv *InvVect) error {
	if err := writeElement(w, uint32(iv.Type)); err != nil {
		return err
	}
	_, err := w.Write(iv.Hash[:])
	return err
}

// MsgInv implements the Message interface and is used to advertise a peer's
// known data.
type MsgInv struct {
	InvList []*InvVect
}

func (m *MsgInv) Command() string { return CmdInv }

func (m *MsgInv) AddInvVect(iv *InvVect) {
	m.InvList = append(m.InvList, iv)
}

func (m *MsgInv) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > maxInvPerMsg {
		return messageErrorf("MsgInv.BtcDecode", "too many inventory vectors: %d", count)
	}
	m.InvList = make([]*InvVect, count)
	for i := uint64(0); i < count; i++ {
		iv := &InvVect{}
		if err := readInvVect(r, iv); err != nil {
			return err
		}
		m.InvList[i] = iv
	}
	return nil
}

func (m *MsgInv) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarInt(w, pver, uint64(len(m.InvList))); err != nil {
		return err
	}
	for _, iv := range m.InvList {
		if err := writeInvVect(w, iv); err != nil {
			return err
		}
	}
	return nil
}

// MsgGetData implements the Message interface and is used to request data
// such as blocks and transactions from another peer, usually in response to
// an MsgInv message.
type MsgGetData struct {
	InvList []*InvVect
}

func (m *MsgGetData) Command() string { return CmdGetData }

func (m *MsgGetData) AddInvVect(iv *InvVect) {
	m.InvList = append(m.InvList, iv)
}

func (m *MsgGetData) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > maxInvPerMsg {
		return messageErrorf("MsgGetData.BtcDecode", "too many inventory vectors: %d", count)
	}
	m.InvList = make([]*InvVect, count)
	for i := uint64(0); i < count; i++ {
		iv := &InvVect{}
		if err := readInvVect(r, iv); err != nil {
			return err
		}
		m.InvList[i] = iv
	}
	return nil
}

func (m *MsgGetData) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarInt(w, pver, uint64(len(m.InvList))); err != nil {
		return err
	}
	for _, iv := range m.InvList {
		if err := writeInvVect(w, iv); err != nil {
			return err
		}
	}
	return nil
}

// MsgNotFound implements the Message interface and is used to inform the
// requesting peer that an item it requested via getdata could not be found.
type MsgNotFound struct {
	InvList []*InvVect
}

func (m *MsgNotFound) Command() string { return CmdNotFound }

func (m *MsgNotFound) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	m.InvList = make([]*InvVect, count)
	for i := uint64(0); i < count; i++ {
		iv := &InvVect{}
		if err := readInvVect(r, iv); err != nil {
			return err
		}
		m.InvList[i] = iv
	}
	return nil
}

func (m *MsgNotFound) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarInt(w, pver, uint64(len(m.InvList))); err != nil {
		return err
	}
	for _, iv := range m.InvList {
		if err := writeInvVect(w, iv); err != nil {
			return err
		}
	}
	return nil
}

// RejectCode represents a numeric value by which a remote peer indicates why
// a message was rejected.
type RejectCode uint8

const (
	RejectMalformed  RejectCode = 0x01
	RejectInvalid    RejectCode = 0x10
	RejectObsolete   RejectCode = 0x11
	RejectDuplicate  RejectCode = 0x12
	RejectNonstandard RejectCode = 0x40
	RejectCheckpoint RejectCode = 0x43
)

// MsgReject implements the Message interface and represents a reject message
// sent in response to a command that could not be processed or understood.
type MsgReject struct {
	Cmd    string
	Code   RejectCode
	Reason string
	Hash   chainhash.Hash
}

func (m *MsgReject) Command() string { return CmdReject }

func (m *MsgReject) BtcDecode(r io.Reader, pver uint32) error {
	cmd, err := ReadVarString(r, pver)
	if err != nil {
		return err
	}
	m.Cmd = cmd

	code, err := readUint8(r)
	if err != nil {
		return err
	}
	m.Code = RejectCode(code)

	reason, err := ReadVarString(r, pver)
	if err != nil {
		return err
	}
	m.Reason = reason

	if m.Cmd == CmdBlock || m.Cmd == CmdTx {
		if _, err := io.ReadFull(r, m.Hash[:]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MsgReject) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarString(w, pver, m.Cmd); err != nil {
		return err
	}
	if err := writeUint8(w, uint8(m.Code)); err != nil {
		return err
	}
	if err := WriteVarString(w, pver, m.Reason); err != nil {
		return err
	}
	if m.Cmd == CmdBlock || m.Cmd == CmdTx {
		if _, err := w.Write(m.Hash[:]); err != nil {
			return err
		}
	}
	return nil
}

// MsgAddr implements the Message interface and is used to provide
// information about known peers on the network.
type MsgAddr struct {
	AddrList []*NetAddress
}

func (m *MsgAddr) Command() string { return CmdAddr }

func (m *MsgAddr) AddAddress(na *NetAddress) {
	m.AddrList = append(m.AddrList, na)
}

func (m *MsgAddr) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > maxAddrPerMsg {
		return messageErrorf("MsgAddr.BtcDecode", "too many addresses: %d", count)
	}
	m.AddrList = make([]*NetAddress, count)
	for i := uint64(0); i < count; i++ {
		na := &NetAddress{}
		if err := readNetAddress(r, na, true); err != nil {
			return err
		}
		m.AddrList[i] = na
	}
	return nil
}

func (m *MsgAddr) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarInt(w, pver, uint64(len(m.AddrList))); err != nil {
		return err
	}
	for _, na := range m.AddrList {
		if err := writeNetAddress(w, na, true); err != nil {
			return err
		}
	}
	return nil
}

// MsgGetAddr implements the Message interface and is used to request known
// active peers from a peer.
type MsgGetAddr struct{}

func (m *MsgGetAddr) Command() string                         { return CmdGetAddr }
func (m *MsgGetAddr) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (m *MsgGetAddr) BtcEncode(w io.Writer, pver uint32) error { return nil }

// MsgMemPool implements the Message interface and is used to request the
// transaction ids of transactions a peer currently has in its mempool.
type MsgMemPool struct{}

func (m *MsgMemPool) Command() string                         { return CmdMemPool }
func (m *MsgMemPool) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (m *MsgMemPool) BtcEncode(w io.Writer, pver uint32) error { return nil }

// MsgFeeFilter implements the Message interface and is used to request that
// a peer only announce transactions with a fee rate at or above the
// specified value, in atoms per kilobyte.
type MsgFeeFilter struct {
	MinFee int64
}

func (m *MsgFeeFilter) Command() string { return CmdFeeFilter }

func (m *MsgFeeFilter) BtcDecode(r io.Reader, pver uint32) error {
	return readElement(r, &m.MinFee)
}

func (m *MsgFeeFilter) BtcEncode(w io.Writer, pver uint32) error {
	return writeElement(w, m.MinFee)
}

// Command implementations for the payload-bearing types defined elsewhere in
// this package, so every semantic message in §6 satisfies Message.
func (msg *MsgTx) Command() string   { return CmdTx }
func (msg *MsgBlock) Command() string { return CmdBlock }
