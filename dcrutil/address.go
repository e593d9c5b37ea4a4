// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dcrutil

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/decred/base58"

	"github.com/excc-labs/fluxnoded/chaincfg"
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

// ErrChecksumMismatch describes an error where the checksum encoded at the
// end of a base58Check-encoded address does not match the checksum
// calculated from the address's payload.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ErrUnknownAddressType describes an error where an address cannot be
// decoded as a specific address type because the leading prefix bytes do
// not match any standard form for the given network.
var ErrUnknownAddressType = errors.New("unknown address type")

const addrChecksumLen = 4

// Address is implemented by every transparent address type this node
// recognizes. ScriptAddress returns the 20-byte hash the address pays to
// (not a full public key script), and the string form is the base58Check encoding
// customary for this chain's transparent addresses.
type Address interface {
	String() string
	ScriptAddress() []byte
	IsForNet(params *chaincfg.Params) bool
}

// encodeAddress base58Check-encodes hash160 behind the given two-byte
// version prefix.
func encodeAddress(hash160 []byte, netID [2]byte) string {
	b := make([]byte, 0, 2+len(hash160)+addrChecksumLen)
	b = append(b, netID[0], netID[1])
	b = append(b, hash160...)
	cksum := chainhash.DoubleHashB(b)
	b = append(b, cksum[:addrChecksumLen]...)
	return base58.Encode(b)
}

// AddressPubKeyHash is a transparent pay-to-pubkey-hash address.
type AddressPubKeyHash struct {
	hash  [20]byte
	netID [2]byte
}

// NewAddressPubKeyHash returns an address for a standard pay-to-pubkey-hash
// script for the given 20-byte RIPEMD160(SHA256(pubkey)) hash.
func NewAddressPubKeyHash(pkHash []byte, params *chaincfg.Params) (*AddressPubKeyHash, error) {
	if len(pkHash) != 20 {
		return nil, fmt.Errorf("pubkey hash must be 20 bytes, got %d", len(pkHash))
	}
	a := &AddressPubKeyHash{netID: params.PubKeyHashAddrID}
	copy(a.hash[:], pkHash)
	return a, nil
}

func (a *AddressPubKeyHash) String() string        { return encodeAddress(a.hash[:], a.netID) }
func (a *AddressPubKeyHash) ScriptAddress() []byte  { return a.hash[:] }
func (a *AddressPubKeyHash) Hash160() *[20]byte     { return &a.hash }
func (a *AddressPubKeyHash) IsForNet(p *chaincfg.Params) bool {
	return a.netID == p.PubKeyHashAddrID
}

// AddressScriptHash is a transparent pay-to-script-hash address.
type AddressScriptHash struct {
	hash  [20]byte
	netID [2]byte
}

// NewAddressScriptHash returns an address for a standard pay-to-script-hash
// script built from the given redeem script.
func NewAddressScriptHash(redeemScript []byte, params *chaincfg.Params) (*AddressScriptHash, error) {
	return NewAddressScriptHashFromHash(chainhash.Hash160(redeemScript), params)
}

// NewAddressScriptHashFromHash returns an address for a standard
// pay-to-script-hash script for the given 20-byte script hash.
func NewAddressScriptHashFromHash(scriptHash []byte, params *chaincfg.Params) (*AddressScriptHash, error) {
	if len(scriptHash) != 20 {
		return nil, fmt.Errorf("script hash must be 20 bytes, got %d", len(scriptHash))
	}
	a := &AddressScriptHash{netID: params.ScriptHashAddrID}
	copy(a.hash[:], scriptHash)
	return a, nil
}

func (a *AddressScriptHash) String() string        { return encodeAddress(a.hash[:], a.netID) }
func (a *AddressScriptHash) ScriptAddress() []byte  { return a.hash[:] }
func (a *AddressScriptHash) Hash160() *[20]byte     { return &a.hash }
func (a *AddressScriptHash) IsForNet(p *chaincfg.Params) bool {
	return a.netID == p.ScriptHashAddrID
}

// DecodeAddress decodes the base58Check-encoded transparent address addr
// for the given network and returns an Address of the concrete type it
// matches. It returns ErrUnknownAddressType if addr's version prefix does
// not match either the pay-to-pubkey-hash or pay-to-script-hash prefix for
// the network.
func DecodeAddress(addr string, params *chaincfg.Params) (Address, error) {
	decoded := base58.Decode(addr)
	if len(decoded) != 2+20+addrChecksumLen {
		return nil, fmt.Errorf("%w: unexpected decoded length %d", ErrUnknownAddressType, len(decoded))
	}

	payload := decoded[:2+20]
	cksum := chainhash.DoubleHashB(payload)[:addrChecksumLen]
	if !bytes.Equal(cksum, decoded[2+20:]) {
		return nil, ErrChecksumMismatch
	}

	var netID [2]byte
	copy(netID[:], decoded[:2])
	hash := decoded[2 : 2+20]

	switch netID {
	case params.PubKeyHashAddrID:
		return NewAddressPubKeyHash(hash, params)
	case params.ScriptHashAddrID:
		return NewAddressScriptHashFromHash(hash, params)
	default:
		return nil, ErrUnknownAddressType
	}
}
