// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the Hash256 type used throughout the node:
// a 32-byte hash stored internally in little-endian (the order it is
// produced by the double-SHA256/BLAKE2b digests it wraps) but displayed
// and parsed in the big-endian hex convention block explorers use.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/ripemd160"
)

// HashSize is the size, in bytes, of a hash.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified
// a hash string that has too many characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is a Hash256: a 32-byte, little-endian hash.
type Hash [HashSize]byte

// String returns the Hash as the big-endian hex string customary for
// display, which is the reverse of the internal little-endian byte order.
func (h Hash) String() string {
	var hexBytes [HashSize * 2]byte
	hexEncode(hexBytes[:], h)
	return string(hexBytes[:])
}

func hexEncode(dst []byte, h Hash) {
	const hexDigits = "0123456789abcdef"
	for i, b := range h {
		dst[i*2] = hexDigits[b>>4]
		dst[i*2+1] = hexDigits[b&0x0f]
	}
	// Reverse into big-endian display order.
	for i, j := 0, len(dst)-2; i < j; i, j = i+2, j-2 {
		dst[i], dst[i+1], dst[j], dst[j+1] = dst[j], dst[j+1], dst[i], dst[i+1]
	}
}

// CloneBytes returns a copy of the bytes which represent the hash as a
// byte slice, in the same little-endian order NewHash expects.
func (h Hash) CloneBytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// SetBytes sets the bytes which represent the hash.  An error is returned
// if the number of bytes passed in is not HashSize.
func (h *Hash) SetBytes(newHash []byte) error {
	if len(newHash) != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", len(newHash),
			HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// IsEqual returns true if target is the same as the hash.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// NewHash returns a new Hash from a byte slice in little-endian order.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// NewHashFromStr creates a Hash from a big-endian hash string.  The string
// is expected to be formatted as two hex characters per byte, most
// significant byte first.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the big-endian hex-encoded hash string into the receiver.
func Decode(dst *Hash, src string) error {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}

	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+len(src))
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}

	var reversedHash Hash
	_, err := hex.Decode(reversedHash[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return err
	}

	// Reverse decoded bytes into little-endian order.
	for i, j := 0, HashSize-1; i < j; i, j = i+1, j-1 {
		reversedHash[i], reversedHash[j] = reversedHash[j], reversedHash[i]
	}
	*dst = reversedHash
	return nil
}

// HashB calculates the SHA-256 hash of the passed data.
func HashB(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

// HashH calculates the SHA-256 hash of the passed data and returns it as a
// Hash.
func HashH(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// DoubleHashB calculates hash(hash(b)) and returns the resulting bytes.
func DoubleHashB(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// DoubleHashH calculates hash(hash(b)) and returns the resulting bytes as a
// Hash.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}

// Hash160 calculates RIPEMD160(SHA256(b)), the digest pay-to-pubkey-hash
// and pay-to-script-hash outputs commit to.
func Hash160(b []byte) []byte {
	sha := sha256.Sum256(b)
	r := ripemd160.New()
	r.Write(sha[:])
	return r.Sum(nil)
}
