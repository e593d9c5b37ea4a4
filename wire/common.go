// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

// ProtocolVersion is the latest protocol version this package understands.
const ProtocolVersion uint32 = 170_013

// NodeCFVersion is the minimum protocol version that understands committed
// filter messages.
const NodeCFVersion uint32 = 170_013

// messageError implements the error interface and describes a problem
// encountered while encoding or decoding a message.
type messageError struct {
	function string
	description string
}

func (e *messageError) Error() string {
	if e.function != "" {
		return fmt.Sprintf("%s: %s", e.function, e.description)
	}
	return e.description
}

func messageErrorf(function, format string, args ...interface{}) error {
	return &messageError{function: function, description: fmt.Sprintf(format, args...)}
}

var le = binary.LittleEndian

// writeElement writes the little-endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint8:
		return writeUint8(w, e)
	case int32:
		return writeUint32(w, uint32(e))
	case uint32:
		return writeUint32(w, e)
	case int64:
		return writeUint64(w, uint64(e))
	case uint64:
		return writeUint64(w, e)
	case bool:
		if e {
			return writeUint8(w, 1)
		}
		return writeUint8(w, 0)
	case [4]byte:
		_, err := w.Write(e[:])
		return err
	case [32]byte:
		_, err := w.Write(e[:])
		return err
	case chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	case *chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	default:
		return messageErrorf("writeElement", "unsupported type %T", element)
	}
}

func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint8:
		v, err := readUint8(r)
		if err != nil {
			return err
		}
		*e = v
		return nil
	case *int32:
		v, err := readUint32(r)
		if err != nil {
			return err
		}
		*e = int32(v)
		return nil
	case *uint32:
		v, err := readUint32(r)
		if err != nil {
			return err
		}
		*e = v
		return nil
	case *int64:
		v, err := readUint64(r)
		if err != nil {
			return err
		}
		*e = int64(v)
		return nil
	case *uint64:
		v, err := readUint64(r)
		if err != nil {
			return err
		}
		*e = v
		return nil
	case *bool:
		v, err := readUint8(r)
		if err != nil {
			return err
		}
		*e = v != 0
		return nil
	case *[4]byte:
		_, err := io.ReadFull(r, e[:])
		return err
	case *[32]byte:
		_, err := io.ReadFull(r, e[:])
		return err
	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		return err
	default:
		return messageErrorf("readElement", "unsupported type %T", element)
	}
}

func writeUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func readUint8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	le.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return le.Uint32(b[:]), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	le.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return le.Uint64(b[:]), nil
}

// binarySerializer exposes the byte-level Put/Uint helpers that the teacher's
// own wire messages (e.g. MsgCFilter) call directly.
var binarySerializer bin8

type bin8 struct{}

func (bin8) PutUint8(w io.Writer, v uint8) error { return writeUint8(w, v) }

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= 0xffff:
		return 3
	case val <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64.
func ReadVarInt(r io.Reader, pver uint32) (uint64, error) {
	b, err := readUint8(r)
	if err != nil {
		return 0, err
	}

	switch b {
	case 0xff:
		v, err := readUint64(r)
		if err != nil {
			return 0, err
		}
		if v < 0x100000000 {
			return 0, messageErrorf("ReadVarInt", "unexpected value for variable length integer - got %d, min %d", v, 0x100000000)
		}
		return v, nil
	case 0xfe:
		v, err := readUint32(r)
		if err != nil {
			return 0, err
		}
		if uint64(v) < 0x10000 {
			return 0, messageErrorf("ReadVarInt", "unexpected value for variable length integer - got %d, min %d", v, 0x10000)
		}
		return uint64(v), nil
	case 0xfd:
		var b2 [2]byte
		if _, err := io.ReadFull(r, b2[:]); err != nil {
			return 0, err
		}
		v := le.Uint16(b2[:])
		if v < 0xfd {
			return 0, messageErrorf("ReadVarInt", "unexpected value for variable length integer - got %d, min %d", v, 0xfd)
		}
		return uint64(v), nil
	default:
		return uint64(b), nil
	}
}

// WriteVarInt serializes val to w using a variable number of bytes depending
// on its value.
func WriteVarInt(w io.Writer, pver uint32, val uint64) error {
	if val < 0xfd {
		return writeUint8(w, uint8(val))
	}
	if val <= 0xffff {
		if err := writeUint8(w, 0xfd); err != nil {
			return err
		}
		var b [2]byte
		le.PutUint16(b[:], uint16(val))
		_, err := w.Write(b[:])
		return err
	}
	if val <= 0xffffffff {
		if err := writeUint8(w, 0xfe); err != nil {
			return err
		}
		return writeUint32(w, uint32(val))
	}
	if err := writeUint8(w, 0xff); err != nil {
		return err
	}
	return writeUint64(w, val)
}

// ReadVarBytes reads a variable length byte array.  A maxAllowed parameter is
// provided to guard against an excessive amount of data being read, which
// could result in memory exhaustion.
func ReadVarBytes(r io.Reader, pver uint32, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, messageErrorf("ReadVarBytes", "%s is larger than the max allowed size [count %d, max %d]", fieldName, count, maxAllowed)
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes serializes a variable length byte array to w as a varint
// containing the number of bytes, followed by the bytes themselves.
func WriteVarBytes(w io.Writer, pver uint32, bytes []byte) error {
	if err := WriteVarInt(w, pver, uint64(len(bytes))); err != nil {
		return err
	}
	_, err := w.Write(bytes)
	return err
}

// ReadVarString reads a variable length string.
func ReadVarString(r io.Reader, pver uint32) (string, error) {
	b, err := ReadVarBytes(r, pver, MaxMessagePayload, "variable length string")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteVarString serializes str to w as a varint containing the length of the
// string followed by the bytes that represent the string itself.
func WriteVarString(w io.Writer, pver uint32, str string) error {
	return WriteVarBytes(w, pver, []byte(str))
}

// MaxMessagePayload is the maximum bytes a message payload can be.
const MaxMessagePayload = 1024 * 1024 * 32
