// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netpeer

import (
	"fmt"
	"time"

	"github.com/excc-labs/fluxnoded/wire"
)

// HandshakeTimeout bounds how long the version/verack exchange may take
// before the connection is abandoned.
const HandshakeTimeout = 10 * time.Second

// Handshake performs the version/verack exchange over t and returns the
// peer's advertised version message. ourVersion.Timestamp/Nonce are expected
// to already be filled in by the caller.
func Handshake(t Transport, ourVersion *wire.MsgVersion) (*wire.MsgVersion, error) {
	if err := t.Send(ourVersion); err != nil {
		return nil, fmt.Errorf("netpeer: handshake: send version: %w", err)
	}

	if err := t.SetReadDeadline(time.Now().Add(HandshakeTimeout)); err != nil {
		return nil, err
	}
	var peerVersion *wire.MsgVersion
	for peerVersion == nil {
		msg, err := t.Receive()
		if err != nil {
			return nil, fmt.Errorf("netpeer: handshake: awaiting version: %w", err)
		}
		switch m := msg.(type) {
		case *wire.MsgVersion:
			peerVersion = m
		case *wire.MsgReject:
			return nil, fmt.Errorf("netpeer: handshake: rejected: %s", m.Reason)
		default:
			// Ignore anything unsolicited before version arrives.
		}
	}

	if err := t.Send(&wire.MsgVerAck{}); err != nil {
		return nil, fmt.Errorf("netpeer: handshake: send verack: %w", err)
	}

	if err := t.SetReadDeadline(time.Now().Add(HandshakeTimeout)); err != nil {
		return nil, err
	}
	for {
		msg, err := t.Receive()
		if err != nil {
			return nil, fmt.Errorf("netpeer: handshake: awaiting verack: %w", err)
		}
		switch m := msg.(type) {
		case *wire.MsgVerAck:
			return peerVersion, t.SetReadDeadline(time.Time{})
		case *wire.MsgVersion:
			return nil, fmt.Errorf("netpeer: handshake: duplicate version")
		case *wire.MsgReject:
			return nil, fmt.Errorf("netpeer: handshake: rejected: %s", m.Reason)
		default:
			// Ignore until verack arrives.
		}
	}
}
