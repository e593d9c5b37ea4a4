// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netpeer

import (
	"time"

	"github.com/excc-labs/fluxnoded/wire"
)

// Transport sends and receives already-framed wire.Message values over a
// single connection. Magic bytes, command strings, checksums, and the raw
// byte stream itself belong to the external P2P wire collaborator; this
// package only ever calls Send/Receive against it. A Transport is not safe
// for concurrent use by multiple goroutines calling Send at once; Peer
// serializes its own writes.
type Transport interface {
	// Send blocks until msg has been handed to the wire collaborator.
	Send(msg wire.Message) error
	// Receive blocks until the next message arrives, the deadline set by
	// SetReadDeadline elapses, or the transport is closed.
	Receive() (wire.Message, error)
	// SetReadDeadline bounds the next Receive call; a zero value disables
	// the deadline.
	SetReadDeadline(deadline time.Time) error
	// RemoteAddr is the "host:port" identity used for address-book and
	// ban-list keys.
	RemoteAddr() string
	Close() error
}
