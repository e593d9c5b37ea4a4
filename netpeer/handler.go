// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netpeer

import "github.com/excc-labs/fluxnoded/wire"

// Handler receives the semantic messages a Peer decodes off its Transport.
// Every method runs on the peer's own dispatch goroutine: a handler that
// blocks delays that one peer's traffic only, never the pool.
type Handler interface {
	OnHeaders(p *Peer, msg *wire.MsgHeaders) error
	OnGetHeaders(p *Peer, msg *wire.MsgGetHeaders) error
	OnInv(p *Peer, msg *wire.MsgInv) error
	OnGetData(p *Peer, msg *wire.MsgGetData) error
	OnNotFound(p *Peer, msg *wire.MsgNotFound) error
	OnBlock(p *Peer, msg *wire.MsgBlock) error
	OnTx(p *Peer, msg *wire.MsgTx) error
	OnReject(p *Peer, msg *wire.MsgReject) error
	OnAddr(p *Peer, msg *wire.MsgAddr) error
	OnGetAddr(p *Peer) error
}
