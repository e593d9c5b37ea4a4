// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfetch

import (
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

// Peer is the narrow slice of a connected peer the block-fetch coordinator
// needs: somewhere to request a chunk of block hashes. The concrete wire
// peer lives in netpeer; this seam keeps blockfetch from importing it,
// mirroring headersync.Peer.
type Peer interface {
	Addr() string
	SendGetData(hashes []chainhash.Hash) error
}

// Banner records a ban against a peer's host. Matches addrmgr.Manager.Ban's
// signature (and headersync.Banner's) so one *addrmgr.Manager serves all
// three without adapter code.
type Banner interface {
	Ban(host string, duration time.Duration, now time.Time)
}
