// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfetch

import "time"

// Per-peer fetch shape: up to InFlightPerPeer chunks of BatchSize hashes may
// be outstanding against one peer at a time, so with B connected block
// peers the coordinator can have up to B*InFlightPerPeer*BatchSize blocks
// requested simultaneously (§4.4).
const (
	DefaultBatchSize       = 16
	DefaultInFlightPerPeer = 4

	// MaxFetchRounds bounds how many times a round that left hashes
	// unfetched (peer dropped its chunk, or nobody claimed it) is topped up
	// before the coordinator gives up on the round and lets the next
	// scheduler tick rediscover missing blocks from scratch.
	MaxFetchRounds = 3

	BlockIdleSecs = 30 * time.Second

	BlockPeerBanSecsNotFound = 1 * time.Hour
	BlockPeerBanSecsProtocol = 1 * time.Hour
	BlockPeerBanSecsTimeout  = 10 * time.Minute

	// ConnectPipelineIdleTimeout guards the connect stage: if the next
	// pending hash hasn't passed verify+shielded within this long, the
	// pipeline is declared stalled and the fetch cycle is aborted so the
	// caller can reconnect and retry.
	ConnectPipelineIdleTimeout = 2 * time.Minute
)
