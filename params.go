// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/excc-labs/fluxnoded/chaincfg"
)

// activeNetParams is a pointer to the parameters specific to the
// currently active network.
var activeNetParams = &mainNetParams

// params wraps a chaincfg.Params; it adds no fields of its own (no
// listen-port or RPC-port default is configured here).
type params struct {
	*chaincfg.Params
}

// mainNetParams contains parameters specific to the main network.
var mainNetParams = params{Params: chaincfg.MainNetParams()}

// testNetParams contains parameters specific to the test network.
var testNetParams = params{Params: chaincfg.TestNetParams()}

// regNetParams contains parameters specific to the regression test network.
var regNetParams = params{Params: chaincfg.RegNetParams()}

// simNetParams contains parameters specific to the simulation test network.
var simNetParams = params{Params: chaincfg.SimNetParams()}

// netName returns the name used for the network's data and log directory.
func netName(chainParams *params) string {
	return chainParams.Name
}
