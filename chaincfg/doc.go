// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines chain configuration parameters for the four
// networks supported by a full node (mainnet, testnet, regtest, simnet) and
// the functions that read consensus rules out of those parameters: network
// upgrade activation, subsidy and funding stream computation, difficulty
// retargeting (DigiShield, then LWMA once the Lwma upgrade activates, then
// the PoN LWMA variant once Pon activates), and the Equihash
// parameter schedule.
//
// Each exported XxxParams() function returns a fresh *Params so callers may
// freely mutate the copy (tests routinely do, e.g. to lower PoW limits)
// without perturbing other users of the package.
package chaincfg
