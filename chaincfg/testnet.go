// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "time"

var testnetCheckpoints = []Checkpoint{
	{Height: 0, Hash: mustHash("0042202a64a929fc25cc10e68615ddbe38007b1b40da08acd3f530f83c79b9d1")},
	{Height: 320, Hash: mustHash("0237bf16aba912b0c68933809a7e7fe9553ddff1bc0782d2463fc5d161af1c46")},
}

var testnetEmergencyKeys = []string{
	"029a1c55fa7e69dd99087f7ca799797052ae21327b94159e60b8cc5704eb188583",
}

// TestNetParams returns the consensus parameters for the test network.
func TestNetParams() *Params {
	genesis := newGenesisBlock(
		"fluxnoded testnet genesis",
		time.Unix(1_582_228_940, 0),
		0x1f0effff,
		[32]byte{},
		nil,
	)

	return &Params{
		Name:        "testnet",
		Net:         0xbff91afa,
		DefaultPort: "26125",
		DNSSeeds:    []DNSSeed{{Host: "testnet.dnsseed.runonflux.io"}},

		GenesisBlock: genesis,
		GenesisHash:  mustHash("0042202a64a929fc25cc10e68615ddbe38007b1b40da08acd3f530f83c79b9d1"),
		GenesisTime:  time.Unix(1_582_228_940, 0),

		SubsidySlowStartInterval:    1,
		SubsidyHalvingInterval:      655_350,
		PowInitialSubsidy:           75 * COIN,
		PoNSubsidyReductionInterval: 525_600,
		PoNMaxReductions:            20,
		PoNInitialSubsidy:           14,
		CoinbaseMaturity:            100,

		PowLimit:      hexToBig("0effffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
		PowLimitBits:  0x1f0effff,
		PoNLimit:      hexToBig("0fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
		PoNStartLimit: hexToBig("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),

		PowTargetSpacing:          60,
		PoNTargetSpacing:          30,
		DigishieldAveragingWindow: 17,
		DigishieldMaxAdjustDown:   32,
		DigishieldMaxAdjustUp:     16,
		PoNDifficultyWindow:       60,
		ZawyLWMAAveragingWindow:   60,

		EquihashEpochFadeLength: 10,
		EquihashEpoch1:          EquihashParams{N: 48, K: 5, SolutionSize: 36},
		EquihashEpoch2:          EquihashParams{N: 48, K: 5, SolutionSize: 36},
		EquihashEpoch3:          EquihashParams{N: 48, K: 5, SolutionSize: 36},

		MajorityEnforceBlockUpgrade: 51,
		MajorityRejectBlockOutdated: 75,
		MajorityWindow:              400,

		Upgrades: [numUpgrades]NetworkUpgrade{
			BaseSprout: {ProtocolVersion: 170_002, ActivationHeight: AlwaysActiveHeight},
			TestDummy:  {ProtocolVersion: 170_002, ActivationHeight: NoActivationHeight},
			Lwma:       {ProtocolVersion: 170_002, ActivationHeight: 70},
			Equi1445:   {ProtocolVersion: 170_002, ActivationHeight: 140},
			Acadia:     {ProtocolVersion: 170_007, ActivationHeight: 210},
			Kamiooka:   {ProtocolVersion: 170_012, ActivationHeight: 280},
			Kamata:     {ProtocolVersion: 170_016, ActivationHeight: 350},
			Flux:       {ProtocolVersion: 170_017, ActivationHeight: 420},
			Halving:    {ProtocolVersion: 170_018, ActivationHeight: 520},
			P2ShNodes:  {ProtocolVersion: 170_019, ActivationHeight: 600},
			Pon:        {ProtocolVersion: 170_020, ActivationHeight: 800},
		},

		Checkpoints: testnetCheckpoints,

		Funding: FundingParams{
			ExchangeAddress:   "tmRucHD85zgSigtA4sJJBDbPkMUJDcw5XDE",
			ExchangeHeight:    4_100,
			ExchangeAmount:    7_500_000 * COIN,
			FoundationAddress: "tmRucHD85zgSigtA4sJJBDbPkMUJDcw5XDE",
			FoundationHeight:  4_200,
			FoundationAmount:  2_500_000 * COIN,
			DevFundAddress:    "t2GoxS2SRmLQDnTyWePHjKD3izvFsKUAjrH",
		},
		SwapPool: SwapPoolParams{
			Address:     "tmRucHD85zgSigtA4sJJBDbPkMUJDcw5XDE",
			StartHeight: 4_300,
			Amount:      2_200_000 * COIN,
			Interval:    100,
			MaxTimes:    10,
		},
		Emergency: EmergencyParams{
			PublicKeys:     testnetEmergencyKeys,
			CollateralHash: mustHash("1111111111111111111111111111111111111111111111111111111111111111"),
			MinSignatures:  2,
		},
		Fluxnode: FluxnodeParams{
			StartPaymentsHeight:    350,
			CumulusTransitionStart: 420,
			CumulusTransitionEnd:   520,
			NimbusTransitionStart:  420,
			NimbusTransitionEnd:    520,
			StratusTransitionStart: 420,
			StratusTransitionEnd:   520,
		},

		MaxBlockSize:   2_000_000,
		MaxBlockSigOps: 20_000,
		MaxTxSize:      1_000_000,

		CoinbaseMustBeProtected: true,

		PubKeyHashAddrID: [2]byte{0x1d, 0x25}, // base58 prefix "tm"
		ScriptHashAddrID: [2]byte{0x1c, 0xba}, // base58 prefix "t2"
		PrivateKeyID:     0xef,
	}
}
