// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "time"

var regnetCheckpoints = []Checkpoint{
	{Height: 0, Hash: mustHash("01998760a88dc2b5715f69d2f18c1d90e0b604612242d9099eaff3048dd1e0ce")},
}

var regnetEmergencyKeys = []string{
	"029a1c55fa7e69dd99087f7ca799797052ae21327b94159e60b8cc5704eb188583",
}

// RegNetParams returns the consensus parameters for the regression test
// network. Every upgrade besides BaseSprout defaults to NoActivationHeight;
// tests that need one active override Upgrades on the returned copy.
func RegNetParams() *Params {
	genesis := newGenesisBlock(
		"fluxnoded regtest genesis",
		time.Unix(1_296_688_602, 0),
		0x200f0f0f,
		[32]byte{},
		nil,
	)

	return &Params{
		Name:        "regtest",
		Net:         0x5f3fe8aa,
		DefaultPort: "26126",
		DNSSeeds:    nil,

		GenesisBlock: genesis,
		GenesisHash:  mustHash("01998760a88dc2b5715f69d2f18c1d90e0b604612242d9099eaff3048dd1e0ce"),
		GenesisTime:  time.Unix(1_296_688_602, 0),

		SubsidySlowStartInterval:    0,
		SubsidyHalvingInterval:      150,
		PowInitialSubsidy:           75 * COIN,
		PoNSubsidyReductionInterval: 100,
		PoNMaxReductions:            10,
		PoNInitialSubsidy:           14,
		CoinbaseMaturity:            10,

		PowLimit:      hexToBig("0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f"),
		PowLimitBits:  0x200f0f0f,
		PoNLimit:      hexToBig("0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f"),
		PoNStartLimit: hexToBig("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),

		PowTargetSpacing:          120,
		PoNTargetSpacing:          30,
		DigishieldAveragingWindow: 17,
		DigishieldMaxAdjustDown:   0,
		DigishieldMaxAdjustUp:     0,
		PoNDifficultyWindow:       60,
		ZawyLWMAAveragingWindow:   60,

		EquihashEpochFadeLength: 11,
		EquihashEpoch1:          EquihashParams{N: 200, K: 9, SolutionSize: 1344},
		EquihashEpoch2:          EquihashParams{N: 144, K: 5, SolutionSize: 100},
		EquihashEpoch3:          EquihashParams{N: 125, K: 4, SolutionSize: 52},

		MajorityEnforceBlockUpgrade: 750,
		MajorityRejectBlockOutdated: 950,
		MajorityWindow:              1_000,

		Upgrades: [numUpgrades]NetworkUpgrade{
			BaseSprout: {ProtocolVersion: 170_002, ActivationHeight: AlwaysActiveHeight},
			TestDummy:  {ProtocolVersion: 170_002, ActivationHeight: NoActivationHeight},
			Lwma:       {ProtocolVersion: 170_002, ActivationHeight: NoActivationHeight},
			Equi1445:   {ProtocolVersion: 170_002, ActivationHeight: NoActivationHeight},
			Acadia:     {ProtocolVersion: 170_006, ActivationHeight: NoActivationHeight},
			Kamiooka:   {ProtocolVersion: 170_012, ActivationHeight: NoActivationHeight},
			Kamata:     {ProtocolVersion: 170_016, ActivationHeight: NoActivationHeight},
			Flux:       {ProtocolVersion: 170_017, ActivationHeight: NoActivationHeight},
			Halving:    {ProtocolVersion: 170_018, ActivationHeight: NoActivationHeight},
			P2ShNodes:  {ProtocolVersion: 170_019, ActivationHeight: NoActivationHeight},
			Pon:        {ProtocolVersion: 170_020, ActivationHeight: NoActivationHeight},
		},

		Checkpoints: regnetCheckpoints,

		Funding: FundingParams{
			ExchangeAddress:   "tmRucHD85zgSigtA4sJJBDbPkMUJDcw5XDE",
			ExchangeHeight:    10,
			ExchangeAmount:    3_000_000 * COIN,
			FoundationAddress: "t2DFGpj2tciojsGKKrGVwQ92hUwAxWQQgJ9",
			FoundationHeight:  10,
			FoundationAmount:  2_500_000 * COIN,
			DevFundAddress:    "t2GoxS2SRmLQDnTyWePHjKD3izvFsKUAjrH",
		},
		SwapPool: SwapPoolParams{
			Address:     "t2Dsexh4v5g2dpL2LLCsR1p9TshMm63jSBM",
			StartHeight: 10,
			Amount:      2_100_000 * COIN,
			Interval:    10,
			MaxTimes:    5,
		},
		Emergency: EmergencyParams{
			PublicKeys:     regnetEmergencyKeys,
			CollateralHash: mustHash("1111111111111111111111111111111111111111111111111111111111111111"),
			MinSignatures:  1,
		},
		Fluxnode: FluxnodeParams{
			StartPaymentsHeight:    100,
			CumulusTransitionStart: 0,
			CumulusTransitionEnd:   1_000,
			NimbusTransitionStart:  0,
			NimbusTransitionEnd:    1_000,
			StratusTransitionStart: 0,
			StratusTransitionEnd:   100,
		},

		MaxBlockSize:   2_000_000,
		MaxBlockSigOps: 20_000,
		MaxTxSize:      1_000_000,

		CoinbaseMustBeProtected: false,

		PubKeyHashAddrID: [2]byte{0x1d, 0x25}, // base58 prefix "tm"
		ScriptHashAddrID: [2]byte{0x1c, 0xba}, // base58 prefix "t2"
		PrivateKeyID:     0xef,
	}
}
