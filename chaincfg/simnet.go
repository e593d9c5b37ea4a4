// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "time"

// SimNetParams returns consensus parameters for a private, single-node
// simulation network. There is no upstream equivalent; it exists so local
// integration tests and demos can mine blocks instantly without peers. All
// upgrades but BaseSprout default to NoActivationHeight, as in regtest.
func SimNetParams() *Params {
	genesis := newGenesisBlock(
		"fluxnoded simnet genesis",
		time.Unix(1_401_292_357, 0),
		0x207fffff,
		[32]byte{},
		nil,
	)

	return &Params{
		Name:        "simnet",
		Net:         0x12141c16,
		DefaultPort: "26127",
		DNSSeeds:    nil,

		GenesisBlock: genesis,
		GenesisHash:  mustHash("00000000000000000000000000000000000000000000000000000000000000"),
		GenesisTime:  time.Unix(1_401_292_357, 0),

		SubsidySlowStartInterval:    0,
		SubsidyHalvingInterval:      200,
		PowInitialSubsidy:           50 * COIN,
		PoNSubsidyReductionInterval: 200,
		PoNMaxReductions:            10,
		PoNInitialSubsidy:           14,
		CoinbaseMaturity:            16,

		PowLimit:      hexToBig("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
		PowLimitBits:  0x207fffff,
		PoNLimit:      hexToBig("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
		PoNStartLimit: hexToBig("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),

		PowTargetSpacing:          1,
		PoNTargetSpacing:          1,
		DigishieldAveragingWindow: 17,
		DigishieldMaxAdjustDown:   0,
		DigishieldMaxAdjustUp:     0,
		PoNDifficultyWindow:       20,
		ZawyLWMAAveragingWindow:   20,

		EquihashEpochFadeLength: 5,
		EquihashEpoch1:          EquihashParams{N: 48, K: 5, SolutionSize: 36},
		EquihashEpoch2:          EquihashParams{N: 48, K: 5, SolutionSize: 36},
		EquihashEpoch3:          EquihashParams{N: 48, K: 5, SolutionSize: 36},

		MajorityEnforceBlockUpgrade: 75,
		MajorityRejectBlockOutdated: 95,
		MajorityWindow:              100,

		Upgrades: [numUpgrades]NetworkUpgrade{
			BaseSprout: {ProtocolVersion: 170_002, ActivationHeight: AlwaysActiveHeight},
			TestDummy:  {ProtocolVersion: 170_002, ActivationHeight: NoActivationHeight},
			Lwma:       {ProtocolVersion: 170_002, ActivationHeight: NoActivationHeight},
			Equi1445:   {ProtocolVersion: 170_002, ActivationHeight: NoActivationHeight},
			Acadia:     {ProtocolVersion: 170_007, ActivationHeight: NoActivationHeight},
			Kamiooka:   {ProtocolVersion: 170_012, ActivationHeight: NoActivationHeight},
			Kamata:     {ProtocolVersion: 170_016, ActivationHeight: NoActivationHeight},
			Flux:       {ProtocolVersion: 170_017, ActivationHeight: NoActivationHeight},
			Halving:    {ProtocolVersion: 170_018, ActivationHeight: NoActivationHeight},
			P2ShNodes:  {ProtocolVersion: 170_019, ActivationHeight: NoActivationHeight},
			Pon:        {ProtocolVersion: 170_020, ActivationHeight: NoActivationHeight},
		},

		Checkpoints: nil,

		Funding: FundingParams{
			ExchangeAddress:   "",
			ExchangeHeight:    NoActivationHeight,
			FoundationAddress: "",
			FoundationHeight:  NoActivationHeight,
			DevFundAddress:    "",
		},
		SwapPool: SwapPoolParams{},
		Emergency: EmergencyParams{
			MinSignatures: 1,
		},
		Fluxnode: FluxnodeParams{
			StartPaymentsHeight:    20,
			CumulusTransitionStart: 0,
			CumulusTransitionEnd:   40,
			NimbusTransitionStart:  0,
			NimbusTransitionEnd:    40,
			StratusTransitionStart: 0,
			StratusTransitionEnd:   40,
		},

		MaxBlockSize:   2_000_000,
		MaxBlockSigOps: 20_000,
		MaxTxSize:      1_000_000,

		CoinbaseMustBeProtected: false,

		PubKeyHashAddrID: [2]byte{0x3f, 0x25}, // invented, distinct from mainnet/testnet
		ScriptHashAddrID: [2]byte{0x3f, 0x96},
		PrivateKeyID:     0x64,
	}
}
