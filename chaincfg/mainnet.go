// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
)

// mainnetCheckpoints is the full mainnet checkpoint list, oldest first.
var mainnetCheckpoints = []Checkpoint{
	{Height: 0, Hash: mustHash("00052461a5006c2e3b74ce48992a08695607912d5604c3eb8da25749b0900444")},
	{Height: 5500, Hash: mustHash("0000000e7724f8bace09dd762657169c10622af4a6a8e959152cd00b9119848e")},
	{Height: 35000, Hash: mustHash("000000004646dd797644b9c67aff320961e95c311b4f26985424b720d09fcaa5")},
	{Height: 70000, Hash: mustHash("00000001edcf7768ed39fac55414e53a78d077b1b41fccdaf9307d7bc219626a")},
	{Height: 94071, Hash: mustHash("00000005ec83876bc5288badf0971ae83ac7c6a286851f7b22a75a03e73b401a")},
	{Height: 277649, Hash: mustHash("00000004a53f9271d05071a052b3738b46663f3335d14b6aea965a3cb70c0cc8")},
	{Height: 400000, Hash: mustHash("000000390342f0e52443ad79b43e5d85b78bf519667aeb3aa980d76caeda0369")},
	{Height: 530000, Hash: mustHash("0000004b4459ec6904e8116d178c357b0f25a7d45c5c5836ce3714791f1ed124")},
	{Height: 600000, Hash: mustHash("000000dea4478401e6ab95f6d05ade810115411e95e75fab9fd94a44df4b1e1d")},
	{Height: 700000, Hash: mustHash("0000000845ef03939225cc592773fd7aef54b5232fc42790c46ef6f11ee3e8d4")},
	{Height: 800000, Hash: mustHash("000000451b73f495b2f6ad38bd89d15495551fc15c2078ad7af3d54d06422cc6")},
	{Height: 900000, Hash: mustHash("000001e1ad2bb5e3cabb09559b6e65b871bf1d2a51bcc141ce45fc4cbd1d9cd8")},
	{Height: 1000000, Hash: mustHash("0000001a80e7f30d21fb14116cd01d51e1fad8ac84cc960896f4691a57368a47")},
	{Height: 1040000, Hash: mustHash("00000007f3b465bd4b0e161e43c05a3d946144330e33ea3a91cb952e6ef86b7d")},
	{Height: 1040577, Hash: mustHash("000000071fe89682ac260bc0a49621344eb28ae01659c9e7ce86e3762e45f52d")},
	{Height: 1042126, Hash: mustHash("0000000295e4663178fd9e533787e74206645910a2bfb61938db5f67796eaad0")},
	{Height: 1060000, Hash: mustHash("0000000fd721d8d381c4b24a4f78fc036955d7a0f98d2765b8c7badad8b66c1b")},
	{Height: 1442798, Hash: mustHash("0000000cc561fecb2ecfd22ba7af09450ca8cf270f407ce8b948195ff2aa0d13")},
	{Height: 1518503, Hash: mustHash("0000000dba41dc84c52a3933af49d316fff49a76b49d42bd5b6d20c4e451a0ef")},
	{Height: 1791720, Hash: mustHash("0000000abc7bd62a213e0dab43c9c01220b031a568fdfb5c2ef89e6b30054bdc")},
	{Height: 2020500, Hash: mustHash("af2a1bd59c61f64860b4b45bd65358743fda40d8420564b58c39df45be7da97c")},
	{Height: 2021000, Hash: mustHash("d2dcec473e809575e30ec2c0f400758120f5121b8268f90cdb8a7dbefe285b0d")},
	{Height: 2021500, Hash: mustHash("fa98471f31ffc1366330bababc090ad5cb6bd23c25bb3b61d1e1ed07a77d6126")},
	{Height: 2022000, Hash: mustHash("40a060546a56eb7fab0fd33ab3e6de834ff0d5273847d4f231a9addecfc44f61")},
	{Height: 2029000, Hash: mustHash("4856dc788a973db4cc537465c9ef80288e1eb065898993d72371b1ee48c248b4")},
}

// mainnetEmergencyKeys are the recognized signers for the emergency-recovery
// multisig; any MinSignatures of these may co-sign a spend of the emergency
// collateral outpoint.
var mainnetEmergencyKeys = []string{
	"025ee73f72d6996f94fe6ec9fac3f9ba6dcb947ed46dfbda530fc73ff99c667a4e",
	"026f4281124d10eb90589831bac405d715ad79051ac5243d21c322d2abf2fd81e2",
	"03083d65c2f57cfe4d1c34eb575bd9d836f5111dd0de86405d48211bf42ea30403",
	"03674c29f348124e998fd838228a3ff050ca26fe0c13ad98698585cbbf796b461e",
}

// MainNetParams returns the consensus parameters for the main network.
func MainNetParams() *Params {
	genesis := newGenesisBlock(
		"fluxnoded genesis",
		time.Unix(1_516_980_000, 0),
		0x1f0007ff,
		[32]byte{},
		nil,
	)

	return &Params{
		Name:        "mainnet",
		Net:         0x642764e9,
		DefaultPort: "16125",
		DNSSeeds: []DNSSeed{
			{Host: "dnsseed.asoftwaresolution.com"},
			{Host: "dnsseed.zel.network"},
			{Host: "dnsseed.runonflux.io"},
		},

		GenesisBlock: genesis,
		GenesisHash:  mustHash("00052461a5006c2e3b74ce48992a08695607912d5604c3eb8da25749b0900444"),
		GenesisTime:  time.Unix(1_516_980_000, 0),

		SubsidySlowStartInterval:   5_000,
		SubsidyHalvingInterval:     655_350,
		PowInitialSubsidy:          75 * COIN,
		PoNSubsidyReductionInterval: 1_051_200,
		PoNMaxReductions:           20,
		PoNInitialSubsidy:          14,
		CoinbaseMaturity:           100,

		PowLimit:     hexToBig("0007ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
		PowLimitBits: 0x1f0007ff,
		PoNLimit:      hexToBig("0fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
		PoNStartLimit: hexToBig("000bffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),

		PowTargetSpacing:          120,
		PoNTargetSpacing:          30,
		DigishieldAveragingWindow: 17,
		DigishieldMaxAdjustDown:   32,
		DigishieldMaxAdjustUp:     16,
		PoNDifficultyWindow:       30,
		ZawyLWMAAveragingWindow:   60,

		EquihashEpochFadeLength: 11,
		EquihashEpoch1:          EquihashParams{N: 200, K: 9, SolutionSize: 1344},
		EquihashEpoch2:          EquihashParams{N: 144, K: 5, SolutionSize: 100},
		EquihashEpoch3:          EquihashParams{N: 125, K: 4, SolutionSize: 52},

		MajorityEnforceBlockUpgrade: 750,
		MajorityRejectBlockOutdated: 950,
		MajorityWindow:              4_000,

		Upgrades: [numUpgrades]NetworkUpgrade{
			BaseSprout: {ProtocolVersion: 170_002, ActivationHeight: AlwaysActiveHeight},
			TestDummy:  {ProtocolVersion: 170_002, ActivationHeight: NoActivationHeight},
			Lwma:       {ProtocolVersion: 170_002, ActivationHeight: 125_000},
			Equi1445:   {ProtocolVersion: 170_002, ActivationHeight: 125_100},
			Acadia: {
				ProtocolVersion:     170_007,
				ActivationHeight:    250_000,
				HashActivationBlock: hashPtr("0000001d65fa78f2f6c172a51b5aca59ee1927e51f728647fca21b180becfe59"),
			},
			Kamiooka: {
				ProtocolVersion:     170_012,
				ActivationHeight:    372_500,
				HashActivationBlock: hashPtr("00000052e2ac144c2872ff641c646e41dac166ac577bc9b0837f501aba19de4a"),
			},
			Kamata: {
				ProtocolVersion:     170_016,
				ActivationHeight:    558_000,
				HashActivationBlock: hashPtr("000000a33d38f37f586b843a9c8cf6d1ff1269e6114b34604cabcd14c44268d4"),
			},
			Flux: {
				ProtocolVersion:     170_017,
				ActivationHeight:    835_554,
				HashActivationBlock: hashPtr("000000ce99aa6765bdaae673cdf41f661ff20a116eb6f2fe0843488d8061f193"),
			},
			Halving: {
				ProtocolVersion:     170_018,
				ActivationHeight:    1_076_532,
				HashActivationBlock: hashPtr("000000111f8643ce24d9753dbc324220877299075a8a6102da61ef4460296325"),
			},
			P2ShNodes: {
				ProtocolVersion:     170_019,
				ActivationHeight:    1_549_500,
				HashActivationBlock: hashPtr("00000009f9178347f3dea495a089400050c3388e07f9c871fb1ebddcab1f8044"),
			},
			Pon: {ProtocolVersion: 170_020, ActivationHeight: 2_020_000},
		},

		MinimumChainWork: mustHash("000000000000000000000000000000000000000000000000000021f5d5da5d73"),
		Checkpoints:      mainnetCheckpoints,

		Funding: FundingParams{
			ExchangeAddress:   "t3PMbbA5YBMrjSD3dD16SSdXKuKovwmj6tS",
			ExchangeHeight:    836_274,
			ExchangeAmount:    7_500_000 * COIN,
			FoundationAddress: "t3XjYMBvwxnXVv9jqg4CgokZ3f7kAoXPQL8",
			FoundationHeight:  836_994,
			FoundationAmount:  2_500_000 * COIN,
			DevFundAddress:    "t3hPu1YDeGUCp8m7BQCnnNUmRMJBa5RadyA",
		},
		SwapPool: SwapPoolParams{
			Address:     "t3ThbWogDoAjGuS6DEnmN1GWJBRbVjSUK4T",
			StartHeight: 837_714,
			Amount:      22_000_000 * COIN,
			Interval:    21_600,
			MaxTimes:    10,
		},
		Emergency: EmergencyParams{
			PublicKeys:     mainnetEmergencyKeys,
			CollateralHash: mustHash("1111111111111111111111111111111111111111111111111111111111111111"),
			MinSignatures:  2,
		},
		Fluxnode: FluxnodeParams{
			StartPaymentsHeight:    560_000,
			CumulusTransitionStart: 1_076_532,
			CumulusTransitionEnd:   1_086_612,
			NimbusTransitionStart:  1_081_572,
			NimbusTransitionEnd:    1_092_372,
			StratusTransitionStart: 1_087_332,
			StratusTransitionEnd:   1_097_412,
		},

		MaxBlockSize:   2_000_000,
		MaxBlockSigOps: 20_000,
		MaxTxSize:      1_000_000,

		CoinbaseMustBeProtected: true,

		PubKeyHashAddrID: [2]byte{0x1c, 0xb8}, // base58 prefix "t1"
		ScriptHashAddrID: [2]byte{0x1c, 0xbd}, // base58 prefix "t3"
		PrivateKeyID:     0x80,
	}
}

func hexToBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("chaincfg: invalid hex constant " + s)
	}
	return n
}

func hashPtr(s string) *chainhash.Hash {
	h := mustHash(s)
	return &h
}
