// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/wire"
)

// UpgradeIndex is an ordered index into a Params' Upgrades array. Each
// value names a network upgrade that took effect at some height; the array
// order is itself meaningful since CurrentEpochBranchID walks it forward.
type UpgradeIndex int

const (
	// BaseSprout is the genesis rule set: always active.
	BaseSprout UpgradeIndex = iota
	// TestDummy is reserved for tests; never activates on a real network.
	TestDummy
	// Lwma switches POW difficulty retargeting from DigiShield to LWMA.
	// It predates proof-of-nodes; PoN retargeting is a separate algorithm
	// selected once Pon itself activates.
	Lwma
	// Equi1445 switches the Equihash epoch to epoch 2 (n=144,k=5).
	Equi1445
	// Acadia is a consensus-rule upgrade.
	Acadia
	// Kamiooka is a consensus-rule upgrade.
	Kamiooka
	// Kamata switches the Equihash epoch to epoch 3 (zelhash).
	Kamata
	// Flux allows transparent spends of coinbase outputs and renames the
	// chain's rule set.
	Flux
	// Halving names the post-PoN subsidy step-down upgrade. BlockSubsidy
	// does not read this entry: its step-down schedule starts at Pon's
	// activation height.
	Halving
	// P2ShNodes allows fluxnode collateral to be a P2SH output.
	P2ShNodes
	// Pon switches block production from Equihash PoW to proof-of-nodes.
	Pon

	// numUpgrades is a sentinel giving the array length; it is not itself a
	// valid upgrade index.
	numUpgrades
)

// NoActivationHeight and AlwaysActiveHeight are the sentinel activation
// heights for an upgrade that never activates or that has been active since
// genesis, respectively.
const (
	NoActivationHeight    = -1
	AlwaysActiveHeight    = 0
)

// NetworkUpgrade describes one consensus-rule transition: the protocol
// version advertised once active, the height it activates at, and
// (optionally) the hash the block at that height must have.
type NetworkUpgrade struct {
	ProtocolVersion    uint32
	ActivationHeight   int64
	HashActivationBlock *chainhash.Hash
}

// Active reports whether the upgrade is in effect at height.
func (u NetworkUpgrade) Active(height int64) bool {
	return u.ActivationHeight != NoActivationHeight && height >= u.ActivationHeight
}

// EquihashParams names one Equihash parameterization (n, k) and the encoded
// solution's byte length.
type EquihashParams struct {
	N            uint8
	K            uint8
	SolutionSize uint16
}

// Checkpoint identifies a block that must exist with a specific hash at a
// specific height; it is an additional, out-of-band consensus constraint.
type Checkpoint struct {
	Height int64
	Hash   chainhash.Hash
}

// EmergencyParams configures the emergency multisig that can countersign a
// recovery transaction spending the named collateral.
type EmergencyParams struct {
	PublicKeys      []string
	CollateralHash  chainhash.Hash
	MinSignatures   int
}

// FundingParams are the one-shot exchange/foundation coinbase grants.
type FundingParams struct {
	ExchangeAddress    string
	ExchangeHeight     int64
	ExchangeAmount     int64
	FoundationAddress  string
	FoundationHeight   int64
	FoundationAmount   int64
	DevFundAddress     string
}

// SwapPoolParams is the periodic swap-pool coinbase grant: Amount paid to
// Address every Interval blocks, starting at StartHeight, for at most
// MaxTimes payments.
type SwapPoolParams struct {
	Address     string
	StartHeight int64
	Amount      int64
	Interval    int64
	MaxTimes    int64
}

// TimedPublicKey is a public key that is only valid for fluxnode benchmarking
// or P2SH-collateral signing from a given height onward.
type TimedPublicKey struct {
	Key       string
	ValidFrom int64
}

// FluxnodeParams configures proof-of-nodes bookkeeping: when node payments
// begin, the operator keys recognized for benchmarking/P2SH attestations,
// and the height windows during which each collateral tier transitions to
// its successor tier.
type FluxnodeParams struct {
	StartPaymentsHeight     int64
	BenchmarkingPublicKeys  []TimedPublicKey
	P2SHPublicKeys          []TimedPublicKey
	CumulusTransitionStart  int64
	CumulusTransitionEnd    int64
	NimbusTransitionStart   int64
	NimbusTransitionEnd     int64
	StratusTransitionStart  int64
	StratusTransitionEnd    int64
}

// DNSSeed identifies a DNS seed along with a flag indicating whether it
// supports filtering by service bits.
type DNSSeed struct {
	Host             string
	HasFiltering     bool
}

// Params defines a Zcash-family network by tying together its genesis
// block, its consensus rule schedule (subsidy, difficulty, upgrades,
// Equihash epochs), and its funding/fluxnode configuration.
type Params struct {
	Name        string
	Net         uint32
	DefaultPort string
	DNSSeeds    []DNSSeed

	// Genesis.
	GenesisBlock *wire.MsgBlock
	GenesisHash  chainhash.Hash
	GenesisTime  time.Time

	// Subsidy.
	SubsidySlowStartInterval int64
	SubsidyHalvingInterval   int64
	PowInitialSubsidy        int64
	PoNSubsidyReductionInterval int64
	PoNMaxReductions         int64
	PoNInitialSubsidy        int64
	CoinbaseMaturity         int64

	// Difficulty.
	PowLimit                  *big.Int
	PowLimitBits               uint32
	PoNLimit                   *big.Int
	PoNStartLimit              *big.Int
	PowTargetSpacing           int64
	PoNTargetSpacing           int64
	DigishieldAveragingWindow  int64
	DigishieldMaxAdjustDown    int64
	DigishieldMaxAdjustUp      int64
	PoNDifficultyWindow        int64
	ZawyLWMAAveragingWindow    int64

	// Equihash epoch schedule.
	EquihashEpochFadeLength uint64
	EquihashEpoch1          EquihashParams
	EquihashEpoch2          EquihashParams
	EquihashEpoch3          EquihashParams

	// Majority-version rejection (BIP 34 style).
	MajorityEnforceBlockUpgrade int64
	MajorityRejectBlockOutdated int64
	MajorityWindow              int64

	// Network upgrades, indexed by UpgradeIndex.
	Upgrades [numUpgrades]NetworkUpgrade

	MinimumChainWork chainhash.Hash
	Checkpoints      []Checkpoint

	Funding   FundingParams
	SwapPool  SwapPoolParams
	Emergency EmergencyParams
	Fluxnode  FluxnodeParams

	MaxBlockSize   int
	MaxBlockSigOps int
	MaxTxSize      int

	CoinbaseMustBeProtected bool

	// Transparent address version prefixes (base58Check, two bytes as
	// Zcash-derived chains use — unlike Bitcoin's single version byte).
	PubKeyHashAddrID [2]byte
	ScriptHashAddrID [2]byte
	PrivateKeyID     byte
}

// NumUpgrades returns the length of the Upgrades array, primarily for tests
// that iterate over it.
func NumUpgrades() int { return int(numUpgrades) }

var bigOne = big.NewInt(1)

// COIN is the number of base units in one whole coin, used throughout the
// funding and subsidy constants below.
const COIN = 100_000_000
