// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

// NetworkUpgradeActive reports whether the upgrade named by idx is active at
// height.
func NetworkUpgradeActive(height int64, upgrades [numUpgrades]NetworkUpgrade, idx UpgradeIndex) bool {
	return upgrades[idx].Active(height)
}

// CurrentEpochBranchID returns the protocol version of the highest-indexed
// upgrade active at height; this identifies the consensus rule set in force,
// and flows into transaction signature hashing and shielded verification.
func CurrentEpochBranchID(height int64, upgrades [numUpgrades]NetworkUpgrade) uint32 {
	branchID := upgrades[BaseSprout].ProtocolVersion
	for idx := UpgradeIndex(0); idx < numUpgrades; idx++ {
		if upgrades[idx].Active(height) {
			branchID = upgrades[idx].ProtocolVersion
		}
	}
	return branchID
}

// equihashEpochBoundary returns the epoch number (1, 2 or 3) in force at
// height with no fade window applied, along with the height at which that
// epoch took over (0 for epoch 1, which has been active since genesis).
func (p *Params) equihashEpochBoundary(height int64) (epoch int, boundary int64) {
	switch {
	case p.Upgrades[Kamata].Active(height):
		return 3, p.Upgrades[Kamata].ActivationHeight
	case p.Upgrades[Equi1445].Active(height):
		return 2, p.Upgrades[Equi1445].ActivationHeight
	default:
		return 1, 0
	}
}

func (p *Params) equihashParamsForEpoch(epoch int) *EquihashParams {
	switch epoch {
	case 3:
		return &p.EquihashEpoch3
	case 2:
		return &p.EquihashEpoch2
	default:
		return &p.EquihashEpoch1
	}
}

// nextEpochActivation returns the activation height of the epoch that
// follows epoch, if that upgrade is scheduled to ever activate.
func (p *Params) nextEpochActivation(epoch int) (height int64, ok bool) {
	var upgrade NetworkUpgrade
	switch epoch {
	case 1:
		upgrade = p.Upgrades[Equi1445]
	case 2:
		upgrade = p.Upgrades[Kamata]
	default:
		return 0, false
	}
	if upgrade.ActivationHeight == NoActivationHeight {
		return 0, false
	}
	return upgrade.ActivationHeight, true
}

// EquihashParamsForHeight returns the Equihash parameterization(s) valid at
// height. Within EquihashEpochFadeLength blocks of an epoch boundary, both
// the outgoing and incoming epoch's parameters are returned so a header may
// be validated under either; outside the fade window only the active
// epoch's params come back and fallback is nil. The fade window is checked
// on both sides of a boundary: just after an epoch activates (fallback to
// the epoch it replaced) and just before the next epoch activates (fallback
// to the epoch about to take over).
func (p *Params) EquihashParamsForHeight(height int64) (primary, fallback *EquihashParams) {
	epoch, boundary := p.equihashEpochBoundary(height)
	current := p.equihashParamsForEpoch(epoch)
	fade := int64(p.EquihashEpochFadeLength)

	if epoch > 1 && height-boundary <= fade {
		return current, p.equihashParamsForEpoch(epoch - 1)
	}
	if next, ok := p.nextEpochActivation(epoch); ok && next-height <= fade {
		return current, p.equihashParamsForEpoch(epoch + 1)
	}
	return current, nil
}

// DifficultyAlgorithm names the retargeting rule a header's bits field was
// produced under.
type DifficultyAlgorithm int

const (
	// DigiShieldAlgorithm is the original damped windowed-average
	// retarget, used from genesis until the Lwma upgrade.
	DigiShieldAlgorithm DifficultyAlgorithm = iota
	// LWMAAlgorithm is the linearly weighted moving average retarget used
	// from the Lwma upgrade until Pon activates.
	LWMAAlgorithm
	// PoNAlgorithm is the proof-of-nodes difficulty window used once Pon
	// activates; it retargets against PoNTargetSpacing rather than
	// PowTargetSpacing.
	PoNAlgorithm
)

// DifficultyAlgorithmForHeight returns the retarget rule in force for the
// block being built at height.
func (p *Params) DifficultyAlgorithmForHeight(height int64) DifficultyAlgorithm {
	switch {
	case p.Upgrades[Pon].Active(height):
		return PoNAlgorithm
	case p.Upgrades[Lwma].Active(height):
		return LWMAAlgorithm
	default:
		return DigiShieldAlgorithm
	}
}
