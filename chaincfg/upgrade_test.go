// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "testing"

func TestNetworkUpgradeActive(t *testing.T) {
	tests := []struct {
		name   string
		height int64
		upg    NetworkUpgrade
		want   bool
	}{
		{"before activation", 99, NetworkUpgrade{ActivationHeight: 100}, false},
		{"at activation", 100, NetworkUpgrade{ActivationHeight: 100}, true},
		{"after activation", 200, NetworkUpgrade{ActivationHeight: 100}, true},
		{"never activates", 1_000_000, NetworkUpgrade{ActivationHeight: NoActivationHeight}, false},
		{"always active", 0, NetworkUpgrade{ActivationHeight: AlwaysActiveHeight}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var upgrades [numUpgrades]NetworkUpgrade
			upgrades[TestDummy] = tt.upg
			if got := NetworkUpgradeActive(tt.height, upgrades, TestDummy); got != tt.want {
				t.Errorf("NetworkUpgradeActive(%d) = %v, want %v", tt.height, got, tt.want)
			}
		})
	}
}

func TestCurrentEpochBranchID(t *testing.T) {
	p := RegNetParams()
	p.Upgrades[Lwma] = NetworkUpgrade{ProtocolVersion: 2, ActivationHeight: 100}
	p.Upgrades[Equi1445] = NetworkUpgrade{ProtocolVersion: 3, ActivationHeight: 200}
	p.Upgrades[Pon] = NetworkUpgrade{ProtocolVersion: 4, ActivationHeight: 300}

	tests := []struct {
		height int64
		want   uint32
	}{
		{0, p.Upgrades[BaseSprout].ProtocolVersion},
		{150, 2},
		{250, 3},
		{300, 4},
		{1000, 4},
	}
	for _, tt := range tests {
		if got := CurrentEpochBranchID(tt.height, p.Upgrades); got != tt.want {
			t.Errorf("CurrentEpochBranchID(%d) = %d, want %d", tt.height, got, tt.want)
		}
	}
}

func TestEquihashParamsForHeightOutsideFadeWindow(t *testing.T) {
	p := RegNetParams()
	p.EquihashEpochFadeLength = 10
	p.Upgrades[Equi1445] = NetworkUpgrade{ActivationHeight: 1000}

	primary, fallback := p.EquihashParamsForHeight(1)
	if primary != &p.EquihashEpoch1 || fallback != nil {
		t.Fatalf("deep in epoch 1: got primary=%v fallback=%v, want epoch1/nil", primary, fallback)
	}

	primary, fallback = p.EquihashParamsForHeight(5000)
	if primary != &p.EquihashEpoch2 || fallback != nil {
		t.Fatalf("deep in epoch 2: got primary=%v fallback=%v, want epoch2/nil", primary, fallback)
	}
}

func TestEquihashParamsForHeightInsideFadeWindow(t *testing.T) {
	p := RegNetParams()
	p.EquihashEpochFadeLength = 10
	p.Upgrades[Equi1445] = NetworkUpgrade{ActivationHeight: 1000}

	// Just after activation: primary is the new epoch, fallback the old one.
	primary, fallback := p.EquihashParamsForHeight(1005)
	if primary != &p.EquihashEpoch2 || fallback != &p.EquihashEpoch1 {
		t.Fatalf("just after activation: got primary=%v fallback=%v", primary, fallback)
	}

	// Just before activation: still epoch 1, but epoch 2 is an accepted
	// fallback since acceptance is the union of both epochs' params.
	primary, fallback = p.EquihashParamsForHeight(995)
	if primary != &p.EquihashEpoch1 || fallback != &p.EquihashEpoch2 {
		t.Fatalf("just before activation: got primary=%v fallback=%v", primary, fallback)
	}
}

func TestDifficultyAlgorithmForHeight(t *testing.T) {
	p := RegNetParams()
	p.Upgrades[Lwma] = NetworkUpgrade{ActivationHeight: 100}
	p.Upgrades[Pon] = NetworkUpgrade{ActivationHeight: 200}

	tests := []struct {
		height int64
		want   DifficultyAlgorithm
	}{
		{0, DigiShieldAlgorithm},
		{99, DigiShieldAlgorithm},
		{100, LWMAAlgorithm},
		{199, LWMAAlgorithm},
		{200, PoNAlgorithm},
		{1000, PoNAlgorithm},
	}
	for _, tt := range tests {
		if got := p.DifficultyAlgorithmForHeight(tt.height); got != tt.want {
			t.Errorf("DifficultyAlgorithmForHeight(%d) = %v, want %v", tt.height, got, tt.want)
		}
	}
}
