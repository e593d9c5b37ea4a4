// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

// BlockSubsidy returns the miner's block reward at height, in the same base
// units as COIN.
//
// Below SubsidySlowStartInterval the reward ramps linearly from zero up to
// PowInitialSubsidy; at and after that height it halves every
// SubsidyHalvingInterval blocks. Once the Pon upgrade activates, the reward
// instead steps down from PoNInitialSubsidy every PoNSubsidyReductionInterval
// blocks, for at most PoNMaxReductions steps, after which it is fixed at
// whatever the final step left it at.
func (p *Params) BlockSubsidy(height int64) int64 {
	if p.Upgrades[Pon].Active(height) {
		return p.ponBlockSubsidy(height)
	}
	return p.powBlockSubsidy(height)
}

func (p *Params) powBlockSubsidy(height int64) int64 {
	slowStart := p.SubsidySlowStartInterval
	if slowStart > 0 && height < slowStart {
		return p.PowInitialSubsidy * height / slowStart
	}

	halvings := (height - slowStart) / p.SubsidyHalvingInterval
	if halvings >= 63 {
		return 0
	}
	return p.PowInitialSubsidy >> uint(halvings)
}

func (p *Params) ponBlockSubsidy(height int64) int64 {
	sincePon := height - p.Upgrades[Pon].ActivationHeight
	steps := sincePon / p.PoNSubsidyReductionInterval
	if steps > p.PoNMaxReductions {
		steps = p.PoNMaxReductions
	}

	subsidy := p.PoNInitialSubsidy * COIN
	for i := int64(0); i < steps; i++ {
		subsidy = subsidy * 95 / 100
	}
	return subsidy
}

// FundingPayout is one coinbase output a block at a given height must carry
// in addition to the miner/node subsidy.
type FundingPayout struct {
	Address string
	Amount  int64
}

// FundingStreamsAt returns the one-shot exchange/foundation grants and any
// periodic swap-pool payment due at height. A payout is included exactly
// once, at the height it is due; callers summing coinbase obligations should
// call this once per connected block, not retroactively.
func (p *Params) FundingStreamsAt(height int64) []FundingPayout {
	var payouts []FundingPayout

	if height == p.Funding.ExchangeHeight {
		payouts = append(payouts, FundingPayout{p.Funding.ExchangeAddress, p.Funding.ExchangeAmount})
	}
	if height == p.Funding.FoundationHeight {
		payouts = append(payouts, FundingPayout{p.Funding.FoundationAddress, p.Funding.FoundationAmount})
	}

	sp := p.SwapPool
	if sp.Interval > 0 && height >= sp.StartHeight {
		sinceStart := height - sp.StartHeight
		if sinceStart%sp.Interval == 0 {
			paymentNum := sinceStart / sp.Interval
			if paymentNum < sp.MaxTimes {
				payouts = append(payouts, FundingPayout{sp.Address, sp.Amount})
			}
		}
	}

	return payouts
}
