// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "math/big"

// CompactToBig converts a compact representation of a whole number N, packed
// into an unsigned 32-bit number, to a big integer. The representation is similar to IEEE754 floating
// point numbers: the high 8 bits are the exponent (in bytes, base 256), and
// the low 23 bits are the mantissa, with the high bit of the mantissa byte
// reserved as a sign flag.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := uint(compact >> 24)

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(exponent-3))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}
	return bn
}

// BigToCompact converts a whole number N to a compact representation using
// an unsigned 32-bit number, losing precision beyond the top 3 significant
// mantissa bytes (as CompactToBig does).
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var isNegative bool
	var mantissa uint32
	exponent := uint(len(n.Bytes()))

	var tn *big.Int
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn = new(big.Int).Set(n)
		tn.Rsh(tn, 8*(exponent-3))
		mantissa = uint32(tn.Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	isNegative = n.Sign() < 0

	compact := uint32(exponent<<24) | mantissa
	if isNegative {
		compact |= 0x00800000
	}
	return compact
}

// CalcNextRequiredDifficulty retargets for the block following window,
// dispatching to DigiShield, LWMA or the PoN variant according to which
// algorithm DifficultyAlgorithmForHeight says is in force at nextHeight.
func (p *Params) CalcNextRequiredDifficulty(nextHeight int64, window []HeaderSample) uint32 {
	switch p.DifficultyAlgorithmForHeight(nextHeight) {
	case PoNAlgorithm:
		return p.CalcNextRequiredPoNDifficulty(window)
	case LWMAAlgorithm:
		return p.CalcNextRequiredDifficultyLWMA(window)
	default:
		return p.CalcNextRequiredDifficultyDigiShield(window)
	}
}

// HeaderSample is one ancestor header supplied to a retargeting function,
// ordered oldest first within the caller's window.
type HeaderSample struct {
	Timestamp int64
	Bits      uint32
}

// CalcNextRequiredDifficultyDigiShield computes the DigiShield-retargeted
// bits for the block that follows the DigishieldAveragingWindow most recent
// PoW headers (oldest first) given in window, clamped to at most
// DigishieldMaxAdjustUp/Down percent of the prior average and never looser
// than PowLimit.
func (p *Params) CalcNextRequiredDifficultyDigiShield(window []HeaderSample) uint32 {
	if len(window) == 0 {
		return BigToCompact(p.PowLimit)
	}

	actualTimespan := window[len(window)-1].Timestamp - window[0].Timestamp
	targetTimespan := p.DigishieldAveragingWindow * p.PowTargetSpacing

	minTimespan := targetTimespan * (100 - p.DigishieldMaxAdjustUp) / 100
	maxTimespan := targetTimespan * (100 + p.DigishieldMaxAdjustDown) / 100
	if actualTimespan < minTimespan {
		actualTimespan = minTimespan
	}
	if actualTimespan > maxTimespan {
		actualTimespan = maxTimespan
	}

	avgWork := averageWork(window)
	next := new(big.Int).Mul(avgWork, big.NewInt(actualTimespan))
	next.Div(next, big.NewInt(targetTimespan))

	if next.Cmp(p.PowLimit) > 0 {
		return BigToCompact(p.PowLimit)
	}
	return BigToCompact(next)
}

// CalcNextRequiredDifficultyLWMA computes the next POW target using a
// linearly weighted moving average (LWMA) over the ZawyLWMAAveragingWindow
// most recent PoW headers (oldest first) given in window, clamped to
// PowLimit. It is used from the Lwma upgrade until Pon activates, replacing
// DigiShield.
func (p *Params) CalcNextRequiredDifficultyLWMA(window []HeaderSample) uint32 {
	return lwmaRetarget(window, p.PowTargetSpacing, p.PowLimit, p.PowLimit)
}

// CalcNextRequiredPoNDifficulty computes the next PoN target using the same
// LWMA rule over the PoNDifficultyWindow most recent PoN headers (oldest
// first) given in window, clamped to PoNLimit; PoNStartLimit is returned
// when the window is too short to retarget from (the first few PoN blocks).
func (p *Params) CalcNextRequiredPoNDifficulty(window []HeaderSample) uint32 {
	return lwmaRetarget(window, p.PoNTargetSpacing, p.PoNLimit, p.PoNStartLimit)
}

// lwmaRetarget is the shared linearly weighted moving average core: each
// header's solve time (clamped to [-spacing, 6*spacing] to limit the damage
// a single timestamp outlier can do) is weighted by its recency, and the
// window's average target is scaled by the ratio of the weighted average
// solve time to the target spacing.
func lwmaRetarget(window []HeaderSample, targetSpacing int64, limit, startLimit *big.Int) uint32 {
	if len(window) < 2 {
		return BigToCompact(startLimit)
	}

	n := int64(len(window))
	weightedTimespan := int64(0)
	weightSum := int64(0)
	sumTarget := new(big.Int)

	for i := 1; i < len(window); i++ {
		weight := int64(i)
		solveTime := window[i].Timestamp - window[i-1].Timestamp
		if solveTime < -targetSpacing {
			solveTime = -targetSpacing
		}
		if solveTime > targetSpacing*6 {
			solveTime = targetSpacing * 6
		}
		weightedTimespan += solveTime * weight
		weightSum += weight

		target := CompactToBig(window[i].Bits)
		sumTarget.Add(sumTarget, target)
	}

	if weightedTimespan < n*targetSpacing/10 {
		weightedTimespan = n * targetSpacing / 10
	}

	avgTarget := sumTarget.Div(sumTarget, big.NewInt(n-1))
	next := new(big.Int).Mul(avgTarget, big.NewInt(weightedTimespan))
	next.Div(next, big.NewInt(weightSum*targetSpacing))

	if next.Cmp(limit) > 0 {
		return BigToCompact(limit)
	}
	if next.Sign() <= 0 {
		return BigToCompact(startLimit)
	}
	return BigToCompact(next)
}

// averageWork returns the mean amount of hashing work (1<<256 / (target+1))
// represented by the headers in window.
func averageWork(window []HeaderSample) *big.Int {
	sum := new(big.Int)
	for _, h := range window {
		target := CompactToBig(h.Bits)
		if target.Sign() <= 0 {
			continue
		}
		work := new(big.Int).Div(oneLsh256, new(big.Int).Add(target, bigOne))
		sum.Add(sum, work)
	}
	avgWork := sum.Div(sum, big.NewInt(int64(len(window))))
	if avgWork.Sign() <= 0 {
		return oneLsh256
	}
	return new(big.Int).Div(oneLsh256, avgWork)
}

var oneLsh256 = new(big.Int).Lsh(bigOne, 256)
