// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"math/big"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/excc-labs/fluxnoded/chaincfg"
	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/equihash"
	"github.com/excc-labs/fluxnoded/wire"
)

// MaxFutureBlockTime bounds how far a header's timestamp may sit ahead of
// locally adjusted network time before it is rejected as structurally bad.
const MaxFutureBlockTime = 2 * 60 * 60

// HeaderValidationFlags toggles expensive per-header checks. SkipPOW skips
// the POW/PoN and retarget checks. The header sync loop leaves it unset:
// its verify workers run ValidateHeaderPOW in parallel as an early pass and
// InsertHeadersBatch repeats the check when committing.
type HeaderValidationFlags struct {
	SkipPOW bool
}

// InsertResult is the per-header outcome of a batch insert.
type InsertResult struct {
	Hash  chainhash.Hash
	Entry HeaderEntry
}

// InsertHeadersBatch validates and commits a contiguous run of headers
// (headers[i+1].PrevBlock == headers[i].BlockHash()) atomically: either all
// headers are inserted or none are. POW/PoN verification runs unless flags
// disables it, matching the staged/commit split the header sync loop uses.
func (d *DB) InsertHeadersBatch(headers []*wire.BlockHeader, flags HeaderValidationFlags) ([]InsertResult, error) {
	d.writerMu.Lock()
	defer d.writerMu.Unlock()

	if len(headers) == 0 {
		return nil, nil
	}

	batch := new(leveldb.Batch)
	results := make([]InsertResult, 0, len(headers))
	cur := d.BestHeader()
	haveCur := cur.Hash != (chainhash.Hash{})

	var prevEntry HeaderEntry
	for i, h := range headers {
		hash := h.BlockHash()
		if i == 0 {
			existing, ok, err := d.HeaderEntryByHash(h.PrevBlock)
			if err != nil {
				return nil, err
			}
			if !ok && !(h.PrevBlock == chainhash.Hash{} && !haveCur) {
				return nil, ruleErrorf(ErrMissingParent, "header %s: parent %s not in index", hash, h.PrevBlock)
			}
			prevEntry = existing
		} else if h.PrevBlock != headers[i-1].BlockHash() {
			return nil, ruleErrorf(ErrMissingParent, "header batch not contiguous at index %d", i)
		}

		entry, err := d.validateHeader(h, hash, prevEntry, flags)
		if err != nil {
			return nil, err
		}
		d.stageHeaderPut(batch, entry)
		results = append(results, InsertResult{Hash: hash, Entry: entry})
		prevEntry = entry
	}

	// Advance best_header if this batch extends strictly beyond it by work.
	// best.ChainWork is nil on a store that has never had a header
	// committed (the zero-value BestHeader), so it can't be handed to
	// big.Int.Cmp directly.
	last := results[len(results)-1].Entry
	best := d.BestHeader()
	bestWork := best.ChainWork
	if bestWork == nil {
		bestWork = new(big.Int)
	}
	extendsBest := last.ChainWork.Cmp(bestWork) > 0
	if extendsBest {
		batch.Put(metaKey(metaKeyBestHeader), last.Hash[:])
	}

	if err := d.ldb.Write(batch, nil); err != nil {
		return nil, ruleErrorf(ErrStorage, "commit header batch: %v", err)
	}
	if extendsBest {
		d.tipMu.Lock()
		d.bestHeader = last
		d.tipMu.Unlock()
	}
	return results, nil
}

func (d *DB) stageHeaderPut(batch *leveldb.Batch, e HeaderEntry) {
	batch.Put(headerIndexKey(e.Hash), encodeHeaderEntry(e))
}

// validateHeader runs the per-header checks: a non-empty Equihash
// solution, a timestamp no further than MaxFutureBlockTime ahead, POW or
// PoN according to IsPoN plus the retarget check (both unless
// flags.SkipPOW), and the checkpoint match. Prev-hash linkage is checked
// by InsertHeadersBatch. No majority-version rejection rule is applied.
// prevEntry is the zero value when h is the genesis header.
func (d *DB) validateHeader(h *wire.BlockHeader, hash chainhash.Hash, prevEntry HeaderEntry, flags HeaderValidationFlags) (HeaderEntry, error) {
	isGenesis := h.PrevBlock == (chainhash.Hash{}) && prevEntry.Hash == (chainhash.Hash{}) && prevEntry.Height == 0 && prevEntry.ChainWork == nil

	if len(h.Solution) == 0 {
		return HeaderEntry{}, ruleError(ErrBadPOW, "empty equihash solution")
	}
	maxTime := time.Now().Add(MaxFutureBlockTime * time.Second)
	if h.Timestamp.After(maxTime) {
		return HeaderEntry{}, ruleErrorf(ErrBadTimestamp, "header %s: timestamp too far in future", hash)
	}

	var height int64
	if isGenesis {
		height = 0
	} else {
		height = prevEntry.Height + 1
	}

	if !flags.SkipPOW {
		if h.IsPoN() {
			if err := d.checkPoN(h, height); err != nil {
				return HeaderEntry{}, err
			}
		} else {
			if err := d.checkPOW(h, height); err != nil {
				return HeaderEntry{}, err
			}
		}
		if err := d.checkRetarget(h, height, prevEntry, isGenesis); err != nil {
			return HeaderEntry{}, err
		}
	}

	for _, cp := range d.params.Checkpoints {
		if cp.Height == height && cp.Hash != hash {
			return HeaderEntry{}, ruleErrorf(ErrCheckpointMismatch, "height %d: expected %s got %s", height, cp.Hash, hash)
		}
	}

	work := headerWork(h.Bits)
	chainWork := new(big.Int)
	if !isGenesis {
		chainWork.Add(prevEntry.ChainWork, work)
	} else {
		chainWork.Set(work)
	}

	skip := h.PrevBlock
	if !isGenesis {
		skipHeight := skipListHeight(height)
		skipHash, ok, err := d.HeaderAncestorHash(prevEntry, skipHeight)
		if err != nil {
			return HeaderEntry{}, err
		}
		if ok {
			skip = skipHash
		}
	}

	return HeaderEntry{
		Hash:      hash,
		PrevHash:  h.PrevBlock,
		Height:    height,
		Bits:      h.Bits,
		Time:      h.Timestamp.Unix(),
		ChainWork: chainWork,
		IsPoN:     h.IsPoN(),
		Skip:      skip,
	}, nil
}

// headerWork returns the proof-of-work contributed by a block with the
// given compact-bits target: 2^256 / (target+1), the standard chainwork
// metric.
func headerWork(bits uint32) *big.Int {
	target := chaincfg.CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}
	// work = 2^256 / (target + 1)
	denom := new(big.Int).Add(target, big.NewInt(1))
	max := new(big.Int).Lsh(big.NewInt(1), 256)
	return new(big.Int).Div(max, denom)
}

func (d *DB) checkPOW(h *wire.BlockHeader, height int64) error {
	primary, fallback := d.params.EquihashParamsForHeight(height)
	hdr := headerPreimage(h)
	ok, err := validateEquihashEither(hdr, h.Solution, primary, fallback)
	if err != nil {
		return ruleErrorf(ErrBadPOW, "equihash: %v", err)
	}
	if !ok {
		return ruleError(ErrBadPOW, "equihash solution invalid for active epoch(s)")
	}

	target := chaincfg.CompactToBig(h.Bits)
	hash := h.BlockHash()
	hashNum := hashToBig(hash)
	if hashNum.Cmp(target) > 0 {
		return ruleError(ErrBadPOW, "block hash exceeds target")
	}
	return nil
}

func validateEquihashEither(hdr []byte, solution []byte, primary, fallback *chaincfg.EquihashParams) (bool, error) {
	if primary != nil {
		n, k := int(primary.N), int(primary.K)
		indices, err := equihash.SolutionToIndices(n, k, solution)
		if err == nil {
			if ok, _ := equihash.ValidateSolution(n, k, hdr, indices); ok {
				return true, nil
			}
		}
	}
	if fallback != nil {
		n, k := int(fallback.N), int(fallback.K)
		indices, err := equihash.SolutionToIndices(n, k, solution)
		if err == nil {
			if ok, _ := equihash.ValidateSolution(n, k, hdr, indices); ok {
				return true, nil
			}
		}
	}
	return false, nil
}

// headerPreimage returns the portion of the header the Equihash solution
// commits to: every field up to (but excluding) the solution itself.
func headerPreimage(h *wire.BlockHeader) []byte {
	cp := *h
	cp.Solution = nil
	var buf [4 + 32 + 32 + 32 + 4 + 4 + 32]byte
	off := 0
	putU32(buf[off:], uint32(cp.Version))
	off += 4
	copy(buf[off:], cp.PrevBlock[:])
	off += 32
	copy(buf[off:], cp.MerkleRoot[:])
	off += 32
	copy(buf[off:], cp.FinalSaplingRoot[:])
	off += 32
	putU32(buf[off:], uint32(cp.Timestamp.Unix()))
	off += 4
	putU32(buf[off:], cp.Bits)
	off += 4
	copy(buf[off:], cp.Nonce[:])
	return buf[:]
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func hashToBig(h chainhash.Hash) *big.Int {
	// Block hashes are treated as little-endian numbers for target
	// comparison, matching the Bitcoin/Zcash family convention.
	reversed := make([]byte, len(h))
	for i, b := range h {
		reversed[len(h)-1-i] = b
	}
	return new(big.Int).SetBytes(reversed)
}

// ValidateHeaderPOW runs the proof-of-work (or proof-of-nodes) check alone,
// without retarget/checkpoint/persistence, so a caller can pre-validate many
// headers in parallel ahead of the writer lock. InsertHeadersBatch performs
// the same check again under the lock as the authoritative pass; this is a
// fail-fast optimization for header sync's commit loop, not a replacement
// for it.
func (d *DB) ValidateHeaderPOW(h *wire.BlockHeader, height int64) error {
	if h.IsPoN() {
		return d.checkPoN(h, height)
	}
	return d.checkPOW(h, height)
}

// checkPoN checks a proof-of-nodes header's preconditions: a non-empty
// block signature, and a collateral reference to a known, confirmed
// fluxnode record whose LastPaidHeight is not above height. The signature
// bytes themselves are not verified against the operator's key; the
// signature scheme is the fluxnode module's contract (out of core scope
// per the open design questions).
func (d *DB) checkPoN(h *wire.BlockHeader, height int64) error {
	if len(h.BlockSig) == 0 {
		return ruleError(ErrBadPoN, "missing block signature")
	}
	rec, ok, err := d.FluxnodeRecord(h.NodesCollateral)
	if err != nil {
		return err
	}
	if !ok {
		return ruleError(ErrBadPoN, "nodes_collateral does not reference a known fluxnode")
	}
	if !rec.Confirmed {
		return ruleError(ErrBadPoN, "nodes_collateral is not confirmed")
	}
	if rec.LastPaidHeight > height {
		return ruleError(ErrBadPoN, "nodes_collateral record is from the future")
	}
	return nil
}

func (d *DB) checkRetarget(h *wire.BlockHeader, height int64, prevEntry HeaderEntry, isGenesis bool) error {
	if isGenesis {
		return nil
	}
	algo := d.params.DifficultyAlgorithmForHeight(height)
	window, err := d.retargetWindow(prevEntry, algo)
	if err != nil {
		return err
	}
	var want uint32
	switch algo {
	case chaincfg.DigiShieldAlgorithm:
		want = d.params.CalcNextRequiredDifficultyDigiShield(window)
	case chaincfg.LWMAAlgorithm:
		want = d.params.CalcNextRequiredDifficultyLWMA(window)
	default:
		want = d.params.CalcNextRequiredPoNDifficulty(window)
	}
	if want != h.Bits {
		return ruleErrorf(ErrBadBits, "height %d: bits %08x want %08x", height, h.Bits, want)
	}
	return nil
}

// retargetWindow collects up to the retarget algorithm's window size worth
// of ancestor (timestamp, bits) samples ending at prevEntry, oldest first.
func (d *DB) retargetWindow(prevEntry HeaderEntry, algo chaincfg.DifficultyAlgorithm) ([]chaincfg.HeaderSample, error) {
	var size int
	switch algo {
	case chaincfg.DigiShieldAlgorithm:
		size = d.params.DigishieldAveragingWindow
	case chaincfg.LWMAAlgorithm:
		size = d.params.ZawyLWMAAveragingWindow
	default:
		size = d.params.PoNDifficultyWindow
	}
	samples := make([]chaincfg.HeaderSample, 0, size)
	cur := prevEntry
	for i := 0; i < size && cur.Height >= 0; i++ {
		samples = append(samples, chaincfg.HeaderSample{Timestamp: cur.Time, Bits: cur.Bits})
		if cur.Height == 0 {
			break
		}
		parent, ok, err := d.HeaderEntryByHash(cur.PrevHash)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		cur = parent
	}
	// Reverse into oldest-first order.
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}

// SetBestHeader rewinds the header-only tip pointer to hash without
// touching connected-block state, as used by the header-lead cap walk.
func (d *DB) SetBestHeader(hash chainhash.Hash) error {
	d.writerMu.Lock()
	defer d.writerMu.Unlock()

	entry, ok, err := d.HeaderEntryByHash(hash)
	if err != nil {
		return err
	}
	if !ok {
		return ruleErrorf(ErrMissingParent, "set_best_header: unknown hash %s", hash)
	}
	if err := d.ldb.Put(metaKey(metaKeyBestHeader), hash[:], nil); err != nil {
		return ruleErrorf(ErrStorage, "set_best_header: %v", err)
	}
	d.tipMu.Lock()
	d.bestHeader = entry
	d.tipMu.Unlock()
	return nil
}
