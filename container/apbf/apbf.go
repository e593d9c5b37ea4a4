// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package apbf implements an age-partitioned Bloom filter: a probabilistic
// set membership structure that, unlike a plain Bloom filter, forgets the
// elements it was given far enough in the past without ever needing an
// explicit reset. It's the right shape for "have I seen this recently"
// questions — duplicate inventory, recently-failed orphans, recently-tried
// peer addresses — where an unbounded set would grow forever and a single
// rolling generation would forget everything at once the moment it fills.
package apbf

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"sync"

	"github.com/dchest/siphash"
)

// generationCount is the number of aging partitions the filter rotates
// through. Splitting capacity across more generations ages entries out
// more smoothly (fewer at a time) at the cost of a slightly higher false
// positive rate for the same total bit budget.
const generationCount = 4

// Filter is a fixed-capacity, age-partitioned Bloom filter safe for
// concurrent use. Insert marks an item present; Contains tests for
// presence with a false-positive rate bounded by the rate the filter was
// constructed with, and a false-negative rate of zero for any item
// inserted within the last maxElements insertions.
type Filter struct {
	mu sync.Mutex

	k0, k1 uint64 // siphash key, generated once at construction

	numHashes   uint
	bitsPerGen  uint32
	generations [generationCount][]uint64 // bitset per generation, word-packed

	genCapacity  uint32 // insertions a generation absorbs before rotating
	genCount     uint32 // insertions absorbed by the current (newest) generation
	activeGen    int    // index of the newest generation
}

// NewFilter returns a filter sized to hold maxElements items at any given
// time with no more than falsePositiveRate probability of a false
// positive, using the classic optimal-k Bloom filter sizing formula
// spread across generationCount aging partitions.
func NewFilter(maxElements uint32, falsePositiveRate float64) *Filter {
	if maxElements == 0 {
		maxElements = 1
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.001
	}

	perGenElements := float64(maxElements) / (generationCount - 1)
	bitsPerGen := uint32(math.Ceil(-perGenElements * math.Log(falsePositiveRate) / (math.Ln2 * math.Ln2)))
	if bitsPerGen == 0 {
		bitsPerGen = 64
	}
	numHashes := uint(math.Round(float64(bitsPerGen) / perGenElements * math.Ln2))
	if numHashes == 0 {
		numHashes = 1
	}

	f := &Filter{
		numHashes:   numHashes,
		bitsPerGen:  bitsPerGen,
		genCapacity: uint32(math.Ceil(perGenElements)),
	}
	words := (bitsPerGen + 63) / 64
	for i := range f.generations {
		f.generations[i] = make([]uint64, words)
	}

	var keyBuf [16]byte
	if _, err := rand.Read(keyBuf[:]); err == nil {
		f.k0 = binary.LittleEndian.Uint64(keyBuf[:8])
		f.k1 = binary.LittleEndian.Uint64(keyBuf[8:])
	}

	return f
}

// Add marks data as present, rotating to a fresh generation (and
// discarding the oldest) once the current generation has absorbed its
// share of capacity.
func (f *Filter) Add(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.genCount >= f.genCapacity {
		f.rotateLocked()
	}
	f.genCount++

	h1, h2 := f.hashPair(data)
	gen := f.generations[f.activeGen]
	nbits := uint64(f.bitsPerGen)
	for i := uint(0); i < f.numHashes; i++ {
		bit := (h1 + uint64(i)*h2) % nbits
		gen[bit/64] |= 1 << (bit % 64)
	}
}

// Contains reports whether data was plausibly added within the last
// maxElements insertions. A false positive is possible; a false negative
// for a recently-added item is not.
func (f *Filter) Contains(data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	h1, h2 := f.hashPair(data)
	nbits := uint64(f.bitsPerGen)
	for _, gen := range f.generations {
		hit := true
		for i := uint(0); i < f.numHashes; i++ {
			bit := (h1 + uint64(i)*h2) % nbits
			if gen[bit/64]&(1<<(bit%64)) == 0 {
				hit = false
				break
			}
		}
		if hit {
			return true
		}
	}
	return false
}

// rotateLocked advances to the next generation slot, clearing it (it was
// the oldest live generation, now aged all the way out) and making it the
// new active generation. Callers must hold f.mu.
func (f *Filter) rotateLocked() {
	f.activeGen = (f.activeGen + 1) % generationCount
	gen := f.generations[f.activeGen]
	for i := range gen {
		gen[i] = 0
	}
	f.genCount = 0
}

// hashPair derives two 64-bit hashes of data from two SipHash calls, the
// second with the key halves swapped, used as the base of the standard
// Kirsch-Mitzenmacher
// double-hashing scheme for simulating numHashes independent hash
// functions.
func (f *Filter) hashPair(data []byte) (uint64, uint64) {
	h1 := siphash.Hash(f.k0, f.k1, data)
	h2 := siphash.Hash(f.k1, f.k0, data)
	return h1, h2
}
