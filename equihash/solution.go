package equihash

import (
	"encoding/binary"
	"fmt"
)

// IndicesCount returns the number of indices a valid (n,k) solution encodes,
// i.e. 2^k.
func IndicesCount(k int) int {
	return powOf2(k)
}

// SolutionToIndices unpacks a minimal-encoding Equihash solution (the
// variable-length byte string carried in a block header) into the list of
// 2^k indices ValidateSolution expects. This reverses the bit-packing every
// Equihash-family chain uses to carry a solution: indices_count words, each
// collisionLength(n,k)+1 bits wide, densely packed big-endian.
func SolutionToIndices(n, k int, solution []byte) ([]int, error) {
	if err := validateEquihashParams(n, k); err != nil {
		return nil, err
	}
	count := IndicesCount(k)
	bitLen := collisionLength(n, k) + 1
	bytePad := 4 - (bitLen+7)/8
	expanded, err := expandArray(solution, count*4, bitLen, bytePad)
	if err != nil {
		return nil, fmt.Errorf("equihash: unpack solution: %w", err)
	}
	indices := make([]int, count)
	for i := 0; i < count; i++ {
		indices[i] = int(binary.BigEndian.Uint32(expanded[i*4 : i*4+4]))
	}
	return indices, nil
}
