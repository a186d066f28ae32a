// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package permutation_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permissiond/permutation"
)

// reference value for the standard MT19937-64 test vector: seed 5489,
// first output
func TestEngineReferenceVector(t *testing.T) {
	e := permutation.NewEngine(5489)
	assert.Equal(t, uint64(14514284786278117030), e.Next(), "first output for seed 5489")
	assert.Equal(t, uint64(4620546740167642908), e.Next(), "second output for seed 5489")
}

func TestSeederDeterminism(t *testing.T) {
	seed := []byte("0123456789abcdef0123456789abcdef")

	first := permutation.NewSeededEngine(seed)
	second := permutation.NewSeededEngine(seed)
	for i := 0; i < 16; i += 1 {
		assert.Equal(t, first.Next(), second.Next(), "output %d", i)
	}

	// a different seed must diverge
	other := permutation.NewSeededEngine([]byte("ffffffffffffffff"))
	assert.NotEqual(t, permutation.NewSeededEngine(seed).Next(), other.Next(), "different seeds")
}

func TestSeederTailBytes(t *testing.T) {
	// 9 bytes: one full word plus a single tail byte
	withTail := permutation.NewSeededEngine([]byte("01234567x"))
	without := permutation.NewSeededEngine([]byte("01234567"))
	assert.NotEqual(t, without.Next(), withTail.Next(), "tail byte must affect the seed")
}

func TestGenerateIsPermutation(t *testing.T) {
	p := permutation.Generate(permutation.NewSeededEngine([]byte("some block hash")), 7)
	sorted := append([]int{}, p...)
	sort.Ints(sorted)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, sorted, "all indices present once")
}

func TestGenerateDeterminism(t *testing.T) {
	seed := []byte("same block hash every node sees")
	first := permutation.Generate(permutation.NewSeededEngine(seed), 11)
	second := permutation.Generate(permutation.NewSeededEngine(seed), 11)
	assert.Equal(t, first, second, "same inputs, same permutation")
}

func TestGenerateEmpty(t *testing.T) {
	assert.Empty(t, permutation.Generate(permutation.NewEngine(1), 0), "empty peer list")
}
