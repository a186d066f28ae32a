// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package permutation

import (
	"encoding/binary"
)

// Seeder - folds seed material into a single engine seed
//
// full 8 byte words fold as seed = engine(seed ^ word).next(), one
// engine step per word; trailing bytes pack with an or-then-shift per
// byte into a final word
type Seeder struct {
	current uint64
}

// Feed - mix a byte slice into the seed
func (s *Seeder) Feed(seed []byte) *Seeder {
	full := len(seed) / 8 * 8
	for i := 0; i < full; i += 8 {
		s.feedWord(binary.LittleEndian.Uint64(seed[i : i+8]))
	}

	if full < len(seed) {
		tail := uint64(0)
		for _, b := range seed[full:] {
			tail |= uint64(b)
			tail <<= 8
		}
		s.feedWord(tail)
	}
	return s
}

func (s *Seeder) feedWord(word uint64) {
	s.current = NewEngine(s.current ^ word).Next()
}

// MakePrng - an engine seeded with the folded value
func (s *Seeder) MakePrng() *Engine {
	return NewEngine(s.current)
}

// NewSeededEngine - convenience: seed an engine from one byte slice
func NewSeededEngine(seed []byte) *Engine {
	s := &Seeder{}
	return s.Feed(seed).MakePrng()
}

// Generate - a permutation of 0…size-1
//
// the shuffle is a fixed sequence of swaps driven by the engine, kept
// exactly as the network expects it
func Generate(prng *Engine, size int) []int {
	if size <= 0 {
		return nil
	}
	p := make([]int, size)
	for i := range p {
		p[i] = i
	}
	for i := range p {
		j := int(prng.Next() % uint64(size))
		p[i], p[j] = p[j], p[i]
	}
	return p
}
