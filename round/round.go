// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package round - the consensus round identifier
//
// a round is a block height attempt plus a reject counter; commits
// advance the block part and reset the reject part, rejects advance
// only the reject part
package round

import (
	"fmt"
)

// FirstReject - initial reject counter of every fresh block round
const FirstReject uint64 = 0

// Round - identifies one consensus attempt
type Round struct {
	Block  uint64
	Reject uint64
}

// New - a round at a block height with the initial reject counter
func New(block uint64) Round {
	return Round{
		Block:  block,
		Reject: FirstReject,
	}
}

// NextCommit - the round following a committed block
func NextCommit(r Round) Round {
	return Round{
		Block:  r.Block + 1,
		Reject: FirstReject,
	}
}

// NextReject - the round following a rejected attempt
func NextReject(r Round) Round {
	return Round{
		Block:  r.Block,
		Reject: r.Reject + 1,
	}
}

// Compare - ordering: block part first, then reject part
func (r Round) Compare(other Round) int {
	switch {
	case r.Block < other.Block:
		return -1
	case r.Block > other.Block:
		return 1
	case r.Reject < other.Reject:
		return -1
	case r.Reject > other.Reject:
		return 1
	}
	return 0
}

// Less - strict ordering for sorting
func (r Round) Less(other Round) bool {
	return r.Compare(other) < 0
}

// String - display form
func (r Round) String() string {
	return fmt.Sprintf("{%d, %d}", r.Block, r.Reject)
}
