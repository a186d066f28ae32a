// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package round_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permissiond/round"
)

func TestProgression(t *testing.T) {
	r := round.Round{Block: 5, Reject: 0}

	committed := round.NextCommit(r)
	assert.Equal(t, round.Round{Block: 6, Reject: 0}, committed, "commit advances block")

	rejected := round.NextReject(committed)
	assert.Equal(t, round.Round{Block: 6, Reject: 1}, rejected, "reject advances reject only")

	again := round.NextCommit(rejected)
	assert.Equal(t, round.Round{Block: 7, Reject: 0}, again, "commit resets reject")
}

func TestOrdering(t *testing.T) {
	a := round.Round{Block: 3, Reject: 9}
	b := round.Round{Block: 4, Reject: 0}
	c := round.Round{Block: 4, Reject: 1}

	assert.True(t, a.Less(b), "block part dominates")
	assert.True(t, b.Less(c), "reject part breaks ties")
	assert.Equal(t, 0, c.Compare(c), "equal rounds")
}
