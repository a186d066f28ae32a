// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permissiond/util"
)

func TestVarint64RoundTrip(t *testing.T) {
	for _, value := range []uint64{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 1 << 31, 1 << 62, ^uint64(0)} {
		encoded := util.ToVarint64(value)
		decoded, used := util.FromVarint64(encoded)
		assert.Equal(t, value, decoded, "value 0x%x", value)
		assert.Equal(t, len(encoded), used, "consumed bytes for 0x%x", value)
	}
}

func TestVarint64Truncated(t *testing.T) {
	encoded := util.ToVarint64(0x4000)
	_, used := util.FromVarint64(encoded[:1])
	assert.Equal(t, 0, used, "truncated buffer")
}

func TestPackerRoundTrip(t *testing.T) {
	p := util.NewPacker()
	p.Uint64(42).String("hello").Bytes([]byte{1, 2, 3})

	u := util.NewUnpacker(p.Pack())
	assert.Equal(t, uint64(42), u.Uint64(), "uint64")
	assert.Equal(t, "hello", u.String(), "string")
	assert.Equal(t, []byte{1, 2, 3}, u.Bytes(), "bytes")
	assert.True(t, u.Ok(), "fully consumed")
}

func TestUnpackerOverrun(t *testing.T) {
	u := util.NewUnpacker([]byte{0x05, 'a'})
	assert.Nil(t, u.Bytes(), "length exceeds buffer")
	assert.False(t, u.Ok(), "failed flag set")
}
