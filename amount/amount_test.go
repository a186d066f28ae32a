// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package amount_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permissiond/amount"
)

func TestParseAndRepr(t *testing.T) {
	testCases := []struct {
		in        string
		precision uint64
		repr      string
	}{
		{"0", 0, "0"},
		{"100.00", 2, "100.00"},
		{"0.001", 3, "0.001"},
		{"12345", 0, "12345"},
		{"1.2", 1, "1.2"},
	}

	for _, testCase := range testCases {
		a, err := amount.NewFromString(testCase.in)
		assert.NoError(t, err, "parse: %s", testCase.in)
		assert.Equal(t, testCase.precision, a.Precision(), "precision: %s", testCase.in)
		assert.Equal(t, testCase.repr, a.StringRepr(), "repr: %s", testCase.in)
	}
}

func TestParseRejects(t *testing.T) {
	for _, s := range []string{"", ".", "1.", "-5", "abc", "1.2.3"} {
		_, err := amount.NewFromString(s)
		assert.Error(t, err, "parse must fail: %q", s)
	}
}

func TestAddAlignsPrecision(t *testing.T) {
	a, _ := amount.NewFromString("1.5")
	b, _ := amount.NewFromString("0.25")
	sum := a.Add(b)
	assert.Equal(t, "1.75", sum.StringRepr(), "sum")
	assert.Equal(t, uint64(2), sum.Precision(), "sum precision")
}

func TestSubtractBelowZero(t *testing.T) {
	a, _ := amount.NewFromString("1.00")
	b, _ := amount.NewFromString("2.50")
	diff := a.Sub(b)
	assert.True(t, diff.IsNegative(), "negative flag")
	assert.Equal(t, "N1.50", diff.StringRepr(), "negative repr carries marker")
	assert.Equal(t, "-1.50", diff.String(), "printable form")
}

func TestStoredReprRoundTrip(t *testing.T) {
	a, _ := amount.NewFromString("100.00")
	restored, err := amount.FromStringRepr(a.StringRepr(), 2)
	assert.NoError(t, err, "restore")
	assert.Equal(t, a.StringRepr(), restored.StringRepr(), "round trip")
}

func TestZero(t *testing.T) {
	z := amount.Zero(2)
	assert.True(t, z.IsZero(), "zero flag")
	assert.Equal(t, "0.00", z.StringRepr(), "zero repr")
}
