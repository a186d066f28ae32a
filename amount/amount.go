// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package amount - fixed point decimal asset quantities
//
// an amount is an unbounded integer mantissa with a number of
// fractional digits fixed by the asset; a negative intermediate result
// renders with a leading 'N' and makes the enclosing command fail
package amount

import (
	"math/big"
	"strings"

	"github.com/bitmark-inc/permissiond/fault"
)

var (
	ErrBadAmountSyntax = fault.InvalidError("bad amount syntax")

	ten = big.NewInt(10)
)

// NegativeMarker - first byte of the representation of a negative result
const NegativeMarker = 'N'

// Amount - a fixed point decimal value
type Amount struct {
	value     *big.Int
	precision uint64
}

// Zero - the zero amount at a given precision
func Zero(precision uint64) Amount {
	return Amount{
		value:     big.NewInt(0),
		precision: precision,
	}
}

// NewFromString - parse "123" or "123.45"; precision is the number of
// fractional digits present
func NewFromString(s string) (Amount, error) {
	if "" == s {
		return Amount{}, ErrBadAmountSyntax
	}

	whole := s
	fraction := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole = s[:i]
		fraction = s[i+1:]
		if "" == fraction {
			return Amount{}, ErrBadAmountSyntax
		}
	}

	mantissa, ok := new(big.Int).SetString(whole+fraction, 10)
	if !ok || mantissa.Sign() < 0 {
		return Amount{}, ErrBadAmountSyntax
	}

	return Amount{
		value:     mantissa,
		precision: uint64(len(fraction)),
	}, nil
}

// FromStringRepr - parse a stored representation
//
// a stored value never carries the negative marker: commands refuse to
// write one
func FromStringRepr(s string, precision uint64) (Amount, error) {
	a, err := NewFromString(s)
	if nil != err {
		return Amount{}, err
	}
	return a.scaled(precision), nil
}

// Precision - number of fractional digits
func (a Amount) Precision() uint64 {
	return a.precision
}

// IsNegative - true after a subtraction went below zero
func (a Amount) IsNegative() bool {
	return nil != a.value && a.value.Sign() < 0
}

// IsZero - true for a zero value at any precision
func (a Amount) IsZero() bool {
	return nil == a.value || 0 == a.value.Sign()
}

// scaled - the same value at a precision at least as large
func (a Amount) scaled(precision uint64) Amount {
	if precision <= a.precision {
		return a
	}
	factor := new(big.Int).Exp(ten, big.NewInt(int64(precision-a.precision)), nil)
	return Amount{
		value:     new(big.Int).Mul(a.value, factor),
		precision: precision,
	}
}

// Add - sum at the larger of the two precisions
func (a Amount) Add(b Amount) Amount {
	precision := a.precision
	if b.precision > precision {
		precision = b.precision
	}
	x := a.scaled(precision)
	y := b.scaled(precision)
	return Amount{
		value:     new(big.Int).Add(x.value, y.value),
		precision: precision,
	}
}

// Sub - difference at the larger of the two precisions; may go negative
func (a Amount) Sub(b Amount) Amount {
	precision := a.precision
	if b.precision > precision {
		precision = b.precision
	}
	x := a.scaled(precision)
	y := b.scaled(precision)
	return Amount{
		value:     new(big.Int).Sub(x.value, y.value),
		precision: precision,
	}
}

// StringRepr - the storage and comparison form
//
// non-negative: decimal digits with exactly precision fractional digits
// negative: NegativeMarker followed by the absolute value
func (a Amount) StringRepr() string {
	if nil == a.value {
		return "0"
	}

	abs := new(big.Int).Abs(a.value)
	digits := abs.String()

	var s string
	if 0 == a.precision {
		s = digits
	} else {
		p := int(a.precision)
		for len(digits) <= p {
			digits = "0" + digits
		}
		s = digits[:len(digits)-p] + "." + digits[len(digits)-p:]
	}

	if a.value.Sign() < 0 {
		return string(NegativeMarker) + s
	}
	return s
}

// String - human readable form, '-' for negative
func (a Amount) String() string {
	s := a.StringRepr()
	if len(s) > 0 && NegativeMarker == s[0] {
		return "-" + s[1:]
	}
	return s
}
