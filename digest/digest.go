// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package digest - the cryptographic digest used throughout the ledger
//
// SHA3-256 over canonical packed records; carried on the wire and in
// keys as lowercase hex
package digest

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/permissiond/fault"
)

// Length - number of bytes in the digest
const Length = 32

// Digest - type for a digest
//
// to convert to bytes just use d[:]
type Digest [Length]byte

// NewDigest - create a digest from a byte slice
func NewDigest(record []byte) Digest {
	return sha3.Sum256(record)
}

// String - convert a binary digest to lowercase hex for use by the fmt package (for %s)
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString - convert a binary digest to hex for use by the fmt package (for %#v)
func (digest Digest) GoString() string {
	return "<SHA3-256:" + hex.EncodeToString(digest[:]) + ">"
}

// MarshalText - convert digest to lowercase hex text
func (digest Digest) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(Length))
	hex.Encode(buffer, digest[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a digest
func (digest *Digest) UnmarshalText(s []byte) error {
	if hex.EncodedLen(Length) != len(s) {
		return fault.ErrKeyLength
	}
	byteCount, err := hex.Decode(digest[:], s)
	if nil != err {
		return err
	}
	if Length != byteCount {
		return fault.ErrKeyLength
	}
	return nil
}

// DigestFromHex - convert a lowercase hex string into a digest
func DigestFromHex(s string) (Digest, error) {
	var digest Digest
	err := digest.UnmarshalText([]byte(s))
	return digest, err
}

// IsEmpty - true for the all-zero digest
func (digest Digest) IsEmpty() bool {
	return digest == Digest{}
}

// ensure the fmt.Stringer contract stays satisfied
var _ fmt.Stringer = Digest{}
