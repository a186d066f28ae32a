// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package yac - the BFT voting protocol
//
// peers exchange signed votes for (round, proposal hash, block hash);
// a supermajority commits the block, a proven impossibility rejects
// the round, and either outcome is emitted exactly once
package yac

import (
	"encoding/hex"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/util"
)

// Hash - what one vote endorses
type Hash struct {
	Round        round.Round
	ProposalHash digest.Digest
	BlockHash    digest.Digest
}

// Vote - a signed endorsement from one peer
//
// key and signature are lowercase hex on the wire
type Vote struct {
	Hash      Hash
	PublicKey string
	Signature string
}

// canonical bytes the signature covers
func (h Hash) signable() []byte {
	p := util.NewPacker()
	p.Uint64(h.Round.Block)
	p.Uint64(h.Round.Reject)
	p.Bytes(h.ProposalHash[:])
	p.Bytes(h.BlockHash[:])
	d := digest.NewDigest(p.Pack())
	return d[:]
}

// NewVote - sign a hash with this peer's key
func NewVote(h Hash, privateKey ed25519.PrivateKey) Vote {
	publicKey := privateKey.Public().(ed25519.PublicKey)
	return Vote{
		Hash:      h,
		PublicKey: hex.EncodeToString(publicKey),
		Signature: hex.EncodeToString(ed25519.Sign(privateKey, h.signable())),
	}
}

// Verify - the signature must match the claimed public key
func (v Vote) Verify() error {
	publicKey, err := hex.DecodeString(v.PublicKey)
	if nil != err || ed25519.PublicKeySize != len(publicKey) {
		return fault.ErrInvalidHexKey
	}
	signature, err := hex.DecodeString(v.Signature)
	if nil != err {
		return fault.ErrInvalidSignature
	}
	if !ed25519.Verify(ed25519.PublicKey(publicKey), v.Hash.signable(), signature) {
		return fault.ErrInvalidSignature
	}
	return nil
}
