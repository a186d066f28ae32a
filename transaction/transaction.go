// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transaction - signed command lists and their batches
package transaction

import (
	"encoding/hex"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/permissiond/command"
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/util"
)

// Signature - one signature over a transaction payload
//
// both fields are lowercase hex on the wire
type Signature struct {
	PublicKey string
	Signature string
}

// Transaction - an ordered command list from one creator
//
// the genesis block carries transactions with an empty creator
type Transaction struct {
	CreatorID   string
	CreatedTime uint64
	Quorum      uint64
	Commands    []command.Command
	Signatures  []Signature
}

// payload - canonical bytes covered by the digest and the signatures
func (tx *Transaction) payload() []byte {
	p := util.NewPacker()
	p.String(tx.CreatorID)
	p.Uint64(tx.CreatedTime)
	p.Uint64(tx.Quorum)
	p.Uint64(uint64(len(tx.Commands)))
	for _, c := range tx.Commands {
		c.PackInto(p)
	}
	return p.Pack()
}

// Hash - digest over the payload, excluding signatures
func (tx *Transaction) Hash() digest.Digest {
	return digest.NewDigest(tx.payload())
}

// Sign - append a signature made with an ed25519 private key
func (tx *Transaction) Sign(privateKey ed25519.PrivateKey) {
	publicKey := privateKey.Public().(ed25519.PublicKey)
	h := tx.Hash()
	tx.Signatures = append(tx.Signatures, Signature{
		PublicKey: hex.EncodeToString(publicKey),
		Signature: hex.EncodeToString(ed25519.Sign(privateKey, h[:])),
	})
}

// VerifySignatures - every attached signature must verify against the
// payload digest
func (tx *Transaction) VerifySignatures() error {
	h := tx.Hash()
	for _, s := range tx.Signatures {
		publicKey, err := hex.DecodeString(s.PublicKey)
		if nil != err || ed25519.PublicKeySize != len(publicKey) {
			return fault.ErrInvalidHexKey
		}
		signature, err := hex.DecodeString(s.Signature)
		if nil != err {
			return fault.ErrInvalidSignature
		}
		if !ed25519.Verify(ed25519.PublicKey(publicKey), h[:], signature) {
			return fault.ErrInvalidSignature
		}
	}
	return nil
}

// IsComplete - signature count has reached the transaction quorum
func (tx *Transaction) IsComplete() bool {
	return uint64(len(tx.Signatures)) >= tx.Quorum
}

// PackInto - canonical form including signatures, for the block log
func (tx *Transaction) PackInto(p *util.Packer) {
	p.Bytes(tx.payload())
	p.Uint64(uint64(len(tx.Signatures)))
	for _, s := range tx.Signatures {
		p.String(s.PublicKey)
		p.String(s.Signature)
	}
}

// UnpackFrom - read one transaction
func UnpackFrom(u *util.Unpacker) (*Transaction, error) {
	payload := util.NewUnpacker(u.Bytes())

	tx := &Transaction{
		CreatorID:   payload.String(),
		CreatedTime: payload.Uint64(),
		Quorum:      payload.Uint64(),
	}
	commandCount := payload.Uint64()
	for i := uint64(0); i < commandCount; i += 1 {
		c, err := command.UnpackFrom(payload)
		if nil != err {
			return nil, err
		}
		tx.Commands = append(tx.Commands, c)
	}
	if !payload.Ok() {
		return nil, fault.InvalidError("truncated transaction payload")
	}

	signatureCount := u.Uint64()
	for i := uint64(0); i < signatureCount; i += 1 {
		tx.Signatures = append(tx.Signatures, Signature{
			PublicKey: u.String(),
			Signature: u.String(),
		})
	}
	return tx, nil
}
