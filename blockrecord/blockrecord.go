// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockrecord - the committed block record
//
// a block is a committed proposal: ordered transactions, the hashes of
// transactions rejected during simulation, and the previous block hash
// chaining the log together
package blockrecord

import (
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/transaction"
	"github.com/bitmark-inc/permissiond/util"
)

// GenesisHeight - the first block of every chain
const GenesisHeight uint64 = 1

// Block - one entry of the block log
type Block struct {
	Height         uint64
	PrevHash       digest.Digest
	CreatedTime    uint64
	Transactions   []*transaction.Transaction
	RejectedHashes []digest.Digest
	Signatures     []transaction.Signature
}

// payload - canonical bytes covered by the digest and the signatures
func (b *Block) payload() []byte {
	p := util.NewPacker()
	p.Uint64(b.Height)
	p.Bytes(b.PrevHash[:])
	p.Uint64(b.CreatedTime)
	p.Uint64(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		h := tx.Hash()
		p.Bytes(h[:])
	}
	p.Uint64(uint64(len(b.RejectedHashes)))
	for _, h := range b.RejectedHashes {
		p.Bytes(h[:])
	}
	return p.Pack()
}

// Hash - digest over the block payload, excluding signatures
func (b *Block) Hash() digest.Digest {
	return digest.NewDigest(b.payload())
}

// IsGenesis - block 1 is applied without stateless validation
func (b *Block) IsGenesis() bool {
	return GenesisHeight == b.Height
}

// TransactionHashes - ordered hashes of the carried transactions
func (b *Block) TransactionHashes() []digest.Digest {
	hashes := make([]digest.Digest, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.Hash()
	}
	return hashes
}

// Pack - canonical storage form including transaction bodies and
// signatures
func (b *Block) Pack() []byte {
	p := util.NewPacker()
	p.Uint64(b.Height)
	p.Bytes(b.PrevHash[:])
	p.Uint64(b.CreatedTime)
	p.Uint64(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		tx.PackInto(p)
	}
	p.Uint64(uint64(len(b.RejectedHashes)))
	for _, h := range b.RejectedHashes {
		p.Bytes(h[:])
	}
	p.Uint64(uint64(len(b.Signatures)))
	for _, s := range b.Signatures {
		p.String(s.PublicKey)
		p.String(s.Signature)
	}
	return p.Pack()
}

// Unpack - inverse of Pack
func Unpack(buffer []byte) (*Block, error) {
	u := util.NewUnpacker(buffer)

	b := &Block{
		Height: u.Uint64(),
	}
	prevHash := u.Bytes()
	if digest.Length != len(prevHash) {
		return nil, fault.InvalidError("truncated block record")
	}
	copy(b.PrevHash[:], prevHash)
	b.CreatedTime = u.Uint64()

	transactionCount := u.Uint64()
	for i := uint64(0); i < transactionCount; i += 1 {
		tx, err := transaction.UnpackFrom(u)
		if nil != err {
			return nil, err
		}
		b.Transactions = append(b.Transactions, tx)
	}

	rejectedCount := u.Uint64()
	for i := uint64(0); i < rejectedCount; i += 1 {
		raw := u.Bytes()
		if digest.Length != len(raw) {
			return nil, fault.InvalidError("truncated block record")
		}
		var h digest.Digest
		copy(h[:], raw)
		b.RejectedHashes = append(b.RejectedHashes, h)
	}

	signatureCount := u.Uint64()
	for i := uint64(0); i < signatureCount; i += 1 {
		b.Signatures = append(b.Signatures, transaction.Signature{
			PublicKey: u.String(),
			Signature: u.String(),
		})
	}

	if !u.Ok() {
		return nil, fault.InvalidError("truncated block record")
	}
	return b, nil
}
