// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/util"
)

// Batch - transactions signed and ordered atomically
//
// indivisible for ordering and for the pending store
type Batch struct {
	Transactions []*Transaction
}

// NewBatch - wrap transactions into a batch
func NewBatch(txs ...*Transaction) *Batch {
	return &Batch{Transactions: txs}
}

// Hash - digest over the ordered transaction hashes
func (b *Batch) Hash() digest.Digest {
	p := util.NewPacker()
	for _, tx := range b.Transactions {
		h := tx.Hash()
		p.Bytes(h[:])
	}
	return digest.NewDigest(p.Pack())
}

// FirstTxHash - hash of the first transaction, identifies the batch in
// pagination
func (b *Batch) FirstTxHash() digest.Digest {
	if 0 == len(b.Transactions) {
		return digest.Digest{}
	}
	return b.Transactions[0].Hash()
}

// Size - number of transactions
func (b *Batch) Size() int {
	return len(b.Transactions)
}

// Creators - distinct creator accounts in first-seen order
func (b *Batch) Creators() []string {
	seen := make(map[string]struct{})
	creators := []string{}
	for _, tx := range b.Transactions {
		if _, ok := seen[tx.CreatorID]; !ok {
			seen[tx.CreatorID] = struct{}{}
			creators = append(creators, tx.CreatorID)
		}
	}
	return creators
}

// IsComplete - every transaction has reached its quorum
func (b *Batch) IsComplete() bool {
	for _, tx := range b.Transactions {
		if !tx.IsComplete() {
			return false
		}
	}
	return true
}

// ContainsHash - true if any transaction has the given hash
func (b *Batch) ContainsHash(h digest.Digest) bool {
	for _, tx := range b.Transactions {
		if tx.Hash() == h {
			return true
		}
	}
	return false
}

// PackInto - canonical form for the block log
func (b *Batch) PackInto(p *util.Packer) {
	p.Uint64(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		tx.PackInto(p)
	}
}

// UnpackBatchFrom - read one batch
func UnpackBatchFrom(u *util.Unpacker) (*Batch, error) {
	count := u.Uint64()
	b := &Batch{}
	for i := uint64(0); i < count; i += 1 {
		tx, err := UnpackFrom(u)
		if nil != err {
			return nil, err
		}
		b.Transactions = append(b.Transactions, tx)
	}
	return b, nil
}
