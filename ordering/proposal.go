// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ordering - on-demand transaction ordering
//
// batches gossip between peers and accumulate in the ordering service;
// when consensus starts a round the gate requests a proposal, the
// service packs cached batches into one, and the proposal feeds the
// voting pipeline
package ordering

import (
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/transaction"
	"github.com/bitmark-inc/permissiond/util"
	"github.com/bitmark-inc/permissiond/wsv"
)

// Proposal - ordered transactions offered for one round
type Proposal struct {
	Height       uint64
	CreatedTime  uint64
	Transactions []*transaction.Transaction
}

// Hash - digest over height, time and the ordered transaction hashes
func (p *Proposal) Hash() digest.Digest {
	packer := util.NewPacker()
	packer.Uint64(p.Height)
	packer.Uint64(p.CreatedTime)
	packer.Uint64(uint64(len(p.Transactions)))
	for _, tx := range p.Transactions {
		h := tx.Hash()
		packer.Bytes(h[:])
	}
	return digest.NewDigest(packer.Pack())
}

// Event - outcome of a proposal request for a round
type Event struct {
	Round       round.Round
	LedgerState wsv.LedgerState
	Proposal    *Proposal // nil when the ordering peer had nothing
}
