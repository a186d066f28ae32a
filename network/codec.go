// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package network - gossip transport between peers
//
// a single REP endpoint per node answers typed, length-delimited
// requests: batch delivery, vote state delivery and proposal
// request/response; payloads use the canonical packed forms so digests
// agree across nodes
package network

import (
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/ordering"
	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/transaction"
	"github.com/bitmark-inc/permissiond/util"
	"github.com/bitmark-inc/permissiond/yac"
)

// message type tags - first frame of every exchange
const (
	tagBatches         = "B"
	tagVotes           = "V"
	tagProposalRequest = "R"
	tagProposalReply   = "P"
	tagAck             = "A"
)

func packBatches(batches []*transaction.Batch) []byte {
	p := util.NewPacker()
	p.Uint64(uint64(len(batches)))
	for _, batch := range batches {
		batch.PackInto(p)
	}
	return p.Pack()
}

func unpackBatches(buffer []byte) ([]*transaction.Batch, error) {
	u := util.NewUnpacker(buffer)
	count := u.Uint64()
	batches := make([]*transaction.Batch, 0, count)
	for i := uint64(0); i < count; i += 1 {
		batch, err := transaction.UnpackBatchFrom(u)
		if nil != err {
			return nil, err
		}
		batches = append(batches, batch)
	}
	if !u.Ok() {
		return nil, fault.InvalidError("truncated batches message")
	}
	return batches, nil
}

func packVotes(votes []yac.Vote) []byte {
	p := util.NewPacker()
	p.Uint64(uint64(len(votes)))
	for _, vote := range votes {
		p.Uint64(vote.Hash.Round.Block)
		p.Uint64(vote.Hash.Round.Reject)
		p.Bytes(vote.Hash.ProposalHash[:])
		p.Bytes(vote.Hash.BlockHash[:])
		p.String(vote.PublicKey)
		p.String(vote.Signature)
	}
	return p.Pack()
}

func unpackVotes(buffer []byte) ([]yac.Vote, error) {
	u := util.NewUnpacker(buffer)
	count := u.Uint64()
	votes := make([]yac.Vote, 0, count)
	for i := uint64(0); i < count; i += 1 {
		vote := yac.Vote{}
		vote.Hash.Round.Block = u.Uint64()
		vote.Hash.Round.Reject = u.Uint64()
		if err := copyDigest(&vote.Hash.ProposalHash, u.Bytes()); nil != err {
			return nil, err
		}
		if err := copyDigest(&vote.Hash.BlockHash, u.Bytes()); nil != err {
			return nil, err
		}
		vote.PublicKey = u.String()
		vote.Signature = u.String()
		votes = append(votes, vote)
	}
	if !u.Ok() {
		return nil, fault.InvalidError("truncated votes message")
	}
	return votes, nil
}

func packRound(r round.Round) []byte {
	p := util.NewPacker()
	p.Uint64(r.Block)
	p.Uint64(r.Reject)
	return p.Pack()
}

func unpackRound(buffer []byte) (round.Round, error) {
	u := util.NewUnpacker(buffer)
	r := round.Round{
		Block:  u.Uint64(),
		Reject: u.Uint64(),
	}
	if !u.Ok() {
		return round.Round{}, fault.InvalidError("truncated round message")
	}
	return r, nil
}

// a proposal reply starts with a presence flag so "no proposal" is a
// valid answer
func packProposalReply(proposal *ordering.Proposal) []byte {
	p := util.NewPacker()
	if nil == proposal {
		p.Uint64(0)
		return p.Pack()
	}
	p.Uint64(1)
	p.Uint64(proposal.Height)
	p.Uint64(proposal.CreatedTime)
	p.Uint64(uint64(len(proposal.Transactions)))
	for _, tx := range proposal.Transactions {
		tx.PackInto(p)
	}
	return p.Pack()
}

func unpackProposalReply(buffer []byte) (*ordering.Proposal, error) {
	u := util.NewUnpacker(buffer)
	if 0 == u.Uint64() {
		if !u.Ok() {
			return nil, fault.InvalidError("truncated proposal message")
		}
		return nil, nil
	}

	proposal := &ordering.Proposal{
		Height:      u.Uint64(),
		CreatedTime: u.Uint64(),
	}
	count := u.Uint64()
	for i := uint64(0); i < count; i += 1 {
		tx, err := transaction.UnpackFrom(u)
		if nil != err {
			return nil, err
		}
		proposal.Transactions = append(proposal.Transactions, tx)
	}
	if !u.Ok() {
		return nil, fault.InvalidError("truncated proposal message")
	}
	return proposal, nil
}

func copyDigest(d *digest.Digest, raw []byte) error {
	if digest.Length != len(raw) {
		return fault.InvalidError("truncated digest")
	}
	copy(d[:], raw)
	return nil
}
