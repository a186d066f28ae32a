// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package synchronizer - applies consensus outcomes to the chain
//
// a commit outcome writes the decided block to the WSV and the block
// log and advances to the next block round; a reject advances the
// reject counter; either way a synchronization event reports the new
// round and ledger state for the ordering gate
package synchronizer

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/blockrecord"
	"github.com/bitmark-inc/permissiond/blockstore"
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/executor"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/wsv"
	"github.com/bitmark-inc/permissiond/yac"
)

// EventKind - what the round produced
type EventKind int

// event kinds
const (
	Commit EventKind = iota
	Reject
)

// Event - result of processing one consensus outcome
type Event struct {
	Kind            EventKind
	Round           round.Round // the round to run next
	LedgerState     wsv.LedgerState
	CommittedHashes []digest.Digest // transactions now on chain
}

// BlockCache - verified blocks held between voting and commit
type BlockCache interface {
	Get(hash digest.Digest) (*blockrecord.Block, bool)
}

// Synchronizer - the glue between consensus and storage
type Synchronizer struct {
	log    *logger.L
	view   *wsv.View
	exec   *executor.Executor
	blocks blockstore.Log
	cache  BlockCache
}

// New - create the synchronizer
func New(view *wsv.View, blocks blockstore.Log, cache BlockCache) *Synchronizer {
	return &Synchronizer{
		log:    logger.New("synchronizer"),
		view:   view,
		exec:   executor.New(view),
		blocks: blocks,
		cache:  cache,
	}
}

// ProcessOutcome - commit or reject one round
func (s *Synchronizer) ProcessOutcome(outcome yac.Outcome) (*Event, error) {
	switch outcome.Kind {

	case yac.Committed:
		// agreement on the empty hash is agreement that there was
		// nothing to order: the round rejects and moves on
		if outcome.BlockHash.IsEmpty() {
			state, _ := s.view.LedgerState()
			s.log.Infof("round %s agreed on no proposal", outcome.Round)
			return &Event{
				Kind:        Reject,
				Round:       round.NextReject(outcome.Round),
				LedgerState: state,
			}, nil
		}

		block, ok := s.cache.Get(outcome.BlockHash)
		if !ok {
			s.log.Errorf("decided block %s is not in the verified cache", outcome.BlockHash)
			return nil, fault.ErrBlockNotFound
		}

		// one store transaction for the whole block
		rejected, err := s.exec.ApplyBlock(block, false)
		if nil != err {
			return nil, err
		}
		if 0 != len(rejected) {
			s.log.Warnf("block %d carried %d rejected transactions", block.Height, len(rejected))
		}

		if err := s.blocks.Append(block); nil != err {
			return nil, err
		}

		state, _ := s.view.LedgerState()
		s.log.Infof("committed block %d: %s", block.Height, outcome.BlockHash)
		return &Event{
			Kind:            Commit,
			Round:           round.NextCommit(outcome.Round),
			LedgerState:     state,
			CommittedHashes: block.TransactionHashes(),
		}, nil

	case yac.Rejected:
		state, _ := s.view.LedgerState()
		s.log.Infof("round %s rejected", outcome.Round)
		return &Event{
			Kind:        Reject,
			Round:       round.NextReject(outcome.Round),
			LedgerState: state,
		}, nil
	}

	return nil, fault.ProcessError("unknown outcome kind")
}
