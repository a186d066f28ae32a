// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ordering

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/transaction"
	"github.com/bitmark-inc/permissiond/wsv"
)

// Transport - reaching remote ordering services
//
// implementations carry their own deadlines; a timed out proposal
// request reports an error and the gate proceeds with no proposal
type Transport interface {
	SendBatches(peer wsv.Peer, batches []*transaction.Batch) error
	RequestProposal(peer wsv.Peer, r round.Round) (*Proposal, error)
}

// Gate - per-node driver of the ordering service interactions
type Gate struct {
	sync.RWMutex // guards stopped and round state; Stop write-locks so
	// in-flight operations finish first

	log     *logger.L
	service *Service
	network Transport

	currentRound round.Round
	ledgerState  wsv.LedgerState
	stopped      bool
}

// NewGate - create the gate over the local service and a transport
func NewGate(service *Service, network Transport) *Gate {
	return &Gate{
		log:     logger.New("ordering-gate"),
		service: service,
		network: network,
	}
}

// PropagateBatch - hand a client batch to the local service and to the
// ordering peer of the current round
func (g *Gate) PropagateBatch(batch *transaction.Batch) {
	g.RLock()
	defer g.RUnlock()
	if g.stopped {
		return
	}

	g.service.OnBatches([]*transaction.Batch{batch})

	if peer, ok := OrderingPeerFor(g.currentRound, g.ledgerState); ok {
		if err := g.network.SendBatches(peer, []*transaction.Batch{batch}); nil != err {
			g.log.Warnf("batch propagation to %s failed: %s", peer.Address, err)
		}
	}
}

// ProcessRoundSwitch - consensus moved to a new round
//
// records the new ledger state, re-sends every cached batch to the new
// target peer, then requests a proposal and emits the resulting event
func (g *Gate) ProcessRoundSwitch(next round.Round, state wsv.LedgerState) *Event {
	g.Lock()
	defer g.Unlock()
	if g.stopped {
		return nil
	}

	g.currentRound = next
	g.ledgerState = state
	g.service.OnCollaborationOutcome(next)

	peer, ok := OrderingPeerFor(next, state)
	if !ok {
		g.log.Error("round switch with empty peer list")
		return nil
	}

	// the new target may never have seen batches sent to its
	// predecessor
	cached := []*transaction.Batch{}
	g.service.ForCachedBatches(func(batch *transaction.Batch) {
		cached = append(cached, batch)
	})
	if 0 != len(cached) {
		if err := g.network.SendBatches(peer, cached); nil != err {
			g.log.Warnf("batch re-send to %s failed: %s", peer.Address, err)
		}
	}

	proposal, err := g.network.RequestProposal(peer, next)
	if nil != err {
		g.log.Warnf("proposal request to %s failed: %s", peer.Address, err)
		proposal = nil
	}

	return g.processProposal(next, state, proposal)
}

// processProposal - strip replayed transactions and build the ordering
// event for consensus
func (g *Gate) processProposal(r round.Round, state wsv.LedgerState, proposal *Proposal) *Event {
	event := &Event{
		Round:       r,
		LedgerState: state,
	}
	if nil != proposal {
		event.Proposal = g.removeReplaysAndDuplicates(proposal)
	}
	return event
}

// removeReplaysAndDuplicates - drop transactions already on chain and
// repeats within the proposal itself
//
// returns nil when nothing survives
func (g *Gate) removeReplaysAndDuplicates(proposal *Proposal) *Proposal {
	seen := make(map[string]struct{})
	kept := []*transaction.Transaction{}
	for _, tx := range proposal.Transactions {
		h := tx.Hash()
		if g.service.IsCommitted(h) {
			g.log.Debugf("stripped replayed transaction %s", h)
			continue
		}
		if _, ok := seen[h.String()]; ok {
			continue
		}
		seen[h.String()] = struct{}{}
		kept = append(kept, tx)
	}

	if 0 == len(kept) {
		return nil
	}
	if len(kept) == len(proposal.Transactions) {
		return proposal
	}
	return &Proposal{
		Height:       proposal.Height,
		CreatedTime:  proposal.CreatedTime,
		Transactions: kept,
	}
}

// Stop - all subsequent operations become no-ops
//
// taking the write lock waits for in-flight operations to finish
func (g *Gate) Stop() {
	g.Lock()
	defer g.Unlock()
	g.stopped = true
}
