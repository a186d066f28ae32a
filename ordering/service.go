// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ordering

import (
	"sort"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/counter"
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/transaction"
)

// defaults for the service knobs
const (
	DefaultTransactionLimit  = 1000
	DefaultProposalWindow    = 3
	presenceCacheExpiration  = 24 * time.Hour
	presenceCacheCleanup     = time.Hour
	maximumRoundsAheadServed = 2
)

// Service - the on-demand ordering service of this peer
type Service struct {
	proposalsLock sync.Mutex // guards proposals, rounds, currentRound
	batchesLock   sync.RWMutex

	log              *logger.L
	transactionLimit int
	proposalWindow   int

	// round → packed proposal; a nil entry records "nothing to propose"
	// so repeated requests do not re-pack
	proposals    map[round.Round]*Proposal
	rounds       []round.Round // sorted keys of proposals
	currentRound round.Round

	// pending batches in arrival order, de-duplicated by batch hash
	batches    map[digest.Digest]*transaction.Batch
	batchOrder []digest.Digest

	// hashes of transactions already committed or rejected on chain
	presence *cache.Cache

	packed   counter.Counter
	received counter.Counter

	now func() uint64
}

// NewService - create the service
func NewService(transactionLimit int, proposalWindow int) *Service {
	if transactionLimit <= 0 {
		transactionLimit = DefaultTransactionLimit
	}
	if proposalWindow <= 0 {
		proposalWindow = DefaultProposalWindow
	}
	return &Service{
		log:              logger.New("ordering-service"),
		transactionLimit: transactionLimit,
		proposalWindow:   proposalWindow,
		proposals:        make(map[round.Round]*Proposal),
		batches:          make(map[digest.Digest]*transaction.Batch),
		presence:         cache.New(presenceCacheExpiration, presenceCacheCleanup),
		now: func() uint64 {
			return uint64(time.Now().UnixNano() / int64(time.Millisecond))
		},
	}
}

// OnBatches - accept gossiped batches, ignoring replays and duplicates
func (s *Service) OnBatches(batches []*transaction.Batch) {
	s.batchesLock.Lock()
	defer s.batchesLock.Unlock()

	for _, batch := range batches {
		if s.batchAlreadyProcessed(batch) {
			continue
		}
		key := batch.Hash()
		if _, ok := s.batches[key]; ok {
			continue
		}
		s.batches[key] = batch
		s.batchOrder = append(s.batchOrder, key)
		s.received.Increment()
	}
	s.log.Debugf("onBatches: %d offered, %d cached", len(batches), len(s.batches))
}

// OnRequestProposal - serve a cached proposal, or pack a fresh one for
// the current round or the two rounds after it
//
// returns nil when there is nothing to propose; that answer is cached
// for the round as well
func (s *Service) OnRequestProposal(r round.Round) *Proposal {
	s.proposalsLock.Lock()
	defer s.proposalsLock.Unlock()

	if proposal, ok := s.proposals[r]; ok {
		return proposal
	}

	var distance uint64
	if r.Block == s.currentRound.Block {
		distance = r.Reject - s.currentRound.Reject
	} else {
		distance = r.Block - s.currentRound.Block
	}
	if distance > maximumRoundsAheadServed {
		s.log.Debugf("onRequestProposal: %s too far ahead of %s", r, s.currentRound)
		return nil
	}

	proposal := s.packProposal(r)
	s.proposals[r] = proposal
	s.rounds = append(s.rounds, r)
	sort.Slice(s.rounds, func(i, j int) bool {
		return s.rounds[i].Less(s.rounds[j])
	})
	return proposal
}

// OnCollaborationOutcome - a round finished; it becomes current and old
// proposals beyond the window are pruned
func (s *Service) OnCollaborationOutcome(r round.Round) {
	s.proposalsLock.Lock()
	defer s.proposalsLock.Unlock()

	s.log.Infof("onCollaborationOutcome: %s", r)
	s.currentRound = r

	// keep at most proposalWindow rounds below the current one
	keepFrom := 0
	firstNotLess := len(s.rounds)
	for i, existing := range s.rounds {
		if !existing.Less(r) {
			firstNotLess = i
			break
		}
	}
	if firstNotLess > s.proposalWindow {
		keepFrom = firstNotLess - s.proposalWindow
	}
	for _, stale := range s.rounds[:keepFrom] {
		delete(s.proposals, stale)
		s.log.Debugf("pruned proposal for %s", stale)
	}
	s.rounds = append([]round.Round{}, s.rounds[keepFrom:]...)
}

// OnTxsCommitted - transactions reached the chain: remember their
// hashes and evict the batches carrying them
func (s *Service) OnTxsCommitted(hashes []digest.Digest) {
	for _, h := range hashes {
		s.presence.Set(h.String(), struct{}{}, cache.DefaultExpiration)
	}

	s.batchesLock.Lock()
	defer s.batchesLock.Unlock()

	remaining := s.batchOrder[:0]
	for _, key := range s.batchOrder {
		batch := s.batches[key]
		removed := false
	match:
		for _, h := range hashes {
			if batch.ContainsHash(h) {
				delete(s.batches, key)
				removed = true
				break match
			}
		}
		if !removed {
			remaining = append(remaining, key)
		}
	}
	s.batchOrder = remaining
}

// IsCommitted - the transaction hash is known to be on chain
func (s *Service) IsCommitted(h digest.Digest) bool {
	_, ok := s.presence.Get(h.String())
	return ok
}

// ForCachedBatches - visit the cached batches in arrival order
func (s *Service) ForCachedBatches(visit func(batch *transaction.Batch)) {
	s.batchesLock.RLock()
	defer s.batchesLock.RUnlock()
	for _, key := range s.batchOrder {
		visit(s.batches[key])
	}
}

// HasProposal - a proposal (possibly empty) is cached for the round
func (s *Service) HasProposal(r round.Round) bool {
	s.proposalsLock.Lock()
	defer s.proposalsLock.Unlock()
	_, ok := s.proposals[r]
	return ok
}

// packProposal - copy whole batches in arrival order up to the
// transaction limit; packed batches stay cached until their
// transactions commit; reads run under the shared lock so gossip keeps
// flowing
func (s *Service) packProposal(r round.Round) *Proposal {
	s.batchesLock.RLock()
	defer s.batchesLock.RUnlock()

	transactions := []*transaction.Transaction{}
	for _, key := range s.batchOrder {
		batch := s.batches[key]
		if len(transactions)+batch.Size() > s.transactionLimit {
			break
		}
		transactions = append(transactions, batch.Transactions...)
	}

	if 0 == len(transactions) {
		s.log.Debugf("no transactions to create a proposal for %s", r)
		return nil
	}

	s.packed.Increment()
	s.log.Debugf("packed proposal for %s with %d transactions", r, len(transactions))
	return &Proposal{
		Height:       r.Block,
		CreatedTime:  s.now(),
		Transactions: transactions,
	}
}

// batchAlreadyProcessed - any committed transaction marks the whole
// batch as processed
func (s *Service) batchAlreadyProcessed(batch *transaction.Batch) bool {
	for _, tx := range batch.Transactions {
		if s.IsCommitted(tx.Hash()) {
			s.log.Warnf("duplicate transaction: %s", tx.Hash())
			return true
		}
	}
	return false
}

// ReadCounters - batches received and proposals packed
func (s *Service) ReadCounters() (uint64, uint64) {
	return s.received.Value(), s.packed.Value()
}
