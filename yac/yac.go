// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package yac

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/wsv"
)

// DefaultVoteDelay - time to wait for missing votes before
// re-broadcasting our own state
const DefaultVoteDelay = 3000 * time.Millisecond

// storageWindow - newest rounds kept for stragglers
const storageWindow = 3

// OutcomeKind - how a round ended
type OutcomeKind int

// outcomes
const (
	Committed OutcomeKind = iota
	Rejected
)

// Outcome - terminal result of one round, emitted exactly once
type Outcome struct {
	Kind      OutcomeKind
	Round     round.Round
	BlockHash digest.Digest
	Votes     []Vote
}

// VoteTransport - sending vote state to other peers
type VoteTransport interface {
	SendState(peer wsv.Peer, votes []Vote) error
}

// per round vote bookkeeping
type roundState struct {
	votes   map[string]Vote // one vote per peer public key
	decided bool
}

// YAC - the voting engine
type YAC struct {
	sync.Mutex

	log       *logger.L
	checker   SupermajorityChecker
	network   VoteTransport
	onOutcome func(Outcome)

	privateKey ed25519.PrivateKey
	voteDelay  time.Duration

	peers   []wsv.Peer          // voting peers of the current ledger state
	keys    map[string]struct{} // pubkey membership for vote filtering
	storage map[round.Round]*roundState
	rounds  []round.Round // sorted keys of storage
	ownVote *Vote         // this peer's vote for the newest round
	timer   *Timer
}

// New - create the engine
//
// onOutcome runs on the caller's goroutine with no lock held
func New(checker SupermajorityChecker, network VoteTransport, privateKey ed25519.PrivateKey, voteDelay time.Duration, onOutcome func(Outcome)) *YAC {
	if voteDelay <= 0 {
		voteDelay = DefaultVoteDelay
	}
	return &YAC{
		log:        logger.New("yac"),
		checker:    checker,
		network:    network,
		onOutcome:  onOutcome,
		privateKey: privateKey,
		voteDelay:  voteDelay,
		keys:       make(map[string]struct{}),
		storage:    make(map[round.Round]*roundState),
	}
}

// UpdatePeers - replace the voting peer list; called on every round
// switch with the peers of the new ledger state
func (y *YAC) UpdatePeers(peers []wsv.Peer) {
	y.Lock()
	defer y.Unlock()
	y.peers = append([]wsv.Peer{}, peers...)
	y.keys = make(map[string]struct{})
	for _, peer := range peers {
		y.keys[peer.PublicKey] = struct{}{}
	}
}

// VoteFor - sign and propagate this peer's vote for a round
//
// votes for an empty proposal (all-zero hashes) drive reject rounds
func (y *YAC) VoteFor(r round.Round, proposalHash digest.Digest, blockHash digest.Digest) {
	vote := NewVote(Hash{
		Round:        r,
		ProposalHash: proposalHash,
		BlockHash:    blockHash,
	}, y.privateKey)

	y.Lock()
	y.ownVote = &vote
	if nil != y.timer {
		y.timer.Cancel()
	}
	y.timer = NewTimer(y.voteDelay, y.onVoteTimeout)
	peers := append([]wsv.Peer{}, y.peers...)
	y.Unlock()

	y.log.Debugf("vote for %s: block %s", r, blockHash)
	y.broadcast(peers, []Vote{vote})
	y.OnState([]Vote{vote})
}

// OnState - receive a batch of votes from the network (or ourselves)
func (y *YAC) OnState(votes []Vote) {
	outcomes := []Outcome{}

	y.Lock()
	for _, vote := range votes {
		if err := vote.Verify(); nil != err {
			y.log.Warnf("dropping vote with bad signature from %s", vote.PublicKey)
			continue
		}
		if _, ok := y.keys[vote.PublicKey]; !ok {
			y.log.Warnf("dropping vote from unknown peer %s", vote.PublicKey)
			continue
		}

		state := y.roundStateFor(vote.Hash.Round)
		if state.decided {
			// terminal: late votes are dropped silently
			continue
		}
		state.votes[vote.PublicKey] = vote

		if outcome, ok := y.findOutcome(vote.Hash.Round, state); ok {
			state.decided = true
			outcomes = append(outcomes, outcome)
		}
	}
	if 0 != len(outcomes) {
		if nil != y.timer {
			y.timer.Cancel()
		}
		y.pruneLocked()
	}
	y.Unlock()

	for _, outcome := range outcomes {
		y.log.Infof("round %s decided: %v", outcome.Round, outcome.Kind)
		if nil != y.onOutcome {
			y.onOutcome(outcome)
		}
	}
}

// findOutcome - commit on any supermajority pair, reject once no pair
// can reach one
func (y *YAC) findOutcome(r round.Round, state *roundState) (Outcome, bool) {
	total := uint64(len(y.peers))
	voted := uint64(len(state.votes))

	counts := make(map[Hash]uint64)
	for _, vote := range state.votes {
		counts[vote.Hash] += 1
	}

	anyReachable := false
	for h, count := range counts {
		if y.checker.HasSupermajority(count, total) {
			return Outcome{
				Kind:      Committed,
				Round:     r,
				BlockHash: h.BlockHash,
				Votes:     votesFor(state, h),
			}, true
		}
		if y.checker.CanStillReach(count, voted, total) {
			anyReachable = true
		}
	}

	// an unseen pair could still gather all remaining votes
	if y.checker.CanStillReach(0, voted, total) {
		anyReachable = true
	}

	if !anyReachable {
		return Outcome{
			Kind:  Rejected,
			Round: r,
			Votes: allVotes(state),
		}, true
	}
	return Outcome{}, false
}

// onVoteTimeout - nobody settled the round in time: re-broadcast our
// state so stragglers catch up
func (y *YAC) onVoteTimeout() {
	y.Lock()
	vote := y.ownVote
	peers := append([]wsv.Peer{}, y.peers...)
	if nil != vote {
		if state, ok := y.storage[vote.Hash.Round]; ok && state.decided {
			vote = nil
		}
	}
	if nil != vote {
		y.timer = NewTimer(y.voteDelay, y.onVoteTimeout)
	}
	y.Unlock()

	if nil == vote {
		return
	}
	y.log.Debugf("vote timeout for %s, re-broadcasting", vote.Hash.Round)
	y.broadcast(peers, []Vote{*vote})
}

// Stop - cancel any pending timer
func (y *YAC) Stop() {
	y.Lock()
	defer y.Unlock()
	if nil != y.timer {
		y.timer.Cancel()
	}
}

func (y *YAC) broadcast(peers []wsv.Peer, votes []Vote) {
	for _, peer := range peers {
		if err := y.network.SendState(peer, votes); nil != err {
			y.log.Debugf("vote send to %s failed: %s", peer.Address, err)
		}
	}
}

func (y *YAC) roundStateFor(r round.Round) *roundState {
	state, ok := y.storage[r]
	if !ok {
		state = &roundState{
			votes: make(map[string]Vote),
		}
		y.storage[r] = state
		y.rounds = append(y.rounds, r)
		sort.Slice(y.rounds, func(i, j int) bool {
			return y.rounds[i].Less(y.rounds[j])
		})
	}
	return state
}

// pruneLocked - cleanup strategy: drop all but the newest rounds
func (y *YAC) pruneLocked() {
	if len(y.rounds) <= storageWindow {
		return
	}
	cut := len(y.rounds) - storageWindow
	for _, stale := range y.rounds[:cut] {
		delete(y.storage, stale)
	}
	y.rounds = append([]round.Round{}, y.rounds[cut:]...)
}

func votesFor(state *roundState, h Hash) []Vote {
	votes := []Vote{}
	for _, vote := range state.votes {
		if vote.Hash == h {
			votes = append(votes, vote)
		}
	}
	return votes
}

func allVotes(state *roundState) []Vote {
	votes := []Vote{}
	for _, vote := range state.votes {
		votes = append(votes, vote)
	}
	return votes
}
