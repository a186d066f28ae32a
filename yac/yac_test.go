// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package yac_test

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/wsv"
	"github.com/bitmark-inc/permissiond/yac"
)

// configure for testing
func setup(t *testing.T) func() {
	directory, err := os.MkdirTemp("", "yac-test")
	require.NoError(t, err, "temp dir")

	_ = logger.Initialise(logger.Configuration{
		Directory: directory,
		File:      "test.log",
		Size:      50000,
		Count:     10,
	})

	return func() {
		logger.Finalise()
		os.RemoveAll(directory)
	}
}

// a cluster of keyed test peers
type cluster struct {
	peers []wsv.Peer
	keys  []ed25519.PrivateKey
}

func newCluster(t *testing.T, size int) *cluster {
	c := &cluster{}
	for i := 0; i < size; i += 1 {
		publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err, "key %d", i)
		c.peers = append(c.peers, wsv.Peer{
			PublicKey: hex.EncodeToString(publicKey),
			Address:   "peer:2136",
		})
		c.keys = append(c.keys, privateKey)
	}
	return c
}

func (c *cluster) vote(i int, h yac.Hash) yac.Vote {
	return yac.NewVote(h, c.keys[i])
}

// nullTransport - swallows outbound state
type nullTransport struct {
	sync.Mutex
	sent int
}

func (n *nullTransport) SendState(peer wsv.Peer, votes []yac.Vote) error {
	n.Lock()
	defer n.Unlock()
	n.sent += 1
	return nil
}

func (n *nullTransport) sentCount() int {
	n.Lock()
	defer n.Unlock()
	return n.sent
}

func collectOutcomes() (func(yac.Outcome), *[]yac.Outcome, *sync.Mutex) {
	outcomes := &[]yac.Outcome{}
	mu := &sync.Mutex{}
	return func(o yac.Outcome) {
		mu.Lock()
		*outcomes = append(*outcomes, o)
		mu.Unlock()
	}, outcomes, mu
}

func testHash(r round.Round, seed string) yac.Hash {
	return yac.Hash{
		Round:        r,
		ProposalHash: digest.NewDigest([]byte("proposal " + seed)),
		BlockHash:    digest.NewDigest([]byte("block " + seed)),
	}
}

func TestSupermajorityArithmetic(t *testing.T) {
	bft := yac.NewSupermajorityChecker(yac.BFT)
	testCases := []struct {
		voted, total uint64
		expected     bool
	}{
		{3, 4, true},
		{2, 4, false},
		{3, 3, true},
		{2, 3, false},
		{5, 7, true},
		{4, 7, false},
		{1, 1, true},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, bft.HasSupermajority(testCase.voted, testCase.total),
			"BFT %d of %d", testCase.voted, testCase.total)
	}

	cft := yac.NewSupermajorityChecker(yac.CFT)
	assert.True(t, cft.HasSupermajority(3, 4), "CFT 3 of 4")
	assert.False(t, cft.HasSupermajority(2, 4), "CFT 2 of 4")
}

func TestCommitOnSupermajority(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	c := newCluster(t, 4)
	onOutcome, outcomes, mu := collectOutcomes()
	engine := yac.New(yac.NewSupermajorityChecker(yac.BFT), &nullTransport{}, c.keys[0], time.Minute, onOutcome)
	engine.UpdatePeers(c.peers)
	defer engine.Stop()

	h := testHash(round.Round{Block: 5}, "one")
	engine.OnState([]yac.Vote{c.vote(0, h), c.vote(1, h)})

	mu.Lock()
	assert.Empty(t, *outcomes, "two of four is not enough")
	mu.Unlock()

	engine.OnState([]yac.Vote{c.vote(2, h)})

	mu.Lock()
	require.Len(t, *outcomes, 1, "third vote settles the round")
	outcome := (*outcomes)[0]
	mu.Unlock()

	assert.Equal(t, yac.Committed, outcome.Kind, "commit")
	assert.Equal(t, h.BlockHash, outcome.BlockHash, "block hash")
	assert.Len(t, outcome.Votes, 3, "supporting votes")
}

func TestOutcomeEmittedExactlyOnce(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	c := newCluster(t, 4)
	onOutcome, outcomes, mu := collectOutcomes()
	engine := yac.New(yac.NewSupermajorityChecker(yac.BFT), &nullTransport{}, c.keys[0], time.Minute, onOutcome)
	engine.UpdatePeers(c.peers)
	defer engine.Stop()

	h := testHash(round.Round{Block: 5}, "one")
	votes := []yac.Vote{c.vote(0, h), c.vote(1, h), c.vote(2, h)}
	engine.OnState(votes)
	// duplicates and stragglers after termination are dropped silently
	engine.OnState(votes)
	engine.OnState([]yac.Vote{c.vote(3, h)})

	mu.Lock()
	assert.Len(t, *outcomes, 1, "exactly one outcome")
	mu.Unlock()
}

func TestRejectWhenUnreachable(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	c := newCluster(t, 4)
	onOutcome, outcomes, mu := collectOutcomes()
	engine := yac.New(yac.NewSupermajorityChecker(yac.BFT), &nullTransport{}, c.keys[0], time.Minute, onOutcome)
	engine.UpdatePeers(c.peers)
	defer engine.Stop()

	r := round.Round{Block: 6}
	a := testHash(r, "a")
	b := testHash(r, "b")
	// a 2/2 split of all four peers leaves no hash able to reach three
	engine.OnState([]yac.Vote{c.vote(0, a), c.vote(1, a), c.vote(2, b), c.vote(3, b)})

	mu.Lock()
	require.Len(t, *outcomes, 1, "reject proven")
	outcome := (*outcomes)[0]
	mu.Unlock()

	assert.Equal(t, yac.Rejected, outcome.Kind, "reject")
	assert.Equal(t, r, outcome.Round, "round")
	assert.Len(t, outcome.Votes, 4, "all votes carried")
}

func TestVotesFromUnknownPeersDropped(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	c := newCluster(t, 4)
	outsider := newCluster(t, 3)
	onOutcome, outcomes, mu := collectOutcomes()
	engine := yac.New(yac.NewSupermajorityChecker(yac.BFT), &nullTransport{}, c.keys[0], time.Minute, onOutcome)
	engine.UpdatePeers(c.peers)
	defer engine.Stop()

	h := testHash(round.Round{Block: 5}, "one")
	engine.OnState([]yac.Vote{
		c.vote(0, h),
		c.vote(1, h),
		outsider.vote(0, h), // not in the peer list
	})

	mu.Lock()
	assert.Empty(t, *outcomes, "outsider vote must not count")
	mu.Unlock()
}

func TestTamperedVoteDropped(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	c := newCluster(t, 4)
	onOutcome, outcomes, mu := collectOutcomes()
	engine := yac.New(yac.NewSupermajorityChecker(yac.BFT), &nullTransport{}, c.keys[0], time.Minute, onOutcome)
	engine.UpdatePeers(c.peers)
	defer engine.Stop()

	h := testHash(round.Round{Block: 5}, "one")
	forged := c.vote(0, h)
	forged.Hash.BlockHash = digest.NewDigest([]byte("forged block"))

	engine.OnState([]yac.Vote{forged, c.vote(1, h), c.vote(2, h), c.vote(3, h)})

	mu.Lock()
	require.Len(t, *outcomes, 1, "genuine votes still settle")
	assert.Equal(t, h.BlockHash, (*outcomes)[0].BlockHash, "forged vote ignored")
	mu.Unlock()
}

func TestVoteForBroadcastsAndTimesOut(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	c := newCluster(t, 3)
	network := &nullTransport{}
	onOutcome, _, _ := collectOutcomes()
	engine := yac.New(yac.NewSupermajorityChecker(yac.BFT), network, c.keys[0], 20*time.Millisecond, onOutcome)
	engine.UpdatePeers(c.peers)
	defer engine.Stop()

	h := testHash(round.Round{Block: 5}, "one")
	engine.VoteFor(h.Round, h.ProposalHash, h.BlockHash)

	// initial broadcast to all three peers
	assert.Equal(t, 3, network.sentCount(), "one send per peer")

	// with no outcome the timer fires and re-broadcasts
	assert.Eventually(t, func() bool {
		return network.sentCount() >= 6
	}, time.Second, 5*time.Millisecond, "timeout re-broadcast")
}

func TestTimerCancelIdempotent(t *testing.T) {
	fired := make(chan struct{}, 1)
	timer := yac.NewTimer(10*time.Millisecond, func() {
		fired <- struct{}{}
	})
	timer.Cancel()
	timer.Cancel()

	select {
	case <-fired:
		t.Fatal("cancelled timer must not fire")
	case <-time.After(50 * time.Millisecond):
	}
}
