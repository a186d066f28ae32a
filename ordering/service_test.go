// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ordering_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/command"
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/ordering"
	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/transaction"
)

var uniqueTime uint64

func getUniqueTime() uint64 {
	uniqueTime += 1
	return uniqueTime
}

// configure for testing
func setup(t *testing.T) func() {
	directory, err := os.MkdirTemp("", "ordering-test")
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

func makeBatch(creator string, transactionCount int) *transaction.Batch {
	txs := make([]*transaction.Transaction, transactionCount)
	for i := range txs {
		txs[i] = &transaction.Transaction{
			CreatorID:   creator,
			CreatedTime: getUniqueTime(),
			Quorum:      1,
			Commands: []command.Command{
				command.SetAccountDetail{AccountID: creator, Key: "k", Value: "v"},
			},
		}
	}
	return transaction.NewBatch(txs...)
}

func TestProposalPacksWholeBatchesInArrivalOrder(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	service := ordering.NewService(5, 3)
	first := makeBatch("alice@d", 2)
	second := makeBatch("bob@d", 2)
	third := makeBatch("carol@d", 2)
	service.OnBatches([]*transaction.Batch{first, second, third})

	proposal := service.OnRequestProposal(round.Round{Block: 1})
	require.NotNil(t, proposal, "proposal packed")
	// 5-transaction limit fits two whole batches, the third must not be split
	require.Len(t, proposal.Transactions, 4, "whole batches only")
	assert.Equal(t, first.Transactions[0].Hash(), proposal.Transactions[0].Hash(), "arrival order kept")
	assert.Equal(t, second.Transactions[0].Hash(), proposal.Transactions[2].Hash(), "second batch follows")
}

func TestProposalCachedPerRound(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	service := ordering.NewService(10, 3)
	service.OnBatches([]*transaction.Batch{makeBatch("alice@d", 1)})

	r := round.Round{Block: 1}
	first := service.OnRequestProposal(r)
	require.NotNil(t, first, "first request packs")

	// new batches after packing must not alter the cached proposal
	service.OnBatches([]*transaction.Batch{makeBatch("bob@d", 1)})
	second := service.OnRequestProposal(r)
	assert.Equal(t, first.Hash(), second.Hash(), "same proposal served")
}

func TestEmptyCacheStoresNoProposal(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	service := ordering.NewService(10, 3)
	r := round.Round{Block: 1}

	assert.Nil(t, service.OnRequestProposal(r), "nothing to propose")
	assert.True(t, service.HasProposal(r), "empty answer cached")

	// batches arriving later do not change the recorded answer
	service.OnBatches([]*transaction.Batch{makeBatch("alice@d", 1)})
	assert.Nil(t, service.OnRequestProposal(r), "cached empty answer")
}

func TestRequestTooFarAhead(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	service := ordering.NewService(10, 3)
	service.OnBatches([]*transaction.Batch{makeBatch("alice@d", 1)})

	assert.Nil(t, service.OnRequestProposal(round.Round{Block: 5}), "round 5 is beyond current+2")
	assert.False(t, service.HasProposal(round.Round{Block: 5}), "nothing cached for far round")

	assert.NotNil(t, service.OnRequestProposal(round.Round{Block: 2}), "current+2 served")
}

func TestDuplicateBatchesIgnored(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	service := ordering.NewService(10, 3)
	batch := makeBatch("alice@d", 1)
	service.OnBatches([]*transaction.Batch{batch, batch})
	service.OnBatches([]*transaction.Batch{batch})

	proposal := service.OnRequestProposal(round.Round{Block: 1})
	require.NotNil(t, proposal, "proposal packed")
	assert.Len(t, proposal.Transactions, 1, "batch stored once")
}

func TestCommittedTransactionsEvictBatches(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	service := ordering.NewService(10, 3)
	batch := makeBatch("alice@d", 2)
	service.OnBatches([]*transaction.Batch{batch})

	service.OnTxsCommitted([]digest.Digest{batch.Transactions[0].Hash()})

	assert.Nil(t, service.OnRequestProposal(round.Round{Block: 1}), "cache emptied")
	assert.True(t, service.IsCommitted(batch.Transactions[0].Hash()), "hash remembered")

	// the batch re-gossiped later is recognised as processed
	service.OnBatches([]*transaction.Batch{batch})
	count := 0
	service.ForCachedBatches(func(*transaction.Batch) { count += 1 })
	assert.Equal(t, 0, count, "replayed batch suppressed")
}

func TestProposalWindowPruning(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	service := ordering.NewService(10, 2)
	service.OnBatches([]*transaction.Batch{makeBatch("alice@d", 1)})

	rounds := []round.Round{
		{Block: 0, Reject: 0},
		{Block: 0, Reject: 1},
		{Block: 0, Reject: 2},
		{Block: 1, Reject: 0},
	}
	for i, r := range rounds {
		service.OnRequestProposal(r)
		service.OnCollaborationOutcome(round.NextReject(r))
		_ = i
	}

	// only the last two rounds below the current one survive a window
	// of two
	service.OnCollaborationOutcome(round.Round{Block: 2})
	assert.False(t, service.HasProposal(rounds[0]), "oldest pruned")
	assert.False(t, service.HasProposal(rounds[1]), "old pruned")
	assert.True(t, service.HasProposal(rounds[2]), "recent kept")
	assert.True(t, service.HasProposal(rounds[3]), "latest kept")
}
