// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pending_test

import (
	"crypto/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/command"
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/pending"
	"github.com/bitmark-inc/permissiond/transaction"
)

var uniqueTime uint64

// strictly increasing timestamps keep every test transaction distinct
func getUniqueTime() uint64 {
	uniqueTime += 1
	return uniqueTime
}

// configure for testing
func setup(t *testing.T) func() {
	directory, err := os.MkdirTemp("", "pending-test")
	require.NoError(t, err, "temp dir")

	_ = logger.Initialise(logger.Configuration{
		Directory: directory,
		File:      "test.log",
		Size:      50000,
		Count:     10,
	})

	require.NoError(t, pending.Initialise(), "initialise")

	return func() {
		_ = pending.Finalise()
		logger.Finalise()
		os.RemoveAll(directory)
	}
}

func makeTransaction(creator string, quorum uint64) *transaction.Transaction {
	return &transaction.Transaction{
		CreatorID:   creator,
		CreatedTime: getUniqueTime(),
		Quorum:      quorum,
		Commands: []command.Command{
			command.SetAccountDetail{AccountID: creator, Key: "k", Value: "v"},
		},
	}
}

// a batch of two transactions needing two signatures each
func twoTransactionsBatch(creator string) *transaction.Batch {
	return transaction.NewBatch(
		makeTransaction(creator, 2),
		makeTransaction(creator, 2),
	)
}

func TestInsertion(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	batch := twoTransactionsBatch("alice@d")
	pending.UpdatedBatchesHandler([]*transaction.Batch{batch})

	response, err := pending.GetPendingTransactions("alice@d", 100, nil)
	require.NoError(t, err, "page")
	assert.Equal(t, batch.Transactions, response.Transactions, "transactions in order")
	assert.Equal(t, uint64(2), response.AllTransactionsSize, "total size")
	assert.Nil(t, response.NextBatchInfo, "no next batch")
}

func TestExactPageSize(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	batch := twoTransactionsBatch("alice@d")
	pending.UpdatedBatchesHandler([]*transaction.Batch{batch})

	response, err := pending.GetPendingTransactions("alice@d", 2, nil)
	require.NoError(t, err, "page")
	assert.Len(t, response.Transactions, 2, "whole batch returned")
	assert.Nil(t, response.NextBatchInfo, "no next batch on exact fit")
}

func TestInsufficientPageSize(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	batch := twoTransactionsBatch("alice@d")
	pending.UpdatedBatchesHandler([]*transaction.Batch{batch})

	response, err := pending.GetPendingTransactions("alice@d", 1, nil)
	require.NoError(t, err, "page")
	assert.Empty(t, response.Transactions, "batch does not fit")
	assert.Equal(t, uint64(2), response.AllTransactionsSize, "total still counted")
	require.NotNil(t, response.NextBatchInfo, "next batch referenced")
	assert.Equal(t, batch.FirstTxHash(), response.NextBatchInfo.FirstTxHash, "first tx hash")
	assert.Equal(t, uint64(2), response.NextBatchInfo.BatchSize, "batch size")
}

func TestBatchAndAHalfPageSize(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	first := twoTransactionsBatch("alice@d")
	second := twoTransactionsBatch("alice@d")
	pending.UpdatedBatchesHandler([]*transaction.Batch{first, second})

	response, err := pending.GetPendingTransactions("alice@d", 3, nil)
	require.NoError(t, err, "page")
	assert.Equal(t, first.Transactions, response.Transactions, "only the first whole batch")
	assert.Equal(t, uint64(4), response.AllTransactionsSize, "total size")
	require.NotNil(t, response.NextBatchInfo, "second batch referenced")
	assert.Equal(t, second.FirstTxHash(), response.NextBatchInfo.FirstTxHash, "first tx of second batch")
}

func TestStartFromTheSecondBatch(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	first := twoTransactionsBatch("alice@d")
	second := twoTransactionsBatch("alice@d")
	pending.UpdatedBatchesHandler([]*transaction.Batch{first, second})

	startHash := second.FirstTxHash()
	response, err := pending.GetPendingTransactions("alice@d", 100, &startHash)
	require.NoError(t, err, "page")
	assert.Equal(t, second.Transactions, response.Transactions, "second batch only")
	assert.Equal(t, uint64(4), response.AllTransactionsSize, "total covers all batches")
}

func TestQueryingWrongBatch(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	pending.UpdatedBatchesHandler([]*transaction.Batch{twoTransactionsBatch("alice@d")})

	missing := digest.NewDigest([]byte("missing"))
	_, err := pending.GetPendingTransactions("alice@d", 100, &missing)
	assert.Equal(t, fault.ErrStartHashNotFound, err, "unknown start hash")
}

func TestZeroPageSize(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	_, err := pending.GetPendingTransactions("alice@d", 0, nil)
	assert.Equal(t, fault.ErrInvalidPageSize, err, "zero page size")
}

func TestSignaturesAccumulateUntilQuorum(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	_, key1, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err, "key 1")
	_, key2, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err, "key 2")

	tx := makeTransaction("alice@d", 2)
	batch := transaction.NewBatch(tx)

	// first signature: batch stays pending
	firstCopy := &transaction.Transaction{
		CreatorID:   tx.CreatorID,
		CreatedTime: tx.CreatedTime,
		Quorum:      tx.Quorum,
		Commands:    tx.Commands,
	}
	firstCopy.Sign(key1)
	pending.UpdatedBatchesHandler([]*transaction.Batch{transaction.NewBatch(firstCopy)})

	response, err := pending.GetPendingTransactions("alice@d", 100, nil)
	require.NoError(t, err, "page after first signature")
	require.Len(t, response.Transactions, 1, "still pending")
	assert.Len(t, response.Transactions[0].Signatures, 1, "one signature")

	// second signature: quorum reached, batch emitted and removed
	secondCopy := &transaction.Transaction{
		CreatorID:   tx.CreatorID,
		CreatedTime: tx.CreatedTime,
		Quorum:      tx.Quorum,
		Commands:    tx.Commands,
	}
	secondCopy.Sign(key2)
	pending.UpdatedBatchesHandler([]*transaction.Batch{transaction.NewBatch(secondCopy)})

	response, err = pending.GetPendingTransactions("alice@d", 100, nil)
	require.NoError(t, err, "page after second signature")
	assert.Empty(t, response.Transactions, "batch left the store")

	select {
	case completed := <-pending.CompletedBatches():
		assert.Equal(t, batch.Hash(), completed.Hash(), "completed batch identity")
		assert.Len(t, completed.Transactions[0].Signatures, 2, "both signatures merged")
	default:
		t.Fatal("no completed batch emitted")
	}
}

func TestRemoveBatch(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	batch := twoTransactionsBatch("alice@d")
	pending.UpdatedBatchesHandler([]*transaction.Batch{batch})
	pending.RemoveBatch(batch)

	response, err := pending.GetPendingTransactions("alice@d", 100, nil)
	require.NoError(t, err, "page")
	assert.Empty(t, response.Transactions, "removed")
	assert.Equal(t, uint64(0), response.AllTransactionsSize, "nothing counted")
}

func TestRemoveByTransactionHashes(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	keep := twoTransactionsBatch("alice@d")
	drop := twoTransactionsBatch("alice@d")
	pending.UpdatedBatchesHandler([]*transaction.Batch{keep, drop})

	pending.RemoveByTransactionHashes([]digest.Digest{drop.Transactions[1].Hash()})

	response, err := pending.GetPendingTransactions("alice@d", 100, nil)
	require.NoError(t, err, "page")
	assert.Equal(t, keep.Transactions, response.Transactions, "committed batch removed")
}
