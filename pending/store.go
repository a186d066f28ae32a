// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pending

import (
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/transaction"
)

// UpdatedBatchesHandler - merge an incoming delta of partially signed
// batches
//
// a batch is identified by its hash, which covers transaction payloads
// but not signatures, so the same batch carrying new signatures merges
// into the stored one; batches completed by the merge are emitted and
// removed
func UpdatedBatchesHandler(batches []*transaction.Batch) {
	completed := []*transaction.Batch{}

	globalData.Lock()
	if !globalData.initialised {
		globalData.Unlock()
		return
	}

	for _, batch := range batches {
		key := batch.Hash()

		stored, ok := globalData.byHash[key]
		if ok {
			mergeSignatures(stored.batch, batch)
		} else {
			stored = &storedBatch{
				batch:       batch,
				firstTxHash: batch.FirstTxHash(),
			}
			globalData.byHash[key] = stored
			for _, creator := range batch.Creators() {
				globalData.byCreator[creator] = append(globalData.byCreator[creator], stored)
			}
			globalData.log.Debugf("new pending batch %s", key)
		}

		if stored.batch.IsComplete() {
			removeLocked(key)
			completed = append(completed, stored.batch)
		}
	}
	queue := globalData.completed
	globalData.Unlock()

	for _, batch := range completed {
		globalData.log.Infof("batch complete: %s", batch.Hash())
		queue <- batch
	}
}

// RemoveBatch - drop a batch that was committed in a block or expired
func RemoveBatch(batch *transaction.Batch) {
	globalData.Lock()
	defer globalData.Unlock()
	if !globalData.initialised {
		return
	}
	removeLocked(batch.Hash())
}

// RemoveByTransactionHashes - drop every batch containing one of the
// given committed transactions
func RemoveByTransactionHashes(hashes []digest.Digest) {
	globalData.Lock()
	defer globalData.Unlock()
	if !globalData.initialised {
		return
	}

scan:
	for key, stored := range globalData.byHash {
		for _, h := range hashes {
			if stored.batch.ContainsHash(h) {
				removeLocked(key)
				continue scan
			}
		}
	}
}

// merge signatures of the incoming copy into the stored transactions
func mergeSignatures(stored *transaction.Batch, incoming *transaction.Batch) {
	for i, tx := range stored.Transactions {
		if i >= len(incoming.Transactions) {
			return
		}
		seen := make(map[transaction.Signature]struct{})
		for _, s := range tx.Signatures {
			seen[s] = struct{}{}
		}
		for _, s := range incoming.Transactions[i].Signatures {
			if _, ok := seen[s]; !ok {
				tx.Signatures = append(tx.Signatures, s)
			}
		}
	}
}

func removeLocked(key digest.Digest) {
	stored, ok := globalData.byHash[key]
	if !ok {
		return
	}
	delete(globalData.byHash, key)

	for _, creator := range stored.batch.Creators() {
		list := globalData.byCreator[creator]
		for i, item := range list {
			if item == stored {
				globalData.byCreator[creator] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if 0 == len(globalData.byCreator[creator]) {
			delete(globalData.byCreator, creator)
		}
	}
}

// BatchInfo - reference to the first batch that did not fit a page
type BatchInfo struct {
	FirstTxHash digest.Digest
	BatchSize   uint64
}

// Response - one page of pending transactions for a creator
type Response struct {
	Transactions        []*transaction.Transaction
	AllTransactionsSize uint64
	NextBatchInfo       *BatchInfo
}

// GetPendingTransactions - page through a creator's pending batches
//
// batches are indivisible: the page ends just before the batch that
// would overflow pageSize and NextBatchInfo references that batch;
// startHash positions the iterator at the batch whose first
// transaction carries that hash
func GetPendingTransactions(creator string, pageSize uint64, startHash *digest.Digest) (Response, error) {
	if 0 == pageSize {
		return Response{}, fault.ErrInvalidPageSize
	}

	globalData.RLock()
	defer globalData.RUnlock()
	if !globalData.initialised {
		return Response{}, fault.ErrNotInitialised
	}

	list := globalData.byCreator[creator]

	response := Response{
		Transactions: []*transaction.Transaction{},
	}
	for _, stored := range list {
		response.AllTransactionsSize += uint64(stored.batch.Size())
	}

	start := 0
	if nil != startHash {
		start = -1
		for i, stored := range list {
			if stored.firstTxHash == *startHash {
				start = i
				break
			}
		}
		if start < 0 {
			return Response{}, fault.ErrStartHashNotFound
		}
	}

	for _, stored := range list[start:] {
		batchSize := uint64(stored.batch.Size())
		if uint64(len(response.Transactions))+batchSize > pageSize {
			response.NextBatchInfo = &BatchInfo{
				FirstTxHash: stored.firstTxHash,
				BatchSize:   batchSize,
			}
			break
		}
		// copy-on-read: the page must stay valid after the lock drops
		response.Transactions = append(response.Transactions, stored.batch.Transactions...)
	}

	return response, nil
}
