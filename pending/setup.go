// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pending - the multi-signature staging store
//
// batches wait here until every transaction has collected its quorum
// of signatures; complete batches are emitted on the completed channel
// and removed; expiry is driven by the caller through RemoveBatch
package pending

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/transaction"
)

// completedQueueSize - pending completed batches not yet consumed
const completedQueueSize = 100

type storedBatch struct {
	batch       *transaction.Batch
	firstTxHash digest.Digest
}

// globals
type globalDataType struct {
	sync.RWMutex
	log         *logger.L
	byHash      map[digest.Digest]*storedBatch
	byCreator   map[string][]*storedBatch // insertion order per creator
	completed   chan *transaction.Batch
	initialised bool
}

// global storage
var globalData globalDataType

// Initialise - create the store
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("pending")
	globalData.log.Info("starting…")

	globalData.byHash = make(map[digest.Digest]*storedBatch)
	globalData.byCreator = make(map[string][]*storedBatch)
	globalData.completed = make(chan *transaction.Batch, completedQueueSize)

	globalData.initialised = true
	return nil
}

// Finalise - drop the store
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.byHash = nil
	globalData.byCreator = nil
	globalData.completed = nil
	globalData.initialised = false
	return nil
}

// CompletedBatches - channel carrying batches that reached quorum
func CompletedBatches() <-chan *transaction.Batch {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.completed
}

// ReadCounters - batch and creator counts, for status displays
func ReadCounters() (int, int) {
	globalData.RLock()
	defer globalData.RUnlock()
	return len(globalData.byHash), len(globalData.byCreator)
}
