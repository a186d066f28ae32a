// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package restore - rebuild the world state view from the block log
//
// the log is authoritative: the WSV is replayed forward from its
// persisted height to the top of the log; a WSV ahead of the log or
// with a mismatched top hash is refused rather than repaired
package restore

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/blockrecord"
	"github.com/bitmark-inc/permissiond/blockstore"
	"github.com/bitmark-inc/permissiond/executor"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/wsv"
)

// time to wait for new blocks in wait-for-new-blocks mode
const waitForBlockTime = 5 * time.Second

// Restorer - replays the block log onto a world state view
type Restorer struct {
	log    *logger.L
	view   *wsv.View
	exec   *executor.Executor
	blocks blockstore.Log
	sleep  time.Duration
}

// New - a restorer over a view and a block log
func New(view *wsv.View, blocks blockstore.Log) *Restorer {
	return &Restorer{
		log:    logger.New("restore"),
		view:   view,
		exec:   executor.New(view),
		blocks: blocks,
		sleep:  waitForBlockTime,
	}
}

// Run - catch the WSV up with the block log
//
// with waitForNewBlocks the restorer keeps polling the log for freshly
// written blocks until the shutdown channel closes; a block that fails
// to read is assumed to be mid-write and is retried on the next pass
func (r *Restorer) Run(waitForNewBlocks bool, shutdown <-chan struct{}) error {
	lastApplied, err := r.catchUp()
	if nil != err {
		return err
	}

	for waitForNewBlocks {
		select {
		case <-shutdown:
			return nil
		case <-time.After(r.sleep):
		}

		if err := r.blocks.Reload(); nil != err {
			return err
		}

		// probe backward for the newest fully written block: decrement
		// while the block at that height is unreadable and the height is
		// still above what has been applied
		newTop := r.blocks.TopHeight()
		for newTop > lastApplied {
			if _, err := r.blocks.Block(newTop); nil == err {
				break
			}
			newTop -= 1
		}

		if newTop > lastApplied {
			r.log.Infof("block log has new blocks from %d to %d, restoring", lastApplied+1, newTop)
			if err := r.replay(lastApplied+1, newTop); nil != err {
				return err
			}
			lastApplied = newTop
		}
	}
	return nil
}

// catchUp - reconcile with the persisted state and replay the gap
func (r *Restorer) catchUp() (uint64, error) {
	topHeight := r.blocks.TopHeight()

	wsvHeight := uint64(0)
	if state, found := r.view.LedgerState(); found {
		wsvHeight = state.Height
		if wsvHeight > topHeight {
			r.log.Errorf("WSV height %d is more recent than block log height %d", wsvHeight, topHeight)
			return 0, fault.ErrBlockLogBehindState
		}

		top, err := r.blocks.Block(wsvHeight)
		if nil != err {
			return 0, err
		}
		if top.Hash() != state.TopBlockHash {
			r.log.Errorf("WSV top hash %s does not match block %d hash %s",
				state.TopBlockHash, wsvHeight, top.Hash())
			return 0, fault.ErrBlockTopHashMismatch
		}
	}

	if err := r.replay(wsvHeight+1, topHeight); nil != err {
		return 0, err
	}
	return topHeight, nil
}

// replay - apply blocks first…last inclusive with validation off
func (r *Restorer) replay(first uint64, last uint64) error {
	var previous *blockrecord.Block
	for height := first; height <= last; height += 1 {
		block, err := r.blocks.Block(height)
		if nil != err {
			return err
		}
		if height != block.Height {
			return fault.InvalidError("inconsistent block height in block log")
		}

		// the genesis block is exempt: transactions may have no creator
		// and the block is unsigned
		if !block.IsGenesis() {
			if nil != previous && previous.Hash() != block.PrevHash {
				return fault.ErrBlockTopHashMismatch
			}
			for _, tx := range block.Transactions {
				if err := tx.VerifySignatures(); nil != err {
					return err
				}
			}
		}

		if _, err := r.exec.ApplyBlock(block, false); nil != err {
			return err
		}
		r.log.Debugf("replayed block %d: %s", height, block.Hash())
		previous = block
	}
	return nil
}
