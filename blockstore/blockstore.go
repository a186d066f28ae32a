// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockstore - the append-only block log
//
// blocks are stored by height and read back during WSV restoration;
// the log is the authority on chain history, the WSV is derived state
package blockstore

import (
	"fmt"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/blockrecord"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/storage"
)

// Log - read and append access to the block log
//
// Reload refreshes any cached view of a log that another process may
// be appending to
type Log interface {
	TopHeight() uint64
	Block(height uint64) (*blockrecord.Block, error)
	Append(block *blockrecord.Block) error
	Reload() error
}

// key layout inside the store
const (
	keyBlock     = "block/%016x"
	keyTopHeight = "block_top"
)

// Store - leveldb backed block log
type Store struct {
	sync.RWMutex
	log       *logger.L
	store     *storage.Store
	topHeight uint64
}

// New - open a block log over a storage facade
func New(store *storage.Store) (*Store, error) {
	s := &Store{
		log:   logger.New("blockstore"),
		store: store,
	}
	if err := s.Reload(); nil != err {
		return nil, err
	}
	return s, nil
}

// Reload - re-read the persisted top height
func (s *Store) Reload() error {
	s.Lock()
	defer s.Unlock()

	stored, found := s.store.Get(keyTopHeight)
	if !found {
		s.topHeight = 0
		return nil
	}
	height, err := storage.DecodeUint64(stored)
	if nil != err {
		return err
	}
	s.topHeight = height
	return nil
}

// TopHeight - height of the last appended block, 0 when empty
func (s *Store) TopHeight() uint64 {
	s.RLock()
	defer s.RUnlock()
	return s.topHeight
}

// Block - read a block by height
//
// a missing or truncated record returns an error so the restorer can
// probe backward for the newest fully written block
func (s *Store) Block(height uint64) (*blockrecord.Block, error) {
	stored, found := s.store.Get(fmt.Sprintf(keyBlock, height))
	if !found {
		return nil, fault.ErrBlockNotFound
	}
	block, err := blockrecord.Unpack(stored)
	if nil != err {
		return nil, err
	}
	if height != block.Height {
		return nil, fault.InvalidError("inconsistent block height in block log")
	}
	return block, nil
}

// Append - add the next block to the log
//
// heights are contiguous from 1 and the previous hash must chain
func (s *Store) Append(block *blockrecord.Block) error {
	s.Lock()
	defer s.Unlock()

	if block.Height != s.topHeight+1 {
		return fault.ErrBlockHeightGap
	}
	if blockrecord.GenesisHeight != block.Height {
		previous, err := s.blockLocked(s.topHeight)
		if nil != err {
			return err
		}
		if previous.Hash() != block.PrevHash {
			return fault.ErrBlockTopHashMismatch
		}
	}

	if err := s.store.Begin(); nil != err {
		return err
	}
	if err := s.store.Put(fmt.Sprintf(keyBlock, block.Height), block.Pack()); nil != err {
		_ = s.store.Rollback()
		return err
	}
	if err := s.store.Put(keyTopHeight, s.store.EncodeUint64(block.Height)); nil != err {
		_ = s.store.Rollback()
		return err
	}
	if err := s.store.Commit(); nil != err {
		return err
	}

	s.topHeight = block.Height
	s.log.Infof("appended block %d: %s", block.Height, block.Hash())
	return nil
}

func (s *Store) blockLocked(height uint64) (*blockrecord.Block, error) {
	stored, found := s.store.Get(fmt.Sprintf(keyBlock, height))
	if !found {
		return nil, fault.ErrBlockNotFound
	}
	return blockrecord.Unpack(stored)
}
