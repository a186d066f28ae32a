// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - transactional key-value facade over leveldb
//
// a single writer owns the transaction overlay; reads consult the
// overlay first and fall back to the database state underneath it;
// savepoints nest within one
// transaction and are used per command inside a block
package storage

import (
	"sort"
	"strings"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/util"
)

// Store - a leveldb database with a transaction overlay
type Store struct {
	sync.RWMutex
	log      *logger.L
	database *leveldb.DB
	frames   []frame
	marks    map[string]int
	prepared map[string]*leveldb.Batch
	scratch  []byte
}

// one overlay layer: key → pending operation
type frame map[string]entry

type entry struct {
	deleted bool
	value   []byte
}

// New - open a database directory
func New(name string, directory string) (*Store, error) {
	database, err := leveldb.OpenFile(directory+"/"+name+".leveldb", nil)
	if nil != err {
		return nil, err
	}
	return &Store{
		log:      logger.New("storage-" + name),
		database: database,
		marks:    make(map[string]int),
		prepared: make(map[string]*leveldb.Batch),
		scratch:  make([]byte, 0, util.Varint64MaximumBytes),
	}, nil
}

// Close - close the underlying database
func (s *Store) Close() error {
	s.Lock()
	defer s.Unlock()
	s.frames = nil
	return s.database.Close()
}

// Get - read a value; second result is false when the key is absent
func (s *Store) Get(key string) ([]byte, bool) {
	s.RLock()
	defer s.RUnlock()
	return s.get(key)
}

func (s *Store) get(key string) ([]byte, bool) {
	for i := len(s.frames) - 1; i >= 0; i -= 1 {
		if e, ok := s.frames[i][key]; ok {
			if e.deleted {
				return nil, false
			}
			return e.value, true
		}
	}
	value, err := s.database.Get([]byte(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, false
	}
	logger.PanicIfError("storage.Get", err)
	return value, true
}

// Has - presence test without reading the value
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Put - stage a write; only valid inside a transaction
func (s *Store) Put(key string, value []byte) error {
	s.Lock()
	defer s.Unlock()
	if 0 == len(s.frames) {
		return fault.ErrTransactionNotInProgress
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.frames[len(s.frames)-1][key] = entry{value: stored}
	return nil
}

// Delete - stage a delete; only valid inside a transaction
func (s *Store) Delete(key string) error {
	s.Lock()
	defer s.Unlock()
	if 0 == len(s.frames) {
		return fault.ErrTransactionNotInProgress
	}
	s.frames[len(s.frames)-1][key] = entry{deleted: true}
	return nil
}

// Iterate - visit all keys with the given prefix in ascending order
//
// the visitor returns false to stop early; the overlay is merged with
// the database so a transaction sees its own writes
func (s *Store) Iterate(prefix string, visit func(key string, value []byte) bool) {
	s.RLock()

	merged := make(map[string][]byte)

	iterator := s.database.NewIterator(ldb_util.BytesPrefix([]byte(prefix)), nil)
	for iterator.Next() {
		key := string(iterator.Key())
		value := make([]byte, len(iterator.Value()))
		copy(value, iterator.Value())
		merged[key] = value
	}
	iterator.Release()

	for _, f := range s.frames {
		for key, e := range f {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			if e.deleted {
				delete(merged, key)
			} else {
				merged[key] = e.value
			}
		}
	}
	s.RUnlock()

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !visit(key, merged[key]) {
			return
		}
	}
}

// Begin - start the single transaction
func (s *Store) Begin() error {
	s.Lock()
	defer s.Unlock()
	if 0 != len(s.frames) {
		return fault.ErrTransactionAlreadyInUse
	}
	s.frames = []frame{make(frame)}
	return nil
}

// Commit - flatten the overlay and write it atomically
func (s *Store) Commit() error {
	s.Lock()
	defer s.Unlock()
	if 0 == len(s.frames) {
		return fault.ErrTransactionNotInProgress
	}
	batch := s.flatten()
	s.endTransaction()
	return s.database.Write(batch, nil)
}

// Rollback - discard the whole overlay
func (s *Store) Rollback() error {
	s.Lock()
	defer s.Unlock()
	if 0 == len(s.frames) {
		return fault.ErrTransactionNotInProgress
	}
	s.endTransaction()
	return nil
}

// InTransaction - true while a transaction is open
func (s *Store) InTransaction() bool {
	s.RLock()
	defer s.RUnlock()
	return 0 != len(s.frames)
}

// Savepoint - mark the current overlay position under a name
func (s *Store) Savepoint(name string) error {
	s.Lock()
	defer s.Unlock()
	if 0 == len(s.frames) {
		return fault.ErrTransactionNotInProgress
	}
	s.marks[name] = len(s.frames)
	s.frames = append(s.frames, make(frame))
	return nil
}

// ReleaseSavepoint - keep the changes, forget the mark
func (s *Store) ReleaseSavepoint(name string) error {
	s.Lock()
	defer s.Unlock()
	mark, ok := s.marks[name]
	if !ok {
		return fault.ErrSavepointNotFound
	}
	base := s.frames[mark-1]
	for _, f := range s.frames[mark:] {
		for key, e := range f {
			base[key] = e
		}
	}
	s.frames = s.frames[:mark]
	s.dropMarksAbove(mark)
	delete(s.marks, name)
	return nil
}

// RollbackToSavepoint - discard changes made since the mark
//
// the mark itself survives and can be rolled back to again
func (s *Store) RollbackToSavepoint(name string) error {
	s.Lock()
	defer s.Unlock()
	mark, ok := s.marks[name]
	if !ok {
		return fault.ErrSavepointNotFound
	}
	s.frames = append(s.frames[:mark], make(frame))
	s.dropMarksAbove(mark)
	return nil
}

// Prepare - stash the flattened overlay under a name, ending the
// transaction without writing
func (s *Store) Prepare(name string) error {
	s.Lock()
	defer s.Unlock()
	if 0 == len(s.frames) {
		return fault.ErrTransactionNotInProgress
	}
	s.prepared[name] = s.flatten()
	s.endTransaction()
	return nil
}

// CommitPrepared - write a previously prepared batch
func (s *Store) CommitPrepared(name string) error {
	s.Lock()
	defer s.Unlock()
	batch, ok := s.prepared[name]
	if !ok {
		return fault.ErrSavepointNotFound
	}
	delete(s.prepared, name)
	return s.database.Write(batch, nil)
}

// DropPrepared - forget a prepared batch without writing it
func (s *Store) DropPrepared(name string) {
	s.Lock()
	defer s.Unlock()
	delete(s.prepared, name)
}

// EncodeUint64 - scalar encoding into the shared scratch buffer
//
// the returned slice is only valid until the next encode
func (s *Store) EncodeUint64(value uint64) []byte {
	s.Lock()
	defer s.Unlock()
	s.scratch = append(s.scratch[:0], util.ToVarint64(value)...)
	return s.scratch
}

// DecodeUint64 - inverse of EncodeUint64
func DecodeUint64(data []byte) (uint64, error) {
	value, n := util.FromVarint64(data)
	if 0 == n {
		return 0, fault.InvalidError("truncated uint64")
	}
	return value, nil
}

// internal: merge all frames oldest-first into one write batch
func (s *Store) flatten() *leveldb.Batch {
	flat := make(frame)
	for _, f := range s.frames {
		for key, e := range f {
			flat[key] = e
		}
	}
	batch := new(leveldb.Batch)
	for key, e := range flat {
		if e.deleted {
			batch.Delete([]byte(key))
		} else {
			batch.Put([]byte(key), e.value)
		}
	}
	return batch
}

func (s *Store) endTransaction() {
	s.frames = nil
	s.marks = make(map[string]int)
}

func (s *Store) dropMarksAbove(mark int) {
	for name, m := range s.marks {
		if m > mark {
			delete(s.marks, name)
		}
	}
}
