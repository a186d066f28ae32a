// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wsv

import (
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/storage"
)

// Operation - what an access does
type Operation int

// the four access operations
const (
	OpGet Operation = iota
	OpCheck
	OpPut
	OpDel
)

// Policy - what the access expects to find
type Policy int

// existence policies
const (
	MustExist Policy = iota
	MustNotExist
	CanExist
)

// View - typed access to the world state over one store
type View struct {
	store *storage.Store
}

// New - a view over a store
func New(store *storage.Store) *View {
	return &View{store: store}
}

// Store - the underlying store, for transaction control
func (v *View) Store() *storage.Store {
	return v.store
}

// access - the single generic helper behind every typed accessor
//
// translates raw presence/absence into a coded command error according
// to the policy; value is only used by OpPut
func (v *View) access(op Operation, policy Policy, key string, value []byte, code fault.CommandCode, what string) ([]byte, bool, error) {
	switch op {

	case OpGet, OpCheck:
		stored, found := v.store.Get(key)
		if !found && MustExist == policy {
			return nil, false, fault.CommandErrorf(code, "no %s", what)
		}
		if found && MustNotExist == policy {
			return nil, true, fault.CommandErrorf(code, "%s already exists", what)
		}
		if OpCheck == op {
			return nil, found, nil
		}
		return stored, found, nil

	case OpPut:
		if CanExist != policy {
			_, found := v.store.Get(key)
			if !found && MustExist == policy {
				return nil, false, fault.CommandErrorf(code, "no %s", what)
			}
			if found && MustNotExist == policy {
				return nil, true, fault.CommandErrorf(code, "%s already exists", what)
			}
		}
		if err := v.store.Put(key, value); nil != err {
			return nil, false, err
		}
		return nil, true, nil

	case OpDel:
		if err := v.store.Delete(key); nil != err {
			return nil, false, err
		}
		return nil, false, nil
	}

	return nil, false, fault.CommandErrorf(fault.CodeException, "invalid operation %d", op)
}

// getUint64 - read and decode a counter-style value
func (v *View) getUint64(policy Policy, key string, code fault.CommandCode, what string) (uint64, bool, error) {
	stored, found, err := v.access(OpGet, policy, key, nil, code, what)
	if nil != err || !found {
		return 0, found, err
	}
	value, err := storage.DecodeUint64(stored)
	if nil != err {
		return 0, true, fault.CommandErrorf(fault.CodeException, "corrupt %s", what)
	}
	return value, true, nil
}

// putUint64 - encode through the store scratch buffer and write
func (v *View) putUint64(key string, value uint64) error {
	_, _, err := v.access(OpPut, CanExist, key, v.store.EncodeUint64(value), 0, "")
	return err
}
