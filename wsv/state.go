// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wsv

import (
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/storage"
)

// LedgerState - post-state summary of the highest committed block
type LedgerState struct {
	Height       uint64
	TopBlockHash digest.Digest
	Peers        []Peer
}

// LedgerState - the persisted state summary, found=false on a fresh WSV
func (v *View) LedgerState() (LedgerState, bool) {
	stored, found := v.store.Get(keyLedgerHeight)
	if !found {
		return LedgerState{}, false
	}
	height, err := storage.DecodeUint64(stored)
	if nil != err {
		return LedgerState{}, false
	}

	state := LedgerState{
		Height: height,
		Peers:  v.PeerList(),
	}
	if hash, found := v.store.Get(keyLedgerTopHash); found {
		if d, err := digest.DigestFromHex(string(hash)); nil == err {
			state.TopBlockHash = d
		}
	}
	return state, true
}

// PutLedgerState - record height and top hash after a block commit
//
// must be called inside the same transaction as the block's commands so
// the summary can never run ahead of the state it summarises
func (v *View) PutLedgerState(height uint64, topHash digest.Digest) error {
	if err := v.putUint64(keyLedgerHeight, height); nil != err {
		return err
	}
	_, _, err := v.access(OpPut, CanExist, keyLedgerTopHash, []byte(topHash.String()), 0, "")
	return err
}
