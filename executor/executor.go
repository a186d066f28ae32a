// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package executor - deterministic application of ledger commands
//
// one transaction at a time, each under a savepoint so a failing
// command rolls the whole transaction back while the enclosing block
// still commits; with validate false the caller is trusted (block
// replay during restoration)
package executor

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/blockrecord"
	"github.com/bitmark-inc/permissiond/command"
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/permission"
	"github.com/bitmark-inc/permissiond/transaction"
	"github.com/bitmark-inc/permissiond/wsv"
)

// Executor - applies commands to one world state view
type Executor struct {
	log  *logger.L
	view *wsv.View
}

// New - an executor over a view
func New(view *wsv.View) *Executor {
	return &Executor{
		log:  logger.New("executor"),
		view: view,
	}
}

// Execute - apply one command
//
// when validate is true permission and precondition checks run; the
// creator's permissions are the union of its roles
func (e *Executor) Execute(cmd command.Command, creatorID string, txHash digest.Digest, commandIndex int, validate bool) error {
	creatorPermissions := permission.RoleSet(0)
	if validate {
		permissions, err := e.view.AccountPermissions(creatorID)
		if nil != err {
			return named(cmd, err)
		}
		creatorPermissions = permissions
	}

	err := e.dispatch(cmd, creatorID, txHash, commandIndex, validate, creatorPermissions)
	if nil != err {
		return named(cmd, err)
	}
	return nil
}

// attach the command name to a coded error
func named(cmd command.Command, err error) error {
	if ce, ok := err.(fault.CommandError); ok {
		ce.Command = cmd.Name()
		return ce
	}
	return fault.CommandError{
		Command:     cmd.Name(),
		Code:        fault.CodeException,
		Description: err.Error(),
	}
}

// dispatch - exhaustive match over the command union
func (e *Executor) dispatch(cmd command.Command, creatorID string, txHash digest.Digest, commandIndex int, validate bool, creatorPermissions permission.RoleSet) error {
	switch c := cmd.(type) {
	case command.AddAssetQuantity:
		return e.addAssetQuantity(c, creatorID, validate, creatorPermissions)
	case command.AddPeer:
		return e.addPeer(c, validate, creatorPermissions)
	case command.AddSignatory:
		return e.addSignatory(c, creatorID, validate, creatorPermissions)
	case command.AppendRole:
		return e.appendRole(c, validate, creatorPermissions)
	case command.CallEngine:
		return fault.CommandErrorf(fault.CodeNoImplementation, "not implemented")
	case command.CompareAndSetAccountDetail:
		return e.compareAndSetAccountDetail(c, creatorID, validate, creatorPermissions)
	case command.CreateAccount:
		return e.createAccount(c, validate, creatorPermissions)
	case command.CreateAsset:
		return e.createAsset(c, validate, creatorPermissions)
	case command.CreateDomain:
		return e.createDomain(c, validate, creatorPermissions)
	case command.CreateRole:
		return e.createRole(c, validate, creatorPermissions)
	case command.DetachRole:
		return e.detachRole(c, validate, creatorPermissions)
	case command.GrantPermission:
		return e.grantPermission(c, creatorID, validate, creatorPermissions)
	case command.RemovePeer:
		return e.removePeer(c, validate, creatorPermissions)
	case command.RemoveSignatory:
		return e.removeSignatory(c, creatorID, validate, creatorPermissions)
	case command.RevokePermission:
		return e.revokePermission(c, creatorID, validate, creatorPermissions)
	case command.SetAccountDetail:
		return e.setAccountDetail(c, creatorID, validate, creatorPermissions)
	case command.SetQuorum:
		return e.setQuorum(c, creatorID, validate, creatorPermissions)
	case command.SetSettingValue:
		return e.view.PutSetting(c.Key, c.Value)
	case command.SubtractAssetQuantity:
		return e.subtractAssetQuantity(c, creatorID, validate, creatorPermissions)
	case command.TransferAsset:
		return e.transferAsset(c, creatorID, validate, creatorPermissions)
	}
	return fault.CommandErrorf(fault.CodeException, "unknown command type %T", cmd)
}

// ApplyTransaction - run every command of a transaction under one
// savepoint; a failing command rolls the transaction back
func (e *Executor) ApplyTransaction(tx *transaction.Transaction, validate bool) error {
	store := e.view.Store()
	txHash := tx.Hash()
	savepoint := "tx-" + txHash.String()

	if err := store.Savepoint(savepoint); nil != err {
		return err
	}

	for i, cmd := range tx.Commands {
		if err := e.Execute(cmd, tx.CreatorID, txHash, i, validate); nil != err {
			e.log.Warnf("transaction %s rejected: %s", txHash, err)
			if rollbackErr := store.RollbackToSavepoint(savepoint); nil != rollbackErr {
				return rollbackErr
			}
			_ = store.ReleaseSavepoint(savepoint)
			return err
		}
	}
	return store.ReleaseSavepoint(savepoint)
}

// ApplyBlock - apply a whole block inside one store transaction
//
// returns the hashes of transactions that were rejected; the block
// commits regardless, only an IO failure aborts it
func (e *Executor) ApplyBlock(block *blockrecord.Block, validate bool) ([]digest.Digest, error) {
	store := e.view.Store()

	if err := store.Begin(); nil != err {
		return nil, err
	}

	rejected := []digest.Digest{}
	for _, tx := range block.Transactions {
		err := e.ApplyTransaction(tx, validate)
		if nil == err {
			continue
		}
		if _, ok := err.(fault.CommandError); ok {
			rejected = append(rejected, tx.Hash())
			continue
		}
		_ = store.Rollback()
		return nil, err
	}

	if err := e.view.PutLedgerState(block.Height, block.Hash()); nil != err {
		_ = store.Rollback()
		return nil, err
	}

	if err := store.Commit(); nil != err {
		return nil, err
	}
	return rejected, nil
}

// permission check helpers

func checkPermissions(creator permission.RoleSet, required permission.Role) error {
	if !creator.IsSet(required) {
		return fault.CommandErrorf(fault.CodeNoPermissions, "missing permission %s", required)
	}
	return nil
}

// global permission, or the domain scoped one when the target domain is
// the creator's own
func checkDomainPermissions(targetDomain, creatorDomain string, creator permission.RoleSet, global, domainScoped permission.Role) error {
	if creator.IsSet(global) {
		return nil
	}
	if targetDomain == creatorDomain && creator.IsSet(domainScoped) {
		return nil
	}
	return fault.CommandErrorf(fault.CodeNoPermissions, "missing permission %s", global)
}

// role permission on the creator, or a grantable permission conferred
// on the creator by the target account
func checkGrantablePermissions(creator permission.RoleSet, granted permission.GrantableSet, rolePermission permission.Role, grantable permission.Grantable) error {
	if creator.IsSet(rolePermission) || granted.IsSet(grantable) {
		return nil
	}
	return fault.CommandErrorf(fault.CodeNoPermissions, "missing permission %s", grantable)
}
