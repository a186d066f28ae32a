// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package command - the ledger command set
//
// a closed tagged union; the executor dispatches over it with an
// exhaustive type switch; the canonical packed form feeds transaction
// digests and the block log, so tags and field order are frozen
package command

import (
	"github.com/bitmark-inc/permissiond/permission"
	"github.com/bitmark-inc/permissiond/util"
)

// Command - one ledger command
type Command interface {
	// Name - the stable textual name
	Name() string

	// PackInto - append the canonical form: tag then ordered fields
	PackInto(p *util.Packer)
}

// type tags of the canonical form - append only
const (
	tagAddAssetQuantity uint64 = iota + 1
	tagAddPeer
	tagAddSignatory
	tagAppendRole
	tagCallEngine
	tagCompareAndSetAccountDetail
	tagCreateAccount
	tagCreateAsset
	tagCreateDomain
	tagCreateRole
	tagDetachRole
	tagGrantPermission
	tagRemovePeer
	tagRemoveSignatory
	tagRevokePermission
	tagSetAccountDetail
	tagSetQuorum
	tagSetSettingValue
	tagSubtractAssetQuantity
	tagTransferAsset
)

// AddAssetQuantity - credit the creator's balance
type AddAssetQuantity struct {
	AssetID string
	Amount  string
}

// AddPeer - add a consensus peer
type AddPeer struct {
	PublicKey      string
	Address        string
	TLSCertificate string // optional
}

// AddSignatory - attach a public key to an account
type AddSignatory struct {
	AccountID string
	PublicKey string
}

// AppendRole - attach a role to an account
type AppendRole struct {
	AccountID string
	RoleName  string
}

// CallEngine - invoke the embedded engine (not implemented)
type CallEngine struct {
	Caller string
	Callee string
	Input  string
}

// CompareAndSetAccountDetail - conditional detail update
type CompareAndSetAccountDetail struct {
	AccountID  string
	Key        string
	Value      string
	OldValue   *string // nil when the caller expects no previous value
	CheckEmpty bool
}

// CreateAccount - create an account in a domain
type CreateAccount struct {
	AccountName string
	DomainID    string
	PublicKey   string
}

// CreateAsset - define an asset with a fixed precision
type CreateAsset struct {
	AssetName string
	DomainID  string
	Precision uint64
}

// CreateDomain - define a domain with a default role
type CreateDomain struct {
	DomainID    string
	DefaultRole string
}

// CreateRole - define a role with a permission set
type CreateRole struct {
	RoleName    string
	Permissions permission.RoleSet
}

// DetachRole - remove a role from an account
type DetachRole struct {
	AccountID string
	RoleName  string
}

// GrantPermission - grant the creator's grantable permission to an account
type GrantPermission struct {
	AccountID  string
	Permission permission.Grantable
}

// RemovePeer - remove a consensus peer
type RemovePeer struct {
	PublicKey string
}

// RemoveSignatory - detach a public key from an account
type RemoveSignatory struct {
	AccountID string
	PublicKey string
}

// RevokePermission - revoke a previously granted permission
type RevokePermission struct {
	AccountID  string
	Permission permission.Grantable
}

// SetAccountDetail - write a key/value detail on an account
type SetAccountDetail struct {
	AccountID string
	Key       string
	Value     string
}

// SetQuorum - change the signature quorum of an account
type SetQuorum struct {
	AccountID string
	Quorum    uint64
}

// SetSettingValue - write a ledger-wide setting
type SetSettingValue struct {
	Key   string
	Value string
}

// SubtractAssetQuantity - debit the creator's balance
type SubtractAssetQuantity struct {
	AssetID string
	Amount  string
}

// TransferAsset - move an amount between accounts
type TransferAsset struct {
	SourceAccountID      string
	DestinationAccountID string
	AssetID              string
	Description          string
	Amount               string
}

func (AddAssetQuantity) Name() string           { return "AddAssetQuantity" }
func (AddPeer) Name() string                    { return "AddPeer" }
func (AddSignatory) Name() string               { return "AddSignatory" }
func (AppendRole) Name() string                 { return "AppendRole" }
func (CallEngine) Name() string                 { return "CallEngine" }
func (CompareAndSetAccountDetail) Name() string { return "CompareAndSetAccountDetail" }
func (CreateAccount) Name() string              { return "CreateAccount" }
func (CreateAsset) Name() string                { return "CreateAsset" }
func (CreateDomain) Name() string               { return "CreateDomain" }
func (CreateRole) Name() string                 { return "CreateRole" }
func (DetachRole) Name() string                 { return "DetachRole" }
func (GrantPermission) Name() string            { return "GrantPermission" }
func (RemovePeer) Name() string                 { return "RemovePeer" }
func (RemoveSignatory) Name() string            { return "RemoveSignatory" }
func (RevokePermission) Name() string           { return "RevokePermission" }
func (SetAccountDetail) Name() string           { return "SetAccountDetail" }
func (SetQuorum) Name() string                  { return "SetQuorum" }
func (SetSettingValue) Name() string            { return "SetSettingValue" }
func (SubtractAssetQuantity) Name() string      { return "SubtractAssetQuantity" }
func (TransferAsset) Name() string              { return "TransferAsset" }
