// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package permission - role and grantable permission bitsets
//
// the bitstring forms are stored in the world state and must remain
// stable across releases
package permission

import (
	"github.com/bitmark-inc/permissiond/fault"
)

// Role - a role permission
type Role int

// role permissions - order fixes the bit positions, append only
const (
	AppendRole Role = iota
	CreateRole
	DetachRole
	AddAssetQty
	SubtractAssetQty
	AddDomainAssetQty
	SubtractDomainAssetQty
	AddPeer
	RemovePeer
	AddSignatory
	RemoveSignatory
	SetQuorum
	CreateAccount
	SetDetail
	GetMyAccDetail
	CreateAsset
	Transfer
	Receive
	CreateDomain
	GrantSetMyQuorum
	GrantAddMySignatory
	GrantRemoveMySignatory
	GrantTransferMyAssets
	GrantSetMyAccountDetail
	CallEngine
	Root

	roleCount
)

var roleNames = [roleCount]string{
	"append_role",
	"create_role",
	"detach_role",
	"add_asset_qty",
	"subtract_asset_qty",
	"add_domain_asset_qty",
	"subtract_domain_asset_qty",
	"add_peer",
	"remove_peer",
	"add_signatory",
	"remove_signatory",
	"set_quorum",
	"create_account",
	"set_detail",
	"get_my_acc_detail",
	"create_asset",
	"transfer",
	"receive",
	"create_domain",
	"grant_set_my_quorum",
	"grant_add_my_signatory",
	"grant_remove_my_signatory",
	"grant_transfer_my_assets",
	"grant_set_my_account_detail",
	"call_engine",
	"root",
}

// String - the stable textual name of a role permission
func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return "invalid"
	}
	return roleNames[r]
}

// RoleFromString - look up a role permission by its textual name
func RoleFromString(name string) (Role, error) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), nil
		}
	}
	return 0, fault.NotFoundError("no such role permission: " + name)
}

// Grantable - a permission one account confers on another over itself
type Grantable int

// grantable permissions - order fixes the bit positions, append only
const (
	SetMyQuorum Grantable = iota
	AddMySignatory
	RemoveMySignatory
	TransferMyAssets
	SetMyAccountDetail

	grantableCount
)

var grantableNames = [grantableCount]string{
	"set_my_quorum",
	"add_my_signatory",
	"remove_my_signatory",
	"transfer_my_assets",
	"set_my_account_detail",
}

// String - the stable textual name of a grantable permission
func (g Grantable) String() string {
	if g < 0 || g >= grantableCount {
		return "invalid"
	}
	return grantableNames[g]
}

// GrantableFromString - look up a grantable permission by its textual name
func GrantableFromString(name string) (Grantable, error) {
	for i, n := range grantableNames {
		if n == name {
			return Grantable(i), nil
		}
	}
	return 0, fault.NotFoundError("no such grantable permission: " + name)
}

// PermissionFor - the role permission required to grant or revoke a
// grantable permission
func PermissionFor(g Grantable) Role {
	switch g {
	case SetMyQuorum:
		return GrantSetMyQuorum
	case AddMySignatory:
		return GrantAddMySignatory
	case RemoveMySignatory:
		return GrantRemoveMySignatory
	case TransferMyAssets:
		return GrantTransferMyAssets
	case SetMyAccountDetail:
		return GrantSetMyAccountDetail
	}
	return Root
}
