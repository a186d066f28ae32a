// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package executor

import (
	"strconv"
	"strings"

	"github.com/bitmark-inc/permissiond/amount"
	"github.com/bitmark-inc/permissiond/command"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/permission"
	"github.com/bitmark-inc/permissiond/wsv"
)

func (e *Executor) addAssetQuantity(c command.AddAssetQuantity, creatorID string, validate bool, creator permission.RoleSet) error {
	creatorName, creatorDomain, err := wsv.SplitAccountID(creatorID)
	if nil != err {
		return err
	}
	assetName, assetDomain, err := wsv.SplitAssetID(c.AssetID)
	if nil != err {
		return err
	}

	if validate {
		if err := checkDomainPermissions(assetDomain, creatorDomain, creator,
			permission.AddAssetQty, permission.AddDomainAssetQty); nil != err {
			return err
		}
	}

	precision, _, err := e.view.ForAsset(wsv.OpGet, wsv.MustExist, assetName, assetDomain)
	if nil != err {
		return err
	}

	delta, err := amount.NewFromString(c.Amount)
	if nil != err {
		return err
	}
	if delta.Precision() > precision {
		return fault.CommandErrorf(fault.CodeInvalidAssetAmount,
			"invalid asset %s amount %s: expected precision %d", c.AssetID, c.Amount, precision)
	}

	assetSize, _, err := e.view.ForAssetSize(wsv.OpGet, wsv.CanExist, creatorName, creatorDomain)
	if nil != err {
		return err
	}

	balance, held, err := e.view.ForAccountAsset(wsv.OpGet, wsv.CanExist, creatorName, creatorDomain, c.AssetID, precision)
	if nil != err {
		return err
	}
	if !held {
		assetSize += 1
	}

	result := balance.Add(delta)
	if result.IsNegative() {
		return fault.CommandErrorf(fault.CodeInvalidAssetAmount,
			"invalid asset %s amount %s", c.AssetID, result)
	}

	if err := e.view.PutAccountAsset(creatorName, creatorDomain, c.AssetID, result); nil != err {
		return err
	}
	return e.view.PutAssetSize(creatorName, creatorDomain, assetSize)
}

func (e *Executor) subtractAssetQuantity(c command.SubtractAssetQuantity, creatorID string, validate bool, creator permission.RoleSet) error {
	creatorName, creatorDomain, err := wsv.SplitAccountID(creatorID)
	if nil != err {
		return err
	}
	assetName, assetDomain, err := wsv.SplitAssetID(c.AssetID)
	if nil != err {
		return err
	}

	if validate {
		if err := checkDomainPermissions(assetDomain, creatorDomain, creator,
			permission.SubtractAssetQty, permission.SubtractDomainAssetQty); nil != err {
			return err
		}
	}

	precision, _, err := e.view.ForAsset(wsv.OpGet, wsv.MustExist, assetName, assetDomain)
	if nil != err {
		return err
	}

	delta, err := amount.NewFromString(c.Amount)
	if nil != err {
		return err
	}
	if precision < delta.Precision() {
		return fault.CommandErrorf(fault.CodeInvalidAmount,
			"invalid precision of asset %s from %s: expected %d, but got %d",
			c.AssetID, creatorID, precision, delta.Precision())
	}

	balance, _, err := e.view.ForAccountAsset(wsv.OpGet, wsv.CanExist, creatorName, creatorDomain, c.AssetID, precision)
	if nil != err {
		return err
	}

	result := balance.Sub(delta)
	if result.IsNegative() {
		return fault.CommandErrorf(fault.CodeInvalidAmount,
			"invalid %s amount %s from %s", c.Name(), result, creatorID)
	}

	return e.view.PutAccountAsset(creatorName, creatorDomain, c.AssetID, result)
}

func (e *Executor) transferAsset(c command.TransferAsset, creatorID string, validate bool, creator permission.RoleSet) error {
	sourceName, sourceDomain, err := wsv.SplitAccountID(c.SourceAccountID)
	if nil != err {
		return err
	}
	destinationName, destinationDomain, err := wsv.SplitAccountID(c.DestinationAccountID)
	if nil != err {
		return err
	}
	assetName, assetDomain, err := wsv.SplitAssetID(c.AssetID)
	if nil != err {
		return err
	}

	if _, _, err := e.view.ForAccount(wsv.OpCheck, wsv.MustExist, destinationName, destinationDomain); nil != err {
		return err
	}
	if _, _, err := e.view.ForAccount(wsv.OpCheck, wsv.MustExist, sourceName, sourceDomain); nil != err {
		return err
	}

	if validate {
		destinationPermissions, err := e.view.AccountPermissions(c.DestinationAccountID)
		if nil != err {
			return err
		}
		if !destinationPermissions.IsSet(permission.Receive) {
			return fault.CommandErrorf(fault.CodeNoPermissions,
				"destination %s can not receive", c.DestinationAccountID)
		}

		if c.SourceAccountID != creatorID {
			creatorName, creatorDomain, err := wsv.SplitAccountID(creatorID)
			if nil != err {
				return err
			}
			granted, _, err := e.view.ForGrantable(wsv.OpGet, wsv.CanExist,
				creatorName, creatorDomain, sourceName, sourceDomain)
			if nil != err {
				return err
			}
			if err := checkGrantablePermissions(creator, granted,
				permission.Transfer, permission.TransferMyAssets); nil != err {
				return err
			}
		} else if err := checkPermissions(creator, permission.Transfer); nil != err {
			return err
		}

		maxSize, found, err := e.view.ForSetting(wsv.OpGet, wsv.CanExist, wsv.SettingMaxDescriptionSize)
		if nil != err {
			return err
		}
		if found {
			limit, err := strconv.ParseUint(maxSize, 10, 64)
			if nil == err && uint64(len(c.Description)) > limit {
				return fault.CommandErrorf(fault.CodeInvalidFieldSize, "too big description")
			}
		}
	}

	precision, _, err := e.view.ForAsset(wsv.OpGet, wsv.MustExist, assetName, assetDomain)
	if nil != err {
		return err
	}

	delta, err := amount.NewFromString(c.Amount)
	if nil != err {
		return err
	}
	if delta.Precision() > precision {
		return fault.CommandErrorf(fault.CodeInvalidAmount,
			"invalid precision of asset %s: expected %d, but got %d",
			c.AssetID, precision, delta.Precision())
	}

	sourceBalance, _, err := e.view.ForAccountAsset(wsv.OpGet, wsv.MustExist, sourceName, sourceDomain, c.AssetID, precision)
	if nil != err {
		return err
	}
	sourceBalance = sourceBalance.Sub(delta)
	if sourceBalance.IsNegative() {
		return fault.CommandErrorf(fault.CodeNotEnoughAssets, "not enough assets")
	}

	destinationAssetSize, _, err := e.view.ForAssetSize(wsv.OpGet, wsv.CanExist, destinationName, destinationDomain)
	if nil != err {
		return err
	}

	destinationBalance, held, err := e.view.ForAccountAsset(wsv.OpGet, wsv.CanExist, destinationName, destinationDomain, c.AssetID, precision)
	if nil != err {
		return err
	}
	if !held {
		destinationAssetSize += 1
	}
	destinationBalance = destinationBalance.Add(delta)
	if destinationBalance.IsNegative() {
		return fault.CommandErrorf(fault.CodeIncorrectBalance, "incorrect balance")
	}

	if err := e.view.PutAccountAsset(sourceName, sourceDomain, c.AssetID, sourceBalance); nil != err {
		return err
	}
	if err := e.view.PutAccountAsset(destinationName, destinationDomain, c.AssetID, destinationBalance); nil != err {
		return err
	}
	return e.view.PutAssetSize(destinationName, destinationDomain, destinationAssetSize)
}

func (e *Executor) addPeer(c command.AddPeer, validate bool, creator permission.RoleSet) error {
	if validate {
		if err := checkPermissions(creator, permission.AddPeer); nil != err {
			return err
		}
	}

	if _, _, err := e.view.ForPeerAddress(wsv.OpCheck, wsv.MustNotExist, c.PublicKey); nil != err {
		return err
	}

	count, _, err := e.view.PeersCount(wsv.CanExist)
	if nil != err {
		return err
	}
	if err := e.view.PutPeersCount(count + 1); nil != err {
		return err
	}
	if err := e.view.PutPeerAddress(c.PublicKey, c.Address); nil != err {
		return err
	}
	if "" != c.TLSCertificate {
		return e.view.PutPeerTLS(c.PublicKey, c.TLSCertificate)
	}
	return nil
}

func (e *Executor) removePeer(c command.RemovePeer, validate bool, creator permission.RoleSet) error {
	if "" == c.PublicKey {
		return fault.CommandErrorf(fault.CodePublicKeyIsEmpty, "pubkey empty")
	}

	if validate {
		if err := checkPermissions(creator, permission.RemovePeer); nil != err {
			return err
		}
	}

	if _, _, err := e.view.ForPeerAddress(wsv.OpCheck, wsv.MustExist, c.PublicKey); nil != err {
		return err
	}

	count, _, err := e.view.PeersCount(wsv.MustExist)
	if nil != err {
		return err
	}
	if 1 == count {
		return fault.CommandErrorf(fault.CodePeersCountIsNotEnough,
			"can not remove last peer %s", c.PublicKey)
	}

	if err := e.view.PutPeersCount(count - 1); nil != err {
		return err
	}
	return e.view.DeletePeer(c.PublicKey)
}

func (e *Executor) addSignatory(c command.AddSignatory, creatorID string, validate bool, creator permission.RoleSet) error {
	accountName, accountDomain, err := wsv.SplitAccountID(c.AccountID)
	if nil != err {
		return err
	}

	if validate {
		if creatorID == c.AccountID {
			if err := checkPermissions(creator, permission.AddSignatory); nil != err {
				return err
			}
		} else {
			creatorName, creatorDomain, err := wsv.SplitAccountID(creatorID)
			if nil != err {
				return err
			}
			granted, _, err := e.view.ForGrantable(wsv.OpGet, wsv.CanExist,
				creatorName, creatorDomain, accountName, accountDomain)
			if nil != err {
				return err
			}
			if err := checkGrantablePermissions(creator, granted,
				permission.AddSignatory, permission.AddMySignatory); nil != err {
				return err
			}
		}
	}

	if _, _, err := e.view.ForAccount(wsv.OpCheck, wsv.MustExist, accountName, accountDomain); nil != err {
		return err
	}
	if _, err := e.view.ForSignatory(wsv.OpCheck, wsv.MustNotExist, accountName, accountDomain, c.PublicKey); nil != err {
		return err
	}
	_, err = e.view.ForSignatory(wsv.OpPut, wsv.CanExist, accountName, accountDomain, c.PublicKey)
	return err
}

func (e *Executor) removeSignatory(c command.RemoveSignatory, creatorID string, validate bool, creator permission.RoleSet) error {
	accountName, accountDomain, err := wsv.SplitAccountID(c.AccountID)
	if nil != err {
		return err
	}

	if validate {
		quorum, _, err := e.view.ForAccount(wsv.OpGet, wsv.MustExist, accountName, accountDomain)
		if nil != err {
			return err
		}

		if creatorID == c.AccountID {
			if err := checkPermissions(creator, permission.RemoveSignatory); nil != err {
				return err
			}
		} else {
			creatorName, creatorDomain, err := wsv.SplitAccountID(creatorID)
			if nil != err {
				return err
			}
			granted, _, err := e.view.ForGrantable(wsv.OpGet, wsv.CanExist,
				creatorName, creatorDomain, accountName, accountDomain)
			if nil != err {
				return err
			}
			if err := checkGrantablePermissions(creator, granted,
				permission.RemoveSignatory, permission.RemoveMySignatory); nil != err {
				return err
			}
		}

		if _, err := e.view.ForSignatory(wsv.OpCheck, wsv.MustExist, accountName, accountDomain, c.PublicKey); nil != err {
			return err
		}

		// the removal must leave at least quorum signatories
		if e.view.SignatoryCount(accountName, accountDomain) <= quorum {
			return fault.CommandErrorf(fault.CodeCountNotEnough,
				"remove signatory %s for account %s with quorum %d failed",
				c.PublicKey, c.AccountID, quorum)
		}
	}

	_, err = e.view.ForSignatory(wsv.OpDel, wsv.CanExist, accountName, accountDomain, c.PublicKey)
	return err
}

func (e *Executor) setQuorum(c command.SetQuorum, creatorID string, validate bool, creator permission.RoleSet) error {
	accountName, accountDomain, err := wsv.SplitAccountID(c.AccountID)
	if nil != err {
		return err
	}

	if validate {
		if _, _, err := e.view.ForAccount(wsv.OpCheck, wsv.MustExist, accountName, accountDomain); nil != err {
			return err
		}

		if creatorID == c.AccountID {
			if err := checkPermissions(creator, permission.SetQuorum); nil != err {
				return err
			}
		} else {
			creatorName, creatorDomain, err := wsv.SplitAccountID(creatorID)
			if nil != err {
				return err
			}
			granted, _, err := e.view.ForGrantable(wsv.OpGet, wsv.CanExist,
				creatorName, creatorDomain, accountName, accountDomain)
			if nil != err {
				return err
			}
			if err := checkGrantablePermissions(creator, granted,
				permission.SetQuorum, permission.SetMyQuorum); nil != err {
				return err
			}
		}
	}

	if 0 == c.Quorum {
		return fault.CommandErrorf(fault.CodeCountNotEnough, "quorum can not be zero")
	}
	if c.Quorum > e.view.SignatoryCount(accountName, accountDomain) {
		return fault.CommandErrorf(fault.CodeCountNotEnough,
			"quorum value more than signatories: %s", c.AccountID)
	}

	return e.view.PutQuorum(accountName, accountDomain, c.Quorum)
}

func (e *Executor) createAccount(c command.CreateAccount, validate bool, creator permission.RoleSet) error {
	pubkey := strings.ToLower(c.PublicKey)

	if validate {
		if err := checkPermissions(creator, permission.CreateAccount); nil != err {
			return err
		}
	}

	defaultRole, _, err := e.view.ForDomain(wsv.OpGet, wsv.MustExist, c.DomainID)
	if nil != err {
		return err
	}
	rolePermissions, _, err := e.view.ForRole(wsv.OpGet, wsv.MustExist, defaultRole)
	if nil != err {
		return err
	}

	// no privilege escalation through the default role
	if validate && !rolePermissions.IsSubsetOf(creator) {
		return fault.CommandErrorf(fault.CodeNoPermissions, "insufficient permissions")
	}

	if validate {
		if _, _, err := e.view.ForAccount(wsv.OpCheck, wsv.MustNotExist, c.AccountName, c.DomainID); nil != err {
			return err
		}
	}

	if _, err := e.view.ForAccountRole(wsv.OpPut, wsv.CanExist, c.AccountName, c.DomainID, defaultRole); nil != err {
		return err
	}
	if _, err := e.view.ForSignatory(wsv.OpPut, wsv.CanExist, c.AccountName, c.DomainID, pubkey); nil != err {
		return err
	}
	return e.view.PutQuorum(c.AccountName, c.DomainID, 1)
}

func (e *Executor) createAsset(c command.CreateAsset, validate bool, creator permission.RoleSet) error {
	if validate {
		if err := checkPermissions(creator, permission.CreateAsset); nil != err {
			return err
		}
		if _, _, err := e.view.ForAsset(wsv.OpCheck, wsv.MustNotExist, c.AssetName, c.DomainID); nil != err {
			return err
		}
		if _, _, err := e.view.ForDomain(wsv.OpCheck, wsv.MustExist, c.DomainID); nil != err {
			return err
		}
	}

	return e.view.PutAsset(c.AssetName, c.DomainID, c.Precision)
}

func (e *Executor) createDomain(c command.CreateDomain, validate bool, creator permission.RoleSet) error {
	if validate {
		// no privilege escalation check here
		if err := checkPermissions(creator, permission.CreateDomain); nil != err {
			return err
		}
		if _, _, err := e.view.ForDomain(wsv.OpCheck, wsv.MustNotExist, c.DomainID); nil != err {
			return err
		}
		if _, _, err := e.view.ForRole(wsv.OpCheck, wsv.MustExist, c.DefaultRole); nil != err {
			return err
		}
	}

	if err := e.view.PutDomainsCount(e.view.DomainsCount() + 1); nil != err {
		return err
	}
	return e.view.PutDomain(c.DomainID, c.DefaultRole)
}

func (e *Executor) createRole(c command.CreateRole, validate bool, creator permission.RoleSet) error {
	rolePermissions := c.Permissions
	if rolePermissions.IsSet(permission.Root) {
		rolePermissions = rolePermissions.SetAll()
	}

	if validate {
		if err := checkPermissions(creator, permission.CreateRole); nil != err {
			return err
		}
		if !rolePermissions.IsSubsetOf(creator) {
			return fault.CommandErrorf(fault.CodeNoPermissions, "insufficient permissions")
		}
	}

	if _, _, err := e.view.ForRole(wsv.OpCheck, wsv.MustNotExist, c.RoleName); nil != err {
		return fault.CommandErrorf(fault.CodeRoleAlreadyExists, "already exists")
	}

	return e.view.PutRole(c.RoleName, rolePermissions)
}

func (e *Executor) appendRole(c command.AppendRole, validate bool, creator permission.RoleSet) error {
	accountName, accountDomain, err := wsv.SplitAccountID(c.AccountID)
	if nil != err {
		return err
	}

	if validate {
		if err := checkPermissions(creator, permission.AppendRole); nil != err {
			return err
		}
		rolePermissions, _, err := e.view.ForRole(wsv.OpGet, wsv.MustExist, c.RoleName)
		if nil != err {
			return err
		}
		if !rolePermissions.IsSubsetOf(creator) {
			return fault.CommandErrorf(fault.CodeNoPermissions, "insufficient permissions")
		}
	}

	if _, _, err := e.view.ForAccount(wsv.OpCheck, wsv.MustExist, accountName, accountDomain); nil != err {
		return err
	}
	if _, err := e.view.ForAccountRole(wsv.OpCheck, wsv.MustNotExist, accountName, accountDomain, c.RoleName); nil != err {
		return err
	}
	_, err = e.view.ForAccountRole(wsv.OpPut, wsv.CanExist, accountName, accountDomain, c.RoleName)
	return err
}

func (e *Executor) detachRole(c command.DetachRole, validate bool, creator permission.RoleSet) error {
	accountName, accountDomain, err := wsv.SplitAccountID(c.AccountID)
	if nil != err {
		return err
	}

	if validate {
		if err := checkPermissions(creator, permission.DetachRole); nil != err {
			return err
		}
	}

	if _, _, err := e.view.ForRole(wsv.OpCheck, wsv.MustExist, c.RoleName); nil != err {
		return err
	}
	if validate {
		if _, err := e.view.ForAccountRole(wsv.OpCheck, wsv.MustExist, accountName, accountDomain, c.RoleName); nil != err {
			return err
		}
	}
	_, err = e.view.ForAccountRole(wsv.OpDel, wsv.CanExist, accountName, accountDomain, c.RoleName)
	return err
}

func (e *Executor) grantPermission(c command.GrantPermission, creatorID string, validate bool, creator permission.RoleSet) error {
	creatorName, creatorDomain, err := wsv.SplitAccountID(creatorID)
	if nil != err {
		return err
	}
	accountName, accountDomain, err := wsv.SplitAccountID(c.AccountID)
	if nil != err {
		return err
	}

	if validate {
		if err := checkPermissions(creator, permission.PermissionFor(c.Permission)); nil != err {
			return err
		}
		if _, _, err := e.view.ForAccount(wsv.OpCheck, wsv.MustExist, accountName, accountDomain); nil != err {
			return err
		}
	}

	granted, _, err := e.view.ForGrantable(wsv.OpGet, wsv.CanExist,
		accountName, accountDomain, creatorName, creatorDomain)
	if nil != err {
		return err
	}
	if granted.IsSet(c.Permission) {
		return fault.CommandErrorf(fault.CodePermissionIsAlreadySet, "permission is already set")
	}

	return e.view.PutGrantable(accountName, accountDomain, creatorName, creatorDomain,
		granted.Set(c.Permission))
}

func (e *Executor) revokePermission(c command.RevokePermission, creatorID string, validate bool, creator permission.RoleSet) error {
	creatorName, creatorDomain, err := wsv.SplitAccountID(creatorID)
	if nil != err {
		return err
	}
	accountName, accountDomain, err := wsv.SplitAccountID(c.AccountID)
	if nil != err {
		return err
	}

	if validate {
		if err := checkPermissions(creator, permission.PermissionFor(c.Permission)); nil != err {
			return err
		}
		if _, _, err := e.view.ForAccount(wsv.OpCheck, wsv.MustExist, accountName, accountDomain); nil != err {
			return err
		}
	}

	granted, _, err := e.view.ForGrantable(wsv.OpGet, wsv.CanExist,
		accountName, accountDomain, creatorName, creatorDomain)
	if nil != err {
		return err
	}
	if !granted.IsSet(c.Permission) {
		return fault.CommandErrorf(fault.CodeNoPermissions, "permission not set")
	}

	return e.view.PutGrantable(accountName, accountDomain, creatorName, creatorDomain,
		granted.Unset(c.Permission))
}

// the detail writer is the creator, or "genesis" for creator-less
// genesis transactions
func detailWriter(creatorID string) string {
	if "" == creatorID {
		return wsv.GenesisWriter
	}
	return creatorID
}

func (e *Executor) setAccountDetail(c command.SetAccountDetail, creatorID string, validate bool, creator permission.RoleSet) error {
	accountName, accountDomain, err := wsv.SplitAccountID(c.AccountID)
	if nil != err {
		return err
	}

	if validate {
		if c.AccountID != creatorID {
			creatorName, creatorDomain, err := wsv.SplitAccountID(creatorID)
			if nil != err {
				return err
			}
			granted, _, err := e.view.ForGrantable(wsv.OpGet, wsv.CanExist,
				creatorName, creatorDomain, accountName, accountDomain)
			if nil != err {
				return err
			}
			if err := checkGrantablePermissions(creator, granted,
				permission.SetDetail, permission.SetMyAccountDetail); nil != err {
				return err
			}
		}
		if _, _, err := e.view.ForAccount(wsv.OpCheck, wsv.MustExist, accountName, accountDomain); nil != err {
			return err
		}
	}

	writer := detailWriter(creatorID)

	_, found, err := e.view.ForDetail(wsv.OpGet, wsv.CanExist, accountName, accountDomain, writer, c.Key)
	if nil != err {
		return err
	}
	if err := e.view.PutDetail(accountName, accountDomain, writer, c.Key, c.Value); nil != err {
		return err
	}

	if !found {
		count, _, err := e.view.ForDetailsCount(wsv.OpGet, wsv.CanExist, accountName, accountDomain)
		if nil != err {
			return err
		}
		return e.view.PutDetailsCount(accountName, accountDomain, count+1)
	}
	return nil
}

func (e *Executor) compareAndSetAccountDetail(c command.CompareAndSetAccountDetail, creatorID string, validate bool, creator permission.RoleSet) error {
	accountName, accountDomain, err := wsv.SplitAccountID(c.AccountID)
	if nil != err {
		return err
	}

	if validate && c.AccountID != creatorID {
		creatorName, creatorDomain, err := wsv.SplitAccountID(creatorID)
		if nil != err {
			return err
		}
		granted, _, err := e.view.ForGrantable(wsv.OpGet, wsv.CanExist,
			creatorName, creatorDomain, accountName, accountDomain)
		if nil != err {
			return err
		}
		if err := checkGrantablePermissions(creator, granted,
			permission.SetDetail, permission.SetMyAccountDetail); nil != err {
			return err
		}
	}

	if _, _, err := e.view.ForAccount(wsv.OpCheck, wsv.MustExist, accountName, accountDomain); nil != err {
		return err
	}

	writer := detailWriter(creatorID)

	// a single read decides both the comparison and the counter update
	stored, found, err := e.view.ForDetail(wsv.OpGet, wsv.CanExist, accountName, accountDomain, writer, c.Key)
	if nil != err {
		return err
	}

	equal := false
	if nil != c.OldValue && found {
		equal = stored == *c.OldValue
	}
	same := !found
	if c.CheckEmpty {
		same = nil == c.OldValue && !found
	}

	if !equal && !same {
		return fault.CommandErrorf(fault.CodeIncorrectOldValue, "old value incorrect")
	}

	if err := e.view.PutDetail(accountName, accountDomain, writer, c.Key, c.Value); nil != err {
		return err
	}
	if !found {
		count, _, err := e.view.ForDetailsCount(wsv.OpGet, wsv.CanExist, accountName, accountDomain)
		if nil != err {
			return err
		}
		return e.view.PutDetailsCount(accountName, accountDomain, count+1)
	}
	return nil
}
