// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package command

import (
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/permission"
	"github.com/bitmark-inc/permissiond/util"
)

// PackInto implementations - tag then fields in declaration order

func (c AddAssetQuantity) PackInto(p *util.Packer) {
	p.Uint64(tagAddAssetQuantity).String(c.AssetID).String(c.Amount)
}

func (c AddPeer) PackInto(p *util.Packer) {
	p.Uint64(tagAddPeer).String(c.PublicKey).String(c.Address).String(c.TLSCertificate)
}

func (c AddSignatory) PackInto(p *util.Packer) {
	p.Uint64(tagAddSignatory).String(c.AccountID).String(c.PublicKey)
}

func (c AppendRole) PackInto(p *util.Packer) {
	p.Uint64(tagAppendRole).String(c.AccountID).String(c.RoleName)
}

func (c CallEngine) PackInto(p *util.Packer) {
	p.Uint64(tagCallEngine).String(c.Caller).String(c.Callee).String(c.Input)
}

func (c CompareAndSetAccountDetail) PackInto(p *util.Packer) {
	p.Uint64(tagCompareAndSetAccountDetail).String(c.AccountID).String(c.Key).String(c.Value)
	if nil == c.OldValue {
		p.Uint64(0)
	} else {
		p.Uint64(1).String(*c.OldValue)
	}
	if c.CheckEmpty {
		p.Uint64(1)
	} else {
		p.Uint64(0)
	}
}

func (c CreateAccount) PackInto(p *util.Packer) {
	p.Uint64(tagCreateAccount).String(c.AccountName).String(c.DomainID).String(c.PublicKey)
}

func (c CreateAsset) PackInto(p *util.Packer) {
	p.Uint64(tagCreateAsset).String(c.AssetName).String(c.DomainID).Uint64(c.Precision)
}

func (c CreateDomain) PackInto(p *util.Packer) {
	p.Uint64(tagCreateDomain).String(c.DomainID).String(c.DefaultRole)
}

func (c CreateRole) PackInto(p *util.Packer) {
	p.Uint64(tagCreateRole).String(c.RoleName).String(c.Permissions.ToBitstring())
}

func (c DetachRole) PackInto(p *util.Packer) {
	p.Uint64(tagDetachRole).String(c.AccountID).String(c.RoleName)
}

func (c GrantPermission) PackInto(p *util.Packer) {
	p.Uint64(tagGrantPermission).String(c.AccountID).String(c.Permission.String())
}

func (c RemovePeer) PackInto(p *util.Packer) {
	p.Uint64(tagRemovePeer).String(c.PublicKey)
}

func (c RemoveSignatory) PackInto(p *util.Packer) {
	p.Uint64(tagRemoveSignatory).String(c.AccountID).String(c.PublicKey)
}

func (c RevokePermission) PackInto(p *util.Packer) {
	p.Uint64(tagRevokePermission).String(c.AccountID).String(c.Permission.String())
}

func (c SetAccountDetail) PackInto(p *util.Packer) {
	p.Uint64(tagSetAccountDetail).String(c.AccountID).String(c.Key).String(c.Value)
}

func (c SetQuorum) PackInto(p *util.Packer) {
	p.Uint64(tagSetQuorum).String(c.AccountID).Uint64(c.Quorum)
}

func (c SetSettingValue) PackInto(p *util.Packer) {
	p.Uint64(tagSetSettingValue).String(c.Key).String(c.Value)
}

func (c SubtractAssetQuantity) PackInto(p *util.Packer) {
	p.Uint64(tagSubtractAssetQuantity).String(c.AssetID).String(c.Amount)
}

func (c TransferAsset) PackInto(p *util.Packer) {
	p.Uint64(tagTransferAsset).String(c.SourceAccountID).String(c.DestinationAccountID).
		String(c.AssetID).String(c.Description).String(c.Amount)
}

// UnpackFrom - read one command from an unpacker
func UnpackFrom(u *util.Unpacker) (Command, error) {
	tag := u.Uint64()
	switch tag {

	case tagAddAssetQuantity:
		return AddAssetQuantity{AssetID: u.String(), Amount: u.String()}, nil

	case tagAddPeer:
		return AddPeer{PublicKey: u.String(), Address: u.String(), TLSCertificate: u.String()}, nil

	case tagAddSignatory:
		return AddSignatory{AccountID: u.String(), PublicKey: u.String()}, nil

	case tagAppendRole:
		return AppendRole{AccountID: u.String(), RoleName: u.String()}, nil

	case tagCallEngine:
		return CallEngine{Caller: u.String(), Callee: u.String(), Input: u.String()}, nil

	case tagCompareAndSetAccountDetail:
		c := CompareAndSetAccountDetail{AccountID: u.String(), Key: u.String(), Value: u.String()}
		if 1 == u.Uint64() {
			old := u.String()
			c.OldValue = &old
		}
		c.CheckEmpty = 1 == u.Uint64()
		return c, nil

	case tagCreateAccount:
		return CreateAccount{AccountName: u.String(), DomainID: u.String(), PublicKey: u.String()}, nil

	case tagCreateAsset:
		return CreateAsset{AssetName: u.String(), DomainID: u.String(), Precision: u.Uint64()}, nil

	case tagCreateDomain:
		return CreateDomain{DomainID: u.String(), DefaultRole: u.String()}, nil

	case tagCreateRole:
		name := u.String()
		permissions, err := permission.RoleSetFromBitstring(u.String())
		if nil != err {
			return nil, err
		}
		return CreateRole{RoleName: name, Permissions: permissions}, nil

	case tagDetachRole:
		return DetachRole{AccountID: u.String(), RoleName: u.String()}, nil

	case tagGrantPermission:
		c := GrantPermission{AccountID: u.String()}
		g, err := permission.GrantableFromString(u.String())
		if nil != err {
			return nil, err
		}
		c.Permission = g
		return c, nil

	case tagRemovePeer:
		return RemovePeer{PublicKey: u.String()}, nil

	case tagRemoveSignatory:
		return RemoveSignatory{AccountID: u.String(), PublicKey: u.String()}, nil

	case tagRevokePermission:
		c := RevokePermission{AccountID: u.String()}
		g, err := permission.GrantableFromString(u.String())
		if nil != err {
			return nil, err
		}
		c.Permission = g
		return c, nil

	case tagSetAccountDetail:
		return SetAccountDetail{AccountID: u.String(), Key: u.String(), Value: u.String()}, nil

	case tagSetQuorum:
		return SetQuorum{AccountID: u.String(), Quorum: u.Uint64()}, nil

	case tagSetSettingValue:
		return SetSettingValue{Key: u.String(), Value: u.String()}, nil

	case tagSubtractAssetQuantity:
		return SubtractAssetQuantity{AssetID: u.String(), Amount: u.String()}, nil

	case tagTransferAsset:
		return TransferAsset{
			SourceAccountID:      u.String(),
			DestinationAccountID: u.String(),
			AssetID:              u.String(),
			Description:          u.String(),
			Amount:               u.String(),
		}, nil
	}

	return nil, fault.InvalidError("unknown command tag")
}
