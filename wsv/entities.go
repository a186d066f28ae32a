// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wsv

import (
	"github.com/bitmark-inc/permissiond/amount"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/permission"
)

// ---------------------------------------------------------------------------
// account: quorum value under account/<domain>/<name>
// ---------------------------------------------------------------------------

// ForAccount - access the account record; OpGet returns the quorum
func (v *View) ForAccount(op Operation, policy Policy, name, domain string) (uint64, bool, error) {
	key := accountKey(name, domain)
	what := "account " + AccountID(name, domain)
	if OpGet == op {
		return v.getUint64(policy, key, fault.CodeNoAccount, what)
	}
	_, found, err := v.access(op, policy, key, nil, fault.CodeNoAccount, what)
	return 0, found, err
}

// PutQuorum - write the account quorum
func (v *View) PutQuorum(name, domain string, quorum uint64) error {
	return v.putUint64(accountKey(name, domain), quorum)
}

// ---------------------------------------------------------------------------
// signatories
// ---------------------------------------------------------------------------

// ForSignatory - access one signatory entry
func (v *View) ForSignatory(op Operation, policy Policy, name, domain, pubkey string) (bool, error) {
	_, found, err := v.access(op, policy, signatoryKey(name, domain, pubkey), nil,
		fault.CodeNoSignatory, "signatory "+pubkey)
	return found, err
}

// SignatoryCount - number of signatories of an account
func (v *View) SignatoryCount(name, domain string) uint64 {
	counter := uint64(0)
	v.store.Iterate(signatoryPrefix(name, domain), func(string, []byte) bool {
		counter += 1
		return true
	})
	return counter
}

// Signatories - all signatory public keys of an account in key order
func (v *View) Signatories(name, domain string) []string {
	prefix := signatoryPrefix(name, domain)
	signatories := []string{}
	v.store.Iterate(prefix, func(key string, _ []byte) bool {
		signatories = append(signatories, key[len(prefix):])
		return true
	})
	return signatories
}

// ---------------------------------------------------------------------------
// account roles and permissions
// ---------------------------------------------------------------------------

// ForAccountRole - access one account-role attachment
func (v *View) ForAccountRole(op Operation, policy Policy, name, domain, role string) (bool, error) {
	_, found, err := v.access(op, policy, accountRoleKey(name, domain, role), nil,
		fault.CodeNoAccount, "role "+role+" of "+AccountID(name, domain))
	return found, err
}

// ForRole - access a role definition; OpGet returns its permission set
func (v *View) ForRole(op Operation, policy Policy, role string) (permission.RoleSet, bool, error) {
	stored, found, err := v.access(op, policy, roleKey(role), nil,
		fault.CodeRoleAlreadyExists, "role "+role)
	if nil != err || OpGet != op || !found {
		return 0, found, err
	}
	set, err := permission.RoleSetFromBitstring(string(stored))
	if nil != err {
		return 0, true, fault.CommandErrorf(fault.CodeException, "corrupt role %s", role)
	}
	return set, true, nil
}

// PutRole - write a role definition
func (v *View) PutRole(role string, set permission.RoleSet) error {
	_, _, err := v.access(OpPut, CanExist, roleKey(role), []byte(set.ToBitstring()), 0, "")
	return err
}

// AccountPermissions - union of the permission sets of every role held
// by an account
func (v *View) AccountPermissions(accountID string) (permission.RoleSet, error) {
	name, domain, err := SplitAccountID(accountID)
	if nil != err {
		return 0, err
	}

	if _, _, err := v.ForAccount(OpCheck, MustExist, name, domain); nil != err {
		return 0, err
	}

	prefix := accountRolePrefix(name, domain)
	permissions := permission.RoleSet(0)
	var innerErr error
	v.store.Iterate(prefix, func(key string, _ []byte) bool {
		set, _, err := v.ForRole(OpGet, MustExist, key[len(prefix):])
		if nil != err {
			innerErr = err
			return false
		}
		permissions |= set
		return true
	})
	return permissions, innerErr
}

// ---------------------------------------------------------------------------
// grantable permissions
// ---------------------------------------------------------------------------

// ForGrantable - access the grantable set a grantor holds over a grantee
func (v *View) ForGrantable(op Operation, policy Policy, granteeName, granteeDomain, grantorName, grantorDomain string) (permission.GrantableSet, bool, error) {
	key := grantableKey(granteeName, granteeDomain, grantorName, grantorDomain)
	stored, found, err := v.access(op, policy, key, nil, fault.CodeNoPermissions, "grantable permissions")
	if nil != err || OpGet != op || !found {
		return 0, found, err
	}
	set, err := permission.GrantableSetFromBitstring(string(stored))
	if nil != err {
		return 0, true, fault.CommandErrorf(fault.CodeException, "corrupt grantable permissions")
	}
	return set, true, nil
}

// PutGrantable - write a grantable permission set
func (v *View) PutGrantable(granteeName, granteeDomain, grantorName, grantorDomain string, set permission.GrantableSet) error {
	key := grantableKey(granteeName, granteeDomain, grantorName, grantorDomain)
	_, _, err := v.access(OpPut, CanExist, key, []byte(set.ToBitstring()), 0, "")
	return err
}

// ---------------------------------------------------------------------------
// assets and balances
// ---------------------------------------------------------------------------

// ForAsset - access an asset definition; OpGet returns its precision
func (v *View) ForAsset(op Operation, policy Policy, assetName, domain string) (uint64, bool, error) {
	key := assetKey(assetName, domain)
	what := "asset " + AssetID(assetName, domain)
	if OpGet == op {
		return v.getUint64(policy, key, fault.CodeNoAsset, what)
	}
	_, found, err := v.access(op, policy, key, nil, fault.CodeNoAsset, what)
	return 0, found, err
}

// PutAsset - write an asset definition with its precision
func (v *View) PutAsset(assetName, domain string, precision uint64) error {
	return v.putUint64(assetKey(assetName, domain), precision)
}

// ForAccountAsset - access a balance; OpGet returns the amount at the
// given precision
func (v *View) ForAccountAsset(op Operation, policy Policy, name, domain, assetID string, precision uint64) (amount.Amount, bool, error) {
	key := accountAssetKey(name, domain, assetID)
	stored, found, err := v.access(op, policy, key, nil,
		fault.CodeNotEnoughAssets, "balance of "+assetID)
	if nil != err || OpGet != op || !found {
		return amount.Zero(precision), found, err
	}
	balance, err := amount.FromStringRepr(string(stored), precision)
	if nil != err {
		return amount.Zero(precision), true, fault.CommandErrorf(fault.CodeException, "corrupt balance of %s", assetID)
	}
	return balance, true, nil
}

// PutAccountAsset - write a balance
func (v *View) PutAccountAsset(name, domain, assetID string, balance amount.Amount) error {
	key := accountAssetKey(name, domain, assetID)
	_, _, err := v.access(OpPut, CanExist, key, []byte(balance.StringRepr()), 0, "")
	return err
}

// ForAssetSize - access the distinct-assets counter of an account
func (v *View) ForAssetSize(op Operation, policy Policy, name, domain string) (uint64, bool, error) {
	return v.getUint64(policy, assetSizeKey(name, domain), fault.CodeNoAccount, "asset counter")
}

// PutAssetSize - write the distinct-assets counter
func (v *View) PutAssetSize(name, domain string, size uint64) error {
	return v.putUint64(assetSizeKey(name, domain), size)
}

// ---------------------------------------------------------------------------
// account details
// ---------------------------------------------------------------------------

// ForDetail - access one account detail; OpGet returns the value
func (v *View) ForDetail(op Operation, policy Policy, name, domain, writer, detail string) (string, bool, error) {
	key := detailKey(name, domain, writer, detail)
	stored, found, err := v.access(op, policy, key, nil, fault.CodeNoAccount, "detail "+detail)
	return string(stored), found, err
}

// PutDetail - write one account detail
func (v *View) PutDetail(name, domain, writer, detail, value string) error {
	_, _, err := v.access(OpPut, CanExist, detailKey(name, domain, writer, detail), []byte(value), 0, "")
	return err
}

// ForDetailsCount - access the details counter of an account
func (v *View) ForDetailsCount(op Operation, policy Policy, name, domain string) (uint64, bool, error) {
	return v.getUint64(policy, detailsCountKey(name, domain), fault.CodeNoAccount, "details counter")
}

// PutDetailsCount - write the details counter
func (v *View) PutDetailsCount(name, domain string, count uint64) error {
	return v.putUint64(detailsCountKey(name, domain), count)
}

// ---------------------------------------------------------------------------
// domains
// ---------------------------------------------------------------------------

// ForDomain - access a domain; OpGet returns its default role
func (v *View) ForDomain(op Operation, policy Policy, domainID string) (string, bool, error) {
	stored, found, err := v.access(op, policy, domainKey(domainID), nil,
		fault.CodeNoAccount, "domain "+domainID)
	return string(stored), found, err
}

// PutDomain - write a domain with its default role
func (v *View) PutDomain(domainID, defaultRole string) error {
	_, _, err := v.access(OpPut, CanExist, domainKey(domainID), []byte(defaultRole), 0, "")
	return err
}

// DomainsCount - total number of domains
func (v *View) DomainsCount() uint64 {
	count, _, _ := v.getUint64(CanExist, keyDomainsCount, 0, "domains counter")
	return count
}

// PutDomainsCount - write the total number of domains
func (v *View) PutDomainsCount(count uint64) error {
	return v.putUint64(keyDomainsCount, count)
}

// ---------------------------------------------------------------------------
// settings
// ---------------------------------------------------------------------------

// ForSetting - access a settings entry; OpGet returns the value
func (v *View) ForSetting(op Operation, policy Policy, name string) (string, bool, error) {
	stored, found, err := v.access(op, policy, settingKey(name), nil,
		fault.CodeException, "setting "+name)
	return string(stored), found, err
}

// PutSetting - write a settings entry
func (v *View) PutSetting(name, value string) error {
	_, _, err := v.access(OpPut, CanExist, settingKey(name), []byte(value), 0, "")
	return err
}
