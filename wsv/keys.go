// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wsv - the world state view
//
// structured key templates over the storage facade plus the typed
// access helpers used by the command executor; the key layout is
// persisted state and must remain stable across restarts
package wsv

import (
	"fmt"
	"strings"

	"github.com/bitmark-inc/permissiond/fault"
)

// key templates - slash separated fields, fixed and exhaustive
const (
	keyAccount           = "account/%s/%s"          // domain, name → quorum
	keySignatory         = "signatory/%s/%s/%s"     // domain, name, pubkey
	keySignatoryPrefix   = "signatory/%s/%s/"       // domain, name
	keyAccountRole       = "account_role/%s/%s/%s"  // domain, name, role
	keyAccountRolePrefix = "account_role/%s/%s/"    // domain, name
	keyAccountAsset      = "account_asset/%s/%s/%s" // domain, name, asset id
	keyAssetSize         = "asset_size/%s/%s"       // domain, name
	keyDetailsCount      = "details_count/%s/%s"    // domain, name
	keyDetail            = "detail/%s/%s/%s/%s"     // domain, name, writer, key
	keyAsset             = "asset/%s/%s"            // domain, asset name
	keyDomain            = "domain/%s"              // domain id
	keyDomainsCount      = "domains/total_count"
	keyRole              = "role/%s"             // role name
	keyGrantable         = "grantable/%s/%s/%s/%s" // grantee domain, grantee, grantor domain, grantor
	keyPeerAddress       = "peers/address/%s"    // pubkey
	keyPeerAddressPrefix = "peers/address/"
	keyPeerTLS           = "peers/tls/%s" // pubkey
	keyPeersCount        = "peers/count"
	keySetting           = "settings/%s" // setting key
	keyLedgerHeight      = "ledger/height"
	keyLedgerTopHash     = "ledger/top_hash"
)

// SettingMaxDescriptionSize - settings key bounding transfer descriptions
const SettingMaxDescriptionSize = "max_description_size"

// GenesisWriter - detail writer recorded for creator-less transactions
const GenesisWriter = "genesis"

// SplitAccountID - "name@domain" → name, domain
func SplitAccountID(accountID string) (string, string, error) {
	i := strings.IndexByte(accountID, '@')
	if i <= 0 || i == len(accountID)-1 {
		return "", "", fault.CommandErrorf(fault.CodeNoAccount, "malformed account id: %s", accountID)
	}
	return accountID[:i], accountID[i+1:], nil
}

// SplitAssetID - "asset#domain" → asset name, domain
func SplitAssetID(assetID string) (string, string, error) {
	i := strings.IndexByte(assetID, '#')
	if i <= 0 || i == len(assetID)-1 {
		return "", "", fault.CommandErrorf(fault.CodeNoAsset, "malformed asset id: %s", assetID)
	}
	return assetID[:i], assetID[i+1:], nil
}

// AccountID - name, domain → "name@domain"
func AccountID(name string, domain string) string {
	return name + "@" + domain
}

// AssetID - name, domain → "name#domain"
func AssetID(name string, domain string) string {
	return name + "#" + domain
}

func accountKey(name string, domain string) string {
	return fmt.Sprintf(keyAccount, domain, name)
}

func signatoryKey(name string, domain string, pubkey string) string {
	return fmt.Sprintf(keySignatory, domain, name, pubkey)
}

func signatoryPrefix(name string, domain string) string {
	return fmt.Sprintf(keySignatoryPrefix, domain, name)
}

func accountRoleKey(name string, domain string, role string) string {
	return fmt.Sprintf(keyAccountRole, domain, name, role)
}

func accountRolePrefix(name string, domain string) string {
	return fmt.Sprintf(keyAccountRolePrefix, domain, name)
}

func accountAssetKey(name string, domain string, assetID string) string {
	return fmt.Sprintf(keyAccountAsset, domain, name, assetID)
}

func assetSizeKey(name string, domain string) string {
	return fmt.Sprintf(keyAssetSize, domain, name)
}

func detailsCountKey(name string, domain string) string {
	return fmt.Sprintf(keyDetailsCount, domain, name)
}

func detailKey(name string, domain string, writer string, detail string) string {
	return fmt.Sprintf(keyDetail, domain, name, writer, detail)
}

func assetKey(assetName string, domain string) string {
	return fmt.Sprintf(keyAsset, domain, assetName)
}

func domainKey(domainID string) string {
	return fmt.Sprintf(keyDomain, domainID)
}

func roleKey(roleName string) string {
	return fmt.Sprintf(keyRole, roleName)
}

func grantableKey(granteeName, granteeDomain, grantorName, grantorDomain string) string {
	return fmt.Sprintf(keyGrantable, granteeDomain, granteeName, grantorDomain, grantorName)
}

func peerAddressKey(pubkey string) string {
	return fmt.Sprintf(keyPeerAddress, pubkey)
}

func peerTLSKey(pubkey string) string {
	return fmt.Sprintf(keyPeerTLS, pubkey)
}

func settingKey(name string) string {
	return fmt.Sprintf(keySetting, name)
}
