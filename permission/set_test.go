// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permissiond/permission"
)

func TestRoleSetBasic(t *testing.T) {
	s := permission.NewRoleSet(permission.AddPeer, permission.Transfer)

	assert.True(t, s.IsSet(permission.AddPeer), "AddPeer")
	assert.True(t, s.IsSet(permission.Transfer), "Transfer")
	assert.False(t, s.IsSet(permission.CreateAccount), "CreateAccount")

	s = s.Unset(permission.AddPeer)
	assert.False(t, s.IsSet(permission.AddPeer), "AddPeer after unset")
}

func TestRootImpliesAll(t *testing.T) {
	s := permission.NewRoleSet(permission.Root)

	assert.True(t, s.IsSet(permission.RemovePeer), "root implies remove_peer")
	assert.True(t, permission.NewRoleSet(permission.Transfer, permission.CreateAsset).IsSubsetOf(s),
		"everything is a subset of a root holder")
}

func TestSubset(t *testing.T) {
	small := permission.NewRoleSet(permission.Transfer)
	large := permission.NewRoleSet(permission.Transfer, permission.Receive)

	assert.True(t, small.IsSubsetOf(large), "small ⊆ large")
	assert.False(t, large.IsSubsetOf(small), "large ⊄ small")
}

func TestRoleBitstringRoundTrip(t *testing.T) {
	s := permission.NewRoleSet(permission.CreateDomain, permission.SetDetail, permission.Root)
	restored, err := permission.RoleSetFromBitstring(s.ToBitstring())
	assert.NoError(t, err, "parse")
	assert.Equal(t, s, restored, "round trip")
}

func TestGrantableBitstringRoundTrip(t *testing.T) {
	s := permission.NewGrantableSet(permission.TransferMyAssets, permission.SetMyQuorum)
	restored, err := permission.GrantableSetFromBitstring(s.ToBitstring())
	assert.NoError(t, err, "parse")
	assert.Equal(t, s, restored, "round trip")
}

func TestBitstringRejectsGarbage(t *testing.T) {
	_, err := permission.RoleSetFromBitstring("01x")
	assert.Error(t, err, "invalid character")
}

func TestPermissionFor(t *testing.T) {
	assert.Equal(t, permission.GrantTransferMyAssets, permission.PermissionFor(permission.TransferMyAssets))
	assert.Equal(t, permission.GrantSetMyQuorum, permission.PermissionFor(permission.SetMyQuorum))
	assert.Equal(t, permission.GrantSetMyAccountDetail, permission.PermissionFor(permission.SetMyAccountDetail))
}

func TestNameRoundTrip(t *testing.T) {
	r, err := permission.RoleFromString(permission.AddPeer.String())
	assert.NoError(t, err, "role lookup")
	assert.Equal(t, permission.AddPeer, r, "role name round trip")

	g, err := permission.GrantableFromString(permission.AddMySignatory.String())
	assert.NoError(t, err, "grantable lookup")
	assert.Equal(t, permission.AddMySignatory, g, "grantable name round trip")
}
