// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/permissiond/command"
	"github.com/bitmark-inc/permissiond/permission"
	"github.com/bitmark-inc/permissiond/util"
)

func TestCodecRoundTrip(t *testing.T) {
	oldValue := "previous"
	commands := []command.Command{
		command.CreateRole{RoleName: "admin", Permissions: permission.NewRoleSet(permission.Root)},
		command.CreateDomain{DomainID: "d", DefaultRole: "admin"},
		command.CreateAccount{AccountName: "u", DomainID: "d", PublicKey: "aa"},
		command.TransferAsset{
			SourceAccountID:      "u@d",
			DestinationAccountID: "v@d",
			AssetID:              "coin#d",
			Description:          "rent",
			Amount:               "1.50",
		},
		command.CompareAndSetAccountDetail{
			AccountID: "u@d",
			Key:       "k",
			Value:     "v",
			OldValue:  &oldValue,
		},
		command.GrantPermission{AccountID: "v@d", Permission: permission.TransferMyAssets},
		command.SetQuorum{AccountID: "u@d", Quorum: 2},
	}

	packer := util.NewPacker()
	for _, c := range commands {
		c.PackInto(packer)
	}

	unpacker := util.NewUnpacker(packer.Pack())
	for i, expected := range commands {
		actual, err := command.UnpackFrom(unpacker)
		require.NoError(t, err, "unpack %d", i)
		assert.Equal(t, expected, actual, "command %d", i)
	}
	assert.True(t, unpacker.Ok(), "buffer fully consumed")
}

func TestUnknownTag(t *testing.T) {
	packer := util.NewPacker()
	packer.Uint64(999)
	_, err := command.UnpackFrom(util.NewUnpacker(packer.Pack()))
	assert.Error(t, err, "unknown tag must fail")
}
