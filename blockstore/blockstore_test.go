// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockstore_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/blockrecord"
	"github.com/bitmark-inc/permissiond/blockstore"
	"github.com/bitmark-inc/permissiond/command"
	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/storage"
	"github.com/bitmark-inc/permissiond/transaction"
)

// configure for testing
func setup(t *testing.T) (*blockstore.Store, func()) {
	directory, err := os.MkdirTemp("", "blockstore-test")
	require.NoError(t, err, "temp dir")

	_ = logger.Initialise(logger.Configuration{
		Directory: directory,
		File:      "test.log",
		Size:      50000,
		Count:     10,
	})

	store, err := storage.New("blocks", directory)
	require.NoError(t, err, "open store")

	blocks, err := blockstore.New(store)
	require.NoError(t, err, "open block log")

	return blocks, func() {
		store.Close()
		logger.Finalise()
		os.RemoveAll(directory)
	}
}

func makeBlock(height uint64, prevHash blockrecord.Block) *blockrecord.Block {
	b := &blockrecord.Block{
		Height:      height,
		CreatedTime: height,
		Transactions: []*transaction.Transaction{
			{
				CreatorID:   "u@d",
				CreatedTime: height,
				Quorum:      1,
				Commands: []command.Command{
					command.SetAccountDetail{AccountID: "u@d", Key: "h", Value: "v"},
				},
			},
		},
	}
	if height > 1 {
		b.PrevHash = prevHash.Hash()
	}
	return b
}

func TestAppendAndRead(t *testing.T) {
	blocks, teardown := setup(t)
	defer teardown()

	assert.Equal(t, uint64(0), blocks.TopHeight(), "empty log")

	genesis := makeBlock(1, blockrecord.Block{})
	require.NoError(t, blocks.Append(genesis), "append genesis")

	second := makeBlock(2, *genesis)
	require.NoError(t, blocks.Append(second), "append second")
	assert.Equal(t, uint64(2), blocks.TopHeight(), "top height")

	restored, err := blocks.Block(2)
	require.NoError(t, err, "read block 2")
	assert.Equal(t, second.Hash(), restored.Hash(), "block round trip")

	_, err = blocks.Block(3)
	assert.Equal(t, fault.ErrBlockNotFound, err, "missing block")
}

func TestAppendRefusesGapsAndForks(t *testing.T) {
	blocks, teardown := setup(t)
	defer teardown()

	genesis := makeBlock(1, blockrecord.Block{})
	require.NoError(t, blocks.Append(genesis), "append genesis")

	gap := makeBlock(3, *genesis)
	assert.Equal(t, fault.ErrBlockHeightGap, blocks.Append(gap), "height gap refused")

	fork := makeBlock(2, *makeBlock(1, blockrecord.Block{}))
	wrongPrev := blockrecord.Block{Height: 1}
	fork.PrevHash = wrongPrev.Hash()
	assert.Equal(t, fault.ErrBlockTopHashMismatch, blocks.Append(fork), "wrong prev hash refused")
}

func TestReloadSeesExternalState(t *testing.T) {
	blocks, teardown := setup(t)
	defer teardown()

	genesis := makeBlock(1, blockrecord.Block{})
	require.NoError(t, blocks.Append(genesis), "append genesis")
	require.NoError(t, blocks.Reload(), "reload")
	assert.Equal(t, uint64(1), blocks.TopHeight(), "height stable across reload")
}
