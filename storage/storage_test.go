// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/storage"
)

// configure for testing
func setup(t *testing.T) (*storage.Store, func()) {
	directory, err := os.MkdirTemp("", "storage-test")
	require.NoError(t, err, "temp dir")

	_ = logger.Initialise(logger.Configuration{
		Directory: directory,
		File:      "test.log",
		Size:      50000,
		Count:     10,
	})

	store, err := storage.New("test", directory)
	require.NoError(t, err, "open store")

	return store, func() {
		store.Close()
		logger.Finalise()
		os.RemoveAll(directory)
	}
}

func TestPutRequiresTransaction(t *testing.T) {
	store, teardown := setup(t)
	defer teardown()

	err := store.Put("k", []byte("v"))
	assert.Error(t, err, "put outside transaction")
}

func TestCommitMakesWritesVisible(t *testing.T) {
	store, teardown := setup(t)
	defer teardown()

	require.NoError(t, store.Begin(), "begin")
	require.NoError(t, store.Put("account/d/u", []byte("1")), "put")

	// visible inside the transaction
	value, ok := store.Get("account/d/u")
	assert.True(t, ok, "read own write")
	assert.Equal(t, []byte("1"), value, "value")

	require.NoError(t, store.Commit(), "commit")

	value, ok = store.Get("account/d/u")
	assert.True(t, ok, "read after commit")
	assert.Equal(t, []byte("1"), value, "value after commit")
}

func TestRollbackDiscards(t *testing.T) {
	store, teardown := setup(t)
	defer teardown()

	require.NoError(t, store.Begin(), "begin")
	require.NoError(t, store.Put("k", []byte("v")), "put")
	require.NoError(t, store.Rollback(), "rollback")

	assert.False(t, store.Has("k"), "rolled back key must be absent")
}

func TestSavepointRollback(t *testing.T) {
	store, teardown := setup(t)
	defer teardown()

	require.NoError(t, store.Begin(), "begin")
	require.NoError(t, store.Put("a", []byte("1")), "put a")
	require.NoError(t, store.Savepoint("cmd"), "savepoint")
	require.NoError(t, store.Put("b", []byte("2")), "put b")
	require.NoError(t, store.RollbackToSavepoint("cmd"), "rollback to savepoint")

	assert.True(t, store.Has("a"), "pre-savepoint write survives")
	assert.False(t, store.Has("b"), "post-savepoint write discarded")

	// the mark survives a rollback
	require.NoError(t, store.Put("c", []byte("3")), "put c")
	require.NoError(t, store.RollbackToSavepoint("cmd"), "second rollback")
	assert.False(t, store.Has("c"), "second rollback discards again")

	require.NoError(t, store.Commit(), "commit")
	assert.True(t, store.Has("a"), "committed")
}

func TestSavepointRelease(t *testing.T) {
	store, teardown := setup(t)
	defer teardown()

	require.NoError(t, store.Begin(), "begin")
	require.NoError(t, store.Savepoint("cmd"), "savepoint")
	require.NoError(t, store.Put("k", []byte("v")), "put")
	require.NoError(t, store.ReleaseSavepoint("cmd"), "release")

	assert.Error(t, store.RollbackToSavepoint("cmd"), "released savepoint is gone")
	require.NoError(t, store.Commit(), "commit")
	assert.True(t, store.Has("k"), "released changes commit")
}

func TestDeleteInsideTransaction(t *testing.T) {
	store, teardown := setup(t)
	defer teardown()

	require.NoError(t, store.Begin(), "begin")
	require.NoError(t, store.Put("k", []byte("v")), "put")
	require.NoError(t, store.Commit(), "commit")

	require.NoError(t, store.Begin(), "begin 2")
	require.NoError(t, store.Delete("k"), "delete")
	assert.False(t, store.Has("k"), "delete visible inside transaction")
	require.NoError(t, store.Commit(), "commit 2")
	assert.False(t, store.Has("k"), "delete persisted")
}

func TestIterateMergesOverlay(t *testing.T) {
	store, teardown := setup(t)
	defer teardown()

	require.NoError(t, store.Begin(), "begin")
	require.NoError(t, store.Put("signatory/d/u/aa", nil), "put aa")
	require.NoError(t, store.Put("signatory/d/u/bb", nil), "put bb")
	require.NoError(t, store.Commit(), "commit")

	require.NoError(t, store.Begin(), "begin 2")
	require.NoError(t, store.Delete("signatory/d/u/aa"), "delete aa")
	require.NoError(t, store.Put("signatory/d/u/cc", nil), "put cc")

	keys := []string{}
	store.Iterate("signatory/d/u/", func(key string, value []byte) bool {
		keys = append(keys, key)
		return true
	})
	assert.Equal(t, []string{"signatory/d/u/bb", "signatory/d/u/cc"}, keys, "merged iteration")

	require.NoError(t, store.Rollback(), "rollback")
}

func TestPreparedCommit(t *testing.T) {
	store, teardown := setup(t)
	defer teardown()

	require.NoError(t, store.Begin(), "begin")
	require.NoError(t, store.Put("k", []byte("v")), "put")
	require.NoError(t, store.Prepare("block-9"), "prepare")

	assert.False(t, store.Has("k"), "prepared data not yet written")
	assert.False(t, store.InTransaction(), "transaction ended by prepare")

	require.NoError(t, store.CommitPrepared("block-9"), "commit prepared")
	assert.True(t, store.Has("k"), "prepared data written")
}

func TestEncodeDecodeUint64(t *testing.T) {
	store, teardown := setup(t)
	defer teardown()

	for _, value := range []uint64{0, 1, 127, 128, 300, 1 << 32, ^uint64(0)} {
		encoded := store.EncodeUint64(value)
		decoded, err := storage.DecodeUint64(encoded)
		assert.NoError(t, err, "decode %d", value)
		assert.Equal(t, value, decoded, "round trip %d", value)
	}
}
