package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemory_SetGet(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, "key", []byte("value")))

	val, ok, err := db.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), val)
}

func TestGet_MissingKey(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	val, ok, err := db.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestDelete(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, "key", []byte("value")))
	require.NoError(t, db.Delete(ctx, "key"))
	require.NoError(t, db.Delete(ctx, "key"))

	_, ok, err := db.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := DefaultConfig(dir)
	cfg.GCInterval = 0
	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, "persistent", []byte("yes")))
	require.NoError(t, db.Close())

	db, err = Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	val, ok, err := db.Get(ctx, "persistent")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("yes"), val)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestOpen_WithGCRunnerCloses(t *testing.T) {
	db, err := Open(DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestGet_CancelledContext(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = db.Get(ctx, "key")
	assert.ErrorIs(t, err, context.Canceled)
}
