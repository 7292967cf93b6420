package cachestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save("/repo/a", []byte("snapshot-a")))

	data, ok, err := store.Load("/repo/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "snapshot-a", string(data))
}

func TestStore_LoadMissingRootReturnsNotFound(t *testing.T) {
	store := openTestStore(t)

	data, ok, err := store.Load("/repo/missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestStore_SaveReplacesPriorValue(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save("/repo/a", []byte("first")))
	require.NoError(t, store.Save("/repo/a", []byte("second")))

	data, ok, err := store.Load("/repo/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(data))
}

func TestStore_Delete(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save("/repo/a", []byte("snapshot-a")))
	require.NoError(t, store.Delete("/repo/a"))

	_, ok, err := store.Load("/repo/a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DifferentRootsAreIndependentKeys(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save("/repo/a", []byte("snapshot-a")))
	require.NoError(t, store.Save("/repo/b", []byte("snapshot-b")))

	dataA, _, err := store.Load("/repo/a")
	require.NoError(t, err)
	dataB, _, err := store.Load("/repo/b")
	require.NoError(t, err)

	assert.Equal(t, "snapshot-a", string(dataA))
	assert.Equal(t, "snapshot-b", string(dataB))
}
