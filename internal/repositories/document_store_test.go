package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// exerciseDocumentStore runs the same contract against every backend.
func exerciseDocumentStore(t *testing.T, store DocumentStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	missing, err := store.Get(ctx, "does-not-exist")
	require.NoError(t, err)
	require.Nil(t, missing)

	key, err := store.Push(ctx, []byte(`{"firstName":"Jane"}`))
	require.NoError(t, err)
	require.NotEmpty(t, key)

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.JSONEq(t, `{"firstName":"Jane"}`, string(got))

	require.NoError(t, store.Set(ctx, key, []byte(`{"lastName":"Doe"}`)))
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.JSONEq(t, `{"lastName":"Doe"}`, string(got))

	other, err := store.Push(ctx, []byte(`{}`))
	require.NoError(t, err)
	require.NotEqual(t, key, other)

	require.NoError(t, store.Set(ctx, "explicit-key", []byte(`{"a":1}`)))
	got, err = store.Get(ctx, "explicit-key")
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(got))
}

func TestMemoryDocumentStore(t *testing.T) {
	store := NewMemoryDocumentStore()
	exerciseDocumentStore(t, store)
	require.Equal(t, 3, store.Len())
}

func TestMemoryDocumentStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	in := []byte(`{"a":1}`)
	key, err := store.Push(ctx, in)
	require.NoError(t, err)
	in[2] = 'b'

	out, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(out))

	out[2] = 'c'
	again, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(again))
}

func TestSQLiteDocumentStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.db")
	store, err := OpenSQLiteDocumentStore(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	exerciseDocumentStore(t, store)
}

func TestSQLiteDocumentStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "applications.db")

	store, err := OpenSQLiteDocumentStore(ctx, path)
	require.NoError(t, err)
	key, err := store.Push(ctx, []byte(`{"firstName":"Jane"}`))
	require.NoError(t, err)
	store.Close()

	reopened, err := OpenSQLiteDocumentStore(ctx, path)
	require.NoError(t, err)
	t.Cleanup(reopened.Close)

	got, err := reopened.Get(ctx, key)
	require.NoError(t, err)
	require.JSONEq(t, `{"firstName":"Jane"}`, string(got))
}
