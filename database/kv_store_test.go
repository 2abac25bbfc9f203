package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *KVStore {
	t.Helper()
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewKVStore(db)
}

func TestKVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "data", "pagewidth.db"))

	got, err := s.Get(ctx, []string{"globalSettings"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Set(ctx, map[string][]byte{
		"globalSettings": []byte(`{"activated":true}`),
		"example.com":    []byte(`{"width":800}`),
	}))

	got, err = s.Get(ctx, []string{"globalSettings", "example.com", "example.com/", "example.com"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"globalSettings": []byte(`{"activated":true}`),
		"example.com":    []byte(`{"width":800}`),
	}, got)

	require.NoError(t, s.Set(ctx, map[string][]byte{"example.com": []byte(`{"width":900}`)}))
	got, err = s.Get(ctx, []string{"example.com"})
	require.NoError(t, err)
	assert.Equal(t, `{"width":900}`, string(got["example.com"]))

	require.NoError(t, s.Remove(ctx, []string{"example.com", "never-written"}))
	got, err = s.Get(ctx, []string{"globalSettings", "example.com"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "globalSettings")
}

func TestKVStoreEmptyArguments(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "pagewidth.db"))

	got, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, s.Set(ctx, nil))
	assert.NoError(t, s.Remove(ctx, nil))
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pagewidth.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, NewKVStore(first).Set(ctx, map[string][]byte{"k": []byte("v")}))
	require.NoError(t, first.Close())

	s := openTestStore(t, path)
	got, err := s.Get(ctx, []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got["k"])
}

func TestInitDBAndClose(t *testing.T) {
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "pagewidth.db")))
	require.NotNil(t, DB)
	require.NoError(t, Close())
	assert.Nil(t, DB)
	assert.NoError(t, Close())
}
