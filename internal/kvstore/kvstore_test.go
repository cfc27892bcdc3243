package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := Open(BackendSQLite, filepath.Join(dir, "db", "prefs.db"))
	require.NoError(t, err)
	file, err := Open(BackendFile, filepath.Join(dir, "json", "prefs.json"))
	require.NoError(t, err)
	mem, err := Open(BackendMemory, "")
	require.NoError(t, err)

	stores := map[string]Store{"sqlite": sqlite, "file": file, "memory": mem}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(ctx, "missing.srt")
			require.NoError(t, err)
			assert.False(t, ok)

			keys, err := store.Keys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)

			require.NoError(t, store.Put(ctx, "b.srt", []byte(`{"delay_ms":-250}`)))
			require.NoError(t, store.Put(ctx, "a.srt", []byte(`{"delay_ms":1}`)))

			value, ok, err := store.Get(ctx, "b.srt")
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `{"delay_ms":-250}`, string(value))

			require.NoError(t, store.Put(ctx, "b.srt", []byte(`{"delay_ms":300}`)))
			value, _, err = store.Get(ctx, "b.srt")
			require.NoError(t, err)
			assert.JSONEq(t, `{"delay_ms":300}`, string(value))

			keys, err = store.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a.srt", "b.srt"}, keys)

			require.NoError(t, store.Delete(ctx, "a.srt"))
			require.NoError(t, store.Delete(ctx, "never-there.srt"))
			_, ok, err = store.Get(ctx, "a.srt")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	value := []byte(`{"x":1}`)
	require.NoError(t, m.Put(ctx, "k", value))
	value[2] = 'y'

	got, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(got))
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []Backend{BackendSQLite, BackendFile} {
		t.Run(string(backend), func(t *testing.T) {
			path := filepath.Join(dir, string(backend), "prefs")

			s, err := Open(backend, path)
			require.NoError(t, err)
			require.NoError(t, s.Put(ctx, "movie.srt", []byte(`{"delay_ms":42}`)))
			require.NoError(t, s.Close())

			s, err = Open(backend, path)
			require.NoError(t, err)
			defer s.Close()

			value, ok, err := s.Get(ctx, "movie.srt")
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `{"delay_ms":42}`, string(value))
		})
	}
}

func TestFileStoreRejectsNonJSON(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)

	err = s.Put(context.Background(), "k", []byte("not json"))
	assert.Error(t, err)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Backend("redis"), "")
	assert.Error(t, err)
}
