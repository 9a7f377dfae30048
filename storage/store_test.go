package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-github-dashboard/internal/config"
	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/jrsteele09/go-github-dashboard/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "github-oauth-data")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, s.Set(ctx, "github-oauth-data", []byte(`{"access_token":"a"}`)))
	got, err := s.Get(ctx, "github-oauth-data")
	require.NoError(t, err)
	require.JSONEq(t, `{"access_token":"a"}`, string(got))

	require.NoError(t, s.Set(ctx, "github-oauth-data", []byte(`{"access_token":"b"}`)))
	got, err = s.Get(ctx, "github-oauth-data")
	require.NoError(t, err)
	require.JSONEq(t, `{"access_token":"b"}`, string(got))

	require.NoError(t, s.Delete(ctx, "github-oauth-data"))
	_, err = s.Get(ctx, "github-oauth-data")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	// Deleting an absent key is not an error.
	require.NoError(t, s.Delete(ctx, "github-oauth-data"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, storage.NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := storage.NewMemoryStore()
	ctx := context.Background()

	v := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", v))
	v[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
}

func TestFileStore(t *testing.T) {
	s, err := storage.NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "currentRepository", []byte(`{"type":"User"}`)))

	_, err = os.Stat(filepath.Join(dir, "currentRepository.json"))
	require.NoError(t, err)

	second, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, "currentRepository")
	require.NoError(t, err)
	require.Equal(t, `{"type":"User"}`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	s, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = s.Set(context.Background(), "../escape", []byte("x"))
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0", MaxRetries: -1})
	defer client.Close()

	s := storage.NewRedisStore(client, "")
	_, err := s.Get(context.Background(), "github-oauth-data")
	require.Error(t, err)
	require.False(t, errors.Is(err, errors.ErrNotFound))

	require.Error(t, s.Set(context.Background(), "github-oauth-data", []byte("x")))
}

type storageConfig struct {
	config.Storage
	backend string
	addr    string
}

func (c storageConfig) GetStorageBackend() string { return c.backend }
func (c storageConfig) GetRedisAddr() string {
	if c.addr != "" {
		return c.addr
	}
	return c.Storage.GetRedisAddr()
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, closeFn, err := storage.Open(ctx, storageConfig{backend: config.StorageMemory}, "")
		require.NoError(t, err)
		defer closeFn()
		require.IsType(t, &storage.MemoryStore{}, s)
	})

	t.Run("file", func(t *testing.T) {
		s, closeFn, err := storage.Open(ctx, storageConfig{backend: config.StorageFile}, t.TempDir())
		require.NoError(t, err)
		defer closeFn()
		require.IsType(t, &storage.FileStore{}, s)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		_, _, err := storage.Open(ctx, storageConfig{backend: config.StorageRedis, addr: "localhost:0"}, "")
		require.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := storage.Open(ctx, storageConfig{backend: "sqlite"}, "")
		require.True(t, errors.Is(err, errors.ErrUnsupported))
	})
}
