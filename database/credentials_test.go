package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisCredentialStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCredentialStore(client, "device-1", ttl), mr
}

func newTestSQLiteStore(t *testing.T) *SQLiteCredentialStore {
	t.Helper()
	store, err := OpenSQLiteCredentialStore(":memory:", "device-1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCredentialStores(t *testing.T) {
	backends := map[string]func(t *testing.T) CredentialStore{
		"memory": func(t *testing.T) CredentialStore { return NewMemoryStore() },
		"redis": func(t *testing.T) CredentialStore {
			s, _ := newTestRedisStore(t, 0)
			return s
		},
		"sqlite": func(t *testing.T) CredentialStore { return newTestSQLiteStore(t) },
	}

	for name, build := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := build(t)

			_, ok, err := store.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, KeyAccessToken, "a1"))
			require.NoError(t, store.Set(ctx, KeyRefreshToken, "r1"))
			require.NoError(t, store.Set(ctx, KeyAccessToken, "a2"))

			v, ok, err := store.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "a2", v)

			require.NoError(t, store.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUserData))

			_, ok, err = store.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.False(t, ok)
			_, ok, err = store.Get(ctx, KeyRefreshToken)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Delete(ctx))
		})
	}
}

func TestCredentialStoresConcurrentWrites(t *testing.T) {
	stores := map[string]CredentialStore{
		"memory": NewMemoryStore(),
		"sqlite": newTestSQLiteStore(t),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, store.Set(ctx, KeyAccessToken, "tok"))
					_, _, err := store.Get(ctx, KeyAccessToken)
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			v, ok, err := store.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "tok", v)
		})
	}
}

func TestRedisCredentialStoreTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Hour)

	require.NoError(t, store.Set(ctx, KeyRefreshToken, "r1"))
	assert.True(t, mr.Exists("credentials:device-1:refresh_token"))

	mr.FastForward(time.Hour + time.Second)

	_, ok, err := store.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoresAreScopedByDevice(t *testing.T) {
	ctx := context.Background()
	a := newTestSQLiteStore(t)
	b := NewSQLiteCredentialStore(a.db, "device-2")

	require.NoError(t, a.Set(ctx, KeyAccessToken, "for-a"))

	_, ok, err := b.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	t.Run("memory", func(t *testing.T) {
		store, closeFn, err := Open(ctx, config.Config{CredentialStore: "memory"}, log)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, store)
		assert.NoError(t, closeFn())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, closeFn, err := Open(ctx, config.Config{CredentialStore: "redis", RedisURL: "redis://" + mr.Addr(), DeviceID: "d"}, log)
		require.NoError(t, err)
		assert.IsType(t, &RedisCredentialStore{}, store)
		assert.NoError(t, closeFn())
	})

	t.Run("sqlite", func(t *testing.T) {
		store, closeFn, err := Open(ctx, config.Config{CredentialStore: "sqlite", SQLitePath: ":memory:", DeviceID: "d"}, log)
		require.NoError(t, err)
		assert.IsType(t, &SQLiteCredentialStore{}, store)
		assert.NoError(t, closeFn())
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := Open(ctx, config.Config{CredentialStore: "keychain"}, log)
		assert.Error(t, err)
	})
}
