package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/plant-decor/KLTN-PlantDecor-Mobile/config"
	"go.uber.org/zap"
)

// Keys of the secure credential area.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserData     = "user_data"
)

// CredentialStore is the persisted key-value area for tokens and the cached
// user. Implementations are safe for concurrent use.
type CredentialStore interface {
	// Get reports ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes every given key; absent keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Open builds the credential store selected by cfg.CredentialStore. The
// returned close func releases the backend connection.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (CredentialStore, func() error, error) {
	switch cfg.CredentialStore {
	case "memory":
		return NewMemoryStore(), func() error { return nil }, nil
	case "redis":
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("credential store: redis", zap.String("device_id", cfg.DeviceID))
		return NewRedisCredentialStore(client, cfg.DeviceID, cfg.CredentialTTL), client.Close, nil
	case "sqlite", "":
		store, err := OpenSQLiteCredentialStore(cfg.SQLitePath, cfg.DeviceID)
		if err != nil {
			return nil, nil, err
		}
		log.Info("credential store: sqlite", zap.String("path", cfg.SQLitePath))
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown credential store %q", cfg.CredentialStore)
	}
}

// MemoryStore keeps credentials for the life of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}
