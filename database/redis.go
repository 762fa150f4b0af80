package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses redisURL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// RedisCredentialStore namespaces keys per device. A zero ttl keeps keys
// until they are deleted.
type RedisCredentialStore struct {
	client   *redis.Client
	deviceID string
	ttl      time.Duration
}

// NewRedisCredentialStore namespaces keys by deviceID. A zero ttl keeps
// keys until they are deleted.
func NewRedisCredentialStore(client *redis.Client, deviceID string, ttl time.Duration) *RedisCredentialStore {
	return &RedisCredentialStore{
		client:   client,
		deviceID: deviceID,
		ttl:      ttl,
	}
}

func (r *RedisCredentialStore) getKey(key string) string {
	return fmt.Sprintf("credentials:%s:%s", r.deviceID, key)
}

func (r *RedisCredentialStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.getKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisCredentialStore) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.getKey(key), value, r.ttl).Err()
}

func (r *RedisCredentialStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.getKey(k)
	}
	return r.client.Del(ctx, full...).Err()
}
