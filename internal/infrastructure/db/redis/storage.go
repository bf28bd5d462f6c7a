package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freshcart/storefront/internal/core/ports"
)

const keyPrefix = "storefront:storage:"

// StorageProvider keeps each browser scope in one Redis hash.
// Key format: storefront:storage:<device_id>
// The hash expires ttl after its last write; a zero ttl keeps it forever.
type StorageProvider struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStorageProvider creates a StorageProvider wrapping the given Redis client.
func NewStorageProvider(client *redis.Client, ttl time.Duration) *StorageProvider {
	return &StorageProvider{client: client, ttl: ttl}
}

// ForDevice implements ports.StorageProvider.
func (p *StorageProvider) ForDevice(deviceID string) ports.ClientStorage {
	return &deviceStorage{client: p.client, ttl: p.ttl, key: keyPrefix + deviceID}
}

// Ping implements ports.StorageProvider.
func (p *StorageProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

type deviceStorage struct {
	client *redis.Client
	ttl    time.Duration
	key    string
}

func (s *deviceStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", key, err)
	}
	return v, true, nil
}

func (s *deviceStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, key, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", key, err)
	}
	return nil
}

func (s *deviceStorage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key, keys...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

var _ ports.StorageProvider = (*StorageProvider)(nil)
