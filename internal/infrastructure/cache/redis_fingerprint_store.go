package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultFingerprintKeyPrefix = "sales:fingerprint:"

// RedisFingerprintStore implements FingerprintStore using Redis.
// Instances behind a load balancer share one replay window.
type RedisFingerprintStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisFingerprintStore connects to Redis and verifies the connection
func NewRedisFingerprintStore(cfg config.RedisConfig) (*RedisFingerprintStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisFingerprintStore{
		client:    client,
		keyPrefix: defaultFingerprintKeyPrefix,
	}, nil
}

// NewRedisFingerprintStoreWithClient creates a store with an existing Redis client
func NewRedisFingerprintStoreWithClient(client *redis.Client, keyPrefix string) *RedisFingerprintStore {
	if keyPrefix == "" {
		keyPrefix = defaultFingerprintKeyPrefix
	}
	return &RedisFingerprintStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed marks a fingerprint with a TTL.
// SETNX keeps the check and the write atomic across instances.
func (s *RedisFingerprintStore) MarkProcessed(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetNX(ctx, s.keyPrefix+fingerprint, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark fingerprint: %w", err)
	}
	return result, nil
}

// IsProcessed checks whether a fingerprint is still inside its window
func (s *RedisFingerprintStore) IsProcessed(ctx context.Context, fingerprint string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+fingerprint).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client
func (s *RedisFingerprintStore) Close() error {
	return s.client.Close()
}

var _ shared.FingerprintStore = (*RedisFingerprintStore)(nil)
