package cache

import (
	"fmt"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/infrastructure/config"
	"go.uber.org/zap"
)

// FingerprintStoreFactory creates fingerprint stores based on configuration
type FingerprintStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FingerprintStoreFactoryOption is a functional option for configuring the factory
type FingerprintStoreFactoryOption func(*FingerprintStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FingerprintStoreFactoryOption {
	return func(f *FingerprintStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the in-memory store.
// Default is true.
func WithInMemoryFallback(allow bool) FingerprintStoreFactoryOption {
	return func(f *FingerprintStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFingerprintStoreFactory creates a new factory
func NewFingerprintStoreFactory(cfg config.RedisConfig, opts ...FingerprintStoreFactoryOption) *FingerprintStoreFactory {
	f := &FingerprintStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore builds the store for backend (memory, redis or none).
// "none" yields a nil store, which the duplicate detector treats as disabled.
func (f *FingerprintStoreFactory) CreateStore(backend string) (shared.FingerprintStore, error) {
	switch backend {
	case config.FingerprintCacheNone:
		return nil, nil
	case config.FingerprintCacheMemory, "":
		return NewInMemoryFingerprintStore(0), nil
	case config.FingerprintCacheRedis:
	default:
		return nil, fmt.Errorf("unknown fingerprint cache backend %q", backend)
	}

	store, err := NewRedisFingerprintStore(f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis fingerprint store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for the fingerprint cache but unavailable: %w", err)
	}

	// The database check stays authoritative, so a per-process cache only loses cross-instance hits
	f.logger.Warn("Redis unavailable, falling back to in-memory fingerprint store", zap.Error(err))
	return NewInMemoryFingerprintStore(0), nil
}
