package deadletter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/shipping/internal/domain/shipping"
	"github.com/erp/shipping/internal/infrastructure/config"
)

// StoreFactory creates dead letter stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-backed dead letter store
func (f *StoreFactory) CreateRedisStore() (shipping.DeadLetterStore, error) {
	store, err := NewRedisDeadLetterStore(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis dead letter store: %w", err)
	}
	return store, nil
}

// CreateStore tries Redis first and falls back to in-memory when allowed.
// Losing dead letters on restart is preferable to refusing webhooks, so the
// fallback defaults on.
func (f *StoreFactory) CreateStore() (shipping.DeadLetterStore, error) {
	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis dead letter store")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for dead letters but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory dead letter store. "+
		"Unroutable webhooks will not survive a restart.",
		zap.Error(err),
	)
	return NewInMemoryDeadLetterStore(), nil
}
