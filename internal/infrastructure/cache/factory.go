package cache

import (
	"fmt"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LockKeyPrefix namespaces reconciliation lock keys in a shared Redis
const LockKeyPrefix = "erp:"

// LockerFactory creates lockers based on configuration
type LockerFactory struct {
	cfg    config.Config
	client redis.UniversalClient
	logger *zap.Logger
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithRedisClient reuses an existing client instead of dialing a new one
func WithRedisClient(client redis.UniversalClient) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.client = client
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.Config, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		cfg:    cfg,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateLocker returns the locker named by reconciliation.lock_backend.
// The redis backend fails hard when Redis is unreachable; there is no silent fallback
// because two instances with private locks could integrate the same expense twice.
func (f *LockerFactory) CreateLocker() (shared.Locker, error) {
	switch f.cfg.Reconciliation.LockBackend {
	case config.LockBackendRedis:
		client := f.client
		if client == nil {
			c, err := NewRedisClient(RedisConfig{
				Host:     f.cfg.Redis.Host,
				Port:     f.cfg.Redis.Port,
				Password: f.cfg.Redis.Password,
				DB:       f.cfg.Redis.DB,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create Redis locker: %w", err)
			}
			client = c
		}
		f.logger.Info("using Redis expense lock", zap.String("addr", f.cfg.Redis.Addr()))
		return NewRedisLocker(client, LockKeyPrefix), nil
	case config.LockBackendMemory, "":
		f.logger.Warn("using in-memory expense lock; concurrent integrations are only serialized within this process")
		return NewInMemoryLocker(), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", f.cfg.Reconciliation.LockBackend)
	}
}
