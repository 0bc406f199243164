package cli

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepflow/internal/config"
	"github.com/aretw0/stepflow/pkg/adapters/file"
	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/adapters/redis"
	"github.com/aretw0/stepflow/pkg/persistence/middleware"
	"github.com/aretw0/stepflow/pkg/ports"
)

// Backend is the flow store of the HTTP API together with its locker.
type Backend struct {
	Store  ports.FlowStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases backend connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend builds the store selected by cfg. Single process backends
// get an in-process locker; redis gets a distributed one.
func OpenBackend(cfg config.StoreConfig) (*Backend, error) {
	mws, err := storeMiddleware(cfg)
	if err != nil {
		return nil, err
	}

	var b *Backend
	switch strings.ToLower(cfg.Backend) {
	case "", config.StoreMemory:
		b = &Backend{Store: memory.NewStore(), Locker: memory.NewLocker()}
	case config.StoreFile:
		b = &Backend{Store: file.NewStore(cfg.Dir), Locker: memory.NewLocker()}
	case config.StoreRedis:
		prefix := cfg.Redis.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		b = &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), prefix),
			close:  store.Close,
		}
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	b.Store = middleware.Chain(b.Store, mws...)
	return b, nil
}

// storeMiddleware redacts before it encrypts.
func storeMiddleware(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(cfg.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if cfg.EncryptionKey != "" {
		active, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("store.encryptionKey: %w", err)
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for i, k := range cfg.FallbackKeys {
			key, err := middleware.ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("store.fallbackKeys[%d]: %w", i, err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		mw, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}
