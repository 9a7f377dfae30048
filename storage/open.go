package storage

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-github-dashboard/internal/config"
	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Open builds the backend selected by STORAGE_BACKEND. The returned close
// function releases any connection held by the backend.
func Open(ctx context.Context, cfg config.StorageConfig, folder string) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.GetStorageBackend() {
	case config.StorageMemory:
		log.Debug().Msg("using in-memory storage")
		return NewMemoryStore(), noop, nil
	case config.StorageFile:
		s, err := NewFileStore(folder)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("folder", folder).Msg("using file storage")
		return s, noop, nil
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("[storage Open] redis %s: %w", cfg.GetRedisAddr(), err)
		}
		log.Debug().Str("addr", cfg.GetRedisAddr()).Msg("using redis storage")
		return NewRedisStore(client, cfg.GetRedisPrefix()), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("[storage Open] backend %q: %w", cfg.GetStorageBackend(), errors.ErrUnsupported)
	}
}
