package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/greenplate/ordering/internal/config"
	"github.com/greenplate/ordering/internal/domain"
	"github.com/greenplate/ordering/internal/errors"
)

// Storage persists the whole cart as one serialized array of items under a
// single well-known key, mirroring the in-memory shape exactly. Save replaces
// the previous snapshot; Load returns the last snapshot written or an empty
// cart when nothing was stored yet.
type Storage interface {
	Save(c context.Context, items []domain.CartItem) error
	Load(c context.Context) ([]domain.CartItem, error)
}

func New(
	cfg config.Storage,
	pool *pgxpool.Pool,
	cache *redis.Client,
) (Storage, error) {
	switch cfg.Backend {
	case "file":
		return NewFileStorage(cfg.Path), nil
	case "redis":
		return NewRedisStorage(cache, cfg.Key), nil
	case "postgres":
		return NewPostgresStorage(pool), nil
	}
	return nil, fmt.Errorf("backend=%s with error=%w", cfg.Backend, errors.ErrUnknownStorageBackend)
}
