package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/greenplate/ordering/cart/internal/otel"
	"github.com/greenplate/ordering/internal/domain"
	inErrors "github.com/greenplate/ordering/internal/errors"
	"github.com/greenplate/ordering/internal/log"
)

// RedisStorage keeps the cart snapshot as a JSON document under one key.
type RedisStorage struct {
	cache *redis.Client
	key   string
}

func NewRedisStorage(cache *redis.Client, key string) *RedisStorage {
	return &RedisStorage{cache: cache, key: key}
}

func (s *RedisStorage) Save(c context.Context, items []domain.CartItem) error {
	c, span := otel.Tracer.Start(c, "RedisStorage Save")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStorage Save").
		Str(log.KeyCacheKey, s.key).
		Int(log.KeyCartItems, len(items)).
		Logger()

	body, err := json.Marshal(items)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart snapshot with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	err = s.cache.Set(c, s.key, body, 0).Err()
	if err != nil {
		err = fmt.Errorf("failed inserting cart snapshot to cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger.Debug().Msg("saved cart snapshot")
	return nil
}

func (s *RedisStorage) Load(c context.Context) ([]domain.CartItem, error) {
	c, span := otel.Tracer.Start(c, "RedisStorage Load")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStorage Load").
		Str(log.KeyCacheKey, s.key).
		Logger()

	body, err := s.cache.Get(c, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.CartItem{}, nil
		}
		err = fmt.Errorf("failed finding cart snapshot in cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	items := []domain.CartItem{}
	if err = json.Unmarshal(body, &items); err != nil {
		err = fmt.Errorf("failed unmarshaling cart snapshot with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return items, nil
}
