package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/greenplate/ordering/cart/internal/otel"
	"github.com/greenplate/ordering/internal/domain"
	inErrors "github.com/greenplate/ordering/internal/errors"
	"github.com/greenplate/ordering/internal/log"
)

// PostgresStorage keeps the cart snapshot in a single-row table, upserted
// whole on every save. The stored shape is the same serialized array the
// other backends use.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const upsertSnapshot = `
insert into cart_snapshots (id, items, updated_at)
values (1, $1, now())
on conflict (id) do update set items = excluded.items, updated_at = now()
`

const selectSnapshot = `select items from cart_snapshots where id = 1`

func (s *PostgresStorage) Save(c context.Context, items []domain.CartItem) error {
	c, span := otel.Tracer.Start(c, "PostgresStorage Save")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresStorage Save").
		Int(log.KeyCartItems, len(items)).
		Logger()

	body, err := json.Marshal(items)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart snapshot with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	_, err = s.pool.Exec(c, upsertSnapshot, body)
	if err != nil {
		err = fmt.Errorf("failed upserting cart snapshot with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger.Debug().Msg("saved cart snapshot")
	return nil
}

func (s *PostgresStorage) Load(c context.Context) ([]domain.CartItem, error) {
	c, span := otel.Tracer.Start(c, "PostgresStorage Load")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresStorage Load").
		Logger()

	var body []byte
	err := s.pool.QueryRow(c, selectSnapshot).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.CartItem{}, nil
		}
		err = fmt.Errorf("failed finding cart snapshot in db with error=%w", err)
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
