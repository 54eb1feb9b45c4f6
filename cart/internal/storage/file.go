package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/greenplate/ordering/cart/internal/otel"
	"github.com/greenplate/ordering/internal/domain"
	"github.com/greenplate/ordering/internal/errors"
	"github.com/greenplate/ordering/internal/log"
)

// FileStorage keeps the cart snapshot in one JSON file, the durable
// client-local equivalent of the storefront's single localStorage key.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Save(c context.Context, items []domain.CartItem) error {
	c, span := otel.Tracer.Start(c, "FileStorage Save")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "FileStorage Save").
		Str(log.KeyStorageKey, s.path).
		Int(log.KeyCartItems, len(items)).
		Logger()

	body, err := json.Marshal(items)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart snapshot with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if err = os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		err = fmt.Errorf("failed creating storage directory with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	// Write to a sibling temp file first so a crash mid-write never leaves a
	// half-written snapshot behind.
	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, body, 0o644); err != nil {
		err = fmt.Errorf("failed writing cart snapshot with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if err = os.Rename(tmp, s.path); err != nil {
		err = fmt.Errorf("failed replacing cart snapshot with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger.Debug().Msg("saved cart snapshot")
	return nil
}

func (s *FileStorage) Load(c context.Context) ([]domain.CartItem, error) {
	c, span := otel.Tracer.Start(c, "FileStorage Load")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "FileStorage Load").
		Str(log.KeyStorageKey, s.path).
		Logger()

	body, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.CartItem{}, nil
		}
		err = fmt.Errorf("failed reading cart snapshot with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	items := []domain.CartItem{}
	if err = json.Unmarshal(body, &items); err != nil {
		err = fmt.Errorf("failed unmarshaling cart snapshot with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return items, nil
}
