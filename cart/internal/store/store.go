package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/greenplate/ordering/cart/internal/otel"
	"github.com/greenplate/ordering/cart/internal/storage"
	"github.com/greenplate/ordering/internal/domain"
	"github.com/greenplate/ordering/internal/errors"
	"github.com/greenplate/ordering/internal/log"
)

// Store is the single source of truth for cart contents. All mutation goes
// through its methods, each of which applies the change in memory and writes
// the full snapshot to storage before returning, under one lock, so readers
// never observe a torn intermediate state and rapid repeated mutations
// serialize in call order.
type Store struct {
	mu      sync.Mutex
	items   []domain.CartItem
	storage storage.Storage
	subs    []chan int
}

// New rehydrates the cart from storage. A missing, corrupt or unreadable
// snapshot yields an empty cart, never an error.
func New(c context.Context, st storage.Storage) *Store {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore New").
		Str(log.KeyProcess, "loading cart snapshot").
		Logger()

	s := &Store{storage: st, items: []domain.CartItem{}}

	logger.Info().Msg("loading cart snapshot")
	items, err := st.Load(c)
	if err != nil {
		err = fmt.Errorf("failed loading cart snapshot with error=%w", err)
		logger.Warn().Err(err).Msg("starting with empty cart")
		return s
	}
	for _, item := range items {
		// quantity 0 entries must not exist in the cart
		if item.Quantity < 1 {
			continue
		}
		s.items = append(s.items, item)
	}
	logger.Info().Int(log.KeyCartItems, len(s.items)).Msg("loaded cart snapshot")
	return s
}

// AddItem merges on id: an existing entry has its quantity incremented by 1
// regardless of the incoming item's own quantity field; an unknown item is
// appended with quantity 1.
func (s *Store) AddItem(c context.Context, item domain.CartItem) (domain.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartStore AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore AddItem").
		Str(log.KeyItemID, string(item.ID)).
		Str(log.KeyItemName, item.Name).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i].Quantity++
			item = s.items[i]
			merged = true
			break
		}
	}
	if !merged {
		item.Quantity = 1
		s.items = append(s.items, item)
	}
	logger.Info().
		Bool("merged", merged).
		Int(log.KeyQuantity, item.Quantity).
		Msg("added item to cart")

	if err := s.persistLocked(c); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return item, err
	}
	s.notifyLocked()
	return item, nil
}

// RemoveItem deletes the entry with the given id. An unknown id is a no-op.
func (s *Store) RemoveItem(c context.Context, id domain.ItemID) error {
	c, span := otel.Tracer.Start(c, "CartStore RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore RemoveItem").
		Str(log.KeyItemID, string(id)).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(c, span, logger, id)
}

// SetQuantity sets the entry's quantity to exactly the given value. A value
// of zero or less removes the entry; an unknown id is a no-op.
func (s *Store) SetQuantity(c context.Context, id domain.ItemID, quantity int) error {
	c, span := otel.Tracer.Start(c, "CartStore SetQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore SetQuantity").
		Str(log.KeyItemID, string(id)).
		Int(log.KeyQuantity, quantity).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.removeLocked(c, span, logger, id)
	}

	found := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		logger.Info().Msg("item not in cart, nothing to update")
		return nil
	}
	logger.Info().Msg("updated item quantity")

	if err := s.persistLocked(c); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.notifyLocked()
	return nil
}

// Clear empties the cart and persists the empty state.
func (s *Store) Clear(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CartStore Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore Clear").
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []domain.CartItem{}
	logger.Info().Msg("cleared cart")

	if err := s.persistLocked(c); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.notifyLocked()
	return nil
}

// Items returns a copy of the cart contents in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// TotalItemCount is the sum of all entry quantities.
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

// TotalCO2Impact sums each item's environmental-impact contribution.
func (s *Store) TotalCO2Impact() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, item := range s.items {
		total += item.CO2Contribution()
	}
	return total
}

// Subtotal is the sum of normalized price times quantity over all entries.
// Unparseable prices contribute zero.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtotal := decimal.Zero
	for _, item := range s.items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// Groups partitions the cart by restaurant for display.
func (s *Store) Groups() []domain.RestaurantGroup {
	return domain.GroupByRestaurant(s.Items())
}

// Subscribe registers a channel receiving the total item count after every
// mutation. Slow subscribers miss updates instead of blocking mutations.
func (s *Store) Subscribe() <-chan int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan int, 16)
	s.subs = append(s.subs, ch)
	return ch
}

func (s *Store) removeLocked(
	c context.Context,
	span trace.Span,
	logger zerolog.Logger,
	id domain.ItemID,
) error {
	kept := s.items[:0]
	found := false
	for _, item := range s.items {
		if item.ID == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	if !found {
		logger.Info().Msg("item not in cart, nothing to remove")
		return nil
	}
	logger.Info().Msg("removed item from cart")

	if err := s.persistLocked(c); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.notifyLocked()
	return nil
}

func (s *Store) persistLocked(c context.Context) error {
	if err := s.storage.Save(c, s.items); err != nil {
		return fmt.Errorf("failed persisting cart with error=%w", err)
	}
	return nil
}

func (s *Store) notifyLocked() {
	count := s.countLocked()
	for _, ch := range s.subs {
		select {
		case ch <- count:
		default:
		}
	}
}

func (s *Store) countLocked() int {
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}
