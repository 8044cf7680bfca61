package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cimillas/event-catalog/internal/domain"
)

// Persisted keys. The names are part of the stored format and must stay
// stable across releases.
const (
	keyCart      = "mvp_cart_v1"
	keyFavorites = "mvp_fav_v1"
	keyLastOrder = "last_order"
)

// StateStore is the typed persistence adapter over a raw Store. Missing
// or corrupt values load as the empty default; they never fail the caller.
// Infrastructure errors (the store itself failing) do propagate.
type StateStore struct {
	kv Store
}

func NewStateStore(kv Store) *StateStore {
	return &StateStore{kv: kv}
}

func (s *StateStore) LoadCart(ctx context.Context) ([]domain.CartItem, error) {
	raw, err := s.kv.Get(ctx, keyCart)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, nil
	}
	out := items[:0]
	for _, it := range items {
		if it.EventID == "" || it.Quantity <= 0 {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *StateStore) SaveCart(ctx context.Context, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.kv.Set(ctx, keyCart, string(raw)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *StateStore) LoadFavorites(ctx context.Context) ([]string, error) {
	raw, err := s.kv.Get(ctx, keyFavorites)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, nil
	}
	out := ids[:0]
	for _, id := range ids {
		if id == "" {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *StateStore) SaveFavorites(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal favorites: %w", err)
	}
	if err := s.kv.Set(ctx, keyFavorites, string(raw)); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}

func (s *StateStore) SaveLastOrder(ctx context.Context, order domain.Order) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	if err := s.kv.Set(ctx, keyLastOrder, string(raw)); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

// LoadLastOrder returns nil when no order is stored or the stored value
// does not parse.
func (s *StateStore) LoadLastOrder(ctx context.Context) (*domain.Order, error) {
	raw, err := s.kv.Get(ctx, keyLastOrder)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	var order domain.Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil, nil
	}
	if order.ID == "" {
		return nil, nil
	}
	return &order, nil
}
