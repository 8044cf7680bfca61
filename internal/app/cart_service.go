package app

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/cimillas/event-catalog/internal/clock"
	"github.com/cimillas/event-catalog/internal/domain"
)

// SessionRepository persists the cart, the favorites set and the last
// order. Missing or corrupt stored values load as empty defaults.
type SessionRepository interface {
	LoadCart(ctx context.Context) ([]domain.CartItem, error)
	SaveCart(ctx context.Context, items []domain.CartItem) error
	LoadFavorites(ctx context.Context) ([]string, error)
	SaveFavorites(ctx context.Context, ids []string) error
	SaveLastOrder(ctx context.Context, order domain.Order) error
	LoadLastOrder(ctx context.Context) (*domain.Order, error)
}

// CatalogFinder is the catalog lookup the cart needs for validation.
type CatalogFinder interface {
	FindByID(id string) (domain.Event, bool)
}

// CartService owns the cart and favorites for the session. State is held
// in memory, persisted after every successful mutation; rejected
// mutations leave both memory and store untouched.
type CartService struct {
	repo    SessionRepository
	catalog CatalogFinder
	clock   clock.Clock

	mu        sync.Mutex
	items     []domain.CartItem
	favorites []string
	favSet    map[string]struct{}
}

// NewCartService loads persisted state and returns a ready service.
func NewCartService(ctx context.Context, repo SessionRepository, catalog CatalogFinder, clk clock.Clock) (*CartService, error) {
	items, err := repo.LoadCart(ctx)
	if err != nil {
		return nil, err
	}
	favorites, err := repo.LoadFavorites(ctx)
	if err != nil {
		return nil, err
	}

	svc := &CartService{
		repo:      repo,
		catalog:   catalog,
		clock:     clk,
		items:     items,
		favorites: favorites,
		favSet:    make(map[string]struct{}, len(favorites)),
	}
	for _, id := range favorites {
		svc.favSet[id] = struct{}{}
	}
	return svc, nil
}

// Add puts qty tickets for the event into the cart, merging with any
// existing entry, and returns the entry's new quantity.
func (s *CartService) Add(ctx context.Context, id string, qty int) (int, error) {
	if qty <= 0 {
		return 0, domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.catalog.FindByID(id)
	if !ok {
		return 0, domain.ErrEventNotFound
	}
	if ev.SoldOut {
		return 0, domain.ErrSoldOut
	}

	next := snapshotItems(s.items)
	newQty := qty
	pos := -1
	for i, it := range next {
		if it.EventID == id {
			pos = i
			newQty = it.Quantity + qty
			break
		}
	}
	if newQty > ev.Stock {
		return 0, domain.ErrInsufficientStock
	}
	if pos >= 0 {
		next[pos].Quantity = newQty
	} else {
		next = append(next, domain.CartItem{EventID: id, Quantity: newQty})
	}

	if err := s.repo.SaveCart(ctx, next); err != nil {
		return 0, err
	}
	s.items = next
	return newQty, nil
}

// SetQuantity replaces the quantity of an existing entry.
func (s *CartService) SetQuantity(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.catalog.FindByID(id)
	if !ok {
		return domain.ErrEventNotFound
	}
	if qty > ev.Stock {
		return domain.ErrInsufficientStock
	}

	next := snapshotItems(s.items)
	pos := -1
	for i, it := range next {
		if it.EventID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return domain.ErrNotInCart
	}
	next[pos].Quantity = qty

	if err := s.repo.SaveCart(ctx, next); err != nil {
		return err
	}
	s.items = next
	return nil
}

// Remove drops the entry for id. Removing an absent id is a no-op success.
func (s *CartService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.CartItem, 0, len(s.items))
	for _, it := range s.items {
		if it.EventID == id {
			continue
		}
		next = append(next, it)
	}
	if len(next) == len(s.items) {
		return nil
	}

	if err := s.repo.SaveCart(ctx, next); err != nil {
		return err
	}
	s.items = next
	return nil
}

// Items returns a copy of the cart entries in insertion order.
func (s *CartService) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotItems(s.items)
}

// TotalQuantity is the summed quantity across all entries.
func (s *CartService) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// Summary renders the cart total as a display string, e.g. "€ 72.50".
// Empty carts render as the empty string.
func (s *CartService) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *CartService) summaryLocked() string {
	if len(s.items) == 0 {
		return ""
	}
	currency := ""
	total := 0.0
	for _, it := range s.items {
		ev, ok := s.catalog.FindByID(it.EventID)
		if !ok {
			// Stale reference after a catalog reload; priced at zero.
			continue
		}
		if currency == "" {
			currency = ev.Currency
		}
		total += ev.Price * float64(it.Quantity)
	}
	return currency + " " + strconv.FormatFloat(total, 'f', 2, 64)
}

// Toggle flips favorite membership for id and reports the new state.
// Two toggles always restore the original membership.
func (s *CartService) Toggle(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, isFav := s.favSet[id]
	var next []string
	if isFav {
		next = make([]string, 0, len(s.favorites)-1)
		for _, fav := range s.favorites {
			if fav == id {
				continue
			}
			next = append(next, fav)
		}
	} else {
		next = append(snapshotIDs(s.favorites), id)
	}

	if err := s.repo.SaveFavorites(ctx, next); err != nil {
		return isFav, err
	}
	s.favorites = next
	if isFav {
		delete(s.favSet, id)
	} else {
		s.favSet[id] = struct{}{}
	}
	return !isFav, nil
}

// Favorites returns the favorite ids in insertion order.
func (s *CartService) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotIDs(s.favorites)
}

func (s *CartService) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favSet[id]
	return ok
}

// Checkout snapshots the cart into an order, persists it as the last
// order and clears the cart. The order id derives from the clock, same
// format the stored orders always had: EVT-<unix milliseconds>.
func (s *CartService) Checkout(ctx context.Context, buyer map[string]string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	now := s.clock.Now()
	order := domain.Order{
		ID:        "EVT-" + strconv.FormatInt(now.UnixMilli(), 10),
		Buyer:     copyBuyer(buyer),
		Items:     snapshotItems(s.items),
		Total:     s.summaryLocked(),
		CreatedAt: now,
	}

	if err := s.repo.SaveLastOrder(ctx, order); err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.SaveCart(ctx, []domain.CartItem{}); err != nil {
		return domain.Order{}, fmt.Errorf("clear cart after checkout: %w", err)
	}
	s.items = nil
	return order, nil
}

// LastOrder returns the most recent persisted order, nil when none.
func (s *CartService) LastOrder(ctx context.Context) (*domain.Order, error) {
	return s.repo.LoadLastOrder(ctx)
}

func snapshotItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

func snapshotIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func copyBuyer(buyer map[string]string) map[string]string {
	out := make(map[string]string, len(buyer))
	for k, v := range buyer {
		out[k] = v
	}
	return out
}
