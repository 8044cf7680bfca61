package app

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/cimillas/event-catalog/internal/domain"
	"github.com/cimillas/event-catalog/internal/query"
)

var ErrUnknownIntent = errors.New("unknown intent")

type IntentKind string

const (
	IntentSetQuery       IntentKind = "set_query"
	IntentSetCategory    IntentKind = "set_category"
	IntentSetCity        IntentKind = "set_city"
	IntentSetSort        IntentKind = "set_sort"
	IntentSetPage        IntentKind = "set_page"
	IntentToggleView     IntentKind = "toggle_view"
	IntentToggleFavorite IntentKind = "toggle_favorite"
	IntentAddToCart      IntentKind = "add_to_cart"
	IntentSetQuantity    IntentKind = "set_quantity"
	IntentRemoveFromCart IntentKind = "remove_from_cart"
	IntentCheckout       IntentKind = "checkout"
	IntentShowDetail     IntentKind = "show_detail"
)

// Intent is one user action fed into the session. Only the fields the
// kind needs are read.
type Intent struct {
	Kind     IntentKind
	Value    string
	Page     int
	EventID  string
	Quantity int
	Buyer    map[string]string
}

// Snapshot is the session state after a dispatch: the recomputed view,
// the canonical fragment for the address bar, and the collection counts.
type Snapshot struct {
	Params     query.Params
	Fragment   string
	Items      []domain.Event
	TotalCount int
	PageCount  int
	CartCount  int
	Favorites  []string

	// Order is set by checkout, Detail by show_detail.
	Order  *domain.Order
	Detail *domain.Event
}

// Catalog is the read side the session needs.
type Catalog interface {
	Events() []domain.Event
	FindByID(id string) (domain.Event, bool)
}

type intentHandler func(ctx context.Context, in Intent, snap *Snapshot) error

// Session is the orchestrating controller: it owns the browse parameters
// and routes every user intent through one dispatch point, so each
// mutation is followed by a full recompute and fragment re-encode before
// the next one is accepted.
type Session struct {
	mu       sync.Mutex
	params   query.Params
	catalog  Catalog
	cart     *CartService
	handlers map[IntentKind]intentHandler
}

func NewSession(catalog Catalog, cart *CartService) *Session {
	s := &Session{
		params:  query.DefaultParams(),
		catalog: catalog,
		cart:    cart,
	}
	s.handlers = map[IntentKind]intentHandler{
		IntentSetQuery:       s.setQuery,
		IntentSetCategory:    s.setCategory,
		IntentSetCity:        s.setCity,
		IntentSetSort:        s.setSort,
		IntentSetPage:        s.setPage,
		IntentToggleView:     s.toggleView,
		IntentToggleFavorite: s.toggleFavorite,
		IntentAddToCart:      s.addToCart,
		IntentSetQuantity:    s.setQuantity,
		IntentRemoveFromCart: s.removeFromCart,
		IntentCheckout:       s.checkout,
		IntentShowDetail:     s.showDetail,
	}
	return s
}

// Dispatch applies one intent and returns the resulting snapshot. A
// failed intent leaves the session unchanged.
func (s *Session) Dispatch(ctx context.Context, in Intent) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handler, ok := s.handlers[in.Kind]
	if !ok {
		return Snapshot{}, ErrUnknownIntent
	}

	var snap Snapshot
	if err := handler(ctx, in, &snap); err != nil {
		return Snapshot{}, err
	}
	s.fill(&snap)
	return snap, nil
}

// ApplyValues decodes externally navigated parameters (address bar or
// back/forward) onto the session and recomputes, decode-before-recompute.
func (s *Session) ApplyValues(ctx context.Context, values url.Values) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params = query.DecodeValues(values)
	var snap Snapshot
	s.fill(&snap)
	return snap
}

// ApplyFragment handles a full navigation fragment, including the detail
// form #/event/<id>.
func (s *Session) ApplyFragment(ctx context.Context, fragment string) (Snapshot, error) {
	route := query.ParseFragment(fragment)
	if route.Kind == query.RouteEvent {
		return s.Dispatch(ctx, Intent{Kind: IntentShowDetail, EventID: route.EventID})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = route.Params
	var snap Snapshot
	s.fill(&snap)
	return snap, nil
}

// Snapshot recomputes the current view without mutating anything.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var snap Snapshot
	s.fill(&snap)
	return snap
}

func (s *Session) fill(snap *Snapshot) {
	view := query.ComputeView(s.catalog.Events(), s.params)
	snap.Params = s.params
	snap.Items = view.Items
	snap.TotalCount = view.TotalCount
	snap.PageCount = view.PageCount
	snap.CartCount = s.cart.TotalQuantity()
	snap.Favorites = s.cart.Favorites()
	if snap.Detail != nil {
		snap.Fragment = query.EventFragment(snap.Detail.ID)
	} else {
		snap.Fragment = query.EncodeParams(s.params)
	}
}

// Filter changes reset to the first page; sort and view changes keep it.

func (s *Session) setQuery(ctx context.Context, in Intent, snap *Snapshot) error {
	s.params.Query = in.Value
	s.params.Page = 1
	return nil
}

func (s *Session) setCategory(ctx context.Context, in Intent, snap *Snapshot) error {
	s.params.Category = in.Value
	s.params.Page = 1
	return nil
}

func (s *Session) setCity(ctx context.Context, in Intent, snap *Snapshot) error {
	s.params.City = in.Value
	s.params.Page = 1
	return nil
}

func (s *Session) setSort(ctx context.Context, in Intent, snap *Snapshot) error {
	if key := query.SortKey(in.Value); key.Valid() {
		s.params.Sort = key
	}
	return nil
}

func (s *Session) setPage(ctx context.Context, in Intent, snap *Snapshot) error {
	if in.Page > 0 {
		s.params.Page = in.Page
	}
	return nil
}

func (s *Session) toggleView(ctx context.Context, in Intent, snap *Snapshot) error {
	if s.params.View == query.ViewGrid {
		s.params.View = query.ViewList
	} else {
		s.params.View = query.ViewGrid
	}
	return nil
}

func (s *Session) toggleFavorite(ctx context.Context, in Intent, snap *Snapshot) error {
	_, err := s.cart.Toggle(ctx, in.EventID)
	return err
}

func (s *Session) addToCart(ctx context.Context, in Intent, snap *Snapshot) error {
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	_, err := s.cart.Add(ctx, in.EventID, qty)
	return err
}

func (s *Session) setQuantity(ctx context.Context, in Intent, snap *Snapshot) error {
	return s.cart.SetQuantity(ctx, in.EventID, in.Quantity)
}

func (s *Session) removeFromCart(ctx context.Context, in Intent, snap *Snapshot) error {
	return s.cart.Remove(ctx, in.EventID)
}

func (s *Session) checkout(ctx context.Context, in Intent, snap *Snapshot) error {
	order, err := s.cart.Checkout(ctx, in.Buyer)
	if err != nil {
		return err
	}
	snap.Order = &order
	return nil
}

func (s *Session) showDetail(ctx context.Context, in Intent, snap *Snapshot) error {
	ev, ok := s.catalog.FindByID(in.EventID)
	if !ok {
		return domain.ErrEventNotFound
	}
	snap.Detail = &ev
	return nil
}
