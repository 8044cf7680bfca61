package app

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/cimillas/event-catalog/internal/clock"
	"github.com/cimillas/event-catalog/internal/domain"
)

type fakeRepo struct {
	cart      []domain.CartItem
	favorites []string
	lastOrder *domain.Order

	saveCartErr  error
	saveFavErr   error
	saveOrderErr error

	cartSaves int
	favSaves  int
}

func (f *fakeRepo) LoadCart(ctx context.Context) ([]domain.CartItem, error) {
	return f.cart, nil
}

func (f *fakeRepo) SaveCart(ctx context.Context, items []domain.CartItem) error {
	if f.saveCartErr != nil {
		return f.saveCartErr
	}
	f.cart = items
	f.cartSaves++
	return nil
}

func (f *fakeRepo) LoadFavorites(ctx context.Context) ([]string, error) {
	return f.favorites, nil
}

func (f *fakeRepo) SaveFavorites(ctx context.Context, ids []string) error {
	if f.saveFavErr != nil {
		return f.saveFavErr
	}
	f.favorites = ids
	f.favSaves++
	return nil
}

func (f *fakeRepo) SaveLastOrder(ctx context.Context, order domain.Order) error {
	if f.saveOrderErr != nil {
		return f.saveOrderErr
	}
	f.lastOrder = &order
	return nil
}

func (f *fakeRepo) LoadLastOrder(ctx context.Context) (*domain.Order, error) {
	return f.lastOrder, nil
}

type fakeCatalog map[string]domain.Event

func (f fakeCatalog) FindByID(id string) (domain.Event, bool) {
	ev, ok := f[id]
	return ev, ok
}

func testCatalog() fakeCatalog {
	return fakeCatalog{
		"e1": {ID: "e1", Title: "Event One", Price: 25.5, Currency: "€", Stock: 2},
		"e2": {ID: "e2", Title: "Event Two", Price: 10, Currency: "€", Stock: 100},
		"e3": {ID: "e3", Title: "Gone", Price: 40, Currency: "€", Stock: 50, SoldOut: true},
	}
}

func newTestService(t *testing.T, repo *fakeRepo) *CartService {
	t.Helper()
	svc, err := NewCartService(context.Background(), repo, testCatalog(), clock.NewManual(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("new cart service: %v", err)
	}
	return svc
}

func TestCartService_Add(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates an entry and persists", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newTestService(t, repo)

		qty, err := svc.Add(ctx, "e2", 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if qty != 3 {
			t.Fatalf("expected quantity 3, got %d", qty)
		}
		if repo.cartSaves != 1 {
			t.Fatalf("expected one persist, got %d", repo.cartSaves)
		}
	})

	t.Run("merges into the single entry per event", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newTestService(t, repo)

		if _, err := svc.Add(ctx, "e2", 2); err != nil {
			t.Fatalf("first add: %v", err)
		}
		qty, err := svc.Add(ctx, "e2", 5)
		if err != nil {
			t.Fatalf("second add: %v", err)
		}
		if qty != 7 {
			t.Fatalf("expected merged quantity 7, got %d", qty)
		}
		if items := svc.Items(); len(items) != 1 {
			t.Fatalf("expected a single entry, got %v", items)
		}
	})

	t.Run("unknown id fails with no state change", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newTestService(t, repo)

		if _, err := svc.Add(ctx, "ghost", 1); !errors.Is(err, domain.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
		if len(svc.Items()) != 0 || repo.cartSaves != 0 {
			t.Fatalf("expected cart untouched")
		}
	})

	t.Run("sold out is rejected", func(t *testing.T) {
		svc := newTestService(t, &fakeRepo{})
		if _, err := svc.Add(ctx, "e3", 1); !errors.Is(err, domain.ErrSoldOut) {
			t.Fatalf("expected ErrSoldOut, got %v", err)
		}
	})

	t.Run("beyond stock is rejected leaving the cart empty", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newTestService(t, repo)

		if _, err := svc.Add(ctx, "e1", 3); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
		if len(svc.Items()) != 0 || repo.cartSaves != 0 {
			t.Fatalf("expected cart empty after rejection")
		}
	})

	t.Run("merged quantity is stock-bound", func(t *testing.T) {
		svc := newTestService(t, &fakeRepo{})
		if _, err := svc.Add(ctx, "e1", 2); err != nil {
			t.Fatalf("add to limit: %v", err)
		}
		if _, err := svc.Add(ctx, "e1", 1); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
		if items := svc.Items(); items[0].Quantity != 2 {
			t.Fatalf("expected quantity unchanged at 2, got %d", items[0].Quantity)
		}
	})

	t.Run("non-positive quantity is invalid", func(t *testing.T) {
		svc := newTestService(t, &fakeRepo{})
		if _, err := svc.Add(ctx, "e2", 0); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("persist failure leaves memory unchanged", func(t *testing.T) {
		repo := &fakeRepo{saveCartErr: errors.New("store down")}
		svc := newTestService(t, repo)

		if _, err := svc.Add(ctx, "e2", 1); err == nil {
			t.Fatalf("expected persistence error")
		}
		if len(svc.Items()) != 0 {
			t.Fatalf("expected in-memory cart unchanged")
		}
	})
}

func TestCartService_SetQuantity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("updates an existing entry", func(t *testing.T) {
		svc := newTestService(t, &fakeRepo{cart: []domain.CartItem{{EventID: "e2", Quantity: 1}}})
		if err := svc.SetQuantity(ctx, "e2", 9); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if items := svc.Items(); items[0].Quantity != 9 {
			t.Fatalf("expected quantity 9, got %d", items[0].Quantity)
		}
	})

	t.Run("rejects beyond stock without clamping", func(t *testing.T) {
		svc := newTestService(t, &fakeRepo{cart: []domain.CartItem{{EventID: "e1", Quantity: 1}}})
		if err := svc.SetQuantity(ctx, "e1", 5); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
		if items := svc.Items(); items[0].Quantity != 1 {
			t.Fatalf("expected quantity unchanged, got %d", items[0].Quantity)
		}
	})

	t.Run("absent entry is not created", func(t *testing.T) {
		svc := newTestService(t, &fakeRepo{})
		if err := svc.SetQuantity(ctx, "e2", 1); !errors.Is(err, domain.ErrNotInCart) {
			t.Fatalf("expected ErrNotInCart, got %v", err)
		}
	})
}

func TestCartService_Remove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := &fakeRepo{cart: []domain.CartItem{{EventID: "e1", Quantity: 1}, {EventID: "e2", Quantity: 2}}}
	svc := newTestService(t, repo)

	if err := svc.Remove(ctx, "e1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if items := svc.Items(); len(items) != 1 || items[0].EventID != "e2" {
		t.Fatalf("expected only e2 left, got %v", items)
	}

	// Removing an absent id is a no-op success and does not re-persist.
	saves := repo.cartSaves
	if err := svc.Remove(ctx, "e1"); err != nil {
		t.Fatalf("idempotent remove: %v", err)
	}
	if repo.cartSaves != saves {
		t.Fatalf("expected no extra persist, got %d", repo.cartSaves-saves)
	}
}

func TestCartService_Favorites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("toggle twice restores membership", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newTestService(t, repo)

		on, err := svc.Toggle(ctx, "e1")
		if err != nil || !on {
			t.Fatalf("expected membership on, got %v/%v", on, err)
		}
		if !svc.IsFavorite("e1") {
			t.Fatalf("expected e1 favorite")
		}

		off, err := svc.Toggle(ctx, "e1")
		if err != nil || off {
			t.Fatalf("expected membership off, got %v/%v", off, err)
		}
		if svc.IsFavorite("e1") || len(svc.Favorites()) != 0 {
			t.Fatalf("expected original empty membership restored")
		}
		if repo.favSaves != 2 {
			t.Fatalf("expected a persist per toggle, got %d", repo.favSaves)
		}
	})

	t.Run("insertion order is preserved", func(t *testing.T) {
		svc := newTestService(t, &fakeRepo{})
		for _, id := range []string{"e2", "e1", "zz"} {
			if _, err := svc.Toggle(ctx, id); err != nil {
				t.Fatalf("toggle %s: %v", id, err)
			}
		}
		if got := svc.Favorites(); !reflect.DeepEqual(got, []string{"e2", "e1", "zz"}) {
			t.Fatalf("unexpected order %v", got)
		}
	})

	t.Run("persist failure keeps old membership", func(t *testing.T) {
		repo := &fakeRepo{saveFavErr: errors.New("store down")}
		svc := newTestService(t, repo)
		if _, err := svc.Toggle(ctx, "e1"); err == nil {
			t.Fatalf("expected persistence error")
		}
		if svc.IsFavorite("e1") {
			t.Fatalf("expected membership unchanged")
		}
	})
}

func TestCartService_Checkout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("snapshots the cart and clears it", func(t *testing.T) {
		repo := &fakeRepo{}
		clk := clock.NewManual(start)
		svc, err := NewCartService(ctx, repo, testCatalog(), clk)
		if err != nil {
			t.Fatalf("new cart service: %v", err)
		}

		if _, err := svc.Add(ctx, "e1", 2); err != nil {
			t.Fatalf("add: %v", err)
		}
		if _, err := svc.Add(ctx, "e2", 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		before := svc.Items()

		order, err := svc.Checkout(ctx, map[string]string{"name": "Ana"})
		if err != nil {
			t.Fatalf("checkout: %v", err)
		}

		wantID := "EVT-" + "1767268800000"
		if order.ID != wantID {
			t.Fatalf("expected order id %s, got %s", wantID, order.ID)
		}
		if !reflect.DeepEqual(order.Items, before) {
			t.Fatalf("expected snapshot %v, got %v", before, order.Items)
		}
		if order.Total != "€ 61.00" {
			t.Fatalf("unexpected total %q", order.Total)
		}
		if order.Buyer["name"] != "Ana" {
			t.Fatalf("expected buyer carried, got %v", order.Buyer)
		}

		if len(svc.Items()) != 0 {
			t.Fatalf("expected cart cleared")
		}
		if repo.lastOrder == nil || repo.lastOrder.ID != order.ID {
			t.Fatalf("expected order persisted")
		}
		if len(repo.cart) != 0 {
			t.Fatalf("expected empty cart persisted, got %v", repo.cart)
		}

		// Immediately again: the cart is empty now.
		if _, err := svc.Checkout(ctx, nil); !errors.Is(err, domain.ErrEmptyCart) {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}

		got, err := svc.LastOrder(ctx)
		if err != nil || got == nil || got.ID != order.ID {
			t.Fatalf("expected last order %s, got %v/%v", order.ID, got, err)
		}
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		svc := newTestService(t, &fakeRepo{})
		if _, err := svc.Checkout(ctx, nil); !errors.Is(err, domain.ErrEmptyCart) {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("order persist failure keeps the cart", func(t *testing.T) {
		repo := &fakeRepo{cart: []domain.CartItem{{EventID: "e2", Quantity: 1}}, saveOrderErr: errors.New("store down")}
		svc := newTestService(t, repo)

		if _, err := svc.Checkout(ctx, nil); err == nil {
			t.Fatalf("expected persistence error")
		}
		if len(svc.Items()) != 1 {
			t.Fatalf("expected cart intact after failed checkout")
		}
	})

	t.Run("successive checkouts get distinct ids", func(t *testing.T) {
		repo := &fakeRepo{}
		clk := clock.NewManual(start)
		svc, err := NewCartService(ctx, repo, testCatalog(), clk)
		if err != nil {
			t.Fatalf("new cart service: %v", err)
		}

		if _, err := svc.Add(ctx, "e2", 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		first, err := svc.Checkout(ctx, nil)
		if err != nil {
			t.Fatalf("first checkout: %v", err)
		}

		clk.Advance(time.Millisecond)
		if _, err := svc.Add(ctx, "e2", 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		second, err := svc.Checkout(ctx, nil)
		if err != nil {
			t.Fatalf("second checkout: %v", err)
		}
		if first.ID == second.ID {
			t.Fatalf("expected distinct order ids, both %s", first.ID)
		}
	})
}

func TestCartService_Summary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(t, &fakeRepo{})
	if got := svc.Summary(); got != "" {
		t.Fatalf("expected empty summary for empty cart, got %q", got)
	}

	if _, err := svc.Add(ctx, "e1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := svc.Summary(); got != "€ 51.00" {
		t.Fatalf("unexpected summary %q", got)
	}
}
