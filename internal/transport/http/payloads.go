package http

import (
	"time"

	"github.com/cimillas/event-catalog/internal/app"
	"github.com/cimillas/event-catalog/internal/domain"
)

type eventPayload struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	City        string    `json:"city"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `json:"starts_at"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Popularity  float64   `json:"popularity"`
	Stock       int       `json:"stock"`
	SoldOut     bool      `json:"sold_out"`
	Artists     []string  `json:"artists"`
	Image       string    `json:"image"`
	Description string    `json:"description,omitempty"`
	Favorite    bool      `json:"favorite"`
}

func toEventPayload(ev domain.Event, favorite bool) eventPayload {
	return eventPayload{
		ID:          ev.ID,
		Title:       ev.Title,
		Category:    ev.Category,
		City:        ev.City,
		Venue:       ev.Venue,
		StartsAt:    ev.StartsAt,
		Price:       ev.Price,
		Currency:    ev.Currency,
		Popularity:  ev.Popularity,
		Stock:       ev.Stock,
		SoldOut:     ev.SoldOut,
		Artists:     ev.Artists,
		Image:       ev.Image,
		Description: ev.Description,
		Favorite:    favorite,
	}
}

type catalogResponse struct {
	Fragment   string         `json:"fragment"`
	Page       int            `json:"page"`
	PageCount  int            `json:"page_count"`
	TotalCount int            `json:"total_count"`
	Sort       string         `json:"sort"`
	View       string         `json:"view"`
	CartCount  int            `json:"cart_count"`
	Items      []eventPayload `json:"items"`
}

func toCatalogResponse(snap app.Snapshot) catalogResponse {
	favs := make(map[string]struct{}, len(snap.Favorites))
	for _, id := range snap.Favorites {
		favs[id] = struct{}{}
	}
	items := make([]eventPayload, 0, len(snap.Items))
	for _, ev := range snap.Items {
		_, fav := favs[ev.ID]
		items = append(items, toEventPayload(ev, fav))
	}
	return catalogResponse{
		Fragment:   snap.Fragment,
		Page:       snap.Params.Page,
		PageCount:  snap.PageCount,
		TotalCount: snap.TotalCount,
		Sort:       string(snap.Params.Sort),
		View:       string(snap.Params.View),
		CartCount:  snap.CartCount,
		Items:      items,
	}
}

type orderPayload struct {
	ID        string            `json:"id"`
	Buyer     map[string]string `json:"buyer"`
	Items     []domain.CartItem `json:"items"`
	Total     string            `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
}

func toOrderPayload(order domain.Order) orderPayload {
	return orderPayload{
		ID:        order.ID,
		Buyer:     order.Buyer,
		Items:     order.Items,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}
}
