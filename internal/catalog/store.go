package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/cimillas/event-catalog/internal/domain"
)

// defaultStock is assigned to every record; the feed does not carry
// inventory numbers unless a stock field is explicitly present.
const defaultStock = 100

// Store holds the immutable per-session event list plus an id index and
// the category/city facet lists.
type Store struct {
	events     []domain.Event
	byID       map[string]int
	categories []string
	cities     []string
}

// Load fetches and normalizes the catalog feed. It is meant to run once
// at startup; any fetch or parse failure is fatal to the session.
func Load(ctx context.Context, src Source) (*Store, error) {
	raw, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	var feed []feedEvent
	if err := json.Unmarshal(raw, &feed); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	s := &Store{byID: make(map[string]int, len(feed))}
	catSet := map[string]struct{}{}
	citySet := map[string]struct{}{}

	for _, fe := range feed {
		ev := fe.normalize()
		if ev.ID == "" {
			continue
		}
		if _, dup := s.byID[ev.ID]; dup {
			// First record wins; uniqueness is enforced at the boundary.
			continue
		}
		s.byID[ev.ID] = len(s.events)
		s.events = append(s.events, ev)
		catSet[ev.Category] = struct{}{}
		citySet[ev.City] = struct{}{}
	}

	s.categories = sortedKeys(catSet)
	s.cities = sortedKeys(citySet)
	return s, nil
}

// Events returns the catalog in feed order. Callers must not modify it.
func (s *Store) Events() []domain.Event {
	return s.events
}

func (s *Store) FindByID(id string) (domain.Event, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Event{}, false
	}
	return s.events[i], true
}

// Categories returns the sorted distinct categories in the catalog.
func (s *Store) Categories() []string {
	return s.categories
}

// Cities returns the sorted distinct cities in the catalog.
func (s *Store) Cities() []string {
	return s.cities
}

func (s *Store) Len() int {
	return len(s.events)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k == "" {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// feedEvent is the raw feed shape. Only a handful of fields are
// guaranteed; the rest are best-effort.
type feedEvent struct {
	ID          flexID   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	City        string   `json:"city"`
	Artist      string   `json:"artist"`
	Artists     []string `json:"artists"`
	Venue       string   `json:"venue"`
	Image       string   `json:"image"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Date        string   `json:"date"`
	Popularity  float64  `json:"popularity"`
	Stock       *int     `json:"stock"`
	SoldOut     bool     `json:"soldOut"`
	Description string   `json:"description"`
}

func (fe feedEvent) normalize() domain.Event {
	ev := domain.Event{
		ID:          string(fe.ID),
		Title:       fe.Title,
		Category:    fe.Category,
		City:        fe.City,
		Venue:       fe.Venue,
		Price:       fe.Price,
		Currency:    fe.Currency,
		Popularity:  fe.Popularity,
		Stock:       defaultStock,
		SoldOut:     fe.SoldOut,
		Artists:     fe.Artists,
		Image:       fe.Image,
		Description: fe.Description,
	}
	if ev.Venue == "" {
		ev.Venue = fe.City
	}
	if ev.Currency == "" {
		ev.Currency = "€"
	}
	if ev.Popularity < 0 {
		ev.Popularity = 0
	}
	if fe.Stock != nil && *fe.Stock >= 0 {
		ev.Stock = *fe.Stock
	}
	if len(ev.Artists) == 0 && fe.Artist != "" {
		ev.Artists = []string{fe.Artist}
	}
	if ev.Description == "" {
		ev.Description = ev.Title + " in " + ev.City
	}
	ev.StartsAt = parseDate(fe.Date)
	return ev
}

// parseDate is best-effort: unparseable dates become the zero instant
// rather than failing the whole load.
func parseDate(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// flexID accepts string or numeric ids and keeps them as strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	// Unparseable ids are dropped with their record at load time.
	*f = ""
	return nil
}
