package domain

import "time"

// Event represents one catalog entry (concert/show). The record set is
// immutable for the session once the catalog is loaded.
type Event struct {
	ID          string
	Title       string
	Category    string
	City        string
	Venue       string
	StartsAt    time.Time
	Price       float64
	Currency    string
	Popularity  float64
	Stock       int
	SoldOut     bool
	Artists     []string
	Image       string
	Description string
}
