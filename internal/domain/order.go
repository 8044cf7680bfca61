package domain

import "time"

// Order is the write-once record produced by a checkout. Items is a
// snapshot of the cart at submission time.
type Order struct {
	ID        string            `json:"id"`
	Buyer     map[string]string `json:"buyer"`
	Items     []CartItem        `json:"items"`
	Total     string            `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
}
