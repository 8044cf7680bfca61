package domain

// CartItem is one (event, quantity) entry. The JSON tags match the
// persisted cart shape, so stored carts decode directly into it.
type CartItem struct {
	EventID  string `json:"id"`
	Quantity int    `json:"qty"`
}
