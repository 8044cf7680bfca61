package domain

import "errors"

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrSoldOut           = errors.New("event sold out")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotInCart         = errors.New("event not in cart")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = errors.New("invalid quantity")
)
