package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cimillas/event-catalog/internal/app"
	"github.com/cimillas/event-catalog/internal/domain"
)

type checkoutRequest struct {
	Buyer map[string]string `json:"buyer"`
}

// HandleCheckout serves POST /checkout: snapshots the cart into an order
// and clears it. An empty cart is rejected with a distinguishable code.
func HandleCheckout(svc Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req checkoutRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		snap, err := svc.Dispatch(r.Context(), app.Intent{Kind: app.IntentCheckout, Buyer: req.Buyer})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, toOrderPayload(*snap.Order))
	}
}

// OrderReader loads the last persisted order.
type OrderReader interface {
	LastOrder(ctx context.Context) (*domain.Order, error)
}

// HandleLastOrder serves GET /orders/last.
func HandleLastOrder(svc OrderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		order, err := svc.LastOrder(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		if order == nil {
			writeError(w, http.StatusNotFound, codeNoOrder, "no order yet")
			return
		}
		respondJSON(w, http.StatusOK, toOrderPayload(*order))
	}
}
