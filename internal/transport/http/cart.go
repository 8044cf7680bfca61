package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cimillas/event-catalog/internal/app"
	"github.com/cimillas/event-catalog/internal/domain"
)

// CartReader exposes the current cart contents for rendering.
type CartReader interface {
	Items() []domain.CartItem
	Summary() string
	TotalQuantity() int
}

// CatalogFinder resolves cart entries back to events for display.
type CatalogFinder interface {
	FindByID(id string) (domain.Event, bool)
}

type cartLine struct {
	EventID   string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Quantity  int     `json:"qty"`
	LineTotal float64 `json:"line_total"`
}

type cartResponse struct {
	Items   []cartLine `json:"items"`
	Count   int        `json:"count"`
	Summary string     `json:"summary"`
}

func buildCartResponse(cart CartReader, finder CatalogFinder) cartResponse {
	items := cart.Items()
	lines := make([]cartLine, 0, len(items))
	for _, it := range items {
		line := cartLine{EventID: it.EventID, Quantity: it.Quantity}
		if ev, ok := finder.FindByID(it.EventID); ok {
			line.Title = ev.Title
			line.Price = ev.Price
			line.Currency = ev.Currency
			line.LineTotal = ev.Price * float64(it.Quantity)
		}
		lines = append(lines, line)
	}
	return cartResponse{
		Items:   lines,
		Count:   cart.TotalQuantity(),
		Summary: cart.Summary(),
	}
}

type addToCartRequest struct {
	EventID  string `json:"id"`
	Quantity int    `json:"qty"`
}

// HandleCart serves GET /cart and POST /cart.
func HandleCart(svc Dispatcher, cart CartReader, finder CatalogFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			respondJSON(w, http.StatusOK, buildCartResponse(cart, finder))
		case http.MethodPost:
			var req addToCartRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if req.EventID == "" {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "id is required")
				return
			}

			_, err := svc.Dispatch(r.Context(), app.Intent{
				Kind:     app.IntentAddToCart,
				EventID:  req.EventID,
				Quantity: req.Quantity,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			respondJSON(w, http.StatusCreated, buildCartResponse(cart, finder))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type setQuantityRequest struct {
	Quantity int `json:"qty"`
}

// HandleCartItem serves PATCH /cart/{id} and DELETE /cart/{id}.
func HandleCartItem(svc Dispatcher, cart CartReader, finder CatalogFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseCartItemPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodPatch:
			var req setQuantityRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			_, err := svc.Dispatch(r.Context(), app.Intent{
				Kind:     app.IntentSetQuantity,
				EventID:  id,
				Quantity: req.Quantity,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			respondJSON(w, http.StatusOK, buildCartResponse(cart, finder))
		case http.MethodDelete:
			if _, err := svc.Dispatch(r.Context(), app.Intent{
				Kind:    app.IntentRemoveFromCart,
				EventID: id,
			}); err != nil {
				writeDomainError(w, err)
				return
			}
			respondJSON(w, http.StatusOK, buildCartResponse(cart, finder))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseCartItemPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/cart/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
