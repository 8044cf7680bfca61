package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cimillas/event-catalog/internal/app"
	"github.com/cimillas/event-catalog/internal/query"
)

// CatalogBrowser applies navigated parameters and returns the computed
// view, the way the address bar drives the catalog.
type CatalogBrowser interface {
	ApplyValues(ctx context.Context, values url.Values) app.Snapshot
}

// HandleCatalog serves the filtered/sorted/paged catalog. The query
// string follows the fragment grammar (query, cat, city, sort, page,
// view); absent parameters mean their defaults.
func HandleCatalog(svc CatalogBrowser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		snap := svc.ApplyValues(r.Context(), r.URL.Query())
		respondJSON(w, http.StatusOK, toCatalogResponse(snap))
	}
}

// Dispatcher routes one user intent through the session.
type Dispatcher interface {
	Dispatch(ctx context.Context, in app.Intent) (app.Snapshot, error)
}

type eventDetailResponse struct {
	Fragment string       `json:"fragment"`
	Event    eventPayload `json:"event"`
}

// HandleEventDetail serves GET /events/{id}.
func HandleEventDetail(svc Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		id, ok := parseDetailPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		snap, err := svc.Dispatch(r.Context(), app.Intent{Kind: app.IntentShowDetail, EventID: id})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		favorite := false
		for _, fav := range snap.Favorites {
			if fav == snap.Detail.ID {
				favorite = true
				break
			}
		}
		respondJSON(w, http.StatusOK, eventDetailResponse{
			Fragment: snap.Fragment,
			Event:    toEventPayload(*snap.Detail, favorite),
		})
	}
}

func parseDetailPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/events/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// FacetSource lists the catalog's filter options.
type FacetSource interface {
	Categories() []string
	Cities() []string
}

type filtersResponse struct {
	Categories []string `json:"categories"`
	Cities     []string `json:"cities"`
	Sorts      []string `json:"sorts"`
}

// HandleFilters serves the selector contents for the catalog UI.
func HandleFilters(src FacetSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		respondJSON(w, http.StatusOK, filtersResponse{
			Categories: src.Categories(),
			Cities:     src.Cities(),
			Sorts: []string{
				string(query.SortDateAsc),
				string(query.SortDateDesc),
				string(query.SortPriceAsc),
				string(query.SortPriceDesc),
				string(query.SortPopularity),
			},
		})
	}
}
