package http

import (
	"net/http"
	"strings"

	"github.com/cimillas/event-catalog/internal/app"
)

type favoritesResponse struct {
	Items []eventPayload `json:"items"`
	Count int            `json:"count"`
}

// FavoritesReader lists favorite ids in insertion order.
type FavoritesReader interface {
	Favorites() []string
}

// HandleFavorites serves GET /favorites: the favorite events that still
// resolve against the catalog. Stale ids are skipped, not errors.
func HandleFavorites(favs FavoritesReader, finder CatalogFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		ids := favs.Favorites()
		items := make([]eventPayload, 0, len(ids))
		for _, id := range ids {
			if ev, ok := finder.FindByID(id); ok {
				items = append(items, toEventPayload(ev, true))
			}
		}
		respondJSON(w, http.StatusOK, favoritesResponse{Items: items, Count: len(items)})
	}
}

type toggleFavoriteResponse struct {
	EventID  string `json:"id"`
	Favorite bool   `json:"favorite"`
	Count    int    `json:"count"`
}

// HandleToggleFavorite serves POST /favorites/{id}. Toggling twice
// restores the original membership.
func HandleToggleFavorite(svc Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		id, ok := parseFavoritePath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		snap, err := svc.Dispatch(r.Context(), app.Intent{Kind: app.IntentToggleFavorite, EventID: id})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		favorite := false
		for _, fav := range snap.Favorites {
			if fav == id {
				favorite = true
				break
			}
		}
		respondJSON(w, http.StatusOK, toggleFavoriteResponse{
			EventID:  id,
			Favorite: favorite,
			Count:    len(snap.Favorites),
		})
	}
}

func parseFavoritePath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/favorites/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
