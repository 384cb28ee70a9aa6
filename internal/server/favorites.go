package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type FavoriteHandler struct{ s *Server }

func (h *FavoriteHandler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/users/{id}/favorites", h.list},
		{http.MethodPut, "/users/{id}/favorites/{mediaID}", h.add},
		{http.MethodDelete, "/users/{id}/favorites/{mediaID}", h.remove},
	}
}

func (h *FavoriteHandler) list(w http.ResponseWriter, r *http.Request) {
	favs, err := h.s.store.Favorites.ListByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to retrieve favorites")
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

func (h *FavoriteHandler) add(w http.ResponseWriter, r *http.Request) {
	fav, err := h.s.store.Favorites.Add(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "mediaID"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to add favorite")
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

func (h *FavoriteHandler) remove(w http.ResponseWriter, r *http.Request) {
	removed, err := h.s.store.Favorites.Remove(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "mediaID"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to remove favorite")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Favorite not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
