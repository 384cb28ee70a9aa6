package server

import (
	"net/http"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/go-chi/chi/v5"
)

// MediaHandler serves the /media catalog.
type MediaHandler struct{ s *Server }

func (h *MediaHandler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/media", h.list},
		{http.MethodPost, "/media", h.create},
		{http.MethodGet, "/media/{id}", h.get},
	}
}

func (h *MediaHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.s.store.Media.List(r.Context())
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to retrieve media items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MediaHandler) create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMediaItemRequest
	if err := decode(r, &req); err != nil {
		h.s.fail(w, r, err, "", "Failed to create media item")
		return
	}

	item, err := h.s.store.Media.Create(r.Context(), req)
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to create media item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *MediaHandler) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.s.store.Media.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "Media item not found", "Failed to retrieve media item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}
