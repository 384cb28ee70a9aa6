package server

import (
	"net/http"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/go-chi/chi/v5"
)

// RatingHandler serves ratings, both per user and per media item.
type RatingHandler struct{ s *Server }

func (h *RatingHandler) Routes() []Route {
	return []Route{
		{http.MethodPost, "/users/{id}/ratings", h.upsert},
		{http.MethodGet, "/users/{id}/ratings", h.listByUser},
		{http.MethodGet, "/users/{id}/ratings/{mediaID}", h.get},
		{http.MethodDelete, "/users/{id}/ratings/{mediaID}", h.delete},
		{http.MethodGet, "/media/{id}/ratings", h.listByMedia},
		{http.MethodGet, "/media/{id}/ratings/average", h.average},
	}
}

// upsert replaces any earlier score the user gave the same media item.
func (h *RatingHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRatingRequest
	if err := decode(r, &req); err != nil {
		h.s.fail(w, r, err, "", "Failed to create rating")
		return
	}

	rating, err := h.s.store.Ratings.Upsert(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to create rating")
		return
	}
	writeJSON(w, http.StatusCreated, rating)
}

func (h *RatingHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.s.store.Ratings.ListByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to retrieve ratings")
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

func (h *RatingHandler) get(w http.ResponseWriter, r *http.Request) {
	rating, err := h.s.store.Ratings.Get(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "mediaID"))
	if err != nil {
		h.s.fail(w, r, err, "Rating not found", "Failed to retrieve rating")
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

func (h *RatingHandler) delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.s.store.Ratings.Delete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "mediaID"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to delete rating")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Rating not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RatingHandler) listByMedia(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.s.store.Ratings.ListByMedia(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to retrieve ratings")
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

func (h *RatingHandler) average(w http.ResponseWriter, r *http.Request) {
	summary, err := h.s.store.Ratings.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to retrieve rating average")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
