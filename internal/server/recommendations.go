package server

import (
	"net/http"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/go-chi/chi/v5"
)

type RecommendationHandler struct{ s *Server }

func (h *RecommendationHandler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/users/{id}/recommendations", h.listByUser},
		{http.MethodPost, "/users/{id}/recommendations", h.create},
		{http.MethodGet, "/recommendations/{id}", h.get},
		{http.MethodDelete, "/recommendations/{id}", h.delete},
	}
}

func (h *RecommendationHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	recs, err := h.s.store.Recommendations.ListByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to retrieve recommendations")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *RecommendationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRecommendationRequest
	if err := decode(r, &req); err != nil {
		h.s.fail(w, r, err, "", "Failed to create recommendation")
		return
	}

	rec, err := h.s.store.Recommendations.Create(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to create recommendation")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecommendationHandler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.s.store.Recommendations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "Recommendation not found", "Failed to retrieve recommendation")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecommendationHandler) delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.s.store.Recommendations.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to delete recommendation")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Recommendation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
