package server

import (
	"net/http"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/go-chi/chi/v5"
)

// ActivityHandler serves the activity log.
type ActivityHandler struct{ s *Server }

func (h *ActivityHandler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/users/{id}/activities", h.listByUser},
		{http.MethodPost, "/users/{id}/activities", h.create},
		{http.MethodGet, "/media/{id}/activities", h.listByMedia},
		{http.MethodGet, "/activities/{id}", h.get},
		{http.MethodPatch, "/activities/{id}", h.update},
		{http.MethodDelete, "/activities/{id}", h.delete},
	}
}

func (h *ActivityHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	activities, err := h.s.store.Activities.ListByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to retrieve user activities")
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

// create always appends; earlier activities for the same media item are kept.
func (h *ActivityHandler) create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserActivityRequest
	if err := decode(r, &req); err != nil {
		h.s.fail(w, r, err, "", "Failed to create user activity")
		return
	}

	activity, err := h.s.store.Activities.Create(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to create user activity")
		return
	}
	writeJSON(w, http.StatusCreated, activity)
}

func (h *ActivityHandler) listByMedia(w http.ResponseWriter, r *http.Request) {
	activities, err := h.s.store.Activities.ListByMedia(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to retrieve media activities")
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

func (h *ActivityHandler) get(w http.ResponseWriter, r *http.Request) {
	activity, err := h.s.store.Activities.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "Activity not found", "Failed to retrieve activity")
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func (h *ActivityHandler) update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserActivityRequest
	if err := decode(r, &req); err != nil {
		h.s.fail(w, r, err, "", "Failed to update activity")
		return
	}

	activity, err := h.s.store.Activities.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.s.fail(w, r, err, "Activity not found", "Failed to update activity")
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func (h *ActivityHandler) delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.s.store.Activities.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to delete activity")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Activity not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
