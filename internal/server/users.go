package server

import (
	"net/http"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/go-chi/chi/v5"
)

// UserHandler serves /users.
type UserHandler struct{ s *Server }

func (h *UserHandler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/users", h.list},
		{http.MethodPost, "/users", h.create},
		{http.MethodGet, "/users/{id}", h.get},
		{http.MethodPatch, "/users/{id}", h.update},
		{http.MethodDelete, "/users/{id}", h.delete},
	}
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.s.store.Users.List(r.Context())
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to retrieve users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decode(r, &req); err != nil {
		h.s.fail(w, r, err, "", "Failed to create user")
		return
	}

	user, err := h.s.store.Users.Create(r.Context(), req)
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	user, err := h.s.store.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "User not found", "Failed to retrieve user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if err := decode(r, &req); err != nil {
		h.s.fail(w, r, err, "", "Failed to update user")
		return
	}

	user, err := h.s.store.Users.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.s.fail(w, r, err, "User not found", "Failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.s.store.Users.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.fail(w, r, err, "", "Failed to delete user")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
