package server

import (
	"context"
	"net/http"
)

// ReferenceHandler exposes the read-only fixture tables.
type ReferenceHandler struct{ s *Server }

func (h *ReferenceHandler) Routes() []Route {
	ref := h.s.store.Reference
	return []Route{
		{http.MethodGet, "/media-types", listing(h.s, ref.ListMediaTypes, "Failed to retrieve media types")},
		{http.MethodGet, "/creator-roles", listing(h.s, ref.ListCreatorRoles, "Failed to retrieve creator roles")},
		{http.MethodGet, "/activity-statuses", listing(h.s, ref.ListActivityStatuses, "Failed to retrieve activity statuses")},
		{http.MethodGet, "/platforms", listing(h.s, ref.ListPlatforms, "Failed to retrieve platforms")},
	}
}

func listing[T any](s *Server, list func(context.Context) ([]T, error), fallback string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := list(r.Context())
		if err != nil {
			s.fail(w, r, err, "", fallback)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}
