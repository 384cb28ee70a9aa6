package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// BasicRouter implements the [Router] interface on top of a [chi.Mux].
//
// chi requires all middleware to be registered before the first route.
type BasicRouter struct {
	mux *chi.Mux
}

// NewBasicRouter creates a new [BasicRouter] instance that answers unknown routes and methods with JSON errors.
func NewBasicRouter() *BasicRouter {
	mux := chi.NewRouter()
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return &BasicRouter{mux: mux}
}

// Use adds [Middleware] to the stack, applied in the order it's added.
func (r *BasicRouter) Use(middleware ...Middleware) {
	for _, m := range middleware {
		r.mux.Use(m)
	}
}

// Handle registers a handler for the specified HTTP method and path.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Method(method, path, handler)
}

// Handler registers every route returned by [Handler.Routes].
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.Handle(route.Method, route.Pattern, route.Handler)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
