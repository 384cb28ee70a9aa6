// package server contains the router, middleware & handlers for the media tracking API
package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediatrack/internal/repositories"
	"github.com/desertthunder/mediatrack/internal/shared"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, metrics, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Route is a single method + pattern registration.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Handler defines the interface for a group of related endpoints (users, media, ...).
type Handler interface {
	Routes() []Route // Routes returns the method/pattern pairs this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers every route of a [Handler]
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Server is the HTTP surface over a [repositories.Store].
type Server struct {
	store  *repositories.Store
	logger *log.Logger
	router Router
}

// New builds a [Server] with the full middleware stack and every route registered.
func New(store *repositories.Store, logger *log.Logger, cfg shared.ServerConfig) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	r := NewBasicRouter()
	r.Use(DefaultMiddleware(logger, cfg)...)

	s := &Server{store: store, logger: logger, router: r}

	r.Handle(http.MethodGet, "/health", http.HandlerFunc(s.health))
	r.Handle(http.MethodGet, "/metrics", promhttp.Handler())
	r.Handler(&UserHandler{s})
	r.Handler(&MediaHandler{s})
	r.Handler(&RatingHandler{s})
	r.Handler(&ActivityHandler{s})
	r.Handler(&RecommendationHandler{s})
	r.Handler(&FavoriteHandler{s})
	r.Handler(&ReferenceHandler{s})

	return s
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"service":  "Cross-Media Tracking Platform API",
		"database": "SQLite",
	})
}
