package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediatrack/internal/shared"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// DefaultMiddleware returns the stack every request passes through, outermost first.
//
// Rate limiting is only included when cfg.RateLimit is positive.
func DefaultMiddleware(logger *log.Logger, cfg shared.ServerConfig) []Middleware {
	mw := []Middleware{
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		RequestLogger(logger),
		Metrics,
		CORS(cfg.CORSOrigins),
	}

	if cfg.RateLimit > 0 {
		mw = append(mw, RateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	return mw
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			requestLogger(r, logger).Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status(ww),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// CORS allows the configured origins. An empty list allows none.
func CORS(origins []string) Middleware {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
}

// RateLimit rejects requests beyond a shared token bucket of perSecond tokens with the given burst.
func RateLimit(perSecond float64, burst int) Middleware {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				APIRateLimitHits.Inc()
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger returns a child of base tagged with the request id, when one is set.
func requestLogger(r *http.Request, base *log.Logger) *log.Logger {
	if id := chimw.GetReqID(r.Context()); id != "" {
		return shared.WithLogger(base, "request_id", id)
	}
	return base
}
