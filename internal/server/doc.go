// Package server provides HTTP routing, middleware, and JSON handlers for the media tracking API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] implements it on top of chi, which supplies path parameters ("/users/{id}") and
// method matching. Unknown routes and methods get JSON error bodies.
//
// # Middleware
//
// [DefaultMiddleware] builds the stack applied to every request, outermost first:
//   - request id and real IP (chi middleware)
//   - panic recovery
//   - [RequestLogger]
//   - [Metrics], exported on GET /metrics
//   - [CORS]
//   - [RateLimit], when configured
//
// # Handlers
//
// Endpoints are grouped into [Handler] implementations ([UserHandler], [MediaHandler], ...) that each
// return their [Route] list. Every handler decodes and validates the body, makes one repository call,
// and encodes the result.
//
// Storage errors map onto status codes:
//   - shared.ErrInvalidInput: 400 {"error":"Invalid request body: ..."}
//   - shared.ErrNotFound: 404 with an entity specific message
//   - shared.ErrConflict: 409 {"error":"User with this email already exists"}
//   - anything else: 500 with a generic message; the cause is logged
package server
