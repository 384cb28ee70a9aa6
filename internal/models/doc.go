// Package models defines the records of the media tracking service.
//
// The package contains two categories of types:
//
// 1. Records: flat structs mirroring the SQLite schema, serialized with the column names as JSON keys
//   - [User] : People tracking media, unique by email
//   - [MediaItem] : Catalog entries referencing a [MediaType]
//   - [UserActivity] : Append-only engagement history per (user, media) pair
//   - [Rating] : One score per (user, media) pair
//   - [Recommendation], [Favorite] : Suggestions and favorites
//   - [MediaType], [CreatorRole], [ActivityStatus], [Platform] : Reference fixtures
//
// 2. Requests: bodies accepted by the HTTP surface, carrying validate tags
//   - [CreateUserRequest], [UpdateUserRequest]
//   - [CreateMediaItemRequest]
//   - [CreateRatingRequest]
//   - [CreateUserActivityRequest], [UpdateUserActivityRequest]
//   - [CreateRecommendationRequest]
//
// Nullable columns are pointers so that absent values encode as JSON null.
// Update requests use nil to mean "leave unchanged".
package models
