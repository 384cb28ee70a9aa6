// Package repositories implements SQLite persistence for all domain entities.
//
// Every repository wraps the shared [sql.DB] pool and issues parameterized statements through the
// context-aware database/sql API, so a cancelled request cancels its query.
// Foreign keys are enforced on every pooled connection, which makes deleting a user or media item
// cascade to activities, ratings, favorites and recommendations.
//
// Key Implementations:
//   - [UserRepository] : Users with unique emails, atomic partial updates
//   - [MediaRepository] : Catalog entries
//   - [RatingRepository] : One score per (user, media) pair, upserted
//   - [ActivityRepository] : Append-only engagement history
//   - [RecommendationRepository] : Suggestions, optionally attributed to another user
//   - [FavoriteRepository] : Idempotent favorite markers
//   - [ReferenceRepository] : Read-only fixture tables
//
// [Store] bundles the repositories over one pool and owns first-boot seeding ([Store.Seed]).
//
// Lookups that match no row return an error wrapping shared.ErrNotFound. Deletes report whether a row
// was removed instead of failing. UNIQUE violations on users wrap shared.ErrConflict.
package repositories
