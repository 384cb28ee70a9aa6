// package repositories provides persistence layer implementations for all model types.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/mattn/go-sqlite3"
)

// querier is satisfied by both [sql.DB] and [sql.Tx].
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// Store groups the repositories that share one database pool.
type Store struct {
	db *sql.DB

	Users           *UserRepository
	Media           *MediaRepository
	Ratings         *RatingRepository
	Activities      *ActivityRepository
	Recommendations *RecommendationRepository
	Favorites       *FavoriteRepository
	Reference       *ReferenceRepository
}

// NewStore creates every repository over db. The caller owns db and closes it.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:              db,
		Users:           NewUserRepository(db),
		Media:           NewMediaRepository(db),
		Ratings:         NewRatingRepository(db),
		Activities:      NewActivityRepository(db),
		Recommendations: NewRecommendationRepository(db),
		Favorites:       NewFavoriteRepository(db),
		Reference:       NewReferenceRepository(db),
	}
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListUsers returns every user ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Users.List(ctx)
}

// History loads a user with their annotated activities and ratings.
func (s *Store) History(ctx context.Context, userID string) (*models.ActivityHistory, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.Activities.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}

	ratings, err := s.Ratings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.ActivityHistory{User: *user, Activities: entries, Ratings: ratings}, nil
}

// withTx runs fn inside a transaction, committing when fn returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// affected reports whether result changed at least one row.
func affected(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows > 0, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}

// clock is swapped in tests to control generated timestamps.
type clock func() time.Time
