package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/shared"
)

const selectRating = `SELECT user_id, media_id, score, rated_at FROM ratings`

// RatingRepository persists [models.Rating] scores, at most one per (user, media) pair.
type RatingRepository struct {
	db  *sql.DB
	now clock
}

func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db, now: time.Now}
}

// Upsert records the user's score for a media item, replacing any previous score and refreshing rated_at.
func (r *RatingRepository) Upsert(ctx context.Context, userID string, req models.CreateRatingRequest) (*models.Rating, error) {
	if req.MediaID == nil {
		return nil, fmt.Errorf("%w: media_id is required", shared.ErrInvalidInput)
	}
	if req.Score == nil {
		return nil, fmt.Errorf("%w: score is required", shared.ErrInvalidInput)
	}

	rating := models.Rating{
		UserID:  userID,
		MediaID: *req.MediaID,
		Score:   *req.Score,
		RatedAt: shared.FormatTimestamp(r.now()),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (user_id, media_id, score, rated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, media_id) DO UPDATE SET score = excluded.score, rated_at = excluded.rated_at
	`, rating.UserID, rating.MediaID, rating.Score, rating.RatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert rating: %w", err)
	}

	return &rating, nil
}

// Get retrieves the user's rating of a media item, returning [shared.ErrNotFound] when unrated.
func (r *RatingRepository) Get(ctx context.Context, userID, mediaID string) (*models.Rating, error) {
	rating, err := scanRating(r.db.QueryRowContext(ctx, selectRating+` WHERE user_id = ? AND media_id = ?`, userID, mediaID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: rating %s/%s", shared.ErrNotFound, userID, mediaID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rating: %w", err)
	}
	return rating, nil
}

// ListByUser returns the user's ratings, most recent first.
func (r *RatingRepository) ListByUser(ctx context.Context, userID string) ([]models.Rating, error) {
	return r.list(ctx, selectRating+` WHERE user_id = ? ORDER BY rated_at DESC, media_id`, userID)
}

// ListByMedia returns every rating of a media item, most recent first.
func (r *RatingRepository) ListByMedia(ctx context.Context, mediaID string) ([]models.Rating, error) {
	return r.list(ctx, selectRating+` WHERE media_id = ? ORDER BY rated_at DESC, user_id`, mediaID)
}

// Delete removes the user's rating of a media item, reporting whether one existed.
func (r *RatingRepository) Delete(ctx context.Context, userID, mediaID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE user_id = ? AND media_id = ?`, userID, mediaID)
	if err != nil {
		return false, fmt.Errorf("failed to delete rating: %w", err)
	}
	return affected(result)
}

// Summary computes the mean score and number of ratings for a media item.
func (r *RatingRepository) Summary(ctx context.Context, mediaID string) (*models.RatingSummary, error) {
	var (
		avg   sql.NullFloat64
		count int
	)
	err := r.db.QueryRowContext(ctx, `SELECT AVG(score), COUNT(*) FROM ratings WHERE media_id = ?`, mediaID).Scan(&avg, &count)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize ratings: %w", err)
	}

	return &models.RatingSummary{MediaID: mediaID, Average: floatPtr(avg), Count: count}, nil
}

func (r *RatingRepository) list(ctx context.Context, query string, args ...any) ([]models.Rating, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	ratings := []models.Rating{}
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, *rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ratings, nil
}

func scanRating(row scanner) (*models.Rating, error) {
	var rating models.Rating
	if err := row.Scan(&rating.UserID, &rating.MediaID, &rating.Score, &rating.RatedAt); err != nil {
		return nil, err
	}
	return &rating, nil
}
