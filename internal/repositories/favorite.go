package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/shared"
)

// FavoriteRepository persists [models.Favorite] markers.
type FavoriteRepository struct {
	db  *sql.DB
	now clock
}

func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db, now: time.Now}
}

// Add marks a media item as a favorite of the user. Adding an existing favorite keeps its original added_at.
func (r *FavoriteRepository) Add(ctx context.Context, userID, mediaID string) (*models.Favorite, error) {
	fav := models.Favorite{UserID: userID, MediaID: mediaID}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO favorites (user_id, media_id, added_at) VALUES (?, ?, ?)
			ON CONFLICT (user_id, media_id) DO NOTHING
		`, userID, mediaID, shared.FormatTimestamp(r.now()))
		if err != nil {
			return fmt.Errorf("failed to insert favorite: %w", err)
		}

		err = tx.QueryRowContext(ctx,
			`SELECT added_at FROM favorites WHERE user_id = ? AND media_id = ?`, userID, mediaID,
		).Scan(&fav.AddedAt)
		if err != nil {
			return fmt.Errorf("failed to query favorite: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &fav, nil
}

// ListByUser returns the user's favorites, most recently added first.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, media_id, added_at FROM favorites
		WHERE user_id = ?
		ORDER BY added_at DESC, media_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	favs := []models.Favorite{}
	for rows.Next() {
		var fav models.Favorite
		if err := rows.Scan(&fav.UserID, &fav.MediaID, &fav.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favs = append(favs, fav)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return favs, nil
}

// Remove unmarks a favorite, reporting whether it existed.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, mediaID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND media_id = ?`, userID, mediaID)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	return affected(result)
}
