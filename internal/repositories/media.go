package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/shared"
)

const selectMediaItem = `SELECT media_id, title, type_id, release_date, description, cover_url FROM media_items`

// MediaRepository persists [models.MediaItem] catalog entries.
type MediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a new media item with a generated ID. The type must reference an existing media type.
func (r *MediaRepository) Create(ctx context.Context, req models.CreateMediaItemRequest) (*models.MediaItem, error) {
	item := req.ToModel(shared.GenerateID())

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media_items (media_id, title, type_id, release_date, description, cover_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`, item.MediaID, item.Title, item.TypeID, item.ReleaseDate, item.Description, item.CoverURL)
	if err != nil {
		return nil, fmt.Errorf("failed to insert media item: %w", err)
	}

	return &item, nil
}

// Get retrieves a media item by ID, returning [shared.ErrNotFound] when absent.
func (r *MediaRepository) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	item, err := scanMediaItem(r.db.QueryRowContext(ctx, selectMediaItem+` WHERE media_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: media item %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query media item: %w", err)
	}
	return item, nil
}

// List retrieves the whole catalog ordered by title.
func (r *MediaRepository) List(ctx context.Context) ([]models.MediaItem, error) {
	rows, err := r.db.QueryContext(ctx, selectMediaItem+` ORDER BY title, media_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query media items: %w", err)
	}
	defer rows.Close()

	items := []models.MediaItem{}
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

func scanMediaItem(row scanner) (*models.MediaItem, error) {
	var (
		item        models.MediaItem
		releaseDate sql.NullString
		description sql.NullString
		cover       sql.NullString
	)
	if err := row.Scan(&item.MediaID, &item.Title, &item.TypeID, &releaseDate, &description, &cover); err != nil {
		return nil, err
	}
	item.ReleaseDate = stringPtr(releaseDate)
	item.Description = stringPtr(description)
	item.CoverURL = stringPtr(cover)
	return &item, nil
}
