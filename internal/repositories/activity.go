package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/shared"
)

const activityColumns = `a.activity_id, a.user_id, a.media_id, a.status_id, a.rating, a.review, a.started_at, a.finished_at, a.source_platform`

// ActivityRepository persists the append-only [models.UserActivity] log.
type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends a new activity for the user. Earlier activities for the same media item are kept.
func (r *ActivityRepository) Create(ctx context.Context, userID string, req models.CreateUserActivityRequest) (*models.UserActivity, error) {
	activity := req.ToModel(shared.GenerateID(), userID)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_activities (
			activity_id, user_id, media_id, status_id, rating, review, started_at, finished_at, source_platform
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		activity.ActivityID, activity.UserID, activity.MediaID, activity.StatusID, activity.Rating,
		activity.Review, activity.StartedAt, activity.FinishedAt, activity.SourcePlatform,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}

	return &activity, nil
}

// Get retrieves an activity by ID, returning [shared.ErrNotFound] when absent.
func (r *ActivityRepository) Get(ctx context.Context, id string) (*models.UserActivity, error) {
	return getActivity(ctx, r.db, id)
}

// ListByUser returns the user's activities, latest start first.
func (r *ActivityRepository) ListByUser(ctx context.Context, userID string) ([]models.UserActivity, error) {
	return r.list(ctx, `WHERE a.user_id = ? ORDER BY a.started_at DESC, a.rowid DESC`, userID)
}

// ListByMedia returns every activity recorded against a media item, latest start first.
func (r *ActivityRepository) ListByMedia(ctx context.Context, mediaID string) ([]models.UserActivity, error) {
	return r.list(ctx, `WHERE a.media_id = ? ORDER BY a.started_at DESC, a.rowid DESC`, mediaID)
}

// Update applies the non-nil fields of req and returns the updated activity.
func (r *ActivityRepository) Update(ctx context.Context, id string, req models.UpdateUserActivityRequest) (*models.UserActivity, error) {
	var activity *models.UserActivity

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE user_activities
			SET status_id = COALESCE(?, status_id),
				rating = COALESCE(?, rating),
				review = COALESCE(?, review),
				finished_at = COALESCE(?, finished_at)
			WHERE activity_id = ?
		`, req.StatusID, req.Rating, req.Review, req.FinishedAt, id)
		if err != nil {
			return fmt.Errorf("failed to update activity: %w", err)
		}

		ok, err := affected(result)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: activity %s", shared.ErrNotFound, id)
		}

		activity, err = getActivity(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return activity, nil
}

// Delete removes an activity, reporting whether it existed.
func (r *ActivityRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_activities WHERE activity_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete activity: %w", err)
	}
	return affected(result)
}

// Entries returns the user's activities joined with media titles and status names, latest start first.
func (r *ActivityRepository) Entries(ctx context.Context, userID string) ([]models.ActivityEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+activityColumns+`, m.title, s.name
		FROM user_activities a
		JOIN media_items m ON m.media_id = a.media_id
		JOIN activity_statuses s ON s.status_id = a.status_id
		WHERE a.user_id = ?
		ORDER BY a.started_at DESC, a.rowid DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity entries: %w", err)
	}
	defer rows.Close()

	entries := []models.ActivityEntry{}
	for rows.Next() {
		var entry models.ActivityEntry
		activity, err := scanActivity(rows, &entry.MediaTitle, &entry.StatusName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entry.UserActivity = *activity
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

func (r *ActivityRepository) list(ctx context.Context, clause string, args ...any) ([]models.UserActivity, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+activityColumns+` FROM user_activities a `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := []models.UserActivity{}
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return activities, nil
}

func getActivity(ctx context.Context, q querier, id string) (*models.UserActivity, error) {
	row := q.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM user_activities a WHERE a.activity_id = ?`, id)
	activity, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: activity %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	return activity, nil
}

// scanActivity scans the activity columns followed by any extra destinations.
func scanActivity(row scanner, extra ...any) (*models.UserActivity, error) {
	var (
		activity   models.UserActivity
		rating     sql.NullFloat64
		review     sql.NullString
		startedAt  sql.NullString
		finishedAt sql.NullString
		platform   sql.NullString
	)

	dest := []any{
		&activity.ActivityID, &activity.UserID, &activity.MediaID, &activity.StatusID,
		&rating, &review, &startedAt, &finishedAt, &platform,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	activity.Rating = floatPtr(rating)
	activity.Review = stringPtr(review)
	activity.StartedAt = stringPtr(startedAt)
	activity.FinishedAt = stringPtr(finishedAt)
	activity.SourcePlatform = stringPtr(platform)
	return &activity, nil
}
