package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/shared"
)

const selectRecommendation = `SELECT recommendation_id, user_id, media_id, recommender_id, source, score FROM recommendations`

// RecommendationRepository persists [models.Recommendation] records.
type RecommendationRepository struct {
	db *sql.DB
}

func NewRecommendationRepository(db *sql.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// Create records a recommendation of a media item for the user.
func (r *RecommendationRepository) Create(ctx context.Context, userID string, req models.CreateRecommendationRequest) (*models.Recommendation, error) {
	rec := req.ToModel(shared.GenerateID(), userID)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recommendations (recommendation_id, user_id, media_id, recommender_id, source, score)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.RecommendationID, rec.UserID, rec.MediaID, rec.RecommenderID, rec.Source, rec.Score)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recommendation: %w", err)
	}

	return &rec, nil
}

// Get retrieves a recommendation by ID, returning [shared.ErrNotFound] when absent.
func (r *RecommendationRepository) Get(ctx context.Context, id string) (*models.Recommendation, error) {
	rec, err := scanRecommendation(r.db.QueryRowContext(ctx, selectRecommendation+` WHERE recommendation_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: recommendation %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation: %w", err)
	}
	return rec, nil
}

// ListByUser returns the user's recommendations, highest score first and newest first among equal scores.
// Unscored recommendations sort last.
func (r *RecommendationRepository) ListByUser(ctx context.Context, userID string) ([]models.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, selectRecommendation+` WHERE user_id = ? ORDER BY score DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	recs := []models.Recommendation{}
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return recs, nil
}

// Delete removes a recommendation, reporting whether it existed.
func (r *RecommendationRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recommendations WHERE recommendation_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete recommendation: %w", err)
	}
	return affected(result)
}

func scanRecommendation(row scanner) (*models.Recommendation, error) {
	var (
		rec         models.Recommendation
		recommender sql.NullString
		source      sql.NullString
		score       sql.NullFloat64
	)
	if err := row.Scan(&rec.RecommendationID, &rec.UserID, &rec.MediaID, &recommender, &source, &score); err != nil {
		return nil, err
	}
	rec.RecommenderID = stringPtr(recommender)
	rec.Source = stringPtr(source)
	rec.Score = floatPtr(score)
	return &rec, nil
}
