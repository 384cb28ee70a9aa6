package models

// CreateUserRequest is the body of POST /users.
//
// Required fields are pointers so that validation checks presence only. An empty string is accepted.
type CreateUserRequest struct {
	Name         *string `json:"name" validate:"required"`
	Email        *string `json:"email" validate:"required"`
	AuthProvider *string `json:"auth_provider"`
}

// ToModel builds the [User] to insert under id.
func (r CreateUserRequest) ToModel(id string) User {
	return User{UserID: id, Name: deref(r.Name), Email: deref(r.Email), AuthProvider: r.AuthProvider}
}

// UpdateUserRequest is the body of PATCH /users/{id}. Nil fields are left untouched.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	AuthProvider *string `json:"auth_provider"`
}

// CreateMediaItemRequest is the body of POST /media.
type CreateMediaItemRequest struct {
	Title       *string `json:"title" validate:"required"`
	TypeID      *int    `json:"type_id" validate:"required"`
	ReleaseDate *string `json:"release_date"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url"`
}

func (r CreateMediaItemRequest) ToModel(id string) MediaItem {
	return MediaItem{
		MediaID:     id,
		Title:       deref(r.Title),
		TypeID:      deref(r.TypeID),
		ReleaseDate: r.ReleaseDate,
		Description: r.Description,
		CoverURL:    r.CoverURL,
	}
}

// CreateRatingRequest is the body of POST /users/{id}/ratings.
type CreateRatingRequest struct {
	MediaID *string  `json:"media_id" validate:"required"`
	Score   *float64 `json:"score" validate:"required"`
}

// CreateUserActivityRequest is the body of POST /users/{id}/activities.
type CreateUserActivityRequest struct {
	MediaID        *string  `json:"media_id" validate:"required"`
	StatusID       *int     `json:"status_id" validate:"required"`
	Rating         *float64 `json:"rating"`
	Review         *string  `json:"review"`
	StartedAt      *string  `json:"started_at"`
	FinishedAt     *string  `json:"finished_at"`
	SourcePlatform *string  `json:"source_platform"`
}

func (r CreateUserActivityRequest) ToModel(id, userID string) UserActivity {
	return UserActivity{
		ActivityID:     id,
		UserID:         userID,
		MediaID:        deref(r.MediaID),
		StatusID:       deref(r.StatusID),
		Rating:         r.Rating,
		Review:         r.Review,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		SourcePlatform: r.SourcePlatform,
	}
}

// UpdateUserActivityRequest is the body of PATCH /activities/{id}. Nil fields are left untouched.
type UpdateUserActivityRequest struct {
	StatusID   *int     `json:"status_id" validate:"omitempty,gt=0"`
	Rating     *float64 `json:"rating"`
	Review     *string  `json:"review"`
	FinishedAt *string  `json:"finished_at"`
}

// CreateRecommendationRequest is the body of POST /users/{id}/recommendations.
type CreateRecommendationRequest struct {
	MediaID       *string  `json:"media_id" validate:"required"`
	RecommenderID *string  `json:"recommender_id"`
	Source        *string  `json:"source"`
	Score         *float64 `json:"score"`
}

func (r CreateRecommendationRequest) ToModel(id, userID string) Recommendation {
	return Recommendation{
		RecommendationID: id,
		UserID:           userID,
		MediaID:          deref(r.MediaID),
		RecommenderID:    r.RecommenderID,
		Source:           r.Source,
		Score:            r.Score,
	}
}

// deref returns the value p points to, or the zero value when p is nil.
func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
