// package models defines the records exchanged between the storage layer and the HTTP surface
package models

// User is a person tracking media. Email is unique across users.
type User struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	AuthProvider *string `json:"auth_provider"`
}

// MediaType is a reference row such as "Movie" or "Book".
type MediaType struct {
	TypeID   int    `json:"type_id"`
	TypeName string `json:"type_name"`
}

// MediaItem is a catalog entry.
type MediaItem struct {
	MediaID     string  `json:"media_id"`
	Title       string  `json:"title"`
	TypeID      int     `json:"type_id"`
	ReleaseDate *string `json:"release_date"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url"`
}

// CreatorRole is a reference row such as "Director" or "Author".
type CreatorRole struct {
	RoleID   int    `json:"role_id"`
	RoleName string `json:"role_name"`
}

// Creator is a person or entity credited on media items.
type Creator struct {
	CreatorID string `json:"creator_id"`
	Name      string `json:"name"`
	RoleID    int    `json:"role_id"`
}

// Platform is an external service media is consumed on.
type Platform struct {
	PlatformID string  `json:"platform_id"`
	Name       string  `json:"name"`
	BaseURL    *string `json:"base_url"`
}

// ActivityStatus is a reference row such as "Completed".
type ActivityStatus struct {
	StatusID int    `json:"status_id"`
	Name     string `json:"name"`
}

// UserActivity is one engagement record for a (user, media) pair.
// A pair may have any number of activities.
type UserActivity struct {
	ActivityID     string   `json:"activity_id"`
	UserID         string   `json:"user_id"`
	MediaID        string   `json:"media_id"`
	StatusID       int      `json:"status_id"`
	Rating         *float64 `json:"rating"`
	Review         *string  `json:"review"`
	StartedAt      *string  `json:"started_at"`
	FinishedAt     *string  `json:"finished_at"`
	SourcePlatform *string  `json:"source_platform"`
}

// Recommendation suggests a media item to a user, optionally on behalf of another user.
type Recommendation struct {
	RecommendationID string   `json:"recommendation_id"`
	UserID           string   `json:"user_id"`
	MediaID          string   `json:"media_id"`
	RecommenderID    *string  `json:"recommender_id"`
	Source           *string  `json:"source"`
	Score            *float64 `json:"score"`
}

// Tag is a free-form label attached to media items.
type Tag struct {
	TagID   string `json:"tag_id"`
	Name    string `json:"name"`
	TagType string `json:"tag_type"`
}

// Rating is the single score a user gives a media item.
type Rating struct {
	UserID  string  `json:"user_id"`
	MediaID string  `json:"media_id"`
	Score   float64 `json:"score"`
	RatedAt string  `json:"rated_at"`
}

// Favorite marks a media item as a user's favorite.
type Favorite struct {
	UserID  string `json:"user_id"`
	MediaID string `json:"media_id"`
	AddedAt string `json:"added_at"`
}

// RatingSummary aggregates the ratings of one media item. Average is nil when Count is zero.
type RatingSummary struct {
	MediaID string   `json:"media_id"`
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

// ActivityEntry is a [UserActivity] joined with the names it references.
type ActivityEntry struct {
	UserActivity
	MediaTitle string `json:"media_title"`
	StatusName string `json:"status_name"`
}

// ActivityHistory is everything recorded for one user, as used by exports and the terminal browser.
type ActivityHistory struct {
	User       User            `json:"user"`
	Activities []ActivityEntry `json:"activities"`
	Ratings    []Rating        `json:"ratings"`
}
