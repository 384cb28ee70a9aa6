package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/repositories"
	"github.com/desertthunder/mediatrack/internal/shared"
	tu "github.com/desertthunder/mediatrack/internal/testing"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() shared.ServerConfig {
	return shared.ServerConfig{CORSOrigins: []string{"*"}}
}

// setupServer returns a server over a freshly seeded database.
func setupServer(t *testing.T, cfg shared.ServerConfig) (*Server, *repositories.Store) {
	t.Helper()

	store := repositories.NewStore(tu.NewTestDB(t))
	if _, err := store.Seed(context.Background()); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	return New(store, shared.NewLogger(io.Discard), cfg), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func createUser(t *testing.T, h http.Handler, name, email string) models.User {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/users", `{"name":"`+name+`","email":"`+email+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[models.User](t, rec)
}

func createMedia(t *testing.T, h http.Handler, title string) models.MediaItem {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/media", `{"title":"`+title+`","type_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[models.MediaItem](t, rec)
}

func TestHealth(t *testing.T) {
	s, _ := setupServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy","service":"Cross-Media Tracking Platform API","database":"SQLite"}`, rec.Body.String())
}

func TestUserEndpoints(t *testing.T) {
	t.Run("create returns 201 with a fresh id", func(t *testing.T) {
		s, _ := setupServer(t, testConfig())

		a := createUser(t, s, "A", "a@x.com")
		b := createUser(t, s, "B", "b@x.com")

		assert.NotEmpty(t, a.UserID)
		assert.NotEqual(t, a.UserID, b.UserID)
		assert.Nil(t, a.AuthProvider)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		s, _ := setupServer(t, testConfig())
		createUser(t, s, "A", "a@x.com")

		rec := do(t, s, http.MethodPost, "/users", `{"name":"B","email":"a@x.com"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"User with this email already exists"}`, rec.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		s, _ := setupServer(t, testConfig())

		rec := do(t, s, http.MethodPost, "/users", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody[map[string]string](t, rec)
		assert.True(t, strings.HasPrefix(body["error"], "Invalid request body: "), body["error"])
	})

	t.Run("missing required field", func(t *testing.T) {
		s, _ := setupServer(t, testConfig())

		rec := do(t, s, http.MethodPost, "/users", `{"name":"A"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "email is required")
	})

	t.Run("empty strings are accepted", func(t *testing.T) {
		s, _ := setupServer(t, testConfig())

		rec := do(t, s, http.MethodPost, "/users", `{"name":"","email":"e@x.com"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Empty(t, decodeBody[models.User](t, rec).Name)

		rec = do(t, s, http.MethodPost, "/users", `{"name":"E","email":""}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Empty(t, decodeBody[models.User](t, rec).Email)
	})

	t.Run("null counts as missing", func(t *testing.T) {
		s, _ := setupServer(t, testConfig())

		rec := do(t, s, http.MethodPost, "/users", `{"name":null,"email":"n@x.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "name is required")
	})

	t.Run("get", func(t *testing.T) {
		s, _ := setupServer(t, testConfig())
		created := createUser(t, s, "A", "a@x.com")

		rec := do(t, s, http.MethodGet, "/users/"+created.UserID, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created, decodeBody[models.User](t, rec))

		rec = do(t, s, http.MethodGet, "/users/missing", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())
	})

	t.Run("list is ordered by name", func(t *testing.T) {
		s, _ := setupServer(t, testConfig())
		createUser(t, s, "Aaron", "aaron@x.com")

		rec := do(t, s, http.MethodGet, "/users", "")
		require.Equal(t, http.StatusOK, rec.Code)

		users := decodeBody[[]models.User](t, rec)
		require.Len(t, users, 4)
		assert.Equal(t, "Aaron", users[0].Name)
		assert.Equal(t, "Bob Johnson", users[1].Name)
	})

	t.Run("partial update", func(t *testing.T) {
		s, _ := setupServer(t, testConfig())
		created := createUser(t, s, "A", "a@x.com")

		rec := do(t, s, http.MethodPatch, "/users/"+created.UserID, `{"auth_provider":"github"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		updated := decodeBody[models.User](t, rec)
		assert.Equal(t, "A", updated.Name)
		assert.Equal(t, "a@x.com", updated.Email)
		require.NotNil(t, updated.AuthProvider)
		assert.Equal(t, "github", *updated.AuthProvider)
	})

	t.Run("update errors", func(t *testing.T) {
		s, _ := setupServer(t, testConfig())
		createUser(t, s, "A", "a@x.com")
		b := createUser(t, s, "B", "b@x.com")

		rec := do(t, s, http.MethodPatch, "/users/missing", `{"name":"X"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())

		rec = do(t, s, http.MethodPatch, "/users/"+b.UserID, `{"email":"a@x.com"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"User with this email already exists"}`, rec.Body.String())
	})

	t.Run("delete", func(t *testing.T) {
		s, _ := setupServer(t, testConfig())
		created := createUser(t, s, "A", "a@x.com")

		rec := do(t, s, http.MethodDelete, "/users/"+created.UserID, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())

		rec = do(t, s, http.MethodDelete, "/users/"+created.UserID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())

		rec = do(t, s, http.MethodGet, "/users/"+created.UserID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		users := decodeBody[[]models.User](t, do(t, s, http.MethodGet, "/users", ""))
		for _, u := range users {
			assert.NotEqual(t, created.UserID, u.UserID)
		}
	})
}

func TestMediaEndpoints(t *testing.T) {
	s, _ := setupServer(t, testConfig())

	dune := createMedia(t, s, "Dune")
	createMedia(t, s, "Alien")

	rec := do(t, s, http.MethodGet, "/media/"+dune.MediaID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dune, decodeBody[models.MediaItem](t, rec))

	rec = do(t, s, http.MethodGet, "/media/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Media item not found"}`, rec.Body.String())

	items := decodeBody[[]models.MediaItem](t, do(t, s, http.MethodGet, "/media", ""))
	require.Len(t, items, 2)
	assert.Equal(t, "Alien", items[0].Title)

	rec = do(t, s, http.MethodPost, "/media", `{"title":"X","type_id":999}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to create media item"}`, rec.Body.String())

	t.Run("empty title is accepted", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/media", `{"title":"","type_id":1}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Empty(t, decodeBody[models.MediaItem](t, rec).Title)
	})

	t.Run("zero type id reaches the foreign key", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/media", `{"title":"Zero","type_id":0}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to create media item"}`, rec.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/media", `{"type_id":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "title is required")

		rec = do(t, s, http.MethodPost, "/media", `{"title":"Dune"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "type_id is required")
	})
}

func TestRatingEndpoints(t *testing.T) {
	s, _ := setupServer(t, testConfig())
	user := createUser(t, s, "A", "a@x.com")
	other := createUser(t, s, "B", "b@x.com")
	media := createMedia(t, s, "Dune")

	t.Run("empty lists encode as arrays", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/users/"+user.UserID+"/ratings", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("second rating replaces the first", func(t *testing.T) {
		path := "/users/" + user.UserID + "/ratings"

		rec := do(t, s, http.MethodPost, path, `{"media_id":"`+media.MediaID+`","score":3}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = do(t, s, http.MethodPost, path, `{"media_id":"`+media.MediaID+`","score":5}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		ratings := decodeBody[[]models.Rating](t, do(t, s, http.MethodGet, path, ""))
		require.Len(t, ratings, 1)
		assert.Equal(t, 5.0, ratings[0].Score)
	})

	t.Run("zero score is accepted", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/users/"+other.UserID+"/ratings", `{"media_id":"`+media.MediaID+`","score":0}`)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("missing media id", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/users/"+user.UserID+"/ratings", `{"score":3}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "media_id is required")
	})

	t.Run("empty media id reaches the foreign key", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/users/"+user.UserID+"/ratings", `{"media_id":"","score":3}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to create rating"}`, rec.Body.String())
	})

	t.Run("missing score", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/users/"+user.UserID+"/ratings", `{"media_id":"`+media.MediaID+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("media ratings and average", func(t *testing.T) {
		ratings := decodeBody[[]models.Rating](t, do(t, s, http.MethodGet, "/media/"+media.MediaID+"/ratings", ""))
		assert.Len(t, ratings, 2)

		summary := decodeBody[models.RatingSummary](t, do(t, s, http.MethodGet, "/media/"+media.MediaID+"/ratings/average", ""))
		assert.Equal(t, 2, summary.Count)
		require.NotNil(t, summary.Average)
		assert.InDelta(t, 2.5, *summary.Average, 1e-9)
	})

	t.Run("get and delete", func(t *testing.T) {
		path := "/users/" + user.UserID + "/ratings/" + media.MediaID

		rec := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, s, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Rating not found"}`, rec.Body.String())
	})

	t.Run("rating unknown media fails", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/users/"+user.UserID+"/ratings", `{"media_id":"missing","score":1}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to create rating"}`, rec.Body.String())
	})
}

func TestActivityEndpoints(t *testing.T) {
	s, _ := setupServer(t, testConfig())
	user := createUser(t, s, "A", "a@x.com")
	media := createMedia(t, s, "Dune")
	path := "/users/" + user.UserID + "/activities"

	body := `{"media_id":"` + media.MediaID + `","status_id":2,"started_at":"2024-01-01"}`
	rec := do(t, s, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeBody[models.UserActivity](t, rec)

	rec = do(t, s, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("activities append", func(t *testing.T) {
		activities := decodeBody[[]models.UserActivity](t, do(t, s, http.MethodGet, path, ""))
		assert.Len(t, activities, 2)

		byMedia := decodeBody[[]models.UserActivity](t, do(t, s, http.MethodGet, "/media/"+media.MediaID+"/activities", ""))
		assert.Len(t, byMedia, 2)
	})

	t.Run("missing status", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, path, `{"media_id":"`+media.MediaID+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "status_id is required")
	})

	t.Run("zero status reaches the foreign key", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, path, `{"media_id":"`+media.MediaID+`","status_id":0}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		rec := do(t, s, http.MethodPatch, "/activities/"+first.ActivityID, `{"status_id":3,"review":"loved it"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		updated := decodeBody[models.UserActivity](t, rec)
		assert.Equal(t, 3, updated.StatusID)
		assert.Equal(t, "loved it", *updated.Review)
		assert.Equal(t, "2024-01-01", *updated.StartedAt)

		rec = do(t, s, http.MethodPatch, "/activities/missing", `{"review":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Activity not found"}`, rec.Body.String())
	})

	t.Run("get and delete", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/activities/"+first.ActivityID, "")
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, s, http.MethodDelete, "/activities/"+first.ActivityID, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = do(t, s, http.MethodDelete, "/activities/"+first.ActivityID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRecommendationEndpoints(t *testing.T) {
	s, _ := setupServer(t, testConfig())
	user := createUser(t, s, "A", "a@x.com")
	media := createMedia(t, s, "Dune")

	rec := do(t, s, http.MethodPost, "/users/"+user.UserID+"/recommendations", `{"media_id":"`+media.MediaID+`","source":"similar","score":0.8}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[models.Recommendation](t, rec)

	recs := decodeBody[[]models.Recommendation](t, do(t, s, http.MethodGet, "/users/"+user.UserID+"/recommendations", ""))
	require.Len(t, recs, 1)
	assert.Equal(t, created, recs[0])

	rec = do(t, s, http.MethodGet, "/recommendations/"+created.RecommendationID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodDelete, "/recommendations/"+created.RecommendationID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/recommendations/"+created.RecommendationID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Recommendation not found"}`, rec.Body.String())
}

func TestFavoriteEndpoints(t *testing.T) {
	s, _ := setupServer(t, testConfig())
	user := createUser(t, s, "A", "a@x.com")
	media := createMedia(t, s, "Dune")
	path := "/users/" + user.UserID + "/favorites/" + media.MediaID

	rec := do(t, s, http.MethodPut, path, "")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, s, http.MethodPut, path, "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	favs := decodeBody[[]models.Favorite](t, do(t, s, http.MethodGet, "/users/"+user.UserID+"/favorites", ""))
	assert.Len(t, favs, 1)

	rec = do(t, s, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReferenceEndpoints(t *testing.T) {
	s, _ := setupServer(t, testConfig())

	tests := []struct {
		path  string
		count int
	}{
		{"/media-types", len(repositories.SeedMediaTypes)},
		{"/creator-roles", len(repositories.SeedCreatorRoles)},
		{"/activity-statuses", len(repositories.SeedStatuses)},
		{"/platforms", len(repositories.SeedPlatforms)},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, rec.Code)

			rows := decodeBody[[]map[string]any](t, rec)
			assert.Len(t, rows, tt.count)
		})
	}

	rec := do(t, s, http.MethodPost, "/media-types", `{"type_name":"Podcast"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
