package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/shared"
)

var (
	SeedMediaTypes   = []string{"Movie", "TV Show", "Book", "Game", "Music"}
	SeedCreatorRoles = []string{"Director", "Actor", "Author", "Developer", "Artist"}
	SeedStatuses     = []string{
		"Want to Watch/Read/Play",
		"Currently Watching/Reading/Playing",
		"Completed",
		"Dropped",
		"On Hold",
	}
	SeedPlatforms = []models.Platform{
		{Name: "Netflix", BaseURL: ptr("https://netflix.com")},
		{Name: "Amazon Prime", BaseURL: ptr("https://amazon.com/prime")},
		{Name: "Steam", BaseURL: ptr("https://steam.com")},
	}
	SeedUsers = []models.CreateUserRequest{
		{Name: ptr("John Doe"), Email: ptr("john.doe@example.com")},
		{Name: ptr("Jane Smith"), Email: ptr("jane.smith@example.com")},
		{Name: ptr("Bob Johnson"), Email: ptr("bob.johnson@example.com")},
	}
)

// SeedResult reports what a seeding pass inserted.
type SeedResult struct {
	Skipped bool // users already existed, nothing was written
	Users   int  // sample users inserted
}

// Seed inserts the reference fixtures and sample users on first boot, detected by an empty users table.
// Every later call is a no-op. All inserts share one transaction.
func (s *Store) Seed(ctx context.Context) (*SeedResult, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return &SeedResult{Skipped: true}, nil
	}
	return s.seed(ctx)
}

// ForceSeed inserts any missing reference fixtures and the sample users whose emails are not yet taken,
// regardless of whether other users exist.
func (s *Store) ForceSeed(ctx context.Context) (*SeedResult, error) {
	return s.seed(ctx)
}

func (s *Store) seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := seedReference(ctx, tx); err != nil {
			return err
		}

		for _, req := range SeedUsers {
			user := req.ToModel(shared.GenerateID())
			res, err := tx.ExecContext(ctx, `
				INSERT INTO users (user_id, name, email, auth_provider) VALUES (?, ?, ?, ?)
				ON CONFLICT (email) DO NOTHING
			`, user.UserID, user.Name, user.Email, user.AuthProvider)
			if err != nil {
				return fmt.Errorf("failed to seed user %s: %w", user.Email, err)
			}

			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to seed user %s: %w", user.Email, err)
			}
			result.Users += int(n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func seedReference(ctx context.Context, tx *sql.Tx) error {
	for _, name := range SeedMediaTypes {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO media_types (type_name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("failed to seed media type %s: %w", name, err)
		}
	}

	for _, name := range SeedCreatorRoles {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO creator_roles (role_name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("failed to seed creator role %s: %w", name, err)
		}
	}

	for _, name := range SeedStatuses {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO activity_statuses (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("failed to seed activity status %s: %w", name, err)
		}
	}

	for _, p := range SeedPlatforms {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO platforms (platform_id, name, base_url) VALUES (?, ?, ?)`,
			shared.GenerateID(), p.Name, p.BaseURL,
		)
		if err != nil {
			return fmt.Errorf("failed to seed platform %s: %w", p.Name, err)
		}
	}

	return nil
}

func ptr[T any](v T) *T { return &v }
