package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/shared"
)

const selectUser = `SELECT user_id, name, email, auth_provider FROM users`

// UserRepository persists [models.User] records.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with a generated ID.
//
// Returns [shared.ErrConflict] when the email is already taken.
func (r *UserRepository) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	user := req.ToModel(shared.GenerateID())

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, name, email, auth_provider) VALUES (?, ?, ?, ?)`,
		user.UserID, user.Name, user.Email, user.AuthProvider,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email %s", shared.ErrConflict, user.Email)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

// Get retrieves a user by ID, returning [shared.ErrNotFound] when absent.
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return getUser(ctx, r.db, "user_id", id)
}

// GetByEmail retrieves a user by their unique email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return getUser(ctx, r.db, "email", email)
}

// List retrieves all users ordered by name.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+` ORDER BY name, user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

// Update applies the non-nil fields of req to the user and returns the updated record.
//
// The update and the re-read share one transaction; a missing row is detected from the affected row
// count, so a concurrent delete yields [shared.ErrNotFound] instead of a silent no-op.
func (r *UserRepository) Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	var user *models.User

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET name = COALESCE(?, name),
				email = COALESCE(?, email),
				auth_provider = COALESCE(?, auth_provider)
			WHERE user_id = ?
		`, req.Name, req.Email, req.AuthProvider, id)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: email already in use", shared.ErrConflict)
			}
			return fmt.Errorf("failed to update user: %w", err)
		}

		ok, err := affected(result)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
		}

		user, err = getUser(ctx, tx, "user_id", id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user and, by cascade, everything that references them.
//
// Reports false when no user had the given ID.
func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return affected(result)
}

func getUser(ctx context.Context, q querier, column, value string) (*models.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx, selectUser+` WHERE `+column+` = ?`, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func scanUser(row scanner) (*models.User, error) {
	var (
		user     models.User
		provider sql.NullString
	)
	if err := row.Scan(&user.UserID, &user.Name, &user.Email, &provider); err != nil {
		return nil, err
	}
	user.AuthProvider = stringPtr(provider)
	return &user, nil
}
