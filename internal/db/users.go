package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrEmailTaken is returned by CreateUser when the email already exists
var ErrEmailTaken = errors.New("email already registered")

const userColumns = `id, email, full_name, password_hash, is_google_user, google_id, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.IsGoogleUser, &u.GoogleID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a password account and returns its ID
func (db *DB) CreateUser(ctx context.Context, email, fullName, passwordHash string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO users (id, email, full_name, password_hash)
		 VALUES ($1, $2, $3, $4)`,
		id, email, fullName, passwordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, ErrEmailTaken
		}
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// GetUserByEmail returns the user with email, or nil if none exists
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if email == "" {
		return nil, nil
	}
	u, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// CheckEmailExists reports whether an account uses email
func (db *DB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UpsertGoogleUser returns the account for a Google identity, creating it on
// first sign-in. An existing password account with the same email is linked.
func (db *DB) UpsertGoogleUser(ctx context.Context, profile GoogleProfile) (*User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, full_name, is_google_user, google_id)
		 VALUES ($1, $2, $3, TRUE, $4)
		 ON CONFLICT (email) DO UPDATE
		   SET is_google_user = TRUE,
		       google_id = COALESCE(users.google_id, EXCLUDED.google_id),
		       full_name = CASE WHEN users.full_name = '' THEN EXCLUDED.full_name ELSE users.full_name END,
		       updated_at = NOW()
		 RETURNING `+userColumns,
		uuid.New(), profile.Email, profile.FullName, profile.Subject,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert google user: %w", err)
	}
	return u, nil
}

// DeleteUser removes a user by ID
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
