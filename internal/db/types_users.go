package db

import (
	"time"

	"github.com/google/uuid"
)

// User is a row of the users table
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	IsGoogleUser bool      `json:"is_google_user"`
	GoogleID     *string   `json:"google_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GoogleProfile is the identity asserted by a verified Google ID token
type GoogleProfile struct {
	Subject  string
	Email    string
	FullName string
}
