// Package types provides type definitions for structured data used throughout the job assistant.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RegisterRequest represents the request to create a new user with password authentication.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=1"`
}

// LoginRequest represents the password login form (OAuth2 password grant field names).
type LoginRequest struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User represents a user profile for API responses (avoids import cycle with db package).
type User struct {
	ID           uuid.UUID `json:"-"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	IsGoogleUser bool      `json:"is_google_user,omitempty"`
	CreatedAt    time.Time `json:"-"`
}

// TokenResponse is returned by password and Google login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

// CheckAuthResponse reports the caller behind a valid bearer token.
type CheckAuthResponse struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user"`
}

// GoogleAuthURLResponse carries the consent screen URL for the web client.
type GoogleAuthURLResponse struct {
	URL string `json:"url"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// Validate validates the RegisterRequest using the validator.
func (r *RegisterRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
