package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/job-assistant/internal/apperrors"
	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/types"
)

// DBClient is the slice of the user store the service needs
type DBClient interface {
	CreateUser(ctx context.Context, email, fullName, passwordHash string) (uuid.UUID, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpsertGoogleUser(ctx context.Context, profile db.GoogleProfile) (*db.User, error)
}

// UserService provides business logic for user authentication operations
type UserService struct {
	db             DBClient
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db DBClient, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// convertDBUserToTypesUser converts db.User to types.User, excluding password hash
func convertDBUserToTypesUser(dbUser *db.User) *types.User {
	if dbUser == nil {
		return nil
	}
	return &types.User{
		ID:           dbUser.ID,
		Email:        dbUser.Email,
		FullName:     dbUser.FullName,
		IsGoogleUser: dbUser.IsGoogleUser,
		CreatedAt:    dbUser.CreatedAt,
	}
}

// Register creates a new account with password authentication
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) error {
	exists, err := s.db.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return &apperrors.ErrEmailAlreadyRegistered{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return err
	}

	if _, err := s.db.CreateUser(ctx, req.Email, req.FullName, passwordHash); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, db.ErrEmailTaken) {
			return &apperrors.ErrEmailAlreadyRegistered{Email: req.Email}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Login authenticates an email and password
func (s *UserService) Login(ctx context.Context, email, password string) (*types.User, error) {
	dbUser, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Same error for unknown email and wrong password.
	if dbUser == nil || !s.passwordConfig.VerifyPassword(password, dbUser.PasswordHash) {
		return nil, &apperrors.ErrAuthFailure{Message: "Incorrect email or password"}
	}
	return convertDBUserToTypesUser(dbUser), nil
}

// GetByEmail returns the account for email, or an auth failure if none exists
func (s *UserService) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	dbUser, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if dbUser == nil {
		return nil, &apperrors.ErrAuthFailure{}
	}
	return convertDBUserToTypesUser(dbUser), nil
}

// AccountExists implements middleware.AccountChecker
func (s *UserService) AccountExists(ctx context.Context, email string) (bool, error) {
	return s.db.CheckEmailExists(ctx, email)
}

// GoogleSignIn returns the account for a verified Google identity, creating
// it on first sign-in
func (s *UserService) GoogleSignIn(ctx context.Context, profile db.GoogleProfile) (*types.User, error) {
	dbUser, err := s.db.UpsertGoogleUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	return convertDBUserToTypesUser(dbUser), nil
}
