package server

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/job-assistant/internal/apperrors"
	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() (*UserService, *mockDB) {
	store := newMockDB()
	return NewUserService(store, &config.PasswordConfig{BcryptCost: config.MinBcryptCost}), store
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc, store := newTestUserService()
	ctx := context.Background()

	err := svc.Register(ctx, &types.RegisterRequest{Email: "ada@example.com", Password: "password123", FullName: "Ada"})
	require.NoError(t, err)
	require.Contains(t, store.users, "ada@example.com")

	user, err := svc.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.FullName)

	_, err = svc.Login(ctx, "ada@example.com", "nope")
	var authErr *apperrors.ErrAuthFailure
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Incorrect email or password", authErr.Error())
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()
	req := &types.RegisterRequest{Email: "ada@example.com", Password: "password123", FullName: "Ada"}

	require.NoError(t, svc.Register(ctx, req))

	var taken *apperrors.ErrEmailAlreadyRegistered
	assert.ErrorAs(t, svc.Register(ctx, req), &taken)
}

// racyDB reports the email as free, then loses the insert to a concurrent writer.
type racyDB struct{ *mockDB }

func (racyDB) CheckEmailExists(context.Context, string) (bool, error) { return false, nil }

func (racyDB) CreateUser(context.Context, string, string, string) (uuid.UUID, error) {
	return uuid.Nil, db.ErrEmailTaken
}

func TestUserService_RegisterRaceMapsToDuplicate(t *testing.T) {
	svc := NewUserService(racyDB{newMockDB()}, &config.PasswordConfig{BcryptCost: config.MinBcryptCost})

	err := svc.Register(context.Background(), &types.RegisterRequest{Email: "a@b.com", Password: "password123", FullName: "A"})
	var taken *apperrors.ErrEmailAlreadyRegistered
	assert.ErrorAs(t, err, &taken)
}

func TestUserService_StoreFailure(t *testing.T) {
	svc, store := newTestUserService()
	store.err = errors.New("connection refused")

	_, err := svc.Login(context.Background(), "a@b.com", "x")
	require.Error(t, err)
	assert.Equal(t, 500, HTTPStatus(err))
}

func TestUserService_GoogleAccountCannotPasswordLogin(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.GoogleSignIn(ctx, db.GoogleProfile{Subject: "sub", Email: "g@example.com", FullName: "Grace"})
	require.NoError(t, err)
	assert.True(t, user.IsGoogleUser)

	_, err = svc.Login(ctx, "g@example.com", "")
	var authErr *apperrors.ErrAuthFailure
	assert.ErrorAs(t, err, &authErr)
}

func TestUserService_GoogleSignInLinksExistingAccount(t *testing.T) {
	svc, store := newTestUserService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, &types.RegisterRequest{Email: "ada@example.com", Password: "password123", FullName: "Ada"}))
	_, err := svc.GoogleSignIn(ctx, db.GoogleProfile{Subject: "sub", Email: "ada@example.com", FullName: "Ada L"})
	require.NoError(t, err)

	assert.Len(t, store.users, 1)
	_, err = svc.Login(ctx, "ada@example.com", "password123")
	assert.NoError(t, err, "linked accounts keep their password")
}

func TestUserService_GetByEmailAndAccountExists(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, err := svc.GetByEmail(ctx, "missing@example.com")
	var authErr *apperrors.ErrAuthFailure
	assert.ErrorAs(t, err, &authErr)

	exists, err := svc.AccountExists(ctx, "missing@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
