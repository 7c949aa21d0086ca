package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/types"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// CodeExchanger is the part of *oauth2.Config the Google handler uses.
type CodeExchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// IDTokenValidator verifies a Google ID token for audience.
type IDTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleAuthHandler implements the Google sign-in redirect and callback.
type GoogleAuthHandler struct {
	oauth       CodeExchanger
	clientID    string
	validate    IDTokenValidator
	userService *UserService
	auth        *AuthHandler
}

// NewGoogleAuthHandler creates a handler. A nil validate uses idtoken.Validate.
func NewGoogleAuthHandler(oauth CodeExchanger, clientID string, validate IDTokenValidator, userService *UserService, auth *AuthHandler) *GoogleAuthHandler {
	if validate == nil {
		validate = idtoken.Validate
	}
	return &GoogleAuthHandler{
		oauth:       oauth,
		clientID:    clientID,
		validate:    validate,
		userService: userService,
		auth:        auth,
	}
}

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// AuthURL returns the Google consent screen URL and binds its state to the
// browser with a short-lived cookie.
func (h *GoogleAuthHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, types.GoogleAuthURLResponse{URL: h.oauth.AuthCodeURL(state)})
}

// validState compares the callback state with the cookie set by AuthURL.
func validState(r *http.Request) bool {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(state), []byte(cookie.Value)) == 1
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Callback exchanges the authorization code, verifies the ID token and signs
// the user in.
func (h *GoogleAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeDetail(w, http.StatusBadRequest, "Missing authorization code")
		return
	}
	if !validState(r) {
		log.Printf("[auth] google callback with missing or mismatched state")
		writeDetail(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	clearStateCookie(w)

	profile, err := h.verify(r.Context(), code)
	if err != nil {
		log.Printf("[auth] google sign-in failed: %v", err)
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Failed to authenticate with Google: %v", err))
		return
	}

	user, err := h.userService.GoogleSignIn(r.Context(), *profile)
	if err != nil {
		log.Printf("[auth] google account upsert failed for %s: %v", profile.Email, err)
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Failed to authenticate with Google: %v", err))
		return
	}

	log.Printf("[auth] google sign-in for %s", user.Email)
	h.auth.issueToken(w, user)
}

func (h *GoogleAuthHandler) verify(ctx context.Context, code string) (*db.GoogleProfile, error) {
	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("token response has no id_token")
	}

	payload, err := h.validate(ctx, rawIDToken, h.clientID)
	if err != nil {
		return nil, fmt.Errorf("id token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, errors.New("id token has no email")
	}
	name, _ := payload.Claims["name"].(string)

	return &db.GoogleProfile{
		Subject:  payload.Subject,
		Email:    email,
		FullName: name,
	}, nil
}
