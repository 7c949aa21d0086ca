// Package middleware provides HTTP middleware for bearer token authentication.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// emailKey is the context key for the authenticated user's email.
const emailKey ContextKey = "email"

const credentialsDetail = "Could not validate credentials"

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (EmailGetter, error)
}

// EmailGetter extracts the account email from token claims.
type EmailGetter interface {
	GetEmail() string
}

// AccountChecker reports whether an account still exists.
type AccountChecker interface {
	AccountExists(ctx context.Context, email string) (bool, error)
}

// AuthMiddleware validates the bearer token and stores the caller's email in
// the request context. When accounts is non-nil the account must also exist.
func AuthMiddleware(tokens TokenValidator, accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				log.Printf("[auth] rejected token from %s: %v", r.RemoteAddr, err)
				unauthorized(w)
				return
			}

			email := claims.GetEmail()
			if email == "" {
				unauthorized(w)
				return
			}

			if accounts != nil {
				exists, err := accounts.AccountExists(r.Context(), email)
				if err != nil {
					log.Printf("[auth] account lookup failed for %s: %v", email, err)
				}
				if err != nil || !exists {
					unauthorized(w)
					return
				}
			}

			ctx := context.WithValue(r.Context(), emailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken parses "Bearer <token>", case-insensitive on the scheme.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": credentialsDetail})
}

// GetEmail extracts the authenticated email from the request context.
func GetEmail(r *http.Request) (string, error) {
	email, ok := r.Context().Value(emailKey).(string)
	if !ok || email == "" {
		return "", fmt.Errorf("email not found in request context")
	}
	return email, nil
}

// WithEmail returns a context carrying email, for tests and internal callers.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}
