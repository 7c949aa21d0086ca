package config

import (
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultGoogleRedirectURI is where Google sends the user back to the web client.
const DefaultGoogleRedirectURI = "http://localhost:5173/auth/google/callback"

// GoogleOAuthConfig holds the Google sign-in client credentials.
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// NewGoogleOAuthConfig reads GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and
// GOOGLE_REDIRECT_URI. Missing credentials leave Google sign-in disabled.
func NewGoogleOAuthConfig() *GoogleOAuthConfig {
	return &GoogleOAuthConfig{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURI:  envString("GOOGLE_REDIRECT_URI", DefaultGoogleRedirectURI),
	}
}

// Enabled reports whether both client credentials are set.
func (c *GoogleOAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// OAuth2 returns the code-exchange configuration for Google's endpoints.
func (c *GoogleOAuthConfig) OAuth2() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}
