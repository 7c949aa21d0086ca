package config

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGoogleOAuthConfig_Defaults(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_REDIRECT_URI", "")

	cfg := NewGoogleOAuthConfig()
	assert.False(t, cfg.Enabled())
	assert.Equal(t, DefaultGoogleRedirectURI, cfg.RedirectURI)
}

func TestGoogleOAuthConfig_AuthCodeURL(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-123")
	t.Setenv("GOOGLE_CLIENT_SECRET", "shh")
	t.Setenv("GOOGLE_REDIRECT_URI", "https://app.example.com/cb")

	cfg := NewGoogleOAuthConfig()
	require.True(t, cfg.Enabled())

	raw := cfg.OAuth2().AuthCodeURL("state-xyz")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/cb", q.Get("redirect_uri"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "state-xyz", q.Get("state"))
}
