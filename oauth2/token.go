package oauth2

import (
	"strings"
	"time"

	xoauth2 "golang.org/x/oauth2"
)

// Token is the credential returned by the provider token endpoint and persisted
// by the dashboard. Field names follow the provider's JSON response.
type Token struct {
	// AccessToken is sent on every GraphQL call as "<token_type> <access_token>".
	AccessToken string `json:"access_token"`

	// RefreshToken is exchanged through the proxy once the access token expires.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is usually "bearer".
	TokenType string `json:"token_type,omitempty"`

	// Scope is the comma or space separated list of granted scopes.
	Scope string `json:"scope,omitempty"`

	// ExpiresIn is the access token lifetime in seconds. Zero means no expiry.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	RefreshTokenExpiresIn int64 `json:"refresh_token_expires_in,omitempty"`

	// ExpiresAt is derived on receipt: issued time (epoch ms) + ExpiresIn*1000.
	ExpiresAt int64 `json:"expires_at,omitempty"`

	// Error is set by the provider instead of a token when the exchange failed.
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Stamp derives ExpiresAt from the issue time.
func (t *Token) Stamp(issued time.Time) {
	if t.ExpiresIn <= 0 {
		t.ExpiresAt = 0
		return
	}
	t.ExpiresAt = issued.UnixMilli() + t.ExpiresIn*1000
}

// Expired reports whether now is past ExpiresAt. Tokens without an expiry never expire.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt != 0 && now.UnixMilli() > t.ExpiresAt
}

// Usable reports whether the provider returned an access token and no error.
func (t *Token) Usable() bool {
	return t != nil && t.Error == "" && t.AccessToken != ""
}

// ErrorMessage describes a provider error for display.
func (t *Token) ErrorMessage() string {
	if t.ErrorDescription == "" {
		return t.Error
	}
	return t.Error + " - " + t.ErrorDescription
}

// Expiry converts ExpiresAt to a time. The zero time means no expiry.
func (t *Token) Expiry() time.Time {
	if t.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(t.ExpiresAt)
}

// OAuth2 converts the token for use with golang.org/x/oauth2 transports.
func (t *Token) OAuth2() *xoauth2.Token {
	return &xoauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry(),
	}
}

// HasScope reports whether scope was granted.
func (t *Token) HasScope(scope string) bool {
	for _, s := range strings.FieldsFunc(t.Scope, func(r rune) bool { return r == ',' || r == ' ' }) {
		if s == scope {
			return true
		}
	}
	return false
}
