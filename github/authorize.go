package github

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	xoauth2 "golang.org/x/oauth2"
	xgithub "golang.org/x/oauth2/github"
)

const stateBytes = 16

// NewState returns a fresh CSRF nonce: 16 random bytes, hex encoded.
func NewState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("[GitHub NewState]: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Authorize builds the GitHub authorize URL with a new state nonce. The nonce
// is returned but not kept; callers persist it to verify the callback.
func Authorize(clientID, redirectURI string) (authURL, state string, err error) {
	return AuthorizeWithEndpoint(xgithub.Endpoint.AuthURL, clientID, redirectURI)
}

// AuthorizeWithEndpoint is Authorize against a custom authorize endpoint.
// An empty endpoint means GitHub's.
func AuthorizeWithEndpoint(endpoint, clientID, redirectURI string) (authURL, state string, err error) {
	if endpoint == "" {
		endpoint = xgithub.Endpoint.AuthURL
	}
	state, err = NewState()
	if err != nil {
		return "", "", err
	}
	cfg := xoauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Endpoint:    xoauth2.Endpoint{AuthURL: endpoint},
	}
	return cfg.AuthCodeURL(state), state, nil
}
