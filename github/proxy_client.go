package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/jrsteele09/go-github-dashboard/oauth2"
)

// Paths served by the token exchange proxy.
const (
	AuthenticatePath = "/auth/authenticate"
	RefreshPath      = "/auth/refresh"
)

// AuthenticateRequest is the body of POST /auth/authenticate.
type AuthenticateRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
	State       string `json:"state"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ErrorEnvelope is the proxy's failure body.
type ErrorEnvelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Request struct {
		Body   json.RawMessage `json:"body,omitempty"`
		Method string          `json:"method"`
		URL    string          `json:"url"`
	} `json:"request"`
}

// ProxyClient exchanges codes and refresh tokens through the token exchange proxy.
type ProxyClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewProxyClient(baseURL string, httpClient *http.Client) *ProxyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ProxyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Authenticate exchanges an authorization code. A provider "error" field is
// returned in the token, not as an error.
func (p *ProxyClient) Authenticate(ctx context.Context, code, redirectURI, state string) (*oauth2.Token, error) {
	return p.post(ctx, AuthenticatePath, AuthenticateRequest{Code: code, RedirectURI: redirectURI, State: state})
}

// Refresh exchanges a refresh token.
func (p *ProxyClient) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return p.post(ctx, RefreshPath, RefreshRequest{RefreshToken: refreshToken})
}

func (p *ProxyClient) post(ctx context.Context, path string, payload any) (*oauth2.Token, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("[ProxyClient %s] marshal: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("[ProxyClient %s] build request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[ProxyClient %s]: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("[ProxyClient %s] read response: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope ErrorEnvelope
		if json.Unmarshal(raw, &envelope) == nil && envelope.Message != "" {
			return nil, fmt.Errorf("[ProxyClient %s] status %d: %s: %w", path, resp.StatusCode, envelope.Message, errors.ErrUpstream)
		}
		return nil, fmt.Errorf("[ProxyClient %s] status %d: %s: %w", path, resp.StatusCode, truncate(raw, 200), errors.ErrUpstream)
	}

	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("[ProxyClient %s] decode token: %w", path, err)
	}
	return &token, nil
}
