// Package proxy exchanges OAuth codes and refresh tokens with the provider's
// token endpoint on behalf of clients that must not hold the client secret.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-github-dashboard/internal/config"
	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const maxUpstreamBody = 1 << 20

// AuthenticateRequest carries the callback parameters to exchange.
type AuthenticateRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
	State       string `json:"state"`
}

// Settings configures an Exchanger.
type Settings struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
	Timeout      time.Duration
	MaxFailures  uint32
	OpenTimeout  time.Duration
	HTTPClient   *http.Client
}

// SettingsFromConfig reads the exchanger settings from cfg.
func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		ClientID:     cfg.GetClientID(),
		ClientSecret: cfg.GetClientSecret(),
		TokenURL:     cfg.GetTokenURL(),
		Scopes:       cfg.GetScopes(),
		Timeout:      cfg.GetRequestTimeout(),
		MaxFailures:  cfg.GetBreakerMaxFailures(),
		OpenTimeout:  cfg.GetBreakerOpenTimeout(),
	}
}

// Exchanger posts token requests upstream through a circuit breaker. The
// upstream body is returned verbatim.
type Exchanger struct {
	settings   Settings
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewExchanger(settings Settings) *Exchanger {
	httpClient := settings.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "github-token-endpoint",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &Exchanger{
		settings:   settings,
		httpClient: httpClient,
		breaker:    breaker,
	}
}

// State reports the breaker state.
func (e *Exchanger) State() gobreaker.State {
	return e.breaker.State()
}

// Authenticate exchanges an authorization code for a token. An empty code is
// still forwarded so the provider's error body reaches the caller.
func (e *Exchanger) Authenticate(ctx context.Context, req AuthenticateRequest) (json.RawMessage, error) {
	form := url.Values{
		"client_id":     {e.settings.ClientID},
		"client_secret": {e.settings.ClientSecret},
		"code":          {req.Code},
		"redirect_uri":  {req.RedirectURI},
		"state":         {req.State},
		"scope":         {strings.Join(e.settings.Scopes, " ")},
	}
	return e.exchange(ctx, "authenticate", form)
}

// Refresh exchanges a refresh token for a new token.
func (e *Exchanger) Refresh(ctx context.Context, refreshToken string) (json.RawMessage, error) {
	form := url.Values{
		"client_id":     {e.settings.ClientID},
		"client_secret": {e.settings.ClientSecret},
		"grant_type":    {string(oauth2.RefreshTokenGrant)},
		"refresh_token": {refreshToken},
	}
	return e.exchange(ctx, "refresh", form)
}

func (e *Exchanger) exchange(ctx context.Context, op string, form url.Values) (json.RawMessage, error) {
	if e.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.settings.Timeout)
		defer cancel()
	}

	result, err := e.breaker.Execute(func() (interface{}, error) {
		return e.post(ctx, form)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("[Exchanger %s] %v: %w", op, err, errors.ErrUpstream)
		}
		return nil, fmt.Errorf("[Exchanger %s]: %w", op, err)
	}

	log.Debug().Str("op", op).Msg("token exchange succeeded")
	return result.(json.RawMessage), nil
}

func (e *Exchanger) post(ctx context.Context, form url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.settings.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request failed with status code %d: %w", resp.StatusCode, errors.ErrUpstream)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("upstream returned a non-JSON body: %w", errors.ErrUpstream)
	}
	return json.RawMessage(body), nil
}
