// Package session drives the dashboard from an unauthenticated start to a
// loaded repository.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-github-dashboard/github"
	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/jrsteele09/go-github-dashboard/selection"
	"github.com/jrsteele09/go-github-dashboard/storage"
	"github.com/rs/zerolog/log"
)

// StateKey is the storage key of the pending authorization nonce.
const StateKey = "github-oauth-state"

type TokenStore interface {
	Get(ctx context.Context) (*oauth2.Token, error)
	Set(ctx context.Context, token *oauth2.Token) error
	Clear(ctx context.Context) error
}

type SelectionStore interface {
	Get(ctx context.Context) (*selection.Selector, error)
	Set(ctx context.Context, sel selection.Selector) error
}

// Authenticator exchanges codes and refresh tokens, usually through the proxy.
type Authenticator interface {
	Authenticate(ctx context.Context, code, redirectURI, state string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// GitHub is the query side of the GraphQL client.
type GitHub interface {
	SetToken(token *oauth2.Token)
	Token() *oauth2.Token
	Viewer(ctx context.Context) (*github.Viewer, error)
	User(ctx context.Context, login string) (*github.Owner, error)
	Organization(ctx context.Context, login string) (*github.Owner, error)
	Repository(ctx context.Context, owner, name string) (*github.Repository, error)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Tokens        TokenStore
	Selections    SelectionStore
	Store         storage.Store // holds the authorization nonce
	Authenticator Authenticator
	GitHub        GitHub
}

type Options struct {
	ClientID     string
	RedirectURI  string
	AuthorizeURL string
	// Timeout bounds every network call. Zero means no deadline.
	Timeout time.Duration
	Now     func() time.Time
}

// Controller owns the session state. Views read and subscribe to its values.
type Controller struct {
	deps Deps
	opts Options

	State        Value[State]
	Alert        Value[string]
	AuthorizeURL Value[string]
	Loading      Value[bool]
	Viewer       Value[*github.Viewer]
	Selector     Value[*selection.Selector]
	Owner        Value[*github.Owner]
	Repository   Value[*github.Repository]

	evalLock sync.Mutex
}

func New(deps Deps, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{deps: deps, opts: opts}
}

func (c *Controller) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opts.Timeout)
}

// Evaluate applies the transition rules once. It is a no-op unless the
// controller is NotAuthorized. Data load failures are reported through Alert
// and do not fail the call.
func (c *Controller) Evaluate(ctx context.Context, cb oauth2.Callback) error {
	c.evalLock.Lock()
	defer c.evalLock.Unlock()

	if c.State.Get() != NotAuthorized {
		return nil
	}

	token, err := c.deps.Tokens.Get(ctx)
	if err != nil {
		c.Alert.Set(AlertAuthenticate)
		return fmt.Errorf("[Session Evaluate]: %w", err)
	}

	switch {
	case token != nil:
		c.adopt(ctx, token)
		return nil
	case cb.Error != "":
		c.State.Set(Authenticating)
		c.Alert.Set(alertAuthenticateAs + cb.Error)
		return fmt.Errorf("[Session Evaluate] provider returned %s: %w", cb.Error, errors.ErrAuthentication)
	case cb.HasCode():
		return c.authenticate(ctx, cb)
	default:
		return c.prepareAuthorization(ctx)
	}
}

// adopt trusts a stored token, refreshing it first when expired.
func (c *Controller) adopt(ctx context.Context, token *oauth2.Token) {
	c.deps.GitHub.SetToken(token)
	if token.Expired(c.opts.Now()) {
		log.Info().Time("expired_at", token.Expiry()).Msg("stored token expired, refreshing")
		c.refresh(ctx, token)
	}
	c.enterAuthenticated(ctx)
}

// refresh performs one refresh. On failure the stale token stays adopted.
func (c *Controller) refresh(ctx context.Context, stale *oauth2.Token) {
	rctx, cancel := c.withTimeout(ctx)
	defer cancel()

	fresh, err := c.deps.Authenticator.Refresh(rctx, stale.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("token refresh failed, keeping stale token")
		return
	}
	if !fresh.Usable() {
		log.Warn().Str("error", fresh.ErrorMessage()).Msg("token refresh rejected, keeping stale token")
		return
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = stale.RefreshToken
	}
	fresh.Stamp(c.opts.Now())

	if err := c.deps.Tokens.Set(ctx, fresh); err != nil {
		log.Error().Err(err).Msg("could not persist refreshed token")
	}
	c.deps.GitHub.SetToken(fresh)
}

func (c *Controller) authenticate(ctx context.Context, cb oauth2.Callback) error {
	c.State.Set(Authenticating)

	if err := c.verifyState(ctx, cb.State); err != nil {
		c.Alert.Set(alertAuthenticateAs + "state mismatch")
		return fmt.Errorf("[Session Evaluate]: %w", err)
	}

	actx, cancel := c.withTimeout(ctx)
	token, err := c.deps.Authenticator.Authenticate(actx, cb.Code, c.opts.RedirectURI, cb.State)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("code exchange failed")
		c.Alert.Set(AlertAuthenticate)
		return fmt.Errorf("[Session Evaluate] %v: %w", err, errors.ErrAuthentication)
	}
	if token == nil || (token.Error == "" && token.AccessToken == "") {
		c.Alert.Set(AlertAuthenticate)
		return fmt.Errorf("[Session Evaluate] no token returned: %w", errors.ErrAuthentication)
	}
	if token.Error != "" {
		c.Alert.Set(alertAuthenticateAs + token.Error)
		return fmt.Errorf("[Session Evaluate] %s: %w", token.ErrorMessage(), errors.ErrAuthentication)
	}

	token.Stamp(c.opts.Now())
	if err := c.deps.Tokens.Set(ctx, token); err != nil {
		log.Error().Err(err).Msg("could not persist token")
	}
	c.deps.GitHub.SetToken(token)
	c.enterAuthenticated(ctx)
	return nil
}

// verifyState compares the callback state with the persisted nonce. The
// nonce is single use and removed whatever the outcome.
func (c *Controller) verifyState(ctx context.Context, state string) error {
	expected, err := c.deps.Store.Get(ctx, StateKey)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return err
	}
	if err := c.deps.Store.Delete(ctx, StateKey); err != nil {
		log.Warn().Err(err).Msg("could not remove authorization nonce")
	}
	if len(expected) == 0 || string(expected) != state {
		return errors.ErrInvalidState
	}
	return nil
}

func (c *Controller) prepareAuthorization(ctx context.Context) error {
	authURL, state, err := github.AuthorizeWithEndpoint(c.opts.AuthorizeURL, c.opts.ClientID, c.opts.RedirectURI)
	if err != nil {
		return fmt.Errorf("[Session Evaluate]: %w", err)
	}
	if err := c.deps.Store.Set(ctx, StateKey, []byte(state)); err != nil {
		return fmt.Errorf("[Session Evaluate] persist nonce: %w", err)
	}
	c.AuthorizeURL.Set(authURL)
	return nil
}

// Logout clears the stored token and returns to NotAuthorized.
func (c *Controller) Logout(ctx context.Context) error {
	c.evalLock.Lock()
	defer c.evalLock.Unlock()

	if err := c.deps.Tokens.Clear(ctx); err != nil {
		return fmt.Errorf("[Session Logout]: %w", err)
	}
	c.deps.GitHub.SetToken(nil)

	c.Viewer.Set(nil)
	c.Selector.Set(nil)
	c.Owner.Set(nil)
	c.Repository.Set(nil)
	c.Alert.Set("")
	c.AuthorizeURL.Set("")
	c.State.Set(NotAuthorized)
	return nil
}
