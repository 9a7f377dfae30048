package session_test

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-github-dashboard/github"
	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/jrsteele09/go-github-dashboard/selection"
	"github.com/jrsteele09/go-github-dashboard/session"
	"github.com/jrsteele09/go-github-dashboard/storage"
	"github.com/jrsteele09/go-github-dashboard/tokenstore"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type fakeAuthenticator struct {
	lock          sync.Mutex
	authenticated []string
	refreshed     []string
	token         *oauth2.Token
	refreshToken  *oauth2.Token
	err           error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, code, redirectURI, state string) (*oauth2.Token, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.authenticated = append(f.authenticated, code+"|"+redirectURI+"|"+state)
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

func (f *fakeAuthenticator) Refresh(_ context.Context, refreshToken string) (*oauth2.Token, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.refreshed = append(f.refreshed, refreshToken)
	if f.err != nil {
		return nil, f.err
	}
	return f.refreshToken, nil
}

type fakeGitHub struct {
	lock  sync.Mutex
	token *oauth2.Token
	calls []string

	viewerErr error
	ownerErr  error
	repoErr   error

	// When set, Repository waits for the owner query to start.
	ownerStarted chan struct{}
	// When set, Viewer blocks until the context is done.
	hangViewer bool
}

func (f *fakeGitHub) record(call string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGitHub) Calls() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGitHub) SetToken(token *oauth2.Token) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.token = token
}

func (f *fakeGitHub) Token() *oauth2.Token {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.token
}

func (f *fakeGitHub) Viewer(ctx context.Context) (*github.Viewer, error) {
	f.record("viewer")
	if f.hangViewer {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.viewerErr != nil {
		return nil, f.viewerErr
	}
	return &github.Viewer{Login: "octocat"}, nil
}

func (f *fakeGitHub) owner(call, login string) (*github.Owner, error) {
	f.record(call + ":" + login)
	if f.ownerStarted != nil {
		close(f.ownerStarted)
	}
	if f.ownerErr != nil {
		return nil, f.ownerErr
	}
	return &github.Owner{Login: login, Repositories: github.Repositories{Nodes: []github.RepositoryNode{{Name: "hello-world"}}}}, nil
}

func (f *fakeGitHub) User(_ context.Context, login string) (*github.Owner, error) {
	return f.owner("user", login)
}

func (f *fakeGitHub) Organization(_ context.Context, login string) (*github.Owner, error) {
	return f.owner("organization", login)
}

func (f *fakeGitHub) Repository(ctx context.Context, owner, name string) (*github.Repository, error) {
	if f.ownerStarted != nil {
		select {
		case <-f.ownerStarted:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.record("repository:" + owner + "/" + name)
	if f.repoErr != nil {
		return nil, f.repoErr
	}
	return &github.Repository{Name: name, StargazersCount: 42}, nil
}

type fixture struct {
	store      *storage.MemoryStore
	tokens     *tokenstore.Store
	selections *selection.Store
	auth       *fakeAuthenticator
	gh         *fakeGitHub
	controller *session.Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: storage.NewMemoryStore(),
		auth:  &fakeAuthenticator{},
		gh:    &fakeGitHub{},
	}
	f.tokens = tokenstore.New(f.store)
	f.selections = selection.New(f.store)
	f.controller = session.New(session.Deps{
		Tokens:        f.tokens,
		Selections:    f.selections,
		Store:         f.store,
		Authenticator: f.auth,
		GitHub:        f.gh,
	}, session.Options{
		ClientID:    "client-123",
		RedirectURI: "http://localhost:8085/callback",
		Timeout:     time.Second,
		Now:         func() time.Time { return now },
	})
	return f
}

func (f *fixture) selectRepository(t *testing.T, typ selection.RepositoryType) {
	t.Helper()
	require.NoError(t, f.selections.Set(context.Background(), selection.Selector{Type: typ, Owner: "octo-org", Repository: "hello-world"}))
}

func TestEvaluate_ValidStoredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := &oauth2.Token{AccessToken: "gho_abc", ExpiresAt: now.Add(time.Hour).UnixMilli()}
	require.NoError(t, f.tokens.Set(ctx, token))
	f.selectRepository(t, selection.User)

	require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))

	require.Equal(t, session.Authenticated, f.controller.State.Get())
	require.Empty(t, f.auth.refreshed)
	require.Equal(t, "gho_abc", f.gh.Token().AccessToken)
	require.Equal(t, "octocat", f.controller.Viewer.Get().Login)
	require.Equal(t, "octo-org", f.controller.Owner.Get().Login)
	require.Equal(t, 42, f.controller.Repository.Get().StargazersCount)
	require.Empty(t, f.controller.Alert.Get())
	require.False(t, f.controller.Loading.Get())
}

func TestEvaluate_ExpiredTokenRefreshesOnce(t *testing.T) {
	t.Run("refresh succeeds", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		stale := &oauth2.Token{AccessToken: "gho_old", RefreshToken: "ghr_old", ExpiresAt: now.Add(-time.Minute).UnixMilli()}
		require.NoError(t, f.tokens.Set(ctx, stale))
		f.auth.refreshToken = &oauth2.Token{AccessToken: "gho_new", TokenType: "bearer", ExpiresIn: 28800}

		require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))

		require.Equal(t, session.NoRepository, f.controller.State.Get())
		require.Equal(t, []string{"ghr_old"}, f.auth.refreshed)

		stored, err := f.tokens.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, "gho_new", stored.AccessToken)
		require.Equal(t, "ghr_old", stored.RefreshToken)
		require.Equal(t, now.UnixMilli()+28800*1000, stored.ExpiresAt)
		require.Equal(t, "gho_new", f.gh.Token().AccessToken)
	})

	t.Run("refresh fails", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		stale := &oauth2.Token{AccessToken: "gho_old", RefreshToken: "ghr_old", ExpiresAt: now.Add(-time.Minute).UnixMilli()}
		require.NoError(t, f.tokens.Set(ctx, stale))
		f.auth.err = fmt.Errorf("connection refused")

		require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))

		require.True(t, f.controller.State.Get().Authorized())
		require.Len(t, f.auth.refreshed, 1)
		require.Equal(t, "gho_old", f.gh.Token().AccessToken)

		stored, err := f.tokens.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, stale, stored)
	})

	t.Run("refresh rejected", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.tokens.Set(ctx, &oauth2.Token{AccessToken: "gho_old", ExpiresAt: 1}))
		f.auth.refreshToken = &oauth2.Token{Error: "bad_refresh_token"}

		require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
		require.True(t, f.controller.State.Get().Authorized())
		require.Len(t, f.auth.refreshed, 1)
		require.Equal(t, "gho_old", f.gh.Token().AccessToken)
	})
}

func TestEvaluate_PreparesAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
	require.Equal(t, session.NotAuthorized, f.controller.State.Get())

	u, err := url.Parse(f.controller.AuthorizeURL.Get())
	require.NoError(t, err)
	require.Equal(t, "client-123", u.Query().Get("client_id"))
	require.Equal(t, "http://localhost:8085/callback", u.Query().Get("redirect_uri"))

	nonce, err := f.store.Get(ctx, session.StateKey)
	require.NoError(t, err)
	require.Equal(t, u.Query().Get("state"), string(nonce))
}

func TestEvaluate_CallbackAuthenticates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectRepository(t, selection.Organization)
	f.auth.token = &oauth2.Token{AccessToken: "gho_abc", TokenType: "bearer", ExpiresIn: 28800}

	require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
	nonce, err := f.store.Get(ctx, session.StateKey)
	require.NoError(t, err)

	// A fresh controller, as after the browser redirect.
	f.controller = session.New(session.Deps{
		Tokens: f.tokens, Selections: f.selections, Store: f.store, Authenticator: f.auth, GitHub: f.gh,
	}, session.Options{ClientID: "client-123", RedirectURI: "http://localhost:8085/callback", Now: func() time.Time { return now }})

	require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{Code: "c0de", State: string(nonce)}))

	require.Equal(t, session.Authenticated, f.controller.State.Get())
	require.Equal(t, []string{"c0de|http://localhost:8085/callback|" + string(nonce)}, f.auth.authenticated)

	stored, err := f.tokens.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, now.UnixMilli()+28800*1000, stored.ExpiresAt)

	_, err = f.store.Get(ctx, session.StateKey)
	require.True(t, errors.Is(err, errors.ErrNotFound), "nonce is single use")

	require.Contains(t, f.gh.Calls(), "organization:octo-org")
	require.NotContains(t, f.gh.Calls(), "user:octo-org")
}

func TestEvaluate_CallbackFailures(t *testing.T) {
	tests := map[string]struct {
		token     *oauth2.Token
		err       error
		state     string
		wantAlert string
		wantCalls int
	}{
		"state mismatch": {
			state:     "forged",
			wantAlert: "Could not authenticate with GitHub: state mismatch",
		},
		"provider error": {
			token:     &oauth2.Token{Error: "bad_verification_code"},
			wantAlert: "Could not authenticate with GitHub: bad_verification_code",
			wantCalls: 1,
		},
		"missing token": {
			token:     &oauth2.Token{},
			wantAlert: "Could not authenticate with GitHub.",
			wantCalls: 1,
		},
		"transport error": {
			err:       fmt.Errorf("dial tcp: connection refused"),
			wantAlert: "Could not authenticate with GitHub.",
			wantCalls: 1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			require.NoError(t, f.store.Set(ctx, session.StateKey, []byte("expected-nonce")))
			f.auth.token = tc.token
			f.auth.err = tc.err

			state := tc.state
			if state == "" {
				state = "expected-nonce"
			}
			err := f.controller.Evaluate(ctx, oauth2.Callback{Code: "c0de", State: state})
			require.Error(t, err)

			require.Equal(t, session.Authenticating, f.controller.State.Get())
			require.Equal(t, tc.wantAlert, f.controller.Alert.Get())
			require.Len(t, f.auth.authenticated, tc.wantCalls)

			stored, err := f.tokens.Get(ctx)
			require.NoError(t, err)
			require.Nil(t, stored)

			// No automatic retry: a second evaluation is a no-op.
			require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{Code: "c0de", State: state}))
			require.Len(t, f.auth.authenticated, tc.wantCalls)
		})
	}
}

func TestEvaluate_ProviderDenied(t *testing.T) {
	f := newFixture(t)
	err := f.controller.Evaluate(context.Background(), oauth2.Callback{Error: "access_denied"})
	require.True(t, errors.Is(err, errors.ErrAuthentication))
	require.Equal(t, session.Authenticating, f.controller.State.Get())
	require.Equal(t, "Could not authenticate with GitHub: access_denied", f.controller.Alert.Get())
}

func TestEvaluate_NoOpOnceStarted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tokens.Set(ctx, &oauth2.Token{AccessToken: "gho_abc"}))

	require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
	require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
	require.Equal(t, []string{"viewer"}, f.gh.Calls())
}

func TestLoad_ConcurrentAndIndependent(t *testing.T) {
	t.Run("repository waits for owner", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.tokens.Set(ctx, &oauth2.Token{AccessToken: "gho_abc"}))
		f.selectRepository(t, selection.User)
		f.gh.ownerStarted = make(chan struct{})

		require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
		require.NotNil(t, f.controller.Owner.Get())
		require.NotNil(t, f.controller.Repository.Get())
	})

	t.Run("repository failure keeps owner", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.tokens.Set(ctx, &oauth2.Token{AccessToken: "gho_abc"}))
		f.selectRepository(t, selection.User)
		f.gh.repoErr = &github.GraphQLError{Errors: []github.ErrorItem{{Message: "x"}}}

		require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
		require.Equal(t, session.Authenticated, f.controller.State.Get())
		require.NotNil(t, f.controller.Owner.Get())
		require.Nil(t, f.controller.Repository.Get())
		require.Equal(t, session.AlertFetchRepo, f.controller.Alert.Get())
		require.Equal(t, "gho_abc", f.gh.Token().AccessToken, "query failures keep the token")
	})

	t.Run("owner failure keeps repository", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.tokens.Set(ctx, &oauth2.Token{AccessToken: "gho_abc"}))
		f.selectRepository(t, selection.Organization)
		f.gh.ownerErr = fmt.Errorf("timeout")

		require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
		require.Nil(t, f.controller.Owner.Get())
		require.NotNil(t, f.controller.Repository.Get())
		require.Equal(t, session.AlertFetchUser, f.controller.Alert.Get())
	})
}

func TestLoad_ViewerDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tokens.Set(ctx, &oauth2.Token{AccessToken: "gho_abc"}))
	f.gh.hangViewer = true

	c := session.New(session.Deps{
		Tokens: f.tokens, Selections: f.selections, Store: f.store, Authenticator: f.auth, GitHub: f.gh,
	}, session.Options{Timeout: 20 * time.Millisecond})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Evaluate(ctx, oauth2.Callback{})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("evaluate did not honour the request deadline")
	}
	require.Equal(t, session.AlertFetchUser, c.Alert.Get())
	require.Equal(t, session.NoRepository, c.State.Get())
	require.False(t, c.Loading.Get())
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tokens.Set(ctx, &oauth2.Token{AccessToken: "gho_abc"}))
	require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
	require.Equal(t, session.NoRepository, f.controller.State.Get())

	require.NoError(t, f.controller.Logout(ctx))
	require.Equal(t, session.NotAuthorized, f.controller.State.Get())
	require.Nil(t, f.gh.Token())
	require.Nil(t, f.controller.Viewer.Get())

	stored, err := f.tokens.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, stored)

	require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
	require.NotEmpty(t, f.controller.AuthorizeURL.Get())
}

func TestSelectRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tokens.Set(ctx, &oauth2.Token{AccessToken: "gho_abc"}))
	require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
	require.Equal(t, session.NoRepository, f.controller.State.Get())

	err := f.controller.SelectRepository(ctx, selection.Selector{Type: selection.User, Owner: "octocat"})
	require.True(t, errors.Is(err, errors.ErrInvalidSelector))

	require.NoError(t, f.controller.SelectRepository(ctx, selection.Selector{Type: selection.User, Owner: "octocat", Repository: "hello-world"}))
	require.Equal(t, session.Authenticated, f.controller.State.Get())
	require.Equal(t, "hello-world", f.controller.Repository.Get().Name)

	names, err := f.controller.Repositories(ctx, selection.User, "octocat")
	require.NoError(t, err)
	require.Equal(t, []string{"hello-world"}, names)
}

func TestRepositories_Unauthenticated(t *testing.T) {
	f := newFixture(t)
	_, err := f.controller.Repositories(context.Background(), selection.User, "octocat")
	require.True(t, errors.Is(err, errors.ErrUnauthenticated))
}

func TestSnapshotAndOnChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tokens.Set(ctx, &oauth2.Token{AccessToken: "gho_abc"}))
	f.selectRepository(t, selection.User)

	var lock sync.Mutex
	changes := 0
	unsubscribe := f.controller.OnChange(func() {
		lock.Lock()
		defer lock.Unlock()
		changes++
	})

	require.NoError(t, f.controller.Evaluate(ctx, oauth2.Callback{}))
	unsubscribe()

	lock.Lock()
	seen := changes
	lock.Unlock()
	require.Positive(t, seen)

	snap := f.controller.Snapshot()
	require.Equal(t, session.Authenticated, snap.State)
	require.Equal(t, "octocat", snap.Viewer.Login)
	require.Equal(t, "hello-world", snap.Selector.Repository)
	require.NotNil(t, snap.Owner)
	require.NotNil(t, snap.Repository)
	require.False(t, snap.Loading)

	require.NoError(t, f.controller.Logout(ctx))
	lock.Lock()
	defer lock.Unlock()
	require.Equal(t, seen, changes, "no callbacks after unsubscribe")
}
