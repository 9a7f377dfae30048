package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-github-dashboard/github"
	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	hexState := regexp.MustCompile(`^[0-9a-f]{32}$`)
	seen := map[string]bool{}

	for i := 0; i < 20; i++ {
		authURL, state, err := github.Authorize("client-123", "http://localhost:8085/callback")
		require.NoError(t, err)

		u, err := url.Parse(authURL)
		require.NoError(t, err)
		require.Equal(t, "github.com", u.Host)
		require.Equal(t, "/login/oauth/authorize", u.Path)

		q := u.Query()
		require.Equal(t, "client-123", q.Get("client_id"))
		require.Equal(t, "http://localhost:8085/callback", q.Get("redirect_uri"))
		require.Equal(t, state, q.Get("state"))
		require.Regexp(t, hexState, state)

		require.False(t, seen[state], "state must differ on every call")
		seen[state] = true
	}
}

func TestQuery_Unauthenticated(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	client := github.NewClient(github.WithEndpoint(srv.URL))
	err := client.Query(context.Background(), github.ViewerQuery, nil, nil)

	require.True(t, errors.Is(err, errors.ErrUnauthenticated))
	require.Zero(t, atomic.LoadInt32(&calls), "no network call without a token")
}

func TestQuery_SendsTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer gho_abc", r.Header.Get("Authorization"))

		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, github.RepositoryQuery, body.Query)
		require.Equal(t, "octocat", body.Variables["owner"])
		require.Equal(t, "hello-world", body.Variables["repository"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"rateLimit":{"cost":1,"remaining":4999},"repository":{
			"name":"hello-world","stargazers_count":42,"forks_count":7,
			"watchers":{"totalCount":3},
			"issues":{"total":1,"items":[{"number":1,"createdAt":"2024-01-02T10:00:00Z","closed":true,"closedAt":"2024-01-05T10:00:00Z"}]},
			"issuesOpen":{"total":0},
			"pullRequests":{"total":0,"items":[]},
			"release":{"name":"v1.0.0","tag":"v1.0.0"},
			"primaryLanguage":{"name":"Go"}}}}`))
	}))
	defer srv.Close()

	client := github.NewClient(github.WithEndpoint(srv.URL))
	client.SetToken(&oauth2.Token{AccessToken: "gho_abc", TokenType: "bearer"})

	repo, err := client.Repository(context.Background(), "octocat", "hello-world")
	require.NoError(t, err)
	require.Equal(t, 42, repo.StargazersCount)
	require.Equal(t, 7, repo.ForksCount)
	require.Equal(t, 3, repo.Watchers.TotalCount)
	require.Len(t, repo.Issues.Items, 1)
	require.True(t, repo.Issues.Items[0].Closed)
	require.NotNil(t, repo.Issues.Items[0].ClosedAt)
	require.Equal(t, "Go", repo.PrimaryLanguage.Name)
}

func TestQuery_ErrorsWithoutData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"x"},{"message":"second failure"}]}`))
	}))
	defer srv.Close()

	token := &oauth2.Token{AccessToken: "gho_abc", TokenType: "bearer", ExpiresAt: 123}
	client := github.NewClient(github.WithEndpoint(srv.URL))
	client.SetToken(token)

	err := client.Query(context.Background(), github.ViewerQuery, nil, &struct{}{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "x")
	require.Contains(t, err.Error(), "second failure")
	require.True(t, errors.Is(err, errors.ErrGraphQL))

	var gqlErr *github.GraphQLError
	require.True(t, errors.As(err, &gqlErr))
	require.Len(t, gqlErr.Errors, 2)

	require.Equal(t, token, client.Token(), "adopted token is untouched")
}

func TestQuery_PartialErrorsKeepData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"viewer":{"login":"octocat"}},"errors":[{"message":"field denied"}]}`))
	}))
	defer srv.Close()

	client := github.NewClient(github.WithEndpoint(srv.URL))
	client.SetToken(&oauth2.Token{AccessToken: "a"})

	viewer, err := client.Viewer(context.Background())
	require.NoError(t, err)
	require.Equal(t, "octocat", viewer.Login)
}

func TestQuery_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer srv.Close()

	client := github.NewClient(github.WithEndpoint(srv.URL))
	client.SetToken(&oauth2.Token{AccessToken: "a"})

	err := client.Query(context.Background(), github.ViewerQuery, nil, nil)
	require.True(t, errors.Is(err, errors.ErrUpstream))
	require.Contains(t, err.Error(), "Bad credentials")
}

func TestQuery_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	client := github.NewClient(github.WithEndpoint(endpoint))
	client.SetToken(&oauth2.Token{AccessToken: "a"})

	err := client.Query(context.Background(), github.ViewerQuery, nil, nil)
	require.Error(t, err)
	require.False(t, errors.Is(err, errors.ErrGraphQL))
}

func TestOwnerQueries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string            `json:"query"`
			Variables map[string]string `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch body.Query {
		case github.UserQuery:
			_, _ = w.Write([]byte(`{"data":{"user":{"login":"` + body.Variables["user"] + `","followers":{"totalCount":9},"repositories":{"totalCount":2,"nodes":[{"name":"a"},{"name":"b"}]}}}}`))
		case github.OrganizationQuery:
			_, _ = w.Write([]byte(`{"data":{"organization":null}}`))
		default:
			t.Fatalf("unexpected query %q", body.Query)
		}
	}))
	defer srv.Close()

	client := github.NewClient(github.WithEndpoint(srv.URL))
	client.SetToken(&oauth2.Token{AccessToken: "a"})

	user, err := client.User(context.Background(), "octocat")
	require.NoError(t, err)
	require.Equal(t, "octocat", user.Login)
	require.Equal(t, 9, user.Followers.TotalCount)
	require.Equal(t, []string{"a", "b"}, user.Repositories.Names())

	_, err = client.Organization(context.Background(), "missing")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}
