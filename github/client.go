// Package github talks to the GitHub GraphQL API and the token exchange proxy.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
)

// DefaultGraphQLURL is the public GitHub GraphQL endpoint.
const DefaultGraphQLURL = "https://api.github.com/graphql"

// ErrorItem is one entry of a GraphQL "errors" array.
type ErrorItem struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Path    []any  `json:"path,omitempty"`
}

// GraphQLError is returned when a response carries no data.
type GraphQLError struct {
	Errors []ErrorItem
}

func (e *GraphQLError) Error() string {
	if len(e.Errors) == 0 {
		return "graphql error: response carried no data"
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		msgs = append(msgs, item.Message)
	}
	return "graphql error: " + strings.Join(msgs, "; ")
}

func (e *GraphQLError) Unwrap() error {
	return errors.ErrGraphQL
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorItem     `json:"errors,omitempty"`
}

// Client issues GraphQL queries with the adopted token. A Client is safe for
// concurrent use.
type Client struct {
	endpoint string
	base     http.RoundTripper

	lock  sync.RWMutex
	token *oauth2.Token
}

type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithTransport sets the round tripper wrapped by the authorizing transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultGraphQLURL,
		base:     http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken adopts token for subsequent queries. Nil clears it.
func (c *Client) SetToken(token *oauth2.Token) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if token == nil {
		c.token = nil
		return
	}
	t := *token
	c.token = &t
}

// Token returns a copy of the adopted token, or nil.
func (c *Client) Token() *oauth2.Token {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.token == nil {
		return nil
	}
	t := *c.token
	return &t
}

func (c *Client) httpClient(token *oauth2.Token) *http.Client {
	return &http.Client{
		Transport: &xoauth2.Transport{
			Source: xoauth2.StaticTokenSource(token.OAuth2()),
			Base:   c.base,
		},
	}
}

// Query posts document and variables to the GraphQL endpoint and decodes the
// data payload into out. It is a single attempt with no retry.
func (c *Client) Query(ctx context.Context, document string, variables map[string]any, out any) error {
	token := c.Token()
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("[GitHub Query]: %w", errors.ErrUnauthenticated)
	}

	body, err := json.Marshal(request{Query: document, Variables: variables})
	if err != nil {
		return fmt.Errorf("[GitHub Query] marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("[GitHub Query] build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient(token).Do(req)
	if err != nil {
		return fmt.Errorf("[GitHub Query]: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("[GitHub Query] read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("[GitHub Query] status %d: %s: %w", resp.StatusCode, truncate(raw, 200), errors.ErrUpstream)
	}

	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return fmt.Errorf("[GitHub Query] decode response: %w", err)
	}

	if len(r.Data) == 0 || string(r.Data) == "null" {
		log.Error().Int("errors", len(r.Errors)).Msg("graphql response carried no data")
		return &GraphQLError{Errors: r.Errors}
	}
	if len(r.Errors) > 0 {
		log.Warn().Int("errors", len(r.Errors)).Str("first", r.Errors[0].Message).Msg("graphql response carried partial errors")
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("[GitHub Query] decode data: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
