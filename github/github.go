package github

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

// Viewer fetches the authenticated user's profile.
func (c *Client) Viewer(ctx context.Context) (*Viewer, error) {
	var data viewerData
	if err := c.Query(ctx, ViewerQuery, nil, &data); err != nil {
		return nil, err
	}
	if data.Viewer == nil {
		return nil, fmt.Errorf("[GitHub Viewer]: %w", errors.ErrNotFound)
	}
	logRateLimit("viewer", data.RateLimit)
	return data.Viewer, nil
}

// User fetches a user account.
func (c *Client) User(ctx context.Context, login string) (*Owner, error) {
	var data userData
	if err := c.Query(ctx, UserQuery, map[string]any{"user": login}, &data); err != nil {
		return nil, err
	}
	if data.User == nil {
		return nil, fmt.Errorf("[GitHub User] %s: %w", login, errors.ErrNotFound)
	}
	logRateLimit("user", data.RateLimit)
	return data.User, nil
}

// Organization fetches an organization account.
func (c *Client) Organization(ctx context.Context, login string) (*Owner, error) {
	var data organizationData
	if err := c.Query(ctx, OrganizationQuery, map[string]any{"organization": login}, &data); err != nil {
		return nil, err
	}
	if data.Organization == nil {
		return nil, fmt.Errorf("[GitHub Organization] %s: %w", login, errors.ErrNotFound)
	}
	logRateLimit("organization", data.RateLimit)
	return data.Organization, nil
}

// Repository fetches the statistics of owner/name.
func (c *Client) Repository(ctx context.Context, owner, name string) (*Repository, error) {
	var data repositoryData
	if err := c.Query(ctx, RepositoryQuery, map[string]any{"owner": owner, "repository": name}, &data); err != nil {
		return nil, err
	}
	if data.Repository == nil {
		return nil, fmt.Errorf("[GitHub Repository] %s/%s: %w", owner, name, errors.ErrNotFound)
	}
	logRateLimit("repository", data.RateLimit)
	return data.Repository, nil
}

func logRateLimit(query string, rl RateLimit) {
	log.Debug().Str("query", query).Int("cost", rl.Cost).Int("remaining", rl.Remaining).Msg("graphql rate limit")
}
