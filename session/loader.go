package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-github-dashboard/github"
	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/jrsteele09/go-github-dashboard/selection"
	"github.com/rs/zerolog/log"
)

func (c *Controller) enterAuthenticated(ctx context.Context) {
	c.State.Set(Authenticated)
	c.load(ctx)
}

// load fetches the viewer, then the owner and repository of the persisted
// selector. The last two run concurrently and fail independently.
func (c *Controller) load(ctx context.Context) {
	c.Loading.Set(true)
	defer c.Loading.Set(false)

	vctx, cancel := c.withTimeout(ctx)
	viewer, err := c.deps.GitHub.Viewer(vctx)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("could not fetch viewer")
		c.Alert.Set(AlertFetchUser)
	} else {
		c.Viewer.Set(viewer)
	}

	sel, err := c.deps.Selections.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not read repository selector")
	}
	if sel == nil {
		c.Selector.Set(nil)
		c.State.Set(NoRepository)
		return
	}
	c.Selector.Set(sel)
	c.State.Set(Authenticated)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		octx, cancel := c.withTimeout(ctx)
		defer cancel()

		owner, err := c.fetchOwner(octx, sel.Type, sel.Owner)
		if err != nil {
			log.Error().Err(err).Str("owner", sel.Owner).Msg("could not fetch owner")
			c.Alert.Set(AlertFetchUser)
			return
		}
		c.Owner.Set(owner)
	}()
	go func() {
		defer wg.Done()
		rctx, cancel := c.withTimeout(ctx)
		defer cancel()

		repo, err := c.deps.GitHub.Repository(rctx, sel.Owner, sel.Repository)
		if err != nil {
			log.Error().Err(err).Str("repository", sel.String()).Msg("could not fetch repository")
			c.Alert.Set(AlertFetchRepo)
			return
		}
		c.Repository.Set(repo)
	}()
	wg.Wait()
}

func (c *Controller) fetchOwner(ctx context.Context, typ selection.RepositoryType, login string) (*github.Owner, error) {
	switch typ {
	case selection.Organization:
		return c.deps.GitHub.Organization(ctx, login)
	case selection.User:
		return c.deps.GitHub.User(ctx, login)
	default:
		return nil, fmt.Errorf("[Session] owner type %q: %w", typ, errors.ErrInvalidSelector)
	}
}

// Reload refetches all data when a token is adopted.
func (c *Controller) Reload(ctx context.Context) {
	c.evalLock.Lock()
	defer c.evalLock.Unlock()

	if !c.State.Get().Authorized() {
		return
	}
	c.Alert.Set("")
	c.load(ctx)
}

// SelectRepository persists sel and reloads the dashboard for it.
func (c *Controller) SelectRepository(ctx context.Context, sel selection.Selector) error {
	if err := c.deps.Selections.Set(ctx, sel); err != nil {
		return fmt.Errorf("[Session SelectRepository]: %w", err)
	}
	c.Owner.Set(nil)
	c.Repository.Set(nil)
	c.Reload(ctx)
	return nil
}

// Repositories lists the repository names of an owner, for picking a selector.
func (c *Controller) Repositories(ctx context.Context, typ selection.RepositoryType, login string) ([]string, error) {
	if c.deps.GitHub.Token() == nil {
		return nil, fmt.Errorf("[Session Repositories]: %w", errors.ErrUnauthenticated)
	}
	octx, cancel := c.withTimeout(ctx)
	defer cancel()

	owner, err := c.fetchOwner(octx, typ, login)
	if err != nil {
		return nil, fmt.Errorf("[Session Repositories]: %w", err)
	}
	return owner.Repositories.Names(), nil
}
