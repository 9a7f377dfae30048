// Package tokenstore persists the single OAuth token of the dashboard.
package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/jrsteele09/go-github-dashboard/storage"
	"github.com/rs/zerolog/log"
)

// Key is the storage key of the serialized token.
const Key = "github-oauth-data"

type Store struct {
	store storage.Store
}

func New(store storage.Store) *Store {
	return &Store{store: store}
}

// Get returns the persisted token, or nil when none is stored. A malformed
// value is logged and reported as absent. Expiry is the caller's concern.
func (s *Store) Get(ctx context.Context) (*oauth2.Token, error) {
	b, err := s.store.Get(ctx, Key)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[TokenStore Get]: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(b, &token); err != nil {
		log.Warn().Err(err).Str("key", Key).Msg("discarding malformed stored token")
		return nil, nil
	}
	return &token, nil
}

func (s *Store) Set(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("[TokenStore Set]: %w", errors.ErrTokenMissing)
	}
	b, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("[TokenStore Set] marshal: %w", err)
	}
	if err := s.store.Set(ctx, Key, b); err != nil {
		return fmt.Errorf("[TokenStore Set]: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, Key); err != nil {
		return fmt.Errorf("[TokenStore Clear]: %w", err)
	}
	return nil
}
