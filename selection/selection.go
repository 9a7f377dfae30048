// Package selection persists the repository the dashboard reports on.
package selection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/jrsteele09/go-github-dashboard/storage"
	"github.com/rs/zerolog/log"
)

// Key is the storage key of the serialized selector.
const Key = "currentRepository"

// RepositoryType is the kind of account that owns the repository.
type RepositoryType string

const (
	Organization RepositoryType = "Organization"
	User         RepositoryType = "User"
)

// Types lists every RepositoryType.
var Types = []RepositoryType{Organization, User}

// Selector identifies the repository shown on the dashboard.
type Selector struct {
	Type       RepositoryType `json:"type" validate:"required,oneof=Organization User"`
	Owner      string         `json:"owner" validate:"required"`
	Repository string         `json:"repository" validate:"required"`
}

var validate = validator.New()

// Confirmed reports whether every field is set and the type is known.
func (s Selector) Confirmed() bool {
	return s.Validate() == nil
}

func (s Selector) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidSelector, err)
	}
	return nil
}

func (s Selector) String() string {
	return s.Owner + "/" + s.Repository
}

type Store struct {
	store storage.Store
}

func New(store storage.Store) *Store {
	return &Store{store: store}
}

// Get returns the confirmed selector, or nil when none is stored. Malformed or
// unconfirmed values are logged and reported as absent.
func (s *Store) Get(ctx context.Context) (*Selector, error) {
	b, err := s.store.Get(ctx, Key)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[SelectionStore Get]: %w", err)
	}

	var sel Selector
	if err := json.Unmarshal(b, &sel); err != nil {
		log.Warn().Err(err).Str("key", Key).Msg("discarding malformed repository selector")
		return nil, nil
	}
	if err := sel.Validate(); err != nil {
		log.Warn().Err(err).Str("key", Key).Msg("ignoring unconfirmed repository selector")
		return nil, nil
	}
	return &sel, nil
}

func (s *Store) Set(ctx context.Context, sel Selector) error {
	if err := sel.Validate(); err != nil {
		return fmt.Errorf("[SelectionStore Set]: %w", err)
	}
	b, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("[SelectionStore Set] marshal: %w", err)
	}
	if err := s.store.Set(ctx, Key, b); err != nil {
		return fmt.Errorf("[SelectionStore Set]: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, Key); err != nil {
		return fmt.Errorf("[SelectionStore Clear]: %w", err)
	}
	return nil
}

// ParseType maps a case-sensitive type name to a RepositoryType.
func ParseType(s string) (RepositoryType, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown repository type %q: %w", s, errors.ErrInvalidSelector)
}
