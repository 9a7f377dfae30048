package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/jrsteele09/go-github-dashboard/internal/errors"
)

var _ Store = (*FileStore)(nil)

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileStore persists each key as <folder>/<key>.json. Writes are synchronous
// and atomic (temp file + rename).
type FileStore struct {
	folder string
	lock   sync.Mutex
}

// NewFileStore creates the folder if needed.
func NewFileStore(folder string) (*FileStore, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, fmt.Errorf("[FileStore New] create folder %s: %w", folder, err)
	}
	return &FileStore{folder: folder}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("[FileStore] invalid key %q: %w", key, errors.ErrInvalidRequest)
	}
	return filepath.Join(s.folder, key+".json"), nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	b, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[FileStore Get] read %s: %w", key, err)
	}
	return b, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	tmp, err := os.CreateTemp(s.folder, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("[FileStore Set] create temp for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileStore Set] write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileStore Set] sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[FileStore Set] close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("[FileStore Set] rename %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("[FileStore Delete] remove %s: %w", key, err)
	}
	return nil
}
