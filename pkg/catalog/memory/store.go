// Package memory is an in-process catalog.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/marmos91/dittomds/pkg/catalog"
)

// Store is a map-backed catalog. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]catalog.Entry
}

var _ catalog.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{entries: make(map[string]catalog.Entry)}
}

// Get implements catalog.Store.
func (s *Store) Get(ctx context.Context, fileID string) (catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Entry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[fileID]
	if !ok {
		return catalog.Entry{}, fmt.Errorf("%s: %w", fileID, catalog.ErrNotFound)
	}
	return e, nil
}

// Put implements catalog.Store.
func (s *Store) Put(ctx context.Context, e catalog.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.FileID] = e
	return nil
}

// Delete implements catalog.Store.
func (s *Store) Delete(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[fileID]; !ok {
		return fmt.Errorf("%s: %w", fileID, catalog.ErrNotFound)
	}
	delete(s.entries, fileID)
	return nil
}

// List implements catalog.Store. Entries are ordered by file id.
func (s *Store) List(ctx context.Context) ([]catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]catalog.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].FileID < out[j].FileID })
	return out, nil
}

// FileType implements catalog.Store.
func (s *Store) FileType(ctx context.Context, fileID string) (catalog.FileType, error) {
	e, err := s.Get(ctx, fileID)
	return e.Type, err
}

// StorageInfo implements catalog.Store.
func (s *Store) StorageInfo(ctx context.Context, fileID string) (catalog.StorageInfo, error) {
	e, err := s.Get(ctx, fileID)
	return e.Storage, err
}

// Healthcheck implements catalog.Store.
func (s *Store) Healthcheck(ctx context.Context) error { return ctx.Err() }

// Close implements catalog.Store.
func (s *Store) Close() error { return nil }
