// Package badger is a persistent catalog.Store backed by BadgerDB.
//
// Key layout:
//
//	f:<file id>  ->  JSON-encoded catalog.Entry
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/pkg/catalog"
)

const prefixEntry = "f:"

func keyEntry(fileID string) []byte {
	return []byte(prefixEntry + fileID)
}

// Config configures a badger catalog.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	InMemory bool

	// BlockCacheSize and IndexCacheSize size badger's caches in bytes.
	// Zero keeps badger's defaults.
	BlockCacheSize int64
	IndexCacheSize int64
}

// Store is a BadgerDB-backed catalog. Safe for concurrent use.
type Store struct {
	db *badgerdb.DB
}

var _ catalog.Store = (*Store)(nil)

// New opens (or creates) the catalog database described by cfg.
func New(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger catalog: path is required")
	}

	opts := badgerdb.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	if cfg.BlockCacheSize > 0 {
		opts = opts.WithBlockCacheSize(cfg.BlockCacheSize)
	}
	if cfg.IndexCacheSize > 0 {
		opts = opts.WithIndexCacheSize(cfg.IndexCacheSize)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger catalog: %w", err)
	}

	logger.Debug("Badger catalog opened", "path", cfg.Path, "in_memory", cfg.InMemory)
	return &Store{db: db}, nil
}

// DB exposes the underlying database for cache statistics.
func (s *Store) DB() *badgerdb.DB { return s.db }

// Get implements catalog.Store.
func (s *Store) Get(ctx context.Context, fileID string) (catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Entry{}, err
	}

	var e catalog.Entry
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyEntry(fileID))
		if err == badgerdb.ErrKeyNotFound {
			return fmt.Errorf("%s: %w", fileID, catalog.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		return catalog.Entry{}, err
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

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(keyEntry(e.FileID), data)
	})
}

// Delete implements catalog.Store.
func (s *Store) Delete(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		key := keyEntry(fileID)
		if _, err := txn.Get(key); err != nil {
			if err == badgerdb.ErrKeyNotFound {
				return fmt.Errorf("%s: %w", fileID, catalog.ErrNotFound)
			}
			return err
		}
		return txn.Delete(key)
	})
}

// List implements catalog.Store. Entries come back in key order, which is
// file id order.
func (s *Store) List(ctx context.Context) ([]catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []catalog.Entry
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(prefixEntry)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			var e catalog.Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("failed to decode entry %q: %w", it.Item().Key(), err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []catalog.Entry{}
	}
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

// Healthcheck verifies the database can serve a read transaction.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.View(func(txn *badgerdb.Txn) error { return nil }); err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

// Close implements catalog.Store.
func (s *Store) Close() error {
	return s.db.Close()
}
