package config

import (
	"context"
	"fmt"

	"github.com/marmos91/dittomds/pkg/catalog"
	catalogbadger "github.com/marmos91/dittomds/pkg/catalog/badger"
	catalogmemory "github.com/marmos91/dittomds/pkg/catalog/memory"
	"github.com/marmos91/dittomds/pkg/catalog/sqldb"
	"github.com/marmos91/dittomds/pkg/poolmanager"
)

// CreateCatalog creates the storage-class catalog described by cfg.
// ctx bounds opening the SQL backend and running its migrations.
func CreateCatalog(ctx context.Context, cfg CatalogConfig) (catalog.Store, error) {
	switch cfg.Type {
	case "memory":
		return catalogmemory.New(), nil
	case "badger":
		return createBadgerCatalog(cfg)
	case "sql":
		return sqldb.New(ctx, cfg.SQL)
	default:
		return nil, fmt.Errorf("unknown catalog type: %q", cfg.Type)
	}
}

func createBadgerCatalog(cfg CatalogConfig) (catalog.Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("badger catalog requires path to be set")
	}
	return catalogbadger.New(catalogbadger.Config{
		Path:           cfg.Path,
		BlockCacheSize: cfg.BlockCacheSize.Int64(),
		IndexCacheSize: cfg.IndexCacheSize.Int64(),
	})
}

// CreatePoolManagerClient creates the pool manager client described by cfg.
func CreatePoolManagerClient(cfg PoolManagerConfig) *poolmanager.Client {
	opts := []poolmanager.Option{
		poolmanager.WithTimeout(cfg.Timeout),
		poolmanager.WithDoor(cfg.Door),
	}
	if cfg.Token != "" {
		opts = append(opts, poolmanager.WithToken(cfg.Token))
	}
	return poolmanager.New(cfg.URL, opts...)
}
