// Package sqldb is a GORM-backed catalog.Store on SQLite or PostgreSQL.
// PostgreSQL lets several metadata servers share one catalog.
package sqldb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marmos91/dittomds/pkg/catalog"
)

// entryRow is the catalog_entries table.
type entryRow struct {
	FileID       string `gorm:"primaryKey;size:255"`
	Type         int    `gorm:"not null"`
	StorageClass string `gorm:"size:255;not null;default:''"`
	CreatedOnly  bool   `gorm:"not null;default:false"`
	Size         int64  `gorm:"not null;default:0"`
	UpdatedAt    time.Time
}

func (entryRow) TableName() string { return "catalog_entries" }

func toRow(e catalog.Entry) entryRow {
	return entryRow{
		FileID:       e.FileID,
		Type:         int(e.Type),
		StorageClass: e.Storage.StorageClass,
		CreatedOnly:  e.Storage.CreatedOnly,
		Size:         int64(e.Storage.Size),
	}
}

func (r entryRow) entry() catalog.Entry {
	return catalog.Entry{
		FileID: r.FileID,
		Type:   catalog.FileType(r.Type),
		Storage: catalog.StorageInfo{
			StorageClass: r.StorageClass,
			CreatedOnly:  r.CreatedOnly,
			Size:         uint64(r.Size),
		},
	}
}

// Store implements catalog.Store on a SQL database.
type Store struct {
	db     *gorm.DB
	config Config
}

// New opens the database described by cfg and prepares the schema:
// AutoMigrate on SQLite, versioned migrations on PostgreSQL.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog database configuration: %w", err)
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case DatabaseTypeSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// WAL for concurrent readers, and wait instead of failing on a locked file.
		dialector = sqlite.Open(cfg.SQLite.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	case DatabaseTypePostgres:
		if err := runMigrations(ctx, cfg.Postgres.DSN()); err != nil {
			return nil, err
		}
		dialector = postgres.Open(cfg.Postgres.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	switch cfg.Type {
	case DatabaseTypeSQLite:
		if err := db.WithContext(ctx).AutoMigrate(&entryRow{}); err != nil {
			return nil, fmt.Errorf("failed to run database migration: %w", err)
		}
	case DatabaseTypePostgres:
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying database: %w", err)
		}
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	}

	return &Store{db: db, config: cfg}, nil
}

// Get implements catalog.Store.
func (s *Store) Get(ctx context.Context, fileID string) (catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Entry{}, err
	}
	var row entryRow
	err := s.db.WithContext(ctx).Where("file_id = ?", fileID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return catalog.Entry{}, fmt.Errorf("%s: %w", fileID, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("catalog get %s: %w", fileID, err)
	}
	return row.entry(), nil
}

// Put implements catalog.Store. An existing entry is replaced.
func (s *Store) Put(ctx context.Context, e catalog.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	row := toRow(e)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("catalog put %s: %w", e.FileID, err)
	}
	return nil
}

// Delete implements catalog.Store.
func (s *Store) Delete(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("file_id = ?", fileID).Delete(&entryRow{})
	if res.Error != nil {
		return fmt.Errorf("catalog delete %s: %w", fileID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", fileID, catalog.ErrNotFound)
	}
	return nil
}

// List implements catalog.Store. Entries are ordered by file id.
func (s *Store) List(ctx context.Context) ([]catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []entryRow
	if err := s.db.WithContext(ctx).Order("file_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	out := make([]catalog.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entry())
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

// Healthcheck implements catalog.Store.
func (s *Store) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close implements catalog.Store.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Type returns the backend in use.
func (s *Store) Type() DatabaseType { return s.config.Type }
