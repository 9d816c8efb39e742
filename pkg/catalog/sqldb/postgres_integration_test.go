//go:build integration

package sqldb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/dittomds/pkg/catalog"
	"github.com/marmos91/dittomds/pkg/catalog/catalogtest"
	"github.com/marmos91/dittomds/pkg/catalog/sqldb"
)

func startPostgres(t *testing.T) sqldb.PostgresConfig {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("dmds_test"),
		tcpostgres.WithUsername("dmds_test"),
		tcpostgres.WithPassword("dmds_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return sqldb.PostgresConfig{
		Host:     host,
		Port:     port.Int(),
		Database: "dmds_test",
		User:     "dmds_test",
		Password: "dmds_test",
	}
}

func TestConformance_Postgres(t *testing.T) {
	pg := startPostgres(t)

	catalogtest.RunConformanceSuite(t, func(t *testing.T) catalog.Store {
		s, err := sqldb.New(context.Background(), sqldb.Config{
			Type:     sqldb.DatabaseTypePostgres,
			Postgres: pg,
		})
		require.NoError(t, err)
		t.Cleanup(func() {
			ctx := context.Background()
			entries, _ := s.List(ctx)
			for _, e := range entries {
				_ = s.Delete(ctx, e.FileID)
			}
			_ = s.Close()
		})
		return s
	})
}
