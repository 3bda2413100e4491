// Package dbtest provides a disposable PostgreSQL instance for
// integration tests which need a real catalog database.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/hbomb79/Marquee/internal/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	Image    = "docker.io/postgres:14.1-alpine"
	User     = "postgres"
	Password = "postgres"
	Name     = "MARQUEE_TEST_DB"
)

// StartPostgres spawns a PostgreSQL container and returns a database manager
// connected to it, with all migrations (including the seed catalog) applied.
// The container and connection are torn down when the test completes.
//
// The test is skipped in short mode, or if docker is not available.
func StartPostgres(t *testing.T) database.Manager {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := postgres.RunContainer(ctx,
		testcontainers.WithImage(Image),
		postgres.WithDatabase(Name),
		postgres.WithUsername(User),
		postgres.WithPassword(Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Logf("WARNING: failed to terminate PostgreSQL container: %s", err)
		}
	})

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	manager := database.New()
	err = manager.Connect(ctx, database.DatabaseConfig{
		User:            User,
		Password:        Password,
		Name:            Name,
		Host:            host,
		Port:            port.Port(),
		ConnectAttempts: 5,
		RetryInterval:   time.Second,
	})
	require.NoError(t, err, "failed to connect to PostgreSQL container")
	t.Cleanup(func() { _ = manager.Close() })

	return manager
}
