//go:build integration

package database

import (
	"context"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NewTestPostgres starts a disposable PostgreSQL container, applies
// migrations and returns a pool connected to it. The container is
// terminated when the test finishes.
func NewTestPostgres(t *testing.T, migrations fs.FS) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("addressbook"),
		tcpostgres.WithUsername("addressbook"),
		tcpostgres.WithPassword("addressbook"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect to postgres container: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := RunMigrations(ctx, pool, migrations, slog.Default()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return pool
}
