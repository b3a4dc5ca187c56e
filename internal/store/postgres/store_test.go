package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Phairoj-Ja/student-score-web/internal/store"
	"github.com/Phairoj-Ja/student-score-web/internal/store/storetest"
)

// setupTestDB starts a throwaway Postgres container and applies migrations
func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStore(&store.DBConfig{DSN: dsn, Type: store.DBTypePostgres})
	require.NoError(t, err, "Failed to create store")

	require.NoError(t, s.ApplyMigrations("../../../migrations"), "Failed to apply migrations")

	cleanup := func() {
		s.Close()
		container.Terminate(ctx)
	}

	return s, cleanup
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container tests are skipped in short mode")
	}

	s, cleanup := setupTestDB(t)
	defer cleanup()

	storetest.Run(t, func(t *testing.T) (store.RecordStore, func()) {
		_, err := s.DB.Exec(`TRUNCATE scores, courses RESTART IDENTITY`)
		require.NoError(t, err, "Failed to reset tables")
		return s, func() {}
	})
}
