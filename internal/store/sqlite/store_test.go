// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Phairoj-Ja/student-score-web/internal/store"
	"github.com/Phairoj-Ja/student-score-web/internal/store/storetest"
)

// setupTestDB creates an in-memory SQLite database with the project migrations applied
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(&store.DBConfig{DSN: ":memory:", Type: store.DBTypeSQLite})
	require.NoError(t, err, "Failed to create store")

	err = s.ApplyMigrations("../../../migrations")
	require.NoError(t, err, "Failed to apply migrations")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (store.RecordStore, func()) {
		return setupTestDB(t)
	})
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	assert.NoError(t, s.ApplyMigrations("../../../migrations"))
}

func TestTranslateToSQLite(t *testing.T) {
	in := `CREATE TABLE t (id BIGSERIAL PRIMARY KEY, score DOUBLE PRECISION, n BIGINT);`
	out := translateToSQLite(in)

	assert.Equal(t, `CREATE TABLE t (id INTEGER PRIMARY KEY AUTOINCREMENT, score REAL, n INTEGER);`, out)
}
