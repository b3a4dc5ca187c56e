package app

import (
	"fmt"
	"strings"

	"github.com/Phairoj-Ja/student-score-web/internal/store"
	"github.com/Phairoj-Ja/student-score-web/internal/store/postgres"
	"github.com/Phairoj-Ja/student-score-web/internal/store/sqlite"
)

func NewStore(dsn string) (store.RecordStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}

	dbType := store.DBTypeSQLite
	if strings.HasPrefix(dsn, "postgres") {
		dbType = store.DBTypePostgres
	}
	config := &store.DBConfig{DSN: dsn, Type: dbType}

	switch dbType {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(config)
	case store.DBTypeSQLite:
		return sqlite.NewSQLiteStore(config)
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}
