// Package storetest provides throwaway databases for tests.
package storetest

import (
	"path/filepath"
	"testing"

	"github.com/astro-web3/recipebox/internal/config"
	"github.com/astro-web3/recipebox/internal/infra/store"
)

// OpenSQLite opens a migrated SQLite database in a temp dir.
func OpenSQLite(t testing.TB) *store.DB {
	t.Helper()

	db, err := store.Open(config.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}
