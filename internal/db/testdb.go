package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB returns a schema-ready database in a file under t.TempDir, so
// tests run with the same pragmas and connection pool as a served ledger.
// It is closed when the test ends.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "eventstock-test.db")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("opening test database %s: %v", path, err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("applying schema to test database: %v", err)
	}
	return database
}
