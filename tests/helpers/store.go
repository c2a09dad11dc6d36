// Package helpers provides shared test fixtures.
package helpers

import (
	"path/filepath"
	"testing"

	"github.com/teaminsight/reflection/store"
)

// NewTestSQLiteStore creates a migrated store backed by a per-test
// database file.
func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "reflection_test.db")
	s, err := store.NewSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
