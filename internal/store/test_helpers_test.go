package store

import (
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh sqlite store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

const widgetTable = `CREATE TABLE widget (id TEXT PRIMARY KEY, size INTEGER NOT NULL)`
