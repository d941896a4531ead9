package testsupport

import (
	"path/filepath"
	"testing"

	"dubtrack/internal/jobs"
)

// MustOpenStore opens a jobs.Store on a temp database and registers cleanup.
func MustOpenStore(t testing.TB) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
