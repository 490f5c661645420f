package testsupport

import (
	"context"
	"testing"

	"voicetag/internal/config"
	"voicetag/internal/store"
)

// MustOpenStore opens a run-history store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), cfg.History.Path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
