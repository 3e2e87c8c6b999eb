package testsupport

import (
	"testing"

	"pokedex/internal/config"
	"pokedex/internal/history"
)

// MustOpenHistory opens the configured history.Store and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
