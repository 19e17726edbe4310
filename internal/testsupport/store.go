package testsupport

import (
	"context"
	"testing"

	"substation/internal/config"
	"substation/internal/library"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddMovie creates a monitored movie item for tests using the provided store.
func AddMovie(t testing.TB, store *library.Store, title, path, missing string) *library.Item {
	t.Helper()

	item, err := store.Add(context.Background(), title, 0, library.KindMovie, path, missing)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return item
}
