package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteMediaFile creates a small placeholder media file under dir and returns
// its absolute path. Parent directories are created as needed.
func WriteMediaFile(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
