package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// unreachableBind points at a port nothing listens on so commands exercise
// their daemonless fallbacks.
const unreachableBind = "127.0.0.1:1"

type cliEnv struct {
	baseDir    string
	configPath string
	mediaDir   string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		mediaDir:   filepath.Join(base, "media"),
	}
	if err := os.MkdirAll(env.mediaDir, 0o755); err != nil {
		t.Fatalf("mkdir media dir: %v", err)
	}
	env.writeConfig(t, unreachableBind)
	return env
}

// writeConfig rewrites the environment's config file pointing the daemon API
// client at apiBind.
func (e *cliEnv) writeConfig(t *testing.T, apiBind string) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndatabase_dir = %q\nlog_dir = %q\napi_bind = %q\n",
		filepath.Join(e.baseDir, "db"),
		filepath.Join(e.baseDir, "logs"),
		apiBind,
	)
	if err := os.WriteFile(e.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliEnv) mediaFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.mediaDir, name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
