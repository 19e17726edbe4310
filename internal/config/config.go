package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.sample.toml
var sampleConfig string

const defaultConfigLocation = "~/.config/substation/config.toml"

// Paths holds the directories Substation writes to and the daemon bind address.
type Paths struct {
	DatabaseDir string `toml:"database_dir"`
	LogDir      string `toml:"log_dir"`
	APIBind     string `toml:"api_bind"`
}

// PathMapping rewrites a stored media path prefix to a local mount point.
// Mappings apply in order; the longest matching From prefix wins.
type PathMapping struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// OpenSubtitles configures the direct REST provider.
type OpenSubtitles struct {
	Enabled         bool   `toml:"enabled"`
	APIKey          string `toml:"api_key"`
	UserAgent       string `toml:"user_agent"`
	UserToken       string `toml:"user_token"`
	BaseURL         string `toml:"base_url"`
	RequestInterval int    `toml:"request_interval"`
	ThrottleMinutes int    `toml:"throttle_minutes"`
	Priority        int    `toml:"priority"`
}

// FileFlows configures the job-based provider.
type FileFlows struct {
	Enabled         bool     `toml:"enabled"`
	URL             string   `toml:"url"`
	APIKey          string   `toml:"api_key"`
	WorkflowID      string   `toml:"workflow_id"`
	TimeoutSeconds  int      `toml:"timeout_seconds"`
	Languages       []string `toml:"languages"`
	ThrottleMinutes int      `toml:"throttle_minutes"`
	Priority        int      `toml:"priority"`
}

// Wanted configures the daemon's sweep over items missing subtitles.
type Wanted struct {
	ScanInterval  int  `toml:"scan_interval"`
	MonitoredOnly bool `toml:"monitored_only"`
}

// Notifications configures ntfy pushes.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Acquired       bool   `toml:"acquired"`
	Errors         bool   `toml:"errors"`
}

// Logging configures log output format, level, and retention.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config is the full configuration tree, one struct per TOML section.
type Config struct {
	Paths         Paths         `toml:"paths"`
	PathMappings  []PathMapping `toml:"path_mapping"`
	OpenSubtitles OpenSubtitles `toml:"opensubtitles"`
	FileFlows     FileFlows     `toml:"fileflows"`
	Wanted        Wanted        `toml:"wanted"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the expanded default config file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigLocation)
}

// Load reads, normalizes, and validates the configuration. It reports the
// path it settled on and whether a file actually existed there; when none
// does, the built-in defaults apply. An explicit non-empty path is used as
// given, otherwise the default location and then ./substation.toml are tried.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		raw, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("decode config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolvePath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		switch _, err := os.Stat(expanded); {
		case err == nil:
			return expanded, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return expanded, false, nil
		default:
			return "", false, fmt.Errorf("stat config file: %w", err)
		}
	}

	fallback, err := expandPath(defaultConfigLocation)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("substation.toml")
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{fallback, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return fallback, false, nil
}

// EnsureDirectories creates the database and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DatabaseDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the absolute path of the SQLite library database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DatabaseDir, "substation.db")
}

// expandPath resolves a leading tilde against the home directory and makes
// the result absolute. Empty input stays empty.
func expandPath(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(raw, "~"); ok {
		if rest == "" || rest[0] == '/' || rest[0] == '\\' {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home directory: %w", err)
			}
			raw = filepath.Join(home, strings.TrimLeft(rest, `/\`))
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(raw))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", raw, err)
	}
	return absolute, nil
}

// ExpandPath applies the same tilde and absolute-path rules Load uses, for
// callers handling user-supplied paths.
func ExpandPath(raw string) (string, error) {
	return expandPath(raw)
}

// CreateSample writes the embedded sample configuration to path, creating
// parent directories. An existing file is overwritten; guarding against that
// is the caller's concern.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	return nil
}
