package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizePathMappings(); err != nil {
		return err
	}
	c.normalizeOpenSubtitles()
	c.normalizeFileFlows()
	c.normalizeWanted()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DatabaseDir) == "" {
		c.Paths.DatabaseDir = defaultDatabaseDir
	}
	if c.Paths.DatabaseDir, err = expandPath(c.Paths.DatabaseDir); err != nil {
		return fmt.Errorf("paths.database_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizePathMappings() error {
	if len(c.PathMappings) == 0 {
		return nil
	}
	mappings := make([]PathMapping, 0, len(c.PathMappings))
	for i, mapping := range c.PathMappings {
		from := strings.TrimSpace(mapping.From)
		to := strings.TrimSpace(mapping.To)
		if from == "" && to == "" {
			continue
		}
		if from == "" || to == "" {
			return fmt.Errorf("path_mapping[%d]: both from and to must be set", i)
		}
		mappings = append(mappings, PathMapping{From: from, To: to})
	}
	c.PathMappings = mappings
	return nil
}

// envFallback substitutes the named environment variable when the config
// file left the value blank.
func envFallback(current, key string) string {
	if current != "" {
		return current
	}
	return strings.TrimSpace(os.Getenv(key))
}

func (c *Config) normalizeOpenSubtitles() {
	c.OpenSubtitles.APIKey = envFallback(strings.TrimSpace(c.OpenSubtitles.APIKey), "OPENSUBTITLES_API_KEY")
	c.OpenSubtitles.UserToken = envFallback(strings.TrimSpace(c.OpenSubtitles.UserToken), "OPENSUBTITLES_USER_TOKEN")
	c.OpenSubtitles.UserAgent = strings.TrimSpace(c.OpenSubtitles.UserAgent)
	if c.OpenSubtitles.UserAgent == "" {
		c.OpenSubtitles.UserAgent = defaultOpenSubtitlesUserAgent
	}
	c.OpenSubtitles.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenSubtitles.BaseURL), "/")
	if c.OpenSubtitles.BaseURL == "" {
		c.OpenSubtitles.BaseURL = defaultOpenSubtitlesBaseURL
	}
	if c.OpenSubtitles.RequestInterval <= 0 {
		c.OpenSubtitles.RequestInterval = defaultRequestInterval
	}
	if c.OpenSubtitles.ThrottleMinutes <= 0 {
		c.OpenSubtitles.ThrottleMinutes = defaultThrottleMinutes
	}
	if c.OpenSubtitles.Priority <= 0 {
		c.OpenSubtitles.Priority = defaultOpenSubtitlesPriority
	}
}

func (c *Config) normalizeFileFlows() {
	c.FileFlows.URL = strings.TrimRight(strings.TrimSpace(c.FileFlows.URL), "/")
	c.FileFlows.APIKey = envFallback(strings.TrimSpace(c.FileFlows.APIKey), "FILEFLOWS_API_KEY")
	c.FileFlows.WorkflowID = strings.TrimSpace(c.FileFlows.WorkflowID)
	if c.FileFlows.TimeoutSeconds <= 0 {
		c.FileFlows.TimeoutSeconds = defaultFileFlowsTimeoutSeconds
	}
	c.FileFlows.Languages = dedupLanguages(c.FileFlows.Languages)
	if len(c.FileFlows.Languages) == 0 {
		c.FileFlows.Languages = []string{"en"}
	}
	if c.FileFlows.ThrottleMinutes <= 0 {
		c.FileFlows.ThrottleMinutes = defaultThrottleMinutes
	}
	if c.FileFlows.Priority <= 0 {
		c.FileFlows.Priority = defaultFileFlowsPriority
	}
}

// dedupLanguages lowercases, trims, and uniques a language list while
// preserving order.
func dedupLanguages(values []string) []string {
	langs := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, lang := range values {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		langs = append(langs, normalized)
	}
	return langs
}

func (c *Config) normalizeWanted() {
	if c.Wanted.ScanInterval <= 0 {
		c.Wanted.ScanInterval = defaultScanIntervalMinutes
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format != "json" {
		format = "console"
	}
	c.Logging.Format = format

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
