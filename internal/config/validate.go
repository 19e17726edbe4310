package config

import (
	"errors"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOpenSubtitles(); err != nil {
		return err
	}
	if err := c.validateFileFlows(); err != nil {
		return err
	}
	if err := c.validateWanted(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DatabaseDir) == "" {
		return errors.New("paths.database_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateOpenSubtitles() error {
	if !c.OpenSubtitles.Enabled {
		return nil
	}
	if c.OpenSubtitles.APIKey == "" {
		return errors.New("opensubtitles.api_key must be set when opensubtitles.enabled is true")
	}
	if c.OpenSubtitles.UserAgent == "" {
		return errors.New("opensubtitles.user_agent must be set when opensubtitles.enabled is true")
	}
	if c.OpenSubtitles.BaseURL == "" {
		return errors.New("opensubtitles.base_url must be set when opensubtitles.enabled is true")
	}
	if c.OpenSubtitles.RequestInterval <= 0 {
		return errors.New("opensubtitles.request_interval must be positive")
	}
	return nil
}

func (c *Config) validateFileFlows() error {
	if !c.FileFlows.Enabled {
		return nil
	}
	if c.FileFlows.URL == "" {
		return errors.New("fileflows.url must be set when fileflows.enabled is true")
	}
	if c.FileFlows.APIKey == "" {
		return errors.New("fileflows.api_key must be set when fileflows.enabled is true")
	}
	if c.FileFlows.WorkflowID == "" {
		return errors.New("fileflows.workflow_id must be set when fileflows.enabled is true")
	}
	if c.FileFlows.TimeoutSeconds <= 0 {
		return errors.New("fileflows.timeout_seconds must be positive")
	}
	if len(c.FileFlows.Languages) == 0 {
		return errors.New("fileflows.languages must list at least one language")
	}
	return nil
}

func (c *Config) validateWanted() error {
	if c.Wanted.ScanInterval <= 0 {
		return errors.New("wanted.scan_interval must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}
