package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"substation/internal/config"
	"substation/internal/daemonctl"
	"substation/internal/library"
)

// appState carries lazily-loaded configuration shared by all
// subcommands. The config file is read at most once per invocation.
type appState struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newAppState(configFlag *string) *appState {
	return &appState{configFlag: configFlag}
}

func (s *appState) ensureConfig() (*config.Config, error) {
	s.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(s.flagValue())
		if err != nil {
			s.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			s.configErr = err
			return
		}
		s.config = cfg
		s.configPath = path
		s.configExists = exists
	})
	return s.config, s.configErr
}

func (s *appState) flagValue() string {
	if s.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*s.configFlag)
}

// withStore opens the library store for the duration of fn and closes it
// afterwards.
func (s *appState) withStore(fn func(*library.Store) error) error {
	cfg, err := s.ensureConfig()
	if err != nil {
		return err
	}
	store, err := library.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// daemonClient builds an API client for the configured daemon bind address.
func (s *appState) daemonClient() (*daemonctl.Client, error) {
	cfg, err := s.ensureConfig()
	if err != nil {
		return nil, err
	}
	return daemonctl.NewClient(cfg)
}

// skipsConfigLoad reports whether cmd or any of its ancestors opted out
// of configuration loading via the standalone annotation.
func skipsConfigLoad(cmd *cobra.Command) bool {
	for node := cmd; node != nil; node = node.Parent() {
		if node.Annotations["standalone"] == "true" {
			return true
		}
	}
	return false
}
