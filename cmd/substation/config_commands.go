package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"substation/internal/config"
)

func newConfigCommand(state *appState) *cobra.Command {
	group := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	group.AddCommand(newConfigInitCommand(), newConfigValidateCommand(state))
	return group
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"standalone": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(targetPath)
			if path == "" {
				fallback, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = fallback
			}
			expanded, err := config.ExpandPath(path)
			if err != nil {
				return err
			}
			if !overwrite {
				if _, err := os.Stat(expanded); err == nil {
					return fmt.Errorf("%s already exists (use --overwrite to replace it)", expanded)
				}
			}
			if err := config.CreateSample(expanded); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", expanded)
			fmt.Fprintln(out, "Enable a provider in the [opensubtitles] or [fileflows] section before adding items.")
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "path", "", "Where to write the sample (defaults to the standard location)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")

	return cmd
}

func newConfigValidateCommand(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the configuration loads cleanly",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := state.ensureConfig(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if state.configExists {
				fmt.Fprintf(out, "Configuration at %s is valid\n", state.configPath)
			} else {
				fmt.Fprintf(out, "No configuration file found at %s; built-in defaults apply\n", state.configPath)
			}
			return nil
		},
	}
}
