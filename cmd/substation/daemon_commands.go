package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"substation/internal/daemonctl"
	"substation/internal/daemonrun"
)

const (
	daemonStartTimeout = 10 * time.Second
	daemonStopTimeout  = 10 * time.Second
)

func newDaemonCommand(state *appState) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the background daemon",
	}

	daemonCmd.AddCommand(newDaemonRunCommand(state))
	daemonCmd.AddCommand(newDaemonStartCommand(state))
	daemonCmd.AddCommand(newDaemonStopCommand(state))
	daemonCmd.AddCommand(newDaemonStatusCommand(state))

	return daemonCmd
}

func newDaemonRunCommand(state *appState) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := state.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level for this run")

	return cmd
}

func newDaemonStartCommand(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := state.ensureConfig()
			if err != nil {
				return err
			}
			executable, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			result, err := daemonctl.EnsureStarted(
				cmd.Context(),
				cfg,
				executable,
				daemonctl.LaunchOptions{ConfigPath: state.flagValue()},
				daemonStartTimeout,
			)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.State == daemonctl.StartStateAlreadyRunning {
				fmt.Fprintln(out, "Daemon is already running")
				return nil
			}
			fmt.Fprintln(out, "Daemon started")
			return nil
		},
	}
}

func newDaemonStopCommand(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := state.ensureConfig()
			if err != nil {
				return err
			}
			err = daemonctl.StopProcess(cmd.Context(), cfg, daemonStopTimeout)
			if errors.Is(err, daemonctl.ErrNotRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
			return nil
		},
	}
}

func newDaemonStatusCommand(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon runtime state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := state.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := colorEnabled(out)

			client, err := state.daemonClient()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if errors.Is(err, daemonctl.ErrDaemonUnreachable) {
				fmt.Fprintln(out, statusLine("Daemon", levelWarn, "not running", colorize))
				return nil
			}
			if err != nil {
				return err
			}

			renderDaemonSection(out, cfg, status, colorize)
			for _, prov := range status.Providers {
				if prov.Throttled {
					message := "throttled until " + prov.ThrottledUntil
					if prov.Reason != "" {
						message += " (" + prov.Reason + ")"
					}
					fmt.Fprintln(out, statusLine(prov.Name, levelWarn, message, colorize))
					continue
				}
				fmt.Fprintln(out, statusLine(prov.Name, levelOK, "ready", colorize))
			}
			return nil
		},
	}
}
