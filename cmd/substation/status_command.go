package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"substation/internal/api"
	"substation/internal/config"
	"substation/internal/library"
	"substation/internal/preflight"
	"substation/internal/provider/fileflows"
	"substation/internal/provider/opensubtitles"
)

func newStatusCommand(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system checks, daemon state, and library counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := state.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := colorEnabled(out)

			fmt.Fprintln(out, sectionHeader("System Checks", colorize))
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := levelOK
				if !result.Passed {
					kind = levelError
				}
				fmt.Fprintln(out, statusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(out)

			daemonStatus := fetchDaemonStatus(cmd.Context(), state)

			fmt.Fprintln(out, sectionHeader("Daemon", colorize))
			renderDaemonSection(out, cfg, daemonStatus, colorize)
			fmt.Fprintln(out)

			return state.withStore(func(store *library.Store) error {
				fmt.Fprintln(out, sectionHeader("Providers", colorize))
				if err := renderProvidersSection(cmd.Context(), out, cfg, store, daemonStatus, colorize); err != nil {
					return err
				}
				fmt.Fprintln(out)

				fmt.Fprintln(out, sectionHeader("Library", colorize))
				return renderLibrarySection(cmd.Context(), out, store, colorize)
			})
		},
	}
}

// fetchDaemonStatus returns nil when no daemon answers at the configured
// bind address.
func fetchDaemonStatus(ctx context.Context, state *appState) *api.DaemonStatus {
	client, err := state.daemonClient()
	if err != nil {
		return nil
	}
	status, err := client.Status(ctx)
	if err != nil {
		return nil
	}
	return status
}

func renderDaemonSection(out io.Writer, cfg *config.Config, status *api.DaemonStatus, colorize bool) {
	if status == nil {
		fmt.Fprintln(out, statusLine("Daemon", levelWarn, "not running", colorize))
		return
	}

	fmt.Fprintln(out, statusLine("Daemon", levelOK, fmt.Sprintf("running (pid %d)", status.PID), colorize))
	fmt.Fprintln(out, statusLine("API", levelInfo, cfg.Paths.APIBind, colorize))

	sweep := fmt.Sprintf("%d sweeps, %d queued", status.Wanted.Sweeps, status.Wanted.Pending)
	if status.Wanted.LastSweep != "" {
		sweep += ", last at " + status.Wanted.LastSweep
	}
	fmt.Fprintln(out, statusLine("Sweep", levelInfo, sweep, colorize))

	for _, run := range status.ActiveRuns {
		fmt.Fprintln(out, statusLine("Active", levelInfo,
			fmt.Sprintf("%s %s (%d/%d)", run.Header, run.Name, run.Value, run.Count), colorize))
	}
}

// renderProvidersSection prefers the daemon's live registry view and falls
// back to configuration plus persisted throttles when the daemon is down.
func renderProvidersSection(ctx context.Context, out io.Writer, cfg *config.Config, store *library.Store, status *api.DaemonStatus, colorize bool) error {
	if status != nil {
		if len(status.Providers) == 0 {
			fmt.Fprintln(out, statusLine("Providers", levelWarn, "none enabled", colorize))
			return nil
		}
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
	}

	var enabled []string
	if cfg.OpenSubtitles.Enabled {
		enabled = append(enabled, opensubtitles.Name)
	}
	if cfg.FileFlows.Enabled {
		enabled = append(enabled, fileflows.Name)
	}
	if len(enabled) == 0 {
		fmt.Fprintln(out, statusLine("Providers", levelWarn, "none enabled", colorize))
		return nil
	}

	throttles, err := store.Throttles(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	banned := make(map[string]library.ProviderThrottle, len(throttles))
	for _, throttle := range throttles {
		if !throttle.Expired(now) {
			banned[throttle.Provider] = throttle
		}
	}

	for _, name := range enabled {
		if throttle, ok := banned[name]; ok {
			message := "throttled until " + throttle.Until.Local().Format(historyTimeFormat)
			if throttle.Reason != "" {
				message += " (" + throttle.Reason + ")"
			}
			fmt.Fprintln(out, statusLine(name, levelWarn, message, colorize))
			continue
		}
		fmt.Fprintln(out, statusLine(name, levelOK, "enabled", colorize))
	}
	return nil
}

func renderLibrarySection(ctx context.Context, out io.Writer, store *library.Store, colorize bool) error {
	summary, err := store.Summarize(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, statusLine("Items", levelInfo, strconv.Itoa(summary.Items), colorize))
	fmt.Fprintln(out, statusLine("Monitored", levelInfo, strconv.Itoa(summary.Monitored), colorize))
	fmt.Fprintln(out, statusLine("Wanted", levelInfo, strconv.Itoa(summary.Wanted), colorize))
	fmt.Fprintln(out, statusLine("Subtitles", levelInfo, strconv.Itoa(summary.Subtitles), colorize))
	return nil
}
