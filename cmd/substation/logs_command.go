package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"substation/internal/daemonrun"
	"substation/internal/logs"
)

func newLogsCommand(state *appState) *cobra.Command {
	var (
		lineCount int
		follow    bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := state.ensureConfig()
			if err != nil {
				return err
			}
			logPath := daemonrun.CurrentLogPath(cfg)
			out := cmd.OutOrStdout()

			lines, offset, err := logs.Tail(logPath, lineCount)
			if err != nil {
				return err
			}
			if len(lines) == 0 && !follow {
				fmt.Fprintln(out, "No log output yet")
				return nil
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			err = logs.Follow(cmd.Context(), logPath, offset, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVar(&lineCount, "lines", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVar(&follow, "follow", false, "Keep printing new lines until interrupted")

	return cmd
}
