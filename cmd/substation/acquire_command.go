package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"substation/internal/acquire"
	"substation/internal/daemonctl"
	"substation/internal/library"
	"substation/internal/logging"
)

func newAcquireCommand(state *appState) *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "acquire <item-id>",
		Short: "Search providers and download missing subtitles for one item",
		Long: "Acquire hands the item to a running daemon when one is reachable, so the\n" +
			"download shares the daemon's provider throttle state. With --direct (or when\n" +
			"no daemon is running) the search runs in this process instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseItemID(args[0])
			if err != nil {
				return err
			}

			if !direct {
				handled, err := acquireViaDaemon(cmd, state, itemID)
				if handled || err != nil {
					return err
				}
			}

			return acquireInProcess(cmd, state, itemID)
		},
	}

	cmd.Flags().BoolVar(&direct, "direct", false, "Run the acquisition in this process even when a daemon is running")

	return cmd
}

// acquireViaDaemon queues the item on a running daemon. It reports handled
// when the daemon accepted or rejected the request; an unreachable daemon
// leaves the request unhandled so the caller can fall back to an in-process
// run.
func acquireViaDaemon(cmd *cobra.Command, state *appState, itemID int64) (bool, error) {
	client, err := state.daemonClient()
	if err != nil {
		// No bind address configured; nothing to hand the item to.
		return false, nil
	}
	ack, err := client.Acquire(cmd.Context(), itemID)
	if err != nil {
		if errors.Is(err, daemonctl.ErrDaemonUnreachable) {
			return false, nil
		}
		return true, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Queued item %d on the daemon; run \"substation history\" to follow the result\n", ack.ItemID)
	return true, nil
}

func acquireInProcess(cmd *cobra.Command, state *appState, itemID int64) error {
	cfg, err := state.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}

	return state.withStore(func(store *library.Store) error {
		registry, err := acquire.BuildRegistry(cfg, store, logger)
		if err != nil {
			return err
		}
		results, err := acquire.New(cfg, store, registry, logger).Acquire(cmd.Context(), itemID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No subtitles were acquired; run \"substation history\" for details")
			return nil
		}
		rows := make([][]string, 0, len(results))
		for _, result := range results {
			rows = append(rows, []string{
				result.Provider,
				result.Want.Tag(),
				result.Path,
			})
		}
		fmt.Fprintln(out, renderTable([]string{"Provider", "Language", "Path"}, rows))
		return nil
	})
}
