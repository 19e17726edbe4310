package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"substation/internal/library"
)

const historyTimeFormat = "2006-01-02 15:04"

func newHistoryCommand(state *appState) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent acquisition history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}
			return state.withStore(func(store *library.Store) error {
				entries, err := store.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No history recorded yet")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entry.CreatedAt.Local().Format(historyTimeFormat),
						strconv.FormatInt(entry.ItemID, 10),
						entry.Action,
						entry.Provider,
						entry.Language,
						entry.Message,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"When", "Item", "Action", "Provider", "Language", "Message"},
					rows,
					2,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum number of history events to show")

	return cmd
}
