package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"substation/internal/library"
)

func newWantedCommand(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "wanted",
		Short: "List library items still missing subtitle languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.withStore(func(store *library.Store) error {
				items, err := store.ListWanted(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No items are waiting on subtitles")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						itemTitle(item),
						string(item.Kind),
						strings.Join(missingTags(item), ", "),
						yesNo(item.Monitored),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Kind", "Missing", "Monitored"},
					rows,
					1,
				))
				return nil
			})
		},
	}
}
