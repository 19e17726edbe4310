package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"substation/internal/language"
	"substation/internal/library"
)

func newAddCommand(state *appState) *cobra.Command {
	var (
		titleFlag   string
		yearFlag    int
		kindFlag    string
		languages   string
		unmonitored bool
	)

	cmd := &cobra.Command{
		Use:   "add <media-path>",
		Short: "Track a media file and the subtitle languages it needs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(args[0])
			if path == "" {
				return fmt.Errorf("media path is required")
			}
			kind, ok := library.ParseKind(kindFlag)
			if !ok {
				return fmt.Errorf("unknown media kind %q (expected movie or episode)", kindFlag)
			}
			wants, err := parseLanguageList(languages)
			if err != nil {
				return err
			}
			title := strings.TrimSpace(titleFlag)
			if title == "" {
				title = titleFromPath(path)
			}

			return state.withStore(func(store *library.Store) error {
				item, err := store.Add(cmd.Context(), title, yearFlag, kind, path, language.FormatMissing(wants))
				if err != nil {
					return err
				}
				if unmonitored {
					if err := store.SetMonitored(cmd.Context(), item.ID, false); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added item %d: %s wanting %s\n",
					item.ID, itemTitle(item), strings.Join(missingTags(item), ", "))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&titleFlag, "title", "", "Display title (defaults to the file name)")
	cmd.Flags().IntVar(&yearFlag, "year", 0, "Release year")
	cmd.Flags().StringVar(&kindFlag, "kind", "movie", "Media kind: movie or episode")
	cmd.Flags().StringVar(&languages, "languages", "en", "Comma-separated language tags to acquire, for example \"en,es:hi\"")
	cmd.Flags().BoolVar(&unmonitored, "unmonitored", false, "Track the item without including it in daemon sweeps")

	return cmd
}

func newMonitorCommand(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:       "monitor <item-id> <on|off>",
		Short:     "Include or exclude an item from daemon sweeps",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			var monitored bool
			switch strings.ToLower(strings.TrimSpace(args[1])) {
			case "on":
				monitored = true
			case "off":
				monitored = false
			default:
				return fmt.Errorf("expected \"on\" or \"off\", got %q", args[1])
			}

			return state.withStore(func(store *library.Store) error {
				item, err := store.GetByID(cmd.Context(), itemID)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("library item %d not found", itemID)
				}
				if err := store.SetMonitored(cmd.Context(), itemID, monitored); err != nil {
					return err
				}
				label := "monitored"
				if !monitored {
					label = "unmonitored"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d (%s) is now %s\n", itemID, itemTitle(item), label)
				return nil
			})
		},
	}
}

func newRemoveCommand(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Stop tracking a library item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return state.withStore(func(store *library.Store) error {
				removed, err := store.Remove(cmd.Context(), itemID)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("library item %d not found", itemID)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed item %d\n", itemID)
				return nil
			})
		},
	}
}

func parseItemID(arg string) (int64, error) {
	itemID, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || itemID <= 0 {
		return 0, fmt.Errorf("invalid item id %q", arg)
	}
	return itemID, nil
}
