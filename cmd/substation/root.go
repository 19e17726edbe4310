package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	state := newAppState(&configFlag)

	root := &cobra.Command{
		Use:           "substation",
		Short:         "Subtitle acquisition for your media library",
		Long:          "Substation tracks which subtitle languages your library is missing and acquires them from configured providers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsConfigLoad(cmd) {
				return nil
			}
			_, err := state.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to the configuration file")

	root.AddCommand(
		newAcquireCommand(state),
		newWantedCommand(state),
		newHistoryCommand(state),
		newStatusCommand(state),
		newLogsCommand(state),
		newAddCommand(state),
		newMonitorCommand(state),
		newRemoveCommand(state),
		newConfigCommand(state),
		newDaemonCommand(state),
	)

	return root
}
