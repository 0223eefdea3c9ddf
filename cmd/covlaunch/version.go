package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"covlaunch/core/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the covlaunch version",
		Args:  cobra.NoArgs,
		// Skips config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "covlaunch %s (core %s, summary %s)\n", version.Version, version.CoreVersion, version.SummaryVersion)
		},
	}
}
