package main

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List launch types and their delegates per mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Type", "Name", "Mode", "Delegates")
			for _, id := range reg.IDs() {
				lt, err := reg.Get(id)
				if err != nil {
					return err
				}
				for _, mode := range lt.Modes() {
					var delegates []string
					for _, ref := range lt.DelegatesFor(mode) {
						delegates = append(delegates, ref.ID)
					}
					if err := table.Append([]string{lt.ID(), lt.Name(), string(mode), strings.Join(delegates, ", ")}); err != nil {
						return err
					}
				}
			}
			return table.Render()
		},
	}
}
