package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"covlaunch/core/execdata"
)

func newCleanCmd(a *app) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete recorded execution data files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := execdata.New(a.cfg.ExecData.Dir)
			if list {
				return listExecData(cmd, files)
			}
			n, err := files.Clean()
			if err != nil {
				return err
			}
			a.logger.Debug("execution data cleaned", "dir", a.cfg.ExecData.Dir, "removed", n)
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d execution data file(s) from %s\n", n, a.cfg.ExecData.Dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list files instead of deleting them")
	return cmd
}

func listExecData(cmd *cobra.Command, files *execdata.Files) error {
	paths, err := files.List()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("File", "Bytes", "Modified")
	for _, p := range paths {
		size, modified := "-", "-"
		if info, err := os.Stat(p); err == nil {
			size = strconv.FormatInt(info.Size(), 10)
			modified = info.ModTime().UTC().Format("2006-01-02 15:04:05")
		}
		if err := table.Append([]string{filepath.Base(p), size, modified}); err != nil {
			return err
		}
	}
	return table.Render()
}
