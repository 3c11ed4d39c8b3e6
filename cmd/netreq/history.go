package main

import (
	"github.com/spf13/cobra"
)

func newHistoryCmd(state *cliState) *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:         "history",
		Short:       "List recently recorded request outcomes",
		Args:        cobra.NoArgs,
		Annotations: runnerAnnotation,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := state.runner.History(limit)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), output, entries)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to list (0 for all)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output encoding: json or yaml")
	return cmd
}
