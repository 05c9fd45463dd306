package main

import (
	"fmt"

	"serbench/internal/benchmark"
	"serbench/internal/config"
	"serbench/internal/report"

	"github.com/spf13/cobra"
)

func newRecordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List stored run records",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := config.Current()
			store, err := openStore(s)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, corrupt, err := store.LoadValid(benchmark.MatchPrefix(s.Store.Prefix))
			for _, c := range corrupt {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", c)
			}
			if err != nil {
				return wrapLoadErr(err)
			}
			report.Records(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}
