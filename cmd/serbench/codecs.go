package main

import (
	"serbench/internal/codec"
	"serbench/internal/dataset"
	"serbench/internal/report"

	"github.com/spf13/cobra"
)

func newCodecsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codecs",
		Short: "List available codecs",
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := dataset.Schema("small")
			if err != nil {
				return err
			}
			kinds := make(map[string]string)
			for _, name := range codecChoices() {
				c, err := codec.Prepare(name, sch)
				if err != nil {
					return err
				}
				kinds[name] = c.Kind().String()
			}
			report.Codecs(cmd.OutOrStdout(), kinds)
			return nil
		},
	}
}
