package main

import (
	"fmt"
	"text/tabwriter"

	"serbench/internal/codec"
	"serbench/internal/config"
	"serbench/internal/dataset"
	benchErrors "serbench/internal/errors"
	"serbench/internal/telemetry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that codecs round-trip every dataset",
		Long: `Encodes and decodes each dataset with each codec and checks that the decoded
value equals the original and that the reported size matches the encoding.`,
		RunE: runValidate,
	}
	cmd.Flags().StringSlice("codecs", nil, "Codecs to check (default all)")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	s := config.Current()
	names, _ := cmd.Flags().GetStringSlice("codecs")
	if len(names) == 0 {
		names = codecChoices()
	}

	datasets, err := dataset.GenerateAll(s.Sizes, s.Dataset)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODEC\tSIZE\tRESULT")
	failed := 0
	for _, name := range names {
		for _, ds := range datasets {
			result := "ok"
			if err := verify(name, ds); err != nil {
				failed++
				result = "FAIL: " + err.Error()
				telemetry.LogError("Round trip failed", err, zap.String("codec", name), zap.String("size", ds.Name))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, ds.Name, result)
		}
	}
	tw.Flush()

	if failed > 0 {
		return fmt.Errorf("%d codec checks failed: %w", failed, benchErrors.ErrCodecUnavailable)
	}
	return nil
}

func verify(name string, ds dataset.Dataset) error {
	c, err := codec.Prepare(name, ds.Schema)
	if err != nil {
		return err
	}
	return codec.VerifyRoundTrip(c, ds.Value)
}
