package main

import (
	"errors"
	"fmt"
	"time"

	"serbench/internal/benchmark"
	"serbench/internal/config"
	benchErrors "serbench/internal/errors"
	"serbench/internal/report"

	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare stored runs across runtime versions",
		Long: `Loads every stored run record, groups them by runtime version and compares
the selected series (operation and codec role) of each version against the
oldest one. Only records that used the same codec in that role are compared;
the others are listed as excluded. Corrupt records are reported and skipped
unless --strict is set.`,
		RunE: runCompare,
	}
	cmd.Flags().String("operation", "", "Operation to compare: serialization or deserialization")
	cmd.Flags().String("role", "", "Codec role to compare: baseline or candidate")
	cmd.Flags().String("codec", "", "Codec expected in the compared role (default: that of the newest record)")
	cmd.Flags().StringSlice("sizes", nil, "Dataset sizes to compare (default small,medium,large)")
	cmd.Flags().Bool("strict", false, "Fail on the first corrupt record")
	cmd.Flags().Bool("render", false, "Render the comparison Markdown in the terminal")
	return cmd
}

// loadEntries reads the records under the configured prefix. Strict loading
// surfaces the first corrupt record; otherwise corrupt records are skipped
// and their keys returned.
func loadEntries(s config.Settings, strict bool) ([]benchmark.Entry, []string, error) {
	store, err := openStore(s)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	match := benchmark.MatchPrefix(s.Store.Prefix)
	if strict {
		entries, err := store.LoadAll(match)
		if err != nil {
			return nil, nil, wrapLoadErr(err)
		}
		return entries, nil, nil
	}

	entries, corrupt, err := store.LoadValid(match)
	var skipped []string
	for _, c := range corrupt {
		skipped = append(skipped, c.Key)
	}
	if err != nil {
		return nil, skipped, wrapLoadErr(err)
	}
	return entries, skipped, nil
}

func wrapLoadErr(err error) error {
	if errors.Is(err, benchErrors.ErrNoRecordsFound) {
		return fmt.Errorf("no benchmark records found, run 'serbench run' first: %w", err)
	}
	return fmt.Errorf("failed to load run records: %w", err)
}

func runCompare(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	s := config.Current()
	strict, _ := cmd.Flags().GetBool("strict")
	sizes, _ := cmd.Flags().GetStringSlice("sizes")

	entries, skipped, err := loadEntries(s, strict)
	report.Skipped(out, skipped)
	if err != nil {
		return err
	}

	mr, err := benchmark.CompareRecords(entries, s.Series, sizes)
	if err != nil {
		return fmt.Errorf("cannot compare runs: %w", err)
	}

	report.ConsoleComparison(out, mr, s.Series)

	latest := entries[len(entries)-1]
	if s.Report.JSON {
		data, err := report.ComparisonJSON(mr, report.Meta{
			GeneratedAt: time.Now().UTC(),
			Environment: latest.Record.Environment,
			Series:      s.Series,
			Skipped:     skipped,
		})
		if err != nil {
			return err
		}
		path, err := report.WriteFile(s.Report.Dir, report.ComparisonJSONFile(latest.Key), data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nComparison report written to %s\n", path)
	}

	if s.Report.Markdown {
		md := report.ComparisonMarkdown(mr, s.Series)
		path, err := report.WriteFile(s.Report.Dir, report.ComparisonFile(latest.Key), []byte(md))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Comparison summary written to %s\n", path)

		render, _ := cmd.Flags().GetBool("render")
		if render || s.Report.Render {
			return printRendered(cmd, md)
		}
	}
	return nil
}
