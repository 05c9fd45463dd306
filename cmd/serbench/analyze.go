package main

import (
	"fmt"

	"serbench/internal/benchmark"
	"serbench/internal/config"
	benchErrors "serbench/internal/errors"
	"serbench/internal/report"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [key]",
		Short: "Analyze a stored run (the latest one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	cmd.Flags().Bool("render", false, "Render the analysis Markdown in the terminal")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	s := config.Current()

	entries, _, err := loadEntries(s, false)
	if err != nil {
		return err
	}

	entry := entries[len(entries)-1]
	if len(args) == 1 {
		found := false
		for _, e := range entries {
			if e.Key == args[0] {
				entry, found = e, true
				break
			}
		}
		if !found {
			return fmt.Errorf("record %s: %w", args[0], benchErrors.ErrNoRecordsFound)
		}
	}

	analysis := benchmark.Analyze(entry.Record)
	fmt.Fprintf(out, "Record: %s\n\n", entry.Key)
	report.Console(out, entry.Record, analysis)

	if !s.Report.Markdown {
		return nil
	}
	md := report.AnalysisMarkdown(entry.Record, analysis)
	path, err := report.WriteFile(s.Report.Dir, report.AnalysisFile(entry.Key), []byte(md))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nAnalysis written to %s\n", path)

	if render, _ := cmd.Flags().GetBool("render"); render || s.Report.Render {
		return printRendered(cmd, md)
	}
	return nil
}
