package main

import (
	"errors"
	"fmt"

	"serbench/internal/benchmark"
	"serbench/internal/codec"
	"serbench/internal/config"
	"serbench/internal/dataset"
	"serbench/internal/metrics"
	"serbench/internal/report"
	"serbench/internal/telemetry"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var askOne = survey.AskOne

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Measure the baseline codec against the candidate codec",
		Long: `Generates the selected datasets, verifies that both codecs round-trip them,
then measures serialization and deserialization of each size and stores the
run record. Sizes completed before a failure are still stored.`,
		RunE: runBenchmark,
	}
	cmd.Flags().String("baseline", "", "Baseline codec (default json)")
	cmd.Flags().String("candidate", "", "Candidate codec (default protobuf)")
	cmd.Flags().StringSlice("sizes", nil, "Dataset sizes to measure (default small,medium,large)")
	cmd.Flags().Bool("round-trip", false, "Also measure encode+decode round trips")
	cmd.Flags().String("metrics-textfile", "", "Write Prometheus metrics to this file")
	cmd.Flags().Bool("render", false, "Render the analysis Markdown in the terminal")
	cmd.Flags().BoolP("interactive", "i", false, "Choose codecs interactively")
	cmd.Flags().Bool("no-save", false, "Do not store the run record")
	return cmd
}

func codecChoices() []string {
	var names []string
	for _, n := range codec.Names() {
		names = append(names, n, n+codec.SnappySuffix)
	}
	return names
}

func chooseCodecs(s *config.Settings) error {
	for _, c := range []struct {
		msg string
		dst *string
	}{
		{"Baseline codec:", &s.Baseline},
		{"Candidate codec:", &s.Candidate},
	} {
		prompt := &survey.Select{Message: c.msg, Options: codecChoices(), Default: *c.dst}
		if err := askOne(prompt, c.dst); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return fmt.Errorf("codec selection cancelled")
			}
			return fmt.Errorf("failed to select codec: %w", err)
		}
	}
	return nil
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	s := config.Current()

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		if err := chooseCodecs(&s); err != nil {
			return err
		}
	}
	noSave, _ := cmd.Flags().GetBool("no-save")

	env := captureEnvFunc()
	engine := newEngineFunc(s.ForceGC)
	report.Banner(out, env, engine.GCAvailable(), s.Baseline, s.Candidate)

	datasets, err := dataset.GenerateAll(s.Sizes, s.Dataset)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	opts := benchmark.Options{
		Baseline:            s.Baseline,
		Candidate:           s.Candidate,
		Plans:               s.Plans,
		RoundTrip:           s.RoundTrip,
		RoundTripIterations: s.RoundTripIterations,
		Environment:         env,
	}
	if s.MetricsTextfile != "" {
		m = metrics.NewMetrics()
		opts.Observer = m.Observer(s.Baseline, s.Candidate)
	}

	rec, runErr := benchmark.NewRunner(engine, opts).Run(datasets)

	key := "run-" + rec.RunID
	if len(rec.Results) > 0 && !noSave {
		stored, err := saveRecord(s, rec)
		if err != nil {
			if runErr != nil {
				telemetry.LogError("Failed to store partial record", err)
				return fmt.Errorf("benchmark run failed: %w", runErr)
			}
			return err
		}
		key = stored
		fmt.Fprintf(out, "Results saved: %s\n", key)
	}
	if runErr != nil {
		return fmt.Errorf("benchmark run failed: %w", runErr)
	}

	analysis := benchmark.Analyze(rec)
	fmt.Fprintln(out)
	report.Console(out, rec, analysis)

	if s.Report.Markdown {
		md := report.AnalysisMarkdown(rec, analysis)
		path, err := report.WriteFile(s.Report.Dir, report.AnalysisFile(key), []byte(md))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nAnalysis written to %s\n", path)
		if s.Report.Render {
			if err := printRendered(cmd, md); err != nil {
				return err
			}
		}
	}

	if m != nil {
		m.ObserveRecord(rec)
		if err := m.WriteTextfile(s.MetricsTextfile); err != nil {
			return err
		}
		telemetry.LogInfo("Metrics written", zap.String("path", s.MetricsTextfile))
	}
	return nil
}

func saveRecord(s config.Settings, rec benchmark.RunRecord) (string, error) {
	store, err := openStore(s)
	if err != nil {
		return "", err
	}
	defer store.Close()

	key, err := store.Save(rec)
	if err != nil {
		return "", fmt.Errorf("failed to save run record: %w", err)
	}
	telemetry.LogInfo("Run record stored", zap.String("key", key), zap.Bool("partial", rec.Partial))
	return key, nil
}

func printRendered(cmd *cobra.Command, md string) error {
	rendered, err := report.RenderMarkdown(md, 100)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}
