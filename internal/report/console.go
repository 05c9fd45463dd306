package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"serbench/internal/benchmark"
	"serbench/internal/compare"
)

// Banner prints the environment a run is about to measure in.
func Banner(w io.Writer, env benchmark.Environment, gcForced bool, baseline, candidate string) {
	fmt.Fprintln(w, titleStyle.Render("Serialization Benchmark"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Runtime:\t%s\n", env.RuntimeVersion)
	fmt.Fprintf(tw, "Platform:\t%s\n", env.Platform)
	fmt.Fprintf(tw, "CPU:\t%s\n", env.CPU)
	fmt.Fprintf(tw, "Memory:\t%s\n", env.Memory)
	fmt.Fprintf(tw, "Forced GC:\t%s\n", yesNo(gcForced))
	fmt.Fprintf(tw, "Codecs:\t%s vs %s\n", baseline, candidate)
	tw.Flush()
	fmt.Fprintln(w)
}

// Console prints every size of a run followed by the analysis summary.
func Console(w io.Writer, rec benchmark.RunRecord, a compare.RecordAnalysis) {
	if rec.Partial {
		fmt.Fprintln(w, badStyle.Render("Partial run: later sizes failed and are missing."))
	}

	for _, sa := range a.Sizes {
		res := rec.Results[sa.Label]
		fmt.Fprintln(w, sectionStyle.Render(strings.ToUpper(sa.Label)+" dataset"))
		fmt.Fprintf(w, "Iterations: %d  Warmup: %d\n", res.Iterations, res.Warmup)
		fmt.Fprintf(w, "Size: %s %d bytes, %s %d bytes, %s\n",
			rec.BaselineCodec, sa.BaselineBytes, rec.CandidateCodec, sa.CandidateBytes, styledOutcome(sa.Compression))
		fmt.Fprintf(w, "Prepare: %s %s ms, %s %s ms\n",
			rec.BaselineCodec, ms(res.PrepareTime.Baseline), rec.CandidateCodec, ms(res.PrepareTime.Candidate))

		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "OPERATION\tCODEC\tAVG (ms)\tOPS/SEC\tMEM (MB)")
		for _, op := range []struct {
			name string
			res  benchmark.OperationResult
		}{
			{benchmark.OpSerialization, res.Serialization},
			{benchmark.OpDeserialization, res.Deserialization},
		} {
			statsRow(tw, op.name, rec.BaselineCodec, op.res.Baseline)
			statsRow(tw, op.name, rec.CandidateCodec, op.res.Candidate)
		}
		if res.RoundTrip != nil {
			statsRow(tw, benchmark.OpRoundTrip, rec.BaselineCodec, res.RoundTrip.Baseline)
			statsRow(tw, benchmark.OpRoundTrip, rec.CandidateCodec, res.RoundTrip.Candidate)
		}
		tw.Flush()

		fmt.Fprintf(w, "Serialization: %s, throughput %s\n",
			styledOutcome(sa.Serialization.Time), outcomeText(sa.Serialization.Throughput))
		fmt.Fprintf(w, "Deserialization: %s, throughput %s\n\n",
			styledOutcome(sa.Deserialization.Time), outcomeText(sa.Deserialization.Throughput))
	}

	Summary(w, rec, a)
}

func statsRow(tw io.Writer, op, codec string, s benchmark.Stats) {
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", op, codec, ms(s.AvgTime), ops(s.OpsPerSec), mib(s.MemoryDelta))
}

// Summary prints the averaged verdicts of an analysis.
func Summary(w io.Writer, rec benchmark.RunRecord, a compare.RecordAnalysis) {
	fmt.Fprintln(w, sectionStyle.Render("Summary"))
	if a.CompressionSizes > 0 {
		fmt.Fprintf(w, "Average compression: %s (%s) over %d sizes\n",
			pct(a.AverageCompression), a.Tier, a.CompressionSizes)
	} else {
		fmt.Fprintf(w, "Average compression: %s\n", notAvailable)
	}
	fmt.Fprintf(w, "Serialization: %s average, %s; %s faster at every size: %s\n",
		signed(a.SerializationAverage), styledVerdict(a.SerializationVerdict),
		rec.CandidateCodec, yesNo(a.CandidateFasterSerialization))
	fmt.Fprintf(w, "Deserialization: %s average, %s; %s faster at every size: %s\n",
		signed(a.DeserializationAverage), styledVerdict(a.DeserializationVerdict),
		rec.CandidateCodec, yesNo(a.CandidateFasterDeserialization))
}

// ConsoleComparison prints a multi-run comparison of one series.
func ConsoleComparison(w io.Writer, mr compare.MultiRun, series benchmark.Series) {
	base := mr.Baseline()
	fmt.Fprintln(w, titleStyle.Render("Runtime Comparison: "+series.String()))
	fmt.Fprintf(w, "Codec: %s (%s)\n", mr.Codec, series.Role)
	fmt.Fprintf(w, "Baseline: %s (%s)\n\n", base.Version, base.Key)

	for i, size := range mr.Sizes {
		fmt.Fprintln(w, sectionStyle.Render(strings.ToUpper(size)+" dataset"))
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tAVG (ms)\tOPS/SEC\tTIME\tTHROUGHPUT")
		if s, ok := base.Samples[size]; ok {
			fmt.Fprintf(tw, "%s\t%s\t%s\tbaseline\tbaseline\n", base.Version, ms(s.AvgTime), ops(s.OpsPerSec))
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\tbaseline\tbaseline\n", base.Version, notAvailable, notAvailable)
		}
		for _, vc := range mr.Comparisons {
			p := vc.Pairs[i]
			s, ok := vc.Run.Samples[size]
			if !ok {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", vc.Run.Version, notAvailable, notAvailable, notAvailable, notAvailable)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", vc.Run.Version, ms(s.AvgTime), ops(s.OpsPerSec),
				outcomeText(p.Time), outcomeText(p.Throughput))
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, sectionStyle.Render("Summary"))
	for _, vc := range mr.Comparisons {
		if vc.Err != nil {
			fmt.Fprintf(w, "%s vs %s: %s\n", vc.Run.Version, base.Version, mutedStyle.Render(notAvailable))
			continue
		}
		fmt.Fprintf(w, "%s vs %s: %s average time over %d sizes, %s\n",
			vc.Run.Version, base.Version, signed(vc.AveragePercent), vc.SizesCompared, styledVerdict(vc.Verdict))
	}

	if len(mr.Excluded) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, badStyle.Render(fmt.Sprintf("Excluded %d record(s) measured with another %s codec:", len(mr.Excluded), series.Role)))
		for _, run := range mr.Excluded {
			fmt.Fprintf(w, "  %s  %s  %s\n", run.Key, run.Version, run.Codec)
		}
	}
}

// Skipped notes records left out of a report because they could not be read.
func Skipped(w io.Writer, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintln(w, badStyle.Render(fmt.Sprintf("Skipped %d corrupt record(s): %s", len(keys), strings.Join(keys, ", "))))
}

// Records lists stored records.
func Records(w io.Writer, entries []benchmark.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTIMESTAMP\tRUNTIME\tCODECS\tSIZES\tPARTIAL")
	for _, e := range entries {
		r := e.Record
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s vs %s\t%s\t%s\n",
			e.Key, r.Timestamp.Format("2006-01-02 15:04:05"), r.RuntimeVersion,
			r.BaselineCodec, r.CandidateCodec, strings.Join(benchmark.SizeLabels(r), ","), yesNo(r.Partial))
	}
	tw.Flush()
}

// Codecs lists codec names with their kind.
func Codecs(w io.Writer, kinds map[string]string) {
	names := make([]string, 0, len(kinds))
	for n := range kinds {
		names = append(names, n)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODEC\tKIND")
	for _, n := range names {
		fmt.Fprintf(tw, "%s\t%s\n", n, kinds[n])
	}
	tw.Flush()
}
