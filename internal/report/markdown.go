package report

import (
	"fmt"
	"strings"

	"serbench/internal/benchmark"
	"serbench/internal/compare"
)

// AnalysisMarkdown renders a single run analysis as a Markdown document.
func AnalysisMarkdown(rec benchmark.RunRecord, a compare.RecordAnalysis) string {
	var b strings.Builder
	base, cand := rec.BaselineCodec, rec.CandidateCodec

	fmt.Fprintf(&b, "# Serialization Benchmark Analysis: %s vs %s\n\n", base, cand)
	environmentTable(&b, rec.Environment)
	fmt.Fprintf(&b, "Run `%s` at %s.\n\n", rec.RunID, rec.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	if rec.Partial {
		b.WriteString("> **Partial run:** later sizes failed and are missing.\n\n")
	}

	b.WriteString("## Payload Size\n\n")
	fmt.Fprintf(&b, "| Size | %s (bytes) | %s (bytes) | Compression |\n", base, cand)
	b.WriteString("|---|---:|---:|---|\n")
	for _, s := range a.Sizes {
		fmt.Fprintf(&b, "| %s | %d | %d | %s |\n", s.Label, s.BaselineBytes, s.CandidateBytes, outcomeText(s.Compression))
	}
	b.WriteString("\n")

	for _, op := range []string{benchmark.OpSerialization, benchmark.OpDeserialization} {
		fmt.Fprintf(&b, "## %s\n\n", title(op))
		fmt.Fprintf(&b, "| Size | %s avg (ms) | %s avg (ms) | Time | %s ops/s | %s ops/s | Throughput |\n", base, cand, base, cand)
		b.WriteString("|---|---:|---:|---|---:|---:|---|\n")
		for _, s := range a.Sizes {
			oa := operation(s, op)
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n", s.Label,
				ms(oa.Memory.Baseline.AvgTime), ms(oa.Memory.Candidate.AvgTime), outcomeText(oa.Time),
				ops(oa.Memory.Baseline.OpsPerSec), ops(oa.Memory.Candidate.OpsPerSec), outcomeText(oa.Throughput))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Memory\n\n")
	fmt.Fprintf(&b, "| Size | Operation | %s (MB) | %s (MB) |\n", base, cand)
	b.WriteString("|---|---|---:|---:|\n")
	for _, s := range a.Sizes {
		for _, op := range []string{benchmark.OpSerialization, benchmark.OpDeserialization} {
			m := operation(s, op).Memory
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", s.Label, op, mib(m.Baseline.MemoryDelta), mib(m.Candidate.MemoryDelta))
		}
	}
	b.WriteString("\n")

	b.WriteString("## Summary\n\n")
	if a.CompressionSizes > 0 {
		fmt.Fprintf(&b, "- Average compression: %s (%s)\n", pct(a.AverageCompression), a.Tier)
	} else {
		fmt.Fprintf(&b, "- Average compression: %s\n", notAvailable)
	}
	fmt.Fprintf(&b, "- Serialization: %s average, %s; %s faster at every size: %s\n",
		signed(a.SerializationAverage), a.SerializationVerdict, cand, yesNo(a.CandidateFasterSerialization))
	fmt.Fprintf(&b, "- Deserialization: %s average, %s; %s faster at every size: %s\n",
		signed(a.DeserializationAverage), a.DeserializationVerdict, cand, yesNo(a.CandidateFasterDeserialization))
	return b.String()
}

func operation(s compare.SizeAnalysis, op string) compare.OperationAnalysis {
	if op == benchmark.OpSerialization {
		return s.Serialization
	}
	return s.Deserialization
}

func environmentTable(b *strings.Builder, env benchmark.Environment) {
	b.WriteString("| Runtime | Platform | CPU | Memory |\n|---|---|---|---|\n")
	fmt.Fprintf(b, "| %s | %s | %s | %s |\n\n", env.RuntimeVersion, env.Platform, env.CPU, env.Memory)
}

// ComparisonMarkdown renders a multi-run comparison as a Markdown document.
func ComparisonMarkdown(mr compare.MultiRun, series benchmark.Series) string {
	var b strings.Builder
	base := mr.Baseline()

	fmt.Fprintf(&b, "# Runtime Comparison: %s\n\n", series)
	fmt.Fprintf(&b, "Codec: **%s** (%s)\n\n", mr.Codec, series.Role)
	fmt.Fprintf(&b, "Baseline: **%s** (`%s`)\n\n", base.Version, base.Key)

	for i, size := range mr.Sizes {
		fmt.Fprintf(&b, "## %s\n\n", title(size))
		b.WriteString("| Version | Avg time (ms) | Ops/sec | Time vs baseline | Throughput vs baseline |\n")
		b.WriteString("|---|---:|---:|---|---|\n")
		if s, ok := base.Samples[size]; ok {
			fmt.Fprintf(&b, "| %s | %s | %s | baseline | baseline |\n", base.Version, ms(s.AvgTime), ops(s.OpsPerSec))
		} else {
			fmt.Fprintf(&b, "| %s | %s | %s | baseline | baseline |\n", base.Version, notAvailable, notAvailable)
		}
		for _, vc := range mr.Comparisons {
			p := vc.Pairs[i]
			s, ok := vc.Run.Samples[size]
			if !ok {
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", vc.Run.Version, notAvailable, notAvailable, notAvailable, notAvailable)
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", vc.Run.Version, ms(s.AvgTime), ops(s.OpsPerSec),
				outcomeText(p.Time), outcomeText(p.Throughput))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Summary\n\n")
	b.WriteString("| Version | Average time delta | Sizes compared | Verdict |\n|---|---:|---:|---|\n")
	for _, vc := range mr.Comparisons {
		if vc.Err != nil {
			fmt.Fprintf(&b, "| %s | %s | 0 | %s |\n", vc.Run.Version, notAvailable, notAvailable)
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s |\n", vc.Run.Version, signed(vc.AveragePercent), vc.SizesCompared, vc.Verdict)
	}
	fmt.Fprintf(&b, "\nChanges within ±%.0f%% are reported as no significant change.\n", compare.SignificanceThreshold)

	if len(mr.Excluded) > 0 {
		fmt.Fprintf(&b, "\n## Excluded records\n\nMeasured with another %s codec, not compared.\n\n", series.Role)
		b.WriteString("| Key | Version | Codec |\n|---|---|---|\n")
		for _, run := range mr.Excluded {
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", run.Key, run.Version, run.Codec)
		}
	}
	return b.String()
}
