// Package report renders run records and comparisons for people and tools.
// Every figure printed is read from a record or a computed delta; nothing
// here measures or derives new numbers.
package report

import (
	"fmt"
	"strings"

	"serbench/internal/compare"
)

const notAvailable = "n/a"

func ms(v float64) string     { return fmt.Sprintf("%.4f", v) }
func ops(v float64) string    { return fmt.Sprintf("%.0f", v) }
func mib(v float64) string    { return fmt.Sprintf("%.3f", v) }
func pct(v float64) string    { return fmt.Sprintf("%.1f%%", v) }
func signed(v float64) string { return fmt.Sprintf("%+.1f%%", v) }

func outcomeText(o compare.Outcome) string {
	if !o.OK() {
		return notAvailable
	}
	return o.Delta.String()
}

func styledOutcome(o compare.Outcome) string {
	text := outcomeText(o)
	switch {
	case !o.OK():
		return mutedStyle.Render(text)
	case o.Delta.Improved():
		return goodStyle.Render(text)
	default:
		return badStyle.Render(text)
	}
}

func styledVerdict(v compare.Verdict) string {
	switch v {
	case compare.SignificantImprovement:
		return goodStyle.Render(string(v))
	case compare.SignificantRegression:
		return badStyle.Render(string(v))
	}
	return neutralStyle.Render(string(v))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
