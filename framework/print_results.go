package framework

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Verdict is the three-tier summary of a run: every scenario passed, enough
// passed to call the backend mostly working, or the run needs attention.
type Verdict int

const (
	VerdictAllPassed Verdict = iota
	VerdictMostlyWorking
	VerdictNeedsAttention
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllPassed:
		return "all scenarios passed"
	case VerdictMostlyWorking:
		return "mostly working"
	default:
		return "needs attention"
	}
}

func (r Results) Verdict() Verdict {
	switch {
	case r.OK():
		return VerdictAllPassed
	case r.Acceptable():
		return VerdictMostlyWorking
	default:
		return VerdictNeedsAttention
	}
}

var (
	passColor    = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	summaryColor = color.New(color.Bold)
)

// PrintResults writes the aggregate report: totals, pass percentage, the
// list of failed scenarios, and the verdict.
func PrintResults(w io.Writer, results Results) {
	summaryColor.Fprintf(w, "Scenarios run: %d, passed: %d, failed: %d (%.1f%%)\n",
		results.Executed(), results.Passed(), len(results.Failures), results.PassRatio()*100)

	if !results.OK() {
		fmt.Fprintln(w)
		failColor.Fprintf(w, "FAILED SCENARIOS (%d):\n", len(results.Failures))
		for _, f := range results.Failures {
			fmt.Fprintf(w, "  * %s\n", f.TestID)
			for _, err := range f.Errors {
				fmt.Fprintf(w, "    - %s\n", err)
			}
		}
	}

	fmt.Fprintln(w)
	switch results.Verdict() {
	case VerdictAllPassed:
		passColor.Fprintln(w, "All scenarios passed")
	case VerdictMostlyWorking:
		warnColor.Fprintln(w, "Backend is mostly working; some scenarios failed")
	default:
		failColor.Fprintln(w, "Backend needs attention: too many scenarios failed")
	}
}

func PrintFilterDescription(w io.Writer, filters RegexFilters) {
	if !filters.MustMatch.IsDefined() && !filters.MustNotMatch.IsDefined() {
		return
	}
	fmt.Fprintln(w, "Some scenarios will be skipped based on the filter criteria for this run:")
	if filters.MustMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any matching %s\n", filters.MustNotMatch)
	}
	fmt.Fprintln(w)
}
