package framework

import (
	"fmt"
	"strings"
)

// Results accumulates the outcome of every scenario executed in one run.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

// Executed is the number of scenarios that actually ran; skipped scenarios
// are recorded but do not count toward the pass ratio.
func (r Results) Executed() int {
	n := 0
	for _, t := range r.Tests {
		if !t.Skipped {
			n++
		}
	}
	return n
}

func (r Results) Passed() int {
	return r.Executed() - len(r.Failures)
}

// PassRatio is in [0,1]. An empty run counts as fully passed.
func (r Results) PassRatio() float64 {
	executed := r.Executed()
	if executed == 0 {
		return 1
	}
	return float64(r.Passed()) / float64(executed)
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Acceptable reports whether the run meets the pass-rate threshold that maps
// to a zero process exit code.
func (r Results) Acceptable() bool {
	return r.PassRatio() >= acceptablePassRatio
}

const acceptablePassRatio = 0.8

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
