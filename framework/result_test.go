package framework

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeResults(passed, failed int) Results {
	var r Results
	for i := 0; i < passed; i++ {
		r.Tests = append(r.Tests, TestResult{TestID: TestID{Path: []string{"pass"}}})
	}
	for i := 0; i < failed; i++ {
		tr := TestResult{TestID: TestID{Path: []string{"fail"}}}
		r.Tests = append(r.Tests, tr)
		r.Failures = append(r.Failures, tr)
	}
	return r
}

func TestVerdictTiers(t *testing.T) {
	assert.Equal(t, VerdictAllPassed, makeResults(5, 0).Verdict())
	assert.Equal(t, VerdictMostlyWorking, makeResults(4, 1).Verdict())
	assert.Equal(t, VerdictNeedsAttention, makeResults(1, 4).Verdict())
}

func TestAcceptableThresholdIsEightyPercent(t *testing.T) {
	assert.True(t, makeResults(8, 2).Acceptable())
	assert.False(t, makeResults(7, 3).Acceptable())
	assert.True(t, makeResults(0, 0).Acceptable())
}

func TestPrintResultsListsFailures(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("good", func(c *Context) {})
		c.Run("bad", func(c *Context) { c.Errorf("status mismatch") })
	})

	var buf bytes.Buffer
	PrintResults(&buf, results)
	out := buf.String()
	assert.Contains(t, out, "Scenarios run: 2, passed: 1, failed: 1")
	assert.Contains(t, out, "bad")
	assert.Contains(t, out, "status mismatch")
}
