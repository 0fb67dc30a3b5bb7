package harness

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlanYAML = `
name: smoke
steps:
  - name: health
    method: GET
    endpoint: /api/dashboard/stats
    expectedStatus: 200
  - name: login
    method: POST
    endpoint: /api/login
    expectedStatus: 200
    body:
      email: admin@grabovoi.com
      password: admin123
`

func TestParsePlanAcceptsValidTable(t *testing.T) {
	plan, err := ParsePlan([]byte(validPlanYAML))
	require.NoError(t, err)
	assert.Equal(t, "smoke", plan.Name)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "admin@grabovoi.com", plan.Steps[1].Body["email"])
}

func TestParsePlanRejectsBadSteps(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no steps", "name: empty\nsteps: []"},
		{"missing name", "steps:\n  - method: GET\n    endpoint: /x\n    expectedStatus: 200"},
		{"bad method", "steps:\n  - name: a\n    method: PATCH\n    endpoint: /x\n    expectedStatus: 200"},
		{"missing endpoint", "steps:\n  - name: a\n    method: GET\n    expectedStatus: 200"},
		{"zero status", "steps:\n  - name: a\n    method: GET\n    endpoint: /x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestRunPlanExecutesEveryStepAndContinuesPastFailures(t *testing.T) {
	okHandler := httphelpers.HandlerWithStatus(200)
	failHandler := httphelpers.HandlerWithStatus(500)
	handler := httphelpers.HandlerForPath("/api/broken", failHandler, okHandler)

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := NewAPIClient(server.URL, time.Second*5, &bytes.Buffer{})
		plan := Plan{
			Name: "mixed",
			Steps: []PlanStep{
				{Name: "ok", Method: http.MethodGet, Endpoint: "/api/fine", ExpectedStatus: 200},
				{Name: "broken", Method: http.MethodGet, Endpoint: "/api/broken", ExpectedStatus: 200},
				{Name: "still runs", Method: http.MethodGet, Endpoint: "/api/fine", ExpectedStatus: 200},
			},
		}
		passed, run := c.RunPlan(plan)
		assert.Equal(t, 3, run)
		assert.Equal(t, 2, passed)
	})
}
