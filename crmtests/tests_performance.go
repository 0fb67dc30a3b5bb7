package crmtests

import (
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/grabovoi-crm/api-contract-tests/harness"
)

// Latency-focused scenarios. Bands are advisory output; pass/fail still
// depends solely on the status code.
func DoPerformanceTests(t *T) {
	endpoints := []struct {
		name     string
		endpoint string
	}{
		{"Dashboard Stats", "/api/dashboard/stats"},
		{"Dashboard Initial Data", "/api/dashboard/initial-data"},
		{"Contacts Page", "/api/contacts?page=1&limit=50"},
		{"Products Page", "/api/products?page=1&limit=50"},
		{"Courses", "/api/courses"},
	}

	var total time.Duration
	var measured int

	for _, ep := range endpoints {
		ep := ep
		t.Run(ep.name, func(t *T) {
			t.requireToken()
			passed, _, elapsed := t.Client().RunTestTimed(
				ep.name, http.MethodGet, ep.endpoint, 200, nil, nil)
			assert.True(t, passed)
			if passed {
				total += elapsed
				measured++
				t.Debug("%s responded in %dms [%s]",
					ep.name, elapsed.Milliseconds(), harness.ClassifyLatency(elapsed))
			}
		})
	}

	t.Run("overall latency", func(t *T) {
		if measured == 0 {
			t.SkipWithReason("no endpoint produced a measurable response")
		}
		avg := total / time.Duration(measured)
		t.Debug("average over %d endpoints: %dms [%s]",
			measured, avg.Milliseconds(), harness.ClassifyLatency(avg))
	})
}
