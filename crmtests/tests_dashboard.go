package crmtests

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoDashboardTests(t *T) {
	t.Run("initial data bundles paginated sections", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"Dashboard Initial Data", http.MethodGet, "/api/dashboard/initial-data", 200, nil, nil)
		require.True(t, passed)

		for _, section := range []string{"contacts", "products", "courses"} {
			data := body.GetByKey(section)
			require.Equal(t, ldvalue.ObjectType, data.Type(),
				"initial data is missing the %q section", section)

			pagination := data.GetByKey("pagination")
			require.Equal(t, ldvalue.ObjectType, pagination.Type(),
				"section %q has no pagination", section)
			limit := pagination.GetByKey("limit").IntValue()
			items := data.GetByKey("items")
			if items.Type() != ldvalue.ArrayType {
				items = data.GetByKey(section)
			}
			assert.LessOrEqual(t, items.Count(), limit,
				"section %q returned more items than its limit", section)
		}
	})

	t.Run("stats are served", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"Dashboard Stats", http.MethodGet, "/api/dashboard/stats", 200, nil, nil)
		require.True(t, passed)
		assert.Equal(t, ldvalue.ObjectType, body.Type())
	})

	t.Run("database info is reachable", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"Database Info", http.MethodGet, "/api/debug/database-info", 200, nil, nil)
		require.True(t, passed)
		assert.Equal(t, ldvalue.ObjectType, body.Type())
	})
}
