package crmtests

import (
	"fmt"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoCatalogTests(t *T) {
	t.Run("products list uses the data envelope", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"List Products", http.MethodGet, "/api/products?page=1&limit=10", 200, nil, nil)
		require.True(t, passed)

		requireEnvelope(t, body, "data")
		assert.LessOrEqual(t, body.GetByKey("data").Count(), 10)
	})

	t.Run("product can be fetched by id", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"List Products For Lookup", http.MethodGet, "/api/products?page=1&limit=1", 200, nil, nil)
		require.True(t, passed)

		data := body.GetByKey("data")
		if data.Count() == 0 {
			t.SkipWithReason("product catalog is empty")
		}
		productID := data.GetByIndex(0).GetByKey("id").StringValue()
		require.NotEmpty(t, productID, "product entry did not include an id")

		passed, product := t.Client().RunTest(
			"Product By ID", http.MethodGet, "/api/products/"+productID, 200, nil, nil)
		require.True(t, passed)
		assert.Equal(t, productID, productIdentity(product))
	})

	t.Run("crm products are listed", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"List CRM Products", http.MethodGet, "/api/crm-products", 200, nil, nil)
		require.True(t, passed)
		assert.NotEqual(t, ldvalue.NullType, body.Type())
	})

	t.Run("courses are listed", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"List Courses", http.MethodGet, "/api/courses", 200, nil, nil)
		require.True(t, passed)
		assert.NotEqual(t, ldvalue.NullType, body.Type())
	})

	t.Run("course limit is never exceeded", func(t *T) {
		t.requireToken()
		for _, limit := range []int{1, 5} {
			endpoint := fmt.Sprintf("/api/courses?page=1&limit=%d", limit)
			passed, body := t.Client().RunTest(
				fmt.Sprintf("Courses Limit %d", limit), http.MethodGet, endpoint, 200, nil, nil)
			require.True(t, passed)

			items := courseItems(body)
			assert.LessOrEqual(t, items.Count(), limit,
				"server returned %d courses for limit=%d", items.Count(), limit)
		}
	})
}

// productIdentity reads the id from a single-product response, which some
// backend versions nest under "product".
func productIdentity(body ldvalue.Value) string {
	if id := body.GetByKey("id").StringValue(); id != "" {
		return id
	}
	return body.GetByKey("product").GetByKey("id").StringValue()
}

// courseItems accepts either a bare array or a data envelope.
func courseItems(body ldvalue.Value) ldvalue.Value {
	if body.Type() == ldvalue.ArrayType {
		return body
	}
	return body.GetByKey("data")
}
