package crmtests

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var paginationFields = []string{"page", "limit", "total", "pages", "has_next", "has_prev"}

func DoContactTests(t *T) {
	t.Run("list returns contacts with a pagination envelope", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"List Contacts", http.MethodGet, "/api/contacts?page=1&limit=50", 200, nil, nil)
		require.True(t, passed)

		requireEnvelope(t, body, "contacts")
	})

	t.Run("limit is never exceeded", func(t *T) {
		t.requireToken()
		for _, limit := range []int{1, 5, 10} {
			endpoint := fmt.Sprintf("/api/contacts?page=1&limit=%d", limit)
			passed, body := t.Client().RunTest(
				fmt.Sprintf("Contacts Limit %d", limit), http.MethodGet, endpoint, 200, nil, nil)
			require.True(t, passed)

			items := body.GetByKey("contacts")
			assert.LessOrEqual(t, items.Count(), limit,
				"server returned %d contacts for limit=%d", items.Count(), limit)
		}
	})

	t.Run("create and delete a contact", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"Create Contact", http.MethodPost, "/api/contacts", 200,
			map[string]interface{}{
				"first_name": "Mario",
				"last_name":  "Verdi",
				"email":      fmt.Sprintf("mario.verdi+%s@grabovoi-test.com", uuid.New().String()[:8]),
				"status":     "lead",
			}, nil)
		require.True(t, passed)

		contactID := body.GetByKey("id").StringValue()
		if contactID == "" {
			contactID = body.GetByKey("contact").GetByKey("id").StringValue()
		}
		require.NotEmpty(t, contactID, "create response did not include a contact id")

		client := t.Client()
		t.Defer("delete fixture contact", func() error {
			status, err := client.Request(http.MethodDelete, "/api/contacts/"+contactID, nil)
			if err != nil {
				return err
			}
			if status != 200 && status != 204 && status != 404 {
				return fmt.Errorf("unexpected status %d deleting fixture contact", status)
			}
			return nil
		})

		passed, _ = t.Client().RunTest(
			"Delete Contact", http.MethodDelete, "/api/contacts/"+contactID, 200, nil, nil)
		assert.True(t, passed)
	})

	t.Run("deleting an unknown contact is a 404", func(t *T) {
		t.requireToken()
		passed, _ := t.Client().RunTest(
			"Delete Missing Contact", http.MethodDelete,
			"/api/contacts/000000000000000000000000", 404, nil, nil)
		assert.True(t, passed)
	})
}

// requireEnvelope asserts the list-endpoint contract: an items array under
// itemsKey plus a pagination object carrying the standard fields.
func requireEnvelope(t *T, body ldvalue.Value, itemsKey string) {
	items := body.GetByKey(itemsKey)
	require.Equal(t, ldvalue.ArrayType, items.Type(),
		"response did not contain a %q array", itemsKey)

	pagination := body.GetByKey("pagination")
	require.Equal(t, ldvalue.ObjectType, pagination.Type(),
		"response did not contain a pagination object")
	for _, field := range paginationFields {
		_, found := pagination.TryGetByKey(field)
		assert.True(t, found, "pagination object is missing %q", field)
	}
}
