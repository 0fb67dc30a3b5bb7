package crmtests

import (
	"fmt"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoWooCommerceSyncTests(t *T) {
	t.Run("settings can be read", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"Read Sync Settings", http.MethodGet, "/api/woocommerce/sync/settings", 200, nil, nil)
		require.True(t, passed)

		_, found := body.TryGetByKey("auto_sync_enabled")
		require.True(t, found, "sync settings did not include auto_sync_enabled")

		// Snapshot the live settings so cleanup can put them back whatever
		// the toggle scenarios do afterwards.
		original := map[string]interface{}{}
		for _, key := range body.Keys() {
			original[key] = body.GetByKey(key).AsArbitraryValue()
		}

		client := t.Client()
		t.Defer("restore woocommerce sync settings", func() error {
			status, err := client.Request(http.MethodPut, "/api/woocommerce/sync/settings", original)
			if err != nil {
				return err
			}
			if status != 200 {
				return fmt.Errorf("restore returned status %d", status)
			}
			return nil
		})
	})

	t.Run("auto sync can be disabled", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"Disable Auto Sync", http.MethodPut, "/api/woocommerce/sync/settings", 200,
			map[string]interface{}{"auto_sync_enabled": false}, nil)
		require.True(t, passed)

		settings := body.GetByKey("settings")
		require.Equal(t, ldvalue.ObjectType, settings.Type(), "update response has no settings echo")
		assert.False(t, settings.GetByKey("auto_sync_enabled").BoolValue())
	})

	t.Run("auto sync can be re-enabled", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"Enable Auto Sync", http.MethodPut, "/api/woocommerce/sync/settings", 200,
			map[string]interface{}{"auto_sync_enabled": true}, nil)
		require.True(t, passed)
		assert.True(t, body.GetByKey("settings").GetByKey("auto_sync_enabled").BoolValue())
	})

	t.Run("sync intervals are updatable", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"Update Sync Intervals", http.MethodPut, "/api/woocommerce/sync/settings", 200,
			map[string]interface{}{
				"sync_interval_orders":    10,
				"sync_interval_customers": 45,
				"sync_interval_products":  90,
				"full_sync_hour":          3,
			}, nil)
		require.True(t, passed)

		settings := body.GetByKey("settings")
		assert.Equal(t, 10, settings.GetByKey("sync_interval_orders").IntValue())
		assert.Equal(t, 45, settings.GetByKey("sync_interval_customers").IntValue())
		assert.Equal(t, 90, settings.GetByKey("sync_interval_products").IntValue())
		assert.Equal(t, 3, settings.GetByKey("full_sync_hour").IntValue())
	})

	t.Run("manual sync triggers are accepted", func(t *T) {
		t.requireToken()
		for _, target := range []string{"customers", "products", "orders"} {
			passed, _ := t.Client().RunTest(
				fmt.Sprintf("Trigger %s Sync", target), http.MethodPost,
				"/api/woocommerce/sync/"+target, 200, nil, nil)
			assert.True(t, passed, "manual %s sync was not accepted", target)
		}
	})

	t.Run("sync status is reported", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"Sync Status", http.MethodGet, "/api/woocommerce/sync/status", 200, nil, nil)
		require.True(t, passed)
		assert.Equal(t, ldvalue.ObjectType, body.Type())
	})
}
