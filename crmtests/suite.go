package crmtests

import (
	"time"

	"github.com/grabovoi-crm/api-contract-tests/framework"
	"github.com/grabovoi-crm/api-contract-tests/harness"
)

// DefaultScenarioDelay throttles consecutive scenarios so the target server
// is not hammered back-to-back. A courtesy, not a correctness requirement.
const DefaultScenarioDelay = 500 * time.Millisecond

type SuiteConfig struct {
	Client        *harness.APIClient
	Filter        framework.Filter
	TestLogger    framework.TestLogger
	ScenarioDelay time.Duration
}

// RunTestSuite executes every CRM scenario group in a fixed order against the
// configured backend and returns the aggregate results. A failing group never
// aborts the run; cleanup actions registered by scenarios execute at the end.
func RunTestSuite(cfg SuiteConfig) framework.Results {
	return framework.Run(cfg.Filter, cfg.TestLogger, func(c *framework.Context) {
		t := newTestScope(c, &environment{
			client:        cfg.Client,
			scenarioDelay: cfg.ScenarioDelay,
		})

		t.RunGroup("auth", DoAuthTests)
		t.RunGroup("contacts", DoContactTests)
		t.RunGroup("catalog", DoCatalogTests)
		t.RunGroup("dashboard", DoDashboardTests)
		t.RunGroup("woocommerce sync", DoWooCommerceSyncTests)
		t.RunGroup("performance", DoPerformanceTests)
	})
}
