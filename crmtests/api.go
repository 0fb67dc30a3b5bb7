package crmtests

import (
	"time"

	"github.com/grabovoi-crm/api-contract-tests/framework"
	"github.com/grabovoi-crm/api-contract-tests/harness"
)

// environment holds the state shared by every scenario in one suite run: the
// API client (with its bearer token and counters) and fixture bookkeeping
// that later scenarios or the cleanup phase need.
type environment struct {
	client        *harness.APIClient
	scenarioDelay time.Duration
	anyRan        bool

	fixtureUserEmail string
}

// T represents a scenario or sub-scenario in the CRM suite.
//
// It implements the minimal surface the assert and require packages need
// (Errorf and FailNow), so testify assertions can be used against a running
// backend outside of the Go test runner. The lower-level framework package
// provides failure containment, filtering, and debug-output capture.
type T struct {
	context *framework.Context
	env     *environment
}

func newTestScope(context *framework.Context, env *environment) *T {
	return &T{context: context, env: env}
}

// Errorf is called by assertions to log a scenario failure. It does not cause
// an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a scenario should fail and immediately
// exit. The methods in the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a sub-scenario, with a courtesy delay before it when a previous
// scenario has already hit the server.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		if t.env.anyRan && t.env.scenarioDelay > 0 {
			time.Sleep(t.env.scenarioDelay)
		}
		t.env.anyRan = true
		action(newTestScope(c, t.env))
	})
}

// RunGroup runs a named group of scenarios without the courtesy delay; the
// delay applies to the leaf scenarios inside it.
func (t *T) RunGroup(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) Skip() {
	t.context.Skip()
}

func (t *T) SkipWithReason(reason string) {
	t.context.SkipWithReason(reason)
}

// Defer registers a cleanup action that runs after the whole suite finishes.
// Cleanup failures are logged but never change the pass/fail tally.
func (t *T) Defer(name string, action func() error) {
	t.context.Defer(name, action)
}

func (t *T) Client() *harness.APIClient {
	return t.env.client
}

// requireToken skips the scenario when no login has succeeded yet; scenarios
// against protected endpoints are meaningless without a bearer token.
func (t *T) requireToken() {
	if t.env.client.Token() == "" {
		t.SkipWithReason("no bearer token; login scenario did not succeed")
	}
}
