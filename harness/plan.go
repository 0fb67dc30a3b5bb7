package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is a declarative table of simple status-check scenarios, loaded from
// YAML and consumed by one generic loop. It covers the smoke-test use case
// without writing Go code for each endpoint.
type Plan struct {
	Name  string     `yaml:"name"`
	Steps []PlanStep `yaml:"steps"`
}

type PlanStep struct {
	Name           string                 `yaml:"name"`
	Method         string                 `yaml:"method"`
	Endpoint       string                 `yaml:"endpoint"`
	ExpectedStatus int                    `yaml:"expectedStatus"`
	Body           map[string]interface{} `yaml:"body,omitempty"`
	Headers        map[string]string      `yaml:"headers,omitempty"`
}

func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("reading plan file: %w", err)
	}
	return ParsePlan(data)
}

func ParsePlan(data []byte) (Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("parsing plan: %w", err)
	}
	if len(plan.Steps) == 0 {
		return Plan{}, fmt.Errorf("plan %q has no steps", plan.Name)
	}
	for i, step := range plan.Steps {
		if step.Name == "" {
			return Plan{}, fmt.Errorf("step %d has no name", i+1)
		}
		if !allowedMethods[step.Method] {
			return Plan{}, fmt.Errorf("step %q: unsupported method %q", step.Name, step.Method)
		}
		if step.Endpoint == "" {
			return Plan{}, fmt.Errorf("step %q has no endpoint", step.Name)
		}
		if step.ExpectedStatus <= 0 {
			return Plan{}, fmt.Errorf("step %q: expectedStatus must be a positive HTTP status", step.Name)
		}
	}
	return plan, nil
}

// RunPlan executes every step in order through the client. Step failures are
// recorded in the counters and never abort the loop.
func (c *APIClient) RunPlan(plan Plan) (passed int, run int) {
	for _, step := range plan.Steps {
		var body interface{}
		if step.Body != nil {
			body = step.Body
		}
		ok, _ := c.RunTest(step.Name, step.Method, step.Endpoint, step.ExpectedStatus, body, step.Headers)
		run++
		if ok {
			passed++
		}
	}
	return passed, run
}
