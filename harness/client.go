package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DefaultTimeout bounds every request the client sends. A hung backend fails
// the scenario instead of blocking the suite indefinitely.
const DefaultTimeout = 15 * time.Second

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// TestResult captures everything about one request/assert cycle. It is
// created per RunTest call and never mutated afterwards.
type TestResult struct {
	Name           string
	Method         string
	URL            string
	ExpectedStatus int
	ActualStatus   int // zero when the request never completed
	Passed         bool
	Body           ldvalue.Value
	Error          string
	Elapsed        time.Duration
}

// APIClient drives the backend's REST API. It holds the base URL, the bearer
// token once a login scenario obtains one, and the running pass/fail
// counters. It is not safe for concurrent use; suites run strictly
// sequentially.
type APIClient struct {
	baseURL     string
	token       string
	testsRun    int
	testsPassed int
	httpClient  *http.Client
	output      io.Writer
}

func NewAPIClient(baseURL string, timeout time.Duration, output io.Writer) *APIClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if output == nil {
		output = io.Discard
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		output:     output,
	}
}

func (c *APIClient) BaseURL() string { return c.baseURL }

func (c *APIClient) TestsRun() int    { return c.testsRun }
func (c *APIClient) TestsPassed() int { return c.testsPassed }

func (c *APIClient) Token() string         { return c.token }
func (c *APIClient) SetToken(token string) { c.token = token }
func (c *APIClient) ClearToken()           { c.token = "" }

// WithoutAuth clears the bearer token for the duration of action and then
// restores it, so scenarios that probe unauthenticated access cannot affect
// the rest of the suite.
func (c *APIClient) WithoutAuth(action func()) {
	saved := c.token
	c.token = ""
	defer func() { c.token = saved }()
	action()
}

// RunTest sends exactly one request and evaluates success by exact status
// code equality. Transport faults and parse faults are downgraded to a
// failed or empty result respectively; RunTest never returns a Go error.
func (c *APIClient) RunTest(
	name string,
	method string,
	endpoint string,
	expectedStatus int,
	body interface{},
	extraHeaders map[string]string,
) (bool, ldvalue.Value) {
	result := c.execute(name, method, endpoint, expectedStatus, body, extraHeaders)
	return result.Passed, result.Body
}

// RunTestTimed is the performance variant: same contract as RunTest, but it
// also reports the wall-clock latency and its advisory band. The band never
// affects the pass/fail outcome.
func (c *APIClient) RunTestTimed(
	name string,
	method string,
	endpoint string,
	expectedStatus int,
	body interface{},
	extraHeaders map[string]string,
) (bool, ldvalue.Value, time.Duration) {
	result := c.execute(name, method, endpoint, expectedStatus, body, extraHeaders)
	if result.ActualStatus != 0 {
		fmt.Fprintf(c.output, "    latency: %dms [%s]\n",
			result.Elapsed.Milliseconds(), ClassifyLatency(result.Elapsed))
	}
	return result.Passed, result.Body, result.Elapsed
}

func (c *APIClient) execute(
	name string,
	method string,
	endpoint string,
	expectedStatus int,
	body interface{},
	extraHeaders map[string]string,
) TestResult {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	result := TestResult{
		Name:           name,
		Method:         method,
		URL:            url,
		ExpectedStatus: expectedStatus,
		Body:           ldvalue.Null(),
	}

	c.testsRun++
	fmt.Fprintf(c.output, ">>> %s: %s %s\n", name, method, url)

	if !allowedMethods[method] {
		result.Error = fmt.Sprintf("unsupported method %q", method)
		fmt.Fprintf(c.output, "    FAIL: %s\n", result.Error)
		return result
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if c.token != "" {
		headers.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range extraHeaders {
		headers.Set(k, v)
	}

	var payload []byte
	var reqBody io.Reader
	if body != nil && (method == http.MethodPost || method == http.MethodPut) {
		data, err := json.Marshal(body)
		if err != nil {
			result.Error = fmt.Sprintf("could not serialize request body: %s", err)
			fmt.Fprintf(c.output, "    FAIL: %s\n", result.Error)
			return result
		}
		payload = data
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		result.Error = fmt.Sprintf("could not build request: %s", err)
		fmt.Fprintf(c.output, "    FAIL: %s\n", result.Error)
		return result
	}
	req.Header = headers

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	result.Elapsed = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		fmt.Fprintf(c.output, "    FAIL: transport error: %s\n", result.Error)
		fmt.Fprintf(c.output, "    reproduce with: %s\n", curlCommand(method, url, headers, payload))
		return result
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	result.ActualStatus = resp.StatusCode

	if resp.StatusCode == expectedStatus {
		c.testsPassed++
		result.Passed = true
		result.Body = ldvalue.Parse(raw) // Null on unparseable bodies, by contract
		fmt.Fprintf(c.output, "    PASS (status %d)\n", resp.StatusCode)
		return result
	}

	fmt.Fprintf(c.output, "    FAIL: expected status %d, got %d\n", expectedStatus, resp.StatusCode)
	if diag := errorPayload(raw); diag != "" {
		fmt.Fprintf(c.output, "    error payload: %s\n", diag)
	}
	fmt.Fprintf(c.output, "    reproduce with: %s\n", curlCommand(method, url, headers, payload))
	return result
}

// errorPayload extracts a diagnostic from a failed response: the JSON body
// when it parses, otherwise the raw text.
func errorPayload(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return ""
	}
	if v := ldvalue.Parse(raw); !v.IsNull() {
		return v.JSONString()
	}
	if len(text) > 300 {
		text = text[:300] + "..."
	}
	return text
}

// Request sends one request outside of any scenario, for cleanup work after
// a suite finishes. It attaches the same default headers but never touches
// the pass/fail counters.
func (c *APIClient) Request(method, endpoint string, body interface{}) (int, error) {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	var reqBody io.Reader
	if body != nil && (method == http.MethodPost || method == http.MethodPut) {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("could not serialize request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// Tolerance names an environmental condition a scenario accepts without
// failing, e.g. the SMTP relay being down while the API itself behaved
// correctly. Naming it keeps environmental failures distinct from assertion
// failures in the output.
type Tolerance struct {
	Name   string
	Detail string
}

func (c *APIClient) NoteTolerance(tol Tolerance) {
	fmt.Fprintf(c.output, "    TOLERATED: %s (%s)\n", tol.Name, tol.Detail)
}
