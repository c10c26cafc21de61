package journeytests

import (
	"context"
	"fmt"
	"strings"

	"github.com/journeyqa/journey-contract-tests/contract"
	"github.com/journeyqa/journey-contract-tests/framework"
	"github.com/journeyqa/journey-contract-tests/scenario"
	"github.com/journeyqa/journey-contract-tests/servicedef"
	"github.com/journeyqa/journey-contract-tests/validate"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type environment struct {
	harness *framework.TestHarness
	config  Config
	shape   *validate.Shape
}

// T represents a test or subtest in the Journey test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner, and with some extra features such as debug logging that are
// convenient for our use case. Those features are provided by the lower-level framework package.
//
// It also knows how to talk to the Journey API. Every request goes through a scenario.Runner
// whose debug output is attached to the current test, and every scenario result is recorded
// both as a test failure (with its failure kind) and in the run's report.
//
// To make test assertions, you can use the assert and require packages, passing the *T as if
// it were a *testing.T.
type T struct {
	context *framework.Context
	env     *environment
	runner  *scenario.Runner
}

func newTestScope(c *framework.Context, env *environment) *T {
	return &T{
		context: c,
		env:     env,
		runner:  scenario.NewRunner(env.harness.Dispatcher().WithLogger(c.DebugLogger()), c.DebugLogger()),
	}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) Config() Config {
	return t.env.config
}

// Baseline is the canonical valid journey payload.
func (t *T) Baseline() ldvalue.Value {
	return contract.JourneyBaseline(t.env.config.Departure)
}

// Generator returns the boundary case generator for this run.
func (t *T) Generator() contract.Generator {
	return contract.Generator{Now: t.env.config.Now}
}

// Execute runs one scenario and records the outcome. A failed scenario fails the test with
// the scenario's failure kind, but the test keeps going.
func (t *T) Execute(s *scenario.Scenario) scenario.ScenarioResult {
	result := t.runner.Execute(context.Background(), s)
	if t.env.config.Report != nil {
		t.env.config.Report.Add(result)
	}
	if !result.Passed {
		t.Debug("Reproduce with: %s", framework.CurlCommand(t.env.harness.BaseURL(), s.Request))
		t.context.Fail(result.Kind, fmt.Errorf("%s: expected %s, got %s\n%s",
			result.Label, result.Expected, result.Actual, result.Detail))
	}
	return result
}

// RequireExecute is like Execute, but it stops the test if the scenario failed. Use it for steps
// whose result later steps depend on.
func (t *T) RequireExecute(s *scenario.Scenario) scenario.ScenarioResult {
	result := t.Execute(s)
	if !result.Passed {
		t.FailNow()
	}
	return result
}

// CreateJourney creates a new journey and returns its identifier and the record the service
// returned. The test stops if that fails.
func (t *T) CreateJourney(body ldvalue.Value) (string, ldvalue.Value) {
	s := scenario.New("create fixture", framework.RequestSpec{
		Method: "POST",
		Path:   servicedef.JourneysPath,
		Body:   framework.JSONBody(body),
	}, validate.Expectation{
		Status: t.env.config.CreatedStatus,
		Fields: body,
		Shape:  t.env.shape,
	})
	result := t.RequireExecute(s)
	id, ok := validate.StringAt(result.Response.RawBody, t.env.config.IDField)
	require.True(t, ok, "created journey has no %q identifier", t.env.config.IDField)
	t.Debug("Created journey %s", id)
	return id, result.Response.Body
}

func (t *T) patchRequest(body ldvalue.Value) framework.RequestSpec {
	return framework.RequestSpec{Method: "PATCH", Path: servicedef.JourneysPath, Body: framework.JSONBody(body)}
}

func (t *T) getRequest(id string) framework.RequestSpec {
	return framework.RequestSpec{
		Method: "GET",
		Path:   servicedef.JourneyByIDPath,
		Params: map[string]string{servicedef.JourneyIDParam: id},
	}
}

// withJourneyID returns the body of an update request for the given journey.
func withJourneyID(id string, body ldvalue.Value) ldvalue.Value {
	ret, err := contract.With(body, servicedef.PatchJourneyIDKey, ldvalue.String(id))
	if err != nil {
		panic(err) // body is always an object here
	}
	return ret
}

// unusedJourneyID returns a well-formed identifier that no journey has.
func unusedJourneyID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:servicedef.JourneyIDLength]
}
