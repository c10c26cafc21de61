// Package scenario runs boundary cases against a target: it builds each request from a
// baseline payload, dispatches it, validates the response, and aggregates the results.
package scenario

import (
	"context"
	"fmt"

	"github.com/journeyqa/journey-contract-tests/framework"
	"github.com/journeyqa/journey-contract-tests/validate"
)

// State is the lifecycle position of a Scenario. The only legal order is
// Pending, Dispatched, Validated, then Passed or Failed.
type State int

const (
	Pending State = iota
	Dispatched
	Validated
	Passed
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Dispatched:
		return "dispatched"
	case Validated:
		return "validated"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func canAdvance(from, to State) bool {
	switch from {
	case Pending:
		return to == Dispatched
	case Dispatched:
		return to == Validated
	case Validated:
		return to == Passed || to == Failed
	default:
		return false
	}
}

// Dispatcher is the part of framework.Dispatcher that the runner needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, spec framework.RequestSpec) (framework.ResponseDescriptor, error)
}

// Scenario is one build-payload, dispatch, validate exercise. A Scenario can be executed only
// once; create a new one to repeat a request.
type Scenario struct {
	Label   string
	Path    string // field under test, if the scenario came from a boundary case
	Request framework.RequestSpec
	Expect  validate.Expectation

	state   State
	history []State
}

func New(label string, request framework.RequestSpec, expect validate.Expectation) *Scenario {
	return &Scenario{Label: label, Request: request, Expect: expect}
}

func (s *Scenario) State() State {
	return s.state
}

// History lists every state the scenario has been in, starting with Pending.
func (s *Scenario) History() []State {
	return append([]State{Pending}, s.history...)
}

func (s *Scenario) advance(to State) {
	if !canAdvance(s.state, to) {
		panic(fmt.Sprintf("scenario %q cannot go from %s to %s", s.Label, s.state, to))
	}
	s.state = to
	s.history = append(s.history, to)
}

// ScenarioResult is the outcome of one Scenario, in the form that reports consume.
type ScenarioResult struct {
	Label    string
	Path     string
	Passed   bool
	Kind     framework.FailureKind
	Expected string
	Actual   string
	Detail   string
	Request  framework.RequestSpec
	Response framework.ResponseDescriptor
	Err      error // the first error that caused the failure, if any
}
