package scenario

import (
	"context"
	"errors"
	"strconv"

	"github.com/journeyqa/journey-contract-tests/contract"
	"github.com/journeyqa/journey-contract-tests/framework"
	"github.com/journeyqa/journey-contract-tests/validate"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type Runner struct {
	dispatcher Dispatcher
	logger     framework.Logger
}

func NewRunner(dispatcher Dispatcher, logger framework.Logger) *Runner {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Runner{dispatcher: dispatcher, logger: logger}
}

// Execute takes a Pending scenario through to Passed or Failed. It never returns early on a
// failure: transport errors and mismatches are both reported in the result. Only a
// NetworkError counts as an infrastructure failure; a request that could not be built is an
// assertion failure like any other mismatch. Executing a
// scenario that is not Pending is a programming error and panics.
func (r *Runner) Execute(ctx context.Context, s *Scenario) ScenarioResult {
	result := ScenarioResult{Label: s.Label, Path: s.Path, Request: s.Request}

	s.advance(Dispatched)
	resp, err := r.dispatcher.Dispatch(ctx, s.Request)
	if err != nil {
		s.advance(Validated)
		result.Kind = framework.AssertionFailure
		var ne *framework.NetworkError
		if errors.As(err, &ne) {
			result.Kind = framework.InfrastructureFailure
		}
		result.Expected = "status=" + strconv.Itoa(s.Expect.Status)
		result.Actual = "no response"
		result.Detail = err.Error()
		result.Err = err
		return r.finish(s, result)
	}
	result.Response = resp

	check, err := s.Expect.Check(resp)
	s.advance(Validated)
	switch {
	case err != nil:
		result.Kind = framework.AssertionFailure
		result.Expected = "JSON body"
		result.Actual = "status=" + strconv.Itoa(resp.Status)
		result.Detail = err.Error()
		result.Err = err
	case !check.Passed:
		result.Kind = framework.AssertionFailure
		result.Expected = check.Expected()
		result.Actual = check.Actual()
		result.Detail = check.Detail()
		result.Err = check.Mismatches[0]
	default:
		result.Passed = true
	}
	return r.finish(s, result)
}

func (r *Runner) finish(s *Scenario, result ScenarioResult) ScenarioResult {
	log := r.logger
	if result.Response.RequestID != "" {
		log = framework.RequestLogger(r.logger, result.Response.RequestID)
	}
	if result.Passed {
		s.advance(Passed)
		log.Printf("PASS %s", s.Label)
	} else {
		s.advance(Failed)
		log.Printf("FAIL %s (%s): %s", s.Label, result.Kind, result.Detail)
	}
	return result
}

// Template describes how to turn boundary cases into requests for one operation of the
// target. Baseline must be a payload that satisfies the contract; each case replaces one
// field of it.
type Template struct {
	Method       string
	Path         string
	Params       map[string]string
	Baseline     ldvalue.Value
	AcceptStatus int
	RejectStatus int
	AcceptShape  *validate.Shape // checked on responses to accepted cases, if set
	Echo         bool            // accepted values must be echoed back at the same path
}

// Plan builds one Pending scenario per boundary case of the contract, in generation order.
// The baseline is checked against the contract first; a baseline that would itself be
// rejected makes every case meaningless, so that is a *contract.ContractDefinitionError.
func Plan(e *contract.EntityContract, gen contract.Generator, tmpl Template) ([]*Scenario, error) {
	if err := CheckBaseline(e, tmpl.Baseline); err != nil {
		return nil, err
	}
	var ret []*Scenario
	for c := range gen.EntityCases(e) {
		s, err := ForCase(c, tmpl)
		if err != nil {
			return nil, err
		}
		ret = append(ret, s)
	}
	return ret, nil
}

// ForCase builds the Pending scenario for a single boundary case.
func ForCase(c contract.BoundaryCase, tmpl Template) (*Scenario, error) {
	body, err := contract.Overlay(tmpl.Baseline, c)
	if err != nil {
		return nil, &contract.ContractDefinitionError{Path: c.Path, Reason: "cannot apply case to baseline", Err: err}
	}
	s := New(c.String(), framework.RequestSpec{
		Method: tmpl.Method,
		Path:   tmpl.Path,
		Params: tmpl.Params,
		Body:   framework.JSONBody(body),
	}, tmpl.expectation(c))
	s.Path = c.Path
	return s, nil
}

// CheckBaseline verifies that a payload satisfies every rule of the contract.
func CheckBaseline(e *contract.EntityContract, baseline ldvalue.Value) error {
	if baseline.Type() != ldvalue.ObjectType {
		return &contract.ContractDefinitionError{Reason: "baseline payload must be a JSON object"}
	}
	if violations := e.Check(baseline, false); len(violations) != 0 {
		return &contract.ContractDefinitionError{
			Path:   violations[0].Path,
			Reason: "baseline payload does not satisfy the contract: " + violations[0].Reason,
		}
	}
	return nil
}

func (t Template) expectation(c contract.BoundaryCase) validate.Expectation {
	if c.Expect == contract.Reject {
		return validate.Expectation{Status: t.RejectStatus}
	}
	exp := validate.Expectation{Status: t.AcceptStatus, Shape: t.AcceptShape}
	if t.Echo && !c.Missing {
		exp.Paths = map[string]ldvalue.Value{c.Path: c.Value}
	}
	return exp
}

// RunEntity plans and executes every boundary case of the contract, in order, without
// stopping at failures. The only error is a contract problem found while planning.
func (r *Runner) RunEntity(ctx context.Context, e *contract.EntityContract, gen contract.Generator, tmpl Template) (*Report, error) {
	scenarios, err := Plan(e, gen, tmpl)
	if err != nil {
		return nil, err
	}
	report := &Report{}
	for _, s := range scenarios {
		report.Add(r.Execute(ctx, s))
	}
	return report, nil
}
