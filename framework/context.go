package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is the framework-level state of one test or subtest. Domain-specific suites wrap
// it in their own type, the way *testing.T is wrapped by helper packages.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	kind        FailureKind
	skipped     bool
	skipReason  string
	errors      []error
	defers      []func()
}

func Run(
	filter func(TestID) bool,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if !c.skipped {
				c.failed = true
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.addError(AssertionFailure, addError)
				}
			}
		}
		for i := len(c.defers) - 1; i >= 0; i-- {
			c.defers[i]()
		}
		if c.id.Path == nil {
			return // the root context is not a test in itself
		}
		result := TestResult{TestID: c.id, Errors: c.errors, Kind: c.kind, Skipped: c.skipped}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

func (c *Context) ID() TestID {
	return c.id
}

func (c *Context) Run(name string, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		c.env.results.Tests = append(c.env.results.Tests, TestResult{TestID: id, Skipped: true})
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

// Errorf records an assertion failure without stopping the test.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.Fail(AssertionFailure, fmt.Errorf(format, args...))
}

// Fail records a failure of the given kind without stopping the test. Once a test has had an
// infrastructure failure it stays classified that way, since any assertion failures after
// that point are unreliable.
func (c *Context) Fail(kind FailureKind, err error) {
	c.failed = true
	c.addError(kind, err)
}

func (c *Context) addError(kind FailureKind, err error) {
	if kind > c.kind {
		c.kind = kind
	}
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, kind, err)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a cleanup function to run when the test ends, even if it fails.
func (c *Context) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
