package framework

import (
	"fmt"
	"io"
	"strings"
)

// FailureKind distinguishes "the target behaved wrongly" from "we could not reach the target".
type FailureKind int

const (
	NoFailure FailureKind = iota
	AssertionFailure
	InfrastructureFailure
)

func (k FailureKind) String() string {
	switch k {
	case AssertionFailure:
		return "assertion"
	case InfrastructureFailure:
		return "infrastructure"
	default:
		return "none"
	}
}

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Kind    FailureKind
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// CountByKind returns how many failed tests had each kind of failure.
func (r Results) CountByKind() map[FailureKind]int {
	ret := make(map[FailureKind]int)
	for _, f := range r.Failures {
		ret[f.Kind]++
	}
	return ret
}

func (r Results) skippedCount() int {
	n := 0
	for _, t := range r.Tests {
		if t.Skipped {
			n++
		}
	}
	return n
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// PrintResults writes a summary of the run, listing every failed test with its errors.
func PrintResults(out io.Writer, results Results) {
	byKind := results.CountByKind()
	skipped := results.skippedCount()
	ran := len(results.Tests) - skipped
	fmt.Fprintf(out, "Ran %d tests: %d passed, %d failed (%d assertion, %d infrastructure), %d skipped\n",
		ran, ran-len(results.Failures), len(results.Failures),
		byKind[AssertionFailure], byKind[InfrastructureFailure], skipped)
	if results.OK() {
		fmt.Fprintln(out, "All tests passed")
		return
	}
	fmt.Fprintln(out, "FAILED TESTS:")
	for _, f := range results.Failures {
		fmt.Fprintf(out, "* %s (%s)\n", f.TestID, f.Kind)
		for _, e := range f.Errors {
			for _, line := range strings.Split(e.Error(), "\n") {
				fmt.Fprintf(out, "    %s\n", line)
			}
		}
	}
}
