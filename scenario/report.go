package scenario

import (
	"fmt"
	"io"

	"github.com/journeyqa/journey-contract-tests/framework"
)

// Report collects the results of a run. Results are kept in the order they were added.
type Report struct {
	Results []ScenarioResult
}

func (r *Report) Add(result ScenarioResult) {
	r.Results = append(r.Results, result)
}

func (r *Report) OK() bool {
	return r.Failed() == 0
}

func (r *Report) Passed() int {
	return len(r.Results) - r.Failed()
}

func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed {
			n++
		}
	}
	return n
}

func (r *Report) CountByKind() map[framework.FailureKind]int {
	ret := make(map[framework.FailureKind]int)
	for _, res := range r.Results {
		if !res.Passed {
			ret[res.Kind]++
		}
	}
	return ret
}

// Write prints every scenario with its outcome, and expected versus actual for failures,
// followed by the totals.
func (r *Report) Write(out io.Writer) {
	for _, res := range r.Results {
		if res.Passed {
			fmt.Fprintf(out, "PASS  %s\n", res.Label)
			continue
		}
		fmt.Fprintf(out, "FAIL  %s [%s]\n", res.Label, res.Kind)
		fmt.Fprintf(out, "      expected: %s\n", res.Expected)
		fmt.Fprintf(out, "      actual:   %s\n", res.Actual)
		if res.Detail != "" {
			fmt.Fprintf(out, "      detail:   %s\n", res.Detail)
		}
	}
	byKind := r.CountByKind()
	fmt.Fprintf(out, "%d scenarios: %d passed, %d failed (%d assertion, %d infrastructure)\n",
		len(r.Results), r.Passed(), r.Failed(),
		byKind[framework.AssertionFailure], byKind[framework.InfrastructureFailure])
}
