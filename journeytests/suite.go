package journeytests

import (
	"github.com/journeyqa/journey-contract-tests/contract"
	"github.com/journeyqa/journey-contract-tests/framework"
	"github.com/journeyqa/journey-contract-tests/scenario"
	"github.com/journeyqa/journey-contract-tests/servicedef"
	"github.com/journeyqa/journey-contract-tests/validate"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// RunTestSuite runs every Journey test against the harness's target. It returns an error
// without running anything if the configuration is unusable, for instance if the baseline
// payload does not satisfy the contract.
func RunTestSuite(
	harness *framework.TestHarness,
	config Config,
	filter framework.Filter,
	testLogger framework.TestLogger,
) (framework.Results, error) {
	config = config.withDefaults()
	if err := checkContract(config); err != nil {
		return framework.Results{}, err
	}
	shape, err := validate.CompileShape("journey-record.json", servicedef.JourneyRecordSchema(config.IDField))
	if err != nil {
		return framework.Results{}, err
	}
	env := &environment{
		harness: harness,
		config:  config,
		shape:   shape,
	}

	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)

		t.Run("create", DoCreateTests)
		t.Run("update", DoUpdateTests)
		t.Run("retrieve", DoRetrieveTests)
		t.Run("end to end", DoEndToEndTests)
	}), nil
}

// checkContract plans every boundary case against both the create and the update bodies, so
// a contract that cannot be applied stops the run before any request is sent.
func checkContract(config Config) error {
	gen := contract.Generator{Now: config.Now}
	baseline := contract.JourneyBaseline(config.Departure)
	for _, b := range []ldvalue.Value{baseline, withJourneyID(unusedJourneyID(), baseline)} {
		if _, err := scenario.Plan(config.Contract, gen, scenario.Template{Baseline: b}); err != nil {
			return err
		}
	}
	return nil
}
