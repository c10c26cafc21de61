package journeytests

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/journeyqa/journey-contract-tests/contract"
	"github.com/journeyqa/journey-contract-tests/framework"
	"github.com/journeyqa/journey-contract-tests/journeystub"
	"github.com/journeyqa/journey-contract-tests/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC) }

func withStub(t *testing.T, config journeystub.Config, action func(*framework.TestHarness)) {
	config.BasePath = "/api"
	server := httptest.NewServer(journeystub.NewRouter(config).Handler())
	defer server.Close()

	h, err := framework.NewTestHarness(framework.TargetConfig{
		BaseURL: server.URL + "/api",
		Timeout: 5 * time.Second,
	}, nil, nil)
	require.NoError(t, err)
	action(h)
}

func failureIDs(results framework.Results) []string {
	var ret []string
	for _, f := range results.Failures {
		ret = append(ret, f.TestID.String())
	}
	return ret
}

func TestSuitePassesAgainstConformingService(t *testing.T) {
	withStub(t, journeystub.Config{}, func(h *framework.TestHarness) {
		report := &scenario.Report{}
		results, err := RunTestSuite(h, Config{Now: fixedNow, Report: report}, nil, nil)
		require.NoError(t, err)

		assert.True(t, results.OK(), "failures: %v", failureIDs(results))
		assert.True(t, report.OK())
		assert.NotEmpty(t, report.Results)

		var names []string
		for _, r := range results.Tests {
			names = append(names, r.TestID.String())
		}
		assert.Contains(t, names, "create/boundaries/pickup.latitude: below minimum -90.1 -> reject")
		assert.Contains(t, names, "update/out-of-range pickup latitude is rejected")
		assert.Contains(t, names, "retrieve/identifier/too short")
		assert.Contains(t, names, "end to end/create, update, retrieve")
	})
}

func TestSuiteReportsNotFoundStatusDrift(t *testing.T) {
	withStub(t, journeystub.Config{NotFoundStatus: 404}, func(h *framework.TestHarness) {
		results, err := RunTestSuite(h, Config{Now: fixedNow, NotFoundStatus: 400}, nil, nil)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{
			"update/unknown journey id",
			"retrieve/identifier/well-formed but nonexistent",
		}, failureIDs(results))
		for _, f := range results.Failures {
			assert.Equal(t, framework.AssertionFailure, f.Kind)
		}
	})

	withStub(t, journeystub.Config{NotFoundStatus: 404}, func(h *framework.TestHarness) {
		results, err := RunTestSuite(h, Config{Now: fixedNow, NotFoundStatus: 404}, nil, nil)
		require.NoError(t, err)
		assert.True(t, results.OK(), "failures: %v", failureIDs(results))
	})
}

func TestSuiteReportsCreatedStatusMismatch(t *testing.T) {
	withStub(t, journeystub.Config{CreatedStatus: 201}, func(h *framework.TestHarness) {
		results, err := RunTestSuite(h, Config{Now: fixedNow}, nil, nil)
		require.NoError(t, err)
		assert.False(t, results.OK())
		assert.Contains(t, failureIDs(results), "create/valid journey")
	})
}

func TestUnreachableTargetIsInfrastructureFailure(t *testing.T) {
	server := httptest.NewServer(journeystub.NewRouter(journeystub.Config{}).Handler())
	url := server.URL
	server.Close()

	h, err := framework.NewTestHarness(framework.TargetConfig{BaseURL: url, Timeout: time.Second}, nil, nil)
	require.NoError(t, err)

	report := &scenario.Report{}
	results, err := RunTestSuite(h, Config{Now: fixedNow, Report: report}, nil, nil)
	require.NoError(t, err)

	require.False(t, results.OK())
	for _, f := range results.Failures {
		assert.Equal(t, framework.InfrastructureFailure, f.Kind, f.TestID.String())
	}
	assert.Equal(t, 0, report.CountByKind()[framework.AssertionFailure])
	assert.Equal(t, len(report.Results), report.CountByKind()[framework.InfrastructureFailure])
}

func TestBaselineThatViolatesContractStopsRun(t *testing.T) {
	narrow := contract.Journey().MustDefine(contract.FieldContract{
		Path:   contract.PathPassengerName,
		Kind:   contract.StringLength,
		Bounds: contract.Bounds{Min: 1, Max: 3},
	})
	withStub(t, journeystub.Config{}, func(h *framework.TestHarness) {
		results, err := RunTestSuite(h, Config{Contract: narrow}, nil, nil)
		var cde *contract.ContractDefinitionError
		require.True(t, errors.As(err, &cde))
		assert.Equal(t, contract.PathPassengerName, cde.Path)
		assert.Empty(t, results.Tests)
	})
}

func TestContractWithUndeclaredParentStopsRun(t *testing.T) {
	drifted, err := contract.Parse([]byte(`entity: journey
fields:
  - {path: origin.lat, kind: number-range, min: -90, max: 90, below: -90.1, above: 90.1}
`))
	require.NoError(t, err)
	store := journeystub.NewMemoryStore()
	withStub(t, journeystub.Config{Store: store}, func(h *framework.TestHarness) {
		results, err := RunTestSuite(h, Config{Contract: drifted, Now: fixedNow}, nil, nil)
		var cde *contract.ContractDefinitionError
		require.True(t, errors.As(err, &cde))
		assert.Equal(t, "origin.lat", cde.Path)
		assert.Empty(t, results.Tests)
		assert.Equal(t, 0, store.Count())
	})
}

func TestFilteredRun(t *testing.T) {
	withStub(t, journeystub.Config{}, func(h *framework.TestHarness) {
		var filters framework.RegexFilters
		require.NoError(t, filters.MustMatch.Set("^retrieve"))

		results, err := RunTestSuite(h, Config{Now: fixedNow}, filters.AsFilter, nil)
		require.NoError(t, err)
		assert.True(t, results.OK())
		for _, r := range results.Tests {
			if !strings.HasPrefix(r.TestID.String(), "retrieve") {
				assert.True(t, r.Skipped, r.TestID.String())
			}
		}
	})
}
