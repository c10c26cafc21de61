package journeytests

import (
	"net/http"

	"github.com/journeyqa/journey-contract-tests/contract"
	"github.com/journeyqa/journey-contract-tests/scenario"
	"github.com/journeyqa/journey-contract-tests/servicedef"
	"github.com/journeyqa/journey-contract-tests/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var newPickup = servicedef.Location{Latitude: 1.3644, Longitude: 103.9915}

func DoUpdateTests(t *T) {
	t.Run("update pickup", func(t *T) {
		id, _ := t.CreateJourney(t.Baseline())
		patch := servicedef.AsValue(servicedef.JourneyPatch{JourneyID: id, Pickup: &newPickup})
		t.Execute(scenario.New("update pickup", t.patchRequest(patch), validate.Expectation{
			Status: http.StatusOK,
			Fields: ldvalue.ObjectBuild().Set(contract.PathPickup, servicedef.AsValue(newPickup)).Build(),
			Paths:  map[string]ldvalue.Value{t.Config().IDField: ldvalue.String(id)},
			Shape:  t.env.shape,
		}))
	})

	t.Run("partial update leaves other fields unchanged", func(t *T) {
		id, before := t.CreateJourney(t.Baseline())
		patch := servicedef.AsValue(servicedef.JourneyPatch{JourneyID: id, Pickup: &newPickup})
		unchanged := ldvalue.ObjectBuild()
		for _, key := range []string{contract.PathDropoff, contract.PathPassenger, contract.PathDepartureDate} {
			unchanged.Set(key, before.GetByKey(key))
		}
		t.Execute(scenario.New("partial update", t.patchRequest(patch), validate.Expectation{
			Status: http.StatusOK,
			Fields: unchanged.Build(),
		}))
	})

	t.Run("repeating an update is idempotent", func(t *T) {
		id, _ := t.CreateJourney(t.Baseline())
		name := "Jane"
		patch := servicedef.AsValue(servicedef.JourneyPatch{
			JourneyID: id,
			Passenger: &servicedef.Passenger{Name: name, Surname: "Doe", PhoneNumber: "+6598765432"},
		})
		first := t.RequireExecute(scenario.New("first update", t.patchRequest(patch), validate.Expectation{Status: http.StatusOK}))
		second := t.RequireExecute(scenario.New("second update", t.patchRequest(patch), validate.Expectation{Status: http.StatusOK}))
		assert.True(t, first.Response.Body.Equal(second.Response.Body),
			"records differ: %s vs %s", first.Response.Body.JSONString(), second.Response.Body.JSONString())
	})

	t.Run("out-of-range pickup latitude is rejected", func(t *T) {
		id, _ := t.CreateJourney(t.Baseline())
		patch := withJourneyID(id, ldvalue.ObjectBuild().
			Set(contract.PathPickup, ldvalue.ObjectBuild().
				Set("latitude", ldvalue.Float64(-90.1)).
				Set("longitude", ldvalue.Int(10)).
				Build()).
			Build())
		t.Execute(scenario.New("pickup latitude -90.1", t.patchRequest(patch),
			validate.Expectation{Status: http.StatusBadRequest}))
	})

	t.Run("unknown journey id", func(t *T) {
		patch := servicedef.AsValue(servicedef.JourneyPatch{JourneyID: unusedJourneyID(), Pickup: &newPickup})
		t.Execute(scenario.New("update unknown journey", t.patchRequest(patch),
			validate.Expectation{Status: t.Config().NotFoundStatus}))
	})

	t.Run("boundaries", func(t *T) {
		// Every update body carries the whole baseline, so each case changes exactly one field.
		// Leaving a field out of an update is not a violation, so missing-field cases don't
		// apply here.
		for c := range t.Generator().EntityCases(t.Config().Contract) {
			if c.Missing {
				continue
			}
			t.Run(c.String(), func(t *T) {
				id, _ := t.CreateJourney(t.Baseline())
				s, err := scenario.ForCase(c, scenario.Template{
					Method:       "PATCH",
					Path:         servicedef.JourneysPath,
					Baseline:     withJourneyID(id, t.Baseline()),
					AcceptStatus: http.StatusOK,
					RejectStatus: http.StatusBadRequest,
					AcceptShape:  t.env.shape,
					Echo:         true,
				})
				require.NoError(t, err)
				t.Execute(s)
			})
		}
	})
}
