package journeytests

import (
	"net/http"

	"github.com/journeyqa/journey-contract-tests/contract"
	"github.com/journeyqa/journey-contract-tests/scenario"
	"github.com/journeyqa/journey-contract-tests/servicedef"
	"github.com/journeyqa/journey-contract-tests/validate"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DoEndToEndTests chains create, update and retrieve. Each step starts only after the previous
// step's response has been validated.
func DoEndToEndTests(t *T) {
	t.Run("create, update, retrieve", func(t *T) {
		submitted := t.Baseline()
		id, _ := t.CreateJourney(submitted)

		passenger := servicedef.Passenger{Name: "Jane", Surname: "Tan", PhoneNumber: "+14155552671"}
		patch := servicedef.AsValue(servicedef.JourneyPatch{JourneyID: id, Passenger: &passenger})
		expected := contract.Merge(submitted, contract.Without(patch, servicedef.PatchJourneyIDKey))
		t.RequireExecute(scenario.New("update passenger", t.patchRequest(patch), validate.Expectation{
			Status: http.StatusOK,
			Fields: expected,
		}))

		t.Execute(scenario.New("get updated journey", t.getRequest(id), validate.Expectation{
			Status: http.StatusOK,
			Fields: expected,
			Paths:  map[string]ldvalue.Value{t.Config().IDField: ldvalue.String(id)},
			Shape:  t.env.shape,
		}))
	})
}
