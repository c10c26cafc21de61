package journeytests

import (
	"net/http"
	"strings"

	"github.com/journeyqa/journey-contract-tests/scenario"
	"github.com/journeyqa/journey-contract-tests/validate"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoRetrieveTests(t *T) {
	t.Run("round trip", func(t *T) {
		submitted := t.Baseline()
		id, _ := t.CreateJourney(submitted)
		t.Execute(scenario.New("get created journey", t.getRequest(id), validate.Expectation{
			Status: http.StatusOK,
			Fields: submitted,
			Paths:  map[string]ldvalue.Value{t.Config().IDField: ldvalue.String(id)},
			Shape:  t.env.shape,
		}))
	})

	t.Run("identifier", func(t *T) {
		t.Run("well-formed but nonexistent", func(t *T) {
			t.Execute(scenario.New("get unknown journey", t.getRequest(unusedJourneyID()),
				validate.Expectation{Status: t.Config().NotFoundStatus}))
		})

		malformed := []struct {
			name string
			id   string
		}{
			{"too short", "1"},
			{"too long", unusedJourneyID() + "0"},
			{"not hexadecimal", strings.Repeat("z", 24)},
			{"invalid characters", "68adb597f16d278b7f75d1 #"},
		}
		for _, m := range malformed {
			t.Run(m.name, func(t *T) {
				t.Execute(scenario.New("get "+m.name+" id", t.getRequest(m.id),
					validate.Expectation{Status: http.StatusBadRequest}))
			})
		}
	})
}
