package journeytests

import (
	"net/http"

	"github.com/journeyqa/journey-contract-tests/framework"
	"github.com/journeyqa/journey-contract-tests/scenario"
	"github.com/journeyqa/journey-contract-tests/servicedef"
	"github.com/journeyqa/journey-contract-tests/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoCreateTests(t *T) {
	t.Run("valid journey", func(t *T) {
		baseline := t.Baseline()
		result := t.Execute(scenario.New("create valid journey", framework.RequestSpec{
			Method: "POST",
			Path:   servicedef.JourneysPath,
			Body:   framework.JSONBody(baseline),
		}, validate.Expectation{
			Status: t.Config().CreatedStatus,
			Fields: baseline,
			Shape:  t.env.shape,
		}))
		if result.Passed {
			id, ok := validate.StringAt(result.Response.RawBody, t.Config().IDField)
			assert.True(t, ok && id != "", "response has no generated identifier")
		}
	})

	t.Run("boundaries", func(t *T) {
		scenarios, err := scenario.Plan(t.Config().Contract, t.Generator(), scenario.Template{
			Method:       "POST",
			Path:         servicedef.JourneysPath,
			Baseline:     t.Baseline(),
			AcceptStatus: t.Config().CreatedStatus,
			RejectStatus: http.StatusBadRequest,
			AcceptShape:  t.env.shape,
			Echo:         true,
		})
		require.NoError(t, err)
		for _, s := range scenarios {
			t.Run(s.Label, func(t *T) {
				t.Execute(s)
			})
		}
	})
}
