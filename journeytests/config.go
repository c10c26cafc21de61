package journeytests

import (
	"net/http"
	"time"

	"github.com/journeyqa/journey-contract-tests/contract"
	"github.com/journeyqa/journey-contract-tests/scenario"
	"github.com/journeyqa/journey-contract-tests/servicedef"
)

// DefaultDeparture is the departure_date of the canonical baseline journey.
var DefaultDeparture = time.Date(2025, 9, 7, 8, 31, 11, 214000000, time.UTC)

// Config holds the status codes and contract that the suite asserts. None of it has a
// package-level default that tests can change; each run gets its own Config.
type Config struct {
	Contract       *contract.EntityContract
	CreatedStatus  int
	NotFoundStatus int
	IDField        string
	Departure      time.Time        // departure_date of the baseline payload
	Now            func() time.Time // source of the "current instant" timestamp case
	Report         *scenario.Report // if set, every scenario result is added to it
}

func (c Config) withDefaults() Config {
	if c.Contract == nil {
		c.Contract = contract.Journey()
	}
	if c.CreatedStatus == 0 {
		c.CreatedStatus = servicedef.DefaultCreatedCode
	}
	if c.NotFoundStatus == 0 {
		c.NotFoundStatus = http.StatusBadRequest
	}
	if c.IDField == "" {
		c.IDField = servicedef.DefaultIDField
	}
	if c.Departure.IsZero() {
		c.Departure = DefaultDeparture
	}
	return c
}
