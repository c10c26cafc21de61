// Package servicedef defines the wire format of the Journey API.
package servicedef

import (
	"encoding/json"
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	JourneysPath       = "/journeys"
	JourneyByIDPath    = "/journeys/{id}"
	JourneyIDParam     = "id"
	PatchJourneyIDKey  = "journey_id"
	DefaultIDField     = "_id"
	JourneyIDLength    = 24
	DefaultCreatedCode = 200
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Passenger struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	PhoneNumber string `json:"phone_number"`
}

// Journey is the body of a create request, and the non-generated part of a stored record.
type Journey struct {
	Pickup        Location  `json:"pickup"`
	Dropoff       Location  `json:"dropoff"`
	Passenger     Passenger `json:"passenger"`
	DepartureDate string    `json:"departure_date"`
}

// JourneyPatch is the body of an update request. Only the non-nil parts are sent.
type JourneyPatch struct {
	JourneyID     string     `json:"journey_id"`
	Pickup        *Location  `json:"pickup,omitempty"`
	Dropoff       *Location  `json:"dropoff,omitempty"`
	Passenger     *Passenger `json:"passenger,omitempty"`
	DepartureDate *string    `json:"departure_date,omitempty"`
}

// AsValue converts one of the wire types into a generic JSON value.
func AsValue(v interface{}) ldvalue.Value {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err) // only our own wire types are passed in here
	}
	var ret ldvalue.Value
	if err := json.Unmarshal(data, &ret); err != nil {
		panic(err)
	}
	return ret
}

// ParseJourney reads the Journey fields of a record returned by the service.
func ParseJourney(body ldvalue.Value) (Journey, error) {
	var j Journey
	if err := json.Unmarshal([]byte(body.JSONString()), &j); err != nil {
		return j, fmt.Errorf("response is not a journey record: %w", err)
	}
	return j, nil
}

// JourneyRecordSchema is the JSON schema of a stored journey as returned by the service, with
// the generated identifier under idField.
func JourneyRecordSchema(idField string) string {
	return fmt.Sprintf(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": [%q, "pickup", "dropoff", "passenger", "departure_date"],
  "properties": {
    %q: {"type": "string", "minLength": 1},
    "pickup": {"$ref": "#/$defs/location"},
    "dropoff": {"$ref": "#/$defs/location"},
    "passenger": {
      "type": "object",
      "required": ["name", "surname", "phone_number"],
      "properties": {
        "name": {"type": "string"},
        "surname": {"type": "string"},
        "phone_number": {"type": "string"}
      }
    },
    "departure_date": {"type": "string"}
  },
  "$defs": {
    "location": {
      "type": "object",
      "required": ["latitude", "longitude"],
      "properties": {
        "latitude": {"type": "number"},
        "longitude": {"type": "number"}
      }
    }
  }
}`, idField, idField)
}
