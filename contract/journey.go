package contract

import (
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Field paths of the Journey entity. These names are the only ones the suite knows; payloads
// using other spellings (lat/lng, surename, journeyId) fail the baseline check.
const (
	PathPickup            = "pickup"
	PathPickupLatitude    = "pickup.latitude"
	PathPickupLongitude   = "pickup.longitude"
	PathDropoff           = "dropoff"
	PathDropoffLatitude   = "dropoff.latitude"
	PathDropoffLongitude  = "dropoff.longitude"
	PathPassenger         = "passenger"
	PathPassengerName     = "passenger.name"
	PathPassengerSurname  = "passenger.surname"
	PathPassengerPhone    = "passenger.phone_number"
	PathDepartureDate     = "departure_date"
	JourneyEntityName     = "journey"
	PhoneNumberPattern    = `^\+[1-9][0-9]{7,14}$`
	maxPassengerNameChars = 50
)

func float64Ptr(f float64) *float64 { return &f }

func latitude(path string, interior float64) FieldContract {
	return FieldContract{Path: path, Kind: NumberRange, Bounds: Bounds{
		Min: -90, Max: 90, Below: -90.1, Above: 90.1, Interior: float64Ptr(interior),
	}}
}

func longitude(path string, interior float64) FieldContract {
	return FieldContract{Path: path, Kind: NumberRange, Bounds: Bounds{
		Min: -180, Max: 180, Below: -180.1, Above: 180.1, Interior: float64Ptr(interior),
	}}
}

func passengerName(path string) FieldContract {
	return FieldContract{Path: path, Kind: StringLength, Bounds: Bounds{Min: 1, Max: maxPassengerNameChars}}
}

// Journey returns the canonical contract of the Journey entity. The 1-50 character limit on
// names is an assumption; the service has never documented it.
func Journey() *EntityContract {
	return NewEntityContract(JourneyEntityName).
		MustDefine(FieldContract{Path: PathPickup, Kind: RequiredObject}).
		MustDefine(latitude(PathPickupLatitude, 1.3521)).
		MustDefine(longitude(PathPickupLongitude, 103.8198)).
		MustDefine(FieldContract{Path: PathDropoff, Kind: RequiredObject}).
		MustDefine(latitude(PathDropoffLatitude, 1.2801)).
		MustDefine(longitude(PathDropoffLongitude, 103.85)).
		MustDefine(FieldContract{Path: PathPassenger, Kind: RequiredObject}).
		MustDefine(passengerName(PathPassengerName)).
		MustDefine(passengerName(PathPassengerSurname)).
		MustDefine(FieldContract{
			Path:    PathPassengerPhone,
			Kind:    Regex,
			Pattern: PhoneNumberPattern,
			Samples: []Sample{
				{Value: "+6598765432", Accept: true},
				{Value: "+14155552671", Accept: true},
				{Value: "+442071838750", Accept: true},
				{Value: "6598765432", Accept: false},
				{Value: "+65 9876 5432", Accept: false},
				{Value: "+65-9876-5432", Accept: false},
				{Value: "+123456", Accept: false},
				{Value: "+1234567890123456", Accept: false},
				{Value: "+0123456789", Accept: false},
				{Value: "phone", Accept: false},
				{Value: "", Accept: false},
			},
		}).
		MustDefine(FieldContract{Path: PathDepartureDate, Kind: ISO8601DateTime})
}

// JourneyBaseline is the known-good Journey payload that boundary cases are applied to.
func JourneyBaseline(departure time.Time) ldvalue.Value {
	return ldvalue.ObjectBuild().
		Set("pickup", location(1.3521, 103.8198)).
		Set("dropoff", location(1.2801, 103.85)).
		Set("passenger", ldvalue.ObjectBuild().
			Set("name", ldvalue.String("John")).
			Set("surname", ldvalue.String("Doe")).
			Set("phone_number", ldvalue.String("+6598765432")).
			Build()).
		Set("departure_date", ldvalue.String(departure.UTC().Format(DateTimeLayout))).
		Build()
}

func location(lat, lng float64) ldvalue.Value {
	return ldvalue.ObjectBuild().
		Set("latitude", ldvalue.Float64(lat)).
		Set("longitude", ldvalue.Float64(lng)).
		Build()
}
