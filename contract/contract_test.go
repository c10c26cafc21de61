package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberField(path string, min, max, below, above float64) FieldContract {
	return FieldContract{Path: path, Kind: NumberRange, Bounds: Bounds{Min: min, Max: max, Below: below, Above: above}}
}

func TestDefineAndGet(t *testing.T) {
	e := NewEntityContract("thing")
	require.NoError(t, e.Define(numberField("a.b", 0, 10, -1, 11)))

	f, err := e.Get("a.b")
	require.NoError(t, err)
	assert.Equal(t, NumberRange, f.Kind)
	assert.Equal(t, float64(10), f.Bounds.Max)

	_, err = e.Get("a.c")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "a.c", nf.Path)
}

func TestRedefineWithSameKindReplacesRule(t *testing.T) {
	e := NewEntityContract("thing")
	require.NoError(t, e.Define(numberField("x", 0, 10, -1, 11)))
	require.NoError(t, e.Define(numberField("x", 0, 20, -1, 21)))

	f, err := e.Get("x")
	require.NoError(t, err)
	assert.Equal(t, float64(20), f.Bounds.Max)
	assert.Equal(t, []string{"x"}, e.Paths())
}

func TestDefineConflicts(t *testing.T) {
	t.Run("different kind for same path", func(t *testing.T) {
		e := NewEntityContract("thing")
		require.NoError(t, e.Define(numberField("x", 0, 10, -1, 11)))
		err := e.Define(FieldContract{Path: "x", Kind: ISO8601DateTime})

		var conflict *ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, NumberRange, conflict.Existing)
		assert.Equal(t, ISO8601DateTime, conflict.Requested)
		var def *ContractDefinitionError
		assert.True(t, errors.As(err, &def))
	})

	t.Run("child of a non-object field", func(t *testing.T) {
		e := NewEntityContract("thing")
		require.NoError(t, e.Define(numberField("x", 0, 10, -1, 11)))
		err := e.Define(numberField("x.y", 0, 10, -1, 11))
		var conflict *ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, "x", conflict.Path)
	})

	t.Run("leaf over existing children", func(t *testing.T) {
		e := NewEntityContract("thing")
		require.NoError(t, e.Define(numberField("x.y", 0, 10, -1, 11)))
		err := e.Define(FieldContract{Path: "x", Kind: ISO8601DateTime})
		var conflict *ConflictError
		assert.True(t, errors.As(err, &conflict))
	})

	t.Run("object over existing children is fine", func(t *testing.T) {
		e := NewEntityContract("thing")
		require.NoError(t, e.Define(numberField("x.y", 0, 10, -1, 11)))
		assert.NoError(t, e.Define(FieldContract{Path: "x", Kind: RequiredObject}))
	})
}

func TestInvalidDefinitions(t *testing.T) {
	interior := float64(50)
	for name, f := range map[string]FieldContract{
		"empty path":             {Kind: ISO8601DateTime},
		"empty segment":          {Path: "a..b", Kind: ISO8601DateTime},
		"unknown kind":           {Path: "a", Kind: "color"},
		"min greater than max":   numberField("a", 10, 0, -1, 11),
		"below not below":        numberField("a", 0, 10, 0, 11),
		"above not above":        numberField("a", 0, 10, -1, 10),
		"empty exclusive range":  {Path: "a", Kind: NumberRange, Bounds: Bounds{Min: 1, Max: 1, MinExclusive: true, Below: 0, Above: 2}},
		"interior outside range": {Path: "a", Kind: NumberRange, Bounds: Bounds{Min: 0, Max: 10, Below: -1, Above: 11, Interior: &interior}},
		"fractional length":      {Path: "a", Kind: StringLength, Bounds: Bounds{Min: 0.5, Max: 3}},
		"negative length":        {Path: "a", Kind: StringLength, Bounds: Bounds{Min: -1, Max: 3}},
		"length min over max":    {Path: "a", Kind: StringLength, Bounds: Bounds{Min: 5, Max: 3}},
		"length with probes":     {Path: "a", Kind: StringLength, Bounds: Bounds{Min: 1, Max: 3, Above: 9}},
		"regex with range":       {Path: "a", Kind: Regex, Pattern: "^a$", Samples: []Sample{{"a", true}}, Bounds: Bounds{Max: 3}},
		"pattern on non-regex":   {Path: "a", Kind: ISO8601DateTime, Pattern: "^a$"},
		"bad pattern":            {Path: "a", Kind: Regex, Pattern: "(", Samples: []Sample{{"a", true}}},
		"regex without samples":  {Path: "a", Kind: Regex, Pattern: "^a$"},
		"sample disagrees":       {Path: "a", Kind: Regex, Pattern: "^a$", Samples: []Sample{{"b", true}}},
		"bounds on object":       {Path: "a", Kind: RequiredObject, Bounds: Bounds{Max: 1}},
	} {
		t.Run(name, func(t *testing.T) {
			err := NewEntityContract("thing").Define(f)
			var def *ContractDefinitionError
			assert.True(t, errors.As(err, &def), "expected a ContractDefinitionError, got %v", err)
		})
	}
}

func TestMustDefinePanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		NewEntityContract("thing").MustDefine(numberField("a", 10, 0, -1, 11))
	})
}

func TestJourneyContract(t *testing.T) {
	e := Journey()
	assert.Equal(t, []string{
		PathPickup, PathPickupLatitude, PathPickupLongitude,
		PathDropoff, PathDropoffLatitude, PathDropoffLongitude,
		PathPassenger, PathPassengerName, PathPassengerSurname, PathPassengerPhone,
		PathDepartureDate,
	}, e.Paths())

	name, err := e.Get(PathPassengerName)
	require.NoError(t, err)
	assert.Equal(t, StringLength, name.Kind)
	assert.Equal(t, float64(1), name.Bounds.Min)
	assert.Equal(t, float64(50), name.Bounds.Max)
}
