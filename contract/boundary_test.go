package contract

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var fixedNow = time.Date(2025, 9, 7, 8, 31, 11, 214000000, time.UTC)

func fixedGenerator() Generator {
	return Generator{Now: func() time.Time { return fixedNow }}
}

type caseSummary struct {
	value   string
	missing bool
	expect  Outcome
}

func summarize(cases []BoundaryCase) []caseSummary {
	var ret []caseSummary
	for _, c := range cases {
		v := c.Value.JSONString()
		if c.Missing {
			v = ""
		}
		ret = append(ret, caseSummary{value: v, missing: c.Missing, expect: c.Expect})
	}
	return ret
}

func TestNumberRangeCases(t *testing.T) {
	e := Journey()
	f, err := e.Get(PathPickupLatitude)
	require.NoError(t, err)

	cases := slices.Collect(fixedGenerator().Cases(f))
	assert.Equal(t, []caseSummary{
		{value: "-90.1", expect: Reject},
		{value: "-90", expect: Accept},
		{value: "1.3521", expect: Accept},
		{value: "90", expect: Accept},
		{value: "90.1", expect: Reject},
	}, summarize(cases))
	for _, c := range cases {
		assert.Equal(t, PathPickupLatitude, c.Path)
	}
	assert.Equal(t, "below minimum -90.1", cases[0].Label)
}

func TestNumberRangeExclusiveBounds(t *testing.T) {
	f := FieldContract{Path: "x", Kind: NumberRange, Bounds: Bounds{
		Min: 0, Max: 1, MinExclusive: true, MaxExclusive: true, Below: -0.5, Above: 1.5,
	}}
	require.NoError(t, NewEntityContract("thing").Define(f))
	assert.Equal(t, []caseSummary{
		{value: "-0.5", expect: Reject},
		{value: "0", expect: Reject},
		{value: "1", expect: Reject},
		{value: "1.5", expect: Reject},
	}, summarize(slices.Collect(fixedGenerator().Cases(f))))
}

func TestStringLengthCases(t *testing.T) {
	f, err := Journey().Get(PathPassengerSurname)
	require.NoError(t, err)

	cases := slices.Collect(fixedGenerator().Cases(f))
	require.Len(t, cases, 4)
	lengths := []int{}
	for _, c := range cases {
		lengths = append(lengths, len(c.Value.StringValue()))
	}
	assert.Equal(t, []int{0, 1, 50, 51}, lengths)
	assert.Equal(t, []Outcome{Reject, Accept, Accept, Reject},
		[]Outcome{cases[0].Expect, cases[1].Expect, cases[2].Expect, cases[3].Expect})
}

func TestStringLengthWithZeroMinimumHasNoBelowCase(t *testing.T) {
	f := FieldContract{Path: "s", Kind: StringLength, Bounds: Bounds{Min: 0, Max: 3}}
	assert.Equal(t, []caseSummary{
		{value: `""`, expect: Accept},
		{value: `"AAA"`, expect: Accept},
		{value: `"AAAA"`, expect: Reject},
	}, summarize(slices.Collect(fixedGenerator().Cases(f))))
}

func TestRegexCasesComeFromSamples(t *testing.T) {
	f, err := Journey().Get(PathPassengerPhone)
	require.NoError(t, err)

	cases := slices.Collect(fixedGenerator().Cases(f))
	require.Len(t, cases, len(f.Samples))
	for i, s := range f.Samples {
		assert.Equal(t, ldvalue.String(s.Value), cases[i].Value)
		assert.Equal(t, outcomeOf(s.Accept), cases[i].Expect)
	}
	assert.Equal(t, `valid sample "+6598765432"`, cases[0].Label)
}

func TestDateTimeCases(t *testing.T) {
	f, err := Journey().Get(PathDepartureDate)
	require.NoError(t, err)

	cases := slices.Collect(fixedGenerator().Cases(f))
	require.Len(t, cases, 1+len(malformedDateTimes)+2)

	assert.Equal(t, ldvalue.String("2025-09-07T08:31:11.214Z"), cases[0].Value)
	assert.Equal(t, Accept, cases[0].Expect)
	for _, c := range cases[1:] {
		assert.Equal(t, Reject, c.Expect, c.Label)
	}
	last := cases[len(cases)-1]
	assert.True(t, last.Missing)
	assert.Equal(t, ldvalue.Null(), cases[len(cases)-2].Value)
}

func TestRequiredObjectCases(t *testing.T) {
	f := FieldContract{Path: "pickup", Kind: RequiredObject}
	cases := slices.Collect(fixedGenerator().Cases(f))
	assert.Equal(t, []caseSummary{
		{missing: true, expect: Reject},
		{value: "null", expect: Reject},
		{value: "{}", expect: Reject},
	}, summarize(cases))

	f.Optional = true
	cases = slices.Collect(fixedGenerator().Cases(f))
	assert.Equal(t, Accept, cases[0].Expect)
}

func TestEntityCasesCoverEveryField(t *testing.T) {
	e := Journey()
	seen := map[string]int{}
	for c := range fixedGenerator().EntityCases(e) {
		seen[c.Path]++
	}
	for _, p := range e.Paths() {
		assert.NotZero(t, seen[p], p)
	}
}

func TestEntityCasesStopsWhenConsumerStops(t *testing.T) {
	n := 0
	for range fixedGenerator().EntityCases(Journey()) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestGeneratedCasesAgreeWithEvaluator(t *testing.T) {
	e := Journey()
	for c := range fixedGenerator().EntityCases(e) {
		if c.Missing {
			continue
		}
		f, err := e.Get(c.Path)
		require.NoError(t, err)
		accepted := f.Evaluate(c.Value) == ""
		assert.Equal(t, c.Expect == Accept, accepted, c.String())
	}
}

func TestNumberRangeBoundaryProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("min-δ and max+δ reject, min and max accept", prop.ForAll(
		func(lo, width int, delta float64) bool {
			low := float64(lo)
			high := float64(lo + width)
			f := FieldContract{Path: "n", Kind: NumberRange, Bounds: Bounds{
				Min: low, Max: high, Below: low - delta, Above: high + delta,
			}}
			if NewEntityContract("p").Define(f) != nil {
				return false
			}
			byValue := map[float64]Outcome{}
			for c := range (Generator{}).Cases(f) {
				byValue[c.Value.Float64Value()] = c.Expect
				if (f.Evaluate(c.Value) == "") != (c.Expect == Accept) {
					return false
				}
			}
			return byValue[low-delta] == Reject && byValue[low] == Accept &&
				byValue[high] == Accept && byValue[high+delta] == Reject
		},
		gen.IntRange(-1000, 1000),
		gen.IntRange(0, 1000),
		gen.OneConstOf(0.1, 0.5, 1.0),
	))

	properties.Property("string lengths min-1 and max+1 reject", prop.ForAll(
		func(lo, width int) bool {
			f := FieldContract{Path: "s", Kind: StringLength, Bounds: Bounds{Min: float64(lo), Max: float64(lo + width)}}
			if NewEntityContract("p").Define(f) != nil {
				return false
			}
			for _, c := range slices.Collect(Generator{}.Cases(f)) {
				n := len(c.Value.StringValue())
				inRange := n >= lo && n <= lo+width
				if inRange != (c.Expect == Accept) {
					return false
				}
				if !strings.HasPrefix(c.Label, "length ") {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 60),
		gen.IntRange(0, 60),
	))

	properties.Property("sequences are restartable", prop.ForAll(
		func(lo, width int) bool {
			f := FieldContract{Path: "s", Kind: StringLength, Bounds: Bounds{Min: float64(lo), Max: float64(lo + width)}}
			seq := Generator{}.Cases(f)
			first := summarize(slices.Collect(seq))
			second := summarize(slices.Collect(seq))
			return slices.Equal(first, second)
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
