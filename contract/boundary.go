package contract

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DateTimeLayout is the ISO-8601 form used for valid timestamps: UTC with milliseconds.
const DateTimeLayout = "2006-01-02T15:04:05.000Z"

const fillerChar = "A"

type Outcome int

const (
	Accept Outcome = iota
	Reject
)

func (o Outcome) String() string {
	if o == Accept {
		return "accept"
	}
	return "reject"
}

// BoundaryCase is one input to try for one field. If Missing is true the field is removed
// from the payload entirely and Value is ignored.
type BoundaryCase struct {
	Path    string
	Value   ldvalue.Value
	Missing bool
	Expect  Outcome
	Label   string
}

func (c BoundaryCase) String() string {
	return fmt.Sprintf("%s: %s -> %s", c.Path, c.Label, c.Expect)
}

// malformedDateTimes is the fixed table of values that must not be accepted as ISO-8601
// timestamps. Null and missing values are added separately.
var malformedDateTimes = []struct {
	label string
	value string
}{
	{"date only", "2025-08-27"},
	{"not a date", "invalid-date"},
	{"invalid month", "2025-13-07T08:31:11.214Z"},
	{"invalid day", "2025-02-30T08:31:11.214Z"},
	{"invalid hour", "2025-09-07T25:31:11.214Z"},
	{"invalid minute", "2025-09-07T08:60:11.214Z"},
	{"invalid second", "2025-09-07T08:31:60.214Z"},
	{"empty string", ""},
}

// Generator turns field contracts into boundary cases. It is a pure function of the contract
// apart from Now, which supplies the "current instant" used for a valid timestamp.
type Generator struct {
	Now func() time.Time
}

func (g Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// EntityCases yields the cases for every field of the contract, in definition order.
func (g Generator) EntityCases(e *EntityContract) iter.Seq[BoundaryCase] {
	return func(yield func(BoundaryCase) bool) {
		for _, f := range e.Fields() {
			for c := range g.Cases(f) {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Cases yields the equivalence-class and boundary cases for one field. The sequence can be
// iterated any number of times; each iteration generates the cases afresh.
func (g Generator) Cases(f FieldContract) iter.Seq[BoundaryCase] {
	return func(yield func(BoundaryCase) bool) {
		for _, c := range g.casesFor(f) {
			if !yield(c) {
				return
			}
		}
	}
}

func (g Generator) casesFor(f FieldContract) []BoundaryCase {
	var ret []BoundaryCase
	add := func(label string, v ldvalue.Value, expect Outcome) {
		ret = append(ret, BoundaryCase{Path: f.Path, Value: v, Expect: expect, Label: label})
	}
	addMissing := func() {
		ret = append(ret, BoundaryCase{Path: f.Path, Missing: true, Expect: outcomeOf(f.Optional), Label: "missing"})
	}

	switch f.Kind {
	case NumberRange:
		b := f.Bounds
		add("below minimum "+formatNumber(b.Below), ldvalue.Float64(b.Below), Reject)
		add("minimum "+formatNumber(b.Min), ldvalue.Float64(b.Min), outcomeOf(!b.MinExclusive))
		if b.Interior != nil {
			add("interior "+formatNumber(*b.Interior), ldvalue.Float64(*b.Interior), Accept)
		}
		if b.Max != b.Min {
			add("maximum "+formatNumber(b.Max), ldvalue.Float64(b.Max), outcomeOf(!b.MaxExclusive))
		}
		add("above maximum "+formatNumber(b.Above), ldvalue.Float64(b.Above), Reject)

	case StringLength:
		minLen, maxLen := int(f.Bounds.Min), int(f.Bounds.Max)
		if minLen > 0 {
			add(fmt.Sprintf("length %d below minimum", minLen-1), filler(minLen-1), Reject)
		}
		add(fmt.Sprintf("length %d minimum", minLen), filler(minLen), Accept)
		if maxLen != minLen {
			add(fmt.Sprintf("length %d maximum", maxLen), filler(maxLen), Accept)
		}
		add(fmt.Sprintf("length %d above maximum", maxLen+1), filler(maxLen+1), Reject)

	case Regex:
		for _, s := range f.Samples {
			label := "invalid sample " + strconv.Quote(s.Value)
			if s.Accept {
				label = "valid sample " + strconv.Quote(s.Value)
			}
			add(label, ldvalue.String(s.Value), outcomeOf(s.Accept))
		}

	case ISO8601DateTime:
		add("current instant", ldvalue.String(g.now().UTC().Format(DateTimeLayout)), Accept)
		for _, m := range malformedDateTimes {
			add(m.label+" "+strconv.Quote(m.value), ldvalue.String(m.value), Reject)
		}
		add("null", ldvalue.Null(), Reject)
		addMissing()

	case RequiredObject:
		addMissing()
		add("null", ldvalue.Null(), Reject)
		add("empty object", ldvalue.ObjectBuild().Build(), Reject)
	}
	return ret
}

func outcomeOf(accept bool) Outcome {
	if accept {
		return Accept
	}
	return Reject
}

func filler(n int) ldvalue.Value {
	return ldvalue.String(strings.Repeat(fillerChar, n))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
