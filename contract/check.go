package contract

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Violation describes one field that does not satisfy its contract.
type Violation struct {
	Path   string
	Reason string
}

func (v Violation) String() string {
	return v.Path + ": " + v.Reason
}

// Check evaluates a document against the contract locally, without any network traffic. In
// partial mode, absent fields are not violations; that is how update payloads are checked.
func (e *EntityContract) Check(doc ldvalue.Value, partial bool) []Violation {
	var ret []Violation
	for _, f := range e.Fields() {
		v, present := Lookup(doc, f.Path)
		if !present {
			if !partial && !f.Optional && !e.coveredByAncestor(doc, f.Path) {
				ret = append(ret, Violation{Path: f.Path, Reason: "is required"})
			}
			continue
		}
		if reason := f.Evaluate(v); reason != "" {
			ret = append(ret, Violation{Path: f.Path, Reason: reason})
		}
	}
	return ret
}

// coveredByAncestor reports whether the nearest declared ancestor of path is absent or not an
// object. That ancestor reports its own violation, so its children are not listed separately.
// A path with no declared ancestor is never covered.
func (e *EntityContract) coveredByAncestor(doc ldvalue.Value, path string) bool {
	for i := strings.LastIndex(path, "."); i > 0; i = strings.LastIndex(path[:i], ".") {
		ancestor := path[:i]
		if _, declared := e.fields[ancestor]; !declared {
			continue
		}
		v, ok := Lookup(doc, ancestor)
		return !ok || v.Type() != ldvalue.ObjectType
	}
	return false
}

// Evaluate returns an empty string if the value satisfies the rule, or a description of why
// it doesn't.
func (f FieldContract) Evaluate(v ldvalue.Value) string {
	switch f.Kind {
	case NumberRange:
		if v.Type() != ldvalue.NumberType {
			return fmt.Sprintf("must be a number, got %s", v.Type())
		}
		if !f.inRange(v.Float64Value()) {
			return fmt.Sprintf("%s is out of range", formatNumber(v.Float64Value()))
		}
	case StringLength:
		if v.Type() != ldvalue.StringType {
			return fmt.Sprintf("must be a string, got %s", v.Type())
		}
		n := utf8.RuneCountInString(v.StringValue())
		if float64(n) < f.Bounds.Min || float64(n) > f.Bounds.Max {
			return fmt.Sprintf("length %d is not between %v and %v", n, f.Bounds.Min, f.Bounds.Max)
		}
	case Regex:
		if v.Type() != ldvalue.StringType {
			return fmt.Sprintf("must be a string, got %s", v.Type())
		}
		rx := f.compiled
		if rx == nil {
			var err error
			if rx, err = regexp.Compile(f.Pattern); err != nil {
				return fmt.Sprintf("pattern %q is invalid: %s", f.Pattern, err)
			}
		}
		if !rx.MatchString(v.StringValue()) {
			return fmt.Sprintf("%q does not match %s", v.StringValue(), f.Pattern)
		}
	case ISO8601DateTime:
		if v.Type() != ldvalue.StringType {
			return fmt.Sprintf("must be an ISO-8601 string, got %s", v.Type())
		}
		if _, err := time.Parse(time.RFC3339, v.StringValue()); err != nil {
			return fmt.Sprintf("%q is not an ISO-8601 date-time", v.StringValue())
		}
	case RequiredObject:
		if v.Type() != ldvalue.ObjectType {
			return fmt.Sprintf("must be an object, got %s", v.Type())
		}
		if v.Count() == 0 {
			return "must not be empty"
		}
	}
	return ""
}
