// Package contract holds the declarative description of what a target API is assumed to
// accept, and generates boundary inputs from it.
//
// A contract is static configuration. It is not derived from the API: it encodes what we
// believe the API should do, and boundary tests exist to find where the two disagree.
package contract

import (
	"math"
	"regexp"
	"strings"
)

type Kind string

const (
	NumberRange     Kind = "number-range"
	StringLength    Kind = "string-length"
	Regex           Kind = "regex"
	ISO8601DateTime Kind = "iso8601-datetime"
	RequiredObject  Kind = "required-object"
)

func (k Kind) valid() bool {
	switch k {
	case NumberRange, StringLength, Regex, ISO8601DateTime, RequiredObject:
		return true
	}
	return false
}

// Bounds applies to number-range and string-length fields. For string-length, Min and Max
// are character counts and must be whole numbers.
//
// Below and Above are the number-range probes just outside the range. They are given as
// exact literals (for example -90.1 for a minimum of -90) instead of being computed, so the
// values sent are exactly the ones the contract author wrote.
type Bounds struct {
	Min          float64
	Max          float64
	MinExclusive bool
	MaxExclusive bool
	Below        float64
	Above        float64
	Interior     *float64
}

// Sample is a literal for a regex field whose expected outcome is fixed by the contract
// author, since regex boundaries can't be derived from an ordering.
type Sample struct {
	Value  string
	Accept bool
}

// FieldContract is the validation rule for one field, identified by a dotted path such as
// "passenger.phone_number".
type FieldContract struct {
	Path     string
	Kind     Kind
	Bounds   Bounds
	Pattern  string
	Samples  []Sample
	Optional bool

	compiled *regexp.Regexp
}

func (f FieldContract) segments() []string {
	return strings.Split(f.Path, ".")
}

func (f *FieldContract) validate() error {
	if f.Path == "" {
		return definitionError("", "field path is empty")
	}
	for _, s := range f.segments() {
		if s == "" {
			return definitionError(f.Path, "field path has an empty segment")
		}
	}
	if !f.Kind.valid() {
		return definitionError(f.Path, "unknown kind %q", f.Kind)
	}
	hasBounds := f.Bounds != (Bounds{})
	if f.Kind != Regex && (f.Pattern != "" || len(f.Samples) != 0) {
		return definitionError(f.Path, "a pattern or samples can only be given for a regex field")
	}

	switch f.Kind {
	case NumberRange:
		b := f.Bounds
		if b.Min > b.Max {
			return definitionError(f.Path, "min %v is greater than max %v", b.Min, b.Max)
		}
		if b.Min == b.Max && (b.MinExclusive || b.MaxExclusive) {
			return definitionError(f.Path, "range (%v, %v) is empty", b.Min, b.Max)
		}
		if !(b.Below < b.Min) {
			return definitionError(f.Path, "below-range probe %v must be less than min %v", b.Below, b.Min)
		}
		if !(b.Above > b.Max) {
			return definitionError(f.Path, "above-range probe %v must be greater than max %v", b.Above, b.Max)
		}
		if b.Interior != nil && !f.inRange(*b.Interior) {
			return definitionError(f.Path, "interior probe %v is outside the range", *b.Interior)
		}
	case StringLength:
		b := f.Bounds
		if b.Min < 0 || b.Min != math.Trunc(b.Min) || b.Max != math.Trunc(b.Max) {
			return definitionError(f.Path, "string lengths must be non-negative whole numbers")
		}
		if b.Min > b.Max {
			return definitionError(f.Path, "min length %v is greater than max length %v", b.Min, b.Max)
		}
		if b.MinExclusive || b.MaxExclusive || b.Below != 0 || b.Above != 0 || b.Interior != nil {
			return definitionError(f.Path, "string lengths only take an inclusive min and max")
		}
	case Regex:
		if hasBounds {
			return definitionError(f.Path, "regex and range rules are mutually exclusive")
		}
		rx, err := regexp.Compile(f.Pattern)
		if err != nil {
			return &ContractDefinitionError{Path: f.Path, Reason: "invalid pattern", Err: err}
		}
		if len(f.Samples) == 0 {
			return definitionError(f.Path, "a regex field needs at least one sample")
		}
		for _, s := range f.Samples {
			if rx.MatchString(s.Value) != s.Accept {
				return definitionError(f.Path, "sample %q is tagged accept=%t but the pattern disagrees", s.Value, s.Accept)
			}
		}
		f.compiled = rx
	default:
		if hasBounds {
			return definitionError(f.Path, "%s fields take no bounds", f.Kind)
		}
	}
	return nil
}

func (f FieldContract) inRange(v float64) bool {
	b := f.Bounds
	if v < b.Min || (b.MinExclusive && v == b.Min) {
		return false
	}
	if v > b.Max || (b.MaxExclusive && v == b.Max) {
		return false
	}
	return true
}

// EntityContract is the full validation surface of one resource, in definition order.
type EntityContract struct {
	Name   string
	order  []string
	fields map[string]*FieldContract
}

func NewEntityContract(name string) *EntityContract {
	return &EntityContract{Name: name, fields: make(map[string]*FieldContract)}
}

// Define registers a field. Redefining a path with the same kind replaces its rule; any other
// redefinition, or nesting a field under something that isn't an object, is a conflict.
func (e *EntityContract) Define(f FieldContract) error {
	if err := f.validate(); err != nil {
		return err
	}
	if existing, ok := e.fields[f.Path]; ok {
		if existing.Kind != f.Kind {
			return conflict(f.Path, existing.Kind, f.Kind)
		}
		*existing = f
		return nil
	}
	segs := f.segments()
	for i := 1; i < len(segs); i++ {
		ancestor := strings.Join(segs[:i], ".")
		if a, ok := e.fields[ancestor]; ok && a.Kind != RequiredObject {
			return conflict(ancestor, a.Kind, RequiredObject)
		}
	}
	if f.Kind != RequiredObject {
		for _, p := range e.order {
			if strings.HasPrefix(p, f.Path+".") {
				return conflict(f.Path, RequiredObject, f.Kind)
			}
		}
	}
	fc := f
	e.fields[f.Path] = &fc
	e.order = append(e.order, f.Path)
	return nil
}

// MustDefine is like Define but panics on error. It is meant for contracts that are built
// into the program, where an error is a programming mistake.
func (e *EntityContract) MustDefine(f FieldContract) *EntityContract {
	if err := e.Define(f); err != nil {
		panic(err)
	}
	return e
}

func (e *EntityContract) Get(path string) (FieldContract, error) {
	f, ok := e.fields[path]
	if !ok {
		return FieldContract{}, &NotFoundError{Path: path}
	}
	return *f, nil
}

func (e *EntityContract) Fields() []FieldContract {
	ret := make([]FieldContract, 0, len(e.order))
	for _, p := range e.order {
		ret = append(ret, *e.fields[p])
	}
	return ret
}

func (e *EntityContract) Paths() []string {
	return append([]string(nil), e.order...)
}

func conflict(path string, existing, requested Kind) error {
	c := &ConflictError{Path: path, Existing: existing, Requested: requested}
	return &ContractDefinitionError{Path: path, Reason: c.Error(), Err: c}
}
