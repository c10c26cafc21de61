// Package validate compares what a target actually answered with what a test expected.
//
// Field comparison is partial: only the keys an expectation names are compared, so fields the
// server invents (identifiers, timestamps) never cause a mismatch unless a test asks for them.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/journeyqa/journey-contract-tests/framework"

	"github.com/tidwall/gjson"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const missingValue = "<missing>"

// Expectation is what a test expects a response to look like. Status is always checked; the
// other parts are checked only if they are set.
type Expectation struct {
	Status int
	Fields ldvalue.Value            // object whose keys are compared with the same keys of the body
	Paths  map[string]ldvalue.Value // dotted paths into the body, such as "pickup.latitude"
	Shape  *Shape
}

func (e Expectation) needsBody() bool {
	return e.Fields.Type() == ldvalue.ObjectType || len(e.Paths) != 0 || e.Shape != nil
}

// AssertionMismatch is one difference between the expected and the actual response.
type AssertionMismatch struct {
	Field    string
	Expected string
	Actual   string
}

func (m AssertionMismatch) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", m.Field, m.Expected, m.Actual)
}

// MalformedResponseError means the expectation needed a JSON body and the response didn't
// have one that could be parsed.
type MalformedResponseError struct {
	Status int
	Body   string
}

func (e *MalformedResponseError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("response with status %d had no body", e.Status)
	}
	return fmt.Sprintf("response with status %d did not have a JSON body: %s", e.Status, e.Body)
}

type Result struct {
	Passed     bool
	Mismatches []AssertionMismatch
}

// Expected and Actual summarize the mismatches on each side, for reports.
func (r Result) Expected() string {
	return r.join(func(m AssertionMismatch) string { return m.Field + "=" + m.Expected })
}

func (r Result) Actual() string {
	return r.join(func(m AssertionMismatch) string { return m.Field + "=" + m.Actual })
}

func (r Result) Detail() string {
	return r.join(AssertionMismatch.Error)
}

func (r Result) join(fn func(AssertionMismatch) string) string {
	parts := make([]string, 0, len(r.Mismatches))
	for _, m := range r.Mismatches {
		parts = append(parts, fn(m))
	}
	return strings.Join(parts, "; ")
}

// Validate checks the status and, if expectedFields is an object, each of its keys.
func Validate(resp framework.ResponseDescriptor, expectedStatus int, expectedFields ldvalue.Value) (Result, error) {
	return Expectation{Status: expectedStatus, Fields: expectedFields}.Check(resp)
}

// Check compares a response with the expectation. Mismatches are reported in the Result; the
// only error is a *MalformedResponseError.
func (e Expectation) Check(resp framework.ResponseDescriptor) (Result, error) {
	var r Result
	if resp.Status != e.Status {
		r.Mismatches = append(r.Mismatches, AssertionMismatch{
			Field:    "status",
			Expected: strconv.Itoa(e.Status),
			Actual:   strconv.Itoa(resp.Status),
		})
	}
	if e.needsBody() {
		if !resp.Parsed {
			return r, &MalformedResponseError{Status: resp.Status, Body: string(resp.RawBody)}
		}
		r.Mismatches = append(r.Mismatches, compareFields(e.Fields, resp.Body)...)
		r.Mismatches = append(r.Mismatches, comparePaths(e.Paths, resp.RawBody)...)
		if e.Shape != nil {
			if err := e.Shape.Check(resp.Body); err != nil {
				r.Mismatches = append(r.Mismatches, AssertionMismatch{
					Field:    "shape",
					Expected: e.Shape.Name(),
					Actual:   firstLine(err.Error()),
				})
			}
		}
	}
	r.Passed = len(r.Mismatches) == 0
	return r, nil
}

func compareFields(expected, actual ldvalue.Value) []AssertionMismatch {
	if expected.Type() != ldvalue.ObjectType {
		return nil
	}
	var ret []AssertionMismatch
	keys := expected.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		want := expected.GetByKey(k)
		got, present := lookupKey(actual, k)
		switch {
		case !present:
			ret = append(ret, AssertionMismatch{Field: k, Expected: want.JSONString(), Actual: missingValue})
		case !want.Equal(got):
			ret = append(ret, AssertionMismatch{Field: k, Expected: want.JSONString(), Actual: got.JSONString()})
		}
	}
	return ret
}

func comparePaths(expected map[string]ldvalue.Value, raw []byte) []AssertionMismatch {
	paths := make([]string, 0, len(expected))
	for p := range expected {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var ret []AssertionMismatch
	for _, p := range paths {
		want := expected[p]
		result := gjson.GetBytes(raw, p)
		if !result.Exists() {
			ret = append(ret, AssertionMismatch{Field: p, Expected: want.JSONString(), Actual: missingValue})
			continue
		}
		var got ldvalue.Value
		if err := json.Unmarshal([]byte(result.Raw), &got); err != nil || !want.Equal(got) {
			ret = append(ret, AssertionMismatch{Field: p, Expected: want.JSONString(), Actual: result.Raw})
		}
	}
	return ret
}

// StringAt reads a string from a dotted path in a raw JSON body, such as a generated
// identifier. The second result is false if there is no string there.
func StringAt(raw []byte, path string) (string, bool) {
	result := gjson.GetBytes(raw, path)
	if result.Type != gjson.String {
		return "", false
	}
	return result.String(), true
}

func lookupKey(obj ldvalue.Value, key string) (ldvalue.Value, bool) {
	if obj.Type() != ldvalue.ObjectType {
		return ldvalue.Null(), false
	}
	for _, k := range obj.Keys() {
		if k == key {
			return obj.GetByKey(k), true
		}
	}
	return ldvalue.Null(), false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
