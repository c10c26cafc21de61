package validate

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Shape is a compiled JSON schema that a response body must satisfy.
type Shape struct {
	name   string
	schema *jsonschema.Schema
}

func CompileShape(name, schema string) (*Shape, error) {
	s, err := jsonschema.CompileString(name, schema)
	if err != nil {
		return nil, err
	}
	return &Shape{name: name, schema: s}, nil
}

func (s *Shape) Name() string {
	return s.name
}

func (s *Shape) Check(body ldvalue.Value) error {
	return s.schema.Validate(body.AsArbitraryValue())
}
