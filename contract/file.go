package contract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type fileContract struct {
	Entity string      `yaml:"entity"`
	Fields []fileField `yaml:"fields"`
}

type fileField struct {
	Path         string       `yaml:"path"`
	Kind         Kind         `yaml:"kind"`
	Optional     bool         `yaml:"optional"`
	Min          *float64     `yaml:"min"`
	Max          *float64     `yaml:"max"`
	MinExclusive bool         `yaml:"minExclusive"`
	MaxExclusive bool         `yaml:"maxExclusive"`
	Below        *float64     `yaml:"below"`
	Above        *float64     `yaml:"above"`
	Interior     *float64     `yaml:"interior"`
	Pattern      string       `yaml:"pattern"`
	Samples      []fileSample `yaml:"samples"`
}

type fileSample struct {
	Value  string `yaml:"value"`
	Accept bool   `yaml:"accept"`
}

// Load reads a contract from a YAML file.
func Load(path string) (*EntityContract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse reads a contract from YAML. Unknown keys are rejected, so that a misspelled key is
// reported instead of silently producing a looser contract.
//
//	entity: journey
//	fields:
//	  - path: pickup.latitude
//	    kind: number-range
//	    min: -90
//	    max: 90
//	    below: -90.1
//	    above: 90.1
func Parse(data []byte) (*EntityContract, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var fc fileContract
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, definitionError("", "contract file is empty")
		}
		return nil, &ContractDefinitionError{Reason: "malformed contract file", Err: err}
	}
	if fc.Entity == "" {
		return nil, definitionError("", "contract file has no entity name")
	}
	if len(fc.Fields) == 0 {
		return nil, definitionError("", "contract for %q defines no fields", fc.Entity)
	}

	e := NewEntityContract(fc.Entity)
	for i, ff := range fc.Fields {
		f, err := ff.toFieldContract()
		if err != nil {
			return nil, err
		}
		if err := e.Define(f); err != nil {
			return nil, fmt.Errorf("field #%d: %w", i+1, err)
		}
	}
	return e, nil
}

func (ff fileField) toFieldContract() (FieldContract, error) {
	f := FieldContract{
		Path:     ff.Path,
		Kind:     ff.Kind,
		Optional: ff.Optional,
		Pattern:  ff.Pattern,
	}
	for _, s := range ff.Samples {
		f.Samples = append(f.Samples, Sample{Value: s.Value, Accept: s.Accept})
	}
	if ff.Kind == NumberRange || ff.Kind == StringLength {
		if ff.Min == nil || ff.Max == nil {
			return f, definitionError(ff.Path, "%s needs both min and max", ff.Kind)
		}
	}
	if ff.Kind == NumberRange && (ff.Below == nil || ff.Above == nil) {
		return f, definitionError(ff.Path, "number-range needs explicit below and above probes")
	}
	f.Bounds = Bounds{
		MinExclusive: ff.MinExclusive,
		MaxExclusive: ff.MaxExclusive,
		Interior:     ff.Interior,
	}
	for _, p := range []struct {
		src *float64
		dst *float64
	}{{ff.Min, &f.Bounds.Min}, {ff.Max, &f.Bounds.Max}, {ff.Below, &f.Bounds.Below}, {ff.Above, &f.Bounds.Above}} {
		if p.src != nil {
			*p.dst = *p.src
		}
	}
	return f, nil
}
