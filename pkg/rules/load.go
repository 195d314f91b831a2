package rules

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a rule table in YAML format. Events found in the input replace
// the built-in event of the same name; weightUnits default to the built-in
// values when omitted.
func Load(r io.Reader) (*Table, error) {
	in := Table{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	ret := Default()
	for name, ev := range in.Events {
		ret.Events[name] = ev
	}
	if len(in.WeightUnits) > 0 {
		ret.WeightUnits = in.WeightUnits
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// LoadFile reads the table from path. An empty path yields the defaults.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Marshal encodes the table as YAML.
func (t *Table) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
