package querydef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes one or more YAML documents, each a Definition. Unknown
// fields are rejected so typos like "order:" for "order_by:" surface.
func ParseYAML(data []byte) ([]Definition, error) {
	var defs []Definition

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	for {
		var def Definition
		err := decoder.Decode(&def)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if err := validateDefinition(&def); err != nil {
			return nil, fmt.Errorf("invalid definition: %w", err)
		}
		defs = append(defs, def)
	}

	if len(defs) == 0 {
		return nil, errorf("document", "no query definitions found")
	}
	return defs, nil
}

// LoadYAML reads and parses a YAML definition file.
func LoadYAML(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}
	defs, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// validateDefinition checks the required top-level fields.
func validateDefinition(d *Definition) error {
	if d.Name == "" {
		return errorf("name", "name is required")
	}
	if d.Table == "" {
		return errorf(d.Name+".table", "table is required")
	}
	return nil
}
