// ABOUTME: Loads a partial context override from a YAML file.
// ABOUTME: Lets harnesses hand page content and network errors to the CLI without flags.

package diagnose

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOverride reads an Override from the YAML file at path.
func LoadOverride(path string) (*Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read context override: %w", err)
	}
	return ParseOverride(data)
}

// ParseOverride decodes an Override from YAML. Unknown keys are rejected so
// typos do not silently drop context. An empty document is a zero Override.
func ParseOverride(data []byte) (*Override, error) {
	var ov Override
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ov); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse context override: %w", err)
	}
	return &ov, nil
}
