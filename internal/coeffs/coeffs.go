// Package coeffs loads prototype filter coefficients from a JSON or YAML
// document. Documents are parsed with yaml.v3, which accepts JSON as well.
package coeffs

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultField is the document field holding the coefficient array.
const DefaultField = "lpfCoeffs"

// ErrConfiguration indicates a missing or malformed coefficient document.
var ErrConfiguration = errors.New("coeffs: invalid coefficient document")

// Load reads the document at path and returns the numeric array stored under
// field. An empty field means DefaultField.
func Load(path, field string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	taps, err := Parse(data, field)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return taps, nil
}

// Parse decodes data and returns the numeric array stored under field.
func Parse(data []byte, field string) ([]float64, error) {
	if field == "" {
		field = DefaultField
	}

	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrConfiguration)
	}

	node, ok := doc[field]
	if !ok {
		return nil, fmt.Errorf("%w: field %q not found", ErrConfiguration, field)
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: field %q is not an array", ErrConfiguration, field)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("%w: field %q is empty", ErrConfiguration, field)
	}

	taps := make([]float64, len(node.Content))
	for i, elem := range node.Content {
		if tag := elem.ShortTag(); elem.Kind != yaml.ScalarNode || (tag != "!!int" && tag != "!!float") {
			return nil, fmt.Errorf("%w: %s[%d] is not a number (line %d)",
				ErrConfiguration, field, i, elem.Line)
		}
		if err := elem.Decode(&taps[i]); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %w", ErrConfiguration, field, i, err)
		}
	}

	return taps, nil
}
