package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ofekfell/mediaflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseJSON decodes a JSON wire tree.
func ParseJSON(data []byte) (domain.Node, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: parse json: %v", domain.ErrInvalidNode, err)
	}
	return Decode(v)
}

// ParseYAML decodes a YAML wire tree. JSON documents are valid YAML.
func ParseYAML(data []byte) (domain.Node, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", domain.ErrInvalidNode, err)
	}
	return Decode(v)
}

// Parse decodes data in the given format.
func Parse(data []byte, format string) (domain.Node, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	}
	return nil, fmt.Errorf("unsupported format: %q", format)
}

// FormatOf picks a format from a file extension, defaulting to YAML.
func FormatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// ParseFile reads and decodes a workflow document.
func ParseFile(path string) (domain.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow %s: %w", path, err)
	}
	n, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// MarshalJSON encodes a tree as JSON. Keys are emitted in sorted order.
func MarshalJSON(n domain.Node) ([]byte, error) {
	v, err := Encode(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// MarshalYAML encodes a tree as YAML.
func MarshalYAML(n domain.Node) ([]byte, error) {
	v, err := Encode(n)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(v)
}
