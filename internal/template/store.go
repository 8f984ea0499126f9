// =============================================================================
// gridcheck - Template Persistence
// =============================================================================
//
// Templates are saved as plain files next to the workbooks they came from.
// The format is chosen by extension:
//   .json          encoding/json (the canonical persisted shape)
//   .yaml / .yml   gopkg.in/yaml.v3
//   .hjson         Hjson, for hand-edited templates with comments
//
// Loading always ends with Finalize so canonical keys are ready.
//
// =============================================================================

package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for unsupported template file extensions.
var ErrUnknownFormat = errors.New("unknown template format")

// Format is a template file encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatHJSON Format = "hjson"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hjson":
		return FormatHJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Marshal encodes the template.
func (t *Template) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(t, "", "  ")
	case FormatYAML:
		return yaml.Marshal(t)
	case FormatHJSON:
		data, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		var generic interface{}
		if err := hjson.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to convert template to hjson: %w", err)
		}
		return hjson.Marshal(generic)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Unmarshal decodes a template. Settings absent from data keep their
// defaults.
func Unmarshal(data []byte, format Format) (*Template, error) {
	t := &Template{
		AutoFixSettings: DefaultAutoFixSettings(),
		ExportSettings:  DefaultExportSettings(),
	}

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, t); err != nil {
			return nil, fmt.Errorf("failed to parse template json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, t); err != nil {
			return nil, fmt.Errorf("failed to parse template yaml: %w", err)
		}
	case FormatHJSON:
		var generic interface{}
		if err := hjson.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to parse template hjson: %w", err)
		}
		converted, err := json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("failed to convert template hjson: %w", err)
		}
		if err := json.Unmarshal(converted, t); err != nil {
			return nil, fmt.Errorf("failed to parse template hjson: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	t.Finalize()
	return t, nil
}

// Save writes the template to path, creating parent directories.
func (t *Template) Save(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := t.Marshal(format)
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}

// Load reads a template file.
func Load(path string) (*Template, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return Unmarshal(data, format)
}
