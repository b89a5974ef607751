package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when a circuit document fails to decode or validate.
var ErrInvalidDocument = errors.New("invalid circuit document")

const circuitSchemaURL = "qubitviz://circuit.schema.json"

const circuitSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["qubits", "gates"],
  "properties": {
    "qubits": {"type": "integer", "minimum": 1, "maximum": 1024},
    "steps": {"type": "integer", "minimum": 0},
    "gates": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "qubit", "time"],
        "properties": {
          "type": {"enum": ["H", "X", "Y", "Z", "S", "T", "RX", "RY", "RZ", "CNOT", "TOFFOLI", "SWAP", "MEASURE"]},
          "qubit": {"type": "integer", "minimum": 0},
          "time": {"type": "integer", "minimum": 0},
          "controls": {"type": "array", "items": {"type": "integer", "minimum": 0}, "maxItems": 2},
          "targets": {"type": "array", "items": {"type": "integer", "minimum": 0}, "maxItems": 1},
          "params": {"type": "array", "items": {"type": "number"}, "maxItems": 1}
        }
      }
    }
  }
}`

var circuitSchemaCompiled = jsonschema.MustCompileString(circuitSchemaURL, circuitSchema)

// DocumentFormat identifies a circuit file encoding.
type DocumentFormat int

const (
	FormatJSON DocumentFormat = iota
	FormatYAML
	FormatQASM
)

// FormatForPath picks the document format from a file extension.
func FormatForPath(path string) (DocumentFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".qasm":
		return FormatQASM, nil
	}
	return 0, fmt.Errorf("%w: unrecognised extension %q", ErrInvalidDocument, filepath.Ext(path))
}

// DecodeCircuit decodes and validates a circuit document.
func DecodeCircuit(data []byte, format DocumentFormat) (*Circuit, error) {
	var c Circuit
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	case FormatQASM:
		parsed, err := ParseQASM(string(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		c = *parsed
	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrInvalidDocument, format)
	}

	if err := validateCircuitSchema(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return &c, nil
}

// validateCircuitSchema checks the JSON form of c against the document schema,
// so JSON, YAML and QASM inputs are held to the same rules.
func validateCircuitSchema(c *Circuit) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := circuitSchemaCompiled.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

// EncodeCircuit renders c in the given format.
func EncodeCircuit(c *Circuit, format DocumentFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(c, "", "  ")
	case FormatYAML:
		return yaml.Marshal(c)
	case FormatQASM:
		return []byte(c.ToQASM()), nil
	}
	return nil, fmt.Errorf("%w: unknown format %d", ErrInvalidDocument, format)
}

// LoadCircuitFile reads a circuit document, choosing the decoder by extension.
func LoadCircuitFile(path string) (*Circuit, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read circuit: %w", err)
	}
	c, err := DecodeCircuit(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// SaveCircuitFile writes c to path in the format implied by its extension.
func SaveCircuitFile(path string, c *Circuit) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := EncodeCircuit(c, format)
	if err != nil {
		return fmt.Errorf("encode circuit: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
