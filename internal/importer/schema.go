// Package importer reads project export payloads back into projects.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexanderramin/taskpilot/internal/scheduler"
)

// LoadFile reads a JSON file holding one payload object or an array of
// them, in the shape produced by `parse --payload` and `assign --json`.
func LoadFile(path string) ([]scheduler.Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	return Decode(data)
}

// Decode parses one payload object or an array of payloads. Unknown fields
// are rejected so typos do not silently drop data.
func Decode(data []byte) ([]scheduler.Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("import file is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	if trimmed[0] == '[' {
		var payloads []scheduler.Payload
		if err := dec.Decode(&payloads); err != nil {
			return nil, fmt.Errorf("parsing import JSON: %w", err)
		}
		return payloads, nil
	}
	var p scheduler.Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing import JSON: %w", err)
	}
	return []scheduler.Payload{p}, nil
}
