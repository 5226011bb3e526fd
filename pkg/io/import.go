package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// ReadJSON decodes a JSON diagram from r.
//
// The decoded diagram is validated: every shape payload must match its
// declared type and every connector endpoint must reference an existing
// shape. Validation errors carry the structured codes from pkg/errors,
// so callers can use errors.Is to check for specific failures.
//
// The returned diagram is independent of r and can be modified safely
// after ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*diagram.Diagram, error) {
	var d diagram.Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ImportJSON reads a JSON file at path and returns the decoded diagram.
// The error wraps the underlying cause with the file path for context.
func ImportJSON(path string) (*diagram.Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	d, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
