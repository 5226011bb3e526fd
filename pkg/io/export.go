// Package io provides JSON file import and export for diagrams.
//
// The on-disk format is the plain JSON encoding of [diagram.Diagram]:
//
//	{
//	  "id": "d1",
//	  "type": "er",
//	  "shapes": [...],
//	  "connectors": [...]
//	}
//
// Import validates referential integrity, so a file edited by hand cannot
// smuggle in a connector pointing at a missing shape.
package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// WriteJSON encodes a diagram as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(d *diagram.Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a diagram to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(d *diagram.Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(d, f)
}
