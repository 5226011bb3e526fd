// Package dialect defines the contract between the diagram model and the
// textual diagram languages.
//
// One Codec per dialect converts both ways: Export emits syntax text from
// shapes and connectors, Import parses text into shapes and connectors
// that do not yet exist in any diagram. Imported connectors therefore
// reference shapes by slice index, not id; Materialize mints ids and
// resolves the indices when the content is committed through a command.
//
// The contract is lossy only in documented ways: z-order, explicit
// waypoints, locked/preview flags and overlay connectors never survive a
// round trip through text.
package dialect

import (
	"fmt"
	"strings"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

// ImportOptions controls placement of imported content.
type ImportOptions struct {
	// Anchor, when set, is the canvas point the imported content's
	// bounding box is centered on. Without it shapes keep the positions
	// the dialect's default layout assigned.
	Anchor *diagram.Point
}

// Connector is an imported connector whose endpoints reference shapes by
// index into the ImportResult's shape slice. The embedded shape-id fields
// of the diagram connector stay empty until Materialize resolves them.
type Connector struct {
	diagram.Connector

	SourceIndex int
	TargetIndex int
}

// ImportResult is the outcome of parsing dialect text.
type ImportResult struct {
	Type       diagram.Type
	Shapes     []*diagram.Shape
	Connectors []*Connector

	// Inconsistencies records recoverable problems (e.g. unmatched
	// sequence returns). The import still succeeds.
	Inconsistencies []string
}

// Codec converts one dialect between text and shapes/connectors.
type Codec interface {
	// Export emits dialect text for the diagram. Overlay connectors and
	// preview content are skipped.
	Export(d *diagram.Diagram) (string, error)
	// Import parses dialect text. Malformed text yields a structured
	// validation error, never a panic.
	Import(text string, opts ImportOptions) (*ImportResult, error)
	// Type returns the diagram type this codec handles.
	Type() diagram.Type
	// Supports reports whether the text looks like this dialect.
	Supports(text string) bool
}

// Detect finds a codec whose dialect matches the given text.
// Returns an error if no codec matches.
func Detect(text string, codecs ...Codec) (Codec, error) {
	for _, c := range codecs {
		if c.Supports(text) {
			return c, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidDialect, "unrecognized diagram syntax")
}

// ForType finds the codec handling the given diagram type.
func ForType(t diagram.Type, codecs ...Codec) (Codec, error) {
	for _, c := range codecs {
		if c.Type() == t {
			return c, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidDialect, "no codec for diagram type %q", t)
}

// Materialize mints fresh ids for the imported shapes and connectors and
// resolves index references into shape ids. The returned slices are ready
// to be committed through a create command.
func (r *ImportResult) Materialize() ([]*diagram.Shape, []*diagram.Connector, error) {
	shapes := make([]*diagram.Shape, len(r.Shapes))
	for i, s := range r.Shapes {
		clone := s.Clone()
		clone.ID = diagram.NewID()
		shapes[i] = clone
	}
	conns := make([]*diagram.Connector, len(r.Connectors))
	for i, c := range r.Connectors {
		if c.SourceIndex < 0 || c.SourceIndex >= len(shapes) ||
			c.TargetIndex < 0 || c.TargetIndex >= len(shapes) {
			return nil, nil, errors.New(errors.ErrCodeValidation,
				"connector %d references shape index out of range", i)
		}
		clone := c.Connector.Clone()
		clone.ID = diagram.NewID()
		clone.SourceShapeID = shapes[c.SourceIndex].ID
		clone.TargetShapeID = shapes[c.TargetIndex].ID
		conns[i] = clone
	}
	return shapes, conns, nil
}

// Place translates the imported shapes so their bounding box is centered
// on the options' anchor point. Without an anchor it is a no-op.
func Place(r *ImportResult, opts ImportOptions) {
	if opts.Anchor == nil || len(r.Shapes) == 0 {
		return
	}
	box := r.Shapes[0].Bounds()
	for _, s := range r.Shapes[1:] {
		box = box.Union(s.Bounds())
	}
	center := box.Center()
	dx := opts.Anchor.X - center.X
	dy := opts.Anchor.Y - center.Y
	for _, s := range r.Shapes {
		s.X += dx
		s.Y += dy
	}
	for _, c := range r.Connectors {
		for i := range c.Waypoints {
			c.Waypoints[i].X += dx
			c.Waypoints[i].Y += dy
		}
	}
}

// Exportable reports whether a connector belongs in dialect text. Overlay
// connectors are ephemeral and never exported.
func Exportable(c *diagram.Connector) bool {
	return !c.Overlay
}

// ParseErrorf builds a structured validation error for a malformed line.
func ParseErrorf(line int, text, format string, args ...any) error {
	return &errors.ParseError{
		Line:    line,
		Text:    strings.TrimSpace(text),
		Message: fmt.Sprintf(format, args...),
	}
}
