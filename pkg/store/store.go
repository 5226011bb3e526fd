// Package store is the persistence boundary for diagrams.
//
// The store is the source of truth: commands write here first and only
// mirror the change locally once the write succeeded. Three backends
// cover the deployment modes: memory for tests and single-process use,
// redis for the hosted editor, mongo for durable workspaces.
package store

import (
	"context"
	"errors"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a requested diagram, shape or
	// connector does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a create collides with an existing id.
	ErrConflict = errors.New("already exists")
)

// Store persists diagrams and their contents. Implementations must be
// safe for concurrent use. Writes are atomic per diagram: a batch either
// lands completely or not at all.
type Store interface {
	// GetDiagram returns a deep copy of the stored diagram.
	GetDiagram(ctx context.Context, id string) (*diagram.Diagram, error)
	// PutDiagram creates or replaces a diagram wholesale.
	PutDiagram(ctx context.Context, d *diagram.Diagram) error
	// DeleteDiagram removes a diagram and all its contents.
	DeleteDiagram(ctx context.Context, id string) error
	// ListDiagrams returns the ids of all stored diagrams.
	ListDiagrams(ctx context.Context) ([]string, error)

	// CreateShapes adds shapes to a diagram. Fails with ErrConflict if
	// any id already exists.
	CreateShapes(ctx context.Context, diagramID string, shapes []*diagram.Shape) error
	// UpdateShape replaces a shape in place.
	UpdateShape(ctx context.Context, diagramID string, s *diagram.Shape) error
	// DeleteShapes removes shapes by id. Missing ids fail with
	// ErrNotFound before anything is removed.
	DeleteShapes(ctx context.Context, diagramID string, shapeIDs []string) error
	// RestoreShapes reinserts previously deleted shapes at their
	// original z-order positions; at[i] is the index shapes[i] is
	// restored to. Fails with ErrConflict if any id already exists.
	RestoreShapes(ctx context.Context, diagramID string, shapes []*diagram.Shape, at []int) error

	// CreateConnectors adds connectors to a diagram.
	CreateConnectors(ctx context.Context, diagramID string, conns []*diagram.Connector) error
	// UpdateConnector replaces a connector in place.
	UpdateConnector(ctx context.Context, diagramID string, c *diagram.Connector) error
	// DeleteConnectors removes connectors by id.
	DeleteConnectors(ctx context.Context, diagramID string, connIDs []string) error
	// RestoreConnectors reinserts previously deleted connectors at
	// their original z-order positions.
	RestoreConnectors(ctx context.Context, diagramID string, conns []*diagram.Connector, at []int) error

	// Close releases backend resources.
	Close() error
}

// mutate is the shared read-modify-write loop used by the document
// backends: load the diagram, apply fn to the copy, store the result.
func mutate(ctx context.Context, s Store, diagramID string, fn func(*diagram.Diagram) error) error {
	d, err := s.GetDiagram(ctx, diagramID)
	if err != nil {
		return err
	}
	if err := fn(d); err != nil {
		return err
	}
	return s.PutDiagram(ctx, d)
}

// applyCreateShapes validates and applies a shape batch to a diagram copy.
func applyCreateShapes(d *diagram.Diagram, shapes []*diagram.Shape) error {
	for _, s := range shapes {
		if d.ShapeByID(s.ID) != nil {
			return ErrConflict
		}
	}
	for _, s := range shapes {
		d.Shapes = append(d.Shapes, s.Clone())
	}
	return nil
}

func applyUpdateShape(d *diagram.Diagram, s *diagram.Shape) error {
	for i, existing := range d.Shapes {
		if existing.ID == s.ID {
			d.Shapes[i] = s.Clone()
			return nil
		}
	}
	return ErrNotFound
}

// applyRestoreShapes reinserts a deleted shape batch at its recorded
// z-order positions.
func applyRestoreShapes(d *diagram.Diagram, shapes []*diagram.Shape, at []int) error {
	if len(at) != len(shapes) {
		return errors.New("restore batch and index count differ")
	}
	for _, s := range shapes {
		if d.ShapeByID(s.ID) != nil {
			return ErrConflict
		}
	}
	cloned := make([]*diagram.Shape, len(shapes))
	for i, s := range shapes {
		cloned[i] = s.Clone()
	}
	diagram.RestoreShapes(d, cloned, at)
	return nil
}

func applyDeleteShapes(d *diagram.Diagram, shapeIDs []string) error {
	for _, id := range shapeIDs {
		if d.ShapeByID(id) == nil {
			return ErrNotFound
		}
	}
	for _, id := range shapeIDs {
		d.RemoveShape(id)
	}
	return nil
}

func applyCreateConnectors(d *diagram.Diagram, conns []*diagram.Connector) error {
	for _, c := range conns {
		if d.ConnectorByID(c.ID) != nil {
			return ErrConflict
		}
	}
	for _, c := range conns {
		d.Connectors = append(d.Connectors, c.Clone())
	}
	return nil
}

func applyUpdateConnector(d *diagram.Diagram, c *diagram.Connector) error {
	for i, existing := range d.Connectors {
		if existing.ID == c.ID {
			d.Connectors[i] = c.Clone()
			return nil
		}
	}
	return ErrNotFound
}

func applyRestoreConnectors(d *diagram.Diagram, conns []*diagram.Connector, at []int) error {
	if len(at) != len(conns) {
		return errors.New("restore batch and index count differ")
	}
	for _, c := range conns {
		if d.ConnectorByID(c.ID) != nil {
			return ErrConflict
		}
	}
	cloned := make([]*diagram.Connector, len(conns))
	for i, c := range conns {
		cloned[i] = c.Clone()
	}
	diagram.RestoreConnectors(d, cloned, at)
	return nil
}

func applyDeleteConnectors(d *diagram.Diagram, connIDs []string) error {
	for _, id := range connIDs {
		if d.ConnectorByID(id) == nil {
			return ErrNotFound
		}
	}
	for _, id := range connIDs {
		d.RemoveConnector(id)
	}
	return nil
}
