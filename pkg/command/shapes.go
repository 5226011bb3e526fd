package command

import (
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

// =============================================================================
// Shape Commands
// =============================================================================

// CreateShape adds one shape to the diagram.
type CreateShape struct {
	Shape *diagram.Shape
}

// Name identifies the command.
func (c *CreateShape) Name() string { return "create-shape" }

// Execute validates the shape, assigns an id when missing, derives the
// content height, and persists it.
func (c *CreateShape) Execute(tx *Tx) error {
	if c.Shape.ID == "" {
		c.Shape.ID = diagram.NewID()
	}
	if err := c.Shape.Validate(); err != nil {
		return err
	}
	c.Shape.Height = diagram.ContentHeight(c.Shape)
	return tx.CreateShapes([]*diagram.Shape{c.Shape})
}

// Undo removes the created shape again.
func (c *CreateShape) Undo(tx *Tx) error {
	return tx.DeleteShapes([]string{c.Shape.ID})
}

// UpdateShape replaces one shape's content. Geometry follows the content:
// the height is rederived from the new payload.
type UpdateShape struct {
	Shape *diagram.Shape

	prev *diagram.Shape
}

// Name identifies the command.
func (c *UpdateShape) Name() string { return "update-shape" }

// Execute snapshots the current shape for undo, then persists the
// replacement with its derived height.
func (c *UpdateShape) Execute(tx *Tx) error {
	existing := tx.Diagram().ShapeByID(c.Shape.ID)
	if existing == nil {
		return errors.New(errors.ErrCodeShapeNotFound, "shape %q not found", c.Shape.ID)
	}
	if err := c.Shape.Validate(); err != nil {
		return err
	}
	c.prev = existing.Clone()
	c.Shape.Height = diagram.ContentHeight(c.Shape)
	return tx.UpdateShape(c.Shape)
}

// Undo restores the snapshot taken at execute time.
func (c *UpdateShape) Undo(tx *Tx) error {
	return tx.UpdateShape(c.prev)
}

// DeleteShape removes one shape together with every connector touching
// it, so the diagram never holds dangling endpoints.
type DeleteShape struct {
	ShapeID string

	prevShape *diagram.Shape
	prevAt    int
	prevConns []*diagram.Connector
	connAt    []int
}

// Name identifies the command.
func (c *DeleteShape) Name() string { return "delete-shape" }

// Execute snapshots the shape and its attached connectors together with
// their z-order positions, removes the connectors first, then the shape.
func (c *DeleteShape) Execute(tx *Tx) error {
	d := tx.Diagram()
	existing := d.ShapeByID(c.ShapeID)
	if existing == nil {
		return errors.New(errors.ErrCodeShapeNotFound, "shape %q not found", c.ShapeID)
	}
	c.prevShape = existing.Clone()
	c.prevAt = d.ShapeIndex(c.ShapeID)
	c.prevConns = nil
	c.connAt = nil
	var connIDs []string
	for _, conn := range d.ConnectorsTouching(c.ShapeID) {
		c.prevConns = append(c.prevConns, conn.Clone())
		c.connAt = append(c.connAt, d.ConnectorIndex(conn.ID))
		connIDs = append(connIDs, conn.ID)
	}

	if len(connIDs) > 0 {
		if err := tx.DeleteConnectors(connIDs); err != nil {
			return err
		}
	}
	return tx.DeleteShapes([]string{c.ShapeID})
}

// Undo reinserts the shape and its connectors at their original
// positions, keeping the original ids.
func (c *DeleteShape) Undo(tx *Tx) error {
	if err := tx.RestoreShapes([]*diagram.Shape{c.prevShape}, []int{c.prevAt}); err != nil {
		return err
	}
	if len(c.prevConns) > 0 {
		return tx.RestoreConnectors(c.prevConns, c.connAt)
	}
	return nil
}

// =============================================================================
// Bounds
// =============================================================================

// BoundsChange pairs a shape with its target bounds.
type BoundsChange struct {
	ShapeID string
	Bounds  diagram.Bounds
}

// SetBounds moves or resizes a set of shapes in one undo step (a drag of
// a multi-selection is one command). Heights of content-sized shapes are
// clamped to their derived minimum.
type SetBounds struct {
	Changes []BoundsChange

	prev []BoundsChange
}

// Name identifies the command.
func (c *SetBounds) Name() string { return "set-bounds" }

// Execute captures current bounds of every target, then applies the new
// ones.
func (c *SetBounds) Execute(tx *Tx) error {
	d := tx.Diagram()
	targets := make([]*diagram.Shape, len(c.Changes))
	for i, ch := range c.Changes {
		s := d.ShapeByID(ch.ShapeID)
		if s == nil {
			return errors.New(errors.ErrCodeShapeNotFound, "shape %q not found", ch.ShapeID)
		}
		targets[i] = s
	}

	c.prev = make([]BoundsChange, len(c.Changes))
	for i, s := range targets {
		c.prev[i] = BoundsChange{ShapeID: s.ID, Bounds: s.Bounds()}
	}

	for i, ch := range c.Changes {
		next := targets[i].Clone()
		next.SetBounds(clampBounds(next, ch.Bounds))
		if err := tx.UpdateShape(next); err != nil {
			return err
		}
	}
	return nil
}

// Undo restores the captured bounds.
func (c *SetBounds) Undo(tx *Tx) error {
	d := tx.Diagram()
	for _, ch := range c.prev {
		s := d.ShapeByID(ch.ShapeID)
		if s == nil {
			return errors.New(errors.ErrCodeShapeNotFound, "shape %q not found", ch.ShapeID)
		}
		next := s.Clone()
		next.SetBounds(ch.Bounds)
		if err := tx.UpdateShape(next); err != nil {
			return err
		}
	}
	return nil
}

// clampBounds floors the height of content-sized shapes at their derived
// content height. Free-form shapes keep the requested bounds.
func clampBounds(s *diagram.Shape, b diagram.Bounds) diagram.Bounds {
	switch s.Type {
	case diagram.ShapeEntity, diagram.ShapeClass:
		min := diagram.ContentHeight(s)
		if b.Height < min {
			b.Height = min
		}
	}
	return b
}
