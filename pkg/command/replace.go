package command

import (
	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// ReplaceContent swaps the diagram's entire content for a new set of
// shapes and connectors in one undo step. The text sync path uses it
// when inbound text reparses the whole document. Undo restores the
// previous shapes and connectors in their original z-order.
type ReplaceContent struct {
	Shapes     []*diagram.Shape
	Connectors []*diagram.Connector

	prevShapes []*diagram.Shape
	prevConns  []*diagram.Connector
}

// Name identifies the command.
func (c *ReplaceContent) Name() string { return "replace-content" }

// Execute validates the replacement content, snapshots the current
// ordered collections, then swaps the content.
func (c *ReplaceContent) Execute(tx *Tx) error {
	d := tx.Diagram()

	next := &diagram.Diagram{ID: d.ID, Type: d.Type, Shapes: c.Shapes, Connectors: c.Connectors}
	if err := next.Validate(); err != nil {
		return err
	}

	c.prevShapes = make([]*diagram.Shape, len(d.Shapes))
	for i, s := range d.Shapes {
		c.prevShapes[i] = s.Clone()
	}
	c.prevConns = make([]*diagram.Connector, len(d.Connectors))
	for i, conn := range d.Connectors {
		c.prevConns[i] = conn.Clone()
	}

	if err := clearContent(tx); err != nil {
		return err
	}
	return fillContent(tx, c.Shapes, c.Connectors)
}

// Undo swaps the previous content back in.
func (c *ReplaceContent) Undo(tx *Tx) error {
	if err := clearContent(tx); err != nil {
		return err
	}
	return fillContent(tx, c.prevShapes, c.prevConns)
}

// clearContent removes every connector, then every shape.
func clearContent(tx *Tx) error {
	d := tx.Diagram()
	if len(d.Connectors) > 0 {
		ids := make([]string, len(d.Connectors))
		for i, conn := range d.Connectors {
			ids[i] = conn.ID
		}
		if err := tx.DeleteConnectors(ids); err != nil {
			return err
		}
	}
	if len(d.Shapes) > 0 {
		ids := make([]string, len(d.Shapes))
		for i, s := range d.Shapes {
			ids[i] = s.ID
		}
		if err := tx.DeleteShapes(ids); err != nil {
			return err
		}
	}
	return nil
}

// fillContent creates shapes then connectors into an emptied diagram,
// preserving the given order.
func fillContent(tx *Tx, shapes []*diagram.Shape, conns []*diagram.Connector) error {
	if len(shapes) > 0 {
		if err := tx.CreateShapes(shapes); err != nil {
			return err
		}
	}
	if len(conns) > 0 {
		return tx.CreateConnectors(conns)
	}
	return nil
}
