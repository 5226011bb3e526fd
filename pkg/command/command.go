// Package command implements the undoable editing layer.
//
// Every edit to a diagram goes through a Command executed by an Engine.
// Commands write to the store first and mirror the change into the
// engine's local diagram copy only after the write succeeded, so the
// store stays the source of truth and the mirror is a synchronous read
// path for rendering and export.
//
// The engine owns two stacks: executed commands (undo) and undone
// commands (redo). Executing a new command clears the redo stack. All
// three entry points are serialized by a mutex, so concurrent callers
// cannot interleave half-applied edits.
package command

import (
	"context"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/store"
)

// Command is one undoable edit. Execute and Undo run against a Tx, which
// gives them store-first writes and mirror reads. Undo must reverse
// Execute exactly, reusing the original ids.
type Command interface {
	// Name identifies the command in logs and hook events.
	Name() string
	// Execute applies the edit.
	Execute(tx *Tx) error
	// Undo reverses a previously executed edit.
	Undo(tx *Tx) error
}

// Tx couples a store write path with the engine's mirror. Each mutation
// persists first; the mirror is only touched once the store accepted the
// write, keeping both sides consistent on failure.
type Tx struct {
	ctx context.Context
	st  store.Store
	d   *diagram.Diagram
}

// Context returns the context the command runs under.
func (t *Tx) Context() context.Context { return t.ctx }

// Diagram returns the live mirror. Commands read it to capture undo
// snapshots; they must not mutate it directly.
func (t *Tx) Diagram() *diagram.Diagram { return t.d }

// CreateShapes persists new shapes and mirrors them.
func (t *Tx) CreateShapes(shapes []*diagram.Shape) error {
	if err := t.st.CreateShapes(t.ctx, t.d.ID, shapes); err != nil {
		return err
	}
	for _, s := range shapes {
		t.d.AddShape(s.Clone())
	}
	return nil
}

// UpdateShape persists a shape replacement and mirrors it.
func (t *Tx) UpdateShape(s *diagram.Shape) error {
	if err := t.st.UpdateShape(t.ctx, t.d.ID, s); err != nil {
		return err
	}
	for i, existing := range t.d.Shapes {
		if existing.ID == s.ID {
			t.d.Shapes[i] = s.Clone()
			break
		}
	}
	return nil
}

// DeleteShapes persists shape removal and mirrors it.
func (t *Tx) DeleteShapes(ids []string) error {
	if err := t.st.DeleteShapes(t.ctx, t.d.ID, ids); err != nil {
		return err
	}
	for _, id := range ids {
		t.d.RemoveShape(id)
	}
	return nil
}

// RestoreShapes persists reinsertion of previously deleted shapes at
// their original z-order positions and mirrors it. at[i] is the index
// shapes[i] occupied before deletion.
func (t *Tx) RestoreShapes(shapes []*diagram.Shape, at []int) error {
	if err := t.st.RestoreShapes(t.ctx, t.d.ID, shapes, at); err != nil {
		return err
	}
	cloned := make([]*diagram.Shape, len(shapes))
	for i, s := range shapes {
		cloned[i] = s.Clone()
	}
	diagram.RestoreShapes(t.d, cloned, at)
	return nil
}

// CreateConnectors persists new connectors and mirrors them.
func (t *Tx) CreateConnectors(conns []*diagram.Connector) error {
	if err := t.st.CreateConnectors(t.ctx, t.d.ID, conns); err != nil {
		return err
	}
	for _, c := range conns {
		t.d.AddConnector(c.Clone())
	}
	return nil
}

// UpdateConnector persists a connector replacement and mirrors it.
func (t *Tx) UpdateConnector(c *diagram.Connector) error {
	if err := t.st.UpdateConnector(t.ctx, t.d.ID, c); err != nil {
		return err
	}
	for i, existing := range t.d.Connectors {
		if existing.ID == c.ID {
			t.d.Connectors[i] = c.Clone()
			break
		}
	}
	return nil
}

// DeleteConnectors persists connector removal and mirrors it.
func (t *Tx) DeleteConnectors(ids []string) error {
	if err := t.st.DeleteConnectors(t.ctx, t.d.ID, ids); err != nil {
		return err
	}
	for _, id := range ids {
		t.d.RemoveConnector(id)
	}
	return nil
}

// RestoreConnectors persists reinsertion of previously deleted
// connectors at their original z-order positions and mirrors it.
func (t *Tx) RestoreConnectors(conns []*diagram.Connector, at []int) error {
	if err := t.st.RestoreConnectors(t.ctx, t.d.ID, conns, at); err != nil {
		return err
	}
	cloned := make([]*diagram.Connector, len(conns))
	for i, c := range conns {
		cloned[i] = c.Clone()
	}
	diagram.RestoreConnectors(t.d, cloned, at)
	return nil
}
