package command

import (
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

// =============================================================================
// Connector Commands
// =============================================================================

// CreateConnector adds one connector between two existing shapes.
type CreateConnector struct {
	Connector *diagram.Connector
}

// Name identifies the command.
func (c *CreateConnector) Name() string { return "create-connector" }

// Execute validates both endpoints exist, assigns an id when missing,
// and persists the connector.
func (c *CreateConnector) Execute(tx *Tx) error {
	d := tx.Diagram()
	if d.ShapeByID(c.Connector.SourceShapeID) == nil {
		return errors.New(errors.ErrCodeShapeNotFound, "source shape %q not found", c.Connector.SourceShapeID)
	}
	if d.ShapeByID(c.Connector.TargetShapeID) == nil {
		return errors.New(errors.ErrCodeShapeNotFound, "target shape %q not found", c.Connector.TargetShapeID)
	}
	if c.Connector.ID == "" {
		c.Connector.ID = diagram.NewID()
	}
	return tx.CreateConnectors([]*diagram.Connector{c.Connector})
}

// Undo removes the created connector again.
func (c *CreateConnector) Undo(tx *Tx) error {
	return tx.DeleteConnectors([]string{c.Connector.ID})
}

// UpdateConnector replaces one connector's content (label, style,
// endpoints, waypoints).
type UpdateConnector struct {
	Connector *diagram.Connector

	prev *diagram.Connector
}

// Name identifies the command.
func (c *UpdateConnector) Name() string { return "update-connector" }

// Execute snapshots the current connector for undo, then persists the
// replacement. New endpoints must exist.
func (c *UpdateConnector) Execute(tx *Tx) error {
	d := tx.Diagram()
	existing := d.ConnectorByID(c.Connector.ID)
	if existing == nil {
		return errors.New(errors.ErrCodeConnectorNotFound, "connector %q not found", c.Connector.ID)
	}
	if d.ShapeByID(c.Connector.SourceShapeID) == nil {
		return errors.New(errors.ErrCodeShapeNotFound, "source shape %q not found", c.Connector.SourceShapeID)
	}
	if d.ShapeByID(c.Connector.TargetShapeID) == nil {
		return errors.New(errors.ErrCodeShapeNotFound, "target shape %q not found", c.Connector.TargetShapeID)
	}
	c.prev = existing.Clone()
	return tx.UpdateConnector(c.Connector)
}

// Undo restores the snapshot taken at execute time.
func (c *UpdateConnector) Undo(tx *Tx) error {
	return tx.UpdateConnector(c.prev)
}

// DeleteConnector removes one connector.
type DeleteConnector struct {
	ConnectorID string

	prev   *diagram.Connector
	prevAt int
}

// Name identifies the command.
func (c *DeleteConnector) Name() string { return "delete-connector" }

// Execute snapshots the connector and its z-order position, then
// removes it.
func (c *DeleteConnector) Execute(tx *Tx) error {
	d := tx.Diagram()
	existing := d.ConnectorByID(c.ConnectorID)
	if existing == nil {
		return errors.New(errors.ErrCodeConnectorNotFound, "connector %q not found", c.ConnectorID)
	}
	c.prev = existing.Clone()
	c.prevAt = d.ConnectorIndex(c.ConnectorID)
	return tx.DeleteConnectors([]string{c.ConnectorID})
}

// Undo reinserts the connector at its original position with its
// original id.
func (c *DeleteConnector) Undo(tx *Tx) error {
	return tx.RestoreConnectors([]*diagram.Connector{c.prev}, []int{c.prevAt})
}
