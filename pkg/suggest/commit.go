package suggest

import (
	"github.com/schemadraw/schemadraw/pkg/command"
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

// CommitPreview accepts generated preview content: the member shapes lose
// their preview flag and the container shape is removed. It is a single
// undo step; undo restores the container and re-flags the members.
type CommitPreview struct {
	PreviewID string

	container   *diagram.Shape
	containerAt int
	members     []*diagram.Shape
}

// Name identifies the command.
func (c *CommitPreview) Name() string { return "commit-preview" }

// Execute clears the preview flag on every member shape and deletes the
// container.
func (c *CommitPreview) Execute(tx *command.Tx) error {
	d := tx.Diagram()

	container := d.ShapeByID(c.PreviewID)
	if container == nil {
		return errors.New(errors.ErrCodeShapeNotFound, "preview %q not found", c.PreviewID)
	}
	if container.Type != diagram.ShapePreview {
		return errors.New(errors.ErrCodeInvalidShape, "shape %q is not a preview container", c.PreviewID)
	}
	c.container = container.Clone()
	c.containerAt = d.ShapeIndex(container.ID)

	c.members = nil
	for _, id := range container.PreviewData().MemberShapeIDs {
		if member := d.ShapeByID(id); member != nil {
			c.members = append(c.members, member.Clone())
		}
	}

	for _, member := range c.members {
		committed := member.Clone()
		committed.Preview = false
		if err := tx.UpdateShape(committed); err != nil {
			return err
		}
	}
	return tx.DeleteShapes([]string{c.container.ID})
}

// Undo reinserts the container at its original position and restores
// the members' preview flags.
func (c *CommitPreview) Undo(tx *command.Tx) error {
	if err := tx.RestoreShapes([]*diagram.Shape{c.container.Clone()}, []int{c.containerAt}); err != nil {
		return err
	}
	for _, member := range c.members {
		if err := tx.UpdateShape(member.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// Ensure CommitPreview implements command.Command.
var _ command.Command = (*CommitPreview)(nil)
