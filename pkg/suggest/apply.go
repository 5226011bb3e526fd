package suggest

import (
	"github.com/schemadraw/schemadraw/pkg/command"
	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/dialect/dialects"
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
	"github.com/schemadraw/schemadraw/pkg/observability"
)

// ApplySuggestion swaps a suggestion's target shape for generated
// content. It is a single undo step:
//
//  1. Export the target shape as dialect syntax.
//  2. Call the generator with that syntax and the suggestion text.
//  3. Import the generated syntax, anchored at the target's center.
//  4. Remove the suggestion, its overlay connector, the target, and the
//     target's connectors.
//  5. Create the imported shapes and connectors as preview content.
//  6. Rewire the target's former connectors onto the first new shape,
//     keeping their original ids.
//  7. Wrap the new content in a preview container.
//
// If a later step fails after earlier steps committed, the committed
// steps are compensated in reverse order before the error is returned.
// The generated syntax is cached on first execute so redo does not call
// the service again.
type ApplySuggestion struct {
	SuggestionID string
	Generator    Generator
	AuthToken    string

	// Populated during execute, reused by undo/redo.
	generated    string
	suggestion   *diagram.Shape
	suggestionAt int
	overlays     []*diagram.Connector
	overlayAt    []int
	target       *diagram.Shape
	targetAt     int
	targetConns  []*diagram.Connector
	targetConnAt []int
	newShapes    []*diagram.Shape
	newConns     []*diagram.Connector
	rewired      []*diagram.Connector
	preview      *diagram.Shape
}

// Name identifies the command.
func (c *ApplySuggestion) Name() string { return "apply-suggestion" }

// Execute runs the full swap.
func (c *ApplySuggestion) Execute(tx *command.Tx) error {
	d := tx.Diagram()

	if err := c.resolve(d); err != nil {
		return err
	}
	if err := c.generate(tx); err != nil {
		return err
	}
	if err := c.buildContent(d); err != nil {
		return err
	}

	// Committed steps, unwound in reverse on a later failure.
	var compensate []func(*command.Tx) error
	fail := func(err error) error {
		for i := len(compensate) - 1; i >= 0; i-- {
			if cerr := compensate[i](tx); cerr != nil {
				return errors.Wrap(errors.ErrCodeInconsistent, err,
					"apply failed and compensation failed: %v", cerr)
			}
		}
		return err
	}

	removed := append(connectorIDs(c.overlays), connectorIDs(c.targetConns)...)
	if len(removed) > 0 {
		if err := tx.DeleteConnectors(removed); err != nil {
			return err
		}
		restore, restoreAt := c.removedConns()
		compensate = append(compensate, func(tx *command.Tx) error {
			return tx.RestoreConnectors(restore, restoreAt)
		})
	}

	if err := tx.DeleteShapes([]string{c.suggestion.ID, c.target.ID}); err != nil {
		return fail(err)
	}
	compensate = append(compensate, func(tx *command.Tx) error {
		return tx.RestoreShapes(
			[]*diagram.Shape{c.suggestion.Clone(), c.target.Clone()},
			[]int{c.suggestionAt, c.targetAt})
	})

	if err := tx.CreateShapes(c.newShapes); err != nil {
		return fail(err)
	}
	compensate = append(compensate, func(tx *command.Tx) error {
		return tx.DeleteShapes(shapeIDs(c.newShapes))
	})

	created := append(cloneConns(c.newConns), cloneConns(c.rewired)...)
	if len(created) > 0 {
		if err := tx.CreateConnectors(created); err != nil {
			return fail(err)
		}
		compensate = append(compensate, func(tx *command.Tx) error {
			return tx.DeleteConnectors(connectorIDs(created))
		})
	}

	if err := tx.CreateShapes([]*diagram.Shape{c.preview.Clone()}); err != nil {
		return fail(err)
	}

	observability.Generation().OnApply(tx.Context(), d.ID, len(c.newShapes), nil)
	return nil
}

// Undo removes the generated content and reinserts the suggestion, the
// target, and its connectors at their original z-order positions with
// their original ids.
func (c *ApplySuggestion) Undo(tx *command.Tx) error {
	if err := tx.DeleteShapes([]string{c.preview.ID}); err != nil {
		return err
	}
	created := append(connectorIDs(c.newConns), connectorIDs(c.rewired)...)
	if len(created) > 0 {
		if err := tx.DeleteConnectors(created); err != nil {
			return err
		}
	}
	if err := tx.DeleteShapes(shapeIDs(c.newShapes)); err != nil {
		return err
	}
	restoreShapes := []*diagram.Shape{c.suggestion.Clone(), c.target.Clone()}
	if err := tx.RestoreShapes(restoreShapes, []int{c.suggestionAt, c.targetAt}); err != nil {
		return err
	}
	restore, restoreAt := c.removedConns()
	if len(restore) > 0 {
		return tx.RestoreConnectors(restore, restoreAt)
	}
	return nil
}

// removedConns pairs the connectors Execute removed with their original
// z-order positions.
func (c *ApplySuggestion) removedConns() ([]*diagram.Connector, []int) {
	conns := append(cloneConns(c.overlays), cloneConns(c.targetConns)...)
	at := make([]int, 0, len(conns))
	at = append(at, c.overlayAt...)
	at = append(at, c.targetConnAt...)
	return conns, at
}

// resolve locates the suggestion, its overlay connectors, the target and
// the target's connectors, and snapshots them for undo.
func (c *ApplySuggestion) resolve(d *diagram.Diagram) error {
	sug := d.ShapeByID(c.SuggestionID)
	if sug == nil {
		return errors.New(errors.ErrCodeShapeNotFound, "suggestion %q not found", c.SuggestionID)
	}
	if sug.Type != diagram.ShapeSuggestion {
		return errors.New(errors.ErrCodeInvalidShape, "shape %q is not a suggestion", c.SuggestionID)
	}
	payload := sug.SuggestionData()

	target := d.ShapeByID(payload.TargetShapeID)
	if target == nil {
		return errors.New(errors.ErrCodeShapeNotFound, "suggestion target %q not found", payload.TargetShapeID)
	}

	c.suggestion = sug.Clone()
	c.suggestionAt = d.ShapeIndex(sug.ID)
	c.target = target.Clone()
	c.targetAt = d.ShapeIndex(target.ID)
	c.overlays = nil
	c.overlayAt = nil
	c.targetConns = nil
	c.targetConnAt = nil
	for _, conn := range d.ConnectorsTouching(sug.ID) {
		c.overlays = append(c.overlays, conn.Clone())
		c.overlayAt = append(c.overlayAt, d.ConnectorIndex(conn.ID))
	}
	for _, conn := range d.ConnectorsTouching(target.ID) {
		if conn.Touches(sug.ID) {
			continue // already captured as an overlay
		}
		c.targetConns = append(c.targetConns, conn.Clone())
		c.targetConnAt = append(c.targetConnAt, d.ConnectorIndex(conn.ID))
	}
	return nil
}

// generate exports the target subgraph and calls the service. The result
// is cached so a redo replays without a second call.
func (c *ApplySuggestion) generate(tx *command.Tx) error {
	if c.generated != "" {
		return nil
	}
	d := tx.Diagram()

	codec, err := dialects.ForType(d.Type)
	if err != nil {
		return err
	}
	sub := &diagram.Diagram{ID: d.ID, Type: d.Type, Shapes: []*diagram.Shape{c.target.Clone()}}
	syntax, err := codec.Export(sub)
	if err != nil {
		return err
	}

	resp, err := c.Generator.Generate(tx.Context(), Request{
		Syntax:      syntax,
		Suggestion:  c.suggestion.SuggestionData().Text,
		DiagramType: d.Type,
		AuthToken:   c.AuthToken,
	})
	if err != nil {
		return err
	}
	c.generated = resp.Syntax
	return nil
}

// buildContent imports the generated syntax, materializes it, rewires
// the target's former connectors onto the first new shape, and builds
// the preview container.
func (c *ApplySuggestion) buildContent(d *diagram.Diagram) error {
	codec, err := dialects.ForType(d.Type)
	if err != nil {
		return err
	}
	center := c.target.Bounds().Center()
	res, err := codec.Import(c.generated, dialect.ImportOptions{Anchor: &center})
	if err != nil {
		return errors.Wrap(errors.ErrCodeGeneration, err, "generated syntax does not parse")
	}
	if len(res.Shapes) == 0 {
		return errors.New(errors.ErrCodeGeneration, "generated syntax produced no shapes")
	}

	shapes, conns, err := res.Materialize()
	if err != nil {
		return err
	}
	for _, s := range shapes {
		s.Preview = true
	}
	c.newShapes = shapes
	c.newConns = conns

	// The first imported shape inherits the target's connections.
	c.rewired = nil
	anchorID := shapes[0].ID
	for _, orig := range c.targetConns {
		r := orig.Clone()
		if r.SourceShapeID == c.target.ID {
			r.SourceShapeID = anchorID
		}
		if r.TargetShapeID == c.target.ID {
			r.TargetShapeID = anchorID
		}
		c.rewired = append(c.rewired, r)
	}

	bounds := diagram.PreviewBounds(shapes)
	c.preview = &diagram.Shape{
		ID:     diagram.NewID(),
		Type:   diagram.ShapePreview,
		X:      bounds.X,
		Y:      bounds.Y,
		Width:  bounds.Width,
		Height: bounds.Height,
		PreviewGroup: &diagram.PreviewPayload{
			GeneratingSyntax:   c.generated,
			GeneratorShapeID:   c.suggestion.ID,
			MemberShapeIDs:     shapeIDs(shapes),
			MemberConnectorIDs: connectorIDs(concatConns(c.newConns, c.rewired)),
		},
	}
	return nil
}

func connectorIDs(conns []*diagram.Connector) []string {
	ids := make([]string, len(conns))
	for i, c := range conns {
		ids[i] = c.ID
	}
	return ids
}

func shapeIDs(shapes []*diagram.Shape) []string {
	ids := make([]string, len(shapes))
	for i, s := range shapes {
		ids[i] = s.ID
	}
	return ids
}

func cloneConns(conns []*diagram.Connector) []*diagram.Connector {
	out := make([]*diagram.Connector, len(conns))
	for i, c := range conns {
		out[i] = c.Clone()
	}
	return out
}

func concatConns(a, b []*diagram.Connector) []*diagram.Connector {
	out := make([]*diagram.Connector, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Ensure ApplySuggestion implements command.Command.
var _ command.Command = (*ApplySuggestion)(nil)
