package sync

import (
	"context"
	"sync"
	"time"

	"github.com/schemadraw/schemadraw/pkg/command"
	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/dialect/dialects"
)

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	// Debounce is the trailing-edge delay before a diagram edit is
	// re-exported. Non-positive falls back to DefaultDebounce.
	Debounce time.Duration
	// GuardTimeout bounds how long an armed guard suppresses inbound
	// text. Non-positive falls back to DefaultGuardTimeout.
	GuardTimeout time.Duration
	// OnText receives regenerated dialect text after a debounced
	// export. Called outside the controller's lock.
	OnText func(ctx context.Context, text string)
}

// Controller holds both representations of one diagram and keeps them
// aligned. Diagram edits go through Apply/Undo/Redo, which run on the
// engine and schedule a debounced re-export; the regenerated text is
// delivered through OnText with the guard armed. Inbound text goes
// through SetText, which drops self-echoes, imports the text, and
// replaces the diagram content as one undo step.
type Controller struct {
	engine    *command.Engine
	debouncer *Debouncer
	guard     *Guard
	onText    func(ctx context.Context, text string)

	mu   sync.Mutex
	text string
}

// NewController starts a controller over an engine. The initial text is
// exported from the engine's current diagram.
func NewController(engine *command.Engine, opts ControllerOptions) (*Controller, error) {
	snap := engine.Snapshot()
	text, err := dialects.Export(snap)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		engine: engine,
		guard:  NewGuard(opts.GuardTimeout),
		onText: opts.OnText,
		text:   text,
	}
	c.debouncer = NewDebouncer(snap.ID, opts.Debounce, c.export)
	return c, nil
}

// Text returns the current text representation.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Apply executes an editing command and schedules the re-export.
func (c *Controller) Apply(ctx context.Context, cmd command.Command) error {
	if err := c.engine.Execute(ctx, cmd); err != nil {
		return err
	}
	c.debouncer.Schedule(ctx)
	return nil
}

// Undo reverses the latest command and schedules the re-export.
func (c *Controller) Undo(ctx context.Context) error {
	if err := c.engine.Undo(ctx); err != nil {
		return err
	}
	c.debouncer.Schedule(ctx)
	return nil
}

// Redo reapplies the latest undone command and schedules the re-export.
func (c *Controller) Redo(ctx context.Context) error {
	if err := c.engine.Redo(ctx); err != nil {
		return err
	}
	c.debouncer.Schedule(ctx)
	return nil
}

// SetText handles an inbound text change. The echo of our own export is
// recorded without re-importing; any other change is parsed in the
// diagram's dialect and swapped in as one undo step. A successful
// import schedules an export so the editor ends up with the normalized
// form.
func (c *Controller) SetText(ctx context.Context, text string) error {
	snap := c.engine.Snapshot()
	if c.guard.Suppress(ctx, snap.ID) {
		c.mu.Lock()
		c.text = text
		c.mu.Unlock()
		return nil
	}

	codec, err := dialects.ForType(snap.Type)
	if err != nil {
		return err
	}
	res, err := codec.Import(text, dialect.ImportOptions{})
	if err != nil {
		return err
	}
	shapes, conns, err := res.Materialize()
	if err != nil {
		return err
	}

	if err := c.engine.Execute(ctx, &command.ReplaceContent{Shapes: shapes, Connectors: conns}); err != nil {
		return err
	}
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	c.debouncer.Schedule(ctx)
	return nil
}

// Flush runs a pending export immediately.
func (c *Controller) Flush(ctx context.Context) {
	c.debouncer.Flush(ctx)
}

// Close cancels any pending export and stops the controller.
func (c *Controller) Close() {
	c.debouncer.Stop()
}

// export regenerates the text from the engine's diagram. When the text
// actually changed, the guard is armed before OnText runs so the echo
// of pushing it into the editor is not imported back.
func (c *Controller) export(ctx context.Context) error {
	text, err := dialects.Export(c.engine.Snapshot())
	if err != nil {
		return err
	}

	c.mu.Lock()
	if text == c.text {
		c.mu.Unlock()
		return nil
	}
	c.text = text
	c.mu.Unlock()

	c.guard.Arm()
	if c.onText != nil {
		c.onText(ctx, text)
	}
	return nil
}
