package command

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
	"github.com/schemadraw/schemadraw/pkg/observability"
	"github.com/schemadraw/schemadraw/pkg/store"
)

// Engine executes commands against one diagram. It owns the undo and
// redo stacks and the local mirror. Safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	st     store.Store
	mirror *diagram.Diagram
	undo   []Command
	redo   []Command
	logger *log.Logger
}

// NewEngine loads the diagram from the store and starts an engine for it.
// If logger is nil, the default logger is used.
func NewEngine(ctx context.Context, st store.Store, diagramID string, logger *log.Logger) (*Engine, error) {
	d, err := st.GetDiagram(ctx, diagramID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDiagramNotFound, err, "load diagram %q", diagramID)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{st: st, mirror: d, logger: logger}, nil
}

// Snapshot returns a deep copy of the current diagram without touching
// the store. This is the synchronous read path for export and rendering.
func (e *Engine) Snapshot() *diagram.Diagram {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mirror.Clone()
}

// CanUndo reports whether an executed command is available to reverse.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.undo) > 0
}

// CanRedo reports whether an undone command is available to reapply.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.redo) > 0
}

// Execute runs a command. On success it is pushed onto the undo stack
// and the redo stack is cleared; on failure neither stack changes and
// the mirror is refreshed from the store so a partially applied command
// cannot leave the two out of step.
func (e *Engine) Execute(ctx context.Context, cmd Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	observability.Command().OnExecute(ctx, cmd.Name(), e.mirror.ID)
	start := time.Now()
	err := cmd.Execute(&Tx{ctx: ctx, st: e.st, d: e.mirror})
	observability.Command().OnComplete(ctx, cmd.Name(), e.mirror.ID, time.Since(start), err)

	if err != nil {
		e.logger.Error("command failed", "command", cmd.Name(), "error", err)
		e.resync(ctx)
		return err
	}

	e.undo = append(e.undo, cmd)
	e.redo = nil
	e.logger.Debug("command executed", "command", cmd.Name(), "undo_depth", len(e.undo))
	return nil
}

// Undo reverses the most recent executed command and moves it to the
// redo stack. Returns ErrCodeNotFound when the undo stack is empty.
func (e *Engine) Undo(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.undo) == 0 {
		return errors.New(errors.ErrCodeNotFound, "nothing to undo")
	}
	cmd := e.undo[len(e.undo)-1]

	err := cmd.Undo(&Tx{ctx: ctx, st: e.st, d: e.mirror})
	observability.Command().OnUndo(ctx, cmd.Name(), e.mirror.ID, err)
	if err != nil {
		e.logger.Error("undo failed", "command", cmd.Name(), "error", err)
		e.resync(ctx)
		return err
	}

	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, cmd)
	return nil
}

// Redo reapplies the most recently undone command and moves it back to
// the undo stack.
func (e *Engine) Redo(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.redo) == 0 {
		return errors.New(errors.ErrCodeNotFound, "nothing to redo")
	}
	cmd := e.redo[len(e.redo)-1]

	err := cmd.Execute(&Tx{ctx: ctx, st: e.st, d: e.mirror})
	observability.Command().OnRedo(ctx, cmd.Name(), e.mirror.ID, err)
	if err != nil {
		e.logger.Error("redo failed", "command", cmd.Name(), "error", err)
		e.resync(ctx)
		return err
	}

	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, cmd)
	return nil
}

// resync reloads the mirror from the store after a failed command, which
// may have committed some of its writes.
func (e *Engine) resync(ctx context.Context) {
	d, err := e.st.GetDiagram(ctx, e.mirror.ID)
	if err != nil {
		e.logger.Error("mirror resync failed", "diagram", e.mirror.ID, "error", err)
		return
	}
	e.mirror = d
}
