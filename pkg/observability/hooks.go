// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about command execution, sync cycles, and suggestion
// generation.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCommandHooks(&myCommandHooks{})
//	    observability.SetSyncHooks(&mySyncHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Command().OnExecute(ctx, name, diagramID)
//	// ... apply the command ...
//	observability.Command().OnComplete(ctx, name, diagramID, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Command Hooks
// =============================================================================

// CommandHooks receives events from the command engine.
type CommandHooks interface {
	// OnExecute records a command starting to apply.
	OnExecute(ctx context.Context, name, diagramID string)

	// OnComplete records a command finishing, successfully or not.
	OnComplete(ctx context.Context, name, diagramID string, duration time.Duration, err error)

	// OnUndo records a command being reversed.
	OnUndo(ctx context.Context, name, diagramID string, err error)

	// OnRedo records a command being reapplied.
	OnRedo(ctx context.Context, name, diagramID string, err error)
}

// =============================================================================
// Sync Hooks
// =============================================================================

// SyncHooks receives events from the diagram/text sync loop.
type SyncHooks interface {
	// OnExportScheduled records a debounced export being (re)armed.
	OnExportScheduled(ctx context.Context, diagramID string, delay time.Duration)

	// OnExportFlushed records a debounced export firing.
	OnExportFlushed(ctx context.Context, diagramID string, duration time.Duration, err error)

	// OnCycleSuppressed records an import skipped because the text change
	// originated from our own export.
	OnCycleSuppressed(ctx context.Context, diagramID string)
}

// =============================================================================
// Generation Hooks
// =============================================================================

// GenerationHooks receives events from suggestion generation calls.
type GenerationHooks interface {
	// OnRequest records an outgoing generation request.
	OnRequest(ctx context.Context, diagramType string)

	// OnResponse records a generation response.
	OnResponse(ctx context.Context, diagramType string, duration time.Duration, err error)

	// OnApply records an accepted suggestion being applied, with the
	// number of shapes the generated content produced.
	OnApply(ctx context.Context, diagramID string, shapeCount int, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCommandHooks is a no-op implementation of CommandHooks.
type NoopCommandHooks struct{}

func (NoopCommandHooks) OnExecute(context.Context, string, string)                        {}
func (NoopCommandHooks) OnComplete(context.Context, string, string, time.Duration, error) {}
func (NoopCommandHooks) OnUndo(context.Context, string, string, error)                    {}
func (NoopCommandHooks) OnRedo(context.Context, string, string, error)                    {}

// NoopSyncHooks is a no-op implementation of SyncHooks.
type NoopSyncHooks struct{}

func (NoopSyncHooks) OnExportScheduled(context.Context, string, time.Duration)      {}
func (NoopSyncHooks) OnExportFlushed(context.Context, string, time.Duration, error) {}
func (NoopSyncHooks) OnCycleSuppressed(context.Context, string)                     {}

// NoopGenerationHooks is a no-op implementation of GenerationHooks.
type NoopGenerationHooks struct{}

func (NoopGenerationHooks) OnRequest(context.Context, string)                        {}
func (NoopGenerationHooks) OnResponse(context.Context, string, time.Duration, error) {}
func (NoopGenerationHooks) OnApply(context.Context, string, int, error)              {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	commandHooks    CommandHooks    = NoopCommandHooks{}
	syncHooks       SyncHooks       = NoopSyncHooks{}
	generationHooks GenerationHooks = NoopGenerationHooks{}
	hooksMu         sync.RWMutex
)

// SetCommandHooks registers custom command hooks.
// This should be called once at application startup before any commands run.
func SetCommandHooks(h CommandHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		commandHooks = h
	}
}

// SetSyncHooks registers custom sync hooks.
// This should be called once at application startup before the sync loop starts.
func SetSyncHooks(h SyncHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		syncHooks = h
	}
}

// SetGenerationHooks registers custom generation hooks.
// This should be called once at application startup before any generation calls.
func SetGenerationHooks(h GenerationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		generationHooks = h
	}
}

// Command returns the registered command hooks.
func Command() CommandHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return commandHooks
}

// Sync returns the registered sync hooks.
func Sync() SyncHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return syncHooks
}

// Generation returns the registered generation hooks.
func Generation() GenerationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return generationHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	commandHooks = NoopCommandHooks{}
	syncHooks = NoopSyncHooks{}
	generationHooks = NoopGenerationHooks{}
}
