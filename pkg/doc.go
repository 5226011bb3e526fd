// Package pkg provides the core libraries for Schemadraw diagram editing.
//
// # Overview
//
// Schemadraw keeps a canvas diagram and its text form in lockstep. The
// pkg directory is organized into these areas:
//
//  1. [diagram] - The diagram model (shapes, connectors, validation)
//  2. [dialect] - Text dialects per diagram type (ER, class, sequence, flow, architecture)
//  3. [command] - Undoable editing commands and the history engine
//  4. [suggest] - AI suggestion expansion with preview and commit
//  5. [sync] - Diagram/text reconciliation
//  6. [render] - DOT generation and Graphviz output
//  7. [store] - Diagram persistence (memory, Redis, MongoDB)
//
// # Architecture
//
// The typical data flow through Schemadraw:
//
//	Dialect text (e.g. "erDiagram ...")
//	         ↓
//	    [dialect] package (parse into shapes and connectors)
//	         ↓
//	    [command] package (apply edits, undo/redo)
//	         ↓
//	    [sync] package (re-export text, reconcile edits)
//	         ↓
//	    [render] package (DOT → SVG/PNG)
//
// # Quick Start
//
// Parse dialect text and render it:
//
//	import (
//	    "context"
//	    "github.com/schemadraw/schemadraw/pkg/dialect"
//	    "github.com/schemadraw/schemadraw/pkg/dialect/dialects"
//	    "github.com/schemadraw/schemadraw/pkg/diagram"
//	    "github.com/schemadraw/schemadraw/pkg/render"
//	)
//
//	// 1. Import text in any registered dialect
//	result, _ := dialects.Import(text, dialect.ImportOptions{})
//	shapes, conns, _ := result.Materialize()
//
//	// 2. Build the diagram
//	d := &diagram.Diagram{ID: diagram.NewID(), Type: result.Type, Shapes: shapes, Connectors: conns}
//
//	// 3. Render to SVG
//	dot := render.ToDOT(d, render.Options{})
//	svg, _ := render.SVG(context.Background(), dot)
//
// Editing goes through the command engine so every change can be
// undone, including applied AI suggestions.
package pkg
