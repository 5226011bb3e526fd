// Package render turns diagrams into DOT and rasterized artifacts.
//
// Layout positions from the editor are intentionally ignored: rendering
// targets documentation output, where Graphviz's layout is more useful
// than absolute canvas coordinates.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed includes attribute and method rows in entity and class
	// node labels. When false, only the shape label is shown.
	Detailed bool

	// IncludePreview renders preview content (dashed). When false,
	// preview shapes and their connectors are skipped.
	IncludePreview bool
}

// ToDOT converts a diagram to Graphviz DOT. The resulting string can be
// rendered with [SVG] or [PNG].
func ToDOT(d *diagram.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	skipped := make(map[string]bool)
	for _, s := range d.Shapes {
		if s.Type == diagram.ShapePreview || s.Type == diagram.ShapeSuggestion {
			skipped[s.ID] = true
			continue
		}
		if s.Preview && !opts.IncludePreview {
			skipped[s.ID] = true
			continue
		}
		attrs := nodeAttrs(s, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", s.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range d.Connectors {
		if c.Overlay || skipped[c.SourceShapeID] || skipped[c.TargetShapeID] {
			continue
		}
		attrs := edgeAttrs(c)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.SourceShapeID, c.TargetShapeID)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.SourceShapeID, c.TargetShapeID, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(s *diagram.Shape, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(s, opts))}
	switch s.Type {
	case diagram.ShapeEntity, diagram.ShapeClass:
		attrs = append(attrs, "style=filled", "shape=box")
	case diagram.ShapeLifeline:
		attrs = append(attrs, "shape=box")
	case diagram.ShapeFlowNode:
		switch s.FlowData().Kind {
		case diagram.FlowDecision:
			attrs = append(attrs, "shape=diamond")
		case diagram.FlowRounded:
			attrs = append(attrs, "style=\"rounded,filled\"")
		}
	case diagram.ShapeComponent:
		if s.ComponentData().Kind == diagram.ComponentDatabase {
			attrs = append(attrs, "shape=cylinder")
		} else {
			attrs = append(attrs, "shape=box3d")
		}
	}
	if s.Preview {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

func nodeLabel(s *diagram.Shape, opts Options) string {
	label := s.DisplayLabel()
	if !opts.Detailed {
		return label
	}
	var rows []string
	switch s.Type {
	case diagram.ShapeEntity:
		for _, a := range s.EntityData().Attributes {
			row := a.Type + " " + a.Name
			if a.Key != diagram.KeyNone {
				row = string(a.Key) + " " + row
			}
			rows = append(rows, row)
		}
	case diagram.ShapeClass:
		p := s.ClassData()
		for _, a := range p.Attributes {
			rows = append(rows, memberRow(a, false))
		}
		for _, m := range p.Methods {
			rows = append(rows, memberRow(m, true))
		}
	}
	if len(rows) == 0 {
		return label
	}
	return label + "\n" + strings.Join(rows, "\n")
}

func memberRow(m diagram.ClassMember, method bool) string {
	row := m.Visibility + m.Name
	if method {
		row += "()"
	}
	if m.Type != "" {
		row += ": " + m.Type
	}
	return row
}

func edgeAttrs(c *diagram.Connector) []string {
	var attrs []string
	if c.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", c.Label))
	}
	if c.Line == diagram.LineDashed {
		attrs = append(attrs, "style=dashed")
	}
	if head := arrowhead(c.EndMarker); head != "" {
		attrs = append(attrs, "arrowhead="+head)
	}
	if tail := arrowhead(c.StartMarker); tail != "" {
		attrs = append(attrs, "arrowtail="+tail, "dir=both")
	}
	if c.SourceCardinality != "" {
		attrs = append(attrs, fmt.Sprintf("taillabel=%q", c.SourceCardinality))
	}
	if c.TargetCardinality != "" {
		attrs = append(attrs, fmt.Sprintf("headlabel=%q", c.TargetCardinality))
	}
	return attrs
}

func arrowhead(m diagram.Marker) string {
	switch m {
	case diagram.MarkerNone:
		return "none"
	case diagram.MarkerTriangle:
		return "empty"
	case diagram.MarkerOpenArrow:
		return "vee"
	case diagram.MarkerDiamond:
		return "diamond"
	case diagram.MarkerCrowfootOne:
		return "tee"
	case diagram.MarkerCrowfootMany:
		return "crow"
	default:
		return ""
	}
}
