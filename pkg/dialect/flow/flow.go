// Package flow implements the generic flowchart dialect.
//
// Grammar:
//
//	flowchart TD
//	    a[Start] --> b{Ship it?}
//	    b -.->|no| c(Stop)
//	    b -->|yes| d[Deploy]
//
// Node brackets pick the variant: `[..]` rectangle, `(..)` rounded,
// `{..}` decision. `-->` is a solid arrow, `-.->` dashed, `---` an
// undirected line; `|label|` after the arrow labels the edge. The
// direction token (TD or LR) sets the default layout axis.
package flow

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// Codec is the flowchart dialect codec.
type Codec struct{}

// New creates a flowchart codec.
func New() *Codec { return &Codec{} }

// Type returns the diagram type this codec handles.
func (c *Codec) Type() diagram.Type { return diagram.TypeFlow }

// Supports reports whether the text is a flowchart.
func (c *Codec) Supports(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "flowchart")
}

const (
	nodeWidth = 140.0
	nodeGap   = 60.0
)

var (
	headerRe = regexp.MustCompile(`^flowchart(?:\s+(TD|LR))?$`)
	nodeRe   = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)(\[[^\]]*\]|\([^)]*\)|\{[^}]*\})`)
	edgeRe   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\[[^\]]*\]|\([^)]*\)|\{[^}]*\})?\s*(-->|-\.->|---)\s*(?:\|([^|]*)\|\s*)?([A-Za-z_][A-Za-z0-9_]*)(?:\[[^\]]*\]|\([^)]*\)|\{[^}]*\})?$`)
	bareRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\[[^\]]*\]|\([^)]*\)|\{[^}]*\})$`)
)

// Import parses flowchart text.
func (c *Codec) Import(text string, opts dialect.ImportOptions) (*dialect.ImportResult, error) {
	lines := strings.Split(text, "\n")
	res := &dialect.ImportResult{Type: diagram.TypeFlow}
	index := make(map[string]int)
	vertical := true

	ensure := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		s := &diagram.Shape{
			Type:     diagram.ShapeFlowNode,
			Label:    name,
			Width:    nodeWidth,
			FlowNode: &diagram.FlowPayload{Kind: diagram.FlowRect},
		}
		res.Shapes = append(res.Shapes, s)
		index[name] = len(res.Shapes) - 1
		return index[name]
	}

	// declare records an explicit node declaration with label and kind.
	declare := func(name, bracket string) int {
		i := ensure(name)
		s := res.Shapes[i]
		s.Label = strings.TrimSpace(bracket[1 : len(bracket)-1])
		switch bracket[0] {
		case '(':
			s.FlowNode.Kind = diagram.FlowRounded
		case '{':
			s.FlowNode.Kind = diagram.FlowDecision
		default:
			s.FlowNode.Kind = diagram.FlowRect
		}
		return i
	}

	seen := false
	for n, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		if !seen {
			m := headerRe.FindStringSubmatch(line)
			if m == nil {
				return nil, dialect.ParseErrorf(n+1, raw, "expected flowchart header")
			}
			vertical = m[1] != "LR"
			seen = true
			continue
		}

		if m := edgeRe.FindStringSubmatch(line); m != nil {
			// Register any inline node declarations first.
			for _, nm := range nodeRe.FindAllStringSubmatch(line, -1) {
				declare(nm[1], nm[2])
			}
			src := ensure(m[1])
			dst := ensure(m[4])
			conn := &dialect.Connector{
				Connector: diagram.Connector{
					Type:          diagram.ConnectorFlow,
					SourcePointID: sourcePoint(vertical),
					TargetPointID: targetPoint(vertical),
					Routing:       diagram.RoutingOrthogonal,
					EndMarker:     endMarker(m[2]),
					Line:          lineStyle(m[2]),
					Label:         strings.TrimSpace(m[3]),
				},
				SourceIndex: src,
				TargetIndex: dst,
			}
			res.Connectors = append(res.Connectors, conn)
			continue
		}
		if bareRe.MatchString(line) {
			nm := nodeRe.FindStringSubmatch(line)
			declare(nm[1], nm[2])
			continue
		}
		return nil, dialect.ParseErrorf(n+1, raw, "unrecognized statement")
	}
	if !seen {
		return nil, dialect.ParseErrorf(0, "", "empty flowchart text")
	}

	layoutLine(res.Shapes, vertical)
	dialect.Place(res, opts)
	return res, nil
}

func sourcePoint(vertical bool) string {
	if vertical {
		return "bottom"
	}
	return "right"
}

func targetPoint(vertical bool) string {
	if vertical {
		return "top"
	}
	return "left"
}

func endMarker(arrow string) diagram.Marker {
	if arrow == "---" {
		return diagram.MarkerNone
	}
	return diagram.MarkerArrow
}

func lineStyle(arrow string) diagram.LineStyle {
	if arrow == "-.->" {
		return diagram.LineDashed
	}
	return diagram.LineSolid
}

// layoutLine places nodes on the layout axis in declaration order.
func layoutLine(shapes []*diagram.Shape, vertical bool) {
	for i, s := range shapes {
		s.Height = diagram.ContentHeight(s)
		if vertical {
			s.X = 0
			s.Y = float64(i) * (s.Height + nodeGap)
		} else {
			s.X = float64(i) * (nodeWidth + nodeGap)
			s.Y = 0
		}
	}
}

// Export emits flowchart text. Node declarations come first so every node
// keeps its bracket variant even when it has no edges.
func (c *Codec) Export(d *diagram.Diagram) (string, error) {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	names := make(map[string]string)
	used := make(map[string]bool)
	for _, s := range d.Shapes {
		if s.Type != diagram.ShapeFlowNode || s.Preview {
			continue
		}
		name := uniqueIdent(s.DisplayLabel(), used)
		names[s.ID] = name
		b.WriteString("    " + name + brackets(s) + "\n")
	}

	for _, conn := range d.Connectors {
		if conn.Type != diagram.ConnectorFlow || !dialect.Exportable(conn) {
			continue
		}
		src, okS := names[conn.SourceShapeID]
		dst, okT := names[conn.TargetShapeID]
		if !okS || !okT {
			continue
		}
		arrow := "-->"
		switch {
		case conn.EndMarker == diagram.MarkerNone:
			arrow = "---"
		case conn.Line == diagram.LineDashed:
			arrow = "-.->"
		}
		b.WriteString("    " + src + " " + arrow + " ")
		if conn.Label != "" {
			b.WriteString("|" + conn.Label + "| ")
		}
		b.WriteString(dst + "\n")
	}
	return b.String(), nil
}

func brackets(s *diagram.Shape) string {
	label := s.DisplayLabel()
	switch s.FlowData().Kind {
	case diagram.FlowRounded:
		return "(" + label + ")"
	case diagram.FlowDecision:
		return "{" + label + "}"
	default:
		return "[" + label + "]"
	}
}

// uniqueIdent derives an edge-reference identifier from a label, suffixing
// on collision.
func uniqueIdent(label string, used map[string]bool) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" || base[0] >= '0' && base[0] <= '9' {
		base = "n" + base
	}
	name := base
	for i := 2; used[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	used[name] = true
	return name
}
