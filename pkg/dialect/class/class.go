// Package class implements the class diagram dialect.
//
// Grammar:
//
//	classDiagram
//	    class Animal {
//	        +name: string
//	        -age: int
//	        +speak()
//	    }
//	    Animal <|-- Dog
//	    Animal --> Food : eats
//	    Animal ..> Logger
//
// Member lines starting with a visibility sigil declare attributes
// (`+name: type`) or methods (`+name()`). `<|--` is generalization with
// the triangle at the parent, `-->` a directed association, `..>` a
// dashed dependency and `--` an undirected association.
package class

import (
	"regexp"
	"strings"

	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// Codec is the class dialect codec.
type Codec struct{}

// New creates a class codec.
func New() *Codec { return &Codec{} }

// Type returns the diagram type this codec handles.
func (c *Codec) Type() diagram.Type { return diagram.TypeClass }

// Supports reports whether the text is a class diagram.
func (c *Codec) Supports(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "classDiagram")
}

const (
	classWidth  = 200.0
	gridGap     = 60.0
	gridColumns = 3
)

var (
	classStartRe = regexp.MustCompile(`^class\s+([A-Za-z_][A-Za-z0-9_]*)\s*\{$`)
	memberRe     = regexp.MustCompile(`^([+\-#~])?\s*([A-Za-z_][A-Za-z0-9_]*)(\(\))?(?:\s*:\s*(.+))?$`)
	edgeRe       = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s+(<\|--|-->|\.\.>|--)\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s*:\s*(.+))?$`)
)

// Import parses class diagram text.
func (c *Codec) Import(text string, opts dialect.ImportOptions) (*dialect.ImportResult, error) {
	lines := strings.Split(text, "\n")
	res := &dialect.ImportResult{Type: diagram.TypeClass}
	index := make(map[string]int)

	ensureClass := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		s := &diagram.Shape{
			Type:  diagram.ShapeClass,
			Label: name,
			Width: classWidth,
			Class: &diagram.ClassPayload{Attributes: []diagram.ClassMember{}, Methods: []diagram.ClassMember{}},
		}
		res.Shapes = append(res.Shapes, s)
		index[name] = len(res.Shapes) - 1
		return index[name]
	}

	current := -1
	seen := false
	for n, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		if !seen {
			if line != "classDiagram" {
				return nil, dialect.ParseErrorf(n+1, raw, "expected classDiagram header")
			}
			seen = true
			continue
		}
		if current >= 0 {
			if line == "}" {
				current = -1
				continue
			}
			m := memberRe.FindStringSubmatch(line)
			if m == nil {
				return nil, dialect.ParseErrorf(n+1, raw, "malformed member line")
			}
			member := diagram.ClassMember{Visibility: m[1], Name: m[2], Type: strings.TrimSpace(m[4])}
			p := res.Shapes[current].Class
			if m[3] == "()" {
				p.Methods = append(p.Methods, member)
			} else {
				p.Attributes = append(p.Attributes, member)
			}
			continue
		}
		if m := classStartRe.FindStringSubmatch(line); m != nil {
			current = ensureClass(m[1])
			continue
		}
		if m := edgeRe.FindStringSubmatch(line); m != nil {
			left := ensureClass(m[1])
			right := ensureClass(m[3])
			conn := edgeConnector(m[2], strings.TrimSpace(m[4]))
			conn.SourceIndex = right
			conn.TargetIndex = left
			if m[2] != "<|--" {
				// Only generalization reads right-to-left.
				conn.SourceIndex, conn.TargetIndex = left, right
			}
			res.Connectors = append(res.Connectors, conn)
			continue
		}
		return nil, dialect.ParseErrorf(n+1, raw, "unrecognized statement")
	}
	if !seen {
		return nil, dialect.ParseErrorf(0, "", "empty class diagram text")
	}
	if current >= 0 {
		return nil, dialect.ParseErrorf(len(lines), "", "unterminated class block")
	}

	layoutGrid(res.Shapes)
	dialect.Place(res, opts)
	return res, nil
}

// edgeConnector maps an arrow token to connector styling.
func edgeConnector(arrow, label string) *dialect.Connector {
	conn := &dialect.Connector{Connector: diagram.Connector{
		SourcePointID: "right",
		TargetPointID: "left",
		Routing:       diagram.RoutingOrthogonal,
		Line:          diagram.LineSolid,
		Label:         label,
	}}
	switch arrow {
	case "<|--":
		conn.Connector.Type = diagram.ConnectorInheritance
		conn.Connector.EndMarker = diagram.MarkerTriangle
	case "-->":
		conn.Connector.Type = diagram.ConnectorAssociation
		conn.Connector.EndMarker = diagram.MarkerArrow
	case "..>":
		conn.Connector.Type = diagram.ConnectorDependency
		conn.Connector.EndMarker = diagram.MarkerOpenArrow
		conn.Connector.Line = diagram.LineDashed
	default: // "--"
		conn.Connector.Type = diagram.ConnectorAssociation
		conn.Connector.EndMarker = diagram.MarkerNone
	}
	return conn
}

func layoutGrid(shapes []*diagram.Shape) {
	y := 0.0
	rowMax := 0.0
	for i, s := range shapes {
		s.Height = diagram.ContentHeight(s)
		col := i % gridColumns
		if col == 0 && i > 0 {
			y += rowMax + gridGap
			rowMax = 0
		}
		s.X = float64(col) * (classWidth + gridGap)
		s.Y = y
		if s.Height > rowMax {
			rowMax = s.Height
		}
	}
}

// Export emits class diagram text.
func (c *Codec) Export(d *diagram.Diagram) (string, error) {
	var b strings.Builder
	b.WriteString("classDiagram\n")

	names := make(map[string]string)
	for _, s := range d.Shapes {
		if s.Type != diagram.ShapeClass || s.Preview {
			continue
		}
		name := s.DisplayLabel()
		names[s.ID] = name
		p := s.ClassData()
		b.WriteString("    class " + name + " {\n")
		for _, a := range p.Attributes {
			b.WriteString("        " + visibility(a.Visibility) + a.Name)
			if a.Type != "" {
				b.WriteString(": " + a.Type)
			}
			b.WriteString("\n")
		}
		for _, m := range p.Methods {
			b.WriteString("        " + visibility(m.Visibility) + m.Name + "()")
			if m.Type != "" {
				b.WriteString(": " + m.Type)
			}
			b.WriteString("\n")
		}
		b.WriteString("    }\n")
	}

	for _, conn := range d.Connectors {
		if !dialect.Exportable(conn) {
			continue
		}
		src, okS := names[conn.SourceShapeID]
		dst, okT := names[conn.TargetShapeID]
		if !okS || !okT {
			continue
		}
		var stmt string
		switch conn.Type {
		case diagram.ConnectorInheritance:
			// Triangle at the parent: emit parent <|-- child.
			stmt = dst + " <|-- " + src
		case diagram.ConnectorDependency:
			stmt = src + " ..> " + dst
		case diagram.ConnectorAssociation:
			if conn.EndMarker == diagram.MarkerNone {
				stmt = src + " -- " + dst
			} else {
				stmt = src + " --> " + dst
			}
		default:
			continue
		}
		b.WriteString("    " + stmt)
		if conn.Label != "" {
			b.WriteString(" : " + conn.Label)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func visibility(v string) string {
	if v == "" {
		return "+"
	}
	return v
}
