// Package er implements the entity-relationship dialect.
//
// Grammar:
//
//	erDiagram
//	    CUSTOMER {
//	        PK string id "unique id"
//	        string name
//	        FK string order_id
//	    }
//	    CUSTOMER ||--o{ ORDER : places
//
// Attribute lines are `[PK|FK] type name ["comment"]`. Relationship ends
// use crowfoot notation: `||` is exactly-one, `}o`/`o{` is many. A `..`
// rule between the ends makes the line dashed.
package er

import (
	"regexp"
	"strings"

	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// Codec is the ER dialect codec.
type Codec struct{}

// New creates an ER codec.
func New() *Codec { return &Codec{} }

// Type returns the diagram type this codec handles.
func (c *Codec) Type() diagram.Type { return diagram.TypeER }

// Supports reports whether the text is an ER diagram.
func (c *Codec) Supports(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "erDiagram")
}

// Import geometry defaults.
const (
	entityWidth = 180.0
	gridGap     = 60.0
	gridColumns = 3
)

var (
	entityStartRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*\{$`)
	attributeRe   = regexp.MustCompile(`^(?:(PK|FK)\s+)?(\S+)\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s+"([^"]*)")?$`)
	relationRe    = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s+(\|\||\}o)(--|\.\.)(\|\||o\{)\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s*:\s*(.+))?$`)
)

// Import parses ER text into shapes and index-referenced connectors.
func (c *Codec) Import(text string, opts dialect.ImportOptions) (*dialect.ImportResult, error) {
	lines := strings.Split(text, "\n")
	res := &dialect.ImportResult{Type: diagram.TypeER}
	index := make(map[string]int) // entity name -> shape index

	ensureEntity := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		s := &diagram.Shape{
			Type:   diagram.ShapeEntity,
			Label:  name,
			Width:  entityWidth,
			Entity: &diagram.EntityPayload{Attributes: []diagram.EntityAttribute{}},
		}
		res.Shapes = append(res.Shapes, s)
		index[name] = len(res.Shapes) - 1
		return index[name]
	}

	current := -1 // index of the open entity block, -1 outside blocks
	seen := false
	for n, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		if !seen {
			if line != "erDiagram" {
				return nil, dialect.ParseErrorf(n+1, raw, "expected erDiagram header")
			}
			seen = true
			continue
		}

		if current >= 0 {
			if line == "}" {
				current = -1
				continue
			}
			m := attributeRe.FindStringSubmatch(line)
			if m == nil {
				return nil, dialect.ParseErrorf(n+1, raw, "malformed attribute line")
			}
			attr := diagram.EntityAttribute{
				Key:     diagram.AttributeKey(m[1]),
				Type:    m[2],
				Name:    m[3],
				Comment: m[4],
			}
			e := res.Shapes[current].Entity
			e.Attributes = append(e.Attributes, attr)
			continue
		}

		if m := entityStartRe.FindStringSubmatch(line); m != nil {
			current = ensureEntity(m[1])
			continue
		}
		if m := relationRe.FindStringSubmatch(line); m != nil {
			src := ensureEntity(m[1])
			dst := ensureEntity(m[5])
			conn := &dialect.Connector{
				Connector: diagram.Connector{
					Type:              diagram.ConnectorRelationship,
					SourcePointID:     "right",
					TargetPointID:     "left",
					Routing:           diagram.RoutingOrthogonal,
					StartMarker:       markerFor(m[2]),
					EndMarker:         markerFor(m[4]),
					Line:              lineFor(m[3]),
					Label:             strings.TrimSpace(m[6]),
					SourceCardinality: cardinalityFor(m[2]),
					TargetCardinality: cardinalityFor(m[4]),
				},
				SourceIndex: src,
				TargetIndex: dst,
			}
			res.Connectors = append(res.Connectors, conn)
			continue
		}
		return nil, dialect.ParseErrorf(n+1, raw, "unrecognized statement")
	}
	if !seen {
		return nil, dialect.ParseErrorf(0, "", "empty ER diagram text")
	}
	if current >= 0 {
		return nil, dialect.ParseErrorf(len(lines), "", "unterminated entity block")
	}

	layoutGrid(res.Shapes)
	dialect.Place(res, opts)
	return res, nil
}

// layoutGrid assigns default positions: fixed-width columns, row height
// from the tallest shape of the row.
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
		s.X = float64(col) * (entityWidth + gridGap)
		s.Y = y
		if s.Height > rowMax {
			rowMax = s.Height
		}
	}
}

func markerFor(token string) diagram.Marker {
	switch token {
	case "||":
		return diagram.MarkerCrowfootOne
	default: // "}o", "o{"
		return diagram.MarkerCrowfootMany
	}
}

func cardinalityFor(token string) string {
	if token == "||" {
		return "1"
	}
	return "0..N"
}

func lineFor(token string) diagram.LineStyle {
	if token == ".." {
		return diagram.LineDashed
	}
	return diagram.LineSolid
}

// Export emits ER text: one block per entity, then relationships. Overlay
// connectors and preview shapes are skipped.
func (c *Codec) Export(d *diagram.Diagram) (string, error) {
	var b strings.Builder
	b.WriteString("erDiagram\n")

	names := make(map[string]string) // shape id -> entity name
	for _, s := range d.Shapes {
		if s.Type != diagram.ShapeEntity || s.Preview {
			continue
		}
		name := s.DisplayLabel()
		names[s.ID] = name
		attrs := s.EntityData().Attributes
		if len(attrs) == 0 {
			b.WriteString("    " + name + " {\n    }\n")
			continue
		}
		b.WriteString("    " + name + " {\n")
		for _, a := range attrs {
			b.WriteString("        ")
			if a.Key != diagram.KeyNone {
				b.WriteString(string(a.Key) + " ")
			}
			b.WriteString(a.Type + " " + a.Name)
			if a.Comment != "" {
				b.WriteString(" \"" + a.Comment + "\"")
			}
			b.WriteString("\n")
		}
		b.WriteString("    }\n")
	}

	for _, conn := range d.Connectors {
		if conn.Type != diagram.ConnectorRelationship || !dialect.Exportable(conn) {
			continue
		}
		src, okS := names[conn.SourceShapeID]
		dst, okT := names[conn.TargetShapeID]
		if !okS || !okT {
			continue
		}
		rule := "--"
		if conn.Line == diagram.LineDashed {
			rule = ".."
		}
		b.WriteString("    " + src + " " + startToken(conn.StartMarker) + rule + endToken(conn.EndMarker) + " " + dst)
		if conn.Label != "" {
			b.WriteString(" : " + conn.Label)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func startToken(m diagram.Marker) string {
	if m == diagram.MarkerCrowfootMany {
		return "}o"
	}
	return "||"
}

func endToken(m diagram.Marker) string {
	if m == diagram.MarkerCrowfootMany {
		return "o{"
	}
	return "||"
}
