// Package arch implements the architecture dialect.
//
// Grammar:
//
//	architecture
//	    service api(server)[API Gateway]
//	    service db(database)[Primary DB]
//	    api --> db
//	    api:B --> T:db
//
// Each service declares a component with a kind drawn from the closed
// component set. Links between service ids become plain link connectors;
// optional :L/:R/:T/:B ports pick the connection point on either end.
package arch

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// Codec is the architecture dialect codec.
type Codec struct{}

// New creates an architecture codec.
func New() *Codec { return &Codec{} }

// Type returns the diagram type this codec handles.
func (c *Codec) Type() diagram.Type { return diagram.TypeArchitecture }

// Supports reports whether the text is an architecture diagram.
func (c *Codec) Supports(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "architecture")
}

const (
	componentWidth = 160.0
	componentGap   = 80.0
	gridColumns    = 3
)

var (
	serviceRe = regexp.MustCompile(`^service\s+([A-Za-z_][A-Za-z0-9_]*)\(([a-z]+)\)\[([^\]]*)\]$`)
	linkRe    = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?::([LRTB]))?\s*-->\s*(?:([LRTB]):)?([A-Za-z_][A-Za-z0-9_]*)$`)
)

// Port letters map onto the cardinal connection points. The unannotated
// form keeps the right-to-left default.
var portPoints = map[string]string{
	"L": "left",
	"R": "right",
	"T": "top",
	"B": "bottom",
}

var pointPorts = map[string]string{
	"left":   "L",
	"right":  "R",
	"top":    "T",
	"bottom": "B",
}

var componentKinds = map[string]diagram.ComponentKind{
	"server":   diagram.ComponentServer,
	"database": diagram.ComponentDatabase,
	"cloud":    diagram.ComponentCloud,
	"disk":     diagram.ComponentDisk,
	"queue":    diagram.ComponentQueue,
}

// Import parses architecture text.
func (c *Codec) Import(text string, opts dialect.ImportOptions) (*dialect.ImportResult, error) {
	lines := strings.Split(text, "\n")
	res := &dialect.ImportResult{Type: diagram.TypeArchitecture}
	index := make(map[string]int)

	seen := false
	for n, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		if !seen {
			if line != "architecture" {
				return nil, dialect.ParseErrorf(n+1, raw, "expected architecture header")
			}
			seen = true
			continue
		}

		if m := serviceRe.FindStringSubmatch(line); m != nil {
			kind, ok := componentKinds[m[2]]
			if !ok {
				return nil, dialect.ParseErrorf(n+1, raw, "unknown component kind %q", m[2])
			}
			if _, dup := index[m[1]]; dup {
				return nil, dialect.ParseErrorf(n+1, raw, "duplicate service id %q", m[1])
			}
			s := &diagram.Shape{
				Type:      diagram.ShapeComponent,
				Label:     strings.TrimSpace(m[3]),
				Width:     componentWidth,
				Component: &diagram.ComponentPayload{Kind: kind, ServiceID: m[1]},
			}
			res.Shapes = append(res.Shapes, s)
			index[m[1]] = len(res.Shapes) - 1
			continue
		}
		if m := linkRe.FindStringSubmatch(line); m != nil {
			src, okS := index[m[1]]
			dst, okT := index[m[4]]
			if !okS {
				return nil, dialect.ParseErrorf(n+1, raw, "link references undeclared service %q", m[1])
			}
			if !okT {
				return nil, dialect.ParseErrorf(n+1, raw, "link references undeclared service %q", m[4])
			}
			srcPoint, dstPoint := "right", "left"
			if m[2] != "" {
				srcPoint = portPoints[m[2]]
			}
			if m[3] != "" {
				dstPoint = portPoints[m[3]]
			}
			conn := &dialect.Connector{
				Connector: diagram.Connector{
					Type:          diagram.ConnectorLink,
					SourcePointID: srcPoint,
					TargetPointID: dstPoint,
					Routing:       diagram.RoutingOrthogonal,
					EndMarker:     diagram.MarkerArrow,
					Line:          diagram.LineSolid,
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
		return nil, dialect.ParseErrorf(0, "", "empty architecture text")
	}

	layoutGrid(res.Shapes)
	dialect.Place(res, opts)
	return res, nil
}

func layoutGrid(shapes []*diagram.Shape) {
	for i, s := range shapes {
		s.Height = diagram.ContentHeight(s)
		s.X = float64(i%gridColumns) * (componentWidth + componentGap)
		s.Y = float64(i/gridColumns) * (s.Height + componentGap)
	}
}

// Export emits architecture text. Service ids come from the component
// payload when present, otherwise they are derived from the label.
func (c *Codec) Export(d *diagram.Diagram) (string, error) {
	var b strings.Builder
	b.WriteString("architecture\n")

	ids := make(map[string]string)
	used := make(map[string]bool)
	for _, s := range d.Shapes {
		if s.Type != diagram.ShapeComponent || s.Preview {
			continue
		}
		data := s.ComponentData()
		id := data.ServiceID
		if id == "" || used[id] {
			id = serviceIdent(s.DisplayLabel(), used)
		}
		used[id] = true
		ids[s.ID] = id
		b.WriteString("    service " + id + "(" + string(data.Kind) + ")[" + s.DisplayLabel() + "]\n")
	}

	for _, conn := range d.Connectors {
		if conn.Type != diagram.ConnectorLink || !dialect.Exportable(conn) {
			continue
		}
		src, okS := ids[conn.SourceShapeID]
		dst, okT := ids[conn.TargetShapeID]
		if !okS || !okT {
			continue
		}
		if p, ok := pointPorts[conn.SourcePointID]; ok && p != "R" {
			src += ":" + p
		}
		if p, ok := pointPorts[conn.TargetPointID]; ok && p != "L" {
			dst = p + ":" + dst
		}
		b.WriteString("    " + src + " --> " + dst + "\n")
	}
	return b.String(), nil
}

func serviceIdent(label string, used map[string]bool) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ', r == '-':
			b.WriteRune('_')
		}
	}
	base := strings.Trim(b.String(), "_")
	if base == "" || base[0] >= '0' && base[0] <= '9' {
		base = "svc_" + base
	}
	name := base
	for i := 2; used[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	return name
}
