// Package seq implements the sequence diagram dialect.
//
// Grammar:
//
//	sequenceDiagram
//	    participant a as Alice
//	    actor b as Bob
//	    a->>b: hello
//	    b-->>a: hi
//	    activate b
//	    deactivate b
//
// `->>` is a call, `-->>` a return. Activation geometry never appears in
// the text; it is derived by the activation calculator, so `activate` and
// `deactivate` lines are accepted and regenerated but carry no state of
// their own.
package seq

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/diagram/anchor"
	"github.com/schemadraw/schemadraw/pkg/sequence"
)

// Codec is the sequence dialect codec.
type Codec struct{}

// New creates a sequence codec.
func New() *Codec { return &Codec{} }

// Type returns the diagram type this codec handles.
func (c *Codec) Type() diagram.Type { return diagram.TypeSequence }

// Supports reports whether the text is a sequence diagram.
func (c *Codec) Supports(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "sequenceDiagram")
}

const (
	lifelineWidth = 120.0
	lifelineGap   = 80.0
)

var (
	participantRe = regexp.MustCompile(`^(participant|actor)\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s+as\s+(.+))?$`)
	messageRe     = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(->>|-->>)([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.*)$`)
	activationRe  = regexp.MustCompile(`^(activate|deactivate)\s+[A-Za-z_][A-Za-z0-9_]*$`)
)

// Import parses sequence text. Lifeline heights come from the activation
// calculator since message text carries no explicit geometry.
func (c *Codec) Import(text string, opts dialect.ImportOptions) (*dialect.ImportResult, error) {
	lines := strings.Split(text, "\n")
	res := &dialect.ImportResult{Type: diagram.TypeSequence}
	index := make(map[string]int)
	var msgs []sequence.Message
	type rawMsg struct {
		src, dst int
		kind     sequence.MessageKind
		label    string
	}
	var raws []rawMsg

	ensure := func(name string, actor bool) int {
		if i, ok := index[name]; ok {
			return i
		}
		s := &diagram.Shape{
			Type:     diagram.ShapeLifeline,
			Label:    name,
			Width:    lifelineWidth,
			Lifeline: &diagram.LifelinePayload{Actor: actor},
		}
		res.Shapes = append(res.Shapes, s)
		index[name] = len(res.Shapes) - 1
		return index[name]
	}

	seen := false
	for n, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		if !seen {
			if line != "sequenceDiagram" {
				return nil, dialect.ParseErrorf(n+1, raw, "expected sequenceDiagram header")
			}
			seen = true
			continue
		}
		if m := participantRe.FindStringSubmatch(line); m != nil {
			i := ensure(m[2], m[1] == "actor")
			if label := strings.TrimSpace(m[3]); label != "" {
				res.Shapes[i].Label = label
			}
			continue
		}
		if activationRe.MatchString(line) {
			// Accepted for compatibility; geometry is recomputed.
			continue
		}
		if m := messageRe.FindStringSubmatch(line); m != nil {
			src := ensure(m[1], false)
			dst := ensure(m[3], false)
			kind := sequence.KindCall
			if m[2] == "-->>" {
				kind = sequence.KindReturn
			}
			raws = append(raws, rawMsg{src: src, dst: dst, kind: kind, label: strings.TrimSpace(m[4])})
			msgs = append(msgs, sequence.Message{From: m[1], To: m[3], Kind: kind, Label: strings.TrimSpace(m[4])})
			continue
		}
		return nil, dialect.ParseErrorf(n+1, raw, "unrecognized statement")
	}
	if !seen {
		return nil, dialect.ParseErrorf(0, "", "empty sequence diagram text")
	}

	// Derive lifeline heights and record calculator inconsistencies.
	calc := sequence.Calculate(msgs)
	for _, inc := range calc.Inconsistencies {
		res.Inconsistencies = append(res.Inconsistencies, inc.String())
	}
	for i, s := range res.Shapes {
		s.X = float64(i) * (lifelineWidth + lifelineGap)
		s.Y = 0
		s.Height = calc.Height
	}

	// Message connectors pin to the fixed lifeline slot grid so endpoints
	// stay put when participant boxes resize.
	for i, rm := range raws {
		srcSide, dstSide := anchor.East, anchor.West
		if res.Shapes[rm.src].X > res.Shapes[rm.dst].X {
			srcSide, dstSide = anchor.West, anchor.East
		}
		conn := &dialect.Connector{
			Connector: diagram.Connector{
				Type:          connectorKind(rm.kind),
				SourcePointID: anchor.SlotID(i, srcSide),
				TargetPointID: anchor.SlotID(i, dstSide),
				Routing:       diagram.RoutingStraight,
				EndMarker:     diagram.MarkerArrow,
				Line:          lineFor(rm.kind),
				Label:         rm.label,
			},
			SourceIndex: rm.src,
			TargetIndex: rm.dst,
		}
		res.Connectors = append(res.Connectors, conn)
	}

	dialect.Place(res, opts)
	return res, nil
}

func connectorKind(k sequence.MessageKind) diagram.ConnectorType {
	if k == sequence.KindReturn {
		return diagram.ConnectorReturn
	}
	return diagram.ConnectorMessage
}

func lineFor(k sequence.MessageKind) diagram.LineStyle {
	if k == sequence.KindReturn {
		return diagram.LineDashed
	}
	return diagram.LineSolid
}

// Export emits sequence text: participants in lifeline order, messages in
// connector order, with activation keywords regenerated from the
// calculator for readability.
func (c *Codec) Export(d *diagram.Diagram) (string, error) {
	var b strings.Builder
	b.WriteString("sequenceDiagram\n")

	names := make(map[string]string)
	used := make(map[string]bool)
	order := make([]*diagram.Shape, 0, len(d.Shapes))
	for _, s := range d.Shapes {
		if s.Type != diagram.ShapeLifeline || s.Preview {
			continue
		}
		order = append(order, s)
	}
	for _, s := range order {
		name := uniqueIdent(s.DisplayLabel(), used)
		names[s.ID] = name
		kw := "participant"
		if s.LifelineData().Actor {
			kw = "actor"
		}
		if name == s.DisplayLabel() {
			b.WriteString("    " + kw + " " + name + "\n")
		} else {
			b.WriteString("    " + kw + " " + name + " as " + s.DisplayLabel() + "\n")
		}
	}

	var msgs []sequence.Message
	var stmts []string
	for _, conn := range d.Connectors {
		if !dialect.Exportable(conn) {
			continue
		}
		var kind sequence.MessageKind
		var arrow string
		switch conn.Type {
		case diagram.ConnectorMessage:
			kind, arrow = sequence.KindCall, "->>"
		case diagram.ConnectorReturn:
			kind, arrow = sequence.KindReturn, "-->>"
		default:
			continue
		}
		src, okS := names[conn.SourceShapeID]
		dst, okT := names[conn.TargetShapeID]
		if !okS || !okT {
			continue
		}
		msgs = append(msgs, sequence.Message{From: src, To: dst, Kind: kind, Label: conn.Label})
		stmts = append(stmts, "    "+src+arrow+dst+": "+conn.Label)
	}

	calc := sequence.Calculate(msgs)
	opensAt := make(map[int][]string)
	closesAt := make(map[int][]string)
	for _, acts := range calc.Activations {
		for _, a := range acts {
			opensAt[a.StartIndex] = append(opensAt[a.StartIndex], a.Lifeline)
			if msgs[a.EndIndex].Kind == sequence.KindReturn {
				closesAt[a.EndIndex] = append(closesAt[a.EndIndex], a.Lifeline)
			}
		}
	}
	for i, stmt := range stmts {
		b.WriteString(stmt + "\n")
		for _, l := range opensAt[i] {
			b.WriteString("    activate " + l + "\n")
		}
		for _, l := range closesAt[i] {
			b.WriteString("    deactivate " + l + "\n")
		}
	}
	return b.String(), nil
}

// uniqueIdent derives an identifier from the label and suffixes it on
// collision, so labels that collapse to the same identifier ("API-1",
// "API 1") never alias to one lifeline.
func uniqueIdent(label string, used map[string]bool) string {
	base := ident(label)
	name := base
	for i := 2; used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	used[name] = true
	return name
}

// ident collapses a display label into a participant identifier.
func ident(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "p"
	}
	s := b.String()
	if s[0] >= '0' && s[0] <= '9' {
		return "p" + s
	}
	return s
}
