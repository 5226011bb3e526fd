package flow

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

const sample = `flowchart TD
    a[Start]
    b{Ship it?}
    a --> b
    b -.->|no| c(Stop)
    b -->|yes| d[Deploy]
`

func TestImportNodes(t *testing.T) {
	res, err := New().Import(sample, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(res.Shapes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(res.Shapes))
	}

	tests := []struct {
		index int
		label string
		kind  diagram.FlowNodeKind
	}{
		{0, "Start", diagram.FlowRect},
		{1, "Ship it?", diagram.FlowDecision},
		{2, "Stop", diagram.FlowRounded},
		{3, "Deploy", diagram.FlowRect},
	}
	for _, tt := range tests {
		s := res.Shapes[tt.index]
		if s.Label != tt.label || s.FlowData().Kind != tt.kind {
			t.Errorf("node %d = %q %s, want %q %s", tt.index, s.Label, s.FlowData().Kind, tt.label, tt.kind)
		}
	}
}

func TestImportEdges(t *testing.T) {
	res, err := New().Import(sample, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(res.Connectors) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(res.Connectors))
	}

	solid := res.Connectors[0]
	if solid.Line != diagram.LineSolid || solid.EndMarker != diagram.MarkerArrow || solid.Label != "" {
		t.Errorf("plain edge = %+v", solid.Connector)
	}
	dashed := res.Connectors[1]
	if dashed.Line != diagram.LineDashed || dashed.Label != "no" {
		t.Errorf("dashed edge = %+v", dashed.Connector)
	}
	labeled := res.Connectors[2]
	if labeled.Label != "yes" || labeled.Line != diagram.LineSolid {
		t.Errorf("labeled edge = %+v", labeled.Connector)
	}
	if labeled.SourceIndex != 1 || labeled.TargetIndex != 3 {
		t.Errorf("labeled edge endpoints = %d -> %d", labeled.SourceIndex, labeled.TargetIndex)
	}
}

func TestImportHorizontal(t *testing.T) {
	res, err := New().Import("flowchart LR\n    a[One] --> b[Two]\n", dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Shapes[0].Y != res.Shapes[1].Y {
		t.Errorf("LR layout should keep nodes on one row")
	}
	if res.Shapes[1].X <= res.Shapes[0].X {
		t.Errorf("LR layout should advance x: %v then %v", res.Shapes[0].X, res.Shapes[1].X)
	}
	if res.Connectors[0].SourcePointID != "right" || res.Connectors[0].TargetPointID != "left" {
		t.Errorf("LR edge anchors = %q -> %q", res.Connectors[0].SourcePointID, res.Connectors[0].TargetPointID)
	}
}

func TestImportMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing header", "a --> b\n"},
		{"garbage", "flowchart TD\n    a ==> b\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Import(tt.text, dialect.ImportOptions{})
			var pe *errors.ParseError
			if !stderrors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	res, err := New().Import(sample, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	shapes, conns, err := res.Materialize()
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	d := &diagram.Diagram{ID: diagram.NewID(), Type: diagram.TypeFlow, Shapes: shapes, Connectors: conns}

	text, err := New().Export(d)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(text, "{Ship it?}") {
		t.Errorf("decision brackets lost:\n%s", text)
	}
	if !strings.Contains(text, "(Stop)") {
		t.Errorf("rounded brackets lost:\n%s", text)
	}
	if !strings.Contains(text, "-.->") {
		t.Errorf("dashed arrow lost:\n%s", text)
	}

	again, err := New().Import(text, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("reimport error = %v\ntext:\n%s", err, text)
	}
	if len(again.Shapes) != 4 || len(again.Connectors) != 3 {
		t.Fatalf("round trip changed counts: %d shapes, %d connectors",
			len(again.Shapes), len(again.Connectors))
	}
}
