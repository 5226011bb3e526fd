package arch

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

const sample = `architecture
    service api(server)[API Gateway]
    service db(database)[Primary DB]
    service mq(queue)[Jobs]
    api --> db
    api --> mq
`

func TestImportServices(t *testing.T) {
	res, err := New().Import(sample, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(res.Shapes) != 3 {
		t.Fatalf("expected 3 components, got %d", len(res.Shapes))
	}

	tests := []struct {
		index int
		label string
		kind  diagram.ComponentKind
		id    string
	}{
		{0, "API Gateway", diagram.ComponentServer, "api"},
		{1, "Primary DB", diagram.ComponentDatabase, "db"},
		{2, "Jobs", diagram.ComponentQueue, "mq"},
	}
	for _, tt := range tests {
		s := res.Shapes[tt.index]
		data := s.ComponentData()
		if s.Label != tt.label || data.Kind != tt.kind || data.ServiceID != tt.id {
			t.Errorf("component %d = %q %s %q", tt.index, s.Label, data.Kind, data.ServiceID)
		}
	}
}

func TestImportLinks(t *testing.T) {
	res, err := New().Import(sample, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(res.Connectors) != 2 {
		t.Fatalf("expected 2 links, got %d", len(res.Connectors))
	}
	for i, c := range res.Connectors {
		if c.Type != diagram.ConnectorLink {
			t.Errorf("connector %d type = %s", i, c.Type)
		}
	}
	if res.Connectors[1].SourceIndex != 0 || res.Connectors[1].TargetIndex != 2 {
		t.Errorf("second link = %d -> %d, want 0 -> 2",
			res.Connectors[1].SourceIndex, res.Connectors[1].TargetIndex)
	}
}

func TestImportRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing header", "service a(server)[A]\n"},
		{"unknown kind", "architecture\n    service a(toaster)[A]\n"},
		{"duplicate id", "architecture\n    service a(server)[A]\n    service a(disk)[B]\n"},
		{"undeclared link source", "architecture\n    service a(server)[A]\n    ghost --> a\n"},
		{"undeclared link target", "architecture\n    service a(server)[A]\n    a --> ghost\n"},
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
	d := &diagram.Diagram{ID: diagram.NewID(), Type: diagram.TypeArchitecture, Shapes: shapes, Connectors: conns}

	text, err := New().Export(d)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(text, "service api(server)[API Gateway]") {
		t.Errorf("service id not preserved:\n%s", text)
	}
	again, err := New().Import(text, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("reimport error = %v\ntext:\n%s", err, text)
	}
	if len(again.Shapes) != 3 || len(again.Connectors) != 2 {
		t.Fatalf("round trip changed counts: %d shapes, %d connectors",
			len(again.Shapes), len(again.Connectors))
	}
}

func TestExportDerivesMissingServiceID(t *testing.T) {
	d := &diagram.Diagram{ID: diagram.NewID(), Type: diagram.TypeArchitecture}
	d.Shapes = append(d.Shapes, &diagram.Shape{
		ID:        diagram.NewID(),
		Type:      diagram.ShapeComponent,
		Label:     "Edge Cache",
		Component: &diagram.ComponentPayload{Kind: diagram.ComponentCloud},
	})
	text, err := New().Export(d)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(text, "service edge_cache(cloud)[Edge Cache]") {
		t.Errorf("unexpected export:\n%s", text)
	}
}

func TestImportLinkPorts(t *testing.T) {
	const text = `architecture
    service api(server)[API]
    service db(database)[DB]
    api:B --> T:db
`
	res, err := New().Import(text, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(res.Connectors) != 1 {
		t.Fatalf("expected 1 link, got %d", len(res.Connectors))
	}
	c := res.Connectors[0]
	if c.SourcePointID != "bottom" || c.TargetPointID != "top" {
		t.Errorf("ports = %q -> %q, want bottom -> top", c.SourcePointID, c.TargetPointID)
	}

	shapes, conns, err := res.Materialize()
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	d := &diagram.Diagram{ID: diagram.NewID(), Type: diagram.TypeArchitecture, Shapes: shapes, Connectors: conns}
	out, err := New().Export(d)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(out, "api:B --> T:db") {
		t.Errorf("ports lost on export:\n%s", out)
	}
}

func TestExportOmitsDefaultPorts(t *testing.T) {
	res, err := New().Import(sample, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	shapes, conns, err := res.Materialize()
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	d := &diagram.Diagram{ID: diagram.NewID(), Type: diagram.TypeArchitecture, Shapes: shapes, Connectors: conns}
	out, err := New().Export(d)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(out, "api --> db") {
		t.Errorf("right-to-left link must export without port annotations:\n%s", out)
	}
}
