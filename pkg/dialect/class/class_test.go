package class

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

const sample = `classDiagram
    class Animal {
        +name: string
        -age: int
        +speak(): string
    }
    class Dog {
        +fetch()
    }
    Animal <|-- Dog
    Animal --> Food : eats
    Animal ..> Logger
    Dog -- Owner
`

func importSample(t *testing.T) *dialect.ImportResult {
	t.Helper()
	res, err := New().Import(sample, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	return res
}

func TestImportMembers(t *testing.T) {
	res := importSample(t)
	if len(res.Shapes) != 5 {
		t.Fatalf("expected 5 shapes (2 declared, 3 from edges), got %d", len(res.Shapes))
	}
	animal := res.Shapes[0]
	p := animal.ClassData()
	if len(p.Attributes) != 2 || len(p.Methods) != 1 {
		t.Fatalf("Animal has %d attributes, %d methods", len(p.Attributes), len(p.Methods))
	}
	if p.Attributes[0].Visibility != "+" || p.Attributes[0].Name != "name" || p.Attributes[0].Type != "string" {
		t.Errorf("unexpected attribute: %+v", p.Attributes[0])
	}
	if p.Attributes[1].Visibility != "-" {
		t.Errorf("visibility = %q, want -", p.Attributes[1].Visibility)
	}
	if p.Methods[0].Name != "speak" || p.Methods[0].Type != "string" {
		t.Errorf("unexpected method: %+v", p.Methods[0])
	}
	if animal.Height != diagram.ContentHeight(animal) {
		t.Errorf("height %v not derived from content", animal.Height)
	}
}

func TestImportEdges(t *testing.T) {
	res := importSample(t)
	if len(res.Connectors) != 4 {
		t.Fatalf("expected 4 connectors, got %d", len(res.Connectors))
	}

	inherit := res.Connectors[0]
	if inherit.Type != diagram.ConnectorInheritance || inherit.EndMarker != diagram.MarkerTriangle {
		t.Errorf("inheritance connector = %s marker %s", inherit.Type, inherit.EndMarker)
	}
	// Animal <|-- Dog: triangle at the parent, so Dog is the source.
	if res.Shapes[inherit.SourceIndex].Label != "Dog" || res.Shapes[inherit.TargetIndex].Label != "Animal" {
		t.Errorf("inheritance runs %s -> %s, want Dog -> Animal",
			res.Shapes[inherit.SourceIndex].Label, res.Shapes[inherit.TargetIndex].Label)
	}

	assoc := res.Connectors[1]
	if assoc.Type != diagram.ConnectorAssociation || assoc.EndMarker != diagram.MarkerArrow || assoc.Label != "eats" {
		t.Errorf("association = %+v", assoc.Connector)
	}

	dep := res.Connectors[2]
	if dep.Type != diagram.ConnectorDependency || dep.Line != diagram.LineDashed || dep.EndMarker != diagram.MarkerOpenArrow {
		t.Errorf("dependency = %+v", dep.Connector)
	}

	plain := res.Connectors[3]
	if plain.Type != diagram.ConnectorAssociation || plain.EndMarker != diagram.MarkerNone {
		t.Errorf("undirected association = %+v", plain.Connector)
	}
}

func TestImportMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing header", "class A {\n}\n"},
		{"bad member", "classDiagram\n    class A {\n        123 nope\n    }\n"},
		{"unterminated block", "classDiagram\n    class A {\n"},
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
	res := importSample(t)
	shapes, conns, err := res.Materialize()
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	d := &diagram.Diagram{ID: diagram.NewID(), Type: diagram.TypeClass, Shapes: shapes, Connectors: conns}

	text, err := New().Export(d)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(text, "Animal <|-- Dog") {
		t.Errorf("export lost generalization direction:\n%s", text)
	}
	again, err := New().Import(text, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("reimport error = %v\ntext:\n%s", err, text)
	}
	if len(again.Shapes) != len(res.Shapes) || len(again.Connectors) != len(res.Connectors) {
		t.Fatalf("round trip changed counts: %d shapes, %d connectors",
			len(again.Shapes), len(again.Connectors))
	}
}

func TestVisibilityDefaultsToPublic(t *testing.T) {
	text := "classDiagram\n    class A {\n        name: string\n    }\n"
	res, err := New().Import(text, dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	shapes, _, _ := res.Materialize()
	d := &diagram.Diagram{ID: diagram.NewID(), Type: diagram.TypeClass, Shapes: shapes}
	out, err := New().Export(d)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(out, "+name: string") {
		t.Errorf("expected default public visibility, got:\n%s", out)
	}
}
