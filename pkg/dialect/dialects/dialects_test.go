package dialects

import (
	"testing"

	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		text string
		want diagram.Type
	}{
		{"erDiagram\n    A {\n    }\n", diagram.TypeER},
		{"classDiagram\n", diagram.TypeClass},
		{"sequenceDiagram\n", diagram.TypeSequence},
		{"flowchart TD\n", diagram.TypeFlow},
		{"architecture\n", diagram.TypeArchitecture},
	}
	for _, tt := range tests {
		codec, err := Detect(tt.text)
		if err != nil {
			t.Errorf("Detect(%q) error = %v", tt.text, err)
			continue
		}
		if codec.Type() != tt.want {
			t.Errorf("Detect(%q) = %s, want %s", tt.text, codec.Type(), tt.want)
		}
	}
}

func TestDetectUnknown(t *testing.T) {
	_, err := Detect("graph of nothing\n")
	if !errors.Is(err, errors.ErrCodeInvalidDialect) {
		t.Fatalf("expected invalid dialect error, got %v", err)
	}
}

func TestForTypeCoversAll(t *testing.T) {
	for _, codec := range All() {
		got, err := ForType(codec.Type())
		if err != nil {
			t.Errorf("ForType(%s) error = %v", codec.Type(), err)
			continue
		}
		if got.Type() != codec.Type() {
			t.Errorf("ForType(%s) returned codec for %s", codec.Type(), got.Type())
		}
	}
}

func TestImportExportConvenience(t *testing.T) {
	res, err := Import("flowchart TD\n    a[One] --> b[Two]\n", dialect.ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	shapes, conns, err := res.Materialize()
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	d := &diagram.Diagram{ID: diagram.NewID(), Type: res.Type, Shapes: shapes, Connectors: conns}
	text, err := Export(d)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if text == "" {
		t.Fatal("empty export")
	}
}
