package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

func testDiagram() *diagram.Diagram {
	return &diagram.Diagram{
		ID:   "d1",
		Type: diagram.TypeFlow,
		Shapes: []*diagram.Shape{
			{ID: "a", Type: diagram.ShapeFlowNode, Label: "Start", FlowNode: &diagram.FlowPayload{Kind: diagram.FlowRounded}},
			{ID: "b", Type: diagram.ShapeFlowNode, Label: "End", FlowNode: &diagram.FlowPayload{}},
		},
		Connectors: []*diagram.Connector{
			{ID: "e", Type: diagram.ConnectorFlow, SourceShapeID: "a", TargetShapeID: "b"},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	d := testDiagram()

	var buf bytes.Buffer
	if err := WriteJSON(d, &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if !reflect.DeepEqual(got, d) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, d)
	}
}

func TestFileRoundTrip(t *testing.T) {
	d := testDiagram()
	path := filepath.Join(t.TempDir(), "diagram.json")

	if err := ExportJSON(d, path); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if !reflect.DeepEqual(got, d) {
		t.Errorf("file round trip mismatch")
	}
}

func TestReadJSONRejectsDanglingConnector(t *testing.T) {
	in := `{"id":"d1","type":"flow","shapes":[],"connectors":[{"id":"e","type":"flow","source_shape_id":"a","target_shape_id":"b"}]}`

	_, err := ReadJSON(strings.NewReader(in))
	if !errors.Is(err, errors.ErrCodeShapeNotFound) {
		t.Fatalf("ReadJSON() error = %v, want shape not found", err)
	}
}

func TestReadJSONMalformed(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader("{not json")); err == nil {
		t.Fatal("ReadJSON() expected error for malformed input")
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("ImportJSON() expected error for missing file")
	}
}
