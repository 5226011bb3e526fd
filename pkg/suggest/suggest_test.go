package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/schemadraw/schemadraw/pkg/command"
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
	"github.com/schemadraw/schemadraw/pkg/store"
)

// fakeGenerator returns canned syntax and counts calls.
type fakeGenerator struct {
	syntax string
	err    error
	calls  int
}

func (g *fakeGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &Response{Syntax: g.syntax}, nil
}

// seedSuggestion builds a flow diagram with an upstream node connected to
// a target node, and a suggestion attached to the target.
func seedSuggestion(t *testing.T) (*command.Engine, store.Store, string, *diagram.Diagram) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()

	d := &diagram.Diagram{ID: diagram.NewID(), Type: diagram.TypeFlow}
	upstream := &diagram.Shape{
		ID: "upstream", Type: diagram.ShapeFlowNode, Label: "Start",
		Width: 140, Height: 60, FlowNode: &diagram.FlowPayload{Kind: diagram.FlowRect},
	}
	target := &diagram.Shape{
		ID: "target", Type: diagram.ShapeFlowNode, Label: "Process",
		X: 200, Width: 140, Height: 60, FlowNode: &diagram.FlowPayload{Kind: diagram.FlowRect},
	}
	sug := &diagram.Shape{
		ID: "sug", Type: diagram.ShapeSuggestion, X: 400, Width: 200, Height: 80,
		Suggestion: &diagram.SuggestionPayload{TargetShapeID: "target", Text: "split into review and deploy"},
	}
	d.AddShape(upstream)
	d.AddShape(target)
	d.AddShape(sug)
	d.AddConnector(&diagram.Connector{
		ID: "edge", Type: diagram.ConnectorFlow,
		SourceShapeID: "upstream", TargetShapeID: "target",
		EndMarker: diagram.MarkerArrow,
	})
	d.AddConnector(&diagram.Connector{
		ID: "overlay", Type: diagram.ConnectorSuggestion,
		SourceShapeID: "sug", TargetShapeID: "target",
		Overlay: true,
	})
	if err := st.PutDiagram(ctx, d); err != nil {
		t.Fatalf("PutDiagram() error = %v", err)
	}

	e, err := command.NewEngine(ctx, st, d.ID, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e, st, d.ID, d
}

const generated = "flowchart TD\n    a[Review] --> b[Deploy]\n"

func TestApplySuggestion(t *testing.T) {
	ctx := context.Background()
	e, st, id, _ := seedSuggestion(t)

	gen := &fakeGenerator{syntax: generated}
	cmd := &ApplySuggestion{SuggestionID: "sug", Generator: gen}
	if err := e.Execute(ctx, cmd); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	d, _ := st.GetDiagram(ctx, id)
	if d.ShapeByID("target") != nil || d.ShapeByID("sug") != nil {
		t.Error("target and suggestion must be removed")
	}
	if d.ConnectorByID("overlay") != nil {
		t.Error("overlay connector must be removed")
	}

	// Two generated shapes, flagged as preview content.
	var members []*diagram.Shape
	var container *diagram.Shape
	for _, s := range d.Shapes {
		switch s.Type {
		case diagram.ShapeFlowNode:
			if s.ID != "upstream" {
				members = append(members, s)
			}
		case diagram.ShapePreview:
			container = s
		}
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 generated nodes, got %d", len(members))
	}
	for _, m := range members {
		if !m.Preview {
			t.Errorf("generated node %q not flagged as preview", m.Label)
		}
	}

	// The upstream edge keeps its id but now lands on the first new shape.
	edge := d.ConnectorByID("edge")
	if edge == nil {
		t.Fatal("rewired connector lost its original id")
	}
	if edge.SourceShapeID != "upstream" {
		t.Errorf("rewired source = %q", edge.SourceShapeID)
	}
	if edge.TargetShapeID == "target" || d.ShapeByID(edge.TargetShapeID) == nil {
		t.Errorf("rewired target = %q", edge.TargetShapeID)
	}

	if container == nil {
		t.Fatal("preview container missing")
	}
	p := container.PreviewData()
	if p.GeneratingSyntax != generated {
		t.Error("container does not carry the generating syntax")
	}
	if len(p.MemberShapeIDs) != 2 {
		t.Errorf("container members = %d, want 2", len(p.MemberShapeIDs))
	}

	if err := d.Validate(); err != nil {
		t.Errorf("diagram invalid after apply: %v", err)
	}
}

func TestApplySuggestionUndoRestoresEverything(t *testing.T) {
	ctx := context.Background()
	e, st, id, before := seedSuggestion(t)

	gen := &fakeGenerator{syntax: generated}
	if err := e.Execute(ctx, &ApplySuggestion{SuggestionID: "sug", Generator: gen}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if err := e.Undo(ctx); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}

	// Undo must reproduce the exact diagram, slice order included: the
	// plain edge sits below the overlay in z-order and has to stay there.
	want, err := json.Marshal(before)
	if err != nil {
		t.Fatal(err)
	}
	d, _ := st.GetDiagram(ctx, id)
	got, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("diagram after undo differs:\n got %s\nwant %s", got, want)
	}
	mirror, err := json.Marshal(e.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if string(mirror) != string(want) {
		t.Errorf("mirror after undo differs:\n got %s\nwant %s", mirror, want)
	}
}

func TestApplySuggestionRedoSkipsGeneration(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := seedSuggestion(t)

	gen := &fakeGenerator{syntax: generated}
	if err := e.Execute(ctx, &ApplySuggestion{SuggestionID: "sug", Generator: gen}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if err := e.Undo(ctx); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if err := e.Redo(ctx); err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1 (redo must replay the cached result)", gen.calls)
	}
}

func TestApplySuggestionGeneratorFailureLeavesDiagramIntact(t *testing.T) {
	ctx := context.Background()
	e, st, id, before := seedSuggestion(t)

	gen := &fakeGenerator{err: errors.New(errors.ErrCodeUpstream, "service down")}
	err := e.Execute(ctx, &ApplySuggestion{SuggestionID: "sug", Generator: gen})
	if !errors.Is(err, errors.ErrCodeUpstream) {
		t.Fatalf("Execute() = %v, want upstream error", err)
	}

	d, _ := st.GetDiagram(ctx, id)
	if len(d.Shapes) != len(before.Shapes) || len(d.Connectors) != len(before.Connectors) {
		t.Error("failed apply must not change the diagram")
	}
	if e.CanUndo() {
		t.Error("failed apply must not land on the undo stack")
	}
}

func TestApplySuggestionRejectsBadSyntax(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := seedSuggestion(t)

	gen := &fakeGenerator{syntax: "not a diagram"}
	err := e.Execute(ctx, &ApplySuggestion{SuggestionID: "sug", Generator: gen})
	if !errors.Is(err, errors.ErrCodeGeneration) {
		t.Fatalf("Execute() = %v, want generation error", err)
	}
}

func TestApplySuggestionRejectsNonSuggestion(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := seedSuggestion(t)

	err := e.Execute(ctx, &ApplySuggestion{SuggestionID: "target", Generator: &fakeGenerator{}})
	if !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Fatalf("Execute() = %v, want invalid shape", err)
	}
}

func TestHTTPGenerator(t *testing.T) {
	var gotAuth string
	var gotReq Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(Response{Syntax: generated})
	}))
	defer srv.Close()

	g := NewHTTPGenerator(srv.URL, "tok123")
	resp, err := g.Generate(context.Background(), Request{
		Syntax:      "flowchart TD\n    a[Process]\n",
		Suggestion:  "split it",
		DiagramType: diagram.TypeFlow,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Syntax != generated {
		t.Errorf("syntax = %q", resp.Syntax)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotReq.Suggestion != "split it" || gotReq.DiagramType != diagram.TypeFlow {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestHTTPGeneratorStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		code   errors.Code
	}{
		{http.StatusUnauthorized, errors.ErrCodeUpstream},
		{http.StatusInternalServerError, errors.ErrCodeUpstream},
		{http.StatusBadRequest, errors.ErrCodeGeneration},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		g := NewHTTPGenerator(srv.URL, "")
		_, err := g.Generate(context.Background(), Request{DiagramType: diagram.TypeFlow})
		if !errors.Is(err, tt.code) {
			t.Errorf("status %d: error = %v, want code %s", tt.status, err, tt.code)
		}
		srv.Close()
	}
}

func TestHTTPGeneratorRejectsEmptySyntax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{Syntax: "  "})
	}))
	defer srv.Close()

	g := NewHTTPGenerator(srv.URL, "")
	_, err := g.Generate(context.Background(), Request{DiagramType: diagram.TypeFlow})
	if !errors.Is(err, errors.ErrCodeGeneration) {
		t.Fatalf("Generate() = %v, want generation error", err)
	}
}
