package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(nil).Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestConvertTextToDiagram(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/convert", map[string]any{
		"text": "erDiagram\n    USERS ||--o{ ORDERS : places\n",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Diagram *diagram.Diagram `json:"diagram"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Diagram == nil {
		t.Fatal("response has no diagram")
	}
	if out.Diagram.Type != diagram.TypeER {
		t.Errorf("Type = %q, want %q", out.Diagram.Type, diagram.TypeER)
	}
	if len(out.Diagram.Shapes) != 2 || len(out.Diagram.Connectors) != 1 {
		t.Errorf("got %d shapes and %d connectors, want 2 and 1",
			len(out.Diagram.Shapes), len(out.Diagram.Connectors))
	}
}

func TestConvertDiagramToText(t *testing.T) {
	ts := newTestServer(t)

	d := &diagram.Diagram{
		ID:   "d1",
		Type: diagram.TypeFlow,
		Shapes: []*diagram.Shape{
			{ID: "a", Type: diagram.ShapeFlowNode, Label: "Start", FlowNode: &diagram.FlowPayload{}},
			{ID: "b", Type: diagram.ShapeFlowNode, Label: "End", FlowNode: &diagram.FlowPayload{}},
		},
		Connectors: []*diagram.Connector{
			{ID: "e", Type: diagram.ConnectorFlow, SourceShapeID: "a", TargetShapeID: "b", EndMarker: diagram.MarkerArrow},
		},
	}

	resp := postJSON(t, ts.URL+"/v1/convert", map[string]any{"diagram": d})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(out.Text, "flowchart") {
		t.Errorf("Text = %q, want flowchart syntax", out.Text)
	}
}

func TestConvertRejectsBadSyntax(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/convert", map[string]any{
		"text": "erDiagram\n    !!! what\n",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var out struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Error.Code != "VALIDATION_FAILED" {
		t.Errorf("error code = %q, want VALIDATION_FAILED", out.Error.Code)
	}
}

func TestConvertRejectsEmptyBody(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/convert", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestConvertRejectsUnknownDialect(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/convert", map[string]any{
		"text": "this is not a diagram\n",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRenderDOT(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/render", map[string]any{
		"text":   "flowchart TD\n    a[Start] --> b[End]\n",
		"format": "dot",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(buf.String(), "digraph G") {
		t.Errorf("body does not look like DOT:\n%s", buf.String())
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/render", map[string]any{
		"text":   "flowchart TD\n    a[Start]\n",
		"format": "gif",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
