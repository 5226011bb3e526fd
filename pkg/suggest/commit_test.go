package suggest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

func TestCommitPreview(t *testing.T) {
	ctx := context.Background()
	e, st, id, _ := seedSuggestion(t)

	gen := &fakeGenerator{syntax: generated}
	if err := e.Execute(ctx, &ApplySuggestion{SuggestionID: "sug", Generator: gen}); err != nil {
		t.Fatalf("Execute(apply) error = %v", err)
	}

	d, _ := st.GetDiagram(ctx, id)
	var container *diagram.Shape
	for _, s := range d.Shapes {
		if s.Type == diagram.ShapePreview {
			container = s
		}
	}
	if container == nil {
		t.Fatal("no preview container after apply")
	}
	memberIDs := container.PreviewData().MemberShapeIDs

	if err := e.Execute(ctx, &CommitPreview{PreviewID: container.ID}); err != nil {
		t.Fatalf("Execute(commit) error = %v", err)
	}

	d, _ = st.GetDiagram(ctx, id)
	if d.ShapeByID(container.ID) != nil {
		t.Error("container must be removed after commit")
	}
	for _, mid := range memberIDs {
		member := d.ShapeByID(mid)
		if member == nil {
			t.Fatalf("member %q missing after commit", mid)
		}
		if member.Preview {
			t.Errorf("member %q still flagged as preview", mid)
		}
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() after commit: %v", err)
	}
}

func TestCommitPreviewUndo(t *testing.T) {
	ctx := context.Background()
	e, st, id, _ := seedSuggestion(t)

	gen := &fakeGenerator{syntax: generated}
	if err := e.Execute(ctx, &ApplySuggestion{SuggestionID: "sug", Generator: gen}); err != nil {
		t.Fatalf("Execute(apply) error = %v", err)
	}

	before, _ := st.GetDiagram(ctx, id)
	want, err := json.Marshal(before)
	if err != nil {
		t.Fatal(err)
	}
	var containerID string
	for _, s := range before.Shapes {
		if s.Type == diagram.ShapePreview {
			containerID = s.ID
		}
	}

	if err := e.Execute(ctx, &CommitPreview{PreviewID: containerID}); err != nil {
		t.Fatalf("Execute(commit) error = %v", err)
	}
	if err := e.Undo(ctx); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}

	after, _ := st.GetDiagram(ctx, id)
	restored := after.ShapeByID(containerID)
	if restored == nil {
		t.Fatal("container not restored by undo")
	}
	for _, mid := range restored.PreviewData().MemberShapeIDs {
		member := after.ShapeByID(mid)
		if member == nil || !member.Preview {
			t.Errorf("member %q not restored to preview state", mid)
		}
	}
	got, err := json.Marshal(after)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("diagram after undo differs:\n got %s\nwant %s", got, want)
	}
}

func TestCommitPreviewRejectsNonPreview(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := seedSuggestion(t)

	err := e.Execute(ctx, &CommitPreview{PreviewID: "target"})
	if !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Fatalf("Execute() error = %v, want invalid shape", err)
	}
}

func TestCommitPreviewMissing(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := seedSuggestion(t)

	err := e.Execute(ctx, &CommitPreview{PreviewID: "nope"})
	if !errors.Is(err, errors.ErrCodeShapeNotFound) {
		t.Fatalf("Execute() error = %v, want shape not found", err)
	}
}
