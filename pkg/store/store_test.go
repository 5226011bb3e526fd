package store

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

func seedDiagram(t *testing.T, s Store) *diagram.Diagram {
	t.Helper()
	d := &diagram.Diagram{ID: diagram.NewID(), Type: diagram.TypeER}
	d.AddShape(&diagram.Shape{
		ID:     "s1",
		Type:   diagram.ShapeEntity,
		Label:  "CUSTOMER",
		Entity: &diagram.EntityPayload{},
	})
	d.AddShape(&diagram.Shape{
		ID:     "s2",
		Type:   diagram.ShapeEntity,
		Label:  "ORDER",
		Entity: &diagram.EntityPayload{},
	})
	d.AddConnector(&diagram.Connector{
		ID:            "c1",
		Type:          diagram.ConnectorRelationship,
		SourceShapeID: "s1",
		TargetShapeID: "s2",
	})
	if err := s.PutDiagram(context.Background(), d); err != nil {
		t.Fatalf("PutDiagram() error = %v", err)
	}
	return d
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	d := seedDiagram(t, s)

	got, err := s.GetDiagram(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("GetDiagram() error = %v", err)
	}
	got.Shapes[0].Label = "MUTATED"

	again, _ := s.GetDiagram(context.Background(), d.ID)
	if again.Shapes[0].Label != "CUSTOMER" {
		t.Error("stored diagram leaked through returned copy")
	}
}

func TestMemoryNotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.GetDiagram(context.Background(), "nope"); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("GetDiagram = %v, want ErrNotFound", err)
	}
	if err := s.DeleteDiagram(context.Background(), "nope"); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("DeleteDiagram = %v, want ErrNotFound", err)
	}
	if err := s.UpdateShape(context.Background(), "nope", &diagram.Shape{ID: "x"}); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("UpdateShape = %v, want ErrNotFound", err)
	}
}

func TestMemoryShapeCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	d := seedDiagram(t, s)

	add := &diagram.Shape{ID: "s3", Type: diagram.ShapeEntity, Entity: &diagram.EntityPayload{}}
	if err := s.CreateShapes(ctx, d.ID, []*diagram.Shape{add}); err != nil {
		t.Fatalf("CreateShapes() error = %v", err)
	}
	if err := s.CreateShapes(ctx, d.ID, []*diagram.Shape{add}); !stderrors.Is(err, ErrConflict) {
		t.Errorf("duplicate create = %v, want ErrConflict", err)
	}

	upd := add.Clone()
	upd.Label = "INVOICE"
	if err := s.UpdateShape(ctx, d.ID, upd); err != nil {
		t.Fatalf("UpdateShape() error = %v", err)
	}

	got, _ := s.GetDiagram(ctx, d.ID)
	if sh := got.ShapeByID("s3"); sh == nil || sh.Label != "INVOICE" {
		t.Fatalf("update not visible: %+v", sh)
	}

	if err := s.DeleteShapes(ctx, d.ID, []string{"s3"}); err != nil {
		t.Fatalf("DeleteShapes() error = %v", err)
	}
	got, _ = s.GetDiagram(ctx, d.ID)
	if got.ShapeByID("s3") != nil {
		t.Error("shape still present after delete")
	}
}

func TestMemoryBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	d := seedDiagram(t, s)

	// Second id does not exist, so nothing may be removed.
	err := s.DeleteShapes(ctx, d.ID, []string{"s1", "ghost"})
	if !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteShapes = %v, want ErrNotFound", err)
	}
	got, _ := s.GetDiagram(ctx, d.ID)
	if got.ShapeByID("s1") == nil {
		t.Error("partial batch was applied")
	}

	// Same for creates: one conflicting id rejects the whole batch.
	batch := []*diagram.Shape{
		{ID: "new", Type: diagram.ShapeEntity, Entity: &diagram.EntityPayload{}},
		{ID: "s1", Type: diagram.ShapeEntity, Entity: &diagram.EntityPayload{}},
	}
	if err := s.CreateShapes(ctx, d.ID, batch); !stderrors.Is(err, ErrConflict) {
		t.Fatalf("CreateShapes = %v, want ErrConflict", err)
	}
	got, _ = s.GetDiagram(ctx, d.ID)
	if got.ShapeByID("new") != nil {
		t.Error("partial batch was applied")
	}
}

func TestMemoryConnectorCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	d := seedDiagram(t, s)

	add := &diagram.Connector{ID: "c2", Type: diagram.ConnectorRelationship, SourceShapeID: "s2", TargetShapeID: "s1"}
	if err := s.CreateConnectors(ctx, d.ID, []*diagram.Connector{add}); err != nil {
		t.Fatalf("CreateConnectors() error = %v", err)
	}

	upd := add.Clone()
	upd.Label = "owns"
	if err := s.UpdateConnector(ctx, d.ID, upd); err != nil {
		t.Fatalf("UpdateConnector() error = %v", err)
	}
	got, _ := s.GetDiagram(ctx, d.ID)
	if c := got.ConnectorByID("c2"); c == nil || c.Label != "owns" {
		t.Fatalf("update not visible: %+v", c)
	}

	if err := s.DeleteConnectors(ctx, d.ID, []string{"c2"}); err != nil {
		t.Fatalf("DeleteConnectors() error = %v", err)
	}
	if err := s.DeleteConnectors(ctx, d.ID, []string{"c2"}); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryListDiagrams(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedDiagram(t, s)
	seedDiagram(t, s)

	ids, err := s.ListDiagrams(ctx)
	if err != nil {
		t.Fatalf("ListDiagrams() error = %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 diagrams, got %d", len(ids))
	}
}

func TestMemoryRestoreAtIndex(t *testing.T) {
	s := NewMemoryStore()
	d := seedDiagram(t, s)
	ctx := context.Background()

	first := d.Shapes[0].Clone()
	conn := d.Connectors[0].Clone()
	if err := s.DeleteConnectors(ctx, d.ID, []string{"c1"}); err != nil {
		t.Fatalf("DeleteConnectors() error = %v", err)
	}
	if err := s.DeleteShapes(ctx, d.ID, []string{"s1"}); err != nil {
		t.Fatalf("DeleteShapes() error = %v", err)
	}

	if err := s.RestoreShapes(ctx, d.ID, []*diagram.Shape{first}, []int{0}); err != nil {
		t.Fatalf("RestoreShapes() error = %v", err)
	}
	if err := s.RestoreConnectors(ctx, d.ID, []*diagram.Connector{conn}, []int{0}); err != nil {
		t.Fatalf("RestoreConnectors() error = %v", err)
	}

	got, err := s.GetDiagram(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDiagram() error = %v", err)
	}
	if got.Shapes[0].ID != "s1" || got.Shapes[1].ID != "s2" {
		t.Errorf("shape order = %s, %s; want s1, s2", got.Shapes[0].ID, got.Shapes[1].ID)
	}
	if got.Connectors[0].ID != "c1" {
		t.Errorf("connector order = %s, want c1", got.Connectors[0].ID)
	}
}

func TestMemoryRestoreBatchOrder(t *testing.T) {
	s := NewMemoryStore()
	d := seedDiagram(t, s)
	ctx := context.Background()

	third := &diagram.Shape{ID: "s3", Type: diagram.ShapeEntity, Label: "INVOICE", Entity: &diagram.EntityPayload{}}
	if err := s.CreateShapes(ctx, d.ID, []*diagram.Shape{third}); err != nil {
		t.Fatalf("CreateShapes() error = %v", err)
	}
	if err := s.DeleteConnectors(ctx, d.ID, []string{"c1"}); err != nil {
		t.Fatalf("DeleteConnectors() error = %v", err)
	}
	if err := s.DeleteShapes(ctx, d.ID, []string{"s3", "s1"}); err != nil {
		t.Fatalf("DeleteShapes() error = %v", err)
	}

	// Restore order within the batch must not matter: each element goes
	// back to its recorded slot.
	restore := []*diagram.Shape{third.Clone(), d.Shapes[0].Clone()}
	if err := s.RestoreShapes(ctx, d.ID, restore, []int{2, 0}); err != nil {
		t.Fatalf("RestoreShapes() error = %v", err)
	}

	got, _ := s.GetDiagram(ctx, d.ID)
	for i, want := range []string{"s1", "s2", "s3"} {
		if got.Shapes[i].ID != want {
			t.Errorf("shape %d = %s, want %s", i, got.Shapes[i].ID, want)
		}
	}
}

func TestMemoryRestoreRejectsBadInput(t *testing.T) {
	s := NewMemoryStore()
	d := seedDiagram(t, s)
	ctx := context.Background()

	if err := s.RestoreShapes(ctx, d.ID, []*diagram.Shape{d.Shapes[0].Clone()}, []int{0}); !stderrors.Is(err, ErrConflict) {
		t.Errorf("RestoreShapes(duplicate) = %v, want ErrConflict", err)
	}
	if err := s.RestoreConnectors(ctx, d.ID, []*diagram.Connector{d.Connectors[0].Clone()}, []int{0}); !stderrors.Is(err, ErrConflict) {
		t.Errorf("RestoreConnectors(duplicate) = %v, want ErrConflict", err)
	}
	if err := s.RestoreShapes(ctx, d.ID, nil, []int{1}); err == nil {
		t.Error("mismatched batch and index lengths must fail")
	}
}
