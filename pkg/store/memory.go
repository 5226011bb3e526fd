package store

import (
	"context"
	"sync"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// MemoryStore keeps diagrams in process memory. It backs tests and the
// single-process CLI where persistence across runs is not needed.
type MemoryStore struct {
	mu       sync.RWMutex
	diagrams map[string]*diagram.Diagram
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{diagrams: make(map[string]*diagram.Diagram)}
}

// GetDiagram returns a deep copy of the stored diagram.
func (s *MemoryStore) GetDiagram(ctx context.Context, id string) (*diagram.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.diagrams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

// PutDiagram creates or replaces a diagram.
func (s *MemoryStore) PutDiagram(ctx context.Context, d *diagram.Diagram) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagrams[d.ID] = d.Clone()
	return nil
}

// DeleteDiagram removes a diagram.
func (s *MemoryStore) DeleteDiagram(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.diagrams[id]; !ok {
		return ErrNotFound
	}
	delete(s.diagrams, id)
	return nil
}

// ListDiagrams returns all diagram ids.
func (s *MemoryStore) ListDiagrams(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.diagrams))
	for id := range s.diagrams {
		ids = append(ids, id)
	}
	return ids, nil
}

// withDiagram runs fn against a copy under the write lock and commits the
// copy only when fn succeeds, keeping batches atomic.
func (s *MemoryStore) withDiagram(id string, fn func(*diagram.Diagram) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.diagrams[id]
	if !ok {
		return ErrNotFound
	}
	copy := d.Clone()
	if err := fn(copy); err != nil {
		return err
	}
	s.diagrams[id] = copy
	return nil
}

// CreateShapes adds shapes to a diagram.
func (s *MemoryStore) CreateShapes(ctx context.Context, diagramID string, shapes []*diagram.Shape) error {
	return s.withDiagram(diagramID, func(d *diagram.Diagram) error {
		return applyCreateShapes(d, shapes)
	})
}

// UpdateShape replaces a shape in place.
func (s *MemoryStore) UpdateShape(ctx context.Context, diagramID string, sh *diagram.Shape) error {
	return s.withDiagram(diagramID, func(d *diagram.Diagram) error {
		return applyUpdateShape(d, sh)
	})
}

// DeleteShapes removes shapes by id.
func (s *MemoryStore) DeleteShapes(ctx context.Context, diagramID string, shapeIDs []string) error {
	return s.withDiagram(diagramID, func(d *diagram.Diagram) error {
		return applyDeleteShapes(d, shapeIDs)
	})
}

// RestoreShapes reinserts deleted shapes at their original positions.
func (s *MemoryStore) RestoreShapes(ctx context.Context, diagramID string, shapes []*diagram.Shape, at []int) error {
	return s.withDiagram(diagramID, func(d *diagram.Diagram) error {
		return applyRestoreShapes(d, shapes, at)
	})
}

// CreateConnectors adds connectors to a diagram.
func (s *MemoryStore) CreateConnectors(ctx context.Context, diagramID string, conns []*diagram.Connector) error {
	return s.withDiagram(diagramID, func(d *diagram.Diagram) error {
		return applyCreateConnectors(d, conns)
	})
}

// UpdateConnector replaces a connector in place.
func (s *MemoryStore) UpdateConnector(ctx context.Context, diagramID string, c *diagram.Connector) error {
	return s.withDiagram(diagramID, func(d *diagram.Diagram) error {
		return applyUpdateConnector(d, c)
	})
}

// DeleteConnectors removes connectors by id.
func (s *MemoryStore) DeleteConnectors(ctx context.Context, diagramID string, connIDs []string) error {
	return s.withDiagram(diagramID, func(d *diagram.Diagram) error {
		return applyDeleteConnectors(d, connIDs)
	})
}

// RestoreConnectors reinserts deleted connectors at their original
// positions.
func (s *MemoryStore) RestoreConnectors(ctx context.Context, diagramID string, conns []*diagram.Connector, at []int) error {
	return s.withDiagram(diagramID, func(d *diagram.Diagram) error {
		return applyRestoreConnectors(d, conns, at)
	})
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
