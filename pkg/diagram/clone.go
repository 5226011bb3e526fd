package diagram

// Clone creates a deep copy of the shape, including its payload.
func (s *Shape) Clone() *Shape {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Entity != nil {
		p := EntityPayload{Attributes: append([]EntityAttribute(nil), s.Entity.Attributes...)}
		clone.Entity = &p
	}
	if s.Class != nil {
		p := ClassPayload{
			Attributes: append([]ClassMember(nil), s.Class.Attributes...),
			Methods:    append([]ClassMember(nil), s.Class.Methods...),
		}
		clone.Class = &p
	}
	if s.Lifeline != nil {
		p := *s.Lifeline
		clone.Lifeline = &p
	}
	if s.FlowNode != nil {
		p := *s.FlowNode
		clone.FlowNode = &p
	}
	if s.Component != nil {
		p := *s.Component
		clone.Component = &p
	}
	if s.Suggestion != nil {
		p := *s.Suggestion
		clone.Suggestion = &p
	}
	if s.PreviewGroup != nil {
		p := PreviewPayload{
			GeneratingSyntax:   s.PreviewGroup.GeneratingSyntax,
			GeneratorShapeID:   s.PreviewGroup.GeneratorShapeID,
			MemberShapeIDs:     append([]string(nil), s.PreviewGroup.MemberShapeIDs...),
			MemberConnectorIDs: append([]string(nil), s.PreviewGroup.MemberConnectorIDs...),
		}
		clone.PreviewGroup = &p
	}
	return &clone
}

// Clone creates a deep copy of the connector.
func (c *Connector) Clone() *Connector {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Waypoints != nil {
		clone.Waypoints = append([]Point(nil), c.Waypoints...)
	}
	return &clone
}

// Clone creates a deep copy of the diagram. The copy shares nothing with
// the original; command undo snapshots rely on this.
func (d *Diagram) Clone() *Diagram {
	if d == nil {
		return nil
	}
	clone := &Diagram{
		ID:         d.ID,
		Type:       d.Type,
		Shapes:     make([]*Shape, len(d.Shapes)),
		Connectors: make([]*Connector, len(d.Connectors)),
	}
	for i, s := range d.Shapes {
		clone.Shapes[i] = s.Clone()
	}
	for i, c := range d.Connectors {
		clone.Connectors[i] = c.Clone()
	}
	return clone
}
