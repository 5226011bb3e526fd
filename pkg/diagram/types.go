// Package diagram defines the shape and connector model for schemadraw.
//
// The package is purely representational: typed shapes with
// type-discriminated payloads, connectors referencing shapes by id, and
// derived-geometry helpers. All mutation flows through pkg/command; nothing
// in this package changes persisted state.
//
// Shapes and connectors are kept as independent entries in id-keyed
// collections. Connectors hold foreign-key-style shape ids, never pointers,
// so the model contains no reference cycles and resolution is always a
// lookup on the owning Diagram.
package diagram

import (
	"github.com/google/uuid"

	"github.com/schemadraw/schemadraw/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Type identifies the diagram dialect family.
type Type string

// Diagram types.
const (
	TypeER           Type = "er"
	TypeClass        Type = "class"
	TypeSequence     Type = "sequence"
	TypeFlow         Type = "flow"
	TypeArchitecture Type = "architecture"
)

// ShapeType is the closed set of shape kinds. Every consumption site
// (height calculator, anchor registry, dialect codecs) switches over this
// set exhaustively so adding a kind is an enumerable change.
type ShapeType string

// Shape kinds.
const (
	ShapeEntity     ShapeType = "entity"
	ShapeClass      ShapeType = "class"
	ShapeLifeline   ShapeType = "lifeline"
	ShapeFlowNode   ShapeType = "flow-node"
	ShapeComponent  ShapeType = "component"
	ShapeSuggestion ShapeType = "suggestion"
	ShapePreview    ShapeType = "preview"
)

// ShapeTypes lists every shape kind, in a stable order.
var ShapeTypes = []ShapeType{
	ShapeEntity,
	ShapeClass,
	ShapeLifeline,
	ShapeFlowNode,
	ShapeComponent,
	ShapeSuggestion,
	ShapePreview,
}

// ConnectorType identifies the semantic role of a connector.
type ConnectorType string

// Connector kinds.
const (
	ConnectorRelationship ConnectorType = "relationship" // ER cardinality edge
	ConnectorAssociation  ConnectorType = "association"  // class association
	ConnectorInheritance  ConnectorType = "inheritance"  // class generalization
	ConnectorDependency   ConnectorType = "dependency"   // class dashed dependency
	ConnectorMessage      ConnectorType = "message"      // sequence call
	ConnectorReturn       ConnectorType = "return"       // sequence return
	ConnectorFlow         ConnectorType = "flow"         // flowchart edge
	ConnectorLink         ConnectorType = "link"         // architecture link
	ConnectorSuggestion   ConnectorType = "suggestion"   // overlay, suggestion → target
)

// Routing styles for connector paths.
type Routing string

// Routing values.
const (
	RoutingStraight   Routing = "straight"
	RoutingOrthogonal Routing = "orthogonal"
	RoutingCurved     Routing = "curved"
)

// Marker is the decoration drawn at a connector end.
type Marker string

// Marker kinds.
const (
	MarkerNone         Marker = "none"
	MarkerArrow        Marker = "arrow"
	MarkerOpenArrow    Marker = "open-arrow"
	MarkerTriangle     Marker = "triangle"
	MarkerDiamond      Marker = "diamond"
	MarkerCrowfootOne  Marker = "crowfoot-one"
	MarkerCrowfootMany Marker = "crowfoot-many"
)

// LineStyle is the stroke style of a connector.
type LineStyle string

// Line styles.
const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineDotted LineStyle = "dotted"
)

// AttributeKey marks an entity attribute as a key column.
type AttributeKey string

// Attribute key kinds. Empty means a plain column.
const (
	KeyNone    AttributeKey = ""
	KeyPrimary AttributeKey = "PK"
	KeyForeign AttributeKey = "FK"
)

// =============================================================================
// Geometry
// =============================================================================

// Point is a 2D canvas coordinate.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Bounds is an axis-aligned rectangle in canvas coordinates.
type Bounds struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Center returns the center point of the bounds.
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	minX := min(b.X, other.X)
	minY := min(b.Y, other.Y)
	maxX := max(b.X+b.Width, other.X+other.Width)
	maxY := max(b.Y+b.Height, other.Y+other.Height)
	return Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// =============================================================================
// Shape Payloads
// =============================================================================

// EntityAttribute is one row of an ER entity.
type EntityAttribute struct {
	Name    string       `json:"name" bson:"name"`
	Type    string       `json:"type" bson:"type"`
	Key     AttributeKey `json:"key,omitempty" bson:"key,omitempty"`
	Comment string       `json:"comment,omitempty" bson:"comment,omitempty"`
}

// EntityPayload is the content of an ER entity shape.
type EntityPayload struct {
	Attributes []EntityAttribute `json:"attributes" bson:"attributes"`
}

// ClassMember is one attribute or method row of a class shape. Visibility
// uses UML notation ("+", "-", "#", "~"); empty defaults to public.
type ClassMember struct {
	Name       string `json:"name" bson:"name"`
	Type       string `json:"type,omitempty" bson:"type,omitempty"`
	Visibility string `json:"visibility,omitempty" bson:"visibility,omitempty"`
}

// ClassPayload is the content of a class shape.
type ClassPayload struct {
	Attributes []ClassMember `json:"attributes" bson:"attributes"`
	Methods    []ClassMember `json:"methods" bson:"methods"`
}

// LifelinePayload is the content of a sequence participant.
type LifelinePayload struct {
	Actor bool `json:"actor,omitempty" bson:"actor,omitempty"`
}

// FlowNodeKind is the visual variant of a flowchart node.
type FlowNodeKind string

// Flow node kinds.
const (
	FlowRect     FlowNodeKind = "rect"
	FlowRounded  FlowNodeKind = "rounded"
	FlowDecision FlowNodeKind = "decision"
)

// FlowPayload is the content of a flowchart node.
type FlowPayload struct {
	Kind FlowNodeKind `json:"kind,omitempty" bson:"kind,omitempty"`
}

// ComponentKind is the icon variant of an architecture component.
type ComponentKind string

// Component kinds.
const (
	ComponentServer   ComponentKind = "server"
	ComponentDatabase ComponentKind = "database"
	ComponentCloud    ComponentKind = "cloud"
	ComponentDisk     ComponentKind = "disk"
	ComponentQueue    ComponentKind = "queue"
)

// ComponentPayload is the content of an architecture component shape.
type ComponentPayload struct {
	Kind ComponentKind `json:"kind,omitempty" bson:"kind,omitempty"`
	// ServiceID is the identifier the architecture syntax uses to reference
	// this component in link lines.
	ServiceID string `json:"serviceId,omitempty" bson:"serviceId,omitempty"`
}

// SuggestionPayload is the content of an AI suggestion comment attached to
// a target shape.
type SuggestionPayload struct {
	TargetShapeID string `json:"target_shape_id" bson:"target_shape_id"`
	Text          string `json:"text" bson:"text"`
}

// PreviewPayload is the content of a preview container wrapping freshly
// generated shapes pending acceptance.
type PreviewPayload struct {
	GeneratingSyntax   string   `json:"generating_syntax" bson:"generating_syntax"`
	GeneratorShapeID   string   `json:"generator_shape_id" bson:"generator_shape_id"`
	MemberShapeIDs     []string `json:"member_shape_ids" bson:"member_shape_ids"`
	MemberConnectorIDs []string `json:"member_connector_ids" bson:"member_connector_ids"`
}

// =============================================================================
// Shape
// =============================================================================

// Shape is a positioned, typed diagram element. Exactly one payload pointer
// is non-nil and it always matches Type; Validate checks the pairing.
type Shape struct {
	ID      string    `json:"id" bson:"id"`
	Type    ShapeType `json:"type" bson:"type"`
	X       float64   `json:"x" bson:"x"`
	Y       float64   `json:"y" bson:"y"`
	Width   float64   `json:"width" bson:"width"`
	Height  float64   `json:"height" bson:"height"`
	ZIndex  int       `json:"z_index,omitempty" bson:"z_index,omitempty"`
	Locked  bool      `json:"locked,omitempty" bson:"locked,omitempty"`
	Preview bool      `json:"preview,omitempty" bson:"preview,omitempty"`
	Label   string    `json:"label,omitempty" bson:"label,omitempty"`

	Entity       *EntityPayload     `json:"entity,omitempty" bson:"entity,omitempty"`
	Class        *ClassPayload      `json:"class,omitempty" bson:"class,omitempty"`
	Lifeline     *LifelinePayload   `json:"lifeline,omitempty" bson:"lifeline,omitempty"`
	FlowNode     *FlowPayload       `json:"flow_node,omitempty" bson:"flow_node,omitempty"`
	Component    *ComponentPayload  `json:"component,omitempty" bson:"component,omitempty"`
	Suggestion   *SuggestionPayload `json:"suggestion,omitempty" bson:"suggestion,omitempty"`
	PreviewGroup *PreviewPayload    `json:"preview_group,omitempty" bson:"preview_group,omitempty"`
}

// Bounds returns the shape's rectangle.
func (s *Shape) Bounds() Bounds {
	return Bounds{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// SetBounds applies a rectangle to the shape's geometry.
func (s *Shape) SetBounds(b Bounds) {
	s.X, s.Y, s.Width, s.Height = b.X, b.Y, b.Width, b.Height
}

// DisplayLabel returns the label if set, otherwise the ID.
func (s *Shape) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return s.ID
}

// EntityData returns the entity payload, defaulting absent fields. The
// returned value has a non-nil attribute slice.
func (s *Shape) EntityData() EntityPayload {
	if s.Entity == nil {
		return EntityPayload{Attributes: []EntityAttribute{}}
	}
	p := *s.Entity
	if p.Attributes == nil {
		p.Attributes = []EntityAttribute{}
	}
	return p
}

// ClassData returns the class payload, defaulting absent fields.
func (s *Shape) ClassData() ClassPayload {
	if s.Class == nil {
		return ClassPayload{Attributes: []ClassMember{}, Methods: []ClassMember{}}
	}
	p := *s.Class
	if p.Attributes == nil {
		p.Attributes = []ClassMember{}
	}
	if p.Methods == nil {
		p.Methods = []ClassMember{}
	}
	return p
}

// LifelineData returns the lifeline payload.
func (s *Shape) LifelineData() LifelinePayload {
	if s.Lifeline == nil {
		return LifelinePayload{}
	}
	return *s.Lifeline
}

// FlowData returns the flow node payload, defaulting the kind to a
// rectangle.
func (s *Shape) FlowData() FlowPayload {
	if s.FlowNode == nil {
		return FlowPayload{Kind: FlowRect}
	}
	p := *s.FlowNode
	if p.Kind == "" {
		p.Kind = FlowRect
	}
	return p
}

// ComponentData returns the component payload, defaulting the kind to a
// server.
func (s *Shape) ComponentData() ComponentPayload {
	if s.Component == nil {
		return ComponentPayload{Kind: ComponentServer}
	}
	p := *s.Component
	if p.Kind == "" {
		p.Kind = ComponentServer
	}
	return p
}

// SuggestionData returns the suggestion payload.
func (s *Shape) SuggestionData() SuggestionPayload {
	if s.Suggestion == nil {
		return SuggestionPayload{}
	}
	return *s.Suggestion
}

// PreviewData returns the preview container payload with non-nil member
// slices.
func (s *Shape) PreviewData() PreviewPayload {
	if s.PreviewGroup == nil {
		return PreviewPayload{MemberShapeIDs: []string{}, MemberConnectorIDs: []string{}}
	}
	p := *s.PreviewGroup
	if p.MemberShapeIDs == nil {
		p.MemberShapeIDs = []string{}
	}
	if p.MemberConnectorIDs == nil {
		p.MemberConnectorIDs = []string{}
	}
	return p
}

// Validate checks that the payload variant matches the declared type and
// that no foreign payload is attached.
func (s *Shape) Validate() error {
	if s.ID == "" {
		return errors.New(errors.ErrCodeInvalidShape, "shape has no id")
	}
	payloads := map[ShapeType]bool{
		ShapeEntity:     s.Entity != nil,
		ShapeClass:      s.Class != nil,
		ShapeLifeline:   s.Lifeline != nil,
		ShapeFlowNode:   s.FlowNode != nil,
		ShapeComponent:  s.Component != nil,
		ShapeSuggestion: s.Suggestion != nil,
		ShapePreview:    s.PreviewGroup != nil,
	}
	matched, known := payloads[s.Type]
	if !known {
		return errors.New(errors.ErrCodeInvalidShape, "unknown shape type %q", s.Type)
	}
	if !matched {
		return errors.New(errors.ErrCodeInvalidShape, "shape %s: missing %s payload", s.ID, s.Type)
	}
	for t, present := range payloads {
		if present && t != s.Type {
			return errors.New(errors.ErrCodeInvalidShape, "shape %s: %s payload on %s shape", s.ID, t, s.Type)
		}
	}
	return nil
}

// =============================================================================
// Connector
// =============================================================================

// Connector links two shapes' connection points. Endpoints are ids, never
// pointers; resolution goes through the owning Diagram.
type Connector struct {
	ID                string        `json:"id" bson:"id"`
	Type              ConnectorType `json:"type" bson:"type"`
	SourceShapeID     string        `json:"source_shape_id" bson:"source_shape_id"`
	TargetShapeID     string        `json:"target_shape_id" bson:"target_shape_id"`
	SourcePointID     string        `json:"source_point_id,omitempty" bson:"source_point_id,omitempty"`
	TargetPointID     string        `json:"target_point_id,omitempty" bson:"target_point_id,omitempty"`
	Routing           Routing       `json:"routing,omitempty" bson:"routing,omitempty"`
	StartMarker       Marker        `json:"start_marker,omitempty" bson:"start_marker,omitempty"`
	EndMarker         Marker        `json:"end_marker,omitempty" bson:"end_marker,omitempty"`
	Line              LineStyle     `json:"line,omitempty" bson:"line,omitempty"`
	Waypoints         []Point       `json:"waypoints,omitempty" bson:"waypoints,omitempty"`
	Label             string        `json:"label,omitempty" bson:"label,omitempty"`
	SourceCardinality string        `json:"source_cardinality,omitempty" bson:"source_cardinality,omitempty"`
	TargetCardinality string        `json:"target_cardinality,omitempty" bson:"target_cardinality,omitempty"`
	ZIndex            int           `json:"z_index,omitempty" bson:"z_index,omitempty"`
	Overlay           bool          `json:"overlay,omitempty" bson:"overlay,omitempty"`
}

// Touches reports whether either endpoint references the given shape.
func (c *Connector) Touches(shapeID string) bool {
	return c.SourceShapeID == shapeID || c.TargetShapeID == shapeID
}

// =============================================================================
// Diagram
// =============================================================================

// Diagram is the aggregate mutated exclusively through commands. Shape and
// connector order is z-order within equal ZIndex values.
type Diagram struct {
	ID         string       `json:"id" bson:"id"`
	Type       Type         `json:"type" bson:"type"`
	Shapes     []*Shape     `json:"shapes" bson:"shapes"`
	Connectors []*Connector `json:"connectors" bson:"connectors"`
}

// ShapeByID returns the shape with the given id, or nil.
func (d *Diagram) ShapeByID(id string) *Shape {
	for _, s := range d.Shapes {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ConnectorByID returns the connector with the given id, or nil.
func (d *Diagram) ConnectorByID(id string) *Connector {
	for _, c := range d.Connectors {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ConnectorsTouching returns all connectors with an endpoint on the given
// shape, in collection order.
func (d *Diagram) ConnectorsTouching(shapeID string) []*Connector {
	var out []*Connector
	for _, c := range d.Connectors {
		if c.Touches(shapeID) {
			out = append(out, c)
		}
	}
	return out
}

// AddShape appends a shape to the collection.
func (d *Diagram) AddShape(s *Shape) {
	d.Shapes = append(d.Shapes, s)
}

// ShapeIndex returns the z-order position of the shape with the given
// id, or -1.
func (d *Diagram) ShapeIndex(id string) int {
	for i, s := range d.Shapes {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// InsertShapeAt inserts a shape at position i, clamped to the slice
// bounds.
func (d *Diagram) InsertShapeAt(s *Shape, i int) {
	if i < 0 {
		i = 0
	}
	if i > len(d.Shapes) {
		i = len(d.Shapes)
	}
	d.Shapes = append(d.Shapes, nil)
	copy(d.Shapes[i+1:], d.Shapes[i:])
	d.Shapes[i] = s
}

// RemoveShape removes the shape with the given id and returns it, or nil if
// absent. Attached connectors are left in place; callers that need the
// invariants intact remove them first.
func (d *Diagram) RemoveShape(id string) *Shape {
	for i, s := range d.Shapes {
		if s.ID == id {
			d.Shapes = append(d.Shapes[:i], d.Shapes[i+1:]...)
			return s
		}
	}
	return nil
}

// AddConnector appends a connector to the collection.
func (d *Diagram) AddConnector(c *Connector) {
	d.Connectors = append(d.Connectors, c)
}

// ConnectorIndex returns the z-order position of the connector with the
// given id, or -1.
func (d *Diagram) ConnectorIndex(id string) int {
	for i, c := range d.Connectors {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// InsertConnectorAt inserts a connector at position i, clamped to the
// slice bounds.
func (d *Diagram) InsertConnectorAt(c *Connector, i int) {
	if i < 0 {
		i = 0
	}
	if i > len(d.Connectors) {
		i = len(d.Connectors)
	}
	d.Connectors = append(d.Connectors, nil)
	copy(d.Connectors[i+1:], d.Connectors[i:])
	d.Connectors[i] = c
}

// RemoveConnector removes the connector with the given id and returns it,
// or nil if absent.
func (d *Diagram) RemoveConnector(id string) *Connector {
	for i, c := range d.Connectors {
		if c.ID == id {
			d.Connectors = append(d.Connectors[:i], d.Connectors[i+1:]...)
			return c
		}
	}
	return nil
}

// Validate checks referential integrity: every connector endpoint must
// reference an existing shape and every shape payload must match its type.
func (d *Diagram) Validate() error {
	for _, s := range d.Shapes {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, c := range d.Connectors {
		if d.ShapeByID(c.SourceShapeID) == nil {
			return errors.New(errors.ErrCodeShapeNotFound, "connector %s: source shape %s missing", c.ID, c.SourceShapeID)
		}
		if d.ShapeByID(c.TargetShapeID) == nil {
			return errors.New(errors.ErrCodeShapeNotFound, "connector %s: target shape %s missing", c.ID, c.TargetShapeID)
		}
	}
	return nil
}

// NewID returns a fresh unique identifier for shapes and connectors.
func NewID() string {
	return uuid.NewString()
}
