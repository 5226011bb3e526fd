// Package anchor defines per-shape-type connection points and resolves
// them to absolute canvas coordinates.
//
// Two positioning modes coexist. Fractional points scale with the shape's
// bounds: {0.5, 0} is the middle of the top edge however large the shape
// grows. Fixed-offset points pin their Y to a pixel offset from the shape's
// top regardless of its height; sequence lifelines use them so message
// endpoints stay on a stable 40px grid no matter how tall the participant
// box is rendered.
package anchor

import (
	"fmt"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// Direction is a cardinal direction on a shape's boundary.
type Direction int

// Cardinal directions.
const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// Opposite returns the opposite direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Point is a named anchor on a shape's boundary. FracX and FracY are
// fractions of the shape's bounds in [0,1]. When HasFixedY is set, FixedY
// is a pixel offset from the shape's top that overrides the fractional Y.
type Point struct {
	ID        string
	FracX     float64
	FracY     float64
	Direction Direction
	FixedY    float64
	HasFixedY bool
}

// Lifeline message grid. Message endpoints sit every MessageSpacing pixels
// starting MessageTopOffset below the participant box's top; the same
// constants drive the activation calculator's vertical positions.
const (
	MessageTopOffset = 80.0
	MessageSpacing   = 40.0

	// MessageSlots is the number of fixed lifeline anchors generated.
	MessageSlots = 24
)

// boxPoints is the standard fractional anchor set for rectangular shapes.
var boxPoints = []Point{
	{ID: "top", FracX: 0.5, FracY: 0, Direction: North},
	{ID: "right", FracX: 1, FracY: 0.5, Direction: East},
	{ID: "bottom", FracX: 0.5, FracY: 1, Direction: South},
	{ID: "left", FracX: 0, FracY: 0.5, Direction: West},
}

var lifelinePoints = buildLifelinePoints()

func buildLifelinePoints() []Point {
	pts := []Point{
		{ID: "head", FracX: 0.5, FracY: 0, Direction: North},
	}
	for i := 0; i < MessageSlots; i++ {
		offset := MessageTopOffset + float64(i)*MessageSpacing
		pts = append(pts,
			Point{ID: slotID(i, West), FracX: 0.5, Direction: West, FixedY: offset, HasFixedY: true},
			Point{ID: slotID(i, East), FracX: 0.5, Direction: East, FixedY: offset, HasFixedY: true},
		)
	}
	return pts
}

func slotID(i int, d Direction) string {
	side := "e"
	if d == West {
		side = "w"
	}
	return fmt.Sprintf("slot-%s-%d", side, i)
}

// SlotID returns the lifeline anchor id for message index i on the given
// side. Dialect importers use it to pin sequence message endpoints.
func SlotID(i int, d Direction) string {
	return slotID(i, d)
}

// PointsFor returns the ordered anchor set for a shape type. The order is
// deterministic; direction lookups resolve to the first match.
func PointsFor(t diagram.ShapeType) []Point {
	switch t {
	case diagram.ShapeEntity, diagram.ShapeClass, diagram.ShapeFlowNode,
		diagram.ShapeComponent, diagram.ShapeSuggestion, diagram.ShapePreview:
		return boxPoints
	case diagram.ShapeLifeline:
		return lifelinePoints
	default:
		return boxPoints
	}
}

// ByID returns the anchor with the given id for the shape type, and
// whether it exists.
func ByID(t diagram.ShapeType, id string) (Point, bool) {
	for _, p := range PointsFor(t) {
		if p.ID == id {
			return p, true
		}
	}
	return Point{}, false
}

// ByDirection returns the first anchor facing the given direction for the
// shape type, and whether one exists.
func ByDirection(t diagram.ShapeType, d Direction) (Point, bool) {
	for _, p := range PointsFor(t) {
		if p.Direction == d {
			return p, true
		}
	}
	return Point{}, false
}

// Resolve converts an anchor and shape bounds to absolute canvas
// coordinates. X always comes from the fractional term; Y comes from the
// fixed offset when present, else from the fractional term.
func Resolve(p Point, b diagram.Bounds) diagram.Point {
	x := b.X + p.FracX*b.Width
	y := b.Y + p.FracY*b.Height
	if p.HasFixedY {
		y = b.Y + p.FixedY
	}
	return diagram.Point{X: x, Y: y}
}

// ResolveOnShape resolves the named anchor on a shape. When the id is
// unknown for the shape's type, it falls back to the shape's center so a
// stale point id degrades visibly instead of failing.
func ResolveOnShape(s *diagram.Shape, pointID string) diagram.Point {
	if p, ok := ByID(s.Type, pointID); ok {
		return Resolve(p, s.Bounds())
	}
	return s.Bounds().Center()
}
