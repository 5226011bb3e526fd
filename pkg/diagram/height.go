package diagram

// Layout constants for derived shape heights. Heights are always computed
// from content through ContentHeight, never stored independently, so a
// shape's rendered height cannot drift from its payload.
const (
	// HeaderHeight is the title band at the top of entity and class shapes.
	HeaderHeight = 40.0

	// RowHeight is the height of one attribute or method row.
	RowHeight = 25.0

	// EmptySectionHeight is the padding band each section reserves even
	// when it has no rows, so empty shapes remain visibly sectioned.
	EmptySectionHeight = 20.0

	// BorderBuffer is the bottom padding under the last section.
	BorderBuffer = 10.0

	// MinShapeHeight is the floor for entity and class shapes. It equals
	// the computed height of a shape with zero attributes and methods.
	MinShapeHeight = HeaderHeight + 2*EmptySectionHeight + BorderBuffer

	// DefaultNodeHeight is the fixed height of flow and component shapes.
	DefaultNodeHeight = 60.0

	// SuggestionHeight is the fixed height of a suggestion comment.
	SuggestionHeight = 80.0

	// LifelineHeadHeight is the participant box at the top of a lifeline.
	LifelineHeadHeight = 60.0

	// DefaultLifelineHeight is the lifeline height before any messages are
	// placed; sequence imports overwrite it from the activation calculator.
	DefaultLifelineHeight = 320.0

	// PreviewPadding surrounds the bounding box of a preview container's
	// members on every side.
	PreviewPadding = 16.0
)

// sectionHeight returns the vertical extent of one shape section: a
// reserved empty band plus one row per item.
func sectionHeight(rows int) float64 {
	return EmptySectionHeight + float64(rows)*RowHeight
}

// ContentHeight returns the derived height for the shape's current
// content. It is a pure function: callers recompute it after every
// content-changing command instead of caching the result.
func ContentHeight(s *Shape) float64 {
	switch s.Type {
	case ShapeEntity:
		h := HeaderHeight + sectionHeight(len(s.EntityData().Attributes)) + EmptySectionHeight + BorderBuffer
		return max(h, MinShapeHeight)
	case ShapeClass:
		p := s.ClassData()
		h := HeaderHeight + sectionHeight(len(p.Attributes)) + sectionHeight(len(p.Methods)) + BorderBuffer
		return max(h, MinShapeHeight)
	case ShapeLifeline:
		// Lifeline extent is owned by the activation calculator; keep
		// whatever height the sequence layout assigned.
		if s.Height > 0 {
			return s.Height
		}
		return DefaultLifelineHeight
	case ShapeFlowNode, ShapeComponent:
		return DefaultNodeHeight
	case ShapeSuggestion:
		return SuggestionHeight
	case ShapePreview:
		if s.Height > 0 {
			return s.Height
		}
		return DefaultNodeHeight
	default:
		return DefaultNodeHeight
	}
}

// PreviewBounds returns the bounding box of the given member shapes plus
// padding, for sizing a preview container.
func PreviewBounds(members []*Shape) Bounds {
	if len(members) == 0 {
		return Bounds{}
	}
	box := members[0].Bounds()
	for _, s := range members[1:] {
		box = box.Union(s.Bounds())
	}
	box.X -= PreviewPadding
	box.Y -= PreviewPadding
	box.Width += 2 * PreviewPadding
	box.Height += 2 * PreviewPadding
	return box
}
