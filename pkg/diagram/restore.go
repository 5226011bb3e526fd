package diagram

import "sort"

// RestoreShapes reinserts shapes removed from d at their prior z-order
// positions; at[i] is the index shapes[i] is restored to. Pairs are
// applied in ascending index order, so a batch removed from one slice
// comes back in the original order.
func RestoreShapes(d *Diagram, shapes []*Shape, at []int) {
	for _, i := range restoreOrder(at) {
		d.InsertShapeAt(shapes[i], at[i])
	}
}

// RestoreConnectors is the connector counterpart of RestoreShapes.
func RestoreConnectors(d *Diagram, conns []*Connector, at []int) {
	for _, i := range restoreOrder(at) {
		d.InsertConnectorAt(conns[i], at[i])
	}
}

func restoreOrder(at []int) []int {
	order := make([]int, len(at))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return at[order[a]] < at[order[b]] })
	return order
}
