package physics

import (
	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
)

// Resolve applies the positional correction policy to a contact and
// reports whether anything moved:
//
//   - only the separating axis (least penetration) is corrected
//   - triggers and static-static pairs never move
//   - a dynamic body against a static one takes the full overlap
//   - two dynamic bodies split the overlap evenly
//   - a moved body loses its velocity on the corrected axis only when that
//     velocity points into the other body; velocity pointing away is kept
//
// The same rule holds for player-controlled bodies. The caller refreshes
// the spatial grid for moved entities.
func Resolve(c Contact) bool {
	if !c.Touching() || c.Trigger || c.Type == StaticStatic {
		return false
	}
	axis := separatingAxis(c.Overlap)
	depth := c.Overlap[axis]
	dir := c.Normal[axis]

	var shareA, shareB float64
	switch c.Type {
	case DynamicStatic:
		shareA = 1
	case StaticDynamic:
		shareB = 1
	case DynamicDynamic:
		shareA, shareB = 0.5, 0.5
	}

	moved := false
	if shareA > 0 {
		moved = displace(c.A, axis, -dir*depth*shareA) || moved
	}
	if shareB > 0 {
		moved = displace(c.B, axis, dir*depth*shareB) || moved
	}
	return moved
}

func displace(e *ecs.Entity, axis int, delta float64) bool {
	tr, ok := ecs.Lookup[ecs.Transform](e)
	if !ok {
		return false
	}
	tr.Position[axis] += delta
	if body, ok := ecs.Lookup[component.Body](e); ok && body.Velocity[axis]*delta < 0 {
		body.Velocity[axis] = 0
	}
	return true
}
