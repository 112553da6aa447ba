package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/l1jgo/sim2d/internal/core/event"
	"github.com/l1jgo/sim2d/internal/core/spatial"
)

// CollisionType classifies a pair by each side's static flag, A first.
type CollisionType uint8

const (
	StaticStatic CollisionType = iota
	StaticDynamic
	DynamicStatic
	DynamicDynamic
)

func (t CollisionType) String() string {
	switch t {
	case StaticStatic:
		return "static-static"
	case StaticDynamic:
		return "static-dynamic"
	case DynamicStatic:
		return "dynamic-static"
	case DynamicDynamic:
		return "dynamic-dynamic"
	}
	return "unknown"
}

// Contact describes one overlapping pair from A's point of view.
type Contact struct {
	A, B         *ecs.Entity
	Overlap      mgl64.Vec2 // per-axis penetration depth, never negative
	Normal       mgl64.Vec2 // unit separating axis pointing from A towards B
	Type         CollisionType
	Trigger      bool // either side is a trigger; no positional correction
	TriggerEvent bool // trigger contact where a side asked for notifications
}

// Touching reports whether the boxes overlap on both axes.
func (c Contact) Touching() bool {
	return c.Overlap.X() > 0 && c.Overlap.Y() > 0
}

// Flip returns the same contact seen from B.
func (c Contact) Flip() Contact {
	f := c
	f.A, f.B = c.B, c.A
	f.Normal = c.Normal.Mul(-1)
	switch c.Type {
	case StaticDynamic:
		f.Type = DynamicStatic
	case DynamicStatic:
		f.Type = StaticDynamic
	}
	return f
}

// Channels pushed to both participants by the collision system. The
// receiving entity is always Contact.A.
var (
	CollisionEnter = event.NewKey[Contact]("CollisionEnter")
	TriggerEnter   = event.NewKey[Contact]("TriggerEnter")
)

// Overlap returns the per-axis penetration of two boxes: the sum of half
// extents minus the center distance. It is zero unless both axes overlap.
func Overlap(a, b spatial.AABB) mgl64.Vec2 {
	ca, ha := centerHalf(a)
	cb, hb := centerHalf(b)
	ox := ha.X() + hb.X() - math.Abs(ca.X()-cb.X())
	oy := ha.Y() + hb.Y() - math.Abs(ca.Y()-cb.Y())
	if ox <= 0 || oy <= 0 {
		return mgl64.Vec2{}
	}
	return mgl64.Vec2{ox, oy}
}

func centerHalf(b spatial.AABB) (center, half mgl64.Vec2) {
	return b.Min.Add(b.Max).Mul(0.5), b.Max.Sub(b.Min).Mul(0.5)
}

// BBoxCollision is the narrow-phase test on two entities' scaled,
// pivot-adjusted boxes. It is symmetric in its arguments.
func BBoxCollision(a, b *ecs.Entity) mgl64.Vec2 {
	return Overlap(ecs.WorldAABB(a), ecs.WorldAABB(b))
}

// Data classifies the pair (a, b). Entities without a Body count as static.
func Data(a, b *ecs.Entity) Contact {
	boxA, boxB := ecs.WorldAABB(a), ecs.WorldAABB(b)
	c := Contact{A: a, B: b, Overlap: Overlap(boxA, boxB)}

	bodyA, _ := ecs.Lookup[component.Body](a)
	bodyB, _ := ecs.Lookup[component.Body](b)
	dynA := bodyA != nil && !bodyA.Static
	dynB := bodyB != nil && !bodyB.Static
	switch {
	case dynA && dynB:
		c.Type = DynamicDynamic
	case dynA:
		c.Type = DynamicStatic
	case dynB:
		c.Type = StaticDynamic
	default:
		c.Type = StaticStatic
	}

	c.Trigger = (bodyA != nil && bodyA.Trigger) || (bodyB != nil && bodyB.Trigger)
	c.TriggerEvent = c.Trigger && ((bodyA != nil && bodyA.TriggerEvents) || (bodyB != nil && bodyB.TriggerEvents))

	if c.Touching() {
		ca, _ := centerHalf(boxA)
		cb, _ := centerHalf(boxB)
		axis := separatingAxis(c.Overlap)
		sign := 1.0
		if cb[axis] < ca[axis] {
			sign = -1
		}
		c.Normal[axis] = sign
	}
	return c
}

// separatingAxis picks the axis of least penetration; ties go to y so
// entities landing exactly on a corner settle on top.
func separatingAxis(overlap mgl64.Vec2) int {
	if overlap.X() < overlap.Y() {
		return 0
	}
	return 1
}
