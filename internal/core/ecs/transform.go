package ecs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/core/spatial"
)

// Transform places an entity in world space.
type Transform struct {
	Position mgl64.Vec2
	Scale    mgl64.Vec2
	Rotation float64 // radians; ignored by collision, boxes stay axis-aligned
	Layer    int
}

// NewTransform returns a unit-scale transform at pos.
func NewTransform(pos mgl64.Vec2) *Transform {
	return &Transform{Position: pos, Scale: mgl64.Vec2{1, 1}}
}

// BBox is an axis-aligned collision extent. Pivot offsets the box center
// from the transform position, in unscaled units.
type BBox struct {
	Size  mgl64.Vec2
	Pivot mgl64.Vec2
}

// WorldAABB computes e's world-space box: center = position + pivot∘scale,
// half extent = size∘|scale|/2. Entities without a BBox are a point at their
// position; entities without a Transform are a point at the origin.
func WorldAABB(e *Entity) spatial.AABB {
	tr, ok := Lookup[Transform](e)
	if !ok {
		return spatial.PointBox(mgl64.Vec2{})
	}
	box, ok := Lookup[BBox](e)
	if !ok {
		return spatial.PointBox(tr.Position)
	}
	scale := mgl64.Vec2{math.Abs(tr.Scale.X()), math.Abs(tr.Scale.Y())}
	center := tr.Position.Add(mulElem(box.Pivot, tr.Scale))
	half := mulElem(box.Size, scale).Mul(0.5)
	return spatial.BoxAround(center, half)
}

func mulElem(a, b mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{a.X() * b.X(), a.Y() * b.Y()}
}
