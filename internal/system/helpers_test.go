package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/core/spatial"
)

func spatialPoint(x, y float64) spatial.AABB {
	return spatial.PointBox(mgl64.Vec2{x, y})
}
