package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	coresys "github.com/l1jgo/sim2d/internal/core/system"
)

// MovementSystem integrates gravity into velocity and velocity into position
// for every enabled, non-static body, then refreshes the grid cells of the
// entities that moved. Phase 2 (Update).
type MovementSystem struct {
	mgr     *ecs.Manager
	gravity mgl64.Vec2
}

func NewMovementSystem(mgr *ecs.Manager, gravity mgl64.Vec2) *MovementSystem {
	return &MovementSystem{mgr: mgr, gravity: gravity}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	if sec <= 0 {
		return
	}
	ecs.Each2[ecs.Transform, component.Body](s.mgr, func(e *ecs.Entity, tr *ecs.Transform, body *component.Body) {
		if body.Static || !body.Enabled() || !e.IsActive() {
			return
		}
		if !body.IgnoreGravity {
			body.Velocity = body.Velocity.Add(s.gravity.Mul(sec))
		}
		step := body.Velocity.Mul(sec)
		if step.X() == 0 && step.Y() == 0 {
			return
		}
		tr.Position = tr.Position.Add(step)
		s.mgr.UpdateSpatial(e)
	})
}
