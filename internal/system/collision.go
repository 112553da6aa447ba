package system

import (
	"time"

	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/l1jgo/sim2d/internal/core/event"
	"github.com/l1jgo/sim2d/internal/core/physics"
	coresys "github.com/l1jgo/sim2d/internal/core/system"
)

// CollisionSystem runs broad phase through the spatial grid, narrow phase
// through physics.Data, applies physics.Resolve and notifies both sides.
// Each unordered pair is visited once per frame, from its lower id. Pairs in
// which neither side has a dynamic body are skipped unless one is a trigger.
// Phase 3 (Physics).
type CollisionSystem struct {
	mgr *ecs.Manager

	contacts int // touching pairs seen last frame
}

func NewCollisionSystem(mgr *ecs.Manager) *CollisionSystem {
	return &CollisionSystem{mgr: mgr}
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

// Contacts returns the number of touching pairs found in the last Update.
func (s *CollisionSystem) Contacts() int { return s.contacts }

func (s *CollisionSystem) Update(_ time.Duration) {
	s.contacts = 0
	ecs.Each[ecs.BBox](s.mgr, func(a *ecs.Entity, _ *ecs.BBox) {
		if !participates(a) {
			return
		}
		for _, b := range s.mgr.PotentialCollisions(a) {
			if b.ID() < a.ID() || !b.IsCommitted() || !ecs.Has[ecs.BBox](b) {
				continue
			}
			// a handler from an earlier pair may have destroyed either side
			if !participates(a) || !participates(b) {
				continue
			}
			s.handle(physics.Data(a, b))
		}
	})
}

func (s *CollisionSystem) handle(c physics.Contact) {
	if !c.Touching() {
		return
	}
	if c.Type == physics.StaticStatic && !c.Trigger {
		return
	}
	s.contacts++

	if physics.Resolve(c) {
		s.mgr.UpdateSpatial(c.A)
		s.mgr.UpdateSpatial(c.B)
	}

	switch {
	case c.Trigger && c.TriggerEvent:
		event.Push(c.A.Events(), physics.TriggerEnter, c)
		event.Push(c.B.Events(), physics.TriggerEnter, c.Flip())
	case !c.Trigger:
		event.Push(c.A.Events(), physics.CollisionEnter, c)
		event.Push(c.B.Events(), physics.CollisionEnter, c.Flip())
	}
}

func participates(e *ecs.Entity) bool {
	if !e.IsActive() {
		return false
	}
	body, ok := ecs.Lookup[component.Body](e)
	return !ok || body.Enabled()
}
