package system

import (
	"time"

	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	coresys "github.com/l1jgo/sim2d/internal/core/system"
	"go.uber.org/zap"
)

// LifetimeSystem counts down Lifetime components and destroys expired
// entities. Destruction is deferred, so an expiring entity still takes part
// in the rest of the frame. Phase 2 (Update).
type LifetimeSystem struct {
	mgr *ecs.Manager
	log *zap.Logger
}

func NewLifetimeSystem(mgr *ecs.Manager, log *zap.Logger) *LifetimeSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &LifetimeSystem{mgr: mgr, log: log}
}

func (s *LifetimeSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *LifetimeSystem) Update(dt time.Duration) {
	ecs.Each[component.Lifetime](s.mgr, func(e *ecs.Entity, lt *component.Lifetime) {
		if !e.IsActive() {
			return
		}
		lt.Remaining -= dt
		if lt.Remaining <= 0 {
			s.log.Debug("lifetime expired", zap.Uint64("entity", uint64(e.ID())))
			e.Destroy()
		}
	})
}
