package system

import (
	"time"

	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	coresys "github.com/l1jgo/sim2d/internal/core/system"
	"go.uber.org/zap"
)

// HierarchySystem places children at parent position + local offset, walking
// from roots down so chains settle in one frame. A child whose parent has been
// purged is detached, and destroyed if it asked to be. Phase 4 (PostUpdate).
type HierarchySystem struct {
	mgr *ecs.Manager
	log *zap.Logger
}

func NewHierarchySystem(mgr *ecs.Manager, log *zap.Logger) *HierarchySystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &HierarchySystem{mgr: mgr, log: log}
}

func (s *HierarchySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *HierarchySystem) Update(_ time.Duration) {
	ecs.Each[component.Hierarchy](s.mgr, func(e *ecs.Entity, h *component.Hierarchy) {
		if h.Parent.IsZero() {
			s.place(e, h, 0)
			return
		}
		if _, err := s.mgr.Lookup(h.Parent); err != nil {
			s.orphan(e, h)
		}
	})
}

// place positions e's children and recurses. depth guards against cycles
// built by hand.
func (s *HierarchySystem) place(parent *ecs.Entity, h *component.Hierarchy, depth int) {
	if depth > maxHierarchyDepth || len(h.Children) == 0 {
		return
	}
	ptr, ok := ecs.Lookup[ecs.Transform](parent)
	if !ok {
		return
	}
	for _, id := range append([]ecs.EntityID(nil), h.Children...) {
		child, err := s.mgr.Lookup(id)
		if err != nil {
			continue
		}
		ch, ok := ecs.Lookup[component.Hierarchy](child)
		if !ok || ch.Parent != parent.ID() {
			continue
		}
		if ctr, ok := ecs.Lookup[ecs.Transform](child); ok {
			ctr.Position = ptr.Position.Add(ch.Local)
			s.mgr.UpdateSpatial(child)
		}
		s.place(child, ch, depth+1)
	}
}

const maxHierarchyDepth = 64

func (s *HierarchySystem) orphan(e *ecs.Entity, h *component.Hierarchy) {
	destroy := h.DestroyWithParent
	component.Detach(e)
	if destroy {
		s.log.Debug("destroy with parent", zap.Uint64("entity", uint64(e.ID())))
		e.Destroy()
	}
}
