package system

import (
	"time"

	"github.com/l1jgo/sim2d/internal/core/ecs"
	coresys "github.com/l1jgo/sim2d/internal/core/system"
	"go.uber.org/zap"
)

// Drawer renders the live world. render.Viewer implements it.
type Drawer interface {
	Draw(m *ecs.Manager) error
}

// RenderSystem hands the settled frame to a Drawer. Draw failures are logged
// and the frame goes on. Phase 5 (Render).
type RenderSystem struct {
	mgr    *ecs.Manager
	drawer Drawer
	log    *zap.Logger
}

func NewRenderSystem(mgr *ecs.Manager, drawer Drawer, log *zap.Logger) *RenderSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &RenderSystem{mgr: mgr, drawer: drawer, log: log}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

func (s *RenderSystem) Update(_ time.Duration) {
	if err := s.drawer.Draw(s.mgr); err != nil {
		s.log.Warn("draw frame", zap.Error(err))
	}
}
