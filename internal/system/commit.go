package system

import (
	"time"

	"github.com/l1jgo/sim2d/internal/core/ecs"
	coresys "github.com/l1jgo/sim2d/internal/core/system"
)

// CommitSystem runs the manager barrier at the top of every frame: queued
// entities go live, destroyed ones are purged, the world queue is delivered.
// Phase 0 (Commit).
type CommitSystem struct {
	mgr *ecs.Manager
}

func NewCommitSystem(mgr *ecs.Manager) *CommitSystem {
	return &CommitSystem{mgr: mgr}
}

func (s *CommitSystem) Phase() coresys.Phase { return coresys.PhaseCommit }

func (s *CommitSystem) Update(_ time.Duration) {
	s.mgr.Update()
}
