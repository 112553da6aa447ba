package scripting

import (
	"fmt"

	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/l1jgo/sim2d/internal/core/event"
	"github.com/l1jgo/sim2d/internal/core/physics"
)

// Script binds an entity's contact events to Lua handlers named
// <Name>_on_collision and <Name>_on_trigger.
type Script struct {
	ecs.Base

	Name string

	engine *Engine
	subs   []event.Subscription
}

// Bind attaches a Script for name to ent. It fails when the engine has no
// handler for name, which usually means a typo in the prefab table.
func (e *Engine) Bind(ent *ecs.Entity, name string) error {
	if !e.HasHandlers(name) {
		return fmt.Errorf("script %q: no %s or %s handler", name,
			handlerName(name, KindCollision), handlerName(name, KindTrigger))
	}
	ecs.Add(ent, &Script{Name: name, engine: e})
	return nil
}

func (s *Script) OnAdd(ent *ecs.Entity) {
	s.subs = append(s.subs,
		event.Listen(ent.Events(), physics.CollisionEnter, func(c physics.Contact) { s.run(KindCollision, c) }),
		event.Listen(ent.Events(), physics.TriggerEnter, func(c physics.Contact) { s.run(KindTrigger, c) }),
	)
}

func (s *Script) OnRemove(ent *ecs.Entity) {
	for _, sub := range s.subs {
		ent.Events().Remove(sub)
	}
	s.subs = nil
}

func (s *Script) run(kind string, c physics.Contact) {
	if !s.Enabled() || s.engine == nil {
		return
	}
	ctx := ContactContext{
		Self:     View(c.A),
		Other:    View(c.B),
		OverlapX: c.Overlap.X(),
		OverlapY: c.Overlap.Y(),
		NormalX:  c.Normal.X(),
		NormalY:  c.Normal.Y(),
	}
	cmds := s.engine.OnContact(s.Name, kind, ctx)
	if len(cmds) > 0 {
		s.engine.Apply(c.A.Manager(), c.A, c.B, cmds)
	}
}
