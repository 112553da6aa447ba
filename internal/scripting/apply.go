package scripting

import (
	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/l1jgo/sim2d/internal/core/event"
	"go.uber.org/zap"
)

// View snapshots e for a Lua handler.
func View(e *ecs.Entity) EntityView {
	v := EntityView{ID: uint64(e.ID()), Tags: e.Tags()}
	if tr, ok := ecs.Lookup[ecs.Transform](e); ok {
		v.X, v.Y = tr.Position.X(), tr.Position.Y()
	}
	return v
}

// Apply executes cmds in order on behalf of self, with other as the contact
// partner. Everything goes through the Manager, so destroy and spawn keep
// their deferred semantics. It returns how many commands took effect;
// unknown or malformed commands are logged and skipped.
func (e *Engine) Apply(m *ecs.Manager, self, other *ecs.Entity, cmds []Command) int {
	applied := 0
	for _, cmd := range cmds {
		target := self
		if cmd.Target == "other" {
			target = other
		}
		if target == nil || target.IsPurged() {
			continue
		}
		if e.apply(m, target, cmd) {
			applied++
		} else {
			e.log.Warn("lua command ignored",
				zap.String("op", cmd.Op),
				zap.Uint64("entity", uint64(self.ID())))
		}
	}
	return applied
}

func (e *Engine) apply(m *ecs.Manager, target *ecs.Entity, cmd Command) bool {
	switch cmd.Op {
	case "destroy":
		target.Destroy()
	case "add_tag":
		if cmd.Tag == "" {
			return false
		}
		m.AddTag(target, cmd.Tag)
	case "remove_tag":
		if cmd.Tag == "" {
			return false
		}
		m.RemoveTag(target, cmd.Tag)
	case "push":
		if cmd.Event != "jump" {
			return false
		}
		event.Push(target.Events(), component.Jump, component.JumpRequest{Strength: cmd.Strength})
	case "play":
		if cmd.Name == "" {
			return false
		}
		vol := cmd.Volume
		if vol <= 0 {
			vol = 1
		}
		e.audio.Play(cmd.Name, vol)
	case "spawn":
		at := ecs.Spawn{}
		if tr, ok := ecs.Lookup[ecs.Transform](target); ok {
			at.Position = tr.Position
		}
		if _, err := m.InstantiateNamed(cmd.Prefab, at); err != nil {
			e.log.Warn("lua spawn failed", zap.String("prefab", cmd.Prefab), zap.Error(err))
			return false
		}
	default:
		return false
	}
	return true
}
