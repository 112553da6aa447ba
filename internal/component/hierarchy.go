package component

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/core/ecs"
)

// Hierarchy links an entity to a parent and children by id only. No side
// owns the other; lookups go through the Manager and may come back stale.
type Hierarchy struct {
	Parent            ecs.EntityID
	Children          []ecs.EntityID
	Local             mgl64.Vec2 // offset from the parent's position
	DestroyWithParent bool
}

func hierarchyOf(e *ecs.Entity) *Hierarchy {
	if h, ok := ecs.Lookup[Hierarchy](e); ok {
		return h
	}
	return ecs.Add(e, &Hierarchy{})
}

// Attach makes child follow parent at the given local offset, detaching it
// from any previous parent first.
func Attach(parent, child *ecs.Entity, local mgl64.Vec2, destroyWithParent bool) {
	Detach(child)
	ph := hierarchyOf(parent)
	ch := hierarchyOf(child)
	ch.Parent = parent.ID()
	ch.Local = local
	ch.DestroyWithParent = destroyWithParent
	ph.Children = append(ph.Children, child.ID())
}

// Detach clears child's parent link and removes it from the parent's children.
// A stale parent is tolerated.
func Detach(child *ecs.Entity) {
	ch, ok := ecs.Lookup[Hierarchy](child)
	if !ok || ch.Parent.IsZero() {
		return
	}
	if parent, err := child.Manager().Lookup(ch.Parent); err == nil {
		if ph, ok := ecs.Lookup[Hierarchy](parent); ok {
			ph.Children = slices.DeleteFunc(ph.Children, func(id ecs.EntityID) bool { return id == child.ID() })
		}
	}
	ch.Parent = 0
}

// Parent resolves child's parent. ok is false when there is none or it has been purged.
func Parent(child *ecs.Entity) (*ecs.Entity, bool) {
	ch, ok := ecs.Lookup[Hierarchy](child)
	if !ok || ch.Parent.IsZero() {
		return nil, false
	}
	parent, err := child.Manager().Lookup(ch.Parent)
	if err != nil {
		return nil, false
	}
	return parent, true
}
