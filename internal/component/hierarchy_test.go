package component

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachLinksBothSides(t *testing.T) {
	m := ecs.NewManager()
	parent := m.AddEntity()
	child := m.AddEntity()

	Attach(parent, child, mgl64.Vec2{0, -16}, true)

	got, ok := Parent(child)
	require.True(t, ok)
	assert.Same(t, parent, got)
	assert.Equal(t, []ecs.EntityID{child.ID()}, ecs.MustGet[Hierarchy](parent).Children)
	assert.Equal(t, mgl64.Vec2{0, -16}, ecs.MustGet[Hierarchy](child).Local)
	assert.True(t, ecs.MustGet[Hierarchy](child).DestroyWithParent)
}

func TestAttachMovesBetweenParents(t *testing.T) {
	m := ecs.NewManager()
	first, second := m.AddEntity(), m.AddEntity()
	child := m.AddEntity()

	Attach(first, child, mgl64.Vec2{}, false)
	Attach(second, child, mgl64.Vec2{1, 1}, false)

	assert.Empty(t, ecs.MustGet[Hierarchy](first).Children)
	assert.Equal(t, []ecs.EntityID{child.ID()}, ecs.MustGet[Hierarchy](second).Children)
	got, ok := Parent(child)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestDetach(t *testing.T) {
	m := ecs.NewManager()
	parent, child := m.AddEntity(), m.AddEntity()

	Detach(child) // no hierarchy yet
	Attach(parent, child, mgl64.Vec2{}, false)
	Detach(child)

	_, ok := Parent(child)
	assert.False(t, ok)
	assert.Empty(t, ecs.MustGet[Hierarchy](parent).Children)
}

func TestParentGoneStale(t *testing.T) {
	m := ecs.NewManager()
	parent, child := m.AddEntity(), m.AddEntity()
	Attach(parent, child, mgl64.Vec2{}, false)
	m.Update()

	parent.Destroy()
	m.Update()

	_, ok := Parent(child)
	assert.False(t, ok)
	assert.NotPanics(t, func() { Detach(child) })
	assert.True(t, ecs.MustGet[Hierarchy](child).Parent.IsZero())
}
