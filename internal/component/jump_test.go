package component

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/l1jgo/sim2d/internal/core/event"
	"github.com/stretchr/testify/assert"
)

func TestJumperKicksBody(t *testing.T) {
	m := ecs.NewManager()
	e := m.AddEntity("player")
	body := ecs.Add(e, &Body{Velocity: mgl64.Vec2{3, 10}})
	ecs.Add(e, &Jumper{Impulse: 200})
	m.Update()

	assert.Equal(t, []*ecs.Entity{e}, m.ByTag("can-jump"))

	assert.Equal(t, 1, event.Push(e.Events(), Jump, JumpRequest{}))
	assert.Equal(t, mgl64.Vec2{3, -200}, body.Velocity)

	event.Push(e.Events(), Jump, JumpRequest{Strength: 0.5})
	assert.Equal(t, mgl64.Vec2{3, -100}, body.Velocity)
}

func TestJumperDisabledOrRemoved(t *testing.T) {
	m := ecs.NewManager()
	e := m.AddEntity()
	body := ecs.Add(e, &Body{})
	j := ecs.Add(e, &Jumper{Impulse: 200})
	m.Update()

	j.SetEnabled(false)
	event.Push(e.Events(), Jump, JumpRequest{})
	assert.Zero(t, body.Velocity.Y())

	ecs.Remove[Jumper](e)
	assert.Zero(t, event.Push(e.Events(), Jump, JumpRequest{}))
	assert.Empty(t, m.ByTag("can-jump"))
	assert.False(t, e.HasTag("can-jump"))
}

func TestJumpWithoutListenerIsNoop(t *testing.T) {
	m := ecs.NewManager()
	e := m.AddEntity("crate")
	ecs.Add(e, ecs.NewTransform(mgl64.Vec2{5, 5}))
	m.Update()

	assert.NotPanics(t, func() {
		assert.Zero(t, event.Push(e.Events(), Jump, JumpRequest{}))
	})
	assert.Equal(t, []string{"crate"}, e.Tags())
	assert.Equal(t, mgl64.Vec2{5, 5}, ecs.MustGet[ecs.Transform](e).Position)
}
