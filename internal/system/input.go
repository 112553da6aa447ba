package system

import (
	"time"

	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/l1jgo/sim2d/internal/core/event"
	coresys "github.com/l1jgo/sim2d/internal/core/system"
	"github.com/l1jgo/sim2d/internal/service"
)

// Logical input names read by InputSystem.
const (
	AxisHorizontal = "horizontal"
	ActionJump     = "jump"
)

// InputSystem copies controller state into player-controlled bodies.
// Horizontal velocity follows the axis directly; a jump press is pushed as a
// Jump event once per press, whoever listens decides what it does.
// Phase 1 (Input).
type InputSystem struct {
	mgr      *ecs.Manager
	input    service.Input
	speed    float64
	jumpHeld bool
}

func NewInputSystem(mgr *ecs.Manager, input service.Input, speed float64) *InputSystem {
	return &InputSystem{mgr: mgr, input: input, speed: speed}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	axis := s.input.Axis(AxisHorizontal)
	jump := s.input.Action(ActionJump)
	pressed := jump && !s.jumpHeld
	s.jumpHeld = jump

	ecs.Each[component.Body](s.mgr, func(e *ecs.Entity, body *component.Body) {
		if !body.PlayerControlled || !body.Enabled() || !e.IsActive() {
			return
		}
		body.Velocity[0] = axis * s.speed
		if pressed {
			event.Push(e.Events(), component.Jump, component.JumpRequest{Strength: 1})
		}
	})
}
