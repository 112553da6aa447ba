package component

import (
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/l1jgo/sim2d/internal/core/event"
)

// JumpRequest is pushed by the input system when the jump action fires.
type JumpRequest struct {
	Strength float64 // 0..1 scale applied to the jumper's impulse
}

// Jump is the per-entity channel carrying jump requests.
var Jump = event.NewKey[JumpRequest]("Jump")

// Jumper turns Jump events into an upward velocity kick on the entity's Body.
// While attached the entity carries the "can-jump" tag.
type Jumper struct {
	ecs.Base

	Impulse float64 // world units per second, applied against +y

	sub event.Subscription
}

func (j *Jumper) OnAdd(e *ecs.Entity) {
	e.RequestAddTag("can-jump")
	j.sub = event.Listen(e.Events(), Jump, func(req JumpRequest) {
		if !j.Enabled() {
			return
		}
		body, ok := ecs.Lookup[Body](e)
		if !ok || body.Static {
			return
		}
		s := req.Strength
		if s <= 0 {
			s = 1
		}
		body.Velocity[1] = -j.Impulse * s
	})
}

func (j *Jumper) OnRemove(e *ecs.Entity) {
	e.Events().Remove(j.sub)
	e.RequestRemoveTag("can-jump")
}
