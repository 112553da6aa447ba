package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseCommit     Phase = iota // 0: manager barrier, commit + purge + world queue
	PhaseInput                   // 1: read controllers into bodies
	PhaseUpdate                  // 2: movement, lifetimes, game logic
	PhasePhysics                 // 3: broad + narrow phase, resolution, contact events
	PhasePostUpdate              // 4: hierarchy follow-up
	PhaseRender                  // 5: draw
)

func (p Phase) String() string {
	switch p {
	case PhaseCommit:
		return "commit"
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhasePhysics:
		return "physics"
	case PhasePostUpdate:
		return "post-update"
	case PhaseRender:
		return "render"
	}
	return "unknown"
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Func adapts a plain function to System.
type Func struct {
	P  Phase
	Fn func(dt time.Duration)
}

func (f Func) Phase() Phase            { return f.P }
func (f Func) Update(dt time.Duration) { f.Fn(dt) }
