package component

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/core/ecs"
)

// Body marks an entity as a collision participant.
// Pure data; collision and movement systems own all mutation.
type Body struct {
	ecs.Base

	Velocity mgl64.Vec2 // world units per second
	Static   bool       // never moved by resolution or gravity

	Trigger       bool // reports overlap, excluded from positional correction
	TriggerEvents bool // opts in to TriggerEnter notifications

	PlayerControlled bool // horizontal velocity is driven by the input system
	IgnoreGravity    bool
}

// Sprite is the render-facing view of an entity. Texture is an opaque handle
// from the asset registry; Glyph is what the terminal viewer draws.
type Sprite struct {
	ecs.Base

	Texture Handle
	Glyph   rune
	Layer   int
}

// Handle is an opaque asset reference. The core stores it and never interprets it.
type Handle uint32

// Lifetime destroys its entity once Remaining reaches zero.
type Lifetime struct {
	Remaining time.Duration
}

// Tile marks entities built from level tile codes.
type Tile struct {
	Code int
	Col  int
	Row  int
}
