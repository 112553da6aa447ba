package system

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/l1jgo/sim2d/internal/core/event"
	"github.com/l1jgo/sim2d/internal/core/physics"
	coresys "github.com/l1jgo/sim2d/internal/core/system"
	"github.com/l1jgo/sim2d/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

func runner(systems ...coresys.System) *coresys.Runner {
	r := coresys.NewRunner()
	for _, s := range systems {
		r.Register(s)
	}
	return r
}

func spawnBox(m *ecs.Manager, pos, size mgl64.Vec2, body *component.Body, tags ...string) *ecs.Entity {
	e := m.AddEntity(tags...)
	ecs.Add(e, ecs.NewTransform(pos))
	ecs.Add(e, &ecs.BBox{Size: size})
	if body != nil {
		ecs.Add(e, body)
	}
	m.UpdateSpatial(e)
	return e
}

func TestFallingBoxSettlesOnFloor(t *testing.T) {
	m := ecs.NewManager()
	player := spawnBox(m, mgl64.Vec2{0, 0}, mgl64.Vec2{64, 64}, &component.Body{})
	floor := spawnBox(m, mgl64.Vec2{0, 100}, mgl64.Vec2{64, 64}, &component.Body{Static: true})

	r := runner(
		NewCommitSystem(m),
		NewMovementSystem(m, mgl64.Vec2{0, 960}),
		NewCollisionSystem(m),
	)
	for range 120 {
		r.Tick(frame)
	}

	tr := ecs.MustGet[ecs.Transform](player)
	assert.InDelta(t, 36, tr.Position.Y(), 1e-9)
	assert.Zero(t, tr.Position.X())
	assert.Zero(t, ecs.MustGet[component.Body](player).Velocity.Y())
	assert.Equal(t, mgl64.Vec2{0, 100}, ecs.MustGet[ecs.Transform](floor).Position)
	assert.Contains(t, m.PotentialCollisions(player), floor)
}

func TestMovementSkipsStaticAndDisabled(t *testing.T) {
	m := ecs.NewManager()
	wall := spawnBox(m, mgl64.Vec2{}, mgl64.Vec2{8, 8}, &component.Body{Static: true, Velocity: mgl64.Vec2{1, 1}})
	frozen := spawnBox(m, mgl64.Vec2{}, mgl64.Vec2{8, 8}, &component.Body{Velocity: mgl64.Vec2{60, 0}})
	ecs.MustGet[component.Body](frozen).SetEnabled(false)
	floater := spawnBox(m, mgl64.Vec2{}, mgl64.Vec2{8, 8}, &component.Body{IgnoreGravity: true, Velocity: mgl64.Vec2{60, 0}})

	r := runner(NewCommitSystem(m), NewMovementSystem(m, mgl64.Vec2{0, 100}))
	r.Tick(time.Second)

	assert.Equal(t, mgl64.Vec2{}, ecs.MustGet[ecs.Transform](wall).Position)
	assert.Equal(t, mgl64.Vec2{}, ecs.MustGet[ecs.Transform](frozen).Position)
	assert.Equal(t, mgl64.Vec2{60, 0}, ecs.MustGet[ecs.Transform](floater).Position)
	assert.Equal(t, []uint64{uint64(floater.ID())}, m.Grid().Query(spatialPoint(60, 0)))
}

func TestCollisionNotifiesBothSides(t *testing.T) {
	m := ecs.NewManager()
	player := spawnBox(m, mgl64.Vec2{0, 0}, mgl64.Vec2{10, 10}, &component.Body{IgnoreGravity: true})
	wall := spawnBox(m, mgl64.Vec2{8, 0}, mgl64.Vec2{10, 10}, &component.Body{Static: true})

	var seen []physics.Contact
	record := func(c physics.Contact) { seen = append(seen, c) }
	event.Listen(player.Events(), physics.CollisionEnter, record)
	event.Listen(wall.Events(), physics.CollisionEnter, record)

	cs := NewCollisionSystem(m)
	runner(NewCommitSystem(m), cs).Tick(frame)

	require.Len(t, seen, 2)
	assert.Same(t, player, seen[0].A)
	assert.Equal(t, mgl64.Vec2{1, 0}, seen[0].Normal)
	assert.Same(t, wall, seen[1].A)
	assert.Equal(t, mgl64.Vec2{-1, 0}, seen[1].Normal)
	assert.Equal(t, 1, cs.Contacts())
	assert.Equal(t, mgl64.Vec2{-2, 0}, ecs.MustGet[ecs.Transform](player).Position)
}

func TestTriggerEventsAndDestroyFromHandler(t *testing.T) {
	m := ecs.NewManager()
	player := spawnBox(m, mgl64.Vec2{0, 0}, mgl64.Vec2{10, 10}, &component.Body{IgnoreGravity: true}, "player")
	coin := spawnBox(m, mgl64.Vec2{4, 0}, mgl64.Vec2{10, 10},
		&component.Body{Static: true, Trigger: true, TriggerEvents: true}, "coin")
	silent := spawnBox(m, mgl64.Vec2{-6, 0}, mgl64.Vec2{10, 10}, &component.Body{Static: true, Trigger: true})

	playerHits := 0
	event.Listen(player.Events(), physics.TriggerEnter, func(physics.Contact) { playerHits++ })
	event.Listen(coin.Events(), physics.TriggerEnter, func(c physics.Contact) {
		if c.B.HasTag("player") {
			c.A.Destroy()
		}
	})
	event.Listen(silent.Events(), physics.TriggerEnter, func(physics.Contact) { t.Fatal("silent trigger notified") })

	r := runner(NewCommitSystem(m), NewCollisionSystem(m))
	r.Tick(frame)

	assert.Equal(t, 1, playerHits)
	assert.False(t, coin.IsActive())
	assert.Equal(t, mgl64.Vec2{}, ecs.MustGet[ecs.Transform](player).Position)

	r.Tick(frame)
	assert.True(t, coin.IsPurged())
	assert.Empty(t, m.ByTag("coin"))
	assert.Equal(t, 1, playerHits)
}

func TestLifetimeExpires(t *testing.T) {
	m := ecs.NewManager()
	e := m.AddEntity("spark")
	ecs.Add(e, &component.Lifetime{Remaining: 50 * time.Millisecond})

	r := runner(NewCommitSystem(m), NewLifetimeSystem(m, nil))
	step := 20 * time.Millisecond
	r.Tick(step)
	r.Tick(step)
	assert.True(t, e.IsActive())

	r.Tick(step)
	assert.False(t, e.IsActive())
	assert.Len(t, m.ByTag("spark"), 1)

	r.Tick(step)
	assert.True(t, e.IsPurged())
	assert.Empty(t, m.ByTag("spark"))
}

func TestHierarchyFollowsAndOrphans(t *testing.T) {
	m := ecs.NewManager()
	parent := spawnBox(m, mgl64.Vec2{10, 10}, mgl64.Vec2{4, 4}, nil)
	child := spawnBox(m, mgl64.Vec2{}, mgl64.Vec2{4, 4}, nil)
	grandchild := spawnBox(m, mgl64.Vec2{}, mgl64.Vec2{4, 4}, nil)
	keeper := spawnBox(m, mgl64.Vec2{}, mgl64.Vec2{4, 4}, nil)

	component.Attach(parent, child, mgl64.Vec2{0, -5}, true)
	component.Attach(child, grandchild, mgl64.Vec2{2, 0}, true)
	component.Attach(parent, keeper, mgl64.Vec2{3, 3}, false)

	r := runner(NewCommitSystem(m), NewHierarchySystem(m, nil))
	r.Tick(frame)

	assert.Equal(t, mgl64.Vec2{10, 5}, ecs.MustGet[ecs.Transform](child).Position)
	assert.Equal(t, mgl64.Vec2{12, 5}, ecs.MustGet[ecs.Transform](grandchild).Position)
	assert.Equal(t, mgl64.Vec2{13, 13}, ecs.MustGet[ecs.Transform](keeper).Position)

	parent.Destroy()
	r.Tick(frame) // parent purged, children notice
	assert.True(t, parent.IsPurged())
	assert.False(t, child.IsActive())
	assert.True(t, keeper.IsActive())
	_, ok := component.Parent(keeper)
	assert.False(t, ok)
	assert.Equal(t, mgl64.Vec2{13, 13}, ecs.MustGet[ecs.Transform](keeper).Position)

	r.Tick(frame) // child purged, grandchild orphaned
	r.Tick(frame)
	assert.True(t, child.IsPurged())
	assert.True(t, grandchild.IsPurged())
}

func TestInputDrivesPlayerBodies(t *testing.T) {
	m := ecs.NewManager()
	player := m.AddEntity()
	body := ecs.Add(player, &component.Body{PlayerControlled: true})
	ecs.Add(player, &component.Jumper{Impulse: 300})
	npc := m.AddEntity()
	npcBody := ecs.Add(npc, &component.Body{})

	in := service.NewStaticInput()
	r := runner(NewCommitSystem(m), NewInputSystem(m, in, 120))

	in.SetAxis(AxisHorizontal, -0.5)
	in.SetAction(ActionJump, true)
	r.Tick(frame)
	assert.Equal(t, mgl64.Vec2{-60, -300}, body.Velocity)
	assert.Equal(t, mgl64.Vec2{}, npcBody.Velocity)

	// held, not re-pressed
	body.Velocity[1] = 0
	r.Tick(frame)
	assert.Zero(t, body.Velocity.Y())

	in.SetAction(ActionJump, false)
	r.Tick(frame)
	in.SetAction(ActionJump, true)
	r.Tick(frame)
	assert.Equal(t, -300.0, body.Velocity.Y())
}

type fakeDrawer struct {
	frames int
	err    error
}

func (d *fakeDrawer) Draw(*ecs.Manager) error {
	d.frames++
	return d.err
}

func TestRenderSystemSurvivesDrawErrors(t *testing.T) {
	m := ecs.NewManager()
	d := &fakeDrawer{err: errors.New("screen gone")}
	r := runner(NewRenderSystem(m, d, nil))

	assert.NotPanics(t, func() {
		r.Tick(frame)
		r.TickPhase(coresys.PhaseRender, 0)
	})
	assert.Equal(t, 2, d.frames)
}
