package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/l1jgo/sim2d/internal/core/event"
	"github.com/l1jgo/sim2d/internal/core/physics"
	"github.com/l1jgo/sim2d/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doorScript = `
function door_on_collision(ctx)
  local out = {}
  if ctx.other.tags.key then
    table.insert(out, {op = "destroy"})
    table.insert(out, {op = "remove_tag", target = "other", tag = "key"})
  end
  table.insert(out, {op = "add_tag", tag = "touched", volume = ctx.overlap.x})
  return out
end

function broken_on_trigger(ctx)
  error("boom")
end
`

func newEngine(t *testing.T, files map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}
	e, err := NewEngine(dir, nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestNewEngineMissingDir(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)
	defer e.Close()
	assert.False(t, e.HasHandlers("coin"))
}

func TestNewEngineBadScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644))
	_, err := NewEngine(dir, nil)
	assert.Error(t, err)
}

func TestOnContactParsesCommands(t *testing.T) {
	e := newEngine(t, map[string]string{"door.lua": doorScript})
	assert.True(t, e.HasHandlers("door"))

	cmds := e.OnContact("door", KindCollision, ContactContext{
		Self:     EntityView{ID: 1, Tags: []string{"door"}},
		Other:    EntityView{ID: 2, Tags: []string{"player", "key"}},
		OverlapX: 3,
	})
	require.Len(t, cmds, 3)
	assert.Equal(t, Command{Op: "destroy"}, cmds[0])
	assert.Equal(t, Command{Op: "remove_tag", Target: "other", Tag: "key"}, cmds[1])
	assert.Equal(t, Command{Op: "add_tag", Tag: "touched", Volume: 3}, cmds[2])

	assert.Nil(t, e.OnContact("door", KindTrigger, ContactContext{}), "no handler")
	assert.Nil(t, e.OnContact("broken", KindTrigger, ContactContext{}), "lua error")
}

func TestApply(t *testing.T) {
	e := newEngine(t, nil)
	audio := &service.RecordingAudio{}
	e.SetAudio(audio)

	m := ecs.NewManager()
	m.RegisterPrefab("spark", ecs.PrefabFunc(func(ent *ecs.Entity, at ecs.Spawn) error {
		ecs.Add(ent, ecs.NewTransform(at.Position))
		ent.RequestAddTag("fx")
		return nil
	}))
	self := m.AddEntity("coin")
	ecs.Add(self, ecs.NewTransform(mgl64.Vec2{32, 16}))
	other := m.AddEntity("player")
	body := ecs.Add(other, &component.Body{})
	ecs.Add(other, &component.Jumper{Impulse: 100})
	m.Update()

	n := e.Apply(m, self, other, []Command{
		{Op: "play", Name: "coin"},
		{Op: "spawn", Prefab: "spark"},
		{Op: "add_tag", Target: "other", Tag: "scored"},
		{Op: "push", Target: "other", Event: "jump", Strength: 0.5},
		{Op: "destroy"},
		{Op: "teleport"},
		{Op: "spawn", Prefab: "ghost"},
		{Op: "add_tag"},
	})
	assert.Equal(t, 5, n)

	assert.Equal(t, []service.Sound{{Name: "coin", Volume: 1}}, audio.Played())
	assert.True(t, other.HasTag("scored"))
	assert.Equal(t, -50.0, body.Velocity.Y())
	assert.False(t, self.IsActive())
	assert.Equal(t, 1, m.PendingCount())

	m.Update()
	require.Len(t, m.ByTag("fx"), 1)
	assert.Equal(t, mgl64.Vec2{32, 16}, ecs.MustGet[ecs.Transform](m.ByTag("fx")[0]).Position)
	assert.Equal(t, []*ecs.Entity{other}, m.ByTag("scored"))
	assert.Empty(t, m.ByTag("coin"))
}

func TestScriptComponentRunsOnContact(t *testing.T) {
	e := newEngine(t, map[string]string{"door.lua": doorScript})
	m := ecs.NewManager()

	door := m.AddEntity("door")
	require.NoError(t, e.Bind(door, "door"))
	assert.Error(t, e.Bind(door, "window"))
	player := m.AddEntity("player", "key")
	m.Update()

	c := physics.Contact{A: door, B: player, Overlap: mgl64.Vec2{2, 8}, Type: physics.StaticDynamic}
	event.Push(door.Events(), physics.CollisionEnter, c)

	assert.False(t, door.IsActive())
	assert.True(t, door.HasTag("touched"))
	assert.False(t, player.HasTag("key"))

	ecs.Remove[Script](door)
	assert.Zero(t, event.Push(door.Events(), physics.CollisionEnter, c))
}

func TestShippedScriptsLoad(t *testing.T) {
	e, err := NewEngine(filepath.Join("..", "..", "scripts"), nil)
	require.NoError(t, err)
	defer e.Close()

	assert.True(t, e.HasHandlers("coin"))
	assert.True(t, e.HasHandlers("spike"))

	cmds := e.OnContact("coin", KindTrigger, ContactContext{
		Other: EntityView{Tags: []string{"player"}},
	})
	ops := make([]string, 0, len(cmds))
	for _, c := range cmds {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{"play", "spawn", "add_tag", "destroy"}, ops)

	assert.Empty(t, e.OnContact("coin", KindTrigger, ContactContext{Other: EntityView{Tags: []string{"crate"}}}))
}
