package data

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"github.com/l1jgo/sim2d/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefabs = `
prefabs:
  - name: hero
    tags: [player]
    size: [10, 20]
    pivot: [0, 2]
    scale: [2, 1]
    layer: 3
    glyph: "@"
    sprite: hero.png
    jump: 300
    script: hero
    body:
      player_controlled: true
      velocity: [5, 0]
  - name: rock
    size: [16, 16]
  - name: puff
    lifetime: 1500ms
`

type recordingBinder struct {
	bound map[ecs.EntityID]string
	err   error
}

func (b *recordingBinder) Bind(e *ecs.Entity, script string) error {
	if b.err != nil {
		return b.err
	}
	if b.bound == nil {
		b.bound = make(map[ecs.EntityID]string)
	}
	b.bound[e.ID()] = script
	return nil
}

func TestParsePrefabTable(t *testing.T) {
	table, err := ParsePrefabTable([]byte(testPrefabs))
	require.NoError(t, err)

	assert.Equal(t, 3, table.Count())
	assert.Equal(t, []string{"hero", "puff", "rock"}, table.Names())
	assert.Nil(t, table.Get("missing"))

	hero := table.Get("hero")
	require.NotNil(t, hero)
	require.NotNil(t, hero.Body)
	assert.True(t, hero.Body.PlayerControlled)
	assert.Equal(t, [2]float64{10, 20}, hero.Size)
	assert.Nil(t, table.Get("rock").Body)
	assert.Equal(t, 1500*time.Millisecond, table.Get("puff").Lifetime)
}

func TestParsePrefabTableRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", "prefabs:\n  - size: [1, 1]\n"},
		{"duplicate", "prefabs:\n  - name: a\n  - name: a\n"},
		{"negative size", "prefabs:\n  - name: a\n    size: [-1, 2]\n"},
		{"not yaml", "prefabs: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrefabTable([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestPrefabBuildsComponents(t *testing.T) {
	table, err := ParsePrefabTable([]byte(testPrefabs))
	require.NoError(t, err)

	m := ecs.NewManager()
	assets := service.NewAssets()
	binder := &recordingBinder{}
	table.RegisterAll(m, assets, binder)
	assert.Equal(t, []string{"hero", "puff", "rock"}, m.Prefabs())

	e, err := m.InstantiateNamed("hero", ecs.Spawn{Position: mgl64.Vec2{40, 8}, Tags: []string{"spawned"}})
	require.NoError(t, err)
	m.Update()

	assert.ElementsMatch(t, []string{"player", "spawned", "can-jump"}, e.Tags())
	tr := ecs.MustGet[ecs.Transform](e)
	assert.Equal(t, mgl64.Vec2{40, 8}, tr.Position)
	assert.Equal(t, mgl64.Vec2{2, 1}, tr.Scale)
	assert.Equal(t, 3, tr.Layer)
	assert.Equal(t, mgl64.Vec2{0, 2}, ecs.MustGet[ecs.BBox](e).Pivot)

	body := ecs.MustGet[component.Body](e)
	assert.True(t, body.PlayerControlled)
	assert.Equal(t, mgl64.Vec2{5, 0}, body.Velocity)

	sp := ecs.MustGet[component.Sprite](e)
	assert.Equal(t, '@', sp.Glyph)
	h, err := assets.Lookup("hero.png")
	require.NoError(t, err)
	assert.Equal(t, h, sp.Texture)

	assert.Equal(t, 300.0, ecs.MustGet[component.Jumper](e).Impulse)
	assert.Equal(t, "hero", binder.bound[e.ID()])
	assert.Equal(t, []*ecs.Entity{e}, m.ByTag("player"))

	rock, err := m.InstantiateNamed("rock", ecs.Spawn{})
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec2{1, 1}, ecs.MustGet[ecs.Transform](rock).Scale)
	assert.False(t, ecs.Has[component.Body](rock))
	assert.False(t, ecs.Has[component.Sprite](rock))

	puff, err := m.InstantiateNamed("puff", ecs.Spawn{})
	require.NoError(t, err)
	assert.False(t, ecs.Has[ecs.BBox](puff))
	assert.Equal(t, 1500*time.Millisecond, ecs.MustGet[component.Lifetime](puff).Remaining)
}

func TestPrefabScriptFailureDestroysEntity(t *testing.T) {
	table, err := ParsePrefabTable([]byte(testPrefabs))
	require.NoError(t, err)

	m := ecs.NewManager()
	boom := errors.New("no such script")
	table.RegisterAll(m, nil, &recordingBinder{err: boom})

	_, err = m.InstantiateNamed("hero", ecs.Spawn{})
	assert.ErrorIs(t, err, boom)
	m.Update()
	assert.Zero(t, m.Count())

	m2 := ecs.NewManager()
	table.RegisterAll(m2, nil, nil)
	_, err = m2.InstantiateNamed("hero", ecs.Spawn{})
	assert.ErrorContains(t, err, "no script engine")
}

func TestShippedPrefabsLoad(t *testing.T) {
	table, err := LoadPrefabTable(filepath.Join("..", "..", "data", "prefabs.yaml"))
	require.NoError(t, err)
	for _, name := range []string{"player", "wall", "platform", "crate", "coin", "spike", "spark"} {
		assert.NotNil(t, table.Get(name), name)
	}
	assert.Equal(t, 750*time.Millisecond, table.Get("spark").Lifetime)
}
