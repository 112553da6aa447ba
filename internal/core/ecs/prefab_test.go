package ecs

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/core/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var crate = PrefabFunc(func(e *Entity, at Spawn) error {
	Add(e, NewTransform(at.Position))
	Add(e, &BBox{Size: mgl64.Vec2{16, 16}})
	e.RequestAddTag("crate")
	return nil
})

func TestInstantiateRegistersSpatialImmediately(t *testing.T) {
	m := NewManager()
	e, err := m.Instantiate(crate, Spawn{Position: mgl64.Vec2{40, 40}, Tags: []string{"loot"}})
	require.NoError(t, err)

	assert.Equal(t, []*Entity{e}, m.InRange(mgl64.Vec2{40, 40}, 1), "visible to broad-phase in the same frame")
	assert.Empty(t, m.Entities(), "but not yet live")
	assert.ElementsMatch(t, []string{"crate", "loot"}, e.Tags())

	m.Update()
	assert.Equal(t, []*Entity{e}, m.ByTag("crate"))
}

func TestInstantiateFailureDestroysEntity(t *testing.T) {
	m := NewManager()
	boom := errors.New("boom")
	e, err := m.Instantiate(PrefabFunc(func(*Entity, Spawn) error { return boom }), Spawn{})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, e)

	m.Update()
	assert.Empty(t, m.Entities())
}

func TestInstantiateNamed(t *testing.T) {
	m := NewManager()
	m.RegisterPrefab("crate", crate)
	assert.Equal(t, []string{"crate"}, m.Prefabs())

	e, err := m.InstantiateNamed("crate", Spawn{Position: mgl64.Vec2{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec2{1, 2}, MustGet[Transform](e).Position)

	_, err = m.InstantiateNamed("barrel", Spawn{})
	assert.ErrorIs(t, err, ErrUnknownPrefab)
}

func TestWorldAABB(t *testing.T) {
	m := NewManager()

	bare := m.AddEntity()
	assert.Equal(t, spatial.PointBox(mgl64.Vec2{}), WorldAABB(bare))

	point := m.AddEntity()
	Add(point, NewTransform(mgl64.Vec2{5, 6}))
	assert.Equal(t, spatial.PointBox(mgl64.Vec2{5, 6}), WorldAABB(point))

	boxed := m.AddEntity()
	tr := Add(boxed, NewTransform(mgl64.Vec2{10, 10}))
	tr.Scale = mgl64.Vec2{2, -1}
	Add(boxed, &BBox{Size: mgl64.Vec2{4, 4}, Pivot: mgl64.Vec2{1, 1}})
	// center = (10+1*2, 10+1*-1) = (12, 9); half = (4, 2)
	assert.Equal(t, spatial.AABB{Min: mgl64.Vec2{8, 7}, Max: mgl64.Vec2{16, 11}}, WorldAABB(boxed))
}
