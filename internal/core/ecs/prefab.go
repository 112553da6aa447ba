package ecs

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Spawn carries per-instance arguments for a prefab.
type Spawn struct {
	Position mgl64.Vec2
	Tags     []string
}

// Prefab is a construction recipe: it attaches a starting set of components
// and tags to a freshly allocated entity and has no identity afterwards.
type Prefab interface {
	Build(e *Entity, at Spawn) error
}

// PrefabFunc adapts a function to Prefab.
type PrefabFunc func(e *Entity, at Spawn) error

func (f PrefabFunc) Build(e *Entity, at Spawn) error { return f(e, at) }

// RegisterPrefab makes p available to InstantiateNamed. A later registration
// under the same name replaces the earlier one.
func (m *Manager) RegisterPrefab(name string, p Prefab) {
	m.prefabs[name] = p
}

// Prefabs returns the registered prefab names in lexical order.
func (m *Manager) Prefabs() []string {
	out := make([]string, 0, len(m.prefabs))
	for name := range m.prefabs {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Instantiate allocates an entity, runs p on it and registers it in the
// spatial grid straight away, so same-frame broad-phase queries see it. Like
// AddEntity, it joins the live set at the next Update. If p fails, the
// half-built entity is destroyed.
func (m *Manager) Instantiate(p Prefab, at Spawn) (*Entity, error) {
	e := m.AddEntity(at.Tags...)
	if err := p.Build(e, at); err != nil {
		e.Destroy()
		return nil, fmt.Errorf("build prefab for entity %d: %w", e.id, err)
	}
	m.UpdateSpatial(e)
	return e, nil
}

// InstantiateNamed instantiates a registered prefab.
func (m *Manager) InstantiateNamed(name string, at Spawn) (*Entity, error) {
	p, ok := m.prefabs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrefab, name)
	}
	e, err := m.Instantiate(p, at)
	if err != nil {
		return nil, fmt.Errorf("prefab %q: %w", name, err)
	}
	m.log.Debug("prefab instantiated", zap.String("prefab", name), zap.Uint64("entity", uint64(e.id)))
	return e, nil
}
