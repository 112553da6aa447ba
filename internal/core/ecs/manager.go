package ecs

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/core/event"
	"github.com/l1jgo/sim2d/internal/core/spatial"
	"go.uber.org/zap"
)

// Manager owns every entity: identity, deferred insertion and purge, the
// tag index and the spatial grid. All access happens on the simulation
// goroutine, no locks.
type Manager struct {
	pool    *idPool
	reg     *registry
	grid    *spatial.Grid
	queue   *event.Queue
	log     *zap.Logger
	prefabs map[string]Prefab

	byID    map[EntityID]*Entity
	pending []*Entity
	live    []*Entity
	tags    map[string][]*Entity
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithCellSize sets the spatial grid cell size in world units.
func WithCellSize(size float64) Option {
	return func(m *Manager) { m.grid = spatial.New(size) }
}

// WithQueue shares a world event queue instead of creating a private one.
func WithQueue(q *event.Queue) Option {
	return func(m *Manager) {
		if q != nil {
			m.queue = q
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		pool:    newIDPool(),
		reg:     newRegistry(),
		grid:    spatial.New(spatial.DefaultCellSize),
		queue:   event.NewQueue(),
		log:     zap.NewNop(),
		prefabs: make(map[string]Prefab),
		byID:    make(map[EntityID]*Entity, 1024),
		pending: make([]*Entity, 0, 64),
		live:    make([]*Entity, 0, 1024),
		tags:    make(map[string][]*Entity),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Grid() *spatial.Grid { return m.grid }
func (m *Manager) Queue() *event.Queue { return m.queue }
func (m *Manager) Logger() *zap.Logger { return m.log }
func (m *Manager) Count() int          { return len(m.live) }
func (m *Manager) PendingCount() int   { return len(m.pending) }

// AddEntity allocates an entity and queues it for the next Update. Until then
// it is invisible to Entities and ByTag, but components, tags and listeners
// can already be attached.
func (m *Manager) AddEntity(tags ...string) *Entity {
	e := &Entity{
		id:     m.pool.create(),
		tags:   make(map[string]struct{}, len(tags)),
		active: true,
		mgr:    m,
		bus:    event.NewBus(),
	}
	for _, t := range tags {
		e.tags[t] = struct{}{}
	}
	m.byID[e.id] = e
	m.pending = append(m.pending, e)
	return e
}

// Lookup resolves an id. Purged ids yield ErrStaleEntity; ids never issued
// yield ErrNotFound.
func (m *Manager) Lookup(id EntityID) (*Entity, error) {
	if e, ok := m.byID[id]; ok {
		return e, nil
	}
	if m.pool.retired(id) {
		return nil, fmt.Errorf("entity %d: %w", id, ErrStaleEntity)
	}
	return nil, fmt.Errorf("entity %d: %w", id, ErrNotFound)
}

// Update is the frame barrier. It first commits every queued entity to the
// live set and tag index, then purges every inactive live entity, then
// delivers the world queue. Entities created and destroyed within the same
// frame are therefore committed and purged by the same call.
func (m *Manager) Update() {
	m.commit()
	m.purge()
	m.queue.SwapBuffers()
	m.queue.DispatchAll()
}

func (m *Manager) commit() {
	if len(m.pending) == 0 {
		return
	}
	batch := m.pending
	m.pending = make([]*Entity, 0, cap(batch))
	for _, e := range batch {
		e.committed = true
		m.live = append(m.live, e)
		for _, t := range e.Tags() {
			m.tags[t] = append(m.tags[t], e)
		}
		event.Emit(m.queue, EntityCommitted{ID: e.id, Tags: e.Tags()})
	}
	m.log.Debug("entities committed", zap.Int("count", len(batch)), zap.Int("live", len(m.live)))
}

func (m *Manager) purge() {
	var dead []*Entity
	for _, e := range m.live {
		if !e.active {
			dead = append(dead, e)
		}
	}
	if len(dead) == 0 {
		return
	}
	for _, e := range dead {
		m.destroyNow(e)
	}
	m.live = without(m.live, func(e *Entity) bool { return e.purged })
	m.log.Debug("entities purged", zap.Int("count", len(dead)), zap.Int("live", len(m.live)))
}

// destroyNow removes e from every index. Component OnRemove hooks run first,
// while the entity is still fully indexed; components they try to add are dropped.
func (m *Manager) destroyNow(e *Entity) {
	e.purging = true
	for _, s := range m.reg.order {
		if s.has(e.id) {
			s.detach(e)
			s.remove(e.id)
		}
	}
	tags := e.Tags()
	for _, t := range tags {
		m.unindexTag(e, t)
	}
	m.grid.Remove(uint64(e.id))
	e.bus.Clear()
	e.purged = true
	delete(m.byID, e.id)
	m.pool.retire(e.id)
	event.Emit(m.queue, EntityPurged{ID: e.id, Tags: tags})
}

// Entities returns the live set. The slice is owned by the manager and is
// not stable across Update.
func (m *Manager) Entities() []*Entity { return m.live }

// ByTag returns the live entities carrying tag, or nil for an unknown tag.
// The slice is owned by the manager and is not stable across Update or tag changes.
func (m *Manager) ByTag(tag string) []*Entity { return m.tags[tag] }

// WithComponent scans the live set for entities holding a T. Meant for
// whole-set operations, not per-frame hot paths.
func WithComponent[T any](m *Manager) []*Entity {
	s := StoreOf[T](m)
	var out []*Entity
	for _, e := range m.live {
		if s.Has(e.id) {
			out = append(out, e)
		}
	}
	return out
}

// AddTag adds tag to e and, once e is committed, to the tag index.
func (m *Manager) AddTag(e *Entity, tag string) {
	if e.purged || e.HasTag(tag) {
		return
	}
	e.tags[tag] = struct{}{}
	if e.committed {
		m.tags[tag] = append(m.tags[tag], e)
	}
}

// RemoveTag removes tag from e and from the tag index.
func (m *Manager) RemoveTag(e *Entity, tag string) {
	if e.purged || !e.HasTag(tag) {
		return
	}
	delete(e.tags, tag)
	if e.committed {
		m.unindexTag(e, tag)
	}
}

func (m *Manager) unindexTag(e *Entity, tag string) {
	bucket := without(m.tags[tag], func(x *Entity) bool { return x == e })
	if len(bucket) == 0 {
		delete(m.tags, tag)
		return
	}
	m.tags[tag] = bucket
}

// UpdateSpatial refreshes e's grid cells from its Transform and BBox. Callers
// must invoke it after moving, scaling or resizing an entity; Transform
// mutation does not do it implicitly.
func (m *Manager) UpdateSpatial(e *Entity) {
	if e.purged {
		return
	}
	m.grid.Update(uint64(e.id), WorldAABB(e))
}

// RemoveSpatial drops e from the grid.
func (m *Manager) RemoveSpatial(e *Entity) {
	m.grid.Remove(uint64(e.id))
}

// InRange returns entities in the grid cells overlapping the square
// center ± radius. Re-filter by distance for an exact circle.
func (m *Manager) InRange(center mgl64.Vec2, radius float64) []*Entity {
	return m.resolve(m.grid.InRange(center, radius), "")
}

// InRangeTagged is InRange restricted to entities carrying tag.
func (m *Manager) InRangeTagged(tag string, center mgl64.Vec2, radius float64) []*Entity {
	return m.resolve(m.grid.InRange(center, radius), tag)
}

// PotentialCollisions returns every entity sharing a grid cell with e.
func (m *Manager) PotentialCollisions(e *Entity) []*Entity {
	return m.resolve(m.grid.Potential(uint64(e.id)), "")
}

func (m *Manager) resolve(ids []uint64, tag string) []*Entity {
	if len(ids) == 0 {
		return nil
	}
	out := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		e, ok := m.byID[EntityID(id)]
		if !ok {
			continue
		}
		if tag != "" && !e.HasTag(tag) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// without returns a fresh slice of the entities not matching drop. Slices
// already handed out keep their contents, so a caller ranging over ByTag or
// Entities is never disturbed by a re-entrant tag change or purge.
func without(in []*Entity, drop func(*Entity) bool) []*Entity {
	out := make([]*Entity, 0, len(in))
	for _, e := range in {
		if !drop(e) {
			out = append(out, e)
		}
	}
	return out
}
