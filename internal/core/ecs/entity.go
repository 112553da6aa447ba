package ecs

import (
	"slices"

	"github.com/l1jgo/sim2d/internal/core/event"
	"go.uber.org/zap"
)

// EntityID is a monotonically increasing identifier. Zero is never issued and
// an id is never reused within a run.
type EntityID uint64

func (id EntityID) IsZero() bool { return id == 0 }

// idPool hands out entity ids and remembers which ones have been purged.
type idPool struct {
	next   EntityID
	purged map[EntityID]struct{}
}

func newIDPool() *idPool {
	return &idPool{next: 1, purged: make(map[EntityID]struct{}, 256)}
}

func (p *idPool) create() EntityID {
	id := p.next
	p.next++
	return id
}

func (p *idPool) issued(id EntityID) bool { return id != 0 && id < p.next }

func (p *idPool) retire(id EntityID) { p.purged[id] = struct{}{} }

func (p *idPool) retired(id EntityID) bool {
	_, ok := p.purged[id]
	return ok
}

// Entity is the in-process handle for one simulated object. It owns its
// event bus and, through the Manager's stores, its components. The manager
// pointer is a back-reference only: the Manager decides the entity's lifetime.
type Entity struct {
	id        EntityID
	tags      map[string]struct{}
	active    bool
	committed bool
	purging   bool // destroyNow running; components can no longer be added
	purged    bool
	mgr       *Manager
	bus       *event.Bus
}

func (e *Entity) ID() EntityID { return e.id }

// Manager returns the owning manager.
func (e *Entity) Manager() *Manager { return e.mgr }

// Events returns the entity's bus. It stays usable after Destroy until the
// entity is purged at the next Update.
func (e *Entity) Events() *event.Bus { return e.bus }

// IsActive is true until Destroy is called.
func (e *Entity) IsActive() bool { return e.active }

// IsCommitted reports whether the entity has joined the live set.
func (e *Entity) IsCommitted() bool { return e.committed }

// IsPurged reports whether the entity has been removed from every index.
// A purged handle is stale.
func (e *Entity) IsPurged() bool { return e.purged }

// Destroy marks the entity inactive. Removal from the live set, tag buckets
// and the spatial grid happens at the next Manager.Update. Repeated calls are ignored.
func (e *Entity) Destroy() {
	if !e.active {
		return
	}
	e.active = false
	e.mgr.log.Debug("entity destroyed", zap.Uint64("entity", uint64(e.id)))
}

// Tags returns the entity's tags in lexical order.
func (e *Entity) Tags() []string {
	out := make([]string, 0, len(e.tags))
	for t := range e.tags {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func (e *Entity) HasTag(tag string) bool {
	_, ok := e.tags[tag]
	return ok
}

// RequestAddTag adds tag through the manager so the tag index stays in sync.
func (e *Entity) RequestAddTag(tag string) { e.mgr.AddTag(e, tag) }

// RequestRemoveTag removes tag through the manager so the tag index stays in sync.
func (e *Entity) RequestRemoveTag(tag string) { e.mgr.RemoveTag(e, tag) }
