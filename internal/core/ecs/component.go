package ecs

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Attachable is implemented by components that need setup when added to an
// entity, such as registering tags or event listeners.
type Attachable interface {
	OnAdd(e *Entity)
}

// Detachable is implemented by components that must undo their setup when
// removed from an entity or when the entity is purged.
type Detachable interface {
	OnRemove(e *Entity)
}

// Toggler is implemented by components carrying an enable flag.
type Toggler interface {
	Enabled() bool
	SetEnabled(bool)
}

// Base provides the enable flag. Embedded components start enabled.
type Base struct {
	disabled bool
}

func (b *Base) Enabled() bool      { return !b.disabled }
func (b *Base) SetEnabled(on bool) { b.disabled = !on }

// IsEnabled reports a component's enable flag; components without one are always enabled.
func IsEnabled(c any) bool {
	if t, ok := c.(Toggler); ok {
		return t.Enabled()
	}
	return true
}

// storage is the type-erased view the Manager uses for bulk cleanup.
type storage interface {
	typeName() string
	has(id EntityID) bool
	detach(e *Entity)
	remove(id EntityID)
	len() int
}

// Store is a sparse set of *T keyed by entity id. The dense slice keeps
// insertion order so systems visit entities in creation order. Remove leaves
// a zero hole; holes are compacted on the next IDs call.
type Store[T any] struct {
	name  string
	data  map[EntityID]*T
	dense []EntityID
	index map[EntityID]int
	holes int
}

func newStore[T any]() *Store[T] {
	return &Store[T]{
		name:  reflect.TypeOf((*T)(nil)).Elem().String(),
		data:  make(map[EntityID]*T, 256),
		dense: make([]EntityID, 0, 256),
		index: make(map[EntityID]int, 256),
	}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		s.index[id] = len(s.dense)
		s.dense = append(s.dense, id)
	}
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.dense[i] = 0
	s.holes++
	delete(s.index, id)
	delete(s.data, id)
}

func (s *Store[T]) Len() int { return len(s.data) }

// IDs returns the ids holding a T, in insertion order. The slice is owned by
// the store and is invalidated by the next Remove or IDs call.
func (s *Store[T]) IDs() []EntityID {
	s.compact()
	return s.dense
}

func (s *Store[T]) compact() {
	if s.holes == 0 {
		return
	}
	out := s.dense[:0]
	for _, id := range s.dense {
		if id.IsZero() {
			continue
		}
		s.index[id] = len(out)
		out = append(out, id)
	}
	clear(s.dense[len(out):])
	s.dense = out
	s.holes = 0
}

func (s *Store[T]) typeName() string     { return s.name }
func (s *Store[T]) has(id EntityID) bool { return s.Has(id) }
func (s *Store[T]) remove(id EntityID)   { s.Remove(id) }
func (s *Store[T]) len() int             { return s.Len() }

func (s *Store[T]) detach(e *Entity) {
	c, ok := s.data[e.id]
	if !ok {
		return
	}
	if d, ok := any(c).(Detachable); ok {
		d.OnRemove(e)
	}
}

// registry tracks one store per component type, in first-use order.
type registry struct {
	byType map[reflect.Type]storage
	order  []storage
}

func newRegistry() *registry {
	return &registry{byType: make(map[reflect.Type]storage, 16)}
}

// StoreOf returns the manager's store for T, creating it on first use.
func StoreOf[T any](m *Manager) *Store[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if s, ok := m.reg.byType[t]; ok {
		return s.(*Store[T])
	}
	s := newStore[T]()
	m.reg.byType[t] = s
	m.reg.order = append(m.reg.order, s)
	return s
}

// Add stores c as e's T, replacing any previous T (whose OnRemove runs
// first), then runs c's OnAdd. Re-adding the stored instance runs no hooks.
// Adding to a purged entity is ignored.
func Add[T any](e *Entity, c *T) *T {
	if e.purged || e.purging {
		e.mgr.log.Warn("add component to purged entity",
			zap.Uint64("entity", uint64(e.id)), zap.String("component", typeName[T]()))
		return c
	}
	s := StoreOf[T](e.mgr)
	if old, ok := s.Get(e.id); ok {
		if old == c {
			return c
		}
		if d, ok := any(old).(Detachable); ok {
			d.OnRemove(e)
		}
	}
	s.Set(e.id, c)
	if a, ok := any(c).(Attachable); ok {
		a.OnAdd(e)
	}
	return c
}

// Remove runs T's OnRemove and erases it. Removing an absent component is a no-op.
func Remove[T any](e *Entity) {
	s := StoreOf[T](e.mgr)
	c, ok := s.Get(e.id)
	if !ok {
		e.mgr.log.Debug("remove absent component",
			zap.Uint64("entity", uint64(e.id)), zap.String("component", s.name))
		return
	}
	if d, ok := any(c).(Detachable); ok {
		d.OnRemove(e)
	}
	s.Remove(e.id)
}

func Has[T any](e *Entity) bool {
	return StoreOf[T](e.mgr).Has(e.id)
}

// Get returns e's T or an error wrapping ErrNotFound.
func Get[T any](e *Entity) (*T, error) {
	s := StoreOf[T](e.mgr)
	c, ok := s.Get(e.id)
	if !ok {
		return nil, fmt.Errorf("%w: %s on entity %d", ErrNotFound, s.name, e.id)
	}
	return c, nil
}

// MustGet is Get for call sites that have already checked Has. A miss is a
// programming defect and panics.
func MustGet[T any](e *Entity) *T {
	c, err := Get[T](e)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns e's T and whether it exists, without error allocation.
func Lookup[T any](e *Entity) (*T, bool) {
	return StoreOf[T](e.mgr).Get(e.id)
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
