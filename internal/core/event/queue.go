package event

import (
	"reflect"
)

// Queue is a double-buffered, world-level event queue. Events emitted during
// frame N become deliverable once SwapBuffers runs at the start of frame N+1.
// It complements the per-entity Bus: Bus dispatch is immediate, Queue delivery
// is deferred to the commit barrier.
type Queue struct {
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]any
	order    []reflect.Type // emission order of first event per type, for stable delivery
}

func NewQueue() *Queue {
	return &Queue{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer.
func Emit[T any](q *Queue, ev T) {
	t := typeOf[T]()
	if !containsType(q.order, t) {
		q.order = append(q.order, t)
	}
	q.back[t] = append(q.back[t], ev)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](q *Queue, fn func(T)) {
	t := typeOf[T]()
	q.handlers[t] = append(q.handlers[t], func(ev any) { fn(ev.(T)) })
}

// Pending returns the number of events of type T waiting in the back buffer.
func Pending[T any](q *Queue) int {
	return len(q.back[typeOf[T]()])
}

// SwapBuffers rotates back→front and clears the new back buffer.
func (q *Queue) SwapBuffers() {
	q.front, q.back = q.back, q.front
	for k := range q.back {
		q.back[k] = q.back[k][:0]
	}
}

// DispatchAll delivers every front-buffer event to its handlers, grouped by
// type in first-emission order. Handlers may Emit; those events land in the
// back buffer and wait for the next swap.
func (q *Queue) DispatchAll() {
	order := q.order
	q.order = nil
	for _, t := range order {
		events := q.front[t]
		handlers := q.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				h.(func(any))(ev)
			}
		}
		q.front[t] = events[:0]
	}
	// types emitted during dispatch wait in back; keep their order entries
	for t, evs := range q.back {
		if len(evs) > 0 && !containsType(q.order, t) {
			q.order = append(q.order, t)
		}
	}
}

func containsType(ts []reflect.Type, t reflect.Type) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}
