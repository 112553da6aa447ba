package event

import (
	"reflect"
)

// Key names a typed event channel. Two keys sharing a name but not a payload
// type are distinct channels, so a push can only ever reach listeners whose
// signature matches.
type Key[T any] struct {
	name string
}

// NewKey declares a channel carrying payloads of type T.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

func (k Key[T]) Name() string { return k.name }

func (k Key[T]) channel() channel {
	return channel{name: k.name, typ: typeOf[T]()}
}

type channel struct {
	name string
	typ  reflect.Type
}

type listener struct {
	id uint64
	fn any // func(T) for the channel's T
}

// Subscription identifies one registered listener. The zero value is never
// registered and removing it is a no-op.
type Subscription struct {
	ch channel
	id uint64
}

// Bus is a per-entity synchronous multicast dispatcher. Listeners run in
// registration order. Not safe for concurrent use.
type Bus struct {
	listeners map[channel][]listener
	nextID    uint64
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[channel][]listener)}
}

// Listen registers fn on channel k.
func Listen[T any](b *Bus, k Key[T], fn func(T)) Subscription {
	ch := k.channel()
	b.nextID++
	b.listeners[ch] = append(b.listeners[ch], listener{id: b.nextID, fn: fn})
	return Subscription{ch: ch, id: b.nextID}
}

// Remove unregisters a listener. Unknown or already removed subscriptions are ignored.
func (b *Bus) Remove(sub Subscription) {
	ls := b.listeners[sub.ch]
	for i, l := range ls {
		if l.id != sub.id {
			continue
		}
		// copy-on-write so an in-flight Push keeps its snapshot intact
		next := make([]listener, 0, len(ls)-1)
		next = append(next, ls[:i]...)
		next = append(next, ls[i+1:]...)
		if len(next) == 0 {
			delete(b.listeners, sub.ch)
		} else {
			b.listeners[sub.ch] = next
		}
		return
	}
}

// Push invokes every listener currently registered on k, in order, and
// returns how many ran. A channel with no listeners is a silent no-op.
//
// Dispatch iterates a snapshot: listeners added by a handler are first seen by
// the next Push, and listeners removed by a handler still run in this one.
func Push[T any](b *Bus, k Key[T], payload T) int {
	ls := b.listeners[k.channel()]
	if len(ls) == 0 {
		return 0
	}
	snapshot := ls[:len(ls):len(ls)]
	for _, l := range snapshot {
		l.fn.(func(T))(payload)
	}
	return len(snapshot)
}

// Count returns the number of listeners registered under name across all payload types.
func (b *Bus) Count(name string) int {
	n := 0
	for ch, ls := range b.listeners {
		if ch.name == name {
			n += len(ls)
		}
	}
	return n
}

// Clear drops every listener.
func (b *Bus) Clear() {
	clear(b.listeners)
}
