package ecs

// Each calls fn for every committed, non-purged entity holding an A, in
// store insertion order.
func Each[A any](m *Manager, fn func(*Entity, *A)) {
	sa := StoreOf[A](m)
	for _, id := range snapshot(sa.IDs()) {
		e, ok := m.byID[id]
		if !ok || !e.committed {
			continue
		}
		if a, ok := sa.Get(id); ok {
			fn(e, a)
		}
	}
}

// Each2 iterates committed entities holding both A and B. It walks the
// smaller store and looks each id up in the larger one.
func Each2[A, B any](m *Manager, fn func(*Entity, *A, *B)) {
	sa, sb := StoreOf[A](m), StoreOf[B](m)
	ids := sa.IDs()
	if sb.Len() < sa.Len() {
		ids = sb.IDs()
	}
	for _, id := range snapshot(ids) {
		e, ok := m.byID[id]
		if !ok || !e.committed {
			continue
		}
		a, okA := sa.Get(id)
		b, okB := sb.Get(id)
		if okA && okB {
			fn(e, a, b)
		}
	}
}

// Each3 iterates committed entities holding A, B and C.
func Each3[A, B, C any](m *Manager, fn func(*Entity, *A, *B, *C)) {
	sa, sb, sc := StoreOf[A](m), StoreOf[B](m), StoreOf[C](m)
	ids := sa.IDs()
	if sb.Len() < len(ids) {
		ids = sb.IDs()
	}
	if sc.Len() < len(ids) {
		ids = sc.IDs()
	}
	for _, id := range snapshot(ids) {
		e, ok := m.byID[id]
		if !ok || !e.committed {
			continue
		}
		a, okA := sa.Get(id)
		b, okB := sb.Get(id)
		c, okC := sc.Get(id)
		if okA && okB && okC {
			fn(e, a, b, c)
		}
	}
}

// snapshot copies ids so callbacks may add or remove components mid-iteration.
func snapshot(ids []EntityID) []EntityID {
	out := make([]EntityID, len(ids))
	copy(out, ids)
	return out
}
