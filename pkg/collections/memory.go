package collections

import (
	"iter"
	"sync"
)

// MemMap is an in-memory SyncMap (and ReplaceMap). It preserves insertion
// order for iteration, so enumeration is deterministic, it never returns
// an error, and it is safe for concurrent use so a single-process runtime
// can poll agents against it in parallel.
type MemMap[I comparable, E any] struct {
	key func(E) I

	mu    sync.RWMutex
	data  map[I]E
	order []I
}

// NewMemMap builds an empty in-memory map. key extracts an element's
// identity.
func NewMemMap[I comparable, E any](key func(E) I) *MemMap[I, E] {
	return &MemMap[I, E]{key: key, data: make(map[I]E)}
}

// Get returns the element with the given identity, if present.
func (m *MemMap[I, E]) Get(id I) (E, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.data[id]
	return e, ok, nil
}

// All returns a restartable sequence over a snapshot of the elements in
// insertion order.
func (m *MemMap[I, E]) All() (iter.Seq[E], error) {
	m.mu.RLock()
	elems := make([]E, 0, len(m.order))
	for _, id := range m.order {
		if e, ok := m.data[id]; ok {
			elems = append(elems, e)
		}
	}
	m.mu.RUnlock()
	return func(yield func(E) bool) {
		for _, e := range elems {
			if !yield(e) {
				return
			}
		}
	}, nil
}

// Len returns the number of elements.
func (m *MemMap[I, E]) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data), nil
}

// Add inserts elem, replacing by identity. A replaced element keeps its
// position in the iteration order.
func (m *MemMap[I, E]) Add(elem E) (E, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.key(elem)
	prev, existed := m.data[id]
	if !existed {
		m.order = append(m.order, id)
	}
	m.data[id] = elem
	return prev, existed, nil
}

// Replace swaps the whole contents for elems.
func (m *MemMap[I, E]) Replace(elems []E) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[I]E, len(elems))
	m.order = m.order[:0]
	for _, e := range elems {
		id := m.key(e)
		if _, existed := m.data[id]; !existed {
			m.order = append(m.order, id)
		}
		m.data[id] = e
	}
	return nil
}

var _ ReplaceMap[string, int] = (*MemMap[string, int])(nil)

// MemHub is the in-memory backing for asynchronous collections: one local
// view per registered agent. Writes addressed to Everyone land in every
// registered view; writes addressed to one agent land only there. Safe for
// concurrent use.
//
// Everyone delivery fans out at send time: an agent registered after a
// broadcast does not receive it. The shared-database backing differs
// there, since its broadcast rows stay visible to agents that appear
// later. Hosts that need late joiners to catch up must replay for them.
type MemHub[A comparable, I comparable, E any] struct {
	key func(E) I

	mu    sync.RWMutex
	views map[A]*MemMap[I, E]
	order []A
}

// NewMemHub builds an empty hub. key extracts an element's identity.
func NewMemHub[A comparable, I comparable, E any](key func(E) I) *MemHub[A, I, E] {
	return &MemHub[A, I, E]{key: key, views: make(map[A]*MemMap[I, E])}
}

// Register creates the local view for an agent. Idempotent.
func (h *MemHub[A, I, E]) Register(agent A) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.register(agent)
}

func (h *MemHub[A, I, E]) register(agent A) *MemMap[I, E] {
	v, ok := h.views[agent]
	if !ok {
		v = NewMemMap[I, E](h.key)
		h.views[agent] = v
		h.order = append(h.order, agent)
	}
	return v
}

// For returns the AsyncMap scoped to one agent's local view, registering
// the agent if needed.
func (h *MemHub[A, I, E]) For(agent A) AsyncMap[A, I, E] {
	h.Register(agent)
	return &memAsyncView[A, I, E]{hub: h, owner: agent}
}

func (h *MemHub[A, I, E]) view(agent A) *MemMap[I, E] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.views[agent]
}

func (h *MemHub[A, I, E]) deliver(rec Recipient[A], elem E) {
	h.mu.Lock()
	if target, ok := rec.Agent(); ok {
		v := h.register(target)
		h.mu.Unlock()
		v.Add(elem)
		return
	}
	targets := make([]*MemMap[I, E], 0, len(h.order))
	for _, agent := range h.order {
		targets = append(targets, h.views[agent])
	}
	h.mu.Unlock()
	for _, v := range targets {
		v.Add(elem)
	}
}

// memAsyncView is one agent's handle on a MemHub: reads see only the
// owner's view, writes fan out through the hub.
type memAsyncView[A comparable, I comparable, E any] struct {
	hub   *MemHub[A, I, E]
	owner A
}

func (v *memAsyncView[A, I, E]) Get(id I) (E, bool, error) {
	return v.hub.view(v.owner).Get(id)
}

func (v *memAsyncView[A, I, E]) All() (iter.Seq[E], error) {
	return v.hub.view(v.owner).All()
}

func (v *memAsyncView[A, I, E]) Len() (int, error) {
	return v.hub.view(v.owner).Len()
}

func (v *memAsyncView[A, I, E]) Add(rec Recipient[A], elem E) error {
	v.hub.deliver(rec, elem)
	return nil
}

var _ AsyncMap[string, string, int] = (*memAsyncView[string, string, int])(nil)
