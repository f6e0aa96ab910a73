// Package collections defines the framework's only consistency primitive:
// read contracts over groups of identifiable elements, split by how
// mutation propagates.
//
// A synchronized collection has a single global view — every participant
// that mutates it is assumed, by construction, to observe the same
// resulting state (an external consensus mechanism provides this; here it
// is typically a shared database). An asynchronous collection is
// per-recipient: a write lands only in the chosen recipients' local views
// and no cross-agent consistency is implied.
//
// Everything downstream (the composite view, the audit) is built by
// composing these two mutation models, never by ad hoc locking.
package collections

import "iter"

// Map is read-only access to a collection whose elements carry an explicit
// identity of type I. All operations are fallible; implementations that
// cannot fail simply never return an error.
type Map[I comparable, E any] interface {
	// Get returns the element with the given identity, if present.
	// Absence is not an error.
	Get(id I) (E, bool, error)

	// All returns a finite, restartable sequence over the elements.
	All() (iter.Seq[E], error)

	// Len returns the number of elements.
	Len() (int, error)
}

// Set is read-only access to a collection whose elements are identified by
// their own equality rather than an explicit id.
type Set[E comparable] interface {
	// Get returns the stored element equal to elem, if present.
	Get(elem E) (E, bool, error)

	// All returns a finite, restartable sequence over the elements.
	All() (iter.Seq[E], error)

	// Len returns the number of elements.
	Len() (int, error)
}

// SyncMap is a Map with synchronized mutation: adding an element is a
// total replace-by-id visible identically to every participant.
type SyncMap[I comparable, E any] interface {
	Map[I, E]

	// Add inserts elem, replacing any element with the same identity.
	// It returns the replaced element, if there was one.
	Add(elem E) (prev E, replaced bool, err error)
}

// ReplaceMap is a SyncMap that additionally supports replacing the whole
// collection at once. Reserved for synchronizer-driven rollover.
type ReplaceMap[I comparable, E any] interface {
	SyncMap[I, E]

	// Replace atomically swaps the collection's contents for elems.
	Replace(elems []E) error
}

// AsyncMap is a Map with asynchronous, selectively fanned-out mutation.
// The read side exposes one agent's local view; Add delivers only to the
// recipients the selector names.
type AsyncMap[A comparable, I comparable, E any] interface {
	Map[I, E]

	// Add delivers elem to the local views of the selected recipients.
	Add(rec Recipient[A], elem E) error
}

// Contains reports whether an element with the given identity exists in m.
func Contains[I comparable, E any](m Map[I, E], id I) (bool, error) {
	_, ok, err := m.Get(id)
	return ok, err
}

// Recipient selects who receives an asynchronous update.
type Recipient[A comparable] struct {
	agent A
	all   bool
}

// Everyone addresses an update to all agents.
func Everyone[A comparable]() Recipient[A] {
	return Recipient[A]{all: true}
}

// One addresses an update to a single agent.
func One[A comparable](agent A) Recipient[A] {
	return Recipient[A]{agent: agent}
}

// IsAll reports whether the recipient is every agent.
func (r Recipient[A]) IsAll() bool { return r.all }

// Agent returns the single selected agent, if the recipient is not all.
func (r Recipient[A]) Agent() (A, bool) { return r.agent, !r.all }
