package view

import (
	"iter"
	"slices"
	"sync"

	"github.com/Lut99/justact-go/pkg/model"
)

// Times is the globally synchronized set of logical times, one of which is
// current. Agents read it to learn which agreements currently apply;
// Advance is reserved for the synchronizer role and performs the
// time/agreement rollover.
type Times interface {
	// Current returns the current logical time.
	Current() (model.Timestamp, error)

	// All returns a restartable sequence over every known time.
	All() (iter.Seq[model.Timestamp], error)

	// Advance records t as a known time and makes it current.
	Advance(t model.Timestamp) error
}

// MemTimes is an in-memory, infallible Times. Iteration is in ascending
// time order. Safe for concurrent use.
type MemTimes struct {
	mu      sync.RWMutex
	known   map[model.Timestamp]struct{}
	current model.Timestamp
}

// NewMemTimes builds a times set with the given current time.
func NewMemTimes(current model.Timestamp) *MemTimes {
	return &MemTimes{known: map[model.Timestamp]struct{}{current: {}}, current: current}
}

// Current returns the current logical time.
func (t *MemTimes) Current() (model.Timestamp, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current, nil
}

// All returns the known times in ascending order.
func (t *MemTimes) All() (iter.Seq[model.Timestamp], error) {
	t.mu.RLock()
	times := make([]model.Timestamp, 0, len(t.known))
	for ts := range t.known {
		times = append(times, ts)
	}
	t.mu.RUnlock()
	slices.Sort(times)
	return func(yield func(model.Timestamp) bool) {
		for _, ts := range times {
			if !yield(ts) {
				return
			}
		}
	}, nil
}

// Advance records t and makes it current.
func (t *MemTimes) Advance(ts model.Timestamp) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.known[ts] = struct{}{}
	t.current = ts
	return nil
}

var _ Times = (*MemTimes)(nil)
