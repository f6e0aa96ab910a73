package model

import (
	"encoding/binary"
	"encoding/json"
	"hash/fnv"
	"iter"
	"slices"

	"github.com/Lut99/justact-go/pkg/collections"
)

// MessageSet is an unordered, content-addressed collection of messages,
// keyed by message identity. Two sets built from the same statements in any
// order — and with any duplicates by identity collapsed — compare equal and
// hash identically.
type MessageSet struct {
	data map[MessageID]Message
}

// NewMessageSet builds a set from the given messages. Later duplicates by
// identity replace earlier ones.
func NewMessageSet(msgs ...Message) MessageSet {
	s := MessageSet{data: make(map[MessageID]Message, len(msgs))}
	for _, m := range msgs {
		s.data[m.ID] = m
	}
	return s
}

// Add inserts a message, replacing any previous message with the same
// identity. It returns the replaced message, if there was one.
func (s *MessageSet) Add(msg Message) (Message, bool) {
	if s.data == nil {
		s.data = make(map[MessageID]Message, 1)
	}
	prev, existed := s.data[msg.ID]
	s.data[msg.ID] = msg
	return prev, existed
}

// Get returns the message with the given identity, if present.
func (s MessageSet) Get(id MessageID) (Message, bool) {
	m, ok := s.data[id]
	return m, ok
}

// Contains reports whether a message with the given identity is present.
func (s MessageSet) Contains(id MessageID) bool {
	_, ok := s.data[id]
	return ok
}

// Len returns the number of messages in the set.
func (s MessageSet) Len() int { return len(s.data) }

// All returns a restartable sequence over the messages, ordered by message
// identity so that enumeration is deterministic across runs.
func (s MessageSet) All() iter.Seq[Message] {
	ids := s.sortedIDs()
	return func(yield func(Message) bool) {
		for _, id := range ids {
			if !yield(s.data[id]) {
				return
			}
		}
	}
}

// Union returns a new set holding the messages of both operands. On an
// identity collision the other set's message wins.
func (s MessageSet) Union(other MessageSet) MessageSet {
	out := MessageSet{data: make(map[MessageID]Message, len(s.data)+len(other.data))}
	for id, m := range s.data {
		out.data[id] = m
	}
	for id, m := range other.data {
		out.data[id] = m
	}
	return out
}

// Equal reports whether both sets hold the same messages, by the cross-out
// algorithm: every element of s must find a distinct match in other, no
// element matched twice, and sizes must agree. Quadratic in set size, which
// is acceptable for human-issued statement sets.
func (s MessageSet) Equal(other MessageSet) bool {
	if len(s.data) != len(other.data) {
		return false
	}
	pool := make([]Message, 0, len(other.data))
	for _, m := range other.data {
		pool = append(pool, m)
	}
	for _, m := range s.data {
		matched := false
		for i, cand := range pool {
			if m.Equal(cand) {
				pool[i] = pool[len(pool)-1]
				pool = pool[:len(pool)-1]
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Hash returns an order-independent hash of the set: hash every element
// with a fixed (non-randomized) function, sort the element hashes, then
// hash the sorted sequence. Equal sets always hash equally.
func (s MessageSet) Hash() uint64 {
	hashes := make([]uint64, 0, len(s.data))
	for _, m := range s.data {
		hashes = append(hashes, hashMessage(m))
	}
	slices.Sort(hashes)
	h := fnv.New64a()
	var buf [8]byte
	for _, eh := range hashes {
		binary.BigEndian.PutUint64(buf[:], eh)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// hashMessage computes the fixed per-element hash. FNV-1a is deliberately
// unseeded: element hashes must be comparable across set instances and
// across processes.
func hashMessage(m Message) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(m.ID)))
	h.Write(buf[:])
	h.Write([]byte(m.ID))
	binary.BigEndian.PutUint64(buf[:], uint64(len(m.Author)))
	h.Write(buf[:])
	h.Write([]byte(m.Author))
	h.Write(m.Payload)
	return h.Sum64()
}

func (s MessageSet) sortedIDs() []MessageID {
	ids := make([]MessageID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Map adapts the set to the fallible collections.Map contract, so it can
// be handed to consumers of the collection abstraction (e.g. the policy
// extractor). The adapter never fails.
func (s MessageSet) Map() collections.Map[MessageID, Message] {
	return setMap{s}
}

type setMap struct{ s MessageSet }

func (m setMap) Get(id MessageID) (Message, bool, error) {
	msg, ok := m.s.Get(id)
	return msg, ok, nil
}

func (m setMap) All() (iter.Seq[Message], error) { return m.s.All(), nil }

func (m setMap) Len() (int, error) { return m.s.Len(), nil }

// MarshalJSON encodes the set as a message array sorted by identity.
func (s MessageSet) MarshalJSON() ([]byte, error) {
	msgs := make([]Message, 0, len(s.data))
	for _, id := range s.sortedIDs() {
		msgs = append(msgs, s.data[id])
	}
	return json.Marshal(msgs)
}

// UnmarshalJSON decodes a message array, collapsing duplicates by identity.
func (s *MessageSet) UnmarshalJSON(data []byte) error {
	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return err
	}
	*s = NewMessageSet(msgs...)
	return nil
}
