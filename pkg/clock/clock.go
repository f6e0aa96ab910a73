// Package clock implements a Lamport logical clock over model timestamps.
//
// The synchronizer uses it to drive agreement rollover: each rollover is an
// internal event (IR1, increment before the event), and observing a later
// time published by another participant applies IR2 (advance to
// max(own, seen) + 1). Agents never tick the clock themselves; they only
// read the current time from the synchronized times store.
//
// Note: Clock is not goroutine-safe. Each instance is short-lived, seeded
// from the synchronized store at the start of an activation; cross-process
// coordination is the store's job.
package clock

import "github.com/Lut99/justact-go/pkg/model"

// Clock is a Lamport logical clock. Not goroutine-safe; see package doc.
type Clock struct {
	ts model.Timestamp
}

// Tick implements IR1: increment the clock before an internal event.
// Returns the new timestamp.
func (c *Clock) Tick() model.Timestamp {
	c.ts++
	return c.ts
}

// Observe implements IR2: on seeing a published timestamp, advance to
// max(own, seen) + 1. Returns the new timestamp.
func (c *Clock) Observe(seen model.Timestamp) model.Timestamp {
	if seen > c.ts {
		c.ts = seen
	}
	c.ts++
	return c.ts
}

// Value returns the current clock value without advancing it.
func (c *Clock) Value() model.Timestamp { return c.ts }

// Set initializes the clock to a specific value. Used to seed from the
// synchronized times store at the start of an activation.
func (c *Clock) Set(v model.Timestamp) { c.ts = v }

// TotalOrderLess defines a deterministic total order over timestamped
// events: (tsA, agentA) precedes (tsB, agentB) if tsA < tsB, with ties
// broken lexicographically by agent ID. Every participant computes the
// same order without coordination.
func TotalOrderLess(tsA model.Timestamp, agentA model.AgentID, tsB model.Timestamp, agentB model.AgentID) bool {
	if tsA != tsB {
		return tsA < tsB
	}
	return agentA < agentB
}
