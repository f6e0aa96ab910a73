// Package model defines the core domain types of the justification
// framework.
//
// The framework coordinates agents that act on each other's published
// statements. Three ideas anchor the model:
//
//   - Statements are immutable, authored messages. A justification is a
//     *set* of messages, so equality and hashing of message sets must not
//     depend on the order in which statements arrived.
//
//   - An agreement is a statement every agent is assumed to accept at a
//     given logical time. Agreements live in a globally synchronized store;
//     ordinary statements are delivered selectively and may be known to
//     some agents and not others.
//
//   - An action couples an agreement (its basis) with extra supporting
//     statements and the statement it enacts. The full justification is
//     always basis + extra + enactment, folded together by construction.
package model

import "github.com/Lut99/justact-go/pkg/collections"

// MessageID uniquely identifies a message. Uniqueness is scoped to
// messages: a MessageID is never comparable to an AgentID or ActionID.
type MessageID string

// AgentID uniquely identifies an agent or synchronizer.
type AgentID string

// ActionID uniquely identifies an enacted action.
type ActionID string

// Timestamp is a logical time. Agreements apply at exactly one timestamp
// and actions declare the timestamp they were taken at; the audit rejects
// actions whose declared time does not equal their basis' time.
type Timestamp int64

// Recipient selects who receives an asynchronous update: every agent, or
// one specific agent. See collections.Everyone and collections.One.
type Recipient = collections.Recipient[AgentID]

// Authored is implemented by anything with a message author.
type Authored interface {
	AuthorID() AgentID
}

// Actored is implemented by anything owned by an acting agent.
type Actored interface {
	ActorID() AgentID
}

// Timed is implemented by anything bound to a logical time.
type Timed interface {
	When() Timestamp
}

// Message is a single immutable statement. The payload is opaque to the
// framework core; only the policy extractor interprets it.
type Message struct {
	ID      MessageID `json:"id"`
	Author  AgentID   `json:"author"`
	Payload []byte    `json:"payload,omitempty"`
}

// AuthorID returns the message's author.
func (m Message) AuthorID() AgentID { return m.Author }

// Equal reports whether two messages carry the same identity, author and
// payload bytes.
func (m Message) Equal(other Message) bool {
	if m.ID != other.ID || m.Author != other.Author {
		return false
	}
	if len(m.Payload) != len(other.Payload) {
		return false
	}
	for i := range m.Payload {
		if m.Payload[i] != other.Payload[i] {
			return false
		}
	}
	return true
}
