// Package view implements the composite projection an agent has on the
// system: the globally synchronized agreement and time stores combined
// with the agent's partial, per-recipient views on stated messages and
// enacted actions.
//
// A View is not persisted; the host constructs one fresh (or incrementally
// refreshed) per activation. Its invariant is that Agreed and Times are
// identical across all agents at any instant, while Stated and Enacted may
// legitimately differ between agents.
package view

import (
	"iter"

	"github.com/Lut99/justact-go/pkg/collections"
	"github.com/Lut99/justact-go/pkg/model"
)

// AgreementStore is the synchronized agreement collection. Besides the
// usual synchronized mutation it supports wholesale replacement, used only
// for time/agreement rollover by the synchronizer role.
type AgreementStore = collections.ReplaceMap[model.MessageID, model.Agreement]

// StatementStore is an agent's asynchronous view on stated messages.
type StatementStore = collections.AsyncMap[model.AgentID, model.MessageID, model.Message]

// EnactmentStore is an agent's asynchronous view on enacted actions.
type EnactmentStore = collections.AsyncMap[model.AgentID, model.ActionID, model.Action]

// View is what one agent knows: the synchronized times and agreements,
// plus the statements and enactments that were delivered to it.
//
// The mutating methods enforce the core's only access-control invariant
// locally per call: an agent mutates asynchronous entries exclusively
// under its own identity. Agree and the Times.Advance path are reserved
// for the synchronizer role by convention; the runtime hands them only to
// synchronizers.
type View struct {
	// ID is the identity of the agent this view belongs to.
	ID model.AgentID
	// Times is the synchronized set of logical times, one current.
	Times Times
	// Agreed is the synchronized set of agreements.
	Agreed AgreementStore
	// Stated holds the messages visible to this agent.
	Stated StatementStore
	// Enacted holds the actions visible to this agent.
	Enacted EnactmentStore
}

// GetStatement resolves a message identity across everything the agent can
// see, in fixed precedence order: the agreed basis messages first, then
// directly stated messages, then messages embedded in enacted actions
// (basis, extra, enactment). The first match wins. Absence is reported as
// found == false with a nil error; only an underlying store failure
// produces a *StatementGetError.
func (v *View) GetStatement(id model.MessageID) (model.Message, bool, error) {
	agree, ok, err := v.Agreed.Get(id)
	if err != nil {
		return model.Message{}, false, &StatementGetError{ID: id, Err: &StoreError{Kind: KindAgreements, Err: err}}
	}
	if ok {
		return agree.Message, true, nil
	}

	msg, ok, err := v.Stated.Get(id)
	if err != nil {
		return model.Message{}, false, &StatementGetError{ID: id, Err: &StoreError{Kind: KindStatements, Err: err}}
	}
	if ok {
		return msg, true, nil
	}

	acts, err := v.Enacted.All()
	if err != nil {
		return model.Message{}, false, &StatementGetError{ID: id, Err: &StoreError{Kind: KindEnactments, Err: err}}
	}
	for act := range acts {
		if act.Basis.Message.ID == id {
			return act.Basis.Message, true, nil
		}
		if m, ok := act.Extra.Get(id); ok {
			return m, true, nil
		}
		if act.Enacts.ID == id {
			return act.Enacts, true, nil
		}
	}
	return model.Message{}, false, nil
}

// Statements returns a lazy sequence over every message visible to the
// agent: agreement messages, then stated messages, then the full payload
// (basis, extra, enactment) of every enacted action. The sequence is a
// multiset projection — duplicates across sources are not collapsed;
// callers wanting set semantics build a model.MessageSet from it.
func (v *View) Statements() (iter.Seq[model.Message], error) {
	agreed, err := v.Agreed.All()
	if err != nil {
		return nil, &StatementsIterError{Err: &StoreError{Kind: KindAgreements, Err: err}}
	}
	stated, err := v.Stated.All()
	if err != nil {
		return nil, &StatementsIterError{Err: &StoreError{Kind: KindStatements, Err: err}}
	}
	enacted, err := v.Enacted.All()
	if err != nil {
		return nil, &StatementsIterError{Err: &StoreError{Kind: KindEnactments, Err: err}}
	}

	return func(yield func(model.Message) bool) {
		for agree := range agreed {
			if !yield(agree.Message) {
				return
			}
		}
		for msg := range stated {
			if !yield(msg) {
				return
			}
		}
		for act := range enacted {
			if !yield(act.Basis.Message) {
				return
			}
			for m := range act.Extra.All() {
				if !yield(m) {
					return
				}
			}
			if !yield(act.Enacts) {
				return
			}
		}
	}, nil
}

// State publishes a message to all agents. Fails with *IllegalStateError
// unless the view's agent authored it.
func (v *View) State(msg model.Message) error {
	if msg.Author != v.ID {
		return &IllegalStateError{Owner: v.ID, Author: msg.Author, ID: msg.ID}
	}
	return v.Stated.Add(collections.Everyone[model.AgentID](), msg)
}

// Gossip forwards a message the agent already holds to the selected
// recipients. Fails with *IllegalGossipError if the message is absent from
// the agent's own stated set: an agent can only forward what it knows.
// The copy forwarded is the one the agent holds.
func (v *View) Gossip(rec model.Recipient, id model.MessageID) error {
	msg, ok, err := v.Stated.Get(id)
	if err != nil {
		return &StoreError{Kind: KindStatements, Err: err}
	}
	if !ok {
		return &IllegalGossipError{Owner: v.ID, ID: id}
	}
	return v.Stated.Add(rec, msg)
}

// Enact publishes an action to all agents. Fails with *IllegalEnactError
// unless the view's agent is the actor.
func (v *View) Enact(act model.Action) error {
	if act.Actor != v.ID {
		return &IllegalEnactError{Owner: v.ID, Actor: act.Actor, ID: act.ID}
	}
	return v.Enacted.Add(collections.Everyone[model.AgentID](), act)
}

// Agree replaces the synchronized agreement set wholesale. Reserved for
// the synchronizer role; used for time/agreement rollover together with
// Advance.
func (v *View) Agree(agreements []model.Agreement) error {
	return v.Agreed.Replace(agreements)
}

// Advance records t as a known logical time and makes it current.
// Reserved for the synchronizer role.
func (v *View) Advance(t model.Timestamp) error {
	return v.Times.Advance(t)
}
