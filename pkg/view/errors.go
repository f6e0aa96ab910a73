package view

import (
	"fmt"

	"github.com/Lut99/justact-go/pkg/model"
)

// StoreKind names which underlying store of a multi-store operation
// failed.
type StoreKind int

const (
	KindAgreements StoreKind = iota
	KindStatements
	KindEnactments
	KindTimes
)

// String returns the store kind's name.
func (k StoreKind) String() string {
	switch k {
	case KindAgreements:
		return "agreements"
	case KindStatements:
		return "statements"
	case KindEnactments:
		return "enactments"
	case KindTimes:
		return "times"
	default:
		return fmt.Sprintf("StoreKind(%d)", int(k))
	}
}

// StoreError wraps a store-specific failure with the kind of store it came
// from, so callers crossing a multi-store boundary can still tell the
// sources apart. The underlying error is propagated unchanged.
type StoreError struct {
	Kind StoreKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store: %v", e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// StatementGetError reports that resolving a statement by identity failed
// because one of the underlying stores errored. Absence of the statement
// is not an error and never produces this.
type StatementGetError struct {
	ID  model.MessageID
	Err *StoreError
}

func (e *StatementGetError) Error() string {
	return fmt.Sprintf("failed to get statement %q: %v", e.ID, e.Err)
}

func (e *StatementGetError) Unwrap() error { return e.Err }

// StatementsIterError reports that enumerating all visible statements
// failed because one of the underlying stores could not produce its
// iterator.
type StatementsIterError struct {
	Err *StoreError
}

func (e *StatementsIterError) Error() string {
	return fmt.Sprintf("failed to iterate over the statements in a view: %v", e.Err)
}

func (e *StatementsIterError) Unwrap() error { return e.Err }

// IllegalStateError reports an attempt to state a message under someone
// else's authorship. Caller-local and always recoverable; no state is
// touched.
type IllegalStateError struct {
	Owner  model.AgentID
	Author model.AgentID
	ID     model.MessageID
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("agent %q cannot state message %q authored by %q", e.Owner, e.ID, e.Author)
}

// IllegalEnactError reports an attempt to enact an action owned by a
// different actor.
type IllegalEnactError struct {
	Owner model.AgentID
	Actor model.AgentID
	ID    model.ActionID
}

func (e *IllegalEnactError) Error() string {
	return fmt.Sprintf("agent %q cannot enact action %q owned by %q", e.Owner, e.ID, e.Actor)
}

// IllegalGossipError reports an attempt to forward a message the agent
// does not hold in its own stated set.
type IllegalGossipError struct {
	Owner model.AgentID
	ID    model.MessageID
}

func (e *IllegalGossipError) Error() string {
	return fmt.Sprintf("agent %q cannot gossip message %q it does not hold", e.Owner, e.ID)
}
