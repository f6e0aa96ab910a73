// Package policy defines the boundary contract between the verification
// core and whatever policy language the host plugs in.
//
// The core never interprets message payloads itself: it hands a map of
// messages to an Extractor and works with the resulting Policy and
// Denotation values. A concrete binding (e.g. the Datalog one in
// pkg/datalog) implements these interfaces.
package policy

import (
	"iter"

	"github.com/Lut99/justact-go/pkg/collections"
	"github.com/Lut99/justact-go/pkg/model"
)

// Truth is a three-valued, closed-world truth value. Absence of a fact
// means False unless the language explicitly marks it Unknowable.
type Truth int8

const (
	False Truth = iota
	True
	Unknowable
)

// String returns the truth value's name.
func (t Truth) String() string {
	switch t {
	case False:
		return "false"
	case True:
		return "true"
	case Unknowable:
		return "unknowable"
	default:
		return "invalid"
	}
}

// Effect is the outcome a policy attaches to an effect identifier: which
// agent effects it, and with what value.
type Effect struct {
	ID    string
	Actor model.AgentID
	Value string
}

// Denotation is the truth valuation derived from a policy: a set of facts
// that hold, queried under the closed-world assumption, plus the effects
// the policy produces.
type Denotation interface {
	// TruthOf returns the truth of a fact identifier. Facts not derived
	// and not marked unknowable are False.
	TruthOf(fact string) Truth

	// EffectOf returns the effect bound to an effect identifier, if any.
	EffectOf(id string) (Effect, bool)

	// Facts returns a restartable sequence over the derived true facts.
	Facts() iter.Seq[string]
}

// Policy is a parsed policy value extracted from a message set.
type Policy interface {
	// Validate reports whether the policy is semantically valid. A nil
	// return means valid; otherwise the error explains the violation.
	// Semantic invalidity is a property of the policy, not a failure of
	// the extraction machinery.
	Validate() error

	// Truths computes the policy's denotation.
	Truths() (Denotation, error)

	// Compose returns a new policy combining this one with other, so a
	// justification can be extracted and composed message by message.
	// Implementations may reject policies from a different binding.
	Compose(other Policy) (Policy, error)
}

// Extractor turns a map of messages into a Policy. It fails if and only if
// the combined payloads are not syntactically well-formed; semantic
// problems surface later through Policy.Validate.
type Extractor interface {
	Extract(msgs collections.Map[model.MessageID, model.Message]) (Policy, error)
}
