// Package datalog binds the policy boundary contract to Google Mangle
// Datalog.
//
// Message payloads are Mangle source: facts and rules. Extraction parses
// every payload and concatenates the clauses; the composed program is the
// policy. Three predicates are reserved:
//
//	violation(Reason)            derived => the policy is invalid
//	unknowable(Fact)             marks a fact as neither true nor false
//	effect(Id, Actor, Value)     binds an effect to the agent effecting it
//
// Everything else the program derives is a true fact of the denotation,
// identified by its textual atom form (e.g. "perm(/amy, /read)").
package datalog

import (
	"bytes"
	"fmt"
	"iter"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"github.com/Lut99/justact-go/pkg/collections"
	"github.com/Lut99/justact-go/pkg/model"
	"github.com/Lut99/justact-go/pkg/policy"
)

const (
	violationPred  = "violation"
	unknowablePred = "unknowable"
	effectPred     = "effect"
)

// SyntaxError reports that a message's payload is not well-formed Mangle
// source. It identifies the offending message.
type SyntaxError struct {
	ID  model.MessageID
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("message %q does not contain valid policy: %v", e.ID, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// ValidationError explains why a policy is semantically invalid: the
// reasons of every derived violation fact.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("policy violated: %s", strings.Join(e.Violations, "; "))
}

// Extractor extracts Mangle policies from message sets.
type Extractor struct{}

// NewExtractor returns a Mangle policy extractor.
func NewExtractor() Extractor { return Extractor{} }

// Extract parses every message payload as Mangle source and composes the
// clauses into one Policy. It fails with a *SyntaxError on the first
// payload that does not parse; store failures are passed through wrapped.
func (Extractor) Extract(msgs collections.Map[model.MessageID, model.Message]) (policy.Policy, error) {
	it, err := msgs.All()
	if err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	p := &Policy{}
	for msg := range it {
		unit, err := parse.Unit(bytes.NewReader(msg.Payload))
		if err != nil {
			return nil, &SyntaxError{ID: msg.ID, Err: err}
		}
		p.clauses = append(p.clauses, unit.Clauses...)
		p.decls = append(p.decls, unit.Decls...)
	}
	return p, nil
}

var _ policy.Extractor = Extractor{}

// Policy is a composed Mangle program.
type Policy struct {
	clauses []ast.Clause
	decls   []ast.Decl
}

// eval analyzes the program and evaluates it to fixpoint in a fresh fact
// store.
func (p *Policy) eval() (factstore.SimpleInMemoryStore, error) {
	unit := parse.SourceUnit{Clauses: p.clauses, Decls: p.decls}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return factstore.SimpleInMemoryStore{}, fmt.Errorf("analyze policy: %w", err)
	}
	store := factstore.NewSimpleInMemoryStore()
	if _, err := mengine.EvalProgramWithStats(info, store); err != nil {
		return factstore.SimpleInMemoryStore{}, fmt.Errorf("evaluate policy: %w", err)
	}
	return store, nil
}

// Validate evaluates the program and reports a *ValidationError carrying
// every derived violation reason, or nil if no violation fact is
// derivable.
func (p *Policy) Validate() error {
	store, err := p.eval()
	if err != nil {
		return err
	}
	var violations []string
	for _, sym := range store.ListPredicates() {
		if sym.Symbol != violationPred {
			continue
		}
		cb := func(a ast.Atom) error {
			reason := a.String()
			if len(a.Args) == 1 {
				reason = termText(a.Args[0])
			}
			violations = append(violations, reason)
			return nil
		}
		if err := store.GetFacts(ast.NewQuery(sym), cb); err != nil {
			return fmt.Errorf("collect violations: %w", err)
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Truths evaluates the program and returns its denotation.
func (p *Policy) Truths() (policy.Denotation, error) {
	store, err := p.eval()
	if err != nil {
		return nil, err
	}
	den := &Denotation{
		facts:      make(map[string]struct{}),
		unknowable: make(map[string]struct{}),
		effects:    make(map[string]policy.Effect),
	}
	for _, sym := range store.ListPredicates() {
		cb := func(a ast.Atom) error {
			switch {
			case sym.Symbol == unknowablePred && len(a.Args) == 1:
				den.unknowable[termText(a.Args[0])] = struct{}{}
				return nil
			case sym.Symbol == effectPred && len(a.Args) == 3:
				id := termText(a.Args[0])
				den.effects[id] = policy.Effect{
					ID:    id,
					Actor: model.AgentID(termText(a.Args[1])),
					Value: termText(a.Args[2]),
				}
				return nil
			}
			den.facts[a.String()] = struct{}{}
			return nil
		}
		if err := store.GetFacts(ast.NewQuery(sym), cb); err != nil {
			return nil, fmt.Errorf("collect denotation: %w", err)
		}
	}
	return den, nil
}

// Compose returns a new policy holding the clauses of both operands.
// other must be a Mangle policy.
func (p *Policy) Compose(other policy.Policy) (policy.Policy, error) {
	o, ok := other.(*Policy)
	if !ok {
		return nil, fmt.Errorf("cannot compose mangle policy with %T", other)
	}
	out := &Policy{
		clauses: make([]ast.Clause, 0, len(p.clauses)+len(o.clauses)),
		decls:   make([]ast.Decl, 0, len(p.decls)+len(o.decls)),
	}
	out.clauses = append(out.clauses, p.clauses...)
	out.clauses = append(out.clauses, o.clauses...)
	out.decls = append(out.decls, p.decls...)
	out.decls = append(out.decls, o.decls...)
	return out, nil
}

var _ policy.Policy = (*Policy)(nil)

// Denotation is the evaluated truth/effect valuation of a Mangle policy.
type Denotation struct {
	facts      map[string]struct{}
	unknowable map[string]struct{}
	effects    map[string]policy.Effect
}

// TruthOf returns Unknowable for facts the policy marked as such, True for
// derived facts, and False otherwise (closed world).
func (d *Denotation) TruthOf(fact string) policy.Truth {
	if _, ok := d.unknowable[fact]; ok {
		return policy.Unknowable
	}
	if _, ok := d.facts[fact]; ok {
		return policy.True
	}
	return policy.False
}

// EffectOf returns the effect bound to id, if the policy derived one.
func (d *Denotation) EffectOf(id string) (policy.Effect, bool) {
	e, ok := d.effects[id]
	return e, ok
}

// Facts returns the derived true facts in unspecified order.
func (d *Denotation) Facts() iter.Seq[string] {
	return func(yield func(string) bool) {
		for f := range d.facts {
			if !yield(f) {
				return
			}
		}
	}
}

var _ policy.Denotation = (*Denotation)(nil)

// termText renders a constant argument as a bare string: name constants
// lose their leading slash, string constants their quotes.
func termText(t ast.BaseTerm) string {
	c, ok := t.(ast.Constant)
	if !ok {
		return t.String()
	}
	switch c.Type {
	case ast.NameType:
		return strings.TrimPrefix(c.Symbol, "/")
	case ast.StringType:
		return c.Symbol
	default:
		return c.String()
	}
}
