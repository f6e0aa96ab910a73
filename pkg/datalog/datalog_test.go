package datalog

import (
	"errors"
	"testing"

	"github.com/Lut99/justact-go/pkg/model"
	"github.com/Lut99/justact-go/pkg/policy"
)

func msg(id, author, payload string) model.Message {
	return model.Message{ID: model.MessageID(id), Author: model.AgentID(author), Payload: []byte(payload)}
}

func extract(t *testing.T, msgs ...model.Message) policy.Policy {
	t.Helper()
	p, err := NewExtractor().Extract(model.NewMessageSet(msgs...).Map())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return p
}

func TestExtractSyntaxError(t *testing.T) {
	_, err := NewExtractor().Extract(model.NewMessageSet(
		msg("good", "amy", "member(/amy)."),
		msg("zbad", "bob", "this is ?? not a policy"),
	).Map())

	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("Extract = %v, want *SyntaxError", err)
	}
	if syn.ID != "zbad" {
		t.Errorf("offending message = %s, want zbad", syn.ID)
	}
}

func TestValidatePassesWithoutViolation(t *testing.T) {
	p := extract(t,
		msg("m1", "amy", "member(/amy)."),
		msg("m2", "consortium", "allowed(X) :- member(X)."),
	)
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateReportsViolations(t *testing.T) {
	p := extract(t,
		msg("m1", "eve", "banned(/eve). member(/eve)."),
		msg("m2", "consortium", "violation(X) :- member(X), banned(X)."),
	)

	err := p.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate = %v, want *ValidationError", err)
	}
	if len(verr.Violations) != 1 || verr.Violations[0] != "eve" {
		t.Errorf("violations = %v, want [eve]", verr.Violations)
	}
}

func TestTruthsClosedWorld(t *testing.T) {
	p := extract(t,
		msg("m1", "amy", "member(/amy)."),
		msg("m2", "consortium", "allowed(X) :- member(X)."),
	)

	den, err := p.Truths()
	if err != nil {
		t.Fatalf("Truths: %v", err)
	}
	if got := den.TruthOf("allowed(/amy)"); got != policy.True {
		t.Errorf("TruthOf(allowed(/amy)) = %v, want True", got)
	}
	if got := den.TruthOf("allowed(/bob)"); got != policy.False {
		t.Errorf("TruthOf(allowed(/bob)) = %v, want False", got)
	}
}

func TestTruthsUnknowable(t *testing.T) {
	p := extract(t, msg("m1", "amy", `unknowable("weather").`))

	den, err := p.Truths()
	if err != nil {
		t.Fatalf("Truths: %v", err)
	}
	if got := den.TruthOf("weather"); got != policy.Unknowable {
		t.Errorf("TruthOf(weather) = %v, want Unknowable", got)
	}
}

func TestTruthsEffects(t *testing.T) {
	p := extract(t, msg("m1", "amy", "effect(/a1, /amy, /read)."))

	den, err := p.Truths()
	if err != nil {
		t.Fatalf("Truths: %v", err)
	}
	eff, ok := den.EffectOf("a1")
	if !ok {
		t.Fatal("EffectOf(a1) not found")
	}
	if eff.Actor != "amy" || eff.Value != "read" {
		t.Errorf("effect = %+v", eff)
	}
	if _, ok := den.EffectOf("a2"); ok {
		t.Error("EffectOf(a2) reported an effect")
	}
}

func TestCompose(t *testing.T) {
	rules := extract(t, msg("m1", "consortium", "allowed(X) :- member(X)."))
	facts := extract(t, msg("m2", "amy", "member(/amy)."))

	// Neither fragment derives the permission alone.
	den, err := rules.Truths()
	if err != nil {
		t.Fatalf("Truths: %v", err)
	}
	if den.TruthOf("allowed(/amy)") != policy.False {
		t.Error("rules alone derive the permission")
	}

	composed, err := rules.Compose(facts)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	den, err = composed.Truths()
	if err != nil {
		t.Fatalf("Truths: %v", err)
	}
	if den.TruthOf("allowed(/amy)") != policy.True {
		t.Error("composed policy does not derive the permission")
	}
}

func TestFactsEnumeration(t *testing.T) {
	p := extract(t, msg("m1", "amy", "member(/amy). member(/bob)."))
	den, err := p.Truths()
	if err != nil {
		t.Fatalf("Truths: %v", err)
	}
	got := map[string]bool{}
	for f := range den.Facts() {
		got[f] = true
	}
	if !got["member(/amy)"] || !got["member(/bob)"] {
		t.Errorf("facts = %v", got)
	}
}
