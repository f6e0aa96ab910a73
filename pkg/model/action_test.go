package model

import (
	"encoding/json"
	"testing"
)

func TestActionJustificationFoldsBasisAndEnactment(t *testing.T) {
	basis := msg("pact", "consortium", "allowed(X) :- member(X).")
	extra := msg("claim", "amy", "member(amy).")
	enacts := msg("deed", "amy", "reads(amy, data).")

	act := Action{
		ID:     "a1",
		Actor:  "amy",
		Basis:  Agreement{Message: basis, At: 3},
		Extra:  NewMessageSet(extra),
		Enacts: enacts,
		Taken:  3,
	}

	just := act.Justification()
	if just.Len() != 3 {
		t.Fatalf("justification Len() = %d, want 3", just.Len())
	}
	for _, id := range []MessageID{"pact", "claim", "deed"} {
		if !just.Contains(id) {
			t.Errorf("justification missing %s", id)
		}
	}
}

func TestActionJustificationOverlap(t *testing.T) {
	// Restating the basis in extra must not produce a duplicate.
	basis := msg("pact", "consortium", "allowed(X) :- member(X).")
	act := Action{
		ID:     "a1",
		Actor:  "amy",
		Basis:  Agreement{Message: basis, At: 1},
		Extra:  NewMessageSet(basis),
		Enacts: msg("deed", "amy", "reads(amy, data)."),
		Taken:  1,
	}
	if n := act.Justification().Len(); n != 2 {
		t.Errorf("justification Len() = %d, want 2", n)
	}
}

func TestAgreementEqual(t *testing.T) {
	m := msg("pact", "consortium", "x")
	a := Agreement{Message: m, At: 2}

	if !a.Equal(Agreement{Message: m, At: 2}) {
		t.Error("identical agreements not equal")
	}
	if a.Equal(Agreement{Message: m, At: 3}) {
		t.Error("agreements at different times reported equal")
	}
	if a.Equal(Agreement{Message: msg("pact", "consortium", "y"), At: 2}) {
		t.Error("agreements over different payloads reported equal")
	}
}

func TestActionJSONRoundTrip(t *testing.T) {
	act := Action{
		ID:     "a1",
		Actor:  "amy",
		Basis:  Agreement{Message: msg("pact", "consortium", "rule."), At: 5},
		Extra:  NewMessageSet(msg("claim", "amy", "fact.")),
		Enacts: msg("deed", "amy", "effect."),
		Taken:  5,
	}

	data, err := json.Marshal(act)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Action
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != act.ID || got.Actor != act.Actor || got.Taken != act.Taken {
		t.Errorf("scalars changed: %+v", got)
	}
	if !got.Basis.Equal(act.Basis) {
		t.Error("basis changed in round trip")
	}
	if !got.Extra.Equal(act.Extra) {
		t.Error("extra set changed in round trip")
	}
	if !got.Enacts.Equal(act.Enacts) {
		t.Error("enacted message changed in round trip")
	}
}
