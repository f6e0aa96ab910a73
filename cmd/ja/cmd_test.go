package main

import (
	"path/filepath"
	"testing"

	"github.com/Lut99/justact-go/pkg/collections"
	"github.com/Lut99/justact-go/pkg/model"
	"github.com/Lut99/justact-go/pkg/store"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return &app{store: s}
}

func enactment(id, actor string, taken model.Timestamp) model.Action {
	return model.Action{
		ID:    model.ActionID(id),
		Actor: model.AgentID(actor),
		Basis: model.Agreement{
			Message: model.Message{ID: "pact", Author: "consortium", Payload: []byte("rule.")},
			At:      taken,
		},
		Extra:  model.NewMessageSet(),
		Enacts: model.Message{ID: model.MessageID(id + "-deed"), Author: model.AgentID(actor)},
		Taken:  taken,
	}
}

func TestAdvanceWithoutEnactments(t *testing.T) {
	a := newTestApp(t)

	if code := a.cmdAdvance([]string{"--agent", "consortium"}); code != 0 {
		t.Fatalf("cmdAdvance = %d, want 0", code)
	}
	cur, err := a.store.Times().Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur != 1 {
		t.Errorf("current = %d, want 1", cur)
	}
}

func TestAdvanceObservesDeclaredEnactmentTimes(t *testing.T) {
	a := newTestApp(t)

	// An agent declared an enactment at time 9 while the synchronizer is
	// still at 0: the minted time must land past the declared stamp.
	act := enactment("a1", "amy", 9)
	if err := a.store.Enacted("amy").Add(collections.Everyone[model.AgentID](), act); err != nil {
		t.Fatalf("seed enactment: %v", err)
	}

	if code := a.cmdAdvance([]string{"--agent", "consortium"}); code != 0 {
		t.Fatalf("cmdAdvance = %d, want 0", code)
	}
	cur, err := a.store.Times().Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur != 10 {
		t.Errorf("current = %d, want 10 (observed stamp + 1)", cur)
	}
}

func TestAdvanceStaleEnactmentsStillMintNextTime(t *testing.T) {
	a := newTestApp(t)
	if err := a.store.Times().Advance(5); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	act := enactment("a1", "amy", 3)
	if err := a.store.Enacted("amy").Add(collections.Everyone[model.AgentID](), act); err != nil {
		t.Fatalf("seed enactment: %v", err)
	}

	if code := a.cmdAdvance([]string{"--agent", "consortium"}); code != 0 {
		t.Fatalf("cmdAdvance = %d, want 0", code)
	}
	cur, _ := a.store.Times().Current()
	if cur != 6 {
		t.Errorf("current = %d, want 6 (stale stamp must not pull time back)", cur)
	}
}

func TestLatestEnactmentTotalOrder(t *testing.T) {
	a := newTestApp(t)
	sync := a.store.ViewFor("consortium")

	seed := func(act model.Action) {
		t.Helper()
		if err := a.store.Enacted(act.Actor).Add(collections.Everyone[model.AgentID](), act); err != nil {
			t.Fatalf("seed enactment: %v", err)
		}
	}
	seed(enactment("a1", "zoe", 4))
	seed(enactment("a2", "amy", 7))
	seed(enactment("a3", "bob", 7))

	// The declared time decides; ties break on the actor, so every
	// synchronizer candidate resolves the same maximal event.
	best, ok, err := latestEnactment(sync)
	if err != nil || !ok {
		t.Fatalf("latestEnactment = (_, %v, %v)", ok, err)
	}
	if best.ID != "a3" {
		t.Errorf("latest = %s (actor %s), want a3 (bob wins the tie at 7)", best.ID, best.Actor)
	}
}

func TestAdvanceRejectsNonMonotonicTarget(t *testing.T) {
	a := newTestApp(t)
	if err := a.store.Times().Advance(5); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if code := a.cmdAdvance([]string{"--agent", "consortium", "--to", "5"}); code != 1 {
		t.Errorf("cmdAdvance(--to 5) = %d, want 1", code)
	}
	cur, _ := a.store.Times().Current()
	if cur != 5 {
		t.Errorf("current = %d, want 5 untouched", cur)
	}
}
