package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Lut99/justact-go/pkg/collections"
	"github.com/Lut99/justact-go/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func msg(id, author, payload string) model.Message {
	return model.Message{ID: model.MessageID(id), Author: model.AgentID(author), Payload: []byte(payload)}
}

func TestRegisterAgentIdempotent(t *testing.T) {
	s := newTestStore(t)

	first, err := s.RegisterAgent("amy")
	if err != nil {
		t.Fatalf("RegisterAgent: %v", err)
	}
	second, err := s.RegisterAgent("amy")
	if err != nil {
		t.Fatalf("re-RegisterAgent: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("IDs differ: %s vs %s", first.ID, second.ID)
	}
	if second.LastSeen.Before(first.LastSeen) {
		t.Error("re-registration moved last_seen backwards")
	}

	agents, err := s.ListAgents()
	if err != nil {
		t.Fatalf("ListAgents: %v", err)
	}
	if len(agents) != 1 {
		t.Errorf("ListAgents returned %d agents, want 1", len(agents))
	}
}

func TestTimesSeededAtZero(t *testing.T) {
	s := newTestStore(t)

	cur, err := s.Times().Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur != 0 {
		t.Errorf("fresh database current time = %d, want 0", cur)
	}
}

func TestTimesAdvance(t *testing.T) {
	s := newTestStore(t)
	times := s.Times()

	if err := times.Advance(3); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if err := times.Advance(7); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	cur, err := times.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur != 7 {
		t.Errorf("current = %d, want 7", cur)
	}

	seq, err := times.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	var known []model.Timestamp
	for ts := range seq {
		known = append(known, ts)
	}
	want := []model.Timestamp{0, 3, 7}
	if len(known) != len(want) {
		t.Fatalf("known times = %v, want %v", known, want)
	}
	for i := range want {
		if known[i] != want[i] {
			t.Errorf("known[%d] = %d, want %d", i, known[i], want[i])
		}
	}
}

func TestAgreementsAddAndReplace(t *testing.T) {
	s := newTestStore(t)
	agreed := s.Agreements()

	a1 := model.Agreement{Message: msg("pact", "consortium", "v1"), At: 1}
	if _, replaced, err := agreed.Add(a1); err != nil || replaced {
		t.Fatalf("Add = (_, %v, %v), want fresh insert", replaced, err)
	}

	// Replace-by-id returns the previous agreement.
	a2 := model.Agreement{Message: msg("pact", "consortium", "v2"), At: 2}
	prev, replaced, err := agreed.Add(a2)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !replaced || !prev.Equal(a1) {
		t.Errorf("Add = (%+v, %v), want the v1 agreement back", prev, replaced)
	}

	got, ok, err := agreed.Get("pact")
	if err != nil || !ok {
		t.Fatalf("Get = (_, %v, %v)", ok, err)
	}
	if !got.Equal(a2) {
		t.Errorf("Get = %+v, want the v2 agreement", got)
	}

	// Wholesale rollover.
	next := model.Agreement{Message: msg("newpact", "consortium", "v3"), At: 3}
	if err := agreed.Replace([]model.Agreement{next}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if ok, _ := collections.Contains(agreed, model.MessageID("pact")); ok {
		t.Error("old agreement survived Replace")
	}
	if n, _ := agreed.Len(); n != 1 {
		t.Errorf("Len after Replace = %d, want 1", n)
	}
}

func TestAgreementsConcurrentAddSameID(t *testing.T) {
	s := newTestStore(t)
	agreed := s.Agreements()

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)
	replaceds := make([]bool, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a := model.Agreement{Message: msg("pact", "consortium", fmt.Sprintf("v%d", i)), At: 1}
			_, replaceds[i], errs[i] = agreed.Add(a)
		}()
	}
	wg.Wait()

	fresh := 0
	for i := range writers {
		if errs[i] != nil {
			t.Fatalf("writer %d: %v", i, errs[i])
		}
		if !replaceds[i] {
			fresh++
		}
	}
	// The read and the upsert share a transaction, so exactly one writer
	// can have seen an empty table.
	if fresh != 1 {
		t.Errorf("%d writers reported a fresh insert, want exactly 1", fresh)
	}

	if n, _ := agreed.Len(); n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
	got, ok, err := agreed.Get("pact")
	if err != nil || !ok {
		t.Fatalf("Get = (_, %v, %v)", ok, err)
	}
	if got.AuthorID() != "consortium" || got.At != 1 {
		t.Errorf("Get = %+v, want one of the written agreements", got)
	}
}

func TestStatementVisibility(t *testing.T) {
	s := newTestStore(t)
	amy := s.Stated("amy")
	bob := s.Stated("bob")

	// Broadcast reaches everyone, including agents never registered.
	if err := amy.Add(collections.Everyone[model.AgentID](), msg("pub", "amy", "hello")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// A targeted statement stays private to its recipient.
	if err := amy.Add(collections.One[model.AgentID]("bob"), msg("whisper", "amy", "psst")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, ok, _ := bob.Get("pub"); !ok {
		t.Error("bob misses the broadcast")
	}
	if _, ok, _ := bob.Get("whisper"); !ok {
		t.Error("bob misses his targeted statement")
	}
	if _, ok, _ := amy.Get("whisper"); ok {
		t.Error("amy sees a statement addressed to bob")
	}

	if n, _ := bob.Len(); n != 2 {
		t.Errorf("bob Len = %d, want 2", n)
	}
	if n, _ := amy.Len(); n != 1 {
		t.Errorf("amy Len = %d, want 1", n)
	}
}

func TestStatementDedupAcrossRecipientRows(t *testing.T) {
	s := newTestStore(t)
	amy := s.Stated("amy")

	m := msg("m1", "amy", "x")
	// Delivered both broadcast and targeted: one logical statement.
	if err := amy.Add(collections.Everyone[model.AgentID](), m); err != nil {
		t.Fatal(err)
	}
	if err := amy.Add(collections.One[model.AgentID]("amy"), m); err != nil {
		t.Fatal(err)
	}

	if n, _ := amy.Len(); n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
	seq, err := amy.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	count := 0
	for range seq {
		count++
	}
	if count != 1 {
		t.Errorf("All yielded %d messages, want 1", count)
	}
}

func TestEnactmentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	amy := s.Enacted("amy")
	bob := s.Enacted("bob")

	act := model.Action{
		ID:     "a1",
		Actor:  "amy",
		Basis:  model.Agreement{Message: msg("pact", "consortium", "rule."), At: 2},
		Extra:  model.NewMessageSet(msg("claim", "amy", "fact.")),
		Enacts: msg("deed", "amy", "effect."),
		Taken:  2,
	}
	if err := amy.Add(collections.Everyone[model.AgentID](), act); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, ok, err := bob.Get("a1")
	if err != nil || !ok {
		t.Fatalf("Get = (_, %v, %v)", ok, err)
	}
	if got.Actor != "amy" || got.Taken != 2 {
		t.Errorf("scalars changed: %+v", got)
	}
	if !got.Basis.Equal(act.Basis) || !got.Extra.Equal(act.Extra) || !got.Enacts.Equal(act.Enacts) {
		t.Error("action payload changed crossing the database")
	}
}

func TestViewForEndToEnd(t *testing.T) {
	s := newTestStore(t)
	amy := s.ViewFor("amy")
	bob := s.ViewFor("bob")

	if err := amy.State(msg("m1", "amy", "member(/amy).")); err != nil {
		t.Fatalf("State: %v", err)
	}
	if _, ok, err := bob.GetStatement("m1"); err != nil || !ok {
		t.Fatalf("bob GetStatement(m1) = (_, %v, %v), want visible", ok, err)
	}

	// Synchronizer rollover is visible to every agent identically.
	sync := s.ViewFor("consortium")
	m, _, _ := bob.GetStatement("m1")
	if err := sync.Agree([]model.Agreement{{Message: m, At: 1}}); err != nil {
		t.Fatalf("Agree: %v", err)
	}
	if err := sync.Advance(1); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	for _, v := range []struct {
		name string
		v    interface {
			GetStatement(model.MessageID) (model.Message, bool, error)
		}
	}{{"amy", amy}, {"bob", bob}} {
		if _, ok, err := v.v.GetStatement("m1"); err != nil || !ok {
			t.Errorf("%s lost sight of the agreement: (%v, %v)", v.name, ok, err)
		}
	}
	cur, err := amy.Times.Current()
	if err != nil || cur != 1 {
		t.Errorf("amy Current = (%d, %v), want 1", cur, err)
	}
}
