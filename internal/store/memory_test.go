package store

import (
	"context"
	"errors"
	"testing"

	"github.com/fishbowlhq/go-server/internal/game"
)

func sampleSession(code string) *game.Session {
	return &game.Session{
		Code:   code,
		HostID: "host",
		Teams: []game.Team{
			{ID: "a", Name: "Alpha", Members: []string{"p1", "p2"}},
		},
		Words:            []game.Word{{ID: "w1", Text: "igloo"}},
		RoundSeconds:     60,
		Round:            1,
		Phase:            game.PhaseTeamPrep,
		RemainingWordIDs: []string{"w1"},
		AllWordIDs:       []string{"w1"},
		Rotation:         map[string]int{"a": 0},
		TurnsTaken:       map[string]int{},
		Scores:           map[string]map[int]int{},
	}
}

func TestMemoryPutGetDelete(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if _, err := st.Get(ctx, "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing room: got %v, want ErrNotFound", err)
	}

	doc := sampleSession("ROOM1")
	if err := st.Put(ctx, doc); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := st.Get(ctx, "ROOM1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Code != "ROOM1" || len(got.Words) != 1 {
		t.Errorf("got %+v", got)
	}

	if err := st.Delete(ctx, "ROOM1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, "ROOM1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
	if err := st.Delete(ctx, "ROOM1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: got %v, want ErrNotFound", err)
	}
}

// Readers of the same revision must not share mutable state.
func TestMemoryGetReturnsIndependentCopies(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.Put(ctx, sampleSession("ROOM1")); err != nil {
		t.Fatal(err)
	}

	first, _ := st.Get(ctx, "ROOM1")
	second, _ := st.Get(ctx, "ROOM1")
	first.Phase = game.PhasePlaying
	first.RemainingWordIDs = nil
	first.Rotation["a"] = 9

	if second.Phase != game.PhaseTeamPrep || len(second.RemainingWordIDs) != 1 || second.Rotation["a"] != 0 {
		t.Error("mutating one read leaked into another")
	}
	stored, _ := st.Get(ctx, "ROOM1")
	if stored.Phase != game.PhaseTeamPrep {
		t.Error("mutating a read leaked into the store")
	}
}

// Mutating a document after Put must not reach back into the store.
func TestMemoryPutStoresACopy(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	doc := sampleSession("ROOM1")
	if err := st.Put(ctx, doc); err != nil {
		t.Fatal(err)
	}
	doc.Phase = game.PhaseFinished

	stored, _ := st.Get(ctx, "ROOM1")
	if stored.Phase != game.PhaseTeamPrep {
		t.Error("caller's later mutation leaked into the store")
	}
}

func TestMemorySubscribe(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	var updates []*game.Session
	cancel := st.Subscribe("ROOM1", func(doc *game.Session) {
		updates = append(updates, doc)
	})

	var otherRoom int
	cancelOther := st.Subscribe("ROOM2", func(doc *game.Session) { otherRoom++ })
	defer cancelOther()

	if err := st.Put(ctx, sampleSession("ROOM1")); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(ctx, "ROOM1"); err != nil {
		t.Fatal(err)
	}

	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	if updates[0] == nil || updates[0].Code != "ROOM1" {
		t.Errorf("first update = %+v, want the written document", updates[0])
	}
	if updates[1] != nil {
		t.Error("deletion must deliver a nil document")
	}
	if otherRoom != 0 {
		t.Errorf("unrelated room saw %d updates", otherRoom)
	}

	// After cancel, further writes are not delivered. Cancel is idempotent.
	cancel()
	cancel()
	if err := st.Put(ctx, sampleSession("ROOM1")); err != nil {
		t.Fatal(err)
	}
	if len(updates) != 2 {
		t.Errorf("cancelled subscriber still received updates")
	}
}
