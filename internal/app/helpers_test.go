package app

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/samaschen/timebomb-boardgame/internal/domain"
)

const testRoomCode = "ABCDEF"

func newTestRegistry(seed int64, opts ...Option) *Registry {
	return NewRegistry(rand.New(rand.NewSource(seed)), zerolog.Nop(), opts...)
}

func sessionN(i int) SessionID { return SessionID(fmt.Sprintf("sess-%d", i)) }
func nameN(i int) string       { return fmt.Sprintf("Player%d", i) }

// failIfError fails the test when any event in the batch reports a
// rejection.
func failIfError(t *testing.T, events []Event) {
	t.Helper()
	for _, ev := range events {
		if ev.Kind == EventError || ev.Kind == EventRejoinFailed {
			t.Fatalf("unexpected %s event: %+v", ev.Kind, ev.Payload)
		}
	}
}

func commandError(events []Event) *ErrorPayload {
	for _, ev := range events {
		if ev.Kind == EventError {
			p := ev.Payload.(ErrorPayload)
			return &p
		}
	}
	return nil
}

// wantRejected asserts the batch carries exactly the given rejection.
func wantRejected(t *testing.T, events []Event, want *CommandError) {
	t.Helper()
	p := commandError(events)
	if p == nil {
		t.Fatalf("expected rejection %q, got none", want.Message)
	}
	if p.Kind != want.Kind || p.Message != want.Message {
		t.Fatalf("rejection = %s %q, want %s %q", p.Kind, p.Message, want.Kind, want.Message)
	}
}

func wantRejoinFailed(t *testing.T, events []Event, want *CommandError) {
	t.Helper()
	for _, ev := range events {
		if ev.Kind == EventRejoinFailed {
			p := ev.Payload.(RejoinFailedPayload)
			if p.Message != want.Message {
				t.Fatalf("rejoinFailed message = %q, want %q", p.Message, want.Message)
			}
			return
		}
	}
	t.Fatalf("expected rejoinFailed %q, got none", want.Message)
}

func joinPlayers(t *testing.T, r *Registry, n int) []SessionID {
	t.Helper()
	sessions := make([]SessionID, n)
	for i := 0; i < n; i++ {
		sessions[i] = sessionN(i)
		failIfError(t, r.Join(testRoomCode, sessions[i], nameN(i)))
	}
	return sessions
}

func testRoom(t *testing.T, r *Registry) *Room {
	t.Helper()
	room, ok := r.room(testRoomCode)
	if !ok {
		t.Fatalf("room %s not found", testRoomCode)
	}
	return room
}

// toSetup joins n players, readies everyone, and has the host deal.
func toSetup(t *testing.T, r *Registry, n int) []SessionID {
	t.Helper()
	sessions := joinPlayers(t, r, n)
	for _, s := range sessions {
		failIfError(t, r.SetReady(testRoomCode, s, true))
	}
	failIfError(t, r.StartGame(testRoomCode, sessions[0]))
	return sessions
}

// toPlaying additionally walks the claim flow with zero claims.
func toPlaying(t *testing.T, r *Registry, n int) []SessionID {
	t.Helper()
	sessions := toSetup(t, r, n)
	for _, s := range sessions {
		failIfError(t, r.SubmitClaim(testRoomCode, s, 0))
		failIfError(t, r.MarkSetupReady(testRoomCode, s))
	}
	failIfError(t, r.StartPlaying(testRoomCode, sessions[0]))
	return sessions
}

func sessionFor(t *testing.T, room *Room, id domain.PlayerID) SessionID {
	t.Helper()
	for sess, p := range room.players {
		if p.ID == id {
			return sess
		}
	}
	t.Fatalf("no connected session for player %d", id)
	return ""
}

// displaySlotFor resolves the actor-relative display slot of an
// unrevealed wire of the wanted kind in the target's hand.
func displaySlotFor(t *testing.T, room *Room, actorID, targetID domain.PlayerID, kind domain.WireKind) int {
	t.Helper()
	st := room.state
	hand := st.Hands[targetID]
	perm := room.mappings.For(actorID, targetID, len(hand), room.rng)
	revealed := st.RevealedDeckIndices()
	for display, actual := range perm {
		deckIndex := hand[actual]
		if revealed[deckIndex] {
			continue
		}
		if st.WireDeck[deckIndex].Kind == kind {
			return display
		}
	}
	t.Fatalf("no unrevealed %s wire in player %d's hand", kind, targetID)
	return -1
}

func holdsUnrevealed(st *domain.GameState, id domain.PlayerID, kind domain.WireKind) bool {
	revealed := st.RevealedDeckIndices()
	for _, deckIndex := range st.Hands[id] {
		if !revealed[deckIndex] && st.WireDeck[deckIndex].Kind == kind {
			return true
		}
	}
	return false
}

// revealKind issues the current player's cut against some other player
// holding an unrevealed wire of the wanted kind.
func revealKind(t *testing.T, r *Registry, kind domain.WireKind) {
	t.Helper()
	room := testRoom(t, r)
	st := room.state
	actorID := st.CurrentTurn
	for _, id := range st.PlayerIDs() {
		if id == actorID || !holdsUnrevealed(st, id, kind) {
			continue
		}
		slot := displaySlotFor(t, room, actorID, id, kind)
		failIfError(t, r.SelectWire(testRoomCode, sessionFor(t, room, actorID), id, slot))
		return
	}
	t.Fatalf("no opponent of player %d holds an unrevealed %s wire", actorID, kind)
}

// moveWireTo swaps deck indices between hands until the given player
// holds the wanted wire, keeping both hands consistent.
func moveWireTo(t *testing.T, st *domain.GameState, holder domain.PlayerID, kind domain.WireKind) {
	t.Helper()
	if holdsUnrevealed(st, holder, kind) {
		return
	}
	for _, id := range st.PlayerIDs() {
		if id == holder {
			continue
		}
		for i, deckIndex := range st.Hands[id] {
			if st.WireDeck[deckIndex].Kind != kind {
				continue
			}
			st.Hands[id][i], st.Hands[holder][0] = st.Hands[holder][0], st.Hands[id][i]
			return
		}
	}
	t.Fatalf("no %s wire found to move to player %d", kind, holder)
}

func countEvents(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
