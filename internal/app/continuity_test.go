package app

import (
	"testing"

	"github.com/samaschen/timebomb-boardgame/internal/domain"
)

func TestDisconnectInLobbyRemovesOutright(t *testing.T) {
	r := newTestRegistry(1)
	sessions := joinPlayers(t, r, 2)
	room := testRoom(t, r)

	failIfError(t, r.Disconnect(testRoomCode, sessions[1]))
	if len(room.players) != 1 {
		t.Fatalf("connected players = %d, want 1", len(room.players))
	}
	if len(room.disconnected) != 0 {
		t.Fatal("lobby disconnect reserved an identity; there is no reconnection window in the lobby")
	}

	failIfError(t, r.Disconnect(testRoomCode, sessions[0]))
	if r.RoomCount() != 0 {
		t.Fatalf("RoomCount = %d after last lobby disconnect, want 0", r.RoomCount())
	}
}

func TestDisconnectDuringGameReservesIdentity(t *testing.T) {
	r := newTestRegistry(21)
	sessions := toSetup(t, r, 4)
	room := testRoom(t, r)
	st := room.state

	failIfError(t, r.SubmitClaim(testRoomCode, sessions[1], 2))
	handBefore := append([]int(nil), st.Hands[1]...)

	failIfError(t, r.Disconnect(testRoomCode, sessions[1]))

	if len(room.players) != 3 {
		t.Fatalf("connected players = %d, want 3", len(room.players))
	}
	d, ok := room.disconnected[1]
	if !ok {
		t.Fatal("identity 1 not reserved after mid-game disconnect")
	}
	if d.Name != nameN(1) {
		t.Errorf("reserved name = %q, want %q", d.Name, nameN(1))
	}
	// The player's cards and claim stay in the game untouched.
	if got := st.Hands[1]; len(got) != len(handBefore) {
		t.Fatalf("hand size changed to %d while disconnected", len(got))
	}
	for i, deckIndex := range st.Hands[1] {
		if deckIndex != handBefore[i] {
			t.Errorf("hand slot %d = %d, want %d", i, deckIndex, handBefore[i])
		}
	}
	if st.Claims[1] != 2 {
		t.Errorf("claim = %d while disconnected, want 2", st.Claims[1])
	}
}

func TestRejoinRestoresIdentity(t *testing.T) {
	r := newTestRegistry(22)
	sessions := toSetup(t, r, 4)
	room := testRoom(t, r)
	st := room.state

	handBefore := append([]int(nil), st.Hands[1]...)
	failIfError(t, r.Disconnect(testRoomCode, sessions[1]))

	// The stored name matches case-insensitively.
	fresh := SessionID("fresh-session")
	events := r.Rejoin(testRoomCode, fresh, "PLAYER1", 1)
	failIfError(t, events)

	var joined *JoinedPayload
	for _, ev := range events {
		if ev.Kind == EventJoined {
			p := ev.Payload.(JoinedPayload)
			joined = &p
		}
	}
	if joined == nil {
		t.Fatal("no joined event on rejoin")
	}
	if joined.PlayerID != 1 || joined.Name != nameN(1) {
		t.Errorf("rejoined as id %d name %q, want id 1 name %q", joined.PlayerID, joined.Name, nameN(1))
	}
	if len(room.players) != 4 || len(room.disconnected) != 0 {
		t.Fatalf("roster = %d connected / %d reserved, want 4 / 0", len(room.players), len(room.disconnected))
	}
	for i, deckIndex := range st.Hands[1] {
		if deckIndex != handBefore[i] {
			t.Errorf("hand slot %d = %d after rejoin, want %d", i, deckIndex, handBefore[i])
		}
	}

	// The fresh session now speaks for the identity.
	failIfError(t, r.SubmitClaim(testRoomCode, fresh, 1))
	if st.Claims[1] != 1 {
		t.Errorf("claim via rejoined session = %d, want 1", st.Claims[1])
	}
}

func TestRejoinRejectsNameMismatch(t *testing.T) {
	r := newTestRegistry(22)
	sessions := toSetup(t, r, 4)
	failIfError(t, r.Disconnect(testRoomCode, sessions[1]))

	events := r.Rejoin(testRoomCode, SessionID("imposter"), "Mallory", 1)
	wantRejoinFailed(t, events, ErrNameMismatch)

	room := testRoom(t, r)
	if _, ok := room.disconnected[1]; !ok {
		t.Fatal("reserved identity was consumed by a failed rejoin")
	}
}

func TestRejoinRejectsUnknownIdentityMidGame(t *testing.T) {
	r := newTestRegistry(23)
	toSetup(t, r, 4)

	events := r.Rejoin(testRoomCode, SessionID("stranger"), "Stranger", 99)
	wantRejoinFailed(t, events, ErrCannotRejoin)
}

func TestRejoinRejectsNameStillConnected(t *testing.T) {
	r := newTestRegistry(23)
	toSetup(t, r, 4)

	events := r.Rejoin(testRoomCode, SessionID("second-tab"), nameN(2), 2)
	wantRejoinFailed(t, events, ErrAlreadyConnected)
}

func TestRejoinInLobbyFallsBackToOrdinaryJoin(t *testing.T) {
	r := newTestRegistry(24)
	joinPlayers(t, r, 2)

	// The claimed identity is stale; in the lobby it is ignored and the
	// caller comes in under a fresh one.
	events := r.Rejoin(testRoomCode, SessionID("returning"), "Charlie", 99)
	failIfError(t, events)
	for _, ev := range events {
		if ev.Kind == EventJoined {
			p := ev.Payload.(JoinedPayload)
			if p.PlayerID != 2 {
				t.Errorf("lobby rejoin id = %d, want fresh id 2", p.PlayerID)
			}
		}
	}
}

func TestLeaveMidGameForfeitsRejoin(t *testing.T) {
	r := newTestRegistry(25)
	sessions := toPlaying(t, r, 4)

	failIfError(t, r.Leave(testRoomCode, sessions[1]))

	events := r.Rejoin(testRoomCode, SessionID("returning"), nameN(1), 1)
	wantRejoinFailed(t, events, ErrCannotRejoin)
}

func TestRejoinedPlayerKeepsTurnPosition(t *testing.T) {
	r := newTestRegistry(26)
	toPlaying(t, r, 4)
	room := testRoom(t, r)
	st := room.state

	actorID := st.CurrentTurn
	failIfError(t, r.Disconnect(testRoomCode, sessionFor(t, room, actorID)))
	if st.CurrentTurn != actorID {
		t.Fatalf("turn moved to %d on disconnect, want it held for %d", st.CurrentTurn, actorID)
	}

	fresh := SessionID("back-again")
	failIfError(t, r.Rejoin(testRoomCode, fresh, nameN(int(actorID)), actorID))

	var targetID domain.PlayerID
	for _, id := range st.PlayerIDs() {
		if id != actorID && holdsUnrevealed(st, id, domain.WireSafe) {
			targetID = id
			break
		}
	}
	slot := displaySlotFor(t, room, actorID, targetID, domain.WireSafe)
	failIfError(t, r.SelectWire(testRoomCode, fresh, targetID, slot))
	if len(st.Revealed) != 1 {
		t.Fatalf("reveal count = %d after rejoined player's cut, want 1", len(st.Revealed))
	}
}
