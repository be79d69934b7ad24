package app

import (
	"sort"

	"github.com/samaschen/timebomb-boardgame/internal/domain"
)

// actor resolves the connected player issuing a command.
func actor(room *Room, sess SessionID) (*Player, error) {
	p, ok := room.playerBySession(sess)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	return p, nil
}

// inGame additionally requires the player to hold a hand in the
// current game.
func inGame(room *Room, sess SessionID) (*Player, error) {
	p, err := actor(room, sess)
	if err != nil {
		return nil, err
	}
	if _, ok := room.state.Hands[p.ID]; !ok {
		return nil, ErrUnknownPlayer
	}
	return p, nil
}

// SetReady toggles the caller's lobby ready flag.
func (r *Registry) SetReady(rawCode string, sess SessionID, ready bool) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, err := actor(room, sess)
		if err != nil {
			return nil, err
		}
		if room.state.Phase != domain.PhaseLobby {
			return nil, ErrNotInLobby
		}
		room.state.LobbyReady[p.ID] = ready
		events := []Event{room.rosterEvent()}
		return append(events, room.snapshotEvents()...), nil
	})
}

// StartGame moves the room from lobby to setup: the host deals a fresh
// game to the 4-8 ready players, assigning roles, building the wire
// deck, and dealing 5 wires each for round 1.
func (r *Registry) StartGame(rawCode string, sess SessionID) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, err := actor(room, sess)
		if err != nil {
			return nil, err
		}
		if p.ID != room.host {
			return nil, ErrNotHost
		}
		if room.state.Phase != domain.PhaseLobby {
			return nil, ErrNotInLobby
		}
		if len(room.players) < domain.MinPlayers || len(room.players) > domain.MaxPlayers {
			return nil, ErrPlayerCount
		}
		ids := make([]domain.PlayerID, 0, len(room.players))
		for _, pl := range room.players {
			if !room.state.LobbyReady[pl.ID] {
				return nil, ErrNotAllReady
			}
			ids = append(ids, pl.ID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		// The game state is recreated wholesale; wireDeck and roles are
		// fixed for the life of this game.
		st := domain.NewGameState()
		st.Roles = domain.AssignRoles(ids, room.rng)
		st.WireDeck = domain.NewWireDeck(len(ids), room.rng)
		deal := make([]int, len(st.WireDeck))
		for i := range deal {
			deal[i] = i
		}
		st.Hands = domain.DealHands(ids, domain.FirstRoundHandSize, deal)
		st.Phase = domain.PhaseSetup
		st.Round = 1

		room.state = st
		room.mappings.Clear()
		room.finishedSent = false
		r.log.Info().Str("room", room.code).Int("players", len(ids)).Msg("game started")

		events := []Event{room.rosterEvent()}
		return append(events, room.snapshotEvents()...), nil
	})
}

// ViewWires is the one-shot disclosure of the caller's own hand kinds.
// Viewing again after a claim was submitted retracts the claim, so a
// player cannot lock a claim in and keep re-inspecting their hand.
func (r *Registry) ViewWires(rawCode string, sess SessionID) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, err := inGame(room, sess)
		if err != nil {
			return nil, err
		}
		if room.state.Phase != domain.PhaseSetup {
			return nil, ErrNotInSetup
		}
		if _, claimed := room.state.Claims[p.ID]; claimed {
			delete(room.state.Claims, p.ID)
			delete(room.state.SetupReady, p.ID)
		}

		hand := room.state.Hands[p.ID]
		wires := make([]WireDisclosure, len(hand))
		for slot, deckIndex := range hand {
			wires[slot] = WireDisclosure{Slot: slot, Kind: room.state.WireDeck[deckIndex].Kind}
		}
		events := []Event{{
			Kind:       EventWiresViewed,
			Payload:    WiresViewedPayload{Wires: wires},
			Recipients: []SessionID{sess},
		}}
		return append(events, room.snapshotEvents()...), nil
	})
}

// ConfirmViewAndShuffle permutes the caller's own hand order. Other
// viewers are unaffected: their mappings track hand slots, and slots do
// not move for them.
func (r *Registry) ConfirmViewAndShuffle(rawCode string, sess SessionID) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, err := inGame(room, sess)
		if err != nil {
			return nil, err
		}
		if room.state.Phase != domain.PhaseSetup {
			return nil, ErrNotInSetup
		}
		room.state.Hands[p.ID] = domain.ShuffledInts(room.state.Hands[p.ID], room.rng)
		return room.snapshotEvents(), nil
	})
}

// SubmitClaim records the caller's claimed defusing count for the
// round, accepted once per round and bounded by the wires still hidden.
func (r *Registry) SubmitClaim(rawCode string, sess SessionID, claim int) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, err := inGame(room, sess)
		if err != nil {
			return nil, err
		}
		if room.state.Phase != domain.PhaseSetup {
			return nil, ErrNotInSetup
		}
		if _, ok := room.state.Claims[p.ID]; ok {
			return nil, ErrClaimSubmitted
		}
		if !domain.ClaimInBounds(room.state, claim) {
			return nil, ErrClaimRange
		}
		room.state.Claims[p.ID] = claim
		return room.snapshotEvents(), nil
	})
}

// MarkSetupReady marks the caller ready to play; a claim must already
// be on record.
func (r *Registry) MarkSetupReady(rawCode string, sess SessionID) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, err := inGame(room, sess)
		if err != nil {
			return nil, err
		}
		if room.state.Phase != domain.PhaseSetup {
			return nil, ErrNotInSetup
		}
		if _, ok := room.state.Claims[p.ID]; !ok {
			return nil, ErrClaimRequired
		}
		room.state.SetupReady[p.ID] = true
		return room.snapshotEvents(), nil
	})
}

// StartPlaying transitions setup to playing once every player has both
// claimed and marked ready. Turn order is a fresh random permutation.
func (r *Registry) StartPlaying(rawCode string, sess SessionID) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, err := actor(room, sess)
		if err != nil {
			return nil, err
		}
		if p.ID != room.host {
			return nil, ErrNotHost
		}
		st := room.state
		if st.Phase != domain.PhaseSetup {
			return nil, ErrNotInSetup
		}
		for _, id := range st.PlayerIDs() {
			if _, ok := st.Claims[id]; !ok || !st.SetupReady[id] {
				return nil, ErrSetupIncomplete
			}
		}

		st.Phase = domain.PhasePlaying
		st.TurnOrder = domain.ShuffledPlayers(st.PlayerIDs(), room.rng)
		st.TurnIndex = 0
		st.CurrentTurn = st.TurnOrder[0]
		st.RoundEnded = false
		st.RoundReady = make(map[domain.PlayerID]bool)
		r.log.Info().Str("room", room.code).Int("round", st.Round).Msg("round play started")
		return room.snapshotEvents(), nil
	})
}

// SelectWire is the active player's cut: the display slot is resolved
// through the actor's own per-target mapping to an actual hand slot,
// and the card there is revealed in place.
func (r *Registry) SelectWire(rawCode string, sess SessionID, target domain.PlayerID, displaySlot int) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, err := inGame(room, sess)
		if err != nil {
			return nil, err
		}
		st := room.state
		if st.Phase != domain.PhasePlaying {
			return nil, ErrNotPlaying
		}
		if st.CurrentTurn != p.ID {
			return nil, ErrNotYourTurn
		}
		if target == p.ID {
			return nil, ErrSelfTarget
		}
		targetHand, ok := st.Hands[target]
		if !ok {
			return nil, ErrUnknownPlayer
		}
		actualSlot, ok := room.mappings.ActualSlot(p.ID, target, displaySlot)
		if !ok || actualSlot >= len(targetHand) {
			return nil, ErrBadWireSlot
		}
		deckIndex := targetHand[actualSlot]
		if st.RevealedDeckIndices()[deckIndex] {
			return nil, ErrWireRevealed
		}

		kind := st.WireDeck[deckIndex].Kind
		st.Revealed = append(st.Revealed, domain.RevealedWire{
			Player:    target,
			DeckIndex: deckIndex,
			HandSlot:  actualSlot,
			Kind:      kind,
			Round:     st.Round,
		})
		r.log.Info().
			Str("room", room.code).
			Int("actor", int(p.ID)).
			Int("target", int(target)).
			Str("kind", string(kind)).
			Msg("wire revealed")

		switch kind {
		case domain.WireDefusing:
			st.FoundDefusing = append(st.FoundDefusing, st.Revealed[len(st.Revealed)-1])
		case domain.WireBomb:
			st.Winner = domain.TeamBad
			st.WinReason = "Bomb was revealed!"
			st.Phase = domain.PhaseFinished
		}

		// Win evaluation pre-empts turn advancement: the N-th defusing
		// wire ends the game mid-turn.
		if !domain.EvaluateWin(st) {
			st.TurnIndex++
			if st.TurnIndex < len(st.TurnOrder) {
				st.CurrentTurn = st.TurnOrder[st.TurnIndex]
			} else {
				st.RoundEnded = true
				st.CurrentTurn = domain.NoPlayer
				st.RoundReady = make(map[domain.PlayerID]bool)
			}
		} else {
			st.CurrentTurn = domain.NoPlayer
		}

		return room.finishEvent(room.snapshotEvents()), nil
	})
}

// MarkRoundReady marks the caller ready after an exhausted turn order;
// once everyone is ready the round is closed out.
func (r *Registry) MarkRoundReady(rawCode string, sess SessionID) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, err := inGame(room, sess)
		if err != nil {
			return nil, err
		}
		st := room.state
		if st.Phase != domain.PhasePlaying || !st.RoundEnded {
			return nil, ErrRoundNotEnded
		}
		st.RoundReady[p.ID] = true

		for _, id := range st.PlayerIDs() {
			if !st.RoundReady[id] {
				return room.snapshotEvents(), nil
			}
		}
		if err := r.endRound(room); err != nil {
			return nil, err
		}
		return room.finishEvent(room.snapshotEvents()), nil
	})
}

// endRound closes the current round: either the game is decided, or
// the surviving cards are pooled and redealt with one fewer wire per
// player and the room returns to setup for the next round.
func (r *Registry) endRound(room *Room) error {
	st := room.state
	if domain.EvaluateWin(st) {
		return nil
	}
	if st.Round >= domain.MaxRounds {
		st.Round++
		domain.EvaluateWin(st)
		return nil
	}

	// Compute the pool before touching any state so an invariant fault
	// aborts the mutation cleanly.
	pool, err := domain.NextRoundPool(st, room.rng)
	if err != nil {
		return err
	}

	st.Round++
	st.Hands = domain.DealHands(st.PlayerIDs(), domain.HandSizeForRound(st.Round), pool)
	st.Revealed = nil
	st.Claims = make(map[domain.PlayerID]int)
	st.SetupReady = make(map[domain.PlayerID]bool)
	st.RoundReady = make(map[domain.PlayerID]bool)
	st.TurnOrder = nil
	st.TurnIndex = 0
	st.CurrentTurn = domain.NoPlayer
	st.RoundEnded = false
	st.Phase = domain.PhaseSetup
	// Display permutations are scoped to one round.
	room.mappings.Clear()
	r.log.Info().Str("room", room.code).Int("round", st.Round).Msg("round dealt")
	return nil
}

// NewGame returns a finished room to the lobby, preserving the host and
// the connected roster with everyone un-readied.
func (r *Registry) NewGame(rawCode string, sess SessionID) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, err := actor(room, sess)
		if err != nil {
			return nil, err
		}
		if p.ID != room.host {
			return nil, ErrNotHost
		}
		if room.state.Phase != domain.PhaseFinished {
			return nil, ErrNotFinished
		}

		st := domain.NewGameState()
		for _, pl := range room.players {
			st.LobbyReady[pl.ID] = false
		}
		room.state = st
		room.mappings.Clear()
		room.finishedSent = false
		// Back in the lobby there is no reconnection window.
		room.disconnected = make(map[domain.PlayerID]*DisconnectedPlayer)
		r.log.Info().Str("room", room.code).Msg("room reset to lobby")

		events := []Event{room.rosterEvent()}
		return append(events, room.snapshotEvents()...), nil
	})
}
