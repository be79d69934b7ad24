package domain

import "sort"

// Phase represents the lifecycle stage of a Time Bomb game.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join and ready up.
	PhaseLobby Phase = "lobby"
	// PhaseSetup is the per-round state where players view wires and claim.
	PhaseSetup Phase = "setup"
	// PhasePlaying is the active state where wires are cut turn by turn.
	PhasePlaying Phase = "playing"
	// PhaseFinished is the terminal state after a team has won.
	PhaseFinished Phase = "finished"
)

// WireKind identifies the face of a wire card.
type WireKind string

const (
	WireDefusing WireKind = "defusing"
	WireSafe     WireKind = "safe"
	WireBomb     WireKind = "bomb"
)

// Team is the hidden role assigned to a player for one game.
type Team string

const (
	TeamGood Team = "good"
	TeamBad  Team = "bad"
)

// PlayerID is a room-scoped player identity. IDs are assigned from a
// monotonic counter and never reused, so stale client references cannot
// collide with a later occupant of the room.
type PlayerID int

// NoPlayer marks the absence of a current turn.
const NoPlayer PlayerID = -1

const (
	MinPlayers = 4
	MaxPlayers = 8
	MaxRounds  = 4
	// FirstRoundHandSize is the number of wires dealt in round 1. Each
	// later round deals one fewer.
	FirstRoundHandSize = 5
)

// WireCard is a single card in the wire deck.
type WireCard struct {
	Kind WireKind `json:"kind"`
}

// RevealedWire is one entry of the append-only reveal log. DeckIndex is
// the card's position in the wire deck, HandSlot its position in the
// holder's hand array. Revealed cards keep their slot so every viewer's
// display mapping stays valid for the rest of the round.
type RevealedWire struct {
	Player    PlayerID `json:"player"`
	DeckIndex int      `json:"deckIndex"`
	HandSlot  int      `json:"handSlot"`
	Kind      WireKind `json:"kind"`
	Round     int      `json:"round"`
}

// GameState holds the authoritative truth for one room's current game.
// All mutation happens under the owning room's lock.
type GameState struct {
	Phase Phase
	// Round is 0 in the lobby and 1..4 during a game.
	Round int

	// WireDeck is fixed for the whole game once built. Never sent to
	// clients.
	WireDeck []WireCard
	// Hands maps a player to the deck indices currently dealt to them,
	// in that player's own shuffled order.
	Hands map[PlayerID][]int
	// Roles is fixed once assigned at game start.
	Roles map[PlayerID]Team
	// Claims holds each player's self-reported defusing count for the
	// current round; absence means not yet submitted.
	Claims map[PlayerID]int

	// Revealed is the current round's reveal log. Cleared at redeal.
	Revealed []RevealedWire
	// FoundDefusing accumulates every revealed defusing wire across the
	// whole game and is never cleared.
	FoundDefusing []RevealedWire

	TurnOrder   []PlayerID
	TurnIndex   int
	CurrentTurn PlayerID
	RoundEnded  bool

	// Three independent ready sets, reset at distinct transition points.
	LobbyReady map[PlayerID]bool
	SetupReady map[PlayerID]bool
	RoundReady map[PlayerID]bool

	Winner    Team
	WinReason string
}

// NewGameState returns a lobby-phase state with empty collections.
func NewGameState() *GameState {
	return &GameState{
		Phase:       PhaseLobby,
		CurrentTurn: NoPlayer,
		Hands:       make(map[PlayerID][]int),
		Roles:       make(map[PlayerID]Team),
		Claims:      make(map[PlayerID]int),
		LobbyReady:  make(map[PlayerID]bool),
		SetupReady:  make(map[PlayerID]bool),
		RoundReady:  make(map[PlayerID]bool),
	}
}

// PlayerIDs returns the identities currently holding a hand, in
// ascending order so deals and role assignment are deterministic for a
// given rng.
func (g *GameState) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, 0, len(g.Hands))
	for id := range g.Hands {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RevealedDeckIndices returns the set of deck indices revealed in the
// current round.
func (g *GameState) RevealedDeckIndices() map[int]bool {
	set := make(map[int]bool, len(g.Revealed))
	for _, r := range g.Revealed {
		set[r.DeckIndex] = true
	}
	return set
}

// FoundDefusingIndices returns the deck indices of every defusing wire
// found so far in the game.
func (g *GameState) FoundDefusingIndices() map[int]bool {
	set := make(map[int]bool, len(g.FoundDefusing))
	for _, r := range g.FoundDefusing {
		set[r.DeckIndex] = true
	}
	return set
}
