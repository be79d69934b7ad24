package app

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samaschen/timebomb-boardgame/internal/domain"
)

// Player is a connected participant in a room.
type Player struct {
	ID      domain.PlayerID
	Name    string
	Session SessionID
}

// DisconnectedPlayer reserves an identity for reconnection while its
// holder is away during an active game.
type DisconnectedPlayer struct {
	ID             domain.PlayerID
	Name           string
	DisconnectedAt time.Time
}

// Room owns one game's canonical state. All access goes through the
// registry, which takes the room mutex so concurrent commands for the
// same room apply one at a time while unrelated rooms stay independent.
type Room struct {
	mu sync.Mutex

	code string
	rng  *rand.Rand

	players      map[SessionID]*Player
	disconnected map[domain.PlayerID]*DisconnectedPlayer
	// nextID only ever increments; identities are never reused for the
	// life of the room.
	nextID domain.PlayerID
	// host is the identity of the creating session, kept across that
	// player's own reconnects.
	host domain.PlayerID

	state    *domain.GameState
	mappings *domain.ViewMappings

	// emptySince is set when the connected set becomes empty mid-game,
	// so the registry sweep can reclaim abandoned rooms.
	emptySince   time.Time
	finishedSent bool
	// closed marks a room the registry has removed from its map; a join
	// that raced against the removal must not attach to it.
	closed bool
}

func newRoom(code string, rng *rand.Rand) *Room {
	return &Room{
		code:         code,
		rng:          rng,
		players:      make(map[SessionID]*Player),
		disconnected: make(map[domain.PlayerID]*DisconnectedPlayer),
		state:        domain.NewGameState(),
		mappings:     domain.NewViewMappings(),
	}
}

// playerBySession returns the connected player for a session.
func (r *Room) playerBySession(sess SessionID) (*Player, bool) {
	p, ok := r.players[sess]
	return p, ok
}

// nameConnected reports whether a connected player already uses the
// name, compared case-insensitively.
func (r *Room) nameConnected(name string) bool {
	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// addPlayer attaches a session under a fresh identity.
func (r *Room) addPlayer(sess SessionID, name string) *Player {
	p := &Player{ID: r.nextID, Name: name, Session: sess}
	r.nextID++
	r.players[sess] = p
	r.state.LobbyReady[p.ID] = false
	r.emptySince = time.Time{}
	return p
}

// roster returns the public player list: connected players plus, during
// an active game, reserved disconnected identities, sorted by identity.
func (r *Room) roster() []PlayerSummary {
	out := make([]PlayerSummary, 0, len(r.players)+len(r.disconnected))
	for _, p := range r.players {
		out = append(out, PlayerSummary{
			ID:        p.ID,
			Name:      p.Name,
			IsHost:    p.ID == r.host,
			Connected: true,
			Ready:     r.state.LobbyReady[p.ID],
		})
	}
	for _, d := range r.disconnected {
		out = append(out, PlayerSummary{
			ID:     d.ID,
			Name:   d.Name,
			IsHost: d.ID == r.host,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// publicState is the scrubbed room-wide projection.
func (r *Room) publicState() PublicState {
	return PublicState{
		Phase:      r.state.Phase,
		Round:      r.state.Round,
		RoundEnded: r.state.RoundEnded,
		Winner:     r.state.Winner,
		WinReason:  r.state.WinReason,
	}
}

// rosterEvent builds the room-wide roomUpdate broadcast.
func (r *Room) rosterEvent() Event {
	return Event{
		Kind: EventRoomUpdate,
		Payload: RoomUpdatePayload{
			RoomCode: r.code,
			Players:  r.roster(),
			State:    r.publicState(),
		},
	}
}

// snapshotEvents computes one per-viewer gameState event for every
// connected session, all from the same post-mutation snapshot.
func (r *Room) snapshotEvents() []Event {
	roster := r.roster()
	events := make([]Event, 0, len(r.players))
	for sess, p := range r.players {
		view := domain.Project(r.state, p.ID, r.mappings, r.rng)
		events = append(events, Event{
			Kind: EventGameState,
			Payload: GameStatePayload{
				RoomCode: r.code,
				You:      p.ID,
				Players:  roster,
				View:     view,
			},
			Recipients: []SessionID{sess},
		})
	}
	return events
}

// finishEvent appends the one-shot gameFinished broadcast when the
// phase has just become finished.
func (r *Room) finishEvent(events []Event) []Event {
	if r.state.Phase == domain.PhaseFinished && !r.finishedSent {
		r.finishedSent = true
		events = append(events, Event{
			Kind: EventGameFinished,
			Payload: GameFinishedPayload{
				Winner:    r.state.Winner,
				WinReason: r.state.WinReason,
			},
		})
	}
	return events
}
