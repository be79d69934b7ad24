package app

import "github.com/samaschen/timebomb-boardgame/internal/domain"

// SessionID identifies one transport connection. The transport
// collaborator assigns them; the engine treats them as opaque.
type SessionID string

// EventKind identifies outgoing events for transport dispatch.
type EventKind string

const (
	EventJoined       EventKind = "joined"
	EventRoomUpdate   EventKind = "roomUpdate"
	EventGameState    EventKind = "gameState"
	EventWiresViewed  EventKind = "wiresViewed"
	EventGameFinished EventKind = "gameFinished"
	EventError        EventKind = "error"
	EventRejoinFailed EventKind = "rejoinFailed"
)

// Event is a plain-data outgoing event with optional targeted
// recipients. Empty Recipients means broadcast to every connected
// session in the room.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []SessionID
}

// PlayerSummary is the public roster entry for one player.
type PlayerSummary struct {
	ID        domain.PlayerID `json:"id"`
	Name      string          `json:"name"`
	IsHost    bool            `json:"isHost"`
	Connected bool            `json:"connected"`
	Ready     bool            `json:"ready"`
}

// PublicState is the room-wide projection with every private field
// scrubbed, used for lobby-level broadcasts.
type PublicState struct {
	Phase      domain.Phase `json:"phase"`
	Round      int          `json:"round"`
	RoundEnded bool         `json:"roundEnded"`
	Winner     domain.Team  `json:"winner,omitempty"`
	WinReason  string       `json:"winReason,omitempty"`
}

type JoinedPayload struct {
	RoomCode string          `json:"roomCode"`
	PlayerID domain.PlayerID `json:"playerId"`
	Name     string          `json:"name"`
	IsHost   bool            `json:"isHost"`
}

type RoomUpdatePayload struct {
	RoomCode string          `json:"roomCode"`
	Players  []PlayerSummary `json:"players"`
	State    PublicState     `json:"publicState"`
}

type GameStatePayload struct {
	RoomCode string             `json:"roomCode"`
	You      domain.PlayerID    `json:"you"`
	Players  []PlayerSummary    `json:"players"`
	View     *domain.PlayerView `json:"view"`
}

// WireDisclosure pairs one of the viewer's own hand slots with its
// kind. Sent only through the one-shot wiresViewed disclosure.
type WireDisclosure struct {
	Slot int             `json:"slot"`
	Kind domain.WireKind `json:"kind"`
}

type WiresViewedPayload struct {
	Wires []WireDisclosure `json:"wires"`
}

type GameFinishedPayload struct {
	Winner    domain.Team `json:"winner"`
	WinReason string      `json:"winReason"`
}

type ErrorPayload struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

type RejoinFailedPayload struct {
	Message string `json:"message"`
}
