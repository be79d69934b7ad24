package app

import (
	"strings"
	"time"

	"github.com/samaschen/timebomb-boardgame/internal/domain"
)

// Disconnect is reported by the transport collaborator when a session
// drops. In the lobby the player is removed outright (no reconnection
// window); during an active game the identity is parked in the
// disconnected table so the same person can resume, while their cards,
// claims, and turn position stay untouched in the game state.
func (r *Registry) Disconnect(rawCode string, sess SessionID) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, ok := room.playerBySession(sess)
		if !ok {
			return nil, nil
		}
		delete(room.players, sess)

		if room.state.Phase == domain.PhaseLobby {
			delete(room.state.LobbyReady, p.ID)
			r.log.Info().Str("room", room.code).Int("player", int(p.ID)).Msg("player left lobby")
			if len(room.players) == 0 {
				room.closed = true
				r.delete(room.code)
				return nil, nil
			}
			return []Event{room.rosterEvent()}, nil
		}

		room.disconnected[p.ID] = &DisconnectedPlayer{
			ID:             p.ID,
			Name:           p.Name,
			DisconnectedAt: r.now(),
		}
		r.log.Info().Str("room", room.code).Int("player", int(p.ID)).Msg("player disconnected, slot reserved")
		if len(room.players) == 0 {
			room.emptySince = r.now()
		}
		return []Event{room.rosterEvent()}, nil
	})
}

// Rejoin reattaches a session to a reserved identity. It is the only
// path back into an active game: the claimed identity must be in the
// disconnected table and the stored name must match case-insensitively.
// In the lobby it degrades to an ordinary join under a fresh identity.
func (r *Registry) Rejoin(rawCode string, sess SessionID, name string, claimed domain.PlayerID) []Event {
	code, err := NormalizeRoomCode(rawCode)
	if err != nil {
		return rejoinFailed(sess, err)
	}
	room, ok := r.room(code)
	if !ok {
		return rejoinFailed(sess, ErrRoomNotFound)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if d, ok := room.disconnected[claimed]; ok {
		if !strings.EqualFold(d.Name, name) {
			return rejoinFailed(sess, ErrNameMismatch)
		}
		delete(room.disconnected, claimed)
		room.players[sess] = &Player{ID: d.ID, Name: d.Name, Session: sess}
		room.emptySince = time.Time{}
		r.log.Info().Str("room", code).Int("player", int(d.ID)).Msg("player rejoined")

		events := []Event{{
			Kind: EventJoined,
			Payload: JoinedPayload{
				RoomCode: code,
				PlayerID: d.ID,
				Name:     d.Name,
				IsHost:   d.ID == room.host,
			},
			Recipients: []SessionID{sess},
		}}
		events = append(events, room.rosterEvent())
		return append(events, room.snapshotEvents()...)
	}

	// In the lobby a stale claimed identity is ignored and the rejoin
	// degrades to an ordinary join under a fresh identity.
	if room.state.Phase == domain.PhaseLobby {
		name = strings.TrimSpace(name)
		if name == "" {
			return rejoinFailed(sess, ErrMissingName)
		}
		if err := r.admit(room, sess, name, false); err != nil {
			return rejoinFailed(sess, err)
		}
		p := room.players[sess]
		events := []Event{{
			Kind: EventJoined,
			Payload: JoinedPayload{
				RoomCode: code,
				PlayerID: p.ID,
				Name:     p.Name,
				IsHost:   p.ID == room.host,
			},
			Recipients: []SessionID{sess},
		}}
		events = append(events, room.rosterEvent())
		return append(events, room.snapshotEvents()...)
	}

	if room.nameConnected(name) {
		return rejoinFailed(sess, ErrAlreadyConnected)
	}
	return rejoinFailed(sess, ErrCannotRejoin)
}

func rejoinFailed(sess SessionID, err error) []Event {
	msg := err.Error()
	return []Event{{
		Kind:       EventRejoinFailed,
		Payload:    RejoinFailedPayload{Message: msg},
		Recipients: []SessionID{sess},
	}}
}
