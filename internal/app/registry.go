package app

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/samaschen/timebomb-boardgame/internal/domain"
)

// Registry owns the collection of rooms and is the single mutation
// boundary for each room's state. The registry lock guards only the
// room map so unrelated rooms never serialize behind one another; all
// state inside a room is guarded by that room's own mutex.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	// seedRng seeds per-room rngs; guarded by mu.
	seedRng *rand.Rand
	now     func() time.Time
	ttl     time.Duration
	log     zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock injects the time source used for disconnect timestamps and
// the empty-room sweep.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithRoomTTL sets how long a room abandoned mid-game is retained
// before the sweep reclaims it.
func WithRoomTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.ttl = ttl }
}

// NewRegistry constructs a Registry with the provided rng or a
// time-seeded default.
func NewRegistry(rng *rand.Rand, log zerolog.Logger, opts ...Option) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	r := &Registry{
		rooms:   make(map[string]*Room),
		seedRng: rng,
		now:     time.Now,
		ttl:     30 * time.Minute,
		log:     log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NormalizeRoomCode strips every non-letter, uppercases the rest, and
// rejects anything that is not exactly 6 letters.
func NormalizeRoomCode(raw string) (string, error) {
	var b strings.Builder
	for _, c := range strings.ToUpper(raw) {
		if c >= 'A' && c <= 'Z' {
			b.WriteRune(c)
		}
	}
	if b.Len() != 6 {
		return "", ErrBadRoomCode
	}
	return b.String(), nil
}

func (r *Registry) room(code string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

func (r *Registry) getOrCreate(code string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[code]; ok {
		return room, false
	}
	room := newRoom(code, rand.New(rand.NewSource(r.seedRng.Int63())))
	r.rooms[code] = room
	return room, true
}

func (r *Registry) delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
}

// RoomCount returns the number of live rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Sweep reclaims rooms whose connected set has been empty longer than
// the TTL. The original engine kept abandoned rooms forever; this is
// the deliberate bound on that leak. Returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.RLock()
	codes := make([]string, 0, len(r.rooms))
	for code := range r.rooms {
		codes = append(codes, code)
	}
	r.mu.RUnlock()

	removed := 0
	for _, code := range codes {
		room, ok := r.room(code)
		if !ok {
			continue
		}
		room.mu.Lock()
		if len(room.players) == 0 && !room.emptySince.IsZero() && room.emptySince.Before(cutoff) {
			room.closed = true
			r.delete(code)
			removed++
			r.log.Info().Str("room", code).Msg("swept abandoned room")
		}
		room.mu.Unlock()
	}
	return removed
}

// errorEvent wraps a command rejection for the originating session.
func errorEvent(sess SessionID, err error) []Event {
	kind := KindInternal
	msg := "internal error"
	if cerr, ok := err.(*CommandError); ok {
		kind = cerr.Kind
		msg = cerr.Message
	}
	return []Event{{
		Kind:       EventError,
		Payload:    ErrorPayload{Kind: kind, Message: msg},
		Recipients: []SessionID{sess},
	}}
}

// withRoom runs one command inside the room's critical section. A panic
// inside the command aborts only this room's pending mutation: it is
// logged, reported to the offending session, and the process keeps
// serving every other room.
func (r *Registry) withRoom(rawCode string, sess SessionID, fn func(*Room) ([]Event, error)) (events []Event) {
	code, err := NormalizeRoomCode(rawCode)
	if err != nil {
		return errorEvent(sess, err)
	}
	room, ok := r.room(code)
	if !ok {
		return errorEvent(sess, ErrRoomNotFound)
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Str("room", code).Interface("panic", rec).Msg("command aborted by invariant violation")
			events = errorEvent(sess, &CommandError{Kind: KindInternal, Message: "internal error"})
		}
	}()

	events, err = fn(room)
	if err != nil {
		if _, ok := err.(*CommandError); !ok {
			r.log.Error().Str("room", code).Err(err).Msg("command aborted by invariant violation")
		}
		return errorEvent(sess, err)
	}
	return events
}

// Join handles the join command: it normalizes the room code, creates
// the room on first use (the creating session becomes host), and
// admits the player subject to capacity, phase, and name uniqueness.
func (r *Registry) Join(rawCode string, sess SessionID, name string) []Event {
	code, err := NormalizeRoomCode(rawCode)
	if err != nil {
		return errorEvent(sess, err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errorEvent(sess, ErrMissingName)
	}

	room, created := r.getOrCreate(code)
	room.mu.Lock()
	for room.closed {
		// Lost a race against room deletion; start over on a fresh room.
		room.mu.Unlock()
		room, created = r.getOrCreate(code)
		room.mu.Lock()
	}
	defer room.mu.Unlock()

	if err := r.admit(room, sess, name, created); err != nil {
		return errorEvent(sess, err)
	}
	p := room.players[sess]
	r.log.Info().Str("room", code).Int("player", int(p.ID)).Str("name", name).Msg("player joined")

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

// admit applies the join validation rules and attaches the session.
func (r *Registry) admit(room *Room, sess SessionID, name string, created bool) error {
	if room.state.Phase != domain.PhaseLobby {
		return ErrGameInProgress
	}
	if len(room.players) >= domain.MaxPlayers {
		return ErrRoomFull
	}
	// Only currently connected players block a name; a disconnected
	// player's name does not stop a different new joiner.
	if room.nameConnected(name) {
		return ErrDuplicateName
	}
	p := room.addPlayer(sess, name)
	if created {
		room.host = p.ID
	}
	return nil
}

// Leave removes the session unconditionally and deletes the room when
// it becomes empty in the lobby phase.
func (r *Registry) Leave(rawCode string, sess SessionID) []Event {
	return r.withRoom(rawCode, sess, func(room *Room) ([]Event, error) {
		p, ok := room.playerBySession(sess)
		if !ok {
			return nil, ErrUnknownPlayer
		}
		delete(room.players, sess)
		delete(room.state.LobbyReady, p.ID)
		r.log.Info().Str("room", room.code).Int("player", int(p.ID)).Msg("player left")

		if len(room.players) == 0 {
			if room.state.Phase == domain.PhaseLobby {
				room.closed = true
				r.delete(room.code)
				return nil, nil
			}
			room.emptySince = r.now()
		}
		return []Event{room.rosterEvent()}, nil
	})
}

// PublicRoomState returns the scrubbed, room-wide projection. It is
// safe to hand to anyone: no roles, hands, or deck contents appear.
func (r *Registry) PublicRoomState(rawCode string) (PublicState, []PlayerSummary, error) {
	code, err := NormalizeRoomCode(rawCode)
	if err != nil {
		return PublicState{}, nil, err
	}
	room, ok := r.room(code)
	if !ok {
		return PublicState{}, nil, ErrRoomNotFound
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.publicState(), room.roster(), nil
}
