package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/samaschen/timebomb-boardgame/internal/app"
	"github.com/samaschen/timebomb-boardgame/internal/ports"
)

var _ ports.Dispatcher = (*Hub)(nil)

// Hub tracks live connections by session id and fans engine events out
// to them. It implements ports.Dispatcher.
type Hub struct {
	mu      sync.RWMutex
	clients map[app.SessionID]*client
	log     zerolog.Logger
}

// NewHub returns an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[app.SessionID]*client),
		log:     log,
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.sess] = c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.sess] == c {
		delete(h.clients, c.sess)
	}
}

// Dispatch delivers each event either to its named recipients or, when
// none are named, to every session currently in the room.
func (h *Hub) Dispatch(roomCode string, events []app.Event) {
	for _, ev := range events {
		raw, err := json.Marshal(OutMsg{T: string(ev.Kind), P: ev.Payload})
		if err != nil {
			h.log.Error().Err(err).Str("event", string(ev.Kind)).Msg("encode event")
			continue
		}
		for _, c := range h.recipients(roomCode, ev) {
			c.enqueue(raw)
		}
	}
}

func (h *Hub) recipients(roomCode string, ev app.Event) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(ev.Recipients) > 0 {
		out := make([]*client, 0, len(ev.Recipients))
		for _, sess := range ev.Recipients {
			if c, ok := h.clients[sess]; ok {
				out = append(out, c)
			}
		}
		return out
	}
	var out []*client
	for _, c := range h.clients {
		if c.roomCode() == roomCode {
			out = append(out, c)
		}
	}
	return out
}
