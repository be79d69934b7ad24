package ws

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/samaschen/timebomb-boardgame/internal/app"
	"github.com/samaschen/timebomb-boardgame/internal/domain"
)

// Server is the websocket transport adapter: it upgrades connections,
// decodes named commands, routes them to the room registry, and hands
// the resulting events to the hub for delivery. It holds no game state.
type Server struct {
	registry *app.Registry
	hub      *Hub
	tokens   *TokenIssuer
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewServer wires the adapter.
func NewServer(registry *app.Registry, hub *Hub, tokens *TokenIssuer, log zerolog.Logger) *Server {
	return &Server{
		registry: registry,
		hub:      hub,
		tokens:   tokens,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes returns the HTTP routes served by the adapter.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", s.handleWS)
	r.Get("/rooms/{code}", s.handleRoomState)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

// handleRoomState serves the scrubbed room projection, so a client can
// check a room code before opening the socket.
func (s *Server) handleRoomState(w http.ResponseWriter, r *http.Request) {
	state, roster, err := s.registry.PublicRoomState(chi.URLParam(r, "code"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"publicState": state,
		"players":     roster,
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &client{
		srv:  s,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		sess: app.SessionID(uuid.NewString()),
	}
	s.hub.add(c)
	s.log.Info().Str("session", string(c.sess)).Msg("session connected")
	go c.writePump()
	go c.readPump()
}

// handleMessage decodes one inbound frame and applies the command.
func (s *Server) handleMessage(c *client, raw []byte) {
	var msg InMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.reply("error", errPayload{Message: "malformed message"})
		return
	}

	switch msg.T {
	case "join":
		var p joinPayload
		if !decode(c, msg.P, &p) {
			return
		}
		events := s.registry.Join(p.RoomCode, c.sess, p.Name)
		s.finishAttach(c, p.RoomCode, events)

	case "rejoin":
		var p rejoinPayload
		if !decode(c, msg.P, &p) {
			return
		}
		room, identity, name := p.RoomCode, domain.PlayerID(p.Identity), p.Name
		if p.Token != "" {
			tr, tid, tname, err := s.tokens.Verify(p.Token)
			if err != nil {
				c.reply("rejoinFailed", errPayload{Message: "invalid resume token"})
				return
			}
			room, identity, name = tr, tid, tname
		}
		events := s.registry.Rejoin(room, c.sess, name, identity)
		s.finishAttach(c, room, events)

	case "leave":
		room := c.roomCode()
		events := s.registry.Leave(room, c.sess)
		s.hub.Dispatch(room, events)
		c.setRoom("")

	case "setReady":
		var p setReadyPayload
		if !decode(c, msg.P, &p) {
			return
		}
		s.dispatch(c, s.registry.SetReady(c.roomCode(), c.sess, p.Ready))

	case "startGame":
		s.dispatch(c, s.registry.StartGame(c.roomCode(), c.sess))

	case "viewWires":
		s.dispatch(c, s.registry.ViewWires(c.roomCode(), c.sess))

	case "confirmViewAndShuffle":
		s.dispatch(c, s.registry.ConfirmViewAndShuffle(c.roomCode(), c.sess))

	case "submitClaim":
		var p submitClaimPayload
		if !decode(c, msg.P, &p) {
			return
		}
		s.dispatch(c, s.registry.SubmitClaim(c.roomCode(), c.sess, p.Claim))

	case "markSetupReady":
		s.dispatch(c, s.registry.MarkSetupReady(c.roomCode(), c.sess))

	case "startPlaying":
		s.dispatch(c, s.registry.StartPlaying(c.roomCode(), c.sess))

	case "selectWire":
		var p selectWirePayload
		if !decode(c, msg.P, &p) {
			return
		}
		s.dispatch(c, s.registry.SelectWire(c.roomCode(), c.sess, domain.PlayerID(p.TargetIdentity), p.DisplaySlot))

	case "markRoundReady":
		s.dispatch(c, s.registry.MarkRoundReady(c.roomCode(), c.sess))

	case "newGame":
		s.dispatch(c, s.registry.NewGame(c.roomCode(), c.sess))

	default:
		c.reply("error", errPayload{Message: "unknown command: " + msg.T})
	}
}

func (s *Server) dispatch(c *client, events []app.Event) {
	s.hub.Dispatch(c.roomCode(), events)
}

// finishAttach binds the session to its room on a successful join or
// rejoin and hands out a fresh resume token.
func (s *Server) finishAttach(c *client, rawCode string, events []app.Event) {
	code := rawCode
	if normalized, err := app.NormalizeRoomCode(rawCode); err == nil {
		code = normalized
	}
	for _, ev := range events {
		if ev.Kind != app.EventJoined {
			continue
		}
		joined := ev.Payload.(app.JoinedPayload)
		c.setRoom(joined.RoomCode)
		if token, err := s.tokens.Issue(joined.RoomCode, joined.PlayerID, joined.Name); err == nil {
			c.reply("resumeToken", resumeTokenPayload{Token: token})
		} else {
			s.log.Error().Err(err).Msg("issue resume token")
		}
	}
	s.hub.Dispatch(code, events)
}

func decode(c *client, raw json.RawMessage, into any) bool {
	if err := json.Unmarshal(raw, into); err != nil {
		c.reply("error", errPayload{Message: "malformed payload"})
		return false
	}
	return true
}

// reply sends one frame straight to this connection.
func (c *client) reply(kind string, payload any) {
	raw, err := json.Marshal(OutMsg{T: kind, P: payload})
	if err != nil {
		return
	}
	c.enqueue(raw)
}
