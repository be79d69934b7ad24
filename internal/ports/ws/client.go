package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/samaschen/timebomb-boardgame/internal/app"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// client is one websocket connection bound to a transport session.
type client struct {
	srv  *Server
	conn *websocket.Conn
	send chan []byte
	sess app.SessionID

	mu   sync.Mutex
	room string
}

func (c *client) roomCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *client) setRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = code
}

// enqueue hands a frame to the write pump, dropping the connection if
// its buffer is full rather than blocking the dispatcher.
func (c *client) enqueue(raw []byte) {
	select {
	case c.send <- raw:
	default:
		c.srv.log.Warn().Str("session", string(c.sess)).Msg("send buffer full, closing")
		c.conn.Close()
	}
}

// readPump decodes inbound frames and hands them to the command
// handler until the connection drops, then reports the disconnect.
func (c *client) readPump() {
	defer func() {
		c.srv.hub.remove(c)
		c.conn.Close()
		if room := c.roomCode(); room != "" {
			events := c.srv.registry.Disconnect(room, c.sess)
			c.srv.hub.Dispatch(room, events)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.srv.handleMessage(c, raw)
	}
}

// writePump serializes all writes to the connection and keeps it alive
// with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
