package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/spaghettifunk/teapots/engine/core"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	// Frames queued per client before frames start being dropped for it.
	sendBuffer = 32
)

// Message is the websocket envelope in both directions. The server sends
// "hello" once and then "frame" messages; clients send {"key":"D"}.
type Message struct {
	Type  string      `json:"type,omitempty"`
	ID    string      `json:"id,omitempty"`
	Key   string      `json:"key,omitempty"`
	Frame interface{} `json:"frame,omitempty"`
	Error string      `json:"error,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *hub
}

type hub struct {
	mu      sync.Mutex
	clients map[*client]bool
	last    []byte
	closed  bool
	onKey   func(c *client, key string) error
}

func newHub(onKey func(c *client, key string) error) *hub {
	return &hub{
		clients: make(map[*client]bool),
		onKey:   onKey,
	}
}

// attach registers a connection and starts its pumps. The latest frame, if
// any, is sent right after the hello message.
func (h *hub) attach(conn *websocket.Conn) *client {
	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		hub:  h,
	}
	hello, _ := json.Marshal(Message{Type: "hello", ID: c.id})
	c.send <- hello

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(c.send)
		go c.writePump()
		return c
	}
	h.clients[c] = true
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	core.LogInfo("viewer %s connected from %s", c.id, conn.RemoteAddr())
	go c.writePump()
	go c.readPump()
	return c
}

func (h *hub) detach(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		core.LogInfo("viewer %s disconnected", c.id)
	}
}

// broadcast never blocks; a client that cannot keep up misses frames.
func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = msg
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			core.LogDebug("viewer %s is slow, frame dropped", c.id)
		}
	}
}

func (h *hub) reply(c *client, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				core.LogDebug("viewer %s write error: %v", c.id, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				core.LogDebug("viewer %s ping error: %v", c.id, err)
				return
			}
		}
	}
}

func (c *client) readPump() {
	defer c.hub.detach(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				core.LogWarn("viewer %s: %v", c.id, err)
			}
			return
		}
		if msg.Key == "" {
			continue
		}
		if err := c.hub.onKey(c, msg.Key); err != nil {
			reply, _ := json.Marshal(Message{Type: "error", ID: c.id, Error: err.Error()})
			c.hub.reply(c, reply)
		}
	}
}
