package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// Event types pushed to admin dashboards.
const (
	EventManifestRegistered = "manifest_registered"
	EventInstalled          = "installed"
	EventEnabled            = "enabled"
	EventDisabled           = "disabled"
	EventToolDispatched     = "tool_dispatched"
)

// PluginEvent is one lifecycle or dispatch event.
type PluginEvent struct {
	Type      string    `json:"type"`
	Plugin    string    `json:"plugin,omitempty"`
	Tool      string    `json:"tool,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventHub fans plugin events out to connected admin clients.
type EventHub struct {
	register   chan *eventClient
	unregister chan *eventClient
	broadcast  chan []byte
	clients    map[*eventClient]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
		broadcast:  make(chan []byte, 256),
		clients:    make(map[*eventClient]struct{}),
	}
}

func (h *EventHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				client.conn.Close()
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
					client.conn.Close()
				}
			}
		}
	}
}

// Broadcast pushes an event to all connected clients. Safe on a nil hub so
// callers can run without websockets wired.
func (h *EventHub) Broadcast(event PluginEvent) {
	if h == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: failed to marshal event: %v", err)
		return
	}
	h.broadcast <- data
}

type eventClient struct {
	hub  *EventHub
	conn *websocket.Conn
	send chan []byte
}

func newEventClient(hub *EventHub, conn *websocket.Conn) *eventClient {
	return &eventClient{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (c *eventClient) readPump() {
	defer func() {
		c.hub.unregister <- c
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *eventClient) writePump() {
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
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := w.Close(); err != nil {
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
