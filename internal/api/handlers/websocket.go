// Package handlers provides HTTP request handlers for the scandeck API.
// This file implements the websocket stream that pushes tab events to
// connected renderers.
package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/anstrom/scandeck/internal/api/middleware"
	"github.com/anstrom/scandeck/internal/logging"
	"github.com/anstrom/scandeck/internal/tab"
	"github.com/anstrom/scandeck/internal/views"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriodRatio = 0.9
	pingPeriod      = time.Duration(float64(pongWait) * pingPeriodRatio)
	maxMessageSize  = 512
	bufferSize      = 256
	clientBuffer    = 64
)

// Event types sent over the stream.
const (
	EventStatus   = "status"
	EventOutput   = "output"
	EventHosts    = "hosts"
	EventServices = "services"
	EventPrompt   = "prompt"
)

// Event is one message on the stream.
type Event struct {
	Type      string      `json:"type"`
	TabID     uuid.UUID   `json:"tab_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// StatusEvent is the payload of a status event.
type StatusEvent struct {
	State      tab.State `json:"state"`
	HasResults bool      `json:"has_results"`
}

// OutputEvent is the payload of an output event.
type OutputEvent struct {
	Output string `json:"output"`
}

// HostsEvent is the payload of a hosts event.
type HostsEvent struct {
	Hosts []views.HostListRow `json:"hosts"`
}

// ServicesEvent is the payload of a services event.
type ServicesEvent struct {
	Services []string `json:"services"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// EventHub fans tab events out to websocket clients. It implements
// tab.Surface; publishing never blocks the tab loop, a full buffer drops
// the event.
type EventHub struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	shutdown   chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
}

var _ tab.Surface = (*EventHub)(nil)

// NewEventHub creates a hub and starts its goroutine.
func NewEventHub(allowedOrigins []string) *EventHub {
	h := &EventHub{
		logger: logging.Default().WithComponent("websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, bufferSize),
		register:   make(chan *client),
		unregister: make(chan *client),
		shutdown:   make(chan struct{}),
	}

	go h.run()

	return h
}

// originChecker applies the same origin policy as the REST routes.
func originChecker(allowed []string) func(*http.Request) bool {
	allow := middleware.OriginAllowed(allowed)
	return func(r *http.Request) bool {
		return allow(r.Header.Get("Origin"))
	}
}

// ServeWS upgrades the request and streams events until the peer leaves.
func (h *EventHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", "request_id", requestID, "error", err)
		return
	}
	h.logger.Info("New WebSocket connection", "request_id", requestID, "remote_addr", r.RemoteAddr)

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	select {
	case h.register <- c:
	case <-h.shutdown:
		_ = conn.Close()
		return
	}

	go h.writePump(c, requestID)
	h.readPump(c, requestID)
}

func (h *EventHub) run() {
	for {
		select {
		case <-h.shutdown:
			h.mutex.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mutex.Unlock()
			h.logger.Debug("WebSocket hub shutting down")
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = true
			h.mutex.Unlock()
			h.logger.Debug("Client registered", "total_clients", h.ClientCount())

		case c := <-h.unregister:
			h.mutex.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.mutex.Unlock()
			h.logger.Debug("Client unregistered", "total_clients", h.ClientCount())

		case message := <-h.broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.logger.Warn("Client too slow, disconnecting")
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Shutdown stops the hub and disconnects every client.
func (h *EventHub) Shutdown() {
	h.stopOnce.Do(func() { close(h.shutdown) })
}

// ClientCount returns the number of connected clients.
func (h *EventHub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump drains the peer until it disconnects. Incoming messages are ignored.
func (h *EventHub) readPump(c *client, requestID string) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.shutdown:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("Failed to set read deadline", "request_id", requestID, "error", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket unexpected close", "request_id", requestID, "error", err)
			}
			return
		}
	}
}

// writePump sends queued events and keeps the connection alive with pings.
func (h *EventHub) writePump(c *client, requestID string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Debug("Write failed, closing connection", "request_id", requestID, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Debug("Ping failed, closing connection", "request_id", requestID, "error", err)
				return
			}
		}
	}
}

func (h *EventHub) publish(eventType string, id uuid.UUID, data interface{}) {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		TabID:     id,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		h.logger.Error("Failed to marshal event", "type", eventType, "error", err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("Broadcast channel full, dropping event", "type", eventType, "tab_id", id)
	}
}

// StatusChanged implements tab.Surface.
func (h *EventHub) StatusChanged(id uuid.UUID, state tab.State) {
	h.publish(EventStatus, id, StatusEvent{State: state, HasResults: state.HasResults()})
}

// OutputChanged implements tab.Surface.
func (h *EventHub) OutputChanged(id uuid.UUID, output string) {
	h.publish(EventOutput, id, OutputEvent{Output: output})
}

// HostsChanged implements tab.Surface.
func (h *EventHub) HostsChanged(id uuid.UUID, hosts []views.HostListRow) {
	h.publish(EventHosts, id, HostsEvent{Hosts: hosts})
}

// ServicesChanged implements tab.Surface.
func (h *EventHub) ServicesChanged(id uuid.UUID, services []string) {
	h.publish(EventServices, id, ServicesEvent{Services: services})
}

// Prompt implements tab.Surface.
func (h *EventHub) Prompt(id uuid.UUID, p tab.Prompt) {
	h.publish(EventPrompt, id, p)
}
