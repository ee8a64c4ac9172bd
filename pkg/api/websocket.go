package api

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dd0wney/cluso-eyeball/pkg/api/middleware"
	"github.com/dd0wney/cluso-eyeball/pkg/interaction"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/metrics"
	"github.com/dd0wney/cluso-eyeball/pkg/pubsub"
	"github.com/dd0wney/cluso-eyeball/pkg/workspace"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

// Message types pushed to websocket clients.
const (
	MessageSnapshot  = "snapshot"
	MessageLoaded    = string(workspace.EventLoaded)
	MessageSelection = string(workspace.EventSelection)
	MessageClick     = "click"
	MessageError     = "error"
)

// Command types accepted from websocket clients.
const (
	CommandClick     = "click"
	CommandCloseMenu = "close_menu"
	CommandSnapshot  = "snapshot"
)

// Message is the envelope pushed to websocket clients.
type Message struct {
	Type     string              `json:"type"`
	Version  uint64              `json:"version"`
	Outcome  string              `json:"outcome,omitempty"`
	Error    string              `json:"error,omitempty"`
	Snapshot *workspace.Snapshot `json:"snapshot,omitempty"`
}

// Command is a request sent by a websocket client.
type Command struct {
	Type  string   `json:"type"`
	Nodes []string `json:"nodes,omitempty"`
}

// hub tracks websocket clients. Each client holds its own workspace
// subscription, so fan-out happens in the pubsub layer.
type hub struct {
	ws       Workspace
	logger   logging.Logger
	metrics  *metrics.Registry
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	hub    *hub
	conn   *websocket.Conn
	send   chan Message
	ctx    context.Context
	cancel context.CancelFunc
}

func newHub(ws Workspace, cors *middleware.CORSConfig, logger logging.Logger, m *metrics.Registry) *hub {
	h := &hub{
		ws:      ws,
		logger:  logger.With(logging.Component("websocket")),
		metrics: m,
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
				return true
			}
			return cors.Allows(origin)
		},
	}
	return h
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade failed", logging.Error(err))
		return
	}

	// The request context ends when ServeHTTP returns.
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := h.ws.Subscribe(ctx)
	if err != nil {
		cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "workspace closed"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan Message, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
	if !h.register(c) {
		cancel()
		sub.Unsubscribe()
		conn.Close()
		return
	}

	if snap, err := h.ws.Snapshot(ctx); err == nil {
		c.enqueue(Message{Type: MessageSnapshot, Version: snap.Version, Snapshot: &snap})
	}

	go c.writePump(sub)
	go c.forward(sub)
	go c.readPump()
}

func (h *hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.metrics != nil {
		h.metrics.WebSocketClients.Inc()
	}
	h.logger.Debug("client connected", logging.Count(len(h.clients)))
	return true
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if h.metrics != nil {
		h.metrics.WebSocketClients.Dec()
	}
	h.logger.Debug("client disconnected", logging.Count(len(h.clients)))
}

// count returns the number of connected clients.
func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.cancel()
	}
}

// enqueue queues msg for the writer. A client that cannot keep up is
// disconnected.
func (c *client) enqueue(msg Message) {
	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	default:
		c.hub.logger.Warn("websocket client too slow, disconnecting")
		c.cancel()
	}
}

// forward relays workspace events until the client or workspace goes away.
func (c *client) forward(sub *pubsub.Subscription[workspace.Event]) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-sub.Channel():
			if !ok {
				c.cancel()
				return
			}
			snap := ev.Snapshot
			c.enqueue(Message{Type: string(ev.Kind), Version: ev.Version, Snapshot: &snap})
		}
	}
}

func (c *client) readPump() {
	defer c.cancel()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read failed", logging.Error(err))
			}
			return
		}
		c.handle(cmd)
	}
}

func (c *client) handle(cmd Command) {
	switch cmd.Type {
	case CommandClick:
		outcome, snap, err := c.hub.ws.Click(c.ctx, interaction.ClickEvent{Nodes: cmd.Nodes})
		if err != nil {
			c.enqueue(Message{Type: MessageError, Error: err.Error()})
			return
		}
		c.enqueue(Message{Type: MessageClick, Version: snap.Version, Outcome: outcome.String(), Snapshot: &snap})

	case CommandCloseMenu:
		if _, err := c.hub.ws.CloseMenu(c.ctx); err != nil {
			c.enqueue(Message{Type: MessageError, Error: err.Error()})
		}

	case CommandSnapshot:
		snap, err := c.hub.ws.Snapshot(c.ctx)
		if err != nil {
			c.enqueue(Message{Type: MessageError, Error: err.Error()})
			return
		}
		c.enqueue(Message{Type: MessageSnapshot, Version: snap.Version, Snapshot: &snap})

	default:
		c.enqueue(Message{Type: MessageError, Error: "unknown command " + cmd.Type})
	}
}

// writePump is the only goroutine that writes to the connection.
func (c *client) writePump(sub *pubsub.Subscription[workspace.Event]) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Unsubscribe()
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.cancel()
				return
			}
			if c.hub.metrics != nil {
				c.hub.metrics.WebSocketMessagesTotal.Inc()
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}
