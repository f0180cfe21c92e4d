package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/models"
	"github.com/abrezinsky/polydemo/internal/services"
	"github.com/abrezinsky/polydemo/internal/widget"
)

// Message types sent to clients
const (
	MessageHello           = "hello"
	MessageSettingsChanged = "settings_changed"
	MessageCountdown       = "countdown"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // widgets are embedded on arbitrary pages
	},
}

// SettingsReader is the part of the settings service the hub needs
type SettingsReader interface {
	GetDataSource(ctx context.Context) (string, error)
}

// WidgetRenderer is the part of the widget service the hub needs
type WidgetRenderer interface {
	Render(id string) (widget.View, error)
}

// WidgetEvent is the payload of every widget-scoped message
type WidgetEvent struct {
	WidgetID string      `json:"widget_id"`
	Data     interface{} `json:"data,omitempty"`
}

type outbound struct {
	widgetID string
	msg      models.WSMessage
}

// Hub maintains the set of active clients and routes messages to them.
// Widget events go only to clients subscribed to that widget; settings
// changes go to everyone.
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	settings   SettingsReader
	widgets    WidgetRenderer
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage

	mu            sync.Mutex
	subscriptions map[string]bool
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, settings SettingsReader, widgets WidgetRenderer) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		settings:   settings,
		widgets:    widgets,
	}
}

var _ services.Broadcaster = (*Hub)(nil)

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case out := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if out.widgetID != "" && !client.subscribed(out.widgetID) {
					continue
				}
				select {
				case client.send <- out.msg:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	h.broadcast <- outbound{msg: models.WSMessage{Type: msgType, Payload: payload}}
}

// BroadcastWidgetEvent implements services.Broadcaster
func (h *Hub) BroadcastWidgetEvent(widgetID, event string, payload interface{}) {
	h.broadcast <- outbound{
		widgetID: widgetID,
		msg: models.WSMessage{
			Type:    event,
			Payload: WidgetEvent{WidgetID: widgetID, Data: payload},
		},
	}
}

// BroadcastSettingsChanged implements services.Broadcaster
func (h *Hub) BroadcastSettingsChanged(key string, value interface{}) {
	h.BroadcastMessage(MessageSettingsChanged, map[string]interface{}{
		"key":   key,
		"value": value,
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// subscribedWidgets returns every widget ID at least one client follows
func (h *Hub) subscribedWidgets() []string {
	seen := make(map[string]bool)
	h.mutex.RLock()
	for client := range h.clients {
		client.mu.Lock()
		for id := range client.subscriptions {
			seen[id] = true
		}
		client.mu.Unlock()
	}
	h.mutex.RUnlock()

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Client) subscribe(widgetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[widgetID] = true
}

func (c *Client) unsubscribe(widgetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, widgetID)
}

func (c *Client) subscribed(widgetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscriptions[widgetID]
}

// inbound is a message sent by a client
type inbound struct {
	Type    string `json:"type"`
	Payload struct {
		WidgetID string `json:"widget_id"`
	} `json:"payload"`
}

func (c *Client) handle(message []byte) {
	var msg inbound
	if err := json.Unmarshal(message, &msg); err != nil {
		c.hub.log.Debug("Ignoring malformed message", "error", err)
		return
	}
	switch msg.Type {
	case "subscribe":
		if msg.Payload.WidgetID != "" {
			c.subscribe(msg.Payload.WidgetID)
			c.hub.log.Debug("Client subscribed", "widget", msg.Payload.WidgetID)
		}
	case "unsubscribe":
		c.unsubscribe(msg.Payload.WidgetID)
	default:
		c.hub.log.Debug("Received message", "type", msg.Type)
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}
		c.handle(message)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients. A widget query
// parameter subscribes the connection to that widget right away.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:           h,
		conn:          conn,
		send:          make(chan models.WSMessage, 256),
		subscriptions: make(map[string]bool),
	}
	if id := r.URL.Query().Get("widget"); id != "" {
		client.subscriptions[id] = true
	}

	source, err := h.settings.GetDataSource(r.Context())
	if err != nil {
		h.log.Warn("Failed to read data source for hello", "error", err)
	}
	client.send <- models.WSMessage{
		Type:    MessageHello,
		Payload: map[string]interface{}{"data_source": source},
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// StartCountdown pushes the status line of every subscribed widget at
// the given interval until ctx is done.
func (h *Hub) StartCountdown(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("Countdown stopped")
			return
		case <-ticker.C:
			h.pushCountdowns()
		}
	}
}

func (h *Hub) pushCountdowns() {
	for _, id := range h.subscribedWidgets() {
		view, err := h.widgets.Render(id)
		if err != nil {
			continue
		}
		h.BroadcastWidgetEvent(id, MessageCountdown, map[string]interface{}{
			"lifecycle":   view.Lifecycle,
			"status_text": view.StatusText,
			"can_vote":    view.CanVote,
		})
	}
}
