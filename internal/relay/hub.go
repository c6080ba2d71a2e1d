// Package relay streams game events to spectators over WebSocket.
package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/thraizz/azoth-server-go/internal/game/rules"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Message is the envelope of everything sent to or received from a client.
type Message struct {
	Type   string `json:"type"`
	GameID string `json:"game_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// EventData is the wire form of an engine event.
type EventData struct {
	Event     rules.EventType `json:"event"`
	Turn      int             `json:"turn"`
	Phase     rules.Phase     `json:"phase"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   rules.Payload   `json:"payload"`
}

// Message types.
const (
	TypeEvent      = "event"
	TypeSubscribe  = "subscribe"
	TypeSubscribed = "subscribed"
)

// Client is one spectator connection watching a single game.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

type envelope struct {
	gameID string
	data   []byte
}

type subscription struct {
	client *Client
	gameID string
}

// Hub fans engine events out to the clients watching each game. All
// client bookkeeping happens on the Run goroutine.
type Hub struct {
	logger     *zap.Logger
	upgrader   websocket.Upgrader
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	done       chan struct{}

	mu    sync.RWMutex
	count int
}

// NewHub creates a hub. Call Run before serving clients.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		done:       make(chan struct{}),
	}
}

// Run services the hub until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.setCount(len(h.clients))
			h.logger.Info("spectator connected", zap.String("client_id", client.id), zap.String("game_id", client.gameID))

		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
				h.logger.Info("spectator disconnected", zap.String("client_id", client.id))
			}

		case sub := <-h.subscribe:
			if h.clients[sub.client] {
				sub.client.gameID = sub.gameID
				h.deliver(sub.client, mustMarshal(Message{Type: TypeSubscribed, GameID: sub.gameID}))
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.gameID == msg.gameID {
					h.deliver(client, msg.data)
				}
			}
		}
	}
}

// deliver queues data for client, dropping a client that cannot keep up.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.logger.Warn("dropping slow spectator", zap.String("client_id", client.id))
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount(len(h.clients))
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// ClientCount returns the number of connected spectators.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Publish sends msg to every client watching gameID. It returns false once
// the hub has stopped.
func (h *Hub) Publish(gameID string, msg Message) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	msg.GameID = gameID
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode message", zap.String("type", msg.Type), zap.Error(err))
		return false
	}
	select {
	case h.broadcast <- envelope{gameID: gameID, data: data}:
		return true
	case <-h.done:
		return false
	}
}

// Attach relays every event published on bus to the clients watching
// gameID. The returned handle unsubscribes it from bus.
func (h *Hub) Attach(gameID string, bus *rules.EventBus) int {
	return bus.Subscribe(func(e rules.Event) {
		h.Publish(gameID, Message{Type: TypeEvent, Data: EventData{
			Event:     e.Type,
			Turn:      e.Turn,
			Phase:     e.Phase,
			Timestamp: e.Timestamp,
			Payload:   e.Payload,
		}})
	})
}

// ServeHTTP upgrades the request to a WebSocket. The optional "game" query
// parameter selects the game to watch; clients may switch later with a
// subscribe message.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		gameID: r.URL.Query().Get("game"),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(client)
	go h.readPump(client)
}

func (h *Hub) readPump(c *Client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("spectator read failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case TypeSubscribe:
			select {
			case h.subscribe <- subscription{client: c, gameID: msg.GameID}:
			case <-h.done:
				return
			}
		default:
			h.logger.Debug("ignoring spectator message", zap.String("client_id", c.id), zap.String("type", msg.Type))
		}
	}
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func mustMarshal(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return data
}
