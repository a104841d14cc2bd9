package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
)

const (
	writeWait      = 5 * time.Second
	sendBufferSize = 16
	maxMessageSize = 1 << 20
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

type wsError struct {
	Error string `json:"error"`
}

// Hub broadcasts every published result to connected WebSocket clients.
// Clients may push frames, which go through App.Ingest like HTTP frames.
type Hub struct {
	app         *app.App
	logger      *zap.Logger
	mu          sync.RWMutex
	clients     map[*wsClient]struct{}
	unsubscribe func()
}

// NewHub creates a Hub subscribed to a.
func NewHub(a *app.App, logger *zap.Logger) *Hub {
	h := &Hub{
		app:     a,
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
	h.unsubscribe = a.Subscribe(h.broadcast)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", zap.Error(err))
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register(c)
	defer h.unregister(c)

	go h.writePump(c)

	conn.SetReadLimit(maxMessageSize)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.handleMessage(c, msg)
	}
}

func (h *Hub) handleMessage(c *wsClient, msg []byte) {
	var frame detector.Frame
	if err := json.Unmarshal(msg, &frame); err != nil {
		h.reply(c, wsError{Error: "invalid frame: " + err.Error()})
		return
	}
	if _, ok := h.app.Ingest(frame); !ok {
		h.reply(c, wsError{Error: "detection is disabled"})
	}
}

func (h *Hub) reply(c *wsClient, v interface{}) {
	msg, err := json.Marshal(v)
	if err != nil {
		return
	}
	h.enqueue(c, msg)
}

func (h *Hub) writePump(c *wsClient) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("websocket write error", zap.Error(err))
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	wsClients.Inc()
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	wsClients.Dec()
}

// enqueue drops the message for a client whose buffer is full.
func (h *Hub) enqueue(c *wsClient, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.logger.Debug("dropping message for slow websocket client")
	}
}

func (h *Hub) broadcast(r app.Result) {
	msg, err := json.Marshal(r)
	if err != nil {
		h.logger.Error("failed to encode result", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("dropping message for slow websocket client")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close detaches the hub from the app and disconnects every client.
func (h *Hub) Close() {
	h.unsubscribe()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		wsClients.Dec()
	}
}
