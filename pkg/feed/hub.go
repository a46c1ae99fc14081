// Package feed broadcasts trade and book-depth updates to WebSocket
// subscribers. It is a pure consumer of the engine's existing Go API:
// the host calls Hub.BroadcastTrade/Hub.BroadcastDepth from the same
// place it calls Engine.Limit, after the call returns.
package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/luxfi/log"

	"github.com/lxmatch/engine/pkg/report"
)

// Hub manages WebSocket client connections and fans out market-data
// messages to subscribed clients.
type Hub struct {
	logger log.Logger

	clients    map[*client]bool
	clientsMu  sync.RWMutex
	register   chan *client
	unregister chan *client
	broadcast  chan message

	subscriptions map[string]map[*client]bool
	subMu         sync.RWMutex

	sequence    uint64
	messagesOut uint64

	done chan struct{}
	wg   sync.WaitGroup
}

type client struct {
	id       string
	conn     *websocket.Conn
	hub      *Hub
	send     chan []byte
	channels map[string]bool
	mu       sync.RWMutex
}

type message struct {
	Type      string      `json:"type"`
	Channel   string      `json:"channel,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Sequence  uint64      `json:"sequence,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewHub creates a Hub. Call Run in a goroutine before ServeHTTP starts
// accepting connections.
func NewHub(logger log.Logger) *Hub {
	return &Hub{
		logger:        logger,
		clients:       make(map[*client]bool),
		register:      make(chan *client, 100),
		unregister:    make(chan *client, 100),
		broadcast:     make(chan message, 1000),
		subscriptions: make(map[string]map[*client]bool),
		done:          make(chan struct{}),
	}
}

// Run drives client registration and broadcast fan-out until Stop is
// called.
func (h *Hub) Run() {
	h.wg.Add(1)
	defer h.wg.Done()

	for {
		select {
		case <-h.done:
			h.clientsMu.Lock()
			for c := range h.clients {
				close(c.send)
			}
			h.clientsMu.Unlock()
			return

		case c := <-h.register:
			h.clientsMu.Lock()
			h.clients[c] = true
			h.clientsMu.Unlock()
			h.logger.Debug("feed client connected", "id", c.id)

		case c := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.unsubscribeAll(c)
			}
			h.clientsMu.Unlock()
			h.logger.Debug("feed client disconnected", "id", c.id)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Stop shuts the hub down and waits for Run to return.
func (h *Hub) Stop() {
	close(h.done)
	h.wg.Wait()
}

// ServeHTTP upgrades the connection and starts its pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("feed upgrade failed", "error", err)
		return
	}

	c := &client{
		id:       fmt.Sprintf("client-%d", time.Now().UnixNano()),
		conn:     conn,
		hub:      h,
		send:     make(chan []byte, 256),
		channels: make(map[string]bool),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	for {
		var req struct {
			Type     string   `json:"type"`
			Channels []string `json:"channels"`
		}
		if err := c.conn.ReadJSON(&req); err != nil {
			return
		}
		switch req.Type {
		case "subscribe":
			c.mu.Lock()
			for _, ch := range req.Channels {
				c.channels[ch] = true
			}
			c.mu.Unlock()
			for _, ch := range req.Channels {
				c.hub.subscribe(ch, c)
			}
		case "unsubscribe":
			c.mu.Lock()
			for _, ch := range req.Channels {
				delete(c.channels, ch)
			}
			c.mu.Unlock()
			for _, ch := range req.Channels {
				c.hub.unsubscribe(ch, c)
			}
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.WriteMessage(websocket.TextMessage, data)
			atomic.AddUint64(&c.hub.messagesOut, 1)
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) subscribe(channel string, c *client) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	if h.subscriptions[channel] == nil {
		h.subscriptions[channel] = make(map[*client]bool)
	}
	h.subscriptions[channel][c] = true
}

func (h *Hub) unsubscribe(channel string, c *client) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	if set, ok := h.subscriptions[channel]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subscriptions, channel)
		}
	}
}

func (h *Hub) unsubscribeAll(c *client) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	for channel, set := range h.subscriptions {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subscriptions, channel)
		}
	}
}

func (h *Hub) deliver(msg message) {
	h.subMu.RLock()
	set := h.subscriptions[msg.Channel]
	h.subMu.RUnlock()
	if len(set) == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("feed marshal failed", "error", err)
		return
	}
	for c := range set {
		select {
		case c.send <- data:
			atomic.AddUint64(&h.messagesOut, 1)
		default:
			h.unregister <- c
		}
	}
}

// BroadcastTrade publishes an execution to the "trades" channel.
func (h *Hub) BroadcastTrade(x report.Execution) {
	h.broadcast <- message{
		Type:      "trade",
		Channel:   "trades",
		Data:      x,
		Timestamp: time.Now().Unix(),
		Sequence:  atomic.AddUint64(&h.sequence, 1),
	}
}

// BroadcastDepth publishes a book-depth snapshot to the "depth"
// channel.
func (h *Hub) BroadcastDepth(d report.Depth) {
	h.broadcast <- message{
		Type:      "depth",
		Channel:   "depth",
		Data:      d,
		Timestamp: time.Now().Unix(),
		Sequence:  atomic.AddUint64(&h.sequence, 1),
	}
}
