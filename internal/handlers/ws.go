package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"player-shell/internal/logging"
	"player-shell/internal/metrics"
	"player-shell/internal/player"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The control API is bound to loopback for the local shell UI.
		return true
	},
}

// Hub fans the bridge's snapshot stream out to connected UI clients.
type Hub struct {
	bridge *player.Bridge

	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	clients map[*Client]bool

	done     chan struct{}
	stopOnce sync.Once
}

func NewHub(bridge *player.Bridge) *Hub {
	return &Hub{
		bridge:     bridge,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run consumes the bridge's snapshot stream and broadcasts each snapshot
// to all connected clients. Blocks until Stop is called or the bridge
// shuts down.
func (h *Hub) Run() {
	snapshots, cancel := h.bridge.Subscribe()
	defer cancel()

	for {
		select {
		case <-h.done:
			h.closeClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.WebsocketClientsConnected.Inc()
			logging.Debug("websocket client %s connected", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				close(client.send)
				metrics.WebsocketClientsConnected.Dec()
				logging.Debug("websocket client %s disconnected", client.id)
			}
			h.mu.Unlock()

		case snap, ok := <-snapshots:
			if !ok {
				// Bridge closed first; disconnect clients the same way
				// Stop does.
				h.closeClients()
				return
			}
			h.broadcast(snap)
		}
	}
}

func (h *Hub) closeClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) broadcast(snap player.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- snap:
		default:
			// Slow consumer; drop rather than stall the stream.
			metrics.WebsocketMessagesDropped.Inc()
		}
	}
}

// Client is one UI connection to the snapshot stream.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan player.Snapshot
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan player.Snapshot, 8),
	}
}

// readPump discards inbound messages and tears the client down when the
// connection drops. The stream is one-way; commands go over the REST API.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Debug("websocket read error: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case snap, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(snap); err != nil {
				logging.Debug("websocket write error: %v", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWebsocket upgrades the connection and streams playback snapshots.
// The current snapshot is sent immediately so a new client never waits for
// the next refresh.
func (h *Handlers) ServeWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed: %v", err)
		return
	}

	client := newClient(h.hub, conn)
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	client.send <- h.bridge.Snapshot()

	go client.writePump()
	go client.readPump()
}
