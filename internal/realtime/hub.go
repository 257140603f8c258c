package realtime

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ufoundit-dev/ufoundit/internal/presence"
	"github.com/ufoundit-dev/ufoundit/pkg/logger"
	"github.com/ufoundit-dev/ufoundit/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16 // 64 KiB

	defaultBufferSize = 64
)

// Hub owns every live websocket connection and the presence directory binding
// user identities to endpoints. Pushes are at-most-once and best-effort: an
// absent or backpressured endpoint is skipped silently, never queued.
type Hub struct {
	mu        sync.RWMutex
	conns     map[string]*connection // endpointID -> connection
	directory *presence.Directory
	upgrader  websocket.Upgrader
	log       *zap.Logger
}

// NewHub constructs a realtime hub around the supplied presence directory.
func NewHub(directory *presence.Directory) *Hub {
	return &Hub{
		conns:     make(map[string]*connection),
		directory: directory,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Allow same-origin requests and explicit localhost development.
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				requestHost := hostWithoutPort(r.Host)
				return originHost == requestHost || isLoopback(originHost)
			},
		},
		log: logger.WithModule("realtime"),
	}
}

// Serve upgrades the HTTP connection to a WebSocket, assigns it a fresh
// endpoint id, and registers the authenticated user in the presence directory.
func (h *Hub) Serve(userID, userName string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	client := &connection{
		hub:        h,
		socket:     conn,
		endpointID: uuid.NewString(),
		userID:     userID,
		userName:   userName,
		send:       make(chan Envelope, defaultBufferSize),
	}

	h.register(client)

	go client.writeLoop()
	client.readLoop()
}

// EmitToUser delivers an event to the user's live endpoint if one exists.
// It reports whether the event was handed to the endpoint's send queue; false
// means the user was not connected (or the endpoint was being torn down) and
// the push degraded to "persisted only".
func (h *Hub) EmitToUser(userID, event string, data any) bool {
	endpointID, ok := h.directory.Lookup(userID)
	if !ok {
		metrics.RealtimePushes.WithLabelValues(event, "skipped").Inc()
		return false
	}

	h.mu.RLock()
	client := h.conns[endpointID]
	h.mu.RUnlock()

	if client == nil || !h.enqueue(client, Envelope{Event: event, Data: data}) {
		metrics.RealtimePushes.WithLabelValues(event, "skipped").Inc()
		return false
	}

	metrics.RealtimePushes.WithLabelValues(event, "delivered").Inc()
	return true
}

// EmitAll broadcasts an event to every connected endpoint.
func (h *Hub) EmitAll(event string, data any) {
	h.mu.RLock()
	clients := make([]*connection, 0, len(h.conns))
	for _, client := range h.conns {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		result := "delivered"
		if !h.enqueue(client, Envelope{Event: event, Data: data}) {
			result = "skipped"
		}
		metrics.RealtimePushes.WithLabelValues(event, result).Inc()
	}
}

// ConnectionCount returns the number of live endpoints.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) register(client *connection) {
	h.mu.Lock()
	h.conns[client.endpointID] = client
	h.mu.Unlock()

	if client.userID != "" {
		h.directory.Register(client.userID, client.endpointID)
	}
	metrics.ConnectedClients.Inc()
}

func (h *Hub) unregister(client *connection) {
	h.mu.Lock()
	delete(h.conns, client.endpointID)
	h.mu.Unlock()

	h.directory.Unregister(client.endpointID)
	metrics.ConnectedClients.Dec()
}

// enqueue hands an envelope to the client's send queue and reports whether it
// was accepted. The client's own mutex serializes the send against close, so
// a disconnect racing a push can never land on a closed channel.
func (h *Hub) enqueue(client *connection, envelope Envelope) bool {
	client.mu.Lock()
	defer client.mu.Unlock()

	if client.closed {
		return false
	}

	select {
	case client.send <- envelope:
		return true
	default:
		h.log.Warn("dropping backpressured client", zap.String("user_id", client.userID))
		// Close asynchronously: enqueue can run under the hub read lock and
		// teardown needs the write lock.
		go client.close()
		return false
	}
}

type connection struct {
	hub        *Hub
	socket     *websocket.Conn
	endpointID string
	userID     string
	userName   string
	send       chan Envelope
	once       sync.Once

	mu     sync.Mutex // guards closed and the send channel's lifecycle
	closed bool
}

func (c *connection) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("unexpected close", zap.String("user_id", c.userID), zap.Error(err))
			}
			break
		}

		if len(payload) == 0 {
			continue
		}

		var raw struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(payload, &raw); err != nil {
			c.hub.log.Debug("invalid payload", zap.String("user_id", c.userID), zap.Error(err))
			continue
		}

		c.handleEvent(strings.ToLower(strings.TrimSpace(raw.Event)), raw.Data)
	}
}

func (c *connection) handleEvent(event string, data json.RawMessage) {
	switch event {
	case EventRegister:
		var p RegisterPayload
		if err := json.Unmarshal(data, &p); err != nil || p.UserID == "" {
			return
		}
		// The JWT already bound an identity at upgrade time; an explicit
		// register simply re-asserts it (reconnect-era client compatibility).
		c.hub.directory.Register(p.UserID, c.endpointID)

	case EventSendMessage:
		var p ChatPayload
		if err := json.Unmarshal(data, &p); err != nil || p.ReceiverID == "" {
			return
		}
		p.SenderID = c.userID
		if p.SenderName == "" {
			p.SenderName = c.userName
		}
		p.CreatedAt = time.Now().UTC()

		c.hub.EmitToUser(p.ReceiverID, EventNewMessage, p)
		// Echo back to the sender as a delivery confirmation.
		c.hub.enqueue(c, Envelope{Event: EventMessageSent, Data: p})

	case EventTyping:
		c.relayTyping(data, EventUserTyping)

	case EventStopTyping:
		c.relayTyping(data, EventUserStopTyping)

	default:
		c.hub.log.Debug("unsupported event", zap.String("event", event), zap.String("user_id", c.userID))
	}
}

func (c *connection) relayTyping(data json.RawMessage, outbound string) {
	var p TypingPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ReceiverID == "" {
		return
	}
	c.hub.EmitToUser(p.ReceiverID, outbound, map[string]any{"item_id": p.ItemID})
}

func (c *connection) writeLoop() {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case envelope, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteJSON(envelope); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) close() {
	c.once.Do(func() {
		c.hub.unregister(c)

		// Flip closed and close the channel under the same lock enqueue
		// holds while sending, so no send can straddle the close.
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		_ = c.socket.Close()
	})
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		parsed, err := http.NewRequest(http.MethodGet, host, nil)
		if err == nil {
			return hostWithoutPort(parsed.URL.Host)
		}
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}
