package handlers

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/freedompraise/lockedin/internal/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types sent over WebSocket
const (
	EventProfileUpdated = "profile_updated"
	EventMirrorSynced   = "mirror_synced"
)

// WSEvent is the JSON message sent to connected clients
type WSEvent struct {
	Type   string      `json:"type"`
	UserID string      `json:"userId"`
	Data   interface{} `json:"data,omitempty"`
}

// sender is the part of *websocket.Conn the hub writes to.
type sender interface {
	WriteMessage(messageType int, data []byte) error
}

// connection wraps a websocket connection with its user ID
type connection struct {
	conn   sender
	userID uuid.UUID
	mu     sync.Mutex
}

func (c *connection) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub manages WebSocket connections per user. Every tab a user has open
// gets the events for that user.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*connection]bool // userID -> set of connections
	log   *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		rooms: make(map[uuid.UUID]map[*connection]bool),
		log:   log,
	}
}

// register adds a connection to a user room
func (h *Hub) register(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[conn.userID] == nil {
		h.rooms[conn.userID] = make(map[*connection]bool)
	}
	h.rooms[conn.userID][conn] = true
	h.log.Debugw("WS register", "userId", conn.userID, "total", len(h.rooms[conn.userID]))
}

// unregister removes a connection from a user room
func (h *Hub) unregister(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[conn.userID]; ok {
		delete(conns, conn)
		h.log.Debugw("WS unregister", "userId", conn.userID, "remaining", len(conns))
		if len(conns) == 0 {
			delete(h.rooms, conn.userID)
		}
	}
}

// Connections returns how many sockets the user has open.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Broadcast sends an event to all of the user's connections.
func (h *Hub) Broadcast(userID uuid.UUID, event WSEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.rooms[userID]
	if !ok {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Errorw("WS broadcast marshal error", "error", err)
		return
	}

	for c := range conns {
		if err := c.write(msg); err != nil {
			h.log.Warnw("WS write error", "userId", userID, "error", err)
		}
	}
}

// WebSocketUpgrade is the middleware that checks the upgrade request and validates JWT
func WebSocketUpgrade(tokens *auth.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		// Authenticate via query param: ?token=<jwt>
		tokenString := c.Query("token")
		if tokenString == "" {
			// Also check Authorization header for non-browser clients
			authHeader := c.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userId", claims.UserID)
		return c.Next()
	}
}

// HandleWebSocket keeps a profile-updates socket open until the client goes away.
func (h *Hub) HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	conn := &connection{conn: c, userID: userID}
	h.register(conn)
	defer h.unregister(conn)

	// Keep connection alive: read messages (client sends pings/keepalives)
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
