package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcourt/buzzroom/internal/events"
)

// ConnectionManager is the connection registry: it tracks every live
// connection, which room channels each one is attached to, and fans events
// out to them. Delivery is best-effort per recipient; a slow connection is
// dropped rather than allowed to stall a room.
type ConnectionManager struct {
	mu        sync.RWMutex
	conns     map[string]*Connection
	roomConns map[string]map[*Connection]bool

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan broadcastMessage

	onMessage    func(conn *Connection, data []byte)
	onDisconnect func(connID string)
}

// Connection represents one WebSocket client. Its ID doubles as the player ID
// in room state.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
	LastPing    time.Time

	// rooms this connection is attached to, guarded by the manager's mu.
	rooms map[string]bool
}

// ConnectionConfig holds WebSocket tuning knobs.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

type broadcastMessage struct {
	roomCode string
	connID   string // if set, deliver to this connection only
	dropRoom bool   // tear down the room pool once prior queued events have drained
	event    *events.Event
}

// DefaultConnectionConfig returns the default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewConnectionManager creates a connection manager.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		conns:     make(map[string]*Connection),
		roomConns: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 1000),
	}
}

// SetMessageHandler registers the callback for inbound client messages.
func (cm *ConnectionManager) SetMessageHandler(fn func(conn *Connection, data []byte)) {
	cm.onMessage = fn
}

// SetDisconnectHandler registers the callback invoked once per dropped
// connection, after the connection has left the registry.
func (cm *ConnectionManager) SetDisconnectHandler(fn func(connID string)) {
	cm.onDisconnect = fn
}

// Start drains the broadcast channel until ctx is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP request to a WebSocket connection and
// registers it.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
		rooms:       make(map[string]bool),
	}

	cm.mu.Lock()
	cm.conns[connection.ID] = connection
	cm.mu.Unlock()

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("conn_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	return nil
}

// Attach adds a connection to a room's channel. Attaching twice is a no-op.
func (cm *ConnectionManager) Attach(connID, roomCode string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	conn, ok := cm.conns[connID]
	if !ok {
		return
	}
	if cm.roomConns[roomCode] == nil {
		cm.roomConns[roomCode] = make(map[*Connection]bool)
	}
	cm.roomConns[roomCode][conn] = true
	conn.rooms[roomCode] = true

	log.Debug().
		Str("conn_id", connID).
		Str("room_code", roomCode).
		Int("room_connections", len(cm.roomConns[roomCode])).
		Msg("connection attached to room")
}

// Detach removes a connection from a room's channel.
func (cm *ConnectionManager) Detach(connID, roomCode string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	conn, ok := cm.conns[connID]
	if !ok {
		return
	}
	delete(conn.rooms, roomCode)
	if pool, ok := cm.roomConns[roomCode]; ok {
		delete(pool, conn)
		if len(pool) == 0 {
			delete(cm.roomConns, roomCode)
		}
	}
}

// DropRoom removes a room's channel entirely, detaching every connection
// still on it. The teardown is queued behind events already in flight, so a
// closing room's final events still reach its members. The connections
// themselves stay alive.
func (cm *ConnectionManager) DropRoom(roomCode string) {
	select {
	case cm.broadcastCh <- broadcastMessage{roomCode: roomCode, dropRoom: true}:
	default:
		log.Warn().Str("room_code", roomCode).Msg("broadcast channel full, dropping room pool immediately")
		cm.removeRoomPool(roomCode)
	}
}

func (cm *ConnectionManager) removeRoomPool(roomCode string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for conn := range cm.roomConns[roomCode] {
		delete(conn.rooms, roomCode)
	}
	delete(cm.roomConns, roomCode)
}

// BroadcastToRoom queues an event for every connection attached to the room.
func (cm *ConnectionManager) BroadcastToRoom(roomCode string, evt *events.Event) {
	select {
	case cm.broadcastCh <- broadcastMessage{roomCode: roomCode, event: evt}:
	default:
		log.Warn().Str("room_code", roomCode).Msg("broadcast channel full, dropping message")
	}
}

// SendToConnection queues an event for a single connection. It shares the
// broadcast channel so per-connection ordering is preserved.
func (cm *ConnectionManager) SendToConnection(connID string, evt *events.Event) {
	select {
	case cm.broadcastCh <- broadcastMessage{connID: connID, event: evt}:
	default:
		log.Warn().Str("conn_id", connID).Msg("broadcast channel full, dropping direct message")
	}
}

// handleBroadcast delivers one queued message.
func (cm *ConnectionManager) handleBroadcast(message broadcastMessage) {
	if message.dropRoom {
		cm.removeRoomPool(message.roomCode)
		return
	}

	cm.mu.RLock()
	var targets []*Connection
	if message.connID != "" {
		if conn, ok := cm.conns[message.connID]; ok {
			targets = append(targets, conn)
		}
	} else {
		for conn := range cm.roomConns[message.roomCode] {
			targets = append(targets, conn)
		}
	}
	cm.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(message.event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targets {
		select {
		case conn.Send <- data:
		default:
			// Connection is slow or dead; drop it rather than block the room.
			log.Warn().
				Str("conn_id", conn.ID).
				Msg("connection send buffer full, closing connection")
			cm.dropConnection(conn)
		}
	}

	log.Debug().
		Str("event_type", string(message.event.Type)).
		Str("room_code", message.event.RoomCode).
		Int("connections", len(targets)).
		Msg("event delivered")
}

// unregister removes the connection from the registry and all room pools.
// It reports whether the connection was still registered, so close and
// disconnect handling run exactly once.
func (cm *ConnectionManager) unregister(conn *Connection) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, ok := cm.conns[conn.ID]; !ok {
		return false
	}
	delete(cm.conns, conn.ID)
	for code := range conn.rooms {
		if pool, ok := cm.roomConns[code]; ok {
			delete(pool, conn)
			if len(pool) == 0 {
				delete(cm.roomConns, code)
			}
		}
	}
	close(conn.Send)

	log.Info().
		Str("conn_id", conn.ID).
		Msg("connection unregistered")
	return true
}

// dropConnection tears down a connection and runs the disconnect reconciler
// exactly once.
func (cm *ConnectionManager) dropConnection(conn *Connection) {
	if !cm.unregister(conn) {
		return
	}
	conn.Conn.Close()
	if cm.onDisconnect != nil {
		cm.onDisconnect(conn.ID)
	}
}

// Stats describes the current registry contents.
type Stats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveRooms      int            `json:"active_rooms"`
	RoomConnections  map[string]int `json:"room_connections"`
}

// GetStats returns connection counts per room.
func (cm *ConnectionManager) GetStats() Stats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	s := Stats{
		TotalConnections: len(cm.conns),
		ActiveRooms:      len(cm.roomConns),
		RoomConnections:  make(map[string]int, len(cm.roomConns)),
	}
	for code, pool := range cm.roomConns {
		s.RoomConnections[code] = len(pool)
	}
	return s
}

// writePump sends queued messages and pings to the client.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Manager.dropConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("conn_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump reads client actions until the connection drops.
func (c *Connection) readPump() {
	defer c.Manager.dropConnection(c)

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("conn_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		if c.Manager.onMessage != nil {
			c.Manager.onMessage(c, message)
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
