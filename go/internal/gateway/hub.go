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

	"github.com/michalkopec1981/saper-gra/go/internal/events"
)

// Role identifies what kind of viewer a connection is.
type Role string

const (
	RoleHost    Role = "host"
	RolePlayer  Role = "player"
	RoleDisplay Role = "display"
)

// audience returns the roles an event type is delivered to. Warnings
// are a host-console affair; everything else goes to everyone.
func audience(t events.Type) map[Role]bool {
	if t == events.TypePlayerWarned {
		return map[Role]bool{RoleHost: true}
	}
	return map[Role]bool{RoleHost: true, RolePlayer: true, RoleDisplay: true}
}

// StateProvider supplies the catch-up events pushed to a viewer right
// after it connects.
type StateProvider interface {
	CatchUp(ctx context.Context) ([]events.Event, error)
}

// Hub manages the websocket connections of all viewers and fans game
// events out to them. It implements events.Bus, so apps can publish
// straight into it.
type Hub struct {
	mu    sync.RWMutex
	conns map[*Connection]bool

	upgrader    websocket.Upgrader
	config      Config
	state       StateProvider
	broadcastCh chan events.Event
}

// Connection represents one connected viewer. Send is never closed;
// writers may race with a disconnect, so teardown is signalled through
// done instead (closed exactly once by unregister, under the hub lock).
type Connection struct {
	ID   string
	Role Role
	Conn *websocket.Conn
	Send chan []byte
	done chan struct{}
	hub  *Hub

	ConnectedAt time.Time
	LastPing    time.Time
}

// Config holds websocket connection tuning.
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConfig returns default websocket configuration.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Viewers connect from phones on the venue wifi.
			return true
		},
	}
}

// NewHub creates a websocket hub.
func NewHub(state StateProvider, config Config) *Hub {
	return &Hub{
		conns: make(map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		state:       state,
		broadcastCh: make(chan events.Event, 256),
	}
}

// Publish implements events.Bus: the event is queued for fan-out to all
// connected viewers. A full queue drops the event rather than blocking
// the mutation that produced it.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	select {
	case h.broadcastCh <- event:
		return nil
	default:
		log.Warn().Str("event_type", string(event.Type)).Msg("broadcast queue full, dropping event")
		return fmt.Errorf("broadcast queue full")
	}
}

// Run processes queued events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	log.Info().Msg("websocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("websocket hub shutting down")
			return
		case event := <-h.broadcastCh:
			h.fanOut(event)
		}
	}
}

// HandleWS upgrades an HTTP request to a viewer connection. The role
// comes from the ?role= query parameter.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	role := Role(r.URL.Query().Get("role"))
	switch role {
	case RoleHost, RolePlayer, RoleDisplay:
	case "":
		role = RolePlayer
	default:
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Role:        role,
		Conn:        conn,
		Send:        make(chan []byte, 64),
		done:        make(chan struct{}),
		hub:         h,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}
	h.register(connection)

	go connection.writePump()
	go connection.readPump()

	// Late-join catch-up: push the current game state and leaderboard
	// so the new viewer renders immediately.
	h.sendCatchUp(r.Context(), connection)

	log.Info().
		Str("connection_id", connection.ID).
		Str("role", string(role)).
		Msg("viewer connected")
}

// HandleStats serves connection statistics for the host console.
func (h *Hub) HandleStats(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	total := len(h.conns)
	byRole := make(map[Role]int)
	for conn := range h.conns {
		byRole[conn.Role]++
	}
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"total_connections": total,
		"by_role":           byRole,
	}); err != nil {
		log.Error().Err(err).Msg("failed to write stats response")
	}
}

func (h *Hub) sendCatchUp(ctx context.Context, conn *Connection) {
	catchUp, err := h.state.CatchUp(ctx)
	if err != nil {
		log.Error().Err(err).Str("connection_id", conn.ID).Msg("failed to build catch-up state")
		return
	}
	for _, event := range catchUp {
		data, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal catch-up event")
			continue
		}
		select {
		case conn.Send <- data:
		default:
			log.Warn().Str("connection_id", conn.ID).Msg("send buffer full during catch-up")
		}
	}
}

func (h *Hub) register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(h.conns)).
		Msg("connection registered")
}

// unregister removes the connection and signals its pumps to exit.
// Send stays open: fanOut and sendCatchUp hold references taken before
// the lock, and a send on a closed channel would panic the process.
func (h *Hub) unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.conns[conn]; exists {
		delete(h.conns, conn)
		close(conn.done)
		log.Info().
			Str("connection_id", conn.ID).
			Str("role", string(conn.Role)).
			Msg("viewer disconnected")
	}
}

func (h *Hub) fanOut(event events.Event) {
	roles := audience(event.Type)

	h.mu.RLock()
	// Snapshot targets so the lock is not held while writing.
	var targets []*Connection
	for conn := range h.conns {
		if roles[conn.Role] {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targets {
		select {
		case conn.Send <- data:
		default:
			// Slow or dead viewer; drop it.
			log.Warn().
				Str("connection_id", conn.ID).
				Str("role", string(conn.Role)).
				Msg("send buffer full, closing connection")
			h.unregister(conn)
			conn.Conn.Close()
		}
	}

	log.Debug().
		Str("event_type", string(event.Type)).
		Int("connections", len(targets)).
		Msg("event broadcasted")
}

// writePump handles sending messages to the websocket connection.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.hub.unregister(c)
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to write websocket message")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to send ping")
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump drains incoming messages and keeps the read deadline fresh.
// Viewers do not send commands; the read loop exists for pong handling
// and to notice disconnects.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.hub.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("unexpected websocket close")
			}
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	}
}
