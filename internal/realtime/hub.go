// Package realtime pushes activity events to connected browsers over websockets.
package realtime

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// memberSep joins a user id and the instance holding its socket in presence sets.
const memberSep = "|"

// Event is the frame written to a client.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Connection is one websocket of a user, optionally joined to a page room.
type Connection struct {
	conn   *websocket.Conn
	UserID string
	Room   string

	writeMu  sync.Mutex
	LastSeen time.Time
}

func (c *Connection) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Presence tracks room membership outside this process so rooms span instances.
// Members are opaque strings owned by the hub.
type Presence interface {
	Join(ctx context.Context, room, member string) error
	Leave(ctx context.Context, room, member string) error
	Members(ctx context.Context, room string) ([]string, error)
}

// RelayMessage carries an event to the instances holding the user's sockets.
type RelayMessage struct {
	Origin string `json:"origin"`
	UserID string `json:"userId"`
	Event  Event  `json:"event"`
}

// Relay fans events out to the other instances.
type Relay interface {
	Publish(ctx context.Context, msg RelayMessage) error
	// Subscribe calls handle for every message until ctx is done.
	Subscribe(ctx context.Context, handle func(RelayMessage)) error
}

// Hub indexes live connections by user and by room.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*Connection]struct{}
	rooms    map[string]map[*Connection]struct{}
	presence Presence
	relay    Relay
	instance string
}

// NewHub returns a hub. presence and relay may be nil, in which case rooms
// and delivery stay local to this instance.
func NewHub(presence Presence, relay Relay) *Hub {
	return &Hub{
		clients:  make(map[string]map[*Connection]struct{}),
		rooms:    make(map[string]map[*Connection]struct{}),
		presence: presence,
		relay:    relay,
		instance: uuid.NewString(),
	}
}

func (h *Hub) member(userID string) string {
	return userID + memberSep + h.instance
}

// Register adds a connection for userID and joins it to room when room is set.
func (h *Hub) Register(ctx context.Context, userID, room string, conn *websocket.Conn) *Connection {
	c := &Connection{conn: conn, UserID: userID, Room: room, LastSeen: time.Now()}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Connection]struct{})
	}
	h.clients[userID][c] = struct{}{}
	if room != "" {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[*Connection]struct{})
		}
		h.rooms[room][c] = struct{}{}
	}
	total := len(h.clients[userID])
	h.mu.Unlock()

	if room != "" && h.presence != nil {
		if err := h.presence.Join(ctx, room, h.member(userID)); err != nil {
			logger.Log.WithError(err).WithField("room", room).Warn("Failed to record room presence")
		}
	}

	logger.Log.WithFields(logrus.Fields{"user_id": userID, "room": room, "connections": total}).Info("WebSocket connected")
	return c
}

// Unregister removes the connection and closes it.
func (h *Hub) Unregister(ctx context.Context, c *Connection) {
	h.mu.Lock()
	if conns, ok := h.clients[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	lastInRoom := false
	if c.Room != "" {
		if conns, ok := h.rooms[c.Room]; ok {
			if _, member := conns[c]; !member {
				h.mu.Unlock()
				_ = c.conn.Close()
				return
			}
			delete(conns, c)
			lastInRoom = true
			for other := range conns {
				if other.UserID == c.UserID {
					lastInRoom = false
					break
				}
			}
			if len(conns) == 0 {
				delete(h.rooms, c.Room)
			}
		}
	}
	h.mu.Unlock()

	// only this instance's membership goes; sockets elsewhere keep theirs
	if lastInRoom && h.presence != nil {
		if err := h.presence.Leave(ctx, c.Room, h.member(c.UserID)); err != nil {
			logger.Log.WithError(err).WithField("room", c.Room).Warn("Failed to clear room presence")
		}
	}

	_ = c.conn.Close()
	logger.Log.WithField("user_id", c.UserID).Info("WebSocket disconnected")
}

// SendEvent writes an event to every local connection of userID and, when a
// relay is configured, publishes it for the other instances. A user without
// a live connection is not an error.
func (h *Hub) SendEvent(userID, eventType string, payload any) error {
	event := Event{Event: eventType, Data: payload}
	err := h.deliver(userID, event)

	if h.relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		msg := RelayMessage{Origin: h.instance, UserID: userID, Event: event}
		if perr := h.relay.Publish(ctx, msg); perr != nil {
			logger.Log.WithError(perr).WithField("user_id", userID).Warn("Failed to relay event")
			if err == nil {
				err = perr
			}
		}
	}
	return err
}

// deliver writes event to the sockets of userID held by this instance.
func (h *Hub) deliver(userID string, event Event) error {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	var firstErr error
	for _, c := range conns {
		if err := c.writeJSON(event); err != nil {
			logger.Log.WithError(err).WithField("user_id", userID).Warn("Failed WS send")
			if firstErr == nil {
				firstErr = err
			}
			go h.Unregister(context.Background(), c)
		}
	}
	return firstErr
}

// Listen delivers events relayed by other instances until ctx is done.
// Without a relay it returns immediately.
func (h *Hub) Listen(ctx context.Context) error {
	if h.relay == nil {
		return nil
	}
	return h.relay.Subscribe(ctx, func(msg RelayMessage) {
		if msg.Origin == h.instance {
			return
		}
		_ = h.deliver(msg.UserID, msg.Event)
	})
}

// GetUsersOfRoom returns the distinct users present in room, sorted.
func (h *Hub) GetUsersOfRoom(ctx context.Context, room string) ([]string, error) {
	if room == "" {
		return nil, nil
	}
	seen := make(map[string]struct{})

	fromPresence := false
	if h.presence != nil {
		members, err := h.presence.Members(ctx, room)
		if err == nil {
			fromPresence = true
			for _, m := range members {
				userID, _, _ := strings.Cut(m, memberSep)
				seen[userID] = struct{}{}
			}
		} else {
			logger.Log.WithError(err).WithField("room", room).Warn("Presence lookup failed, using local room")
		}
	}

	if !fromPresence {
		h.mu.RLock()
		for c := range h.rooms[room] {
			seen[c.UserID] = struct{}{}
		}
		h.mu.RUnlock()
	}

	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

// Heartbeat pings every connection on interval until ctx is done and drops
// connections that stopped answering.
func (h *Hub) Heartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var stale []*Connection
		for _, c := range h.connections() {
			c.writeMu.Lock()
			alive := time.Since(c.LastSeen) <= 2*interval
			if alive {
				_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
			}
			c.writeMu.Unlock()
			if !alive {
				stale = append(stale, c)
			}
		}

		for _, c := range stale {
			h.Unregister(ctx, c)
		}
	}
}

// connections snapshots every live connection. Callers must not hold h.mu.
func (h *Hub) connections() []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*Connection
	for _, conns := range h.clients {
		for c := range conns {
			out = append(out, c)
		}
	}
	return out
}

// Touch records that the client answered a ping.
func (c *Connection) Touch() {
	c.writeMu.Lock()
	c.LastSeen = time.Now()
	c.writeMu.Unlock()
}
