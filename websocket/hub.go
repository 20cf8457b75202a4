package websocket

import (
	"encoding/json"
	"sync"

	"github.com/CUknot/studymatch_backend/registry"
	"github.com/CUknot/studymatch_backend/services"
	"github.com/sirupsen/logrus"
)

// Outbound event types.
const (
	EventRoomListUpdate  = "room_list_update"
	EventMatchListUpdate = "match_list_update"
	EventRoomClosed      = "room_closed"
	EventChatMessage     = "chat_message"
	EventError           = "error"
)

var _ services.Broadcaster = (*Hub)(nil)

// Hub maintains the set of active clients and fans events out to them.
// Every fan-out holds mu for its whole duration, so broadcasts never
// interleave.
type Hub struct {
	registry *registry.Registry

	// Registered clients
	clients map[*Client]bool

	// Private channels (userID -> clients)
	users map[uint]map[*Client]bool

	// Room channels (roomID -> clients)
	rooms map[uint]map[*Client]bool

	// Interests used for match_list_update, per user
	subjects map[uint][]string

	mu sync.Mutex

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a hub publishing from reg.
func NewHub(reg *registry.Registry) *Hub {
	return &Hub{
		registry:   reg,
		clients:    make(map[*Client]bool),
		users:      make(map[uint]map[*Client]bool),
		rooms:      make(map[uint]map[*Client]bool),
		subjects:   make(map[uint][]string),
		unregister: make(chan *Client),
	}
}

// Run processes unregistrations until the process exits.
func (h *Hub) Run() {
	for client := range h.unregister {
		h.removeClient(client)
	}
}

// addClient joins the client to its private channel and sends it the
// current room and suggestion lists. It runs on the connecting goroutine
// and must return before the client's pumps start.
func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = true
	if _, ok := h.users[c.userID]; !ok {
		h.users[c.userID] = make(map[*Client]bool)
	}
	h.users[c.userID][c] = true
	if c.subjects != nil {
		h.subjects[c.userID] = c.subjects
	}

	if msg, err := encode(EventRoomListUpdate, h.registry.Snapshot()); err == nil {
		h.sendLocked(c, msg)
	}
	h.sendMatchesLocked(c)

	logrus.WithField("user_id", c.userID).Debug("Websocket client registered")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.dropLocked(c)
		logrus.WithField("user_id", c.userID).Debug("Websocket client unregistered")
	}
}

// dropLocked forgets the client everywhere and closes its send buffer.
func (h *Hub) dropLocked(c *Client) {
	delete(h.clients, c)
	close(c.send)

	if conns, ok := h.users[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.users, c.userID)
			delete(h.subjects, c.userID)
		}
	}
	for roomID := range c.rooms {
		h.detachLocked(c, roomID)
	}
}

// sendLocked queues msg without blocking; a client with a full buffer is
// dropped.
func (h *Hub) sendLocked(c *Client, msg []byte) {
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
		logrus.WithField("user_id", c.userID).Warn("Websocket send buffer full, dropping client")
		h.dropLocked(c)
	}
}

func (h *Hub) sendMatchesLocked(c *Client) {
	matches := h.registry.Suggested(c.userID, h.subjects[c.userID])
	if msg, err := encode(EventMatchListUpdate, matches); err == nil {
		h.sendLocked(c, msg)
	}
}

// PublishRooms sends the registry snapshot to everyone, then each client
// its own suggestions.
func (h *Hub) PublishRooms() {
	msg, err := encode(EventRoomListUpdate, h.registry.Snapshot())
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.sendLocked(c, msg)
	}
	for c := range h.clients {
		h.sendMatchesLocked(c)
	}
}

// SendToUser delivers an event to every connection of userID. Offline
// users miss it.
func (h *Hub) SendToUser(userID uint, event string, payload interface{}) {
	msg, err := encode(event, payload)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.users[userID]
	if len(conns) == 0 {
		logrus.WithFields(logrus.Fields{"user_id": userID, "event": event}).Debug("User offline, event not delivered")
		return
	}
	for c := range conns {
		h.sendLocked(c, msg)
	}
}

// CloseRoom announces room_closed to the room channel and detaches its
// members.
func (h *Hub) CloseRoom(roomID uint, message string) {
	msg, err := encode(EventRoomClosed, map[string]interface{}{"roomId": roomID, "message": message})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[roomID] {
		h.sendLocked(c, msg)
	}
	for c := range h.rooms[roomID] {
		h.detachLocked(c, roomID)
	}
	delete(h.rooms, roomID)
}

// UpdateSubjects replaces the interests of userID and pushes a fresh
// suggestion list to its connections.
func (h *Hub) UpdateSubjects(userID uint, subjects []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.users[userID]
	if len(conns) == 0 {
		return
	}
	h.subjects[userID] = append([]string{}, subjects...)
	for c := range conns {
		h.sendMatchesLocked(c)
	}
}

// joinRoom adds a client to a room channel
func (h *Hub) joinRoom(c *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
	c.rooms[roomID] = true
}

// leaveRoom removes a client from a room channel
func (h *Hub) leaveRoom(c *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c, roomID)
}

func (h *Hub) detachLocked(c *Client, roomID uint) {
	delete(c.rooms, roomID)
	if members, ok := h.rooms[roomID]; ok {
		delete(members, c)
		// Clean up empty channels
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) inRoom(c *Client, roomID uint) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rooms[roomID][c]
}

// broadcastToRoom sends an event to all clients in a room channel
func (h *Hub) broadcastToRoom(roomID uint, event string, payload interface{}) {
	msg, err := encode(event, payload)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[roomID] {
		h.sendLocked(c, msg)
	}
}

// encode builds the wire envelope of an outbound event.
func encode(event string, payload interface{}) ([]byte, error) {
	msg, err := json.Marshal(Message{Type: event, Payload: payload})
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to marshal websocket message")
		return nil, err
	}
	return msg, nil
}
