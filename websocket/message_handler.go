package websocket

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Inbound event types.
const (
	EventJoinRoom             = "join_room"
	EventLeaveRoom            = "leave_room"
	EventRoomDeleted          = "room_deleted"
	EventMarkNotificationRead = "mark_notification_read"
)

const handlerTimeout = 5 * time.Second

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// roomPayload is shared by join_room, leave_room and room_deleted.
type roomPayload struct {
	RoomID flexID `json:"roomId"`
}

type chatPayload struct {
	RoomID  flexID `json:"roomId"`
	Message string `json:"message"`
}

// flexID accepts an id sent either as a JSON number or a numeric string.
type flexID uint

func (id *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*id = flexID(n)
	return nil
}

// handleMessage processes one inbound frame from c.
func (h *Handler) handleMessage(c *Client, data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logrus.WithError(err).WithField("user_id", c.userID).Debug("Malformed websocket message")
		h.sendError(c, "Malformed message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch msg.Type {
	case EventJoinRoom:
		var p roomPayload
		if !h.decode(c, msg.Payload, &p) {
			return
		}
		h.joinRoom(c, uint(p.RoomID))
	case EventLeaveRoom:
		var p roomPayload
		if !h.decode(c, msg.Payload, &p) {
			return
		}
		c.hub.leaveRoom(c, uint(p.RoomID))
	case EventRoomDeleted:
		var p roomPayload
		if !h.decode(c, msg.Payload, &p) {
			return
		}
		if err := h.rooms.Reconcile(ctx, uint(p.RoomID)); err != nil {
			logrus.WithError(err).WithField("room_id", p.RoomID).Error("Room reconcile failed")
		}
	case EventChatMessage:
		var p chatPayload
		if !h.decode(c, msg.Payload, &p) {
			return
		}
		h.chat(c, uint(p.RoomID), p.Message)
	case EventMarkNotificationRead:
		var p notificationPayload
		if !h.decode(c, msg.Payload, &p) {
			return
		}
		h.markNotificationRead(ctx, c, uint(p.NotificationID))
	default:
		h.sendError(c, "Unknown event type")
	}
}

func (h *Handler) decode(c *Client, raw json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		h.sendError(c, "Invalid payload")
		return false
	}
	return true
}

// joinRoom attaches c to a room channel it belongs to.
func (h *Handler) joinRoom(c *Client, roomID uint) {
	entry, ok := c.hub.registry.Get(roomID)
	if !ok {
		h.sendError(c, "Room not found")
		return
	}
	if !entry.IsMember(c.userID) {
		logrus.WithFields(logrus.Fields{"user_id": c.userID, "room_id": roomID}).Warn("Join of room channel without membership")
		h.sendError(c, "You are not a participant of this room")
		return
	}
	c.hub.joinRoom(c, roomID)
}

func (h *Handler) chat(c *Client, roomID uint, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if !c.hub.inRoom(c, roomID) {
		h.sendError(c, "Join the room before sending messages")
		return
	}
	c.hub.broadcastToRoom(roomID, EventChatMessage, map[string]interface{}{
		"userId":    c.userID,
		"message":   text,
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) sendError(c *Client, message string) {
	msg, err := encode(EventError, map[string]string{"message": message})
	if err != nil {
		return
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	c.hub.sendLocked(c, msg)
}
