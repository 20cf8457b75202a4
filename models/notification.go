package models

import (
	"time"
)

const (
	NotificationRoomRequest = "room_request"

	NotificationPending  = "pending"
	NotificationAccepted = "accepted"
	NotificationRejected = "rejected"
)

// Notification is a join request. The idx_pending_request index allows at
// most one pending request per (sender, receiver, room).
type Notification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;uniqueIndex:idx_pending_request,where:status = 'pending'" json:"sender"`
	ReceiverID uint      `gorm:"not null;uniqueIndex:idx_pending_request,where:status = 'pending'" json:"receiver"`
	RoomID     uint      `gorm:"not null;uniqueIndex:idx_pending_request,where:status = 'pending'" json:"room"`
	Type       string    `gorm:"size:32;not null" json:"type"`
	Message    string    `gorm:"size:500" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"isRead"`
	Status     string    `gorm:"size:20;default:'pending';index" json:"status"` // pending, accepted, rejected
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (n *Notification) IsPending() bool {
	return n.Status == NotificationPending
}

// NotificationView is a notification with sender and room resolved.
type NotificationView struct {
	ID        uint        `json:"id"`
	Sender    UserSummary `json:"sender"`
	Receiver  uint        `json:"receiver"`
	Type      string      `json:"type"`
	Room      RoomSummary `json:"room"`
	Message   string      `json:"message"`
	IsRead    bool        `json:"isRead"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}
