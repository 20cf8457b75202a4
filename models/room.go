package models

import (
	"strings"
	"time"
)

const (
	RoomTypeSolo  = "solo"
	RoomTypeGroup = "group"

	RoomStatusActive   = "active"
	RoomStatusInactive = "inactive"
)

type Room struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	HostID   uint   `gorm:"not null;index" json:"host"`
	Type     string `gorm:"size:16;not null" json:"type"`
	Subject  string `gorm:"size:255;index" json:"subject"`
	RoomName string `gorm:"size:255;not null" json:"roomName"`
	Status   string `gorm:"size:16;not null;default:'active';index" json:"status"`
	MeetLink string `gorm:"size:512" json:"meetLink"`
	// Participants keeps join order; it is stored in room_participants.
	Participants []uint    `gorm:"-" json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RoomParticipant struct {
	RoomID    uint      `gorm:"primaryKey" json:"roomId"`
	UserID    uint      `gorm:"primaryKey;index" json:"userId"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

func ValidRoomType(t string) bool {
	return t == RoomTypeSolo || t == RoomTypeGroup
}

func (r *Room) IsActive() bool {
	return r.Status == RoomStatusActive
}

func (r *Room) HasParticipant(userID uint) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// IsMember reports whether userID hosts or participates in the room.
func (r *Room) IsMember(userID uint) bool {
	return r.HostID == userID || r.HasParticipant(userID)
}

// AddParticipant appends userID unless already present and reports whether
// the list changed.
func (r *Room) AddParticipant(userID uint) bool {
	if r.HasParticipant(userID) {
		return false
	}
	r.Participants = append(r.Participants, userID)
	return true
}

// RemoveParticipant drops userID and reports whether it was present.
func (r *Room) RemoveParticipant(userID uint) bool {
	kept := r.Participants[:0:0]
	removed := false
	for _, p := range r.Participants {
		if p == userID {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	r.Participants = kept
	return removed
}

// SubjectMatchesAny is the suggestion policy: whole-string equality, ignoring case.
func SubjectMatchesAny(subject string, interests []string) bool {
	for _, s := range interests {
		if s != "" && strings.EqualFold(s, subject) {
			return true
		}
	}
	return false
}

// SubjectContains is the search policy: substring match, ignoring case.
func SubjectContains(subject, query string) bool {
	return strings.Contains(strings.ToLower(subject), strings.ToLower(query))
}

// RoomView is a room with its user references resolved.
type RoomView struct {
	ID           uint          `json:"id"`
	Host         UserSummary   `json:"host"`
	Participants []UserSummary `json:"participants"`
	Type         string        `json:"type"`
	Subject      string        `json:"subject"`
	RoomName     string        `json:"roomName"`
	Status       string        `json:"status"`
	MeetLink     string        `json:"meetLink"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type RoomSummary struct {
	ID       uint   `json:"id"`
	RoomName string `json:"roomName"`
	Subject  string `json:"subject,omitempty"`
}
