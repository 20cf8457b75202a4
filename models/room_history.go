package models

import (
	"time"
)

// RoomHistory is an append-only membership record. LeftAt stays nil while
// the membership is open.
type RoomHistory struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	UserID   uint       `gorm:"not null;index" json:"user"`
	RoomID   uint       `gorm:"not null;index" json:"room"`
	Subject  string     `gorm:"size:255" json:"subject"`
	JoinedAt time.Time  `gorm:"not null" json:"joinedAt"`
	LeftAt   *time.Time `gorm:"index" json:"leftAt"`
}

func (RoomHistory) TableName() string {
	return "room_histories"
}
