package models

import (
	"time"
)

type Task struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user"`
	Title     string     `gorm:"type:text;not null" json:"title"`
	DueDate   *time.Time `json:"dueDate"`
	Completed bool       `gorm:"default:false" json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
