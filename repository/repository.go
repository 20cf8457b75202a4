// Package repository holds the persistence contracts of the service and
// their gorm and in-memory implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/CUknot/studymatch_backend/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("repository: duplicate entry")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByIDs returns the users that exist; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// RoomFilter narrows Find. Zero values disable a condition.
type RoomFilter struct {
	Status string
	// Member keeps rooms the user hosts or participates in.
	Member uint
	// ExcludeMember drops rooms the user hosts or participates in.
	ExcludeMember uint
	// SubjectIn keeps rooms whose subject equals one of the values, ignoring case.
	SubjectIn []string
	// SubjectContains keeps rooms whose subject contains the value, ignoring case.
	SubjectContains string
}

// RoomRepository persists rooms together with their ordered participant list.
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	Find(ctx context.Context, filter RoomFilter) ([]models.Room, error)
	// Save overwrites the room and replaces its participant list.
	Save(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id uint) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, id uint) (*models.Notification, error)
	FindPending(ctx context.Context, senderID, receiverID, roomID uint) (*models.Notification, error)
	// ListPendingForReceiver returns newest first.
	ListPendingForReceiver(ctx context.Context, receiverID uint) ([]models.Notification, error)
	Save(ctx context.Context, n *models.Notification) error
}

// TaskRepository lookups are always scoped by owner.
type TaskRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	FindOwned(ctx context.Context, id, userID uint) (*models.Task, error)
	Save(ctx context.Context, task *models.Task) error
	DeleteOwned(ctx context.Context, id, userID uint) error
}

type HistoryRepository interface {
	RecordJoin(ctx context.Context, userID, roomID uint, subject string, at time.Time) error
	// RecordLeave closes the open entry of userID in roomID, if any.
	RecordLeave(ctx context.Context, userID, roomID uint, at time.Time) error
	// CloseRoom closes every open entry of roomID.
	CloseRoom(ctx context.Context, roomID uint, at time.Time) error
	ListByUser(ctx context.Context, userID uint) ([]models.RoomHistory, error)
}

// Store bundles the repositories a running service needs.
type Store struct {
	Users         UserRepository
	Rooms         RoomRepository
	Notifications NotificationRepository
	Tasks         TaskRepository
	History       HistoryRepository
}

// NewGormStore backs every repository with db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:         &gormUserRepo{db: db},
		Rooms:         &gormRoomRepo{db: db},
		Notifications: &gormNotificationRepo{db: db},
		Tasks:         &gormTaskRepo{db: db},
		History:       &gormHistoryRepo{db: db},
	}
}

func mapGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
