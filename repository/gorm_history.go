package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/CUknot/studymatch_backend/models"
	"gorm.io/gorm"
)

type gormHistoryRepo struct {
	db *gorm.DB
}

func (r *gormHistoryRepo) RecordJoin(ctx context.Context, userID, roomID uint, subject string, at time.Time) error {
	entry := models.RoomHistory{UserID: userID, RoomID: roomID, Subject: subject, JoinedAt: at}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record join: %w", err)
	}
	return nil
}

func (r *gormHistoryRepo) RecordLeave(ctx context.Context, userID, roomID uint, at time.Time) error {
	// Only the oldest open entry is closed, one leave per join.
	var entry models.RoomHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND room_id = ? AND left_at IS NULL", userID, roomID).
		Order("id ASC").
		First(&entry).Error
	if err != nil {
		if mapGormError(err) == ErrNotFound {
			return nil
		}
		return fmt.Errorf("find open history: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&entry).Update("left_at", at).Error; err != nil {
		return fmt.Errorf("record leave: %w", err)
	}
	return nil
}

func (r *gormHistoryRepo) CloseRoom(ctx context.Context, roomID uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.RoomHistory{}).
		Where("room_id = ? AND left_at IS NULL", roomID).
		Update("left_at", at).Error
	if err != nil {
		return fmt.Errorf("close room %d history: %w", roomID, err)
	}
	return nil
}

func (r *gormHistoryRepo) ListByUser(ctx context.Context, userID uint) ([]models.RoomHistory, error) {
	var entries []models.RoomHistory
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("joined_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
