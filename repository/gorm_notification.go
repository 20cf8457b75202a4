package repository

import (
	"context"
	"fmt"

	"github.com/CUknot/studymatch_backend/models"
	"gorm.io/gorm"
)

type gormNotificationRepo struct {
	db *gorm.DB
}

func (r *gormNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", mapGormError(err))
	}
	return nil
}

func (r *gormNotificationRepo) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, mapGormError(err)
	}
	return &n, nil
}

func (r *gormNotificationRepo) FindPending(ctx context.Context, senderID, receiverID, roomID uint) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ? AND room_id = ? AND type = ? AND status = ?",
			senderID, receiverID, roomID, models.NotificationRoomRequest, models.NotificationPending).
		First(&n).Error
	if err != nil {
		return nil, mapGormError(err)
	}
	return &n, nil
}

func (r *gormNotificationRepo) ListPendingForReceiver(ctx context.Context, receiverID uint) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, models.NotificationPending).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (r *gormNotificationRepo) Save(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Save(n).Error; err != nil {
		return fmt.Errorf("save notification %d: %w", n.ID, mapGormError(err))
	}
	return nil
}
