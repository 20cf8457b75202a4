package repository

import (
	"context"
	"fmt"

	"github.com/CUknot/studymatch_backend/models"
	"gorm.io/gorm"
)

type gormUserRepo struct {
	db *gorm.DB
}

func (r *gormUserRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", mapGormError(err))
	}
	return nil
}

func (r *gormUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapGormError(err)
	}
	return &user, nil
}

func (r *gormUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapGormError(err)
	}
	return &user, nil
}

func (r *gormUserRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

func (r *gormUserRepo) Save(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("save user %d: %w", user.ID, mapGormError(err))
	}
	return nil
}
