package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/CUknot/studymatch_backend/models"
	"gorm.io/gorm"
)

type gormRoomRepo struct {
	db *gorm.DB
}

func (r *gormRoomRepo) Create(ctx context.Context, room *models.Room) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		return replaceParticipants(tx, room)
	})
	if err != nil {
		return fmt.Errorf("create room: %w", mapGormError(err))
	}
	return nil
}

func (r *gormRoomRepo) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	db := r.db.WithContext(ctx)
	if err := db.First(&room, id).Error; err != nil {
		return nil, mapGormError(err)
	}

	rooms := []models.Room{room}
	if err := loadParticipants(db, rooms); err != nil {
		return nil, err
	}
	return &rooms[0], nil
}

func (r *gormRoomRepo) Find(ctx context.Context, f RoomFilter) ([]models.Room, error) {
	db := r.db.WithContext(ctx)
	memberRooms := func(userID uint) *gorm.DB {
		return db.Model(&models.RoomParticipant{}).Select("room_id").Where("user_id = ?", userID)
	}

	q := db.Model(&models.Room{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Member != 0 {
		q = q.Where("(host_id = ? OR id IN (?))", f.Member, memberRooms(f.Member))
	}
	if f.ExcludeMember != 0 {
		q = q.Where("host_id <> ? AND id NOT IN (?)", f.ExcludeMember, memberRooms(f.ExcludeMember))
	}
	if len(f.SubjectIn) > 0 {
		lowered := make([]string, 0, len(f.SubjectIn))
		for _, s := range f.SubjectIn {
			lowered = append(lowered, strings.ToLower(s))
		}
		q = q.Where("LOWER(subject) IN ?", lowered)
	}
	if f.SubjectContains != "" {
		q = q.Where("LOWER(subject) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(f.SubjectContains))+"%")
	}

	var rooms []models.Room
	if err := q.Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("find rooms: %w", err)
	}
	if err := loadParticipants(db, rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *gormRoomRepo) Save(ctx context.Context, room *models.Room) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(room).Error; err != nil {
			return err
		}
		return replaceParticipants(tx, room)
	})
	if err != nil {
		return fmt.Errorf("save room %d: %w", room.ID, mapGormError(err))
	}
	return nil
}

func (r *gormRoomRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&models.RoomParticipant{}).Error; err != nil {
			return fmt.Errorf("delete room %d participants: %w", id, err)
		}
		res := tx.Delete(&models.Room{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete room %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func replaceParticipants(tx *gorm.DB, room *models.Room) error {
	if err := tx.Where("room_id = ?", room.ID).Delete(&models.RoomParticipant{}).Error; err != nil {
		return err
	}
	if len(room.Participants) == 0 {
		return nil
	}
	rows := make([]models.RoomParticipant, 0, len(room.Participants))
	for i, userID := range room.Participants {
		rows = append(rows, models.RoomParticipant{RoomID: room.ID, UserID: userID, Position: i})
	}
	return tx.Create(&rows).Error
}

func loadParticipants(db *gorm.DB, rooms []models.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	index := make(map[uint]int, len(rooms))
	ids := make([]uint, 0, len(rooms))
	for i := range rooms {
		index[rooms[i].ID] = i
		ids = append(ids, rooms[i].ID)
		rooms[i].Participants = []uint{}
	}

	var rows []models.RoomParticipant
	if err := db.Where("room_id IN ?", ids).Order("room_id ASC, position ASC").Find(&rows).Error; err != nil {
		return fmt.Errorf("load room participants: %w", err)
	}
	for _, row := range rows {
		i := index[row.RoomID]
		rooms[i].Participants = append(rooms[i].Participants, row.UserID)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
