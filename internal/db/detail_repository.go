package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type DetailRepository struct {
	db *gorm.DB
}

func NewDetailRepository(gdb *gorm.DB) *DetailRepository {
	return &DetailRepository{db: gdb}
}

// Create 写入一条服务详单
func (r *DetailRepository) Create(d *Detail) error {
	if err := r.db.Create(d).Error; err != nil {
		return fmt.Errorf("create detail for room %s: %w", d.RoomID, err)
	}
	return nil
}

// ListByRoom 查询房间的全部详单
func (r *DetailRepository) ListByRoom(roomID string) ([]Detail, error) {
	var details []Detail
	err := r.db.Where("room_id = ?", roomID).Order("start_time").Find(&details).Error
	if err != nil {
		return nil, fmt.Errorf("list details for room %s: %w", roomID, err)
	}
	return details, nil
}

// ListByRoomSince 查询某时刻之后的详单,结账时按本次入住过滤
func (r *DetailRepository) ListByRoomSince(roomID string, since time.Time) ([]Detail, error) {
	var details []Detail
	err := r.db.Where("room_id = ? AND start_time >= ?", roomID, since).
		Order("start_time").Find(&details).Error
	if err != nil {
		return nil, fmt.Errorf("list details for room %s: %w", roomID, err)
	}
	return details, nil
}
