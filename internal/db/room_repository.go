package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelac/internal/room"
	"hotelac/internal/types"
)

var ErrRoomNotFound = errors.New("room not found")

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(gdb *gorm.DB) *RoomRepository {
	return &RoomRepository{db: gdb}
}

// recordFromState 内存状态转快照行
func recordFromState(s *room.State) *RoomRecord {
	return &RoomRecord{
		RoomID:         s.RoomID,
		Occupied:       s.Occupied,
		GuestID:        s.GuestID,
		CheckinTime:    s.CheckinTime,
		DailyRate:      s.DailyRate,
		IsOn:           s.IsOn,
		Mode:           string(s.Mode),
		FanSpeed:       string(s.FanSpeed),
		TargetTemp:     s.TargetTemp,
		CurrentTemp:    s.CurrentTemp,
		InitialTemp:    s.InitialTemp,
		Status:         string(s.Status),
		ServiceTime:    s.ServiceTime,
		WaitIndefinite: s.Wait.Indefinite,
		WaitRemaining:  s.Wait.Remaining,
		Fee:            s.Fee,
		TotalFee:       s.TotalFee,
		UpdatedAt:      time.Now(),
	}
}

// Save 写穿房间快照
func (r *RoomRepository) Save(s *room.State) error {
	rec := recordFromState(s)
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		UpdateAll: true,
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("save room %s: %w", s.RoomID, err)
	}
	return nil
}

// LoadAll 加载全部房间快照,重启恢复用
func (r *RoomRepository) LoadAll() ([]RoomRecord, error) {
	var records []RoomRecord
	if err := r.db.Order("room_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	return records, nil
}

// Get 按房间号读快照
func (r *RoomRepository) Get(roomID string) (*RoomRecord, error) {
	var rec RoomRecord
	err := r.db.Where("room_id = ?", roomID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ToState 快照行转内存状态,重启恢复用
func (rec *RoomRecord) ToState() *room.State {
	s := &room.State{
		RoomID:      rec.RoomID,
		Occupied:    rec.Occupied,
		GuestID:     rec.GuestID,
		CheckinTime: rec.CheckinTime,
		DailyRate:   rec.DailyRate,
		IsOn:        rec.IsOn,
		TargetTemp:  rec.TargetTemp,
		CurrentTemp: rec.CurrentTemp,
		InitialTemp: rec.InitialTemp,
		ServiceTime: rec.ServiceTime,
		Fee:         rec.Fee,
		TotalFee:    rec.TotalFee,
		Wait:        room.Wait{Indefinite: rec.WaitIndefinite, Remaining: rec.WaitRemaining},
	}
	if m, err := types.ParseMode(rec.Mode); err == nil {
		s.Mode = m
	} else {
		s.Mode = types.ModeCool
	}
	if sp, err := types.ParseSpeed(rec.FanSpeed); err == nil {
		s.FanSpeed = sp
	} else {
		s.FanSpeed = types.SpeedMid
	}
	switch types.Status(rec.Status) {
	case types.StatusServing, types.StatusWaiting, types.StatusIdle:
		s.Status = types.Status(rec.Status)
	default:
		s.Status = types.StatusIdle
	}
	return s
}
