// internal/billing/service.go
// Package billing 负责入住退房、服务详单与账单。
// 详单由调度器发布的计费段事件驱动写入,费用数值以模拟器累计为准。
package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"hotelac/internal/ac"
	"hotelac/internal/db"
	"hotelac/internal/dispatcher"
	"hotelac/internal/events"
	"hotelac/internal/logger"
	"hotelac/internal/room"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrAlreadyOccupied = errors.New("room already occupied")
	ErrNotOccupied     = errors.New("room not occupied")
)

// Service 计费服务
type Service struct {
	disp    *dispatcher.Dispatcher
	acSvc   *ac.Service
	details *db.DetailRepository
	bills   *db.BillRepository
	bus     *events.Bus
	now     func() time.Time
}

func NewService(disp *dispatcher.Dispatcher, acSvc *ac.Service, details *db.DetailRepository, bills *db.BillRepository, bus *events.Bus) *Service {
	s := &Service{
		disp:    disp,
		acSvc:   acSvc,
		details: details,
		bills:   bills,
		bus:     bus,
		now:     time.Now,
	}
	bus.Subscribe(events.EventSegmentClosed, s.onSegmentClosed)
	return s
}

// onSegmentClosed 每个计费段落盘一条详单
func (s *Service) onSegmentClosed(e events.Event) {
	data, ok := e.Data.(events.SegmentClosedData)
	if !ok {
		return
	}
	d := &db.Detail{
		RoomID:    data.RoomID,
		StartTime: data.StartTime,
		EndTime:   data.EndTime,
		Speed:     data.Speed,
		Rate:      data.Rate,
		Seconds:   data.Seconds,
		Cost:      data.Cost,
		Reason:    data.Reason,
	}
	if err := s.details.Create(d); err != nil {
		logger.Error("房间 %s 详单写入失败: %v", data.RoomID, err)
	}
}

// CheckIn 办理入住,费用从零开始累计
func (s *Service) CheckIn(roomID, guestID string) error {
	r, ok := s.disp.Snapshot(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	if r.Occupied {
		return ErrAlreadyOccupied
	}
	now := s.now()
	s.disp.Update(roomID, func(r *room.State) {
		r.Occupied = true
		r.GuestID = guestID
		r.CheckinTime = now
		r.Fee = 0
	})
	s.bus.Publish(events.Event{Type: events.EventRoomCheckIn, RoomID: roomID, Data: guestID})
	logger.Info("房间 %s 入住,客人 %s", roomID, guestID)
	return nil
}

// CheckoutResult 退房账单与本次入住的详单
type CheckoutResult struct {
	Bill    db.Bill     `json:"bill"`
	Details []db.Detail `json:"details"`
}

// nights 计算房费晚数:按日期差计,中午 12 点后退房多计一晚,最少一晚
func nights(checkin, checkout time.Time) int {
	ci := time.Date(checkin.Year(), checkin.Month(), checkin.Day(), 0, 0, 0, 0, checkin.Location())
	co := time.Date(checkout.Year(), checkout.Month(), checkout.Day(), 0, 0, 0, 0, checkout.Location())
	n := int(co.Sub(ci).Hours() / 24)
	if checkout.Hour() >= 12 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

// CheckOut 办理退房:结算房费与空调费,生成账单,复位房间
func (s *Service) CheckOut(roomID string) (*CheckoutResult, error) {
	r, ok := s.disp.Snapshot(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if !r.Occupied {
		return nil, ErrNotOccupied
	}

	// 先释放服务,让进行中的计费段结算入详单
	if err := s.acSvc.PowerOff(roomID); err != nil {
		return nil, err
	}
	final, _ := s.disp.Snapshot(roomID)

	now := s.now()
	n := nights(r.CheckinTime, now)
	bill := db.Bill{
		BillNo:       uuid.NewString(),
		RoomID:       roomID,
		GuestID:      r.GuestID,
		CheckinTime:  r.CheckinTime,
		CheckoutTime: now,
		Nights:       n,
		RoomFee:      float64(n) * r.DailyRate,
		ACFee:        final.Fee,
	}
	bill.TotalFee = bill.RoomFee + bill.ACFee
	if err := s.bills.Create(&bill); err != nil {
		return nil, err
	}

	details, err := s.details.ListByRoomSince(roomID, r.CheckinTime)
	if err != nil {
		return nil, err
	}

	if err := s.acSvc.CheckoutReset(roomID); err != nil {
		return nil, err
	}
	s.disp.Update(roomID, func(r *room.State) {
		r.Occupied = false
		r.GuestID = ""
	})
	s.bus.Publish(events.Event{Type: events.EventRoomCheckOut, RoomID: roomID, Data: bill.BillNo})
	logger.Info("房间 %s 退房,账单 %s 合计 %.2f 元", roomID, bill.BillNo, bill.TotalFee)

	return &CheckoutResult{Bill: bill, Details: details}, nil
}

// Details 查询房间全部详单
func (s *Service) Details(roomID string) ([]db.Detail, error) {
	if _, ok := s.disp.Snapshot(roomID); !ok {
		return nil, ErrRoomNotFound
	}
	return s.details.ListByRoom(roomID)
}

// BillWithDetails 按账单号取账单及对应入住期间的详单
func (s *Service) BillWithDetails(billNo string) (*db.Bill, []db.Detail, error) {
	bill, err := s.bills.GetByNo(billNo)
	if err != nil {
		return nil, nil, err
	}
	details, err := s.details.ListByRoomSince(bill.RoomID, bill.CheckinTime)
	if err != nil {
		return nil, nil, err
	}
	return bill, details, nil
}

// Bills 查询房间历史账单
func (s *Service) Bills(roomID string) ([]db.Bill, error) {
	if _, ok := s.disp.Snapshot(roomID); !ok {
		return nil, ErrRoomNotFound
	}
	return s.bills.ListByRoom(roomID)
}
