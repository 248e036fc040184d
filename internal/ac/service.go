// internal/ac/service.go
// Package ac 提供空调面板的对外控制入口,全部操作经由唯一的调度器实例。
package ac

import (
	"errors"
	"fmt"

	"hotelac/internal/config"
	"hotelac/internal/dispatcher"
	"hotelac/internal/events"
	"hotelac/internal/room"
	"hotelac/internal/types"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotOccupied  = errors.New("room not occupied")
)

// Service 空调控制服务
type Service struct {
	cfg  *config.Config
	disp *dispatcher.Dispatcher
	bus  *events.Bus
}

func NewService(cfg *config.Config, disp *dispatcher.Dispatcher, bus *events.Bus) *Service {
	return &Service{cfg: cfg, disp: disp, bus: bus}
}

// occupied 校验房间存在且已入住
func (s *Service) occupied(roomID string) (room.State, error) {
	r, ok := s.disp.Snapshot(roomID)
	if !ok {
		return room.State{}, ErrRoomNotFound
	}
	if !r.Occupied {
		return room.State{}, ErrNotOccupied
	}
	return r, nil
}

// PowerOn 开机并立即申请服务
func (s *Service) PowerOn(roomID string) error {
	if _, err := s.occupied(roomID); err != nil {
		return err
	}
	s.disp.Update(roomID, func(r *room.State) {
		r.IsOn = true
	})
	s.disp.Request(roomID)
	s.bus.Publish(events.Event{Type: events.EventPowerOn, RoomID: roomID})
	return nil
}

// PowerOff 先释放服务再关机,当前计费段随释放结算
func (s *Service) PowerOff(roomID string) error {
	if _, err := s.occupied(roomID); err != nil {
		return err
	}
	s.disp.Release(roomID)
	s.disp.Update(roomID, func(r *room.State) {
		r.IsOn = false
	})
	s.bus.Publish(events.Event{Type: events.EventPowerOff, RoomID: roomID})
	return nil
}

// SetFanSpeed 变更风速。服务中的房间按旧费率截断计费段;
// 开机状态下重新申请服务以按新优先级重新评估。
func (s *Service) SetFanSpeed(roomID, speed string) error {
	sp, err := types.ParseSpeed(speed)
	if err != nil {
		return err
	}
	r, err := s.occupied(roomID)
	if err != nil {
		return err
	}
	s.disp.Update(roomID, func(r *room.State) {
		r.FanSpeed = sp
	})
	if r.Status == types.StatusServing {
		s.disp.CutSegment(roomID)
	}
	if r.IsOn {
		s.disp.Request(roomID)
	}
	s.bus.Publish(events.Event{Type: events.EventSpeedChange, RoomID: roomID, Data: string(sp)})
	return nil
}

// SetTarget 变更模式与目标温度,不重新申请服务,等待计时不受影响
func (s *Service) SetTarget(roomID, mode string, target float64) error {
	m, err := types.ParseMode(mode)
	if err != nil {
		return err
	}
	if rng := s.cfg.TempRange(m); !rng.Contains(target) {
		return fmt.Errorf("target %.1f out of range [%.1f, %.1f] for mode %s", target, rng.Min, rng.Max, m)
	}
	if _, err := s.occupied(roomID); err != nil {
		return err
	}
	s.disp.Update(roomID, func(r *room.State) {
		r.Mode = m
		r.TargetTemp = target
	})
	s.bus.Publish(events.Event{Type: events.EventTargetChange, RoomID: roomID, Data: target})
	return nil
}

// CheckoutReset 退房复位:释放服务、关机、清空费用累计
func (s *Service) CheckoutReset(roomID string) error {
	if _, ok := s.disp.Snapshot(roomID); !ok {
		return ErrRoomNotFound
	}
	s.disp.Release(roomID)
	s.disp.Update(roomID, func(r *room.State) {
		r.IsOn = false
		r.Fee = 0
		r.TotalFee = 0
	})
	return nil
}

// Status 房间状态查询
func (s *Service) Status(roomID string) (room.State, error) {
	r, ok := s.disp.Snapshot(roomID)
	if !ok {
		return room.State{}, ErrRoomNotFound
	}
	return r, nil
}

// List 全部房间状态
func (s *Service) List() []room.State {
	return s.disp.SnapshotAll()
}

// Queues 调度队列视图
func (s *Service) Queues() (serving, waiting []room.State) {
	return s.disp.Queues()
}
