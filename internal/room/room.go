// internal/room/room.go
// Package room 定义房间的规范记录:入住信息、空调设定、物理状态、调度状态与费用
package room

import (
	"time"

	"hotelac/internal/types"
)

// Wait 等待计时。被高优先级抢占的房间无限期等待,
// 同优先级轮转的房间持有一个时间片倒计时。
type Wait struct {
	Indefinite bool    `json:"indefinite"`
	Remaining  float64 `json:"remaining"` // 剩余秒数,仅在 !Indefinite 时有效
}

// IndefiniteWait 无限期等待
func IndefiniteWait() Wait {
	return Wait{Indefinite: true}
}

// SliceWait 持有时间片倒计时的等待
func SliceWait(seconds float64) Wait {
	return Wait{Remaining: seconds}
}

// Expired 时间片是否已耗尽
func (w Wait) Expired() bool {
	return !w.Indefinite && w.Remaining <= 0
}

// Less 比较等待时长:倒计时越小表示越接近到期(等得越久),
// 无限期视为大于任何有限值。
func (w Wait) Less(other Wait) bool {
	if w.Indefinite != other.Indefinite {
		return !w.Indefinite
	}
	if w.Indefinite {
		return false
	}
	return w.Remaining < other.Remaining
}

// State 房间的规范记录。系统初始化时为每个物理房间创建一条,之后永不销毁。
// 调度字段(Status/ServiceTime/Wait)仅在调度器互斥锁内修改。
type State struct {
	RoomID string `json:"room_id"`

	// 入住信息
	Occupied    bool      `json:"occupied"`
	GuestID     string    `json:"guest_id"`
	CheckinTime time.Time `json:"checkin_time"`
	DailyRate   float64   `json:"daily_rate"`

	// 空调设定(外部控制写入)
	IsOn       bool        `json:"is_on"`
	Mode       types.Mode  `json:"mode"`
	FanSpeed   types.Speed `json:"fan_speed"`
	TargetTemp float64     `json:"target_temp"`

	// 物理状态
	CurrentTemp float64 `json:"current_temp"`
	InitialTemp float64 `json:"initial_temp"`

	// 调度状态
	Status      types.Status `json:"status"`
	ServiceTime float64      `json:"service_time"` // 当前服务段累计秒数,进入服务时清零
	Wait        Wait         `json:"wait"`

	// 费用
	Fee      float64 `json:"fee"`       // 本次入住累计
	TotalFee float64 `json:"total_fee"` // 房间生命周期累计,仅退房清零
}

// New 创建初始房间记录
func New(roomID string, initialTemp, dailyRate, defaultTarget float64, defaultSpeed types.Speed) *State {
	return &State{
		RoomID:      roomID,
		Mode:        types.ModeCool,
		FanSpeed:    defaultSpeed,
		TargetTemp:  defaultTarget,
		CurrentTemp: initialTemp,
		InitialTemp: initialTemp,
		DailyRate:   dailyRate,
		Status:      types.StatusIdle,
	}
}

// ClearScheduling 清除调度字段并回到 IDLE
func (s *State) ClearScheduling() {
	s.Status = types.StatusIdle
	s.ServiceTime = 0
	s.Wait = Wait{}
}

// Clone 返回记录的副本,供监控和查询读取
func (s *State) Clone() State {
	cp := *s
	return cp
}
