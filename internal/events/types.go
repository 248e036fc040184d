package events

import "time"

// EventType 事件类型定义
type EventType int

const (
	// 系统事件
	EventSystemStartup EventType = iota
	EventSystemShutdown

	// 空调控制事件
	EventPowerOn
	EventPowerOff
	EventSpeedChange
	EventTargetChange

	// 房间事件
	EventRoomCheckIn
	EventRoomCheckOut

	// 调度事件
	EventServiceStart
	EventServiceComplete
	EventServicePreempted
	EventServiceSliceSwap
	EventServicePromoted

	// 计费事件
	EventSegmentClosed

	// 监控事件
	EventMetricsUpdate
)

// Event 事件结构
type Event struct {
	Type      EventType   `json:"type"`
	RoomID    string      `json:"room_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Handler 事件处理函数类型
type Handler func(Event)

// SegmentClosedData 一段服务结束时的计费信息
type SegmentClosedData struct {
	RoomID    string    `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Speed     string    `json:"speed"`
	Rate      float64   `json:"rate"`   // 元/分钟
	Seconds   float64   `json:"seconds"`
	Cost      float64   `json:"cost"`
	Reason    string    `json:"reason"` // complete / preempted / slice_swap / power_off / speed_change
}

// ServiceEventData 调度事件载荷
type ServiceEventData struct {
	RoomID      string  `json:"room_id"`
	Speed       string  `json:"speed"`
	Priority    int     `json:"priority"`
	ServiceTime float64 `json:"service_time"`
	Reason      string  `json:"reason,omitempty"`
}

// MetricsEventData 监控指标载荷
type MetricsEventData struct {
	Timestamp       time.Time `json:"timestamp"`
	TotalRooms      int       `json:"total_rooms"`
	OccupiedRooms   int       `json:"occupied_rooms"`
	ServingCount    int       `json:"serving_count"`
	WaitingCount    int       `json:"waiting_count"`
	AvgServiceTime  float64   `json:"avg_service_time"`
	AvgWaitCountdown float64  `json:"avg_wait_countdown"`
}

// EventNames 提供事件类型的字符串表示
var EventNames = map[EventType]string{
	EventSystemStartup:    "SystemStartup",
	EventSystemShutdown:   "SystemShutdown",
	EventPowerOn:          "PowerOn",
	EventPowerOff:         "PowerOff",
	EventSpeedChange:      "SpeedChange",
	EventTargetChange:     "TargetChange",
	EventRoomCheckIn:      "RoomCheckIn",
	EventRoomCheckOut:     "RoomCheckOut",
	EventServiceStart:     "ServiceStart",
	EventServiceComplete:  "ServiceComplete",
	EventServicePreempted: "ServicePreempted",
	EventServiceSliceSwap: "ServiceSliceSwap",
	EventServicePromoted:  "ServicePromoted",
	EventSegmentClosed:    "SegmentClosed",
	EventMetricsUpdate:    "MetricsUpdate",
}

// String 事件类型名称
func (t EventType) String() string {
	if name, ok := EventNames[t]; ok {
		return name
	}
	return "Unknown"
}
