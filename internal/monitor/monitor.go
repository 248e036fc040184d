// internal/monitor/monitor.go
// Package monitor 周期采集房间与队列快照,输出运行报告并发布监控指标。
package monitor

import (
	"context"
	"time"

	"hotelac/internal/config"
	"hotelac/internal/dispatcher"
	"hotelac/internal/events"
	"hotelac/internal/logger"
	"hotelac/internal/room"
	"hotelac/internal/types"
)

// Monitor 运行监控
type Monitor struct {
	cfg  *config.Config
	disp *dispatcher.Dispatcher
	bus  *events.Bus
}

func New(cfg *config.Config, disp *dispatcher.Dispatcher, bus *events.Bus) *Monitor {
	return &Monitor{cfg: cfg, disp: disp, bus: bus}
}

// StatusReport 监控快照
type StatusReport struct {
	Timestamp time.Time               `json:"timestamp"`
	Rooms     []room.State            `json:"rooms"`
	Serving   []room.State            `json:"serving"`
	Waiting   []room.State            `json:"waiting"`
	Metrics   events.MetricsEventData `json:"metrics"`
}

// Run 周期报告循环
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.MonitorInterval())
	defer ticker.Stop()

	logger.Info("监控循环启动,周期 %v", m.cfg.MonitorInterval())
	for {
		select {
		case <-ctx.Done():
			logger.Info("监控循环退出")
			return
		case <-ticker.C:
			m.report()
		}
	}
}

// Status 构造当前监控快照
func (m *Monitor) Status() StatusReport {
	rooms := m.disp.SnapshotAll()
	serving, waiting := m.disp.Queues()

	metrics := events.MetricsEventData{
		Timestamp:    time.Now(),
		TotalRooms:   len(rooms),
		ServingCount: len(serving),
		WaitingCount: len(waiting),
	}
	for _, r := range rooms {
		if r.Occupied {
			metrics.OccupiedRooms++
		}
	}
	for _, r := range serving {
		metrics.AvgServiceTime += r.ServiceTime
	}
	if len(serving) > 0 {
		metrics.AvgServiceTime /= float64(len(serving))
	}
	finite := 0
	for _, r := range waiting {
		if !r.Wait.Indefinite {
			metrics.AvgWaitCountdown += r.Wait.Remaining
			finite++
		}
	}
	if finite > 0 {
		metrics.AvgWaitCountdown /= float64(finite)
	}

	return StatusReport{
		Timestamp: metrics.Timestamp,
		Rooms:     rooms,
		Serving:   serving,
		Waiting:   waiting,
		Metrics:   metrics,
	}
}

// report 打印摘要并发布指标事件
func (m *Monitor) report() {
	st := m.Status()
	logger.Debug("监控: 在住 %d/%d, 服务 %d, 等待 %d, 平均服务时长 %.0fs",
		st.Metrics.OccupiedRooms, st.Metrics.TotalRooms,
		st.Metrics.ServingCount, st.Metrics.WaitingCount, st.Metrics.AvgServiceTime)
	for _, r := range st.Rooms {
		if r.Status != types.StatusIdle {
			logger.Debug("  房间 %s: %.1f°C -> %.1f°C %s %s 费用 %.2f",
				r.RoomID, r.CurrentTemp, r.TargetTemp, r.FanSpeed, r.Status, r.Fee)
		}
	}
	m.bus.Publish(events.Event{Type: events.EventMetricsUpdate, Data: st.Metrics})
}
