// internal/simulator/simulator.go
// Package simulator 按周期推进房间温度与费用,并依据回差规则驱动调度请求。
package simulator

import (
	"context"
	"time"

	"hotelac/internal/config"
	"hotelac/internal/dispatcher"
	"hotelac/internal/logger"
	"hotelac/internal/room"
	"hotelac/internal/types"
)

// Simulator 热力模拟器,持有唯一的调度器实例
type Simulator struct {
	cfg  *config.Config
	disp *dispatcher.Dispatcher
}

func New(cfg *config.Config, disp *dispatcher.Dispatcher) *Simulator {
	return &Simulator{cfg: cfg, disp: disp}
}

// Run 启动周期循环:每个周期先推进调度时钟,再推进热力模拟
func (s *Simulator) Run(ctx context.Context) {
	dt := s.cfg.AC.TickSeconds
	ticker := time.NewTicker(s.cfg.Tick())
	defer ticker.Stop()

	logger.Info("模拟循环启动,周期 %.0f 秒", dt)
	for {
		select {
		case <-ctx.Done():
			logger.Info("模拟循环退出")
			return
		case <-ticker.C:
			s.disp.Tick(dt)
			s.Step(dt)
		}
	}
}

// Step 推进一个周期的温度与费用,单个房间出错不影响其余房间
func (s *Simulator) Step(dt float64) {
	for _, snapshot := range s.disp.SnapshotAll() {
		s.stepRoom(snapshot.RoomID, dt)
	}
}

type action int

const (
	actNone action = iota
	actRequest
	actRelease
)

func (s *Simulator) stepRoom(roomID string, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("房间 %s 模拟出错: %v", roomID, r)
		}
	}()

	var act action
	s.disp.Update(roomID, func(r *room.State) {
		// 关机优先:残留的 SERVING 状态不产生制冷制热效果,也不计费
		serving := r.Status == types.StatusServing && r.IsOn

		s.advanceTemp(r, serving, dt)
		if serving {
			inc := s.cfg.Rate(r.FanSpeed) / 60.0 * dt
			r.Fee += inc
			r.TotalFee += inc
		}

		demand := s.demand(r, serving)
		switch {
		case demand && r.Status == types.StatusIdle:
			act = actRequest
		case !demand && r.Status != types.StatusIdle:
			act = actRelease
		}
	})

	// 调度调用必须在房间更新回调之外进行
	switch act {
	case actRequest:
		s.disp.Request(roomID)
	case actRelease:
		s.disp.Release(roomID)
	}
}

// advanceTemp 服务中向目标温度推进并在目标处截止;
// 否则向环境温度自然回归并在环境温度处截止
func (s *Simulator) advanceTemp(r *room.State, serving bool, dt float64) {
	if serving {
		step := s.cfg.Delta(r.FanSpeed) / 60.0 * dt
		if r.CurrentTemp > r.TargetTemp {
			r.CurrentTemp -= step
			if r.CurrentTemp < r.TargetTemp {
				r.CurrentTemp = r.TargetTemp
			}
		} else if r.CurrentTemp < r.TargetTemp {
			r.CurrentTemp += step
			if r.CurrentTemp > r.TargetTemp {
				r.CurrentTemp = r.TargetTemp
			}
		}
		return
	}

	ambient := s.cfg.AC.Ambient
	step := s.cfg.AC.Recovery / 60.0 * dt
	if r.CurrentTemp > ambient {
		r.CurrentTemp -= step
		if r.CurrentTemp < ambient {
			r.CurrentTemp = ambient
		}
	} else if r.CurrentTemp < ambient {
		r.CurrentTemp += step
		if r.CurrentTemp > ambient {
			r.CurrentTemp = ambient
		}
	}
}

// demand 回差判定:服务中保持需求直到到达目标,
// 非服务状态需偏离目标至少一个回差阈值才重新产生需求
func (s *Simulator) demand(r *room.State, serving bool) bool {
	if !r.IsOn {
		return false
	}
	hyst := s.cfg.AC.Hysteresis
	if r.Mode == types.ModeHeat {
		if serving {
			return r.CurrentTemp < r.TargetTemp
		}
		return r.CurrentTemp <= r.TargetTemp-hyst
	}
	if serving {
		return r.CurrentTemp > r.TargetTemp
	}
	return r.CurrentTemp >= r.TargetTemp+hyst
}
