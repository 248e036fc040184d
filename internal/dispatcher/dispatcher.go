// internal/dispatcher/dispatcher.go
// Package dispatcher 实现中央空调调度器:容量受限的服务集合加有序等待集合,
// 优先级抢占与同优先级时间片轮转复合策略。
package dispatcher

import (
	"sort"
	"sync"
	"time"

	"hotelac/internal/config"
	"hotelac/internal/events"
	"hotelac/internal/logger"
	"hotelac/internal/room"
	"hotelac/internal/types"
)

// RoomSaver 房间快照写穿接口,可为空(测试时)
type RoomSaver interface {
	Save(s *room.State) error
}

// segment 当前服务段,计费用
type segment struct {
	start   time.Time
	speed   types.Speed
	seconds float64
}

// Dispatcher 调度器。全部状态在互斥锁内修改,事件与持久化在锁外完成。
type Dispatcher struct {
	mu   sync.Mutex
	cfg  *config.Config
	bus  *events.Bus
	repo RoomSaver
	now  func() time.Time

	rooms    map[string]*room.State
	serving  map[string]bool
	waiting  []string
	segments map[string]*segment

	pendingEvents []events.Event
	dirty         map[string]bool
}

// New 创建调度器
func New(cfg *config.Config, bus *events.Bus) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		bus:      bus,
		now:      time.Now,
		rooms:    make(map[string]*room.State),
		serving:  make(map[string]bool),
		segments: make(map[string]*segment),
		dirty:    make(map[string]bool),
	}
}

// SetRepo 设置快照仓库
func (d *Dispatcher) SetRepo(repo RoomSaver) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.repo = repo
}

// AddRoom 注册房间,启动时调用
func (d *Dispatcher) AddRoom(s *room.State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms[s.RoomID] = s
}

// Request 房间申请服务
func (d *Dispatcher) Request(roomID string) {
	d.mu.Lock()
	r, ok := d.rooms[roomID]
	if !ok {
		d.mu.Unlock()
		logger.Warn("调度请求来自未知房间 %s,忽略", roomID)
		return
	}
	if r.Status == types.StatusServing {
		d.mu.Unlock()
		return
	}
	if r.Status == types.StatusWaiting {
		// 重新评估:整体移出后按新参数重新入队,时间片从头计
		d.removeWaiting(roomID)
		r.ClearScheduling()
	}
	d.admit(r)
	d.mu.Unlock()
	d.flush()
}

// Release 房间放弃服务
func (d *Dispatcher) Release(roomID string) {
	d.mu.Lock()
	r, ok := d.rooms[roomID]
	if !ok {
		d.mu.Unlock()
		logger.Warn("调度释放来自未知房间 %s,忽略", roomID)
		return
	}
	switch r.Status {
	case types.StatusServing:
		d.stopServing(r, "complete")
		d.promote()
	case types.StatusWaiting:
		d.removeWaiting(roomID)
		r.ClearScheduling()
		d.dirty[roomID] = true
	}
	d.mu.Unlock()
	d.flush()
}

// Tick 推进调度时钟 dt 秒:累计服务时长,倒计等待时间片,处理到期轮转
func (d *Dispatcher) Tick(dt float64) {
	d.mu.Lock()
	d.heal()

	for id := range d.serving {
		r := d.rooms[id]
		r.ServiceTime += dt
		if seg := d.segments[id]; seg != nil {
			seg.seconds += dt
		}
		d.dirty[id] = true
	}
	for _, id := range d.waiting {
		r := d.rooms[id]
		if !r.Wait.Indefinite {
			r.Wait.Remaining -= dt
			if r.Wait.Remaining < 0 {
				r.Wait.Remaining = 0
			}
			d.dirty[id] = true
		}
	}

	// 时间片到期:与同优先级中服务最久的房间对调;
	// 无同优先级服务对象则保持到期,下个周期重试
	for _, id := range append([]string(nil), d.waiting...) {
		r := d.rooms[id]
		if r == nil || r.Status != types.StatusWaiting || !r.Wait.Expired() {
			continue
		}
		victim := d.longestServingAt(d.prio(r))
		if victim == nil {
			continue
		}
		d.stopServingTo(victim, room.SliceWait(d.cfg.AC.SliceSeconds), "slice_swap", events.EventServiceSliceSwap)
		d.removeWaiting(id)
		d.startServing(r, events.EventServicePromoted)
	}

	d.promote()
	d.mu.Unlock()
	d.flush()
}

// Update 在调度器锁内修改房间状态,模拟器与外部控制的统一写入口
func (d *Dispatcher) Update(roomID string, fn func(*room.State)) bool {
	d.mu.Lock()
	r, ok := d.rooms[roomID]
	if ok {
		fn(r)
		d.dirty[roomID] = true
	}
	d.mu.Unlock()
	d.flush()
	return ok
}

// CutSegment 服务中变更风速时截断计费段,旧段按旧费率结算
func (d *Dispatcher) CutSegment(roomID string) {
	d.mu.Lock()
	r, ok := d.rooms[roomID]
	if ok && r.Status == types.StatusServing {
		d.closeSegment(r, "speed_change")
		d.openSegment(r)
	}
	d.mu.Unlock()
	d.flush()
}

// Snapshot 房间状态副本
func (d *Dispatcher) Snapshot(roomID string) (room.State, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.rooms[roomID]
	if !ok {
		return room.State{}, false
	}
	return r.Clone(), true
}

// SnapshotAll 全部房间状态副本,按房间号排序
func (d *Dispatcher) SnapshotAll() []room.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]room.State, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// Queues 服务队列与等待队列视图,等待队列按(优先级降序,剩余等待升序)排列
func (d *Dispatcher) Queues() (servingList, waitingList []room.State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id := range d.serving {
		servingList = append(servingList, d.rooms[id].Clone())
	}
	sort.Slice(servingList, func(i, j int) bool { return servingList[i].RoomID < servingList[j].RoomID })
	for _, id := range d.waiting {
		waitingList = append(waitingList, d.rooms[id].Clone())
	}
	sort.SliceStable(waitingList, func(i, j int) bool {
		pi, pj := d.cfg.Priority(waitingList[i].FanSpeed), d.cfg.Priority(waitingList[j].FanSpeed)
		if pi != pj {
			return pi > pj
		}
		return waitingList[i].Wait.Less(waitingList[j].Wait)
	})
	return servingList, waitingList
}

// Restore 重启后依据持久化状态重建队列:原服务对象按优先级回位,
// 超出容量的降为无限期等待,剩余空位照常提升
func (d *Dispatcher) Restore() {
	d.mu.Lock()

	var wasServing, wasWaiting []*room.State
	for _, r := range d.rooms {
		switch r.Status {
		case types.StatusServing:
			wasServing = append(wasServing, r)
		case types.StatusWaiting:
			wasWaiting = append(wasWaiting, r)
		}
		r.Status = types.StatusIdle
	}
	sort.Slice(wasServing, func(i, j int) bool {
		pi, pj := d.prio(wasServing[i]), d.prio(wasServing[j])
		if pi != pj {
			return pi > pj
		}
		return wasServing[i].ServiceTime > wasServing[j].ServiceTime
	})
	for _, r := range wasServing {
		if len(d.serving) < d.cfg.AC.MaxServing {
			d.resumeServing(r)
		} else {
			d.addWaiting(r, room.IndefiniteWait())
		}
	}
	sort.SliceStable(wasWaiting, func(i, j int) bool {
		pi, pj := d.prio(wasWaiting[i]), d.prio(wasWaiting[j])
		if pi != pj {
			return pi > pj
		}
		return wasWaiting[i].Wait.Less(wasWaiting[j].Wait)
	})
	for _, r := range wasWaiting {
		d.addWaiting(r, r.Wait)
	}
	d.promote()
	d.mu.Unlock()
	d.flush()
}

// ---- 内部实现,调用方持锁 ----

func (d *Dispatcher) prio(r *room.State) int {
	return d.cfg.Priority(r.FanSpeed)
}

// admit 新请求进入调度:有空位直接服务,否则按优先级决定抢占或等待
func (d *Dispatcher) admit(r *room.State) {
	if len(d.serving) < d.cfg.AC.MaxServing {
		d.startServing(r, events.EventServiceStart)
		return
	}

	reqPrio := d.prio(r)
	minPrio, equalExists := d.servingPriorities(reqPrio)

	switch {
	case reqPrio > minPrio:
		victim := d.longestServingAt(minPrio)
		d.stopServingTo(victim, room.IndefiniteWait(), "preempted", events.EventServicePreempted)
		d.startServing(r, events.EventServiceStart)
	case equalExists:
		d.addWaiting(r, room.SliceWait(d.cfg.AC.SliceSeconds))
	default:
		d.addWaiting(r, room.IndefiniteWait())
	}
}

// servingPriorities 服务集合中的最低优先级,以及是否存在与请求同级的服务对象
func (d *Dispatcher) servingPriorities(reqPrio int) (minPrio int, equalExists bool) {
	first := true
	for id := range d.serving {
		p := d.prio(d.rooms[id])
		if first || p < minPrio {
			minPrio = p
			first = false
		}
		if p == reqPrio {
			equalExists = true
		}
	}
	return minPrio, equalExists
}

// longestServingAt 指定优先级中服务时间最长的服务对象,并列取房间号小者
func (d *Dispatcher) longestServingAt(prio int) *room.State {
	var victim *room.State
	for id := range d.serving {
		r := d.rooms[id]
		if d.prio(r) != prio {
			continue
		}
		if victim == nil || r.ServiceTime > victim.ServiceTime ||
			(r.ServiceTime == victim.ServiceTime && r.RoomID < victim.RoomID) {
			victim = r
		}
	}
	return victim
}

func (d *Dispatcher) startServing(r *room.State, evt events.EventType) {
	d.serving[r.RoomID] = true
	r.Status = types.StatusServing
	r.ServiceTime = 0
	r.Wait = room.Wait{}
	d.openSegment(r)
	d.dirty[r.RoomID] = true
	d.emit(evt, r, "")
	logger.Info("房间 %s 开始服务(风速 %s)", r.RoomID, r.FanSpeed)
}

// resumeServing 重启恢复时回位原服务对象,保留已持久化的服务时长,
// 抢占与轮转的挑选依据不因重启归零
func (d *Dispatcher) resumeServing(r *room.State) {
	d.serving[r.RoomID] = true
	r.Status = types.StatusServing
	r.Wait = room.Wait{}
	d.openSegment(r)
	d.dirty[r.RoomID] = true
	d.emit(events.EventServiceStart, r, "restored")
	logger.Info("房间 %s 恢复服务(已服务 %.0f 秒)", r.RoomID, r.ServiceTime)
}

// stopServing 结束服务并回到 IDLE
func (d *Dispatcher) stopServing(r *room.State, reason string) {
	d.closeSegment(r, reason)
	delete(d.serving, r.RoomID)
	r.ClearScheduling()
	d.dirty[r.RoomID] = true
	d.emit(events.EventServiceComplete, r, reason)
	logger.Info("房间 %s 结束服务(%s)", r.RoomID, reason)
}

// stopServingTo 结束服务并转入等待队列
func (d *Dispatcher) stopServingTo(r *room.State, w room.Wait, reason string, evt events.EventType) {
	d.closeSegment(r, reason)
	delete(d.serving, r.RoomID)
	r.ServiceTime = 0
	d.addWaiting(r, w)
	d.emit(evt, r, reason)
	logger.Info("房间 %s 让出服务(%s)", r.RoomID, reason)
}

func (d *Dispatcher) addWaiting(r *room.State, w room.Wait) {
	d.waiting = append(d.waiting, r.RoomID)
	r.Status = types.StatusWaiting
	r.Wait = w
	d.dirty[r.RoomID] = true
}

func (d *Dispatcher) removeWaiting(roomID string) {
	for i, id := range d.waiting {
		if id == roomID {
			d.waiting = append(d.waiting[:i], d.waiting[i+1:]...)
			return
		}
	}
}

// promote 依次提升等待者填满空位:优先级最高者优先,同级取剩余等待最小者,
// 无限期等待视为大于任何有限倒计时
func (d *Dispatcher) promote() {
	for len(d.serving) < d.cfg.AC.MaxServing && len(d.waiting) > 0 {
		best := -1
		for i, id := range d.waiting {
			r := d.rooms[id]
			if best == -1 {
				best = i
				continue
			}
			b := d.rooms[d.waiting[best]]
			pr, pb := d.prio(r), d.prio(b)
			if pr > pb || (pr == pb && r.Wait.Less(b.Wait)) {
				best = i
			}
		}
		r := d.rooms[d.waiting[best]]
		d.waiting = append(d.waiting[:best], d.waiting[best+1:]...)
		d.startServing(r, events.EventServicePromoted)
	}
}

// heal 自检:队列成员与房间状态不一致时整体移出并强制 IDLE
func (d *Dispatcher) heal() {
	for id := range d.serving {
		r := d.rooms[id]
		if r == nil || r.Status != types.StatusServing {
			logger.Error("调度状态不一致:服务集合中的房间 %s 状态异常,强制复位", id)
			delete(d.serving, id)
			delete(d.segments, id)
			if r != nil {
				r.ClearScheduling()
				d.dirty[id] = true
			}
		}
	}
	kept := d.waiting[:0]
	for _, id := range d.waiting {
		r := d.rooms[id]
		if r == nil || r.Status != types.StatusWaiting {
			logger.Error("调度状态不一致:等待队列中的房间 %s 状态异常,强制复位", id)
			if r != nil {
				r.ClearScheduling()
				d.dirty[id] = true
			}
			continue
		}
		kept = append(kept, id)
	}
	d.waiting = kept
}

func (d *Dispatcher) openSegment(r *room.State) {
	d.segments[r.RoomID] = &segment{start: d.now(), speed: r.FanSpeed}
}

// closeSegment 结算当前服务段并发布计费事件
func (d *Dispatcher) closeSegment(r *room.State, reason string) {
	seg := d.segments[r.RoomID]
	if seg == nil {
		return
	}
	delete(d.segments, r.RoomID)
	if seg.seconds <= 0 {
		return
	}
	rate := d.cfg.Rate(seg.speed)
	d.pendingEvents = append(d.pendingEvents, events.Event{
		Type:   events.EventSegmentClosed,
		RoomID: r.RoomID,
		Data: events.SegmentClosedData{
			RoomID:    r.RoomID,
			StartTime: seg.start,
			EndTime:   seg.start.Add(time.Duration(seg.seconds * float64(time.Second))),
			Speed:     string(seg.speed),
			Rate:      rate,
			Seconds:   seg.seconds,
			Cost:      rate / 60.0 * seg.seconds,
			Reason:    reason,
		},
	})
}

func (d *Dispatcher) emit(t events.EventType, r *room.State, reason string) {
	d.pendingEvents = append(d.pendingEvents, events.Event{
		Type:   t,
		RoomID: r.RoomID,
		Data: events.ServiceEventData{
			RoomID:      r.RoomID,
			Speed:       string(r.FanSpeed),
			Priority:    d.prio(r),
			ServiceTime: r.ServiceTime,
			Reason:      reason,
		},
	})
}

// flush 在锁外发布事件并写穿脏房间
func (d *Dispatcher) flush() {
	d.mu.Lock()
	evts := d.pendingEvents
	d.pendingEvents = nil
	var snaps []room.State
	repo := d.repo
	if repo != nil {
		for id := range d.dirty {
			if r, ok := d.rooms[id]; ok {
				snaps = append(snaps, r.Clone())
			}
		}
	}
	d.dirty = make(map[string]bool)
	d.mu.Unlock()

	if d.bus != nil {
		for _, e := range evts {
			d.bus.Publish(e)
		}
	}
	for i := range snaps {
		if err := repo.Save(&snaps[i]); err != nil {
			logger.Error("房间 %s 快照写入失败: %v", snaps[i].RoomID, err)
		}
	}
}
