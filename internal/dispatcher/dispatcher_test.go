package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelac/internal/config"
	"hotelac/internal/events"
	"hotelac/internal/room"
	"hotelac/internal/types"
)

func newTestDispatcher() *Dispatcher {
	return New(config.Default(), events.NewBus())
}

func addRoom(d *Dispatcher, id string, speed types.Speed) {
	s := room.New(id, 30.0, 300.0, 25.0, speed)
	s.IsOn = true
	d.AddRoom(s)
}

func snap(t *testing.T, d *Dispatcher, id string) room.State {
	t.Helper()
	s, ok := d.Snapshot(id)
	require.True(t, ok, "room %s not registered", id)
	return s
}

// checkInvariants 容量、互斥与状态镜像检查
func checkInvariants(t *testing.T, d *Dispatcher) {
	t.Helper()
	serving, waiting := d.Queues()
	assert.LessOrEqual(t, len(serving), d.cfg.AC.MaxServing, "serving set exceeds capacity")

	seen := make(map[string]string)
	for _, r := range serving {
		assert.Equal(t, types.StatusServing, r.Status)
		seen[r.RoomID] = "serving"
	}
	for _, r := range waiting {
		assert.Equal(t, types.StatusWaiting, r.Status)
		_, dup := seen[r.RoomID]
		assert.False(t, dup, "room %s in both queues", r.RoomID)
		seen[r.RoomID] = "waiting"
	}
	for _, r := range d.SnapshotAll() {
		switch r.Status {
		case types.StatusServing:
			assert.Equal(t, "serving", seen[r.RoomID])
		case types.StatusWaiting:
			assert.Equal(t, "waiting", seen[r.RoomID])
		default:
			_, inQueue := seen[r.RoomID]
			assert.False(t, inQueue, "idle room %s present in a queue", r.RoomID)
		}
	}
}

func TestAdmitToFreeSlots(t *testing.T) {
	d := newTestDispatcher()
	for _, id := range []string{"101", "102", "103"} {
		addRoom(d, id, types.SpeedMid)
		d.Request(id)
	}

	for _, id := range []string{"101", "102", "103"} {
		r := snap(t, d, id)
		assert.Equal(t, types.StatusServing, r.Status)
		assert.Zero(t, r.ServiceTime)
	}
	checkInvariants(t, d)
}

func TestPriorityPreemption(t *testing.T) {
	d := newTestDispatcher()
	for _, id := range []string{"101", "102", "103"} {
		addRoom(d, id, types.SpeedMid)
	}
	addRoom(d, "104", types.SpeedHigh)

	// 错开入场制造不同的服务时长:101 最久
	d.Request("101")
	d.Tick(10)
	d.Request("102")
	d.Tick(10)
	d.Request("103")
	d.Tick(10)

	d.Request("104")

	r104 := snap(t, d, "104")
	assert.Equal(t, types.StatusServing, r104.Status)

	r101 := snap(t, d, "101")
	assert.Equal(t, types.StatusWaiting, r101.Status, "longest serving low-priority room is the victim")
	assert.True(t, r101.Wait.Indefinite, "preemption victim waits indefinitely")

	assert.Equal(t, types.StatusServing, snap(t, d, "102").Status)
	assert.Equal(t, types.StatusServing, snap(t, d, "103").Status)
	checkInvariants(t, d)
}

func TestEqualPriorityTimeSlice(t *testing.T) {
	d := newTestDispatcher()
	for _, id := range []string{"101", "102", "103", "104"} {
		addRoom(d, id, types.SpeedMid)
	}
	d.Request("101")
	d.Tick(10)
	d.Request("102")
	d.Tick(10)
	d.Request("103")
	d.Tick(10)

	d.Request("104")
	r104 := snap(t, d, "104")
	require.Equal(t, types.StatusWaiting, r104.Status)
	require.False(t, r104.Wait.Indefinite)
	assert.InDelta(t, 120.0, r104.Wait.Remaining, 1e-9)

	// 倒计时推进但未到期
	d.Tick(119)
	r104 = snap(t, d, "104")
	assert.Equal(t, types.StatusWaiting, r104.Status)
	assert.InDelta(t, 1.0, r104.Wait.Remaining, 1e-9)

	// 到期:与服务最久的 101 对调
	d.Tick(1)
	r104 = snap(t, d, "104")
	assert.Equal(t, types.StatusServing, r104.Status)
	assert.Zero(t, r104.ServiceTime)

	r101 := snap(t, d, "101")
	assert.Equal(t, types.StatusWaiting, r101.Status)
	assert.False(t, r101.Wait.Indefinite, "displaced peer re-enters the rotation with a fresh slice")
	assert.InDelta(t, 120.0, r101.Wait.Remaining, 1e-9)
	checkInvariants(t, d)
}

func TestSliceExpiryWithoutPeerRetries(t *testing.T) {
	d := newTestDispatcher()
	for _, id := range []string{"101", "102", "103"} {
		addRoom(d, id, types.SpeedHigh)
		d.Request(id)
	}
	addRoom(d, "104", types.SpeedMid)
	addRoom(d, "105", types.SpeedMid)
	d.Request("104")
	d.Request("105")
	// 104/105 低于全部服务对象,无限期等待
	require.True(t, snap(t, d, "104").Wait.Indefinite)

	// 人为构造同优先级到期等待者再移除同级服务对象的场景:
	// 把 105 升为高风速重新请求,得到时间片
	d.Update("105", func(r *room.State) { r.FanSpeed = types.SpeedHigh })
	d.Request("105")
	r105 := snap(t, d, "105")
	require.False(t, r105.Wait.Indefinite)

	// 服务对象全部降为中风速,105 的时间片到期后找不到同级对象
	for _, id := range []string{"101", "102", "103"} {
		d.Update(id, func(r *room.State) { r.FanSpeed = types.SpeedMid })
	}
	d.Tick(120)
	r105 = snap(t, d, "105")
	assert.Equal(t, types.StatusWaiting, r105.Status)
	assert.Zero(t, r105.Wait.Remaining, "expired waiter holds at zero and retries")

	// 出现空位后正常提升,105 优先级最高
	d.Release("101")
	assert.Equal(t, types.StatusServing, snap(t, d, "105").Status)
	checkInvariants(t, d)
}

func TestLowerPriorityWaitsIndefinitely(t *testing.T) {
	d := newTestDispatcher()
	for _, id := range []string{"101", "102", "103"} {
		addRoom(d, id, types.SpeedMid)
		d.Request(id)
	}
	addRoom(d, "104", types.SpeedLow)
	d.Request("104")

	r104 := snap(t, d, "104")
	assert.Equal(t, types.StatusWaiting, r104.Status)
	assert.True(t, r104.Wait.Indefinite)

	// 时间流逝不会让低优先级上位
	d.Tick(600)
	assert.Equal(t, types.StatusWaiting, snap(t, d, "104").Status)
	checkInvariants(t, d)
}

func TestPromotionOrder(t *testing.T) {
	d := newTestDispatcher()
	for _, id := range []string{"101", "102", "103"} {
		addRoom(d, id, types.SpeedMid)
		d.Request(id)
	}
	// 105 抢占 101,101 无限期等待;104 同级申请,持有时间片
	addRoom(d, "105", types.SpeedHigh)
	d.Tick(5)
	d.Request("105")
	addRoom(d, "104", types.SpeedMid)
	d.Request("104")

	r101, r104 := snap(t, d, "101"), snap(t, d, "104")
	require.True(t, r101.Wait.Indefinite)
	require.False(t, r104.Wait.Indefinite)

	// 同优先级并列时,有限倒计时小于无限期,104 先上
	d.Release("102")
	assert.Equal(t, types.StatusServing, snap(t, d, "104").Status)
	assert.Equal(t, types.StatusWaiting, snap(t, d, "101").Status)

	d.Release("103")
	assert.Equal(t, types.StatusServing, snap(t, d, "101").Status)
	checkInvariants(t, d)
}

func TestRequestWhileServingIsNoop(t *testing.T) {
	d := newTestDispatcher()
	addRoom(d, "101", types.SpeedMid)
	d.Request("101")
	d.Tick(42)

	d.Request("101")
	r := snap(t, d, "101")
	assert.Equal(t, types.StatusServing, r.Status)
	assert.InDelta(t, 42.0, r.ServiceTime, 1e-9, "repeated request must not reset service time")
}

func TestRequestWhileWaitingReevaluates(t *testing.T) {
	d := newTestDispatcher()
	for _, id := range []string{"101", "102", "103"} {
		addRoom(d, id, types.SpeedMid)
		d.Request(id)
	}
	addRoom(d, "104", types.SpeedMid)
	d.Request("104")
	d.Tick(60)
	require.InDelta(t, 60.0, snap(t, d, "104").Wait.Remaining, 1e-9)

	// 同参数重新请求:时间片从头计
	d.Request("104")
	assert.InDelta(t, 120.0, snap(t, d, "104").Wait.Remaining, 1e-9)

	// 升风速重新请求:立即抢占最久的服务对象
	d.Update("104", func(r *room.State) { r.FanSpeed = types.SpeedHigh })
	d.Request("104")
	assert.Equal(t, types.StatusServing, snap(t, d, "104").Status)
	assert.Equal(t, types.StatusWaiting, snap(t, d, "101").Status)
	checkInvariants(t, d)
}

func TestUnknownRoomIsNoop(t *testing.T) {
	d := newTestDispatcher()
	addRoom(d, "101", types.SpeedMid)
	d.Request("101")

	d.Request("999")
	d.Release("999")
	d.Tick(1)

	assert.Equal(t, types.StatusServing, snap(t, d, "101").Status)
	checkInvariants(t, d)
}

func TestReleaseWaitingRoom(t *testing.T) {
	d := newTestDispatcher()
	for _, id := range []string{"101", "102", "103", "104"} {
		addRoom(d, id, types.SpeedMid)
		d.Request(id)
	}
	require.Equal(t, types.StatusWaiting, snap(t, d, "104").Status)

	d.Release("104")
	r := snap(t, d, "104")
	assert.Equal(t, types.StatusIdle, r.Status)
	assert.Zero(t, r.Wait.Remaining)
	checkInvariants(t, d)
}

func TestSelfHealOnInconsistency(t *testing.T) {
	d := newTestDispatcher()
	addRoom(d, "101", types.SpeedMid)
	d.Request("101")

	// 绕过调度接口强写状态,模拟损坏
	d.Update("101", func(r *room.State) { r.Status = types.StatusIdle })
	d.Tick(1)

	assert.Equal(t, types.StatusIdle, snap(t, d, "101").Status)
	serving, waiting := d.Queues()
	assert.Empty(t, serving)
	assert.Empty(t, waiting)

	// 复位后可以正常重新进入调度
	d.Request("101")
	assert.Equal(t, types.StatusServing, snap(t, d, "101").Status)
}

func TestRestoreFromPersistedState(t *testing.T) {
	d := newTestDispatcher()

	mk := func(id string, speed types.Speed, st types.Status, serviceTime float64, w room.Wait) {
		s := room.New(id, 30.0, 300.0, 25.0, speed)
		s.IsOn = true
		s.Status = st
		s.ServiceTime = serviceTime
		s.Wait = w
		d.AddRoom(s)
	}

	// 持久化状态声称四个房间都在服务,超出容量
	mk("101", types.SpeedHigh, types.StatusServing, 30, room.Wait{})
	mk("102", types.SpeedMid, types.StatusServing, 90, room.Wait{})
	mk("103", types.SpeedMid, types.StatusServing, 10, room.Wait{})
	mk("104", types.SpeedLow, types.StatusServing, 5, room.Wait{})
	mk("105", types.SpeedMid, types.StatusWaiting, 0, room.SliceWait(60))

	d.Restore()

	assert.Equal(t, types.StatusServing, snap(t, d, "101").Status)
	assert.Equal(t, types.StatusServing, snap(t, d, "102").Status)
	assert.Equal(t, types.StatusServing, snap(t, d, "103").Status)
	// 回位不清零已累计的服务时长
	assert.InDelta(t, 30.0, snap(t, d, "101").ServiceTime, 1e-9)
	assert.InDelta(t, 90.0, snap(t, d, "102").ServiceTime, 1e-9)
	assert.InDelta(t, 10.0, snap(t, d, "103").ServiceTime, 1e-9)
	r104 := snap(t, d, "104")
	assert.Equal(t, types.StatusWaiting, r104.Status, "lowest priority loses the slot on restore")
	assert.True(t, r104.Wait.Indefinite)
	assert.Equal(t, types.StatusWaiting, snap(t, d, "105").Status)
	checkInvariants(t, d)
}

func TestRestoredServiceTimeFeedsVictimSelection(t *testing.T) {
	d := newTestDispatcher()
	for _, spec := range []struct {
		id string
		st float64
	}{
		{"101", 90}, {"102", 30}, {"103", 10},
	} {
		s := room.New(spec.id, 30.0, 300.0, 25.0, types.SpeedMid)
		s.IsOn = true
		s.Status = types.StatusServing
		s.ServiceTime = spec.st
		d.AddRoom(s)
	}
	d.Restore()

	// 重启后的抢占依旧按恢复前的服务时长挑选牺牲者
	addRoom(d, "104", types.SpeedHigh)
	d.Request("104")

	assert.Equal(t, types.StatusServing, snap(t, d, "104").Status)
	assert.Equal(t, types.StatusWaiting, snap(t, d, "101").Status, "longest restored stint is preempted first")
	assert.Equal(t, types.StatusServing, snap(t, d, "102").Status)
	assert.Equal(t, types.StatusServing, snap(t, d, "103").Status)
	checkInvariants(t, d)
}
