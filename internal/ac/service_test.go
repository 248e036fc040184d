package ac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelac/internal/config"
	"hotelac/internal/dispatcher"
	"hotelac/internal/events"
	"hotelac/internal/room"
	"hotelac/internal/types"
)

func newTestService() (*Service, *dispatcher.Dispatcher) {
	cfg := config.Default()
	bus := events.NewBus()
	disp := dispatcher.New(cfg, bus)
	return NewService(cfg, disp, bus), disp
}

func addOccupied(d *dispatcher.Dispatcher, id string, speed types.Speed) {
	s := room.New(id, 30.0, 300.0, 25.0, speed)
	s.Occupied = true
	s.GuestID = "G-" + id
	d.AddRoom(s)
}

func snap(t *testing.T, d *dispatcher.Dispatcher, id string) room.State {
	t.Helper()
	s, ok := d.Snapshot(id)
	require.True(t, ok)
	return s
}

func TestPowerOnRequiresOccupiedRoom(t *testing.T) {
	svc, disp := newTestService()
	disp.AddRoom(room.New("101", 30.0, 300.0, 25.0, types.SpeedMid))

	assert.ErrorIs(t, svc.PowerOn("999"), ErrRoomNotFound)
	assert.ErrorIs(t, svc.PowerOn("101"), ErrNotOccupied)
}

func TestPowerOnAndOff(t *testing.T) {
	svc, disp := newTestService()
	addOccupied(disp, "101", types.SpeedMid)

	require.NoError(t, svc.PowerOn("101"))
	r := snap(t, disp, "101")
	assert.True(t, r.IsOn)
	assert.Equal(t, types.StatusServing, r.Status)

	require.NoError(t, svc.PowerOff("101"))
	r = snap(t, disp, "101")
	assert.False(t, r.IsOn)
	assert.Equal(t, types.StatusIdle, r.Status)
}

func TestSetFanSpeedReevaluatesWaiting(t *testing.T) {
	svc, disp := newTestService()
	for _, id := range []string{"101", "102", "103", "104"} {
		addOccupied(disp, id, types.SpeedMid)
		require.NoError(t, svc.PowerOn(id))
	}
	require.Equal(t, types.StatusWaiting, snap(t, disp, "104").Status)

	assert.Error(t, svc.SetFanSpeed("104", "TURBO"))

	require.NoError(t, svc.SetFanSpeed("104", "HIGH"))
	r := snap(t, disp, "104")
	assert.Equal(t, types.SpeedHigh, r.FanSpeed)
	assert.Equal(t, types.StatusServing, r.Status, "higher speed preempts a serving peer")
}

func TestSetTargetDoesNotTouchWaitClock(t *testing.T) {
	svc, disp := newTestService()
	for _, id := range []string{"101", "102", "103", "104"} {
		addOccupied(disp, id, types.SpeedMid)
		require.NoError(t, svc.PowerOn(id))
	}
	disp.Tick(30)
	before := snap(t, disp, "104")
	require.Equal(t, types.StatusWaiting, before.Status)

	assert.Error(t, svc.SetTarget("104", "COOL", 17.0), "below cooling range")
	assert.Error(t, svc.SetTarget("104", "FAN", 22.0), "unknown mode")

	require.NoError(t, svc.SetTarget("104", "COOL", 22.0))
	after := snap(t, disp, "104")
	assert.Equal(t, 22.0, after.TargetTemp)
	assert.Equal(t, before.Wait, after.Wait, "target change must not reset the wait clock")
	assert.Equal(t, types.StatusWaiting, after.Status)
}

func TestModeChangeDoesNotRequest(t *testing.T) {
	svc, disp := newTestService()
	addOccupied(disp, "101", types.SpeedMid)

	require.NoError(t, svc.SetTarget("101", "HEAT", 28.0))
	r := snap(t, disp, "101")
	assert.Equal(t, types.ModeHeat, r.Mode)
	assert.Equal(t, types.StatusIdle, r.Status, "setpoint change alone never enters scheduling")
}

func TestCheckoutReset(t *testing.T) {
	svc, disp := newTestService()
	addOccupied(disp, "101", types.SpeedMid)
	require.NoError(t, svc.PowerOn("101"))
	disp.Update("101", func(r *room.State) {
		r.Fee = 12.5
		r.TotalFee = 40.0
	})

	require.NoError(t, svc.CheckoutReset("101"))
	r := snap(t, disp, "101")
	assert.False(t, r.IsOn)
	assert.Equal(t, types.StatusIdle, r.Status)
	assert.Zero(t, r.Fee)
	assert.Zero(t, r.TotalFee)
}
