package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hotelac/internal/room"
	"hotelac/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return gdb
}

func TestRoomSnapshotRoundTrip(t *testing.T) {
	repo := NewRoomRepository(openTestDB(t))

	s := room.New("101", 32.0, 300.0, 25.0, types.SpeedMid)
	s.Occupied = true
	s.GuestID = "G1"
	s.CheckinTime = time.Date(2026, 8, 20, 14, 0, 0, 0, time.Local)
	s.IsOn = true
	s.Status = types.StatusWaiting
	s.Wait = room.SliceWait(42.5)
	s.Fee = 3.25
	s.TotalFee = 9.0

	require.NoError(t, repo.Save(s))

	rec, err := repo.Get("101")
	require.NoError(t, err)
	restored := rec.ToState()
	assert.Equal(t, s.RoomID, restored.RoomID)
	assert.Equal(t, s.GuestID, restored.GuestID)
	assert.Equal(t, types.StatusWaiting, restored.Status)
	assert.Equal(t, room.SliceWait(42.5), restored.Wait)
	assert.InDelta(t, 3.25, restored.Fee, 1e-9)
	assert.InDelta(t, 9.0, restored.TotalFee, 1e-9)

	// 再次写入走更新而非插入
	s.CurrentTemp = 30.5
	require.NoError(t, repo.Save(s))
	all, err := repo.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.InDelta(t, 30.5, all[0].CurrentTemp, 1e-9)
}

func TestRoomNotFound(t *testing.T) {
	repo := NewRoomRepository(openTestDB(t))
	_, err := repo.Get("999")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestToStateToleratesGarbage(t *testing.T) {
	rec := &RoomRecord{RoomID: "101", Mode: "??", FanSpeed: "??", Status: "??"}
	s := rec.ToState()
	assert.Equal(t, types.ModeCool, s.Mode)
	assert.Equal(t, types.SpeedMid, s.FanSpeed)
	assert.Equal(t, types.StatusIdle, s.Status)
}

func TestDetailAndBillQueries(t *testing.T) {
	gdb := openTestDB(t)
	details := NewDetailRepository(gdb)
	bills := NewBillRepository(gdb)

	base := time.Date(2026, 8, 21, 10, 0, 0, 0, time.Local)
	for i, speed := range []string{"MID", "HIGH"} {
		require.NoError(t, details.Create(&Detail{
			RoomID:    "101",
			StartTime: base.Add(time.Duration(i) * time.Hour),
			EndTime:   base.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			Speed:     speed,
			Rate:      0.5,
			Seconds:   600,
			Cost:      5,
			Reason:    "complete",
		}))
	}

	got, err := details.ListByRoom("101")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = details.ListByRoomSince("101", base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "HIGH", got[0].Speed)

	b := &Bill{BillNo: "B-1", RoomID: "101", GuestID: "G1", Nights: 2, RoomFee: 600, ACFee: 10, TotalFee: 610}
	require.NoError(t, bills.Create(b))
	loaded, err := bills.GetByNo("B-1")
	require.NoError(t, err)
	assert.Equal(t, 610.0, loaded.TotalFee)
	_, err = bills.GetByNo("B-2")
	assert.ErrorIs(t, err, ErrBillNotFound)
}

func TestEnsureUsersIdempotent(t *testing.T) {
	gdb := openTestDB(t)
	require.NoError(t, EnsureUsers(gdb))
	require.NoError(t, EnsureUsers(gdb))

	users := NewUserRepository(gdb)
	u, err := users.GetByUsername("reception")
	require.NoError(t, err)
	assert.Equal(t, "reception", u.Identity)

	var count int64
	gdb.Model(&User{}).Count(&count)
	assert.EqualValues(t, 3, count)
}
