package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

var utc = time.UTC

func at(day, hour, min int) time.Time {
	return time.Date(2026, 3, day, hour, min, 0, 0, utc)
}

func TestParseTarget(t *testing.T) {
	s, err := ParseTarget("done")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, s)

	_, err = ParseTarget("BLOCKED")
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))

	_, err = ParseTarget("archived")
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))
}

func TestCanCancel(t *testing.T) {
	assert.NoError(t, CanCancel(StatusBooked, false))
	assert.NoError(t, CanCancel(StatusDone, true))
	assert.True(t, httperr.IsBusiness(CanCancel(StatusDone, false), "forbidden"))
	assert.True(t, httperr.IsBusiness(CanCancel(StatusCancelled, true), "invalid_state"))
}

func TestCanTransition(t *testing.T) {
	assert.NoError(t, CanTransition(StatusBooked, StatusDone))
	assert.NoError(t, CanTransition(StatusDone, StatusBooked))
	assert.NoError(t, CanTransition(StatusBlocked, StatusCancelled))
	assert.Error(t, CanTransition(StatusBlocked, StatusDone))
	assert.Error(t, CanTransition(StatusCancelled, StatusBooked))
}

func TestRescheduleCarriesReward(t *testing.T) {
	uid := uint(7)
	old := &models.Appointment{
		ID:            1,
		UserID:        &uid,
		BarberID:      2,
		Services:      []models.Service{{ID: 3}},
		RewardApplied: true,
		TotalPrice:    0,
	}

	next := Reschedule(old, at(16, 10, 0), at(16, 10, 30))

	assert.Equal(t, string(StatusModified), next.Status)
	assert.True(t, next.RewardApplied)
	assert.Equal(t, old.UserID, next.UserID)
	assert.Equal(t, []uint{3}, next.ServiceIDs())
	assert.True(t, IsOwnedBy(next, 7))
	assert.False(t, IsOwnedBy(next, 8))
}

func TestBlockInterval(t *testing.T) {
	slot := 30 * time.Minute

	whole, err := BlockInterval(models.BlockedSlot{Day: "2026-03-02"}, utc, slot)
	require.NoError(t, err)
	assert.Equal(t, at(2, 0, 0), whole.Start)
	assert.Equal(t, at(3, 0, 0), whole.End)

	single, err := BlockInterval(models.BlockedSlot{Day: "2026-03-02", StartTime: "14:00"}, utc, slot)
	require.NoError(t, err)
	assert.Equal(t, at(2, 14, 30), single.End)

	ranged, err := BlockInterval(models.BlockedSlot{Day: "2026-03-02", StartTime: "14:00", EndTime: "16:00"}, utc, slot)
	require.NoError(t, err)
	assert.Equal(t, at(2, 16, 0), ranged.End)
}

func TestValidateBlock(t *testing.T) {
	slot := 30 * time.Minute

	assert.NoError(t, ValidateBlock(models.BlockedSlot{Day: "2026-03-02"}, utc, slot))
	assert.True(t, httperr.IsBusiness(
		ValidateBlock(models.BlockedSlot{Day: "bad"}, utc, slot), "invalid_date"))
	assert.True(t, httperr.IsBusiness(
		ValidateBlock(models.BlockedSlot{Day: "2026-03-02", EndTime: "10:00"}, utc, slot), "invalid_time_range"))
	assert.True(t, httperr.IsBusiness(
		ValidateBlock(models.BlockedSlot{Day: "2026-03-02", StartTime: "12:00", EndTime: "11:00"}, utc, slot), "invalid_time_range"))
}

func TestAssertSlotFree(t *testing.T) {
	slot := 30 * time.Minute
	other := uint(9)

	appointments := []models.Appointment{
		{ID: 1, BarberID: 1, StartTime: at(2, 10, 0), EndTime: at(2, 10, 30), Status: string(StatusBooked)},
		{ID: 2, BarberID: 1, StartTime: at(2, 11, 0), EndTime: at(2, 11, 30), Status: string(StatusCancelled)},
	}
	blocks := []models.BlockedSlot{
		{Day: "2026-03-02", StartTime: "15:00"},
		{Day: "2026-03-02", StartTime: "16:00", BarberID: &other},
	}

	err := AssertSlotFree(1, at(2, 10, 0), at(2, 10, 30), appointments, blocks, slot, 0)
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))

	assert.NoError(t, AssertSlotFree(1, at(2, 10, 0), at(2, 10, 30), appointments, blocks, slot, 1))
	assert.NoError(t, AssertSlotFree(1, at(2, 11, 0), at(2, 11, 30), appointments, blocks, slot, 0))

	err = AssertSlotFree(1, at(2, 15, 0), at(2, 15, 30), appointments, blocks, slot, 0)
	assert.True(t, httperr.IsBusiness(err, "slot_blocked"))

	assert.NoError(t, AssertSlotFree(1, at(2, 16, 0), at(2, 16, 30), appointments, blocks, slot, 0))
}

func TestFreeSlotsDefaults(t *testing.T) {
	slot := 30 * time.Minute
	monday := at(2, 0, 0)

	slots := FreeSlots(monday, DefaultWorkingDay(monday.Weekday()), nil, slot, time.Time{})
	require.Len(t, slots, 12)
	assert.Equal(t, "12:00:00", slots[0])
	assert.Equal(t, "17:30:00", slots[len(slots)-1])

	tuesday := at(3, 0, 0)
	assert.Len(t, FreeSlots(tuesday, DefaultWorkingDay(tuesday.Weekday()), nil, slot, time.Time{}), 22)
}

func TestFreeSlotsSkipsLunchBusyAndPast(t *testing.T) {
	slot := 30 * time.Minute
	day := at(3, 0, 0)

	wd := WorkingDay{Active: true, Start: "09:00", End: "12:00", LunchStart: "10:00", LunchEnd: "10:30"}
	busy := []Interval{{Start: at(3, 11, 0), End: at(3, 11, 30)}}

	slots := FreeSlots(day, wd, busy, slot, at(3, 9, 15))
	assert.Equal(t, []string{"09:30:00", "10:30:00", "11:30:00"}, slots)

	assert.Empty(t, FreeSlots(day, WorkingDay{Active: false}, nil, slot, time.Time{}))
}

func TestBusyIntervals(t *testing.T) {
	slot := 30 * time.Minute
	appointments := []models.Appointment{
		{BarberID: 1, StartTime: at(3, 10, 0), EndTime: at(3, 10, 30), Status: string(StatusBlocked)},
		{BarberID: 1, StartTime: at(3, 11, 0), EndTime: at(3, 11, 30), Status: string(StatusDone)},
	}
	blocks := []models.BlockedSlot{{Day: "2026-03-03", StartTime: "12:00"}}

	assert.Len(t, BusyIntervals(1, appointments, blocks, utc, slot), 2)
}

func TestBuildRevenueReport(t *testing.T) {
	weekStart := at(9, 0, 0)
	done := []models.Appointment{
		{BarberID: 1, StartTime: at(9, 10, 0), Status: string(StatusDone), TotalPrice: 13},
		{BarberID: 1, StartTime: at(15, 14, 0), Status: string(StatusDone), TotalPrice: 7},
		{BarberID: 1, StartTime: at(15, 15, 0), Status: string(StatusCancelled), TotalPrice: 20},
		{BarberID: 2, StartTime: at(10, 10, 0), Status: string(StatusDone), TotalPrice: 50},
		{BarberID: 1, StartTime: at(16, 10, 0), Status: string(StatusDone), TotalPrice: 99},
	}

	r := BuildRevenueReport(1, weekStart, done)

	assert.Equal(t, "09 mar - 15 mar", r.Weekly.Range)
	assert.Equal(t, 11, r.Weekly.WeekNumber)
	assert.Equal(t, 2, r.Weekly.Count)
	assert.Equal(t, 20.0, r.Weekly.Total)
	require.Len(t, r.Daily, 7)
	assert.Equal(t, "Monday", r.Daily[0].Day)
	assert.Equal(t, 13.0, r.Daily[0].Total)
	assert.Equal(t, "2026-03-15", r.Daily[6].Date)
	assert.Equal(t, 1, r.Daily[6].Count)
}
