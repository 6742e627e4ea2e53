package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

func window(start, end string, maxPatients int) *model.WeeklyAvailability {
	return &model.WeeklyAvailability{
		StartTime:   start,
		EndTime:     end,
		MaxPatients: maxPatients,
		IsActive:    true,
	}
}

func TestDayOfWeekConvention(t *testing.T) {
	// 2026-09-06 is a Sunday
	sunday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, dayOfWeek(sunday))
	assert.Equal(t, 1, dayOfWeek(sunday.AddDate(0, 0, 1)))
	assert.Equal(t, 6, dayOfWeek(sunday.AddDate(0, 0, 6)))
}

func TestInactiveWindowYieldsNoSlots(t *testing.T) {
	active := window("08:00", "09:00", 1)
	inactive := window("09:00", "10:00", 2)
	inactive.IsActive = false

	slots, err := computeSlots([]*model.WeeklyAvailability{active, inactive}, nil, nil, 15)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	for _, s := range slots {
		assert.Less(t, s.StartTime, "09:00")
	}

	c, err := capacityAt([]*model.WeeklyAvailability{inactive}, nil, "09:15", 15)
	require.NoError(t, err)
	assert.Equal(t, 0, c)
}

func TestComputeSlotsBasicHour(t *testing.T) {
	slots, err := computeSlots([]*model.WeeklyAvailability{window("08:00", "09:00", 1)}, nil, nil, 15)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	assert.Equal(t, "08:00", slots[0].StartTime)
	assert.Equal(t, "08:15", slots[0].EndTime)
	assert.Equal(t, "08:45", slots[3].StartTime)
	assert.Equal(t, "09:00", slots[3].EndTime)
	for _, s := range slots {
		assert.Equal(t, 1, s.Capacity)
	}
}

func TestComputeSlotsNoWindows(t *testing.T) {
	slots, err := computeSlots(nil, nil, nil, 15)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlotsFullDayLeave(t *testing.T) {
	leave := &model.DoctorLeave{IsFullDay: true}
	slots, err := computeSlots([]*model.WeeklyAvailability{window("08:00", "12:00", 2)}, leave, nil, 15)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlotsPartialLeave(t *testing.T) {
	start, end := "08:30", "09:00"
	leave := &model.DoctorLeave{StartTime: &start, EndTime: &end}

	slots, err := computeSlots([]*model.WeeklyAvailability{window("08:00", "09:00", 1)}, leave, nil, 15)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "08:00", slots[0].StartTime)
	assert.Equal(t, "08:15", slots[1].StartTime)
}

func TestComputeSlotsBookedCountsReduceCapacity(t *testing.T) {
	booked := map[string]int{"08:15": 1}
	slots, err := computeSlots([]*model.WeeklyAvailability{window("08:00", "09:00", 1)}, nil, booked, 15)
	require.NoError(t, err)

	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.StartTime)
	}
	assert.Equal(t, []string{"08:00", "08:30", "08:45"}, times)
}

func TestComputeSlotsOverlappingWindowsShareCounts(t *testing.T) {
	// 08:00-09:00 cap 1 overlaps 08:30-10:00 cap 2; effective capacity at
	// 08:30 and 08:45 is the max, and one slot per key is emitted.
	windows := []*model.WeeklyAvailability{
		window("08:00", "09:00", 1),
		window("08:30", "10:00", 2),
	}
	booked := map[string]int{"08:30": 1}

	slots, err := computeSlots(windows, nil, booked, 30)
	require.NoError(t, err)

	byStart := make(map[string]int)
	for _, s := range slots {
		_, dup := byStart[s.StartTime]
		require.False(t, dup, "duplicate slot for %s", s.StartTime)
		byStart[s.StartTime] = s.Capacity
	}

	assert.Equal(t, 1, byStart["08:00"])
	assert.Equal(t, 1, byStart["08:30"]) // max(1,2) minus one booked
	assert.Equal(t, 2, byStart["09:00"])
	assert.Equal(t, 2, byStart["09:30"])
}

func TestComputeSlotsSlotMustFitWindow(t *testing.T) {
	// a 45 minute tail cannot hold a 30 minute slot past 08:30
	slots, err := computeSlots([]*model.WeeklyAvailability{window("08:00", "08:45", 1)}, nil, nil, 30)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "08:00", slots[0].StartTime)
}

func TestCapacityAt(t *testing.T) {
	windows := []*model.WeeklyAvailability{window("08:00", "09:00", 2)}

	c, err := capacityAt(windows, nil, "08:15", 15)
	require.NoError(t, err)
	assert.Equal(t, 2, c)

	// off the slot grid
	c, err = capacityAt(windows, nil, "08:10", 15)
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	// outside the window
	c, err = capacityAt(windows, nil, "09:00", 15)
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	// blocked by partial leave
	ls, le := "08:00", "08:30"
	c, err = capacityAt(windows, &model.DoctorLeave{StartTime: &ls, EndTime: &le}, "08:15", 15)
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	c, err = capacityAt(windows, &model.DoctorLeave{IsFullDay: true}, "08:15", 15)
	require.NoError(t, err)
	assert.Equal(t, 0, c)
}
