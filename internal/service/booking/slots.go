package booking

import (
	"sort"
	"time"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

// dayOfWeek maps a calendar date to the schedule convention used by
// weekly_availability rows: Sunday=0, Monday=1 .. Saturday=6.
func dayOfWeek(date time.Time) int {
	return int(date.Weekday())
}

// computeSlots derives the open slots for one day from the doctor's
// availability windows, an optional leave exception, and the counts of
// appointments already holding each time key. Deactivated windows
// contribute nothing even if the caller passes them in.
//
// Booked counts are shared across every window covering a time key, and
// the effective capacity at a key is the largest max_patients among the
// covering windows, so overlapping windows never double-count capacity.
// The result is ordered by start time with one slot per key.
func computeSlots(windows []*model.WeeklyAvailability, leave *model.DoctorLeave, booked map[string]int, slotLength int) ([]*model.Slot, error) {
	if len(windows) == 0 {
		return []*model.Slot{}, nil
	}
	if leave != nil && leave.IsFullDay {
		return []*model.Slot{}, nil
	}

	leaveStart, leaveEnd := -1, -1
	if leave != nil && leave.StartTime != nil && leave.EndTime != nil {
		var err error
		if leaveStart, err = model.ParseClock(*leave.StartTime); err != nil {
			return nil, err
		}
		if leaveEnd, err = model.ParseClock(*leave.EndTime); err != nil {
			return nil, err
		}
	}

	// capacity per time key = max of max_patients over covering windows
	capacities := make(map[int]int)
	for _, w := range windows {
		if !w.IsActive {
			continue
		}
		start, err := model.ParseClock(w.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := model.ParseClock(w.EndTime)
		if err != nil {
			return nil, err
		}

		for cur := start; cur+slotLength <= end; cur += slotLength {
			if leaveStart >= 0 && cur < leaveEnd && cur+slotLength > leaveStart {
				continue
			}
			if w.MaxPatients > capacities[cur] {
				capacities[cur] = w.MaxPatients
			}
		}
	}

	keys := make([]int, 0, len(capacities))
	for k := range capacities {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	slots := make([]*model.Slot, 0, len(keys))
	for _, k := range keys {
		remaining := capacities[k] - booked[model.FormatClock(k)]
		if remaining <= 0 {
			continue
		}
		slots = append(slots, &model.Slot{
			StartTime: model.FormatClock(k),
			EndTime:   model.FormatClock(k + slotLength),
			Capacity:  remaining,
		})
	}
	return slots, nil
}

// capacityAt returns the effective capacity at one time key, or 0 when
// no active window covers it or leave blocks it. It is the single-key
// form of computeSlots used by the booking transaction.
func capacityAt(windows []*model.WeeklyAvailability, leave *model.DoctorLeave, timeKey string, slotLength int) (int, error) {
	if leave != nil && leave.IsFullDay {
		return 0, nil
	}

	at, err := model.ParseClock(timeKey)
	if err != nil {
		return 0, err
	}

	if leave != nil && leave.StartTime != nil && leave.EndTime != nil {
		ls, err := model.ParseClock(*leave.StartTime)
		if err != nil {
			return 0, err
		}
		le, err := model.ParseClock(*leave.EndTime)
		if err != nil {
			return 0, err
		}
		if at < le && at+slotLength > ls {
			return 0, nil
		}
	}

	capacity := 0
	for _, w := range windows {
		if !w.IsActive {
			continue
		}
		start, err := model.ParseClock(w.StartTime)
		if err != nil {
			return 0, err
		}
		end, err := model.ParseClock(w.EndTime)
		if err != nil {
			return 0, err
		}
		// the key must sit on the slot grid of the window
		if at < start || at+slotLength > end || (at-start)%slotLength != 0 {
			continue
		}
		if w.MaxPatients > capacity {
			capacity = w.MaxPatients
		}
	}
	return capacity, nil
}
