// Package calendar counts billable leave days over the Gulf work week.
package calendar

import "time"

const dateKey = "2006-01-02"

type Holiday struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// HolidaySet indexes holiday dates for O(1) lookup during day iteration.
type HolidaySet map[string]struct{}

func NewHolidaySet(holidays []Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set[h.Date.Format(dateKey)] = struct{}{}
	}
	return set
}

func (s HolidaySet) Contains(d time.Time) bool {
	_, ok := s[d.Format(dateKey)]
	return ok
}

// BillableDays counts the days in [start, end] that charge against a leave
// balance. Fridays never count; Saturdays count only when excludeSaturday
// is false (six-day-week employees); holidays never count regardless of
// weekday. An inverted or zero range yields 0.
func BillableDays(start, end time.Time, excludeSaturday bool, holidays HolidaySet) int {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return 0
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Friday {
			continue
		}
		if excludeSaturday && d.Weekday() == time.Saturday {
			continue
		}
		if holidays.Contains(d) {
			continue
		}
		count++
	}
	return count
}

// LeapDays counts Feb 29 occurrences in [start, end]. The statutory year
// is exactly 365 days, so settlement tenure drops leap days.
func LeapDays(start, end time.Time) int {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return 0
	}

	count := 0
	for year := start.Year(); year <= end.Year(); year++ {
		leap := time.Date(year, time.February, 29, 0, 0, 0, 0, start.Location())
		if leap.Month() != time.February {
			continue
		}
		if !leap.Before(start) && !leap.After(end) {
			count++
		}
	}
	return count
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
