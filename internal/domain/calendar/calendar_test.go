package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBillableDaysSingleDay(t *testing.T) {
	// 2025-01-06 is a Monday.
	monday := date(2025, time.January, 6)
	if got := BillableDays(monday, monday, false, nil); got != 1 {
		t.Fatalf("expected 1 billable day for a working Monday, got %d", got)
	}

	// 2025-01-10 is a Friday, always a rest day.
	friday := date(2025, time.January, 10)
	if got := BillableDays(friday, friday, false, nil); got != 0 {
		t.Fatalf("expected 0 billable days for Friday, got %d", got)
	}
}

func TestBillableDaysSaturdayDependsOnWorkWeek(t *testing.T) {
	// 2025-01-11 is a Saturday.
	saturday := date(2025, time.January, 11)
	if got := BillableDays(saturday, saturday, false, nil); got != 1 {
		t.Fatalf("six-day week should bill Saturday, got %d", got)
	}
	if got := BillableDays(saturday, saturday, true, nil); got != 0 {
		t.Fatalf("five-day week should not bill Saturday, got %d", got)
	}
}

func TestBillableDaysFullWeek(t *testing.T) {
	// Sunday 2025-01-05 through Saturday 2025-01-11.
	start := date(2025, time.January, 5)
	end := date(2025, time.January, 11)

	if got := BillableDays(start, end, false, nil); got != 6 {
		t.Fatalf("six-day week over a full week: expected 6, got %d", got)
	}
	if got := BillableDays(start, end, true, nil); got != 5 {
		t.Fatalf("five-day week over a full week: expected 5, got %d", got)
	}
}

func TestBillableDaysExcludesHolidays(t *testing.T) {
	start := date(2025, time.February, 23) // Sunday
	end := date(2025, time.February, 27)   // Thursday
	holidays := NewHolidaySet([]Holiday{
		{Date: date(2025, time.February, 25), Name: "National Day"},
		{Date: date(2025, time.February, 26), Name: "Liberation Day"},
	})

	if got := BillableDays(start, end, true, holidays); got != 3 {
		t.Fatalf("expected 3 billable days with two holidays, got %d", got)
	}
}

func TestBillableDaysInvertedRangeIsZero(t *testing.T) {
	start := date(2025, time.March, 10)
	end := date(2025, time.March, 1)
	if got := BillableDays(start, end, false, nil); got != 0 {
		t.Fatalf("inverted range must yield 0, got %d", got)
	}
}

func TestBillableDaysIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, time.January, 6, 23, 30, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 7, 0, 15, 0, 0, time.UTC)
	if got := BillableDays(start, end, false, nil); got != 2 {
		t.Fatalf("expected 2 days regardless of clock time, got %d", got)
	}
}

func TestLeapDays(t *testing.T) {
	if got := LeapDays(date(2023, time.January, 1), date(2025, time.December, 31)); got != 1 {
		t.Fatalf("expected 1 leap day in 2023-2025, got %d", got)
	}
	if got := LeapDays(date(2020, time.January, 1), date(2029, time.December, 31)); got != 3 {
		t.Fatalf("expected 3 leap days in 2020-2029, got %d", got)
	}
	if got := LeapDays(date(2024, time.March, 1), date(2024, time.December, 31)); got != 0 {
		t.Fatalf("expected 0 leap days after Feb, got %d", got)
	}
}
