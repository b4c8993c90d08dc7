package billing

import (
	"time"

	"cloud.google.com/go/civil"
)

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves (year, month) by n months, normalizing the year.
func AddMonths(year int, month time.Month, n int) (int, time.Month) {
	m := int(month) - 1 + n
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	return year, time.Month(m + 1)
}

// DayIn returns the date for day in the given month, clamping day to the
// month's last day. A closing day of 31 in April is April 30.
func DayIn(year int, month time.Month, day int) civil.Date {
	if day < 1 {
		day = 1
	}
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

// ShiftMonths returns the date n months after d with day clamped to the
// target month. Always computed from d, so Jan 31 + 2 is Mar 31, not Mar 28.
func ShiftMonths(d civil.Date, n int) civil.Date {
	y, m := AddMonths(d.Year, d.Month, n)
	return DayIn(y, m, d.Day)
}
