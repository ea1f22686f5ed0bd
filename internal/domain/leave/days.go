package leave

import "time"

// DateOnly drops the clock part of t, keeping its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CountDays returns the inclusive calendar-day span of [start, end]. Weekends
// and holidays are counted.
func CountDays(start, end time.Time) int {
	start, end = DateOnly(start), DateOnly(end)
	if end.Before(start) {
		return 0
	}
	return int(dayNumber(end)-dayNumber(start)) + 1
}

const secondsPerDay = 24 * 60 * 60

// dayNumber counts days since the Unix epoch for a UTC midnight.
func dayNumber(t time.Time) int64 {
	return t.Unix() / secondsPerDay
}

// MonthDays is the number of leave days falling in one calendar month.
type MonthDays struct {
	Year  int
	Month time.Month
	Days  int
}

// SplitByMonth attributes each day of [start, end] to its calendar month.
func SplitByMonth(start, end time.Time) []MonthDays {
	start, end = DateOnly(start), DateOnly(end)
	var out []MonthDays
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		n := len(out)
		if n > 0 && out[n-1].Year == d.Year() && out[n-1].Month == d.Month() {
			out[n-1].Days++
			continue
		}
		out = append(out, MonthDays{Year: d.Year(), Month: d.Month(), Days: 1})
	}
	return out
}
