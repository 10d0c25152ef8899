package domain

import (
	"time"
)

// WeekRange returns the Monday and Sunday dates of the ISO week containing t.
func WeekRange(t time.Time) (start, end string) {
	offset := ISOWeekday(t) - 1
	monday := t.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format(DateLayout), sunday.Format(DateLayout)
}

// MonthRange returns the first and last dates of the month containing t.
func MonthRange(t time.Time) (start, end string) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}
