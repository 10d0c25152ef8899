package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Routine frequencies.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Routine is a recurring-obligation template. DaysOfWeek is only meaningful
// when Frequency is weekly and uses ISO weekday numbers (Monday=1..Sunday=7).
type Routine struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Frequency   string    `json:"frequency"`
	DaysOfWeek  []int     `json:"days_of_week,omitempty"`
	StartDate   string    `json:"start_date"`         // YYYY-MM-DD
	EndDate     string    `json:"end_date,omitempty"` // empty means open-ended
	Time        string    `json:"time,omitempty"`     // HH:MM
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ISOWeekday returns the ISO weekday of t (Monday=1 .. Sunday=7).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// IsDueOn reports whether the routine's recurrence pattern matches the given
// calendar day. It does not consult completion records; "already done today"
// is a separate check against RoutineCompletion.
//
// Monthly routines whose start day-of-month exceeds the length of the current
// month are clamped to the last day of that month, so a routine started on
// the 31st stays due once per month.
func (r *Routine) IsDueOn(day time.Time) bool {
	if !r.IsActive {
		return false
	}
	d := day.Format(DateLayout)
	if d < r.StartDate {
		return false
	}
	if r.EndDate != "" && d > r.EndDate {
		return false
	}

	switch r.Frequency {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		wd := ISOWeekday(day)
		for _, want := range r.DaysOfWeek {
			if wd == want {
				return true
			}
		}
		return false
	case FrequencyMonthly:
		start, err := time.Parse(DateLayout, r.StartDate)
		if err != nil {
			return false
		}
		target := start.Day()
		if last := lastDayOfMonth(day); target > last {
			target = last
		}
		return day.Day() == target
	}
	return false
}

// DueRoutines filters routines down to those due on the given day.
func DueRoutines(routines []*Routine, day time.Time) []*Routine {
	var due []*Routine
	for _, r := range routines {
		if r.IsDueOn(day) {
			due = append(due, r)
		}
	}
	return due
}

func lastDayOfMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// ParseDaysOfWeek parses the comma-joined days_of_week column ("1,3,5") into
// sorted ISO weekday numbers. An empty string yields nil.
func ParseDaysOfWeek(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 || n > 7 {
			return nil, fmt.Errorf("invalid weekday %q", p)
		}
		days = append(days, n)
	}
	sort.Ints(days)
	return days, nil
}

// FormatDaysOfWeek renders weekday numbers back into the comma-joined column
// form.
func FormatDaysOfWeek(days []int) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// RoutineCompletion records whether a routine was satisfied on a given date.
// The (RoutineID, CompletionDate) pair is unique.
type RoutineCompletion struct {
	ID             int64     `json:"id"`
	RoutineID      int64     `json:"routine_id"`
	CompletionDate string    `json:"completion_date"` // YYYY-MM-DD
	IsDone         bool      `json:"is_done"`
	CreatedAt      time.Time `json:"created_at"`
}
