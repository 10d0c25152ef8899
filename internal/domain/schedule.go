// Package domain contains core domain types for the Haru assistant.
package domain

import (
	"time"
)

// Layouts for the ISO calendar-date and time-of-day strings stored in the
// database. All date/time columns are plain text in these formats.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Schedule is a one-off calendar entry owned by a user.
type Schedule struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`           // YYYY-MM-DD
	Time        string    `json:"time,omitempty"` // HH:MM, empty means no time
	IsDone      bool      `json:"is_done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasTime reports whether the schedule has a time of day attached.
func (s *Schedule) HasTime() bool {
	return s.Time != ""
}

// Label renders a short one-line description used in selection lists and
// digest messages.
func (s *Schedule) Label() string {
	if s.HasTime() {
		return s.Time + " " + s.Title
	}
	return s.Title
}
