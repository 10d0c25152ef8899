package domain

import (
	"time"
)

// Notification kinds. Morning notifications back the daily digest, end
// notifications remind about a specific schedule at its time of day, custom
// notifications are user-defined.
const (
	NotificationMorning = "morning"
	NotificationEnd     = "end"
	NotificationCustom  = "custom"
)

// Notification is a persisted time-keyed obligation. Once fired, IsActive is
// flipped to false and the row must never fire again.
type Notification struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	ScheduleID int64     `json:"schedule_id,omitempty"` // 0 means not tied to a schedule
	Kind       string    `json:"notification_type"`
	FireTime   string    `json:"notification_time"` // HH:MM
	Message    string    `json:"message"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
