package domain

import "time"

// Reflection kinds, matching the three journaling flows.
const (
	ReflectionDaily   = "daily"
	ReflectionWeekly  = "weekly"
	ReflectionMonthly = "monthly"
)

// Reflection is a journal entry collected by one of the reflection flows.
// Content holds the concatenated fact/think/action sections as one record.
type Reflection struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"type"`
	Content   string    `json:"content"`
	Date      string    `json:"date"` // YYYY-MM-DD of the day it was written
	CreatedAt time.Time `json:"created_at"`
}
