// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/harubot/haru/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist or does not
// belong to the acting user.
var ErrNotFound = errors.New("not found")

// Repository defines the interface for persisting schedules, routines,
// reflections and notifications. Every call is individually atomic; no
// multi-row transaction discipline is required across entities.
type Repository interface {
	// AddSchedule inserts a schedule and returns its id.
	AddSchedule(ctx context.Context, s *domain.Schedule) (int64, error)

	// GetSchedule retrieves a schedule owned by the given user.
	GetSchedule(ctx context.Context, id int64, userID string) (*domain.Schedule, error)

	// ListSchedules lists a user's schedules. If date is non-empty, only
	// entries on that date are returned, ordered by time; otherwise all
	// entries ordered by date then time.
	ListSchedules(ctx context.Context, userID, date string) ([]*domain.Schedule, error)

	// ListUndoneSchedules lists a user's not-yet-completed schedules for a
	// date.
	ListUndoneSchedules(ctx context.Context, userID, date string) ([]*domain.Schedule, error)

	// UpdateSchedule persists title/description/date/time changes.
	UpdateSchedule(ctx context.Context, s *domain.Schedule) error

	// DeleteSchedule removes a schedule owned by the given user.
	DeleteSchedule(ctx context.Context, id int64, userID string) error

	// MarkScheduleDone flips is_done to true. Marking an already-done
	// schedule is a no-op that still succeeds.
	MarkScheduleDone(ctx context.Context, id int64, userID string) error

	// ListScheduleOwners returns the distinct user ids that own at least one
	// schedule.
	ListScheduleOwners(ctx context.Context) ([]string, error)

	// ScheduleStats counts done and not-done schedules in the inclusive date
	// range.
	ScheduleStats(ctx context.Context, userID, start, end string) (done, notDone int, err error)

	// AddRoutine inserts a routine and returns its id.
	AddRoutine(ctx context.Context, r *domain.Routine) (int64, error)

	// ListRoutines lists a user's routines, optionally active ones only.
	ListRoutines(ctx context.Context, userID string, activeOnly bool) ([]*domain.Routine, error)

	// UpsertRoutineCompletion records completion state for a routine on a
	// date. The (routine_id, completion_date) pair is unique; repeated calls
	// update the existing row.
	UpsertRoutineCompletion(ctx context.Context, routineID int64, date string, isDone bool) error

	// CompletionsForDate returns routine-id -> is_done for the user's
	// routines on the given date. Routines without a completion row are
	// absent from the map.
	CompletionsForDate(ctx context.Context, userID, date string) (map[int64]bool, error)

	// AddReflection inserts a reflection and returns its id.
	AddReflection(ctx context.Context, r *domain.Reflection) (int64, error)

	// ListReflections lists a user's reflections, newest first, optionally
	// filtered by kind. limit <= 0 means no limit.
	ListReflections(ctx context.Context, userID, kind string, limit int) ([]*domain.Reflection, error)

	// HasReflectionInRange reports whether the user already has a reflection
	// of the given kind dated within the inclusive range.
	HasReflectionInRange(ctx context.Context, userID, kind, start, end string) (bool, error)

	// CountReflectionDays counts distinct dates with at least one reflection
	// in the inclusive range.
	CountReflectionDays(ctx context.Context, userID, start, end string) (int, error)

	// AddNotification inserts a notification and returns its id.
	AddNotification(ctx context.Context, n *domain.Notification) (int64, error)

	// DueEndNotifications returns active end-of-day notifications whose
	// fire_time matches the wall-clock minute and whose schedule falls on the
	// given date.
	DueEndNotifications(ctx context.Context, date, fireTime string) ([]*domain.Notification, error)

	// DeactivateNotification flips is_active to false so the row never fires
	// again.
	DeactivateNotification(ctx context.Context, id int64) error

	// DeleteScheduleNotifications removes notifications tied to a schedule.
	DeleteScheduleNotifications(ctx context.Context, scheduleID int64) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
