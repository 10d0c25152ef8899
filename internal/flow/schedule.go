package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/harubot/haru/internal/ai"
	"github.com/harubot/haru/internal/domain"
	"github.com/harubot/haru/internal/validate"
)

// Flow-entry command identifiers.
const (
	AddSchedule       = "add_schedule"
	EditSchedule      = "edit_schedule"
	DeleteSchedule    = "delete_schedule"
	CompleteSchedule  = "complete_schedule"
	AddRoutine        = "add_routine"
	CompleteRoutine   = "complete_routine"
	DailyReflection   = "daily_reflection"
	WeeklyReflection  = "weekly_reflection"
	MonthlyReflection = "monthly_reflection"
)

// selectionLimit caps how many rows a selection list shows.
const selectionLimit = 10

func scheduleList(items []*domain.Schedule) string {
	var b strings.Builder
	for i, s := range items {
		fmt.Fprintf(&b, "%d. %s %s", i+1, s.Date, s.Label())
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func pickedSchedule(s *Session, key string) *domain.Schedule {
	idx, _ := strconv.Atoi(s.Fields[key])
	return s.Schedules[idx-1]
}

func addScheduleFlow() *Flow {
	return &Flow{
		ID: AddSchedule,
		Steps: []Step{
			{
				Key:      "title",
				Prompt:   prompt("What's the title of your schedule?"),
				Validate: field(validate.FreeText),
			},
			{
				Key:      "description",
				Prompt:   prompt("Add a description (optional, send an empty message to skip):"),
				Validate: field(validate.FreeText),
			},
			{
				Key:      "date",
				Prompt:   prompt("What date? (YYYY-MM-DD)"),
				Validate: field(validate.Date),
			},
			{
				Key:      "time",
				Prompt:   prompt("What time? (HH:MM, optional — send an empty message to skip)"),
				Validate: field(validate.Time),
			},
		},
		Finish: func(ctx context.Context, d Deps, s *Session) (string, error) {
			sch := &domain.Schedule{
				UserID:      s.UserID,
				Title:       s.Fields["title"],
				Description: s.Fields["description"],
				Date:        s.Fields["date"],
				Time:        s.Fields["time"],
			}
			if _, err := d.Repo.AddSchedule(ctx, sch); err != nil {
				return "", fmt.Errorf("add schedule: %w", err)
			}

			// A timed schedule gets an end-of-day reminder the sweep will
			// fire at its minute. Reminder creation is best-effort; the
			// schedule itself is already committed.
			if sch.HasTime() {
				n := &domain.Notification{
					UserID:     s.UserID,
					ScheduleID: sch.ID,
					Kind:       domain.NotificationEnd,
					FireTime:   sch.Time,
					Message:    fmt.Sprintf("Reminder: %s", sch.Title),
				}
				if _, err := d.Repo.AddNotification(ctx, n); err != nil {
					return fmt.Sprintf("Schedule added: %s on %s. (Reminder could not be set.)", sch.Title, sch.Date), nil
				}
			}
			return fmt.Sprintf("Schedule added: %s on %s.", sch.Title, sch.Date), nil
		},
	}
}

func editScheduleFlow() *Flow {
	editableFields := []string{"title", "description", "date", "time"}

	return &Flow{
		ID: EditSchedule,
		Begin: func(ctx context.Context, d Deps, s *Session) error {
			items, err := d.Repo.ListSchedules(ctx, s.UserID, "")
			if err != nil {
				return fmt.Errorf("list schedules: %w", err)
			}
			if len(items) == 0 {
				return &PreconditionError{Message: "You have no schedules to edit."}
			}
			if len(items) > selectionLimit {
				items = items[:selectionLimit]
			}
			s.Schedules = items
			return nil
		},
		Steps: []Step{
			{
				Key: "pick",
				Prompt: func(s *Session) string {
					return "Which schedule do you want to edit? Reply with its number:\n" + scheduleList(s.Schedules)
				},
				Validate: func(s *Session, raw string) (string, error) {
					return validate.Index(len(s.Schedules))(raw)
				},
			},
			{
				Key:      "field",
				Prompt:   prompt("Which field do you want to change? (title, description, date, time)"),
				Validate: field(validate.Choice(editableFields...)),
			},
			{
				Key: "value",
				Prompt: func(s *Session) string {
					switch s.Fields["field"] {
					case "date":
						return "New date? (YYYY-MM-DD)"
					case "time":
						return "New time? (HH:MM, empty to clear)"
					default:
						return fmt.Sprintf("New %s?", s.Fields["field"])
					}
				},
				Validate: func(s *Session, raw string) (string, error) {
					switch s.Fields["field"] {
					case "date":
						return validate.Date(raw)
					case "time":
						return validate.Time(raw)
					default:
						return validate.FreeText(raw)
					}
				},
			},
		},
		Finish: func(ctx context.Context, d Deps, s *Session) (string, error) {
			sch := pickedSchedule(s, "pick")
			value := s.Fields["value"]
			switch s.Fields["field"] {
			case "title":
				sch.Title = value
			case "description":
				sch.Description = value
			case "date":
				sch.Date = value
			case "time":
				sch.Time = value
			}
			if err := d.Repo.UpdateSchedule(ctx, sch); err != nil {
				return "", fmt.Errorf("update schedule: %w", err)
			}

			// The reminder must track the edited row: a stale one would fire
			// at the old minute with the old title. Drop and recreate.
			if err := d.Repo.DeleteScheduleNotifications(ctx, sch.ID); err != nil {
				return "", fmt.Errorf("delete schedule notifications: %w", err)
			}
			if sch.HasTime() {
				n := &domain.Notification{
					UserID:     s.UserID,
					ScheduleID: sch.ID,
					Kind:       domain.NotificationEnd,
					FireTime:   sch.Time,
					Message:    fmt.Sprintf("Reminder: %s", sch.Title),
				}
				if _, err := d.Repo.AddNotification(ctx, n); err != nil {
					return fmt.Sprintf("Updated %s of %q. (Reminder could not be reset.)", s.Fields["field"], sch.Title), nil
				}
			}
			return fmt.Sprintf("Updated %s of %q.", s.Fields["field"], sch.Title), nil
		},
	}
}

func deleteScheduleFlow() *Flow {
	return &Flow{
		ID: DeleteSchedule,
		Begin: func(ctx context.Context, d Deps, s *Session) error {
			items, err := d.Repo.ListSchedules(ctx, s.UserID, "")
			if err != nil {
				return fmt.Errorf("list schedules: %w", err)
			}
			if len(items) == 0 {
				return &PreconditionError{Message: "You have no schedules to delete."}
			}
			if len(items) > selectionLimit {
				items = items[:selectionLimit]
			}
			s.Schedules = items
			return nil
		},
		Steps: []Step{
			{
				Key: "pick",
				Prompt: func(s *Session) string {
					return "Which schedule do you want to delete? Reply with its number:\n" + scheduleList(s.Schedules)
				},
				Validate: func(s *Session, raw string) (string, error) {
					return validate.Index(len(s.Schedules))(raw)
				},
			},
			{
				Key: "confirm",
				Prompt: func(s *Session) string {
					return fmt.Sprintf("Delete %q? (yes/no)", pickedSchedule(s, "pick").Title)
				},
				Validate: field(validate.Choice("yes", "no")),
			},
		},
		Finish: func(ctx context.Context, d Deps, s *Session) (string, error) {
			sch := pickedSchedule(s, "pick")
			if s.Fields["confirm"] == "no" {
				return "Okay, nothing was deleted.", nil
			}
			if err := d.Repo.DeleteSchedule(ctx, sch.ID, s.UserID); err != nil {
				return "", fmt.Errorf("delete schedule: %w", err)
			}
			// Orphaned reminders must never fire.
			if err := d.Repo.DeleteScheduleNotifications(ctx, sch.ID); err != nil {
				return "", fmt.Errorf("delete schedule notifications: %w", err)
			}
			return fmt.Sprintf("Deleted %q.", sch.Title), nil
		},
	}
}

func completeScheduleFlow() *Flow {
	return &Flow{
		ID: CompleteSchedule,
		Begin: func(ctx context.Context, d Deps, s *Session) error {
			items, err := d.Repo.ListUndoneSchedules(ctx, s.UserID, d.Today())
			if err != nil {
				return fmt.Errorf("list undone schedules: %w", err)
			}
			if len(items) == 0 {
				return &PreconditionError{Message: "Nothing left to complete today. Well done!"}
			}
			if len(items) > selectionLimit {
				items = items[:selectionLimit]
			}
			s.Schedules = items
			return nil
		},
		Steps: []Step{
			{
				Key: "pick",
				Prompt: func(s *Session) string {
					return "Which schedule did you complete? Reply with its number:\n" + scheduleList(s.Schedules)
				},
				Validate: func(s *Session, raw string) (string, error) {
					return validate.Index(len(s.Schedules))(raw)
				},
			},
		},
		Finish: func(ctx context.Context, d Deps, s *Session) (string, error) {
			sch := pickedSchedule(s, "pick")
			if err := d.Repo.MarkScheduleDone(ctx, sch.ID, s.UserID); err != nil {
				return "", fmt.Errorf("mark schedule done: %w", err)
			}

			cheer := ai.Fallback(ai.KindCompletionCheer)
			if res := d.Gen.Generate(ctx, ai.KindCompletionCheer, sch.Title); res.OK() {
				cheer = res.Text
			}
			return fmt.Sprintf("Marked %q as done. %s", sch.Title, cheer), nil
		},
	}
}
