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

func routineList(items []*domain.Routine) string {
	var b strings.Builder
	for i, r := range items {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, r.Title, r.Frequency)
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func addRoutineFlow() *Flow {
	return &Flow{
		ID: AddRoutine,
		Steps: []Step{
			{
				Key:      "title",
				Prompt:   prompt("What's the title of your routine?"),
				Validate: field(validate.FreeText),
			},
			{
				Key:      "description",
				Prompt:   prompt("Add a description (optional, send an empty message to skip):"),
				Validate: field(validate.FreeText),
			},
			{
				Key:      "frequency",
				Prompt:   prompt("How often? (daily, weekly, monthly)"),
				Validate: field(validate.Choice(domain.FrequencyDaily, domain.FrequencyWeekly, domain.FrequencyMonthly)),
			},
			{
				Key:      "days",
				Prompt:   prompt("Which weekdays? Reply with numbers 1-7 separated by commas (Mon=1 .. Sun=7), e.g. 1,3,5"),
				Validate: field(validate.DaysOfWeek),
				Skip: func(s *Session) bool {
					return s.Fields["frequency"] != domain.FrequencyWeekly
				},
			},
			{
				Key:      "start_date",
				Prompt:   prompt("Start date? (YYYY-MM-DD)"),
				Validate: field(validate.Date),
			},
			{
				Key:      "end_date",
				Prompt:   prompt("End date? (YYYY-MM-DD, optional — send an empty message for no end)"),
				Validate: field(validate.OptionalDate),
			},
			{
				Key:      "time",
				Prompt:   prompt("What time of day? (HH:MM, optional — send an empty message to skip)"),
				Validate: field(validate.Time),
			},
		},
		Finish: func(ctx context.Context, d Deps, s *Session) (string, error) {
			days, err := domain.ParseDaysOfWeek(s.Fields["days"])
			if err != nil {
				return "", fmt.Errorf("parse days of week: %w", err)
			}
			r := &domain.Routine{
				UserID:      s.UserID,
				Title:       s.Fields["title"],
				Description: s.Fields["description"],
				Frequency:   s.Fields["frequency"],
				DaysOfWeek:  days,
				StartDate:   s.Fields["start_date"],
				EndDate:     s.Fields["end_date"],
				Time:        s.Fields["time"],
				IsActive:    true,
			}
			if _, err := d.Repo.AddRoutine(ctx, r); err != nil {
				return "", fmt.Errorf("add routine: %w", err)
			}
			return fmt.Sprintf("Routine added: %s (%s).", r.Title, r.Frequency), nil
		},
	}
}

func completeRoutineFlow() *Flow {
	return &Flow{
		ID: CompleteRoutine,
		Begin: func(ctx context.Context, d Deps, s *Session) error {
			routines, err := d.Repo.ListRoutines(ctx, s.UserID, true)
			if err != nil {
				return fmt.Errorf("list routines: %w", err)
			}
			done, err := d.Repo.CompletionsForDate(ctx, s.UserID, d.Today())
			if err != nil {
				return fmt.Errorf("completions for date: %w", err)
			}

			var due []*domain.Routine
			for _, r := range domain.DueRoutines(routines, d.Now()) {
				if !done[r.ID] {
					due = append(due, r)
				}
			}
			if len(due) == 0 {
				return &PreconditionError{Message: "No routines left for today. Well done!"}
			}
			if len(due) > selectionLimit {
				due = due[:selectionLimit]
			}
			s.Routines = due
			return nil
		},
		Steps: []Step{
			{
				Key: "pick",
				Prompt: func(s *Session) string {
					return "Which routine did you complete? Reply with its number:\n" + routineList(s.Routines)
				},
				Validate: func(s *Session, raw string) (string, error) {
					return validate.Index(len(s.Routines))(raw)
				},
			},
		},
		Finish: func(ctx context.Context, d Deps, s *Session) (string, error) {
			idx, _ := strconv.Atoi(s.Fields["pick"])
			r := s.Routines[idx-1]
			if err := d.Repo.UpsertRoutineCompletion(ctx, r.ID, d.Today(), true); err != nil {
				return "", fmt.Errorf("record routine completion: %w", err)
			}

			cheer := ai.Fallback(ai.KindCompletionCheer)
			if res := d.Gen.Generate(ctx, ai.KindCompletionCheer, r.Title); res.OK() {
				cheer = res.Text
			}
			return fmt.Sprintf("Routine %q checked off for today. %s", r.Title, cheer), nil
		},
	}
}
