package flow

import (
	"testing"
	"time"

	"github.com/harubot/haru/internal/domain"
)

func TestNextStepSkipsConditionalSteps(t *testing.T) {
	f := &Flow{
		Steps: []Step{
			{Key: "a"},
			{Key: "b", Skip: func(s *Session) bool { return s.Fields["mode"] != "full" }},
			{Key: "c", Skip: func(s *Session) bool { return s.Fields["mode"] != "full" }},
			{Key: "d"},
		},
	}
	s := NewSession("u1", "test", time.Now())

	if got := f.NextStep(s, 0); got != 0 {
		t.Errorf("NextStep(0) = %d, want 0", got)
	}
	if got := f.NextStep(s, 1); got != 3 {
		t.Errorf("NextStep(1) with skipped steps = %d, want 3", got)
	}

	s.Fields["mode"] = "full"
	if got := f.NextStep(s, 1); got != 1 {
		t.Errorf("NextStep(1) without skips = %d, want 1", got)
	}

	if got := f.NextStep(s, 4); got != 4 {
		t.Errorf("NextStep past the end = %d, want len(Steps)", got)
	}
}

func TestRegistryCoversAllCommands(t *testing.T) {
	flows := Registry()
	for _, id := range []string{
		AddSchedule, EditSchedule, DeleteSchedule, CompleteSchedule,
		AddRoutine, CompleteRoutine,
		DailyReflection, WeeklyReflection, MonthlyReflection,
	} {
		f, ok := flows[id]
		if !ok {
			t.Errorf("missing flow %q", id)
			continue
		}
		if f.ID != id {
			t.Errorf("flow %q registered under key %q", f.ID, id)
		}
		if len(f.Steps) == 0 {
			t.Errorf("flow %q has no steps", id)
		}
		if f.Finish == nil {
			t.Errorf("flow %q has no terminal action", id)
		}
	}
}

func TestPreconditionError(t *testing.T) {
	err := &PreconditionError{Message: "You have no schedules to edit."}
	if err.Error() != "You have no schedules to edit." {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestDepsToday(t *testing.T) {
	d := Deps{Now: func() time.Time {
		return time.Date(2024, 7, 1, 23, 59, 0, 0, time.UTC)
	}}
	if got := d.Today(); got != "2024-07-01" {
		t.Errorf("Today() = %q", got)
	}
	if domain.DateLayout != "2006-01-02" {
		t.Errorf("unexpected date layout %q", domain.DateLayout)
	}
}
