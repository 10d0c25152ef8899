package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/harubot/haru/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return repo
}

func TestScheduleRoundtrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	sch := &domain.Schedule{
		UserID:      "u1",
		Title:       "Dentist",
		Description: "",
		Date:        "2024-07-01",
		Time:        "09:30",
	}
	id, err := repo.AddSchedule(ctx, sch)
	if err != nil {
		t.Fatalf("AddSchedule: %v", err)
	}
	if id == 0 || sch.ID != id {
		t.Fatalf("AddSchedule should assign the id, got id=%d sch.ID=%d", id, sch.ID)
	}

	got, err := repo.GetSchedule(ctx, id, "u1")
	if err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if got.Title != "Dentist" || got.Date != "2024-07-01" || got.Time != "09:30" || got.Description != "" {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if got.IsDone {
		t.Error("new schedule must not be done")
	}

	// Other users must not see it.
	if _, err := repo.GetSchedule(ctx, id, "u2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSchedule for wrong user = %v, want ErrNotFound", err)
	}

	got.Title = "Dentist (moved)"
	got.Date = "2024-07-02"
	if err := repo.UpdateSchedule(ctx, got); err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	got2, err := repo.GetSchedule(ctx, id, "u1")
	if err != nil {
		t.Fatalf("GetSchedule after update: %v", err)
	}
	if got2.Title != "Dentist (moved)" || got2.Date != "2024-07-02" {
		t.Errorf("update not persisted: %+v", got2)
	}

	if err := repo.DeleteSchedule(ctx, id, "u1"); err != nil {
		t.Fatalf("DeleteSchedule: %v", err)
	}
	if err := repo.DeleteSchedule(ctx, id, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestMarkScheduleDoneIdempotent(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	sch := &domain.Schedule{UserID: "u1", Title: "Laundry", Date: "2024-07-01"}
	id, err := repo.AddSchedule(ctx, sch)
	if err != nil {
		t.Fatalf("AddSchedule: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.MarkScheduleDone(ctx, id, "u1"); err != nil {
			t.Fatalf("MarkScheduleDone #%d: %v", i+1, err)
		}
	}
	got, err := repo.GetSchedule(ctx, id, "u1")
	if err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if !got.IsDone {
		t.Error("schedule should be done")
	}

	undone, err := repo.ListUndoneSchedules(ctx, "u1", "2024-07-01")
	if err != nil {
		t.Fatalf("ListUndoneSchedules: %v", err)
	}
	if len(undone) != 0 {
		t.Errorf("done schedule still listed as undone: %d rows", len(undone))
	}
}

func TestListSchedulesOrderAndOwners(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	add := func(user, title, date, timeOfDay string) {
		t.Helper()
		if _, err := repo.AddSchedule(ctx, &domain.Schedule{UserID: user, Title: title, Date: date, Time: timeOfDay}); err != nil {
			t.Fatalf("AddSchedule %s: %v", title, err)
		}
	}
	add("u1", "Lunch", "2024-07-01", "12:00")
	add("u1", "Standup", "2024-07-01", "09:00")
	add("u1", "Elsewhere", "2024-07-02", "")
	add("u2", "Other user", "2024-07-01", "")

	today, err := repo.ListSchedules(ctx, "u1", "2024-07-01")
	if err != nil {
		t.Fatalf("ListSchedules: %v", err)
	}
	if len(today) != 2 {
		t.Fatalf("got %d schedules, want 2", len(today))
	}
	if today[0].Title != "Standup" || today[1].Title != "Lunch" {
		t.Errorf("schedules not ordered by time: %s, %s", today[0].Title, today[1].Title)
	}

	owners, err := repo.ListScheduleOwners(ctx)
	if err != nil {
		t.Fatalf("ListScheduleOwners: %v", err)
	}
	if len(owners) != 2 {
		t.Errorf("got %d owners, want 2 (u1, u2): %v", len(owners), owners)
	}
}

func TestScheduleStats(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	ids := make([]int64, 0, 3)
	for _, date := range []string{"2024-07-01", "2024-07-02", "2024-07-03"} {
		id, err := repo.AddSchedule(ctx, &domain.Schedule{UserID: "u1", Title: "Task " + date, Date: date})
		if err != nil {
			t.Fatalf("AddSchedule: %v", err)
		}
		ids = append(ids, id)
	}
	if err := repo.MarkScheduleDone(ctx, ids[0], "u1"); err != nil {
		t.Fatalf("MarkScheduleDone: %v", err)
	}

	done, notDone, err := repo.ScheduleStats(ctx, "u1", "2024-07-01", "2024-07-07")
	if err != nil {
		t.Fatalf("ScheduleStats: %v", err)
	}
	if done != 1 || notDone != 2 {
		t.Errorf("stats = %d done, %d open; want 1, 2", done, notDone)
	}

	done, notDone, err = repo.ScheduleStats(ctx, "u1", "2024-08-01", "2024-08-31")
	if err != nil {
		t.Fatalf("ScheduleStats empty range: %v", err)
	}
	if done != 0 || notDone != 0 {
		t.Errorf("empty range stats = %d, %d; want 0, 0", done, notDone)
	}
}

func TestRoutineCompletionUpsert(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	rid, err := repo.AddRoutine(ctx, &domain.Routine{
		UserID:    "u1",
		Title:     "Stretch",
		Frequency: domain.FrequencyDaily,
		StartDate: "2024-01-01",
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("AddRoutine: %v", err)
	}

	// A double submit must not create a second row for the same date.
	for i := 0; i < 2; i++ {
		if err := repo.UpsertRoutineCompletion(ctx, rid, "2024-07-01", true); err != nil {
			t.Fatalf("UpsertRoutineCompletion #%d: %v", i+1, err)
		}
	}
	done, err := repo.CompletionsForDate(ctx, "u1", "2024-07-01")
	if err != nil {
		t.Fatalf("CompletionsForDate: %v", err)
	}
	if len(done) != 1 || !done[rid] {
		t.Errorf("completions = %v, want {%d: true}", done, rid)
	}

	// The upsert can also flip a completion back off.
	if err := repo.UpsertRoutineCompletion(ctx, rid, "2024-07-01", false); err != nil {
		t.Fatalf("UpsertRoutineCompletion undo: %v", err)
	}
	done, err = repo.CompletionsForDate(ctx, "u1", "2024-07-01")
	if err != nil {
		t.Fatalf("CompletionsForDate: %v", err)
	}
	if done[rid] {
		t.Error("completion should be off after upsert with is_done=false")
	}
}

func TestListRoutinesActiveFilter(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.AddRoutine(ctx, &domain.Routine{
		UserID: "u1", Title: "Active", Frequency: domain.FrequencyWeekly,
		DaysOfWeek: []int{1, 3, 5}, StartDate: "2024-01-01", IsActive: true,
	}); err != nil {
		t.Fatalf("AddRoutine: %v", err)
	}
	if _, err := repo.AddRoutine(ctx, &domain.Routine{
		UserID: "u1", Title: "Retired", Frequency: domain.FrequencyDaily,
		StartDate: "2024-01-01", IsActive: false,
	}); err != nil {
		t.Fatalf("AddRoutine: %v", err)
	}

	active, err := repo.ListRoutines(ctx, "u1", true)
	if err != nil {
		t.Fatalf("ListRoutines(active): %v", err)
	}
	if len(active) != 1 || active[0].Title != "Active" {
		t.Fatalf("active routines = %v", active)
	}
	if got := domain.FormatDaysOfWeek(active[0].DaysOfWeek); got != "1,3,5" {
		t.Errorf("days_of_week roundtrip = %q, want 1,3,5", got)
	}

	all, err := repo.ListRoutines(ctx, "u1", false)
	if err != nil {
		t.Fatalf("ListRoutines(all): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all routines = %d rows, want 2", len(all))
	}
}

func TestReflectionsRangeAndCount(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	add := func(kind, date string) {
		t.Helper()
		if _, err := repo.AddReflection(ctx, &domain.Reflection{
			UserID: "u1", Kind: kind, Content: "entry for " + date, Date: date,
		}); err != nil {
			t.Fatalf("AddReflection: %v", err)
		}
	}
	add(domain.ReflectionDaily, "2024-07-01")
	add(domain.ReflectionDaily, "2024-07-02")
	add(domain.ReflectionWeekly, "2024-07-01")

	has, err := repo.HasReflectionInRange(ctx, "u1", domain.ReflectionDaily, "2024-07-01", "2024-07-01")
	if err != nil {
		t.Fatalf("HasReflectionInRange: %v", err)
	}
	if !has {
		t.Error("daily reflection for 2024-07-01 should be found")
	}
	has, err = repo.HasReflectionInRange(ctx, "u1", domain.ReflectionMonthly, "2024-07-01", "2024-07-31")
	if err != nil {
		t.Fatalf("HasReflectionInRange: %v", err)
	}
	if has {
		t.Error("no monthly reflection exists yet")
	}

	// Two kinds on the same day still count as one reflection day.
	days, err := repo.CountReflectionDays(ctx, "u1", "2024-07-01", "2024-07-31")
	if err != nil {
		t.Fatalf("CountReflectionDays: %v", err)
	}
	if days != 2 {
		t.Errorf("reflection days = %d, want 2", days)
	}

	recent, err := repo.ListReflections(ctx, "u1", "", 10)
	if err != nil {
		t.Fatalf("ListReflections: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d reflections, want 3", len(recent))
	}
	if recent[0].Date != "2024-07-02" {
		t.Errorf("reflections should be newest first, got %s", recent[0].Date)
	}
}

func TestDueEndNotifications(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	sch := &domain.Schedule{UserID: "u1", Title: "Dentist", Date: "2024-07-01", Time: "09:30"}
	if _, err := repo.AddSchedule(ctx, sch); err != nil {
		t.Fatalf("AddSchedule: %v", err)
	}
	nid, err := repo.AddNotification(ctx, &domain.Notification{
		UserID:     "u1",
		ScheduleID: sch.ID,
		Kind:       domain.NotificationEnd,
		FireTime:   "09:30",
		Message:    "Reminder: Dentist",
	})
	if err != nil {
		t.Fatalf("AddNotification: %v", err)
	}

	due, err := repo.DueEndNotifications(ctx, "2024-07-01", "09:30")
	if err != nil {
		t.Fatalf("DueEndNotifications: %v", err)
	}
	if len(due) != 1 || due[0].ID != nid || due[0].Message != "Reminder: Dentist" {
		t.Fatalf("due = %+v, want the one reminder", due)
	}

	// Wrong minute or wrong day: not due.
	if due, _ := repo.DueEndNotifications(ctx, "2024-07-01", "09:31"); len(due) != 0 {
		t.Errorf("notification due at the wrong minute: %v", due)
	}
	if due, _ := repo.DueEndNotifications(ctx, "2024-07-02", "09:30"); len(due) != 0 {
		t.Errorf("notification due on the wrong day: %v", due)
	}

	// Once deactivated it never comes back.
	if err := repo.DeactivateNotification(ctx, nid); err != nil {
		t.Fatalf("DeactivateNotification: %v", err)
	}
	if due, _ := repo.DueEndNotifications(ctx, "2024-07-01", "09:30"); len(due) != 0 {
		t.Errorf("deactivated notification still due: %v", due)
	}
	if err := repo.DeactivateNotification(ctx, nid); !errors.Is(err, ErrNotFound) {
		t.Errorf("second deactivate = %v, want ErrNotFound", err)
	}
}

func TestDueEndNotificationsSkipDoneSchedules(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	sch := &domain.Schedule{UserID: "u1", Title: "Dentist", Date: "2024-07-01", Time: "09:30"}
	if _, err := repo.AddSchedule(ctx, sch); err != nil {
		t.Fatalf("AddSchedule: %v", err)
	}
	if _, err := repo.AddNotification(ctx, &domain.Notification{
		UserID: "u1", ScheduleID: sch.ID, Kind: domain.NotificationEnd,
		FireTime: "09:30", Message: "Reminder: Dentist",
	}); err != nil {
		t.Fatalf("AddNotification: %v", err)
	}

	if err := repo.MarkScheduleDone(ctx, sch.ID, "u1"); err != nil {
		t.Fatalf("MarkScheduleDone: %v", err)
	}
	if due, _ := repo.DueEndNotifications(ctx, "2024-07-01", "09:30"); len(due) != 0 {
		t.Errorf("completed schedule still reminds: %v", due)
	}
}

func TestDeleteScheduleNotifications(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	sch := &domain.Schedule{UserID: "u1", Title: "Dentist", Date: "2024-07-01", Time: "09:30"}
	if _, err := repo.AddSchedule(ctx, sch); err != nil {
		t.Fatalf("AddSchedule: %v", err)
	}
	if _, err := repo.AddNotification(ctx, &domain.Notification{
		UserID: "u1", ScheduleID: sch.ID, Kind: domain.NotificationEnd,
		FireTime: "09:30", Message: "Reminder: Dentist",
	}); err != nil {
		t.Fatalf("AddNotification: %v", err)
	}

	if err := repo.DeleteScheduleNotifications(ctx, sch.ID); err != nil {
		t.Fatalf("DeleteScheduleNotifications: %v", err)
	}
	if due, _ := repo.DueEndNotifications(ctx, "2024-07-01", "09:30"); len(due) != 0 {
		t.Errorf("reminder survived schedule deletion: %v", due)
	}
}
