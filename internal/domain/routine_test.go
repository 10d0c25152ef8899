package domain

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestISOWeekday(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2024-06-03", 1}, // Monday
		{"2024-06-07", 5}, // Friday
		{"2024-06-08", 6}, // Saturday
		{"2024-06-09", 7}, // Sunday
	}
	for _, tt := range tests {
		if got := ISOWeekday(mustDate(t, tt.date)); got != tt.want {
			t.Errorf("ISOWeekday(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestIsDueOnWeekly(t *testing.T) {
	r := &Routine{
		Frequency:  FrequencyWeekly,
		DaysOfWeek: []int{1, 3, 5},
		StartDate:  "2024-06-03", // a Monday
		IsActive:   true,
	}
	tests := []struct {
		date string
		want bool
	}{
		{"2024-06-03", true},  // Mon
		{"2024-06-04", false}, // Tue
		{"2024-06-05", true},  // Wed
		{"2024-06-06", false}, // Thu
		{"2024-06-07", true},  // Fri
		{"2024-06-08", false}, // Sat
		{"2024-06-01", false}, // before start
		{"2024-05-31", false}, // before start, a Friday
	}
	for _, tt := range tests {
		if got := r.IsDueOn(mustDate(t, tt.date)); got != tt.want {
			t.Errorf("weekly IsDueOn(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestIsDueOnDailyOpenEnded(t *testing.T) {
	r := &Routine{
		Frequency: FrequencyDaily,
		StartDate: "2024-01-01",
		IsActive:  true,
	}
	for _, date := range []string{"2024-01-01", "2024-06-15", "2099-12-31"} {
		if !r.IsDueOn(mustDate(t, date)) {
			t.Errorf("daily routine with no end date should be due on %s", date)
		}
	}
	if r.IsDueOn(mustDate(t, "2023-12-31")) {
		t.Error("daily routine should not be due before its start date")
	}
}

func TestIsDueOnEndDate(t *testing.T) {
	r := &Routine{
		Frequency: FrequencyDaily,
		StartDate: "2024-06-01",
		EndDate:   "2024-06-10",
		IsActive:  true,
	}
	if !r.IsDueOn(mustDate(t, "2024-06-10")) {
		t.Error("routine should be due on its end date")
	}
	if r.IsDueOn(mustDate(t, "2024-06-11")) {
		t.Error("routine should not be due after its end date")
	}
}

func TestIsDueOnInactive(t *testing.T) {
	r := &Routine{Frequency: FrequencyDaily, StartDate: "2024-01-01"}
	if r.IsDueOn(mustDate(t, "2024-06-15")) {
		t.Error("inactive routine must never be due")
	}
}

func TestIsDueOnMonthlyClamp(t *testing.T) {
	r := &Routine{
		Frequency: FrequencyMonthly,
		StartDate: "2024-01-31",
		IsActive:  true,
	}
	tests := []struct {
		date string
		want bool
	}{
		{"2024-01-31", true},
		{"2024-02-29", true}, // clamped to leap-February's last day
		{"2024-02-28", false},
		{"2024-03-31", true},
		{"2024-04-30", true}, // clamped
		{"2024-04-29", false},
		{"2025-02-28", true}, // clamped, non-leap year
	}
	for _, tt := range tests {
		if got := r.IsDueOn(mustDate(t, tt.date)); got != tt.want {
			t.Errorf("monthly IsDueOn(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestDueRoutines(t *testing.T) {
	monday := mustDate(t, "2024-07-01")
	routines := []*Routine{
		{Title: "Daily", Frequency: FrequencyDaily, StartDate: "2024-01-01", IsActive: true},
		{Title: "Tuesdays", Frequency: FrequencyWeekly, DaysOfWeek: []int{2}, StartDate: "2024-01-01", IsActive: true},
		{Title: "Paused", Frequency: FrequencyDaily, StartDate: "2024-01-01"},
	}
	due := DueRoutines(routines, monday)
	if len(due) != 1 || due[0].Title != "Daily" {
		t.Errorf("due on Monday = %v, want only the daily routine", due)
	}
}

func TestParseDaysOfWeek(t *testing.T) {
	days, err := ParseDaysOfWeek("5, 1, 3")
	if err != nil {
		t.Fatalf("ParseDaysOfWeek: %v", err)
	}
	want := []int{1, 3, 5}
	if len(days) != len(want) {
		t.Fatalf("got %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("got %v, want %v", days, want)
		}
	}

	if got, err := ParseDaysOfWeek(""); err != nil || got != nil {
		t.Errorf("ParseDaysOfWeek(\"\") = %v, %v; want nil, nil", got, err)
	}
	for _, s := range []string{"0", "8", "a", "1,x"} {
		if _, err := ParseDaysOfWeek(s); err == nil {
			t.Errorf("ParseDaysOfWeek(%q) should fail", s)
		}
	}
}

func TestFormatDaysOfWeek(t *testing.T) {
	if got := FormatDaysOfWeek([]int{1, 3, 5}); got != "1,3,5" {
		t.Errorf("FormatDaysOfWeek = %q, want %q", got, "1,3,5")
	}
	if got := FormatDaysOfWeek(nil); got != "" {
		t.Errorf("FormatDaysOfWeek(nil) = %q, want empty", got)
	}
}
