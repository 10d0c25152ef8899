package validate

import "testing"

func TestDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"2024-07-01", "2024-07-01", false},
		{"2024-02-29", "2024-02-29", false}, // leap year
		{"2023-02-29", "", true},
		{"2024-02-30", "", true},
		{"2024-13-01", "", true},
		{"2024-7-1", "", true},
		{"07/01/2024", "", true},
		{"", "", true},
		{"  2024-07-01  ", "2024-07-01", false},
	}
	for _, tt := range tests {
		got, err := Date(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("Date(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Date(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestOptionalDate(t *testing.T) {
	if got, err := OptionalDate(""); err != nil || got != "" {
		t.Errorf("OptionalDate(\"\") = %q, %v; want empty, nil", got, err)
	}
	if _, err := OptionalDate("2024-02-30"); err == nil {
		t.Error("OptionalDate(\"2024-02-30\") should fail")
	}
}

func TestTime(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"09:30", "09:30", false},
		{"00:00", "00:00", false},
		{"23:59", "23:59", false},
		{"", "", false}, // empty means no time
		{"24:00", "", true},
		{"9:30", "", true},
		{"09:60", "", true},
		{"morning", "", true},
	}
	for _, tt := range tests {
		got, err := Time(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("Time(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Time(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFreeText(t *testing.T) {
	if got, err := FreeText("Dentist at 9, don't forget\nbring the insurance card"); err != nil || got == "" {
		t.Errorf("FreeText with newline should pass, got %q, %v", got, err)
	}
	if got, err := FreeText(""); err != nil || got != "" {
		t.Errorf("FreeText(\"\") = %q, %v; empty input is valid", got, err)
	}
	if _, err := FreeText("bad\x00text"); err == nil {
		t.Error("FreeText should reject NUL bytes")
	}
}

func TestChoice(t *testing.T) {
	v := Choice("title", "description", "date", "time")
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"title", "title", false},
		{"TITLE", "title", false},
		{"  Date ", "date", false},
		{"1", "title", false},
		{"4", "time", false},
		{"5", "", true},
		{"0", "", true},
		{"color", "", true},
	}
	for _, tt := range tests {
		got, err := v(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("Choice(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Choice(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDaysOfWeek(t *testing.T) {
	if got, err := DaysOfWeek("1,3,5"); err != nil || got != "1,3,5" {
		t.Errorf("DaysOfWeek(\"1,3,5\") = %q, %v", got, err)
	}
	if got, err := DaysOfWeek("5, 1, 3"); err != nil || got != "1,3,5" {
		t.Errorf("DaysOfWeek should sort and normalize, got %q, %v", got, err)
	}
	for _, raw := range []string{"", "0", "8", "mon,wed", "1,,3"} {
		if _, err := DaysOfWeek(raw); err == nil {
			t.Errorf("DaysOfWeek(%q) should fail", raw)
		}
	}
}

func TestIndex(t *testing.T) {
	v := Index(3)
	if got, err := v("2"); err != nil || got != "2" {
		t.Errorf("Index(3)(\"2\") = %q, %v", got, err)
	}
	for _, raw := range []string{"0", "4", "-1", "two", ""} {
		if _, err := v(raw); err == nil {
			t.Errorf("Index(3)(%q) should fail", raw)
		}
	}
}
