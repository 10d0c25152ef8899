// Package validate provides pure field validators for conversational input.
//
// A validator takes the raw text the user typed and returns either the
// normalized value to store or a human-readable reason that is replayed to
// the user verbatim when the step is re-prompted.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/harubot/haru/internal/domain"
)

// Func validates raw input and returns the normalized value.
type Func func(raw string) (string, error)

// Date accepts a real calendar date in YYYY-MM-DD form.
func Date(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil || t.Format(domain.DateLayout) != s {
		return "", fmt.Errorf("invalid date %q: use YYYY-MM-DD, e.g. 2024-07-01", s)
	}
	return s, nil
}

// OptionalDate accepts a calendar date or an empty string meaning "none".
func OptionalDate(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return Date(raw)
}

// Time accepts a time of day in HH:MM form, or an empty string meaning
// "no time".
func Time(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	t, err := time.Parse(domain.TimeLayout, s)
	if err != nil || t.Format(domain.TimeLayout) != s {
		return "", fmt.Errorf("invalid time %q: use HH:MM, e.g. 09:30", s)
	}
	return s, nil
}

// FreeText accepts any text without control characters, including empty
// input.
func FreeText(raw string) (string, error) {
	for _, r := range raw {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return "", fmt.Errorf("input contains control characters")
		}
	}
	return raw, nil
}

// Choice matches against a fixed option set, case-insensitively. A 1-based
// numeric index into the options is also accepted. The normalized value is
// the canonical option text.
func Choice(options ...string) Func {
	return func(raw string) (string, error) {
		s := strings.TrimSpace(raw)
		if n, err := strconv.Atoi(s); err == nil {
			if n < 1 || n > len(options) {
				return "", fmt.Errorf("pick a number between 1 and %d", len(options))
			}
			return options[n-1], nil
		}
		for _, opt := range options {
			if strings.EqualFold(s, opt) {
				return opt, nil
			}
		}
		return "", fmt.Errorf("pick one of: %s", strings.Join(options, ", "))
	}
}

// DaysOfWeek accepts a non-empty comma-separated list of ISO weekday numbers
// (Monday=1 .. Sunday=7). The normalized value is the sorted canonical list.
func DaysOfWeek(raw string) (string, error) {
	days, err := domain.ParseDaysOfWeek(strings.TrimSpace(raw))
	if err != nil || len(days) == 0 {
		return "", fmt.Errorf("list weekdays as numbers 1-7 separated by commas, e.g. 1,3,5 (Mon=1 .. Sun=7)")
	}
	return domain.FormatDaysOfWeek(days), nil
}

// Index accepts a 1-based index into a list of the given length. The
// normalized value is the index as typed.
func Index(length int) Func {
	return func(raw string) (string, error) {
		s := strings.TrimSpace(raw)
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > length {
			return "", fmt.Errorf("pick a number between 1 and %d", length)
		}
		return strconv.Itoa(n), nil
	}
}
