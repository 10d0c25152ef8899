// Package flow defines the multi-step conversational entry tasks: each flow
// is a fixed, ordered list of input-collection steps culminating in a
// terminal persistence action.
package flow

import (
	"context"
	"time"

	"github.com/harubot/haru/internal/ai"
	"github.com/harubot/haru/internal/domain"
	"github.com/harubot/haru/internal/store"
)

// Deps carries the collaborators terminal actions may use.
type Deps struct {
	Repo store.Repository
	Gen  ai.Generator
	Now  func() time.Time
}

// Today returns the current calendar date string.
func (d Deps) Today() string {
	return d.Now().Format(domain.DateLayout)
}

// Session is the live, single-user record of a flow in progress: which step
// is current and the fields collected so far. It is ephemeral and owned by
// the session manager.
type Session struct {
	UserID string
	FlowID string
	Step   int
	Fields map[string]string

	// Selection lists captured when the flow started. Index-based steps
	// validate against these snapshots, not a live re-query, since the
	// underlying rows may change mid-flow.
	Schedules []*domain.Schedule
	Routines  []*domain.Routine

	CreatedAt    time.Time
	LastActivity time.Time
}

// NewSession creates a session positioned before the first step.
func NewSession(userID, flowID string, now time.Time) *Session {
	return &Session{
		UserID:       userID,
		FlowID:       flowID,
		Fields:       make(map[string]string),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Step is one prompt/validate/store unit of a flow.
type Step struct {
	// Key is the session field the normalized value is stored under.
	Key string

	// Prompt renders the user-facing question. It may consult the session,
	// e.g. to enumerate a snapshotted selection list or name a chosen field.
	Prompt func(s *Session) string

	// Validate normalizes raw input or returns a human-readable reason that
	// is replayed verbatim before re-prompting the same step.
	Validate func(s *Session, raw string) (string, error)

	// Skip, when set and true, removes the step from the sequence for this
	// session (e.g. days-of-week is only asked for weekly routines).
	Skip func(s *Session) bool
}

// PreconditionError blocks flow entry with a user-facing message; the flow
// never starts and no session is created.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// Flow is a fixed, ordered sequence of steps plus a terminal action.
type Flow struct {
	ID string

	// Begin checks entry preconditions and captures any selection snapshot
	// into the session. A *PreconditionError return is replied to the user
	// and leaves them with no session; any other error is a system failure.
	Begin func(ctx context.Context, d Deps, s *Session) error

	Steps []Step

	// Finish runs the terminal action with the fully collected field map.
	// It returns the user-facing result message. On error the collected
	// fields are discarded and the user must restart the flow.
	Finish func(ctx context.Context, d Deps, s *Session) (string, error)
}

// NextStep returns the index of the first non-skipped step at or after i,
// or len(Steps) when none remain.
func (f *Flow) NextStep(s *Session, i int) int {
	for i < len(f.Steps) {
		if f.Steps[i].Skip == nil || !f.Steps[i].Skip(s) {
			return i
		}
		i++
	}
	return i
}

func prompt(text string) func(*Session) string {
	return func(*Session) string { return text }
}

func field(v func(string) (string, error)) func(*Session, string) (string, error) {
	return func(_ *Session, raw string) (string, error) {
		return v(raw)
	}
}
