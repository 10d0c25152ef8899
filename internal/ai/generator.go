// Package ai provides the feedback/guidance generator backed by an
// OpenAI-compatible chat model. Callers must tolerate the generator being
// unavailable; every call returns an explicit outcome instead of an error
// that could abort a flow.
package ai

import (
	"context"
)

// Status classifies a generation outcome.
type Status int

const (
	// StatusOK means Text holds a usable generated message.
	StatusOK Status = iota
	// StatusUnavailable means no generator is configured.
	StatusUnavailable
	// StatusTransient means the call failed and may succeed later.
	StatusTransient
)

// Result is the outcome of a generation call. Text is only meaningful when
// Status is StatusOK.
type Result struct {
	Text   string
	Status Status
}

// OK reports whether the result carries generated text. A zero Result is
// not OK, so callers fall back on it safely.
func (r Result) OK() bool {
	return r.Status == StatusOK && r.Text != ""
}

// Kind selects the prompt template for a generation call.
type Kind int

const (
	// KindReflectionFeedback generates mentor-style feedback on a journal
	// entry. Payload: the reflection content prefixed with its kind.
	KindReflectionFeedback Kind = iota
	// KindCompletionCheer generates a short congratulation for a completed
	// schedule. Payload: the schedule title.
	KindCompletionCheer
	// KindDigestGreeting generates a personalized lead line for a single-item
	// daily digest. Payload: the schedule label.
	KindDigestGreeting
	// KindScheduleSummary analyzes a block of schedule history. Payload: one
	// schedule per line.
	KindScheduleSummary
	// KindMotivation generates a standalone encouragement line. Payload
	// unused.
	KindMotivation
)

// Generator produces user-facing text for a prompt kind.
type Generator interface {
	// Available reports whether generation calls can succeed at all.
	Available() bool

	// Generate runs the prompt for the kind against the payload.
	Generate(ctx context.Context, kind Kind, payload string) Result
}

// Fallback returns the canned message substituted when generation is not
// possible. Flows never fail because the generator is down.
func Fallback(kind Kind) string {
	switch kind {
	case KindReflectionFeedback:
		return "Thanks for writing this down. Showing up for your own reflection, day after day, is what makes the difference."
	case KindCompletionCheer:
		return "Nice work — one more thing off the list!"
	case KindDigestGreeting:
		return "Here's what today looks like."
	case KindScheduleSummary:
		return "Not enough signal for an analysis right now, but your schedule history is being kept."
	case KindMotivation:
		return "Small steps every day add up to big changes."
	}
	return ""
}

// Disabled is a Generator that is never available. Used when no API key is
// configured.
type Disabled struct{}

// Available always reports false.
func (Disabled) Available() bool { return false }

// Generate always returns StatusUnavailable.
func (Disabled) Generate(context.Context, Kind, string) Result {
	return Result{Status: StatusUnavailable}
}
