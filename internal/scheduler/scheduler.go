// Package scheduler runs the two timer-driven workers: the daily digest and
// the short-interval notification sweep. Both produce outbound messages only;
// they never consume user input.
package scheduler

import (
	"time"

	"github.com/harubot/haru/internal/ai"
	"github.com/harubot/haru/internal/store"
)

// Transport delivers an outbound text message to a user. A send failure is
// logged by the caller and never retried.
type Transport interface {
	Send(userID, text string) error
}

// Scheduler owns the digest and sweep workers.
type Scheduler struct {
	repo      store.Repository
	gen       ai.Generator
	transport Transport
	now       func() time.Time

	digestHour    int
	sweepInterval time.Duration
}

// New creates a scheduler. digestHour is the local wall-clock hour (0..23)
// the daily digest fires at; sweepInterval is the notification scan period.
func New(repo store.Repository, gen ai.Generator, transport Transport, digestHour int, sweepInterval time.Duration) *Scheduler {
	return &Scheduler{
		repo:          repo,
		gen:           gen,
		transport:     transport,
		now:           time.Now,
		digestHour:    digestHour,
		sweepInterval: sweepInterval,
	}
}
