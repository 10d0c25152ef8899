package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harubot/haru/internal/ai"
	"github.com/harubot/haru/internal/domain"
)

// digestFanOutLimit bounds how many recipients are greeted concurrently.
const digestFanOutLimit = 8

// StartDigestWorker runs a goroutine that fires the daily digest once at the
// configured wall-clock hour. The next tick is anchored to the clock, not to
// the previous tick, so a slow broadcast does not drift the schedule.
func (sc *Scheduler) StartDigestWorker(ctx context.Context) {
	go func() {
		slog.Info("Digest worker started", "hour", sc.digestHour)
		for {
			timer := time.NewTimer(sc.untilNextDigest())
			select {
			case <-timer.C:
				sc.RunDigest(ctx)
			case <-ctx.Done():
				timer.Stop()
				slog.Info("Digest worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (sc *Scheduler) untilNextDigest() time.Duration {
	now := sc.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), sc.digestHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// RunDigest broadcasts today's schedule digest to every user who owns at
// least one schedule. Recipients are handled independently; one failing
// recipient never blocks the rest.
func (sc *Scheduler) RunDigest(ctx context.Context) {
	today := sc.now().Format(domain.DateLayout)

	owners, err := sc.repo.ListScheduleOwners(ctx)
	if err != nil {
		slog.Error("Digest aborted, could not list recipients", "error", err)
		return
	}
	slog.Info("Digest run starting", "date", today, "recipients", len(owners))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(digestFanOutLimit)
	for _, userID := range owners {
		g.Go(func() error {
			if err := sc.sendDigest(ctx, userID, today); err != nil {
				slog.Warn("Digest delivery failed", "user_id", userID, "error", err)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines never return errors
}

func (sc *Scheduler) sendDigest(ctx context.Context, userID, today string) error {
	schedules, err := sc.repo.ListSchedules(ctx, userID, today)
	if err != nil {
		return fmt.Errorf("list schedules: %w", err)
	}
	return sc.transport.Send(userID, sc.digestMessage(ctx, schedules))
}

// digestMessage picks one of three variants by item count: a rest message
// for an empty day, a personalized greeting for a single item, and an
// enumerated list otherwise.
func (sc *Scheduler) digestMessage(ctx context.Context, schedules []*domain.Schedule) string {
	switch len(schedules) {
	case 0:
		return "Good morning! Nothing on the calendar today. Enjoy the breathing room."
	case 1:
		item := schedules[0]
		if res := sc.gen.Generate(ctx, ai.KindDigestGreeting, item.Label()); res.OK() {
			return res.Text
		}
		return fmt.Sprintf("%s Today's plan: %s.", ai.Fallback(ai.KindDigestGreeting), item.Label())
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "Good morning! You have %d schedules today:\n", len(schedules))
		for i, item := range schedules {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item.Label())
		}
		b.WriteString("Have a great day!")
		return b.String()
	}
}
