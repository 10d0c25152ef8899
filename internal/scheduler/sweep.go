package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/harubot/haru/internal/domain"
	"github.com/harubot/haru/internal/shared"
)

// StartSweepWorker runs a goroutine that scans due notifications on a fixed
// short interval and fires each at most once.
func (sc *Scheduler) StartSweepWorker(ctx context.Context) {
	ticker := time.NewTicker(sc.sweepInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Notification sweep worker started", "interval", sc.sweepInterval)

		for {
			select {
			case <-ticker.C:
				sc.RunSweep(ctx)
			case <-ctx.Done():
				slog.Info("Notification sweep worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// RunSweep fires every active end-of-schedule notification whose fire time
// matches the current wall-clock minute and whose schedule is dated today.
// A row is deactivated before its message is sent: a crash in between loses
// one delivery, which is preferred over a double send. A transport failure
// is logged and not retried.
func (sc *Scheduler) RunSweep(ctx context.Context) {
	now := sc.now()
	today := now.Format(domain.DateLayout)
	minute := now.Format(domain.TimeLayout)

	due, err := sc.repo.DueEndNotifications(ctx, today, minute)
	if err != nil {
		slog.Error("Notification sweep query failed", "error", err)
		return
	}

	for _, n := range due {
		err := shared.RetryOnConflict(ctx, 3, func() error {
			return sc.repo.DeactivateNotification(ctx, n.ID)
		})
		if err != nil {
			slog.Error("Could not deactivate notification, skipping send", "notification_id", n.ID, "error", err)
			continue
		}
		if err := sc.transport.Send(n.UserID, n.Message); err != nil {
			slog.Warn("Notification delivery failed", "notification_id", n.ID, "user_id", n.UserID, "error", err)
		}
	}
}
