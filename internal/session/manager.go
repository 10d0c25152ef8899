// Package session owns the per-user conversational state machine that drives
// multi-field data entry over a sequence of asynchronous messages.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/harubot/haru/internal/flow"
)

// failureReply is what the user sees for any system failure during a flow.
// Collected fields are discarded; the only way forward is starting over.
const failureReply = "Something went wrong while saving. Nothing was stored — please start the task over."

// Manager holds at most one active flow session per user and advances it on
// each incoming message. Messages for the same user are serialized through a
// per-user lock; different users proceed in parallel.
type Manager struct {
	mu    sync.Mutex
	slots map[string]*slot

	flows map[string]*flow.Flow
	deps  flow.Deps
	ttl   time.Duration
}

type slot struct {
	mu      sync.Mutex
	current *flow.Session
}

// NewManager creates a manager over the full flow registry. Sessions idle
// longer than ttl are evicted by the TTL worker.
func NewManager(deps flow.Deps, ttl time.Duration) *Manager {
	return &Manager{
		slots: make(map[string]*slot),
		flows: flow.Registry(),
		deps:  deps,
		ttl:   ttl,
	}
}

func (m *Manager) slot(userID string) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	sl, ok := m.slots[userID]
	if !ok {
		sl = &slot{}
		m.slots[userID] = sl
	}
	return sl
}

// HasFlow reports whether the command names a flow-entry point.
func (m *Manager) HasFlow(flowID string) bool {
	_, ok := m.flows[flowID]
	return ok
}

// Active returns the user's current flow and step, if any.
func (m *Manager) Active(userID string) (flowID string, step int, ok bool) {
	sl := m.slot(userID)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.current == nil {
		return "", 0, false
	}
	return sl.current.FlowID, sl.current.Step, true
}

// Start enters a flow for the user, replacing any session already in
// progress (no stacking). The reply is either the first step's prompt, a
// precondition message, or a failure message.
func (m *Manager) Start(ctx context.Context, userID, flowID string) string {
	f, ok := m.flows[flowID]
	if !ok {
		return "I don't know that command. Send help to see what I can do."
	}

	sl := m.slot(userID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	s := flow.NewSession(userID, flowID, m.deps.Now())
	if f.Begin != nil {
		if err := f.Begin(ctx, m.deps, s); err != nil {
			var pre *flow.PreconditionError
			if errors.As(err, &pre) {
				return pre.Message
			}
			slog.Error("Flow entry failed", "flow", flowID, "user_id", userID, "error", err)
			return failureReply
		}
	}

	s.Step = f.NextStep(s, 0)
	sl.current = s
	return f.Steps[s.Step].Prompt(s)
}

// Cancel discards the user's session unconditionally, from any state.
func (m *Manager) Cancel(userID string) string {
	sl := m.slot(userID)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.current == nil {
		return "Nothing to cancel."
	}
	slog.Info("Session cancelled", "user_id", userID, "flow", sl.current.FlowID)
	sl.current = nil
	return "Okay, cancelled."
}

// HandleInput advances the user's active flow with a step reply. It returns
// (reply, true) when a flow consumed the message, or ("", false) when the
// user has no session and the message should go to the command handler.
func (m *Manager) HandleInput(ctx context.Context, userID, raw string) (string, bool) {
	sl := m.slot(userID)
	sl.mu.Lock()

	s := sl.current
	if s == nil {
		sl.mu.Unlock()
		return "", false
	}
	f := m.flows[s.FlowID]
	step := f.Steps[s.Step]
	s.LastActivity = m.deps.Now()

	value, err := step.Validate(s, raw)
	if err != nil {
		// Invalid input never advances the step.
		reply := err.Error() + "\n" + step.Prompt(s)
		sl.mu.Unlock()
		return reply, true
	}
	s.Fields[step.Key] = value

	if next := f.NextStep(s, s.Step+1); next < len(f.Steps) {
		s.Step = next
		reply := f.Steps[next].Prompt(s)
		sl.mu.Unlock()
		return reply, true
	}

	// Terminal step. The session is discarded before the terminal action's
	// I/O runs, so a concurrent cancel already observes no session ("last
	// message wins").
	sl.current = nil
	sl.mu.Unlock()

	msg, err := f.Finish(ctx, m.deps, s)
	if err != nil {
		slog.Error("Flow terminal action failed", "flow", s.FlowID, "user_id", userID, "error", err)
		return failureReply, true
	}
	return msg, true
}

const ttlSweepInterval = time.Minute

// StartTTLWorker runs a background goroutine that periodically evicts
// sessions idle longer than the manager's TTL. The source system never
// expired stale sessions; this worker keeps the session map bounded.
func (m *Manager) StartTTLWorker(ctx context.Context) {
	ticker := time.NewTicker(ttlSweepInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session TTL worker started", "interval", ttlSweepInterval, "ttl", m.ttl)

		for {
			select {
			case <-ticker.C:
				m.EvictIdle()
			case <-ctx.Done():
				slog.Info("Session TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// EvictIdle discards every session whose last activity is older than the
// TTL. The eviction is silent; the user's next message starts from no
// session.
func (m *Manager) EvictIdle() {
	cutoff := m.deps.Now().Add(-m.ttl)

	m.mu.Lock()
	slots := make(map[string]*slot, len(m.slots))
	for id, sl := range m.slots {
		slots[id] = sl
	}
	m.mu.Unlock()

	for userID, sl := range slots {
		sl.mu.Lock()
		if sl.current != nil && sl.current.LastActivity.Before(cutoff) {
			slog.Info("Evicting idle session", "user_id", userID, "flow", sl.current.FlowID)
			sl.current = nil
		}
		sl.mu.Unlock()
	}
}
