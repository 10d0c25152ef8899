// Package bot routes inbound chat messages. A message either enters or
// advances a flow through the session manager, or hits one of the read-only
// commands handled here.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harubot/haru/internal/ai"
	"github.com/harubot/haru/internal/domain"
	"github.com/harubot/haru/internal/flow"
	"github.com/harubot/haru/internal/session"
)

// Router dispatches one inbound message to a reply.
type Router struct {
	sessions *session.Manager
	deps     flow.Deps
}

// NewRouter creates a router over the session manager and its dependencies.
func NewRouter(sessions *session.Manager, deps flow.Deps) *Router {
	return &Router{sessions: sessions, deps: deps}
}

// Handle processes one inbound message and returns the reply text. An active
// flow always consumes the message first; otherwise the message is parsed as
// a command. The leading slash of chat-style commands is optional.
func (r *Router) Handle(ctx context.Context, userID, text string) string {
	text = strings.TrimSpace(text)
	cmd := strings.ToLower(strings.TrimPrefix(text, "/"))

	// Cancel and flow-entry commands take effect even mid-flow: cancel from
	// any state, and starting a new flow replaces the current one.
	if cmd == "cancel" {
		return r.sessions.Cancel(userID)
	}
	if r.sessions.HasFlow(cmd) {
		return r.sessions.Start(ctx, userID, cmd)
	}
	if reply, active := r.sessions.HandleInput(ctx, userID, text); active {
		return reply
	}

	switch cmd {
	case "start":
		return "Hi! I'm Haru, your daily planner. Send help to see what I can do."
	case "help":
		return helpText
	case "view_schedule":
		return r.viewSchedule(ctx, userID)
	case "view_routines":
		return r.viewRoutines(ctx, userID)
	case "today_routines":
		return r.todayRoutines(ctx, userID)
	case "view_reflections":
		return r.viewReflections(ctx, userID)
	case "stats":
		return r.stats(ctx, userID)
	case "summary":
		return r.summary(ctx, userID)
	case "motivate":
		return r.motivate(ctx, userID)
	case "feedback":
		return r.feedback(ctx, userID)
	default:
		return "I didn't understand that. Send help for the list of commands."
	}
}

const helpText = `Here's what I can do:
add_schedule / edit_schedule / delete_schedule / complete_schedule
add_routine / complete_routine
daily_reflection / weekly_reflection / monthly_reflection
view_schedule, view_routines, today_routines, view_reflections
stats, summary, motivate, feedback
cancel stops whatever we're in the middle of.`

const systemErrorReply = "Sorry, something went wrong on my end. Please try again."

func (r *Router) viewSchedule(ctx context.Context, userID string) string {
	today := r.deps.Today()
	schedules, err := r.deps.Repo.ListSchedules(ctx, userID, today)
	if err != nil {
		slog.Error("Could not list schedules", "user_id", userID, "error", err)
		return systemErrorReply
	}
	if len(schedules) == 0 {
		return "No schedules for today."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Today (%s):\n", today)
	for i, s := range schedules {
		mark := " "
		if s.IsDone {
			mark = "x"
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, mark, s.Label())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) viewRoutines(ctx context.Context, userID string) string {
	routines, err := r.deps.Repo.ListRoutines(ctx, userID, true)
	if err != nil {
		slog.Error("Could not list routines", "user_id", userID, "error", err)
		return systemErrorReply
	}
	if len(routines) == 0 {
		return "You have no active routines. Send add_routine to create one."
	}
	var b strings.Builder
	b.WriteString("Your routines:\n")
	for i, rt := range routines {
		fmt.Fprintf(&b, "%d. %s (%s", i+1, rt.Title, rt.Frequency)
		if rt.Frequency == domain.FrequencyWeekly {
			fmt.Fprintf(&b, ", days %s", domain.FormatDaysOfWeek(rt.DaysOfWeek))
		}
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// todayRoutines lists routines due today with their completion marks. Due-ness
// comes from the recurrence rule; completion is a separate lookup.
func (r *Router) todayRoutines(ctx context.Context, userID string) string {
	now := r.deps.Now()
	routines, err := r.deps.Repo.ListRoutines(ctx, userID, true)
	if err != nil {
		slog.Error("Could not list routines", "user_id", userID, "error", err)
		return systemErrorReply
	}
	done, err := r.deps.Repo.CompletionsForDate(ctx, userID, now.Format(domain.DateLayout))
	if err != nil {
		slog.Error("Could not load routine completions", "user_id", userID, "error", err)
		return systemErrorReply
	}

	due := domain.DueRoutines(routines, now)
	if len(due) == 0 {
		return "No routines due today."
	}
	var b strings.Builder
	for i, rt := range due {
		mark := " "
		if done[rt.ID] {
			mark = "x"
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, mark, rt.Title)
	}
	return "Routines due today:\n" + strings.TrimRight(b.String(), "\n")
}

func (r *Router) viewReflections(ctx context.Context, userID string) string {
	reflections, err := r.deps.Repo.ListReflections(ctx, userID, "", 10)
	if err != nil {
		slog.Error("Could not list reflections", "user_id", userID, "error", err)
		return systemErrorReply
	}
	if len(reflections) == 0 {
		return "No reflections yet. Send daily_reflection to write one."
	}
	var b strings.Builder
	b.WriteString("Recent reflections:\n")
	for _, ref := range reflections {
		fmt.Fprintf(&b, "- %s %s: %s\n", ref.Date, ref.Kind, truncate(ref.Content, 60))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) stats(ctx context.Context, userID string) string {
	now := r.deps.Now()
	weekStart, weekEnd := domain.WeekRange(now)
	monthStart, monthEnd := domain.MonthRange(now)

	wDone, wOpen, err := r.deps.Repo.ScheduleStats(ctx, userID, weekStart, weekEnd)
	if err != nil {
		slog.Error("Could not compute weekly stats", "user_id", userID, "error", err)
		return systemErrorReply
	}
	mDone, mOpen, err := r.deps.Repo.ScheduleStats(ctx, userID, monthStart, monthEnd)
	if err != nil {
		slog.Error("Could not compute monthly stats", "user_id", userID, "error", err)
		return systemErrorReply
	}
	days, err := r.deps.Repo.CountReflectionDays(ctx, userID, monthStart, monthEnd)
	if err != nil {
		slog.Error("Could not count reflection days", "user_id", userID, "error", err)
		return systemErrorReply
	}

	return fmt.Sprintf(
		"This week: %d done, %d open.\nThis month: %d done, %d open.\nReflection days this month: %d.",
		wDone, wOpen, mDone, mOpen, days)
}

// summary runs the user's schedule history for the current month through the
// analysis generator. Each line carries the date and done mark so the model
// can talk about completion rate and time-of-day patterns.
func (r *Router) summary(ctx context.Context, userID string) string {
	start, end := domain.MonthRange(r.deps.Now())
	schedules, err := r.deps.Repo.ListSchedules(ctx, userID, "")
	if err != nil {
		slog.Error("Could not list schedule history", "user_id", userID, "error", err)
		return systemErrorReply
	}

	var b strings.Builder
	for _, s := range schedules {
		if s.Date < start || s.Date > end {
			continue
		}
		mark := " "
		if s.IsDone {
			mark = "x"
		}
		fmt.Fprintf(&b, "%s [%s] %s\n", s.Date, mark, s.Label())
	}
	if b.Len() == 0 {
		return "No schedule history this month yet. Send add_schedule to start one."
	}
	if res := r.deps.Gen.Generate(ctx, ai.KindScheduleSummary, b.String()); res.OK() {
		return res.Text
	}
	return ai.Fallback(ai.KindScheduleSummary)
}

func (r *Router) motivate(ctx context.Context, userID string) string {
	if res := r.deps.Gen.Generate(ctx, ai.KindMotivation, "a short encouragement for today"); res.OK() {
		return res.Text
	}
	slog.Debug("Motivation generator unavailable, using fallback", "user_id", userID)
	return ai.Fallback(ai.KindMotivation)
}

// feedback generates AI feedback on the user's most recent reflection.
func (r *Router) feedback(ctx context.Context, userID string) string {
	reflections, err := r.deps.Repo.ListReflections(ctx, userID, "", 1)
	if err != nil {
		slog.Error("Could not load latest reflection", "user_id", userID, "error", err)
		return systemErrorReply
	}
	if len(reflections) == 0 {
		return "Nothing to review yet. Write a reflection first."
	}
	if res := r.deps.Gen.Generate(ctx, ai.KindReflectionFeedback, reflections[0].Content); res.OK() {
		return res.Text
	}
	return ai.Fallback(ai.KindReflectionFeedback)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
