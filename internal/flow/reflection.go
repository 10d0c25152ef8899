package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/harubot/haru/internal/ai"
	"github.com/harubot/haru/internal/domain"
	"github.com/harubot/haru/internal/validate"
)

// reflectionSpec parameterizes the three journaling flows, which share the
// fact/think/action structure with a period-specific final framing step for
// weekly and monthly entries.
type reflectionSpec struct {
	flowID      string
	kind        string
	periodRange func(d Deps) (start, end string)
	periodName  string
	factPrompt  string
	thinkPrompt string
	actPrompt   string
	extraKey    string // empty when the flow has no framing step
	extraPrompt string
}

func reflectionSpecs() []reflectionSpec {
	return []reflectionSpec{
		{
			flowID: DailyReflection,
			kind:   domain.ReflectionDaily,
			periodRange: func(d Deps) (string, string) {
				today := d.Today()
				return today, today
			},
			periodName:  "today",
			factPrompt:  "Fact — what actually happened today?",
			thinkPrompt: "Think — what did you learn or realize?",
			actPrompt:   "Action — what will you do about it tomorrow?",
		},
		{
			flowID: WeeklyReflection,
			kind:   domain.ReflectionWeekly,
			periodRange: func(d Deps) (string, string) {
				return domain.WeekRange(d.Now())
			},
			periodName:  "this week",
			factPrompt:  "Fact — what happened this week?",
			thinkPrompt: "Think — what did this week teach you?",
			actPrompt:   "Action — what will you carry into next week?",
			extraKey:    "goal",
			extraPrompt: "Finally, one concrete goal for next week?",
		},
		{
			flowID: MonthlyReflection,
			kind:   domain.ReflectionMonthly,
			periodRange: func(d Deps) (string, string) {
				return domain.MonthRange(d.Now())
			},
			periodName:  "this month",
			factPrompt:  "Fact — what happened this month?",
			thinkPrompt: "Think — what changed for you this month?",
			actPrompt:   "Action — what will you do differently next month?",
			extraKey:    "focus",
			extraPrompt: "Finally, one focus area for next month?",
		},
	}
}

func reflectionFlow(spec reflectionSpec) *Flow {
	steps := []Step{
		{Key: "fact", Prompt: prompt(spec.factPrompt), Validate: field(validate.FreeText)},
		{Key: "think", Prompt: prompt(spec.thinkPrompt), Validate: field(validate.FreeText)},
		{Key: "action", Prompt: prompt(spec.actPrompt), Validate: field(validate.FreeText)},
	}
	if spec.extraKey != "" {
		steps = append(steps, Step{
			Key:      spec.extraKey,
			Prompt:   prompt(spec.extraPrompt),
			Validate: field(validate.FreeText),
		})
	}

	return &Flow{
		ID: spec.flowID,
		Begin: func(ctx context.Context, d Deps, s *Session) error {
			start, end := spec.periodRange(d)
			exists, err := d.Repo.HasReflectionInRange(ctx, s.UserID, spec.kind, start, end)
			if err != nil {
				return fmt.Errorf("check existing reflection: %w", err)
			}
			if exists {
				return &PreconditionError{
					Message: fmt.Sprintf("You already wrote your %s reflection for %s.", spec.kind, spec.periodName),
				}
			}
			return nil
		},
		Steps: steps,
		Finish: func(ctx context.Context, d Deps, s *Session) (string, error) {
			var b strings.Builder
			fmt.Fprintf(&b, "[Fact]\n%s\n\n[Think]\n%s\n\n[Action]\n%s",
				s.Fields["fact"], s.Fields["think"], s.Fields["action"])
			if spec.extraKey != "" {
				label := strings.ToUpper(spec.extraKey[:1]) + spec.extraKey[1:]
				fmt.Fprintf(&b, "\n\n[%s]\n%s", label, s.Fields[spec.extraKey])
			}

			r := &domain.Reflection{
				UserID:  s.UserID,
				Kind:    spec.kind,
				Content: b.String(),
				Date:    d.Today(),
			}
			if _, err := d.Repo.AddReflection(ctx, r); err != nil {
				return "", fmt.Errorf("add reflection: %w", err)
			}

			feedback := ai.Fallback(ai.KindReflectionFeedback)
			if res := d.Gen.Generate(ctx, ai.KindReflectionFeedback, spec.kind+" reflection:\n"+r.Content); res.OK() {
				feedback = res.Text
			}
			return fmt.Sprintf("Your %s reflection is saved.\n\n%s", spec.kind, feedback), nil
		},
	}
}

// Registry returns every flow keyed by its entry command.
func Registry() map[string]*Flow {
	flows := []*Flow{
		addScheduleFlow(),
		editScheduleFlow(),
		deleteScheduleFlow(),
		completeScheduleFlow(),
		addRoutineFlow(),
		completeRoutineFlow(),
	}
	for _, spec := range reflectionSpecs() {
		flows = append(flows, reflectionFlow(spec))
	}

	out := make(map[string]*Flow, len(flows))
	for _, f := range flows {
		out[f.ID] = f
	}
	return out
}
