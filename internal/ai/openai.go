package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultModel = "gpt-4o-mini"

// OpenAIGenerator implements Generator against any OpenAI-compatible chat
// completions API.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAI creates a generator for the given API key. Model falls back to
// gpt-4o-mini when empty, matching the assistant's default.
func NewOpenAI(apiKey, baseURL, model string) *OpenAIGenerator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = defaultModel
	}
	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Available reports true; a configured client may still fail transiently.
func (g *OpenAIGenerator) Available() bool { return true }

type promptSpec struct {
	system      string
	user        string // format string taking the payload once
	maxTokens   int64
	temperature float64
}

func specFor(kind Kind) promptSpec {
	switch kind {
	case KindReflectionFeedback:
		return promptSpec{
			system:      "You are a warm, wise mentor. You read personal reflections and respond with empathetic, practical feedback.",
			user:        "Read this reflection and reply in 2-4 sentences: acknowledge the effort, point out one pattern or insight, and offer one concrete suggestion.\n\nReflection:\n%s",
			maxTokens:   400,
			temperature: 0.7,
		}
	case KindCompletionCheer:
		return promptSpec{
			system:      "You are a warm, encouraging mentor celebrating small wins.",
			user:        "The user just completed this task: %q. Write one short, personal congratulation sentence.",
			maxTokens:   100,
			temperature: 0.8,
		}
	case KindDigestGreeting:
		return promptSpec{
			system:      "You are a friendly personal assistant writing a morning greeting.",
			user:        "The user has exactly one thing planned today: %q. Write one short, upbeat sentence introducing it.",
			maxTokens:   100,
			temperature: 0.8,
		}
	case KindScheduleSummary:
		return promptSpec{
			system:      "You are a scheduling coach. You analyze schedule history and point out patterns, completion rate and one improvement.",
			user:        "Analyze this schedule history in 3-5 sentences:\n%s",
			maxTokens:   500,
			temperature: 0.7,
		}
	default: // KindMotivation
		return promptSpec{
			system:      "You are a warm motivational coach.",
			user:        "Write one short, impactful encouragement for someone working on daily habits. Theme: %s.",
			maxTokens:   120,
			temperature: 0.8,
		}
	}
}

// Generate runs the chat completion for the kind. Failures are reported as
// transient outcomes, never as errors that could abort a caller's flow.
func (g *OpenAIGenerator) Generate(ctx context.Context, kind Kind, payload string) Result {
	spec := specFor(kind)
	user := fmt.Sprintf(spec.user, payload)

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(spec.system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(spec.maxTokens),
		Temperature: openai.Float(spec.temperature),
	})
	if err != nil {
		slog.Warn("AI generation failed", "kind", int(kind), "error", err)
		return Result{Status: StatusTransient}
	}
	if len(resp.Choices) == 0 {
		return Result{Status: StatusTransient}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Result{Status: StatusTransient}
	}
	return Result{Text: text, Status: StatusOK}
}
