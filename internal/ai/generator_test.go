package ai

import (
	"context"
	"testing"
)

func TestFallbackCoversEveryKind(t *testing.T) {
	for _, kind := range []Kind{
		KindReflectionFeedback, KindCompletionCheer, KindDigestGreeting,
		KindScheduleSummary, KindMotivation,
	} {
		if Fallback(kind) == "" {
			t.Errorf("kind %d has no fallback message", kind)
		}
	}
}

func TestDisabled(t *testing.T) {
	var gen Generator = Disabled{}
	if gen.Available() {
		t.Error("Disabled generator must not report available")
	}
	res := gen.Generate(context.Background(), KindMotivation, "anything")
	if res.OK() {
		t.Error("Disabled generator must not return OK")
	}
	if res.Status != StatusUnavailable {
		t.Errorf("status = %d, want StatusUnavailable", res.Status)
	}
}

func TestResultOK(t *testing.T) {
	if (Result{Status: StatusTransient, Text: "x"}).OK() {
		t.Error("transient result is not OK")
	}
	if !(Result{Status: StatusOK, Text: "x"}).OK() {
		t.Error("OK result should be OK")
	}
	if (Result{Status: StatusOK}).OK() {
		t.Error("empty text is never OK")
	}
}
