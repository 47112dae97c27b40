package emotion

import (
	"context"
	"testing"

	analysis "github.com/wellnessweavers/companion/internal/analysis/emotion"
	"github.com/wellnessweavers/companion/internal/model/chat"
)

func TestDisabledServiceUsesHeuristics(t *testing.T) {
	svc, err := NewService(context.Background(), nil, Config{Enabled: true})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.Enabled() {
		t.Fatalf("service without a model must report disabled")
	}

	g := svc.Analyze(context.Background(), nil, nil, "I'm so stressed about my exam")
	if g.Decision.Emotion != analysis.Anxious {
		t.Fatalf("expected anxious, got %s", g.Decision.Emotion)
	}
	if g.Tone != analysis.Supportive {
		t.Fatalf("expected supportive tone, got %s", g.Tone)
	}
	if g.Reason != "fallback" || g.Style == "" {
		t.Fatalf("unexpected guidance %+v", g)
	}
}

func TestParseClassifierOutputExtractsObject(t *testing.T) {
	payload, err := parseClassifierOutput("Sure:\n```json\n{\"emotion\":\"Sad\",\"scale\":7,\"confidence\":0.8}\n```")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	label, ok := parseEmotionLabel(payload.Emotion)
	if !ok || label != analysis.Sad {
		t.Fatalf("expected sad, got %q", payload.Emotion)
	}
	if clampScale(payload.Scale) != 5 {
		t.Fatalf("expected scale to be clamped")
	}

	if _, err := parseClassifierOutput("no json here"); err == nil {
		t.Fatalf("expected an error without a json object")
	}
}

func TestFormatHistoryKeepsRecentTurns(t *testing.T) {
	history := []chat.Message{
		{Sender: chat.SenderUser, Content: "one"},
		{Sender: chat.SenderAssistant, Content: "two"},
		{Sender: chat.SenderUser, Content: "three"},
	}
	got := formatHistory(history, 2)
	want := "Companion: two\nUser: three"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
