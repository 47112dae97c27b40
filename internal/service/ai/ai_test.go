package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	analysis "github.com/wellnessweavers/companion/internal/analysis/emotion"
	"github.com/wellnessweavers/companion/internal/model/chat"
	"github.com/wellnessweavers/companion/internal/model/persona"
	emotionservice "github.com/wellnessweavers/companion/internal/service/emotion"
)

type failingResponder struct{ calls int }

func (f *failingResponder) Reply(ctx context.Context, p *persona.Persona, history []chat.Message, userMessage string, guidance *emotionservice.Guidance) (string, error) {
	f.calls++
	return "", errors.New("model unavailable")
}

func TestFallbackReplyByTone(t *testing.T) {
	cases := map[string]analysis.Tone{
		"I feel so lonely and sad":     analysis.Supportive,
		"I'm happy, I passed!":         analysis.Encouraging,
		"I had lunch and then studied": analysis.Balanced,
	}
	for message, tone := range cases {
		reply, err := FallbackResponder{}.Reply(context.Background(), nil, nil, message, nil)
		if err != nil {
			t.Fatalf("reply: %v", err)
		}
		if reply != fallbackReplies[tone] {
			t.Fatalf("message %q: expected %s reply, got %q", message, tone, reply)
		}
	}
}

func TestFallbackUsesGuidanceTone(t *testing.T) {
	g := &emotionservice.Guidance{Tone: analysis.Encouraging}
	reply, _ := FallbackResponder{}.Reply(context.Background(), nil, nil, "whatever", g)
	if reply != fallbackReplies[analysis.Encouraging] {
		t.Fatalf("expected guidance tone to win, got %q", reply)
	}
}

func TestWithFallbackRecoversFromPrimaryError(t *testing.T) {
	primary := &failingResponder{}
	r := WithFallback(primary)

	reply, err := r.Reply(context.Background(), nil, nil, "I am feeling anxious today", nil)
	if err != nil {
		t.Fatalf("expected fallback to absorb the error, got %v", err)
	}
	if primary.calls != 1 {
		t.Fatalf("primary should be tried once")
	}
	if reply != fallbackReplies[analysis.Supportive] {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestBuildHistoryMessagesKeepsLastTurns(t *testing.T) {
	var messages []chat.Message
	for i := 0; i < 14; i++ {
		sender := chat.SenderUser
		if i%2 == 1 {
			sender = chat.SenderAssistant
		}
		messages = append(messages, chat.Message{Sender: sender, Content: "m"})
	}
	messages = append(messages, chat.Message{Sender: "system", Content: "ignored"})

	history := buildHistoryMessages(messages)
	if len(history) != historyLimit-1 {
		t.Fatalf("expected %d messages, got %d", historyLimit-1, len(history))
	}
}

func TestSystemPromptIncludesPersonaAndSafety(t *testing.T) {
	store := persona.NewMemoryStore(persona.Seed())
	p, _ := store.FindByID("meera")

	prompt := NewPersonaPromptManager().BuildSystemPrompt(&p)
	if !strings.Contains(prompt, "Meera") || !strings.Contains(prompt, "never diagnose") {
		t.Fatalf("prompt missing persona or safety rules:\n%s", prompt)
	}

	unknown := persona.Persona{ID: "guest", Name: "Sam", Title: "Friend", Tone: "casual"}
	basic := NewPersonaPromptManager().BuildSystemPrompt(&unknown)
	if !strings.HasPrefix(basic, "You are Sam, friend.") {
		t.Fatalf("unexpected basic prompt:\n%s", basic)
	}
}
