package chat_test

import (
	"context"
	"errors"
	"testing"

	analysis "github.com/wellnessweavers/companion/internal/analysis/emotion"
	model "github.com/wellnessweavers/companion/internal/model/chat"
	"github.com/wellnessweavers/companion/internal/model/persona"
	emotionservice "github.com/wellnessweavers/companion/internal/service/emotion"
	chat "github.com/wellnessweavers/companion/internal/service/chat"
)

type stubResponder struct {
	reply   string
	history int
	persona string
}

func (s *stubResponder) Reply(ctx context.Context, p *persona.Persona, history []model.Message, userMessage string, guidance *emotionservice.Guidance) (string, error) {
	s.history = len(history)
	s.persona = p.ID
	return s.reply, nil
}

func chatMessage(sessionID string) model.Message {
	return model.Message{SessionID: sessionID, Sender: model.SenderUser, Content: "hi"}
}

func newCompanion(t *testing.T, responder *stubResponder) *chat.Companion {
	t.Helper()
	emotions, err := emotionservice.NewService(context.Background(), nil, emotionservice.Config{})
	if err != nil {
		t.Fatalf("emotion service: %v", err)
	}
	personas := persona.NewMemoryStore(persona.Seed())
	if responder == nil {
		return chat.NewCompanion(chat.NewService(), personas, emotions, nil)
	}
	return chat.NewCompanion(chat.NewService(), personas, emotions, responder)
}

func TestRespondStoresBothTurns(t *testing.T) {
	responder := &stubResponder{reply: "I'm here with you."}
	c := newCompanion(t, responder)
	ctx := context.Background()

	ex, err := c.Respond(ctx, "u-1", "", "", "I am feeling anxious today")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if ex.Reply.Content != "I'm here with you." {
		t.Fatalf("unexpected reply %q", ex.Reply.Content)
	}
	if ex.Session.PersonaID != persona.DefaultID || responder.persona != persona.DefaultID {
		t.Fatalf("expected default persona, got %q", ex.Session.PersonaID)
	}
	if ex.Guidance.Decision.Emotion != analysis.Anxious || ex.User.Emotion != string(analysis.Anxious) {
		t.Fatalf("expected anxious tagging, got %+v", ex.Guidance.Decision)
	}

	if _, err := c.Respond(ctx, "u-1", ex.Session.ID, "", "still here"); err != nil {
		t.Fatalf("second respond: %v", err)
	}
	if responder.history != 2 {
		t.Fatalf("expected the earlier turns as history, got %d", responder.history)
	}

	_, messages, err := c.Transcript(ctx, "u-1", ex.Session.ID)
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if len(messages) != 4 || messages[0].Sender != model.SenderUser || messages[1].Sender != model.SenderAssistant {
		t.Fatalf("unexpected transcript %+v", messages)
	}
}

func TestRespondValidation(t *testing.T) {
	c := newCompanion(t, nil)
	ctx := context.Background()

	if _, err := c.Respond(ctx, "u-1", "", "", "   "); !errors.Is(err, chat.ErrMessageRequired) {
		t.Fatalf("expected ErrMessageRequired, got %v", err)
	}
	if _, err := c.Respond(ctx, "u-1", "", "nobody", "hi"); !errors.Is(err, chat.ErrUnknownPersona) {
		t.Fatalf("expected ErrUnknownPersona, got %v", err)
	}
}

func TestRespondWithoutModelUsesFallback(t *testing.T) {
	c := newCompanion(t, nil)
	ex, err := c.Respond(context.Background(), "u-1", "", "arjun", "I feel lonely")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if ex.Reply.Content == "" {
		t.Fatalf("expected a canned reply")
	}
}

func TestTranscriptForbiddenForOtherUser(t *testing.T) {
	c := newCompanion(t, &stubResponder{reply: "ok"})
	ex, err := c.Respond(context.Background(), "u-1", "", "", "hello")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if _, _, err := c.Transcript(context.Background(), "u-2", ex.Session.ID); !errors.Is(err, chat.ErrSessionForbidden) {
		t.Fatalf("expected ErrSessionForbidden, got %v", err)
	}
}
