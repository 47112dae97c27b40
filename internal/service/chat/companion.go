package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wellnessweavers/companion/internal/model/chat"
	"github.com/wellnessweavers/companion/internal/model/persona"
	"github.com/wellnessweavers/companion/internal/service/ai"
	emotionservice "github.com/wellnessweavers/companion/internal/service/emotion"
)

var (
	ErrMessageRequired = errors.New("message is required")
	ErrUnknownPersona  = errors.New("persona not found")
)

// Exchange is one answered user message.
type Exchange struct {
	Session  chat.Session
	User     chat.Message
	Reply    chat.Message
	Guidance emotionservice.Guidance
}

// Companion answers user messages on top of the session store.
type Companion struct {
	sessions  *Service
	personas  persona.Store
	emotions  *emotionservice.Service
	responder ai.Responder
}

// NewCompanion wires the conversation pipeline. A nil responder answers
// with the canned fallback replies.
func NewCompanion(sessions *Service, personas persona.Store, emotions *emotionservice.Service, responder ai.Responder) *Companion {
	return &Companion{
		sessions:  sessions,
		personas:  personas,
		emotions:  emotions,
		responder: ai.WithFallback(responder),
	}
}

// Respond stores the user message, analyses it and stores the reply.
func (c *Companion) Respond(ctx context.Context, userID, sessionID, personaID, message string) (Exchange, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Exchange{}, ErrMessageRequired
	}

	personaID = strings.ToLower(strings.TrimSpace(personaID))
	if personaID == "" {
		personaID = persona.DefaultID
	}
	p, ok := c.personas.FindByID(personaID)
	if !ok {
		return Exchange{}, ErrUnknownPersona
	}

	session, err := c.sessions.ResolveSession(ctx, userID, sessionID, p.ID)
	if err != nil {
		return Exchange{}, err
	}
	// a resumed session keeps the persona it was started with
	if session.PersonaID != p.ID {
		if sp, ok := c.personas.FindByID(session.PersonaID); ok {
			p = sp
		}
	}

	history, err := c.sessions.LoadTranscript(ctx, session.ID)
	if err != nil {
		return Exchange{}, err
	}

	guidance := c.emotions.Analyze(ctx, &p, history, message)

	userMsg, err := c.sessions.SaveMessage(ctx, chat.Message{
		SessionID: session.ID,
		Sender:    chat.SenderUser,
		Content:   message,
		Emotion:   string(guidance.Decision.Emotion),
	})
	if err != nil {
		return Exchange{}, fmt.Errorf("save user message: %w", err)
	}

	text, err := c.responder.Reply(ctx, &p, history, message, &guidance)
	if err != nil {
		return Exchange{}, fmt.Errorf("generate reply: %w", err)
	}

	reply, err := c.sessions.SaveMessage(ctx, chat.Message{
		SessionID: session.ID,
		Sender:    chat.SenderAssistant,
		Content:   text,
	})
	if err != nil {
		return Exchange{}, fmt.Errorf("save reply: %w", err)
	}

	return Exchange{Session: session, User: userMsg, Reply: reply, Guidance: guidance}, nil
}

// Transcript returns a session and its messages if it belongs to userID.
func (c *Companion) Transcript(ctx context.Context, userID, sessionID string) (chat.Session, []chat.Message, error) {
	session, err := c.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return chat.Session{}, nil, err
	}
	if session.UserID != userID {
		return chat.Session{}, nil, ErrSessionForbidden
	}
	messages, err := c.sessions.LoadTranscript(ctx, sessionID)
	if err != nil {
		return chat.Session{}, nil, err
	}
	return session, messages, nil
}
