package ai

import (
	"context"
	"log"

	"github.com/wellnessweavers/companion/internal/analysis/emotion"
	"github.com/wellnessweavers/companion/internal/model/chat"
	"github.com/wellnessweavers/companion/internal/model/persona"
	emotionservice "github.com/wellnessweavers/companion/internal/service/emotion"
)

var fallbackReplies = map[emotion.Tone]string{
	emotion.Supportive:  "I can hear that you're going through a difficult time. It's okay to feel this way, and I'm here to listen and support you.",
	emotion.Encouraging: "I'm so glad to hear that you're feeling positive! It's wonderful to see you in good spirits.",
	emotion.Balanced:    "Thank you for sharing that with me. I'm here to listen and support you in whatever way you need.",
}

// FallbackResponder answers with canned replies picked by tone. It is used
// when no model is configured and when the model call fails.
type FallbackResponder struct{}

// Reply implements Responder.
func (FallbackResponder) Reply(ctx context.Context, p *persona.Persona, history []chat.Message, userMessage string, guidance *emotionservice.Guidance) (string, error) {
	var tone emotion.Tone
	if guidance != nil && guidance.Tone != "" {
		tone = guidance.Tone
	} else {
		tone = emotion.ReplyTone(emotion.Analyze(userMessage))
	}

	if reply, ok := fallbackReplies[tone]; ok {
		return reply, nil
	}
	return fallbackReplies[emotion.Balanced], nil
}

// WithFallback returns a Responder that tries primary and answers with
// the canned reply when it fails.
func WithFallback(primary Responder) Responder {
	if primary == nil {
		return FallbackResponder{}
	}
	return fallbackChain{primary: primary}
}

type fallbackChain struct {
	primary Responder
}

func (f fallbackChain) Reply(ctx context.Context, p *persona.Persona, history []chat.Message, userMessage string, guidance *emotionservice.Guidance) (string, error) {
	reply, err := f.primary.Reply(ctx, p, history, userMessage, guidance)
	if err == nil {
		return reply, nil
	}
	log.Printf("[ai] model reply failed for persona=%s, use fallback: %v", personaID(p), err)
	return FallbackResponder{}.Reply(ctx, p, history, userMessage, guidance)
}
