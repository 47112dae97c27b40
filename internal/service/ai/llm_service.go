package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/wellnessweavers/companion/internal/analysis/emotion"
	"github.com/wellnessweavers/companion/internal/model/chat"
	"github.com/wellnessweavers/companion/internal/model/persona"
	emotionservice "github.com/wellnessweavers/companion/internal/service/emotion"
)

const historyLimit = 10

// Responder produces the companion's reply to one user message.
type Responder interface {
	Reply(ctx context.Context, p *persona.Persona, history []chat.Message, userMessage string, guidance *emotionservice.Guidance) (string, error)
}

// Service encapsulates LLM-backed companion replies
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
	prompts   *PersonaPromptManager
}

// NewService compiles the reply chain around chatModel
func NewService(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		chain:     runnable,
		prompts:   NewPersonaPromptManager(),
	}, nil
}

// Reply implements Responder.
func (s *Service) Reply(ctx context.Context, p *persona.Persona, history []chat.Message, userMessage string, guidance *emotionservice.Guidance) (string, error) {
	response, err := s.GenerateResponse(ctx, p, history, userMessage, guidance)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(response.Content)
	if content == "" {
		return "", fmt.Errorf("empty model response")
	}
	return content, nil
}

// GenerateResponse runs the chain for a persona-based conversation
func (s *Service) GenerateResponse(ctx context.Context, p *persona.Persona, messages []chat.Message, userMessage string, guidance *emotionservice.Guidance) (*schema.Message, error) {
	input := s.buildChainInput(p, messages, userMessage, guidance)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil {
		return nil, fmt.Errorf("AI chain returned no message")
	}

	log.Printf("[ai] generated response for persona=%s, length=%d", personaID(p), len(response.Content))
	return response, nil
}

// GetChatModel 返回底层的聊天模型
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}

func (s *Service) buildChainInput(p *persona.Persona, messages []chat.Message, userMessage string, guidance *emotionservice.Guidance) map[string]any {
	return map[string]any{
		"system":  s.buildSystemPrompt(p, guidance),
		"history": buildHistoryMessages(messages),
		"query":   userMessage,
	}
}

// buildSystemPrompt appends the emotion guidance to the persona prompt
func (s *Service) buildSystemPrompt(p *persona.Persona, guidance *emotionservice.Guidance) string {
	base := s.prompts.BuildSystemPrompt(p)

	if guidance == nil {
		return base
	}

	decision := guidance.Decision
	if decision.Emotion == "" {
		return base
	}

	var builder strings.Builder
	builder.WriteString(base)
	builder.WriteString("\n\nWhat we can tell about the user's current state: ")
	if desc := describeEmotion(decision.Emotion); desc != "" {
		builder.WriteString(desc)
	} else {
		builder.WriteString(fmt.Sprintf("emotion=%s", string(decision.Emotion)))
	}
	builder.WriteString(fmt.Sprintf(" Intensity about %.1f of 5.", decision.Scale))
	if guidance.Style != "" {
		builder.WriteString("\nSuggested tone: ")
		builder.WriteString(guidance.Style)
	}
	if guidance.Reason != "" && guidance.Reason != "fallback" {
		builder.WriteString("\nWhy: ")
		builder.WriteString(guidance.Reason)
	}
	builder.WriteString("\nStay in character and respond to this emotional state first.")
	return builder.String()
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.SenderAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}

func describeEmotion(label emotion.Label) string {
	switch label {
	case emotion.Happy:
		return "The user sounds positive and happy; keep the energy light and affirming."
	case emotion.Calm:
		return "The user sounds calm and settled; mirror that ease."
	case emotion.Sad:
		return "The user sounds low or sad; be gentle and validating."
	case emotion.Anxious:
		return "The user sounds anxious or stressed; slow down and reassure."
	case emotion.Fearful:
		return "The user sounds scared; emphasise safety and support."
	case emotion.Angry:
		return "The user sounds frustrated or angry; acknowledge it without judgement."
	case emotion.Neutral:
		return "The user sounds neutral; stay clear, warm and natural."
	default:
		return ""
	}
}

func personaID(p *persona.Persona) string {
	if p == nil {
		return "none"
	}
	return p.ID
}
