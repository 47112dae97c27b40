package emotion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	analysis "github.com/wellnessweavers/companion/internal/analysis/emotion"
	"github.com/wellnessweavers/companion/internal/model/chat"
	"github.com/wellnessweavers/companion/internal/model/persona"
)

// Config 控制情绪分析服务的行为。
type Config struct {
	Enabled      bool
	HistoryLimit int
}

// Guidance 表示情绪分析的结果以及对回复语气的建议。
type Guidance struct {
	Decision   analysis.Decision
	Tone       analysis.Tone
	Style      string
	Confidence float32
	Reason     string
}

// Service 使用大模型对会话情绪进行分析，并在必要时回退到启发式规则。
type Service struct {
	enabled      bool
	classifier   compose.Runnable[map[string]any, *schema.Message]
	fallback     func(text string) analysis.Decision
	historyLimit int
}

// NewService 创建情绪分析服务。chatModel 可重用现有的大模型实例。
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config) (*Service, error) {
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 6
	}

	svc := &Service{
		enabled:      cfg.Enabled && chatModel != nil,
		fallback:     analysis.Analyze,
		historyLimit: historyLimit,
	}

	if !svc.enabled {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(emotionSystemPrompt),
		schema.UserMessage(emotionUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile emotion classifier chain: %w", err)
	}

	svc.classifier = runnable
	return svc, nil
}

// Enabled 返回情绪分析服务是否启用。
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.classifier != nil
}

// Analyze 在生成回复前根据会话上下文判断用户情绪，并给出回复语气建议。
func (s *Service) Analyze(ctx context.Context, personaObj *persona.Persona, history []chat.Message, userMessage string) Guidance {
	if !s.Enabled() {
		return s.fallbackGuidance(userMessage)
	}

	input := map[string]any{
		"persona":      summarizePersona(personaObj),
		"history":      formatHistory(history, s.historyLimit),
		"user_message": strings.TrimSpace(userMessage),
	}

	msg, err := s.classifier.Invoke(ctx, input)
	if err != nil {
		log.Printf("[emotion] classifier invoke failed, use fallback: %v", err)
		return s.fallbackGuidance(userMessage)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return s.fallbackGuidance(userMessage)
	}

	result, err := parseClassifierOutput(msg.Content)
	if err != nil {
		log.Printf("[emotion] classifier output parse failed, use fallback: %v", err)
		return s.fallbackGuidance(userMessage)
	}

	label, ok := parseEmotionLabel(result.Emotion)
	if !ok {
		return s.fallbackGuidance(userMessage)
	}

	scale := clampScale(result.Scale)
	decision := analysis.Decision{
		Emotion: label,
		Scale:   scale,
		Score:   int(scale * 2),
	}

	style := strings.TrimSpace(result.Style)
	if style == "" {
		style = defaultStyleByEmotion[decision.Emotion]
	}

	confidence := result.Confidence
	if confidence <= 0 {
		confidence = 0.6
	}
	if confidence > 1 {
		confidence = 1
	}

	return Guidance{
		Decision:   decision,
		Tone:       analysis.ReplyTone(decision),
		Style:      style,
		Confidence: confidence,
		Reason:     strings.TrimSpace(result.Reason),
	}
}

func (s *Service) fallbackGuidance(userMessage string) Guidance {
	analyze := analysis.Analyze
	if s != nil && s.fallback != nil {
		analyze = s.fallback
	}
	decision := analyze(userMessage)
	style := defaultStyleByEmotion[decision.Emotion]
	if style == "" {
		style = "Keep a natural, friendly tone."
	}

	confidence := float32(0.3)
	if decision.Score > 0 {
		confidence = 0.55
	}

	return Guidance{
		Decision:   decision,
		Tone:       analysis.ReplyTone(decision),
		Style:      style,
		Confidence: confidence,
		Reason:     "fallback",
	}
}

// parseClassifierOutput 解析大模型返回的 JSON。
func parseClassifierOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func summarizePersona(p *persona.Persona) string {
	if p == nil {
		return "No specific persona."
	}

	sections := []string{
		fmt.Sprintf("name: %s", strings.TrimSpace(p.Name)),
		fmt.Sprintf("role: %s", strings.TrimSpace(p.Title)),
	}
	if tone := strings.TrimSpace(p.Tone); tone != "" {
		sections = append(sections, fmt.Sprintf("tone: %s", tone))
	}
	return strings.Join(sections, " | ")
}

func formatHistory(messages []chat.Message, limit int) string {
	if len(messages) == 0 {
		return "(no previous messages)"
	}
	if limit < 1 {
		limit = 1
	}
	start := len(messages) - limit
	if start < 0 {
		start = 0
	}

	var builder strings.Builder
	for i := start; i < len(messages); i++ {
		msg := messages[i]
		role := "User"
		if strings.EqualFold(msg.Sender, chat.SenderAssistant) {
			role = "Companion"
		}
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		builder.WriteString(role)
		builder.WriteString(": ")
		builder.WriteString(content)
		if i < len(messages)-1 {
			builder.WriteString("\n")
		}
	}
	if builder.Len() == 0 {
		return "(no previous messages)"
	}
	return builder.String()
}

func parseEmotionLabel(raw string) (analysis.Label, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch analysis.Label(normalized) {
	case analysis.Neutral, analysis.Happy, analysis.Calm, analysis.Sad,
		analysis.Anxious, analysis.Fearful, analysis.Angry:
		return analysis.Label(normalized), true
	default:
		return "", false
	}
}

func clampScale(val float32) float32 {
	if val <= 0 {
		return 3
	}
	if val < 1 {
		return 1
	}
	if val > 5 {
		return 5
	}
	return val
}

type classifierPayload struct {
	Emotion    string  `json:"emotion"`
	Scale      float32 `json:"scale"`
	Confidence float32 `json:"confidence"`
	Style      string  `json:"style"`
	Reason     string  `json:"reason"`
}

const emotionSystemPrompt = "You read short conversations between a user and a wellbeing companion. Infer the user's current emotion and suggest the tone the companion should reply in.\nReturn only one JSON object with these fields: emotion (one of neutral/happy/calm/sad/anxious/fearful/angry), scale (a number between 1 and 5), confidence (between 0 and 1), style (one sentence describing the suggested tone), reason (a short explanation). Do not output anything else."

const emotionUserPrompt = "Companion:\n{persona}\n\nRecent messages:\n{history}\n\nLatest user message:\n{user_message}\n\nReply with the JSON object."

var defaultStyleByEmotion = map[analysis.Label]string{
	analysis.Neutral: "Calm and patient, keep the message clear.",
	analysis.Happy:   "Light and warm, celebrate with the user.",
	analysis.Calm:    "Gentle and unhurried, match the user's ease.",
	analysis.Sad:     "Soft and empathetic, validate the feeling before anything else.",
	analysis.Anxious: "Steady and reassuring, slow the pace and offer one small grounding step.",
	analysis.Fearful: "Protective and reassuring, remind the user they are not alone.",
	analysis.Angry:   "Composed and non-judgmental, acknowledge the frustration first.",
}
