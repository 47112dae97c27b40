package ai

import (
	"fmt"
	"strings"

	"github.com/wellnessweavers/companion/internal/model/persona"
)

// PromptTemplate defines the structure for persona prompts
type PromptTemplate struct {
	SystemPrompt     string
	PersonalityHints []string
	ContextRules     []string
}

// safetyRules apply to every companion.
var safetyRules = []string{
	"You are a supportive companion, not a therapist; never diagnose or prescribe",
	"If the user mentions self-harm or being in danger, gently encourage them to contact a local emergency number or a trusted person right away",
	"Keep replies short: two to four sentences",
	"Never shame or judge the user's feelings",
}

// PersonaPromptManager manages prompt templates for different personas
type PersonaPromptManager struct {
	templates map[string]*PromptTemplate
}

// NewPersonaPromptManager creates a new prompt manager with default templates
func NewPersonaPromptManager() *PersonaPromptManager {
	manager := &PersonaPromptManager{
		templates: make(map[string]*PromptTemplate),
	}

	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the prompt template for a given persona
func (pm *PersonaPromptManager) GetPromptTemplate(personaID string) (*PromptTemplate, error) {
	template, exists := pm.templates[personaID]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for persona: %s", personaID)
	}
	return template, nil
}

// BuildSystemPrompt creates a comprehensive system prompt for the persona
func (pm *PersonaPromptManager) BuildSystemPrompt(p *persona.Persona) string {
	if p == nil {
		return fmt.Sprintf("You are a kind wellbeing companion.\n\nRules:\n- %s", strings.Join(safetyRules, "\n- "))
	}

	template, err := pm.GetPromptTemplate(p.ID)
	if err != nil {
		return pm.buildBasicSystemPrompt(p)
	}

	return fmt.Sprintf(`%s

About you:
- Name: %s
- Role: %s
- Tone: %s

Personality:
- %s

Conversation rules:
- %s
- %s

Opening line for reference: %s`,
		template.SystemPrompt,
		p.Name,
		p.Title,
		p.Tone,
		strings.Join(template.PersonalityHints, "\n- "),
		strings.Join(template.ContextRules, "\n- "),
		strings.Join(safetyRules, "\n- "),
		p.OpeningLine,
	)
}

// buildBasicSystemPrompt creates a basic system prompt when no template is available
func (pm *PersonaPromptManager) buildBasicSystemPrompt(p *persona.Persona) string {
	return fmt.Sprintf(`You are %s, %s.

- Tone: %s
- Hint: %s

Rules:
- %s

Opening line: %s`,
		p.Name,
		strings.ToLower(p.Title),
		p.Tone,
		p.PromptHint,
		strings.Join(safetyRules, "\n- "),
		p.OpeningLine,
	)
}

// loadDefaultTemplates loads the default prompt templates for built-in personas
func (pm *PersonaPromptManager) loadDefaultTemplates() {
	pm.templates["priya"] = &PromptTemplate{
		SystemPrompt: "You are Priya, a warm and patient listener on a student wellbeing app. People come to you when they need to be heard.",
		PersonalityHints: []string{
			"Reflect the user's feelings back in your own words before anything else",
			"Ask at most one gentle, open question per reply",
			"Use simple, everyday language",
		},
		ContextRules: []string{
			"Do not rush to give advice unless the user asks for it",
			"Acknowledge small steps the user has already taken",
		},
	}

	pm.templates["arjun"] = &PromptTemplate{
		SystemPrompt: "You are Arjun, an upbeat motivation coach who helps students turn worries into small, doable actions.",
		PersonalityHints: []string{
			"Celebrate progress, however small",
			"Be practical and concrete",
			"Keep the energy positive without dismissing hard feelings",
		},
		ContextRules: []string{
			"End with one concrete next step the user could take today",
			"If the user is exhausted, suggest rest before productivity",
		},
	}

	pm.templates["meera"] = &PromptTemplate{
		SystemPrompt: "You are Meera, a mindfulness guide who helps people slow down and return to the present moment.",
		PersonalityHints: []string{
			"Speak slowly and simply",
			"Offer short breathing or grounding exercises when the user feels overwhelmed",
			"Invite, never instruct",
		},
		ContextRules: []string{
			"Keep exercises under one minute",
			"Check in on how the exercise felt",
		},
	}
}
