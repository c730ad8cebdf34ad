package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// TextGenerator produces a JSON document for a prompt. schema describes the
// expected shape and may be nil.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// GeminiGenerator implements TextGenerator with the Gemini API
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator creates a generator for the named model
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{
		client:      client,
		model:       model,
		temperature: 0.7,
	}
}

// GenerateJSON sends one request. It does not retry.
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini client not set")
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("API blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("API returned no candidates")
	}

	var out strings.Builder
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("API candidate has no parts (finish reason: %s)", candidate.FinishReason)
	}
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("API returned empty content")
	}
	return out.String(), nil
}

func stringSchema(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

// prayerPlanSchema mirrors models.PrayerPlanResult
var prayerPlanSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"reasonContext":       stringSchema("The reason for prayer this plan was generated for."),
		"languageContext":     stringSchema("The language code of the plan."),
		"bibleVersionContext": stringSchema("The Bible version used for quotations, if any."),
		"entries": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"day":        stringSchema("Localized day label."),
					"verseRef":   stringSchema("Bible verse reference."),
					"verseText":  stringSchema("Full text of the verse."),
					"reflection": stringSchema("Reflection on the verse."),
					"prayerText": stringSchema("Prayer for the day."),
					"tip":        stringSchema("Practical tip for the day."),
					"actionSteps": {
						Type:  genai.TypeArray,
						Items: stringSchema("One concrete action."),
					},
				},
				Required: []string{"day", "verseRef", "verseText", "reflection", "prayerText"},
			},
		},
		"recommendedDays":    stringSchema("Localized recommended days."),
		"durationSuggestion": stringSchema("Localized suggested duration."),
	},
	Required: []string{"reasonContext", "languageContext", "entries", "recommendedDays", "durationSuggestion"},
}

// dailyContentSchema mirrors models.DailyContent
var dailyContentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scripture": stringSchema("Relevant scripture for the day."),
		"rationale": stringSchema("Why the scripture fits the topic."),
		"prayer":    stringSchema("Short personal prayer."),
	},
	Required: []string{"scripture", "rationale", "prayer"},
}
