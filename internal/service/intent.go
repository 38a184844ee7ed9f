package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tourplanner/internal/model"
	"tourplanner/internal/utils"
)

const intentPrompt = `You are a travel assistant. Analyse the user's travel request and reply with a single JSON object with exactly these keys:
1. "city": name of the place the user wants to visit (string)
2. "wants_weather": true if the user asks about weather, temperature or rain (boolean)
3. "wants_places": true if the user asks about places to visit, sights or attractions (boolean)

Rules:
- Respond ONLY with valid JSON, no markdown and no explanation
- If the user only names a place, set both flags to false

Examples:
Query: "I'm going to go to Bangalore, let's plan my trip."
Response: {"city": "Bangalore", "wants_weather": false, "wants_places": true}

Query: "What is the temperature in Paris right now?"
Response: {"city": "Paris", "wants_weather": true, "wants_places": false}

Query: "Going to Rome, what's the weather and what can I see?"
Response: {"city": "Rome", "wants_weather": true, "wants_places": true}

Query: %q
Response:`

// intentResponse mirrors the expected model output. Pointers distinguish a
// missing key from a zero value.
type intentResponse struct {
	City         *string `json:"city"`
	WantsWeather *bool   `json:"wants_weather"`
	WantsPlaces  *bool   `json:"wants_places"`
}

// IntentExtractor turns a free-text travel request into a structured Intent
type IntentExtractor struct {
	llm LLMClient
}

// NewIntentExtractor creates a new intent extractor
func NewIntentExtractor(llm LLMClient) *IntentExtractor {
	return &IntentExtractor{llm: llm}
}

// Extract asks the model for the destination and what the user wants to know.
// Every failure is reported as model.ErrIntentParse; there is no retry.
func (e *IntentExtractor) Extract(ctx context.Context, query string) (*model.Intent, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", model.ErrIntentParse)
	}

	if e.llm == nil {
		return nil, fmt.Errorf("%w: no language model configured", model.ErrIntentParse)
	}

	content, err := e.llm.Complete(ctx, fmt.Sprintf(intentPrompt, query))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIntentParse, err)
	}

	intent, err := parseIntent(content)
	if err != nil {
		log.Printf("⚠️  Failed to parse intent, content: %s", utils.CompactJSON(content))
		return nil, err
	}

	log.Printf("🤖 Intent detected: city=%s weather=%v places=%v", intent.City, intent.WantsWeather, intent.WantsPlaces)
	return intent, nil
}

// parseIntent validates the raw model output against the intent schema
func parseIntent(content string) (*model.Intent, error) {
	var resp intentResponse
	if err := utils.ParseAIJSON(content, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIntentParse, err)
	}

	if resp.City == nil {
		return nil, fmt.Errorf("%w: missing key \"city\"", model.ErrIntentParse)
	}
	if resp.WantsWeather == nil {
		return nil, fmt.Errorf("%w: missing key \"wants_weather\"", model.ErrIntentParse)
	}
	if resp.WantsPlaces == nil {
		return nil, fmt.Errorf("%w: missing key \"wants_places\"", model.ErrIntentParse)
	}

	city := strings.TrimSpace(*resp.City)
	if city == "" {
		return nil, fmt.Errorf("%w: empty city", model.ErrIntentParse)
	}

	return &model.Intent{
		City:         city,
		WantsWeather: *resp.WantsWeather,
		WantsPlaces:  *resp.WantsPlaces,
	}, nil
}
