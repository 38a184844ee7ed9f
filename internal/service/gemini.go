package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"tourplanner/internal/config"
)

// GeminiClient calls the Gemini generateContent API through the genai SDK
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiClient creates a Gemini backend. cfg.APIBase, when set, overrides
// the API endpoint.
func NewGeminiClient(ctx context.Context, cfg *config.LLMConfig) (*GeminiClient, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.APIBase != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(cfg.APIBase, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
	}, nil
}

// Name identifies the backend
func (g *GeminiClient) Name() string {
	return "gemini:" + g.model
}

// Complete sends the prompt and returns the concatenated text parts
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: empty response")
	}

	return text, nil
}
