package service

import (
	"context"
	"fmt"
	"strings"

	"tourplanner/internal/config"
)

// LLMClient is the interface for generative-language backends used for intent extraction
type LLMClient interface {
	// Complete sends a single prompt and returns the raw model text
	Complete(ctx context.Context, prompt string) (string, error)

	// Name identifies the backend in logs
	Name() string
}

// NewLLMClient builds the backend selected by cfg.Provider
func NewLLMClient(ctx context.Context, cfg *config.LLMConfig) (LLMClient, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini", "":
		return NewGeminiClient(ctx, cfg)
	case "openai":
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// Ensure both backends implement LLMClient
var (
	_ LLMClient = (*OpenAIClient)(nil)
	_ LLMClient = (*GeminiClient)(nil)
)
