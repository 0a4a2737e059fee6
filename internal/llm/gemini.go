package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient calls Google Gemini models through the genai SDK.
type GeminiClient struct {
	client    *genai.Client
	maxTokens int32
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey    string
	BaseURL   string // Optional: override the API endpoint
	MaxTokens int    // Default: 200
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &GeminiClient{client: client, maxTokens: int32(maxTokens)}, nil
}

// Complete generates content for a single user instruction.
func (c *GeminiClient) Complete(ctx context.Context, model, instruction string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(instruction), &genai.GenerateContentConfig{
		MaxOutputTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Text(), nil
}
