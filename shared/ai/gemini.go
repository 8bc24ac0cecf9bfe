package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"video-analytics/shared/config"
)

// ErrEmptyPrompt is returned when Complete is called without a prompt.
var ErrEmptyPrompt = errors.New("prompt cannot be empty")

// GeminiModel completes prompts with the Gemini API. Complete returns the raw
// *genai.GenerateContentResponse; its Text method is picked up by ExtractText.
type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, cfg *config.AIConfig) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiModel{
		client: client,
		model:  cfg.Model,
	}, nil
}

func (g *GeminiModel) Complete(ctx context.Context, prompt string) (any, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	// Deterministic output: the same question should produce the same SQL.
	temperature := float32(0)
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	return result, nil
}
