package ai

import (
	"context"
	"fmt"

	"video-analytics/shared/config"
)

// NewModel builds the model client selected by cfg.Provider.
func NewModel(ctx context.Context, cfg *config.AIConfig) (Model, error) {
	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiModel(ctx, cfg)
	case "openai":
		return NewChatModel(cfg), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
