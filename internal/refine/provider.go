package refine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/cvgest/internal/config"
)

// statsWindow is how far back LLMStats keeps samples.
const statsWindow = time.Hour

// NewFromConfig builds a Refiner for cfg.LLMProvider. With no provider it
// returns a nil Refiner. The returned func releases the model client.
func NewFromConfig(ctx context.Context, cfg config.Config, log *slog.Logger) (*Refiner, func(), error) {
	switch cfg.LLMProvider {
	case "", config.ProviderNone:
		return nil, func() {}, nil
	case config.ProviderClaude:
		c := NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		return NewRefiner(c, NewLLMStats(config.ProviderClaude, statsWindow), log), c.Close, nil
	case config.ProviderGemini:
		g, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return NewRefiner(g, NewLLMStats(config.ProviderGemini, statsWindow), log), func() { g.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
}
