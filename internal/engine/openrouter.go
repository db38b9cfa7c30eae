package engine

import (
	"context"
	"fmt"

	"github.com/kindlingapp/kindling/internal/proxy"
)

// OpenRouterEngine adapts the internal/proxy.Client to the Engine
// interface for cloud-hosted generation. Structured output is requested
// via response_format rather than an explicit schema; the generation
// adapter validates the shape either way.
type OpenRouterEngine struct {
	client *proxy.Client
}

// NewOpenRouterEngine creates an OpenRouterEngine using the given API key.
func NewOpenRouterEngine(apiKey string) *OpenRouterEngine {
	return &OpenRouterEngine{client: proxy.NewClient(apiKey)}
}

// NewOpenRouterEngineWithClient wraps an existing proxy client (for testing).
func NewOpenRouterEngineWithClient(c *proxy.Client) *OpenRouterEngine {
	return &OpenRouterEngine{client: c}
}

func (e *OpenRouterEngine) Chat(ctx context.Context, model string, messages []Message, jsonSchema *Schema) (string, error) {
	msgs := make([]proxy.Message, len(messages))
	for i, m := range messages {
		msgs[i] = proxy.Message{Role: m.Role, Content: m.Content}
	}
	return e.client.Chat(ctx, model, msgs, jsonSchema != nil)
}

func (e *OpenRouterEngine) IsRunning(ctx context.Context) bool {
	return e.client.IsReachable(ctx)
}

func (e *OpenRouterEngine) ListModels(ctx context.Context) ([]string, error) {
	return e.client.ListModels(ctx)
}

func (e *OpenRouterEngine) HasModel(ctx context.Context, name string) bool {
	models, err := e.client.ListModels(ctx)
	if err != nil {
		return false
	}
	for _, m := range models {
		if m == name {
			return true
		}
	}
	return false
}

func (e *OpenRouterEngine) PullModel(_ context.Context, name string, _ func(PullProgress)) error {
	return fmt.Errorf("openrouter: cloud models cannot be pulled (model %s)", name)
}
