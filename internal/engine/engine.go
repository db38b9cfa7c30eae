// Package engine abstracts the text-generation backends the pipeline can
// run against: a local Ollama instance or a cloud model via OpenRouter.
package engine

import "context"

// Engine is a chat-capable inference backend. The generation adapter
// depends on this interface so deterministic stages can be tested with a
// fake backend and no network.
type Engine interface {
	// Chat sends messages to the given model and returns the assistant's
	// response. When jsonSchema is non-nil, structured JSON output is requested.
	Chat(ctx context.Context, model string, messages []Message, jsonSchema *Schema) (string, error)

	// IsRunning reports whether the backend is reachable.
	IsRunning(ctx context.Context) bool

	// ListModels returns the names of the models the backend can serve.
	ListModels(ctx context.Context) ([]string, error)

	// HasModel reports whether the given model is available.
	HasModel(ctx context.Context, name string) bool

	// PullModel downloads a model where the backend supports it. The
	// optional callback receives progress updates.
	PullModel(ctx context.Context, name string, onProgress func(PullProgress)) error
}
