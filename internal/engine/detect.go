package engine

import "fmt"

// Backend selection modes.
const (
	BackendLocal = "local"
	BackendCloud = "cloud"
)

// DetectConfig holds parameters for backend selection.
type DetectConfig struct {
	Backend          string // "local" or "cloud"
	OllamaBaseURL    string
	OpenRouterAPIKey string
}

// Detect returns the Engine matching the configured backend.
func Detect(cfg DetectConfig) (Engine, error) {
	switch cfg.Backend {
	case BackendCloud:
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("cloud backend selected but no OpenRouter API key configured")
		}
		return NewOpenRouterEngine(cfg.OpenRouterAPIKey), nil
	case BackendLocal, "":
		return NewOllamaEngine(cfg.OllamaBaseURL), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
