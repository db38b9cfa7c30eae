// Package config loads kindling's configuration from defaults, a JSON
// config file at $XDG_CONFIG_HOME/kindling/config.json, and KINDLING_*
// environment variables, in that precedence order.
package config

import "fmt"

type Config struct {
	Server     ServerConfig
	Generation GenerationConfig
	Ollama     OllamaConfig
	Proxy      ProxyConfig
	Storage    StorageConfig
}

type ServerConfig struct {
	Port     int
	MCPPort  int
	APIToken string
}

type GenerationConfig struct {
	// Backend selects "local" (Ollama) or "cloud" (OpenRouter).
	Backend string
	// TimeoutSeconds caps one backend call. Independent of any
	// time-budget field in a request context.
	TimeoutSeconds int
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type ProxyConfig struct {
	OpenRouterAPIKey string
	Model            string
}

type StorageConfig struct {
	DataDir string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    4600,
			MCPPort: 4601,
		},
		Generation: GenerationConfig{
			Backend:        "local",
			TimeoutSeconds: 20,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2",
		},
		Proxy: ProxyConfig{
			Model: "anthropic/claude-sonnet-4",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
	}
}

// Model returns the generation model for the configured backend.
func (c Config) Model() string {
	if c.Generation.Backend == "cloud" {
		return c.Proxy.Model
	}
	return c.Ollama.Model
}

// Load reads configuration from the config file and environment.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	switch cfg.Generation.Backend {
	case "local", "cloud":
	default:
		return Config{}, fmt.Errorf("invalid generation.backend %q (want local or cloud)", cfg.Generation.Backend)
	}
	if cfg.Generation.Backend == "cloud" && cfg.Proxy.OpenRouterAPIKey == "" {
		return Config{}, fmt.Errorf("generation.backend is cloud but no API key set; " +
			"set it via environment variable KINDLING_OPENROUTER_API_KEY")
	}

	return cfg, nil
}
