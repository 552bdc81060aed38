package llm

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
)

// ErrMissingAPIKey is returned when the selected provider has no credentials.
var ErrMissingAPIKey = errors.New("API key is required")

// Factory creates LLM instances based on provider
type Factory struct{}

// NewFactory creates a new LLM factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateLLM creates an LLM instance based on provider and configuration.
// Recognised keys: api_key, model, base_url, timeout (a time.Duration string).
func (f *Factory) CreateLLM(provider Provider, config map[string]string) (LLM, error) {
	apiKey := config["api_key"]

	var timeout time.Duration
	if raw := config["timeout"]; raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM timeout %q: %w", raw, err)
		}
		timeout = d
	}

	switch provider {
	case ProviderClaude:
		if apiKey == "" {
			return nil, fmt.Errorf("Claude %w", ErrMissingAPIKey)
		}
		c := NewClaude(apiKey)
		if model := config["model"]; model != "" {
			c = NewClaudeWithModel(apiKey, model)
		}
		if url := config["base_url"]; url != "" {
			c.WithBaseURL(url)
		}
		if timeout > 0 {
			c.WithTimeout(timeout)
		}
		return c, nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI %w", ErrMissingAPIKey)
		}
		o := NewOpenAI(apiKey)
		if model := config["model"]; model != "" {
			o = NewOpenAIWithModel(apiKey, model)
		}
		if url := config["base_url"]; url != "" {
			o.WithBaseURL(url)
		}
		if timeout > 0 {
			o.WithTimeout(timeout)
		}
		return o, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// GetAvailableProviders returns a list of available LLM providers
func (f *Factory) GetAvailableProviders() []Provider {
	return []Provider{ProviderClaude, ProviderOpenAI}
}

// ParseProvider normalises a provider name. Empty selects Claude.
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case ProviderClaude, "":
		return ProviderClaude, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unsupported provider: %s (supported: claude, openai)", name)
	}
}

// EnvConfig collects the provider settings from the environment. Explicit
// overrides win over LLM_PROVIDER, CLAUDE_MODEL and OPENAI_MODEL.
func EnvConfig(providerOverride, modelOverride string) (Provider, map[string]string, error) {
	name := providerOverride
	if name == "" {
		name = os.Getenv("LLM_PROVIDER")
	}
	provider, err := ParseProvider(name)
	if err != nil {
		return "", nil, err
	}

	config := map[string]string{"model": modelOverride}
	switch provider {
	case ProviderOpenAI:
		config["api_key"] = os.Getenv("OPENAI_API_KEY")
		if config["model"] == "" {
			config["model"] = os.Getenv("OPENAI_MODEL")
		}
	default:
		config["api_key"] = os.Getenv("ANTHROPIC_API_KEY")
		if config["model"] == "" {
			config["model"] = os.Getenv("CLAUDE_MODEL")
		}
	}
	return provider, config, nil
}

// CreateFromEnv creates an LLM instance from environment variables
// This is a convenience function that creates a new factory and uses it
func CreateFromEnv(providerOverride, modelOverride string) (LLM, error) {
	provider, config, err := EnvConfig(providerOverride, modelOverride)
	if err != nil {
		return nil, err
	}
	return NewFactory().CreateLLM(provider, config)
}
