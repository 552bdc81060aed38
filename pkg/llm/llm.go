package llm

import (
	"context"
	"fmt"
)

// LLM is a text-generation backend.
type LLM interface {
	Chat(ctx context.Context, prompt string, opts Options) (string, error)
	Model() string
}

// Options tune a single generation call. Zero values fall back to the
// client defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
}

const defaultMaxTokens = 4000

func (o Options) maxTokens() int {
	if o.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return o.MaxTokens
}

// GenerationError reports a failed call to a provider: transport, auth,
// quota, or an unusable response body.
type GenerationError struct {
	Provider   Provider
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
