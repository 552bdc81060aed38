package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const claudeBaseURL = "https://api.anthropic.com"

type Claude struct {
	apiKey  string
	client  *http.Client
	model   string
	baseURL string
}

func NewClaude(apiKey string) *Claude {
	return NewClaudeWithModel(apiKey, "claude-sonnet-4-20250514")
}

func NewClaudeWithModel(apiKey, model string) *Claude {
	return &Claude{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		model:   model,
		baseURL: claudeBaseURL,
	}
}

// WithBaseURL points the client at a different API host, e.g. a proxy.
func (c *Claude) WithBaseURL(url string) *Claude {
	c.baseURL = url
	return c
}

// WithTimeout replaces the HTTP client timeout.
func (c *Claude) WithTimeout(d time.Duration) *Claude {
	c.client = &http.Client{Timeout: d}
	return c
}

func (c *Claude) Chat(ctx context.Context, prompt string, opts Options) (string, error) {
	body := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{{
			"role":    "user",
			"content": prompt,
		}},
		"max_tokens":  opts.maxTokens(),
		"temperature": opts.Temperature,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", c.fail(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", c.fail(0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", c.fail(0, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail(resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.fail(resp.StatusCode, errors.New(string(respBytes)))
	}

	// Minimal struct to pull out the content text.
	var claudeResp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &claudeResp); err != nil {
		return "", c.fail(resp.StatusCode, err)
	}
	if claudeResp.Error.Message != "" {
		return "", c.fail(0, errors.New(claudeResp.Error.Message))
	}
	if len(claudeResp.Content) == 0 {
		return "", c.fail(0, fmt.Errorf("empty response from Claude"))
	}
	return claudeResp.Content[0].Text, nil
}

func (c *Claude) Model() string {
	return c.model
}

func (c *Claude) fail(status int, err error) error {
	return &GenerationError{Provider: ProviderClaude, StatusCode: status, Err: err}
}
