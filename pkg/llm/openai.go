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

const openAIBaseURL = "https://api.openai.com"

type OpenAI struct {
	apiKey  string
	client  *http.Client
	model   string
	baseURL string
}

func NewOpenAI(apiKey string) *OpenAI {
	return NewOpenAIWithModel(apiKey, "gpt-4o")
}

func NewOpenAIWithModel(apiKey, model string) *OpenAI {
	return &OpenAI{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		model:   model,
		baseURL: openAIBaseURL,
	}
}

func (o *OpenAI) WithBaseURL(url string) *OpenAI {
	o.baseURL = url
	return o
}

func (o *OpenAI) WithTimeout(d time.Duration) *OpenAI {
	o.client = &http.Client{Timeout: d}
	return o
}

func (o *OpenAI) Chat(ctx context.Context, prompt string, opts Options) (string, error) {
	body := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{{
			"role":    "user",
			"content": prompt,
		}},
		"max_tokens":  opts.maxTokens(),
		"temperature": opts.Temperature,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", o.fail(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", o.fail(0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.apiKey))

	resp, err := o.client.Do(req)
	if err != nil {
		return "", o.fail(0, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", o.fail(resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", o.fail(resp.StatusCode, errors.New(string(respBytes)))
	}

	var openaiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &openaiResp); err != nil {
		return "", o.fail(resp.StatusCode, err)
	}
	if openaiResp.Error.Message != "" {
		return "", o.fail(0, errors.New(openaiResp.Error.Message))
	}
	if len(openaiResp.Choices) == 0 {
		return "", o.fail(0, fmt.Errorf("empty response from OpenAI"))
	}
	return openaiResp.Choices[0].Message.Content, nil
}

// Model returns the model being used by this OpenAI client
func (o *OpenAI) Model() string {
	return o.model
}

func (o *OpenAI) fail(status int, err error) error {
	return &GenerationError{Provider: ProviderOpenAI, StatusCode: status, Err: err}
}
