package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient implements the Client interface for the OpenAI chat
// completions API.
type OpenAIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient creates an OpenAI adapter. baseURL overrides the
// production endpoint, mainly for tests.
func NewOpenAIClient(baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	return &OpenAIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (c *OpenAIClient) Name() Provider {
	return ProviderOpenAI
}

// chatRequest is the OpenAI-compatible chat completions request shape,
// shared with the Groq gateway adapter.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens int `json:"max_tokens,omitempty"`
	// No omitempty: an admin-configured temperature of 0 must reach
	// the provider rather than its default.
	Temperature float64 `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

func (c *OpenAIClient) Invoke(ctx context.Context, cfg Config, prompt string) (string, error) {
	return invokeChatCompletions(ctx, c.httpClient, ProviderOpenAI, c.baseURL, cfg, prompt)
}

// invokeChatCompletions performs an OpenAI-compatible chat call. Both
// the native OpenAI adapter and the Groq gateway adapter use it.
func invokeChatCompletions(ctx context.Context, client *http.Client, name Provider, baseURL string, cfg Config, prompt string) (string, error) {
	if !cfg.Configured() {
		return "", ErrNoAPIKey
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	body, err := json.Marshal(chatRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPreamble},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", &TransportError{Provider: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &TransportError{Provider: name, Status: resp.StatusCode, Err: fmt.Errorf("%s", string(bodyBytes))}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	return chatResp.Choices[0].Message.Content, nil
}
