package provider

import (
	"context"
	"net/http"
	"time"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient implements the Client interface for the Groq gateway,
// which speaks the OpenAI-compatible chat completions protocol.
type GroqClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGroqClient creates a Groq adapter.
func NewGroqClient(baseURL string) *GroqClient {
	if baseURL == "" {
		baseURL = groqBaseURL
	}
	return &GroqClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (c *GroqClient) Name() Provider {
	return ProviderGroq
}

func (c *GroqClient) Invoke(ctx context.Context, cfg Config, prompt string) (string, error) {
	return invokeChatCompletions(ctx, c.httpClient, ProviderGroq, c.baseURL, cfg, prompt)
}
