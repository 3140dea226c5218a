package aidispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenRouterCaller implements RemoteCaller against OpenRouter's
// OpenAI-compatible chat-completions endpoint (spec.md §4.8 step 7,
// REDESIGN FLAG 1 — "treat the exact URL as a configuration point, not a
// spec contract"). No HTTP client library in the example pack speaks a
// generic REST schema like OpenRouter's (anthropic-sdk-go and
// google.golang.org/genai in the pack are vendor-specific SDKs that don't
// fit); this is the deliberate net/http stdlib exception noted in
// SPEC_FULL.md §B for that one concern.
type OpenRouterCaller struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewOpenRouterCaller builds a caller against OpenRouter's default base URL,
// with the given HTTP timeout (internal/config.AI.TimeoutSeconds, spec.md
// §4.8's ai_run dispatch path).
func NewOpenRouterCaller(apiKey string, timeout time.Duration) *OpenRouterCaller {
	return &OpenRouterCaller{
		BaseURL: "https://openrouter.ai/api/v1",
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Call sends prompt+redactedContext as a single user message and returns
// the model's reply text and the model id actually used.
func (c *OpenRouterCaller) Call(ctx context.Context, provider, prompt, redactedContext string) (string, string, error) {
	body := chatRequest{
		Model: "openrouter/auto",
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf("%s\n\n---\n%s", prompt, redactedContext)},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", "", fmt.Errorf("decode openrouter response: %w", err)
	}
	if parsed.Error != nil {
		return "", "", fmt.Errorf("openrouter: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", "", fmt.Errorf("openrouter: empty response")
	}
	return parsed.Choices[0].Message.Content, parsed.Model, nil
}
