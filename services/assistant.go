package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	assistantSystemPrompt = "You are YathraGo Travel Assistant, a helpful and friendly travel guide. " +
		"Answer questions about travel destinations, activities, accommodations, food, culture, and travel tips. " +
		"Be informative, concise, and provide practical advice for travelers."
	assistantFallback = "I couldn't generate a response. Please try again."
)

var (
	ErrAssistantNotConfigured = errors.New("chatbot service is not configured")
	ErrMessageRequired        = errors.New("message is required")
)

// UpstreamError is a non-2xx answer of the completion endpoint.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion endpoint returned %d: %s", e.StatusCode, e.Body)
}

type AssistantConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Assistant answers travel questions through an OpenAI-compatible chat
// completion API.
type Assistant struct {
	cfg    AssistantConfig
	client *http.Client
}

func NewAssistant(cfg AssistantConfig) *Assistant {
	a := &Assistant{cfg: cfg}
	if cfg.APIKey != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
		a.client = oauth2.NewClient(context.Background(), src)
		a.client.Timeout = 60 * time.Second
	}
	return a
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []completionMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	TopP        float64             `json:"top_p"`
	Stream      bool                `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

// Ask sends message to the model and returns its reply.
func (a *Assistant) Ask(ctx context.Context, message string) (string, error) {
	if a.client == nil {
		return "", ErrAssistantNotConfigured
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrMessageRequired
	}

	body, err := json.Marshal(completionRequest{
		Model: a.cfg.Model,
		Messages: []completionMessage{
			{Role: "system", Content: assistantSystemPrompt},
			{Role: "user", Content: message},
		},
		Temperature: 1,
		MaxTokens:   1024,
		TopP:        1,
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(a.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return assistantFallback, nil
	}
	return out.Choices[0].Message.Content, nil
}
